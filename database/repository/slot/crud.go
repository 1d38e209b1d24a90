// File: database/repository/slot/crud.go
package slotRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"slotify/models"
)

func (r *mongoSlotRepo) CreateMany(ctx context.Context, slots []models.Slot) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	docs := make([]interface{}, len(slots))
	for i, slot := range slots {
		if slot.ID == "" {
			slot.ID = uuid.New().String()
		}
		if slot.AvailableCapacity == 0 && slot.BookedCount == 0 {
			slot.AvailableCapacity = slot.OriginalCapacity
		}
		if slot.AvailableCapacity+slot.BookedCount != slot.OriginalCapacity {
			return nil, fmt.Errorf("slot %s violates capacity invariant", slot.ID)
		}
		docs[i] = slot
	}

	res, err := r.coll.InsertMany(ctx, docs, &options.InsertManyOptions{Ordered: boolPtr(true)})
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(res.InsertedIDs))
	for i := range res.InsertedIDs {
		ids[i] = docs[i].(models.Slot).ID
	}
	return ids, nil
}

func (r *mongoSlotRepo) GetByID(ctx context.Context, tenantID, slotID string) (*models.Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": slotID, "tenantId": tenantID}
	var slot models.Slot
	err := r.coll.FindOne(ctx, filter).Decode(&slot)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find slot %s: %w", slotID, err)
	}
	return &slot, nil
}

func (r *mongoSlotRepo) GetBookable(ctx context.Context, tenantID, serviceID, date string) ([]models.Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"tenantId":          tenantID,
		"serviceId":         serviceID,
		"date":              date,
		"isAvailable":       true,
		"availableCapacity": bson.M{"$gt": 0},
	}
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bookable slots: %w", err)
	}
	defer cursor.Close(ctx)

	var slots []models.Slot
	if err := cursor.All(ctx, &slots); err != nil {
		return nil, fmt.Errorf("error decoding slots: %w", err)
	}
	return slots, nil
}

func (r *mongoSlotRepo) SetAvailability(ctx context.Context, tenantID, slotID string, available bool, reason string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": slotID, "tenantId": tenantID}
	update := bson.M{
		"$set": bson.M{
			"isAvailable": available,
			"blockReason": reason,
		},
	}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to set slot availability: %w", err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func boolPtr(b bool) *bool { return &b }
