// File: database/repository/booking/crud.go
package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"slotify/models"
)

func (r *mongoBookingRepo) GetByID(ctx context.Context, tenantID, bookingID string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": bookingID, "tenantId": tenantID}
	var booking models.Booking
	err := r.bookingColl.FindOne(ctx, filter).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find booking %s: %w", bookingID, err)
	}
	return &booking, nil
}

func (r *mongoBookingRepo) GetByGroupID(ctx context.Context, tenantID, groupID string) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"bookingGroupId": groupID, "tenantId": tenantID}
	cursor, err := r.bookingColl.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch booking group: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("error decoding booking group: %w", err)
	}
	return bookings, nil
}

func (r *mongoBookingRepo) GroupExists(ctx context.Context, tenantID, groupID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	count, err := r.bookingColl.CountDocuments(ctx, bson.M{"bookingGroupId": groupID, "tenantId": tenantID})
	if err != nil {
		return false, fmt.Errorf("failed to count booking group: %w", err)
	}
	return count > 0, nil
}

func (r *mongoBookingRepo) SetTicketToken(ctx context.Context, tenantID, bookingID, token string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": bookingID, "tenantId": tenantID}
	update := bson.M{"$set": bson.M{"ticketToken": token, "updatedAt": time.Now()}}

	res, err := r.bookingColl.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to set ticket token: %w", err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
