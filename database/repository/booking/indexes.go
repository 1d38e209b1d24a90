// FILE: database/repository/booking/indexes.go
package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the necessary indexes on the bookings collection.
func (r *mongoBookingRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		{
			Keys:    bson.D{{Key: "tenantId", Value: 1}, {Key: "slotId", Value: 1}},
			Options: options.Index().SetName("tenant_slot_idx"),
		},
		{
			Keys: bson.D{{Key: "tenantId", Value: 1}, {Key: "bookingGroupId", Value: 1}},
			Options: options.Index().
				SetName("tenant_group_idx").
				SetPartialFilterExpression(bson.M{"bookingGroupId": bson.M{"$exists": true}}),
		},
		{
			Keys:    bson.D{{Key: "tenantId", Value: 1}, {Key: "customerPhone", Value: 1}},
			Options: options.Index().SetName("tenant_phone_idx"),
		},
	}

	_, err := r.bookingColl.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create booking indexes: %w", err)
	}
	return nil
}
