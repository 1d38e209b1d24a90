// FILE: database/repository/subscription/indexes.go
package subscriptionRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the necessary indexes on both collections.
func (r *mongoSubscriptionRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	subIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		{
			Keys:    bson.D{{Key: "tenantId", Value: 1}, {Key: "customerId", Value: 1}, {Key: "active", Value: 1}},
			Options: options.Index().SetName("tenant_customer_active_idx"),
		},
	}
	if _, err := r.subColl.Indexes().CreateMany(ctx, subIndexes); err != nil {
		return fmt.Errorf("failed to create subscription indexes: %w", err)
	}

	usageIndexes := []mongo.IndexModel{
		// One usage row per (subscription, service) pair
		{
			Keys:    bson.D{{Key: "subscriptionId", Value: 1}, {Key: "serviceId", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_subscription_service"),
		},
	}
	if _, err := r.usageColl.Indexes().CreateMany(ctx, usageIndexes); err != nil {
		return fmt.Errorf("failed to create usage indexes: %w", err)
	}
	return nil
}
