// File: database/repository/subscription/interface.go
package subscriptionRepo

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"slotify/database"
	"slotify/models"
)

// SubscriptionRepository exposes package entitlements and their per-service
// usage ledger. Debits and credits are serializable per usage row.
type SubscriptionRepository interface {
	GetActiveUsages(ctx context.Context, tenantID, customerID, serviceID string) ([]models.SubscriptionUsage, error)
	DebitUsage(ctx context.Context, subscriptionID, serviceID string, quantity int) error
	CreditUsage(ctx context.Context, subscriptionID, serviceID string, quantity int) error
	// MarkExhaustedNotified flips the one-time exhaustion flag. Returns true
	// for the caller that won the flip; repeats return false.
	MarkExhaustedNotified(ctx context.Context, subscriptionID, serviceID string) (bool, error)
	EnsureIndexes() error
}

type mongoSubscriptionRepo struct {
	subColl   *mongo.Collection
	usageColl *mongo.Collection
}

// NewMongoSubscriptionRepo constructs a new MongoDB SubscriptionRepository.
func NewMongoSubscriptionRepo() SubscriptionRepository {
	db := database.MongoClient.Database(database.DatabaseName)
	return &mongoSubscriptionRepo{
		subColl:   db.Collection("subscriptions"),
		usageColl: db.Collection("subscription_usages"),
	}
}
