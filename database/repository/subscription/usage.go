// File: database/repository/subscription/usage.go
package subscriptionRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"slotify/models"
)

// ErrEntitlementExhausted is returned when a debit cannot be satisfied by the
// usage row's remaining quantity.
var ErrEntitlementExhausted = errors.New("subscription entitlement exhausted")

// GetActiveUsages returns the usage rows for the given service across the
// customer's active, non-expired subscriptions.
func (r *mongoSubscriptionRepo) GetActiveUsages(ctx context.Context, tenantID, customerID, serviceID string) ([]models.SubscriptionUsage, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	subFilter := bson.M{
		"tenantId":   tenantID,
		"customerId": customerID,
		"active":     true,
		"$or": bson.A{
			bson.M{"expiresAt": nil},
			bson.M{"expiresAt": bson.M{"$gt": now}},
		},
	}

	cursor, err := r.subColl.Find(ctx, subFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch subscriptions: %w", err)
	}
	defer cursor.Close(ctx)

	var subs []models.PackageSubscription
	if err := cursor.All(ctx, &subs); err != nil {
		return nil, fmt.Errorf("error decoding subscriptions: %w", err)
	}
	if len(subs) == 0 {
		return nil, nil
	}

	subIDs := make([]string, len(subs))
	for i, s := range subs {
		subIDs[i] = s.ID
	}

	usageFilter := bson.M{
		"subscriptionId": bson.M{"$in": subIDs},
		"serviceId":      serviceID,
	}
	usageCursor, err := r.usageColl.Find(ctx, usageFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch subscription usages: %w", err)
	}
	defer usageCursor.Close(ctx)

	var usages []models.SubscriptionUsage
	if err := usageCursor.All(ctx, &usages); err != nil {
		return nil, fmt.Errorf("error decoding subscription usages: %w", err)
	}
	return usages, nil
}

// ApplyDebit consumes quantity units from a usage row iff enough remain.
// The guard lives in the filter, so concurrent debits on the same row
// serialize at the document level. Exported for use inside Mongo sessions.
func ApplyDebit(ctx context.Context, coll *mongo.Collection, subscriptionID, serviceID string, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("debit quantity must be >= 1, got %d", quantity)
	}

	filter := bson.M{
		"subscriptionId":    subscriptionID,
		"serviceId":         serviceID,
		"remainingQuantity": bson.M{"$gte": quantity},
	}
	update := bson.M{
		"$inc": bson.M{
			"usedQuantity":      quantity,
			"remainingQuantity": -quantity,
		},
	}

	res, err := coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to debit subscription usage: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrEntitlementExhausted
	}
	return nil
}

// ApplyCredit returns quantity units to a usage row. A credit that would
// overflow clamps the row back to fully unused.
func ApplyCredit(ctx context.Context, coll *mongo.Collection, subscriptionID, serviceID string, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("credit quantity must be >= 1, got %d", quantity)
	}

	filter := bson.M{
		"subscriptionId": subscriptionID,
		"serviceId":      serviceID,
		"usedQuantity":   bson.M{"$gte": quantity},
	}
	update := bson.M{
		"$inc": bson.M{
			"usedQuantity":      -quantity,
			"remainingQuantity": quantity,
		},
	}

	res, err := coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to credit subscription usage: %w", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	clamp := mongo.Pipeline{
		bson.D{{Key: "$set", Value: bson.M{
			"remainingQuantity": "$originalQuantity",
			"usedQuantity":      0,
		}}},
	}
	res, err = coll.UpdateOne(ctx, bson.M{"subscriptionId": subscriptionID, "serviceId": serviceID}, clamp)
	if err != nil {
		return fmt.Errorf("failed to clamp subscription usage: %w", err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *mongoSubscriptionRepo) DebitUsage(ctx context.Context, subscriptionID, serviceID string, quantity int) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return ApplyDebit(ctx, r.usageColl, subscriptionID, serviceID, quantity)
}

func (r *mongoSubscriptionRepo) CreditUsage(ctx context.Context, subscriptionID, serviceID string, quantity int) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return ApplyCredit(ctx, r.usageColl, subscriptionID, serviceID, quantity)
}

func (r *mongoSubscriptionRepo) MarkExhaustedNotified(ctx context.Context, subscriptionID, serviceID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"subscriptionId":    subscriptionID,
		"serviceId":         serviceID,
		"exhaustedNotified": false,
	}
	update := bson.M{"$set": bson.M{"exhaustedNotified": true}}

	res, err := r.usageColl.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to mark entitlement exhausted: %w", err)
	}
	return res.ModifiedCount > 0, nil
}
