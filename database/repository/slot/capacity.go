// File: database/repository/slot/capacity.go
package slotRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrCapacityExhausted is returned when a reserve cannot be satisfied: the
// slot is missing, blocked, or lacks the requested capacity. The conditional
// filter makes the distinction irrelevant for correctness; callers that need
// a precise reason load the slot first.
var ErrCapacityExhausted = errors.New("slot capacity exhausted")

// ApplyReserve decrements availableCapacity by quantity iff the slot is
// bookable and has at least that much left. The capacity guard lives in the
// update filter, so concurrent reservations on the same slot serialize at the
// document level: losers match zero documents. Exported so booking
// transactions can run the same mutation inside a Mongo session.
func ApplyReserve(ctx context.Context, coll *mongo.Collection, tenantID, slotID string, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("reserve quantity must be >= 1, got %d", quantity)
	}

	filter := bson.M{
		"id":                slotID,
		"tenantId":          tenantID,
		"isAvailable":       true,
		"availableCapacity": bson.M{"$gte": quantity},
	}
	update := bson.M{
		"$inc": bson.M{
			"availableCapacity": -quantity,
			"bookedCount":       quantity,
		},
	}

	res, err := coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to reserve slot capacity: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrCapacityExhausted
	}
	return nil
}

// ApplyRelease restores quantity units of capacity. Idempotent up to
// originalCapacity: a release that would overflow clamps the slot back to
// fully free instead of corrupting the counters.
func ApplyRelease(ctx context.Context, coll *mongo.Collection, tenantID, slotID string, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("release quantity must be >= 1, got %d", quantity)
	}

	filter := bson.M{
		"id":          slotID,
		"tenantId":    tenantID,
		"bookedCount": bson.M{"$gte": quantity},
	}
	update := bson.M{
		"$inc": bson.M{
			"availableCapacity": quantity,
			"bookedCount":       -quantity,
		},
	}

	res, err := coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to release slot capacity: %w", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	// Overflowing release: clamp to the original capacity.
	clamp := mongo.Pipeline{
		bson.D{{Key: "$set", Value: bson.M{
			"availableCapacity": "$originalCapacity",
			"bookedCount":       0,
		}}},
	}
	res, err = coll.UpdateOne(ctx, bson.M{"id": slotID, "tenantId": tenantID}, clamp)
	if err != nil {
		return fmt.Errorf("failed to clamp slot capacity: %w", err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *mongoSlotRepo) Reserve(ctx context.Context, tenantID, slotID string, quantity int) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return ApplyReserve(ctx, r.coll, tenantID, slotID, quantity)
}

func (r *mongoSlotRepo) Release(ctx context.Context, tenantID, slotID string, quantity int) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return ApplyRelease(ctx, r.coll, tenantID, slotID, quantity)
}
