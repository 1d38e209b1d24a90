// File: database/repository/slot/interface.go
package slotRepo

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"slotify/database"
	"slotify/models"
)

// SlotRepository is the authoritative store of slot capacity. Reserve and
// Release are serializable per slot: concurrent reservations on a slot with
// capacity 1 allow exactly one caller through.
type SlotRepository interface {
	CreateMany(ctx context.Context, slots []models.Slot) ([]string, error)
	GetByID(ctx context.Context, tenantID, slotID string) (*models.Slot, error)
	GetBookable(ctx context.Context, tenantID, serviceID, date string) ([]models.Slot, error)
	Reserve(ctx context.Context, tenantID, slotID string, quantity int) error
	Release(ctx context.Context, tenantID, slotID string, quantity int) error
	SetAvailability(ctx context.Context, tenantID, slotID string, available bool, reason string) error
	EnsureIndexes() error
}

type mongoSlotRepo struct {
	coll *mongo.Collection
}

// NewMongoSlotRepo constructs a new MongoDB SlotRepository.
func NewMongoSlotRepo() SlotRepository {
	db := database.MongoClient.Database(database.DatabaseName)
	return &mongoSlotRepo{
		coll: db.Collection("slots"),
	}
}
