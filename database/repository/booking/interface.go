// File: database/repository/booking/interface.go
package bookingRepo

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"slotify/database"
	"slotify/models"
)

// BookingRepository persists bookings. Every multi-document unit (create,
// bulk create, move, delete) runs as one Mongo session transaction so a
// capacity decrement and its booking row commit together or not at all.
type BookingRepository interface {
	GetByID(ctx context.Context, tenantID, bookingID string) (*models.Booking, error)
	GetByGroupID(ctx context.Context, tenantID, groupID string) ([]models.Booking, error)
	GroupExists(ctx context.Context, tenantID, groupID string) (bool, error)

	CreateTransactionally(ctx context.Context, booking *models.Booking, debit *models.UsageDebit) error
	CreateGroupTransactionally(ctx context.Context, bookings []models.Booking, debit *models.UsageDebit) error
	MoveTransactionally(ctx context.Context, move models.BookingMove) error
	DeleteTransactionally(ctx context.Context, booking *models.Booking, credit *models.UsageDebit) error

	SetTicketToken(ctx context.Context, tenantID, bookingID, token string) error
	EnsureIndexes() error
}

type mongoBookingRepo struct {
	bookingColl *mongo.Collection
	slotColl    *mongo.Collection
	usageColl   *mongo.Collection
}

// NewMongoBookingRepo constructs a new MongoDB BookingRepository. It holds
// the slot and usage collections as well because booking transactions mutate
// all three inside one session.
func NewMongoBookingRepo() BookingRepository {
	db := database.MongoClient.Database(database.DatabaseName)
	return &mongoBookingRepo{
		bookingColl: db.Collection("bookings"),
		slotColl:    db.Collection("slots"),
		usageColl:   db.Collection("subscription_usages"),
	}
}
