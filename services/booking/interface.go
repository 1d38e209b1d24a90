package booking

import (
	"context"

	bookingRepo "slotify/database/repository/booking"
	catalogRepo "slotify/database/repository/catalog"
	customerRepo "slotify/database/repository/customer"
	slotRepo "slotify/database/repository/slot"
	subscriptionRepo "slotify/database/repository/subscription"
	"slotify/models"
	"slotify/services/reservation"
)

// BookingEngine turns validated booking requests into durable, capacity-safe
// commitments. Every create/move/delete is atomic against the slot and
// entitlement counters.
type BookingEngine interface {
	CreateBooking(ctx context.Context, tenantID string, req models.BookingRequest) (*models.Booking, error)
	CreateBookingGroup(ctx context.Context, tenantID string, req models.BulkBookingRequest) (*models.BookingGroupResult, error)
	GetBooking(ctx context.Context, tenantID, bookingID string) (*models.Booking, error)
	MoveBooking(ctx context.Context, tenantID, bookingID, newSlotID string) (*models.RescheduleResult, error)
	DeleteBooking(ctx context.Context, tenantID, bookingID string, allowIfPaid bool) error
	PreviewCoverage(ctx context.Context, tenantID string, info models.CustomerInfo, serviceID string, quantity int) (*models.PackageCoverage, error)
}

// DefaultBookingEngine implements BookingEngine.
type DefaultBookingEngine struct {
	Bookings      bookingRepo.BookingRepository
	Slots         slotRepo.SlotRepository
	Subscriptions subscriptionRepo.SubscriptionRepository
	Customers     customerRepo.CustomerRepository
	Catalog       catalogRepo.CatalogRepository
	Locks         reservation.LockManager
	Events        EventEmitter
}
