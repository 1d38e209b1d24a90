package booking

import (
	"context"
	"errors"
	"fmt"

	bookingRepo "slotify/database/repository/booking"
	"slotify/models"
)

// DeleteBooking hard-deletes a booking after restoring what it held: slot
// capacity (when the booking still occupied it) and the debited entitlement.
// Bookings with collected payment are refused unless explicitly overridden.
// The removal is verified by re-reading afterward; a silent no-op delete is
// an internal failure, not a success.
func (e *DefaultBookingEngine) DeleteBooking(ctx context.Context, tenantID, bookingID string, allowIfPaid bool) error {
	booking, err := e.GetBooking(ctx, tenantID, bookingID)
	if err != nil {
		return err
	}

	if booking.PaymentCollected() && !allowIfPaid {
		return NewConflictError(ConflictPayment,
			"payment was collected for this booking; pass allowPaid to delete anyway")
	}

	var credit *models.UsageDebit
	if booking.SubscriptionID != "" && booking.PackageCoveredQuantity > 0 {
		credit = &models.UsageDebit{
			SubscriptionID: booking.SubscriptionID,
			ServiceID:      booking.ServiceID,
			Quantity:       booking.PackageCoveredQuantity,
		}
	}

	if err := e.Bookings.DeleteTransactionally(ctx, booking, credit); err != nil {
		if errors.Is(err, bookingRepo.ErrBookingGone) {
			// Lost a race with another delete; the caller's goal is met,
			// but this request did not remove anything.
			return NewNotFoundError("booking", bookingID)
		}
		return fmt.Errorf("delete transaction failed: %w", err)
	}

	// Defense against silent no-op deletes: confirm the row is gone.
	remaining, err := e.Bookings.GetByID(ctx, tenantID, bookingID)
	if err != nil {
		return fmt.Errorf("failed to verify deletion: %w", err)
	}
	if remaining != nil {
		return fmt.Errorf("booking %s still present after delete", bookingID)
	}
	return nil
}
