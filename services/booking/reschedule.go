package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	slotRepo "slotify/database/repository/slot"
	"slotify/models"
)

// MoveBooking atomically moves a booking to a new slot: the old slot's
// capacity is restored and the new slot's reserved in one transaction, so a
// failed reservation never leaves the old capacity already released. The
// stored ticket token is cleared so the prior ticket cannot be honored.
func (e *DefaultBookingEngine) MoveBooking(ctx context.Context, tenantID, bookingID, newSlotID string) (*models.RescheduleResult, error) {
	if newSlotID == "" {
		return nil, NewValidationError("newSlotId", "is required")
	}

	booking, err := e.GetBooking(ctx, tenantID, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.SlotID == newSlotID {
		return nil, NewValidationError("newSlotId", "booking already occupies this slot")
	}

	newSlot, err := e.Slots.GetByID(ctx, tenantID, newSlotID)
	if err != nil {
		return nil, fmt.Errorf("failed to load slot: %w", err)
	}
	if newSlot == nil {
		return nil, NewNotFoundError("slot", newSlotID)
	}
	if newSlot.ServiceID != booking.ServiceID {
		return nil, NewValidationError("newSlotId", "slot does not belong to the booking's service")
	}
	if newSlot.InPast(time.Now()) {
		return nil, NewValidationError("newSlotId", "slot is in the past")
	}
	if !newSlot.IsAvailable {
		return nil, NewConflictError(ConflictUnavailable, fmt.Sprintf("slot %s is not open for booking", newSlotID))
	}
	if newSlot.AvailableCapacity < booking.VisitorCount {
		return nil, NewConflictError(ConflictCapacity,
			fmt.Sprintf("slot %s lacks capacity for %d visitor(s)", newSlotID, booking.VisitorCount))
	}

	svc, err := e.Catalog.GetServiceByID(ctx, booking.ServiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load service: %w", err)
	}
	if svc == nil {
		return nil, NewNotFoundError("service", booking.ServiceID)
	}

	newTotal := float64(booking.PaidQuantity) * newSlot.UnitPrice(*svc)
	if booking.PaidQuantity > 0 && newSlot.UnitPrice(*svc) <= 0 {
		return nil, NewValidationError("newSlotId", "target slot has no price configured")
	}
	priceChanged := newTotal != booking.TotalPrice

	move := models.BookingMove{
		TenantID:      tenantID,
		BookingID:     booking.ID,
		OldSlotID:     booking.SlotID,
		NewSlotID:     newSlot.ID,
		NewEmployeeID: newSlot.EmployeeID,
		NewDate:       newSlot.Date,
		NewStart:      newSlot.Start,
		NewEnd:        newSlot.End,
		Quantity:      booking.VisitorCount,
		NewTotalPrice: newTotal,
	}
	if err := e.Bookings.MoveTransactionally(ctx, move); err != nil {
		if errors.Is(err, slotRepo.ErrCapacityExhausted) {
			return nil, NewConflictError(ConflictCapacity,
				fmt.Sprintf("slot %s lacks capacity for %d visitor(s)", newSlotID, booking.VisitorCount))
		}
		return nil, fmt.Errorf("reschedule transaction failed: %w", err)
	}

	oldSlotID := booking.SlotID
	booking.SlotID = newSlot.ID
	booking.EmployeeID = newSlot.EmployeeID
	booking.Date = newSlot.Date
	booking.Start = newSlot.Start
	booking.End = newSlot.End
	booking.TotalPrice = newTotal
	booking.TicketToken = ""

	// Ticket regeneration and, when the price moved, the invoice-amount
	// update are best effort; their failure never reverts the move.
	go func() {
		e.Events.TicketIssued(booking.TenantID, booking.ID, models.TicketActionRescheduled)
		if priceChanged && booking.PaidQuantity > 0 && newTotal > 0 {
			e.Events.InvoiceDue(booking.TenantID, booking.ID, booking.PaidQuantity, newTotal)
		}
	}()

	return &models.RescheduleResult{
		Booking:      *booking,
		OldSlotID:    oldSlotID,
		PriceChanged: priceChanged,
	}, nil
}
