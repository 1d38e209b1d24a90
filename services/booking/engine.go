package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	slotRepo "slotify/database/repository/slot"
	subscriptionRepo "slotify/database/repository/subscription"
	"slotify/models"
	"slotify/utils"
)

// CreateBooking is the single-booking path: validate, resolve coverage,
// then reserve capacity, debit the entitlement and persist the row in one
// transaction. Ticket and invoice hand-offs happen after commit and never
// roll it back.
func (e *DefaultBookingEngine) CreateBooking(ctx context.Context, tenantID string, req models.BookingRequest) (*models.Booking, error) {
	phone, err := validateBookingInput(tenantID, req.ServiceID, req.SlotID, req.Customer, req.VisitorCount)
	if err != nil {
		return nil, err
	}

	svc, slot, err := e.loadTargets(ctx, tenantID, req.ServiceID, req.SlotID)
	if err != nil {
		return nil, err
	}

	// A supplied lock must be live, owned by the session and bound to the
	// slot; an absent lock never blocks creation (staff bookings skip it).
	if req.LockID != "" {
		if err := e.Locks.Verify(ctx, req.LockID, req.SessionID, req.SlotID); err != nil {
			return nil, NewConflictError(ConflictLock, "reservation lock is expired or not owned by this session")
		}
	}

	customerID, err := e.resolveCustomerID(ctx, tenantID, req.Customer)
	if err != nil {
		return nil, err
	}
	coverage, err := e.ResolveCoverage(ctx, tenantID, customerID, req.ServiceID, req.VisitorCount)
	if err != nil {
		return nil, err
	}

	unitPrice := slot.UnitPrice(*svc)
	if coverage.Paid > 0 && unitPrice <= 0 {
		return nil, NewValidationError("serviceId", "service has no price configured")
	}

	now := time.Now()
	booking := &models.Booking{
		ID:            uuid.New().String(),
		TenantID:      tenantID,
		ServiceID:     req.ServiceID,
		SlotID:        slot.ID,
		EmployeeID:    slot.EmployeeID,
		CustomerID:    customerID,
		CustomerName:  req.Customer.Name,
		CustomerPhone: phone,
		CustomerEmail: req.Customer.Email,
		VisitorCount:  req.VisitorCount,
		AdultCount:    defaultCount(req.AdultCount, req.VisitorCount),
		ChildCount:    req.ChildCount,

		PackageCoveredQuantity: coverage.Covered,
		PaidQuantity:           coverage.Paid,
		TotalPrice:             float64(coverage.Paid) * unitPrice,
		SubscriptionID:         debitedSubscription(coverage),

		Status:        models.BookingStatusConfirmed,
		PaymentStatus: initialPaymentStatus(req.PaymentMethod),
		Date:          slot.Date,
		Start:         slot.Start,
		End:           slot.End,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	var debit *models.UsageDebit
	if coverage.Covered > 0 {
		debit = &models.UsageDebit{
			SubscriptionID: coverage.SubscriptionID,
			ServiceID:      req.ServiceID,
			Quantity:       coverage.Covered,
		}
	}

	if err := e.Bookings.CreateTransactionally(ctx, booking, debit); err != nil {
		return nil, e.mapTransactionError(err, slot.ID, req.VisitorCount)
	}

	if req.LockID != "" {
		if err := e.Locks.Release(ctx, req.LockID, req.SessionID); err != nil {
			utils.GetLogger().Warn("failed to release consumed lock",
				zap.String("lockId", req.LockID), zap.Error(err))
		}
	}

	e.afterCommit(booking, coverage, models.TicketActionCreated)
	return booking, nil
}

// GetBooking loads a booking scoped to its tenant.
func (e *DefaultBookingEngine) GetBooking(ctx context.Context, tenantID, bookingID string) (*models.Booking, error) {
	booking, err := e.Bookings.GetByID(ctx, tenantID, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load booking: %w", err)
	}
	if booking == nil {
		return nil, NewNotFoundError("booking", bookingID)
	}
	return booking, nil
}

// loadTargets fetches and cross-checks the service and slot for a create.
func (e *DefaultBookingEngine) loadTargets(ctx context.Context, tenantID, serviceID, slotID string) (*models.Service, *models.Slot, error) {
	svc, err := e.Catalog.GetServiceByID(ctx, serviceID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load service: %w", err)
	}
	if svc == nil {
		return nil, nil, NewNotFoundError("service", serviceID)
	}
	if svc.TenantID != tenantID {
		return nil, nil, NewForbiddenError("service belongs to another tenant")
	}

	slot, err := e.Slots.GetByID(ctx, tenantID, slotID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load slot: %w", err)
	}
	if slot == nil {
		return nil, nil, NewNotFoundError("slot", slotID)
	}
	if slot.ServiceID != serviceID {
		return nil, nil, NewValidationError("slotId", "slot does not belong to the requested service")
	}
	if slot.InPast(time.Now()) {
		return nil, nil, NewValidationError("slotId", "slot is in the past")
	}
	if !slot.IsAvailable {
		return nil, nil, NewConflictError(ConflictUnavailable, fmt.Sprintf("slot %s is not open for booking", slotID))
	}
	return svc, slot, nil
}

// mapTransactionError translates repository sentinels into caller-facing
// conflicts; everything else surfaces as an internal failure.
func (e *DefaultBookingEngine) mapTransactionError(err error, slotID string, quantity int) error {
	if errors.Is(err, slotRepo.ErrCapacityExhausted) {
		return NewConflictError(ConflictCapacity,
			fmt.Sprintf("slot %s lacks capacity for %d visitor(s)", slotID, quantity))
	}
	if errors.Is(err, subscriptionRepo.ErrEntitlementExhausted) {
		return NewConflictError(ConflictEntitlement, "package entitlement was consumed concurrently")
	}
	utils.GetLogger().Error("booking transaction failed", zap.String("slotId", slotID), zap.Error(err))
	return fmt.Errorf("booking transaction failed: %w", err)
}

// afterCommit hands side effects to the worker. Fire-and-forget: a delivery
// failure is logged and never undoes the committed reservation.
func (e *DefaultBookingEngine) afterCommit(b *models.Booking, coverage *models.PackageCoverage, action string) {
	go func() {
		e.Events.TicketIssued(b.TenantID, b.ID, action)
		if b.PaidQuantity > 0 && b.TotalPrice > 0 {
			e.Events.InvoiceDue(b.TenantID, b.ID, b.PaidQuantity, b.TotalPrice)
		}
		if coverage != nil && coverage.Exhausts && coverage.SubscriptionID != "" {
			claimed, err := e.Subscriptions.MarkExhaustedNotified(context.Background(), coverage.SubscriptionID, b.ServiceID)
			if err != nil {
				utils.GetLogger().Warn("failed to flag exhausted entitlement",
					zap.String("subscriptionId", coverage.SubscriptionID), zap.Error(err))
				return
			}
			if claimed {
				e.Events.PackageExhausted(b.TenantID, coverage.SubscriptionID, b.ServiceID)
			}
		}
	}()
}

func validateBookingInput(tenantID, serviceID, slotID string, info models.CustomerInfo, visitorCount int) (string, error) {
	if tenantID == "" {
		return "", NewValidationError("tenantId", "is required")
	}
	if serviceID == "" {
		return "", NewValidationError("serviceId", "is required")
	}
	if slotID == "" {
		return "", NewValidationError("slotId", "is required")
	}
	if info.Name == "" {
		return "", NewValidationError("customer.name", "is required")
	}
	if visitorCount < 1 {
		return "", NewValidationError("visitorCount", "must be >= 1")
	}
	phone, err := utils.NormalizePhone(info.Phone)
	if err != nil {
		return "", NewValidationError("customer.phone", err.Error())
	}
	return phone, nil
}

func defaultCount(supplied, fallback int) int {
	if supplied > 0 {
		return supplied
	}
	return fallback
}

func debitedSubscription(coverage *models.PackageCoverage) string {
	if coverage.Covered > 0 {
		return coverage.SubscriptionID
	}
	return ""
}

// initialPaymentStatus defaults to unpaid; a staff-entered payment method
// marks the booking settled immediately.
func initialPaymentStatus(paymentMethod string) string {
	if paymentMethod != "" {
		return models.PaymentStatusPaidManual
	}
	return models.PaymentStatusUnpaid
}
