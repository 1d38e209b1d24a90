package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	slotRepo "slotify/database/repository/slot"
	subscriptionRepo "slotify/database/repository/subscription"
	"slotify/models"
)

// CreateBookingGroup books one visitor per slot, all-or-nothing: if any slot
// lacks capacity, zero bookings are created. All rows share one booking
// group id; a repeated caller-supplied id is rejected as a duplicate rather
// than re-executed.
func (e *DefaultBookingEngine) CreateBookingGroup(ctx context.Context, tenantID string, req models.BulkBookingRequest) (*models.BookingGroupResult, error) {
	if req.VisitorCount < 1 {
		req.VisitorCount = len(req.SlotIDs)
	}
	phone, err := validateBookingInput(tenantID, req.ServiceID, "-", req.Customer, req.VisitorCount)
	if err != nil {
		return nil, err
	}
	if len(req.SlotIDs) == 0 {
		return nil, NewValidationError("slotIds", "at least one slot is required")
	}
	if len(req.SlotIDs) != req.VisitorCount {
		return nil, NewValidationError("slotIds", "one slot per visitor is required")
	}

	groupID := req.BookingGroupID
	if groupID == "" {
		groupID = uuid.New().String()
	}
	exists, err := e.Bookings.GroupExists(ctx, tenantID, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to check booking group: %w", err)
	}
	if exists {
		return nil, NewConflictError(ConflictDuplicate,
			fmt.Sprintf("booking group %s already exists", groupID))
	}

	svc, err := e.Catalog.GetServiceByID(ctx, req.ServiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load service: %w", err)
	}
	if svc == nil {
		return nil, NewNotFoundError("service", req.ServiceID)
	}
	if svc.TenantID != tenantID {
		return nil, NewForbiddenError("service belongs to another tenant")
	}

	// Pre-check every slot before writing anything. The transaction below
	// remains the authoritative gate; this just produces precise errors.
	slots := make([]*models.Slot, len(req.SlotIDs))
	for i, slotID := range req.SlotIDs {
		slot, err := e.Slots.GetByID(ctx, tenantID, slotID)
		if err != nil {
			return nil, fmt.Errorf("failed to load slot: %w", err)
		}
		if slot == nil {
			return nil, NewNotFoundError("slot", slotID)
		}
		if slot.ServiceID != req.ServiceID {
			return nil, NewValidationError("slotIds", fmt.Sprintf("slot %s does not belong to the requested service", slotID))
		}
		if slot.InPast(time.Now()) {
			return nil, NewValidationError("slotIds", fmt.Sprintf("slot %s is in the past", slotID))
		}
		if !slot.IsAvailable {
			return nil, NewConflictError(ConflictUnavailable, fmt.Sprintf("slot %s is not open for booking", slotID))
		}
		if slot.AvailableCapacity < 1 {
			return nil, NewConflictError(ConflictCapacity, fmt.Sprintf("slot %s lacks capacity", slotID))
		}
		slots[i] = slot
	}

	customerID, err := e.resolveCustomerID(ctx, tenantID, req.Customer)
	if err != nil {
		return nil, err
	}
	coverage, err := e.ResolveCoverage(ctx, tenantID, customerID, req.ServiceID, req.VisitorCount)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	bookings := make([]models.Booking, len(slots))
	for i, slot := range slots {
		// The covered portion lands on the leading bookings; the rest pay
		// their slot's effective unit price.
		covered := 0
		if i < coverage.Covered {
			covered = 1
		}
		paid := 1 - covered
		unitPrice := slot.UnitPrice(*svc)
		if paid > 0 && unitPrice <= 0 {
			return nil, NewValidationError("serviceId", "service has no price configured")
		}

		bookings[i] = models.Booking{
			ID:            uuid.New().String(),
			TenantID:      tenantID,
			ServiceID:     req.ServiceID,
			SlotID:        slot.ID,
			EmployeeID:    slot.EmployeeID,
			CustomerID:    customerID,
			CustomerName:  req.Customer.Name,
			CustomerPhone: phone,
			CustomerEmail: req.Customer.Email,
			VisitorCount:  1,
			AdultCount:    1,

			PackageCoveredQuantity: covered,
			PaidQuantity:           paid,
			TotalPrice:             float64(paid) * unitPrice,
			SubscriptionID:         debitedSubscriptionFor(coverage, covered),

			Status:         models.BookingStatusConfirmed,
			PaymentStatus:  initialPaymentStatus(req.PaymentMethod),
			BookingGroupID: groupID,
			Date:           slot.Date,
			Start:          slot.Start,
			End:            slot.End,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
	}

	var debit *models.UsageDebit
	if coverage.Covered > 0 {
		debit = &models.UsageDebit{
			SubscriptionID: coverage.SubscriptionID,
			ServiceID:      req.ServiceID,
			Quantity:       coverage.Covered,
		}
	}

	if err := e.Bookings.CreateGroupTransactionally(ctx, bookings, debit); err != nil {
		if errors.Is(err, slotRepo.ErrCapacityExhausted) {
			return nil, NewConflictError(ConflictCapacity, err.Error())
		}
		if errors.Is(err, subscriptionRepo.ErrEntitlementExhausted) {
			return nil, NewConflictError(ConflictEntitlement, "package entitlement was consumed concurrently")
		}
		return nil, fmt.Errorf("bulk booking transaction failed: %w", err)
	}

	for i := range bookings {
		b := bookings[i]
		var cov *models.PackageCoverage
		if i == 0 {
			cov = coverage // exhaustion is flagged once per group
		}
		e.afterCommit(&b, cov, models.TicketActionCreated)
	}

	return &models.BookingGroupResult{BookingGroupID: groupID, Bookings: bookings}, nil
}

func debitedSubscriptionFor(coverage *models.PackageCoverage, covered int) string {
	if covered > 0 {
		return coverage.SubscriptionID
	}
	return ""
}
