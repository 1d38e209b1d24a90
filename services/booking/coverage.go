package booking

import (
	"context"
	"fmt"

	"slotify/models"
	"slotify/utils"
)

// splitCoverage divides a requested visitor count between one entitlement's
// remaining balance and cash payment. Pure; computed once per booking and
// trusted thereafter.
func splitCoverage(requested, remaining int) (covered, paid int) {
	if remaining <= 0 {
		return 0, requested
	}
	if remaining >= requested {
		return requested, 0
	}
	return remaining, requested - remaining
}

// pickUsage selects the single usage row to debit: the largest remaining
// balance among non-exhausted rows, tie broken by lowest subscription id so
// the choice is deterministic.
func pickUsage(usages []models.SubscriptionUsage) *models.SubscriptionUsage {
	var chosen *models.SubscriptionUsage
	for i := range usages {
		u := &usages[i]
		if u.RemainingQuantity <= 0 {
			continue
		}
		if chosen == nil ||
			u.RemainingQuantity > chosen.RemainingQuantity ||
			(u.RemainingQuantity == chosen.RemainingQuantity && u.SubscriptionID < chosen.SubscriptionID) {
			chosen = u
		}
	}
	return chosen
}

// ResolveCoverage computes how much of a requested visitor count the
// customer's active entitlements can satisfy, and which single subscription
// will be debited. Coverage is never split across subscriptions in one
// booking. An empty customerID yields full cash payment (guest booking).
func (e *DefaultBookingEngine) ResolveCoverage(ctx context.Context, tenantID, customerID, serviceID string, quantity int) (*models.PackageCoverage, error) {
	coverage := &models.PackageCoverage{Paid: quantity}
	if customerID == "" {
		return coverage, nil
	}

	usages, err := e.Subscriptions.GetActiveUsages(ctx, tenantID, customerID, serviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve package coverage: %w", err)
	}

	for _, u := range usages {
		coverage.TotalRemaining += u.RemainingQuantity
		coverage.PerSubscription = append(coverage.PerSubscription, models.SubscriptionRemaining{
			SubscriptionID: u.SubscriptionID,
			Remaining:      u.RemainingQuantity,
		})
	}
	if coverage.TotalRemaining == 0 {
		return coverage, nil
	}

	chosen := pickUsage(usages)
	if chosen == nil {
		return coverage, nil
	}

	coverage.SubscriptionID = chosen.SubscriptionID
	coverage.Covered, coverage.Paid = splitCoverage(quantity, chosen.RemainingQuantity)
	coverage.Exhausts = coverage.Covered == chosen.RemainingQuantity
	return coverage, nil
}

// PreviewCoverage exposes the resolver read-only so checkout UIs can show the
// covered/paid split before confirmation. Never debits.
func (e *DefaultBookingEngine) PreviewCoverage(ctx context.Context, tenantID string, info models.CustomerInfo, serviceID string, quantity int) (*models.PackageCoverage, error) {
	if serviceID == "" {
		return nil, NewValidationError("serviceId", "is required")
	}
	if quantity < 1 {
		return nil, NewValidationError("quantity", "must be >= 1")
	}

	customerID, err := e.resolveCustomerID(ctx, tenantID, info)
	if err != nil {
		return nil, err
	}
	return e.ResolveCoverage(ctx, tenantID, customerID, serviceID, quantity)
}

// resolveCustomerID maps caller-supplied identity to a customer record id.
// A customer id that does not exist is treated as absent, not an error, so
// the booking proceeds as a guest booking instead of tripping a reference
// failure downstream.
func (e *DefaultBookingEngine) resolveCustomerID(ctx context.Context, tenantID string, info models.CustomerInfo) (string, error) {
	if info.CustomerID != "" {
		customer, err := e.Customers.GetByID(ctx, tenantID, info.CustomerID)
		if err != nil {
			return "", fmt.Errorf("failed to resolve customer: %w", err)
		}
		if customer != nil {
			return customer.ID, nil
		}
	}

	if info.Phone == "" {
		return "", nil
	}
	phone, err := utils.NormalizePhone(info.Phone)
	if err != nil {
		return "", nil
	}
	customer, err := e.Customers.GetByPhone(ctx, tenantID, phone)
	if err != nil {
		return "", fmt.Errorf("failed to resolve customer by phone: %w", err)
	}
	if customer == nil {
		return "", nil
	}
	return customer.ID, nil
}
