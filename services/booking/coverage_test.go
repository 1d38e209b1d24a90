package booking

import (
	"context"
	"testing"

	"slotify/models"
)

func TestSplitCoverage(t *testing.T) {
	tests := []struct {
		name        string
		requested   int
		remaining   int
		wantCovered int
		wantPaid    int
	}{
		{"no balance", 4, 0, 0, 4},
		{"negative balance treated as empty", 4, -1, 0, 4},
		{"exact balance", 3, 3, 3, 0},
		{"surplus balance", 2, 5, 2, 0},
		{"partial balance", 5, 2, 2, 3},
		{"single visitor covered", 1, 1, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			covered, paid := splitCoverage(tt.requested, tt.remaining)
			if covered != tt.wantCovered || paid != tt.wantPaid {
				t.Errorf("splitCoverage(%d, %d) = (%d, %d), want (%d, %d)",
					tt.requested, tt.remaining, covered, paid, tt.wantCovered, tt.wantPaid)
			}
		})
	}
}

func TestPickUsage(t *testing.T) {
	usages := []models.SubscriptionUsage{
		{SubscriptionID: "sub-c", ServiceID: testService, RemainingQuantity: 3},
		{SubscriptionID: "sub-a", ServiceID: testService, RemainingQuantity: 5},
		{SubscriptionID: "sub-b", ServiceID: testService, RemainingQuantity: 5},
	}

	chosen := pickUsage(usages)
	if chosen == nil {
		t.Fatal("expected a usage to be chosen")
	}
	// Largest remaining wins; equal balances fall back to lowest id.
	if chosen.SubscriptionID != "sub-a" {
		t.Errorf("chose %s, want sub-a", chosen.SubscriptionID)
	}
}

func TestPickUsageSkipsDrained(t *testing.T) {
	usages := []models.SubscriptionUsage{
		{SubscriptionID: "sub-a", RemainingQuantity: 0},
		{SubscriptionID: "sub-b", RemainingQuantity: 0},
	}
	if chosen := pickUsage(usages); chosen != nil {
		t.Errorf("expected nil for all-drained usages, got %s", chosen.SubscriptionID)
	}
}

func TestResolveCoverageGuest(t *testing.T) {
	h := newEngineHarness()

	coverage, err := h.engine.ResolveCoverage(context.Background(), testTenant, "", testService, 3)
	if err != nil {
		t.Fatal(err)
	}
	if coverage.Covered != 0 || coverage.Paid != 3 {
		t.Errorf("guest coverage = (%d covered, %d paid), want (0, 3)", coverage.Covered, coverage.Paid)
	}
	if coverage.SubscriptionID != "" {
		t.Errorf("guest coverage picked subscription %s", coverage.SubscriptionID)
	}
}

func TestResolveCoverageSingleSubscription(t *testing.T) {
	h := newEngineHarness()
	h.seedCustomerWithPackage("cust-1", 2)

	coverage, err := h.engine.ResolveCoverage(context.Background(), testTenant, "cust-1", testService, 5)
	if err != nil {
		t.Fatal(err)
	}
	if coverage.Covered != 2 || coverage.Paid != 3 {
		t.Errorf("coverage = (%d covered, %d paid), want (2, 3)", coverage.Covered, coverage.Paid)
	}
	if coverage.SubscriptionID != "sub-cust-1" {
		t.Errorf("debit target = %s, want sub-cust-1", coverage.SubscriptionID)
	}
	if !coverage.Exhausts {
		t.Error("draining the full balance should flag Exhausts")
	}
	if coverage.TotalRemaining != 2 {
		t.Errorf("TotalRemaining = %d, want 2", coverage.TotalRemaining)
	}
}

func TestResolveCoverageNeverSplitsAcrossSubscriptions(t *testing.T) {
	h := newEngineHarness()
	h.store.addCustomer(models.Customer{ID: "cust-multi", TenantID: testTenant, Name: "Ira", Phone: "+12125550166"})
	h.store.addSubscription(
		models.PackageSubscription{ID: "sub-x", TenantID: testTenant, CustomerID: "cust-multi", Active: true},
		models.SubscriptionUsage{SubscriptionID: "sub-x", ServiceID: testService, OriginalQuantity: 4, RemainingQuantity: 4},
	)
	h.store.addSubscription(
		models.PackageSubscription{ID: "sub-y", TenantID: testTenant, CustomerID: "cust-multi", Active: true},
		models.SubscriptionUsage{SubscriptionID: "sub-y", ServiceID: testService, OriginalQuantity: 3, RemainingQuantity: 3},
	)

	// Seven remain across both, but a single booking debits only one.
	coverage, err := h.engine.ResolveCoverage(context.Background(), testTenant, "cust-multi", testService, 6)
	if err != nil {
		t.Fatal(err)
	}
	if coverage.SubscriptionID != "sub-x" {
		t.Errorf("debit target = %s, want sub-x (largest remaining)", coverage.SubscriptionID)
	}
	if coverage.Covered != 4 || coverage.Paid != 2 {
		t.Errorf("coverage = (%d covered, %d paid), want (4, 2)", coverage.Covered, coverage.Paid)
	}
	if coverage.TotalRemaining != 7 {
		t.Errorf("TotalRemaining = %d, want 7", coverage.TotalRemaining)
	}
}

func TestPreviewCoverageDoesNotDebit(t *testing.T) {
	h := newEngineHarness()
	h.seedCustomerWithPackage("cust-1", 5)

	info := models.CustomerInfo{CustomerID: "cust-1"}
	if _, err := h.engine.PreviewCoverage(context.Background(), testTenant, info, testService, 3); err != nil {
		t.Fatal(err)
	}

	usage := h.store.usageSnapshot("sub-cust-1", testService)
	if usage.RemainingQuantity != 5 {
		t.Errorf("preview changed remaining to %d, want 5", usage.RemainingQuantity)
	}
}

func TestResolveCustomerIDUnknownIDFallsBackToGuest(t *testing.T) {
	h := newEngineHarness()

	id, err := h.engine.resolveCustomerID(context.Background(), testTenant, models.CustomerInfo{CustomerID: "ghost"})
	if err != nil {
		t.Fatal(err)
	}
	if id != "" {
		t.Errorf("unknown customer id resolved to %q, want guest", id)
	}
}

func TestResolveCustomerIDByPhone(t *testing.T) {
	h := newEngineHarness()
	h.store.addCustomer(models.Customer{ID: "cust-9", TenantID: testTenant, Name: "Kim", Phone: "+12125550142"})

	// National formatting should still match the stored E.164 record.
	id, err := h.engine.resolveCustomerID(context.Background(), testTenant, models.CustomerInfo{Phone: "(212) 555-0142"})
	if err != nil {
		t.Fatal(err)
	}
	if id != "cust-9" {
		t.Errorf("resolved %q, want cust-9", id)
	}
}
