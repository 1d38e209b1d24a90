package booking

import (
	"context"
	"errors"
	"testing"

	"slotify/models"
)

func bulkRequest(slotIDs ...string) models.BulkBookingRequest {
	return models.BulkBookingRequest{
		ServiceID: testService,
		SlotIDs:   slotIDs,
		Customer: models.CustomerInfo{
			Name:  "Dana Price",
			Phone: "212-555-0142",
		},
	}
}

func TestCreateBookingGroup(t *testing.T) {
	h := newEngineHarness()
	h.seedService(15)
	h.seedSlot("slot-1", 3)
	h.seedSlot("slot-2", 3)
	h.seedSlot("slot-3", 3)
	h.seedCustomerWithPackage("cust-1", 2)

	req := bulkRequest("slot-1", "slot-2", "slot-3")
	req.Customer.CustomerID = "cust-1"

	result, err := h.engine.CreateBookingGroup(context.Background(), testTenant, req)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Bookings) != 3 {
		t.Fatalf("created %d bookings, want 3", len(result.Bookings))
	}

	coveredTotal, paidTotal, priceTotal := 0, 0, 0.0
	for _, b := range result.Bookings {
		if b.VisitorCount != 1 {
			t.Errorf("booking %s has visitorCount %d, want 1", b.ID, b.VisitorCount)
		}
		if b.BookingGroupID != result.BookingGroupID {
			t.Errorf("booking %s carries group %q, want %q", b.ID, b.BookingGroupID, result.BookingGroupID)
		}
		coveredTotal += b.PackageCoveredQuantity
		paidTotal += b.PaidQuantity
		priceTotal += b.TotalPrice
	}
	// 2 covered by the package, 1 paid at 15.
	if coveredTotal != 2 || paidTotal != 1 {
		t.Errorf("group split = (%d covered, %d paid), want (2, 1)", coveredTotal, paidTotal)
	}
	if priceTotal != 15 {
		t.Errorf("group price = %v, want 15", priceTotal)
	}

	for _, slotID := range []string{"slot-1", "slot-2", "slot-3"} {
		slot := h.store.slotSnapshot(slotID)
		if slot.AvailableCapacity != 2 {
			t.Errorf("%s available = %d, want 2", slotID, slot.AvailableCapacity)
		}
	}
	usage := h.store.usageSnapshot("sub-cust-1", testService)
	if usage.RemainingQuantity != 0 {
		t.Errorf("usage remaining = %d, want 0", usage.RemainingQuantity)
	}
}

func TestCreateBookingGroupAllOrNothing(t *testing.T) {
	h := newEngineHarness()
	h.seedService(15)
	h.seedSlot("slot-1", 3)
	h.seedSlot("slot-2", 3)
	h.seedSlot("slot-3", 3)

	// Drain slot-2 between the pre-check and... actually before the call:
	// the pre-check already rejects it, which is the same contract.
	h.store.mu.Lock()
	h.store.slots["slot-2"].AvailableCapacity = 0
	h.store.slots["slot-2"].BookedCount = 3
	h.store.mu.Unlock()

	_, err := h.engine.CreateBookingGroup(context.Background(), testTenant, bulkRequest("slot-1", "slot-2", "slot-3"))
	var conflict *ConflictError
	if !errors.As(err, &conflict) || conflict.Reason != ConflictCapacity {
		t.Fatalf("err = %v, want capacity conflict", err)
	}

	if h.store.bookingCount() != 0 {
		t.Error("failed group left bookings behind")
	}
	for _, slotID := range []string{"slot-1", "slot-3"} {
		slot := h.store.slotSnapshot(slotID)
		if slot.AvailableCapacity != 3 || slot.BookedCount != 0 {
			t.Errorf("%s was mutated by the failed group: (avail %d, booked %d)", slotID, slot.AvailableCapacity, slot.BookedCount)
		}
	}
}

func TestCreateGroupTransactionallyRollsBackReservations(t *testing.T) {
	h := newEngineHarness()
	h.seedSlot("slot-1", 3)
	h.seedSlot("slot-2", 0)
	repo := &fakeBookingRepo{store: h.store}

	group := []models.Booking{
		{ID: "b1", TenantID: testTenant, SlotID: "slot-1", VisitorCount: 1, Status: models.BookingStatusConfirmed},
		{ID: "b2", TenantID: testTenant, SlotID: "slot-2", VisitorCount: 1, Status: models.BookingStatusConfirmed},
	}
	err := repo.CreateGroupTransactionally(context.Background(), group, nil)
	if err == nil {
		t.Fatal("expected the second reservation to fail")
	}

	slot1 := h.store.slotSnapshot("slot-1")
	if slot1.AvailableCapacity != 3 || slot1.BookedCount != 0 {
		t.Errorf("slot-1 not rolled back: (avail %d, booked %d)", slot1.AvailableCapacity, slot1.BookedCount)
	}
	if h.store.bookingCount() != 0 {
		t.Error("rolled-back group left bookings behind")
	}
}

func TestCreateBookingGroupDuplicateID(t *testing.T) {
	h := newEngineHarness()
	h.seedService(15)
	h.seedSlot("slot-1", 3)
	h.seedSlot("slot-2", 3)

	req := bulkRequest("slot-1")
	req.BookingGroupID = "group-1"
	if _, err := h.engine.CreateBookingGroup(context.Background(), testTenant, req); err != nil {
		t.Fatal(err)
	}

	req2 := bulkRequest("slot-2")
	req2.BookingGroupID = "group-1"
	_, err := h.engine.CreateBookingGroup(context.Background(), testTenant, req2)
	var conflict *ConflictError
	if !errors.As(err, &conflict) || conflict.Reason != ConflictDuplicate {
		t.Fatalf("err = %v, want duplicate conflict", err)
	}
	if h.store.bookingCount() != 1 {
		t.Errorf("duplicate retry changed booking count to %d", h.store.bookingCount())
	}
}

func TestCreateBookingGroupSlotCountMismatch(t *testing.T) {
	h := newEngineHarness()
	h.seedService(15)
	h.seedSlot("slot-1", 3)

	req := bulkRequest("slot-1")
	req.VisitorCount = 2

	_, err := h.engine.CreateBookingGroup(context.Background(), testTenant, req)
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}
