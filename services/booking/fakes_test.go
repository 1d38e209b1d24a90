package booking

import (
	"context"
	"sort"
	"sync"
	"time"

	bookingRepo "slotify/database/repository/booking"
	slotRepo "slotify/database/repository/slot"
	subscriptionRepo "slotify/database/repository/subscription"
	"slotify/models"
)

// fakeStore is an in-memory stand-in for the Mongo collections. One mutex
// guards every mutation, which gives the fakes the same serializable
// semantics the session transactions provide in production.
type fakeStore struct {
	mu        sync.Mutex
	slots     map[string]*models.Slot
	bookings  map[string]*models.Booking
	usages    map[string]*models.SubscriptionUsage // key: subscriptionID|serviceID
	subs      map[string]*models.PackageSubscription
	customers map[string]*models.Customer
	services  map[string]*models.Service
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		slots:     make(map[string]*models.Slot),
		bookings:  make(map[string]*models.Booking),
		usages:    make(map[string]*models.SubscriptionUsage),
		subs:      make(map[string]*models.PackageSubscription),
		customers: make(map[string]*models.Customer),
		services:  make(map[string]*models.Service),
	}
}

func usageKey(subscriptionID, serviceID string) string {
	return subscriptionID + "|" + serviceID
}

func (s *fakeStore) addSlot(slot models.Slot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := slot
	s.slots[slot.ID] = &copied
}

func (s *fakeStore) addService(svc models.Service) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := svc
	s.services[svc.ID] = &copied
}

func (s *fakeStore) addCustomer(c models.Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := c
	s.customers[c.ID] = &copied
}

func (s *fakeStore) addSubscription(sub models.PackageSubscription, usage models.SubscriptionUsage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copiedSub := sub
	s.subs[sub.ID] = &copiedSub
	copiedUsage := usage
	s.usages[usageKey(usage.SubscriptionID, usage.ServiceID)] = &copiedUsage
}

func (s *fakeStore) slotSnapshot(slotID string) models.Slot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.slots[slotID]
}

func (s *fakeStore) usageSnapshot(subscriptionID, serviceID string) models.SubscriptionUsage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.usages[usageKey(subscriptionID, serviceID)]
}

func (s *fakeStore) bookingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bookings)
}

// reserveLocked and releaseLocked mirror the conditional-update guards of the
// Mongo repository. Callers must hold s.mu.
func (s *fakeStore) reserveLocked(slotID string, quantity int) error {
	slot, ok := s.slots[slotID]
	if !ok || !slot.IsAvailable || slot.AvailableCapacity < quantity {
		return slotRepo.ErrCapacityExhausted
	}
	slot.AvailableCapacity -= quantity
	slot.BookedCount += quantity
	return nil
}

func (s *fakeStore) releaseLocked(slotID string, quantity int) {
	slot, ok := s.slots[slotID]
	if !ok {
		return
	}
	if slot.BookedCount >= quantity {
		slot.AvailableCapacity += quantity
		slot.BookedCount -= quantity
		return
	}
	slot.AvailableCapacity = slot.OriginalCapacity
	slot.BookedCount = 0
}

func (s *fakeStore) debitLocked(debit *models.UsageDebit) error {
	usage, ok := s.usages[usageKey(debit.SubscriptionID, debit.ServiceID)]
	if !ok || usage.RemainingQuantity < debit.Quantity {
		return subscriptionRepo.ErrEntitlementExhausted
	}
	usage.RemainingQuantity -= debit.Quantity
	usage.UsedQuantity += debit.Quantity
	return nil
}

func (s *fakeStore) creditLocked(credit *models.UsageDebit) {
	usage, ok := s.usages[usageKey(credit.SubscriptionID, credit.ServiceID)]
	if !ok {
		return
	}
	usage.RemainingQuantity += credit.Quantity
	usage.UsedQuantity -= credit.Quantity
	if usage.RemainingQuantity > usage.OriginalQuantity {
		usage.RemainingQuantity = usage.OriginalQuantity
	}
	if usage.UsedQuantity < 0 {
		usage.UsedQuantity = 0
	}
}

// --- slot repository ---

type fakeSlotRepo struct{ store *fakeStore }

func (r *fakeSlotRepo) CreateMany(ctx context.Context, slots []models.Slot) ([]string, error) {
	ids := make([]string, 0, len(slots))
	for _, slot := range slots {
		r.store.addSlot(slot)
		ids = append(ids, slot.ID)
	}
	return ids, nil
}

func (r *fakeSlotRepo) GetByID(ctx context.Context, tenantID, slotID string) (*models.Slot, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	slot, ok := r.store.slots[slotID]
	if !ok || slot.TenantID != tenantID {
		return nil, nil
	}
	copied := *slot
	return &copied, nil
}

func (r *fakeSlotRepo) GetBookable(ctx context.Context, tenantID, serviceID, date string) ([]models.Slot, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []models.Slot
	for _, slot := range r.store.slots {
		if slot.TenantID == tenantID && slot.ServiceID == serviceID && slot.Date == date &&
			slot.IsAvailable && slot.AvailableCapacity > 0 {
			out = append(out, *slot)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out, nil
}

func (r *fakeSlotRepo) Reserve(ctx context.Context, tenantID, slotID string, quantity int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.store.reserveLocked(slotID, quantity)
}

func (r *fakeSlotRepo) Release(ctx context.Context, tenantID, slotID string, quantity int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.releaseLocked(slotID, quantity)
	return nil
}

func (r *fakeSlotRepo) SetAvailability(ctx context.Context, tenantID, slotID string, available bool, reason string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if slot, ok := r.store.slots[slotID]; ok {
		slot.IsAvailable = available
		slot.BlockReason = reason
	}
	return nil
}

func (r *fakeSlotRepo) EnsureIndexes() error { return nil }

// --- booking repository ---

type fakeBookingRepo struct{ store *fakeStore }

func (r *fakeBookingRepo) GetByID(ctx context.Context, tenantID, bookingID string) (*models.Booking, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	b, ok := r.store.bookings[bookingID]
	if !ok || b.TenantID != tenantID {
		return nil, nil
	}
	copied := *b
	return &copied, nil
}

func (r *fakeBookingRepo) GetByGroupID(ctx context.Context, tenantID, groupID string) ([]models.Booking, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []models.Booking
	for _, b := range r.store.bookings {
		if b.TenantID == tenantID && b.BookingGroupID == groupID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) GroupExists(ctx context.Context, tenantID, groupID string) (bool, error) {
	bookings, _ := r.GetByGroupID(ctx, tenantID, groupID)
	return len(bookings) > 0, nil
}

func (r *fakeBookingRepo) CreateTransactionally(ctx context.Context, booking *models.Booking, debit *models.UsageDebit) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.reserveLocked(booking.SlotID, booking.VisitorCount); err != nil {
		return err
	}
	if debit != nil {
		if err := r.store.debitLocked(debit); err != nil {
			r.store.releaseLocked(booking.SlotID, booking.VisitorCount)
			return err
		}
	}
	copied := *booking
	r.store.bookings[booking.ID] = &copied
	return nil
}

func (r *fakeBookingRepo) CreateGroupTransactionally(ctx context.Context, bookings []models.Booking, debit *models.UsageDebit) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	reserved := make([]models.Booking, 0, len(bookings))
	rollback := func() {
		for _, b := range reserved {
			r.store.releaseLocked(b.SlotID, b.VisitorCount)
		}
	}
	for _, b := range bookings {
		if err := r.store.reserveLocked(b.SlotID, b.VisitorCount); err != nil {
			rollback()
			return err
		}
		reserved = append(reserved, b)
	}
	if debit != nil {
		if err := r.store.debitLocked(debit); err != nil {
			rollback()
			return err
		}
	}
	for i := range bookings {
		copied := bookings[i]
		r.store.bookings[copied.ID] = &copied
	}
	return nil
}

func (r *fakeBookingRepo) MoveTransactionally(ctx context.Context, move models.BookingMove) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.releaseLocked(move.OldSlotID, move.Quantity)
	if err := r.store.reserveLocked(move.NewSlotID, move.Quantity); err != nil {
		// Transaction abort: the release above never happened.
		r.store.reserveLocked(move.OldSlotID, move.Quantity)
		return err
	}

	b, ok := r.store.bookings[move.BookingID]
	if !ok || b.SlotID != move.OldSlotID {
		r.store.releaseLocked(move.NewSlotID, move.Quantity)
		r.store.reserveLocked(move.OldSlotID, move.Quantity)
		return context.Canceled
	}
	b.SlotID = move.NewSlotID
	b.EmployeeID = move.NewEmployeeID
	b.Date = move.NewDate
	b.Start = move.NewStart
	b.End = move.NewEnd
	b.TotalPrice = move.NewTotalPrice
	b.TicketToken = ""
	b.UpdatedAt = time.Now()
	return nil
}

func (r *fakeBookingRepo) DeleteTransactionally(ctx context.Context, booking *models.Booking, credit *models.UsageDebit) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.bookings[booking.ID]; !ok {
		// Transaction abort: nothing is released or credited.
		return bookingRepo.ErrBookingGone
	}
	if booking.HoldsCapacity() {
		r.store.releaseLocked(booking.SlotID, booking.VisitorCount)
	}
	if credit != nil {
		r.store.creditLocked(credit)
	}
	delete(r.store.bookings, booking.ID)
	return nil
}

func (r *fakeBookingRepo) SetTicketToken(ctx context.Context, tenantID, bookingID, token string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if b, ok := r.store.bookings[bookingID]; ok && b.TenantID == tenantID {
		b.TicketToken = token
	}
	return nil
}

func (r *fakeBookingRepo) EnsureIndexes() error { return nil }

// --- subscription repository ---

type fakeSubscriptionRepo struct{ store *fakeStore }

func (r *fakeSubscriptionRepo) GetActiveUsages(ctx context.Context, tenantID, customerID, serviceID string) ([]models.SubscriptionUsage, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	now := time.Now()
	var out []models.SubscriptionUsage
	for _, sub := range r.store.subs {
		if sub.TenantID != tenantID || sub.CustomerID != customerID || !sub.Active {
			continue
		}
		if sub.ExpiresAt != nil && sub.ExpiresAt.Before(now) {
			continue
		}
		if usage, ok := r.store.usages[usageKey(sub.ID, serviceID)]; ok {
			out = append(out, *usage)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubscriptionID < out[j].SubscriptionID })
	return out, nil
}

func (r *fakeSubscriptionRepo) DebitUsage(ctx context.Context, subscriptionID, serviceID string, quantity int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.store.debitLocked(&models.UsageDebit{SubscriptionID: subscriptionID, ServiceID: serviceID, Quantity: quantity})
}

func (r *fakeSubscriptionRepo) CreditUsage(ctx context.Context, subscriptionID, serviceID string, quantity int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.creditLocked(&models.UsageDebit{SubscriptionID: subscriptionID, ServiceID: serviceID, Quantity: quantity})
	return nil
}

func (r *fakeSubscriptionRepo) MarkExhaustedNotified(ctx context.Context, subscriptionID, serviceID string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	usage, ok := r.store.usages[usageKey(subscriptionID, serviceID)]
	if !ok || usage.ExhaustedNotified {
		return false, nil
	}
	usage.ExhaustedNotified = true
	return true, nil
}

func (r *fakeSubscriptionRepo) EnsureIndexes() error { return nil }

// --- customer and catalog repositories ---

type fakeCustomerRepo struct{ store *fakeStore }

func (r *fakeCustomerRepo) GetByID(ctx context.Context, tenantID, customerID string) (*models.Customer, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c, ok := r.store.customers[customerID]
	if !ok || c.TenantID != tenantID {
		return nil, nil
	}
	copied := *c
	return &copied, nil
}

func (r *fakeCustomerRepo) GetByPhone(ctx context.Context, tenantID, phone string) (*models.Customer, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, c := range r.store.customers {
		if c.TenantID == tenantID && c.Phone == phone {
			copied := *c
			return &copied, nil
		}
	}
	return nil, nil
}

type fakeCatalogRepo struct{ store *fakeStore }

func (r *fakeCatalogRepo) GetServiceByID(ctx context.Context, serviceID string) (*models.Service, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	svc, ok := r.store.services[serviceID]
	if !ok {
		return nil, nil
	}
	copied := *svc
	return &copied, nil
}

// --- lock manager ---

// fakeLockManager verifies against a fixed set of granted locks.
type fakeLockManager struct {
	mu       sync.Mutex
	granted  map[string]models.ReservationLock // lockID -> lock
	released []string
}

func newFakeLockManager() *fakeLockManager {
	return &fakeLockManager{granted: make(map[string]models.ReservationLock)}
}

func (m *fakeLockManager) grant(lock models.ReservationLock) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.granted[lock.ID] = lock
}

func (m *fakeLockManager) Acquire(ctx context.Context, tenantID string, req models.LockRequest) (*models.ReservationLock, error) {
	lock := models.ReservationLock{
		ID:               "lock-" + req.SlotID,
		TenantID:         tenantID,
		SlotID:           req.SlotID,
		SessionID:        req.SessionID,
		ReservedCapacity: req.ReservedCapacity,
		ExpiresAt:        time.Now().Add(time.Minute),
	}
	m.grant(lock)
	return &lock, nil
}

func (m *fakeLockManager) Validate(ctx context.Context, lockID, sessionID string) (*models.LockStatus, error) {
	if err := m.Verify(ctx, lockID, sessionID, ""); err != nil {
		return &models.LockStatus{Valid: false}, nil
	}
	return &models.LockStatus{Valid: true, SecondsRemaining: 60}, nil
}

func (m *fakeLockManager) Release(ctx context.Context, lockID, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.granted, lockID)
	m.released = append(m.released, lockID)
	return nil
}

func (m *fakeLockManager) Verify(ctx context.Context, lockID, sessionID, slotID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.granted[lockID]
	if !ok || lock.SessionID != sessionID {
		return context.Canceled
	}
	if slotID != "" && lock.SlotID != slotID {
		return context.Canceled
	}
	if time.Now().After(lock.ExpiresAt) {
		return context.Canceled
	}
	return nil
}

func (m *fakeLockManager) HeldCapacity(ctx context.Context, slotID, excludeSession string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	held := 0
	for _, lock := range m.granted {
		if lock.SlotID == slotID && lock.SessionID != excludeSession && time.Now().Before(lock.ExpiresAt) {
			held += lock.ReservedCapacity
		}
	}
	return held, nil
}

// --- event emitter ---

type emittedEvent struct {
	kind           string // "ticket", "invoice", "exhausted"
	bookingID      string
	subscriptionID string
	action         string
}

type fakeEmitter struct {
	mu     sync.Mutex
	events []emittedEvent
}

func (e *fakeEmitter) TicketIssued(tenantID, bookingID, action string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, emittedEvent{kind: "ticket", bookingID: bookingID, action: action})
}

func (e *fakeEmitter) InvoiceDue(tenantID, bookingID string, paidQuantity int, totalPrice float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, emittedEvent{kind: "invoice", bookingID: bookingID})
}

func (e *fakeEmitter) PackageExhausted(tenantID, subscriptionID, serviceID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, emittedEvent{kind: "exhausted", subscriptionID: subscriptionID})
}

// waitFor polls until an event matching the predicate shows up. Post-commit
// hand-offs run on their own goroutine, so assertions need a grace window.
func (e *fakeEmitter) waitFor(match func(emittedEvent) bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		e.mu.Lock()
		for _, ev := range e.events {
			if match(ev) {
				e.mu.Unlock()
				return true
			}
		}
		e.mu.Unlock()
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

// --- harness ---

type engineHarness struct {
	store   *fakeStore
	engine  *DefaultBookingEngine
	locks   *fakeLockManager
	emitter *fakeEmitter
}

func newEngineHarness() *engineHarness {
	store := newFakeStore()
	locks := newFakeLockManager()
	emitter := &fakeEmitter{}
	engine := &DefaultBookingEngine{
		Bookings:      &fakeBookingRepo{store: store},
		Slots:         &fakeSlotRepo{store: store},
		Subscriptions: &fakeSubscriptionRepo{store: store},
		Customers:     &fakeCustomerRepo{store: store},
		Catalog:       &fakeCatalogRepo{store: store},
		Locks:         locks,
		Events:        emitter,
	}
	return &engineHarness{store: store, engine: engine, locks: locks, emitter: emitter}
}

const (
	testTenant  = "tenant-1"
	testService = "svc-1"
)

func futureDate() string {
	return time.Now().AddDate(0, 0, 7).Format("2006-01-02")
}

func (h *engineHarness) seedService(price float64) {
	h.store.addService(models.Service{
		ID:              testService,
		TenantID:        testTenant,
		Name:            "Swim Session",
		UnitPrice:       price,
		DefaultCapacity: 10,
	})
}

func (h *engineHarness) seedSlot(id string, capacity int) {
	h.store.addSlot(models.Slot{
		ID:                id,
		TenantID:          testTenant,
		ServiceID:         testService,
		EmployeeID:        "emp-1",
		Date:              futureDate(),
		Start:             600,
		End:               660,
		OriginalCapacity:  capacity,
		AvailableCapacity: capacity,
		IsAvailable:       true,
	})
}

func (h *engineHarness) seedCustomerWithPackage(customerID string, remaining int) {
	h.store.addCustomer(models.Customer{
		ID:       customerID,
		TenantID: testTenant,
		Name:     "Dana Price",
		Phone:    "+12125550142",
	})
	h.store.addSubscription(
		models.PackageSubscription{
			ID:         "sub-" + customerID,
			TenantID:   testTenant,
			CustomerID: customerID,
			Name:       "10-visit pass",
			Active:     true,
		},
		models.SubscriptionUsage{
			ID:                "usage-" + customerID,
			SubscriptionID:    "sub-" + customerID,
			ServiceID:         testService,
			OriginalQuantity:  10,
			UsedQuantity:      10 - remaining,
			RemainingQuantity: remaining,
		},
	)
}
