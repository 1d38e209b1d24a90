package reservation

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"

	slotRepo "slotify/database/repository/slot"
	"slotify/models"
)

var (
	// ErrLockConflict means the slot's effective capacity (available minus
	// other sessions' unexpired holds) cannot cover the request.
	ErrLockConflict = errors.New("insufficient effective capacity for reservation lock")
	// ErrLockNotFound means the lock does not exist or the session does not own it.
	ErrLockNotFound = errors.New("reservation lock not found")
	// ErrLockInvalid means a supplied lock is expired, foreign, or bound to
	// a different slot.
	ErrLockInvalid = errors.New("reservation lock invalid")
	// ErrSlotNotFound means the lock target slot does not exist.
	ErrSlotNotFound = errors.New("slot not found")
)

// LockManager manages short-lived, session-scoped checkout holds. Locks are
// advisory: they never decrement slot capacity, and lock absence never blocks
// a booking. Expiry is passive via Redis key TTLs.
type LockManager interface {
	Acquire(ctx context.Context, tenantID string, req models.LockRequest) (*models.ReservationLock, error)
	Validate(ctx context.Context, lockID, sessionID string) (*models.LockStatus, error)
	Release(ctx context.Context, lockID, sessionID string) error
	// Verify checks that a caller-supplied lock is live, owned by the
	// session and bound to the slot. Used by the booking engine; read-only.
	Verify(ctx context.Context, lockID, sessionID, slotID string) error
	// HeldCapacity sums unexpired holds on a slot, excluding one session.
	HeldCapacity(ctx context.Context, slotID, excludeSession string) (int, error)
}

// DefaultLockManager implements LockManager on Redis.
type DefaultLockManager struct {
	Cache *redis.Client
	Slots slotRepo.SlotRepository
	TTL   time.Duration
}

func NewLockManager(cache *redis.Client, slots slotRepo.SlotRepository, ttl time.Duration) *DefaultLockManager {
	return &DefaultLockManager{Cache: cache, Slots: slots, TTL: ttl}
}
