package reservation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"slotify/models"
	"slotify/utils"
)

func lockKey(lockID string) string      { return "reslock:" + lockID }
func slotLocksKey(slotID string) string { return "reslock:slot:" + slotID }

func (m *DefaultLockManager) Acquire(ctx context.Context, tenantID string, req models.LockRequest) (*models.ReservationLock, error) {
	if req.ReservedCapacity < 1 {
		req.ReservedCapacity = 1
	}
	ttl := m.TTL
	if req.TTLSeconds > 0 {
		ttl = time.Duration(req.TTLSeconds) * time.Second
	}

	slot, err := m.Slots.GetByID(ctx, tenantID, req.SlotID)
	if err != nil {
		return nil, fmt.Errorf("failed to load slot: %w", err)
	}
	if slot == nil {
		return nil, ErrSlotNotFound
	}
	if !slot.IsAvailable {
		return nil, ErrLockConflict
	}

	held, err := m.HeldCapacity(ctx, req.SlotID, req.SessionID)
	if err != nil {
		return nil, err
	}
	if slot.AvailableCapacity-held < req.ReservedCapacity {
		return nil, ErrLockConflict
	}

	now := time.Now()
	lock := models.ReservationLock{
		ID:               uuid.New().String(),
		TenantID:         tenantID,
		SlotID:           req.SlotID,
		SessionID:        req.SessionID,
		ReservedCapacity: req.ReservedCapacity,
		CreatedAt:        now,
		ExpiresAt:        now.Add(ttl),
	}

	data, err := json.Marshal(lock)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal reservation lock: %w", err)
	}
	if err := m.Cache.Set(ctx, lockKey(lock.ID), data, ttl).Err(); err != nil {
		return nil, fmt.Errorf("failed to store reservation lock: %w", err)
	}
	if err := m.Cache.SAdd(ctx, slotLocksKey(req.SlotID), lock.ID).Err(); err != nil {
		return nil, fmt.Errorf("failed to index reservation lock: %w", err)
	}
	// Keep the index set alive at least as long as its newest member. The
	// set is advisory; stale members are swept lazily.
	m.Cache.Expire(ctx, slotLocksKey(req.SlotID), ttl+time.Minute)

	return &lock, nil
}

func (m *DefaultLockManager) Validate(ctx context.Context, lockID, sessionID string) (*models.LockStatus, error) {
	lock, err := m.get(ctx, lockID)
	if err != nil {
		return nil, err
	}
	if lock == nil || lock.SessionID != sessionID {
		return &models.LockStatus{Valid: false}, nil
	}

	remaining := int(time.Until(lock.ExpiresAt).Seconds())
	if remaining <= 0 {
		return &models.LockStatus{Valid: false}, nil
	}
	return &models.LockStatus{Valid: true, SecondsRemaining: remaining}, nil
}

func (m *DefaultLockManager) Release(ctx context.Context, lockID, sessionID string) error {
	lock, err := m.get(ctx, lockID)
	if err != nil {
		return err
	}
	if lock == nil || lock.SessionID != sessionID {
		return ErrLockNotFound
	}

	if err := m.Cache.Del(ctx, lockKey(lockID)).Err(); err != nil {
		return fmt.Errorf("failed to delete reservation lock: %w", err)
	}
	m.Cache.SRem(ctx, slotLocksKey(lock.SlotID), lockID)
	return nil
}

func (m *DefaultLockManager) Verify(ctx context.Context, lockID, sessionID, slotID string) error {
	lock, err := m.get(ctx, lockID)
	if err != nil {
		return err
	}
	if lock == nil {
		return ErrLockInvalid
	}
	if lock.SessionID != sessionID || lock.SlotID != slotID {
		return ErrLockInvalid
	}
	return nil
}

func (m *DefaultLockManager) HeldCapacity(ctx context.Context, slotID, excludeSession string) (int, error) {
	ids, err := m.Cache.SMembers(ctx, slotLocksKey(slotID)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to list slot locks: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = lockKey(id)
	}
	values, err := m.Cache.MGet(ctx, keys...).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to load slot locks: %w", err)
	}

	held := 0
	for i, v := range values {
		if v == nil {
			// Key expired; drop the stale index member in passing.
			m.Cache.SRem(ctx, slotLocksKey(slotID), ids[i])
			continue
		}
		var lock models.ReservationLock
		if err := json.Unmarshal([]byte(v.(string)), &lock); err != nil {
			utils.GetLogger().Warn("corrupt reservation lock entry", zap.String("lockId", ids[i]), zap.Error(err))
			continue
		}
		if excludeSession != "" && lock.SessionID == excludeSession {
			continue
		}
		held += lock.ReservedCapacity
	}
	return held, nil
}

func (m *DefaultLockManager) get(ctx context.Context, lockID string) (*models.ReservationLock, error) {
	data, err := m.Cache.Get(ctx, lockKey(lockID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load reservation lock: %w", err)
	}
	var lock models.ReservationLock
	if err := json.Unmarshal([]byte(data), &lock); err != nil {
		return nil, fmt.Errorf("failed to parse reservation lock: %w", err)
	}
	return &lock, nil
}
