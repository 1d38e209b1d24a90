package reservation

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"slotify/utils"
)

// StartSweeper periodically removes stale members from the per-slot lock
// index sets. Correctness never depends on it: expired locks drop out of
// effective-capacity sums the moment their keys expire. This is storage
// hygiene only.
func (m *DefaultLockManager) StartSweeper(ctx context.Context, interval time.Duration) {
	logger := utils.GetLogger()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := m.sweep(ctx); err != nil {
					logger.Warn("reservation lock sweep failed", zap.Error(err))
				}
			}
		}
	}()
}

func (m *DefaultLockManager) sweep(ctx context.Context) error {
	iter := m.Cache.Scan(ctx, 0, slotLocksKey("*"), 100).Iterator()
	for iter.Next(ctx) {
		setKey := iter.Val()
		slotID := strings.TrimPrefix(setKey, slotLocksKey(""))
		// HeldCapacity prunes stale members as a side effect.
		if _, err := m.HeldCapacity(ctx, slotID, ""); err != nil {
			return err
		}
	}
	return iter.Err()
}
