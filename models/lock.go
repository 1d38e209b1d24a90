package models

import "time"

// ReservationLock is a short-lived, session-scoped hold on slot capacity used
// during a checkout flow. Advisory only: it never decrements slot capacity.
type ReservationLock struct {
	ID               string    `json:"id"`
	TenantID         string    `json:"tenantId"`
	SlotID           string    `json:"slotId"`
	SessionID        string    `json:"sessionId"`
	ReservedCapacity int       `json:"reservedCapacity"`
	CreatedAt        time.Time `json:"createdAt"`
	ExpiresAt        time.Time `json:"expiresAt"`
}

// Expired reports whether the lock has passed its expiry.
func (l ReservationLock) Expired(now time.Time) bool {
	return !now.Before(l.ExpiresAt)
}

// LockStatus is the validation result polled by checkout UIs.
type LockStatus struct {
	Valid            bool `json:"valid"`
	SecondsRemaining int  `json:"secondsRemaining"`
}

// LockRequest is the acquire payload.
type LockRequest struct {
	SlotID           string `json:"slotId" binding:"required"`
	SessionID        string `json:"sessionId" binding:"required"`
	ReservedCapacity int    `json:"reservedCapacity"`
	TTLSeconds       int    `json:"ttlSeconds,omitempty"`
}
