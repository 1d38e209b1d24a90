package models

import "time"

// Slot is a time-bounded, capacity-bearing bookable unit tied to a service
// and (usually) an employee shift. Capacity fields are mutated only by the
// booking, reschedule and deletion engines.
type Slot struct {
	ID                string   `bson:"id" json:"id"`
	TenantID          string   `bson:"tenantId" json:"tenantId"`
	ServiceID         string   `bson:"serviceId" json:"serviceId"`
	EmployeeID        string   `bson:"employeeId" json:"employeeId"`
	ShiftID           string   `bson:"shiftId,omitempty" json:"shiftId,omitempty"`
	Date              string   `bson:"date" json:"date"`   // "2006-01-02"
	Start             int      `bson:"start" json:"start"` // minutes from midnight
	End               int      `bson:"end" json:"end"`     // minutes from midnight
	OriginalCapacity  int      `bson:"originalCapacity" json:"originalCapacity"` // immutable once created
	AvailableCapacity int      `bson:"availableCapacity" json:"availableCapacity"`
	BookedCount       int      `bson:"bookedCount" json:"bookedCount"`
	IsAvailable       bool     `bson:"isAvailable" json:"isAvailable"`
	BlockReason       string   `bson:"blockReason,omitempty" json:"blockReason,omitempty"`
	PriceOverride     *float64 `bson:"priceOverride,omitempty" json:"priceOverride,omitempty"` // per-slot price tier; nil means service unit price
}

// StartTime resolves the slot's date and start minute into a wall-clock time.
func (s Slot) StartTime() (time.Time, error) {
	day, err := time.Parse("2006-01-02", s.Date)
	if err != nil {
		return time.Time{}, err
	}
	return day.Add(time.Duration(s.Start) * time.Minute), nil
}

// InPast reports whether the slot starts before the given instant. Unparseable
// dates count as past so malformed slots are never bookable.
func (s Slot) InPast(now time.Time) bool {
	start, err := s.StartTime()
	if err != nil {
		return true
	}
	return start.Before(now)
}

// UnitPrice returns the effective per-visitor price for bookings in this slot.
func (s Slot) UnitPrice(svc Service) float64 {
	if s.PriceOverride != nil {
		return *s.PriceOverride
	}
	return svc.UnitPrice
}

// AvailableSlotView is the listing shape returned to checkout UIs. Effective
// capacity subtracts unexpired reservation locks and is advisory only.
type AvailableSlotView struct {
	ID                string  `json:"id"`
	ServiceID         string  `json:"serviceId"`
	EmployeeID        string  `json:"employeeId"`
	Date              string  `json:"date"`
	Start             int     `json:"start"`
	End               int     `json:"end"`
	AvailableCapacity int     `json:"availableCapacity"`
	EffectiveCapacity int     `json:"effectiveCapacity"`
	UnitPrice         float64 `json:"unitPrice"`
}
