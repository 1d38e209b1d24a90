package models

// BookingRequest is the single-booking create payload.
type BookingRequest struct {
	ServiceID     string       `json:"serviceId" binding:"required"`
	SlotID        string       `json:"slotId" binding:"required"`
	Customer      CustomerInfo `json:"customer"`
	VisitorCount  int          `json:"visitorCount"`
	AdultCount    int          `json:"adultCount,omitempty"` // advisory; defaults to VisitorCount
	ChildCount    int          `json:"childCount,omitempty"`
	LockID        string       `json:"lockId,omitempty"` // optional checkout hold to consume
	SessionID     string       `json:"sessionId,omitempty"`
	PaymentMethod string       `json:"paymentMethod,omitempty"` // staff-entered; marks the booking paid immediately
}

// BulkBookingRequest books one visitor per slot, all-or-nothing.
type BulkBookingRequest struct {
	ServiceID      string       `json:"serviceId" binding:"required"`
	SlotIDs        []string     `json:"slotIds" binding:"required"`
	Customer       CustomerInfo `json:"customer"`
	VisitorCount   int          `json:"visitorCount"`
	BookingGroupID string       `json:"bookingGroupId,omitempty"` // caller-supplied for idempotent retries
	PaymentMethod  string       `json:"paymentMethod,omitempty"`
}

// BookingGroupResult is the bulk-create response.
type BookingGroupResult struct {
	BookingGroupID string    `json:"bookingGroupId"`
	Bookings       []Booking `json:"bookings"`
}

// RescheduleRequest moves a booking to a new slot.
type RescheduleRequest struct {
	NewSlotID string `json:"newSlotId" binding:"required"`
}

// RescheduleResult reports the move.
type RescheduleResult struct {
	Booking      Booking `json:"booking"`
	OldSlotID    string  `json:"oldSlotId"`
	PriceChanged bool    `json:"priceChanged"`
}
