package models

import "time"

// Booking statuses.
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCheckedIn = "checked_in"
	BookingStatusCompleted = "completed"
	BookingStatusCancelled = "cancelled"
)

// Payment statuses.
const (
	PaymentStatusUnpaid     = "unpaid"
	PaymentStatusPaid       = "paid"
	PaymentStatusPaidManual = "paid_manual"
)

// Booking represents a confirmed booking record.
//
// Invariants: PackageCoveredQuantity + PaidQuantity == VisitorCount, and
// PaidQuantity > 0 exactly when TotalPrice > 0.
type Booking struct {
	ID             string `bson:"id" json:"id"`
	TenantID       string `bson:"tenantId" json:"tenantId"`
	ServiceID      string `bson:"serviceId" json:"serviceId"`
	SlotID         string `bson:"slotId" json:"slotId"`
	EmployeeID     string `bson:"employeeId" json:"employeeId"`
	CustomerID     string `bson:"customerId,omitempty" json:"customerId,omitempty"` // empty for guest bookings
	CustomerName   string `bson:"customerName" json:"customerName"`
	CustomerPhone  string `bson:"customerPhone" json:"customerPhone"` // E.164
	CustomerEmail  string `bson:"customerEmail,omitempty" json:"customerEmail,omitempty"`
	VisitorCount   int    `bson:"visitorCount" json:"visitorCount"`
	AdultCount     int    `bson:"adultCount" json:"adultCount"` // advisory breakdown only
	ChildCount     int    `bson:"childCount" json:"childCount"`

	PackageCoveredQuantity int     `bson:"packageCoveredQuantity" json:"packageCoveredQuantity"`
	PaidQuantity           int     `bson:"paidQuantity" json:"paidQuantity"`
	TotalPrice             float64 `bson:"totalPrice" json:"totalPrice"`
	SubscriptionID         string  `bson:"subscriptionId,omitempty" json:"subscriptionId,omitempty"` // entitlement debited, if any

	Status         string `bson:"status" json:"status"`
	PaymentStatus  string `bson:"paymentStatus" json:"paymentStatus"`
	BookingGroupID string `bson:"bookingGroupId,omitempty" json:"bookingGroupId,omitempty"` // links siblings of one bulk request

	TicketToken string    `bson:"ticketToken,omitempty" json:"-"` // cleared on reschedule so stale tickets fail verification
	Date        string    `bson:"date" json:"date"`
	Start       int       `bson:"start" json:"start"`
	End         int       `bson:"end" json:"end"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

// HoldsCapacity reports whether the booking still holds slot capacity.
func (b Booking) HoldsCapacity() bool {
	return b.Status == BookingStatusPending || b.Status == BookingStatusConfirmed
}

// PaymentCollected reports whether money was collected for the booking.
func (b Booking) PaymentCollected() bool {
	return b.PaymentStatus == PaymentStatusPaid || b.PaymentStatus == PaymentStatusPaidManual
}

// UsageDebit names the single subscription-usage row a booking transaction debits.
type UsageDebit struct {
	SubscriptionID string
	ServiceID      string
	Quantity       int
}

// BookingMove carries the atomic reschedule unit: release the old slot,
// reserve the new one, and repoint the booking, all in one transaction.
type BookingMove struct {
	TenantID      string
	BookingID     string
	OldSlotID     string
	NewSlotID     string
	NewEmployeeID string
	NewDate       string
	NewStart      int
	NewEnd        int
	Quantity      int
	NewTotalPrice float64
}
