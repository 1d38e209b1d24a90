package models

// Fire-and-forget task payloads consumed by the background worker. Their
// delivery never gates a booking response.

// TicketTaskPayload asks the worker to issue (or reissue) a ticket artifact.
type TicketTaskPayload struct {
	TenantID  string `json:"tenantId"`
	BookingID string `json:"bookingId"`
	Action    string `json:"action"` // "created" or "rescheduled"
}

// InvoiceTaskPayload is emitted only when money is owed
// (paidQuantity > 0 and totalPrice > 0).
type InvoiceTaskPayload struct {
	TenantID     string  `json:"tenantId"`
	BookingID    string  `json:"bookingId"`
	PaidQuantity int     `json:"paidQuantity"`
	TotalPrice   float64 `json:"totalPrice"`
}

// ExhaustedTaskPayload records a drained entitlement, once per
// (subscription, service) pair.
type ExhaustedTaskPayload struct {
	TenantID       string `json:"tenantId"`
	SubscriptionID string `json:"subscriptionId"`
	ServiceID      string `json:"serviceId"`
}

// Ticket actions.
const (
	TicketActionCreated     = "created"
	TicketActionRescheduled = "rescheduled"
)
