package models

// Customer is an identity record resolved by phone or id. Bookings may exist
// without one (guest bookings).
type Customer struct {
	ID       string `bson:"id" json:"id"`
	TenantID string `bson:"tenantId" json:"tenantId"`
	Name     string `bson:"name" json:"name"`
	Phone    string `bson:"phone" json:"phone"` // E.164
	Email    string `bson:"email,omitempty" json:"email,omitempty"`
}

// CustomerInfo is the caller-supplied identity on a booking request.
type CustomerInfo struct {
	CustomerID string `json:"customerId,omitempty"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Email      string `json:"email,omitempty"`
}
