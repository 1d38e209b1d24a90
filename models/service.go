package models

// Service is a catalog entity. The booking core reads it for pricing and
// tenant ownership; it is never mutated here.
type Service struct {
	ID              string  `bson:"id" json:"id"`
	TenantID        string  `bson:"tenantId" json:"tenantId"`
	Name            string  `bson:"name" json:"name"`
	UnitPrice       float64 `bson:"unitPrice" json:"unitPrice"`             // price per visitor
	DefaultCapacity int     `bson:"defaultCapacity" json:"defaultCapacity"` // default visitor capacity per slot
}
