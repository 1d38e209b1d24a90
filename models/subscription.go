package models

import "time"

// PackageSubscription is a customer's purchased service bundle, active between
// purchase and an optional expiry.
type PackageSubscription struct {
	ID          string     `bson:"id" json:"id"`
	TenantID    string     `bson:"tenantId" json:"tenantId"`
	CustomerID  string     `bson:"customerId" json:"customerId"`
	Name        string     `bson:"name" json:"name"`
	PurchasedAt time.Time  `bson:"purchasedAt" json:"purchasedAt"`
	ExpiresAt   *time.Time `bson:"expiresAt,omitempty" json:"expiresAt,omitempty"`
	Active      bool       `bson:"active" json:"active"`
}

// SubscriptionUsage tracks entitlement consumption per (subscription, service)
// pair. Invariant: UsedQuantity + RemainingQuantity == OriginalQuantity.
type SubscriptionUsage struct {
	ID                string `bson:"id" json:"id"`
	SubscriptionID    string `bson:"subscriptionId" json:"subscriptionId"`
	ServiceID         string `bson:"serviceId" json:"serviceId"`
	OriginalQuantity  int    `bson:"originalQuantity" json:"originalQuantity"`
	UsedQuantity      int    `bson:"usedQuantity" json:"usedQuantity"`
	RemainingQuantity int    `bson:"remainingQuantity" json:"remainingQuantity"`
	ExhaustedNotified bool   `bson:"exhaustedNotified" json:"exhaustedNotified"`
}

// SubscriptionRemaining is one entry of a coverage breakdown.
type SubscriptionRemaining struct {
	SubscriptionID string `json:"subscriptionId"`
	Remaining      int    `json:"remaining"`
}

// PackageCoverage is the resolver output: how a requested visitor count splits
// between one debited entitlement and cash payment.
type PackageCoverage struct {
	TotalRemaining  int                     `json:"totalRemaining"`
	PerSubscription []SubscriptionRemaining `json:"perSubscription"`
	SubscriptionID  string                  `json:"subscriptionId,omitempty"` // the single entitlement to debit
	Covered         int                     `json:"covered"`
	Paid            int                     `json:"paid"`
	Exhausts        bool                    `json:"exhausts"` // this booking drains the chosen entitlement
}
