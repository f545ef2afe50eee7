// internal/models/subscription.go
package models

import "time"

type SubscriptionPlan string

const (
	PlanLimited   SubscriptionPlan = "limited"
	PlanUnlimited SubscriptionPlan = "unlimited"
)

type SubscriptionStatus string

const (
	SubscriptionActive  SubscriptionStatus = "active"
	SubscriptionPending SubscriptionStatus = "pending"
	SubscriptionNone    SubscriptionStatus = "none"
)

// Subscription is the user's current plan.
type Subscription struct {
	ID     int64              `json:"id"`
	Plan   SubscriptionPlan   `json:"plan"`
	Status SubscriptionStatus `json:"status"`
	Price  int64              `json:"price"`
}

// SubscriptionMethod is a plan offered for purchase.
type SubscriptionMethod struct {
	ID          int64            `json:"id"`
	Plan        SubscriptionPlan `json:"plan"`
	Name        string           `json:"name"`
	Price       int64            `json:"price"`
	Description string           `json:"description"`
}

type SubscriptionHistoryEntry struct {
	ID        int64              `json:"id"`
	Plan      SubscriptionPlan   `json:"plan"`
	Status    SubscriptionStatus `json:"status"`
	Price     int64              `json:"price"`
	CreatedAt time.Time          `json:"created_at"`
}
