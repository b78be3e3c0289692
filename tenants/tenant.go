package tenants

import "time"

const (
	SubscriptionTrial     = "trial"
	SubscriptionActive    = "active"
	SubscriptionPastDue   = "past_due"
	SubscriptionCancelled = "cancelled"
)

// Settings holds the tenant's business configuration shown across the console.
type Settings struct {
	Currency      string  `json:"currency"`
	TaxRate       float64 `json:"tax_rate"`
	Timezone      string  `json:"timezone"`
	ReceiptFooter string  `json:"receipt_footer,omitempty"`
}

type Subscription struct {
	Plan     string    `json:"plan"`
	Status   string    `json:"status"`
	RenewsAt time.Time `json:"renews_at,omitempty"`
}

// Active reports whether the subscription currently entitles the tenant to the console.
func (s Subscription) Active(now time.Time) bool {
	switch s.Status {
	case SubscriptionTrial, SubscriptionActive:
		return s.RenewsAt.IsZero() || now.Before(s.RenewsAt)
	case SubscriptionPastDue:
		return true
	}
	return false
}

// Tenant represents a retail organisation using the console.
type Tenant struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Settings     Settings     `json:"settings"`
	Subscription Subscription `json:"subscription"`
}

// DefaultSettings are applied to newly registered tenants
func DefaultSettings() Settings {
	return Settings{
		Currency: "USD",
		TaxRate:  0,
		Timezone: "UTC",
	}
}

// Clone returns a copy of the tenant
func (t *Tenant) Clone() *Tenant {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
