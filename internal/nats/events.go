package nats

import (
	"time"

	"github.com/google/uuid"
)

// UsageEvent is published for every ledger decision on the metered listing.
// The audit consumer persists these into audit_logs.
type UsageEvent struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	Day          time.Time `json:"day"`
	Page         int       `json:"page"`
	Outcome      string    `json:"outcome"`
	Reason       string    `json:"reason,omitempty"`
	ChargedCount int       `json:"charged_count"`
	DailyLimit   int       `json:"daily_limit"`
	OccurredAt   time.Time `json:"occurred_at"`
}
