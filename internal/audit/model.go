package audit

import (
	"time"

	"github.com/google/uuid"
)

// Log is one persisted ledger decision, written by the event consumer.
type Log struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	Day          time.Time `json:"day"`
	Page         int       `json:"page"`
	Outcome      string    `json:"outcome"`
	Reason       string    `json:"reason,omitempty"`
	ChargedCount int       `json:"charged_count"`
	DailyLimit   int       `json:"daily_limit"`
	OccurredAt   time.Time `json:"occurred_at"`
	CreatedAt    time.Time `json:"created_at"`
}

type ListParams struct {
	Page     int
	PageSize int
	Outcome  string
}

func DefaultListParams() ListParams {
	return ListParams{Page: 1, PageSize: 50}
}

func (p ListParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}
