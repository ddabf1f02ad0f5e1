package ledger

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// DailyUsage matches the daily_usage table schema: one row per (user, UTC day).
// ChargedCount only grows within a day; prior days' rows are immutable history.
type DailyUsage struct {
	ID             uuid.UUID  `json:"id"`
	UserID         uuid.UUID  `json:"user_id"`
	Day            time.Time  `json:"day"`
	ChargedCount   int        `json:"charged_count"`
	WindowPages    PageSet    `json:"window_pages"`
	EverPages      PageSet    `json:"ever_pages"`
	LimitReachedAt *time.Time `json:"limit_reached_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Clone returns a deep copy so callers can mutate freely and discard.
func (u *DailyUsage) Clone() *DailyUsage {
	c := *u
	c.WindowPages = u.WindowPages.Clone()
	c.EverPages = u.EverPages.Clone()
	if u.LimitReachedAt != nil {
		t := *u.LimitReachedAt
		c.LimitReachedAt = &t
	}
	return &c
}

// PageRequest carries the listing collaborator's view of the world for a
// single request. TotalPages and UnitPerPage come from the caller because the
// ledger does not know how many items or pages the listing has.
type PageRequest struct {
	Page        int
	TotalPages  int
	UnitPerPage int
	DailyLimit  int
}

// Outcome classifies a page-view decision.
type Outcome string

const (
	// OutcomeAllowFree means the page was seen before and costs nothing.
	OutcomeAllowFree Outcome = "allow_free"
	// OutcomeAllowCharged means the page is newly seen and was charged.
	OutcomeAllowCharged Outcome = "allow_charged"
	// OutcomeDeny means serving the page would violate the daily limit.
	OutcomeDeny Outcome = "deny"
)

// Deny reasons surfaced to the caller.
const (
	ReasonLimitReached = "daily limit already reached"
	ReasonWouldExceed  = "viewing this page would exceed the daily limit"
)

// Decision is the result of a single RequestPage call. A DENY is a normal
// outcome, not an error: errors are reserved for storage and input failures.
type Decision struct {
	Outcome      Outcome   `json:"outcome"`
	Reason       string    `json:"reason,omitempty"`
	ChargedCount int       `json:"charged_count"`
	WindowPages  []int     `json:"window_pages"`
	EverPages    []int     `json:"ever_pages"`
	LimitReached bool      `json:"limit_reached"`
	Day          time.Time `json:"day"`
}

// Allowed reports whether the caller may serve the requested page.
func (d *Decision) Allowed() bool {
	return d.Outcome != OutcomeDeny
}

// UsageStatus is the read-only snapshot returned for dashboard display.
type UsageStatus struct {
	Day            time.Time  `json:"day"`
	ChargedCount   int        `json:"charged_count"`
	DailyLimit     int        `json:"daily_limit"`
	WindowPages    []int      `json:"window_pages"`
	EverPages      []int      `json:"ever_pages"`
	LimitReached   bool       `json:"limit_reached"`
	LimitReachedAt *time.Time `json:"limit_reached_at,omitempty"`
}

// ErrInvalidRequest is returned for nonsensical input (page < 1, negative
// totals, non-positive unit). Distinct from a DENY: validation is the
// caller's job and a violation is an input error, not a quota outcome.
var ErrInvalidRequest = errors.New("invalid page request")
