package contacts

import (
	"time"

	"github.com/google/uuid"
)

type Contact struct {
	ID             uuid.UUID `json:"id"`
	AgencyID       uuid.UUID `json:"agency_id"`
	AgencyName     string    `json:"agency_name"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Title          string    `json:"title"`
	Department     string    `json:"department"`
	Email          string    `json:"email"`
	EmailType      string    `json:"email_type"`
	Phone          string    `json:"phone"`
	ContactFormURL string    `json:"contact_form_url"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ListResponse is the metered listing body. On a denial Contacts is empty,
// Error carries the reason, and the quota fields still reflect current state
// so the dashboard can render the counter without a second call.
type ListResponse struct {
	Contacts        []Contact `json:"contacts"`
	TotalContacts   int64     `json:"total_contacts"`
	CurrentPage     int       `json:"current_page"`
	TotalPages      int       `json:"total_pages"`
	ChargedCount    int       `json:"charged_count"`
	DailyLimit      int       `json:"daily_limit"`
	ViewedPages     []int     `json:"viewed_pages"`
	EverViewedPages []int     `json:"ever_viewed_pages"`
	LimitReached    bool      `json:"limit_reached"`
	Error           string    `json:"error,omitempty"`
}
