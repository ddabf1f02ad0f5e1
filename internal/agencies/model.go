package agencies

import (
	"time"

	"github.com/google/uuid"
)

type Agency struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	State      string    `json:"state"`
	StateCode  string    `json:"state_code"`
	County     string    `json:"county"`
	Population int64     `json:"population"`
	Website    string    `json:"website"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type ListParams struct {
	Page     int
	PageSize int
}

func (p ListParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}
