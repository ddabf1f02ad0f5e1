package contacts

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository is the read side of the contacts listing. The service depends on
// this interface so handler tests can swap in a fixture-backed fake.
type Repository interface {
	List(ctx context.Context, limit, offset int) ([]Contact, error)
	Count(ctx context.Context) (int64, error)
}

type pgRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

func (r *pgRepository) List(ctx context.Context, limit, offset int) ([]Contact, error) {
	query := `
		SELECT c.id, c.agency_id, a.name, c.first_name, c.last_name, c.title,
		       c.department, c.email, c.email_type, c.phone, c.contact_form_url,
		       c.created_at, c.updated_at
		FROM contacts c
		JOIN agencies a ON a.id = c.agency_id
		ORDER BY c.last_name, c.first_name, c.id
		LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing contacts: %w", err)
	}
	defer rows.Close()

	contacts := make([]Contact, 0, limit)
	for rows.Next() {
		var c Contact
		if err := rows.Scan(
			&c.ID, &c.AgencyID, &c.AgencyName, &c.FirstName, &c.LastName,
			&c.Title, &c.Department, &c.Email, &c.EmailType, &c.Phone,
			&c.ContactFormURL, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning contact: %w", err)
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

func (r *pgRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM contacts`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting contacts: %w", err)
	}
	return count, nil
}
