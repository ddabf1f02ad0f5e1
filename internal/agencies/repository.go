package agencies

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) List(ctx context.Context, params ListParams) ([]Agency, error) {
	query := `
		SELECT id, name, type, state, state_code, county, population, website,
		       created_at, updated_at
		FROM agencies
		ORDER BY name, id
		LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, params.PageSize, params.Offset())
	if err != nil {
		return nil, fmt.Errorf("listing agencies: %w", err)
	}
	defer rows.Close()

	agencies := make([]Agency, 0, params.PageSize)
	for rows.Next() {
		var a Agency
		if err := rows.Scan(
			&a.ID, &a.Name, &a.Type, &a.State, &a.StateCode, &a.County,
			&a.Population, &a.Website, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning agency: %w", err)
		}
		agencies = append(agencies, a)
	}
	return agencies, rows.Err()
}

func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM agencies`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting agencies: %w", err)
	}
	return count, nil
}
