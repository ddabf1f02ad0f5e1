package audit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert is idempotent on the event ID so JetStream redeliveries cannot
// duplicate a decision in the trail.
func (r *Repository) Insert(ctx context.Context, log *Log) error {
	query := `
		INSERT INTO audit_logs
			(id, user_id, day, page, outcome, reason, charged_count, daily_limit, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING`

	_, err := r.pool.Exec(ctx, query,
		log.ID, log.UserID, log.Day, log.Page, log.Outcome, log.Reason,
		log.ChargedCount, log.DailyLimit, log.OccurredAt)
	if err != nil {
		return fmt.Errorf("inserting audit log: %w", err)
	}
	return nil
}

func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, params ListParams) ([]Log, int64, error) {
	where := `WHERE user_id = $1`
	args := []any{userID}
	if params.Outcome != "" {
		where += ` AND outcome = $2`
		args = append(args, params.Outcome)
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM audit_logs ` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting audit logs: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, user_id, day, page, outcome, reason, charged_count,
		       daily_limit, occurred_at, created_at
		FROM audit_logs
		%s
		ORDER BY occurred_at DESC, id
		LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)
	args = append(args, params.PageSize, params.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing audit logs: %w", err)
	}
	defer rows.Close()

	logs := make([]Log, 0, params.PageSize)
	for rows.Next() {
		var l Log
		if err := rows.Scan(
			&l.ID, &l.UserID, &l.Day, &l.Page, &l.Outcome, &l.Reason,
			&l.ChargedCount, &l.DailyLimit, &l.OccurredAt, &l.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scanning audit log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, total, rows.Err()
}
