package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// postgresStore implements Store on PostgreSQL. Mutual exclusion comes from a
// row lock: each Mutate runs in a transaction that takes SELECT ... FOR UPDATE
// on the (user_id, day) row, so two requests racing on the same newly-seen
// page serialize and only one of them charges.
type postgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Store backed by the given pool.
func NewPostgresStore(pool *pgxpool.Pool) Store {
	return &postgresStore{pool: pool}
}

func (s *postgresStore) Mutate(ctx context.Context, userID uuid.UUID, day time.Time, fn func(rec *DailyUsage) (bool, error)) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning usage transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	rec, err := lockDay(ctx, tx, userID, day)
	if err != nil {
		return err
	}

	created := false
	if rec == nil {
		carried, err := latestEverPages(ctx, tx, userID)
		if err != nil {
			return err
		}

		// ON CONFLICT DO NOTHING: if a concurrent transaction wins the
		// insert, the FOR UPDATE below blocks until it commits and we
		// proceed against its row instead.
		tag, err := tx.Exec(ctx,
			`INSERT INTO daily_usage (id, user_id, day, charged_count, window_pages, ever_pages)
			 VALUES ($1, $2, $3, 0, '', $4)
			 ON CONFLICT (user_id, day) DO NOTHING`,
			uuid.New(), userID, day, carried.Encode())
		if err != nil {
			return fmt.Errorf("inserting usage record: %w", err)
		}
		created = tag.RowsAffected() > 0

		rec, err = lockDay(ctx, tx, userID, day)
		if err != nil {
			return err
		}
		if rec == nil {
			return fmt.Errorf("usage record missing after insert for user %s", userID)
		}
	}

	write, err := fn(rec)
	if err != nil {
		return err
	}

	if write || created {
		_, err = tx.Exec(ctx,
			`UPDATE daily_usage
			 SET charged_count = $2,
			     window_pages = $3,
			     ever_pages = $4,
			     limit_reached_at = $5,
			     updated_at = NOW()
			 WHERE id = $1`,
			rec.ID, rec.ChargedCount, rec.WindowPages.Encode(), rec.EverPages.Encode(), rec.LimitReachedAt)
		if err != nil {
			return fmt.Errorf("updating usage record: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing usage transaction: %w", err)
	}
	return nil
}

func (s *postgresStore) Get(ctx context.Context, userID uuid.UUID, day time.Time) (*DailyUsage, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, user_id, day, charged_count, window_pages, ever_pages, limit_reached_at, created_at, updated_at
		 FROM daily_usage
		 WHERE user_id = $1 AND day = $2`,
		userID, day)
	return scanUsage(row)
}

func lockDay(ctx context.Context, tx pgx.Tx, userID uuid.UUID, day time.Time) (*DailyUsage, error) {
	row := tx.QueryRow(ctx,
		`SELECT id, user_id, day, charged_count, window_pages, ever_pages, limit_reached_at, created_at, updated_at
		 FROM daily_usage
		 WHERE user_id = $1 AND day = $2
		 FOR UPDATE`,
		userID, day)
	return scanUsage(row)
}

func latestEverPages(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (PageSet, error) {
	var encoded string
	err := tx.QueryRow(ctx,
		`SELECT ever_pages FROM daily_usage WHERE user_id = $1 ORDER BY day DESC LIMIT 1`,
		userID).Scan(&encoded)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return NewPageSet(), nil
		}
		return nil, fmt.Errorf("querying carried-forward pages: %w", err)
	}
	return ParsePageSet(encoded), nil
}

func scanUsage(row pgx.Row) (*DailyUsage, error) {
	rec := &DailyUsage{}
	var window, ever string
	err := row.Scan(&rec.ID, &rec.UserID, &rec.Day, &rec.ChargedCount,
		&window, &ever, &rec.LimitReachedAt, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scanning usage record: %w", err)
	}
	rec.WindowPages = ParsePageSet(window)
	rec.EverPages = ParsePageSet(ever)
	return rec, nil
}
