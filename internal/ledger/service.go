package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/agencydesk/agencydesk/internal/metrics"
)

// Service is the usage ledger: the sole gatekeeper for metered listings. It
// decides per request whether a page may be served, whether it counts against
// today's quota, and persists the resulting state in one transaction.
type Service struct {
	store Store
	clock Clock
}

// NewService creates a ledger Service. A nil clock means the system clock.
func NewService(store Store, clock Clock) *Service {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Service{store: store, clock: clock}
}

// RequestPage runs the quota decision for one page view.
//
// A page the user has ever seen is free, forever — until the ever-viewed set
// covers every page of the listing, at which point the set is cleared and the
// bookkeeping starts over. A newly-seen page is charged UnitPerPage units
// atomically: if the remaining quota cannot cover a whole page the request is
// denied, never partially charged. Denials mutate nothing.
func (s *Service) RequestPage(ctx context.Context, userID uuid.UUID, req PageRequest) (*Decision, error) {
	if req.Page < 1 || req.TotalPages < 0 || req.UnitPerPage < 1 || req.DailyLimit < 0 {
		return nil, fmt.Errorf("%w: page=%d total_pages=%d unit=%d limit=%d",
			ErrInvalidRequest, req.Page, req.TotalPages, req.UnitPerPage, req.DailyLimit)
	}

	day := DayOf(s.clock.Now())

	var dec *Decision
	err := s.store.Mutate(ctx, userID, day, func(rec *DailyUsage) (bool, error) {
		// Full-coverage reset: once the user has seen everything, restart
		// the exemption bookkeeping instead of freezing every page as free
		// at a stale page count.
		if req.TotalPages > 0 && rec.EverPages.Len() >= req.TotalPages {
			rec.EverPages = NewPageSet()
		}

		if rec.EverPages.Contains(req.Page) {
			dec = decide(OutcomeAllowFree, "", rec, req.DailyLimit)
			return false, nil
		}

		if rec.ChargedCount >= req.DailyLimit {
			dec = decide(OutcomeDeny, ReasonLimitReached, rec, req.DailyLimit)
			return false, nil
		}
		if rec.ChargedCount+req.UnitPerPage > req.DailyLimit {
			dec = decide(OutcomeDeny, ReasonWouldExceed, rec, req.DailyLimit)
			return false, nil
		}

		rec.EverPages.Add(req.Page)
		rec.WindowPages.Add(req.Page)
		rec.ChargedCount += req.UnitPerPage
		if rec.ChargedCount >= req.DailyLimit && rec.LimitReachedAt == nil {
			now := s.clock.Now().UTC()
			rec.LimitReachedAt = &now
		}

		dec = decide(OutcomeAllowCharged, "", rec, req.DailyLimit)
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	metrics.LedgerDecisionsTotal.WithLabelValues(string(dec.Outcome)).Inc()
	if dec.Outcome == OutcomeDeny {
		slog.Debug("page request denied", "user_id", userID, "page", req.Page, "reason", dec.Reason)
	}
	return dec, nil
}

// Usage returns today's usage snapshot without mutating anything. A user who
// has not requested anything today gets a zeroed status.
func (s *Service) Usage(ctx context.Context, userID uuid.UUID, dailyLimit int) (*UsageStatus, error) {
	day := DayOf(s.clock.Now())

	rec, err := s.store.Get(ctx, userID, day)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return &UsageStatus{
			Day:         day,
			DailyLimit:  dailyLimit,
			WindowPages: []int{},
			EverPages:   []int{},
		}, nil
	}

	return &UsageStatus{
		Day:            rec.Day,
		ChargedCount:   rec.ChargedCount,
		DailyLimit:     dailyLimit,
		WindowPages:    rec.WindowPages.Sorted(),
		EverPages:      rec.EverPages.Sorted(),
		LimitReached:   rec.ChargedCount >= dailyLimit && dailyLimit > 0,
		LimitReachedAt: rec.LimitReachedAt,
	}, nil
}

func decide(outcome Outcome, reason string, rec *DailyUsage, dailyLimit int) *Decision {
	return &Decision{
		Outcome:      outcome,
		Reason:       reason,
		ChargedCount: rec.ChargedCount,
		WindowPages:  rec.WindowPages.Sorted(),
		EverPages:    rec.EverPages.Sorted(),
		LimitReached: rec.ChargedCount >= dailyLimit && dailyLimit > 0,
		Day:          rec.Day,
	}
}
