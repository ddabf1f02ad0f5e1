package contacts

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/agencydesk/agencydesk/internal/ledger"
	"github.com/agencydesk/agencydesk/internal/nats"
)

// UsagePublisher records ledger decisions on the event trail. Satisfied by
// *nats.Publisher, including its disabled (nil client) form.
type UsagePublisher interface {
	PublishUsage(ctx context.Context, ev nats.UsageEvent) error
}

// Service serves the metered contacts listing. Every page view goes through
// the ledger before any rows are fetched: a denied request never touches the
// contacts table.
type Service struct {
	repo       Repository
	ledger     *ledger.Service
	publisher  UsagePublisher
	dailyLimit int
	pageSize   int
	logger     *slog.Logger
}

func NewService(repo Repository, ledgerSvc *ledger.Service, publisher UsagePublisher, dailyLimit, pageSize int, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		ledger:     ledgerSvc,
		publisher:  publisher,
		dailyLimit: dailyLimit,
		pageSize:   pageSize,
		logger:     logger,
	}
}

// Page runs the quota decision for one page of the listing and, when allowed,
// fetches that page. The returned response is complete either way; Error is
// set only on a denial.
func (s *Service) Page(ctx context.Context, userID uuid.UUID, page int) (*ListResponse, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(s.pageSize) - 1) / int64(s.pageSize))

	// An out-of-range page is clamped, not rejected: the dashboard keeps
	// stale page numbers across data changes.
	if page < 1 {
		page = 1
	}
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}

	dec, err := s.ledger.RequestPage(ctx, userID, ledger.PageRequest{
		Page:        page,
		TotalPages:  totalPages,
		UnitPerPage: s.pageSize,
		DailyLimit:  s.dailyLimit,
	})
	if err != nil {
		return nil, err
	}

	resp := &ListResponse{
		Contacts:        []Contact{},
		TotalContacts:   total,
		CurrentPage:     page,
		TotalPages:      totalPages,
		ChargedCount:    dec.ChargedCount,
		DailyLimit:      s.dailyLimit,
		ViewedPages:     dec.WindowPages,
		EverViewedPages: dec.EverPages,
		LimitReached:    dec.LimitReached,
	}

	if dec.Allowed() {
		contacts, err := s.repo.List(ctx, s.pageSize, (page-1)*s.pageSize)
		if err != nil {
			return nil, err
		}
		resp.Contacts = contacts
	} else {
		resp.TotalContacts = 0
		resp.Error = dec.Reason
	}

	s.recordDecision(ctx, userID, page, dec)
	return resp, nil
}

// recordDecision is best effort: a broken event trail must not fail a
// listing request that the ledger already committed.
func (s *Service) recordDecision(ctx context.Context, userID uuid.UUID, page int, dec *ledger.Decision) {
	ev := nats.UsageEvent{
		ID:           uuid.New(),
		UserID:       userID,
		Day:          dec.Day,
		Page:         page,
		Outcome:      string(dec.Outcome),
		Reason:       dec.Reason,
		ChargedCount: dec.ChargedCount,
		DailyLimit:   s.dailyLimit,
		OccurredAt:   time.Now().UTC(),
	}
	if err := s.publisher.PublishUsage(ctx, ev); err != nil {
		s.logger.Warn("recording usage decision", "error", err, "user_id", userID)
	}
}
