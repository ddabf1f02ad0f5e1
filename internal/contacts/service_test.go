package contacts

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agencydesk/agencydesk/internal/ledger"
	"github.com/agencydesk/agencydesk/internal/nats"
)

type fakeRepo struct {
	total     int64
	listCalls int
}

func (f *fakeRepo) List(_ context.Context, limit, offset int) ([]Contact, error) {
	f.listCalls++
	n := int(f.total) - offset
	if n > limit {
		n = limit
	}
	if n < 0 {
		n = 0
	}
	contacts := make([]Contact, n)
	for i := range contacts {
		contacts[i] = Contact{
			ID:        uuid.New(),
			FirstName: fmt.Sprintf("Contact%d", offset+i+1),
			LastName:  "Test",
		}
	}
	return contacts, nil
}

func (f *fakeRepo) Count(_ context.Context) (int64, error) {
	return f.total, nil
}

type capturePublisher struct {
	mu     sync.Mutex
	events []nats.UsageEvent
}

func (p *capturePublisher) PublishUsage(_ context.Context, ev nats.UsageEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func setupService(t *testing.T, total int64) (*Service, *fakeRepo, *capturePublisher) {
	t.Helper()
	repo := &fakeRepo{total: total}
	pub := &capturePublisher{}
	ledgerSvc := ledger.NewService(ledger.NewMemStore(), nil)
	svc := NewService(repo, ledgerSvc, pub, 50, 10, slog.Default())
	return svc, repo, pub
}

func TestService_FirstPageIsCharged(t *testing.T) {
	svc, _, pub := setupService(t, 95)
	userID := uuid.New()

	resp, err := svc.Page(context.Background(), userID, 1)
	require.NoError(t, err)

	assert.Empty(t, resp.Error)
	assert.Len(t, resp.Contacts, 10)
	assert.Equal(t, int64(95), resp.TotalContacts)
	assert.Equal(t, 1, resp.CurrentPage)
	assert.Equal(t, 10, resp.TotalPages)
	assert.Equal(t, 10, resp.ChargedCount)
	assert.Equal(t, 50, resp.DailyLimit)
	assert.Equal(t, []int{1}, resp.ViewedPages)
	assert.Equal(t, []int{1}, resp.EverViewedPages)
	assert.False(t, resp.LimitReached)

	require.Len(t, pub.events, 1)
	assert.Equal(t, "allow_charged", pub.events[0].Outcome)
}

func TestService_RepeatPageIsFree(t *testing.T) {
	svc, _, pub := setupService(t, 95)
	userID := uuid.New()

	_, err := svc.Page(context.Background(), userID, 3)
	require.NoError(t, err)

	resp, err := svc.Page(context.Background(), userID, 3)
	require.NoError(t, err)

	assert.Equal(t, 10, resp.ChargedCount)
	assert.Len(t, resp.Contacts, 10)
	require.Len(t, pub.events, 2)
	assert.Equal(t, "allow_free", pub.events[1].Outcome)
}

func TestService_DeniesAtLimit(t *testing.T) {
	svc, repo, pub := setupService(t, 95)
	userID := uuid.New()
	ctx := context.Background()

	for page := 1; page <= 5; page++ {
		resp, err := svc.Page(ctx, userID, page)
		require.NoError(t, err)
		require.Empty(t, resp.Error, "page %d should be allowed", page)
	}

	listCallsBefore := repo.listCalls
	resp, err := svc.Page(ctx, userID, 6)
	require.NoError(t, err)

	assert.Equal(t, ledger.ReasonLimitReached, resp.Error)
	assert.Empty(t, resp.Contacts)
	assert.Zero(t, resp.TotalContacts)
	assert.True(t, resp.LimitReached)
	assert.Equal(t, 50, resp.ChargedCount)
	// A denied request never reaches the contacts table.
	assert.Equal(t, listCallsBefore, repo.listCalls)
	assert.Equal(t, "deny", pub.events[len(pub.events)-1].Outcome)
}

func TestService_DeniedPageStaysFreeIfSeenBefore(t *testing.T) {
	svc, _, _ := setupService(t, 95)
	userID := uuid.New()
	ctx := context.Background()

	for page := 1; page <= 5; page++ {
		_, err := svc.Page(ctx, userID, page)
		require.NoError(t, err)
	}

	// Limit reached, but page 2 was already seen today.
	resp, err := svc.Page(ctx, userID, 2)
	require.NoError(t, err)
	assert.Empty(t, resp.Error)
	assert.Len(t, resp.Contacts, 10)
	assert.Equal(t, 50, resp.ChargedCount)
}

func TestService_ClampsOutOfRangePages(t *testing.T) {
	svc, _, _ := setupService(t, 25) // 3 pages
	userID := uuid.New()

	resp, err := svc.Page(context.Background(), userID, 99)
	require.NoError(t, err)
	assert.Equal(t, 3, resp.CurrentPage)
	assert.Len(t, resp.Contacts, 5)

	resp, err = svc.Page(context.Background(), userID, -4)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.CurrentPage)
}

func TestService_EmptyListing(t *testing.T) {
	svc, _, _ := setupService(t, 0)
	userID := uuid.New()

	resp, err := svc.Page(context.Background(), userID, 1)
	require.NoError(t, err)
	assert.Empty(t, resp.Error)
	assert.Empty(t, resp.Contacts)
	assert.Equal(t, 0, resp.TotalPages)
	assert.Equal(t, 1, resp.CurrentPage)
	// The empty listing still charges page 1 once.
	assert.Equal(t, 10, resp.ChargedCount)
}

func TestService_FullCoverageRestartsCharging(t *testing.T) {
	svc, _, _ := setupService(t, 20) // 2 pages
	userID := uuid.New()
	ctx := context.Background()

	_, err := svc.Page(ctx, userID, 1)
	require.NoError(t, err)
	_, err = svc.Page(ctx, userID, 2)
	require.NoError(t, err)

	// Both pages seen: the exemption set resets and page 1 is charged again.
	resp, err := svc.Page(ctx, userID, 1)
	require.NoError(t, err)
	assert.Empty(t, resp.Error)
	assert.Equal(t, 30, resp.ChargedCount)
	assert.Equal(t, []int{1}, resp.EverViewedPages)
}
