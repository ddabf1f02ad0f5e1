package usage

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agencydesk/agencydesk/internal/audit"
	"github.com/agencydesk/agencydesk/internal/auth"
	"github.com/agencydesk/agencydesk/internal/ledger"
)

type fakeAudits struct {
	logs       []audit.Log
	lastParams audit.ListParams
}

func (f *fakeAudits) ListByUser(_ context.Context, _ uuid.UUID, params audit.ListParams) ([]audit.Log, int64, error) {
	f.lastParams = params
	return f.logs, int64(len(f.logs)), nil
}

func authedRequest(target string, userID uuid.UUID) *http.Request {
	req := httptest.NewRequest("GET", target, nil)
	claims := &auth.AccessClaims{UserID: userID.String(), Email: "dev@example.com"}
	return req.WithContext(auth.SetUserClaims(req.Context(), claims))
}

func TestHandler_GetFreshUser(t *testing.T) {
	ledgerSvc := ledger.NewService(ledger.NewMemStore(), nil)
	h := NewHandler(ledgerSvc, &fakeAudits{}, 50, slog.Default())

	rec := httptest.NewRecorder()
	h.Get(rec, authedRequest("/api/v1/usage", uuid.New()))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data ledger.UsageStatus `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 0, body.Data.ChargedCount)
	assert.Equal(t, 50, body.Data.DailyLimit)
	assert.Empty(t, body.Data.EverPages)
	assert.False(t, body.Data.LimitReached)
}

func TestHandler_GetReflectsCharges(t *testing.T) {
	ledgerSvc := ledger.NewService(ledger.NewMemStore(), nil)
	h := NewHandler(ledgerSvc, &fakeAudits{}, 50, slog.Default())
	userID := uuid.New()

	_, err := ledgerSvc.RequestPage(context.Background(), userID, ledger.PageRequest{
		Page: 2, TotalPages: 10, UnitPerPage: 10, DailyLimit: 50,
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.Get(rec, authedRequest("/api/v1/usage", userID))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data ledger.UsageStatus `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 10, body.Data.ChargedCount)
	assert.Equal(t, []int{2}, body.Data.EverPages)
}

func TestHandler_GetRequiresAuth(t *testing.T) {
	ledgerSvc := ledger.NewService(ledger.NewMemStore(), nil)
	h := NewHandler(ledgerSvc, &fakeAudits{}, 50, slog.Default())

	rec := httptest.NewRecorder()
	h.Get(rec, httptest.NewRequest("GET", "/api/v1/usage", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandler_ListLogsAppliesQueryParams(t *testing.T) {
	ledgerSvc := ledger.NewService(ledger.NewMemStore(), nil)
	audits := &fakeAudits{logs: []audit.Log{{
		ID:         uuid.New(),
		Outcome:    "deny",
		OccurredAt: time.Now().UTC(),
	}}}
	h := NewHandler(ledgerSvc, audits, 50, slog.Default())

	rec := httptest.NewRecorder()
	h.ListLogs(rec, authedRequest("/api/v1/usage/audit?page=2&page_size=25&outcome=deny", uuid.New()))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 2, audits.lastParams.Page)
	assert.Equal(t, 25, audits.lastParams.PageSize)
	assert.Equal(t, "deny", audits.lastParams.Outcome)
}

func TestHandler_ListLogsIgnoresBadParams(t *testing.T) {
	ledgerSvc := ledger.NewService(ledger.NewMemStore(), nil)
	audits := &fakeAudits{}
	h := NewHandler(ledgerSvc, audits, 50, slog.Default())

	rec := httptest.NewRecorder()
	h.ListLogs(rec, authedRequest("/api/v1/usage/audit?page=-1&page_size=9999", uuid.New()))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, audit.DefaultListParams().Page, audits.lastParams.Page)
	assert.Equal(t, audit.DefaultListParams().PageSize, audits.lastParams.PageSize)
}
