package usage

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/agencydesk/agencydesk/internal/api"
	"github.com/agencydesk/agencydesk/internal/audit"
	"github.com/agencydesk/agencydesk/internal/auth"
	"github.com/agencydesk/agencydesk/internal/ledger"
)

// AuditLister is the read side of the audit trail. Satisfied by
// *audit.Repository.
type AuditLister interface {
	ListByUser(ctx context.Context, userID uuid.UUID, params audit.ListParams) ([]audit.Log, int64, error)
}

// Handler exposes the dashboard's quota views: today's snapshot and the
// per-user audit trail.
type Handler struct {
	ledger     *ledger.Service
	audits     AuditLister
	dailyLimit int
	logger     *slog.Logger
}

func NewHandler(ledgerSvc *ledger.Service, audits AuditLister, dailyLimit int, logger *slog.Logger) *Handler {
	return &Handler{
		ledger:     ledgerSvc,
		audits:     audits,
		dailyLimit: dailyLimit,
		logger:     logger,
	}
}

// Get serves GET /api/v1/usage: today's usage without charging anything.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r)
	if !ok {
		return
	}

	status, err := h.ledger.Usage(r.Context(), userID, h.dailyLimit)
	if err != nil {
		h.logger.Error("reading usage", "error", err, "user_id", userID)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSON(w, http.StatusOK, status)
}

// ListLogs serves GET /api/v1/usage/audit: the caller's decision history.
func (h *Handler) ListLogs(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r)
	if !ok {
		return
	}

	params := audit.DefaultListParams()
	if raw := r.URL.Query().Get("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			params.Page = n
		}
	}
	if raw := r.URL.Query().Get("page_size"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 200 {
			params.PageSize = n
		}
	}
	params.Outcome = r.URL.Query().Get("outcome")

	logs, total, err := h.audits.ListByUser(r.Context(), userID, params)
	if err != nil {
		h.logger.Error("listing audit logs", "error", err, "user_id", userID)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSONPaginated(w, http.StatusOK, logs, total, params.Page, params.PageSize)
}

func requestUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	claims := auth.GetUserClaims(r.Context())
	if claims == nil {
		api.HandleError(w, api.ErrUnauthorized)
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		api.HandleError(w, api.ErrUnauthorized)
		return uuid.Nil, false
	}
	return userID, true
}
