package contacts

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/agencydesk/agencydesk/internal/api"
	"github.com/agencydesk/agencydesk/internal/auth"
	"github.com/agencydesk/agencydesk/internal/ledger"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// List serves GET /api/v1/contacts?page=N. The body shape is the same for
// allowed and denied requests; a denial answers 429 with Error set.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserClaims(r.Context())
	if claims == nil {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil {
			api.HandleError(w, api.NewBadRequestError("page must be an integer"))
			return
		}
	}

	resp, err := h.service.Page(r.Context(), userID, page)
	if err != nil {
		if errors.Is(err, ledger.ErrInvalidRequest) {
			api.HandleError(w, api.NewBadRequestError("invalid page"))
			return
		}
		h.logger.Error("serving contacts page", "error", err, "user_id", userID)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	status := http.StatusOK
	if resp.Error != "" {
		status = http.StatusTooManyRequests
	}
	api.JSONRaw(w, status, resp)
}
