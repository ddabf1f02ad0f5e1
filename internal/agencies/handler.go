package agencies

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/agencydesk/agencydesk/internal/api"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// List is the unmetered directory listing. Pagination only, no quota.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	params := ListParams{
		Page:     queryInt(r, "page", 1),
		PageSize: queryInt(r, "page_size", defaultPageSize),
	}
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > maxPageSize {
		params.PageSize = defaultPageSize
	}

	agencies, total, err := h.service.List(r.Context(), params)
	if err != nil {
		h.logger.Error("listing agencies", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSONPaginated(w, http.StatusOK, agencies, total, params.Page, params.PageSize)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
