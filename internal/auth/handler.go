package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/agencydesk/agencydesk/internal/api"
	"github.com/agencydesk/agencydesk/internal/users"
)

type Handler struct {
	authService *Service
	userService *users.Service
	validate    *validator.Validate
	logger      *slog.Logger
}

func NewHandler(authService *Service, userService *users.Service, logger *slog.Logger) *Handler {
	return &Handler{
		authService: authService,
		userService: userService,
		validate:    validator.New(),
		logger:      logger,
	}
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type authResponse struct {
	User   *users.User `json:"user"`
	Tokens *TokenPair  `json:"tokens"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	existing, err := h.userService.GetByEmail(r.Context(), req.Email)
	if err != nil {
		h.logger.Error("looking up user", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}
	if existing != nil {
		api.HandleError(w, api.ErrEmailAlreadyExists)
		return
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		h.logger.Error("hashing password", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	user, err := h.userService.Create(r.Context(), req.Email, hash)
	if err != nil {
		h.logger.Error("creating user", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	tokens, err := h.authService.GenerateTokens(r.Context(), user.ID.String(), user.Email)
	if err != nil {
		h.logger.Error("generating tokens", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSON(w, http.StatusCreated, authResponse{User: user, Tokens: tokens})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	user, err := h.userService.GetByEmail(r.Context(), req.Email)
	if err != nil {
		h.logger.Error("looking up user", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}
	if user == nil {
		api.HandleError(w, api.ErrInvalidCredentials)
		return
	}

	if err := ComparePassword(user.PasswordHash, req.Password); err != nil {
		api.HandleError(w, api.ErrInvalidCredentials)
		return
	}

	tokens, err := h.authService.GenerateTokens(r.Context(), user.ID.String(), user.Email)
	if err != nil {
		h.logger.Error("generating tokens", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSON(w, http.StatusOK, authResponse{User: user, Tokens: tokens})
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	claims, err := h.authService.ConsumeRefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		api.HandleError(w, api.ErrInvalidToken)
		return
	}

	user, err := h.userService.GetByID(r.Context(), claims.UserID)
	if err != nil {
		h.logger.Error("looking up user", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}
	if user == nil {
		api.HandleError(w, api.ErrInvalidToken)
		return
	}

	tokens, err := h.authService.GenerateTokens(r.Context(), user.ID.String(), user.Email)
	if err != nil {
		h.logger.Error("generating tokens", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSON(w, http.StatusOK, map[string]*TokenPair{"tokens": tokens})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := GetUserClaims(r.Context())
	if claims == nil {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	if err := h.authService.Logout(r.Context(), claims.UserID); err != nil {
		h.logger.Error("revoking sessions", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSONMessage(w, http.StatusOK, "logged out")
}
