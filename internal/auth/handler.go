package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/kosta-developer/DEVELOPER-Back/common/httputil"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	service   *Service
	logger    *slog.Logger
	validator *validator.Validate
	cookie    CookieOptions
}

func NewHandler(service *Service, logger *slog.Logger, cookie CookieOptions) *Handler {
	return &Handler{
		service:   service,
		logger:    logger,
		validator: validator.New(),
		cookie:    cookie,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/host/register", h.RegisterHost)
		r.Post("/login", h.Login)
		r.Post("/refresh", h.Refresh)
		r.Post("/logout", h.Logout)
	})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.Register(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, r, err, "registration failed")
		return
	}

	h.logger.InfoContext(r.Context(), "user registered", "user_id", resp.User.UserID, "tutor_pending", resp.TutorPending)

	SetAuthCookie(w, resp.AccessToken, h.cookie)
	httputil.RespondWithJSON(w, http.StatusCreated, resp)
}

func (h *Handler) RegisterHost(w http.ResponseWriter, r *http.Request) {
	var req HostRegisterRequest
	if !h.decode(w, r, &req) {
		return
	}

	created, err := h.service.RegisterHost(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, r, err, "host registration failed")
		return
	}

	h.logger.InfoContext(r.Context(), "host registered", "host_id", created.HostID)

	httputil.RespondWithJSON(w, http.StatusCreated, HostRegisterResponse{
		Host:    created,
		Message: "host registered, waiting for administrator approval",
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, r, err, "login failed")
		return
	}

	h.logger.InfoContext(r.Context(), "user logged in", "user_id", req.UserID)

	SetAuthCookie(w, resp.AccessToken, h.cookie)
	httputil.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.RefreshAccessToken(r.Context(), req.RefreshToken)
	if err != nil {
		h.handleServiceError(w, r, err, "token refresh failed")
		return
	}

	SetAuthCookie(w, resp.AccessToken, h.cookie)
	httputil.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.service.Logout(r.Context(), req.RefreshToken); err != nil {
		h.handleServiceError(w, r, err, "logout failed")
		return
	}

	ClearAuthCookie(w, h.cookie)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httputil.DecodeJSON(r, dst); err != nil {
		h.logger.WarnContext(r.Context(), "failed to decode request", "error", err)
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := h.validator.Struct(dst); err != nil {
		h.logger.WarnContext(r.Context(), "validation failed", "error", err)
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	switch {
	case errors.Is(err, ErrAccountExists):
		httputil.RespondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrInvalidRefreshToken):
		httputil.RespondWithError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrAccountWithdrawn):
		httputil.RespondWithError(w, http.StatusForbidden, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), msg, "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
