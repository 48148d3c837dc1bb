package review

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/kosta-developer/DEVELOPER-Back/common/httputil"
	"github.com/kosta-developer/DEVELOPER-Back/internal/auth"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	service  Service
	validate *validator.Validate
	logger   *slog.Logger
}

func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/lesson/review/{applySeq}", h.AddReview)
	router.Get("/lesson/{lessonSeq}", h.ListByLesson)
}

func (h *Handler) AddReview(w http.ResponseWriter, r *http.Request) {
	applySeq, err := strconv.ParseInt(chi.URLParam(r, "applySeq"), 10, 64)
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid apply seq")
		return
	}

	var req CreateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.service.AddReview(r.Context(), auth.IdentityFrom(r.Context()), applySeq, req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "review added", "apply_seq", applySeq, "star", created.Star)
	httputil.RespondWithJSON(w, http.StatusCreated, created)
}

func (h *Handler) ListByLesson(w http.ResponseWriter, r *http.Request) {
	lessonSeq, err := strconv.ParseInt(chi.URLParam(r, "lessonSeq"), 10, 64)
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid lesson seq")
		return
	}

	views, err := h.service.ListByLesson(r.Context(), lessonSeq)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, views)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrApplicationNotFound), errors.Is(err, ErrLessonNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrLoginRequired):
		httputil.RespondWithError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrNotApplicant):
		httputil.RespondWithError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrNotReviewable), errors.Is(err, ErrAlreadyReviewed):
		httputil.RespondWithError(w, http.StatusConflict, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "review request failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
