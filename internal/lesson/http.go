package lesson

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
	router.Post("/lesson", h.CreateLesson)
	router.Get("/lesson", h.SearchLessons)
	router.Get("/lesson/detail/{lessonSeq}", h.GetDetail)
}

func (h *Handler) CreateLesson(w http.ResponseWriter, r *http.Request) {
	var req CreateLessonRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	id := auth.IdentityFrom(r.Context())
	created, err := h.service.CreateLesson(r.Context(), id, req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "lesson created", "lesson_seq", created.LessonSeq, "tutor_id", id.UserID)
	httputil.RespondWithJSON(w, http.StatusCreated, created)
}

func (h *Handler) SearchLessons(w http.ResponseWriter, r *http.Request) {
	lessons, err := h.service.SearchLessons(r.Context(), r.URL.Query().Get("searchWord"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, lessons)
}

func (h *Handler) GetDetail(w http.ResponseWriter, r *http.Request) {
	lessonSeq, err := strconv.ParseInt(chi.URLParam(r, "lessonSeq"), 10, 64)
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid lesson seq")
		return
	}

	detail, err := h.service.GetDetail(r.Context(), lessonSeq)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, detail)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrLessonNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrLoginRequired):
		httputil.RespondWithError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrNotApprovedTutor):
		httputil.RespondWithError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrInvalidInput):
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "lesson request failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
