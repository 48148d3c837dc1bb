package workflow

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/kosta-developer/DEVELOPER-Back/common/httputil"
	"github.com/kosta-developer/DEVELOPER-Back/internal/auth"

	"github.com/go-chi/chi/v5"
)

const (
	msgNoPendingTutors = "no pending tutor applications"
	msgNoPendingHosts  = "no pending host accounts"
	msgFavoriteAdded   = "favorite added"
	msgFavoriteRemoved = "favorite removed"
)

type Handler struct {
	service Service
	logger  *slog.Logger
}

func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Route("/admin", func(r chi.Router) {
		r.Get("/", h.Dashboard)

		r.Get("/users", h.ListUsers)
		r.Get("/users/{userId}", h.SearchUsers)
		r.Get("/users/detail/{userId}", h.UserDetail)
		r.Delete("/users/detail/{userId}", h.DeleteUser)

		r.Get("/users/tutor", h.ListPendingTutors)
		r.Patch("/users/tutor/{userId}", h.ApproveTutor)
		r.Delete("/users/tutor/{userId}", h.RejectTutor)

		r.Get("/host/unapprove", h.ListPendingHosts)
		r.Patch("/host/unapprove/{hostId}", h.ApproveHost)
		r.Delete("/host/unapprove/{hostId}", h.RejectHost)

		r.Get("/lesson", h.ListAllLessons)
		r.Get("/lesson/detail/{lessonSeq}", h.ListApplicants)
		r.Patch("/lesson/detail/{lessonSeq}/{tuteeId}", h.ApproveApplicant)
		r.Delete("/lesson/detail/{lessonSeq}/{tuteeId}", h.RemoveApplicant)
	})

	router.Post("/lesson/{lessonSeq}", h.ApplyToLesson)
	router.Post("/lesson/favoriteslesson/{lessonSeq}", h.AddFavoriteLesson)
	router.Delete("/lesson/favoriteslesson/{favLesSeq}", h.RemoveFavoriteLesson)
	router.Post("/studyroom/favorites/{srSeq}", h.AddFavoriteStudyroom)
	router.Delete("/studyroom/favorites/{favSrSeq}", h.RemoveFavoriteStudyroom)
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.DashboardSummary(r.Context(), auth.IdentityFrom(r.Context()))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, summary)
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context(), auth.IdentityFrom(r.Context()))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, users)
}

func (h *Handler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.SearchUsers(r.Context(), auth.IdentityFrom(r.Context()), chi.URLParam(r, "userId"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, users)
}

func (h *Handler) UserDetail(w http.ResponseWriter, r *http.Request) {
	u, err := h.service.UserDetail(r.Context(), auth.IdentityFrom(r.Context()), chi.URLParam(r, "userId"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, u)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if err := h.service.DeleteUser(r.Context(), auth.IdentityFrom(r.Context()), userID); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "user deleted", "user_id", userID)
	httputil.RespondWithMessage(w, http.StatusOK, "user deleted")
}

// ListPendingTutors answers 400 with a message when nothing is pending.
func (h *Handler) ListPendingTutors(w http.ResponseWriter, r *http.Request) {
	apps, err := h.service.ListPendingTutors(r.Context(), auth.IdentityFrom(r.Context()))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if len(apps) == 0 {
		httputil.RespondWithMessage(w, http.StatusBadRequest, msgNoPendingTutors)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, apps)
}

func (h *Handler) ApproveTutor(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if err := h.service.ApproveTutor(r.Context(), auth.IdentityFrom(r.Context()), userID); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithMessage(w, http.StatusOK, "tutor approved")
}

func (h *Handler) RejectTutor(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if err := h.service.RejectTutor(r.Context(), auth.IdentityFrom(r.Context()), userID); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithMessage(w, http.StatusOK, "tutor application rejected")
}

func (h *Handler) ListPendingHosts(w http.ResponseWriter, r *http.Request) {
	hosts, err := h.service.ListPendingHosts(r.Context(), auth.IdentityFrom(r.Context()))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if len(hosts) == 0 {
		httputil.RespondWithMessage(w, http.StatusBadRequest, msgNoPendingHosts)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, hosts)
}

func (h *Handler) ApproveHost(w http.ResponseWriter, r *http.Request) {
	hostID := chi.URLParam(r, "hostId")
	if err := h.service.ApproveHost(r.Context(), auth.IdentityFrom(r.Context()), hostID); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithMessage(w, http.StatusOK, "host approved")
}

func (h *Handler) RejectHost(w http.ResponseWriter, r *http.Request) {
	hostID := chi.URLParam(r, "hostId")
	if err := h.service.RejectHost(r.Context(), auth.IdentityFrom(r.Context()), hostID); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithMessage(w, http.StatusOK, "host rejected")
}

func (h *Handler) ListAllLessons(w http.ResponseWriter, r *http.Request) {
	lessons, err := h.service.ListAllLessons(r.Context(), auth.IdentityFrom(r.Context()))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, lessons)
}

func (h *Handler) ListApplicants(w http.ResponseWriter, r *http.Request) {
	lessonSeq, ok := seqParam(w, r, "lessonSeq")
	if !ok {
		return
	}

	applicants, err := h.service.ListApplicants(r.Context(), auth.IdentityFrom(r.Context()), lessonSeq)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, applicants)
}

func (h *Handler) ApproveApplicant(w http.ResponseWriter, r *http.Request) {
	lessonSeq, ok := seqParam(w, r, "lessonSeq")
	if !ok {
		return
	}

	tuteeID := chi.URLParam(r, "tuteeId")
	if err := h.service.ApproveApplicant(r.Context(), auth.IdentityFrom(r.Context()), lessonSeq, tuteeID); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithMessage(w, http.StatusOK, "application approved")
}

func (h *Handler) RemoveApplicant(w http.ResponseWriter, r *http.Request) {
	lessonSeq, ok := seqParam(w, r, "lessonSeq")
	if !ok {
		return
	}

	tuteeID := chi.URLParam(r, "tuteeId")
	if err := h.service.RemoveApplicant(r.Context(), auth.IdentityFrom(r.Context()), lessonSeq, tuteeID); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithMessage(w, http.StatusOK, "application removed")
}

// ApplyToLesson accepts an optional {"memo": "..."} body.
func (h *Handler) ApplyToLesson(w http.ResponseWriter, r *http.Request) {
	lessonSeq, ok := seqParam(w, r, "lessonSeq")
	if !ok {
		return
	}

	var req ApplyRequest
	if err := httputil.DecodeJSON(r, &req); err != nil && !errors.Is(err, httputil.ErrEmptyBody) {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	app, err := h.service.ApplyToLesson(r.Context(), auth.IdentityFrom(r.Context()), lessonSeq, req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusCreated, app)
}

func (h *Handler) AddFavoriteLesson(w http.ResponseWriter, r *http.Request) {
	lessonSeq, ok := seqParam(w, r, "lessonSeq")
	if !ok {
		return
	}

	if _, err := h.service.AddFavoriteLesson(r.Context(), auth.IdentityFrom(r.Context()), lessonSeq); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithMessage(w, http.StatusCreated, msgFavoriteAdded)
}

func (h *Handler) RemoveFavoriteLesson(w http.ResponseWriter, r *http.Request) {
	favLesSeq, ok := seqParam(w, r, "favLesSeq")
	if !ok {
		return
	}

	if err := h.service.RemoveFavorite(r.Context(), auth.IdentityFrom(r.Context()), favLesSeq); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithMessage(w, http.StatusOK, msgFavoriteRemoved)
}

func (h *Handler) AddFavoriteStudyroom(w http.ResponseWriter, r *http.Request) {
	srSeq, ok := seqParam(w, r, "srSeq")
	if !ok {
		return
	}

	if _, err := h.service.AddFavoriteStudyroom(r.Context(), auth.IdentityFrom(r.Context()), srSeq); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithMessage(w, http.StatusCreated, msgFavoriteAdded)
}

func (h *Handler) RemoveFavoriteStudyroom(w http.ResponseWriter, r *http.Request) {
	favSrSeq, ok := seqParam(w, r, "favSrSeq")
	if !ok {
		return
	}

	if err := h.service.RemoveFavoriteStudyroom(r.Context(), auth.IdentityFrom(r.Context()), favSrSeq); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithMessage(w, http.StatusOK, msgFavoriteRemoved)
}

func seqParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	seq, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || seq <= 0 {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return seq, true
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrAuthRequired):
		httputil.RespondWithError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrPermissionDenied):
		httputil.RespondWithError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrValidation):
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrDuplicate):
		httputil.RespondWithError(w, http.StatusConflict, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "workflow request failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
