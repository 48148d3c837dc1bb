package health

import (
	"net/http"

	"github.com/kosta-developer/DEVELOPER-Back/common/httputil"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	checker *Checker
}

func NewHandler(checker *Checker) *Handler {
	return &Handler{checker: checker}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/health", h.Health)
	router.Get("/ready", h.Ready)
}

type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	httputil.RespondWithJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Ready answers 503 while any dependency is unreachable.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	report := h.checker.Run(r.Context())

	resp := HealthResponse{Status: "ready", Checks: make(map[string]string, len(report))}
	for name, err := range report {
		if err != nil {
			resp.Checks[name] = err.Error()
			continue
		}
		resp.Checks[name] = "ok"
	}

	if !report.Healthy() {
		resp.Status = "unavailable"
		httputil.RespondWithJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, resp)
}
