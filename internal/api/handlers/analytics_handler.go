package handlers

import (
	"net/http"

	"github.com/taskhive/engine/internal/api/types"
	"github.com/taskhive/engine/internal/repository"
	"github.com/taskhive/engine/internal/services"
)

type AnalyticsHandler struct {
	analytics services.AnalyticsService
	users     repository.UserRepository
}

func NewAnalyticsHandler(analytics services.AnalyticsService, users repository.UserRepository) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, users: users}
}

func (h *AnalyticsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	actor, err := currentUser(r, h.users)
	if err != nil {
		writeError(w, err)
		return
	}
	stats, err := h.analytics.DashboardStats(r.Context(), actor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: stats})
}

func (h *AnalyticsHandler) Distribution(w http.ResponseWriter, r *http.Request) {
	actor, err := currentUser(r, h.users)
	if err != nil {
		writeError(w, err)
		return
	}
	dist, err := h.analytics.TaskDistribution(r.Context(), actor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: dist})
}

func (h *AnalyticsHandler) Projects(w http.ResponseWriter, r *http.Request) {
	actor, err := currentUser(r, h.users)
	if err != nil {
		writeError(w, err)
		return
	}
	perf, err := h.analytics.ProjectPerformance(r.Context(), actor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: perf})
}

func (h *AnalyticsHandler) Trend(w http.ResponseWriter, r *http.Request) {
	actor, err := currentUser(r, h.users)
	if err != nil {
		writeError(w, err)
		return
	}
	points, err := h.analytics.ProductivityTrend(r.Context(), actor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: points})
}
