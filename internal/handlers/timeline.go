package handlers

import (
	"net/http"

	"chartline/internal/services"
	"chartline/pkg/httpx"
)

// TimelineHandler serves the clinical timeline payload for the
// dashboard.
type TimelineHandler struct {
	service *services.TimelineService
}

// NewTimelineHandler creates a TimelineHandler.
func NewTimelineHandler(service *services.TimelineService) *TimelineHandler {
	return &TimelineHandler{service: service}
}

// TimelineResponse bundles the raw timeline with its chart spec so the
// front-end renders without further computation.
type TimelineResponse struct {
	Timeline any `json:"timeline"`
	Chart    any `json:"chart"`
}

// Get returns the sample patient's timeline and chart.
func (h *TimelineHandler) Get(w http.ResponseWriter, r *http.Request) {
	timeline := h.service.SampleTimeline()
	httpx.WriteJSON(w, http.StatusOK, TimelineResponse{
		Timeline: timeline,
		Chart:    h.service.BuildChart(timeline),
	})
}
