package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/stian-overasen/connectlog/internal/readiness"
	"github.com/stian-overasen/connectlog/internal/service"
)

const defaultMonths = 2

// SummaryProvider serves daily health summaries.
type SummaryProvider interface {
	Summaries(ctx context.Context, months int) ([]service.Summary, error)
}

// ActivityProvider serves activity records.
type ActivityProvider interface {
	Activities(ctx context.Context, months int) ([]service.ActivityRecord, error)
}

// ReadinessProvider serves today's readiness verdict.
type ReadinessProvider interface {
	Today(ctx context.Context, energy *int) (*readiness.Result, error)
}

// Handler holds the API handlers.
type Handler struct {
	summaries  SummaryProvider
	activities ActivityProvider
	readiness  ReadinessProvider
}

// NewHandler creates the API handler and registers its routes.
func NewHandler(router *mux.Router, summaries SummaryProvider, activities ActivityProvider, rdns ReadinessProvider) *Handler {
	h := &Handler{
		summaries:  summaries,
		activities: activities,
		readiness:  rdns,
	}

	router.HandleFunc("/", h.handleIndex).Methods("GET")
	router.HandleFunc("/api/summary", h.handleSummary).Methods("GET")
	router.HandleFunc("/api/activities", h.handleActivities).Methods("GET")
	router.HandleFunc("/api/readiness", h.handleReadiness).Methods("GET")

	return h
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":        "connectlog",
		"description": "Garmin Connect health telemetry API",
		"endpoints": map[string]interface{}{
			"/api/summary": map[string]string{
				"method":      "GET",
				"parameters":  "months (default: 2)",
				"description": "Daily health summaries for the period",
			},
			"/api/activities": map[string]string{
				"method":      "GET",
				"parameters":  "months (default: 2)",
				"description": "Activities with labeled heart rate zones",
			},
			"/api/readiness": map[string]string{
				"method":      "GET",
				"parameters":  "energy (optional, 1-10)",
				"description": "Today's training readiness",
			},
		},
	})
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	months, err := monthsParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	summaries, err := h.summaries.Summaries(r.Context(), months)
	if err != nil {
		log.Errorf("error fetching summaries: %s", err)
		writeError(w, http.StatusBadGateway, "failed to fetch summaries")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"summaries": summaries})
}

func (h *Handler) handleActivities(w http.ResponseWriter, r *http.Request) {
	months, err := monthsParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	activities, err := h.activities.Activities(r.Context(), months)
	if err != nil {
		log.Errorf("error fetching activities: %s", err)
		writeError(w, http.StatusBadGateway, "failed to fetch activities")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"activities": activities})
}

func (h *Handler) handleReadiness(w http.ResponseWriter, r *http.Request) {
	var energy *int
	if raw := r.URL.Query().Get("energy"); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "energy must be an integer")
			return
		}
		energy = &value
	}

	result, err := h.readiness.Today(r.Context(), energy)
	if errors.Is(err, readiness.ErrInvalidEnergyScore) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		log.Errorf("error evaluating readiness: %s", err)
		writeError(w, http.StatusBadGateway, "failed to evaluate readiness")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func monthsParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("months")
	if raw == "" {
		return defaultMonths, nil
	}
	months, err := strconv.Atoi(raw)
	if err != nil || months < 1 {
		return 0, errors.New("months must be a positive integer")
	}
	return months, nil
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Errorf("failed to write response: %s", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
