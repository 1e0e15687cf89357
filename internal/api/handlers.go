// Package api exposes HTTP handlers for the ride tracking backend.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/oddwes/ridesofjulian/internal/domain"
)

// maxBodyBytes bounds request bodies. Analysis requests carry ride history blobs.
const maxBodyBytes = 4 << 20

// ActivityLister serves the unified provider activity listing.
type ActivityLister interface {
	YearActivities(ctx context.Context, session domain.Session, year int) ([]domain.Activity, error)
}

// RidePusher schedules a planned ride with a provider and returns the
// provider's id for it.
type RidePusher interface {
	PushRide(ctx context.Context, session domain.Session, ride domain.RideWorkout) (string, error)
}

// Option configures optional handler behaviour.
type Option func(*Handler)

// WithLogger overrides the logger used for server errors.
func WithLogger(logger *zap.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithRidePusher enables pushing scheduled rides to a provider.
func WithRidePusher(pusher RidePusher) Option {
	return func(h *Handler) {
		h.pusher = pusher
	}
}

// WithClock overrides the time source used for default query values.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		h.now = now
	}
}

// Handler coordinates HTTP requests with the domain service.
type Handler struct {
	service    *domain.Service
	activities ActivityLister
	pusher     RidePusher
	logger     *zap.Logger
	now        func() time.Time
}

// NewHandler builds a Handler. activities may be nil when no provider is configured.
func NewHandler(service *domain.Service, activities ActivityLister, opts ...Option) *Handler {
	h := &Handler{
		service:    service,
		activities: activities,
		logger:     zap.NewNop(),
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/workouts", h.listWorkouts)
	mux.HandleFunc("POST /v1/workouts", h.createWorkout)
	mux.HandleFunc("GET /v1/workouts/{id}", h.getWorkout)
	mux.HandleFunc("PUT /v1/workouts/{id}", h.updateWorkout)
	mux.HandleFunc("DELETE /v1/workouts/{id}", h.deleteWorkout)

	mux.HandleFunc("POST /v1/ride-analysis", h.generateAnalysis)
	mux.HandleFunc("GET /v1/ride-analysis/{activity_id}", h.getAnalysis)
	mux.HandleFunc("POST /v1/plans", h.generatePlan)

	mux.HandleFunc("GET /v1/schedule", h.listSchedule)
	mux.HandleFunc("POST /v1/schedule/{date}/rides", h.addRide)
	mux.HandleFunc("PUT /v1/schedule/{date}/rides/{id}", h.editRide)
	mux.HandleFunc("DELETE /v1/schedule/{date}/rides/{id}", h.deleteRide)
	mux.HandleFunc("POST /v1/schedule/{date}/rides/{id}/push", h.pushRide)

	mux.HandleFunc("GET /v1/training/week", h.trainingWeek)
	mux.HandleFunc("GET /v1/ftp", h.getFTP)
	mux.HandleFunc("PUT /v1/ftp", h.setFTP)

	mux.HandleFunc("GET /v1/activities", h.listActivities)
	mux.HandleFunc("GET /healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// writeDomainError maps service errors onto status codes. Downstream failures
// are checked first because they may wrap a validation error from a provider.
func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var downstream *domain.DownstreamError
	switch {
	case errors.As(err, &downstream):
		h.logger.Error("downstream failure",
			zap.String("path", r.URL.Path),
			zap.String("service", downstream.Service),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "downstream_error", downstream.Service+" request failed")
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing or invalid session")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "resource not found")
	default:
		h.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
