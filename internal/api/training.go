package api

import (
	"net/http"
	"strconv"

	"github.com/oddwes/ridesofjulian/internal/auth"
	"github.com/oddwes/ridesofjulian/internal/domain"
	"github.com/oddwes/ridesofjulian/internal/training"
)

// TrainingWeekResponse is the weekly grid with its planned load.
type TrainingWeekResponse struct {
	WeekStart string               `json:"week_start"`
	FTP       *float64             `json:"ftp,omitempty"`
	Days      []training.Day       `json:"days"`
	Summary   training.WeekSummary `json:"summary"`
	Zones     []training.Zone      `json:"zones,omitempty"`

	// TimeInZones is the planned seconds per zone number across the week.
	TimeInZones map[int]int `json:"time_in_zones,omitempty"`
}

// FTPRequest is the payload for PUT /v1/ftp.
type FTPRequest struct {
	Date  string  `json:"date"`
	Watts float64 `json:"watts"`
}

// FTPResponse returns the full FTP history.
type FTPResponse struct {
	History domain.FTPHistory `json:"history"`
}

// ActivitiesResponse lists reconciled provider activities.
type ActivitiesResponse struct {
	Year  int               `json:"year"`
	Items []domain.Activity `json:"items"`
}

func (h *Handler) trainingWeek(w http.ResponseWriter, r *http.Request) {
	day := h.now()
	if raw := r.URL.Query().Get("start"); raw != "" {
		parsed, err := domain.ParseDate(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", "start must be YYYY-MM-DD")
			return
		}
		day = parsed
	}
	start := training.WeekStart(day)
	session := auth.SessionFromContext(r.Context())

	rows, err := h.service.ListSchedule(r.Context(), session, start, start.AddDate(0, 0, 6))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	history, err := h.service.FTPHistory(r.Context(), session)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	var workouts []domain.RideWorkout
	for _, row := range rows {
		workouts = append(workouts, row.Plan...)
	}

	resp := TrainingWeekResponse{
		WeekStart: start.Format(domain.DateLayout),
		Days:      training.WeekGrid(start, workouts),
		Summary:   training.WeekSummary{WeekStart: start},
	}
	if summaries := training.WeeklySummaries(workouts, history); len(summaries) > 0 {
		resp.Summary = summaries[0]
	}
	for _, workout := range workouts {
		for zone, seconds := range training.TimeInZones(workout, history) {
			if resp.TimeInZones == nil {
				resp.TimeInZones = make(map[int]int)
			}
			resp.TimeInZones[zone] += seconds
		}
	}
	if ftp, ok := history.At(start); ok {
		resp.FTP = domain.Float(ftp)
		resp.Zones = training.Zones(ftp)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) getFTP(w http.ResponseWriter, r *http.Request) {
	history, err := h.service.FTPHistory(r.Context(), auth.SessionFromContext(r.Context()))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	if history == nil {
		history = domain.FTPHistory{}
	}
	writeJSON(w, http.StatusOK, FTPResponse{History: history})
}

func (h *Handler) setFTP(w http.ResponseWriter, r *http.Request) {
	var req FTPRequest
	if !decodeBody(w, r, &req) {
		return
	}
	date := h.now()
	if req.Date != "" {
		parsed, err := domain.ParseDate(req.Date)
		if err != nil {
			h.writeDomainError(w, r, err)
			return
		}
		date = parsed
	}
	history, err := h.service.SetFTP(r.Context(), auth.SessionFromContext(r.Context()), date, req.Watts)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, FTPResponse{History: history})
}

func (h *Handler) listActivities(w http.ResponseWriter, r *http.Request) {
	if h.activities == nil {
		writeError(w, http.StatusNotFound, "not_found", "activity providers are not configured")
		return
	}
	year := h.now().Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 2000 || parsed > year+1 {
			writeError(w, http.StatusBadRequest, "validation_failed", "year is invalid")
			return
		}
		year = parsed
	}

	items, err := h.activities.YearActivities(r.Context(), auth.SessionFromContext(r.Context()), year)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	if items == nil {
		items = []domain.Activity{}
	}
	writeJSON(w, http.StatusOK, ActivitiesResponse{Year: year, Items: items})
}
