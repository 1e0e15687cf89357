package domain

import (
	"sort"
	"strings"
	"time"
)

// DisciplineCycling is the only schedule discipline the backend writes.
const DisciplineCycling = "cycling"

// DateLayout is the calendar date format used on the wire and in schedule rows.
const DateLayout = "2006-01-02"

// Interval is one planned segment of a structured ride.
type Interval struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Duration int     `json:"duration"`
	PowerMin float64 `json:"power_min"`
	PowerMax float64 `json:"power_max"`
}

// AveragePower is the midpoint of the interval's target range.
func (i Interval) AveragePower() float64 {
	return (i.PowerMin + i.PowerMax) / 2
}

// RideWorkout is a planned training session for a calendar date. Interval
// order is execution order.
type RideWorkout struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Date       time.Time  `json:"date"`
	Intervals  []Interval `json:"intervals"`
	ExternalID string     `json:"external_id,omitempty"`
}

// Validate checks the fields a ride must carry before it is written.
func (w RideWorkout) Validate() error {
	if strings.TrimSpace(w.Title) == "" {
		return Invalid("title", "is required")
	}
	for _, iv := range w.Intervals {
		if iv.Duration <= 0 {
			return Invalid("intervals.duration", "must be > 0")
		}
		if iv.PowerMin < 0 || iv.PowerMax < iv.PowerMin {
			return Invalid("intervals.power", "range is invalid")
		}
	}
	return nil
}

// ScheduleRow holds the plan collection for one (user, date, discipline). The
// plan is always replaced as a whole.
type ScheduleRow struct {
	UserID     string        `json:"user_id"`
	Date       time.Time     `json:"date"`
	Discipline string        `json:"discipline"`
	Plan       []RideWorkout `json:"plan"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// RemoveRide returns plan without the ride identified by id, and whether it was present.
func RemoveRide(plan []RideWorkout, id string) ([]RideWorkout, bool) {
	out := make([]RideWorkout, 0, len(plan))
	found := false
	for _, ride := range plan {
		if ride.ID == id {
			found = true
			continue
		}
		out = append(out, ride)
	}
	return out, found
}

// ReplaceRide returns plan with the ride sharing ride.ID swapped in place.
func ReplaceRide(plan []RideWorkout, ride RideWorkout) ([]RideWorkout, bool) {
	out := make([]RideWorkout, len(plan))
	copy(out, plan)
	for i := range out {
		if out[i].ID == ride.ID {
			out[i] = ride
			return out, true
		}
	}
	return out, false
}

// FTPEntry is an FTP value effective from a date onwards.
type FTPEntry struct {
	EffectiveDate time.Time `json:"effective_date"`
	Watts         float64   `json:"watts"`
}

// FTPHistory maps effective dates to FTP values.
type FTPHistory []FTPEntry

// At returns the most recent FTP at or before date.
func (h FTPHistory) At(date time.Time) (float64, bool) {
	day := CalendarDate(date)
	var (
		best  FTPEntry
		found bool
	)
	for _, entry := range h {
		eff := CalendarDate(entry.EffectiveDate)
		if eff.After(day) {
			continue
		}
		if !found || eff.After(CalendarDate(best.EffectiveDate)) {
			best = entry
			found = true
		}
	}
	return best.Watts, found
}

// With returns a copy of h with watts effective from date, replacing any entry on the same day.
func (h FTPHistory) With(date time.Time, watts float64) FTPHistory {
	day := CalendarDate(date)
	out := make(FTPHistory, 0, len(h)+1)
	for _, entry := range h {
		if CalendarDate(entry.EffectiveDate).Equal(day) {
			continue
		}
		out = append(out, entry)
	}
	out = append(out, FTPEntry{EffectiveDate: day, Watts: watts})
	sort.Slice(out, func(i, j int) bool { return out[i].EffectiveDate.Before(out[j].EffectiveDate) })
	return out
}

// CalendarDate truncates t to midnight UTC of its calendar day.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD value.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, Invalid("date", "must be YYYY-MM-DD")
	}
	return t, nil
}
