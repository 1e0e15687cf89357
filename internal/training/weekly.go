package training

import (
	"sort"
	"time"

	"github.com/oddwes/ridesofjulian/internal/domain"
)

// DayRest marks a grid day without any planned ride.
const DayRest = "rest"

// WeekStart returns midnight UTC of the ISO week's Monday containing t.
func WeekStart(t time.Time) time.Time {
	day := domain.CalendarDate(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// WeekSummary aggregates planned load for one ISO week.
type WeekSummary struct {
	WeekStart time.Time `json:"week_start"`
	Workouts  int       `json:"workouts"`
	Minutes   float64   `json:"minutes"`
	TSS       int       `json:"tss"`
}

// WeeklySummaries buckets workouts by ISO week and sums duration and TSS. The
// result is ordered by week start.
func WeeklySummaries(workouts []domain.RideWorkout, history domain.FTPHistory) []WeekSummary {
	buckets := make(map[time.Time]*WeekSummary)
	for _, w := range workouts {
		start := WeekStart(w.Date)
		s, ok := buckets[start]
		if !ok {
			s = &WeekSummary{WeekStart: start}
			buckets[start] = s
		}
		s.Workouts++
		s.Minutes += float64(WorkoutDuration(w)) / 60
		s.TSS += WorkoutTSS(w, history)
	}

	out := make([]WeekSummary, 0, len(buckets))
	for _, s := range buckets {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WeekStart.Before(out[j].WeekStart) })
	return out
}

// Day is one cell of the weekly grid. Rest days are synthesised and never stored.
type Day struct {
	Date     time.Time            `json:"date"`
	Kind     string               `json:"kind"`
	Workouts []domain.RideWorkout `json:"workouts,omitempty"`
}

// WeekGrid lays the workouts falling inside the week starting at weekStart
// onto seven days, Monday first.
func WeekGrid(weekStart time.Time, workouts []domain.RideWorkout) []Day {
	start := WeekStart(weekStart)
	days := make([]Day, 7)
	for i := range days {
		days[i] = Day{Date: start.AddDate(0, 0, i), Kind: DayRest}
	}
	for _, w := range workouts {
		idx := int(domain.CalendarDate(w.Date).Sub(start).Hours() / 24)
		if idx < 0 || idx >= len(days) {
			continue
		}
		days[idx].Kind = "ride"
		days[idx].Workouts = append(days[idx].Workouts, w)
	}
	return days
}
