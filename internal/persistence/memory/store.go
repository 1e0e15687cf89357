// Package memory provides an in-process implementation of domain.Store used
// for local development and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/oddwes/ridesofjulian/internal/domain"
	"github.com/oddwes/ridesofjulian/internal/persistence"
)

var _ domain.Store = (*Store)(nil)

type scheduleKey struct {
	userID     string
	date       string
	discipline string
}

type analysisKey struct {
	userID     string
	activityID string
}

type yearKey struct {
	userID string
	year   int
}

// Store keeps every record in maps guarded by a single mutex. Events that the
// Postgres repository would write to the outbox are collected in order.
type Store struct {
	mu        sync.RWMutex
	workouts  map[string]domain.GymWorkout
	schedule  map[scheduleKey]domain.ScheduleRow
	ftp       map[string]domain.FTPHistory
	years     map[yearKey]domain.YearStats
	analyses  map[analysisKey]domain.RideAnalysis
	published []persistence.Event
}

// NewStore constructs an empty Store.
func NewStore() *Store {
	return &Store{
		workouts: make(map[string]domain.GymWorkout),
		schedule: make(map[scheduleKey]domain.ScheduleRow),
		ftp:      make(map[string]domain.FTPHistory),
		years:    make(map[yearKey]domain.YearStats),
		analyses: make(map[analysisKey]domain.RideAnalysis),
	}
}

// Events returns the recorded events in write order.
func (s *Store) Events() []persistence.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]persistence.Event(nil), s.published...)
}

func (s *Store) record(ev persistence.Event, err error) error {
	if err != nil {
		return err
	}
	s.published = append(s.published, ev)
	return nil
}

// ListWorkouts returns the user's workouts newest first.
func (s *Store) ListWorkouts(_ context.Context, userID string, cursor *domain.Cursor, limit int) ([]domain.GymWorkout, *domain.Cursor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]domain.GymWorkout, 0)
	for _, w := range s.workouts {
		if w.UserID != userID {
			continue
		}
		if cursor != nil && !afterCursor(w, *cursor) {
			continue
		}
		items = append(items, cloneWorkout(w))
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].PerformedAt.Equal(items[j].PerformedAt) {
			return items[i].PerformedAt.After(items[j].PerformedAt)
		}
		return items[i].ID > items[j].ID
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	var next *domain.Cursor
	if limit > 0 && len(items) == limit {
		last := items[len(items)-1]
		next = &domain.Cursor{PerformedAt: last.PerformedAt, ID: last.ID}
	}
	return items, next, nil
}

// afterCursor reports whether w is listed after the cursor position.
func afterCursor(w domain.GymWorkout, c domain.Cursor) bool {
	if w.PerformedAt.Equal(c.PerformedAt) {
		return w.ID < c.ID
	}
	return w.PerformedAt.Before(c.PerformedAt)
}

// GetWorkout returns nil when the workout is absent or owned by someone else.
func (s *Store) GetWorkout(_ context.Context, userID, workoutID string) (*domain.GymWorkout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.workouts[workoutID]
	if !ok || w.UserID != userID {
		return nil, nil
	}
	out := cloneWorkout(w)
	return &out, nil
}

func (s *Store) CreateWorkout(_ context.Context, workout domain.GymWorkout) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workouts[workout.ID] = cloneWorkout(workout)
	return s.record(persistence.WorkoutLoggedEvent(workout))
}

func (s *Store) UpdateWorkoutTimestamp(_ context.Context, userID, workoutID string, performedAt, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.workouts[workoutID]
	if !ok || w.UserID != userID {
		return nil
	}
	w.PerformedAt = performedAt
	w.UpdatedAt = updatedAt
	s.workouts[workoutID] = w
	return nil
}

func (s *Store) DeleteExercises(_ context.Context, userID, workoutID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.workouts[workoutID]
	if !ok || w.UserID != userID {
		return nil
	}
	w.Exercises = nil
	s.workouts[workoutID] = w
	return nil
}

func (s *Store) InsertExercises(_ context.Context, userID, workoutID string, exercises []domain.Exercise) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.workouts[workoutID]
	if !ok || w.UserID != userID {
		return nil
	}
	w.Exercises = append(w.Exercises, exercises...)
	s.workouts[workoutID] = w
	return nil
}

func (s *Store) DeleteWorkout(_ context.Context, userID, workoutID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.workouts[workoutID]
	if !ok || w.UserID != userID {
		return nil
	}
	delete(s.workouts, workoutID)
	return s.record(persistence.WorkoutDeletedEvent(userID, workoutID, time.Now().UTC()))
}

func (s *Store) GetSchedule(_ context.Context, userID string, date time.Time, discipline string) (*domain.ScheduleRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.schedule[keyFor(userID, date, discipline)]
	if !ok {
		return nil, nil
	}
	out := cloneRow(row)
	return &out, nil
}

// SaveSchedule replaces the whole row.
func (s *Store) SaveSchedule(_ context.Context, row domain.ScheduleRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schedule[keyFor(row.UserID, row.Date, row.Discipline)] = cloneRow(row)
	return s.record(persistence.ScheduleUpdatedEvent(row))
}

func (s *Store) ListSchedule(_ context.Context, userID, discipline string, from, to time.Time) ([]domain.ScheduleRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := make([]domain.ScheduleRow, 0)
	for key, row := range s.schedule {
		if key.userID != userID || key.discipline != discipline {
			continue
		}
		if row.Date.Before(from) || row.Date.After(to) {
			continue
		}
		rows = append(rows, cloneRow(row))
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })
	return rows, nil
}

func (s *Store) GetFTPHistory(_ context.Context, userID string) (domain.FTPHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append(domain.FTPHistory(nil), s.ftp[userID]...), nil
}

func (s *Store) SaveFTPHistory(_ context.Context, userID string, history domain.FTPHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ftp[userID] = append(domain.FTPHistory(nil), history...)
	return nil
}

func (s *Store) SaveYearStats(_ context.Context, stats domain.YearStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.years[yearKey{userID: stats.UserID, year: stats.Year}] = stats
	return nil
}

// YearStats returns the stored totals for (userID, year).
func (s *Store) YearStats(userID string, year int) (domain.YearStats, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats, ok := s.years[yearKey{userID: userID, year: year}]
	return stats, ok
}

func (s *Store) SaveAnalysis(_ context.Context, analysis domain.RideAnalysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analyses[analysisKey{userID: analysis.UserID, activityID: analysis.ActivityID}] = analysis
	ev, ok, err := persistence.AnalysisEvent(analysis)
	if err != nil || !ok {
		return err
	}
	s.published = append(s.published, ev)
	return nil
}

func (s *Store) GetAnalysis(_ context.Context, userID, activityID string) (*domain.RideAnalysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.analyses[analysisKey{userID: userID, activityID: activityID}]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func keyFor(userID string, date time.Time, discipline string) scheduleKey {
	return scheduleKey{userID: userID, date: domain.CalendarDate(date).Format(domain.DateLayout), discipline: discipline}
}

func cloneWorkout(w domain.GymWorkout) domain.GymWorkout {
	w.Exercises = append([]domain.Exercise(nil), w.Exercises...)
	return w
}

func cloneRow(row domain.ScheduleRow) domain.ScheduleRow {
	plan := make([]domain.RideWorkout, len(row.Plan))
	for i, ride := range row.Plan {
		ride.Intervals = append([]domain.Interval(nil), ride.Intervals...)
		plan[i] = ride
	}
	row.Plan = plan
	return row
}
