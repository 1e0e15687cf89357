package domain

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"
)

type scheduleKey struct {
	userID     string
	date       string
	discipline string
}

// fakeStore records the order of calls and injects failures per operation.
type fakeStore struct {
	mu        sync.Mutex
	calls     []string
	failOn    map[string]error
	workouts  map[string]GymWorkout
	schedule  map[scheduleKey]ScheduleRow
	ftp       map[string]FTPHistory
	yearStats []YearStats
	analyses  []RideAnalysis
	lastLimit int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		failOn:   map[string]error{},
		workouts: map[string]GymWorkout{},
		schedule: map[scheduleKey]ScheduleRow{},
		ftp:      map[string]FTPHistory{},
	}
}

var errStoreDown = errors.New("store down")

func (f *fakeStore) record(op string) error {
	f.calls = append(f.calls, op)
	return f.failOn[op]
}

func (f *fakeStore) ListWorkouts(ctx context.Context, userID string, cursor *Cursor, limit int) ([]GymWorkout, *Cursor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("ListWorkouts"); err != nil {
		return nil, nil, err
	}
	f.lastLimit = limit
	var out []GymWorkout
	for _, w := range f.workouts {
		if w.UserID == userID {
			out = append(out, w)
		}
	}
	return out, nil, nil
}

func (f *fakeStore) GetWorkout(ctx context.Context, userID, workoutID string) (*GymWorkout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetWorkout"); err != nil {
		return nil, err
	}
	w, ok := f.workouts[workoutID]
	if !ok || w.UserID != userID {
		return nil, nil
	}
	return &w, nil
}

func (f *fakeStore) CreateWorkout(ctx context.Context, workout GymWorkout) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("CreateWorkout"); err != nil {
		return err
	}
	f.workouts[workout.ID] = workout
	return nil
}

func (f *fakeStore) UpdateWorkoutTimestamp(ctx context.Context, userID, workoutID string, performedAt, updatedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("UpdateWorkoutTimestamp"); err != nil {
		return err
	}
	w := f.workouts[workoutID]
	w.PerformedAt = performedAt
	w.UpdatedAt = updatedAt
	f.workouts[workoutID] = w
	return nil
}

func (f *fakeStore) DeleteExercises(ctx context.Context, userID, workoutID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("DeleteExercises"); err != nil {
		return err
	}
	w := f.workouts[workoutID]
	w.Exercises = nil
	f.workouts[workoutID] = w
	return nil
}

func (f *fakeStore) InsertExercises(ctx context.Context, userID, workoutID string, exercises []Exercise) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("InsertExercises"); err != nil {
		return err
	}
	w := f.workouts[workoutID]
	w.Exercises = append(w.Exercises, exercises...)
	f.workouts[workoutID] = w
	return nil
}

func (f *fakeStore) DeleteWorkout(ctx context.Context, userID, workoutID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("DeleteWorkout"); err != nil {
		return err
	}
	delete(f.workouts, workoutID)
	return nil
}

func (f *fakeStore) GetSchedule(ctx context.Context, userID string, date time.Time, discipline string) (*ScheduleRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetSchedule"); err != nil {
		return nil, err
	}
	row, ok := f.schedule[scheduleKey{userID, date.Format(DateLayout), discipline}]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (f *fakeStore) SaveSchedule(ctx context.Context, row ScheduleRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("SaveSchedule"); err != nil {
		return err
	}
	f.schedule[scheduleKey{row.UserID, row.Date.Format(DateLayout), row.Discipline}] = row
	return nil
}

func (f *fakeStore) ListSchedule(ctx context.Context, userID, discipline string, from, to time.Time) ([]ScheduleRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("ListSchedule"); err != nil {
		return nil, err
	}
	var out []ScheduleRow
	for key, row := range f.schedule {
		if key.userID != userID || key.discipline != discipline {
			continue
		}
		if row.Date.Before(from) || row.Date.After(to) {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

func (f *fakeStore) GetFTPHistory(ctx context.Context, userID string) (FTPHistory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetFTPHistory"); err != nil {
		return nil, err
	}
	return f.ftp[userID], nil
}

func (f *fakeStore) SaveFTPHistory(ctx context.Context, userID string, history FTPHistory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("SaveFTPHistory"); err != nil {
		return err
	}
	f.ftp[userID] = history
	return nil
}

func (f *fakeStore) SaveYearStats(ctx context.Context, stats YearStats) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("SaveYearStats"); err != nil {
		return err
	}
	f.yearStats = append(f.yearStats, stats)
	return nil
}

func (f *fakeStore) SaveAnalysis(ctx context.Context, analysis RideAnalysis) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("SaveAnalysis:" + string(analysis.Status)); err != nil {
		return err
	}
	f.analyses = append(f.analyses, analysis)
	return nil
}

func (f *fakeStore) GetAnalysis(ctx context.Context, userID, activityID string) (*RideAnalysis, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetAnalysis"); err != nil {
		return nil, err
	}
	for i := len(f.analyses) - 1; i >= 0; i-- {
		a := f.analyses[i]
		if a.UserID == userID && a.ActivityID == activityID {
			return &a, nil
		}
	}
	return nil, nil
}

type fakeCompleter struct {
	response string
	err      error
	system   string
	user     string
	calls    int
}

func (c *fakeCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	c.calls++
	c.system = systemPrompt
	c.user = userPrompt
	return c.response, c.err
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return "id-" + strconv.Itoa(n)
	}
}

var testNow = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

func newTestService(store *fakeStore, completer Completer) *Service {
	return NewService(store, completer, Prompts{Analysis: "analyse", Plan: "plan"},
		WithClock(func() time.Time { return testNow }),
		WithIDGenerator(sequentialIDs()),
	)
}
