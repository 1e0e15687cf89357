package domain

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Session identifies the authenticated caller of a data-access operation.
type Session struct {
	UserID string
}

// Validate returns ErrUnauthorized for an empty session.
func (s Session) Validate() error {
	if strings.TrimSpace(s.UserID) == "" {
		return ErrUnauthorized
	}
	return nil
}

// WorkoutRepository persists gym workouts and their exercises. Lookups return
// nil, nil when the record is absent or owned by another user.
type WorkoutRepository interface {
	ListWorkouts(ctx context.Context, userID string, cursor *Cursor, limit int) ([]GymWorkout, *Cursor, error)
	GetWorkout(ctx context.Context, userID, workoutID string) (*GymWorkout, error)
	CreateWorkout(ctx context.Context, workout GymWorkout) error
	UpdateWorkoutTimestamp(ctx context.Context, userID, workoutID string, performedAt, updatedAt time.Time) error
	DeleteExercises(ctx context.Context, userID, workoutID string) error
	InsertExercises(ctx context.Context, userID, workoutID string, exercises []Exercise) error
	DeleteWorkout(ctx context.Context, userID, workoutID string) error
}

// ScheduleRepository persists schedule rows keyed by (user, date, discipline).
type ScheduleRepository interface {
	GetSchedule(ctx context.Context, userID string, date time.Time, discipline string) (*ScheduleRow, error)
	SaveSchedule(ctx context.Context, row ScheduleRow) error
	ListSchedule(ctx context.Context, userID, discipline string, from, to time.Time) ([]ScheduleRow, error)
}

// StatsRepository persists FTP history and yearly totals.
type StatsRepository interface {
	GetFTPHistory(ctx context.Context, userID string) (FTPHistory, error)
	SaveFTPHistory(ctx context.Context, userID string, history FTPHistory) error
	SaveYearStats(ctx context.Context, stats YearStats) error
}

// AnalysisRepository persists ride analyses keyed by (user, external activity id).
type AnalysisRepository interface {
	SaveAnalysis(ctx context.Context, analysis RideAnalysis) error
	GetAnalysis(ctx context.Context, userID, activityID string) (*RideAnalysis, error)
}

// Store bundles every repository the service reads and writes.
type Store interface {
	WorkoutRepository
	ScheduleRepository
	StatsRepository
	AnalysisRepository
}

// Completer produces a single chat completion.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Prompts carries the configured system prompts.
type Prompts struct {
	Analysis string
	Plan     string
}

// Option configures optional behaviour for the Service.
type Option func(*Service)

// WithLogger overrides the logger used for best-effort failures.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithIDGenerator overrides how new record ids are produced.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		s.newID = newID
	}
}

// Service orchestrates workout, schedule and analysis workflows.
type Service struct {
	store     Store
	completer Completer
	prompts   Prompts
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
}

// NewService constructs a Service.
func NewService(store Store, completer Completer, prompts Prompts, opts ...Option) *Service {
	s := &Service{
		store:     store,
		completer: completer,
		prompts:   prompts,
		logger:    zap.NewNop(),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
