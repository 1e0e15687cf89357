package domain

import (
	"context"
	"time"
)

// Workout listing page sizes. Limits outside 1..MaxListLimit are normalised
// before reaching the store.
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// WorkoutInput captures a gym workout create or update payload.
type WorkoutInput struct {
	PerformedAt time.Time
	Exercises   []Exercise
}

func (in WorkoutInput) validate() error {
	if in.PerformedAt.IsZero() {
		return Invalid("performed_at", "is required")
	}
	return validateExercises(in.Exercises)
}

// ListWorkouts fetches the caller's workouts with cursor pagination.
func (s *Service) ListWorkouts(ctx context.Context, session Session, cursor *Cursor, limit int) ([]GymWorkout, *Cursor, error) {
	if err := session.Validate(); err != nil {
		return nil, nil, err
	}
	switch {
	case limit <= 0:
		limit = DefaultListLimit
	case limit > MaxListLimit:
		limit = MaxListLimit
	}
	items, next, err := s.store.ListWorkouts(ctx, session.UserID, cursor, limit)
	if err != nil {
		return nil, nil, Downstream("store", err)
	}
	return items, next, nil
}

// GetWorkout fetches one workout owned by the caller.
func (s *Service) GetWorkout(ctx context.Context, session Session, workoutID string) (*GymWorkout, error) {
	if err := session.Validate(); err != nil {
		return nil, err
	}
	workout, err := s.store.GetWorkout(ctx, session.UserID, workoutID)
	if err != nil {
		return nil, Downstream("store", err)
	}
	if workout == nil {
		return nil, ErrNotFound
	}
	return workout, nil
}

// CreateWorkout logs a new gym workout for the caller.
func (s *Service) CreateWorkout(ctx context.Context, session Session, in WorkoutInput) (*GymWorkout, error) {
	if err := session.Validate(); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	now := s.now()
	workout := GymWorkout{
		ID:          s.newID(),
		UserID:      session.UserID,
		PerformedAt: in.PerformedAt.UTC(),
		Exercises:   s.withExerciseIDs(in.Exercises),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateWorkout(ctx, workout); err != nil {
		return nil, Downstream("store", err)
	}
	return &workout, nil
}

// UpdateWorkout replaces the workout timestamp and its whole exercise list.
// Exercises are deleted then re-inserted; the steps are not transactional.
func (s *Service) UpdateWorkout(ctx context.Context, session Session, workoutID string, in WorkoutInput) (*GymWorkout, error) {
	if err := session.Validate(); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	existing, err := s.GetWorkout(ctx, session, workoutID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	exercises := s.withExerciseIDs(in.Exercises)
	if err := s.store.UpdateWorkoutTimestamp(ctx, session.UserID, workoutID, in.PerformedAt.UTC(), now); err != nil {
		return nil, Downstream("store", err)
	}
	if err := s.store.DeleteExercises(ctx, session.UserID, workoutID); err != nil {
		return nil, Downstream("store", err)
	}
	if err := s.store.InsertExercises(ctx, session.UserID, workoutID, exercises); err != nil {
		return nil, Downstream("store", err)
	}

	existing.PerformedAt = in.PerformedAt.UTC()
	existing.Exercises = exercises
	existing.UpdatedAt = now
	return existing, nil
}

// DeleteWorkout removes the exercise rows and then the workout row.
func (s *Service) DeleteWorkout(ctx context.Context, session Session, workoutID string) error {
	if _, err := s.GetWorkout(ctx, session, workoutID); err != nil {
		return err
	}
	if err := s.store.DeleteExercises(ctx, session.UserID, workoutID); err != nil {
		return Downstream("store", err)
	}
	if err := s.store.DeleteWorkout(ctx, session.UserID, workoutID); err != nil {
		return Downstream("store", err)
	}
	return nil
}

func (s *Service) withExerciseIDs(exercises []Exercise) []Exercise {
	out := make([]Exercise, len(exercises))
	for i, ex := range exercises {
		if ex.ID == "" {
			ex.ID = s.newID()
		}
		out[i] = ex
	}
	return out
}
