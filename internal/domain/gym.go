package domain

import (
	"strings"
	"time"
)

// Exercise is one logged movement of a gym workout.
type Exercise struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Weight    float64 `json:"weight"`
	Sets      int     `json:"sets"`
	Reps      int     `json:"reps"`
	Completed bool    `json:"completed"`
}

// GymWorkout is a logged strength session owned by a user.
type GymWorkout struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	PerformedAt time.Time  `json:"performed_at"`
	Exercises   []Exercise `json:"exercises"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Cursor models the workout list pagination token.
type Cursor struct {
	PerformedAt time.Time
	ID          string
}

func validateExercises(exercises []Exercise) error {
	for _, ex := range exercises {
		if strings.TrimSpace(ex.Name) == "" {
			return Invalid("exercises.name", "is required")
		}
		if ex.Sets < 0 || ex.Reps < 0 || ex.Weight < 0 {
			return Invalid("exercises", "weight, sets and reps must be >= 0")
		}
	}
	return nil
}
