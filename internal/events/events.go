// Package events defines the domain event payloads recorded in the outbox.
package events

import "time"

// Event types.
const (
	TypeWorkoutLogged         = "workout.logged"
	TypeWorkoutDeleted        = "workout.deleted"
	TypeScheduleUpdated       = "schedule.updated"
	TypeRideAnalysisGenerated = "ride_analysis.generated"
)

// Route describes where an event type is published.
type Route struct {
	AggregateType string
	Topic         string
	SchemaSubject string
}

var routes = map[string]Route{
	TypeWorkoutLogged:         {AggregateType: "workout", Topic: TypeWorkoutLogged, SchemaSubject: TypeWorkoutLogged + "-value"},
	TypeWorkoutDeleted:        {AggregateType: "workout", Topic: TypeWorkoutDeleted, SchemaSubject: TypeWorkoutDeleted + "-value"},
	TypeScheduleUpdated:       {AggregateType: "schedule", Topic: TypeScheduleUpdated, SchemaSubject: TypeScheduleUpdated + "-value"},
	TypeRideAnalysisGenerated: {AggregateType: "ride_analysis", Topic: TypeRideAnalysisGenerated, SchemaSubject: TypeRideAnalysisGenerated + "-value"},
}

// RouteFor returns the route registered for eventType.
func RouteFor(eventType string) (Route, bool) {
	r, ok := routes[eventType]
	return r, ok
}

// Types lists every known event type.
func Types() []string {
	return []string{TypeWorkoutLogged, TypeWorkoutDeleted, TypeScheduleUpdated, TypeRideAnalysisGenerated}
}

// WorkoutLogged is emitted when a gym workout is created.
type WorkoutLogged struct {
	WorkoutID     string    `json:"workout_id"`
	UserID        string    `json:"user_id"`
	PerformedAt   time.Time `json:"performed_at"`
	ExerciseCount int       `json:"exercise_count"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// WorkoutDeleted is emitted when a gym workout row is removed.
type WorkoutDeleted struct {
	WorkoutID  string    `json:"workout_id"`
	UserID     string    `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ScheduleUpdated is emitted whenever a schedule row's plan is replaced.
type ScheduleUpdated struct {
	UserID     string    `json:"user_id"`
	Date       string    `json:"date"`
	Discipline string    `json:"discipline"`
	RideIDs    []string  `json:"ride_ids"`
	OccurredAt time.Time `json:"occurred_at"`
}

// RideAnalysisGenerated is emitted when an analysis reaches a terminal status.
type RideAnalysisGenerated struct {
	UserID     string    `json:"user_id"`
	ActivityID string    `json:"activity_id"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}
