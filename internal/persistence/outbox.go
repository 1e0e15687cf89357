package persistence

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/oddwes/ridesofjulian/internal/domain"
	"github.com/oddwes/ridesofjulian/internal/events"
)

// Event is a domain event waiting to be written to the outbox alongside the
// mutation that produced it.
type Event struct {
	UserID       string
	AggregateID  string
	EventType    string
	PartitionKey string
	DedupeKey    string
	Payload      json.RawMessage
}

// Route resolves the topic and schema subject of the event.
func (e Event) Route() (events.Route, error) {
	route, ok := events.RouteFor(e.EventType)
	if !ok {
		return events.Route{}, fmt.Errorf("unknown event type: %s", e.EventType)
	}
	return route, nil
}

func newEvent(userID, aggregateID, eventType, dedupe string, payload any) (Event, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{
		UserID:       userID,
		AggregateID:  aggregateID,
		EventType:    eventType,
		PartitionKey: userID,
		DedupeKey:    fmt.Sprintf("%s:%s:%s", aggregateID, eventType, dedupe),
		Payload:      body,
	}, nil
}

// WorkoutLoggedEvent builds the event for a newly created workout.
func WorkoutLoggedEvent(w domain.GymWorkout) (Event, error) {
	return newEvent(w.UserID, w.ID, events.TypeWorkoutLogged, stamp(w.CreatedAt), events.WorkoutLogged{
		WorkoutID:     w.ID,
		UserID:        w.UserID,
		PerformedAt:   w.PerformedAt,
		ExerciseCount: len(w.Exercises),
		OccurredAt:    w.CreatedAt,
	})
}

// WorkoutDeletedEvent builds the event for a removed workout.
func WorkoutDeletedEvent(userID, workoutID string, at time.Time) (Event, error) {
	return newEvent(userID, workoutID, events.TypeWorkoutDeleted, stamp(at), events.WorkoutDeleted{
		WorkoutID:  workoutID,
		UserID:     userID,
		OccurredAt: at,
	})
}

// ScheduleUpdatedEvent builds the event for a replaced schedule plan.
func ScheduleUpdatedEvent(row domain.ScheduleRow) (Event, error) {
	ids := make([]string, len(row.Plan))
	for i, ride := range row.Plan {
		ids[i] = ride.ID
	}
	date := row.Date.Format(domain.DateLayout)
	return newEvent(row.UserID, date+"/"+row.Discipline, events.TypeScheduleUpdated, stamp(row.UpdatedAt), events.ScheduleUpdated{
		UserID:     row.UserID,
		Date:       date,
		Discipline: row.Discipline,
		RideIDs:    ids,
		OccurredAt: row.UpdatedAt,
	})
}

// AnalysisEvent builds the event for an analysis that reached a terminal
// status. Pending rows produce no event.
func AnalysisEvent(a domain.RideAnalysis) (Event, bool, error) {
	if a.Status == domain.AnalysisPending {
		return Event{}, false, nil
	}
	ev, err := newEvent(a.UserID, a.ActivityID, events.TypeRideAnalysisGenerated, stamp(a.UpdatedAt), events.RideAnalysisGenerated{
		UserID:     a.UserID,
		ActivityID: a.ActivityID,
		Status:     string(a.Status),
		OccurredAt: a.UpdatedAt,
	})
	return ev, err == nil, err
}

func stamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
