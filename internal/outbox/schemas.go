package outbox

import "github.com/oddwes/ridesofjulian/internal/events"

const workoutLoggedSchema = `{
  "type": "object",
  "title": "WorkoutLogged",
  "properties": {
    "workout_id": {"type": "string"},
    "user_id": {"type": "string"},
    "performed_at": {"type": "string", "format": "date-time"},
    "exercise_count": {"type": "integer"},
    "occurred_at": {"type": "string", "format": "date-time"}
  },
  "required": ["workout_id", "user_id", "performed_at", "exercise_count", "occurred_at"],
  "additionalProperties": false
}`

const workoutDeletedSchema = `{
  "type": "object",
  "title": "WorkoutDeleted",
  "properties": {
    "workout_id": {"type": "string"},
    "user_id": {"type": "string"},
    "occurred_at": {"type": "string", "format": "date-time"}
  },
  "required": ["workout_id", "user_id", "occurred_at"],
  "additionalProperties": false
}`

const scheduleUpdatedSchema = `{
  "type": "object",
  "title": "ScheduleUpdated",
  "properties": {
    "user_id": {"type": "string"},
    "date": {"type": "string", "format": "date"},
    "discipline": {"type": "string"},
    "ride_ids": {"type": "array", "items": {"type": "string"}},
    "occurred_at": {"type": "string", "format": "date-time"}
  },
  "required": ["user_id", "date", "discipline", "ride_ids", "occurred_at"],
  "additionalProperties": false
}`

const rideAnalysisGeneratedSchema = `{
  "type": "object",
  "title": "RideAnalysisGenerated",
  "properties": {
    "user_id": {"type": "string"},
    "activity_id": {"type": "string"},
    "status": {"type": "string", "enum": ["complete", "failed"]},
    "occurred_at": {"type": "string", "format": "date-time"}
  },
  "required": ["user_id", "activity_id", "status", "occurred_at"],
  "additionalProperties": false
}`

var schemaCatalog = map[string]string{
	events.TypeWorkoutLogged:         workoutLoggedSchema,
	events.TypeWorkoutDeleted:        workoutDeletedSchema,
	events.TypeScheduleUpdated:       scheduleUpdatedSchema,
	events.TypeRideAnalysisGenerated: rideAnalysisGeneratedSchema,
}

// SchemaFor returns the JSON schema registered for eventType.
func SchemaFor(eventType string) (string, bool) {
	s, ok := schemaCatalog[eventType]
	return s, ok
}
