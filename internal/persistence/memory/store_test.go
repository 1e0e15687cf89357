package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oddwes/ridesofjulian/internal/domain"
	"github.com/oddwes/ridesofjulian/internal/events"
)

func TestWorkoutPagination(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	base := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, store.CreateWorkout(ctx, domain.GymWorkout{ID: id, UserID: "u1", PerformedAt: base.Add(time.Duration(i) * time.Hour)}))
	}
	require.NoError(t, store.CreateWorkout(ctx, domain.GymWorkout{ID: "other", UserID: "u2", PerformedAt: base}))

	page, next, err := store.ListWorkouts(ctx, "u1", nil, 2)
	require.NoError(t, err)
	require.Equal(t, []string{"e", "d"}, ids(page))
	require.NotNil(t, next)

	page, next, err = store.ListWorkouts(ctx, "u1", next, 2)
	require.NoError(t, err)
	require.Equal(t, []string{"c", "b"}, ids(page))

	page, next, err = store.ListWorkouts(ctx, "u1", next, 2)
	require.NoError(t, err)
	require.Equal(t, []string{"a"}, ids(page))
	require.Nil(t, next)
}

func TestWorkoutOwnership(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	require.NoError(t, store.CreateWorkout(ctx, domain.GymWorkout{ID: "w1", UserID: "u1", Exercises: []domain.Exercise{{Name: "squat"}}}))

	got, err := store.GetWorkout(ctx, "u2", "w1")
	require.NoError(t, err)
	require.Nil(t, got)

	require.NoError(t, store.DeleteWorkout(ctx, "u2", "w1"))
	got, err = store.GetWorkout(ctx, "u1", "w1")
	require.NoError(t, err)
	require.NotNil(t, got)

	got.Exercises[0].Name = "mutated"
	again, err := store.GetWorkout(ctx, "u1", "w1")
	require.NoError(t, err)
	require.Equal(t, "squat", again.Exercises[0].Name)
}

func TestServiceFlowRecordsEvents(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	completer := completerFunc(func(context.Context, string, string) (string, error) { return "Nice ride.", nil })
	svc := domain.NewService(store, completer, domain.Prompts{Analysis: "coach"})
	session := domain.Session{UserID: "u1"}
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	w, err := svc.CreateWorkout(ctx, session, domain.WorkoutInput{PerformedAt: day, Exercises: []domain.Exercise{{Name: "deadlift", Sets: 3, Reps: 5}}})
	require.NoError(t, err)

	ride, err := svc.AddRide(ctx, session, day, domain.RideWorkout{Title: "Sweet spot", Intervals: []domain.Interval{{Duration: 600, PowerMin: 200, PowerMax: 220}}})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteRide(ctx, session, day, ride.ID))

	rows, err := svc.ListSchedule(ctx, session, day, day)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Empty(t, rows[0].Plan)

	_, err = svc.GenerateRideAnalysis(ctx, session, domain.AnalysisRequest{ActivityID: "123", CurrentActivity: []byte(`{"id":123}`)})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteWorkout(ctx, session, w.ID))

	var types []string
	for _, ev := range store.Events() {
		types = append(types, ev.EventType)
	}
	require.Equal(t, []string{
		events.TypeWorkoutLogged,
		events.TypeScheduleUpdated,
		events.TypeScheduleUpdated,
		events.TypeRideAnalysisGenerated,
		events.TypeWorkoutDeleted,
	}, types)

	stored, err := svc.GetRideAnalysis(ctx, session, "123")
	require.NoError(t, err)
	require.Equal(t, domain.AnalysisComplete, stored.Status)
	require.Equal(t, "Nice ride.", stored.Analysis)
}

type completerFunc func(ctx context.Context, system, user string) (string, error)

func (f completerFunc) Complete(ctx context.Context, system, user string) (string, error) {
	return f(ctx, system, user)
}

func ids(items []domain.GymWorkout) []string {
	out := make([]string, len(items))
	for i, w := range items {
		out[i] = w.ID
	}
	return out
}
