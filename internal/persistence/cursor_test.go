package persistence

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oddwes/ridesofjulian/internal/domain"
	"github.com/oddwes/ridesofjulian/internal/events"
)

func TestCursorRoundTrip(t *testing.T) {
	c := &domain.Cursor{PerformedAt: time.Date(2025, 3, 1, 7, 30, 0, 123, time.UTC), ID: "w-1"}
	token := EncodeCursor(c)
	require.NotEmpty(t, token)

	decoded, err := DecodeCursor(token)
	require.NoError(t, err)
	require.Equal(t, c.ID, decoded.ID)
	require.True(t, c.PerformedAt.Equal(decoded.PerformedAt))

	require.Empty(t, EncodeCursor(nil))
	none, err := DecodeCursor(" ")
	require.NoError(t, err)
	require.Nil(t, none)
}

func TestDecodeCursorRejectsGarbage(t *testing.T) {
	for _, token := range []string{"%%%", "bm9waXBl", "bm90LWEtdGltZXxpZA=="} {
		_, err := DecodeCursor(token)
		require.ErrorIs(t, err, domain.ErrValidation, token)
	}
}

func TestScheduleUpdatedEvent(t *testing.T) {
	row := domain.ScheduleRow{
		UserID:     "u1",
		Date:       time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Discipline: domain.DisciplineCycling,
		Plan:       []domain.RideWorkout{{ID: "r1"}, {ID: "r2"}},
		UpdatedAt:  time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
	}
	ev, err := ScheduleUpdatedEvent(row)
	require.NoError(t, err)
	require.Equal(t, events.TypeScheduleUpdated, ev.EventType)
	require.Equal(t, "u1", ev.PartitionKey)
	require.Equal(t, "2025-03-10/cycling", ev.AggregateID)

	var payload events.ScheduleUpdated
	require.NoError(t, json.Unmarshal(ev.Payload, &payload))
	require.Equal(t, []string{"r1", "r2"}, payload.RideIDs)
	route, err := ev.Route()
	require.NoError(t, err)
	require.Equal(t, "schedule", route.AggregateType)
}

func TestAnalysisEventSkipsPending(t *testing.T) {
	_, ok, err := AnalysisEvent(domain.RideAnalysis{UserID: "u1", ActivityID: "a1", Status: domain.AnalysisPending})
	require.NoError(t, err)
	require.False(t, ok)

	ev, ok, err := AnalysisEvent(domain.RideAnalysis{UserID: "u1", ActivityID: "a1", Status: domain.AnalysisComplete})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, events.TypeRideAnalysisGenerated, ev.EventType)
}
