package reconcile

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/oddwes/ridesofjulian/internal/domain"
	"github.com/oddwes/ridesofjulian/internal/provider/wahoo"
)

func at(raw string) time.Time {
	t, err := time.Parse("2006-01-02T15:04", raw)
	if err != nil {
		panic(err)
	}
	return t
}

func ride(id string, start string, distance float64, source domain.Source) domain.Activity {
	return domain.Activity{ID: id, StartDate: at(start), Distance: distance, Source: source}
}

func ids(activities []domain.Activity) []string {
	out := make([]string, len(activities))
	for i, a := range activities {
		out[i] = string(a.Source) + ":" + a.ID
	}
	return out
}

func TestStravaWinsOverlappingWahoo(t *testing.T) {
	merged := CombineAndDeduplicate(
		[]domain.Activity{ride("s1", "2024-01-01T10:00", 20000, domain.SourceStrava)},
		[]domain.Activity{ride("w1", "2024-01-01T10:02", 20300, domain.SourceWahoo)},
	)
	require.Len(t, merged, 1)
	require.Equal(t, domain.SourceStrava, merged[0].Source)
}

func TestStravaReplacesEarlierAcceptedWahoo(t *testing.T) {
	merged := Deduplicate([]domain.Activity{
		ride("w1", "2024-01-01T10:02", 20300, domain.SourceWahoo),
		ride("s1", "2024-01-01T10:00", 20000, domain.SourceStrava),
	})
	if diff := cmp.Diff([]string{"strava:s1"}, ids(merged)); diff != "" {
		t.Fatalf("merge mismatch (-want +got):\n%s", diff)
	}
}

func TestLaterDuplicateDiscarded(t *testing.T) {
	merged := Deduplicate([]domain.Activity{
		ride("s1", "2024-01-01T10:00", 20000, domain.SourceStrava),
		ride("s2", "2024-01-01T10:04", 20100, domain.SourceStrava),
		ride("w1", "2024-01-01T10:01", 19900, domain.SourceWahoo),
	})
	if diff := cmp.Diff([]string{"strava:s1"}, ids(merged)); diff != "" {
		t.Fatalf("merge mismatch (-want +got):\n%s", diff)
	}
}

func TestDistinctActivitiesRetainedAndSorted(t *testing.T) {
	merged := CombineAndDeduplicate(
		[]domain.Activity{
			ride("s1", "2024-01-01T10:00", 20000, domain.SourceStrava),
			ride("s2", "2024-03-01T07:00", 55000, domain.SourceStrava),
		},
		[]domain.Activity{
			ride("w1", "2024-01-01T10:20", 30000, domain.SourceWahoo),
			ride("w2", "2024-02-01T18:00", 20000, domain.SourceWahoo),
		},
	)
	if diff := cmp.Diff([]string{"strava:s2", "wahoo:w2", "wahoo:w1", "strava:s1"}, ids(merged)); diff != "" {
		t.Fatalf("merge mismatch (-want +got):\n%s", diff)
	}
}

func TestDuplicateNeedsBothWindows(t *testing.T) {
	base := ride("a", "2024-01-01T10:00", 20000, domain.SourceStrava)

	require.True(t, IsDuplicate(base, ride("b", "2024-01-01T10:05", 20500, domain.SourceWahoo)))
	require.False(t, IsDuplicate(base, ride("b", "2024-01-01T10:06", 20000, domain.SourceWahoo)))
	require.False(t, IsDuplicate(base, ride("b", "2024-01-01T10:00", 20501, domain.SourceWahoo)))
	require.True(t, IsDuplicate(base, ride("b", "2024-01-01T09:56", 19600, domain.SourceWahoo)))
}

func TestDeduplicateIsIdempotent(t *testing.T) {
	input := []domain.Activity{
		ride("s1", "2024-01-01T10:00", 20000, domain.SourceStrava),
		ride("w1", "2024-01-01T10:02", 20300, domain.SourceWahoo),
		ride("w2", "2024-01-02T10:00", 40000, domain.SourceWahoo),
		ride("s2", "2024-01-03T10:00", 10000, domain.SourceStrava),
		ride("s3", "2024-01-03T10:03", 10200, domain.SourceStrava),
	}
	once := Deduplicate(input)
	twice := Deduplicate(once)
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Fatalf("second pass changed output (-once +twice):\n%s", diff)
	}
}

func TestFromWahooDropsIncompleteUploads(t *testing.T) {
	raw := `[
		{"id":1,"name":"Zwift","starts":"2024-01-01T10:02:00.000Z","workout_summary":{
			"distance_accum":"20300.0","ascent_accum":"150.5","duration_active_accum":"3599.6",
			"power_avg":"180.0","power_bike_np_last":"195.0","work_accum":"648000.0","heart_rate_avg":"140.0"}},
		{"id":2,"name":"Upload in progress","starts":"2024-01-02T10:00:00.000Z"}
	]`
	var workouts []wahoo.Workout
	require.NoError(t, json.Unmarshal([]byte(raw), &workouts))

	activities := FromWahoo(workouts)
	require.Len(t, activities, 1)
	a := activities[0]
	require.Equal(t, "1", a.ID)
	require.Equal(t, domain.SourceWahoo, a.Source)
	require.Equal(t, 20300.0, a.Distance)
	require.Equal(t, 3600, a.MovingTime)
	require.Equal(t, 195.0, *a.WeightedPower)
	require.InDelta(t, 648.0, *a.Kilojoules, 1e-9)
}
