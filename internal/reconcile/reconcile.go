// Package reconcile merges activity lists from Strava and Wahoo into one
// deduplicated timeline.
package reconcile

import (
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/oddwes/ridesofjulian/internal/domain"
	"github.com/oddwes/ridesofjulian/internal/provider/wahoo"
)

const (
	// StartTolerance is the maximum start-time gap between duplicates.
	StartTolerance = 5 * time.Minute
	// DistanceTolerance is the maximum distance gap in meters between duplicates.
	DistanceTolerance = 500.0
)

// FromWahoo projects Wahoo workouts into activities. Workouts without an
// embedded summary are incomplete uploads and are dropped.
func FromWahoo(workouts []wahoo.Workout) []domain.Activity {
	out := make([]domain.Activity, 0, len(workouts))
	for _, w := range workouts {
		if w.Summary == nil {
			continue
		}
		s := w.Summary
		activity := domain.Activity{
			ID:               strconv.FormatInt(w.ID, 10),
			Name:             w.Name,
			Distance:         s.DistanceAccum.Value,
			ElevationGain:    s.AscentAccum.Value,
			MovingTime:       int(math.Round(s.DurationActiveAccum.Value)),
			StartDate:        w.Starts.UTC(),
			AveragePower:     s.PowerAvg.Ptr(),
			WeightedPower:    s.PowerBikeNPLast.Ptr(),
			AverageHeartrate: s.HeartRateAvg.Ptr(),
			Source:           domain.SourceWahoo,
		}
		if s.WorkAccum.Valid {
			activity.Kilojoules = domain.Float(s.WorkAccum.Value / 1000)
		}
		out = append(out, activity)
	}
	return out
}

// IsDuplicate reports whether a and b start within StartTolerance and differ
// in distance by at most DistanceTolerance.
func IsDuplicate(a, b domain.Activity) bool {
	gap := a.StartDate.Sub(b.StartDate)
	if gap < 0 {
		gap = -gap
	}
	return gap <= StartTolerance && math.Abs(a.Distance-b.Distance) <= DistanceTolerance
}

// CombineAndDeduplicate concatenates strava then wahoo and keeps the first of
// each duplicate group, except that a strava record replaces an accepted
// wahoo duplicate. The result is ordered most recent first.
func CombineAndDeduplicate(strava, wahoo []domain.Activity) []domain.Activity {
	candidates := make([]domain.Activity, 0, len(strava)+len(wahoo))
	candidates = append(candidates, strava...)
	candidates = append(candidates, wahoo...)
	return Deduplicate(candidates)
}

// Deduplicate applies the duplicate policy to candidates in arrival order.
func Deduplicate(candidates []domain.Activity) []domain.Activity {
	accepted := make([]domain.Activity, 0, len(candidates))
	for _, c := range candidates {
		matched := false
		for i, existing := range accepted {
			if !IsDuplicate(c, existing) {
				continue
			}
			if c.Source == domain.SourceStrava && existing.Source == domain.SourceWahoo {
				accepted[i] = c
			}
			matched = true
			break
		}
		if !matched {
			accepted = append(accepted, c)
		}
	}
	sort.SliceStable(accepted, func(i, j int) bool {
		return accepted[i].StartDate.After(accepted[j].StartDate)
	})
	return accepted
}
