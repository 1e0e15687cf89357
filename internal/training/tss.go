// Package training computes training stress, weekly load and power zones.
package training

import (
	"math"

	"github.com/oddwes/ridesofjulian/internal/domain"
)

// TSS returns the training stress score of a recorded activity. Activities
// without weighted power score 0. ftp is not validated.
func TSS(activity domain.Activity, ftp float64) int {
	if activity.WeightedPower == nil {
		return 0
	}
	wp := *activity.WeightedPower
	return roundScore(float64(activity.MovingTime) * wp * IntensityFactor(wp, ftp) / (ftp * 3600) * 100)
}

// IntensityFactor is the ratio of power to ftp.
func IntensityFactor(power, ftp float64) float64 {
	return power / ftp
}

// ActivityTSS resolves the FTP for the activity's start date and computes its
// TSS. An unresolved FTP yields 0.
func ActivityTSS(activity domain.Activity, history domain.FTPHistory) int {
	ftp, ok := history.At(activity.StartDate)
	if !ok {
		return 0
	}
	return TSS(activity, ftp)
}

// WorkoutTSS scores a planned ride from its interval targets using the FTP in
// effect on the ride's date. An unresolved FTP yields 0.
func WorkoutTSS(workout domain.RideWorkout, history domain.FTPHistory) int {
	ftp, ok := history.At(workout.Date)
	if !ok {
		return 0
	}
	var load float64
	for _, iv := range workout.Intervals {
		avg := iv.AveragePower()
		load += float64(iv.Duration) * avg * IntensityFactor(avg, ftp)
	}
	return roundScore(load / (ftp * 3600) * 100)
}

// WorkoutDuration is the total planned duration in seconds.
func WorkoutDuration(workout domain.RideWorkout) int {
	total := 0
	for _, iv := range workout.Intervals {
		total += iv.Duration
	}
	return total
}

// roundScore rounds to the nearest integer. Values whose int conversion is
// undefined (NaN, infinities and anything beyond the int range) map to 0.
// Finite scores are returned unbounded, however large a tiny ftp makes them.
func roundScore(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	r := math.Round(v)
	if r >= math.MaxInt || r < math.MinInt {
		return 0
	}
	return int(r)
}
