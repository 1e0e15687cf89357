package training

import "github.com/oddwes/ridesofjulian/internal/domain"

// Zone is an FTP-relative power band. Bounds are percentages of FTP, lower
// bound inclusive and upper bound exclusive.
type Zone struct {
	Number int     `json:"zone"`
	Name   string  `json:"name"`
	MinPct float64 `json:"min_pct_ftp"`
	MaxPct float64 `json:"max_pct_ftp"`
	MinW   float64 `json:"min_watts"`
	MaxW   float64 `json:"max_watts"`
}

var cogganZones = []Zone{
	{Number: 1, Name: "Active Recovery", MinPct: 0, MaxPct: 55},
	{Number: 2, Name: "Endurance", MinPct: 55, MaxPct: 76},
	{Number: 3, Name: "Tempo", MinPct: 76, MaxPct: 91},
	{Number: 4, Name: "Threshold", MinPct: 91, MaxPct: 106},
	{Number: 5, Name: "VO2 Max", MinPct: 106, MaxPct: 121},
	{Number: 6, Name: "Anaerobic", MinPct: 121, MaxPct: 151},
	{Number: 7, Name: "Neuromuscular", MinPct: 151, MaxPct: 1000},
}

// Zones returns the seven-zone model with watt bounds for ftp.
func Zones(ftp float64) []Zone {
	out := make([]Zone, len(cogganZones))
	for i, z := range cogganZones {
		z.MinW = ftp * z.MinPct / 100
		z.MaxW = ftp * z.MaxPct / 100
		out[i] = z
	}
	return out
}

// ZoneFor returns the zone number for power, or 0 when ftp is not positive.
func ZoneFor(power, ftp float64) int {
	if ftp <= 0 {
		return 0
	}
	pct := power / ftp * 100
	for _, z := range cogganZones {
		if pct < z.MaxPct {
			return z.Number
		}
	}
	return cogganZones[len(cogganZones)-1].Number
}

// TimeInZones returns planned seconds per zone keyed by zone number, using
// each interval's average target power. An unresolved FTP yields nil.
func TimeInZones(workout domain.RideWorkout, history domain.FTPHistory) map[int]int {
	ftp, ok := history.At(workout.Date)
	if !ok || ftp <= 0 {
		return nil
	}
	out := make(map[int]int, len(cogganZones))
	for _, iv := range workout.Intervals {
		out[ZoneFor(iv.AveragePower(), ftp)] += iv.Duration
	}
	return out
}

// StreamTimeInZones counts 1 Hz power samples per zone. Negative samples are skipped.
func StreamTimeInZones(power []float64, ftp float64) map[int]int {
	if ftp <= 0 {
		return nil
	}
	out := make(map[int]int, len(cogganZones))
	for _, p := range power {
		if p < 0 {
			continue
		}
		out[ZoneFor(p, ftp)]++
	}
	return out
}
