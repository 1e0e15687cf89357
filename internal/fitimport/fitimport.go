// Package fitimport decodes FIT activity files into activities and power samples.
package fitimport

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/tormoder/fit"

	"github.com/oddwes/ridesofjulian/internal/domain"
	"github.com/oddwes/ridesofjulian/internal/training"
)

const (
	invalidUint8  = ^uint8(0)
	invalidUint16 = ^uint16(0)
)

// Ride is a decoded FIT activity. Power holds one sample per record with
// missing readings dropped.
type Ride struct {
	Activity domain.Activity `json:"activity"`
	Power    []float64       `json:"-"`
}

// DecodeFile opens and decodes the FIT file at path.
func DecodeFile(path string) (*Ride, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads a FIT activity file. Totals come from the session message when
// present and are otherwise derived from the records.
func Decode(r io.Reader) (*Ride, error) {
	decoded, err := fit.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode fit: %w", err)
	}
	file, err := decoded.Activity()
	if err != nil {
		return nil, fmt.Errorf("fit activity: %w", err)
	}
	if len(file.Records) == 0 {
		return nil, errors.New("fit file has no records")
	}

	var (
		power    []float64
		hrSum    float64
		hrCount  int
		distance float64
	)
	for _, rec := range file.Records {
		if rec == nil {
			continue
		}
		if rec.Power != invalidUint16 {
			power = append(power, float64(rec.Power))
		}
		if rec.HeartRate != invalidUint8 && rec.HeartRate != 0 {
			hrSum += float64(rec.HeartRate)
			hrCount++
		}
		if d := rec.GetDistanceScaled(); !math.IsNaN(d) && d > distance {
			distance = d
		}
	}

	first, last := file.Records[0], file.Records[len(file.Records)-1]
	activity := domain.Activity{
		ID:         strconv.FormatInt(first.Timestamp.Unix(), 10),
		Name:       "FIT ride " + first.Timestamp.UTC().Format(domain.DateLayout),
		Type:       "Ride",
		StartDate:  first.Timestamp.UTC(),
		MovingTime: int(last.Timestamp.Sub(first.Timestamp).Seconds()),
		Distance:   distance,
		Source:     domain.SourceFIT,
	}

	if len(file.Sessions) > 0 && file.Sessions[0] != nil {
		s := file.Sessions[0]
		if !s.StartTime.IsZero() && s.StartTime.Unix() > 0 {
			activity.StartDate = s.StartTime.UTC()
		}
		if timer := s.GetTotalTimerTimeScaled(); !math.IsNaN(timer) && timer > 0 {
			activity.MovingTime = int(math.Round(timer))
		}
		if total := s.GetTotalDistanceScaled(); !math.IsNaN(total) && total > 0 {
			activity.Distance = total
		}
		if s.TotalAscent != invalidUint16 {
			activity.ElevationGain = float64(s.TotalAscent)
		}
	}

	if len(power) > 0 {
		sum := 0.0
		for _, p := range power {
			sum += p
		}
		activity.AveragePower = domain.Float(sum / float64(len(power)))
		activity.WeightedPower = domain.Float(math.Round(training.NormalizedPower(power)))
		activity.Kilojoules = domain.Float(sum / 1000)
	}
	if hrCount > 0 {
		activity.AverageHeartrate = domain.Float(hrSum / float64(hrCount))
	}

	return &Ride{Activity: activity, Power: power}, nil
}
