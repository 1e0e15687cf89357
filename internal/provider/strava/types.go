package strava

import (
	"strconv"
	"time"

	"github.com/oddwes/ridesofjulian/internal/domain"
)

// Athlete is the authenticated athlete profile.
type Athlete struct {
	ID        int64    `json:"id"`
	Username  string   `json:"username"`
	Firstname string   `json:"firstname"`
	Lastname  string   `json:"lastname"`
	City      string   `json:"city"`
	Country   string   `json:"country"`
	Weight    *float64 `json:"weight"`
	FTP       *int     `json:"ftp"`
}

// Totals aggregates a group of activities.
type Totals struct {
	Count         int     `json:"count"`
	Distance      float64 `json:"distance"`
	MovingTime    int     `json:"moving_time"`
	ElapsedTime   int     `json:"elapsed_time"`
	ElevationGain float64 `json:"elevation_gain"`
}

// AthleteStats carries the athlete's ride totals.
type AthleteStats struct {
	BiggestRideDistance float64 `json:"biggest_ride_distance"`
	RecentRideTotals    Totals  `json:"recent_ride_totals"`
	YTDRideTotals       Totals  `json:"ytd_ride_totals"`
	AllRideTotals       Totals  `json:"all_ride_totals"`
}

// SummaryActivity is an entry of the athlete activity listing.
type SummaryActivity struct {
	ID                   int64     `json:"id"`
	Name                 string    `json:"name"`
	Type                 string    `json:"type"`
	SportType            string    `json:"sport_type"`
	Distance             float64   `json:"distance"`
	TotalElevationGain   float64   `json:"total_elevation_gain"`
	MovingTime           int       `json:"moving_time"`
	ElapsedTime          int       `json:"elapsed_time"`
	StartDate            time.Time `json:"start_date"`
	AverageWatts         *float64  `json:"average_watts"`
	WeightedAverageWatts *float64  `json:"weighted_average_watts"`
	Kilojoules           *float64  `json:"kilojoules"`
	AverageHeartrate     *float64  `json:"average_heartrate"`
	DeviceWatts          bool      `json:"device_watts"`
}

// Activity projects the summary into the provider-neutral activity shape.
func (a SummaryActivity) Activity() domain.Activity {
	return domain.Activity{
		ID:               strconv.FormatInt(a.ID, 10),
		Name:             a.Name,
		Type:             a.Type,
		Distance:         a.Distance,
		ElevationGain:    a.TotalElevationGain,
		MovingTime:       a.MovingTime,
		StartDate:        a.StartDate.UTC(),
		AveragePower:     a.AverageWatts,
		WeightedPower:    a.WeightedAverageWatts,
		Kilojoules:       a.Kilojoules,
		AverageHeartrate: a.AverageHeartrate,
		Source:           domain.SourceStrava,
	}
}

// Lap is one lap of a detailed activity.
type Lap struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	LapIndex     int       `json:"lap_index"`
	ElapsedTime  int       `json:"elapsed_time"`
	MovingTime   int       `json:"moving_time"`
	Distance     float64   `json:"distance"`
	StartDate    time.Time `json:"start_date"`
	AverageWatts *float64  `json:"average_watts"`
	AverageHR    *float64  `json:"average_heartrate"`
}

// DetailedActivity is a single activity with its laps.
type DetailedActivity struct {
	SummaryActivity
	Description string  `json:"description"`
	Calories    float64 `json:"calories"`
	Laps        []Lap   `json:"laps"`
}

// Stream is one sampled series of an activity.
type Stream struct {
	Data         []float64 `json:"data"`
	SeriesType   string    `json:"series_type"`
	OriginalSize int       `json:"original_size"`
	Resolution   string    `json:"resolution"`
}

// StreamSet holds the scalar streams keyed by type.
type StreamSet struct {
	Time      *Stream `json:"time"`
	Distance  *Stream `json:"distance"`
	Watts     *Stream `json:"watts"`
	Heartrate *Stream `json:"heartrate"`
	Cadence   *Stream `json:"cadence"`
	Altitude  *Stream `json:"altitude"`
}

// Len is the number of samples in the longest stream.
func (s StreamSet) Len() int {
	n := 0
	for _, st := range []*Stream{s.Time, s.Distance, s.Watts, s.Heartrate, s.Cadence, s.Altitude} {
		if st != nil && len(st.Data) > n {
			n = len(st.Data)
		}
	}
	return n
}
