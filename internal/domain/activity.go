// Package domain defines the records and workflows of the ride tracking backend.
package domain

import "time"

// Source tags the provider an activity was recorded by.
type Source string

const (
	SourceStrava Source = "strava"
	SourceWahoo  Source = "wahoo"
	SourceFIT    Source = "fit"
)

// Activity is a provider-reported exercise session. Optional power and heart
// rate fields are nil when the provider did not record them.
type Activity struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Type             string    `json:"type,omitempty"`
	Distance         float64   `json:"distance"`
	ElevationGain    float64   `json:"total_elevation_gain"`
	MovingTime       int       `json:"moving_time"`
	StartDate        time.Time `json:"start_date"`
	AveragePower     *float64  `json:"average_watts,omitempty"`
	WeightedPower    *float64  `json:"weighted_average_watts,omitempty"`
	Kilojoules       *float64  `json:"kilojoules,omitempty"`
	AverageHeartrate *float64  `json:"average_heartrate,omitempty"`
	Source           Source    `json:"source"`
}

// YearStats holds per-year totals written after an activity sync.
type YearStats struct {
	UserID     string    `json:"user_id"`
	Year       int       `json:"year"`
	Count      int       `json:"count"`
	Distance   float64   `json:"distance"`
	Elevation  float64   `json:"elevation"`
	MovingTime int       `json:"moving_time"`
	TSS        int       `json:"tss"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }
