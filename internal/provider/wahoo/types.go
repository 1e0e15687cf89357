package wahoo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Decimal decodes the API's numeric fields, which arrive either as JSON
// numbers or as quoted decimal strings. Null decodes as not Valid.
type Decimal struct {
	Value float64
	Valid bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Decimal) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*d = Decimal{}
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			*d = Decimal{}
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("decimal %q: %w", s, err)
		}
		*d = Decimal{Value: v, Valid: true}
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*d = Decimal{Value: v, Valid: true}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d Decimal) MarshalJSON() ([]byte, error) {
	if !d.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(d.Value, 'f', -1, 64)), nil
}

// Ptr returns the value as a pointer, nil when absent.
func (d Decimal) Ptr() *float64 {
	if !d.Valid {
		return nil
	}
	v := d.Value
	return &v
}

// Dec builds a valid Decimal.
func Dec(v float64) Decimal {
	return Decimal{Value: v, Valid: true}
}

// WorkoutSummary holds the recorded totals of a completed workout.
type WorkoutSummary struct {
	ID                  int64     `json:"id"`
	AscentAccum         Decimal   `json:"ascent_accum"`
	CadenceAvg          Decimal   `json:"cadence_avg"`
	CaloriesAccum       Decimal   `json:"calories_accum"`
	DistanceAccum       Decimal   `json:"distance_accum"`
	DurationActiveAccum Decimal   `json:"duration_active_accum"`
	DurationTotalAccum  Decimal   `json:"duration_total_accum"`
	HeartRateAvg        Decimal   `json:"heart_rate_avg"`
	PowerAvg            Decimal   `json:"power_avg"`
	PowerBikeNPLast     Decimal   `json:"power_bike_np_last"`
	PowerBikeTSSLast    Decimal   `json:"power_bike_tss_last"`
	SpeedAvg            Decimal   `json:"speed_avg"`
	WorkAccum           Decimal   `json:"work_accum"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// Workout is a planned or recorded workout. Recorded workouts carry an
// embedded summary.
type Workout struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Starts        time.Time       `json:"starts"`
	Minutes       int             `json:"minutes"`
	WorkoutToken  string          `json:"workout_token"`
	WorkoutTypeID int             `json:"workout_type_id"`
	PlanID        *int64          `json:"plan_id"`
	Summary       *WorkoutSummary `json:"workout_summary"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// WorkoutInput is the create/update payload for a workout.
type WorkoutInput struct {
	Name          string    `json:"name"`
	Starts        time.Time `json:"starts"`
	Minutes       int       `json:"minutes"`
	WorkoutToken  string    `json:"workout_token,omitempty"`
	WorkoutTypeID int       `json:"workout_type_id"`
	PlanID        *int64    `json:"plan_id,omitempty"`
}

type workoutList struct {
	Workouts []Workout `json:"workouts"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	PerPage  int       `json:"per_page"`
}

// PlanFile describes a structured plan stored with Wahoo.
type PlanFile struct {
	URL string `json:"url"`
}

// Plan is a structured workout plan.
type Plan struct {
	ID                  int64     `json:"id"`
	Name                string    `json:"name"`
	Description         string    `json:"description"`
	ExternalID          string    `json:"external_id"`
	WorkoutTypeFamilyID int       `json:"workout_type_family_id"`
	File                PlanFile  `json:"file"`
	ProviderUpdatedAt   time.Time `json:"provider_updated_at"`
	Deleted             bool      `json:"deleted"`
}

// PlanTarget is an interval target range.
type PlanTarget struct {
	Type string  `json:"type"`
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// PlanInterval is one step of a plan document.
type PlanInterval struct {
	Name             string       `json:"name"`
	ExitTriggerType  string       `json:"exit_trigger_type"`
	ExitTriggerValue float64      `json:"exit_trigger_value"`
	IntensityType    string       `json:"intensity_type,omitempty"`
	Targets          []PlanTarget `json:"targets"`
}

// PlanHeader is the plan document header.
type PlanHeader struct {
	Name              string `json:"name"`
	Version           string `json:"version"`
	Description       string `json:"description,omitempty"`
	WorkoutTypeFamily int    `json:"workout_type_family"`
	WorkoutTypeLoc    int    `json:"workout_type_location"`
	DurationS         int    `json:"duration_s"`
}

// PlanDocument is the JSON body referenced by a plan's file URL.
type PlanDocument struct {
	Header    PlanHeader     `json:"header"`
	Intervals []PlanInterval `json:"intervals"`
}
