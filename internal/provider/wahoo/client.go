// Package wahoo is a client for the Wahoo Cloud API.
package wahoo

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/oddwes/ridesofjulian/internal/domain"
	"github.com/oddwes/ridesofjulian/internal/provider"
)

const (
	// DefaultBaseURL is the production API root.
	DefaultBaseURL = "https://api.wahooligan.com"
	// PerPage is the page size used for workout listings.
	PerPage = 30
	// WorkoutTypeBiking is the workout type id for outdoor cycling.
	WorkoutTypeBiking = 0
	// WorkoutTypeIndoorTrainer is the workout type id for structured trainer rides.
	WorkoutTypeIndoorTrainer = 12
)

const isoDate = "2006-01-02"

// Client calls the Wahoo API on behalf of one user.
type Client struct {
	api *provider.Client
}

// New constructs a Client.
func New(baseURL string, tokens provider.TokenSource, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{api: provider.NewClient(string(domain.SourceWahoo), baseURL, tokens, httpClient)}
}

// ListOptions bounds a workout listing. Empty fields are omitted.
type ListOptions struct {
	Page          int
	PerPage       int
	CreatedAfter  string
	CreatedBefore string
}

func (o ListOptions) values() url.Values {
	q := url.Values{}
	if o.Page > 0 {
		q.Set("page", strconv.Itoa(o.Page))
	}
	if o.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(o.PerPage))
	}
	if o.CreatedAfter != "" {
		q.Set("created_after", o.CreatedAfter)
	}
	if o.CreatedBefore != "" {
		q.Set("created_before", o.CreatedBefore)
	}
	return q
}

// ListWorkouts fetches one page of workouts.
func (c *Client) ListWorkouts(ctx context.Context, opts ListOptions) ([]Workout, error) {
	var list workoutList
	if err := c.api.Get(ctx, "/v1/workouts", opts.values(), &list); err != nil {
		return nil, err
	}
	return list.Workouts, nil
}

// YearWindow returns the ISO date bounds used to list a year of workouts.
func YearWindow(year int) (string, string) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return start.Format(isoDate), start.AddDate(1, 0, 0).Format(isoDate)
}

// YearWorkouts fetches every workout created in year. onPage, when set, is
// called with each page as it arrives.
func (c *Client) YearWorkouts(ctx context.Context, year int, onPage func([]Workout)) ([]Workout, error) {
	after, before := YearWindow(year)
	return provider.Paginate(ctx, PerPage, func(ctx context.Context, page int) ([]Workout, error) {
		return c.ListWorkouts(ctx, ListOptions{Page: page, PerPage: PerPage, CreatedAfter: after, CreatedBefore: before})
	}, onPage)
}

// PlannedWorkouts returns workouts linked to a plan that start at or after from.
func (c *Client) PlannedWorkouts(ctx context.Context, from time.Time) ([]Workout, error) {
	all, err := provider.Paginate(ctx, PerPage, func(ctx context.Context, page int) ([]Workout, error) {
		return c.ListWorkouts(ctx, ListOptions{Page: page, PerPage: PerPage})
	}, nil)
	if err != nil {
		return nil, err
	}
	out := make([]Workout, 0, len(all))
	for _, w := range all {
		if w.PlanID != nil && !w.Starts.Before(from) {
			out = append(out, w)
		}
	}
	return out, nil
}

// Workout returns one workout.
func (c *Client) Workout(ctx context.Context, id int64) (*Workout, error) {
	var w Workout
	if err := c.api.Get(ctx, fmt.Sprintf("/v1/workouts/%d", id), nil, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

// CreateWorkout schedules a new workout.
func (c *Client) CreateWorkout(ctx context.Context, in WorkoutInput) (*Workout, error) {
	var w Workout
	if err := c.api.Do(ctx, http.MethodPost, "/v1/workouts", nil, map[string]WorkoutInput{"workout": in}, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

// UpdateWorkout replaces the workout's editable fields.
func (c *Client) UpdateWorkout(ctx context.Context, id int64, in WorkoutInput) (*Workout, error) {
	var w Workout
	if err := c.api.Do(ctx, http.MethodPut, fmt.Sprintf("/v1/workouts/%d", id), nil, map[string]WorkoutInput{"workout": in}, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

// DeleteWorkout removes a workout.
func (c *Client) DeleteWorkout(ctx context.Context, id int64) error {
	return c.api.Do(ctx, http.MethodDelete, fmt.Sprintf("/v1/workouts/%d", id), nil, nil, nil)
}

// Plan returns plan metadata.
func (c *Client) Plan(ctx context.Context, id int64) (*Plan, error) {
	var p Plan
	if err := c.api.Get(ctx, fmt.Sprintf("/v1/plans/%d", id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// PlanIntervals downloads the plan document referenced by plan.
func (c *Client) PlanIntervals(ctx context.Context, plan Plan) (*PlanDocument, error) {
	if plan.File.URL == "" {
		return nil, domain.Downstream(c.api.Name(), fmt.Errorf("plan %d has no file", plan.ID))
	}
	var doc PlanDocument
	if err := c.api.Get(ctx, plan.File.URL, nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

type planInput struct {
	File              string    `json:"file"`
	Filename          string    `json:"filename"`
	ExternalID        string    `json:"external_id"`
	ProviderUpdatedAt time.Time `json:"provider_updated_at"`
}

// CreatePlan uploads a plan document.
func (c *Client) CreatePlan(ctx context.Context, externalID string, doc PlanDocument, updatedAt time.Time) (*Plan, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode plan: %w", err)
	}
	in := planInput{
		File:              "data:application/json;base64," + base64.StdEncoding.EncodeToString(raw),
		Filename:          externalID + ".json",
		ExternalID:        externalID,
		ProviderUpdatedAt: updatedAt.UTC(),
	}
	var p Plan
	if err := c.api.Do(ctx, http.MethodPost, "/v1/plans", nil, map[string]planInput{"plan": in}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// PlanFromRide converts a planned ride into a Wahoo plan document with watt targets.
func PlanFromRide(ride domain.RideWorkout) PlanDocument {
	doc := PlanDocument{
		Header: PlanHeader{
			Name:              ride.Title,
			Version:           "1.0.0",
			WorkoutTypeFamily: WorkoutTypeBiking,
			WorkoutTypeLoc:    1,
		},
		Intervals: make([]PlanInterval, 0, len(ride.Intervals)),
	}
	for _, iv := range ride.Intervals {
		doc.Header.DurationS += iv.Duration
		doc.Intervals = append(doc.Intervals, PlanInterval{
			Name:             iv.Name,
			ExitTriggerType:  "time",
			ExitTriggerValue: float64(iv.Duration),
			IntensityType:    "active",
			Targets:          []PlanTarget{{Type: "watts", Low: iv.PowerMin, High: iv.PowerMax}},
		})
	}
	return doc
}

// RideFromPlan converts a plan document back into ride intervals.
func RideFromPlan(doc PlanDocument) []domain.Interval {
	out := make([]domain.Interval, 0, len(doc.Intervals))
	for _, pi := range doc.Intervals {
		iv := domain.Interval{Name: pi.Name}
		if pi.ExitTriggerType == "time" {
			iv.Duration = int(pi.ExitTriggerValue)
		}
		for _, t := range pi.Targets {
			if t.Type == "watts" {
				iv.PowerMin, iv.PowerMax = t.Low, t.High
			}
		}
		out = append(out, iv)
	}
	return out
}

// PushRide uploads ride as a plan and schedules a workout on its date. A ride
// already linked through ExternalID has that workout updated to the new plan.
// The returned workout id is the ride's external linkage.
func (c *Client) PushRide(ctx context.Context, ride domain.RideWorkout, now time.Time) (*Workout, error) {
	var linked int64
	if ride.ExternalID != "" {
		id, err := strconv.ParseInt(ride.ExternalID, 10, 64)
		if err != nil {
			return nil, domain.Invalid("external_id", "is not a wahoo workout id")
		}
		linked = id
	}

	plan, err := c.CreatePlan(ctx, ride.ID, PlanFromRide(ride), now)
	if err != nil {
		return nil, err
	}
	minutes := 0
	for _, iv := range ride.Intervals {
		minutes += iv.Duration
	}
	in := WorkoutInput{
		Name:          ride.Title,
		Starts:        ride.Date.UTC(),
		Minutes:       (minutes + 59) / 60,
		WorkoutToken:  ride.ID,
		WorkoutTypeID: WorkoutTypeIndoorTrainer,
		PlanID:        &plan.ID,
	}
	if linked != 0 {
		return c.UpdateWorkout(ctx, linked, in)
	}
	return c.CreateWorkout(ctx, in)
}
