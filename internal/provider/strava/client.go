// Package strava is a client for the Strava v3 REST API.
package strava

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/oddwes/ridesofjulian/internal/domain"
	"github.com/oddwes/ridesofjulian/internal/provider"
)

const (
	// DefaultBaseURL is the production API root.
	DefaultBaseURL = "https://www.strava.com/api/v3"
	// PerPage is the page size used for activity listings.
	PerPage = 100
)

// Client calls the Strava API on behalf of one athlete.
type Client struct {
	api *provider.Client
}

// New constructs a Client.
func New(baseURL string, tokens provider.TokenSource, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{api: provider.NewClient(string(domain.SourceStrava), baseURL, tokens, httpClient)}
}

// Athlete returns the authenticated athlete.
func (c *Client) Athlete(ctx context.Context) (*Athlete, error) {
	var athlete Athlete
	if err := c.api.Get(ctx, "/athlete", nil, &athlete); err != nil {
		return nil, err
	}
	return &athlete, nil
}

// AthleteStats returns ride totals for athleteID.
func (c *Client) AthleteStats(ctx context.Context, athleteID int64) (*AthleteStats, error) {
	var stats AthleteStats
	if err := c.api.Get(ctx, fmt.Sprintf("/athletes/%d/stats", athleteID), nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// ListOptions bounds an activity listing. Zero times are omitted.
type ListOptions struct {
	After   time.Time
	Before  time.Time
	Page    int
	PerPage int
}

func (o ListOptions) values() url.Values {
	q := url.Values{}
	if !o.After.IsZero() {
		q.Set("after", strconv.FormatInt(o.After.Unix(), 10))
	}
	if !o.Before.IsZero() {
		q.Set("before", strconv.FormatInt(o.Before.Unix(), 10))
	}
	if o.Page > 0 {
		q.Set("page", strconv.Itoa(o.Page))
	}
	if o.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(o.PerPage))
	}
	return q
}

// ListActivities fetches one page of the athlete's activities.
func (c *Client) ListActivities(ctx context.Context, opts ListOptions) ([]SummaryActivity, error) {
	var page []SummaryActivity
	if err := c.api.Get(ctx, "/athlete/activities", opts.values(), &page); err != nil {
		return nil, err
	}
	return page, nil
}

// YearWindow returns the epoch window [Jan 1 year, Jan 1 year+1) in UTC.
func YearWindow(year int) (time.Time, time.Time) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(1, 0, 0)
}

// AthleteActivities fetches every activity started in year, in provider order.
func (c *Client) AthleteActivities(ctx context.Context, year int) ([]domain.Activity, error) {
	after, before := YearWindow(year)
	summaries, err := provider.Paginate(ctx, PerPage, func(ctx context.Context, page int) ([]SummaryActivity, error) {
		return c.ListActivities(ctx, ListOptions{After: after, Before: before, Page: page, PerPage: PerPage})
	}, nil)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Activity, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, s.Activity())
	}
	return out, nil
}

// Activity returns one activity including laps.
func (c *Client) Activity(ctx context.Context, id int64) (*DetailedActivity, error) {
	var detail DetailedActivity
	q := url.Values{"include_all_efforts": {"false"}}
	if err := c.api.Get(ctx, fmt.Sprintf("/activities/%d", id), q, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// DefaultStreamKeys are the series requested for export.
var DefaultStreamKeys = []string{"time", "watts", "heartrate", "cadence", "distance"}

// Streams returns the requested series of an activity keyed by type.
func (c *Client) Streams(ctx context.Context, id int64, keys ...string) (*StreamSet, error) {
	if len(keys) == 0 {
		keys = DefaultStreamKeys
	}
	q := url.Values{
		"keys":        {strings.Join(keys, ",")},
		"key_by_type": {"true"},
	}
	var set StreamSet
	if err := c.api.Get(ctx, fmt.Sprintf("/activities/%d/streams", id), q, &set); err != nil {
		return nil, err
	}
	return &set, nil
}
