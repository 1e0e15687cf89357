// Package activitysync fetches a user's activities from every connected
// provider and reconciles them into one timeline.
package activitysync

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/oddwes/ridesofjulian/internal/domain"
	"github.com/oddwes/ridesofjulian/internal/provider/wahoo"
	"github.com/oddwes/ridesofjulian/internal/reconcile"
)

// StravaFetcher lists a year of Strava activities.
type StravaFetcher interface {
	AthleteActivities(ctx context.Context, year int) ([]domain.Activity, error)
}

// WahooFetcher lists a year of Wahoo workouts.
type WahooFetcher interface {
	YearWorkouts(ctx context.Context, year int, onPage func([]wahoo.Workout)) ([]wahoo.Workout, error)
}

// RidePusher schedules a planned ride with the provider, creating or updating
// the linked workout.
type RidePusher interface {
	PushRide(ctx context.Context, ride domain.RideWorkout, now time.Time) (*wahoo.Workout, error)
}

// Syncer fetches providers concurrently. A nil fetcher marks a provider the
// user has not connected.
type Syncer struct {
	strava StravaFetcher
	wahoo  WahooFetcher
	logger *zap.Logger
}

// NewSyncer constructs a Syncer. logger may be nil.
func NewSyncer(strava StravaFetcher, wahoo WahooFetcher, logger *zap.Logger) *Syncer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Syncer{strava: strava, wahoo: wahoo, logger: logger}
}

type yearResult struct {
	strava []domain.Activity
	wahoo  []domain.Activity
}

// Unified fetches every year from both providers concurrently and merges the
// results once all fetches settle. A provider rejecting the user's credentials
// contributes nothing; any other failure cancels the remaining fetches.
func (s *Syncer) Unified(ctx context.Context, years ...int) ([]domain.Activity, error) {
	results := make([]yearResult, len(years))
	g, gctx := errgroup.WithContext(ctx)

	for i, year := range years {
		if s.strava != nil {
			g.Go(func() error {
				activities, err := s.strava.AthleteActivities(gctx, year)
				if err = s.tolerate(err, domain.SourceStrava, year); err != nil {
					return err
				}
				results[i].strava = activities
				return nil
			})
		}
		if s.wahoo != nil {
			g.Go(func() error {
				workouts, err := s.wahoo.YearWorkouts(gctx, year, func(page []wahoo.Workout) {
					s.logger.Debug("wahoo page fetched", zap.Int("year", year), zap.Int("workouts", len(page)))
				})
				if err = s.tolerate(err, domain.SourceWahoo, year); err != nil {
					return err
				}
				results[i].wahoo = reconcile.FromWahoo(workouts)
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var strava, wahoo []domain.Activity
	for _, r := range results {
		strava = append(strava, r.strava...)
		wahoo = append(wahoo, r.wahoo...)
	}
	return reconcile.CombineAndDeduplicate(strava, wahoo), nil
}

func (s *Syncer) tolerate(err error, source domain.Source, year int) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrUnauthorized) {
		s.logger.Info("provider not authorised, skipping",
			zap.String("provider", string(source)), zap.Int("year", year), zap.Error(err))
		return nil
	}
	return domain.Downstream(string(source), fmt.Errorf("fetch %d: %w", year, err))
}

// PushRide sends ride to Wahoo and returns the linked workout id. It fails
// with ErrNotFound when the user has no Wahoo client able to push.
func (s *Syncer) PushRide(ctx context.Context, ride domain.RideWorkout, now time.Time) (string, error) {
	pusher, ok := s.wahoo.(RidePusher)
	if !ok {
		return "", fmt.Errorf("wahoo push unavailable: %w", domain.ErrNotFound)
	}
	workout, err := pusher.PushRide(ctx, ride, now)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(workout.ID, 10), nil
}
