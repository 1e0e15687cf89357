package activitysync

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/oddwes/ridesofjulian/internal/domain"
	"github.com/oddwes/ridesofjulian/internal/training"
)

// StatsStore reads FTP history and records yearly totals.
type StatsStore interface {
	FTPHistory(ctx context.Context, session domain.Session) (domain.FTPHistory, error)
	RecordYearStats(ctx context.Context, session domain.Session, stats domain.YearStats) error
}

// Factory builds a Syncer bound to the session's provider credentials.
type Factory func(session domain.Session) *Syncer

// Service serves unified activity listings and keeps yearly totals current.
type Service struct {
	factory Factory
	stats   StatsStore
	logger  *zap.Logger
}

// NewService constructs a Service. logger may be nil.
func NewService(factory Factory, stats StatsStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{factory: factory, stats: stats, logger: logger}
}

// YearActivities returns the reconciled activities of year and records the
// year's totals. The totals write is best effort.
func (s *Service) YearActivities(ctx context.Context, session domain.Session, year int) ([]domain.Activity, error) {
	if err := session.Validate(); err != nil {
		return nil, err
	}
	activities, err := s.factory(session).Unified(ctx, year)
	if err != nil {
		return nil, err
	}

	history, err := s.stats.FTPHistory(ctx, session)
	if err != nil {
		s.logger.Warn("ftp history unavailable, skipping year stats", zap.String("user_id", session.UserID), zap.Error(err))
		return activities, nil
	}
	totals := YearTotals(activities, year, history)
	if err := s.stats.RecordYearStats(ctx, session, totals); err != nil {
		s.logger.Warn("record year stats failed", zap.String("user_id", session.UserID), zap.Int("year", year), zap.Error(err))
	}
	return activities, nil
}

// PushRide schedules ride on the user's Wahoo account and returns the
// workout id that links the two.
func (s *Service) PushRide(ctx context.Context, session domain.Session, ride domain.RideWorkout) (string, error) {
	if err := session.Validate(); err != nil {
		return "", err
	}
	externalID, err := s.factory(session).PushRide(ctx, ride, time.Now().UTC())
	if err != nil {
		return "", err
	}
	s.logger.Info("ride pushed to wahoo", zap.String("user_id", session.UserID), zap.String("ride_id", ride.ID), zap.String("workout_id", externalID))
	return externalID, nil
}

// YearTotals sums the activities started in year. TSS uses the FTP in effect
// on each activity's start date.
func YearTotals(activities []domain.Activity, year int, history domain.FTPHistory) domain.YearStats {
	stats := domain.YearStats{Year: year}
	for _, a := range activities {
		if a.StartDate.UTC().Year() != year {
			continue
		}
		stats.Count++
		stats.Distance += a.Distance
		stats.Elevation += a.ElevationGain
		stats.MovingTime += a.MovingTime
		stats.TSS += training.ActivityTSS(a, history)
	}
	return stats
}
