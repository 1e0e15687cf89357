package domain

import (
	"context"
	"time"
)

// ListSchedule returns the caller's cycling schedule rows between from and to inclusive.
func (s *Service) ListSchedule(ctx context.Context, session Session, from, to time.Time) ([]ScheduleRow, error) {
	if err := session.Validate(); err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, Invalid("to", "must not be before from")
	}
	rows, err := s.store.ListSchedule(ctx, session.UserID, DisciplineCycling, CalendarDate(from), CalendarDate(to))
	if err != nil {
		return nil, Downstream("store", err)
	}
	return rows, nil
}

// Ride returns the ride identified by rideID on date.
func (s *Service) Ride(ctx context.Context, session Session, date time.Time, rideID string) (*RideWorkout, error) {
	if err := session.Validate(); err != nil {
		return nil, err
	}
	row, err := s.loadRow(ctx, session, CalendarDate(date))
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrNotFound
	}
	for _, ride := range row.Plan {
		if ride.ID == rideID {
			return &ride, nil
		}
	}
	return nil, ErrNotFound
}

// AddRide appends ride to the plan of the schedule row for date, creating the
// row when it does not exist yet.
func (s *Service) AddRide(ctx context.Context, session Session, date time.Time, ride RideWorkout) (*RideWorkout, error) {
	if err := session.Validate(); err != nil {
		return nil, err
	}
	if err := ride.Validate(); err != nil {
		return nil, err
	}

	day := CalendarDate(date)
	row, err := s.loadRow(ctx, session, day)
	if err != nil {
		return nil, err
	}
	if row == nil {
		row = &ScheduleRow{UserID: session.UserID, Date: day, Discipline: DisciplineCycling}
	}

	ride = s.withRideIDs(ride)
	ride.Date = day
	plan := make([]RideWorkout, 0, len(row.Plan)+1)
	plan = append(plan, row.Plan...)
	row.Plan = append(plan, ride)

	if err := s.saveRow(ctx, *row); err != nil {
		return nil, err
	}
	return &ride, nil
}

// EditRide replaces the ride with the same id in the plan for date.
func (s *Service) EditRide(ctx context.Context, session Session, date time.Time, ride RideWorkout) (*RideWorkout, error) {
	if err := session.Validate(); err != nil {
		return nil, err
	}
	if ride.ID == "" {
		return nil, Invalid("id", "is required")
	}
	if err := ride.Validate(); err != nil {
		return nil, err
	}

	day := CalendarDate(date)
	row, err := s.loadRow(ctx, session, day)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrNotFound
	}

	ride = s.withRideIDs(ride)
	ride.Date = day
	plan, ok := ReplaceRide(row.Plan, ride)
	if !ok {
		return nil, ErrNotFound
	}
	row.Plan = plan

	if err := s.saveRow(ctx, *row); err != nil {
		return nil, err
	}
	return &ride, nil
}

// DeleteRide removes the ride identified by rideID from the plan for date.
func (s *Service) DeleteRide(ctx context.Context, session Session, date time.Time, rideID string) error {
	if err := session.Validate(); err != nil {
		return err
	}

	row, err := s.loadRow(ctx, session, CalendarDate(date))
	if err != nil {
		return err
	}
	if row == nil {
		return ErrNotFound
	}

	plan, ok := RemoveRide(row.Plan, rideID)
	if !ok {
		return ErrNotFound
	}
	row.Plan = plan
	return s.saveRow(ctx, *row)
}

// loadRow reads a schedule row. There is no version check between this read
// and the following write.
func (s *Service) loadRow(ctx context.Context, session Session, day time.Time) (*ScheduleRow, error) {
	row, err := s.store.GetSchedule(ctx, session.UserID, day, DisciplineCycling)
	if err != nil {
		return nil, Downstream("store", err)
	}
	return row, nil
}

func (s *Service) saveRow(ctx context.Context, row ScheduleRow) error {
	row.UpdatedAt = s.now()
	if err := s.store.SaveSchedule(ctx, row); err != nil {
		return Downstream("store", err)
	}
	return nil
}

func (s *Service) withRideIDs(ride RideWorkout) RideWorkout {
	if ride.ID == "" {
		ride.ID = s.newID()
	}
	intervals := make([]Interval, len(ride.Intervals))
	for i, iv := range ride.Intervals {
		if iv.ID == "" {
			iv.ID = s.newID()
		}
		intervals[i] = iv
	}
	ride.Intervals = intervals
	return ride
}

// FTPHistory returns the caller's FTP history.
func (s *Service) FTPHistory(ctx context.Context, session Session) (FTPHistory, error) {
	if err := session.Validate(); err != nil {
		return nil, err
	}
	history, err := s.store.GetFTPHistory(ctx, session.UserID)
	if err != nil {
		return nil, Downstream("store", err)
	}
	return history, nil
}

// SetFTP records watts as the caller's FTP effective from date.
func (s *Service) SetFTP(ctx context.Context, session Session, date time.Time, watts float64) (FTPHistory, error) {
	if err := session.Validate(); err != nil {
		return nil, err
	}
	if watts <= 0 {
		return nil, Invalid("watts", "must be > 0")
	}
	history, err := s.FTPHistory(ctx, session)
	if err != nil {
		return nil, err
	}
	updated := history.With(date, watts)
	if err := s.store.SaveFTPHistory(ctx, session.UserID, updated); err != nil {
		return nil, Downstream("store", err)
	}
	return updated, nil
}

// RecordYearStats stores yearly totals for the caller.
func (s *Service) RecordYearStats(ctx context.Context, session Session, stats YearStats) error {
	if err := session.Validate(); err != nil {
		return err
	}
	stats.UserID = session.UserID
	stats.UpdatedAt = s.now()
	if err := s.store.SaveYearStats(ctx, stats); err != nil {
		return Downstream("store", err)
	}
	return nil
}
