package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oddwes/ridesofjulian/internal/domain"
	"github.com/oddwes/ridesofjulian/internal/observability"
	"github.com/oddwes/ridesofjulian/internal/persistence"
)

var _ domain.Store = (*Repository)(nil)

// Repository provides Postgres-backed persistence for workouts, schedules,
// stats and analyses. Every call runs in a transaction scoped to the user via
// app.user_id so row level security applies.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) inUserTx(ctx context.Context, userID string, fn func(tx pgx.Tx) error) (err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, "SELECT set_config('app.user_id', $1, true)", userID); err != nil {
		return err
	}
	if err = fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Repository) insertOutbox(ctx context.Context, tx pgx.Tx, ev persistence.Event) error {
	route, err := ev.Route()
	if err != nil {
		return err
	}
	const stmt = `INSERT INTO outbox (user_id, aggregate_type, aggregate_id, event_type, topic, schema_subject, partition_key, payload, dedupe_key)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        ON CONFLICT (dedupe_key) DO NOTHING`
	_, err = tx.Exec(ctx, stmt,
		ev.UserID,
		route.AggregateType,
		ev.AggregateID,
		ev.EventType,
		route.Topic,
		route.SchemaSubject,
		ev.PartitionKey,
		[]byte(ev.Payload),
		ev.DedupeKey,
	)
	return err
}

const workoutColumns = `workout_id, user_id, performed_at, created_at, updated_at`

func scanWorkout(row pgx.Row) (domain.GymWorkout, error) {
	var w domain.GymWorkout
	err := row.Scan(&w.ID, &w.UserID, &w.PerformedAt, &w.CreatedAt, &w.UpdatedAt)
	w.PerformedAt = w.PerformedAt.UTC()
	w.CreatedAt = w.CreatedAt.UTC()
	w.UpdatedAt = w.UpdatedAt.UTC()
	return w, err
}

// ListWorkouts returns the user's workouts ordered newest first.
func (r *Repository) ListWorkouts(ctx context.Context, userID string, cursor *domain.Cursor, limit int) ([]domain.GymWorkout, *domain.Cursor, error) {
	args := []interface{}{userID, limit}
	query := `SELECT ` + workoutColumns + ` FROM gym_workouts WHERE user_id=$1`
	if cursor != nil {
		query += ` AND (performed_at, workout_id) < ($3, $4)`
		args = append(args, cursor.PerformedAt, cursor.ID)
	}
	query += ` ORDER BY performed_at DESC, workout_id DESC LIMIT $2`

	results := make([]domain.GymWorkout, 0, limit)
	err := r.inUserTx(ctx, userID, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		for rows.Next() {
			w, err := scanWorkout(rows)
			if err != nil {
				rows.Close()
				return err
			}
			results = append(results, w)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}
		return r.attachExercises(ctx, tx, results)
	})
	if err != nil {
		return nil, nil, err
	}

	var next *domain.Cursor
	if limit > 0 && len(results) == limit {
		last := results[len(results)-1]
		next = &domain.Cursor{PerformedAt: last.PerformedAt, ID: last.ID}
	}
	return results, next, nil
}

func (r *Repository) attachExercises(ctx context.Context, tx pgx.Tx, workouts []domain.GymWorkout) error {
	if len(workouts) == 0 {
		return nil
	}
	ids := make([]string, len(workouts))
	index := make(map[string]int, len(workouts))
	for i, w := range workouts {
		ids[i] = w.ID
		index[w.ID] = i
		workouts[i].Exercises = []domain.Exercise{}
	}

	rows, err := tx.Query(ctx, `SELECT workout_id, exercise_id, name, weight, sets, reps, completed
        FROM gym_exercises WHERE workout_id = ANY($1) ORDER BY workout_id, position`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			workoutID string
			ex        domain.Exercise
		)
		if err := rows.Scan(&workoutID, &ex.ID, &ex.Name, &ex.Weight, &ex.Sets, &ex.Reps, &ex.Completed); err != nil {
			return err
		}
		if i, ok := index[workoutID]; ok {
			workouts[i].Exercises = append(workouts[i].Exercises, ex)
		}
	}
	return rows.Err()
}

// GetWorkout returns nil when the workout is absent or hidden by RLS.
func (r *Repository) GetWorkout(ctx context.Context, userID, workoutID string) (*domain.GymWorkout, error) {
	var found *domain.GymWorkout
	err := r.inUserTx(ctx, userID, func(tx pgx.Tx) error {
		w, err := scanWorkout(tx.QueryRow(ctx, `SELECT `+workoutColumns+` FROM gym_workouts WHERE user_id=$1 AND workout_id=$2`, userID, workoutID))
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		list := []domain.GymWorkout{w}
		if err := r.attachExercises(ctx, tx, list); err != nil {
			return err
		}
		found = &list[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// CreateWorkout inserts the workout, its exercises and a workout.logged event.
func (r *Repository) CreateWorkout(ctx context.Context, workout domain.GymWorkout) error {
	ev, err := persistence.WorkoutLoggedEvent(workout)
	if err != nil {
		return err
	}
	err = r.inUserTx(ctx, workout.UserID, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `INSERT INTO gym_workouts (`+workoutColumns+`) VALUES ($1,$2,$3,$4,$5)`,
			workout.ID, workout.UserID, workout.PerformedAt, workout.CreatedAt, workout.UpdatedAt); err != nil {
			return err
		}
		if err := insertExercises(ctx, tx, workout.UserID, workout.ID, workout.Exercises); err != nil {
			return err
		}
		return r.insertOutbox(ctx, tx, ev)
	})
	if err != nil {
		return err
	}
	observability.RecordPersisted("workout", workout.UpdatedAt)
	return nil
}

func (r *Repository) UpdateWorkoutTimestamp(ctx context.Context, userID, workoutID string, performedAt, updatedAt time.Time) error {
	return r.inUserTx(ctx, userID, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `UPDATE gym_workouts SET performed_at=$3, updated_at=$4 WHERE user_id=$1 AND workout_id=$2`,
			userID, workoutID, performedAt, updatedAt)
		return err
	})
}

func (r *Repository) DeleteExercises(ctx context.Context, userID, workoutID string) error {
	return r.inUserTx(ctx, userID, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `DELETE FROM gym_exercises WHERE user_id=$1 AND workout_id=$2`, userID, workoutID)
		return err
	})
}

func (r *Repository) InsertExercises(ctx context.Context, userID, workoutID string, exercises []domain.Exercise) error {
	return r.inUserTx(ctx, userID, func(tx pgx.Tx) error {
		return insertExercises(ctx, tx, userID, workoutID, exercises)
	})
}

func insertExercises(ctx context.Context, tx pgx.Tx, userID, workoutID string, exercises []domain.Exercise) error {
	if len(exercises) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for i, ex := range exercises {
		batch.Queue(`INSERT INTO gym_exercises (exercise_id, workout_id, user_id, position, name, weight, sets, reps, completed)
            VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			ex.ID, workoutID, userID, i, ex.Name, ex.Weight, ex.Sets, ex.Reps, ex.Completed)
	}
	return tx.SendBatch(ctx, batch).Close()
}

// DeleteWorkout removes the workout row and records workout.deleted. The
// exercises must already be gone.
func (r *Repository) DeleteWorkout(ctx context.Context, userID, workoutID string) error {
	now := time.Now().UTC()
	ev, err := persistence.WorkoutDeletedEvent(userID, workoutID, now)
	if err != nil {
		return err
	}
	return r.inUserTx(ctx, userID, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM gym_workouts WHERE user_id=$1 AND workout_id=$2`, userID, workoutID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return nil
		}
		return r.insertOutbox(ctx, tx, ev)
	})
}

func (r *Repository) GetSchedule(ctx context.Context, userID string, date time.Time, discipline string) (*domain.ScheduleRow, error) {
	var found *domain.ScheduleRow
	err := r.inUserTx(ctx, userID, func(tx pgx.Tx) error {
		row, err := scanSchedule(tx.QueryRow(ctx, `SELECT user_id, date, discipline, plan, updated_at
            FROM schedule WHERE user_id=$1 AND date=$2 AND discipline=$3`, userID, domain.CalendarDate(date), discipline))
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		found = &row
		return nil
	})
	return found, err
}

// SaveSchedule replaces the row's whole plan and records schedule.updated.
func (r *Repository) SaveSchedule(ctx context.Context, row domain.ScheduleRow) error {
	plan, err := json.Marshal(planOrEmpty(row.Plan))
	if err != nil {
		return fmt.Errorf("marshal plan: %w", err)
	}
	ev, err := persistence.ScheduleUpdatedEvent(row)
	if err != nil {
		return err
	}
	err = r.inUserTx(ctx, row.UserID, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `INSERT INTO schedule (user_id, date, discipline, plan, updated_at)
            VALUES ($1,$2,$3,$4,$5)
            ON CONFLICT (user_id, date, discipline) DO UPDATE SET plan = EXCLUDED.plan, updated_at = EXCLUDED.updated_at`,
			row.UserID, domain.CalendarDate(row.Date), row.Discipline, plan, row.UpdatedAt); err != nil {
			return err
		}
		return r.insertOutbox(ctx, tx, ev)
	})
	if err != nil {
		return err
	}
	observability.RecordPersisted("schedule", row.UpdatedAt)
	return nil
}

func (r *Repository) ListSchedule(ctx context.Context, userID, discipline string, from, to time.Time) ([]domain.ScheduleRow, error) {
	out := make([]domain.ScheduleRow, 0)
	err := r.inUserTx(ctx, userID, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `SELECT user_id, date, discipline, plan, updated_at
            FROM schedule WHERE user_id=$1 AND discipline=$2 AND date BETWEEN $3 AND $4 ORDER BY date`,
			userID, discipline, domain.CalendarDate(from), domain.CalendarDate(to))
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			row, err := scanSchedule(rows)
			if err != nil {
				return err
			}
			out = append(out, row)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func scanSchedule(row pgx.Row) (domain.ScheduleRow, error) {
	var (
		s    domain.ScheduleRow
		plan []byte
	)
	if err := row.Scan(&s.UserID, &s.Date, &s.Discipline, &plan, &s.UpdatedAt); err != nil {
		return s, err
	}
	if err := json.Unmarshal(plan, &s.Plan); err != nil {
		return s, fmt.Errorf("decode plan: %w", err)
	}
	s.Date = domain.CalendarDate(s.Date)
	s.UpdatedAt = s.UpdatedAt.UTC()
	return s, nil
}

func planOrEmpty(plan []domain.RideWorkout) []domain.RideWorkout {
	if plan == nil {
		return []domain.RideWorkout{}
	}
	return plan
}

func (r *Repository) GetFTPHistory(ctx context.Context, userID string) (domain.FTPHistory, error) {
	var history domain.FTPHistory
	err := r.inUserTx(ctx, userID, func(tx pgx.Tx) error {
		var raw []byte
		err := tx.QueryRow(ctx, `SELECT ftp_history FROM stats WHERE user_id=$1`, userID).Scan(&raw)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, &history)
	})
	return history, err
}

func (r *Repository) SaveFTPHistory(ctx context.Context, userID string, history domain.FTPHistory) error {
	if history == nil {
		history = domain.FTPHistory{}
	}
	raw, err := json.Marshal(history)
	if err != nil {
		return err
	}
	return r.inUserTx(ctx, userID, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `INSERT INTO stats (user_id, ftp_history, updated_at) VALUES ($1,$2,NOW())
            ON CONFLICT (user_id) DO UPDATE SET ftp_history = EXCLUDED.ftp_history, updated_at = NOW()`, userID, raw)
		return err
	})
}

func (r *Repository) SaveYearStats(ctx context.Context, stats domain.YearStats) error {
	return r.inUserTx(ctx, stats.UserID, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `INSERT INTO year_stats (user_id, year, count, distance, elevation, moving_time, tss, updated_at)
            VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
            ON CONFLICT (user_id, year) DO UPDATE SET
                count = EXCLUDED.count,
                distance = EXCLUDED.distance,
                elevation = EXCLUDED.elevation,
                moving_time = EXCLUDED.moving_time,
                tss = EXCLUDED.tss,
                updated_at = EXCLUDED.updated_at`,
			stats.UserID, stats.Year, stats.Count, stats.Distance, stats.Elevation, stats.MovingTime, stats.TSS, stats.UpdatedAt)
		return err
	})
}

// SaveAnalysis upserts the analysis row and records ride_analysis.generated
// once the analysis reaches a terminal status.
func (r *Repository) SaveAnalysis(ctx context.Context, analysis domain.RideAnalysis) error {
	ev, emit, err := persistence.AnalysisEvent(analysis)
	if err != nil {
		return err
	}
	err = r.inUserTx(ctx, analysis.UserID, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `INSERT INTO ride_analysis (user_id, activity_id, status, analysis, updated_at)
            VALUES ($1,$2,$3,$4,$5)
            ON CONFLICT (user_id, activity_id) DO UPDATE SET
                status = EXCLUDED.status,
                analysis = EXCLUDED.analysis,
                updated_at = EXCLUDED.updated_at`,
			analysis.UserID, analysis.ActivityID, string(analysis.Status), analysis.Analysis, analysis.UpdatedAt); err != nil {
			return err
		}
		if !emit {
			return nil
		}
		return r.insertOutbox(ctx, tx, ev)
	})
	if err != nil {
		return err
	}
	observability.RecordPersisted("ride_analysis", analysis.UpdatedAt)
	return nil
}

func (r *Repository) GetAnalysis(ctx context.Context, userID, activityID string) (*domain.RideAnalysis, error) {
	var found *domain.RideAnalysis
	err := r.inUserTx(ctx, userID, func(tx pgx.Tx) error {
		var (
			a      domain.RideAnalysis
			status string
		)
		err := tx.QueryRow(ctx, `SELECT user_id, activity_id, status, analysis, updated_at
            FROM ride_analysis WHERE user_id=$1 AND activity_id=$2`, userID, activityID).
			Scan(&a.UserID, &a.ActivityID, &status, &a.Analysis, &a.UpdatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		a.Status = domain.AnalysisStatus(status)
		a.UpdatedAt = a.UpdatedAt.UTC()
		found = &a
		return nil
	})
	return found, err
}
