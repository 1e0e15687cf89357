//go:build integration

package postgres

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/oddwes/ridesofjulian/internal/domain"
)

func setupPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	pg, err := postgrescontainer.Run(ctx, "postgres:16-alpine",
		postgrescontainer.WithDatabase("rides"),
		postgrescontainer.WithUsername("rides"),
		postgrescontainer.WithPassword("rides"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, waitForDatabase(ctx, connStr))

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	contents, err := os.ReadFile(resolvePath(t, "../../../db/postgres/migrations/0001_init.up.sql"))
	require.NoError(t, err)
	_, err = pool.Exec(ctx, string(contents))
	require.NoError(t, err)

	// The container user owns the tables; a separate role exercises the policies.
	_, err = pool.Exec(ctx, `CREATE ROLE app LOGIN PASSWORD 'app' NOSUPERUSER;
        GRANT SELECT, INSERT, UPDATE, DELETE ON ALL TABLES IN SCHEMA public TO app;
        GRANT USAGE ON ALL SEQUENCES IN SCHEMA public TO app;`)
	require.NoError(t, err)

	cfg, err := pgxpool.ParseConfig(connStr)
	require.NoError(t, err)
	cfg.ConnConfig.User = "app"
	cfg.ConnConfig.Password = "app"
	appPool, err := pgxpool.NewWithConfig(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(appPool.Close)
	return appPool
}

func TestRepositoryRespectsUserIsolation(t *testing.T) {
	ctx := context.Background()
	pool := setupPool(t)
	repo := NewRepository(pool)

	now := time.Now().UTC().Truncate(time.Microsecond)
	workout := domain.GymWorkout{
		ID:          uuid.NewString(),
		UserID:      "alice",
		PerformedAt: now,
		Exercises:   []domain.Exercise{{ID: uuid.NewString(), Name: "squat", Sets: 5, Reps: 5, Weight: 100}},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, repo.CreateWorkout(ctx, workout))

	stored, err := repo.GetWorkout(ctx, "alice", workout.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Len(t, stored.Exercises, 1)

	other, err := repo.GetWorkout(ctx, "mallory", workout.ID)
	require.NoError(t, err)
	require.Nil(t, other, "RLS should prevent cross-user access")

	var outboxRows int
	require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM outbox WHERE event_type='workout.logged'`).Scan(&outboxRows))
	require.Equal(t, 1, outboxRows)

	require.NoError(t, repo.DeleteExercises(ctx, "alice", workout.ID))
	require.NoError(t, repo.DeleteWorkout(ctx, "alice", workout.ID))
	gone, err := repo.GetWorkout(ctx, "alice", workout.ID)
	require.NoError(t, err)
	require.Nil(t, gone)
}

func TestRepositoryScheduleAndStats(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(setupPool(t))
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	row := domain.ScheduleRow{
		UserID:     "alice",
		Date:       day,
		Discipline: domain.DisciplineCycling,
		Plan:       []domain.RideWorkout{{ID: "r1", Title: "Endurance", Date: day, Intervals: []domain.Interval{{ID: "i1", Duration: 3600, PowerMin: 150, PowerMax: 170}}}},
		UpdatedAt:  time.Now().UTC(),
	}
	require.NoError(t, repo.SaveSchedule(ctx, row))

	got, err := repo.GetSchedule(ctx, "alice", day, domain.DisciplineCycling)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "Endurance", got.Plan[0].Title)

	rows, err := repo.ListSchedule(ctx, "alice", domain.DisciplineCycling, day.AddDate(0, 0, -1), day.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	history := domain.FTPHistory{{EffectiveDate: day, Watts: 250}}
	require.NoError(t, repo.SaveFTPHistory(ctx, "alice", history))
	stored, err := repo.GetFTPHistory(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	require.Equal(t, 250.0, stored[0].Watts)

	require.NoError(t, repo.SaveYearStats(ctx, domain.YearStats{UserID: "alice", Year: 2025, Count: 3, TSS: 120, UpdatedAt: time.Now().UTC()}))

	require.NoError(t, repo.SaveAnalysis(ctx, domain.RideAnalysis{UserID: "alice", ActivityID: "99", Status: domain.AnalysisComplete, Analysis: "ok", UpdatedAt: time.Now().UTC()}))
	analysis, err := repo.GetAnalysis(ctx, "alice", "99")
	require.NoError(t, err)
	require.Equal(t, domain.AnalysisComplete, analysis.Status)
}

func resolvePath(t *testing.T, rel string) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(file), rel)
}

func waitForDatabase(ctx context.Context, connStr string) error {
	deadline := time.Now().Add(30 * time.Second)
	for {
		pool, err := pgxpool.New(ctx, connStr)
		if err == nil {
			err = pool.Ping(ctx)
			pool.Close()
			if err == nil {
				return nil
			}
		}
		if time.Now().After(deadline) {
			return err
		}
		time.Sleep(time.Second)
	}
}
