package main

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tormoder/fit"

	"github.com/oddwes/ridesofjulian/internal/config"
	"github.com/oddwes/ridesofjulian/internal/token"
)

func run(t *testing.T, cfg config.Config, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd(cfg)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeFIT(t *testing.T, dir string) string {
	t.Helper()
	header := fit.NewHeader(fit.V20, true)
	file, err := fit.NewFile(fit.FileTypeActivity, header)
	require.NoError(t, err)
	activity, err := file.Activity()
	require.NoError(t, err)

	start := time.Date(2025, 6, 1, 7, 0, 0, 0, time.UTC)
	for i := 0; i <= 120; i++ {
		record := fit.NewRecordMsg()
		record.Timestamp = start.Add(time.Duration(i) * time.Second)
		record.Power = 200
		activity.Records = append(activity.Records, record)
	}
	var buf bytes.Buffer
	require.NoError(t, fit.Encode(&buf, file, binary.LittleEndian))

	path := filepath.Join(dir, "ride.fit")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}

func TestFitSummary(t *testing.T) {
	dir := t.TempDir()
	path := writeFIT(t, dir)

	stdout, _, err := run(t, config.Config{}, "--store", filepath.Join(dir, "creds.db"), "fit", "summary", path, "--ftp", "200")
	require.NoError(t, err)

	var out fitSummary
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	require.Equal(t, 121, out.PowerSamples)
	require.InDelta(t, 200.0, out.NormalizedPower, 0.01)
	require.Equal(t, 120, out.Activity.MovingTime)
	require.Equal(t, 121, out.TimeInZones[4])
	require.Equal(t, 3, out.TSS)
}

func TestStreamsExportCSV(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/activities/77/streams" || r.Header.Get("Authorization") != "Bearer cached" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"time":{"data":[0,1]},"watts":{"data":[180,190]}}`))
	}))
	defer srv.Close()

	dir := t.TempDir()
	storePath := filepath.Join(dir, "creds.db")
	store, err := token.OpenSQLite(context.Background(), storePath)
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), token.Key{UserID: "local", Provider: token.ProviderStrava}, token.Credentials{
		AccessToken:  "cached",
		RefreshToken: "refresh",
		ExpiresAt:    time.Now().Add(time.Hour),
	}))
	require.NoError(t, store.Close())

	cfg := config.Config{StravaBaseURL: srv.URL}
	outPath := filepath.Join(dir, "streams.csv")
	_, stderr, err := run(t, cfg, "--store", storePath, "streams", "export", "77", "--format", "csv", "-o", outPath, "--ftp", "200")
	require.NoError(t, err)
	require.Contains(t, stderr, `"power_samples": 2`)

	raw, err := os.ReadFile(outPath)
	require.NoError(t, err)
	records, err := csv.NewReader(bytes.NewReader(raw)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, "190", records[2][1])

	stdout, _, err := run(t, cfg, "--store", storePath, "auth", "status")
	require.NoError(t, err)
	require.Contains(t, stdout, "strava  ok")
	require.Contains(t, stdout, "wahoo   not linked")
}

func TestStreamsExportRejectsBadInput(t *testing.T) {
	dir := t.TempDir()
	_, _, err := run(t, config.Config{}, "--store", filepath.Join(dir, "creds.db"), "streams", "export", "abc")
	require.Error(t, err)

	_, _, err = run(t, config.Config{}, "--store", filepath.Join(dir, "creds.db"), "streams", "export", "1", "--format", "xlsx")
	require.Error(t, err)
}

func TestAuthURL(t *testing.T) {
	cfg := config.Config{Strava: token.ClientConfig{ClientID: "123", RedirectURL: "http://localhost/cb"}}
	stdout, _, err := run(t, cfg, "auth", "url", "strava", "--state", "xyz")
	require.NoError(t, err)
	require.Contains(t, stdout, "https://www.strava.com/oauth/authorize")
	require.Contains(t, stdout, "client_id=123")
	require.Contains(t, stdout, "state=xyz")

	_, _, err = run(t, cfg, "auth", "url", "garmin")
	require.Error(t, err)
}

func seedCredentials(t *testing.T, dir string, provider token.Provider) string {
	t.Helper()
	storePath := filepath.Join(dir, "creds.db")
	store, err := token.OpenSQLite(context.Background(), storePath)
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), token.Key{UserID: "local", Provider: provider}, token.Credentials{
		AccessToken:  "cached",
		RefreshToken: "refresh",
		ExpiresAt:    time.Now().Add(time.Hour),
	}))
	require.NoError(t, store.Close())
	return storePath
}

func TestAthleteShowsYTDTotals(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/athlete":
			_, _ = w.Write([]byte(`{"id":42,"firstname":"Julian","ftp":250}`))
		case "/athletes/42/stats":
			_, _ = w.Write([]byte(`{"ytd_ride_totals":{"count":12,"distance":480000,"moving_time":61200}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	storePath := seedCredentials(t, t.TempDir(), token.ProviderStrava)
	stdout, _, err := run(t, config.Config{StravaBaseURL: srv.URL}, "--store", storePath, "athlete")
	require.NoError(t, err)

	var report struct {
		Athlete struct {
			ID  int64 `json:"id"`
			FTP int   `json:"ftp"`
		} `json:"athlete"`
		YTD struct {
			Count    int     `json:"count"`
			Distance float64 `json:"distance"`
		} `json:"ytd_ride_totals"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	require.Equal(t, int64(42), report.Athlete.ID)
	require.Equal(t, 250, report.Athlete.FTP)
	require.Equal(t, 12, report.YTD.Count)
	require.InDelta(t, 480000, report.YTD.Distance, 0.001)
}

func TestWahooPlannedShowDelete(t *testing.T) {
	var deleted bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer cached" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/v1/workouts":
			_, _ = w.Write([]byte(`{"workouts":[
				{"id":7,"name":"Tempo","starts":"2025-06-03T07:00:00Z","plan_id":3},
				{"id":8,"name":"Old","starts":"2025-05-20T07:00:00Z","plan_id":2},
				{"id":9,"name":"Recorded","starts":"2025-06-04T07:00:00Z"}
			]}`))
		case r.Method == http.MethodGet && r.URL.Path == "/v1/workouts/7":
			_, _ = w.Write([]byte(`{"id":7,"name":"Tempo","plan_id":3}`))
		case r.Method == http.MethodDelete && r.URL.Path == "/v1/workouts/7":
			deleted = true
			w.WriteHeader(http.StatusNoContent)
		case r.URL.Path == "/v1/plans/3":
			_, _ = fmt.Fprintf(w, `{"id":3,"name":"Tempo","file":{"url":"http://%s/files/3.json"}}`, r.Host)
		case r.URL.Path == "/files/3.json":
			_, _ = w.Write([]byte(`{"header":{"name":"Tempo","duration_s":1200},"intervals":[{"name":"tempo","exit_trigger_type":"time","exit_trigger_value":1200,"targets":[{"type":"watts","low":200,"high":220}]}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	storePath := seedCredentials(t, t.TempDir(), token.ProviderWahoo)
	cfg := config.Config{WahooBaseURL: srv.URL}

	stdout, _, err := run(t, cfg, "--store", storePath, "wahoo", "planned", "--from", "2025-06-01")
	require.NoError(t, err)
	var planned []struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &planned))
	require.Len(t, planned, 1)
	require.Equal(t, int64(7), planned[0].ID)

	stdout, _, err = run(t, cfg, "--store", storePath, "wahoo", "show", "7")
	require.NoError(t, err)
	var shown struct {
		Plan struct {
			ID int64 `json:"id"`
		} `json:"plan"`
		Intervals []struct {
			Name     string  `json:"name"`
			Duration int     `json:"duration"`
			PowerMin float64 `json:"power_min"`
		} `json:"intervals"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &shown))
	require.Equal(t, int64(3), shown.Plan.ID)
	require.Len(t, shown.Intervals, 1)
	require.Equal(t, 1200, shown.Intervals[0].Duration)
	require.InDelta(t, 200, shown.Intervals[0].PowerMin, 0.001)

	stdout, _, err = run(t, cfg, "--store", storePath, "wahoo", "delete", "7")
	require.NoError(t, err)
	require.True(t, deleted)
	require.Contains(t, stdout, "deleted workout 7")

	_, _, err = run(t, cfg, "--store", storePath, "wahoo", "show", "abc")
	require.Error(t, err)
	_, _, err = run(t, cfg, "--store", storePath, "wahoo", "planned", "--from", "June")
	require.Error(t, err)
}
