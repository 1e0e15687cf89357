package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "")
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTPAddress)
	require.Equal(t, []string{"kafka:9092"}, cfg.KafkaBrokers)
	require.Equal(t, 2*time.Second, cfg.OutboxPollInterval)
	require.Equal(t, DefaultAnalysisPrompt, cfg.Prompts.Analysis)
	require.Len(t, cfg.ConsumerTopics, 4)
	require.Equal(t, StorePostgres, cfg.StoreBackend)
}

func TestLoadStoreBackend(t *testing.T) {
	t.Setenv("STORE_BACKEND", "Memory")
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, StoreMemory, cfg.StoreBackend)

	t.Setenv("STORE_BACKEND", "redis")
	_, err = Load()
	require.Error(t, err)
}

func TestLoadFileOverlayAndEnvPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
prompts:
  analysis: |
    Coach from file.
  plan: Plan from file.
llm:
  provider: gemini
  model: gemini-2.5-pro
providers:
  strava:
    client_id: "1234"
    client_secret: file-secret
`), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PLAN_SYSTEM_PROMPT", "Plan from env.")
	t.Setenv("STRAVA_CLIENT_SECRET", "env-secret")
	t.Setenv("KAFKA_BROKERS", " a:9092, ,b:9092 ")
	t.Setenv("OUTBOX_BATCH_SIZE", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "Coach from file.", cfg.Prompts.Analysis)
	require.Equal(t, "Plan from env.", cfg.Prompts.Plan)
	require.Equal(t, "gemini", cfg.LLM.Provider)
	require.Equal(t, "gemini-2.5-pro", cfg.LLM.Model)
	require.Equal(t, "1234", cfg.Strava.ClientID)
	require.Equal(t, "env-secret", cfg.Strava.ClientSecret)
	require.Equal(t, []string{"a:9092", "b:9092"}, cfg.KafkaBrokers)
	require.Equal(t, 25, cfg.OutboxBatchSize)
}

func TestLoadRejectsBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("prompts: [unclosed"), 0o600))
	t.Setenv("CONFIG_FILE", path)

	_, err := Load()
	require.Error(t, err)

	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err = Load()
	require.Error(t, err)
}
