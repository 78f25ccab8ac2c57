package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfigYAML = `
server:
  port: 8080
  mode: "release"
database:
  host: "localhost"
  port: 5432
  user: "sentinel"
  password: "secret"
  db_name: "marksentinel"
redis:
  addr: "localhost:6379"
kafka:
  brokers: ["localhost:9092"]
registry:
  base_url: "https://registry.example.com/api"
  request_interval: 1s
  timeout: 10s
scheduler:
  tick_spec: "@every 1m"
  batch_size: 25
log:
  level: "info"
  format: "json"
`

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_ValidFile(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sentinel", cfg.Database.User)
	assert.Equal(t, time.Second, cfg.Registry.RequestInterval)
	assert.Equal(t, 25, cfg.Scheduler.BatchSize)
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("does_not_exist.yaml")
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := createTempConfigFile(t, "server: [")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_AppliesDefaults(t *testing.T) {
	minimal := `
database:
  user: "sentinel"
registry:
  base_url: "https://registry.example.com/api"
`
	path := createTempConfigFile(t, minimal)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, DefaultRegistryInterval, cfg.Registry.RequestInterval)
	assert.Equal(t, DefaultSchedulerTickSpec, cfg.Scheduler.TickSpec)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.Equal(t, []string{DefaultKafkaBroker}, cfg.Kafka.Brokers)
}

func TestLoad_ValidationFailure(t *testing.T) {
	bad := `
server:
  port: 70000
database:
  user: "sentinel"
registry:
  base_url: "https://registry.example.com/api"
`
	path := createTempConfigFile(t, bad)
	_, err := Load(path)
	assert.ErrorContains(t, err, "server.port")
}

func TestValidate_RegistryRequiresBaseURLWithoutFallback(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	cfg.Database.User = "sentinel"
	cfg.Registry.BaseURL = ""
	cfg.Registry.UseFallback = false
	assert.ErrorContains(t, cfg.Validate(), "registry.base_url")

	cfg.Registry.UseFallback = true
	assert.NoError(t, cfg.Validate())
}

func TestValidate_LogLevel(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	cfg.Database.User = "sentinel"
	cfg.Registry.UseFallback = true
	cfg.Log.Level = "verbose"
	assert.ErrorContains(t, cfg.Validate(), "log.level")
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("MARKSENTINEL_DATABASE_USER", "envuser")
	t.Setenv("MARKSENTINEL_REGISTRY_BASE_URL", "https://env.example.com")
	t.Setenv("MARKSENTINEL_SERVER_PORT", "9090")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "envuser", cfg.Database.User)
	assert.Equal(t, "https://env.example.com", cfg.Registry.BaseURL)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestApplyDefaults_NilSafe(t *testing.T) {
	assert.NotPanics(t, func() { ApplyDefaults(nil) })
}
