package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chTempDir(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(origDir) })
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chTempDir(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, int32(10), cfg.Store.MaxConns)
	assert.Equal(t, int32(2), cfg.Store.MinConns)
	assert.Equal(t, time.Now().Year()-1, cfg.Ingest.Year)
	assert.Equal(t, "BLS", cfg.Ingest.Source)
	assert.Equal(t, 1000, cfg.Ingest.ProgressEvery)
	assert.Equal(t, 500, cfg.Ingest.BatchSize)
	assert.Equal(t, []string{"29-", "31-"}, cfg.Ingest.OccupationPrefixes)
	assert.True(t, cfg.Ingest.DetailedOnly)
	assert.True(t, cfg.Ingest.CrossIndustryOnly)
	assert.Equal(t, "/tmp/salary-cli", cfg.Ingest.TempDir)
}

func TestLoadFromYAML(t *testing.T) {
	chTempDir(t)

	yaml := `
store:
  database_url: postgres://localhost/salaries
log:
  level: debug
  format: console
ingest:
  year: 2023
  batch_size: 100
`
	dir, _ := os.Getwd()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/salaries", cfg.Store.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 2023, cfg.Ingest.Year)
	assert.Equal(t, 100, cfg.Ingest.BatchSize)
	// Defaults still apply for unset values
	assert.Equal(t, 1000, cfg.Ingest.ProgressEvery)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	chTempDir(t)

	yaml := `
log:
  level: debug
`
	dir, _ := os.Getwd()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("SALARY_LOG_LEVEL", "warn")
	t.Setenv("SALARY_INGEST_SOURCE", "BLS-TEST")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "BLS-TEST", cfg.Ingest.Source)
}

// Keys with no config-file entry must still be settable from the
// environment; database_url is the one every command needs.
func TestLoadDatabaseURLFromEnv(t *testing.T) {
	chTempDir(t)

	t.Setenv("SALARY_STORE_DATABASE_URL", "postgres://env-host:5432/salaries")
	t.Setenv("SALARY_INGEST_SHEET", "All May 2024 data")
	t.Setenv("SALARY_KEYWORDS_MAPPING_FILE", "/etc/salary/keywords.yaml")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://env-host:5432/salaries", cfg.Store.DatabaseURL)
	assert.Equal(t, "All May 2024 data", cfg.Ingest.Sheet)
	assert.Equal(t, "/etc/salary/keywords.yaml", cfg.Keywords.MappingFile)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chTempDir(t)

	t.Setenv("SALARY_INGEST_YEAR", "2022")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 2022, cfg.Ingest.Year)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

func validConfig() *Config {
	return &Config{
		Store: StoreConfig{DatabaseURL: "postgres://localhost/salaries"},
		Ingest: IngestConfig{
			Year:               time.Now().Year() - 1,
			Source:             "BLS",
			BatchSize:          500,
			OccupationPrefixes: []string{"29-", "31-"},
		},
	}
}

func TestValidateStore(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate("store"))

	cfg.Store.DatabaseURL = ""
	err := cfg.Validate("store")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.database_url is required")
}

func TestValidateIngest(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate("ingest"))

	cfg.Ingest.Year = 1985
	err := cfg.Validate("ingest")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "plausible survey year")

	cfg = validConfig()
	cfg.Ingest.OccupationPrefixes = nil
	err = cfg.Validate("ingest")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "occupation_prefixes")
}

func TestValidateUnknownMode(t *testing.T) {
	err := validConfig().Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}
