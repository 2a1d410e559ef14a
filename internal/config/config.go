// Package config loads application configuration from file and environment
// and initializes the global logger.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Ingest   IngestConfig   `yaml:"ingest" mapstructure:"ingest"`
	Keywords KeywordsConfig `yaml:"keywords" mapstructure:"keywords"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the Postgres backend.
type StoreConfig struct {
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// IngestConfig configures the survey ingestion pipeline.
type IngestConfig struct {
	Year                int      `yaml:"year" mapstructure:"year"`
	Source              string   `yaml:"source" mapstructure:"source"`
	Sheet               string   `yaml:"sheet" mapstructure:"sheet"`
	ProgressEvery       int      `yaml:"progress_every" mapstructure:"progress_every"`
	BatchSize           int      `yaml:"batch_size" mapstructure:"batch_size"`
	OccupationPrefixes  []string `yaml:"occupation_prefixes" mapstructure:"occupation_prefixes"`
	DetailedOnly        bool     `yaml:"detailed_only" mapstructure:"detailed_only"`
	CrossIndustryOnly   bool     `yaml:"cross_industry_only" mapstructure:"cross_industry_only"`
	TempDir             string   `yaml:"temp_dir" mapstructure:"temp_dir"`
	DownloadTimeoutSecs int      `yaml:"download_timeout_secs" mapstructure:"download_timeout_secs"`
}

// KeywordsConfig configures the curated keyword mapping.
type KeywordsConfig struct {
	MappingFile string `yaml:"mapping_file" mapstructure:"mapping_file"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SALARY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Every key needs an entry here even when the zero value is
	// the default: AutomaticEnv only surfaces env overrides for keys viper
	// already knows about.
	v.SetDefault("store.database_url", "")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 2)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	// survey releases lag by a year
	v.SetDefault("ingest.year", time.Now().Year()-1)
	v.SetDefault("ingest.source", "BLS")
	v.SetDefault("ingest.progress_every", 1000)
	v.SetDefault("ingest.batch_size", 500)
	v.SetDefault("ingest.occupation_prefixes", []string{"29-", "31-"})
	v.SetDefault("ingest.detailed_only", true)
	v.SetDefault("ingest.cross_industry_only", true)
	v.SetDefault("ingest.sheet", "")
	v.SetDefault("ingest.temp_dir", "/tmp/salary-cli")
	v.SetDefault("ingest.download_timeout_secs", 600)
	v.SetDefault("keywords.mapping_file", "")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the fields a command requires before it runs. mode is
// "store" for commands that only need the database, "ingest" for full
// pipeline runs.
func (c *Config) Validate(mode string) error {
	var problems []string

	needsStore := func() {
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required (or SALARY_STORE_DATABASE_URL)")
		}
	}

	switch mode {
	case "store":
		needsStore()
	case "ingest":
		needsStore()
		if c.Ingest.Year < 1999 || c.Ingest.Year > time.Now().Year() {
			problems = append(problems, "ingest.year must be a plausible survey year")
		}
		if c.Ingest.BatchSize < 0 {
			problems = append(problems, "ingest.batch_size must be >= 0")
		}
		if len(c.Ingest.OccupationPrefixes) == 0 {
			problems = append(problems, "ingest.occupation_prefixes must not be empty")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
