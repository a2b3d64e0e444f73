// Package config loads run settings from flags, environment, .env files and
// an optional YAML config file, in that order of precedence.
package config

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/benefits-incoming/internal/errors"
	"github.com/benefits-incoming/internal/logging"
)

// EnvPrefix prefixes every environment variable, e.g. BENEFITS_OUT_DIR.
const EnvPrefix = "BENEFITS"

// Sink names.
const (
	SinkFile       = "file"
	SinkPostgres   = "postgres"
	SinkClickHouse = "clickhouse"
)

// ValidSinks lists the accepted sink names.
var ValidSinks = []string{SinkFile, SinkPostgres, SinkClickHouse}

const (
	defaultDBName   = "default"
	defaultUser     = "default"
	defaultPassword = "strongpassword"
	defaultTable    = "benefit_enrollments"
)

// Config is the resolved configuration of one run.
type Config struct {
	OutDir string
	Sinks  []string

	ConfigFile string

	Postgres   PostgresConfig
	ClickHouse ClickHouseConfig
}

// PostgresConfig addresses the PostgreSQL export.
type PostgresConfig struct {
	Host      string
	Port      int
	Database  string
	User      string
	Password  string
	Table     string
	BatchSize int
}

// ClickHouseConfig addresses the ClickHouse export.
type ClickHouseConfig struct {
	Host        string
	Port        int
	Database    string
	User        string
	Password    string
	Table       string
	DialTimeout time.Duration
}

// New returns a viper instance with defaults and environment binding set up.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// SetDefaults registers the default of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("out_dir", ".")
	v.SetDefault("sinks", []string{SinkFile})
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.database", defaultDBName)
	v.SetDefault("postgres.user", defaultUser)
	v.SetDefault("postgres.password", defaultPassword)
	v.SetDefault("postgres.table", defaultTable)
	v.SetDefault("postgres.batch_size", 100)

	v.SetDefault("clickhouse.host", "clickhouse")
	v.SetDefault("clickhouse.port", 9000)
	v.SetDefault("clickhouse.database", defaultDBName)
	v.SetDefault("clickhouse.user", defaultUser)
	v.SetDefault("clickhouse.password", defaultPassword)
	v.SetDefault("clickhouse.table", defaultTable)
	v.SetDefault("clickhouse.dial_timeout", 10*time.Second)
}

// ReadFile loads .env files from the working directory, then the config
// file: configFile when set, otherwise .benefits.yaml in the working
// directory or home. A missing default file is not an error.
func ReadFile(v *viper.Viper, configFile string) error {
	loadEnvFiles()
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config %s: %w", configFile, err)
		}
		return nil
	}
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}
	v.SetConfigType("yaml")
	v.SetConfigName(".benefits")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

// Load builds a Config from v and validates it.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		OutDir:     v.GetString("out_dir"),
		Sinks:      normalizeSinks(v.GetStringSlice("sinks")),
		ConfigFile: v.ConfigFileUsed(),
		Postgres: PostgresConfig{
			Host:      v.GetString("postgres.host"),
			Port:      v.GetInt("postgres.port"),
			Database:  v.GetString("postgres.database"),
			User:      v.GetString("postgres.user"),
			Password:  v.GetString("postgres.password"),
			Table:     v.GetString("postgres.table"),
			BatchSize: v.GetInt("postgres.batch_size"),
		},
		ClickHouse: ClickHouseConfig{
			Host:        v.GetString("clickhouse.host"),
			Port:        v.GetInt("clickhouse.port"),
			Database:    v.GetString("clickhouse.database"),
			User:        v.GetString("clickhouse.user"),
			Password:    v.GetString("clickhouse.password"),
			Table:       v.GetString("clickhouse.table"),
			DialTimeout: v.GetDuration("clickhouse.dial_timeout"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings no run could use.
func (c *Config) Validate() error {
	if c.OutDir == "" {
		return errors.New("out_dir must not be empty")
	}
	if len(c.Sinks) == 0 {
		return errors.New("at least one sink is required")
	}
	for _, s := range c.Sinks {
		if !slices.Contains(ValidSinks, s) {
			return fmt.Errorf("invalid sink %q: must be one of %v", s, ValidSinks)
		}
	}
	if c.HasSink(SinkPostgres) {
		if c.Postgres.Port <= 0 {
			return errors.New("postgres.port must be > 0")
		}
		if c.Postgres.BatchSize < 1 {
			return errors.New("postgres.batch_size must be >= 1")
		}
		if !validIdentifier(c.Postgres.Table) {
			return fmt.Errorf("invalid postgres.table %q", c.Postgres.Table)
		}
	}
	if c.HasSink(SinkClickHouse) {
		if c.ClickHouse.Port <= 0 {
			return errors.New("clickhouse.port must be > 0")
		}
		if !validIdentifier(c.ClickHouse.Table) || !validIdentifier(c.ClickHouse.Database) {
			return fmt.Errorf("invalid clickhouse table %q.%q", c.ClickHouse.Database, c.ClickHouse.Table)
		}
	}
	return nil
}

// HasSink reports whether name is among the configured sinks.
func (c *Config) HasSink(name string) bool {
	return slices.Contains(c.Sinks, name)
}

// normalizeSinks lowercases, splits comma lists (as env vars arrive) and drops duplicates.
func normalizeSinks(in []string) []string {
	var out []string
	for _, item := range in {
		for _, s := range strings.Split(item, ",") {
			s = strings.ToLower(strings.TrimSpace(s))
			if s != "" && !slices.Contains(out, s) {
				out = append(out, s)
			}
		}
	}
	return out
}

// validIdentifier accepts plain SQL identifiers; table names are interpolated into DDL.
func validIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

func loadEnvFiles() {
	for _, f := range []string{".env.local", ".env"} {
		if _, err := os.Stat(f); err == nil {
			if err := godotenv.Load(f); err != nil {
				logging.Default().Warn().Err(err).Str("file", f).Msg("Skipping unreadable env file")
			}
		}
	}
}
