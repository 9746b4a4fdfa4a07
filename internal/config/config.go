package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/events"
	"github.com/Veraticus/tally/internal/sheets"
	"github.com/Veraticus/tally/internal/storage"
)

// EnvPrefix is prepended to every environment override, e.g. TALLY_STORAGE_BACKEND.
const EnvPrefix = "TALLY"

// Config is the resolved application configuration.
type Config struct {
	Storage StorageConfig
	Events  EventsConfig
	Logging LoggingConfig
	Sheets  sheets.Config
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Backend string
	Path    string
	DSN     string
}

// EventsConfig enables change notifications.
type EventsConfig struct {
	AMQPURL  string
	Exchange string
	Queue    string
}

// Enabled reports whether a broker is configured.
func (e EventsConfig) Enabled() bool {
	return e.AMQPURL != ""
}

// LoggingConfig controls the global logger.
type LoggingConfig struct {
	Level  string
	Format string
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("storage.backend", storage.BackendFile)
	v.SetDefault("storage.path", DefaultDataDir())
	v.SetDefault("events.exchange", events.DefaultExchange)
	v.SetDefault("events.queue", events.DefaultQueue)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// NewViper creates a viper instance with defaults and TALLY_ env overrides.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// ReadConfigFile loads cfgFile, or searches the default locations when it is empty.
// A missing file in the default locations is not an error.
func ReadConfigFile(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(ExpandPath(cfgFile))
	} else {
		v.AddConfigPath(DefaultConfigDir())
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// LoadDotEnv loads variables from .env files that exist. Variables already set win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// Load resolves the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Storage: StorageConfig{
			Backend: strings.ToLower(strings.TrimSpace(v.GetString("storage.backend"))),
			Path:    ExpandPath(v.GetString("storage.path")),
			DSN:     v.GetString("storage.dsn"),
		},
		Events: EventsConfig{
			AMQPURL:  v.GetString("events.amqp_url"),
			Exchange: v.GetString("events.exchange"),
			Queue:    v.GetString("events.queue"),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
		Sheets: LoadSheetsConfig(v),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error

	switch c.Storage.Backend {
	case storage.BackendFile, storage.BackendSQLite:
		if c.Storage.Path == "" {
			errs = append(errs, fmt.Errorf("storage.path is required for the %s backend", c.Storage.Backend))
		}
	case storage.BackendMemory:
	case storage.BackendPostgres:
		if c.Storage.DSN == "" {
			errs = append(errs, errors.New("storage.dsn is required for the postgres backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.backend must be file, memory, sqlite or postgres, got %q", c.Storage.Backend))
	}

	if _, err := common.ParseLogLevel(c.Logging.Level); err != nil {
		errs = append(errs, err)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format))
	}

	if c.Events.Enabled() && (c.Events.Exchange == "" || c.Events.Queue == "") {
		errs = append(errs, errors.New("events.exchange and events.queue are required when events.amqp_url is set"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", common.ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// StorageOptions converts the storage section for storage.Open.
func (c *Config) StorageOptions() storage.Options {
	return storage.Options{
		Backend: c.Storage.Backend,
		Path:    c.Storage.Path,
		DSN:     c.Storage.DSN,
	}
}
