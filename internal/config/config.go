package config

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"sales-dashboard/internal/logging"
)

// Config materialises application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Logging   logging.Config  `mapstructure:"logging"`
	Data      DataConfig      `mapstructure:"data"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Server    ServerConfig    `mapstructure:"server"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// DataConfig selects where sales records are loaded from.
type DataConfig struct {
	Source        string `mapstructure:"source"`
	Path          string `mapstructure:"path"`
	MalformedRows string `mapstructure:"malformed_rows"`
}

// DatabaseConfig encapsulates PostgreSQL connectivity.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	Table           string        `mapstructure:"table"`
}

// DashboardConfig covers chart and summary presentation.
type DashboardConfig struct {
	Title       string    `mapstructure:"title"`
	CutoffDate  time.Time `mapstructure:"cutoff_date"`
	MarkerLabel string    `mapstructure:"marker_label"`
	ChartWidth  int       `mapstructure:"chart_width"`
	ChartHeight int       `mapstructure:"chart_height"`
}

// ServerConfig tunes the dashboard HTTP server.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	ChartRateLimit  int           `mapstructure:"chart_rate_limit"`
	SessionTTL      time.Duration `mapstructure:"session_ttl"`
	SecureCookies   bool          `mapstructure:"secure_cookies"`
}

const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
)

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SALESDASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "salesdash")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("data.source", SourceCSV)
	v.SetDefault("data.path", "pink_morsel_sales.csv")
	v.SetDefault("data.malformed_rows", "reject")

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.table", "sales_records")

	v.SetDefault("dashboard.title", "Pink Morsel Visualizer")
	v.SetDefault("dashboard.cutoff_date", "2021-01-15")
	v.SetDefault("dashboard.marker_label", "Price Increase")
	v.SetDefault("dashboard.chart_width", 1024)
	v.SetDefault("dashboard.chart_height", 480)

	v.SetDefault("server.addr", ":8050")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "5s")
	v.SetDefault("server.chart_rate_limit", 120)
	v.SetDefault("server.session_ttl", "2h")
	v.SetDefault("server.secure_cookies", false)
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			stringToDateHookFunc(),
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// stringToDateHookFunc decodes YYYY-MM-DD (or RFC3339) strings into time.Time.
func stringToDateHookFunc() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if from.Kind() != reflect.String || to != reflect.TypeOf(time.Time{}) {
			return data, nil
		}
		raw := strings.TrimSpace(data.(string))
		if raw == "" {
			return time.Time{}, nil
		}
		if t, err := time.Parse(time.DateOnly, raw); err == nil {
			return t, nil
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", raw)
		}
		return t, nil
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	switch c.Data.Source {
	case SourceCSV:
		if c.Data.Path == "" {
			return fmt.Errorf("data.path must be set when data.source is csv")
		}
	case SourcePostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn must be set when data.source is postgres")
		}
	default:
		return fmt.Errorf("data.source must be %q or %q", SourceCSV, SourcePostgres)
	}
	switch strings.ToLower(c.Data.MalformedRows) {
	case "reject", "skip":
	default:
		return fmt.Errorf("data.malformed_rows must be reject or skip")
	}
	if c.Dashboard.CutoffDate.IsZero() {
		return fmt.Errorf("dashboard.cutoff_date is required")
	}
	if c.Dashboard.ChartWidth <= 0 || c.Dashboard.ChartHeight <= 0 {
		return fmt.Errorf("dashboard chart dimensions must be greater than zero")
	}
	if c.Server.ChartRateLimit < 0 {
		return fmt.Errorf("server.chart_rate_limit cannot be negative")
	}
	if c.Server.SessionTTL <= 0 {
		return fmt.Errorf("server.session_ttl must be greater than zero")
	}
	return nil
}

// ResolveDataPath returns either the CLI override or the configured CSV path.
func (c *Config) ResolveDataPath(override string) string {
	if override != "" {
		return override
	}
	return c.Data.Path
}
