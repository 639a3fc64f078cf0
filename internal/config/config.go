package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmingdata/stock-market-trading/internal/core"
	"github.com/spf13/viper"
)

type Config struct {
	Simulation SimulationConfig `mapstructure:"simulation"`
	Payoff     PayoffConfig     `mapstructure:"payoff"`
	Data       DataConfig       `mapstructure:"data"`
	Archive    ArchiveConfig    `mapstructure:"archive"`
	Server     ServerConfig     `mapstructure:"server"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// SimulationConfig holds the trade simulation parameters.
type SimulationConfig struct {
	EntryWindowBusinessDays int     `mapstructure:"entry_window_business_days"`
	PositionSize            float64 `mapstructure:"position_size"`
	SetupMonthFilter        string  `mapstructure:"setup_month_filter"`
	PositionTypeFilter      string  `mapstructure:"position_type_filter"`
}

// PayoffConfig parameterizes the outcome attribution payoff schedule.
// Percentages are fractions of the entry price; Notional is the dollar
// size of the full three-share position the schedule assumes.
type PayoffConfig struct {
	Notional float64 `mapstructure:"notional"`
	StopPct  float64 `mapstructure:"stop_pct"`
	PT1Pct   float64 `mapstructure:"pt1_pct"`
	PT2Pct   float64 `mapstructure:"pt2_pct"`
	PT3Pct   float64 `mapstructure:"pt3_pct"`
}

// DataConfig holds input/output file locations.
type DataConfig struct {
	SetupsPath   string `mapstructure:"setups_path"`
	PricesPath   string `mapstructure:"prices_path"`
	SnapshotPath string `mapstructure:"snapshot_path"`
	OutputDir    string `mapstructure:"output_dir"`
}

// ArchiveConfig holds run-output archival settings.
type ArchiveConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Type    string   `mapstructure:"type"` // "localfs" or "s3"
	Path    string   `mapstructure:"path"` // For localfs
	S3      S3Config `mapstructure:"s3"`   // For S3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	APIKey          string        `mapstructure:"api_key"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from file.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Defaults returns a config with sensible defaults. The payoff schedule
// defaults to 9/13/23/38 percent distances on a $300 notional.
func Defaults() *Config {
	return &Config{
		Simulation: SimulationConfig{
			EntryWindowBusinessDays: 2,
			PositionSize:            500,
			SetupMonthFilter:        "All",
			PositionTypeFilter:      "All",
		},
		Payoff: PayoffConfig{
			Notional: 300,
			StopPct:  0.09,
			PT1Pct:   0.13,
			PT2Pct:   0.23,
			PT3Pct:   0.38,
		},
		Data: DataConfig{
			SetupsPath:   "trading-setups.csv",
			PricesPath:   "ticker-prices.csv",
			SnapshotPath: "ticker-prices-today.csv",
			OutputDir:    "out",
		},
		Archive: ArchiveConfig{
			Enabled: false,
			Type:    "localfs",
			Path:    "archive",
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ShutdownTimeout: 10 * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

var monthNames = map[string]bool{
	"January": true, "February": true, "March": true, "April": true,
	"May": true, "June": true, "July": true, "August": true,
	"September": true, "October": true, "November": true, "December": true,
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Simulation.EntryWindowBusinessDays < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("entry_window_business_days must be at least 1, got %d", c.Simulation.EntryWindowBusinessDays))
	}
	if c.Simulation.PositionSize <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("position_size must be positive, got %f", c.Simulation.PositionSize))
	}
	if m := c.Simulation.SetupMonthFilter; m != "All" && !monthNames[m] {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("setup_month_filter must be \"All\" or a month name, got %q", m))
	}
	switch c.Simulation.PositionTypeFilter {
	case "All", "Long", "Short":
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("position_type_filter must be All, Long or Short, got %q", c.Simulation.PositionTypeFilter))
	}

	if c.Payoff.Notional <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("payoff notional must be positive, got %f", c.Payoff.Notional))
	}
	for _, pct := range []struct {
		name  string
		value float64
	}{
		{"stop_pct", c.Payoff.StopPct},
		{"pt1_pct", c.Payoff.PT1Pct},
		{"pt2_pct", c.Payoff.PT2Pct},
		{"pt3_pct", c.Payoff.PT3Pct},
	} {
		if pct.value <= 0 || pct.value >= 1 {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("payoff %s must be between 0 and 1 exclusive, got %f", pct.name, pct.value))
		}
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}

	if c.Archive.Enabled {
		switch c.Archive.Type {
		case "localfs":
			if c.Archive.Path == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("archive path required when type is localfs"))
			}
		case "s3":
			if c.Archive.S3.Bucket == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("s3 bucket required when archive type is s3"))
			}
		default:
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("archive type must be localfs or s3, got %q", c.Archive.Type))
		}
	}

	return nil
}
