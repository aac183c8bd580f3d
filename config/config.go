// Package config loads and validates the bot configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zonkia/XTB-autoTrader/market"
)

// Config is the complete bot configuration.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Account AccountConfig `yaml:"account"`
	Risk    RiskConfig    `yaml:"risk"`
	Signal  SignalConfig  `yaml:"signal"`
	Engine  EngineConfig  `yaml:"engine"`
	Store   StoreConfig   `yaml:"store"`
	Journal JournalConfig `yaml:"journal"`
	Log     LogConfig     `yaml:"log"`
}

// APIConfig points at the broker endpoints. Credentials come from the
// environment, never from the file.
type APIConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	StreamPort int    `yaml:"stream_port"`
	Streaming  bool   `yaml:"streaming"`
}

func (a APIConfig) Addr() string       { return fmt.Sprintf("%s:%d", a.Host, a.Port) }
func (a APIConfig) StreamAddr() string { return fmt.Sprintf("%s:%d", a.Host, a.StreamPort) }

type AccountConfig struct {
	Currency string `yaml:"currency"`
}

// RiskConfig sets the equity fractions per candidate class and the minimum
// reward-to-risk a target must clear.
type RiskConfig struct {
	FullFraction  float64 `yaml:"full_fraction"`
	SemiFraction  float64 `yaml:"semi_fraction"`
	BaseFraction  float64 `yaml:"base_fraction"`
	MinRiskReward float64 `yaml:"min_risk_reward"`
}

type SignalConfig struct {
	AmbiguityPolicy string `yaml:"ambiguity_policy"` // drop or net
}

type EngineConfig struct {
	CycleErrorPause Duration `yaml:"cycle_error_pause"`
	WeekendSleep    Duration `yaml:"weekend_sleep"`
	SummaryEvery    int      `yaml:"summary_every"`
}

// Duration parses YAML scalars like "2s" or "6h".
type Duration time.Duration

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	dur, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("bad duration %q: %w", node.Value, err)
	}
	*d = Duration(dur)
	return nil
}

type StoreConfig struct {
	Dir string `yaml:"dir"`
}

type JournalConfig struct {
	Type       string `yaml:"type"` // csv, sqlite or none
	OrdersFile string `yaml:"orders_file,omitempty"`
	EquityFile string `yaml:"equity_file,omitempty"`
	DBPath     string `yaml:"db_path,omitempty"`
}

type LogConfig struct {
	Level   string `yaml:"level"`
	File    string `yaml:"file,omitempty"`
	Console bool   `yaml:"console"`
}

// LoadFromFile reads and validates a YAML configuration. Fields absent from
// the file keep their defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes the configuration as YAML.
func (c *Config) SaveToFile(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is usable.
func (c *Config) Validate() error {
	if c.API.Host == "" {
		return fmt.Errorf("api.host is required")
	}
	if c.API.Port <= 0 || c.API.Port > 65535 {
		return fmt.Errorf("api.port must be a valid port")
	}
	if c.API.StreamPort <= 0 || c.API.StreamPort > 65535 {
		return fmt.Errorf("api.stream_port must be a valid port")
	}
	if c.Account.Currency == "" {
		return fmt.Errorf("account.currency is required")
	}
	if c.Risk.FullFraction <= 0 || c.Risk.FullFraction > 1 {
		return fmt.Errorf("risk.full_fraction must be between 0 and 1")
	}
	if c.Risk.SemiFraction <= 0 || c.Risk.SemiFraction > 1 {
		return fmt.Errorf("risk.semi_fraction must be between 0 and 1")
	}
	if c.Risk.BaseFraction <= 0 || c.Risk.BaseFraction > 1 {
		return fmt.Errorf("risk.base_fraction must be between 0 and 1")
	}
	if c.Risk.MinRiskReward < 1 {
		return fmt.Errorf("risk.min_risk_reward must be at least 1")
	}
	if c.Signal.AmbiguityPolicy != "drop" && c.Signal.AmbiguityPolicy != "net" {
		return fmt.Errorf("signal.ambiguity_policy must be 'drop' or 'net'")
	}
	if c.Engine.SummaryEvery <= 0 {
		return fmt.Errorf("engine.summary_every must be positive")
	}
	if c.Store.Dir == "" {
		return fmt.Errorf("store.dir is required")
	}
	switch c.Journal.Type {
	case "csv":
		if c.Journal.OrdersFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal orders_file and equity_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	case "none":
	default:
		return fmt.Errorf("journal.type must be 'csv', 'sqlite' or 'none'")
	}
	// The account currency is the sizing numeraire, not a tradeable leg.
	for _, cur := range market.Currencies {
		if cur == c.Account.Currency {
			return fmt.Errorf("account.currency %s is a tracked trading currency", cur)
		}
	}
	return nil
}

// Default returns a configuration matching the demo environment.
func Default() *Config {
	return &Config{
		API: APIConfig{
			Host:       "xapi.xtb.com",
			Port:       5124,
			StreamPort: 5125,
		},
		Account: AccountConfig{
			Currency: "PLN",
		},
		Risk: RiskConfig{
			FullFraction:  0.03,
			SemiFraction:  0.02,
			BaseFraction:  0.01,
			MinRiskReward: 1.1,
		},
		Signal: SignalConfig{
			AmbiguityPolicy: "drop",
		},
		Engine: EngineConfig{
			CycleErrorPause: Duration(2 * time.Second),
			WeekendSleep:    Duration(6 * time.Hour),
			SummaryEvery:    8,
		},
		Store: StoreConfig{
			Dir: "./data",
		},
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./journal.db",
		},
		Log: LogConfig{
			Level:   "info",
			File:    "./autotrader.log",
			Console: true,
		},
	}
}
