package infra

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// InstrumentConfig declares one tradable symbol: its liquidity capacity
// and the price the stochastic process starts from.
type InstrumentConfig struct {
	Symbol       string          `yaml:"symbol"`
	Capacity     int64           `yaml:"capacity"`
	InitialPrice decimal.Decimal `yaml:"initial_price"`
}

// Config holds every setting of the venue. It is loaded once at startup
// and passed by reference to the components that need it; nothing reads
// configuration after bootstrap.
type Config struct {
	App struct {
		Name      string `yaml:"name"`
		Version   string `yaml:"version"`
		RunForSec int    `yaml:"run_for_sec"` // 0 = run until interrupted
	} `yaml:"app"`

	Instruments []InstrumentConfig `yaml:"instruments"`

	Engine struct {
		CycleIntervalMS int             `yaml:"cycle_interval_ms"`
		ExpirySec       int             `yaml:"expiry_sec"`
		Mu              float64         `yaml:"mu"`
		Sigma           float64         `yaml:"sigma"`
		Dt              float64         `yaml:"dt"`
		CommissionRate  decimal.Decimal `yaml:"commission_rate"` // fraction, e.g. 0.005
	} `yaml:"engine"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Audit struct {
		IntervalSec int    `yaml:"interval_sec"`
		QueueSize   int    `yaml:"queue_size"`
		DBPath      string `yaml:"db_path"`
	} `yaml:"audit"`

	Bots struct {
		Count      int `yaml:"count"`
		IntervalMS int `yaml:"interval_ms"`
	} `yaml:"bots"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfig reads and parses the configuration file, applies defaults and
// environment overrides, and validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	overrideWithEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults fills unset fields with the venue's standard parameters.
func (c *Config) applyDefaults() {
	if c.Engine.CycleIntervalMS == 0 {
		c.Engine.CycleIntervalMS = 2000
	}
	if c.Engine.ExpirySec == 0 {
		c.Engine.ExpirySec = 30
	}
	if c.Engine.Mu == 0 {
		c.Engine.Mu = 0.05
	}
	if c.Engine.Sigma == 0 {
		c.Engine.Sigma = 1.0
	}
	if c.Engine.Dt == 0 {
		c.Engine.Dt = 1.0
	}
	if c.Engine.CommissionRate.IsZero() {
		c.Engine.CommissionRate = decimal.NewFromFloat(0.005)
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":5000"
	}
	if c.Audit.IntervalSec == 0 {
		c.Audit.IntervalSec = 2
	}
	if c.Audit.QueueSize == 0 {
		c.Audit.QueueSize = 256
	}
	if c.Audit.DBPath == "" {
		c.Audit.DBPath = "data/trading.db"
	}
	if c.Bots.IntervalMS == 0 {
		c.Bots.IntervalMS = 1000
	}
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if len(c.Instruments) == 0 {
		return fmt.Errorf("at least one instrument is required")
	}
	seen := make(map[string]bool, len(c.Instruments))
	for _, inst := range c.Instruments {
		if inst.Symbol == "" {
			return fmt.Errorf("instrument symbol must not be empty")
		}
		if seen[inst.Symbol] {
			return fmt.Errorf("duplicate instrument symbol: %s", inst.Symbol)
		}
		seen[inst.Symbol] = true
		if inst.Capacity <= 0 {
			return fmt.Errorf("instrument %s: capacity must be positive", inst.Symbol)
		}
	}

	if c.Engine.CycleIntervalMS <= 0 {
		return fmt.Errorf("cycle interval must be positive")
	}
	if c.Engine.ExpirySec <= 0 {
		return fmt.Errorf("order expiry must be positive")
	}
	if c.Engine.Dt <= 0 {
		return fmt.Errorf("price step dt must be positive")
	}
	if c.Engine.Sigma < 0 {
		return fmt.Errorf("sigma must not be negative")
	}
	if c.Engine.CommissionRate.IsNegative() || c.Engine.CommissionRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("commission rate must be in [0, 1)")
	}
	if c.Audit.IntervalSec <= 0 {
		return fmt.Errorf("audit interval must be positive")
	}
	if c.Bots.Count < 0 {
		return fmt.Errorf("bot count must not be negative")
	}
	if c.Bots.IntervalMS <= 0 {
		return fmt.Errorf("bot interval must be positive")
	}

	return nil
}

// CycleInterval returns the matching cycle period.
func (c *Config) CycleInterval() time.Duration {
	return time.Duration(c.Engine.CycleIntervalMS) * time.Millisecond
}

// ExpiryThreshold returns the order expiry threshold.
func (c *Config) ExpiryThreshold() time.Duration {
	return time.Duration(c.Engine.ExpirySec) * time.Second
}

// AuditInterval returns the audit snapshot period.
func (c *Config) AuditInterval() time.Duration {
	return time.Duration(c.Audit.IntervalSec) * time.Second
}

// BotInterval returns the delay between bot order submissions.
func (c *Config) BotInterval() time.Duration {
	return time.Duration(c.Bots.IntervalMS) * time.Millisecond
}

// overrideWithEnv applies environment overrides for deploy-time settings.
func overrideWithEnv(cfg *Config) {
	if addr := os.Getenv("TRADING_SERVER_ADDR"); addr != "" {
		cfg.Server.Addr = addr
	}
	if path := os.Getenv("TRADING_DB_PATH"); path != "" {
		cfg.Audit.DBPath = path
	}
	if level := os.Getenv("TRADING_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
}
