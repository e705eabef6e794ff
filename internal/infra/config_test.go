package infra

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

const sampleConfig = `
app:
  name: trading_go
  version: "0.1.0"

instruments:
  - symbol: AAPL
    capacity: 200
    initial_price: 100
  - symbol: BTC
    capacity: 150
    initial_price: 30000

engine:
  cycle_interval_ms: 2000
  expiry_sec: 30
  mu: 0.05
  sigma: 1.0
  dt: 1.0
  commission_rate: 0.005

server:
  addr: ":5000"

audit:
  interval_sec: 2
  queue_size: 128
  db_path: data/test.db

bots:
  count: 5
  interval_ms: 1000

logging:
  level: info
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if len(cfg.Instruments) != 2 {
		t.Fatalf("expected 2 instruments, got %d", len(cfg.Instruments))
	}
	if cfg.Instruments[1].Symbol != "BTC" || cfg.Instruments[1].Capacity != 150 {
		t.Errorf("unexpected BTC config: %+v", cfg.Instruments[1])
	}
	if !cfg.Instruments[0].InitialPrice.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected AAPL price 100, got %s", cfg.Instruments[0].InitialPrice)
	}
	if !cfg.Engine.CommissionRate.Equal(decimal.NewFromFloat(0.005)) {
		t.Errorf("expected commission 0.005, got %s", cfg.Engine.CommissionRate)
	}
	if cfg.CycleInterval() != 2*time.Second {
		t.Errorf("expected cycle interval 2s, got %s", cfg.CycleInterval())
	}
	if cfg.ExpiryThreshold() != 30*time.Second {
		t.Errorf("expected expiry 30s, got %s", cfg.ExpiryThreshold())
	}
	if cfg.Bots.Count != 5 {
		t.Errorf("expected 5 bots, got %d", cfg.Bots.Count)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	minimal := `
instruments:
  - symbol: ETH
    capacity: 150
    initial_price: 2000
`
	cfg, err := LoadConfig(writeConfig(t, minimal))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Engine.ExpirySec != 30 {
		t.Errorf("expected default expiry 30s, got %d", cfg.Engine.ExpirySec)
	}
	if cfg.Engine.Mu != 0.05 || cfg.Engine.Sigma != 1.0 || cfg.Engine.Dt != 1.0 {
		t.Errorf("unexpected default process params: mu=%v sigma=%v dt=%v",
			cfg.Engine.Mu, cfg.Engine.Sigma, cfg.Engine.Dt)
	}
	if !cfg.Engine.CommissionRate.Equal(decimal.NewFromFloat(0.005)) {
		t.Errorf("expected default commission 0.005, got %s", cfg.Engine.CommissionRate)
	}
	if cfg.Server.Addr != ":5000" {
		t.Errorf("expected default addr :5000, got %s", cfg.Server.Addr)
	}
}

func TestValidateRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"no instruments", `
engine:
  expiry_sec: 30
`},
		{"duplicate symbol", `
instruments:
  - symbol: BTC
    capacity: 10
    initial_price: 1
  - symbol: BTC
    capacity: 20
    initial_price: 2
`},
		{"non-positive capacity", `
instruments:
  - symbol: BTC
    capacity: 0
    initial_price: 1
`},
		{"commission out of range", `
instruments:
  - symbol: BTC
    capacity: 10
    initial_price: 1
engine:
  commission_rate: 1.5
`},
		{"negative audit interval", `
instruments:
  - symbol: BTC
    capacity: 10
    initial_price: 1
audit:
  interval_sec: -1
`},
		{"negative bot interval", `
instruments:
  - symbol: BTC
    capacity: 10
    initial_price: 1
bots:
  interval_ms: -100
`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := LoadConfig(writeConfig(t, tc.yaml)); err == nil {
				t.Errorf("expected validation error for %s", tc.name)
			}
		})
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("TRADING_SERVER_ADDR", ":9999")

	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Server.Addr != ":9999" {
		t.Errorf("expected env override :9999, got %s", cfg.Server.Addr)
	}
}
