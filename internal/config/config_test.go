package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_DefaultsAndDecodeHooks(t *testing.T) {
	path := writeConfig(t, `
planner:
  gas:
    trade: "0x7a120"
    sell: 650000
fees:
  maker: "0.005"
database:
  in_memory: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Planner.Precision != 18 {
		t.Errorf("unexpected precision %d", cfg.Planner.Precision)
	}
	if cfg.Planner.Gas.Default != 0x2fd618 {
		t.Errorf("unexpected default gas %d", cfg.Planner.Gas.Default)
	}
	if cfg.Planner.Gas.Trade != 500000 {
		t.Errorf("hex gas not decoded, got %d", cfg.Planner.Gas.Trade)
	}
	if cfg.Planner.Gas.Sell != 650000 {
		t.Errorf("unexpected sell gas %d", cfg.Planner.Gas.Sell)
	}
	if !cfg.Fees.Taker.Equal(decimal.RequireFromString("0.02")) {
		t.Errorf("unexpected taker fee %s", cfg.Fees.Taker)
	}
	if !cfg.Fees.Maker.Equal(decimal.RequireFromString("0.005")) {
		t.Errorf("unexpected maker fee %s", cfg.Fees.Maker)
	}
	if cfg.Database.ConnMaxLifetime != time.Hour {
		t.Errorf("unexpected conn lifetime %s", cfg.Database.ConnMaxLifetime)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, "app:\n  environment: test\n")
	t.Setenv("PLANNER_FEES_TAKER", "0.03")
	t.Setenv("PLANNER_PLANNER_GAS_PRICE_WEI", "1000000000")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !cfg.Fees.Taker.Equal(decimal.RequireFromString("0.03")) {
		t.Errorf("env override not applied, got %s", cfg.Fees.Taker)
	}
	if cfg.Planner.GasPriceWei != 1_000_000_000 {
		t.Errorf("env override not applied, got %d", cfg.Planner.GasPriceWei)
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	path := writeConfig(t, `
planner:
  precision: 0
fees:
  taker: "1.5"
database:
  path: ""
  max_open_conns: 0
`)

	_, err := Load(path)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{"planner.precision", "fees.taker", "database.path", "database.max_open_conns"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in error, got %v", want, err)
		}
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}
