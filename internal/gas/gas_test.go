package gas

import (
	"errors"
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
)

func TestTable_TxCostFallsBackToDefault(t *testing.T) {
	table := NewTable(0, map[string]uint64{TemplateTrade: 500000})

	got, err := table.TxCost(TemplateTrade)
	if err != nil {
		t.Fatalf("TxCost returned error: %v", err)
	}
	if got != 500000 {
		t.Errorf("unexpected trade gas: %d", got)
	}

	got, err = table.TxCost(TemplateBuy)
	if err != nil {
		t.Fatalf("TxCost returned error: %v", err)
	}
	if got != DefaultGas {
		t.Errorf("expected default gas %d, got %d", DefaultGas, got)
	}
}

func TestTable_UnknownTemplate(t *testing.T) {
	table := NewTable(100, nil)
	if _, err := table.TxCost("Trade.cancel"); !errors.Is(err, ErrUnknownTemplate) {
		t.Fatalf("expected ErrUnknownTemplate, got %v", err)
	}
}

func TestContext_EstimateEth(t *testing.T) {
	ctx := Context{
		Price: big.NewInt(20_000_000_000), // 20 gwei
		Oracle: NewTable(0, map[string]uint64{
			TemplateSell:            100000,
			TemplateBuyCompleteSets: 150000,
		}),
	}

	got, err := ctx.EstimateEth(TemplateSell)
	if err != nil {
		t.Fatalf("EstimateEth returned error: %v", err)
	}
	if want := decimal.RequireFromString("0.002"); !got.Equal(want) {
		t.Errorf("unexpected sell gas eth: got %s want %s", got, want)
	}

	got, err = ctx.EstimateEth(TemplateBuyCompleteSets, TemplateSell)
	if err != nil {
		t.Fatalf("EstimateEth returned error: %v", err)
	}
	if want := decimal.RequireFromString("0.005"); !got.Equal(want) {
		t.Errorf("unexpected summed gas eth: got %s want %s", got, want)
	}
}

func TestContext_EstimateEthKeepsWeiPrecision(t *testing.T) {
	ctx := Context{Price: big.NewInt(1), Oracle: NewTable(3, nil)}

	got, err := ctx.EstimateEth(TemplateTrade)
	if err != nil {
		t.Fatalf("EstimateEth returned error: %v", err)
	}
	if want := decimal.RequireFromString("0.000000000000000003"); !got.Equal(want) {
		t.Errorf("unexpected gas eth: got %s want %s", got, want)
	}
}

func TestContext_Errors(t *testing.T) {
	if _, err := (Context{Oracle: NewTable(0, nil)}).EstimateEth(TemplateTrade); !errors.Is(err, ErrNoGasPrice) {
		t.Fatalf("expected ErrNoGasPrice, got %v", err)
	}
	if _, err := (Context{Price: big.NewInt(-1), Oracle: NewTable(0, nil)}).EstimateEth(TemplateTrade); err == nil {
		t.Fatalf("expected error for negative gas price")
	}
	if _, err := (Context{Price: big.NewInt(1)}).EstimateEth(TemplateTrade); err == nil {
		t.Fatalf("expected error for missing oracle")
	}
}

func TestContext_WithPrice(t *testing.T) {
	base := Context{Price: big.NewInt(1), Oracle: NewTable(0, nil)}
	override := big.NewInt(7)

	got := base.WithPrice(override)
	if got.Price.Cmp(override) != 0 {
		t.Fatalf("expected overridden price, got %s", got.Price)
	}
	override.SetInt64(9)
	if got.Price.Int64() != 7 {
		t.Fatalf("WithPrice must copy the price, got %s", got.Price)
	}
	if base.Price.Int64() != 1 {
		t.Fatalf("base context mutated: %s", base.Price)
	}
	if same := base.WithPrice(nil); same.Price != base.Price {
		t.Fatalf("nil override should keep the base price")
	}
}
