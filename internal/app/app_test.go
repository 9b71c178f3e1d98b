package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"trade-planner/internal/book"
	"trade-planner/internal/config"
	"trade-planner/internal/cost"
	"trade-planner/internal/monitor"
	"trade-planner/internal/planner"
	"trade-planner/internal/store"
)

const bookJSON = `{
  "buy": [
    {"id": "b1", "price": "0.55", "amount": "3", "owner": "0xbb00000000000000000000000000000000000000", "outcome": "1"}
  ],
  "sell": [
    {"id": "a1", "price": "0.40", "amount": "5", "owner": "0xbb00000000000000000000000000000000000000", "outcome": "1"},
    {"id": "a2", "price": "0.60", "amount": "5", "owner": "0xbb00000000000000000000000000000000000000", "outcome": "1"}
  ]
}`

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Environment: "test"},
		Planner: config.PlannerConfig{
			Precision:   18,
			GasPriceWei: 1_000_000_000,
			Gas:         config.GasConfig{Trade: 1_000_000_000},
		},
		Fees: config.FeesConfig{
			Taker: decimal.RequireFromString("0.02"),
			Maker: decimal.RequireFromString("0.01"),
		},
		Database: config.DatabaseConfig{InMemory: true, MaxOpenConns: 1},
	}
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	cfg := testConfig()
	st, err := store.NewSQLite(cfg.Database)
	if err != nil {
		t.Fatalf("NewSQLite returned error: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	a, err := New(cfg, nil, st)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := a.ImportBook(context.Background(), "m1", strings.NewReader(bookJSON)); err != nil {
		t.Fatalf("ImportBook returned error: %v", err)
	}
	return a
}

func tradeRequest(side book.Side, shares string) planner.Request {
	cfg := testConfig()
	return planner.Request{
		Side:      side,
		Shares:    decimal.RequireFromString(shares),
		TakerFee:  cfg.Fees.Taker,
		MakerFee:  cfg.Fees.Maker,
		Trader:    common.HexToAddress("0xAA00000000000000000000000000000000000000"),
		OutcomeID: "1",
	}
}

func TestApp_PlanUsesStoredBookAndJournals(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	actions, err := a.Plan(ctx, Request{Market: "m1", Trade: tradeRequest(book.SideBuy, "8")})
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}
	if len(actions) != 1 || actions[0].Kind != cost.KindBuy || !actions[0].CostEth.Equal(decimal.RequireFromString("3.8")) {
		t.Fatalf("unexpected actions: %+v", actions)
	}
	if !actions[0].GasEth.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("expected gas from config table, got %s", actions[0].GasEth)
	}

	events, err := a.Journal().ListEvents(ctx, monitor.EventPlan, 10)
	if err != nil {
		t.Fatalf("ListEvents returned error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected one plan event, got %d", len(events))
	}
}

func TestApp_PlanValidationErrorIsJournaled(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	_, err := a.Plan(ctx, Request{Market: "m1", Trade: tradeRequest(book.SideBuy, "0")})
	if !errors.Is(err, planner.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	events, err := a.Journal().ListEvents(ctx, monitor.EventError, 10)
	if err != nil {
		t.Fatalf("ListEvents returned error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected one error event, got %d", len(events))
	}
}

func TestApp_QuotePlansBothSides(t *testing.T) {
	a := newTestApp(t)

	req := tradeRequest(book.SideBuy, "4")
	limit := decimal.RequireFromString("0.50")
	req.LimitPrice = &limit
	req.PositionShares = decimal.RequireFromString("4")

	quote, err := a.Quote(context.Background(), Request{Market: "m1", Trade: req})
	if err != nil {
		t.Fatalf("Quote returned error: %v", err)
	}
	if len(quote.Buy) != 1 || quote.Buy[0].Kind != cost.KindBuy || !quote.Buy[0].Shares.Equal(decimal.NewFromInt(4)) {
		t.Fatalf("unexpected buy side: %+v", quote.Buy)
	}
	if len(quote.Sell) != 2 || quote.Sell[0].Kind != cost.KindSell || quote.Sell[1].Kind != cost.KindAsk {
		t.Fatalf("unexpected sell side: %+v", quote.Sell)
	}
}

func TestApp_PlanWithoutSnapshotUsesEmptyBook(t *testing.T) {
	a := newTestApp(t)

	actions, err := a.Plan(context.Background(), Request{Market: "unknown", Trade: tradeRequest(book.SideBuy, "2")})
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}
	if len(actions) != 0 {
		t.Fatalf("market buy on empty book should be empty, got %+v", actions)
	}
}

func TestGasContext(t *testing.T) {
	gc := GasContext(testConfig().Planner)
	got, err := gc.EstimateEth("Trade.trade")
	if err != nil {
		t.Fatalf("EstimateEth returned error: %v", err)
	}
	if !got.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("unexpected gas eth %s", got)
	}
}

func TestApp_ImportBookRejectsMissingPrice(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	const noPrice = `{"sell": [{"id": "x", "amount": "5", "owner": "0xbb00000000000000000000000000000000000000", "outcome": "1"}]}`
	err := a.ImportBook(ctx, "m1", strings.NewReader(noPrice))
	if !errors.Is(err, planner.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	actions, err := a.Plan(ctx, Request{Market: "m1", Trade: tradeRequest(book.SideBuy, "8")})
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}
	if len(actions) != 1 || !actions[0].CostEth.Equal(decimal.RequireFromString("3.8")) {
		t.Fatalf("rejected import must keep previous snapshot, got %+v", actions)
	}
}
