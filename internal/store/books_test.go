package store

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"trade-planner/internal/book"
	"trade-planner/internal/config"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewSQLite(config.DatabaseConfig{InMemory: true, MaxOpenConns: 1})
	if err != nil {
		t.Fatalf("NewSQLite returned error: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testOrder(id, price, amount string) book.Order {
	return book.Order{
		ID:      id,
		Price:   decimal.RequireFromString(price),
		Amount:  decimal.RequireFromString(amount),
		Owner:   common.HexToAddress("0xBB00000000000000000000000000000000000000"),
		Outcome: "1",
	}
}

func TestBookRepository_SaveAndLoadKeepsOrder(t *testing.T) {
	repo, err := NewBookRepository(newTestStore(t))
	if err != nil {
		t.Fatalf("NewBookRepository returned error: %v", err)
	}
	ctx := context.Background()

	ob := book.OrderBook{
		Buy:  []book.Order{testOrder("b2", "0.30", "1"), testOrder("b1", "0.55", "3")},
		Sell: []book.Order{testOrder("a1", "0.60", "5"), testOrder("a2", "0.40", "2.5")},
	}
	if err := repo.SaveBook(ctx, "m1", ob); err != nil {
		t.Fatalf("SaveBook returned error: %v", err)
	}

	got, err := repo.LoadBook(ctx, "m1")
	if err != nil {
		t.Fatalf("LoadBook returned error: %v", err)
	}
	if len(got.Buy) != 2 || got.Buy[0].ID != "b2" || got.Buy[1].ID != "b1" {
		t.Fatalf("unexpected bids: %+v", got.Buy)
	}
	if len(got.Sell) != 2 || got.Sell[0].ID != "a1" || !got.Sell[1].Amount.Equal(decimal.RequireFromString("2.5")) {
		t.Fatalf("unexpected asks: %+v", got.Sell)
	}
	if got.Buy[1].Owner != ob.Buy[1].Owner {
		t.Fatalf("owner not preserved: %s", got.Buy[1].Owner.Hex())
	}
}

func TestBookRepository_SaveReplacesSnapshot(t *testing.T) {
	repo, err := NewBookRepository(newTestStore(t))
	if err != nil {
		t.Fatalf("NewBookRepository returned error: %v", err)
	}
	ctx := context.Background()

	if err := repo.SaveBook(ctx, "m1", book.OrderBook{Sell: []book.Order{testOrder("old", "0.5", "1")}}); err != nil {
		t.Fatalf("SaveBook returned error: %v", err)
	}
	if err := repo.SaveBook(ctx, "m1", book.OrderBook{Sell: []book.Order{testOrder("new", "0.5", "1")}}); err != nil {
		t.Fatalf("SaveBook returned error: %v", err)
	}

	got, err := repo.LoadBook(ctx, "m1")
	if err != nil {
		t.Fatalf("LoadBook returned error: %v", err)
	}
	if len(got.Sell) != 1 || got.Sell[0].ID != "new" {
		t.Fatalf("expected replaced snapshot, got %+v", got.Sell)
	}
}

func TestBookRepository_NotFound(t *testing.T) {
	repo, err := NewBookRepository(newTestStore(t))
	if err != nil {
		t.Fatalf("NewBookRepository returned error: %v", err)
	}
	if _, err := repo.LoadBook(context.Background(), "missing"); !errors.Is(err, ErrBookNotFound) {
		t.Fatalf("expected ErrBookNotFound, got %v", err)
	}
	if err := repo.SaveBook(context.Background(), "", book.OrderBook{}); err == nil {
		t.Fatalf("expected error for empty market")
	}
}
