package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"trade-planner/internal/book"
)

// ErrBookNotFound 表示指定市场没有订单簿快照。
var ErrBookNotFound = errors.New("store: order book not found")

// BookRepository 保存按市场划分的订单簿快照，读取时保持写入顺序。
type BookRepository struct {
	db *sql.DB
}

// NewBookRepository 创建订单簿仓库并初始化表结构。
func NewBookRepository(s *Store) (*BookRepository, error) {
	if s == nil {
		return nil, errors.New("store: store 不能为空")
	}
	r := &BookRepository{db: s.DB()}
	if err := r.initSchema(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *BookRepository) initSchema() error {
	stmt := `
CREATE TABLE IF NOT EXISTS book_orders (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	market TEXT NOT NULL,
	side TEXT NOT NULL,
	order_id TEXT NOT NULL,
	price TEXT NOT NULL,
	amount TEXT NOT NULL,
	owner TEXT NOT NULL,
	outcome TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_book_orders_market ON book_orders(market, side, seq);
`
	if _, err := r.db.Exec(stmt); err != nil {
		return fmt.Errorf("store: 初始化订单簿表失败: %w", err)
	}
	return nil
}

// SaveBook 以新快照整体替换市场的订单簿。
func (r *BookRepository) SaveBook(ctx context.Context, market string, ob book.OrderBook) (err error) {
	if market == "" {
		return errors.New("store: market 不能为空")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: 开启事务失败: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM book_orders WHERE market = ?`, market); err != nil {
		return fmt.Errorf("store: 清理旧订单簿失败: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO book_orders (market, side, order_id, price, amount, owner, outcome) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("store: 准备写入语句失败: %w", err)
	}
	defer stmt.Close()

	for _, side := range []book.Side{book.SideBuy, book.SideSell} {
		orders := ob.Buy
		if side == book.SideSell {
			orders = ob.Sell
		}
		for _, o := range orders {
			if _, err = stmt.ExecContext(ctx, market, string(side), o.ID, o.Price.String(), o.Amount.String(), o.Owner.Hex(), o.Outcome); err != nil {
				return fmt.Errorf("store: 写入挂单 %s 失败: %w", o.ID, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("store: 提交订单簿失败: %w", err)
	}
	return nil
}

// LoadBook 读取市场订单簿，挂单顺序与写入顺序一致。
func (r *BookRepository) LoadBook(ctx context.Context, market string) (book.OrderBook, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT side, order_id, price, amount, owner, outcome FROM book_orders WHERE market = ? ORDER BY seq`, market)
	if err != nil {
		return book.OrderBook{}, fmt.Errorf("store: 查询订单簿失败: %w", err)
	}
	defer rows.Close()

	var (
		ob    book.OrderBook
		found bool
	)
	for rows.Next() {
		var (
			side, id, price, amount, owner, outcome string
		)
		if scanErr := rows.Scan(&side, &id, &price, &amount, &owner, &outcome); scanErr != nil {
			return book.OrderBook{}, fmt.Errorf("store: 解析挂单失败: %w", scanErr)
		}

		o, parseErr := parseOrder(id, price, amount, owner, outcome)
		if parseErr != nil {
			return book.OrderBook{}, parseErr
		}
		found = true
		switch book.Side(side) {
		case book.SideBuy:
			ob.Buy = append(ob.Buy, o)
		case book.SideSell:
			ob.Sell = append(ob.Sell, o)
		default:
			return book.OrderBook{}, fmt.Errorf("store: 挂单 %s 方向无效: %q", id, side)
		}
	}
	if err := rows.Err(); err != nil {
		return book.OrderBook{}, fmt.Errorf("store: 读取订单簿失败: %w", err)
	}
	if !found {
		return book.OrderBook{}, fmt.Errorf("%w: %s", ErrBookNotFound, market)
	}

	return ob, nil
}

func parseOrder(id, price, amount, owner, outcome string) (book.Order, error) {
	p, err := decimal.NewFromString(price)
	if err != nil {
		return book.Order{}, fmt.Errorf("store: 挂单 %s 价格无效: %w", id, err)
	}
	a, err := decimal.NewFromString(amount)
	if err != nil {
		return book.Order{}, fmt.Errorf("store: 挂单 %s 数量无效: %w", id, err)
	}
	if !common.IsHexAddress(owner) {
		return book.Order{}, fmt.Errorf("store: 挂单 %s 地址无效: %q", id, owner)
	}
	return book.Order{
		ID:      id,
		Price:   p,
		Amount:  a,
		Owner:   common.HexToAddress(owner),
		Outcome: outcome,
	}, nil
}
