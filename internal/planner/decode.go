package planner

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"trade-planner/internal/book"
)

// wireOrder 为订单簿 JSON 中的挂单，缺失字段保持为空以便报告。
type wireOrder struct {
	ID      string              `json:"id"`
	Price   decimal.NullDecimal `json:"price"`
	Amount  decimal.NullDecimal `json:"amount"`
	Owner   *common.Address     `json:"owner"`
	Outcome string              `json:"outcome"`
}

type wireBook struct {
	Buy  []wireOrder `json:"buy"`
	Sell []wireOrder `json:"sell"`
}

// DecodeBook 从 JSON 读取订单簿。缺少价格、数量或挂单人的挂单返回 ValidationError。
func DecodeBook(r io.Reader) (book.OrderBook, error) {
	var wb wireBook
	if err := json.NewDecoder(r).Decode(&wb); err != nil {
		return book.OrderBook{}, fmt.Errorf("planner: 解析订单簿失败: %w", err)
	}

	buy, buyErr := fromWire("book.buy", wb.Buy)
	sell, sellErr := fromWire("book.sell", wb.Sell)
	if err := multierr.Combine(buyErr, sellErr); err != nil {
		return book.OrderBook{}, fmt.Errorf("planner: 订单簿校验失败: %w", err)
	}

	ob := book.OrderBook{Buy: buy, Sell: sell}
	if err := multierr.Combine(validateOrders("book.buy", ob.Buy), validateOrders("book.sell", ob.Sell)); err != nil {
		return book.OrderBook{}, fmt.Errorf("planner: 订单簿校验失败: %w", err)
	}
	return ob, nil
}

func fromWire(prefix string, in []wireOrder) ([]book.Order, error) {
	var (
		err    error
		orders = make([]book.Order, 0, len(in))
	)
	for i, w := range in {
		if !w.Price.Valid {
			err = multierr.Append(err, invalid(fmt.Sprintf("%s[%d].price", prefix, i), "缺失"))
		}
		if !w.Amount.Valid {
			err = multierr.Append(err, invalid(fmt.Sprintf("%s[%d].amount", prefix, i), "缺失"))
		}
		if w.Owner == nil {
			err = multierr.Append(err, invalid(fmt.Sprintf("%s[%d].owner", prefix, i), "缺失"))
			continue
		}
		orders = append(orders, book.Order{
			ID:      w.ID,
			Price:   w.Price.Decimal,
			Amount:  w.Amount.Decimal,
			Owner:   *w.Owner,
			Outcome: w.Outcome,
		})
	}
	return orders, err
}
