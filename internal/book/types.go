package book

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// Side 表示交易方向。
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Valid 判断方向是否合法。
func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

// Order 为订单簿中的单笔挂单，价格位于 [0,1]。
type Order struct {
	ID      string          `json:"id"`
	Price   decimal.Decimal `json:"price"`
	Amount  decimal.Decimal `json:"amount"`
	Owner   common.Address  `json:"owner"`
	Outcome string          `json:"outcome"`
}

// OrderBook 为某一市场的挂单快照，Buy 为买盘，Sell 为卖盘，顺序即到达顺序。
type OrderBook struct {
	Buy  []Order `json:"buy"`
	Sell []Order `json:"sell"`
}

// Opposite 返回吃单方向需要撮合的盘口：买入吃卖盘，卖出吃买盘。
func (b OrderBook) Opposite(side Side) []Order {
	if side == SideBuy {
		return b.Sell
	}
	return b.Buy
}
