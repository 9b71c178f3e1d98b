package planner

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"trade-planner/internal/book"
	"trade-planner/internal/gas"
)

// Request 描述交易者期望的仓位变化。
type Request struct {
	Side   book.Side
	Shares decimal.Decimal
	// LimitPrice 为 nil 表示市价单。
	LimitPrice     *decimal.Decimal
	TakerFee       decimal.Decimal
	MakerFee       decimal.Decimal
	Trader         common.Address
	PositionShares decimal.Decimal
	OutcomeID      string
	// GasPrice 单位 wei，nil 时使用 gas.Context 中的价格。
	GasPrice *big.Int
}

// Market 判断是否为市价单。
func (r Request) Market() bool {
	return r.LimitPrice == nil
}

// Options 控制规划器行为。
type Options struct {
	Precision int32
}

// Job 为批量规划中的单个任务。
type Job struct {
	Request Request
	Book    book.OrderBook
	Gas     gas.Context
}
