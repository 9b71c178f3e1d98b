package cost

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Kind 表示交易动作类型。
type Kind string

const (
	KindBid            Kind = "BID"
	KindAsk            Kind = "ASK"
	KindBuy            Kind = "BUY"
	KindSell           Kind = "SELL"
	KindShortSell      Kind = "SHORT_SELL"
	KindShortSellRisky Kind = "SHORT_SELL_RISKY"
)

// Taker 判断该动作是否为吃单（均价由成交金额推导）。
func (k Kind) Taker() bool {
	switch k {
	case KindBuy, KindSell, KindShortSell:
		return true
	default:
		return false
	}
}

// Action 描述一次具体交易动作及其预估费用，金额均以 ether 计。
type Action struct {
	Kind     Kind            `json:"action"`
	Shares   decimal.Decimal `json:"shares"`
	GasEth   decimal.Decimal `json:"gasEth"`
	FeeEth   decimal.Decimal `json:"feeEth"`
	CostEth  decimal.Decimal `json:"costEth"`
	AvgPrice decimal.Decimal `json:"avgPrice"`
}

// ErrDegenerateFill 表示成交数量为零却需要计算均价。
var ErrDegenerateFill = errors.New("cost: degenerate fill")

// DegenerateFillError 记录出现零成交的动作类型。
type DegenerateFillError struct {
	Kind   Kind
	Shares decimal.Decimal
}

func (e *DegenerateFillError) Error() string {
	return fmt.Sprintf("cost: %s 成交数量 %s 无法计算均价", e.Kind, e.Shares)
}

func (e *DegenerateFillError) Unwrap() error {
	return ErrDegenerateFill
}
