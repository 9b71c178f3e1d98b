// Package cost 计算每类交易动作的成交金额、手续费、gas 与均价。
package cost

import (
	"fmt"

	"github.com/shopspring/decimal"

	"trade-planner/internal/gas"
)

// DefaultPrecision 为均价除法保留的小数位。
const DefaultPrecision int32 = 18

// Model 绑定一次规划调用所用的 gas 上下文。
type Model struct {
	gas       gas.Context
	precision int32
}

// NewModel 创建定价模型，precision 非正时使用 DefaultPrecision。
func NewModel(gc gas.Context, precision int32) Model {
	if precision <= 0 {
		precision = DefaultPrecision
	}
	return Model{gas: gc, precision: precision}
}

// Bid 为剩余数量挂买单。
func (m Model) Bid(shares, limitPrice, makerFee decimal.Decimal) (Action, error) {
	return m.maker(KindBid, shares, limitPrice, makerFee, gas.TemplateBuy)
}

// Ask 为平仓数量挂卖单。
func (m Model) Ask(shares, limitPrice, makerFee decimal.Decimal) (Action, error) {
	return m.maker(KindAsk, shares, limitPrice, makerFee, gas.TemplateSell)
}

// RiskyShortSell 在无买盘时先买入完整份额再挂卖单来建立空头。
func (m Model) RiskyShortSell(shares, limitPrice, makerFee decimal.Decimal) (Action, error) {
	return m.maker(KindShortSellRisky, shares, limitPrice, makerFee, gas.TemplateBuyCompleteSets, gas.TemplateSell)
}

// Buy 为吃卖盘的聚合成交，notional 为 Σ价格×数量。
func (m Model) Buy(notional, shares, takerFee decimal.Decimal) (Action, error) {
	return m.taker(KindBuy, notional, shares, takerFee, gas.TemplateTrade)
}

// Sell 为平多头吃买盘的聚合成交。
func (m Model) Sell(notional, shares, takerFee decimal.Decimal) (Action, error) {
	return m.taker(KindSell, notional, shares, takerFee, gas.TemplateTrade)
}

// ShortSell 为无持仓时吃买盘开空的聚合成交。
func (m Model) ShortSell(notional, shares, takerFee decimal.Decimal) (Action, error) {
	return m.taker(KindShortSell, notional, shares, takerFee, gas.TemplateShortSell)
}

func (m Model) maker(kind Kind, shares, limitPrice, fee decimal.Decimal, templates ...string) (Action, error) {
	gasEth, err := m.gas.EstimateEth(templates...)
	if err != nil {
		return Action{}, fmt.Errorf("cost: 估算 %s gas 失败: %w", kind, err)
	}
	notional := shares.Mul(limitPrice)
	return Action{
		Kind:     kind,
		Shares:   shares,
		GasEth:   gasEth,
		FeeEth:   notional.Mul(fee),
		CostEth:  notional,
		AvgPrice: limitPrice,
	}, nil
}

func (m Model) taker(kind Kind, notional, shares, fee decimal.Decimal, templates ...string) (Action, error) {
	if !shares.IsPositive() {
		return Action{}, &DegenerateFillError{Kind: kind, Shares: shares}
	}
	gasEth, err := m.gas.EstimateEth(templates...)
	if err != nil {
		return Action{}, fmt.Errorf("cost: 估算 %s gas 失败: %w", kind, err)
	}
	return Action{
		Kind:     kind,
		Shares:   shares,
		GasEth:   gasEth,
		FeeEth:   notional.Mul(fee),
		CostEth:  notional,
		AvgPrice: notional.DivRound(shares, m.precision),
	}, nil
}
