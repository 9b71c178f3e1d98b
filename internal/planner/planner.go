// Package planner 将交易请求转化为按顺序执行的交易动作序列。
//
// 规划基于调用方提供的订单簿快照进行价格优先的贪心撮合模拟，不执行交易，
// 不访问网络，也不在调用之间保存状态。
package planner

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"trade-planner/internal/book"
	"trade-planner/internal/cost"
	"trade-planner/internal/gas"
)

// Planner 计算交易动作。零状态，可并发使用。
type Planner struct {
	opts   Options
	logger *zap.Logger
}

// New 创建规划器。
func New(opts Options, logger *zap.Logger) *Planner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Precision <= 0 {
		opts.Precision = cost.DefaultPrecision
	}
	return &Planner{
		opts:   opts,
		logger: logger,
	}
}

// Plan 返回实现请求所需的交易动作。吃单动作总在挂单动作之前。
//
// 限价单的动作数量之和等于请求数量，未成交部分挂单；市价单未成交部分直接丢弃。
// 校验失败时不返回任何动作。
func (p *Planner) Plan(req Request, ob book.OrderBook, gc gas.Context) ([]cost.Action, error) {
	if err := validate(req, ob, gc); err != nil {
		return nil, err
	}

	p.logger.Debug("开始规划交易动作",
		zap.String("side", string(req.Side)),
		zap.Stringer("shares", req.Shares),
		zap.String("limit_price", limitLabel(req)),
		zap.Stringer("position_shares", req.PositionShares),
		zap.String("outcome", req.OutcomeID),
		zap.String("trader", req.Trader.Hex()),
		zap.Int("bids", len(ob.Buy)),
		zap.Int("asks", len(ob.Sell)),
	)

	model := cost.NewModel(gc.WithPrice(req.GasPrice), p.opts.Precision)
	matching := book.Select(ob.Opposite(req.Side), req.Side, req.LimitPrice, req.OutcomeID, req.Trader)

	var (
		actions []cost.Action
		err     error
	)
	if req.Side == book.SideBuy {
		actions, err = p.planBuy(req, matching, model)
	} else {
		actions, err = p.planSell(req, matching, model)
	}
	if err != nil {
		return nil, err
	}

	p.logger.Debug("交易动作规划完成",
		zap.String("side", string(req.Side)),
		zap.Int("matching_orders", len(matching)),
		zap.Int("actions", len(actions)),
	)
	return actions, nil
}

func (p *Planner) planBuy(req Request, asks []book.Order, model cost.Model) ([]cost.Action, error) {
	actions := make([]cost.Action, 0, 2)

	if len(asks) == 0 {
		if req.Market() {
			return actions, nil
		}
		bid, err := model.Bid(req.Shares, *req.LimitPrice, req.MakerFee)
		if err != nil {
			return nil, err
		}
		return append(actions, bid), nil
	}

	fill := match(asks, req.Shares)
	buy, err := model.Buy(fill.notional, fill.shares, req.TakerFee)
	if err != nil {
		return nil, err
	}
	actions = append(actions, buy)

	remaining := req.Shares.Sub(fill.shares)
	if remaining.IsPositive() && !req.Market() {
		bid, err := model.Bid(remaining, *req.LimitPrice, req.MakerFee)
		if err != nil {
			return nil, err
		}
		actions = append(actions, bid)
	}
	return actions, nil
}

// planSell 先用持仓吃买盘平仓，买盘不足时挂卖单，剩余数量再进入开空流程。
// 每一轮都基于上一轮已消耗后的买盘继续。
func (p *Planner) planSell(req Request, bids []book.Order, model cost.Model) ([]cost.Action, error) {
	var (
		actions   = make([]cost.Action, 0, 3)
		working   = bids
		remaining = req.Shares
		position  = req.PositionShares
		// 每个买盘最多一轮平仓，另加挂卖单与开空各一轮。
		maxPasses = len(bids) + 2
	)

	for pass := 0; pass < maxPasses; pass++ {
		if !position.IsPositive() {
			return p.planShort(actions, req, remaining, working, model)
		}

		if len(working) > 0 {
			fill := match(working, decimal.Min(remaining, position))
			sell, err := model.Sell(fill.notional, fill.shares, req.TakerFee)
			if err != nil {
				return nil, err
			}
			actions = append(actions, sell)
			working = fill.rest
			remaining = remaining.Sub(fill.shares)
			position = position.Sub(fill.shares)
		} else if !req.Market() {
			askShares := decimal.Min(remaining, position)
			ask, err := model.Ask(askShares, *req.LimitPrice, req.MakerFee)
			if err != nil {
				return nil, err
			}
			actions = append(actions, ask)
			remaining = remaining.Sub(askShares)
			position = position.Sub(askShares)
		}

		if req.Market() || !remaining.IsPositive() {
			return actions, nil
		}

		p.logger.Debug("持仓已用尽或买盘已耗尽，继续规划剩余卖出",
			zap.Int("pass", pass),
			zap.Stringer("remaining_shares", remaining),
			zap.Stringer("remaining_position", position),
			zap.Int("remaining_bids", len(working)),
		)
	}

	return nil, fmt.Errorf("%w: %d", ErrIterationLimit, maxPasses)
}

// planShort 在无持仓时吃买盘开空，限价单剩余部分通过买入完整份额后挂卖单完成。
func (p *Planner) planShort(actions []cost.Action, req Request, remaining decimal.Decimal, bids []book.Order, model cost.Model) ([]cost.Action, error) {
	if len(bids) > 0 {
		fill := match(bids, remaining)
		short, err := model.ShortSell(fill.notional, fill.shares, req.TakerFee)
		if err != nil {
			return nil, err
		}
		actions = append(actions, short)
		remaining = remaining.Sub(fill.shares)
	}

	if remaining.IsPositive() && !req.Market() {
		risky, err := model.RiskyShortSell(remaining, *req.LimitPrice, req.MakerFee)
		if err != nil {
			return nil, err
		}
		actions = append(actions, risky)
	}
	return actions, nil
}

type matchResult struct {
	shares   decimal.Decimal
	notional decimal.Decimal
	// rest 为撮合后剩余的挂单，部分成交的挂单以减少数量后的副本保留。
	rest []book.Order
}

// match 按顺序吃掉 orders 直到成交 want 或订单耗尽。
func match(orders []book.Order, want decimal.Decimal) matchResult {
	result := matchResult{
		shares:   decimal.Zero,
		notional: decimal.Zero,
		rest:     make([]book.Order, 0, len(orders)),
	}

	remaining := want
	for i, order := range orders {
		if !remaining.IsPositive() {
			result.rest = append(result.rest, orders[i:]...)
			break
		}
		take := decimal.Min(remaining, order.Amount)
		result.shares = result.shares.Add(take)
		result.notional = result.notional.Add(take.Mul(order.Price))
		remaining = remaining.Sub(take)

		if take.LessThan(order.Amount) {
			order.Amount = order.Amount.Sub(take)
			result.rest = append(result.rest, order)
		}
	}
	return result
}

func limitLabel(req Request) string {
	if req.Market() {
		return "market"
	}
	return req.LimitPrice.String()
}
