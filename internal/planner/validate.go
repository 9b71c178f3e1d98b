package planner

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"trade-planner/internal/book"
	"trade-planner/internal/gas"
)

var one = decimal.NewFromInt(1)

func validate(req Request, ob book.OrderBook, gc gas.Context) error {
	var err error

	if !req.Side.Valid() {
		err = multierr.Append(err, invalid("side", fmt.Sprintf("必须为 buy 或 sell，实际为 %q", req.Side)))
	}
	if !req.Shares.IsPositive() {
		err = multierr.Append(err, invalid("shares", "必须大于0"))
	}
	if req.LimitPrice != nil && !inUnitRange(*req.LimitPrice) {
		err = multierr.Append(err, invalid("limitPrice", "必须位于[0,1]"))
	}
	if !inUnitRange(req.TakerFee) {
		err = multierr.Append(err, invalid("takerFee", "必须位于[0,1]"))
	}
	if !inUnitRange(req.MakerFee) {
		err = multierr.Append(err, invalid("makerFee", "必须位于[0,1]"))
	}
	if req.Trader == (common.Address{}) {
		err = multierr.Append(err, invalid("trader", "不能为零地址"))
	}
	if req.OutcomeID == "" {
		err = multierr.Append(err, invalid("outcomeId", "不能为空"))
	}
	switch {
	case req.GasPrice != nil && req.GasPrice.Sign() < 0:
		err = multierr.Append(err, invalid("gasPrice", "不能为负"))
	case req.GasPrice == nil && gc.Price == nil:
		err = multierr.Append(err, invalid("gasPrice", "请求与上下文均未提供"))
	}
	if gc.Oracle == nil {
		err = multierr.Append(err, invalid("gasOracle", "不能为空"))
	}

	err = multierr.Append(err, validateOrders("book.buy", ob.Buy))
	err = multierr.Append(err, validateOrders("book.sell", ob.Sell))

	if err != nil {
		return fmt.Errorf("planner: 请求校验失败: %w", err)
	}
	return nil
}

func validateOrders(prefix string, orders []book.Order) error {
	var err error
	for i, order := range orders {
		if !order.Amount.IsPositive() {
			err = multierr.Append(err, invalid(fmt.Sprintf("%s[%d].amount", prefix, i), "必须大于0"))
		}
		if !inUnitRange(order.Price) {
			err = multierr.Append(err, invalid(fmt.Sprintf("%s[%d].price", prefix, i), "必须位于[0,1]"))
		}
		if order.Owner == (common.Address{}) {
			err = multierr.Append(err, invalid(fmt.Sprintf("%s[%d].owner", prefix, i), "不能为零地址"))
		}
		if order.Outcome == "" {
			err = multierr.Append(err, invalid(fmt.Sprintf("%s[%d].outcome", prefix, i), "不能为空"))
		}
	}
	return err
}

func inUnitRange(v decimal.Decimal) bool {
	return !v.IsNegative() && v.LessThanOrEqual(one)
}
