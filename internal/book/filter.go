package book

import (
	"slices"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// Select 过滤出可与请求撮合的挂单并按价格优先排序。
//
// 仅保留 outcome 一致且不属于 trader 本人的挂单；limitPrice 为 nil 时视为市价单，
// 不做价格过滤。买入时卖单按价格升序，卖出时买单按价格降序，同价位保持输入顺序。
// 返回新的切片，不修改输入。
func Select(orders []Order, side Side, limitPrice *decimal.Decimal, outcome string, trader common.Address) []Order {
	selected := make([]Order, 0, len(orders))
	for _, order := range orders {
		if order.Outcome != outcome || order.Owner == trader {
			continue
		}
		if limitPrice != nil && !withinLimit(order.Price, side, *limitPrice) {
			continue
		}
		selected = append(selected, order)
	}

	slices.SortStableFunc(selected, func(a, b Order) int {
		if side == SideBuy {
			return a.Price.Cmp(b.Price)
		}
		return b.Price.Cmp(a.Price)
	})
	return selected
}

func withinLimit(price decimal.Decimal, side Side, limit decimal.Decimal) bool {
	if side == SideBuy {
		return price.LessThanOrEqual(limit)
	}
	return price.GreaterThanOrEqual(limit)
}
