// Package gas 按交易模板估算以太坊交易的预付 gas 费用（以 ether 计）。
package gas

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/params"
	"github.com/shopspring/decimal"
)

// 交易模板名称，与合约方法一一对应。
const (
	TemplateBuy             = "BuyAndSellShares.buy"
	TemplateSell            = "BuyAndSellShares.sell"
	TemplateTrade           = "Trade.trade"
	TemplateShortSell       = "Trade.shortSell"
	TemplateBuyCompleteSets = "CompleteSets.buyCompleteSets"
)

// DefaultGas 为模板未配置 gas 时使用的 gas 上限。
const DefaultGas uint64 = 0x2fd618

const etherDecimals = 18

var (
	// ErrUnknownTemplate 表示模板不存在。
	ErrUnknownTemplate = errors.New("gas: unknown transaction template")
	// ErrNoGasPrice 表示缺少 gas 价格。
	ErrNoGasPrice = errors.New("gas: gas price not set")

	weiPerEther = decimal.NewFromInt(params.Ether)
)

// Oracle 返回指定模板的 gas 用量。
type Oracle interface {
	TxCost(template string) (uint64, error)
}

// Templates 列出全部已知模板。
func Templates() []string {
	return []string{TemplateBuy, TemplateSell, TemplateTrade, TemplateShortSell, TemplateBuyCompleteSets}
}

// Table 基于配置的静态 gas 表。
type Table struct {
	defaultGas uint64
	gas        map[string]uint64
}

var _ Oracle = (*Table)(nil)

// NewTable 创建 gas 表；defaultGas 为 0 时使用 DefaultGas。
func NewTable(defaultGas uint64, gas map[string]uint64) *Table {
	if defaultGas == 0 {
		defaultGas = DefaultGas
	}
	t := &Table{
		defaultGas: defaultGas,
		gas:        make(map[string]uint64, len(Templates())),
	}
	for _, name := range Templates() {
		t.gas[name] = gas[name]
	}
	return t
}

// TxCost 返回模板 gas，未配置具体数值的已知模板回落到默认值。
func (t *Table) TxCost(template string) (uint64, error) {
	value, ok := t.gas[template]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownTemplate, template)
	}
	if value == 0 {
		return t.defaultGas, nil
	}
	return value, nil
}

// Context 为一次规划调用提供 gas 价格与模板来源，调用期间不可修改。
type Context struct {
	Price  *big.Int
	Oracle Oracle
}

// WithPrice 返回替换 gas 价格后的副本，price 为 nil 时原样返回。
func (c Context) WithPrice(price *big.Int) Context {
	if price == nil {
		return c
	}
	c.Price = new(big.Int).Set(price)
	return c
}

// EstimateEth 估算多个模板预付费用之和（ether）。
func (c Context) EstimateEth(templates ...string) (decimal.Decimal, error) {
	if c.Price == nil {
		return decimal.Zero, ErrNoGasPrice
	}
	if c.Price.Sign() < 0 {
		return decimal.Zero, fmt.Errorf("gas: gas price 不能为负: %s", c.Price)
	}
	if c.Oracle == nil {
		return decimal.Zero, errors.New("gas: oracle 不能为空")
	}

	total := new(big.Int)
	for _, name := range templates {
		limit, err := c.Oracle.TxCost(name)
		if err != nil {
			return decimal.Zero, err
		}
		tx := types.NewTx(&types.LegacyTx{
			Gas:      limit,
			GasPrice: c.Price,
		})
		total.Add(total, tx.Cost())
	}

	return decimal.NewFromBigInt(total, 0).DivRound(weiPerEther, etherDecimals), nil
}
