package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

// Config 聚合了系统运行所需的全部配置项。
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Planner  PlannerConfig  `mapstructure:"planner"`
	Fees     FeesConfig     `mapstructure:"fees"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// AppConfig 控制应用级参数。
type AppConfig struct {
	Environment string `mapstructure:"environment"`
}

// PlannerConfig 控制交易规划参数。
type PlannerConfig struct {
	Precision   int32     `mapstructure:"precision"`
	GasPriceWei uint64    `mapstructure:"gas_price_wei"`
	Gas         GasConfig `mapstructure:"gas"`
}

// GasConfig 为各交易模板的 gas 用量，0 表示使用 Default。
type GasConfig struct {
	Default         uint64 `mapstructure:"default"`
	Buy             uint64 `mapstructure:"buy"`
	Sell            uint64 `mapstructure:"sell"`
	Trade           uint64 `mapstructure:"trade"`
	ShortSell       uint64 `mapstructure:"short_sell"`
	BuyCompleteSets uint64 `mapstructure:"buy_complete_sets"`
}

// FeesConfig 为默认手续费率。
type FeesConfig struct {
	Taker decimal.Decimal `mapstructure:"taker"`
	Maker decimal.Decimal `mapstructure:"maker"`
}

// DatabaseConfig 管理数据库连接。
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	InMemory        bool          `mapstructure:"in_memory"`
}

// LoggingConfig 控制日志输出。
type LoggingConfig struct {
	Level            string   `mapstructure:"level"`
	Encoding         string   `mapstructure:"encoding"`
	Development      bool     `mapstructure:"development"`
	OutputPaths      []string `mapstructure:"output_paths"`
	ErrorOutputPaths []string `mapstructure:"error_output_paths"`
}

var one = decimal.NewFromInt(1)

// Validate 对配置进行基本校验。
func (c *Config) Validate() error {
	var err error

	if c.App.Environment == "" {
		err = multierr.Append(err, errors.New("app.environment 不能为空"))
	}
	if c.Planner.Precision <= 0 || c.Planner.Precision > 36 {
		err = multierr.Append(err, errors.New("planner.precision 必须位于[1,36]"))
	}
	if c.Planner.GasPriceWei == 0 {
		err = multierr.Append(err, errors.New("planner.gas_price_wei 必须大于0"))
	}
	if c.Fees.Taker.IsNegative() || c.Fees.Taker.GreaterThan(one) {
		err = multierr.Append(err, errors.New("fees.taker 必须位于[0,1]"))
	}
	if c.Fees.Maker.IsNegative() || c.Fees.Maker.GreaterThan(one) {
		err = multierr.Append(err, errors.New("fees.maker 必须位于[0,1]"))
	}
	if c.Database.Path == "" && !c.Database.InMemory {
		err = multierr.Append(err, errors.New("database.path 不能为空"))
	}
	if c.Database.MaxOpenConns <= 0 {
		err = multierr.Append(err, errors.New("database.max_open_conns 必须大于0"))
	}
	if c.Database.MaxIdleConns < 0 {
		err = multierr.Append(err, errors.New("database.max_idle_conns 不能为负"))
	}
	if c.Database.ConnMaxLifetime < 0 {
		err = multierr.Append(err, errors.New("database.conn_max_lifetime 不能为负"))
	}
	if c.Logging.Level == "" {
		err = multierr.Append(err, errors.New("logging.level 不能为空"))
	}
	if c.Logging.Encoding == "" {
		err = multierr.Append(err, errors.New("logging.encoding 不能为空"))
	}
	if len(c.Logging.OutputPaths) == 0 {
		err = multierr.Append(err, errors.New("logging.output_paths 至少包含一个输出目标"))
	}
	if len(c.Logging.ErrorOutputPaths) == 0 {
		err = multierr.Append(err, errors.New("logging.error_output_paths 至少包含一个输出目标"))
	}

	if err != nil {
		return fmt.Errorf("配置校验失败: %w", err)
	}

	return nil
}
