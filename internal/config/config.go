package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const (
	defaultConfigPath = "configs/config.yaml"
	envPrefix         = "planner"
)

// Load 读取配置文件并结合环境变量返回 Config。
func Load(path string) (*Config, error) {
	v := viper.New()

	if path == "" {
		path = defaultConfigPath
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix(envPrefix)
	replacer := strings.NewReplacer(".", "_")
	v.SetEnvKeyReplacer(replacer)
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil, fmt.Errorf("未找到配置文件 %q: %w", path, err)
		}
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.environment", "development")

	v.SetDefault("planner.precision", 18)
	v.SetDefault("planner.gas_price_wei", 20_000_000_000)
	v.SetDefault("planner.gas.default", "0x2fd618")
	v.SetDefault("planner.gas.buy", 0)
	v.SetDefault("planner.gas.sell", 0)
	v.SetDefault("planner.gas.trade", 0)
	v.SetDefault("planner.gas.short_sell", 0)
	v.SetDefault("planner.gas.buy_complete_sets", 0)

	v.SetDefault("fees.taker", "0.02")
	v.SetDefault("fees.maker", "0.01")

	v.SetDefault("database.path", "data/trade_planner.db")
	v.SetDefault("database.max_open_conns", 4)
	v.SetDefault("database.max_idle_conns", 4)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.in_memory", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.encoding", "console")
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.output_paths", []string{"stdout"})
	v.SetDefault("logging.error_output_paths", []string{"stderr"})
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
			stringToDecimalHookFunc(),
			hexToUint64HookFunc(),
		)
	}
}

var decimalType = reflect.TypeOf(decimal.Decimal{})

// stringToDecimalHookFunc 将字符串或数字解析为 decimal.Decimal，保持十进制精度。
func stringToDecimalHookFunc() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != decimalType {
			return data, nil
		}
		switch value := data.(type) {
		case string:
			return decimal.NewFromString(strings.TrimSpace(value))
		case float64:
			return decimal.NewFromFloat(value), nil
		case int:
			return decimal.NewFromInt(int64(value)), nil
		case int64:
			return decimal.NewFromInt(value), nil
		default:
			return data, nil
		}
	}
}

// hexToUint64HookFunc 支持以 0x 开头的十六进制 gas 数值。
func hexToUint64HookFunc() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if from.Kind() != reflect.String || to.Kind() != reflect.Uint64 {
			return data, nil
		}
		raw := strings.TrimSpace(data.(string))
		if !strings.HasPrefix(raw, "0x") && !strings.HasPrefix(raw, "0X") {
			return data, nil
		}
		return hexutil.DecodeUint64(strings.ToLower(raw))
	}
}
