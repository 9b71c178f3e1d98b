package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"trade-planner/internal/app"
	"trade-planner/internal/book"
	"trade-planner/internal/config"
	"trade-planner/internal/log"
	"trade-planner/internal/planner"
	"trade-planner/internal/store"
)

type options struct {
	configPath string
	market     string
	importPath string
	side       string
	shares     string
	limit      string
	position   string
	trader     string
	outcome    string
	serveAddr  string
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "配置文件路径，默认使用 configs/config.yaml")
	flag.StringVar(&opts.market, "market", "", "市场标识")
	flag.StringVar(&opts.importPath, "import", "", "导入订单簿 JSON 文件作为市场最新快照")
	flag.StringVar(&opts.side, "side", "buy", "交易方向：buy、sell 或 both")
	flag.StringVar(&opts.shares, "shares", "", "交易份额")
	flag.StringVar(&opts.limit, "limit", "", "限价，留空表示市价单")
	flag.StringVar(&opts.position, "position", "0", "当前持仓份额")
	flag.StringVar(&opts.trader, "trader", "", "交易者地址，规划时必填，用于排除本人挂单")
	flag.StringVar(&opts.outcome, "outcome", "", "结果 ID")
	flag.StringVar(&opts.serveAddr, "serve", "", "启动规划日志查询接口的监听地址，例如 :8080")
	flag.Parse()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger, err := log.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer func(logger *zap.Logger) {
		_ = logger.Sync()
	}(logger)

	if err := run(opts, cfg, logger); err != nil {
		logger.Error("规划失败", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(opts options, cfg *config.Config, logger *zap.Logger) error {
	if opts.market == "" && opts.serveAddr == "" {
		return fmt.Errorf("必须指定 -market 或 -serve")
	}

	sqliteStore, err := store.NewSQLite(cfg.Database)
	if err != nil {
		return fmt.Errorf("初始化数据库失败: %w", err)
	}
	defer func() {
		if closeErr := sqliteStore.Close(); closeErr != nil {
			logger.Warn("关闭数据库失败", zap.Error(closeErr))
		}
	}()

	planApp, err := app.New(cfg, logger, sqliteStore)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if opts.importPath != "" {
		f, err := os.Open(opts.importPath)
		if err != nil {
			return fmt.Errorf("打开订单簿文件失败: %w", err)
		}
		importErr := planApp.ImportBook(ctx, opts.market, f)
		_ = f.Close()
		if importErr != nil {
			return importErr
		}
	}

	if opts.shares != "" {
		if err := planAndPrint(ctx, planApp, opts, cfg); err != nil {
			return err
		}
	}

	if opts.serveAddr != "" {
		return planApp.ServeJournal(ctx, opts.serveAddr)
	}
	return nil
}

func planAndPrint(ctx context.Context, planApp *app.App, opts options, cfg *config.Config) error {
	req, err := buildRequest(opts, cfg)
	if err != nil {
		return err
	}

	var result interface{}
	if strings.EqualFold(opts.side, "both") {
		result, err = planApp.Quote(ctx, app.Request{Market: opts.market, Trade: req})
	} else {
		result, err = planApp.Plan(ctx, app.Request{Market: opts.market, Trade: req})
	}
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func buildRequest(opts options, cfg *config.Config) (planner.Request, error) {
	shares, err := decimal.NewFromString(opts.shares)
	if err != nil {
		return planner.Request{}, fmt.Errorf("-shares 无效: %w", err)
	}
	position, err := decimal.NewFromString(opts.position)
	if err != nil {
		return planner.Request{}, fmt.Errorf("-position 无效: %w", err)
	}
	if opts.trader == "" {
		return planner.Request{}, fmt.Errorf("规划时必须指定 -trader")
	}
	if !common.IsHexAddress(opts.trader) {
		return planner.Request{}, fmt.Errorf("-trader 不是合法地址: %q", opts.trader)
	}

	req := planner.Request{
		Side:           book.Side(strings.ToLower(opts.side)),
		Shares:         shares,
		TakerFee:       cfg.Fees.Taker,
		MakerFee:       cfg.Fees.Maker,
		Trader:         common.HexToAddress(opts.trader),
		PositionShares: position,
		OutcomeID:      opts.outcome,
	}
	if opts.limit != "" {
		limit, err := decimal.NewFromString(opts.limit)
		if err != nil {
			return planner.Request{}, fmt.Errorf("-limit 无效: %w", err)
		}
		req.LimitPrice = &limit
	}
	return req, nil
}
