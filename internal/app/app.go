package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/big"

	"go.uber.org/zap"

	"trade-planner/internal/book"
	"trade-planner/internal/config"
	"trade-planner/internal/cost"
	"trade-planner/internal/gas"
	"trade-planner/internal/monitor"
	"trade-planner/internal/planner"
	"trade-planner/internal/store"
)

// Request 为针对某一市场订单簿快照的规划请求。
type Request struct {
	Market string
	Trade  planner.Request
}

// Quote 为同一数量的买入与卖出规划结果。
type Quote struct {
	Buy  []cost.Action `json:"buy"`
	Sell []cost.Action `json:"sell"`
}

// App 聚合核心依赖：订单簿仓库、规划器与规划日志。
type App struct {
	cfg     *config.Config
	logger  *zap.Logger
	books   *store.BookRepository
	journal *monitor.Service
	planner *planner.Planner
	gas     gas.Context
}

// New 创建 App 实例。
func New(cfg *config.Config, logger *zap.Logger, st *store.Store) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: cfg 不能为空")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	books, err := store.NewBookRepository(st)
	if err != nil {
		return nil, err
	}
	journal, err := monitor.NewService(st, logger.Named("monitor"))
	if err != nil {
		return nil, err
	}

	return &App{
		cfg:     cfg,
		logger:  logger,
		books:   books,
		journal: journal,
		planner: planner.New(planner.Options{Precision: cfg.Planner.Precision}, logger.Named("planner")),
		gas:     GasContext(cfg.Planner),
	}, nil
}

// GasContext 根据配置构造 gas 上下文。
func GasContext(cfg config.PlannerConfig) gas.Context {
	return gas.Context{
		Price: new(big.Int).SetUint64(cfg.GasPriceWei),
		Oracle: gas.NewTable(cfg.Gas.Default, map[string]uint64{
			gas.TemplateBuy:             cfg.Gas.Buy,
			gas.TemplateSell:            cfg.Gas.Sell,
			gas.TemplateTrade:           cfg.Gas.Trade,
			gas.TemplateShortSell:       cfg.Gas.ShortSell,
			gas.TemplateBuyCompleteSets: cfg.Gas.BuyCompleteSets,
		}),
	}
}

// ImportBook 从 JSON 读取订单簿并保存为市场的最新快照。
func (a *App) ImportBook(ctx context.Context, market string, r io.Reader) error {
	ob, err := planner.DecodeBook(r)
	if err != nil {
		return fmt.Errorf("app: 导入订单簿失败: %w", err)
	}
	if err := a.books.SaveBook(ctx, market, ob); err != nil {
		return err
	}
	a.logger.Info("订单簿已导入",
		zap.String("market", market),
		zap.Int("bids", len(ob.Buy)),
		zap.Int("asks", len(ob.Sell)),
	)
	return nil
}

// Plan 读取市场订单簿快照并规划交易动作，结果写入规划日志。
func (a *App) Plan(ctx context.Context, req Request) ([]cost.Action, error) {
	ob, err := a.loadBook(ctx, req.Market)
	if err != nil {
		return nil, err
	}

	actions, err := a.planner.Plan(req.Trade, ob, a.gas)
	if err != nil {
		a.journal.RecordError(ctx, "规划失败", err, map[string]interface{}{"market": req.Market})
		return nil, err
	}

	a.journal.RecordPlan(ctx, summarize(req), actions)
	a.logger.Info("交易动作规划完成",
		zap.String("market", req.Market),
		zap.String("side", string(req.Trade.Side)),
		zap.Int("actions", len(actions)),
	)
	return actions, nil
}

// Quote 以相同数量并发规划买入与卖出，卖出使用请求中的持仓。
func (a *App) Quote(ctx context.Context, req Request) (Quote, error) {
	ob, err := a.loadBook(ctx, req.Market)
	if err != nil {
		return Quote{}, err
	}

	buyReq := req.Trade
	buyReq.Side = book.SideBuy
	sellReq := req.Trade
	sellReq.Side = book.SideSell

	results, err := a.planner.PlanAll(ctx, []planner.Job{
		{Request: buyReq, Book: ob, Gas: a.gas},
		{Request: sellReq, Book: ob, Gas: a.gas},
	})
	if err != nil {
		a.journal.RecordError(ctx, "报价失败", err, map[string]interface{}{"market": req.Market})
		return Quote{}, err
	}

	quote := Quote{Buy: results[0], Sell: results[1]}
	a.journal.RecordQuote(ctx, summarize(req), quote.Buy, quote.Sell)
	return quote, nil
}

// loadBook 读取市场快照，没有快照时按空订单簿处理。
func (a *App) loadBook(ctx context.Context, market string) (book.OrderBook, error) {
	ob, err := a.books.LoadBook(ctx, market)
	if errors.Is(err, store.ErrBookNotFound) {
		a.logger.Warn("市场没有订单簿快照，按空订单簿规划", zap.String("market", market))
		return book.OrderBook{}, nil
	}
	return ob, err
}

// Journal 返回规划日志服务。
func (a *App) Journal() *monitor.Service {
	return a.journal
}

func summarize(req Request) monitor.RequestSummary {
	summary := monitor.RequestSummary{
		Market:         req.Market,
		Side:           string(req.Trade.Side),
		Shares:         req.Trade.Shares.String(),
		TakerFee:       req.Trade.TakerFee.String(),
		MakerFee:       req.Trade.MakerFee.String(),
		Trader:         req.Trade.Trader.Hex(),
		PositionShares: req.Trade.PositionShares.String(),
		OutcomeID:      req.Trade.OutcomeID,
	}
	if req.Trade.LimitPrice != nil {
		summary.LimitPrice = req.Trade.LimitPrice.String()
	}
	return summary
}
