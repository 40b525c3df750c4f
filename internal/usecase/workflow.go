package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vitos/fib_bracket/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type WorkflowConfig struct {
	Mode           domain.RunMode
	Symbol         string
	LotSize        float64
	Retries        int
	HandoffTimeout time.Duration
	TerminalURL    string
	Login          string
	Password       string
}

// Workflow coordinates the chart side (prices -> levels) and the terminal
// side (login -> orders) of one automation run.
type Workflow struct {
	cfg      WorkflowConfig
	prices   domain.PriceSource
	runner   domain.IntentRunner
	runs     domain.RunRepository
	script   *OrderScript
	planner  *OrderPlanner
	executor *TradeExecutor
	logger   *zap.Logger
	now      func() time.Time
}

// NewWorkflow wires a workflow. runs may be nil to skip persisting.
func NewWorkflow(
	cfg WorkflowConfig,
	prices domain.PriceSource,
	runner domain.IntentRunner,
	runs domain.RunRepository,
	logger *zap.Logger,
) *Workflow {
	if cfg.Mode == "" {
		cfg.Mode = domain.ModeParallel
	}
	script := NewOrderScript(cfg.Symbol)
	return &Workflow{
		cfg:      cfg,
		prices:   prices,
		runner:   runner,
		runs:     runs,
		script:   script,
		planner:  NewOrderPlanner(cfg.Symbol, cfg.LotSize),
		executor: NewTradeExecutor(runner, script, cfg.Retries, logger),
		logger:   logger,
		now:      time.Now,
	}
}

// Run executes the configured mode and returns what happened. The run is
// returned (and saved) whenever levels were computed, even if orders failed.
func (w *Workflow) Run(ctx context.Context) (*domain.Run, error) {
	w.logger.Info("Starting workflow", zap.String("mode", string(w.cfg.Mode)), zap.String("symbol", w.cfg.Symbol))

	var (
		run *domain.Run
		err error
	)
	switch w.cfg.Mode {
	case domain.ModeParallel:
		run, err = w.runParallel(ctx)
	case domain.ModeSequential:
		run, err = w.runSequential(ctx)
	case domain.ModeChartOnly:
		run, err = w.runChartOnly(ctx)
	case domain.ModeTerminalOnly:
		return nil, w.runTerminalOnly(ctx)
	default:
		return nil, fmt.Errorf("invalid mode: %s", w.cfg.Mode)
	}

	if run != nil {
		w.save(ctx, run)
	}
	return run, err
}

func (w *Workflow) newRun() *domain.Run {
	return &domain.Run{
		Mode:      w.cfg.Mode,
		Symbol:    w.cfg.Symbol,
		CreatedAt: w.now(),
	}
}

// readLevels is the chart side: prices in, level set out.
func (w *Workflow) readLevels(ctx context.Context) (domain.PricePair, domain.LevelSet, error) {
	prices, err := w.prices.ReadPrices(ctx)
	if err != nil {
		return domain.PricePair{}, domain.LevelSet{}, fmt.Errorf("failed to read prices: %w", err)
	}
	levels := ComputeLevels(prices.High, prices.Low)

	if err := CheckRange(levels); err != nil {
		w.logger.Warn("Zero-width candle, all levels are equal",
			zap.Float64("price", levels.Entry), zap.Error(err))
	}

	t := ExtractTradeLevels(levels)
	w.logger.Info("Levels computed",
		zap.Float64("high", t.High),
		zap.Float64("low", t.Low),
		zap.Float64("entry", t.Entry),
		zap.Float64("above", t.Above),
		zap.Float64("below", t.Below))
	return prices.Normalize(), levels, nil
}

func (w *Workflow) login(ctx context.Context) error {
	if err := w.runner.Run(ctx, LoginScript(w.cfg.TerminalURL, w.cfg.Login, w.cfg.Password)); err != nil {
		return fmt.Errorf("terminal login failed: %w", err)
	}
	w.logger.Info("Terminal login complete")
	if err := w.runner.Run(ctx, w.script.SelectSymbol()); err != nil {
		// The executor selects the symbol again before each order.
		w.logger.Warn("Symbol selection failed", zap.String("symbol", w.cfg.Symbol), zap.Error(err))
	}
	return nil
}

func (w *Workflow) placeOrders(ctx context.Context, levels domain.LevelSet) ([]domain.OrderResult, error) {
	pair := w.planner.Plan(levels)
	results, err := w.executor.Execute(ctx, pair)
	if err != nil {
		return results, fmt.Errorf("order placement failed: %w", err)
	}
	return results, nil
}

func (w *Workflow) runParallel(ctx context.Context) (*domain.Run, error) {
	handoff := NewLevelHandoff()
	run := w.newRun()
	var (
		prices  domain.PricePair
		levels  domain.LevelSet
		results []domain.OrderResult
		gotLvls bool
	)

	// Not errgroup.WithContext: a failing side must not cancel the other.
	var g errgroup.Group
	g.Go(func() error {
		p, l, err := w.readLevels(ctx)
		if err != nil {
			_ = handoff.Fail(err)
			return err
		}
		prices, levels, gotLvls = p, l, true
		return handoff.Publish(l)
	})
	g.Go(func() error {
		if err := w.login(ctx); err != nil {
			return err
		}
		w.logger.Info("Waiting for levels", zap.Duration("timeout", w.cfg.HandoffTimeout))
		l, err := handoff.Await(ctx, w.cfg.HandoffTimeout)
		if err != nil {
			return err
		}
		results, err = w.placeOrders(ctx, l)
		return err
	})
	err := g.Wait()

	if !gotLvls {
		return nil, err
	}
	run.Prices, run.Levels, run.Degenerate, run.Orders = prices, levels, levels.Degenerate(), results
	return run, err
}

func (w *Workflow) runSequential(ctx context.Context) (*domain.Run, error) {
	if err := w.login(ctx); err != nil {
		return nil, err
	}
	prices, levels, err := w.readLevels(ctx)
	if err != nil {
		return nil, err
	}
	run := w.newRun()
	run.Prices, run.Levels, run.Degenerate = prices, levels, levels.Degenerate()

	run.Orders, err = w.placeOrders(ctx, levels)
	return run, err
}

func (w *Workflow) runChartOnly(ctx context.Context) (*domain.Run, error) {
	prices, levels, err := w.readLevels(ctx)
	if err != nil {
		return nil, err
	}
	run := w.newRun()
	run.Prices, run.Levels, run.Degenerate = prices, levels, levels.Degenerate()
	return run, nil
}

func (w *Workflow) runTerminalOnly(ctx context.Context) error {
	return w.login(ctx)
}

func (w *Workflow) save(ctx context.Context, run *domain.Run) {
	if w.runs == nil {
		return
	}
	id, err := w.runs.SaveRun(context.WithoutCancel(ctx), run)
	if err != nil {
		w.logger.Error("Failed to save run", zap.Error(err))
		return
	}
	run.ID = id
}

// IsTimeout reports whether err came from the level handoff window expiring.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrHandoffTimeout)
}
