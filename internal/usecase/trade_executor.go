package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/vitos/fib_bracket/internal/domain"
	"go.uber.org/zap"
)

// TradeExecutor submits an order pair through the terminal, Buy Stop first.
// A failed side does not stop the other one.
type TradeExecutor struct {
	runner  domain.IntentRunner
	script  *OrderScript
	retries int
	logger  *zap.Logger
}

func NewTradeExecutor(runner domain.IntentRunner, script *OrderScript, retries int, logger *zap.Logger) *TradeExecutor {
	if retries < 0 {
		retries = 0
	}
	return &TradeExecutor{
		runner:  runner,
		script:  script,
		retries: retries,
		logger:  logger,
	}
}

func (e *TradeExecutor) Execute(ctx context.Context, pair domain.OrderPair) ([]domain.OrderResult, error) {
	var (
		results []domain.OrderResult
		errs    []error
	)
	for _, spec := range pair.Specs() {
		res, err := e.place(ctx, spec)
		results = append(results, res)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", spec.Side, err))
		}
	}
	return results, errors.Join(errs...)
}

func (e *TradeExecutor) place(ctx context.Context, spec domain.OrderSpec) (domain.OrderResult, error) {
	res := domain.OrderResult{Spec: spec}

	intents, err := e.script.PlaceOrder(spec)
	if err != nil {
		res.Status = domain.OrderSkipped
		res.Error = err.Error()
		return res, err
	}

	for attempt := 1; attempt <= e.retries+1; attempt++ {
		if ctx.Err() != nil {
			err = ctx.Err()
			break
		}
		res.Attempts = attempt
		err = e.runner.Run(ctx, intents)
		if err == nil {
			e.logger.Info("Order placed",
				zap.String("side", string(spec.Side)),
				zap.String("symbol", spec.Symbol),
				zap.Float64("tp", spec.TakeProfit),
				zap.Float64("sl", spec.StopLoss),
				zap.Float64("volume", spec.Volume),
				zap.Int("attempt", attempt))
			res.Status = domain.OrderPlaced
			return res, nil
		}
		e.logger.Warn("Order attempt failed",
			zap.String("side", string(spec.Side)),
			zap.Int("attempt", attempt),
			zap.Error(err))
	}

	res.Status = domain.OrderFailed
	res.Error = err.Error()
	return res, err
}
