package chart

import (
	"context"
	"errors"
	"fmt"

	"github.com/vitos/fib_bracket/internal/domain"
	"go.uber.org/zap"
)

// NamedSource labels a PriceSource for logging.
type NamedSource struct {
	Name   string
	Source domain.PriceSource
}

// FallbackSource asks each source in turn and returns the first usable pair.
type FallbackSource struct {
	sources []NamedSource
	logger  *zap.Logger
}

func NewFallbackSource(logger *zap.Logger, sources ...NamedSource) *FallbackSource {
	return &FallbackSource{sources: sources, logger: logger}
}

func (f *FallbackSource) ReadPrices(ctx context.Context) (domain.PricePair, error) {
	var errs []error
	for _, s := range f.sources {
		if err := ctx.Err(); err != nil {
			return domain.PricePair{}, err
		}
		p, err := s.Source.ReadPrices(ctx)
		if err == nil && (p.High <= 0 || p.Low <= 0) {
			err = fmt.Errorf("%w: non-positive price H=%v L=%v", domain.ErrNoPrices, p.High, p.Low)
		}
		if err != nil {
			f.logger.Warn("Price source failed", zap.String("source", s.Name), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", s.Name, err))
			continue
		}
		f.logger.Info("Prices read", zap.String("source", s.Name),
			zap.Float64("high", p.High), zap.Float64("low", p.Low))
		return p, nil
	}
	if len(errs) == 0 {
		return domain.PricePair{}, domain.ErrNoPrices
	}
	return domain.PricePair{}, errors.Join(errs...)
}
