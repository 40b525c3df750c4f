package usecase

import "github.com/vitos/fib_bracket/internal/domain"

// ComputeLevels builds the level set for a candle. Inputs are swapped when
// high <= low, so the result does not depend on argument order.
//
// Every level is price(m) = low + m*(high-low). The 0 and 1 anchors are taken
// from the inputs directly so they reproduce low and high exactly.
func ComputeLevels(high, low float64) domain.LevelSet {
	p := domain.PricePair{High: high, Low: low}.Normalize()
	diff := p.High - p.Low

	return domain.LevelSet{
		Below: levelPrice(p.Low, diff, domain.MultBelow),
		Low:   p.Low,
		Entry: levelPrice(p.Low, diff, domain.MultEntry),
		High:  p.High,
		Above: levelPrice(p.Low, diff, domain.MultAbove),
	}
}

func levelPrice(low, diff float64, m domain.Multiplier) float64 {
	return low + float64(m)*diff
}

// ExtractTradeLevels projects the set onto trading roles.
func ExtractTradeLevels(levels domain.LevelSet) domain.TradeLevels {
	return domain.TradeLevels{
		Entry: levels.Entry,
		Above: levels.Above,
		Below: levels.Below,
		High:  levels.High,
		Low:   levels.Low,
	}
}

// CheckRange returns domain.ErrDegenerateRange for a zero-width set.
// It is a warning: the set is still usable.
func CheckRange(levels domain.LevelSet) error {
	if levels.Degenerate() {
		return domain.ErrDegenerateRange
	}
	return nil
}
