package domain

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidPrices is returned for a pair that cannot produce finite levels.
var ErrInvalidPrices = errors.New("invalid prices")

// ErrDegenerateRange is reported when high == low. The level set is still valid,
// every level just collapses to the same price.
var ErrDegenerateRange = errors.New("degenerate range: high equals low")

// PricePair is the candle high/low read from the chart.
type PricePair struct {
	High float64 `json:"high"`
	Low  float64 `json:"low"`
}

// Normalize returns the pair with High >= Low.
func (p PricePair) Normalize() PricePair {
	if p.High <= p.Low {
		return PricePair{High: p.Low, Low: p.High}
	}
	return p
}

// Range is High - Low of the normalized pair.
func (p PricePair) Range() float64 {
	n := p.Normalize()
	return n.High - n.Low
}

// Validate rejects NaN or infinite prices and ranges so wide that the
// outer levels would overflow.
func (p PricePair) Validate() error {
	for _, v := range []float64{p.High, p.Low} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: H=%v L=%v", ErrInvalidPrices, p.High, p.Low)
		}
	}
	n := p.Normalize()
	r := n.High - n.Low
	above := n.Low + float64(MultAbove)*r
	below := n.Low + float64(MultBelow)*r
	if math.IsInf(r, 0) || math.IsInf(above, 0) || math.IsInf(below, 0) {
		return fmt.Errorf("%w: range overflows H=%v L=%v", ErrInvalidPrices, p.High, p.Low)
	}
	return nil
}

// Multiplier positions a level as a fraction of the candle range above low.
type Multiplier float64

const (
	MultBelow Multiplier = -0.5
	MultLow   Multiplier = 0
	MultEntry Multiplier = 0.5
	MultHigh  Multiplier = 1
	MultAbove Multiplier = 1.5
)

// Multipliers lists the fixed levels in ascending order.
var Multipliers = [5]Multiplier{MultBelow, MultLow, MultEntry, MultHigh, MultAbove}

// Color is the display tag of a level.
type Color string

const (
	ColorGreen Color = "Green"
	ColorBlue  Color = "Blue"
	ColorRed   Color = "Red"
)

// Label returns the descriptive name of the level.
func (m Multiplier) Label() string {
	switch m {
	case MultBelow:
		return "Below"
	case MultLow:
		return "Low"
	case MultEntry:
		return "Entry"
	case MultHigh:
		return "High"
	case MultAbove:
		return "Above"
	}
	return ""
}

// Color is the display tag. It plays no part in the calculation.
func (m Multiplier) Color() Color {
	switch m {
	case MultBelow, MultAbove:
		return ColorGreen
	case MultLow, MultHigh:
		return ColorBlue
	case MultEntry:
		return ColorRed
	}
	return ""
}

// Level is one computed price on the scale.
type Level struct {
	Multiplier Multiplier `json:"multiplier"`
	Label      string     `json:"label"`
	Color      Color      `json:"color"`
	Price      float64    `json:"price"`
}

// LevelSet holds the five prices by value. Copies never share state, so a set
// handed to another goroutine cannot change underneath it.
type LevelSet struct {
	Below float64 `json:"below"`
	Low   float64 `json:"low"`
	Entry float64 `json:"entry"`
	High  float64 `json:"high"`
	Above float64 `json:"above"`
}

// Price returns the level price for m. ok is false for an unknown multiplier.
func (s LevelSet) Price(m Multiplier) (float64, bool) {
	switch m {
	case MultBelow:
		return s.Below, true
	case MultLow:
		return s.Low, true
	case MultEntry:
		return s.Entry, true
	case MultHigh:
		return s.High, true
	case MultAbove:
		return s.Above, true
	}
	return 0, false
}

// Levels returns the entries ordered by multiplier ascending.
func (s LevelSet) Levels() []Level {
	out := make([]Level, 0, len(Multipliers))
	for _, m := range Multipliers {
		p, _ := s.Price(m)
		out = append(out, Level{Multiplier: m, Label: m.Label(), Color: m.Color(), Price: p})
	}
	return out
}

func (s LevelSet) Range() float64 {
	return s.High - s.Low
}

func (s LevelSet) Degenerate() bool {
	return s.Range() == 0
}

// TradeLevels renames the set by trading role.
type TradeLevels struct {
	Entry float64 `json:"entry"`
	Above float64 `json:"above"`
	Below float64 `json:"below"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
}
