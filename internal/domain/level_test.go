package domain_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vitos/fib_bracket/internal/domain"
)

func TestPricePair_Validate(t *testing.T) {
	tests := []struct {
		name string
		pair domain.PricePair
		ok   bool
	}{
		{"Normal candle", domain.PricePair{High: 2750, Low: 2740}, true},
		{"Swapped", domain.PricePair{High: 2740, Low: 2750}, true},
		{"Degenerate", domain.PricePair{High: 2750, Low: 2750}, true},
		{"NaN high", domain.PricePair{High: math.NaN(), Low: 2740}, false},
		{"Inf low", domain.PricePair{High: 2750, Low: math.Inf(1)}, false},
		{"Range overflows", domain.PricePair{High: 1e308, Low: -1e308}, false},
		{"Outer level overflows", domain.PricePair{High: 1.5e308, Low: 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.pair.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, domain.ErrInvalidPrices)
			}
		})
	}
}
