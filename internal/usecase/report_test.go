package usecase_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vitos/fib_bracket/internal/domain"
	"github.com/vitos/fib_bracket/internal/usecase"
)

func TestFormatLevels_HighToLow(t *testing.T) {
	prices := domain.PricePair{High: 2740, Low: 2750}
	out := usecase.FormatLevels(prices, usecase.ComputeLevels(prices.High, prices.Low))

	assert.Contains(t, out, "HIGH:  2750.00")
	assert.Contains(t, out, "LOW:   2740.00")
	assert.Contains(t, out, "Range: 10.00")

	order := []string{
		"1.5 (Above/Green): 2755.00",
		"1 (High/Blue): 2750.00",
		"0.5 (Entry/Red): 2745.00",
		"0 (Low/Blue): 2740.00",
		"-0.5 (Below/Green): 2735.00",
	}
	last := -1
	for _, line := range order {
		idx := strings.Index(out, line)
		if assert.NotEqual(t, -1, idx, "missing %q", line) {
			assert.Greater(t, idx, last, "%q out of order", line)
			last = idx
		}
	}

	assert.Contains(t, out, "Entry (0.5):  2745.00")
	assert.Contains(t, out, "Below (-0.5): 2735.00")
}

func TestFormatStatus(t *testing.T) {
	out := usecase.FormatStatus(usecase.ComputeLevels(2750, 2740))
	assert.Equal(t, "COMPLETE\nEntry: 2745.00\nAbove(1.5): 2755.00\nBelow(-0.5): 2735.00", out)
}
