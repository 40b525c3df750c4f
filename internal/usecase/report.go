package usecase

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vitos/fib_bracket/internal/domain"
)

const rule = "----------------------------------------"

// FormatLevels renders the candle and its levels, highest price first.
func FormatLevels(prices domain.PricePair, levels domain.LevelSet) string {
	p := prices.Normalize()

	var b strings.Builder
	b.WriteString("FIBONACCI ANALYSIS\n")
	b.WriteString("Candle Data:\n")
	fmt.Fprintf(&b, "  HIGH:  %.2f\n", p.High)
	fmt.Fprintf(&b, "  LOW:   %.2f\n", p.Low)
	fmt.Fprintf(&b, "  Range: %.2f\n", p.High-p.Low)
	b.WriteString(rule + "\n")
	b.WriteString("LEVELS (High to Low):\n")

	all := levels.Levels()
	for i := len(all) - 1; i >= 0; i-- {
		l := all[i]
		fmt.Fprintf(&b, "  %s (%s/%s): %.2f\n", formatMultiplier(l.Multiplier), l.Label, l.Color, l.Price)
	}

	t := ExtractTradeLevels(levels)
	b.WriteString(rule + "\n")
	b.WriteString("TRADE LEVELS:\n")
	fmt.Fprintf(&b, "  Entry (0.5):  %.2f\n", t.Entry)
	fmt.Fprintf(&b, "  Above (1.5):  %.2f\n", t.Above)
	fmt.Fprintf(&b, "  Below (-0.5): %.2f\n", t.Below)
	return b.String()
}

// FormatStatus is the short summary shown once the chart side is done.
func FormatStatus(levels domain.LevelSet) string {
	t := ExtractTradeLevels(levels)
	return fmt.Sprintf("COMPLETE\nEntry: %.2f\nAbove(1.5): %.2f\nBelow(-0.5): %.2f", t.Entry, t.Above, t.Below)
}

func formatMultiplier(m domain.Multiplier) string {
	return strconv.FormatFloat(float64(m), 'f', -1, 64)
}
