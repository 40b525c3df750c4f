package chart

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/vitos/fib_bracket/internal/domain"
)

var (
	legendHigh = regexp.MustCompile(`H\s*([\d,]+\.?\d*)`)
	legendLow  = regexp.MustCompile(`L\s*([\d,]+\.?\d*)`)

	scanHigh = regexp.MustCompile(`[Hh][\s:]([\d,]+\.\d+)`)
	scanLow  = regexp.MustCompile(`[Ll][\s:]([\d,]+\.\d+)`)
)

// PriceRange bounds plausible instrument prices, exclusive on both ends.
type PriceRange struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

var DefaultGoldRange = PriceRange{Min: 2000, Max: 8000}

func (r PriceRange) Contains(v float64) bool {
	return v > r.Min && v < r.Max
}

func parseNumber(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
}

// ParseLegend reads the OHLC legend of a chart, e.g. "O2,745.10 H2,750.50 L2,740.00".
func ParseLegend(text string) (domain.PricePair, bool) {
	h := legendHigh.FindStringSubmatch(text)
	l := legendLow.FindStringSubmatch(text)
	if h == nil || l == nil {
		return domain.PricePair{}, false
	}
	high, err := parseNumber(h[1])
	if err != nil || high == 0 {
		return domain.PricePair{}, false
	}
	low, err := parseNumber(l[1])
	if err != nil || low == 0 {
		return domain.PricePair{}, false
	}
	return domain.PricePair{High: high, Low: low}, true
}

// ScanPage looks for H/L prefixed decimals anywhere in the page text and
// returns the highest high and lowest low inside r.
func ScanPage(text string, r PriceRange) (domain.PricePair, bool) {
	highs := scanValues(scanHigh, text, r)
	lows := scanValues(scanLow, text, r)
	if len(highs) == 0 || len(lows) == 0 {
		return domain.PricePair{}, false
	}

	p := domain.PricePair{High: highs[0], Low: lows[0]}
	for _, v := range highs[1:] {
		p.High = max(p.High, v)
	}
	for _, v := range lows[1:] {
		p.Low = min(p.Low, v)
	}
	return p, true
}

func scanValues(re *regexp.Regexp, text string, r PriceRange) []float64 {
	var out []float64
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		v, err := parseNumber(m[1])
		if err != nil || !r.Contains(v) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// PageText returns the current text of the chart page.
type PageText func(ctx context.Context) (string, error)

// FileText serves page text from a saved snapshot.
func FileText(path string) PageText {
	return func(ctx context.Context) (string, error) {
		b, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}

// TextSource tries the legend first and falls back to a page scan.
type TextSource struct {
	text   PageText
	bounds PriceRange
}

func NewTextSource(text PageText, r PriceRange) *TextSource {
	return &TextSource{text: text, bounds: r}
}

func (s *TextSource) ReadPrices(ctx context.Context) (domain.PricePair, error) {
	text, err := s.text(ctx)
	if err != nil {
		return domain.PricePair{}, fmt.Errorf("failed to read page text: %w", err)
	}
	if p, ok := ParseLegend(text); ok {
		return p, nil
	}
	if p, ok := ScanPage(text, s.bounds); ok {
		return p, nil
	}
	return domain.PricePair{}, domain.ErrNoPrices
}
