package chart

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/vitos/fib_bracket/internal/domain"
)

// Prices used when the operator's input cannot be parsed.
const (
	DefaultManualHigh = 2750.00
	DefaultManualLow  = 2740.00
)

type inputLine struct {
	text string
	err  error
}

// ManualInput asks the operator to read the legend and type the values in.
// Unreadable input falls back to the defaults; it only fails when ctx is done.
type ManualInput struct {
	in    *bufio.Reader
	out   io.Writer
	once  sync.Once
	lines chan inputLine
}

func NewManualInput(in io.Reader, out io.Writer) *ManualInput {
	return &ManualInput{
		in:    bufio.NewReader(in),
		out:   out,
		lines: make(chan inputLine),
	}
}

func (m *ManualInput) ReadPrices(ctx context.Context) (domain.PricePair, error) {
	if err := ctx.Err(); err != nil {
		return domain.PricePair{}, err
	}
	fmt.Fprintln(m.out, "MANUAL INPUT REQUIRED")
	fmt.Fprintln(m.out, "Could not automatically extract prices from chart.")

	high, err := m.prompt(ctx, "Enter HIGH price (e.g., 2750.50): ")
	if err == nil {
		var low float64
		low, err = m.prompt(ctx, "Enter LOW price (e.g., 2740.00): ")
		if err == nil {
			fmt.Fprintf(m.out, "Using manual values: H=%.2f, L=%.2f\n", high, low)
			return domain.PricePair{High: high, Low: low}, nil
		}
	}
	if ctx.Err() != nil {
		return domain.PricePair{}, ctx.Err()
	}

	fmt.Fprintf(m.out, "Invalid input. Using defaults: H=%.2f, L=%.2f\n", DefaultManualHigh, DefaultManualLow)
	return domain.PricePair{High: DefaultManualHigh, Low: DefaultManualLow}, nil
}

// readLines owns the reader. A blocked read cannot be interrupted, so it runs
// apart from the callers, which wait on ctx as well.
func (m *ManualInput) readLines() {
	defer close(m.lines)
	for {
		text, err := m.in.ReadString('\n')
		m.lines <- inputLine{text: text, err: err}
		if err != nil {
			return
		}
	}
}

func (m *ManualInput) prompt(ctx context.Context, label string) (float64, error) {
	fmt.Fprint(m.out, label)
	m.once.Do(func() { go m.readLines() })

	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case line, ok := <-m.lines:
		if !ok {
			return 0, io.EOF
		}
		if line.err != nil && line.text == "" {
			return 0, line.err
		}
		return parseNumber(strings.TrimSpace(line.text))
	}
}
