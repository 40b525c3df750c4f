package domain

import (
	"context"
	"errors"
)

// ErrNoPrices is returned by a PriceSource that could not find a high/low pair.
var ErrNoPrices = errors.New("no prices found")

// PriceSource yields the candle high/low the levels are computed from.
type PriceSource interface {
	ReadPrices(ctx context.Context) (PricePair, error)
}

type IntentKind string

const (
	IntentNavigate IntentKind = "navigate"
	IntentClick    IntentKind = "click"
	IntentFill     IntentKind = "fill"
	IntentPress    IntentKind = "press"
	IntentSelect   IntentKind = "select"
	IntentWait     IntentKind = "wait"
)

// Intent is a single UI action for the terminal driver.
type Intent struct {
	Kind   IntentKind `json:"kind"`
	Target string     `json:"target,omitempty"`
	Value  string     `json:"value,omitempty"`
}

// IntentRunner executes UI intents against the trading terminal.
type IntentRunner interface {
	Run(ctx context.Context, intents []Intent) error
}

// RunRepository defines storage operations for automation runs.
type RunRepository interface {
	SaveRun(ctx context.Context, run *Run) (int64, error)
	GetRun(ctx context.Context, id int64) (*Run, error)
	ListRuns(ctx context.Context, limit int) ([]*Run, error)
}
