package domain

import "time"

// OrderSide is the terminal's order type name.
type OrderSide string

const (
	SideBuyStop  OrderSide = "Buy Stop"
	SideSellStop OrderSide = "Sell Stop"
)

// OrderTypeValues maps the terminal's order type names to the option values of
// its order type <select>.
var OrderTypeValues = map[string]string{
	"Market Execution": "0",
	"Buy Limit":        "2",
	"Sell Limit":       "3",
	"Buy Stop":         "4",
	"Sell Stop":        "5",
	"Buy Stop Limit":   "6",
	"Sell Stop Limit":  "7",
}

// IsBuy reports whether the order is submitted with the Buy button.
func (s OrderSide) IsBuy() bool {
	return s == SideBuyStop
}

// OrderSpec is one pending order to place on the terminal.
type OrderSpec struct {
	Side       OrderSide `json:"side"`
	Symbol     string    `json:"symbol"`
	Entry      float64   `json:"entry"`
	TakeProfit float64   `json:"take_profit"`
	StopLoss   float64   `json:"stop_loss"`
	Volume     float64   `json:"volume"`
}

// OrderPair is the bracket: one Buy Stop and one Sell Stop.
type OrderPair struct {
	Buy  OrderSpec `json:"buy_stop"`
	Sell OrderSpec `json:"sell_stop"`
}

// Specs returns the orders in submission order, Buy Stop first.
func (p OrderPair) Specs() []OrderSpec {
	return []OrderSpec{p.Buy, p.Sell}
}

type OrderStatus string

const (
	OrderPlaced  OrderStatus = "placed"
	OrderFailed  OrderStatus = "failed"
	OrderSkipped OrderStatus = "skipped"
)

// OrderResult is what the terminal did with a spec.
type OrderResult struct {
	Spec     OrderSpec   `json:"spec"`
	Status   OrderStatus `json:"status"`
	Attempts int         `json:"attempts"`
	Error    string      `json:"error,omitempty"`
}

// RunMode selects how the chart and terminal sides of a run are scheduled.
type RunMode string

const (
	ModeParallel     RunMode = "parallel"
	ModeSequential   RunMode = "sequential"
	ModeChartOnly    RunMode = "chart-only"
	ModeTerminalOnly RunMode = "terminal-only"
)

func (m RunMode) Valid() bool {
	switch m {
	case ModeParallel, ModeSequential, ModeChartOnly, ModeTerminalOnly:
		return true
	}
	return false
}

// Run is one automation run, persisted for history.
type Run struct {
	ID         int64         `json:"id"`
	Mode       RunMode       `json:"mode"`
	Symbol     string        `json:"symbol"`
	Prices     PricePair     `json:"prices"`
	Levels     LevelSet      `json:"levels"`
	Degenerate bool          `json:"degenerate"`
	Orders     []OrderResult `json:"orders"`
	CreatedAt  time.Time     `json:"created_at"`
}
