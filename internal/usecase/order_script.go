package usecase

import (
	"fmt"
	"strconv"

	"github.com/vitos/fib_bracket/internal/domain"
)

// Selectors of the web terminal.
const (
	SelectorLogin       = `input[name="login"]`
	SelectorPassword    = `input[name="password"]`
	SelectorSearch      = `input[placeholder*='Search']`
	SelectorOrderType   = "select"
	SelectorVolume      = "text='Volume' >> xpath=following::input[1]"
	SelectorStopLoss    = "text='Stop Loss' >> xpath=following::input[1]"
	SelectorTakeProfit  = "text='Take Profit' >> xpath=following::input[1]"
	SelectorDialogClose = "button:has-text('OK')"
)

// OrderScript translates order specs into terminal UI intents.
type OrderScript struct {
	symbol string
}

func NewOrderScript(symbol string) *OrderScript {
	return &OrderScript{symbol: symbol}
}

// LoginScript opens the terminal and submits the credentials.
func LoginScript(url, login, password string) []domain.Intent {
	return []domain.Intent{
		{Kind: domain.IntentNavigate, Target: url},
		{Kind: domain.IntentWait, Target: SelectorLogin, Value: "30000"},
		{Kind: domain.IntentFill, Target: SelectorLogin, Value: login},
		{Kind: domain.IntentFill, Target: SelectorPassword, Value: password},
		{Kind: domain.IntentPress, Target: SelectorPassword, Value: "Enter"},
		{Kind: domain.IntentWait, Value: "10000"},
	}
}

// SelectSymbol searches the symbol list and picks the exact match.
func (s *OrderScript) SelectSymbol() []domain.Intent {
	return []domain.Intent{
		{Kind: domain.IntentClick, Target: SelectorSearch},
		{Kind: domain.IntentFill, Target: SelectorSearch, Value: ""},
		{Kind: domain.IntentFill, Target: SelectorSearch, Value: s.symbol},
		{Kind: domain.IntentWait, Value: "2000"},
		{Kind: domain.IntentClick, Target: fmt.Sprintf("text='%s'", s.symbol)},
	}
}

func (s *OrderScript) CloseDialogs() []domain.Intent {
	return []domain.Intent{
		{Kind: domain.IntentClick, Target: SelectorDialogClose},
		{Kind: domain.IntentWait, Value: "500"},
	}
}

// PlaceOrder is the full submission of one spec. The symbol is selected again
// first so a spec can be submitted (or retried) on its own.
func (s *OrderScript) PlaceOrder(spec domain.OrderSpec) ([]domain.Intent, error) {
	typeValue, ok := domain.OrderTypeValues[string(spec.Side)]
	if !ok {
		return nil, fmt.Errorf("unknown order type: %s", spec.Side)
	}
	button := "Sell"
	if spec.Side.IsBuy() {
		button = "Buy"
	}

	intents := s.CloseDialogs()
	intents = append(intents, s.SelectSymbol()...)
	intents = append(intents,
		domain.Intent{Kind: domain.IntentPress, Value: "F9"},
		domain.Intent{Kind: domain.IntentWait, Value: "2000"},
		domain.Intent{Kind: domain.IntentSelect, Target: SelectorOrderType, Value: typeValue},
		domain.Intent{Kind: domain.IntentFill, Target: SelectorVolume, Value: strconv.FormatFloat(spec.Volume, 'f', -1, 64)},
		domain.Intent{Kind: domain.IntentFill, Target: SelectorStopLoss, Value: formatPrice(spec.StopLoss)},
		domain.Intent{Kind: domain.IntentFill, Target: SelectorTakeProfit, Value: formatPrice(spec.TakeProfit)},
		domain.Intent{Kind: domain.IntentClick, Target: fmt.Sprintf("button:has-text('%s')", button)},
		domain.Intent{Kind: domain.IntentWait, Value: "2000"},
	)
	intents = append(intents, s.CloseDialogs()...)
	return intents, nil
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
