package usecase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitos/fib_bracket/internal/domain"
	"github.com/vitos/fib_bracket/internal/usecase"
)

func findIntent(intents []domain.Intent, kind domain.IntentKind, target string) (domain.Intent, bool) {
	for _, in := range intents {
		if in.Kind == kind && in.Target == target {
			return in, true
		}
	}
	return domain.Intent{}, false
}

func TestOrderScript_PlaceOrder(t *testing.T) {
	script := usecase.NewOrderScript("GOLD.i#")
	pair := usecase.NewOrderPlanner("GOLD.i#", 0.01).Plan(usecase.ComputeLevels(2750, 2740))

	tests := []struct {
		name      string
		spec      domain.OrderSpec
		typeValue string
		button    string
		tp        string
	}{
		{"Buy Stop", pair.Buy, "4", "button:has-text('Buy')", "2755.00"},
		{"Sell Stop", pair.Sell, "5", "button:has-text('Sell')", "2735.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intents, err := script.PlaceOrder(tt.spec)
			require.NoError(t, err)

			sel, ok := findIntent(intents, domain.IntentSelect, usecase.SelectorOrderType)
			require.True(t, ok)
			assert.Equal(t, tt.typeValue, sel.Value)

			vol, ok := findIntent(intents, domain.IntentFill, usecase.SelectorVolume)
			require.True(t, ok)
			assert.Equal(t, "0.01", vol.Value)

			sl, ok := findIntent(intents, domain.IntentFill, usecase.SelectorStopLoss)
			require.True(t, ok)
			assert.Equal(t, "2745.00", sl.Value)

			tp, ok := findIntent(intents, domain.IntentFill, usecase.SelectorTakeProfit)
			require.True(t, ok)
			assert.Equal(t, tt.tp, tp.Value)

			_, ok = findIntent(intents, domain.IntentClick, tt.button)
			assert.True(t, ok)

			// Symbol is re-selected before the order dialog opens.
			_, ok = findIntent(intents, domain.IntentClick, "text='GOLD.i#'")
			assert.True(t, ok)
		})
	}
}

func TestOrderScript_UnknownSide(t *testing.T) {
	_, err := usecase.NewOrderScript("GOLD.i#").PlaceOrder(domain.OrderSpec{Side: "Trailing Stop"})
	assert.Error(t, err)
}

func TestLoginScript(t *testing.T) {
	intents := usecase.LoginScript("https://terminal.example/terminal", "309693342", "secret")
	require.NotEmpty(t, intents)
	assert.Equal(t, domain.IntentNavigate, intents[0].Kind)

	login, ok := findIntent(intents, domain.IntentFill, usecase.SelectorLogin)
	require.True(t, ok)
	assert.Equal(t, "309693342", login.Value)

	pass, ok := findIntent(intents, domain.IntentFill, usecase.SelectorPassword)
	require.True(t, ok)
	assert.Equal(t, "secret", pass.Value)
}
