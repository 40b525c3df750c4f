package usecase

import "github.com/vitos/fib_bracket/internal/domain"

// OrderPlanner turns a level set into the Buy Stop / Sell Stop bracket.
// The mapping is fixed: both orders stop out at the entry level, the Buy Stop
// takes profit at 1.5 and the Sell Stop at -0.5.
type OrderPlanner struct {
	symbol  string
	lotSize float64
}

func NewOrderPlanner(symbol string, lotSize float64) *OrderPlanner {
	return &OrderPlanner{symbol: symbol, lotSize: lotSize}
}

func (p *OrderPlanner) Plan(levels domain.LevelSet) domain.OrderPair {
	pair := PlanOrders(levels, p.lotSize)
	pair.Buy.Symbol = p.symbol
	pair.Sell.Symbol = p.symbol
	return pair
}

// PlanOrders derives both order specs from levels with a fixed volume.
func PlanOrders(levels domain.LevelSet, lotSize float64) domain.OrderPair {
	return domain.OrderPair{
		Buy: domain.OrderSpec{
			Side:       domain.SideBuyStop,
			Entry:      levels.Entry,
			TakeProfit: levels.Above,
			StopLoss:   levels.Entry,
			Volume:     lotSize,
		},
		Sell: domain.OrderSpec{
			Side:       domain.SideSellStop,
			Entry:      levels.Entry,
			TakeProfit: levels.Below,
			StopLoss:   levels.Entry,
			Volume:     lotSize,
		},
	}
}
