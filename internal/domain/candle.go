package domain

type Candle struct {
	Time   int64   `json:"time"` // start, unix seconds
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// Prices returns the candle's high/low pair.
func (c Candle) Prices() PricePair {
	return PricePair{High: c.High, Low: c.Low}
}
