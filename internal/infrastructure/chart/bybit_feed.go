package chart

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/gorilla/websocket"
	"github.com/vitos/fib_bracket/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	BybitBaseURL = "https://api.bybit.com"
	BybitWSURL   = "wss://stream.bybit.com/v5/public/linear"
)

type FeedConfig struct {
	RESTEndpoint string
	WSEndpoint   string
	Category     string
	Symbol       string
	Interval     string // minutes, e.g. "30"
	// UseCurrent picks the live candle; otherwise the candle starting at
	// TargetTime ("HH:MM" in Location) is used.
	UseCurrent bool
	TargetTime string
	Location   *time.Location
	Lookback   int
	Live       bool // follow the kline stream for the current candle
	Timeout    time.Duration
	// MaxRequestPerMinute paces REST calls; Bybit allows far more.
	MaxRequestPerMinute int
}

// BybitFeed reads candle high/low from Bybit v5 market data.
type BybitFeed struct {
	cfg            FeedConfig
	client         *resty.Client
	requestLimiter *rate.Limiter
	logger         *zap.Logger
}

func NewBybitFeed(cfg FeedConfig, logger *zap.Logger) *BybitFeed {
	if cfg.RESTEndpoint == "" {
		cfg.RESTEndpoint = BybitBaseURL
	}
	if cfg.WSEndpoint == "" {
		cfg.WSEndpoint = BybitWSURL
	}
	if cfg.Category == "" {
		cfg.Category = "linear"
	}
	if cfg.Lookback <= 0 {
		cfg.Lookback = 200
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRequestPerMinute <= 0 {
		cfg.MaxRequestPerMinute = 120
	}

	client := resty.New().
		SetBaseURL(cfg.RESTEndpoint).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")

	secondsPerRequest := time.Minute / time.Duration(cfg.MaxRequestPerMinute)
	return &BybitFeed{
		cfg:            cfg,
		client:         client,
		requestLimiter: rate.NewLimiter(rate.Every(secondsPerRequest), 1),
		logger:         logger,
	}
}

type klineResponse struct {
	RetCode int    `json:"retCode"`
	RetMsg  string `json:"retMsg"`
	Result  struct {
		List [][]string `json:"list"`
	} `json:"result"`
}

// GetCandles returns up to limit candles, oldest first.
func (f *BybitFeed) GetCandles(ctx context.Context, limit int) ([]domain.Candle, error) {
	if err := f.requestLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	var result klineResponse
	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"category": f.cfg.Category,
			"symbol":   f.cfg.Symbol,
			"interval": f.cfg.Interval,
			"limit":    strconv.Itoa(limit),
		}).
		SetResult(&result).
		Get("/v5/market/kline")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch klines: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("kline API error: status %d: %s", resp.StatusCode(), resp.String())
	}
	if result.RetCode != 0 {
		return nil, fmt.Errorf("bybit kline error: %d %s", result.RetCode, result.RetMsg)
	}

	var candles []domain.Candle
	for _, raw := range result.Result.List {
		// Format: [startTime, open, high, low, close, volume, turnover]
		if len(raw) < 6 {
			continue
		}
		ts, _ := strconv.ParseInt(raw[0], 10, 64)
		open, _ := strconv.ParseFloat(raw[1], 64)
		high, _ := strconv.ParseFloat(raw[2], 64)
		low, _ := strconv.ParseFloat(raw[3], 64)
		closePrice, _ := strconv.ParseFloat(raw[4], 64)
		volume, _ := strconv.ParseFloat(raw[5], 64)

		candles = append(candles, domain.Candle{
			Time:   ts / 1000,
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closePrice,
			Volume: volume,
		})
	}

	// Bybit returns newest first.
	for i, j := 0, len(candles)-1; i < j; i, j = i+1, j-1 {
		candles[i], candles[j] = candles[j], candles[i]
	}
	return candles, nil
}

// SelectCandle picks the latest candle, or with useCurrent false the most
// recent one whose start time in loc is target ("HH:MM").
func SelectCandle(candles []domain.Candle, useCurrent bool, target string, loc *time.Location) (domain.Candle, error) {
	if len(candles) == 0 {
		return domain.Candle{}, fmt.Errorf("%w: no candles", domain.ErrNoPrices)
	}
	if useCurrent {
		return candles[len(candles)-1], nil
	}

	at, err := time.Parse("15:04", target)
	if err != nil {
		return domain.Candle{}, fmt.Errorf("invalid target time %q: %w", target, err)
	}
	if loc == nil {
		loc = time.UTC
	}
	for i := len(candles) - 1; i >= 0; i-- {
		t := time.Unix(candles[i].Time, 0).In(loc)
		if t.Hour() == at.Hour() && t.Minute() == at.Minute() {
			return candles[i], nil
		}
	}
	return domain.Candle{}, fmt.Errorf("%w: no candle at %s", domain.ErrNoPrices, target)
}

func (f *BybitFeed) ReadPrices(ctx context.Context) (domain.PricePair, error) {
	if f.cfg.Live && f.cfg.UseCurrent {
		p, err := f.StreamCurrent(ctx)
		if err == nil {
			return p, nil
		}
		f.logger.Warn("Kline stream failed, using REST", zap.Error(err))
	}

	candles, err := f.GetCandles(ctx, f.cfg.Lookback)
	if err != nil {
		return domain.PricePair{}, err
	}
	c, err := SelectCandle(candles, f.cfg.UseCurrent, f.cfg.TargetTime, f.cfg.Location)
	if err != nil {
		return domain.PricePair{}, err
	}
	f.logger.Debug("Candle selected", zap.Int64("time", c.Time), zap.Float64("high", c.High), zap.Float64("low", c.Low))
	return c.Prices(), nil
}

type klineEvent struct {
	Topic string `json:"topic"`
	Data  []struct {
		Start   int64  `json:"start"`
		High    string `json:"high"`
		Low     string `json:"low"`
		Confirm bool   `json:"confirm"`
	} `json:"data"`
}

func (f *BybitFeed) topic() string {
	return fmt.Sprintf("kline.%s.%s", f.cfg.Interval, f.cfg.Symbol)
}

// StreamCurrent subscribes to the kline topic and returns the high/low of the
// first update for the live candle.
func (f *BybitFeed) StreamCurrent(ctx context.Context) (domain.PricePair, error) {
	ctx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, f.cfg.WSEndpoint, nil)
	if err != nil {
		return domain.PricePair{}, err
	}
	defer conn.Close()

	// ReadMessage does not take a context; closing the conn unblocks it.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	topic := f.topic()
	sub := map[string]interface{}{"op": "subscribe", "args": []string{topic}}
	if err := conn.WriteJSON(sub); err != nil {
		return domain.PricePair{}, err
	}

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return domain.PricePair{}, ctx.Err()
			}
			return domain.PricePair{}, err
		}

		var event klineEvent
		if err := json.Unmarshal(message, &event); err != nil {
			f.logger.Debug("WS unmarshal error", zap.Error(err))
			continue
		}
		if !strings.EqualFold(event.Topic, topic) || len(event.Data) == 0 {
			continue
		}

		k := event.Data[len(event.Data)-1]
		high, err := strconv.ParseFloat(k.High, 64)
		if err != nil {
			continue
		}
		low, err := strconv.ParseFloat(k.Low, 64)
		if err != nil {
			continue
		}
		return domain.PricePair{High: high, Low: low}, nil
	}
}
