package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/vitos/fib_bracket/internal/domain"
	"github.com/vitos/fib_bracket/internal/infrastructure/chart"
	"gopkg.in/yaml.v3"
)

const (
	EnvLogin    = "MT5_LOGIN"
	EnvPassword = "MT5_PASSWORD"
)

var validate = goValidator.New()

type TerminalConfig struct {
	URL     string  `yaml:"url" validate:"required,url"`
	Symbol  string  `yaml:"symbol" validate:"required"`
	LotSize float64 `yaml:"lot_size" validate:"gt=0"`
	Retries int     `yaml:"retries" validate:"gte=0"`
	// Credentials are never read from the file.
	Login    string `yaml:"-"`
	Password string `yaml:"-"`
}

type ChartConfig struct {
	Symbol           string           `yaml:"symbol" validate:"required"`
	Interval         string           `yaml:"interval" validate:"required"`
	UseCurrentCandle bool             `yaml:"use_current_candle"`
	TargetTime       string           `yaml:"target_time"`
	Location         string           `yaml:"location"`
	PriceRange       chart.PriceRange `yaml:"price_range"`
	RESTEndpoint     string           `yaml:"rest_endpoint"`
	WSEndpoint       string           `yaml:"ws_endpoint"`
	Live             bool             `yaml:"live"`
	PageTextFile     string           `yaml:"page_text_file"`
	// Manual prompts on stdin when every other source fails.
	Manual bool `yaml:"manual"`
}

type Config struct {
	Mode     domain.RunMode `yaml:"mode"`
	Terminal TerminalConfig `yaml:"terminal"`
	Chart    ChartConfig    `yaml:"chart"`
	Handoff  struct {
		TimeoutSec int `yaml:"timeout_sec" validate:"gt=0"`
	} `yaml:"handoff"`
	Logging struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"logging"`
	Storage struct {
		Path string `yaml:"path"`
	} `yaml:"storage"`
	Server struct {
		Port int `yaml:"port" validate:"gte=0,lte=65535"`
	} `yaml:"server"`
	Schedule struct {
		// Standard 5-field cron spec, evaluated in chart.location.
		Cron string `yaml:"cron"`
	} `yaml:"schedule"`
}

func Default() *Config {
	cfg := &Config{
		Mode: domain.ModeParallel,
		Terminal: TerminalConfig{
			URL:     "https://mt5.example.com/terminal",
			Symbol:  "GOLD.i#",
			LotSize: 0.01,
			Retries: 1,
		},
		Chart: ChartConfig{
			Symbol:           "XAUUSDT",
			Interval:         "30",
			UseCurrentCandle: true,
			TargetTime:       "05:30",
			Location:         "UTC",
			PriceRange:       chart.DefaultGoldRange,
			RESTEndpoint:     chart.BybitBaseURL,
			WSEndpoint:       chart.BybitWSURL,
			Manual:           true,
		},
	}
	cfg.Handoff.TimeoutSec = 120
	cfg.Logging.Level = "info"
	cfg.Storage.Path = "fibbracket.db"
	cfg.Server.Port = 8080
	cfg.Schedule.Cron = "1 6 * * 1-5"
	return cfg
}

// Load reads path over the defaults, then takes credentials from the
// environment (a .env file is loaded when present). A missing file is not
// an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", path, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return nil, err
	}

	_ = godotenv.Load()
	cfg.Terminal.Login = os.Getenv(EnvLogin)
	cfg.Terminal.Password = os.Getenv(EnvPassword)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if !c.Mode.Valid() {
		return fmt.Errorf("invalid mode %q", c.Mode)
	}
	if c.Chart.PriceRange.Min >= c.Chart.PriceRange.Max {
		return fmt.Errorf("invalid price_range: min %v >= max %v", c.Chart.PriceRange.Min, c.Chart.PriceRange.Max)
	}
	if !c.Chart.UseCurrentCandle {
		if _, err := time.Parse("15:04", c.Chart.TargetTime); err != nil {
			return fmt.Errorf("invalid target_time %q: %w", c.Chart.TargetTime, err)
		}
	}
	if _, err := c.Chart.TimeLocation(); err != nil {
		return err
	}
	return nil
}

func (c *Config) HandoffTimeout() time.Duration {
	return time.Duration(c.Handoff.TimeoutSec) * time.Second
}

func (c ChartConfig) TimeLocation() (*time.Location, error) {
	if c.Location == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Location)
	if err != nil {
		return nil, fmt.Errorf("invalid location %q: %w", c.Location, err)
	}
	return loc, nil
}
