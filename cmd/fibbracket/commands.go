package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"github.com/vitos/fib_bracket/internal/config"
	"github.com/vitos/fib_bracket/internal/domain"
	"github.com/vitos/fib_bracket/internal/infrastructure/chart"
	"github.com/vitos/fib_bracket/internal/infrastructure/storage"
	"github.com/vitos/fib_bracket/internal/infrastructure/terminal"
	"github.com/vitos/fib_bracket/internal/usecase"
	"github.com/vitos/fib_bracket/internal/web"
	"go.uber.org/zap"
)

var (
	runMode      string
	scheduleSpec string

	levelsHigh float64
	levelsLow  float64
	levelsLot  float64
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Read the candle, compute levels and place the order bracket",
	RunE:  runWorkflow,
}

var levelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "Print levels and the planned orders for a given high/low",
	RunE:  printLevels,
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the workflow on a cron schedule until interrupted",
	RunE:  runSchedule,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the levels calculator and run history over HTTP",
	RunE:  serve,
}

func init() {
	runCmd.Flags().StringVarP(&runMode, "mode", "m", "", "parallel, sequential, chart-only or terminal-only (overrides config)")

	scheduleCmd.Flags().StringVar(&scheduleSpec, "cron", "", "cron spec (overrides schedule.cron)")

	levelsCmd.Flags().Float64Var(&levelsHigh, "high", 0, "candle high")
	levelsCmd.Flags().Float64Var(&levelsLow, "low", 0, "candle low")
	levelsCmd.Flags().Float64Var(&levelsLot, "lot", 0, "order volume (defaults to terminal.lot_size)")
	_ = levelsCmd.MarkFlagRequired("high")
	_ = levelsCmd.MarkFlagRequired("low")
}

func newPriceSource(cfg *config.Config, log *zap.Logger) (domain.PriceSource, error) {
	loc, err := cfg.Chart.TimeLocation()
	if err != nil {
		return nil, err
	}

	var sources []chart.NamedSource
	if cfg.Chart.PageTextFile != "" {
		sources = append(sources, chart.NamedSource{
			Name:   "page",
			Source: chart.NewTextSource(chart.FileText(cfg.Chart.PageTextFile), cfg.Chart.PriceRange),
		})
	}
	sources = append(sources, chart.NamedSource{
		Name: "bybit",
		Source: chart.NewBybitFeed(chart.FeedConfig{
			RESTEndpoint: cfg.Chart.RESTEndpoint,
			WSEndpoint:   cfg.Chart.WSEndpoint,
			Symbol:       cfg.Chart.Symbol,
			Interval:     cfg.Chart.Interval,
			UseCurrent:   cfg.Chart.UseCurrentCandle,
			TargetTime:   cfg.Chart.TargetTime,
			Location:     loc,
			Live:         cfg.Chart.Live,
		}, log),
	})
	if cfg.Chart.Manual {
		sources = append(sources, chart.NamedSource{
			Name:   "manual",
			Source: chart.NewManualInput(os.Stdin, os.Stdout),
		})
	}
	return chart.NewFallbackSource(log, sources...), nil
}

func newWorkflow(cfg *config.Config, log *zap.Logger, runs domain.RunRepository) (*usecase.Workflow, error) {
	prices, err := newPriceSource(cfg, log)
	if err != nil {
		return nil, err
	}
	return usecase.NewWorkflow(usecase.WorkflowConfig{
		Mode:           cfg.Mode,
		Symbol:         cfg.Terminal.Symbol,
		LotSize:        cfg.Terminal.LotSize,
		Retries:        cfg.Terminal.Retries,
		HandoffTimeout: cfg.HandoffTimeout(),
		TerminalURL:    cfg.Terminal.URL,
		Login:          cfg.Terminal.Login,
		Password:       cfg.Terminal.Password,
	}, prices, terminal.NewLogRunner(log), runs, log), nil
}

func runWorkflow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if runMode != "" {
		cfg.Mode = domain.RunMode(runMode)
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	log, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.NewSQLiteStore(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("failed to init sqlite: %w", err)
	}
	defer store.Close()

	wf, err := newWorkflow(cfg, log, store)
	if err != nil {
		return err
	}

	run, err := wf.Run(ctx)
	if run != nil {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, usecase.FormatLevels(run.Prices, run.Levels))
		fmt.Fprintln(out, usecase.FormatStatus(run.Levels))
		for _, o := range run.Orders {
			fmt.Fprintf(out, "%s: %s (attempts %d) %s\n", o.Spec.Side, o.Status, o.Attempts, o.Error)
		}
	}
	if err != nil {
		if usecase.IsTimeout(err) {
			log.Error("Levels did not arrive in time, no orders placed", zap.Error(err))
		}
		return err
	}
	return nil
}

func runSchedule(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if scheduleSpec != "" {
		cfg.Schedule.Cron = scheduleSpec
	}
	// Nobody is at the keyboard for a scheduled run.
	cfg.Chart.Manual = false

	loc, err := cfg.Chart.TimeLocation()
	if err != nil {
		return err
	}
	if _, err := cron.ParseStandard(cfg.Schedule.Cron); err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", cfg.Schedule.Cron, err)
	}

	log, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	defer log.Sync()

	store, err := storage.NewSQLiteStore(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("failed to init sqlite: %w", err)
	}
	defer store.Close()

	wf, err := newWorkflow(cfg, log, store)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := cron.New(cron.WithLocation(loc), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	id, err := c.AddFunc(cfg.Schedule.Cron, func() {
		run, err := wf.Run(ctx)
		if err != nil {
			log.Error("Scheduled run failed", zap.Error(err))
		}
		if run != nil {
			log.Info("Scheduled run saved", zap.Int64("run_id", run.ID), zap.Float64("entry", run.Levels.Entry))
		}
	})
	if err != nil {
		return err
	}

	c.Start()
	log.Info("Scheduler started", zap.String("cron", cfg.Schedule.Cron), zap.Time("next", c.Entry(id).Next))

	<-ctx.Done()
	log.Info("Stopping scheduler")
	<-c.Stop().Done()
	return nil
}

func printLevels(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	lot := cfg.Terminal.LotSize
	if cmd.Flags().Changed("lot") {
		if levelsLot <= 0 {
			return fmt.Errorf("lot must be positive, got %v", levelsLot)
		}
		lot = levelsLot
	}

	prices := domain.PricePair{High: levelsHigh, Low: levelsLow}
	if err := prices.Validate(); err != nil {
		return err
	}
	levels := usecase.ComputeLevels(prices.High, prices.Low)
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, usecase.FormatLevels(prices, levels))
	if err := usecase.CheckRange(levels); err != nil {
		fmt.Fprintf(out, "WARNING: %v\n", err)
	}

	pair := usecase.NewOrderPlanner(cfg.Terminal.Symbol, lot).Plan(levels)
	fmt.Fprintln(out)
	for _, o := range pair.Specs() {
		fmt.Fprintf(out, "%s %s: entry %.2f, TP %.2f, SL %.2f, volume %g\n",
			o.Side, o.Symbol, o.Entry, o.TakeProfit, o.StopLoss, o.Volume)
	}
	return nil
}

func serve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	defer log.Sync()

	store, err := storage.NewSQLiteStore(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("failed to init sqlite: %w", err)
	}
	defer store.Close()

	planner := usecase.NewOrderPlanner(cfg.Terminal.Symbol, cfg.Terminal.LotSize)
	srv := web.NewServer(cfg.Server.Port, store, planner, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down web server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
