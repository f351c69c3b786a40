package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/neox5/sensorbox/internal/app"
	"github.com/neox5/sensorbox/internal/config"
	"github.com/neox5/sensorbox/internal/monitor"
	"github.com/neox5/sensorbox/internal/version"
)

func main() {
	cmd := &cli.Command{
		Name:    "sensorbox",
		Usage:   "Pluggable hardware and OS telemetry collector",
		Version: version.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to configuration file",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
			&cli.BoolFlag{
				Name:  "once",
				Usage: "run a single sampling pass and exit",
			},
		},
		Action: run,
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "print the metrics available on this system",
				Action: list,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func setup(cmd *cli.Command) (*app.App, *slog.Logger, error) {
	logLevel := slog.LevelInfo
	if cmd.Bool("debug") {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	cfg := config.Default()
	if path := cmd.String("config"); path != "" {
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	application, err := app.New(cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("initialization failed: %w", err)
	}
	return application, logger, nil
}

func run(ctx context.Context, cmd *cli.Command) error {
	application, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer application.Close()

	slog.Info("starting sensorbox",
		"version", version.String(),
		"watches", len(application.Watches.Bindings()))

	if cmd.Bool("once") {
		reportPass(application)
		return nil
	}

	shutdownCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	mon := monitor.New(30*time.Second, logger)
	if mon != nil {
		mon.Run(shutdownCtx)
		defer mon.Wait()
	}

	var wg sync.WaitGroup
	errChan := make(chan error, 1)

	if application.PrometheusExporter != nil {
		wg.Go(func() {
			if err := application.PrometheusExporter.Start(shutdownCtx); err != nil {
				errChan <- fmt.Errorf("prometheus exporter: %w", err)
			}
		})
	}

	// Poll at the watch list's interval GCD so every binding's due instant
	// falls on a tick. The per-binding due check stays authoritative.
	tick := application.Watches.Tick()
	if tick <= 0 {
		tick = time.Second
	}
	slog.Debug("driver tick computed", "tick", tick)

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

loop:
	for {
		select {
		case <-shutdownCtx.Done():
			break loop
		case err := <-errChan:
			slog.Error("exporter error", "error", err)
			stop()
		case <-ticker.C:
			for _, b := range application.Watches.Run(time.Now()) {
				logger.Info("update",
					"metric", b.Desc.Name(),
					"value", b.Value.String())
			}
		}
	}

	wg.Wait()
	slog.Info("shutdown complete")
	return nil
}

// reportPass samples every binding once and prints the results.
func reportPass(application *app.App) {
	application.Watches.Run(time.Now())
	for _, b := range application.Watches.Bindings() {
		fmt.Printf("%-24s %-10s %s\n", b.Desc.Name(), b.Desc.Kind.String(), b.Value.String())
	}
}

func list(ctx context.Context, cmd *cli.Command) error {
	application, _, err := setup(cmd)
	if err != nil {
		return err
	}
	defer application.Close()

	for _, d := range application.Registry.Descriptors() {
		fmt.Printf("%-24s %s\n", d.Name(), d.Kind.String())
	}
	return nil
}
