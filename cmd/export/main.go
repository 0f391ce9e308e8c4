package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/riskibarqy/bracket-harvest/internal/app"
	"github.com/riskibarqy/bracket-harvest/internal/config"
	"github.com/riskibarqy/bracket-harvest/internal/observability"
	"github.com/riskibarqy/bracket-harvest/internal/platform/logging"
	"github.com/riskibarqy/bracket-harvest/internal/usecase"
	"github.com/urfave/cli/v2"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitConfig  = 2
)

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return exitConfig
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	cliApp := &cli.App{
		Name:  "export",
		Usage: "write persisted sets of a window to a CSV file",
		Flags: append(app.WindowFlags(),
			&cli.StringFlag{
				Name:  "out-suffix",
				Usage: "appended to the output file name: <dir>/<timestamp>-<suffix>.csv",
			},
			&cli.StringFlag{
				Name:  "output-dir",
				Value: cfg.ExportOutputDir,
				Usage: "directory the CSV is written to",
			},
		),
		Action: func(c *cli.Context) error {
			return export(c, cfg, logger)
		},
		ExitErrHandler: func(*cli.Context, error) {},
	}

	err = cliApp.Run(args)
	var exitErr cli.ExitCoder
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &exitErr):
		if msg := exitErr.Error(); msg != "" {
			logger.Error("export failed", "error", msg)
		}
		return exitErr.ExitCode()
	default:
		logger.Error("export failed", "error", err)
		return exitConfig
	}
}

func export(c *cli.Context, cfg config.Config, logger *logging.Logger) error {
	window, err := app.WindowFromFlags(c)
	if err != nil {
		return cli.Exit(err.Error(), exitConfig)
	}
	if err := cfg.RequireDB(); err != nil {
		return cli.Exit(err.Error(), exitConfig)
	}

	shutdown, err := observability.Setup(cfg, logger)
	if err != nil {
		return cli.Exit(err.Error(), exitConfig)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Warn("observability shutdown failed", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	exporter, err := app.NewExporter(ctx, cfg, logger)
	if err != nil {
		return cli.Exit(fmt.Sprintf("build exporter: %v", err), exitFailure)
	}
	defer func() {
		if err := exporter.Close(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("close exporter failed", "error", err)
		}
	}()

	path := outputPath(c.String("output-dir"), c.String("out-suffix"), time.Now())
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return cli.Exit(fmt.Sprintf("create output dir: %v", err), exitFailure)
	}
	file, err := os.Create(path)
	if err != nil {
		return cli.Exit(fmt.Sprintf("create output file: %v", err), exitFailure)
	}

	started := time.Now()
	count, err := exporter.Service.Export(ctx, window.ExportQuery(), file)
	if closeErr := file.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("close output file: %w", closeErr)
	}
	if err != nil {
		_ = os.Remove(path)
		if errors.Is(err, usecase.ErrInvalidInput) {
			return cli.Exit(err.Error(), exitConfig)
		}
		return cli.Exit(err.Error(), exitFailure)
	}

	fmt.Fprintf(c.App.Writer, "> Fetched %d sets, delta time: %s\n", count, time.Since(started).Round(time.Millisecond))
	fmt.Fprintf(c.App.Writer, "> Exported data to %s\n", path)
	return nil
}

func outputPath(dir, suffix string, now time.Time) string {
	if strings.TrimSpace(dir) == "" {
		dir = "output"
	}
	name := strconv.FormatInt(now.Unix(), 10)
	if suffix = strings.TrimSpace(suffix); suffix != "" {
		name += "-" + suffix
	}
	return filepath.Join(dir, name+".csv")
}
