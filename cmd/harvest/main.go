package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

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
		Name:  "harvest",
		Usage: "ingest start.gg tournaments, events and sets into the database",
		Flags: append(app.WindowFlags(),
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "run against an in-memory store, nothing is persisted",
			},
		),
		Action: func(c *cli.Context) error {
			return harvest(c, cfg, logger)
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
			logger.Error("harvest failed", "error", msg)
		}
		return exitErr.ExitCode()
	default:
		logger.Error("harvest failed", "error", err)
		return exitConfig
	}
}

func harvest(c *cli.Context, cfg config.Config, logger *logging.Logger) error {
	window, err := app.WindowFromFlags(c)
	if err != nil {
		return cli.Exit(err.Error(), exitConfig)
	}
	dryRun := c.Bool("dry-run")
	if err := cfg.RequireStartGG(); err != nil {
		return cli.Exit(err.Error(), exitConfig)
	}
	if !dryRun {
		if err := cfg.RequireDB(); err != nil {
			return cli.Exit(err.Error(), exitConfig)
		}
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

	harvester, err := app.NewHarvester(ctx, cfg, logger, dryRun)
	if err != nil {
		return cli.Exit(fmt.Sprintf("build harvester: %v", err), exitFailure)
	}

	logger.InfoContext(ctx, "harvest started",
		"start_date", window.Start.Format("2006-01-02"),
		"end_date", window.End.Format("2006-01-02"),
		"country_code", window.CountryCode,
		"addr_state", window.AddrState,
		"dry_run", dryRun,
	)
	stats, runErr := harvester.Service.Run(ctx, window.TournamentFilter())

	interrupted := runErr != nil && ctx.Err() != nil && usecase.IsInterrupted(runErr)
	if interrupted {
		logger.Warn("saving before exiting")
	}

	// staged work is committed on every exit path
	closeErr := harvester.Close(context.WithoutCancel(ctx))
	if closeErr != nil {
		logger.Error("save failed", "error", closeErr)
	}

	switch {
	case interrupted && closeErr == nil:
		logger.Info("harvest interrupted", "sets_created", stats.SetsCreated, "events_imported", stats.EventsImported)
		return nil
	case runErr != nil:
		return cli.Exit(runErr.Error(), runFailureCode(runErr))
	case closeErr != nil:
		return cli.Exit("", exitFailure)
	}
	return nil
}

// runFailureCode maps a failed run onto the process exit code. Only a
// rejected run window counts as invalid input; bad source records fail the run.
func runFailureCode(err error) int {
	if errors.Is(err, usecase.ErrInvalidInput) && !errors.Is(err, usecase.ErrSourceData) {
		return exitConfig
	}
	return exitFailure
}
