package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/bracket-harvest/external/startgg"
	"github.com/riskibarqy/bracket-harvest/internal/config"
	"github.com/riskibarqy/bracket-harvest/internal/domain/tournament"
	"github.com/riskibarqy/bracket-harvest/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/bracket-harvest/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/bracket-harvest/internal/platform/logging"
	"github.com/riskibarqy/bracket-harvest/internal/platform/resilience"
	"github.com/riskibarqy/bracket-harvest/internal/usecase"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// session is a Store that commits whatever is staged on Close.
type session interface {
	usecase.Store
	Close(ctx context.Context) error
}

// Harvester is a fully wired harvest run.
type Harvester struct {
	Service *usecase.HarvestService
	session session
	db      *sqlx.DB
}

// NewHarvester wires the start.gg client and the persistence session. With
// dryRun the session is in-memory and no database is opened.
func NewHarvester(ctx context.Context, cfg config.Config, logger *logging.Logger, dryRun bool) (*Harvester, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if err := cfg.RequireStartGG(); err != nil {
		return nil, err
	}

	filter, err := tournament.NewEventFilter(cfg.HarvestEventDenylist)
	if err != nil {
		return nil, err
	}

	h := &Harvester{}
	if dryRun {
		logger.WarnContext(ctx, "dry run, nothing will be persisted")
		h.session = memory.NewSession()
	} else {
		db, err := OpenDB(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		h.db = db
		h.session = postgres.NewSession(db, logger)
	}

	ingestion := usecase.NewIngestionService(h.session, cfg.HarvestSetCommitBatch, logger)
	h.Service = usecase.NewHarvestService(
		NewStartGGClient(cfg, logger),
		ingestion,
		filter,
		usecase.HarvestConfig{
			SideMode:     cfg.HarvestSideMode,
			EventURLBase: cfg.HarvestEventURLBase,
		},
		logger,
	)
	return h, nil
}

// Close commits staged work and releases the pool.
func (h *Harvester) Close(ctx context.Context) error {
	return closeAll(ctx, h.session, h.db)
}

func NewStartGGClient(cfg config.Config, logger *logging.Logger) *startgg.Client {
	return startgg.NewClient(startgg.ClientConfig{
		HTTPClient: &http.Client{
			Timeout:   cfg.StartGGTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		BaseURL:            cfg.StartGGBaseURL,
		Token:              cfg.StartGGToken,
		MaxAttempts:        cfg.StartGGMaxAttempts,
		RetryDelay:         cfg.StartGGRetryDelay,
		RatePerMinute:      cfg.StartGGRatePerMinute,
		VideogameID:        cfg.StartGGVideogameID,
		TournamentsPerPage: cfg.StartGGTournamentsPerPage,
		SetsPerPage:        cfg.StartGGSetsPerPage,
		Logger:             logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.StartGGCircuitEnabled,
			FailureThreshold: cfg.StartGGCircuitFailureCount,
			OpenTimeout:      cfg.StartGGCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.StartGGCircuitHalfOpenMaxReq,
		},
	})
}

// Exporter is a wired export run reading through its own session.
type Exporter struct {
	Service *usecase.ExportService
	session session
	db      *sqlx.DB
}

func NewExporter(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Exporter, error) {
	db, err := OpenDB(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	s := postgres.NewSession(db, logger)
	return &Exporter{
		Service: usecase.NewExportService(s.Sets(), logger),
		session: s,
		db:      db,
	}, nil
}

func (e *Exporter) Close(ctx context.Context) error {
	return closeAll(ctx, e.session, e.db)
}

func closeAll(ctx context.Context, s session, db *sqlx.DB) error {
	var errs []error
	if s != nil {
		if err := s.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close session: %w", err))
		}
	}
	if db != nil {
		if err := db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close db: %w", err))
		}
	}
	return errors.Join(errs...)
}
