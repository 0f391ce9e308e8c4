package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/riskibarqy/bracket-harvest/internal/domain/matchset"
	"github.com/riskibarqy/bracket-harvest/internal/domain/tournament"
	"github.com/riskibarqy/bracket-harvest/internal/platform/logging"
	"github.com/riskibarqy/bracket-harvest/internal/platform/pagination"
	"go.opentelemetry.io/otel/attribute"
)

const DefaultEventURLBase = "https://start.gg"

type HarvestConfig struct {
	SideMode     matchset.SideKind
	EventURLBase string
}

// RunStats summarizes one harvest run.
type RunStats struct {
	TournamentsSeen     int
	TournamentsSkipped  int
	TournamentsImported int
	EventsImported      int
	EventsSkipped       int
	SetsCreated         int
	SetsSkipped         int
	PlayersCreated      int
	TeamsCreated        int
}

// HarvestService walks tournaments, events and sets in order and records
// progress with imported flags so a rerun skips finished work.
type HarvestService struct {
	source    TournamentSource
	ingestion *IngestionService
	filter    tournament.EventFilter
	cfg       HarvestConfig
	logger    *logging.Logger
}

func NewHarvestService(
	source TournamentSource,
	ingestion *IngestionService,
	filter tournament.EventFilter,
	cfg HarvestConfig,
	logger *logging.Logger,
) *HarvestService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.SideMode == "" {
		cfg.SideMode = matchset.SideTeam
	}
	cfg.EventURLBase = strings.TrimRight(strings.TrimSpace(cfg.EventURLBase), "/")
	if cfg.EventURLBase == "" {
		cfg.EventURLBase = DefaultEventURLBase
	}

	return &HarvestService{
		source:    source,
		ingestion: ingestion,
		filter:    filter,
		cfg:       cfg,
		logger:    logger,
	}
}

// Run ingests every tournament the source returns for filter. It stops at
// the first error; work committed before that point stays committed.
func (s *HarvestService) Run(ctx context.Context, filter TournamentFilter) (RunStats, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.HarvestService.Run")
	defer span.End()

	var stats RunStats
	if err := validateInput(ctx, filter); err != nil {
		return stats, err
	}

	fetch := func(ctx context.Context, page int) (pagination.Page[ExternalTournament], error) {
		return s.source.FetchTournamentsPage(ctx, filter, page)
	}
	for ext, err := range pagination.All(ctx, fetch, s.logger, "tournaments") {
		if err != nil {
			recordSpanError(span, err)
			return stats, err
		}
		stats.TournamentsSeen++

		if err := s.harvestTournament(ctx, ext, &stats); err != nil {
			if errors.Is(err, ErrInvalidInput) {
				err = fmt.Errorf("%w: tournament %d: %v", ErrSourceData, ext.ExternalID, err)
			}
			recordSpanError(span, err)
			return stats, err
		}
	}

	s.logger.InfoContext(ctx, "harvest run finished",
		"tournaments_seen", stats.TournamentsSeen,
		"tournaments_imported", stats.TournamentsImported,
		"tournaments_skipped", stats.TournamentsSkipped,
		"events_imported", stats.EventsImported,
		"events_skipped", stats.EventsSkipped,
		"sets_created", stats.SetsCreated,
		"sets_skipped", stats.SetsSkipped,
		"players_created", stats.PlayersCreated,
		"teams_created", stats.TeamsCreated,
	)
	return stats, nil
}

func (s *HarvestService) harvestTournament(ctx context.Context, ext ExternalTournament, stats *RunStats) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	item, err := mapExternalTournament(ext)
	if err != nil {
		return err
	}

	stored, _, err := s.ingestion.EnsureTournament(ctx, item)
	if err != nil {
		return err
	}
	if stored.Imported {
		stats.TournamentsSkipped++
		s.logger.DebugContext(ctx, "tournament already imported", "tournament_id", item.ID)
		return nil
	}

	ctx, span := startUsecaseSpan(ctx, "usecase.HarvestService.harvestTournament", attribute.Int64("tournament.id", item.ID))
	defer span.End()

	s.logger.InfoContext(ctx, "harvesting tournament", "tournament_id", item.ID, "name", item.Name, "events", len(item.Events))
	for _, fetched := range item.Events {
		event, _, err := s.ingestion.EnsureEvent(ctx, fetched)
		if err != nil {
			return err
		}
		if event.Imported {
			stats.EventsSkipped++
			continue
		}
		if reason := s.filter.SkipReason(event); reason != "" {
			stats.EventsSkipped++
			s.logger.DebugContext(ctx, "skipping event", "event_id", event.ID, "slug", event.SlugTail(), "reason", reason)
			continue
		}

		if err := s.harvestEvent(ctx, event, stats); err != nil {
			recordSpanError(span, err)
			return fmt.Errorf("harvest event id=%d: %w", event.ID, err)
		}
		if err := s.ingestion.MarkEventImported(ctx, event.ID); err != nil {
			return err
		}
		stats.EventsImported++
	}

	if err := s.ingestion.MarkTournamentImported(ctx, item.ID); err != nil {
		return err
	}
	stats.TournamentsImported++
	return nil
}

func (s *HarvestService) harvestEvent(ctx context.Context, event tournament.Event, stats *RunStats) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.HarvestService.harvestEvent", attribute.Int64("event.id", event.ID))
	defer span.End()

	s.logger.InfoContext(ctx, fmt.Sprintf("EVENT [%d] : %s/%s", event.ID, s.cfg.EventURLBase, event.Slug))

	reconciler := NewSetReconciler(s.ingestion, s.cfg.SideMode)
	if s.cfg.SideMode != matchset.SidePlayer {
		stored, err := s.ingestion.EventTeams(ctx, event.ID)
		if err != nil {
			return err
		}
		reconciler.UseTeams(stored)
		if len(stored) > 0 {
			s.logger.DebugContext(ctx, "resuming event with stored teams", "event_id", event.ID, "teams", len(stored))
		}
	}
	batch := s.ingestion.NewSetBatch()
	defer func() {
		stats.SetsCreated += batch.Written()
		stats.PlayersCreated += reconciler.NewPlayers()
		stats.TeamsCreated += reconciler.NewTeams()
	}()

	fetch := func(ctx context.Context, page int) (pagination.Page[ExternalSet], error) {
		return s.source.FetchEventSetsPage(ctx, event.ID, page)
	}
	for raw, err := range pagination.All(ctx, fetch, s.logger, "sets") {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		exists, err := s.ingestion.SetExists(ctx, raw.ExternalID)
		if err != nil {
			return err
		}
		if exists {
			stats.SetsSkipped++
			continue
		}

		item, err := reconciler.Reconcile(ctx, event.ID, raw)
		if err != nil {
			return err
		}
		if err := batch.Add(ctx, item); err != nil {
			return err
		}
	}

	return batch.Flush(ctx)
}

func mapExternalTournament(ext ExternalTournament) (tournament.Tournament, error) {
	item := tournament.Tournament{
		ID:          ext.ExternalID,
		Name:        strings.TrimSpace(ext.Name),
		URL:         strings.TrimSpace(ext.URL),
		City:        strings.TrimSpace(ext.City),
		CountryCode: strings.TrimSpace(ext.CountryCode),
		AddrState:   strings.TrimSpace(ext.AddrState),
		Events:      make([]tournament.Event, 0, len(ext.Events)),
	}
	for _, e := range ext.Events {
		state, err := tournament.ParseActivityState(e.State)
		if err != nil {
			return tournament.Tournament{}, fmt.Errorf("%w: tournament %d event %d: %v", ErrSourceData, ext.ExternalID, e.ExternalID, err)
		}
		item.Events = append(item.Events, tournament.Event{
			ID:           e.ExternalID,
			TournamentID: ext.ExternalID,
			Name:         strings.TrimSpace(e.Name),
			NumEntrants:  e.NumEntrants,
			Slug:         strings.TrimSpace(e.Slug),
			StartAt:      e.StartAt.UTC(),
			State:        state,
		})
	}
	return item, nil
}

// IsInterrupted reports whether err came from the run being cancelled.
func IsInterrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

