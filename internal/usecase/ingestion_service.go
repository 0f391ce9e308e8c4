package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/bracket-harvest/internal/domain/matchset"
	"github.com/riskibarqy/bracket-harvest/internal/domain/player"
	"github.com/riskibarqy/bracket-harvest/internal/domain/team"
	"github.com/riskibarqy/bracket-harvest/internal/domain/tournament"
	"github.com/riskibarqy/bracket-harvest/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

const DefaultSetCommitBatch = 25

// IngestionService writes reconciled entities into one Store session.
// Entities with a natural id are looked up before insert; commits happen
// only where this service says so.
type IngestionService struct {
	store     Store
	batchSize int
	logger    *logging.Logger
}

func NewIngestionService(store Store, batchSize int, logger *logging.Logger) *IngestionService {
	if logger == nil {
		logger = logging.Default()
	}
	if batchSize <= 0 {
		batchSize = DefaultSetCommitBatch
	}
	return &IngestionService{
		store:     store,
		batchSize: batchSize,
		logger:    logger,
	}
}

// EnsureTournament returns the stored tournament, inserting it together
// with its events and committing when it is new.
func (s *IngestionService) EnsureTournament(ctx context.Context, item tournament.Tournament) (tournament.Tournament, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.EnsureTournament", attribute.Int64("tournament.id", item.ID))
	defer span.End()

	if err := item.Validate(); err != nil {
		return tournament.Tournament{}, false, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	stored, exists, err := s.store.Tournaments().GetByID(ctx, item.ID)
	if err != nil {
		return tournament.Tournament{}, false, fmt.Errorf("get tournament id=%d: %w", item.ID, err)
	}
	if exists {
		return stored, false, nil
	}

	if err := s.store.Tournaments().Create(ctx, item); err != nil {
		return tournament.Tournament{}, false, fmt.Errorf("create tournament id=%d: %w", item.ID, err)
	}
	for _, e := range item.Events {
		if _, _, err := s.EnsureEvent(ctx, e); err != nil {
			return tournament.Tournament{}, false, err
		}
	}
	if err := s.Commit(ctx); err != nil {
		return tournament.Tournament{}, false, err
	}

	item.Imported = false
	return item, true, nil
}

// EnsureEvent returns the stored event, inserting it when absent.
func (s *IngestionService) EnsureEvent(ctx context.Context, item tournament.Event) (tournament.Event, bool, error) {
	if err := item.Validate(); err != nil {
		return tournament.Event{}, false, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	stored, exists, err := s.store.Events().GetByID(ctx, item.ID)
	if err != nil {
		return tournament.Event{}, false, fmt.Errorf("get event id=%d: %w", item.ID, err)
	}
	if exists {
		return stored, false, nil
	}
	if err := s.store.Events().Create(ctx, item); err != nil {
		return tournament.Event{}, false, fmt.Errorf("create event id=%d: %w", item.ID, err)
	}
	item.Imported = false
	return item, true, nil
}

// EnsurePlayer inserts the player unless a row with its id exists.
func (s *IngestionService) EnsurePlayer(ctx context.Context, item player.Player) (bool, error) {
	if err := item.Validate(); err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	_, exists, err := s.store.Players().GetByID(ctx, item.ID)
	if err != nil {
		return false, fmt.Errorf("get player id=%d: %w", item.ID, err)
	}
	if exists {
		return false, nil
	}
	if err := s.store.Players().Create(ctx, item); err != nil {
		return false, fmt.Errorf("create player id=%d: %w", item.ID, err)
	}
	return true, nil
}

// CreateTeam always inserts a fresh team with the given members.
func (s *IngestionService) CreateTeam(ctx context.Context, playerIDs []int64) (team.Team, error) {
	if len(playerIDs) == 0 {
		return team.Team{}, fmt.Errorf("%w: team requires at least one player", ErrInvalidInput)
	}
	created, err := s.store.Teams().Create(ctx, playerIDs)
	if err != nil {
		return team.Team{}, fmt.Errorf("create team: %w", err)
	}
	return created, nil
}

// EventTeams returns the teams stored sets of the event already refer to.
func (s *IngestionService) EventTeams(ctx context.Context, eventID int64) ([]team.Team, error) {
	teams, err := s.store.Teams().ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list teams of event id=%d: %w", eventID, err)
	}
	return teams, nil
}

func (s *IngestionService) SetExists(ctx context.Context, setID int64) (bool, error) {
	exists, err := s.store.Sets().Exists(ctx, setID)
	if err != nil {
		return false, fmt.Errorf("check set id=%d: %w", setID, err)
	}
	return exists, nil
}

// WriteSet inserts a set the caller has checked with SetExists.
func (s *IngestionService) WriteSet(ctx context.Context, item matchset.Set) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.store.Sets().Create(ctx, item); err != nil {
		return fmt.Errorf("create set id=%d: %w", item.ID, err)
	}
	return nil
}

// MarkEventImported flags the event and commits.
func (s *IngestionService) MarkEventImported(ctx context.Context, eventID int64) error {
	if err := s.store.Events().MarkImported(ctx, eventID); err != nil {
		return fmt.Errorf("mark event id=%d imported: %w", eventID, err)
	}
	return s.Commit(ctx)
}

// MarkTournamentImported flags the tournament and commits.
func (s *IngestionService) MarkTournamentImported(ctx context.Context, tournamentID int64) error {
	if err := s.store.Tournaments().MarkImported(ctx, tournamentID); err != nil {
		return fmt.Errorf("mark tournament id=%d imported: %w", tournamentID, err)
	}
	return s.Commit(ctx)
}

func (s *IngestionService) Commit(ctx context.Context) error {
	if err := s.store.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// NewSetBatch starts counting newly written sets for one event.
func (s *IngestionService) NewSetBatch() *SetBatch {
	return &SetBatch{ingestion: s, size: s.batchSize}
}

// SetBatch commits after every size newly written sets.
type SetBatch struct {
	ingestion *IngestionService
	size      int
	written   int
	committed int
}

func (b *SetBatch) Add(ctx context.Context, item matchset.Set) error {
	if err := b.ingestion.WriteSet(ctx, item); err != nil {
		return err
	}
	b.written++
	if b.written%b.size == 0 {
		if err := b.ingestion.Commit(ctx); err != nil {
			return err
		}
		b.committed = b.written
		b.ingestion.logger.DebugContext(ctx, "set batch committed", "sets", b.written)
	}
	return nil
}

// Flush commits the remainder not covered by a full batch.
func (b *SetBatch) Flush(ctx context.Context) error {
	if b.written == b.committed {
		return nil
	}
	if err := b.ingestion.Commit(ctx); err != nil {
		return err
	}
	b.committed = b.written
	return nil
}

func (b *SetBatch) Written() int {
	return b.written
}
