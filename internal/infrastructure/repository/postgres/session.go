package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/bracket-harvest/internal/domain/matchset"
	"github.com/riskibarqy/bracket-harvest/internal/domain/player"
	"github.com/riskibarqy/bracket-harvest/internal/domain/team"
	"github.com/riskibarqy/bracket-harvest/internal/domain/tournament"
	"github.com/riskibarqy/bracket-harvest/internal/platform/logging"
)

// Session is the single transactional scope of a run. A transaction is
// opened on the first statement and stays open until Commit, so every
// repository handed out by the session writes into the same unit of work.
//
// Statements and the transaction itself are detached from caller
// cancellation: an interrupt must leave staged rows committable.
type Session struct {
	db     *sqlx.DB
	tx     *sqlx.Tx
	logger *logging.Logger

	tournaments *TournamentRepository
	events      *EventRepository
	players     *PlayerRepository
	teams       *TeamRepository
	sets        *SetRepository
}

func NewSession(db *sqlx.DB, logger *logging.Logger) *Session {
	if logger == nil {
		logger = logging.Default()
	}
	s := &Session{db: db, logger: logger}
	s.tournaments = &TournamentRepository{session: s}
	s.events = &EventRepository{session: s}
	s.players = &PlayerRepository{session: s}
	s.teams = &TeamRepository{session: s}
	s.sets = &SetRepository{session: s}
	return s
}

func (s *Session) Tournaments() tournament.Repository { return s.tournaments }
func (s *Session) Events() tournament.EventRepository { return s.events }
func (s *Session) Players() player.Repository { return s.players }
func (s *Session) Teams() team.Repository { return s.teams }
func (s *Session) Sets() matchset.Repository { return s.sets }

// Commit makes every statement since the previous commit durable.
func (s *Session) Commit(ctx context.Context) error {
	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx = nil
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit session tx: %w", err)
	}
	s.logger.DebugContext(ctx, "session committed")
	return nil
}

// Rollback discards statements since the previous commit.
func (s *Session) Rollback() error {
	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx = nil
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("rollback session tx: %w", err)
	}
	return nil
}

// Close commits whatever is staged. The pool is owned by the caller.
func (s *Session) Close(ctx context.Context) error {
	if err := s.Commit(ctx); err != nil {
		_ = s.Rollback()
		return err
	}
	return nil
}

// conn returns the open transaction, beginning one when needed, and a
// statement context that ignores cancellation of ctx.
func (s *Session) conn(ctx context.Context) (context.Context, *sqlx.Tx, error) {
	ctx = context.WithoutCancel(ctx)
	if s.tx != nil {
		return ctx, s.tx, nil
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return ctx, nil, fmt.Errorf("begin session tx: %w", err)
	}
	s.tx = tx
	return ctx, tx, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func nullString(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}

func nullInt64(value int64) sql.NullInt64 {
	return sql.NullInt64{Int64: value, Valid: value > 0}
}

func nullIntPtr(value *int) sql.NullInt32 {
	if value == nil {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: int32(*value), Valid: true}
}

func intPtrFromNull(value sql.NullInt32) *int {
	if !value.Valid {
		return nil
	}
	v := int(value.Int32)
	return &v
}
