// Package memory is a process-local Store used for dry runs and tests.
// It keeps a committed snapshot next to the working copy so that a rollback
// behaves like a process dying before its next commit.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/riskibarqy/bracket-harvest/internal/domain/matchset"
	"github.com/riskibarqy/bracket-harvest/internal/domain/player"
	"github.com/riskibarqy/bracket-harvest/internal/domain/team"
	"github.com/riskibarqy/bracket-harvest/internal/domain/tournament"
)

type state struct {
	tournaments map[int64]tournament.Tournament
	events      map[int64]tournament.Event
	players     map[int64]player.Player
	teams       map[int64]team.Team
	sets        map[int64]matchset.Set
	nextTeamID  int64
}

func newState() state {
	return state{
		tournaments: make(map[int64]tournament.Tournament),
		events:      make(map[int64]tournament.Event),
		players:     make(map[int64]player.Player),
		teams:       make(map[int64]team.Team),
		sets:        make(map[int64]matchset.Set),
		nextTeamID:  1,
	}
}

func (s state) clone() state {
	return state{
		tournaments: maps.Clone(s.tournaments),
		events:      maps.Clone(s.events),
		players:     maps.Clone(s.players),
		teams:       maps.Clone(s.teams),
		sets:        maps.Clone(s.sets),
		nextTeamID:  s.nextTeamID,
	}
}

type Session struct {
	mu        sync.Mutex
	working   state
	committed state
	writes    int
	commits   int

	tournaments *TournamentRepository
	events      *EventRepository
	players     *PlayerRepository
	teams       *TeamRepository
	sets        *SetRepository
}

func NewSession() *Session {
	s := &Session{working: newState(), committed: newState()}
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

func (s *Session) Commit(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.committed = s.working.clone()
	s.commits++
	return nil
}

// Rollback drops every write since the last commit.
func (s *Session) Rollback() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.working = s.committed.clone()
	return nil
}

func (s *Session) Close(ctx context.Context) error {
	return s.Commit(ctx)
}

// Writes counts mutating statements since the session was created.
func (s *Session) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func (s *Session) Commits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commits
}

// CommittedCounts returns the number of durable rows per table.
func (s *Session) CommittedCounts() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return map[string]int{
		"tournaments": len(s.committed.tournaments),
		"events":      len(s.committed.events),
		"players":     len(s.committed.players),
		"teams":       len(s.committed.teams),
		"sets":        len(s.committed.sets),
	}
}

func (s *Session) write(fn func(st *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(&s.working); err != nil {
		return err
	}
	s.writes++
	return nil
}

func (s *Session) read(fn func(st *state)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.working)
}

func sortedKeys[V any](m map[int64]V) []int64 {
	return slices.Sorted(maps.Keys(m))
}
