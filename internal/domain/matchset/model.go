package matchset

import (
	"fmt"
	"time"

	"github.com/riskibarqy/bracket-harvest/internal/domain/player"
)

// SideKind selects which entity owns a side of a set.
type SideKind string

const (
	SideTeam   SideKind = "team"
	SidePlayer SideKind = "player"
)

func ParseSideKind(value string) (SideKind, error) {
	switch SideKind(value) {
	case SideTeam, SidePlayer:
		return SideKind(value), nil
	default:
		return "", fmt.Errorf("invalid side kind: %q", value)
	}
}

// Side references either a single player or a team of players.
type Side struct {
	Kind     SideKind
	PlayerID int64
	TeamID   int64
}

func PlayerSide(playerID int64) Side {
	return Side{Kind: SidePlayer, PlayerID: playerID}
}

func TeamSide(teamID int64) Side {
	return Side{Kind: SideTeam, TeamID: teamID}
}

func (s Side) Validate() error {
	switch s.Kind {
	case SidePlayer:
		if s.PlayerID <= 0 || s.TeamID != 0 {
			return fmt.Errorf("player side requires only a player id")
		}
	case SideTeam:
		if s.TeamID <= 0 || s.PlayerID != 0 {
			return fmt.Errorf("team side requires only a team id")
		}
	default:
		return fmt.Errorf("invalid side kind: %q", s.Kind)
	}
	return nil
}

// Set is one match. Winner and loser were assigned from the slot scores.
type Set struct {
	ID          int64
	EventID     int64
	WinnerSeed  *int
	LoserSeed   *int
	WinnerScore int
	LoserScore  int
	Winner      Side
	Loser       Side
	CreatedAt   time.Time
}

func (s Set) Validate() error {
	if s.ID <= 0 {
		return fmt.Errorf("set id is required")
	}
	if s.EventID <= 0 {
		return fmt.Errorf("set %d event id is required", s.ID)
	}
	if err := s.Winner.Validate(); err != nil {
		return fmt.Errorf("set %d winner: %w", s.ID, err)
	}
	if err := s.Loser.Validate(); err != nil {
		return fmt.Errorf("set %d loser: %w", s.ID, err)
	}
	if s.Winner.Kind != s.Loser.Kind {
		return fmt.Errorf("set %d mixes %s and %s sides", s.ID, s.Winner.Kind, s.Loser.Kind)
	}
	if s.WinnerScore <= s.LoserScore {
		return fmt.Errorf("set %d winner score %d is not greater than loser score %d", s.ID, s.WinnerScore, s.LoserScore)
	}
	return nil
}

// ExportQuery selects persisted sets by event day, inclusive on both ends.
// Empty country code or state disables that filter.
type ExportQuery struct {
	StartDate   time.Time
	EndDate     time.Time
	CountryCode string
	AddrState   string
}

// Detailed is a set joined with its event, tournament and side members.
type Detailed struct {
	Set
	EventName      string
	EventEntrants  int
	EventStartAt   time.Time
	TournamentID   int64
	TournamentName string
	WinnerPlayers  []player.Player
	LoserPlayers   []player.Player
}
