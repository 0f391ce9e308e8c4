package postgres

import (
	"database/sql"
	"time"
)

type tournamentTableModel struct {
	ID          int64          `db:"id"`
	Name        string         `db:"name"`
	URL         sql.NullString `db:"url"`
	City        sql.NullString `db:"city"`
	CountryCode sql.NullString `db:"country_code"`
	AddrState   sql.NullString `db:"addr_state"`
	Imported    bool           `db:"imported"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

type tournamentInsertModel struct {
	ID          int64          `db:"id"`
	Name        string         `db:"name"`
	URL         sql.NullString `db:"url"`
	City        sql.NullString `db:"city"`
	CountryCode sql.NullString `db:"country_code"`
	AddrState   sql.NullString `db:"addr_state"`
}

type eventTableModel struct {
	ID           int64     `db:"id"`
	TournamentID int64     `db:"tournament_id"`
	Name         string    `db:"name"`
	NumEntrants  int       `db:"num_entrants"`
	Slug         string    `db:"slug"`
	StartAt      time.Time `db:"start_at"`
	State        string    `db:"state"`
	Imported     bool      `db:"imported"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

type eventInsertModel struct {
	ID           int64     `db:"id"`
	TournamentID int64     `db:"tournament_id"`
	Name         string    `db:"name"`
	NumEntrants  int       `db:"num_entrants"`
	Slug         string    `db:"slug"`
	StartAt      time.Time `db:"start_at"`
	State        string    `db:"state"`
}

type playerTableModel struct {
	ID       int64  `db:"id"`
	GamerTag string `db:"gamer_tag"`
}

type setInsertModel struct {
	ID             int64         `db:"id"`
	EventID        int64         `db:"event_id"`
	WinnerSeed     sql.NullInt32 `db:"winner_seed"`
	LoserSeed      sql.NullInt32 `db:"loser_seed"`
	WinnerScore    int           `db:"winner_score"`
	LoserScore     int           `db:"loser_score"`
	WinnerPlayerID sql.NullInt64 `db:"winner_player_id"`
	LoserPlayerID  sql.NullInt64 `db:"loser_player_id"`
	WinnerTeamID   sql.NullInt64 `db:"winner_team_id"`
	LoserTeamID    sql.NullInt64 `db:"loser_team_id"`
}

// setDetailRow is one set joined with its event and tournament.
type setDetailRow struct {
	ID             int64         `db:"id"`
	EventID        int64         `db:"event_id"`
	WinnerSeed     sql.NullInt32 `db:"winner_seed"`
	LoserSeed      sql.NullInt32 `db:"loser_seed"`
	WinnerScore    int           `db:"winner_score"`
	LoserScore     int           `db:"loser_score"`
	WinnerPlayerID sql.NullInt64 `db:"winner_player_id"`
	LoserPlayerID  sql.NullInt64 `db:"loser_player_id"`
	WinnerTeamID   sql.NullInt64 `db:"winner_team_id"`
	LoserTeamID    sql.NullInt64 `db:"loser_team_id"`
	CreatedAt      time.Time     `db:"created_at"`
	EventName      string        `db:"event_name"`
	EventEntrants  int           `db:"event_entrants"`
	EventStartAt   time.Time     `db:"event_start_at"`
	TournamentID   int64         `db:"tournament_id"`
	TournamentName string        `db:"tournament_name"`
}

type teamMemberRow struct {
	TeamID   int64  `db:"team_id"`
	PlayerID int64  `db:"player_id"`
	GamerTag string `db:"gamer_tag"`
}
