package postgres

import (
	"context"
	"fmt"
	"slices"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/bracket-harvest/internal/domain/team"
	qb "github.com/riskibarqy/bracket-harvest/internal/platform/querybuilder"
)

type TeamRepository struct {
	session *Session
}

// Create inserts a new team row and one membership row per distinct player.
// Players must already exist in the session.
func (r *TeamRepository) Create(ctx context.Context, playerIDs []int64) (team.Team, error) {
	ids := slices.Clone(playerIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)
	if len(ids) == 0 {
		return team.Team{}, fmt.Errorf("team requires at least one player")
	}

	ctx, tx, err := r.session.conn(ctx)
	if err != nil {
		return team.Team{}, err
	}

	var teamID int64
	if err := tx.GetContext(ctx, &teamID, `INSERT INTO teams DEFAULT VALUES RETURNING id`); err != nil {
		return team.Team{}, fmt.Errorf("insert team: %w", err)
	}

	insert := qb.InsertInto("team_players").Columns("team_id", "player_id")
	for _, playerID := range ids {
		insert.Values(teamID, playerID)
	}
	query, args, err := insert.ToSQL()
	if err != nil {
		return team.Team{}, fmt.Errorf("build insert team players query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return team.Team{}, fmt.Errorf("insert players of team id=%d: %w", teamID, err)
	}

	return team.Team{ID: teamID, PlayerIDs: ids}, nil
}

func (r *TeamRepository) ListByEvent(ctx context.Context, eventID int64) ([]team.Team, error) {
	query, args, err := qb.Select("tp.team_id", "tp.player_id").
		From("team_players tp").
		Where(qb.Expr(
			"tp.team_id IN (SELECT winner_team_id FROM sets WHERE event_id = ? UNION SELECT loser_team_id FROM sets WHERE event_id = ?)",
			eventID, eventID,
		)).
		OrderBy("tp.team_id", "tp.player_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list event teams query: %w", err)
	}

	ctx, tx, err := r.session.conn(ctx)
	if err != nil {
		return nil, err
	}

	var rows []teamMemberRow
	if err := sqlx.SelectContext(ctx, tx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list teams of event id=%d: %w", eventID, err)
	}

	var out []team.Team
	for _, row := range rows {
		if n := len(out); n > 0 && out[n-1].ID == row.TeamID {
			out[n-1].PlayerIDs = append(out[n-1].PlayerIDs, row.PlayerID)
			continue
		}
		out = append(out, team.Team{ID: row.TeamID, PlayerIDs: []int64{row.PlayerID}})
	}
	return out, nil
}
