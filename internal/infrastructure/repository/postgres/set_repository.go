package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/bracket-harvest/internal/domain/matchset"
	"github.com/riskibarqy/bracket-harvest/internal/domain/player"
	qb "github.com/riskibarqy/bracket-harvest/internal/platform/querybuilder"
)

const exportDateLayout = "2006-01-02"

type SetRepository struct {
	session *Session
}

func (r *SetRepository) Exists(ctx context.Context, setID int64) (bool, error) {
	query, args, err := qb.Select("1").From("sets").Where(qb.Eq("id", setID)).Limit(1).ToSQL()
	if err != nil {
		return false, fmt.Errorf("build set exists query: %w", err)
	}

	ctx, tx, err := r.session.conn(ctx)
	if err != nil {
		return false, err
	}

	var one int
	if err := sqlx.GetContext(ctx, tx, &one, query, args...); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("check set id=%d: %w", setID, err)
	}
	return true, nil
}

func (r *SetRepository) Create(ctx context.Context, item matchset.Set) error {
	insertModel := setInsertModel{
		ID:          item.ID,
		EventID:     item.EventID,
		WinnerSeed:  nullIntPtr(item.WinnerSeed),
		LoserSeed:   nullIntPtr(item.LoserSeed),
		WinnerScore: item.WinnerScore,
		LoserScore:  item.LoserScore,
	}
	switch item.Winner.Kind {
	case matchset.SidePlayer:
		insertModel.WinnerPlayerID = nullInt64(item.Winner.PlayerID)
		insertModel.LoserPlayerID = nullInt64(item.Loser.PlayerID)
	case matchset.SideTeam:
		insertModel.WinnerTeamID = nullInt64(item.Winner.TeamID)
		insertModel.LoserTeamID = nullInt64(item.Loser.TeamID)
	default:
		return fmt.Errorf("insert set id=%d: unknown side kind %q", item.ID, item.Winner.Kind)
	}

	query, args, err := qb.InsertModel("sets", insertModel, `ON CONFLICT (id) DO NOTHING`)
	if err != nil {
		return fmt.Errorf("build insert set query: %w", err)
	}

	ctx, tx, err := r.session.conn(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert set id=%d: %w", item.ID, err)
	}
	return nil
}

func (r *SetRepository) ListDetailed(ctx context.Context, filter matchset.ExportQuery) ([]matchset.Detailed, error) {
	conditions := []qb.Condition{
		qb.Between("(e.start_at AT TIME ZONE 'UTC')::date",
			filter.StartDate.UTC().Format(exportDateLayout),
			filter.EndDate.UTC().Format(exportDateLayout)),
	}
	if filter.CountryCode != "" {
		conditions = append(conditions, qb.Eq("t.country_code", filter.CountryCode))
	}
	if filter.AddrState != "" {
		conditions = append(conditions, qb.Eq("t.addr_state", filter.AddrState))
	}

	query, args, err := qb.Select(
		"s.id", "s.event_id", "s.winner_seed", "s.loser_seed", "s.winner_score", "s.loser_score",
		"s.winner_player_id", "s.loser_player_id", "s.winner_team_id", "s.loser_team_id", "s.created_at",
		"e.name AS event_name", "e.num_entrants AS event_entrants", "e.start_at AS event_start_at",
		"t.id AS tournament_id", "t.name AS tournament_name",
	).
		From("sets s").
		Join("events e", "e.id = s.event_id").
		Join("tournaments t", "t.id = e.tournament_id").
		Where(conditions...).
		OrderBy("e.start_at", "s.id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list detailed sets query: %w", err)
	}

	ctx, tx, err := r.session.conn(ctx)
	if err != nil {
		return nil, err
	}

	var rows []setDetailRow
	if err := sqlx.SelectContext(ctx, tx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list detailed sets: %w", err)
	}

	var teamIDs, playerIDs []int64
	for _, row := range rows {
		if row.WinnerTeamID.Valid {
			teamIDs = append(teamIDs, row.WinnerTeamID.Int64, row.LoserTeamID.Int64)
		} else {
			playerIDs = append(playerIDs, row.WinnerPlayerID.Int64, row.LoserPlayerID.Int64)
		}
	}
	members, err := r.teamMembers(ctx, tx, teamIDs)
	if err != nil {
		return nil, err
	}
	players, err := r.playersByID(ctx, tx, playerIDs)
	if err != nil {
		return nil, err
	}

	out := make([]matchset.Detailed, 0, len(rows))
	for _, row := range rows {
		item := matchset.Detailed{
			Set: matchset.Set{
				ID:          row.ID,
				EventID:     row.EventID,
				WinnerSeed:  intPtrFromNull(row.WinnerSeed),
				LoserSeed:   intPtrFromNull(row.LoserSeed),
				WinnerScore: row.WinnerScore,
				LoserScore:  row.LoserScore,
				CreatedAt:   row.CreatedAt,
			},
			EventName:      row.EventName,
			EventEntrants:  row.EventEntrants,
			EventStartAt:   row.EventStartAt.UTC(),
			TournamentID:   row.TournamentID,
			TournamentName: row.TournamentName,
		}
		if row.WinnerTeamID.Valid {
			item.Winner = matchset.TeamSide(row.WinnerTeamID.Int64)
			item.Loser = matchset.TeamSide(row.LoserTeamID.Int64)
			item.WinnerPlayers = members[row.WinnerTeamID.Int64]
			item.LoserPlayers = members[row.LoserTeamID.Int64]
		} else {
			item.Winner = matchset.PlayerSide(row.WinnerPlayerID.Int64)
			item.Loser = matchset.PlayerSide(row.LoserPlayerID.Int64)
			item.WinnerPlayers = []player.Player{players[row.WinnerPlayerID.Int64]}
			item.LoserPlayers = []player.Player{players[row.LoserPlayerID.Int64]}
		}
		out = append(out, item)
	}
	return out, nil
}

func (r *SetRepository) teamMembers(ctx context.Context, q sqlx.QueryerContext, teamIDs []int64) (map[int64][]player.Player, error) {
	out := make(map[int64][]player.Player)
	if len(teamIDs) == 0 {
		return out, nil
	}

	query, args, err := qb.Select("tp.team_id", "tp.player_id", "p.gamer_tag").
		From("team_players tp").
		Join("players p", "p.id = tp.player_id").
		Where(qb.Expr("tp.team_id = ANY(?)", pq.Array(teamIDs))).
		OrderBy("tp.team_id", "tp.player_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build team members query: %w", err)
	}

	var rows []teamMemberRow
	if err := sqlx.SelectContext(ctx, q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list team members: %w", err)
	}
	for _, row := range rows {
		out[row.TeamID] = append(out[row.TeamID], player.Player{ID: row.PlayerID, GamerTag: row.GamerTag})
	}
	return out, nil
}

func (r *SetRepository) playersByID(ctx context.Context, q sqlx.QueryerContext, playerIDs []int64) (map[int64]player.Player, error) {
	out := make(map[int64]player.Player)
	if len(playerIDs) == 0 {
		return out, nil
	}

	query, args, err := qb.Select("id", "gamer_tag").
		From("players").
		Where(qb.Expr("id = ANY(?)", pq.Array(playerIDs))).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build players by id query: %w", err)
	}

	var rows []playerTableModel
	if err := sqlx.SelectContext(ctx, q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list players by id: %w", err)
	}
	for _, row := range rows {
		out[row.ID] = player.Player{ID: row.ID, GamerTag: row.GamerTag}
	}
	return out, nil
}
