package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/bracket-harvest/internal/domain/player"
	qb "github.com/riskibarqy/bracket-harvest/internal/platform/querybuilder"
)

type PlayerRepository struct {
	session *Session
}

func (r *PlayerRepository) GetByID(ctx context.Context, playerID int64) (player.Player, bool, error) {
	query, args, err := qb.Select("id", "gamer_tag").
		From("players").
		Where(qb.Eq("id", playerID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return player.Player{}, false, fmt.Errorf("build get player query: %w", err)
	}

	ctx, tx, err := r.session.conn(ctx)
	if err != nil {
		return player.Player{}, false, err
	}

	var row playerTableModel
	if err := sqlx.GetContext(ctx, tx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return player.Player{}, false, nil
		}
		return player.Player{}, false, fmt.Errorf("get player id=%d: %w", playerID, err)
	}
	return player.Player{ID: row.ID, GamerTag: row.GamerTag}, true, nil
}

func (r *PlayerRepository) Create(ctx context.Context, item player.Player) error {
	query, args, err := qb.InsertModel("players", playerTableModel{ID: item.ID, GamerTag: item.GamerTag}, `ON CONFLICT (id) DO NOTHING`)
	if err != nil {
		return fmt.Errorf("build insert player query: %w", err)
	}

	ctx, tx, err := r.session.conn(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert player id=%d: %w", item.ID, err)
	}
	return nil
}
