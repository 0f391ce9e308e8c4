package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/bracket-harvest/internal/domain/tournament"
	qb "github.com/riskibarqy/bracket-harvest/internal/platform/querybuilder"
)

type TournamentRepository struct {
	session *Session
}

func (r *TournamentRepository) GetByID(ctx context.Context, tournamentID int64) (tournament.Tournament, bool, error) {
	query, args, err := qb.Select(qb.Columns("", tournamentTableModel{})...).
		From("tournaments").
		Where(qb.Eq("id", tournamentID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return tournament.Tournament{}, false, fmt.Errorf("build get tournament query: %w", err)
	}

	ctx, tx, err := r.session.conn(ctx)
	if err != nil {
		return tournament.Tournament{}, false, err
	}

	var row tournamentTableModel
	if err := sqlx.GetContext(ctx, tx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return tournament.Tournament{}, false, nil
		}
		return tournament.Tournament{}, false, fmt.Errorf("get tournament id=%d: %w", tournamentID, err)
	}

	return tournament.Tournament{
		ID:          row.ID,
		Name:        row.Name,
		URL:         row.URL.String,
		City:        row.City.String,
		CountryCode: row.CountryCode.String,
		AddrState:   row.AddrState.String,
		Imported:    row.Imported,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}, true, nil
}

func (r *TournamentRepository) Create(ctx context.Context, item tournament.Tournament) error {
	insertModel := tournamentInsertModel{
		ID:          item.ID,
		Name:        item.Name,
		URL:         nullString(item.URL),
		City:        nullString(item.City),
		CountryCode: nullString(item.CountryCode),
		AddrState:   nullString(item.AddrState),
	}
	query, args, err := qb.InsertModel("tournaments", insertModel, `ON CONFLICT (id) DO NOTHING`)
	if err != nil {
		return fmt.Errorf("build insert tournament query: %w", err)
	}

	ctx, tx, err := r.session.conn(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert tournament id=%d: %w", item.ID, err)
	}
	return nil
}

func (r *TournamentRepository) MarkImported(ctx context.Context, tournamentID int64) error {
	return markImported(ctx, r.session, "tournaments", tournamentID)
}

type EventRepository struct {
	session *Session
}

func (r *EventRepository) GetByID(ctx context.Context, eventID int64) (tournament.Event, bool, error) {
	rows, err := r.list(ctx, qb.Eq("id", eventID))
	if err != nil {
		return tournament.Event{}, false, fmt.Errorf("get event id=%d: %w", eventID, err)
	}
	if len(rows) == 0 {
		return tournament.Event{}, false, nil
	}
	return rows[0], true, nil
}

func (r *EventRepository) ListByTournament(ctx context.Context, tournamentID int64) ([]tournament.Event, error) {
	out, err := r.list(ctx, qb.Eq("tournament_id", tournamentID))
	if err != nil {
		return nil, fmt.Errorf("list events by tournament id=%d: %w", tournamentID, err)
	}
	return out, nil
}

func (r *EventRepository) Create(ctx context.Context, item tournament.Event) error {
	insertModel := eventInsertModel{
		ID:           item.ID,
		TournamentID: item.TournamentID,
		Name:         item.Name,
		NumEntrants:  item.NumEntrants,
		Slug:         item.Slug,
		StartAt:      item.StartAt.UTC(),
		State:        string(item.State),
	}
	query, args, err := qb.InsertModel("events", insertModel, `ON CONFLICT (id) DO NOTHING`)
	if err != nil {
		return fmt.Errorf("build insert event query: %w", err)
	}

	ctx, tx, err := r.session.conn(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert event id=%d: %w", item.ID, err)
	}
	return nil
}

func (r *EventRepository) MarkImported(ctx context.Context, eventID int64) error {
	return markImported(ctx, r.session, "events", eventID)
}

func (r *EventRepository) list(ctx context.Context, conditions ...qb.Condition) ([]tournament.Event, error) {
	query, args, err := qb.Select(qb.Columns("", eventTableModel{})...).
		From("events").
		Where(conditions...).
		OrderBy("start_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select events query: %w", err)
	}

	ctx, tx, err := r.session.conn(ctx)
	if err != nil {
		return nil, err
	}

	var rows []eventTableModel
	if err := sqlx.SelectContext(ctx, tx, &rows, query, args...); err != nil {
		return nil, err
	}

	out := make([]tournament.Event, 0, len(rows))
	for _, row := range rows {
		out = append(out, tournament.Event{
			ID:           row.ID,
			TournamentID: row.TournamentID,
			Name:         row.Name,
			NumEntrants:  row.NumEntrants,
			Slug:         row.Slug,
			StartAt:      row.StartAt.UTC(),
			State:        tournament.ActivityState(row.State),
			Imported:     row.Imported,
			CreatedAt:    row.CreatedAt,
			UpdatedAt:    row.UpdatedAt,
		})
	}
	return out, nil
}

func markImported(ctx context.Context, session *Session, table string, id int64) error {
	query, args, err := qb.Update(table).
		Set("imported", true).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build mark %s imported query: %w", table, err)
	}

	ctx, tx, err := session.conn(ctx)
	if err != nil {
		return err
	}
	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("mark %s id=%d imported: %w", table, id, err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("mark %s id=%d imported: row not found", table, id)
	}
	return nil
}
