package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/riskibarqy/bracket-harvest/internal/domain/matchset"
	"github.com/riskibarqy/bracket-harvest/internal/domain/player"
	"github.com/riskibarqy/bracket-harvest/internal/domain/team"
	"github.com/riskibarqy/bracket-harvest/internal/domain/tournament"
)

type TournamentRepository struct {
	session *Session
}

func (r *TournamentRepository) GetByID(_ context.Context, tournamentID int64) (tournament.Tournament, bool, error) {
	var (
		item tournament.Tournament
		ok   bool
	)
	r.session.read(func(st *state) {
		item, ok = st.tournaments[tournamentID]
	})
	return item, ok, nil
}

func (r *TournamentRepository) Create(_ context.Context, item tournament.Tournament) error {
	return r.session.write(func(st *state) error {
		if _, exists := st.tournaments[item.ID]; exists {
			return nil
		}
		now := time.Now().UTC()
		item.Events = nil
		item.Imported = false
		item.CreatedAt, item.UpdatedAt = now, now
		st.tournaments[item.ID] = item
		return nil
	})
}

func (r *TournamentRepository) MarkImported(_ context.Context, tournamentID int64) error {
	return r.session.write(func(st *state) error {
		item, ok := st.tournaments[tournamentID]
		if !ok {
			return fmt.Errorf("mark tournaments id=%d imported: row not found", tournamentID)
		}
		item.Imported = true
		item.UpdatedAt = time.Now().UTC()
		st.tournaments[tournamentID] = item
		return nil
	})
}

type EventRepository struct {
	session *Session
}

func (r *EventRepository) GetByID(_ context.Context, eventID int64) (tournament.Event, bool, error) {
	var (
		item tournament.Event
		ok   bool
	)
	r.session.read(func(st *state) {
		item, ok = st.events[eventID]
	})
	return item, ok, nil
}

func (r *EventRepository) ListByTournament(_ context.Context, tournamentID int64) ([]tournament.Event, error) {
	var out []tournament.Event
	r.session.read(func(st *state) {
		for _, id := range sortedKeys(st.events) {
			if e := st.events[id]; e.TournamentID == tournamentID {
				out = append(out, e)
			}
		}
	})
	slices.SortStableFunc(out, func(a, b tournament.Event) int {
		return a.StartAt.Compare(b.StartAt)
	})
	return out, nil
}

func (r *EventRepository) Create(_ context.Context, item tournament.Event) error {
	return r.session.write(func(st *state) error {
		if _, ok := st.tournaments[item.TournamentID]; !ok {
			return fmt.Errorf("insert event id=%d: tournament %d does not exist", item.ID, item.TournamentID)
		}
		if _, exists := st.events[item.ID]; exists {
			return nil
		}
		now := time.Now().UTC()
		item.StartAt = item.StartAt.UTC()
		item.Imported = false
		item.CreatedAt, item.UpdatedAt = now, now
		st.events[item.ID] = item
		return nil
	})
}

func (r *EventRepository) MarkImported(_ context.Context, eventID int64) error {
	return r.session.write(func(st *state) error {
		item, ok := st.events[eventID]
		if !ok {
			return fmt.Errorf("mark events id=%d imported: row not found", eventID)
		}
		item.Imported = true
		item.UpdatedAt = time.Now().UTC()
		st.events[eventID] = item
		return nil
	})
}

type PlayerRepository struct {
	session *Session
}

func (r *PlayerRepository) GetByID(_ context.Context, playerID int64) (player.Player, bool, error) {
	var (
		item player.Player
		ok   bool
	)
	r.session.read(func(st *state) {
		item, ok = st.players[playerID]
	})
	return item, ok, nil
}

func (r *PlayerRepository) Create(_ context.Context, item player.Player) error {
	return r.session.write(func(st *state) error {
		if _, exists := st.players[item.ID]; !exists {
			st.players[item.ID] = item
		}
		return nil
	})
}

type TeamRepository struct {
	session *Session
}

func (r *TeamRepository) Create(_ context.Context, playerIDs []int64) (team.Team, error) {
	ids := slices.Clone(playerIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)
	if len(ids) == 0 {
		return team.Team{}, fmt.Errorf("team requires at least one player")
	}

	var created team.Team
	err := r.session.write(func(st *state) error {
		for _, id := range ids {
			if _, ok := st.players[id]; !ok {
				return fmt.Errorf("insert team: player %d does not exist", id)
			}
		}
		created = team.Team{ID: st.nextTeamID, PlayerIDs: ids}
		st.teams[created.ID] = created
		st.nextTeamID++
		return nil
	})
	return created, err
}

func (r *TeamRepository) ListByEvent(_ context.Context, eventID int64) ([]team.Team, error) {
	var out []team.Team
	r.session.read(func(st *state) {
		ids := make(map[int64]struct{})
		for _, set := range st.sets {
			if set.EventID != eventID || set.Winner.Kind != matchset.SideTeam {
				continue
			}
			ids[set.Winner.TeamID] = struct{}{}
			ids[set.Loser.TeamID] = struct{}{}
		}
		for _, id := range sortedKeys(ids) {
			item := st.teams[id]
			item.PlayerIDs = slices.Clone(item.PlayerIDs)
			out = append(out, item)
		}
	})
	return out, nil
}

type SetRepository struct {
	session *Session
}

func (r *SetRepository) Exists(_ context.Context, setID int64) (bool, error) {
	var ok bool
	r.session.read(func(st *state) {
		_, ok = st.sets[setID]
	})
	return ok, nil
}

func (r *SetRepository) Create(_ context.Context, item matchset.Set) error {
	return r.session.write(func(st *state) error {
		if _, exists := st.sets[item.ID]; exists {
			return nil
		}
		if _, ok := st.events[item.EventID]; !ok {
			return fmt.Errorf("insert set id=%d: event %d does not exist", item.ID, item.EventID)
		}
		for _, side := range []matchset.Side{item.Winner, item.Loser} {
			if err := sideExists(st, side); err != nil {
				return fmt.Errorf("insert set id=%d: %w", item.ID, err)
			}
		}
		item.CreatedAt = time.Now().UTC()
		st.sets[item.ID] = item
		return nil
	})
}

func (r *SetRepository) ListDetailed(_ context.Context, query matchset.ExportQuery) ([]matchset.Detailed, error) {
	from := dayOf(query.StartDate)
	to := dayOf(query.EndDate)

	var out []matchset.Detailed
	r.session.read(func(st *state) {
		for _, id := range sortedKeys(st.sets) {
			set := st.sets[id]
			event := st.events[set.EventID]
			day := dayOf(event.StartAt)
			if day.Before(from) || day.After(to) {
				continue
			}
			t := st.tournaments[event.TournamentID]
			if query.CountryCode != "" && t.CountryCode != query.CountryCode {
				continue
			}
			if query.AddrState != "" && t.AddrState != query.AddrState {
				continue
			}
			out = append(out, matchset.Detailed{
				Set:            set,
				EventName:      event.Name,
				EventEntrants:  event.NumEntrants,
				EventStartAt:   event.StartAt.UTC(),
				TournamentID:   t.ID,
				TournamentName: t.Name,
				WinnerPlayers:  sidePlayers(st, set.Winner),
				LoserPlayers:   sidePlayers(st, set.Loser),
			})
		}
	})
	slices.SortStableFunc(out, func(a, b matchset.Detailed) int {
		return cmp.Or(a.EventStartAt.Compare(b.EventStartAt), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}

func sideExists(st *state, side matchset.Side) error {
	switch side.Kind {
	case matchset.SidePlayer:
		if _, ok := st.players[side.PlayerID]; !ok {
			return fmt.Errorf("player %d does not exist", side.PlayerID)
		}
	case matchset.SideTeam:
		if _, ok := st.teams[side.TeamID]; !ok {
			return fmt.Errorf("team %d does not exist", side.TeamID)
		}
	default:
		return fmt.Errorf("unknown side kind %q", side.Kind)
	}
	return nil
}

func sidePlayers(st *state, side matchset.Side) []player.Player {
	if side.Kind == matchset.SidePlayer {
		return []player.Player{st.players[side.PlayerID]}
	}
	members := st.teams[side.TeamID].PlayerIDs
	out := make([]player.Player, 0, len(members))
	for _, id := range members {
		out = append(out, st.players[id])
	}
	return out
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
