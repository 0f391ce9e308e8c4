package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/bracket-harvest/internal/domain/matchset"
	"github.com/riskibarqy/bracket-harvest/internal/domain/player"
	"github.com/riskibarqy/bracket-harvest/internal/domain/team"
)

// sideWriter persists the identities a set refers to.
type sideWriter interface {
	EnsurePlayer(ctx context.Context, p player.Player) (bool, error)
	CreateTeam(ctx context.Context, playerIDs []int64) (team.Team, error)
}

// SetReconciler turns raw sets into canonical winner/loser sets. Its identity
// maps live for one event and are discarded with the reconciler.
type SetReconciler struct {
	writer  sideWriter
	mode    matchset.SideKind
	players map[int64]struct{}
	teams   map[string]int64

	newPlayers int
	newTeams   int
}

func NewSetReconciler(writer sideWriter, mode matchset.SideKind) *SetReconciler {
	if mode == "" {
		mode = matchset.SideTeam
	}
	return &SetReconciler{
		writer:  writer,
		mode:    mode,
		players: make(map[int64]struct{}),
		teams:   make(map[string]int64),
	}
}

// UseTeams registers teams already stored for the event so a resumed event
// does not synthesize a second team for the same members. The first team
// seen for a membership wins.
func (r *SetReconciler) UseTeams(teams []team.Team) {
	for _, t := range teams {
		key := team.Key(t.PlayerIDs)
		if _, ok := r.teams[key]; ok {
			continue
		}
		r.teams[key] = t.ID
		for _, id := range t.PlayerIDs {
			r.players[id] = struct{}{}
		}
	}
}

// Winner orders two slots by score. A nil score counts as 0, so a
// disqualified side (-1) loses to an opponent without a score.
func Winner(a, b ExternalSlot) (winner, loser ExternalSlot, err error) {
	scoreA, scoreB := slotScore(a), slotScore(b)
	switch {
	case scoreA > scoreB:
		return a, b, nil
	case scoreB > scoreA:
		return b, a, nil
	default:
		return ExternalSlot{}, ExternalSlot{}, fmt.Errorf("%w: both slots scored %d", ErrUndecidedSet, scoreA)
	}
}

func (r *SetReconciler) Reconcile(ctx context.Context, eventID int64, raw ExternalSet) (matchset.Set, error) {
	if raw.ExternalID <= 0 {
		return matchset.Set{}, fmt.Errorf("%w: set id is required", ErrMalformedSet)
	}
	if len(raw.Slots) != 2 {
		return matchset.Set{}, fmt.Errorf("%w: set %d has %d slots", ErrMalformedSet, raw.ExternalID, len(raw.Slots))
	}
	for i, slot := range raw.Slots {
		if err := checkSlot(slot); err != nil {
			return matchset.Set{}, fmt.Errorf("%w: set %d slot %d: %v", ErrMalformedSet, raw.ExternalID, i, err)
		}
	}

	winnerSlot, loserSlot, err := Winner(raw.Slots[0], raw.Slots[1])
	if err != nil {
		return matchset.Set{}, fmt.Errorf("set %d: %w", raw.ExternalID, err)
	}

	winner, err := r.resolveSide(ctx, winnerSlot)
	if err != nil {
		return matchset.Set{}, fmt.Errorf("resolve winner of set %d: %w", raw.ExternalID, err)
	}
	loser, err := r.resolveSide(ctx, loserSlot)
	if err != nil {
		return matchset.Set{}, fmt.Errorf("resolve loser of set %d: %w", raw.ExternalID, err)
	}

	return matchset.Set{
		ID:          raw.ExternalID,
		EventID:     eventID,
		WinnerSeed:  winnerSlot.Seed,
		LoserSeed:   loserSlot.Seed,
		WinnerScore: slotScore(winnerSlot),
		LoserScore:  slotScore(loserSlot),
		Winner:      winner,
		Loser:       loser,
	}, nil
}

// NewPlayers and NewTeams count rows created through this reconciler.
func (r *SetReconciler) NewPlayers() int { return r.newPlayers }
func (r *SetReconciler) NewTeams() int { return r.newTeams }

func (r *SetReconciler) resolveSide(ctx context.Context, slot ExternalSlot) (matchset.Side, error) {
	if r.mode == matchset.SidePlayer {
		// player-owned sets keep the first participant only
		p := slot.Participants[0]
		if err := r.ensurePlayer(ctx, p); err != nil {
			return matchset.Side{}, err
		}
		return matchset.PlayerSide(p.PlayerExternalID), nil
	}

	ids := make([]int64, 0, len(slot.Participants))
	for _, p := range slot.Participants {
		if err := r.ensurePlayer(ctx, p); err != nil {
			return matchset.Side{}, err
		}
		ids = append(ids, p.PlayerExternalID)
	}

	key := team.Key(ids)
	if teamID, ok := r.teams[key]; ok {
		return matchset.TeamSide(teamID), nil
	}
	created, err := r.writer.CreateTeam(ctx, ids)
	if err != nil {
		return matchset.Side{}, fmt.Errorf("create team [%s]: %w", key, err)
	}
	r.teams[key] = created.ID
	r.newTeams++
	return matchset.TeamSide(created.ID), nil
}

func (r *SetReconciler) ensurePlayer(ctx context.Context, p ExternalParticipant) error {
	if _, ok := r.players[p.PlayerExternalID]; ok {
		return nil
	}
	created, err := r.writer.EnsurePlayer(ctx, player.Player{ID: p.PlayerExternalID, GamerTag: p.GamerTag})
	if err != nil {
		return fmt.Errorf("ensure player %d: %w", p.PlayerExternalID, err)
	}
	r.players[p.PlayerExternalID] = struct{}{}
	if created {
		r.newPlayers++
	}
	return nil
}

func checkSlot(slot ExternalSlot) error {
	if len(slot.Participants) == 0 {
		return fmt.Errorf("no participants")
	}
	for _, p := range slot.Participants {
		if p.PlayerExternalID <= 0 {
			return fmt.Errorf("participant without player id")
		}
	}
	return nil
}

func slotScore(slot ExternalSlot) int {
	if slot.Score == nil {
		return 0
	}
	return *slot.Score
}
