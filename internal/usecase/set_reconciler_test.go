package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/bracket-harvest/internal/domain/matchset"
	"github.com/riskibarqy/bracket-harvest/internal/domain/player"
	"github.com/riskibarqy/bracket-harvest/internal/domain/team"
)

type sideWriterStub struct {
	existing  map[int64]bool
	ensured   []int64
	teams     [][]int64
	nextTeam  int64
	createErr error
}

func (s *sideWriterStub) EnsurePlayer(_ context.Context, p player.Player) (bool, error) {
	s.ensured = append(s.ensured, p.ID)
	if s.existing[p.ID] {
		return false, nil
	}
	if s.existing == nil {
		s.existing = map[int64]bool{}
	}
	s.existing[p.ID] = true
	return true, nil
}

func (s *sideWriterStub) CreateTeam(_ context.Context, playerIDs []int64) (team.Team, error) {
	if s.createErr != nil {
		return team.Team{}, s.createErr
	}
	s.nextTeam++
	s.teams = append(s.teams, playerIDs)
	return team.Team{ID: s.nextTeam, PlayerIDs: playerIDs}, nil
}

func intPtr(v int) *int { return &v }

func slot(score *int, ids ...int64) ExternalSlot {
	out := ExternalSlot{Score: score}
	for _, id := range ids {
		out.Participants = append(out.Participants, ExternalParticipant{PlayerExternalID: id, GamerTag: "p"})
	}
	return out
}

func TestWinner(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		a, b       ExternalSlot
		wantWinner int64
		wantLoser  int
	}{
		{name: "higher score wins", a: slot(intPtr(1), 1), b: slot(intPtr(3), 2), wantWinner: 2, wantLoser: 1},
		{name: "missing score counts as zero", a: slot(intPtr(3), 1), b: slot(nil, 2), wantWinner: 1, wantLoser: 0},
		{name: "disqualified loses to missing score", a: slot(intPtr(-1), 1), b: slot(nil, 2), wantWinner: 2, wantLoser: -1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			winner, loser, err := Winner(tc.a, tc.b)
			if err != nil {
				t.Fatalf("winner: %v", err)
			}
			if got := winner.Participants[0].PlayerExternalID; got != tc.wantWinner {
				t.Fatalf("unexpected winner: got=%d want=%d", got, tc.wantWinner)
			}
			if got := slotScore(loser); got != tc.wantLoser {
				t.Fatalf("unexpected loser score: got=%d want=%d", got, tc.wantLoser)
			}
		})
	}
}

func TestWinner_TieIsUndecided(t *testing.T) {
	t.Parallel()

	for _, pair := range [][2]ExternalSlot{
		{slot(intPtr(2), 1), slot(intPtr(2), 2)},
		{slot(nil, 1), slot(intPtr(0), 2)},
		{slot(nil, 1), slot(nil, 2)},
	} {
		if _, _, err := Winner(pair[0], pair[1]); !errors.Is(err, ErrUndecidedSet) {
			t.Fatalf("expected ErrUndecidedSet, got %v", err)
		}
	}
}

func TestSetReconciler_TeamModeReusesTeamsWithinEvent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	writer := &sideWriterStub{existing: map[int64]bool{10: true}}
	reconciler := NewSetReconciler(writer, "")

	first, err := reconciler.Reconcile(ctx, 7, ExternalSet{
		ExternalID: 100,
		Slots:      []ExternalSlot{slot(intPtr(3), 10, 11), slot(intPtr(1), 20, 21)},
	})
	if err != nil {
		t.Fatalf("reconcile first set: %v", err)
	}
	second, err := reconciler.Reconcile(ctx, 7, ExternalSet{
		ExternalID: 101,
		Slots:      []ExternalSlot{slot(intPtr(0), 21, 20), slot(intPtr(2), 11, 10)},
	})
	if err != nil {
		t.Fatalf("reconcile second set: %v", err)
	}

	if first.Winner.Kind != matchset.SideTeam {
		t.Fatalf("expected team sides, got %s", first.Winner.Kind)
	}
	if second.Winner.TeamID != first.Winner.TeamID || second.Loser.TeamID != first.Loser.TeamID {
		t.Fatalf("expected memberships to map onto the same teams: first=%+v second=%+v", first, second)
	}
	if len(writer.teams) != 2 {
		t.Fatalf("unexpected team creations: got=%d want=2", len(writer.teams))
	}
	if reconciler.NewTeams() != 2 || reconciler.NewPlayers() != 3 {
		t.Fatalf("unexpected counters: teams=%d players=%d", reconciler.NewTeams(), reconciler.NewPlayers())
	}
	if len(writer.ensured) != 4 {
		t.Fatalf("players must be ensured once per event: got=%d", len(writer.ensured))
	}
	if first.WinnerScore != 3 || first.LoserScore != 1 || first.EventID != 7 {
		t.Fatalf("unexpected set: %+v", first)
	}
}

func TestSetReconciler_UseTeamsSkipsStoredMemberships(t *testing.T) {
	t.Parallel()

	writer := &sideWriterStub{nextTeam: 50}
	reconciler := NewSetReconciler(writer, matchset.SideTeam)
	reconciler.UseTeams([]team.Team{
		{ID: 3, PlayerIDs: []int64{10, 11}},
		{ID: 4, PlayerIDs: []int64{20, 21}},
		{ID: 9, PlayerIDs: []int64{11, 10}},
	})

	got, err := reconciler.Reconcile(context.Background(), 7, ExternalSet{
		ExternalID: 100,
		Slots:      []ExternalSlot{slot(intPtr(1), 21, 20), slot(intPtr(3), 11, 10)},
	})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if got.Winner.TeamID != 3 || got.Loser.TeamID != 4 {
		t.Fatalf("expected stored teams 3 and 4, got winner=%d loser=%d", got.Winner.TeamID, got.Loser.TeamID)
	}
	if len(writer.teams) != 0 || len(writer.ensured) != 0 {
		t.Fatalf("stored memberships must not be written again: teams=%v players=%v", writer.teams, writer.ensured)
	}

	fresh, err := reconciler.Reconcile(context.Background(), 7, ExternalSet{
		ExternalID: 101,
		Slots:      []ExternalSlot{slot(intPtr(2), 10, 30), slot(intPtr(0), 20, 21)},
	})
	if err != nil {
		t.Fatalf("reconcile new membership: %v", err)
	}
	if fresh.Winner.TeamID != 51 || reconciler.NewTeams() != 1 {
		t.Fatalf("expected one new team for an unseen membership: winner=%d new=%d", fresh.Winner.TeamID, reconciler.NewTeams())
	}
	if len(writer.ensured) != 1 || writer.ensured[0] != 30 {
		t.Fatalf("only the unseen player should be ensured: %v", writer.ensured)
	}
}

func TestSetReconciler_PlayerModeUsesFirstParticipant(t *testing.T) {
	t.Parallel()

	writer := &sideWriterStub{}
	reconciler := NewSetReconciler(writer, matchset.SidePlayer)

	got, err := reconciler.Reconcile(context.Background(), 1, ExternalSet{
		ExternalID: 5,
		Slots: []ExternalSlot{
			{Seed: intPtr(4), Score: nil, Participants: []ExternalParticipant{{PlayerExternalID: 30}}},
			{Seed: intPtr(1), Score: intPtr(2), Participants: []ExternalParticipant{{PlayerExternalID: 40}, {PlayerExternalID: 41}}},
		},
	})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if got.Winner != matchset.PlayerSide(40) || got.Loser != matchset.PlayerSide(30) {
		t.Fatalf("unexpected sides: winner=%+v loser=%+v", got.Winner, got.Loser)
	}
	if *got.WinnerSeed != 1 || *got.LoserSeed != 4 {
		t.Fatalf("unexpected seeds: winner=%d loser=%d", *got.WinnerSeed, *got.LoserSeed)
	}
	if len(writer.teams) != 0 {
		t.Fatalf("player mode must not create teams")
	}
}

func TestSetReconciler_RejectsMalformedSets(t *testing.T) {
	t.Parallel()

	reconciler := NewSetReconciler(&sideWriterStub{}, matchset.SideTeam)
	cases := []ExternalSet{
		{ExternalID: 1, Slots: []ExternalSlot{slot(intPtr(1), 1)}},
		{ExternalID: 2, Slots: []ExternalSlot{slot(intPtr(1), 1), {Score: intPtr(0)}}},
		{ExternalID: 3, Slots: []ExternalSlot{slot(intPtr(1), 1), slot(intPtr(0), 0)}},
	}
	for _, raw := range cases {
		if _, err := reconciler.Reconcile(context.Background(), 1, raw); !errors.Is(err, ErrMalformedSet) {
			t.Fatalf("set %d: expected ErrMalformedSet, got %v", raw.ExternalID, err)
		}
	}
}

func TestSetReconciler_PropagatesTeamFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("insert failed")
	reconciler := NewSetReconciler(&sideWriterStub{createErr: boom}, matchset.SideTeam)
	_, err := reconciler.Reconcile(context.Background(), 1, ExternalSet{
		ExternalID: 9,
		Slots:      []ExternalSlot{slot(intPtr(1), 1), slot(intPtr(0), 2)},
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected team failure, got %v", err)
	}
}
