package memory

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/bracket-harvest/internal/domain/matchset"
	"github.com/riskibarqy/bracket-harvest/internal/domain/player"
	"github.com/riskibarqy/bracket-harvest/internal/domain/tournament"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, s *Session, country string, start time.Time) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.Tournaments().Create(ctx, tournament.Tournament{ID: 1, Name: "Genesis", CountryCode: country}))
	require.NoError(t, s.Events().Create(ctx, tournament.Event{
		ID: 10, TournamentID: 1, Name: "Melee Singles", NumEntrants: 8, StartAt: start, State: tournament.StateCompleted,
	}))
	require.NoError(t, s.Players().Create(ctx, player.Player{ID: 100, GamerTag: "Mango"}))
	require.NoError(t, s.Players().Create(ctx, player.Player{ID: 200, GamerTag: "Zain"}))
}

func TestSessionRollbackDropsUncommittedWrites(t *testing.T) {
	ctx := context.Background()
	s := NewSession()
	seed(t, s, "US", time.Date(2024, 2, 1, 18, 0, 0, 0, time.UTC))
	require.NoError(t, s.Commit(ctx))

	require.NoError(t, s.Sets().Create(ctx, matchset.Set{
		ID: 5, EventID: 10, WinnerScore: 3, LoserScore: 1,
		Winner: matchset.PlayerSide(100), Loser: matchset.PlayerSide(200),
	}))
	exists, err := s.Sets().Exists(ctx, 5)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, s.Rollback())

	exists, err = s.Sets().Exists(ctx, 5)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Equal(t, 1, s.CommittedCounts()["events"])
	assert.Equal(t, 0, s.CommittedCounts()["sets"])
	assert.Equal(t, 1, s.Commits())
}

func TestSessionCreateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewSession()
	seed(t, s, "US", time.Now())

	require.NoError(t, s.Players().Create(ctx, player.Player{ID: 100, GamerTag: "renamed"}))
	got, ok, err := s.Players().GetByID(ctx, 100)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Mango", got.GamerTag)
}

func TestSessionRejectsDanglingReferences(t *testing.T) {
	ctx := context.Background()
	s := NewSession()

	err := s.Events().Create(ctx, tournament.Event{ID: 1, TournamentID: 99, State: tournament.StateCompleted})
	assert.Error(t, err)

	_, err = s.Teams().Create(ctx, []int64{7})
	assert.Error(t, err)
}

func TestListDetailedFiltersByDayAndLocation(t *testing.T) {
	ctx := context.Background()
	s := NewSession()
	seed(t, s, "US", time.Date(2024, 2, 1, 23, 30, 0, 0, time.UTC))

	team1, err := s.Teams().Create(ctx, []int64{200, 100})
	require.NoError(t, err)
	require.NoError(t, s.Players().Create(ctx, player.Player{ID: 300, GamerTag: "Hbox"}))
	team2, err := s.Teams().Create(ctx, []int64{300})
	require.NoError(t, err)

	require.NoError(t, s.Sets().Create(ctx, matchset.Set{
		ID: 2, EventID: 10, WinnerScore: 2, LoserScore: 0,
		Winner: matchset.TeamSide(team1.ID), Loser: matchset.TeamSide(team2.ID),
	}))
	require.NoError(t, s.Sets().Create(ctx, matchset.Set{
		ID: 1, EventID: 10, WinnerScore: 3, LoserScore: 2,
		Winner: matchset.PlayerSide(200), Loser: matchset.PlayerSide(100),
	}))

	day := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	rows, err := s.Sets().ListDetailed(ctx, matchset.ExportQuery{StartDate: day, EndDate: day, CountryCode: "US"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(1), rows[0].ID)
	assert.Equal(t, "Genesis", rows[1].TournamentName)
	assert.Equal(t, []player.Player{{ID: 100, GamerTag: "Mango"}, {ID: 200, GamerTag: "Zain"}}, rows[1].WinnerPlayers)
	assert.Equal(t, []player.Player{{ID: 300, GamerTag: "Hbox"}}, rows[1].LoserPlayers)

	rows, err = s.Sets().ListDetailed(ctx, matchset.ExportQuery{StartDate: day, EndDate: day, CountryCode: "JP"})
	require.NoError(t, err)
	assert.Empty(t, rows)

	next := day.AddDate(0, 0, 1)
	rows, err = s.Sets().ListDetailed(ctx, matchset.ExportQuery{StartDate: next, EndDate: next})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestTeamRepositoryListByEvent(t *testing.T) {
	ctx := context.Background()
	s := NewSession()
	seed(t, s, "US", time.Date(2024, 2, 1, 18, 0, 0, 0, time.UTC))
	require.NoError(t, s.Events().Create(ctx, tournament.Event{
		ID: 11, TournamentID: 1, Name: "Melee Doubles", StartAt: time.Now(), State: tournament.StateCompleted,
	}))

	winners, err := s.Teams().Create(ctx, []int64{200, 100})
	require.NoError(t, err)
	losers, err := s.Teams().Create(ctx, []int64{200})
	require.NoError(t, err)
	other, err := s.Teams().Create(ctx, []int64{100})
	require.NoError(t, err)

	require.NoError(t, s.Sets().Create(ctx, matchset.Set{
		ID: 5, EventID: 10, WinnerScore: 2, LoserScore: 0,
		Winner: matchset.TeamSide(winners.ID), Loser: matchset.TeamSide(losers.ID),
	}))
	require.NoError(t, s.Sets().Create(ctx, matchset.Set{
		ID: 6, EventID: 11, WinnerScore: 2, LoserScore: 0,
		Winner: matchset.TeamSide(other.ID), Loser: matchset.TeamSide(losers.ID),
	}))

	got, err := s.Teams().ListByEvent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, winners.ID, got[0].ID)
	assert.Equal(t, []int64{100, 200}, got[0].PlayerIDs)
	assert.Equal(t, losers.ID, got[1].ID)

	empty, err := s.Teams().ListByEvent(ctx, 99)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
