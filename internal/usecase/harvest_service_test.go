package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/riskibarqy/bracket-harvest/internal/domain/matchset"
	"github.com/riskibarqy/bracket-harvest/internal/domain/tournament"
	"github.com/riskibarqy/bracket-harvest/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/bracket-harvest/internal/platform/logging"
	"github.com/riskibarqy/bracket-harvest/internal/platform/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sourceStub struct {
	tournaments []ExternalTournament
	sets        map[int64][]ExternalSet
	perPage     int

	// failSetsPage fails the given sets page once per event listed.
	failSetsPage map[int64]int
	onSetsPage   func(eventID int64, page int)
	setCalls     map[int64]int
}

func (s *sourceStub) FetchTournamentsPage(_ context.Context, _ TournamentFilter, page int) (pagination.Page[ExternalTournament], error) {
	return pageOf(s.tournaments, page, 2), nil
}

func (s *sourceStub) FetchEventSetsPage(_ context.Context, eventID int64, page int) (pagination.Page[ExternalSet], error) {
	if s.setCalls == nil {
		s.setCalls = map[int64]int{}
	}
	s.setCalls[eventID]++
	if s.onSetsPage != nil {
		s.onSetsPage(eventID, page)
	}
	if failPage, ok := s.failSetsPage[eventID]; ok && failPage == page {
		delete(s.failSetsPage, eventID)
		return pagination.Page[ExternalSet]{}, fmt.Errorf("%w (3 attempts): upstream 502", ErrFetchExhausted)
	}
	return pageOf(s.sets[eventID], page, s.perPage), nil
}

func pageOf[T any](items []T, page, perPage int) pagination.Page[T] {
	if perPage <= 0 {
		perPage = 40
	}
	totalPages := (len(items) + perPage - 1) / perPage
	from := min((page-1)*perPage, len(items))
	to := min(from+perPage, len(items))
	return pagination.Page[T]{
		Items: items[from:to],
		Info:  pagination.Info{Total: len(items), TotalPages: totalPages, Page: page, PerPage: perPage},
	}
}

func scoreOf(v int) *int { return &v }

// eventSets builds n decided 1v1 sets over a pool of four players.
func eventSets(firstID int64, n int) []ExternalSet {
	out := make([]ExternalSet, 0, n)
	for i := range n {
		a := int64(i%4 + 1)
		b := int64((i+1)%4 + 1)
		out = append(out, ExternalSet{
			ExternalID: firstID + int64(i),
			Slots: []ExternalSlot{
				{Seed: scoreOf(1), Score: scoreOf(2), Participants: []ExternalParticipant{{PlayerExternalID: a, GamerTag: fmt.Sprintf("tag%d", a)}}},
				{Seed: scoreOf(2), Score: scoreOf(1), Participants: []ExternalParticipant{{PlayerExternalID: b, GamerTag: fmt.Sprintf("tag%d", b)}}},
			},
		})
	}
	return out
}

func scenarioSource() *sourceStub {
	start := time.Date(2025, 2, 1, 18, 0, 0, 0, time.UTC)
	return &sourceStub{
		tournaments: []ExternalTournament{{
			ExternalID:  1,
			Name:        "T1",
			CountryCode: "FR",
			AddrState:   "IDF",
			Events: []ExternalEvent{
				{ExternalID: 11, Name: "Melee Singles", NumEntrants: 16, Slug: "tournament/t1/event/melee-singles", StartAt: start, State: "COMPLETED"},
				{ExternalID: 12, Name: "Melee Doubles", NumEntrants: 8, Slug: "tournament/t1/event/melee-doubles", StartAt: start, State: "ACTIVE"},
				{ExternalID: 13, Name: "Doubles", NumEntrants: 8, Slug: "tournament/t1/event/melee-doubles-2", StartAt: start, State: "COMPLETED"},
			},
		}},
		sets: map[int64][]ExternalSet{
			11: eventSets(1000, 10),
			12: eventSets(2000, 3),
			13: eventSets(3000, 3),
		},
		perPage: 4,
	}
}

func newHarvestForTest(t *testing.T, source TournamentSource, store Store, batch int) *HarvestService {
	t.Helper()
	filter, err := tournament.NewEventFilter(tournament.DefaultDenylist)
	require.NoError(t, err)
	ingestion := NewIngestionService(store, batch, logging.NewNop())
	return NewHarvestService(source, ingestion, filter, HarvestConfig{SideMode: matchset.SideTeam}, logging.NewNop())
}

func runWindow() TournamentFilter {
	return TournamentFilter{
		AfterDate:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		BeforeDate:  time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		CountryCode: "FR",
		AddrState:   "IDF",
	}
}

func TestHarvestService_RunImportsEligibleEventsAndRerunIsNoop(t *testing.T) {
	ctx := context.Background()
	source := scenarioSource()
	store := memory.NewSession()
	service := newHarvestForTest(t, source, store, DefaultSetCommitBatch)

	stats, err := service.Run(ctx, runWindow())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.TournamentsImported)
	assert.Equal(t, 1, stats.EventsImported)
	assert.Equal(t, 2, stats.EventsSkipped)
	assert.Equal(t, 10, stats.SetsCreated)
	assert.Equal(t, 4, stats.PlayersCreated)

	counts := store.CommittedCounts()
	assert.Equal(t, 3, counts["events"])
	assert.Equal(t, 10, counts["sets"])
	assert.Equal(t, 4, counts["players"])
	// tournament insert, set flush, event mark, tournament mark
	assert.Equal(t, 4, store.Commits())

	assert.Zero(t, source.setCalls[12], "ACTIVE event must not be fetched")
	assert.Zero(t, source.setCalls[13], "denylisted event must not be fetched")

	stored, ok, err := store.Tournaments().GetByID(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, stored.Imported)
	event, _, err := store.Events().GetByID(ctx, 11)
	require.NoError(t, err)
	assert.True(t, event.Imported)

	writes, calls := store.Writes(), source.setCalls[11]
	again, err := service.Run(ctx, runWindow())
	require.NoError(t, err)
	assert.Equal(t, 1, again.TournamentsSkipped)
	assert.Zero(t, again.SetsCreated)
	assert.Equal(t, writes, store.Writes(), "second run must not write")
	assert.Equal(t, calls, source.setCalls[11], "second run must not fetch sets")
}

func TestHarvestService_CrashLosesAtMostOneBatch(t *testing.T) {
	ctx := context.Background()
	source := scenarioSource()
	source.perPage = 3
	source.failSetsPage = map[int64]int{11: 3}
	store := memory.NewSession()
	service := newHarvestForTest(t, source, store, 4)

	_, err := service.Run(ctx, runWindow())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFetchExhausted))

	// process dies: nothing after the last commit survives
	require.NoError(t, store.Rollback())
	assert.Equal(t, 4, store.CommittedCounts()["sets"])

	event, _, err := store.Events().GetByID(ctx, 11)
	require.NoError(t, err)
	assert.False(t, event.Imported, "failed event must stay pending")
	stored, _, err := store.Tournaments().GetByID(ctx, 1)
	require.NoError(t, err)
	assert.False(t, stored.Imported, "failed tournament must stay pending")

	stats, err := service.Run(ctx, runWindow())
	require.NoError(t, err)
	assert.Equal(t, 4, stats.SetsSkipped)
	assert.Equal(t, 6, stats.SetsCreated)
	assert.Equal(t, 10, store.CommittedCounts()["sets"])
	assert.Equal(t, 4, store.CommittedCounts()["players"])
}

func TestHarvestService_ResumedEventReusesStoredTeams(t *testing.T) {
	ctx := context.Background()

	clean := memory.NewSession()
	_, err := newHarvestForTest(t, scenarioSource(), clean, 4).Run(ctx, runWindow())
	require.NoError(t, err)
	cleanTeams := clean.CommittedCounts()["teams"]
	require.Equal(t, 4, cleanTeams)

	source := scenarioSource()
	source.perPage = 3
	source.failSetsPage = map[int64]int{11: 3}
	store := memory.NewSession()
	service := newHarvestForTest(t, source, store, 4)

	_, err = service.Run(ctx, runWindow())
	require.Error(t, err)
	require.NoError(t, store.Rollback())
	require.Equal(t, cleanTeams, store.CommittedCounts()["teams"], "first batch already covers every pairing")

	stats, err := service.Run(ctx, runWindow())
	require.NoError(t, err)
	assert.Equal(t, 6, stats.SetsCreated)
	assert.Zero(t, stats.TeamsCreated)
	assert.Zero(t, stats.PlayersCreated)
	assert.Equal(t, cleanTeams, store.CommittedCounts()["teams"])

	rows, err := store.Sets().ListDetailed(ctx, matchset.ExportQuery{
		StartDate: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, rows, 10)
	teamOf := map[int64]int64{}
	for _, row := range rows {
		for _, side := range []struct {
			id     int64
			player int64
		}{
			{row.Winner.TeamID, row.WinnerPlayers[0].ID},
			{row.Loser.TeamID, row.LoserPlayers[0].ID},
		} {
			if prev, ok := teamOf[side.player]; ok {
				assert.Equal(t, prev, side.id, "player %d split across teams", side.player)
			}
			teamOf[side.player] = side.id
		}
	}
}

func TestHarvestService_InterruptKeepsStagedWorkForClose(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source := scenarioSource()
	source.onSetsPage = func(_ int64, page int) {
		if page == 2 {
			cancel()
		}
	}
	store := memory.NewSession()
	service := newHarvestForTest(t, source, store, DefaultSetCommitBatch)

	_, err := service.Run(ctx, runWindow())
	require.Error(t, err)
	assert.True(t, IsInterrupted(err))

	require.NoError(t, store.Close(context.Background()))
	assert.Equal(t, 4, store.CommittedCounts()["sets"])

	event, _, err := store.Events().GetByID(context.Background(), 11)
	require.NoError(t, err)
	assert.False(t, event.Imported)
}

func TestHarvestService_PlayerModeStoresPlayerSides(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSession()
	filter, err := tournament.NewEventFilter(tournament.DefaultDenylist)
	require.NoError(t, err)
	service := NewHarvestService(scenarioSource(), NewIngestionService(store, 0, logging.NewNop()), filter,
		HarvestConfig{SideMode: matchset.SidePlayer}, logging.NewNop())

	stats, err := service.Run(ctx, runWindow())
	require.NoError(t, err)
	assert.Zero(t, stats.TeamsCreated)
	assert.Zero(t, store.CommittedCounts()["teams"])

	rows, err := store.Sets().ListDetailed(ctx, matchset.ExportQuery{
		StartDate: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, rows, 10)
	assert.Equal(t, matchset.SidePlayer, rows[0].Winner.Kind)
}

func TestHarvestService_RejectsInvertedWindow(t *testing.T) {
	store := memory.NewSession()
	service := newHarvestForTest(t, scenarioSource(), store, 0)

	window := runWindow()
	window.AfterDate, window.BeforeDate = window.BeforeDate, window.AfterDate
	_, err := service.Run(context.Background(), window)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Zero(t, store.Writes())
}

func TestHarvestService_UndecidedSetStopsRun(t *testing.T) {
	source := scenarioSource()
	source.sets[11][2].Slots[1].Score = scoreOf(2)
	store := memory.NewSession()
	service := newHarvestForTest(t, source, store, DefaultSetCommitBatch)

	_, err := service.Run(context.Background(), runWindow())
	assert.ErrorIs(t, err, ErrUndecidedSet)
	// the operator needs both ids to mark the event by hand
	assert.ErrorContains(t, err, "harvest event id=11")
	assert.ErrorContains(t, err, "set 1002")

	event, _, err := store.Events().GetByID(context.Background(), 11)
	require.NoError(t, err)
	assert.False(t, event.Imported)

	// an event marked imported by hand is skipped and the tournament completes
	require.NoError(t, store.Rollback())
	require.NoError(t, store.Events().MarkImported(context.Background(), 11))
	require.NoError(t, store.Commit(context.Background()))
	stats, err := service.Run(context.Background(), runWindow())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TournamentsImported)
	assert.Zero(t, stats.SetsCreated)
}

func TestHarvestService_BadSourceRecordsAreNotInvalidInput(t *testing.T) {
	cases := []struct {
		name    string
		corrupt func(*sourceStub)
	}{
		{"null event state", func(s *sourceStub) { s.tournaments[0].Events[1].State = "" }},
		{"unknown event state", func(s *sourceStub) { s.tournaments[0].Events[1].State = "PENDING" }},
		{"event without id", func(s *sourceStub) { s.tournaments[0].Events[1].ExternalID = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			source := scenarioSource()
			tc.corrupt(source)
			store := memory.NewSession()

			_, err := newHarvestForTest(t, source, store, DefaultSetCommitBatch).Run(context.Background(), runWindow())
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrSourceData), "got %v", err)
			assert.False(t, errors.Is(err, ErrInvalidInput), "got %v", err)
			assert.Zero(t, store.CommittedCounts()["tournaments"])
		})
	}
}
