package usecase

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/bracket-harvest/internal/domain/matchset"
	"github.com/riskibarqy/bracket-harvest/internal/domain/player"
	matchsetmock "github.com/riskibarqy/bracket-harvest/internal/mocks/domain/matchset"
	"github.com/riskibarqy/bracket-harvest/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestExportService_WritesQuotedPaddedRowsUsingMockery(t *testing.T) {
	t.Parallel()

	day := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	query := matchset.ExportQuery{StartDate: day, EndDate: day, CountryCode: "FR"}
	repo := matchsetmock.NewRepository(t)
	repo.
		On("ListDetailed", mock.Anything, query).
		Return([]matchset.Detailed{
			{
				Set: matchset.Set{
					ID: 5, EventID: 11, WinnerSeed: intPtr(1), WinnerScore: 3, LoserScore: -1,
					Winner: matchset.TeamSide(1), Loser: matchset.TeamSide(2),
				},
				EventName: "Doubles", EventEntrants: 8, EventStartAt: day.Add(18 * time.Hour),
				TournamentID: 1, TournamentName: `Say "Hi"`,
				WinnerPlayers: []player.Player{{ID: 10, GamerTag: "a"}, {ID: 11, GamerTag: "b"}},
				LoserPlayers:  []player.Player{{ID: 20, GamerTag: "c"}},
			},
		}, nil).
		Once()

	var buf bytes.Buffer
	n, err := NewExportService(repo, logging.NewNop()).Export(context.Background(), query, &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\r\n"), "\r\n")
	require.Len(t, lines, 2)
	assert.Equal(t,
		`"set_id","event_date","tournament","event","event_entrants","winner_1","winner_2","loser_1","loser_2",`+
			`"winner_seed","loser_seed","winner_score","loser_score","winner_team_players_count","loser_team_players_count"`,
		lines[0])
	assert.Equal(t,
		`"5","2025-02-01 18:00:00+00:00","Say ""Hi"" (1)","Doubles (11)","8","a (10)","b (11)","c (20)","",`+
			`"1","","3","-1","2","1"`,
		lines[1])
}

func TestExportService_EmptyResultWritesHeaderOnlyUsingMockery(t *testing.T) {
	t.Parallel()

	day := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	repo := matchsetmock.NewRepository(t)
	repo.On("ListDetailed", mock.Anything, mock.Anything).Return(nil, nil).Once()

	var buf bytes.Buffer
	n, err := NewExportService(repo, logging.NewNop()).Export(context.Background(), matchset.ExportQuery{StartDate: day, EndDate: day}, &buf)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, `"set_id","event_date","tournament","event","event_entrants","winner_seed","loser_seed",`+
		`"winner_score","loser_score","winner_team_players_count","loser_team_players_count"`+"\r\n", buf.String())
}

func TestExportService_RejectsInvertedWindow(t *testing.T) {
	t.Parallel()

	repo := matchsetmock.NewRepository(t)
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err := NewExportService(repo, logging.NewNop()).Export(context.Background(),
		matchset.ExportQuery{StartDate: start, EndDate: start.AddDate(0, 0, -1)}, &bytes.Buffer{})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestExportService_PropagatesRepositoryErrorUsingMockery(t *testing.T) {
	t.Parallel()

	boom := errors.New("db down")
	day := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	repo := matchsetmock.NewRepository(t)
	repo.On("ListDetailed", mock.Anything, mock.Anything).Return(nil, boom).Once()

	_, err := NewExportService(repo, logging.NewNop()).Export(context.Background(), matchset.ExportQuery{StartDate: day, EndDate: day}, &bytes.Buffer{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected repository error, got %v", err)
	}
}
