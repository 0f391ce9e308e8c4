package usecase

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/bracket-harvest/internal/domain/matchset"
	"github.com/riskibarqy/bracket-harvest/internal/domain/player"
	"github.com/riskibarqy/bracket-harvest/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

const exportEventDateLayout = "2006-01-02 15:04:05-07:00"

// ExportService renders persisted sets as a flat CSV, one row per set.
type ExportService struct {
	sets   matchset.Repository
	logger *logging.Logger
}

func NewExportService(sets matchset.Repository, logger *logging.Logger) *ExportService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ExportService{sets: sets, logger: logger}
}

// Export writes every set matching query to w and returns the row count.
func (s *ExportService) Export(ctx context.Context, query matchset.ExportQuery, w io.Writer) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ExportService.Export",
		attribute.String("export.start_date", query.StartDate.Format(time.DateOnly)),
		attribute.String("export.end_date", query.EndDate.Format(time.DateOnly)),
	)
	defer span.End()

	if query.StartDate.IsZero() || query.EndDate.IsZero() {
		return 0, fmt.Errorf("%w: export window requires start and end dates", ErrInvalidInput)
	}
	if query.EndDate.Before(query.StartDate) {
		return 0, fmt.Errorf("%w: end date %s is before start date %s", ErrInvalidInput,
			query.EndDate.Format(time.DateOnly), query.StartDate.Format(time.DateOnly))
	}

	started := time.Now()
	rows, err := s.sets.ListDetailed(ctx, query)
	if err != nil {
		recordSpanError(span, err)
		return 0, fmt.Errorf("list sets for export: %w", err)
	}
	s.logger.InfoContext(ctx, "sets fetched", "count", len(rows), "elapsed", time.Since(started).String())

	width := 0
	for _, row := range rows {
		width = max(width, len(row.WinnerPlayers), len(row.LoserPlayers))
	}

	out := newQuoteAllWriter(w)
	out.write(exportHeader(width))
	for _, row := range rows {
		out.write(exportRow(row, width))
	}
	if err := out.flush(); err != nil {
		recordSpanError(span, err)
		return 0, fmt.Errorf("write export: %w", err)
	}
	return len(rows), nil
}

func exportHeader(width int) []string {
	header := []string{"set_id", "event_date", "tournament", "event", "event_entrants"}
	for i := 1; i <= width; i++ {
		header = append(header, "winner_"+strconv.Itoa(i))
	}
	for i := 1; i <= width; i++ {
		header = append(header, "loser_"+strconv.Itoa(i))
	}
	return append(header,
		"winner_seed", "loser_seed", "winner_score", "loser_score",
		"winner_team_players_count", "loser_team_players_count",
	)
}

func exportRow(row matchset.Detailed, width int) []string {
	record := []string{
		strconv.FormatInt(row.ID, 10),
		row.EventStartAt.UTC().Format(exportEventDateLayout),
		labelWithID(row.TournamentName, row.TournamentID),
		labelWithID(row.EventName, row.EventID),
		strconv.Itoa(row.EventEntrants),
	}
	record = append(record, playerCells(row.WinnerPlayers, width)...)
	record = append(record, playerCells(row.LoserPlayers, width)...)
	return append(record,
		optionalInt(row.WinnerSeed),
		optionalInt(row.LoserSeed),
		strconv.Itoa(row.WinnerScore),
		strconv.Itoa(row.LoserScore),
		strconv.Itoa(len(row.WinnerPlayers)),
		strconv.Itoa(len(row.LoserPlayers)),
	)
}

func playerCells(players []player.Player, width int) []string {
	cells := make([]string, width)
	for i, p := range players {
		cells[i] = p.Label()
	}
	return cells
}

func labelWithID(name string, id int64) string {
	return name + " (" + strconv.FormatInt(id, 10) + ")"
}

func optionalInt(value *int) string {
	if value == nil {
		return ""
	}
	return strconv.Itoa(*value)
}

// quoteAllWriter quotes every field, which encoding/csv cannot be told to do.
type quoteAllWriter struct {
	w   *bufio.Writer
	err error
}

func newQuoteAllWriter(w io.Writer) *quoteAllWriter {
	return &quoteAllWriter{w: bufio.NewWriter(w)}
}

func (q *quoteAllWriter) write(record []string) {
	if q.err != nil {
		return
	}
	var line strings.Builder
	for i, field := range record {
		if i > 0 {
			line.WriteByte(',')
		}
		line.WriteByte('"')
		line.WriteString(strings.ReplaceAll(field, `"`, `""`))
		line.WriteByte('"')
	}
	line.WriteString("\r\n")
	_, q.err = q.w.WriteString(line.String())
}

func (q *quoteAllWriter) flush() error {
	if q.err != nil {
		return q.err
	}
	return q.w.Flush()
}
