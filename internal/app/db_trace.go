package app

import (
	"fmt"
	"regexp"
	"strings"
)

const maxTracedQueryLength = 512

var (
	queryWhitespaceRegex = regexp.MustCompile(`\s+`)
	valuesTupleRegex     = regexp.MustCompile(`\((?:\$\d+, )*\$\d+\)`)
)

// formatDBQueryForTrace flattens whitespace and folds multi-row VALUES
// lists, such as team membership inserts, down to their first tuple.
func formatDBQueryForTrace(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	normalized := queryWhitespaceRegex.ReplaceAllString(query, " ")
	normalized = foldValues(normalized)
	if len(normalized) <= maxTracedQueryLength {
		return normalized
	}

	return normalized[:maxTracedQueryLength] + "..."
}

func foldValues(query string) string {
	idx := strings.Index(query, " VALUES ")
	if idx < 0 {
		return query
	}
	head, tail := query[:idx+len(" VALUES ")], query[idx+len(" VALUES "):]

	tuples := valuesTupleRegex.FindAllStringIndex(tail, -1)
	if len(tuples) < 2 {
		return query
	}
	last := tuples[len(tuples)-1]
	folded := tail[tuples[0][0]:tuples[0][1]] + fmt.Sprintf(" /* +%d rows */", len(tuples)-1)
	return head + tail[:tuples[0][0]] + folded + tail[last[1]:]
}
