package team

import (
	"slices"
	"strconv"
	"strings"
)

// Team is a locally synthesized group of players competing as one side.
type Team struct {
	ID        int64
	PlayerIDs []int64
}

// Key identifies a membership regardless of participant order.
func Key(playerIDs []int64) string {
	ids := slices.Clone(playerIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatInt(id, 10))
	}
	return strings.Join(parts, ",")
}
