package tournament

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultDenylist matches side brackets and non-singles formats.
var DefaultDenylist = []string{
	`side-event`,
	`attente`,
	`melt-chill`,
	`double`,
	`ladder`,
	`cpu`,
	`random`,
	`squadstrike`,
	`squad-strike`,
	`squads`,
	`amiibo`,
}

// EventFilter decides which events are fetched for sets. Patterns are
// case-sensitive regular expressions searched in the last slug segment.
type EventFilter struct {
	patterns []*regexp.Regexp
}

func NewEventFilter(patterns []string) (EventFilter, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		re, err := regexp.Compile(p)
		if err != nil {
			return EventFilter{}, fmt.Errorf("compile event denylist pattern %q: %w", p, err)
		}
		out = append(out, re)
	}
	return EventFilter{patterns: out}, nil
}

func (f EventFilter) Eligible(e Event) bool {
	return f.SkipReason(e) == ""
}

// SkipReason explains why e is not eligible, or returns "" when it is.
func (f EventFilter) SkipReason(e Event) string {
	if e.State != StateCompleted {
		return "state " + string(e.State)
	}
	tail := e.SlugTail()
	for _, re := range f.patterns {
		if re.MatchString(tail) {
			return "denylisted by " + re.String()
		}
	}
	return ""
}
