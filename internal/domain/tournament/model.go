package tournament

import (
	"fmt"
	"strings"
	"time"
)

// ActivityState is the lifecycle state the source reports for an event.
type ActivityState string

const (
	StateCreated   ActivityState = "CREATED"
	StateActive    ActivityState = "ACTIVE"
	StateCompleted ActivityState = "COMPLETED"
	StateReady     ActivityState = "READY"
	StateInvalid   ActivityState = "INVALID"
	StateCalled    ActivityState = "CALLED"
	StateQueued    ActivityState = "QUEUED"
)

var AllStates = map[ActivityState]struct{}{
	StateCreated:   {},
	StateActive:    {},
	StateCompleted: {},
	StateReady:     {},
	StateInvalid:   {},
	StateCalled:    {},
	StateQueued:    {},
}

func ParseActivityState(value string) (ActivityState, error) {
	state := ActivityState(strings.ToUpper(strings.TrimSpace(value)))
	if _, ok := AllStates[state]; !ok {
		return "", fmt.Errorf("invalid activity state: %q", value)
	}
	return state, nil
}

// Tournament is a top-level competition; Imported is set once every eligible
// event under it has been durably ingested.
type Tournament struct {
	ID          int64
	Name        string
	URL         string
	City        string
	CountryCode string
	AddrState   string
	Events      []Event
	Imported    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (t Tournament) Validate() error {
	if t.ID <= 0 {
		return fmt.Errorf("tournament id is required")
	}
	for _, e := range t.Events {
		if e.TournamentID != t.ID {
			return fmt.Errorf("event %d belongs to tournament %d, not %d", e.ID, e.TournamentID, t.ID)
		}
	}
	return nil
}

// Event is a single bracket within a tournament.
type Event struct {
	ID           int64
	TournamentID int64
	Name         string
	NumEntrants  int
	Slug         string
	StartAt      time.Time
	State        ActivityState
	Imported     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (e Event) Validate() error {
	if e.ID <= 0 {
		return fmt.Errorf("event id is required")
	}
	if e.TournamentID <= 0 {
		return fmt.Errorf("event %d tournament id is required", e.ID)
	}
	if _, ok := AllStates[e.State]; !ok {
		return fmt.Errorf("event %d has invalid state: %q", e.ID, e.State)
	}
	return nil
}

// SlugTail returns the last path segment of the event slug,
// e.g. "melee-singles" for "tournament/genesis-9/event/melee-singles".
func (e Event) SlugTail() string {
	slug := strings.TrimRight(e.Slug, "/")
	if i := strings.LastIndexByte(slug, '/'); i >= 0 {
		return slug[i+1:]
	}
	return slug
}
