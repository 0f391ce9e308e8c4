package usecase

import (
	"context"
	"time"

	"github.com/riskibarqy/bracket-harvest/internal/platform/pagination"
)

// TournamentSource is the paginated external data source.
type TournamentSource interface {
	FetchTournamentsPage(ctx context.Context, filter TournamentFilter, page int) (pagination.Page[ExternalTournament], error)
	FetchEventSetsPage(ctx context.Context, eventID int64, page int) (pagination.Page[ExternalSet], error)
}

// TournamentFilter is the run window. An empty CountryCode or AddrState
// disables that filter.
type TournamentFilter struct {
	AfterDate   time.Time `validate:"required"`
	BeforeDate  time.Time `validate:"required,gtefield=AfterDate"`
	CountryCode string    `validate:"omitempty,iso3166_1_alpha2"`
	AddrState   string
}

type ExternalTournament struct {
	ExternalID  int64
	Name        string
	URL         string
	City        string
	CountryCode string
	AddrState   string
	Events      []ExternalEvent
}

type ExternalEvent struct {
	ExternalID  int64
	Name        string
	NumEntrants int
	Slug        string
	StartAt     time.Time
	State       string
}

type ExternalSet struct {
	ExternalID int64
	Slots      []ExternalSlot
}

// ExternalSlot is one side of a raw set. Score is nil when the source has
// no value; -1 denotes a disqualification.
type ExternalSlot struct {
	Seed         *int
	Score        *int
	Participants []ExternalParticipant
}

type ExternalParticipant struct {
	PlayerExternalID int64
	GamerTag         string
}
