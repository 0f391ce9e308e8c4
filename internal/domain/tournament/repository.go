package tournament

import "context"

// Repository describes tournament persistence needs from use cases.
type Repository interface {
	GetByID(ctx context.Context, tournamentID int64) (Tournament, bool, error)
	// Create inserts the tournament row only; events go through EventRepository.
	Create(ctx context.Context, tournament Tournament) error
	MarkImported(ctx context.Context, tournamentID int64) error
}

type EventRepository interface {
	GetByID(ctx context.Context, eventID int64) (Event, bool, error)
	ListByTournament(ctx context.Context, tournamentID int64) ([]Event, error)
	Create(ctx context.Context, event Event) error
	MarkImported(ctx context.Context, eventID int64) error
}
