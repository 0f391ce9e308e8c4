package player

import "context"

// Repository describes player persistence needs from use cases.
type Repository interface {
	GetByID(ctx context.Context, playerID int64) (Player, bool, error)
	// Create must not fail when the id already exists.
	Create(ctx context.Context, player Player) error
}
