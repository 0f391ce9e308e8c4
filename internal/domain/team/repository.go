package team

import "context"

// Repository creates teams; teams have no natural key and are never looked up by content.
type Repository interface {
	Create(ctx context.Context, playerIDs []int64) (Team, error)
	// ListByEvent returns the teams already referenced by the event's stored
	// sets, ordered by id, so a resumed event keeps using them.
	ListByEvent(ctx context.Context, eventID int64) ([]Team, error)
}
