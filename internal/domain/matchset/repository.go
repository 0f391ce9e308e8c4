package matchset

import "context"

// Repository describes set persistence needs from use cases.
type Repository interface {
	Exists(ctx context.Context, setID int64) (bool, error)
	Create(ctx context.Context, set Set) error
	ListDetailed(ctx context.Context, query ExportQuery) ([]Detailed, error)
}
