package pagination

import (
	"context"
	"fmt"
	"iter"

	"github.com/riskibarqy/bracket-harvest/internal/platform/logging"
)

// Info is the page-info block reported by the source alongside each page.
type Info struct {
	Total      int
	TotalPages int
	Page       int
	PerPage    int
}

type Page[T any] struct {
	Items []T
	Info  Info
	// QueryComplexity is the cost the source charged for the request, when reported.
	QueryComplexity int
}

type PageFunc[T any] func(ctx context.Context, page int) (Page[T], error)

// All streams every item of every page, fetching page 1 first and then
// strictly increasing pages until the total reported by page 1 is reached.
// A failed page ends the sequence with that error; items already yielded
// stay yielded. Ranging over the result again restarts from page 1.
func All[T any](ctx context.Context, fetch PageFunc[T], logger *logging.Logger, label string) iter.Seq2[T, error] {
	if logger == nil {
		logger = logging.Default()
	}

	return func(yield func(T, error) bool) {
		var zero T
		totalPages := 1
		for page := 1; page <= totalPages; page++ {
			if err := ctx.Err(); err != nil {
				yield(zero, err)
				return
			}

			result, err := fetch(ctx, page)
			if err != nil {
				yield(zero, fmt.Errorf("fetch %s page %d: %w", label, page, err))
				return
			}
			if page == 1 {
				totalPages = result.Info.TotalPages
			}

			logger.InfoContext(ctx, "page fetched",
				"query", label,
				"page", page,
				"total_pages", totalPages,
				"total", result.Info.Total,
				"per_page", result.Info.PerPage,
				"query_complexity", result.QueryComplexity,
			)

			for _, item := range result.Items {
				if !yield(item, nil) {
					return
				}
			}
		}
	}
}
