package usecase

import (
	"errors"

	"github.com/riskibarqy/bracket-harvest/internal/platform/resilience"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	// ErrFetchExhausted marks a page that could not be fetched within the attempt budget.
	ErrFetchExhausted = resilience.ErrRetriesExhausted
	// ErrUndecidedSet is returned for a set whose slots carry equal scores.
	ErrUndecidedSet = errors.New("set has no winner")
	ErrMalformedSet = errors.New("malformed set")
	// ErrSourceData marks records from the source that cannot be stored as fetched.
	ErrSourceData = errors.New("unexpected source data")
)
