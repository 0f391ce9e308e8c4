package main

import (
	"context"
	"fmt"
	"testing"

	"github.com/riskibarqy/bracket-harvest/internal/usecase"
)

func TestRunFailureCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid window", fmt.Errorf("%w: end before start", usecase.ErrInvalidInput), exitConfig},
		{"bad source record", fmt.Errorf("%w: tournament 1: %v", usecase.ErrSourceData, usecase.ErrInvalidInput), exitFailure},
		{"source record wrapping both", fmt.Errorf("%w: %w", usecase.ErrSourceData, usecase.ErrInvalidInput), exitFailure},
		{"fetch exhausted", fmt.Errorf("start.gg sets query: %w", usecase.ErrFetchExhausted), exitFailure},
		{"undecided set", fmt.Errorf("set 5: %w", usecase.ErrUndecidedSet), exitFailure},
		{"deadline", context.DeadlineExceeded, exitFailure},
	}
	for _, tc := range tests {
		if got := runFailureCode(tc.err); got != tc.want {
			t.Fatalf("%s: exit code got=%d want=%d", tc.name, got, tc.want)
		}
	}
}
