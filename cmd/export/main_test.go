package main

import (
	"path/filepath"
	"testing"
	"time"
)

func TestOutputPath(t *testing.T) {
	now := time.Unix(1735689600, 0)

	if got, want := outputPath("output", "", now), filepath.Join("output", "1735689600.csv"); got != want {
		t.Fatalf("unexpected path: got=%q want=%q", got, want)
	}
	if got, want := outputPath("/tmp/x", "idf", now), filepath.Join("/tmp/x", "1735689600-idf.csv"); got != want {
		t.Fatalf("unexpected path: got=%q want=%q", got, want)
	}
	if got, want := outputPath(" ", " ", now), filepath.Join("output", "1735689600.csv"); got != want {
		t.Fatalf("unexpected path: got=%q want=%q", got, want)
	}
}
