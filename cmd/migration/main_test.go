package main

import "testing"

func TestParseSteps(t *testing.T) {
	if got, err := parseSteps(""); err != nil || got != 1 {
		t.Fatalf("default steps: got=%d err=%v", got, err)
	}
	if got, err := parseSteps(" 3 "); err != nil || got != 3 {
		t.Fatalf("explicit steps: got=%d err=%v", got, err)
	}
	for _, bad := range []string{"0", "-2", "x"} {
		if _, err := parseSteps(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestParseVersion(t *testing.T) {
	if got, err := parseVersion("2"); err != nil || got != 2 {
		t.Fatalf("parse version: got=%d err=%v", got, err)
	}
	for _, bad := range []string{"", "-1", "v2"} {
		if _, err := parseVersion(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}
