package app

import (
	"flag"
	"testing"
	"time"

	"github.com/urfave/cli/v2"
)

func contextWithFlags(t *testing.T, args ...string) *cli.Context {
	t.Helper()
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, f := range WindowFlags() {
		if err := f.Apply(set); err != nil {
			t.Fatalf("apply flag: %v", err)
		}
	}
	if err := set.Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return cli.NewContext(cli.NewApp(), set, nil)
}

func TestWindowFromFlags_Defaults(t *testing.T) {
	w, err := WindowFromFlags(contextWithFlags(t))
	if err != nil {
		t.Fatalf("window: %v", err)
	}
	if !w.Start.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) || !w.End.Equal(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected dates: %s - %s", w.Start, w.End)
	}
	if w.CountryCode != "FR" || w.AddrState != "IDF" {
		t.Fatalf("unexpected location: %q %q", w.CountryCode, w.AddrState)
	}
}

func TestWindowFromFlags_NoneDisablesFilters(t *testing.T) {
	w, err := WindowFromFlags(contextWithFlags(t, "--country-code", "None", "--addr-state", "none"))
	if err != nil {
		t.Fatalf("window: %v", err)
	}
	if w.CountryCode != "" || w.AddrState != "" {
		t.Fatalf("expected disabled filters, got %q %q", w.CountryCode, w.AddrState)
	}
	q := w.ExportQuery()
	if q.CountryCode != "" || !q.StartDate.Equal(w.Start) {
		t.Fatalf("unexpected export query: %+v", q)
	}
}

func TestWindowFromFlags_InvalidDate(t *testing.T) {
	if _, err := WindowFromFlags(contextWithFlags(t, "--start-date", "2025-01-01")); err == nil {
		t.Fatalf("expected error for bad start date")
	}
}
