package config

import (
	"fmt"
	"strings"
	"time"
)

// RunDateLayout is the day format accepted by the run window flags.
const RunDateLayout = "02/01/2006"

const (
	DefaultStartDate   = "01/01/2025"
	DefaultEndDate     = "01/04/2025"
	DefaultCountryCode = "FR"
	DefaultAddrState   = "IDF"
)

// ParseRunDate parses a DD/MM/YYYY day as UTC midnight.
func ParseRunDate(value string) (time.Time, error) {
	out, err := time.ParseInLocation(RunDateLayout, strings.TrimSpace(value), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected DD/MM/YYYY", value)
	}
	return out, nil
}

// OptionalFilter returns "" for values that disable a location filter.
func OptionalFilter(value string) string {
	value = strings.TrimSpace(value)
	if strings.EqualFold(value, "none") {
		return ""
	}
	return value
}
