package simulate

import (
	"strings"
	"time"

	"github.com/gyaneshwarpardhi/synthdata/internal/dataset"
)

type period int

const (
	monthly period = iota
	annual
)

// cadence reads the "entity.attribute" a recurring event keys on from the
// firing instance. Values mentioning "annual" or "year" recur yearly;
// everything else, including a missing value, recurs monthly.
func cadence(on string, inst dataset.Record) period {
	attr := on
	if _, a, ok := strings.Cut(on, "."); ok {
		attr = a
	}
	v := strings.ToLower(inst.String(attr))
	if strings.Contains(v, "annual") || strings.Contains(v, "year") {
		return annual
	}
	return monthly
}

// due reports whether date is an anniversary of born for p. The birth
// day-of-month is clamped to the last day of shorter months.
func due(p period, born, date time.Time) bool {
	if !date.After(born) {
		return false
	}
	if p == annual && date.Month() != born.Month() {
		return false
	}
	return date.Day() == clampDay(born.Day(), date)
}

func clampDay(day int, in time.Time) int {
	last := time.Date(in.Year(), in.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		return last
	}
	return day
}
