// Package quality scores a finished event stream. Findings are advisory and
// never block output.
package quality

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gyaneshwarpardhi/synthdata/internal/dataset"
	"github.com/gyaneshwarpardhi/synthdata/internal/enforce"
)

const (
	issuePenalty   = 10
	warningPenalty = 2
	// nullRateWarn flags columns where more than half the cells are empty.
	nullRateWarn = 0.5
	// minDiversityRows is the smallest stream on which low diversity is reported.
	minDiversityRows = 20
)

// Report is the outcome of Validate.
type Report struct {
	Issues       []string `json:"issues"`
	Warnings     []string `json:"warnings"`
	Stats        Stats    `json:"stats"`
	IsValid      bool     `json:"is_valid"`
	QualityScore int      `json:"quality_score"`
}

// Stats summarises the stream that was checked.
type Stats struct {
	Rows              int                `json:"rows"`
	Columns           int                `json:"columns"`
	PlaceholderValues int                `json:"placeholder_values"`
	RangeViolations   int                `json:"range_violations"`
	InvalidDates      int                `json:"invalid_dates"`
	NullRate          map[string]float64 `json:"null_rate"`
	Distinct          map[string]int     `json:"distinct"`
}

// Options tunes the date plausibility window.
type Options struct {
	Now time.Time
	// MaxAgeYears bounds how far in the past a date may be. Dates after Now
	// plus one year are also implausible.
	MaxAgeYears int
}

// Validate checks stream for placeholder values, numeric range violations,
// unparseable or implausible dates, low categorical diversity, and high null
// rates. The score starts at 100 and loses 10 per issue and 2 per warning.
func Validate(stream dataset.Stream, opts Options) Report {
	if opts.Now.IsZero() {
		opts.Now = time.Now().UTC()
	}
	if opts.MaxAgeYears <= 0 {
		opts.MaxAgeYears = 30
	}
	rep := Report{
		Issues:   []string{},
		Warnings: []string{},
		Stats: Stats{
			Rows:     len(stream),
			NullRate: map[string]float64{},
			Distinct: map[string]int{},
		},
	}
	if len(stream) == 0 {
		rep.Issues = append(rep.Issues, "stream is empty")
		return finish(rep)
	}

	cols := columns(stream)
	rep.Stats.Columns = len(cols)
	earliest := opts.Now.AddDate(-opts.MaxAgeYears, 0, 0)
	latest := opts.Now.AddDate(1, 0, 0)

	for _, col := range cols {
		var nulls, placeholders, violations, badDates int
		distinct := map[string]bool{}
		strs := 0
		r, ranged := enforce.Ranges[col]
		isDate := dataset.IsDateColumn(col)

		for _, rec := range stream {
			if rec.IsEmpty(col) {
				nulls++
				continue
			}
			v := rec[col]
			if s, ok := v.(string); ok {
				strs++
				distinct[s] = true
				if enforce.IsPlaceholder(s) {
					placeholders++
				}
			}
			if ranged {
				if f, ok := dataset.ToFloat64(v); !ok || !r.Contains(f) {
					violations++
				}
			}
			if isDate {
				t, _, ok := dataset.ParseTime(rec.String(col))
				if !ok || t.Before(earliest) || t.After(latest) {
					badDates++
				}
			}
		}

		rate := float64(nulls) / float64(len(stream))
		rep.Stats.NullRate[col] = rate
		rep.Stats.Distinct[col] = len(distinct)
		rep.Stats.PlaceholderValues += placeholders
		rep.Stats.RangeViolations += violations
		rep.Stats.InvalidDates += badDates

		if placeholders > 0 {
			rep.Issues = append(rep.Issues, fmt.Sprintf("column %s: %d placeholder values", col, placeholders))
		}
		if violations > 0 {
			rep.Issues = append(rep.Issues, fmt.Sprintf("column %s: %d values outside %g-%g", col, violations, r.Min, r.Max))
		}
		if badDates > 0 {
			rep.Issues = append(rep.Issues, fmt.Sprintf("column %s: %d unparseable or implausible dates", col, badDates))
		}
		if rate > nullRateWarn {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("column %s: %.0f%% empty", col, rate*100))
		}
		if lowDiversity(col, strs, len(distinct), isDate) {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("column %s: only one distinct value across %d rows", col, strs))
		}
	}
	return finish(rep)
}

// lowDiversity flags categorical columns that never vary. Identifier and date
// columns are unique by nature and skipped.
func lowDiversity(col string, strs, distinct int, isDate bool) bool {
	if isDate || strs < minDiversityRows || col == "id" || strings.HasSuffix(col, "_id") {
		return false
	}
	return distinct == 1
}

func finish(rep Report) Report {
	score := 100 - issuePenalty*len(rep.Issues) - warningPenalty*len(rep.Warnings)
	if score < 0 {
		score = 0
	}
	rep.QualityScore = score
	rep.IsValid = len(rep.Issues) == 0
	return rep
}

func columns(stream dataset.Stream) []string {
	seen := map[string]bool{}
	for _, rec := range stream {
		for k := range rec {
			seen[k] = true
		}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
