package enforce

import (
	"sort"

	"github.com/gyaneshwarpardhi/synthdata/internal/dataset"
	"github.com/gyaneshwarpardhi/synthdata/internal/fake"
)

// defaultValues fill missing or empty fields.
var defaultValues = map[string][]string{
	"status":         {"active", "pending", "completed"},
	"payment_method": {"credit_card", "debit_card", "paypal", "bank_transfer"},
	"channel":        {"web", "mobile", "email"},
	"priority":       {"low", "medium", "high"},
	"region":         {"North America", "Europe", "Asia Pacific", "Latin America"},
	"gender":         {"female", "male", "non-binary"},
}

// defaultDateFields get a random instant in the trailing year when missing.
var defaultDateFields = []string{"created_at", "updated_at", "signup_date", "event_date", "transaction_date"}

var realisticCountries = []string{
	"United States", "United Kingdom", "Canada", "Germany", "France",
	"Australia", "Japan", "India", "Brazil", "Netherlands", "Spain", "Singapore",
}

// Defaults fills missing or empty fields: configured value sets, the standard
// date fields, country, and currency. Fields already carrying a value are kept.
var Defaults Enforcer = NewFunc("defaults", func(rec dataset.Record, src *fake.Source) {
	for _, k := range defaultFields {
		if rec.IsEmpty(k) {
			rec[k] = src.Pick(defaultValues[k])
		}
	}
	for _, k := range defaultDateFields {
		if rec.IsEmpty(k) {
			rec[k] = dataset.FormatTimestamp(src.Trailing(365))
		}
	}
	if rec.IsEmpty("country") {
		rec["country"] = src.Pick(realisticCountries)
	}
	if rec.IsEmpty("currency") {
		rec["currency"] = "USD"
	}
})

var defaultFields = sortedFields(defaultValues)

func sortedFields(m map[string][]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
