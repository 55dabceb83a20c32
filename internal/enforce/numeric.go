package enforce

import (
	"github.com/gyaneshwarpardhi/synthdata/internal/dataset"
	"github.com/gyaneshwarpardhi/synthdata/internal/fake"
)

// Range is an inclusive realistic bound for a numeric field.
type Range struct {
	Min, Max float64
}

// Contains reports whether v lies within r.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Ranges is the realistic-range table shared by the numeric pass and the
// quality report.
var Ranges = map[string]Range{
	"age":                      {0, 100},
	"user_age":                 {18, 65},
	"quantity":                 {1, 100},
	"rating":                   {1, 5},
	"session_duration_minutes": {1, 480},
	"procedure_cost":           {50, 50000},
	"claim_amount":             {50, 80000},
	"insurance_payout":         {0, 75000},
	"plan_price":               {0, 5000},
	"payment_amount":           {0, 100000},
	"contract_value":           {0, 1000000},
	"discount_percent":         {0, 100},
	"unit_price":               {1, 10000},
	"seats":                    {1, 10000},
	"length_of_stay_days":      {0, 365},
}

// Numeric coerces numeric strings in range-checked fields to numbers and
// resamples unparsable or out-of-range values to a whole number inside the
// range. Absent and nil fields are left alone.
var Numeric Enforcer = NewFunc("numeric", func(rec dataset.Record, src *fake.Source) {
	for _, k := range sortedKeys(rec) {
		r, ok := Ranges[k]
		if !ok || rec[k] == nil {
			continue
		}
		f, ok := dataset.ToFloat64(rec[k])
		if ok && r.Contains(f) {
			rec[k] = f
			continue
		}
		rec[k] = float64(src.IntRange(int(r.Min), int(r.Max)))
	}
})
