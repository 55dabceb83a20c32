package enforce

import (
	"time"

	"github.com/cockroachdb/apd/v3"

	"github.com/gyaneshwarpardhi/synthdata/internal/dataset"
	"github.com/gyaneshwarpardhi/synthdata/internal/fake"
)

// Healthcare enforces the claim invariants:
//   - a Denied claim pays out 0
//   - claim_amount is at least procedure_cost (bumped to 110-160% of the cost)
//   - discharge_date is strictly after admission_date (moved 1-5 days after it)
//
// It expects the generic passes to have run first.
var Healthcare Enforcer = NewFunc("healthcare", func(rec dataset.Record, src *fake.Source) {
	if rec.String("claim_status") == "Denied" {
		if _, ok := rec["insurance_payout"]; ok {
			rec["insurance_payout"] = 0.0
		}
	}

	cost, okCost := rec.Float("procedure_cost")
	claim, okClaim := rec.Float("claim_amount")
	if okCost && okClaim && claim < cost {
		rec["claim_amount"] = scaleCents(cost, src.FloatRange(1.10, 1.60))
	}

	admitted, layout, ok := dataset.ParseTime(rec.String("admission_date"))
	if !ok {
		return
	}
	if _, present := rec["discharge_date"]; !present {
		return
	}
	discharged, _, ok := dataset.ParseTime(rec.String("discharge_date"))
	if !ok || !discharged.After(admitted) {
		next := admitted.Add(time.Duration(src.IntRange(1, 5)) * 24 * time.Hour)
		rec["discharge_date"] = next.Format(layout)
	}
})

// scaleCents returns amount*factor rounded half-up to cents.
func scaleCents(amount, factor float64) float64 {
	var a, f, result apd.Decimal
	if _, err := a.SetFloat64(amount); err != nil {
		return amount
	}
	if _, err := f.SetFloat64(factor); err != nil {
		return amount
	}
	ctx := apd.BaseContext.WithPrecision(34)
	ctx.Rounding = apd.RoundHalfUp
	ctx.Mul(&result, &a, &f)
	ctx.Quantize(&result, &result, -2)
	out, err := result.Float64()
	if err != nil {
		return amount
	}
	return out
}
