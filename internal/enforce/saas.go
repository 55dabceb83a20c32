package enforce

import (
	"strings"

	"github.com/gyaneshwarpardhi/synthdata/internal/dataset"
	"github.com/gyaneshwarpardhi/synthdata/internal/fake"
)

var (
	roles         = []string{"Admin", "Manager", "User", "Viewer"}
	plans         = []string{"Free", "Basic", "Pro", "Enterprise"}
	billingCycles = []string{"monthly", "annual"}
	deviceTypes   = []string{"Desktop", "Mobile", "Tablet"}
	saasCountries = []string{
		"United States", "United Kingdom", "Canada", "Germany", "France",
		"Australia", "India", "Brazil", "Japan", "Netherlands",
	}
)

// monthlyPlanPrice is used when a subscription event has no plan_price.
// Annual cycles pay ten months up front.
var monthlyPlanPrice = map[string]float64{
	"Free":       0,
	"Basic":      29,
	"Pro":        99,
	"Enterprise": 499,
}

var contractValues = map[string]float64{
	"Starter":      1188,
	"Professional": 3588,
	"Enterprise":   11988,
	"Custom":       60000,
}

var subscriptionEvents = set(
	"signup", "subscription_created", "subscription_renewed", "renewal",
	"upgrade", "downgrade", "payment", "trial_started", "trial_converted", "cancellation",
)

var lifecycleEvents = union(subscriptionEvents, set(
	"login", "logout", "feature_usage", "support_ticket", "churn", "invite_sent",
	"admin_action", "report_export", "onboarding_completed",
))

var billingEvents = set(
	"payment", "subscription_created", "subscription_renewed", "renewal",
	"upgrade", "invoice_paid", "purchase",
)

type minutes struct{ min, max int }

var sessionMinutes = map[string]minutes{
	"login":                {5, 30},
	"logout":               {1, 5},
	"signup":               {10, 45},
	"feature_usage":        {10, 90},
	"support_ticket":       {15, 120},
	"admin_action":         {30, 180},
	"report_export":        {5, 60},
	"payment":              {2, 10},
	"upgrade":              {5, 20},
	"downgrade":            {5, 20},
	"cancellation":         {5, 15},
	"onboarding_completed": {20, 90},
}

var defaultSession = minutes{5, 30}

// SaaS fills the fields every SaaS event record is expected to carry. Values
// that are already valid are kept, so the pass is stable on its own output.
var SaaS Enforcer = NewFunc("saas", func(rec dataset.Record, src *fake.Source) {
	event := strings.ToLower(rec.String("event_type"))
	if event == "" {
		return
	}

	if rec.IsEmpty("user_id") {
		rec["user_id"] = "usr_" + src.ShortID()
	}
	if event != "signup" && rec.IsEmpty("company_id") {
		rec["company_id"] = "cmp_" + src.ShortID()
	}
	if !contains(roles, rec.String("user_role")) {
		rec["user_role"] = src.Pick(roles)
	}

	if subscriptionEvents[event] {
		if rec.IsEmpty("subscription_plan") {
			rec["subscription_plan"] = src.Pick(plans)
		}
		if rec.IsEmpty("billing_cycle") {
			rec["billing_cycle"] = src.Pick(billingCycles)
		}
		if rec.IsEmpty("plan_price") {
			price := monthlyPlanPrice[rec.String("subscription_plan")]
			if rec.String("billing_cycle") == "annual" {
				price *= 10
			}
			rec["plan_price"] = price
		}
	}

	if lifecycleEvents[event] {
		if _, ok := rec["signup_date"]; ok {
			t, _, parsed := dataset.ParseTime(rec.String("signup_date"))
			if !parsed || t.Before(src.Now().AddDate(-2, 0, 0)) || t.After(src.Now()) {
				rec["signup_date"] = dataset.FormatTimestamp(src.Trailing(730))
			}
		}
		if _, ok := rec["country"]; ok && !contains(saasCountries, rec.String("country")) {
			rec["country"] = src.Pick(saasCountries)
		}
		if v, ok := contractValues[rec.String("subscription_plan")]; ok {
			rec["contract_value"] = v
		}
		if _, ok := rec["device_type"]; ok && !contains(deviceTypes, rec.String("device_type")) {
			rec["device_type"] = src.Pick(deviceTypes)
		}
		if _, ok := rec["user_age"]; ok {
			if age, ok := rec.Float("user_age"); !ok || age < 18 || age > 65 {
				rec["user_age"] = float64(src.IntRange(18, 65))
			}
		}
	}

	r, ok := sessionMinutes[event]
	if !ok {
		r = defaultSession
	}
	if d, ok := rec.Float("session_duration_minutes"); !ok || d < float64(r.min) || d > float64(r.max) {
		rec["session_duration_minutes"] = float64(src.IntRange(r.min, r.max))
	}
})

// SaaSPricing keeps payment_amount nonzero only for billing events. Billing
// events prefer a positive plan_price and otherwise draw $100-999; every other
// event gets exactly 0. String amounts are always coerced to numbers, 0 when
// unparsable.
var SaaSPricing Enforcer = NewFunc("saas_pricing", func(rec dataset.Record, src *fake.Source) {
	amount, ok := rec.Float("payment_amount")
	if !ok {
		amount = 0
	}
	event := strings.ToLower(rec.String("event_type"))
	if event == "" {
		if _, present := rec["payment_amount"]; present {
			rec["payment_amount"] = amount
		}
		return
	}
	if !billingEvents[event] {
		rec["payment_amount"] = 0.0
		return
	}
	if amount > 0 {
		rec["payment_amount"] = amount
		return
	}
	if price, ok := rec.Float("plan_price"); ok && price > 0 {
		rec["payment_amount"] = price
		return
	}
	rec["payment_amount"] = src.Money(100, 999)
})

func set(items ...string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, it := range items {
		m[it] = true
	}
	return m
}

func union(a, b map[string]bool) map[string]bool {
	m := make(map[string]bool, len(a)+len(b))
	for k := range a {
		m[k] = true
	}
	for k := range b {
		m[k] = true
	}
	return m
}
