package enforce

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/synthdata/internal/dataset"
	"github.com/gyaneshwarpardhi/synthdata/internal/fake"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func src() *fake.Source { return fake.New(1, testNow) }

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, []string{"defaults", "healthcare", "numeric", "placeholders", "preagg", "saas", "saas_pricing"}, r.Names())

	_, err := r.Get("nope")
	assert.Error(t, err)

	assert.Panics(t, func() { r.Register(Numeric) })

	c, err := r.ForDomain("SaaS")
	require.NoError(t, err)
	assert.Equal(t, []string{"placeholders", "numeric", "defaults", "saas", "saas_pricing", "healthcare", "preagg"}, c.Names())

	c, err = r.ForDomain("healthcare")
	require.NoError(t, err)
	assert.Equal(t, []string{"placeholders", "numeric", "defaults", "healthcare", "preagg"}, c.Names())
}

func TestEnforce_DoesNotMutateInput(t *testing.T) {
	in := dataset.Record{"claim_status": "Denied", "insurance_payout": 500.0, "mrr": 10}
	c, err := DefaultRegistry().ForDomain("")
	require.NoError(t, err)

	out := c.Apply(in, src())
	assert.Equal(t, 500.0, in["insurance_payout"])
	assert.Contains(t, in, "mrr")
	assert.Equal(t, 0.0, out["insurance_payout"])
	assert.NotContains(t, out, "mrr")
}

func TestHealthcare_DeniedPaysZero(t *testing.T) {
	out := Healthcare.Enforce(dataset.Record{"claim_status": "Denied", "insurance_payout": 500}, src())
	assert.Equal(t, 0.0, out["insurance_payout"])

	out = Healthcare.Enforce(dataset.Record{"claim_status": "Approved", "insurance_payout": 500}, src())
	assert.Equal(t, 500, out["insurance_payout"])
}

func TestHealthcare_DischargeAfterAdmission(t *testing.T) {
	out := Healthcare.Enforce(dataset.Record{"admission_date": "2024-01-10", "discharge_date": "2024-01-05"}, src())

	admitted, _, ok := dataset.ParseTime("2024-01-10")
	require.True(t, ok)
	discharged, layout, ok := dataset.ParseTime(out.String("discharge_date"))
	require.True(t, ok)
	assert.Equal(t, dataset.DateLayout, layout)
	assert.True(t, discharged.After(admitted))
	assert.LessOrEqual(t, discharged.Sub(admitted), 5*24*time.Hour)
}

func TestHealthcare_ClaimCoversCost(t *testing.T) {
	for seed := uint64(0); seed < 20; seed++ {
		out := Healthcare.Enforce(dataset.Record{"procedure_cost": 1000.0, "claim_amount": "400"}, fake.New(seed, testNow))
		claim, ok := out.Float("claim_amount")
		require.True(t, ok)
		assert.GreaterOrEqual(t, claim, 1100.0)
		assert.LessOrEqual(t, claim, 1600.0)
		assert.Equal(t, claim, float64(int64(claim*100+0.5))/100, "rounded to cents")
	}
}

func TestHealthcare_Idempotent(t *testing.T) {
	records := []dataset.Record{
		{"claim_status": "Denied", "insurance_payout": 800.0, "procedure_cost": 2500.0, "claim_amount": 90.0,
			"admission_date": "2024-03-01T10:00:00.000Z", "discharge_date": "2024-02-27T10:00:00.000Z"},
		{"claim_status": "Approved", "insurance_payout": 300.0, "procedure_cost": 100.0, "claim_amount": 150.0},
		{"admission_date": "2024-03-01", "discharge_date": "garbage"},
	}
	for _, rec := range records {
		s := src()
		once := Healthcare.Enforce(rec, s)
		twice := Healthcare.Enforce(once, s)
		assert.Equal(t, once, twice)
	}
}

func TestSaaSPricing_CancellationIsZero(t *testing.T) {
	out := SaaSPricing.Enforce(dataset.Record{"event_type": "cancellation", "payment_amount": "49.00", "plan_price": 99.0}, src())
	assert.Equal(t, 0.0, out["payment_amount"])
}

func TestSaaSPricing_BillingEvents(t *testing.T) {
	out := SaaSPricing.Enforce(dataset.Record{"event_type": "payment", "payment_amount": "abc", "plan_price": 99.0}, src())
	assert.Equal(t, 99.0, out["payment_amount"])

	out = SaaSPricing.Enforce(dataset.Record{"event_type": "payment", "payment_amount": "250.5"}, src())
	assert.Equal(t, 250.5, out["payment_amount"])

	out = SaaSPricing.Enforce(dataset.Record{"event_type": "upgrade", "plan_price": 0}, src())
	amount, ok := out.Float("payment_amount")
	require.True(t, ok)
	assert.GreaterOrEqual(t, amount, 100.0)
	assert.LessOrEqual(t, amount, 999.0)

	out = SaaSPricing.Enforce(dataset.Record{"payment_amount": 5}, src())
	assert.Equal(t, 5.0, out["payment_amount"])
}

func TestSaaSPricing_CoercesWithoutEventType(t *testing.T) {
	out := SaaSPricing.Enforce(dataset.Record{"payment_amount": "12.5"}, src())
	assert.Equal(t, 12.5, out["payment_amount"])

	out = SaaSPricing.Enforce(dataset.Record{"payment_amount": "n/a"}, src())
	assert.Equal(t, 0.0, out["payment_amount"])

	out = SaaSPricing.Enforce(dataset.Record{"note": "x"}, src())
	assert.NotContains(t, out, "payment_amount")
}

func TestSaaS_SignupGetsPlan(t *testing.T) {
	out := SaaS.Enforce(dataset.Record{"event_type": "signup"}, src())
	assert.Contains(t, plans, out.String("subscription_plan"))
	assert.Contains(t, billingCycles, out.String("billing_cycle"))
	assert.Contains(t, roles, out.String("user_role"))
	assert.NotEmpty(t, out.String("user_id"))
	assert.NotContains(t, out, "company_id", "signup events do not get a company")

	price, ok := out.Float("plan_price")
	require.True(t, ok)
	want := monthlyPlanPrice[out.String("subscription_plan")]
	if out.String("billing_cycle") == "annual" {
		want *= 10
	}
	assert.Equal(t, want, price)
}

func TestSaaS_LifecycleFields(t *testing.T) {
	rec := dataset.Record{
		"event_type":        "login",
		"user_id":           "usr_1",
		"user_role":         "Option B",
		"subscription_plan": "Professional",
		"country":           "Atlantis",
		"device_type":       "Toaster",
		"user_age":          "7",
		"signup_date":       "1999-01-01",
	}
	out := SaaS.Enforce(rec, src())

	assert.Equal(t, "usr_1", out["user_id"])
	assert.NotEmpty(t, out["company_id"])
	assert.Contains(t, roles, out.String("user_role"))
	assert.Equal(t, 3588.0, out["contract_value"])
	assert.Contains(t, saasCountries, out.String("country"))
	assert.Contains(t, deviceTypes, out.String("device_type"))

	age, ok := out.Float("user_age")
	require.True(t, ok)
	assert.GreaterOrEqual(t, age, 18.0)
	assert.LessOrEqual(t, age, 65.0)

	signup, _, ok := dataset.ParseTime(out.String("signup_date"))
	require.True(t, ok)
	assert.True(t, signup.After(testNow.AddDate(-2, 0, 0)))

	mins, ok := out.Float("session_duration_minutes")
	require.True(t, ok)
	assert.GreaterOrEqual(t, mins, 5.0)
	assert.LessOrEqual(t, mins, 30.0)

	assert.Equal(t, out, SaaS.Enforce(out, src()), "stable on its own output")
}

func TestSaaS_UnknownEventSessionFallback(t *testing.T) {
	out := SaaS.Enforce(dataset.Record{"event_type": "teleport", "session_duration_minutes": 900}, src())
	mins, ok := out.Float("session_duration_minutes")
	require.True(t, ok)
	assert.GreaterOrEqual(t, mins, 5.0)
	assert.LessOrEqual(t, mins, 30.0)
}

func TestPlaceholders(t *testing.T) {
	rec := dataset.Record{
		"user_role":   "Option B",
		"note":        "option c",
		"tier":        "Value 3",
		"plan":        "x7f2",
		"event_date":  "zz99",
		"status":      "active",
		"full_name":   "Ada Lovelace",
		"description": "optional add-on",
		"amount":      10.0,
	}
	out := Placeholders.Enforce(rec, src())

	assert.Contains(t, roles, out.String("user_role"))
	assert.Equal(t, genericDefault, out["note"])
	assert.Equal(t, genericDefault, out["tier"])
	assert.Contains(t, plans, out.String("plan"))
	_, _, ok := dataset.ParseTime(out.String("event_date"))
	assert.True(t, ok)
	assert.Equal(t, "active", out["status"])
	assert.Equal(t, "Ada Lovelace", out["full_name"])
	assert.Equal(t, "optional add-on", out["description"])
	assert.Equal(t, 10.0, out["amount"])

	assert.Equal(t, out, Placeholders.Enforce(out, src()))
}

func TestIsPlaceholder(t *testing.T) {
	for _, s := range []string{"Option A", "option  c", "Item 4", "category_2", "TBD", "N/A", "lorem ipsum dolor", "Sample B"} {
		assert.True(t, IsPlaceholder(s), s)
	}
	for _, s := range []string{"Items", "Types", "optional", "Enterprise", ""} {
		assert.False(t, IsPlaceholder(s), s)
	}
}

func TestNumeric(t *testing.T) {
	rec := dataset.Record{
		"rating":           "4",
		"quantity":         500,
		"procedure_cost":   "n/a",
		"plan_price":       99.0,
		"insurance_payout": nil,
		"unrelated":        "12",
	}
	out := Numeric.Enforce(rec, src())

	assert.Equal(t, 4.0, out["rating"])
	q, _ := out.Float("quantity")
	assert.True(t, Ranges["quantity"].Contains(q))
	c, _ := out.Float("procedure_cost")
	assert.True(t, Ranges["procedure_cost"].Contains(c))
	assert.Equal(t, 99.0, out["plan_price"])
	assert.Nil(t, out["insurance_payout"])
	assert.Equal(t, "12", out["unrelated"])

	assert.Equal(t, out, Numeric.Enforce(out, src()))
}

func TestDefaults(t *testing.T) {
	rec := dataset.Record{"country": "", "currency": nil, "created_at": " ", "status": "", "region": "EMEA"}
	out := Defaults.Enforce(rec, src())

	assert.Contains(t, realisticCountries, out.String("country"))
	assert.Equal(t, "USD", out["currency"])
	_, _, ok := dataset.ParseTime(out.String("created_at"))
	assert.True(t, ok)
	assert.Contains(t, defaultValues["status"], out.String("status"))
	assert.Equal(t, "EMEA", out["region"])
	_, _, ok = dataset.ParseTime(out.String("updated_at"))
	assert.True(t, ok, "missing date fields are added")

	assert.Equal(t, out, Defaults.Enforce(out, src()))
}

func TestDefaults_MissingFields(t *testing.T) {
	out := Defaults.Enforce(dataset.Record{"event_type": "login"}, src())

	assert.Equal(t, "login", out["event_type"])
	assert.Contains(t, realisticCountries, out.String("country"))
	assert.Equal(t, "USD", out["currency"])
	for _, k := range defaultDateFields {
		_, _, ok := dataset.ParseTime(out.String(k))
		assert.True(t, ok, k)
	}
	for k, vals := range defaultValues {
		assert.Contains(t, vals, out.String(k), k)
	}
}

func TestPreAggregates(t *testing.T) {
	out := PreAggregates.Enforce(dataset.Record{"acv": 1, "mrr": 2, "keep": 3}, nil)
	assert.Equal(t, dataset.Record{"keep": 3}, out)
}

func TestChain_ApplyAll(t *testing.T) {
	c, err := DefaultRegistry().ForDomain("saas")
	require.NoError(t, err)
	stream := dataset.Stream{
		{"event_type": "cancellation", "payment_amount": 49.0, "mrr": 10},
		{"event_type": "payment", "plan_price": 29.0, "payment_amount": nil},
	}
	out := c.ApplyAll(stream, src())
	require.Len(t, out, 2)
	assert.Equal(t, 0.0, out[0]["payment_amount"])
	assert.Equal(t, 29.0, out[1]["payment_amount"])
	assert.NotContains(t, out[0], "mrr")
	assert.Contains(t, stream[0], "mrr", "input stream is untouched")
}
