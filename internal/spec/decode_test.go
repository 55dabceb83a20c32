package spec

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureDir = "../../specs"

func TestParse_SaaSFixture(t *testing.T) {
	s, _, err := LoadFile(filepath.Join(fixtureDir, "saas.json"))
	require.NoError(t, err)
	require.NoError(t, Validate(s))

	require.Len(t, s.Entities, 2)
	user := s.MainEntity()
	assert.Equal(t, "user", user.Name)

	var names []string
	for _, a := range user.Attributes {
		names = append(names, a.Name)
	}
	assert.Equal(t, []string{"user_id", "full_name", "email", "subscription_plan", "billing_cycle", "plan_price", "country", "device_type"}, names,
		"attribute declaration order is preserved")

	// "options" key and faker-with-array method both normalise to choices.
	cycle, ok := user.Attributes[4].Attr.(ChoiceAttr)
	require.True(t, ok)
	assert.Equal(t, []interface{}{"monthly", "annual"}, cycle.Choice.Values)
	assert.Equal(t, []float64{70, 30}, cycle.Choice.Weights)

	device, ok := user.Attributes[7].Attr.(ChoiceAttr)
	require.True(t, ok)
	assert.Len(t, device.Choice.Values, 3)

	cond, ok := user.Attributes[5].Attr.(ConditionalAttr)
	require.True(t, ok)
	assert.Equal(t, []string{"subscription_plan", "billing_cycle"}, cond.On)

	var events []string
	for _, ev := range s.Simulation.Events {
		events = append(events, ev.Name)
	}
	assert.Equal(t, []string{"payment", "login", "feature_usage", "support_ticket", "cancellation"}, events)
	assert.Equal(t, RecurringTrigger{On: "user.billing_cycle"}, s.Simulation.Events[0].Trigger)
	assert.Equal(t, RandomTrigger{AvgPerMonth: 0.5, HasAvg: true}, s.Simulation.Events[3].Trigger)
	assert.Equal(t, ChurnTrigger{MonthlyRate: 0.04, HasRate: true}, s.Simulation.Events[4].Trigger)
	assert.Equal(t, ReferenceOutput{Entity: "user", Attribute: "plan_price"}, s.Simulation.Events[0].Outputs["payment_amount"])
}

func TestParse_HealthcareYAML(t *testing.T) {
	s, raw, err := LoadFile(filepath.Join(fixtureDir, "healthcare.yaml"))
	require.NoError(t, err)
	require.NoError(t, Validate(s))
	assert.NotEmpty(t, raw)

	assert.Equal(t, "claims_fact", s.EventStreamTable.Name)
	assert.Equal(t, "registration", s.Simulation.InitialEvent)
	assert.Equal(t, "annual_checkup", s.Simulation.Events[0].Name)

	last := s.EventStreamTable.Columns[len(s.EventStreamTable.Columns)-1]
	assert.Equal(t, TimestampSource{JitterDays: 3}, last.Source)

	payout := s.EventStreamTable.Columns[9]
	assert.Equal(t, ConditionalSource{Value: "int(0,5000)"}, payout.Source)
}

func TestNormalizeChoice(t *testing.T) {
	cases := []struct {
		name    string
		values  []interface{}
		weights []interface{}
		want    Choice
	}{
		{
			name:    "explicit weights",
			values:  []interface{}{"a", "b"},
			weights: []interface{}{float64(3), float64(1)},
			want:    Choice{Values: []interface{}{"a", "b"}, Weights: []float64{3, 1}},
		},
		{
			name:    "mismatched weights become uniform",
			values:  []interface{}{"a", "b"},
			weights: []interface{}{float64(1)},
			want:    Choice{Values: []interface{}{"a", "b"}, Weights: []float64{0.5, 0.5}},
		},
		{
			name:   "inline value/weight objects",
			values: []interface{}{map[string]interface{}{"value": "x", "weight": float64(9)}, map[string]interface{}{"value": "y", "weight": float64(1)}},
			want:   Choice{Values: []interface{}{"x", "y"}, Weights: []float64{9, 1}},
		},
		{
			name: "empty falls back to Option A/B/C",
			want: Choice{Values: []interface{}{"Option A", "Option B", "Option C"}, Weights: []float64{0.40, 0.35, 0.25}},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeChoice(tc.values, tc.weights))
		})
	}
}

func TestDecodeAttribute_Variants(t *testing.T) {
	cases := []struct {
		json string
		want Attribute
	}{
		{`{"type":"id","prefix":"u_"}`, IDAttr{Prefix: "u_"}},
		{`{"type":"faker","method":"person.firstName"}`, FakerAttr{Method: "person.firstName"}},
		{`"internet.email"`, FakerAttr{Method: "internet.email"}},
		{`{"type":"conditional","on":"plan","cases":{"Pro":1}}`, ConditionalAttr{On: []string{"plan"}, Cases: map[string]interface{}{"Pro": float64(1)}}},
		{`{"type":"sequence"}`, UnknownAttr{Type: "sequence"}},
		{`{"values":["a"]}`, ChoiceAttr{Choice: Choice{Values: []interface{}{"a"}, Weights: []float64{1}}}},
		{`{"type":"faker","method":"helpers.weightedArrayElement","values":["a","b"],"weights":[0.7,0.3]}`,
			ChoiceAttr{Choice: Choice{Values: []interface{}{"a", "b"}, Weights: []float64{0.7, 0.3}}}},
		{`{"type":"faker","method":"helpers.weightedArrayElement"}`, FakerAttr{Method: "helpers.weightedArrayElement"}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, decodeAttribute([]byte(tc.json)), tc.json)
	}
}

func TestDecodeEvent_Malformed(t *testing.T) {
	ev := decodeEvent("renew", []byte(`{"type":"recurring"}`))
	assert.Equal(t, RecurringTrigger{}, ev.Trigger)

	ev = decodeEvent("poke", []byte(`{"type":"random"}`))
	assert.Equal(t, RandomTrigger{}, ev.Trigger)

	ev = decodeEvent("leave", []byte(`{"type":"churn","monthly_rate":"0.1"}`))
	assert.Equal(t, ChurnTrigger{MonthlyRate: 0.1, HasRate: true}, ev.Trigger)

	ev = decodeEvent("x", []byte(`{"type":"cron"}`))
	assert.Equal(t, UnknownTrigger{Type: "cron"}, ev.Trigger)
}

func TestValidate(t *testing.T) {
	err := Validate(&DataSpec{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidSpec))
	assert.Contains(t, err.Error(), "entities must not be empty")
	assert.Contains(t, err.Error(), "event_stream_table is required")
	assert.Contains(t, err.Error(), "simulation is required")

	s := &DataSpec{
		Entities:         []EntitySpec{{Name: "user"}, {Attributes: []NamedAttribute{{Name: "a", Attr: IDAttr{}}}}},
		EventStreamTable: &TableSpec{Name: "events"},
		Simulation:       &Simulation{},
	}
	err = Validate(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entity user: attributes are required")
	assert.Contains(t, err.Error(), "entities[1]: name is required")
	assert.Contains(t, err.Error(), "columns must not be empty")
}

func TestLint(t *testing.T) {
	s, err := Parse([]byte(`{
		"entities":[{"name":"u","attributes":{"a":{"type":"mystery"},"b":{"type":"faker","method":"nodot"}}}],
		"event_stream_table":{"name":"e","columns":[{"name":"x","source":{"type":"reference","entity":"ghost","attribute":"id"}},{"name":"y","source":{"type":"weird"}}]},
		"simulation":{"events":{"r":{"type":"recurring"},"q":{"type":"random"},"c":{"type":"churn"},"z":{"type":"cron"}}}
	}`))
	require.NoError(t, err)
	require.NoError(t, Validate(s))

	warns := Lint(s)
	assert.Len(t, warns, 9)
}

func TestStore_LoadAndPut(t *testing.T) {
	dir := t.TempDir()
	src, err := os.ReadFile(filepath.Join(fixtureDir, "saas.json"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "saas.json"), src, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte(`{"entities":[]}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0o644))

	st, err := NewStore(dir)
	require.NoError(t, err)

	e, ok := st.Get("saas")
	require.True(t, ok)
	assert.Equal(t, []string{"user", "company"}, e.Entities)

	_, ok = st.Get("broken")
	assert.False(t, ok, "invalid specs are skipped")

	var changed []string
	st.OnChange(func(id string) { changed = append(changed, id) })
	st.Put("adhoc", e.Spec, e.Raw)
	assert.Equal(t, []string{"adhoc"}, changed)

	require.NoError(t, st.Reload())
	_, ok = st.Get("adhoc")
	assert.True(t, ok, "in-memory specs survive a reload")
	assert.Len(t, st.List(), 2)
}
