package spec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Parse decodes a JSON DataSpec. Syntax errors are returned; unrecognised or
// incomplete definitions are kept as soft-fail variants for the caller to skip.
func Parse(data []byte) (*DataSpec, error) {
	var s DataSpec
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse data spec: %w", err)
	}
	return &s, nil
}

// UnmarshalJSON decodes an entity, preserving attribute declaration order.
func (e *EntitySpec) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name       string          `json:"name"`
		Attributes json.RawMessage `json:"attributes"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.Name = raw.Name
	keys, vals, err := orderedObject(raw.Attributes)
	if err != nil {
		return fmt.Errorf("entity %s attributes: %w", raw.Name, err)
	}
	e.Attributes = make([]NamedAttribute, 0, len(keys))
	for _, k := range keys {
		e.Attributes = append(e.Attributes, NamedAttribute{Name: k, Attr: decodeAttribute(vals[k])})
	}
	return nil
}

// UnmarshalJSON decodes the event stream table definition.
func (t *TableSpec) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name    string `json:"name"`
		Columns []struct {
			Name   string          `json:"name"`
			Source json.RawMessage `json:"source"`
		} `json:"columns"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	t.Name = raw.Name
	t.Columns = make([]ColumnSpec, 0, len(raw.Columns))
	for _, c := range raw.Columns {
		t.Columns = append(t.Columns, ColumnSpec{Name: c.Name, Source: decodeSource(c.Source)})
	}
	return nil
}

// UnmarshalJSON decodes the simulation block, preserving event declaration order.
func (s *Simulation) UnmarshalJSON(data []byte) error {
	var raw struct {
		InitialEvent string          `json:"initial_event"`
		Events       json.RawMessage `json:"events"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.InitialEvent = raw.InitialEvent
	keys, vals, err := orderedObject(raw.Events)
	if err != nil {
		return fmt.Errorf("simulation events: %w", err)
	}
	s.Events = make([]EventSpec, 0, len(keys))
	for _, k := range keys {
		s.Events = append(s.Events, decodeEvent(k, vals[k]))
	}
	return nil
}

// Event returns the configured event with the given name, or nil.
func (s *Simulation) Event(name string) *EventSpec {
	for i := range s.Events {
		if s.Events[i].Name == name {
			return &s.Events[i]
		}
	}
	return nil
}

// rawDef is the union of every field any tagged definition may carry.
type rawDef struct {
	Type      string                 `json:"type"`
	Prefix    string                 `json:"prefix"`
	Method    json.RawMessage        `json:"method"`
	Values    []interface{}          `json:"values"`
	Options   []interface{}          `json:"options"`
	Choices   []interface{}          `json:"choices"`
	Weights   []interface{}          `json:"weights"`
	On        json.RawMessage        `json:"on"`
	Cases     map[string]interface{} `json:"cases"`
	Entity    string                 `json:"entity"`
	Attribute string                 `json:"attribute"`
	Field     string                 `json:"field"`
	Key       string                 `json:"key"`
	Value     interface{}            `json:"value"`
	Jitter    interface{}            `json:"jitter_days"`
	Frequency *struct {
		On string `json:"on"`
	} `json:"frequency"`
	AvgPerMonth  interface{}                `json:"avg_per_entity_per_month"`
	AvgPerEntity interface{}                `json:"avg_per_entity"`
	MonthlyRate  interface{}                `json:"monthly_rate"`
	Outputs      map[string]json.RawMessage `json:"outputs"`
}

func decodeAttribute(data json.RawMessage) Attribute {
	// A bare "namespace.method" string is accepted as a faker attribute.
	var path string
	if err := json.Unmarshal(data, &path); err == nil {
		return FakerAttr{Method: path}
	}
	var d rawDef
	if err := json.Unmarshal(data, &d); err != nil {
		return UnknownAttr{Type: "invalid"}
	}
	switch strings.ToLower(d.Type) {
	case "id":
		return IDAttr{Prefix: d.Prefix}
	case "faker":
		var list []interface{}
		if err := json.Unmarshal(d.Method, &list); err == nil {
			return ChoiceAttr{Choice: NormalizeChoice(list, d.Weights)}
		}
		var method string
		_ = json.Unmarshal(d.Method, &method)
		if vals := d.choiceValues(); len(vals) > 0 && isArrayHelper(method) {
			return ChoiceAttr{Choice: NormalizeChoice(vals, d.Weights)}
		}
		return FakerAttr{Method: method}
	case "choice":
		return ChoiceAttr{Choice: NormalizeChoice(d.choiceValues(), d.Weights)}
	case "conditional":
		return ConditionalAttr{On: decodeOn(d.On), Cases: d.Cases}
	case "":
		if vals := d.choiceValues(); len(vals) > 0 {
			return ChoiceAttr{Choice: NormalizeChoice(vals, d.Weights)}
		}
	}
	return UnknownAttr{Type: d.Type}
}

// isArrayHelper reports whether a faker path picks from an inline array. Those
// attributes carry their values beside the method and decode as a choice.
func isArrayHelper(method string) bool {
	switch strings.ToLower(strings.TrimSpace(method)) {
	case "helpers.weightedarrayelement", "helpers.arrayelement", "helpers.arrayelements":
		return true
	}
	return false
}

func decodeSource(data json.RawMessage) Source {
	var d rawDef
	if len(data) == 0 || json.Unmarshal(data, &d) != nil {
		return UnknownSource{Type: "invalid"}
	}
	switch strings.ToLower(d.Type) {
	case "id":
		return IDSource{Prefix: d.Prefix}
	case "timestamp":
		days, _ := toFloat(d.Jitter)
		return TimestampSource{JitterDays: int(days)}
	case "choice":
		return ChoiceSource{Choice: NormalizeChoice(d.choiceValues(), d.Weights)}
	case "reference":
		attr := d.Attribute
		if attr == "" {
			attr = d.Field
		}
		return ReferenceSource{Entity: d.Entity, Attribute: attr}
	case "event_name":
		return EventNameSource{}
	case "lookup":
		return LookupSource{Key: d.Key}
	case "literal":
		return LiteralSource{Value: d.Value}
	case "conditional":
		return ConditionalSource{Value: d.Value}
	}
	return UnknownSource{Type: d.Type}
}

func decodeEvent(name string, data json.RawMessage) EventSpec {
	ev := EventSpec{Name: name}
	var d rawDef
	if err := json.Unmarshal(data, &d); err != nil {
		ev.Trigger = UnknownTrigger{Type: "invalid"}
		return ev
	}
	switch strings.ToLower(d.Type) {
	case "recurring":
		t := RecurringTrigger{}
		if d.Frequency != nil {
			t.On = d.Frequency.On
		}
		ev.Trigger = t
	case "random":
		avg, ok := toFloat(d.AvgPerMonth)
		if !ok {
			avg, ok = toFloat(d.AvgPerEntity)
		}
		ev.Trigger = RandomTrigger{AvgPerMonth: avg, HasAvg: ok}
	case "churn":
		rate, ok := toFloat(d.MonthlyRate)
		ev.Trigger = ChurnTrigger{MonthlyRate: rate, HasRate: ok}
	default:
		ev.Trigger = UnknownTrigger{Type: d.Type}
	}
	if len(d.Outputs) > 0 {
		ev.Outputs = make(map[string]Output, len(d.Outputs))
		for col, raw := range d.Outputs {
			if out := decodeOutput(raw); out != nil {
				ev.Outputs[col] = out
			}
		}
	}
	return ev
}

func decodeOutput(data json.RawMessage) Output {
	var d rawDef
	if err := json.Unmarshal(data, &d); err != nil {
		return nil
	}
	switch strings.ToLower(d.Type) {
	case "reference":
		attr := d.Attribute
		if attr == "" {
			attr = d.Field
		}
		return ReferenceOutput{Entity: d.Entity, Attribute: attr}
	case "literal", "":
		if d.Value == nil {
			return nil
		}
		return LiteralOutput{Value: d.Value}
	}
	return nil
}

func (d *rawDef) choiceValues() []interface{} {
	switch {
	case len(d.Values) > 0:
		return d.Values
	case len(d.Options) > 0:
		return d.Options
	}
	return d.Choices
}

// defaultChoice is used when a choice definition carries nothing usable.
var defaultChoice = Choice{
	Values:  []interface{}{"Option A", "Option B", "Option C"},
	Weights: []float64{0.40, 0.35, 0.25},
}

// NormalizeChoice maps any tolerated choice shape onto one canonical Choice.
// Values may be scalars or {"value": v, "weight": w} objects. Weights that are
// absent or do not match the value count become uniform.
func NormalizeChoice(values []interface{}, weights []interface{}) Choice {
	var c Choice
	var inline []float64
	for _, v := range values {
		if m, ok := v.(map[string]interface{}); ok {
			val, has := m["value"]
			if !has {
				continue
			}
			c.Values = append(c.Values, val)
			w, _ := toFloat(m["weight"])
			inline = append(inline, w)
			continue
		}
		c.Values = append(c.Values, v)
	}
	if len(c.Values) == 0 {
		return Choice{
			Values:  append([]interface{}(nil), defaultChoice.Values...),
			Weights: append([]float64(nil), defaultChoice.Weights...),
		}
	}
	if len(inline) == len(c.Values) && sum(inline) > 0 {
		c.Weights = inline
		return c
	}
	if len(weights) == len(c.Values) {
		ws := make([]float64, 0, len(weights))
		for _, w := range weights {
			f, ok := toFloat(w)
			if !ok {
				break
			}
			ws = append(ws, f)
		}
		if len(ws) == len(c.Values) && sum(ws) > 0 {
			c.Weights = ws
			return c
		}
	}
	c.Weights = make([]float64, len(c.Values))
	for i := range c.Weights {
		c.Weights[i] = 1 / float64(len(c.Values))
	}
	return c
}

func decodeOn(data json.RawMessage) []string {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		if one == "" {
			return nil
		}
		return []string{one}
	}
	var many []string
	_ = json.Unmarshal(data, &many)
	return many
}

// orderedObject splits a JSON object into its keys (in document order) and raw values.
// An absent or null object yields no keys.
func orderedObject(data json.RawMessage) ([]string, map[string]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, fmt.Errorf("expected object, got %v", tok)
	}
	var keys []string
	vals := make(map[string]json.RawMessage)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, _ := tok.(string)
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return nil, nil, fmt.Errorf("key %q: %w", key, err)
		}
		if _, dup := vals[key]; !dup {
			keys = append(keys, key)
		}
		vals[key] = v
	}
	return keys, vals, nil
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

func sum(fs []float64) float64 {
	t := 0.0
	for _, f := range fs {
		t += f
	}
	return t
}
