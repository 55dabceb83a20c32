package specgen

import (
	"fmt"
	"strings"
)

const systemPrompt = `You design synthetic dataset blueprints. Answer with a single JSON object and nothing else.`

// specFormat documents the DataSpec shape the decoder accepts.
const specFormat = `{
  "entities": [
    {"name": "<main entity>", "attributes": {
      "<attr>": {"type": "id", "prefix": "usr_"},
      "<attr>": {"type": "faker", "method": "person.fullName"},
      "<attr>": {"type": "choice", "values": ["A", "B"], "weights": [70, 30]},
      "<attr>": {"type": "conditional", "on": ["<attr>"], "cases": {"<attr>=A": 10, "default": 0}}
    }}
  ],
  "event_stream_table": {"name": "<name>_fact", "columns": [
    {"name": "event_id", "source": {"type": "id", "prefix": "evt_"}},
    {"name": "timestamp", "source": {"type": "timestamp", "jitter_days": 0}},
    {"name": "<col>", "source": {"type": "reference", "entity": "<entity>", "attribute": "<attr>"}},
    {"name": "event_type", "source": {"type": "event_name"}},
    {"name": "<col>", "source": {"type": "lookup", "key": "<output>"}},
    {"name": "<col>", "source": {"type": "choice", "values": ["x", "y"]}},
    {"name": "<col>", "source": {"type": "literal", "value": "int(1,100)"}}
  ]},
  "simulation": {
    "initial_event": "<event>",
    "events": {
      "<event>": {"trigger": {"type": "recurring", "frequency": {"on": "<attr>"}},
                  "outputs": {"<output>": {"type": "reference", "entity": "<entity>", "attribute": "<attr>"}}},
      "<event>": {"trigger": {"type": "random", "average_per_month": 2}},
      "<event>": {"trigger": {"type": "churn", "monthly_rate": 0.03}}
    }
  }
}`

// Prompt renders the instruction sent to the model for p.
func Prompt(p Params) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Business description: %s\n", strings.TrimSpace(p.Description))
	if p.Domain != "" {
		fmt.Fprintf(&b, "Business domain: %s\n", p.Domain)
	}
	if len(p.Entities) > 0 {
		fmt.Fprintf(&b, "Entities to declare (first is the main entity): %s\n", strings.Join(p.Entities, ", "))
	}
	if p.RowCount > 0 {
		fmt.Fprintf(&b, "Target event rows: %d\n", p.RowCount)
	}
	if len(p.TimeRange) > 0 {
		fmt.Fprintf(&b, "Years simulated: %s\n", strings.Join(p.TimeRange, "-"))
	}
	b.WriteString(`
Rules:
- Use realistic category values, never "Option A" or "Value 1".
- Faker methods are "namespace.method" (person, internet, commerce, company, date, number, string, location, finance, lorem, datatype, phone).
- Do not add pre-aggregated columns such as mrr or acv.
- The first entity drives the simulation; every event row references it.

Return JSON in exactly this shape:
`)
	b.WriteString(specFormat)
	b.WriteString("\n")
	return b.String()
}
