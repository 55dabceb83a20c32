package simulate

import (
	"regexp"
	"strconv"
	"time"

	"github.com/gyaneshwarpardhi/synthdata/internal/dataset"
	"github.com/gyaneshwarpardhi/synthdata/internal/entity"
	"github.com/gyaneshwarpardhi/synthdata/internal/fake"
	"github.com/gyaneshwarpardhi/synthdata/internal/spec"
)

const (
	deniedReasonColumn = "denied_reason"
	claimStatusColumn  = "claim_status"
	claimDenied        = "Denied"
)

// rangePattern matches the "price(min,max)" and "int(min,max)" literal forms.
var rangePattern = regexp.MustCompile(`^\s*(?:price|int)\(\s*(-?\d+(?:\.\d+)?)\s*,\s*(-?\d+(?:\.\d+)?)\s*\)\s*$`)

// builder turns one firing into a record shaped by the event stream table.
type builder struct {
	sim  *Simulator
	coll entity.Collection
	main string
	src  *fake.Source
}

func (b *builder) record(event string, ev *spec.EventSpec, subject dataset.Record, at time.Time) dataset.Record {
	cols := b.sim.spec.EventStreamTable.Columns
	rec := make(dataset.Record, len(cols))
	gated := false
	for _, col := range cols {
		if col.Name == deniedReasonColumn {
			gated = true
			continue
		}
		rec[col.Name] = b.column(col, event, ev, subject, at)
	}
	// denied_reason is resolved last so claim_status is known whatever the column order.
	if gated {
		rec[deniedReasonColumn] = nil
		if rec.String(claimStatusColumn) == claimDenied {
			for _, col := range cols {
				if col.Name == deniedReasonColumn {
					rec[deniedReasonColumn] = b.column(col, event, ev, subject, at)
					break
				}
			}
		}
	}
	return rec
}

func (b *builder) column(col spec.ColumnSpec, event string, ev *spec.EventSpec, subject dataset.Record, at time.Time) interface{} {
	v, ok := b.resolve(col, event, ev, subject, at)
	if !ok || isBlank(v) {
		b.sim.logger.Debug("column fallback", "column", col.Name, "event", event)
		return b.src.Fallback(col.Name)
	}
	return v
}

func (b *builder) resolve(col spec.ColumnSpec, event string, ev *spec.EventSpec, subject dataset.Record, at time.Time) (interface{}, bool) {
	switch s := col.Source.(type) {
	case spec.IDSource:
		return s.Prefix + b.src.UUID(), true
	case spec.TimestampSource:
		t := at
		if s.JitterDays > 0 {
			span := time.Duration(s.JitterDays) * 24 * time.Hour
			t = b.src.Within(at.Add(-span), at.Add(span))
		}
		return dataset.FormatTimestamp(t), true
	case spec.ChoiceSource:
		return b.src.Weighted(s.Choice.Values, s.Choice.Weights), true
	case spec.ReferenceSource:
		return b.reference(s.Entity, s.Attribute, subject)
	case spec.EventNameSource:
		return event, true
	case spec.LookupSource:
		key := s.Key
		if key == "" {
			key = col.Name
		}
		if ev == nil {
			return nil, false
		}
		switch out := ev.Outputs[key].(type) {
		case spec.ReferenceOutput:
			return b.reference(out.Entity, out.Attribute, subject)
		case spec.LiteralOutput:
			return b.literal(out.Value)
		}
		return nil, false
	case spec.LiteralSource:
		return b.literal(s.Value)
	case spec.ConditionalSource:
		// Evaluated exactly like a literal; it does not branch on other columns.
		return b.literal(s.Value)
	default:
		return nil, false
	}
}

// reference reads attr from the subject when entity is the main entity, and
// from a randomly sampled instance of any other entity.
func (b *builder) reference(entityName, attr string, subject dataset.Record) (interface{}, bool) {
	if entityName == b.main {
		v, ok := subject[attr]
		return v, ok
	}
	p := b.coll.Pool(entityName)
	if p == nil || len(p.Instances) == 0 {
		return nil, false
	}
	v, ok := p.Instances[b.src.IntN(len(p.Instances))][attr]
	return v, ok
}

func (b *builder) literal(v interface{}) (interface{}, bool) {
	s, ok := v.(string)
	if !ok {
		return v, v != nil
	}
	m := rangePattern.FindStringSubmatch(s)
	if m == nil {
		return s, true
	}
	lo, _ := strconv.ParseFloat(m[1], 64)
	hi, _ := strconv.ParseFloat(m[2], 64)
	return b.src.IntRange(int(lo), int(hi)), true
}

func isBlank(v interface{}) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}
