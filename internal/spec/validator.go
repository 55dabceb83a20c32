package spec

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidSpec wraps every structural validation failure.
var ErrInvalidSpec = errors.New("invalid data spec")

// Validate checks that a DataSpec is structurally usable:
//   - at least one entity, each with a name and attributes (names unique)
//   - an event_stream_table with at least one named column
//   - a simulation block
//
// Everything else is tolerated and degrades at generation time; see Lint.
func Validate(s *DataSpec) error {
	if s == nil {
		return fmt.Errorf("%w: spec is nil", ErrInvalidSpec)
	}
	var errs []string

	if len(s.Entities) == 0 {
		errs = append(errs, "entities must not be empty")
	}
	seen := make(map[string]int)
	for i, e := range s.Entities {
		if e.Name == "" {
			errs = append(errs, fmt.Sprintf("entities[%d]: name is required", i))
			continue
		}
		if prev, ok := seen[e.Name]; ok {
			errs = append(errs, fmt.Sprintf("duplicate entity %q (entities[%d] and entities[%d])", e.Name, prev, i))
		} else {
			seen[e.Name] = i
		}
		if len(e.Attributes) == 0 {
			errs = append(errs, fmt.Sprintf("entity %s: attributes are required", e.Name))
		}
	}

	switch {
	case s.EventStreamTable == nil:
		errs = append(errs, "event_stream_table is required")
	case len(s.EventStreamTable.Columns) == 0:
		errs = append(errs, "event_stream_table: columns must not be empty")
	default:
		for i, c := range s.EventStreamTable.Columns {
			if c.Name == "" {
				errs = append(errs, fmt.Sprintf("event_stream_table.columns[%d]: name is required", i))
			}
		}
	}

	if s.Simulation == nil {
		errs = append(errs, "simulation is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w:\n  - %s", ErrInvalidSpec, strings.Join(errs, "\n  - "))
	}
	return nil
}

// Lint reports definitions that will silently degrade during generation:
// unknown types, malformed triggers, and references to undeclared entities.
// It never fails; findings are advisory.
func Lint(s *DataSpec) []string {
	if s == nil {
		return nil
	}
	var warns []string
	for _, e := range s.Entities {
		for _, a := range e.Attributes {
			switch attr := a.Attr.(type) {
			case UnknownAttr:
				warns = append(warns, fmt.Sprintf("entity %s attribute %s: unknown type %q resolves to null", e.Name, a.Name, attr.Type))
			case FakerAttr:
				if !strings.Contains(attr.Method, ".") {
					warns = append(warns, fmt.Sprintf("entity %s attribute %s: faker method %q is not namespace.method", e.Name, a.Name, attr.Method))
				}
			case ConditionalAttr:
				if len(attr.On) == 0 {
					warns = append(warns, fmt.Sprintf("entity %s attribute %s: conditional without on", e.Name, a.Name))
				}
			}
		}
	}
	if s.EventStreamTable != nil {
		for _, c := range s.EventStreamTable.Columns {
			switch src := c.Source.(type) {
			case UnknownSource:
				warns = append(warns, fmt.Sprintf("column %s: unknown source type %q falls back by name", c.Name, src.Type))
			case ReferenceSource:
				if s.Entity(src.Entity) == nil {
					warns = append(warns, fmt.Sprintf("column %s: references undeclared entity %q", c.Name, src.Entity))
				}
			}
		}
	}
	if s.Simulation != nil {
		if s.Simulation.InitialEvent == "" {
			warns = append(warns, "simulation: initial_event is empty")
		}
		for _, ev := range s.Simulation.Events {
			switch t := ev.Trigger.(type) {
			case RecurringTrigger:
				if t.On == "" {
					warns = append(warns, fmt.Sprintf("event %s: recurring without frequency.on is skipped", ev.Name))
				}
			case RandomTrigger:
				if !t.HasAvg {
					warns = append(warns, fmt.Sprintf("event %s: random without an average is skipped", ev.Name))
				}
			case ChurnTrigger:
				if !t.HasRate {
					warns = append(warns, fmt.Sprintf("event %s: churn without monthly_rate is skipped", ev.Name))
				}
			case UnknownTrigger:
				warns = append(warns, fmt.Sprintf("event %s: unknown type %q is skipped", ev.Name, t.Type))
			}
		}
	}
	return warns
}
