// Package spec defines the DataSpec document that drives a generation run.
//
// Attribute, trigger, and column-source definitions arrive as tagged JSON
// objects; they are decoded into closed sum types here so the generator and
// simulator can switch over them exhaustively. Shapes an LLM commonly gets
// wrong (choice values under "options", a choice list under "method") are
// normalised during decoding.
package spec

// DataSpec is the top-level generation blueprint.
type DataSpec struct {
	Entities         []EntitySpec `json:"entities"`
	EventStreamTable *TableSpec   `json:"event_stream_table"`
	Simulation       *Simulation  `json:"simulation"`
}

// MainEntity returns the first entity, which drives the simulation clock.
func (s *DataSpec) MainEntity() *EntitySpec {
	if len(s.Entities) == 0 {
		return nil
	}
	return &s.Entities[0]
}

// Entity returns the entity with the given name, or nil.
func (s *DataSpec) Entity(name string) *EntitySpec {
	for i := range s.Entities {
		if s.Entities[i].Name == name {
			return &s.Entities[i]
		}
	}
	return nil
}

// EntitySpec declares one entity type and its attributes in declaration order.
type EntitySpec struct {
	Name       string
	Attributes []NamedAttribute
}

// NamedAttribute pairs an attribute name with its definition.
type NamedAttribute struct {
	Name string
	Attr Attribute
}

// Attribute is the closed set of attribute definitions.
type Attribute interface {
	attribute()
}

// IDAttr produces a prefixed unique identifier.
type IDAttr struct {
	Prefix string
}

// FakerAttr delegates to a "namespace.method" faker path.
type FakerAttr struct {
	Method string
}

// ChoiceAttr is a weighted categorical draw.
type ChoiceAttr struct {
	Choice Choice
}

// ConditionalAttr looks its value up in Cases keyed by other attributes of the same instance.
type ConditionalAttr struct {
	On    []string
	Cases map[string]interface{}
}

// UnknownAttr keeps an unrecognised attribute type; it resolves to nil.
type UnknownAttr struct {
	Type string
}

func (IDAttr) attribute()          {}
func (FakerAttr) attribute()       {}
func (ChoiceAttr) attribute()      {}
func (ConditionalAttr) attribute() {}
func (UnknownAttr) attribute()     {}

// Choice is the canonical weighted distribution. After decoding, Values is
// never empty and len(Weights) == len(Values).
type Choice struct {
	Values  []interface{}
	Weights []float64
}

// TableSpec is the target shape of the flat event table.
type TableSpec struct {
	Name    string
	Columns []ColumnSpec
}

// ColumnSpec is one output column and where its value comes from.
type ColumnSpec struct {
	Name   string
	Source Source
}

// Source is the closed set of column value sources.
type Source interface {
	source()
}

// IDSource emits a fresh id with an optional prefix.
type IDSource struct {
	Prefix string
}

// TimestampSource emits the event instant, optionally jittered by ±JitterDays.
type TimestampSource struct {
	JitterDays int
}

// ChoiceSource draws from a weighted categorical list.
type ChoiceSource struct {
	Choice Choice
}

// ReferenceSource reads Attribute from an instance of Entity.
type ReferenceSource struct {
	Entity    string
	Attribute string
}

// EventNameSource emits the name of the firing event.
type EventNameSource struct{}

// LookupSource defers to the firing event's Outputs; Key defaults to the column name.
type LookupSource struct {
	Key string
}

// LiteralSource is a constant, or a "price(min,max)" / "int(min,max)" pattern.
type LiteralSource struct {
	Value interface{}
}

// ConditionalSource is handled exactly like LiteralSource; it never branches.
type ConditionalSource struct {
	Value interface{}
}

// UnknownSource keeps an unrecognised source type; the column falls back by name.
type UnknownSource struct {
	Type string
}

func (IDSource) source()          {}
func (TimestampSource) source()   {}
func (ChoiceSource) source()      {}
func (ReferenceSource) source()   {}
func (EventNameSource) source()   {}
func (LookupSource) source()      {}
func (LiteralSource) source()     {}
func (ConditionalSource) source() {}
func (UnknownSource) source()     {}

// Simulation holds the initial event and the configured event types in declaration order.
type Simulation struct {
	InitialEvent string
	Events       []EventSpec
}

// EventSpec is one configured event type.
type EventSpec struct {
	Name    string
	Trigger Trigger
	Outputs map[string]Output
}

// Trigger is the closed set of event firing rules.
type Trigger interface {
	trigger()
}

// RecurringTrigger fires on billing anniversaries; On is "entity.attribute"
// naming the billing-cycle attribute. Empty On is malformed.
type RecurringTrigger struct {
	On string
}

// RandomTrigger fires with daily probability AvgPerMonth/30. HasAvg is false when malformed.
type RandomTrigger struct {
	AvgPerMonth float64
	HasAvg      bool
}

// ChurnTrigger fires with daily probability MonthlyRate/30 and deactivates the entity.
type ChurnTrigger struct {
	MonthlyRate float64
	HasRate     bool
}

// UnknownTrigger holds an unrecognised trigger type. It never fires.
type UnknownTrigger struct {
	Type string
}

func (RecurringTrigger) trigger() {}
func (RandomTrigger) trigger()    {}
func (ChurnTrigger) trigger()     {}
func (UnknownTrigger) trigger()   {}

// Output is a value an event declares for lookup columns.
type Output interface {
	output()
}

// ReferenceOutput reads an attribute from an instance of Entity.
type ReferenceOutput struct {
	Entity    string
	Attribute string
}

// LiteralOutput is a constant value.
type LiteralOutput struct {
	Value interface{}
}

func (ReferenceOutput) output() {}
func (LiteralOutput) output()   {}
