// Package entity builds the pools of entity instances a simulation draws from.
package entity

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/gyaneshwarpardhi/synthdata/internal/dataset"
	"github.com/gyaneshwarpardhi/synthdata/internal/fake"
	"github.com/gyaneshwarpardhi/synthdata/internal/spec"
)

const (
	minPool = 10
	maxPool = 100
)

// Pool is the generated instances of one entity type.
type Pool struct {
	Name       string
	Attributes []string
	Instances  []dataset.Record
}

// Collection holds one pool per entity, in spec order. The first pool belongs
// to the main entity.
type Collection struct {
	Pools []Pool
}

// Pool returns the pool for name, or nil.
func (c *Collection) Pool(name string) *Pool {
	for i := range c.Pools {
		if c.Pools[i].Name == name {
			return &c.Pools[i]
		}
	}
	return nil
}

// Main returns the main entity's pool, or nil for an empty collection.
func (c *Collection) Main() *Pool {
	if len(c.Pools) == 0 {
		return nil
	}
	return &c.Pools[0]
}

// PoolSize is the number of instances generated per entity for rowCount rows:
// ceil(rowCount/10) clamped to [10, 100].
func PoolSize(rowCount int) int {
	n := (rowCount + 9) / 10
	if n < minPool {
		return minPool
	}
	if n > maxPool {
		return maxPool
	}
	return n
}

// Generator resolves entity attributes against a run's Source.
type Generator struct {
	src    *fake.Source
	logger *slog.Logger
}

// NewGenerator creates a Generator. A nil logger uses slog.Default.
func NewGenerator(src *fake.Source, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{src: src, logger: logger}
}

// Generate builds PoolSize(rowCount) instances for every entity in s.
func (g *Generator) Generate(s *spec.DataSpec, rowCount int) Collection {
	size := PoolSize(rowCount)
	c := Collection{Pools: make([]Pool, 0, len(s.Entities))}
	for _, es := range s.Entities {
		p := Pool{
			Name:       es.Name,
			Attributes: make([]string, 0, len(es.Attributes)),
			Instances:  make([]dataset.Record, 0, size),
		}
		for _, a := range es.Attributes {
			p.Attributes = append(p.Attributes, a.Name)
		}
		for i := 0; i < size; i++ {
			p.Instances = append(p.Instances, g.instance(es))
		}
		c.Pools = append(c.Pools, p)
	}
	return c
}

// instance resolves attributes in declaration order so conditionals can read
// earlier values of the same instance.
func (g *Generator) instance(es spec.EntitySpec) dataset.Record {
	rec := make(dataset.Record, len(es.Attributes))
	for _, a := range es.Attributes {
		rec[a.Name] = g.resolve(es.Name, a.Name, a.Attr, rec)
	}
	return rec
}

func (g *Generator) resolve(entity, name string, attr spec.Attribute, rec dataset.Record) interface{} {
	switch a := attr.(type) {
	case spec.IDAttr:
		return a.Prefix + g.src.UUID()
	case spec.FakerAttr:
		v, err := g.src.Invoke(a.Method)
		if err != nil {
			g.logger.Debug("faker fallback", "entity", entity, "attribute", name, "err", err)
			return g.src.Fallback(name)
		}
		return v
	case spec.ChoiceAttr:
		return g.src.Weighted(a.Choice.Values, a.Choice.Weights)
	case spec.ConditionalAttr:
		return Conditional(a, rec)
	default:
		g.logger.Debug("unhandled attribute type", "entity", entity, "attribute", name)
		return nil
	}
}

// Conditional looks up a conditional attribute's value from the already
// resolved attributes in rec. The key joins the sorted "on" names as
// "name=value" pairs with " & "; misses fall back to the bare value of the
// first "on" attribute, then "default", then 0.
func Conditional(a spec.ConditionalAttr, rec dataset.Record) interface{} {
	if len(a.On) == 0 {
		if v, ok := a.Cases["default"]; ok {
			return v
		}
		return 0
	}
	names := append([]string(nil), a.On...)
	sort.Strings(names)
	pairs := make([]string, 0, len(names))
	for _, n := range names {
		pairs = append(pairs, n+"="+dataset.FormatValue(rec[n]))
	}
	if v, ok := a.Cases[strings.Join(pairs, " & ")]; ok {
		return v
	}
	if v, ok := a.Cases[dataset.FormatValue(rec[a.On[0]])]; ok {
		return v
	}
	if v, ok := a.Cases["default"]; ok {
		return v
	}
	return 0
}
