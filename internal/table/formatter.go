// Package table shapes event streams and entity pools into named tables and
// writes them out as CSV, SQL, Parquet, or JSON.
package table

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gyaneshwarpardhi/synthdata/internal/dataset"
	"github.com/gyaneshwarpardhi/synthdata/internal/entity"
	"github.com/gyaneshwarpardhi/synthdata/internal/spec"
)

// SchemaType selects the output shape.
type SchemaType string

const (
	SchemaOBT  SchemaType = "obt"
	SchemaStar SchemaType = "star"
)

// ParseSchemaType maps a request value onto a SchemaType. Empty means obt.
func ParseSchemaType(s string) (SchemaType, error) {
	switch SchemaType(strings.ToLower(strings.TrimSpace(s))) {
	case "", SchemaOBT:
		return SchemaOBT, nil
	case SchemaStar:
		return SchemaStar, nil
	}
	return "", fmt.Errorf("unknown schema type %q (want obt or star)", s)
}

const (
	factSuffix = "_fact"
	dimSuffix  = "_dim"
)

// hiddenColumns are pre-aggregated metrics that never reach an output table.
var hiddenColumns = map[string]bool{"acv": true, "mrr": true}

// FactName normalises a declared table name so it carries exactly one
// _fact or _dim suffix, defaulting to _fact.
func FactName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "events"
	}
	for _, suf := range []string{factSuffix, dimSuffix} {
		if strings.HasSuffix(name, suf) {
			base := name
			for strings.HasSuffix(base, suf) {
				base = strings.TrimSuffix(base, suf)
			}
			return base + suf
		}
	}
	return name + factSuffix
}

// DimName appends _dim unless the name already ends with it.
func DimName(name string) string {
	for strings.HasSuffix(name, dimSuffix) {
		name = strings.TrimSuffix(name, dimSuffix)
	}
	return name + dimSuffix
}

// FormatAsTable turns the event stream into the fact table. Columns are the
// declared columns followed by any other keys seen in the rows (sorted),
// without acv and mrr. Every row carries every column.
func FormatAsTable(s *spec.DataSpec, stream dataset.Stream) dataset.Table {
	name := ""
	var declared []string
	if s != nil && s.EventStreamTable != nil {
		name = s.EventStreamTable.Name
		for _, c := range s.EventStreamTable.Columns {
			declared = append(declared, c.Name)
		}
	}

	seen := make(map[string]bool)
	var cols []string
	for _, c := range declared {
		if !seen[c] && !hiddenColumns[c] {
			cols = append(cols, c)
		}
		seen[c] = true
	}
	var extra []string
	for _, rec := range stream {
		for k := range rec {
			if !seen[k] {
				seen[k] = true
				if !hiddenColumns[k] {
					extra = append(extra, k)
				}
			}
		}
	}
	sort.Strings(extra)
	cols = append(cols, extra...)

	return dataset.Table{
		Name:    FactName(name),
		Type:    dataset.TableFact,
		Columns: cols,
		Rows:    project(stream, cols),
	}
}

// DimensionTables emits one dimension table per entity pool. Columns are the
// declared attributes present on the first instance, skipping names that
// start with an underscore.
func DimensionTables(c entity.Collection) []dataset.Table {
	out := make([]dataset.Table, 0, len(c.Pools))
	for _, p := range c.Pools {
		var cols []string
		if len(p.Instances) > 0 {
			first := p.Instances[0]
			for _, a := range p.Attributes {
				if strings.HasPrefix(a, "_") {
					continue
				}
				if _, ok := first[a]; ok {
					cols = append(cols, a)
				}
			}
		}
		out = append(out, dataset.Table{
			Name:    DimName(p.Name),
			Type:    dataset.TableDim,
			Columns: cols,
			Rows:    project(p.Instances, cols),
		})
	}
	return out
}

// Assemble builds the final result for the requested shape.
func Assemble(schema SchemaType, fact dataset.Table, c entity.Collection) dataset.Generated {
	g := dataset.Generated{Tables: []dataset.Table{fact}}
	if schema == SchemaStar {
		g.Tables = append(g.Tables, DimensionTables(c)...)
	}
	return g
}

func project(rows []dataset.Record, cols []string) []dataset.Record {
	out := make([]dataset.Record, 0, len(rows))
	for _, r := range rows {
		rec := make(dataset.Record, len(cols))
		for _, c := range cols {
			rec[c] = r[c]
		}
		out = append(out, rec)
	}
	return out
}
