package table

import (
	"github.com/gyaneshwarpardhi/synthdata/internal/dataset"
)

// ColumnKind is the storage type inferred for a column.
type ColumnKind int

const (
	KindText ColumnKind = iota
	KindNumeric
	KindBool
)

// InferKinds looks at every non-nil cell of each column. A column is numeric
// or boolean only if every such cell is; anything mixed is text.
func InferKinds(t dataset.Table) []ColumnKind {
	kinds := make([]ColumnKind, len(t.Columns))
	for i, c := range t.Columns {
		kinds[i] = inferColumn(t.Rows, c)
	}
	return kinds
}

func inferColumn(rows []dataset.Record, col string) ColumnKind {
	numeric, boolean, seen := true, true, false
	for _, r := range rows {
		v := r[col]
		if v == nil {
			continue
		}
		seen = true
		switch v.(type) {
		case bool:
			numeric = false
		case int, int32, int64, float32, float64:
			boolean = false
		default:
			numeric, boolean = false, false
		}
		if !numeric && !boolean {
			return KindText
		}
	}
	switch {
	case !seen:
		return KindText
	case numeric:
		return KindNumeric
	case boolean:
		return KindBool
	}
	return KindText
}

// SQLType returns the Postgres column type for k.
func (k ColumnKind) SQLType() string {
	switch k {
	case KindNumeric:
		return "NUMERIC"
	case KindBool:
		return "BOOLEAN"
	}
	return "TEXT"
}
