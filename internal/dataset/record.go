// Package dataset holds the record, stream and table types shared by every
// stage of a generation run.
package dataset

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Record is one generated row: column name → string | number | bool | nil.
type Record map[string]interface{}

// Stream is the flat event output of a simulation run, in emission order.
type Stream []Record

// TableType distinguishes fact tables from dimension tables.
type TableType string

const (
	TableFact TableType = "fact"
	TableDim  TableType = "dim"
)

// Table is a named, typed table with a fixed column set.
type Table struct {
	Name    string    `json:"name"`
	Type    TableType `json:"type"`
	Columns []string  `json:"columns"`
	Rows    []Record  `json:"rows"`
}

// Generated is the final result handed back to callers.
type Generated struct {
	Tables []Table `json:"tables"`
}

// Table returns the table with the given name, or nil.
func (g *Generated) Table(name string) *Table {
	for i := range g.Tables {
		if g.Tables[i].Name == name {
			return &g.Tables[i]
		}
	}
	return nil
}

// Clone returns a shallow copy of r. Values are scalars so this is a full copy.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// IsEmpty reports whether key is absent, nil, or a blank string.
func (r Record) IsEmpty(key string) bool {
	v, ok := r[key]
	if !ok || v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

// String returns the value for key formatted as text ("" when missing).
func (r Record) String(key string) string {
	v, ok := r[key]
	if !ok {
		return ""
	}
	return FormatValue(v)
}

// Float returns the numeric value of key, parsing strings when needed.
func (r Record) Float(key string) (float64, bool) {
	return ToFloat64(r[key])
}

// ToFloat64 coerces a numeric value (or numeric string) to float64.
func ToFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// FormatValue renders a cell value as text. Whole floats print without a fraction.
func FormatValue(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return FormatTimestamp(x)
	default:
		return fmt.Sprintf("%v", x)
	}
}

const (
	// TimestampLayout matches the millisecond ISO-8601 form used for every emitted instant.
	TimestampLayout = "2006-01-02T15:04:05.000Z"
	DateLayout      = "2006-01-02"
)

// FormatTimestamp renders t in UTC using TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

var parseLayouts = []string{
	TimestampLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	DateLayout,
	"01/02/2006",
}

// ParseTime parses any of the date/time layouts the generator or an LLM-authored
// spec is likely to produce. The returned layout can be used to re-format a
// corrected value in the same shape.
func ParseTime(s string) (time.Time, string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, "", false
	}
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), layout, true
		}
	}
	return time.Time{}, "", false
}

// IsDateColumn reports whether a column name looks like it holds a date or instant.
func IsDateColumn(name string) bool {
	n := strings.ToLower(name)
	return strings.Contains(n, "date") ||
		strings.Contains(n, "timestamp") ||
		strings.HasSuffix(n, "_at") ||
		strings.HasSuffix(n, "_time") ||
		n == "time"
}
