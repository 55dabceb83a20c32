package table

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/gyaneshwarpardhi/synthdata/internal/dataset"
)

// Format is an export encoding.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatSQL     Format = "sql"
	FormatParquet Format = "parquet"
	FormatJSON    Format = "json"
)

// ParseFormat maps a request value onto a Format. Empty means csv.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatCSV, nil
	case FormatCSV, FormatSQL, FormatParquet, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	switch f {
	case FormatSQL:
		return "application/sql"
	case FormatParquet:
		return "application/vnd.apache.parquet"
	case FormatJSON:
		return "application/json"
	}
	return "text/csv"
}

// Write encodes t to w in format f.
func Write(w io.Writer, f Format, t dataset.Table) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, t)
	case FormatSQL:
		return WriteSQL(w, t)
	case FormatParquet:
		return WriteParquet(w, t)
	case FormatJSON:
		return WriteJSON(w, t)
	}
	return fmt.Errorf("unknown export format %q", f)
}

// WriteCSV writes a header row followed by one line per row. Nil cells are empty.
func WriteCSV(w io.Writer, t dataset.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	line := make([]string, len(t.Columns))
	for i, r := range t.Rows {
		for j, c := range t.Columns {
			line[j] = dataset.FormatValue(r[c])
		}
		if err := cw.Write(line); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the table as a JSON array of row objects.
func WriteJSON(w io.Writer, t dataset.Table) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if t.Rows == nil {
		return enc.Encode([]dataset.Record{})
	}
	return enc.Encode(t.Rows)
}
