package table

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/lib/pq"

	"github.com/gyaneshwarpardhi/synthdata/internal/dataset"
)

const insertBatch = 500

// CreateTableSQL returns a CREATE TABLE IF NOT EXISTS statement with column
// types inferred from the rows.
func CreateTableSQL(t dataset.Table) string {
	return CreateTableIn("", t)
}

// CreateTableIn is CreateTableSQL with the table placed in schema. An empty
// schema leaves the name unqualified.
func CreateTableIn(schema string, t dataset.Table) string {
	kinds := InferKinds(t)
	defs := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		defs[i] = "  " + pq.QuoteIdentifier(c) + " " + kinds[i].SQLType()
	}
	name := pq.QuoteIdentifier(t.Name)
	if schema != "" {
		name = pq.QuoteIdentifier(schema) + "." + name
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n%s\n);", name, strings.Join(defs, ",\n"))
}

// WriteSQL writes a Postgres script: the CREATE TABLE statement followed by
// multi-row INSERTs of up to 500 rows each.
func WriteSQL(w io.Writer, t dataset.Table) error {
	bw := bufio.NewWriter(w)
	kinds := InferKinds(t)

	fmt.Fprintln(bw, CreateTableSQL(t))

	quoted := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		quoted[i] = pq.QuoteIdentifier(c)
	}
	head := fmt.Sprintf("INSERT INTO %s (%s) VALUES\n", pq.QuoteIdentifier(t.Name), strings.Join(quoted, ", "))

	vals := make([]string, len(t.Columns))
	for start := 0; start < len(t.Rows); start += insertBatch {
		end := start + insertBatch
		if end > len(t.Rows) {
			end = len(t.Rows)
		}
		bw.WriteString(head)
		for i, r := range t.Rows[start:end] {
			for j, c := range t.Columns {
				vals[j] = sqlLiteral(r[c], kinds[j])
			}
			sep := ","
			if start+i == end-1 {
				sep = ";"
			}
			fmt.Fprintf(bw, "  (%s)%s\n", strings.Join(vals, ", "), sep)
		}
	}
	return bw.Flush()
}

func sqlLiteral(v interface{}, k ColumnKind) string {
	if v == nil {
		return "NULL"
	}
	switch k {
	case KindNumeric, KindBool:
		return dataset.FormatValue(v)
	}
	return pq.QuoteLiteral(dataset.FormatValue(v))
}
