package table

import (
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/gyaneshwarpardhi/synthdata/internal/dataset"
)

// ArrowSchema maps the inferred column kinds onto a nullable arrow schema.
func ArrowSchema(t dataset.Table) *arrow.Schema {
	kinds := InferKinds(t)
	fields := make([]arrow.Field, len(t.Columns))
	for i, c := range t.Columns {
		fields[i] = arrow.Field{Name: c, Type: arrowType(kinds[i]), Nullable: true}
	}
	md := arrow.NewMetadata([]string{"table", "table_type"}, []string{t.Name, string(t.Type)})
	return arrow.NewSchema(fields, &md)
}

func arrowType(k ColumnKind) arrow.DataType {
	switch k {
	case KindNumeric:
		return arrow.PrimitiveTypes.Float64
	case KindBool:
		return arrow.FixedWidthTypes.Boolean
	}
	return arrow.BinaryTypes.String
}

// WriteParquet writes t as a single-row-group Parquet file.
func WriteParquet(w io.Writer, t dataset.Table) error {
	schema := ArrowSchema(t)
	mem := memory.NewGoAllocator()

	rec := buildRecord(mem, schema, t)
	defer rec.Release()

	writer, err := pqarrow.NewFileWriter(schema, w, nil, pqarrow.NewArrowWriterProperties(pqarrow.WithAllocator(mem)))
	if err != nil {
		return fmt.Errorf("create parquet writer: %w", err)
	}
	if err := writer.Write(rec); err != nil {
		writer.Close()
		return fmt.Errorf("write parquet table %s: %w", t.Name, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return nil
}

func buildRecord(mem memory.Allocator, schema *arrow.Schema, t dataset.Table) arrow.Record {
	builders := make([]array.Builder, schema.NumFields())
	for i := 0; i < schema.NumFields(); i++ {
		builders[i] = array.NewBuilder(mem, schema.Field(i).Type)
	}
	for _, r := range t.Rows {
		for i, c := range t.Columns {
			appendValue(builders[i], r[c])
		}
	}
	cols := make([]arrow.Array, len(builders))
	for i, b := range builders {
		cols[i] = b.NewArray()
		b.Release()
	}
	rec := array.NewRecord(schema, cols, int64(len(t.Rows)))
	for _, c := range cols {
		c.Release()
	}
	return rec
}

func appendValue(b array.Builder, v interface{}) {
	if v == nil {
		b.AppendNull()
		return
	}
	switch bb := b.(type) {
	case *array.Float64Builder:
		f, ok := dataset.ToFloat64(v)
		if !ok {
			bb.AppendNull()
			return
		}
		bb.Append(f)
	case *array.BooleanBuilder:
		x, ok := v.(bool)
		if !ok {
			bb.AppendNull()
			return
		}
		bb.Append(x)
	case *array.StringBuilder:
		bb.Append(dataset.FormatValue(v))
	default:
		b.AppendNull()
	}
}
