package store

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/synthdata/internal/dataset"
)

type copyCall struct {
	table pgx.Identifier
	cols  []string
	rows  [][]any
}

type fakeConn struct {
	execs   []string
	copies  []copyCall
	copyErr error
}

func (f *fakeConn) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, sql)
	return pgconn.CommandTag{}, nil
}

func (f *fakeConn) CopyFrom(_ context.Context, name pgx.Identifier, cols []string, src pgx.CopyFromSource) (int64, error) {
	if f.copyErr != nil {
		return 0, f.copyErr
	}
	call := copyCall{table: name, cols: cols}
	for src.Next() {
		vals, err := src.Values()
		if err != nil {
			return 0, err
		}
		call.rows = append(call.rows, vals)
	}
	f.copies = append(f.copies, call)
	return int64(len(call.rows)), nil
}

func sample(n int) dataset.Table {
	t := dataset.Table{Name: "orders_fact", Type: dataset.TableFact, Columns: []string{"order_id", "amount", "paid", "note"}}
	for i := 0; i < n; i++ {
		note := interface{}("ok")
		if i%2 == 0 {
			note = 7
		}
		t.Rows = append(t.Rows, dataset.Record{"order_id": "o", "amount": i, "paid": i%3 == 0, "note": note})
	}
	return t
}

func TestCopyRows(t *testing.T) {
	tbl := sample(2)
	tbl.Rows[1]["amount"] = nil

	rows := CopyRows(tbl)
	require.Len(t, rows, 2)
	assert.Equal(t, []any{"o", 0.0, true, "7"}, rows[0])
	assert.Equal(t, []any{"o", nil, false, "ok"}, rows[1])
}

func TestSink_WriteBatches(t *testing.T) {
	conn := &fakeConn{}
	sink := NewSink(conn, nil)

	counts, err := sink.Write(context.Background(), dataset.Generated{Tables: []dataset.Table{sample(2500)}}, Options{Truncate: true})
	require.NoError(t, err)
	assert.Equal(t, []TableCount{{Table: "orders_fact", Rows: 2500}}, counts)

	require.Len(t, conn.execs, 2)
	assert.Contains(t, conn.execs[0], `CREATE TABLE IF NOT EXISTS "orders_fact"`)
	assert.Contains(t, conn.execs[0], `"amount" NUMERIC`)
	assert.Equal(t, `TRUNCATE TABLE "orders_fact"`, conn.execs[1])

	require.Len(t, conn.copies, 3)
	assert.Len(t, conn.copies[0].rows, 1000)
	assert.Len(t, conn.copies[2].rows, 500)
	assert.Equal(t, pgx.Identifier{"orders_fact"}, conn.copies[0].table)
	assert.Equal(t, []string{"order_id", "amount", "paid", "note"}, conn.copies[0].cols)
}

func TestSink_Schema(t *testing.T) {
	conn := &fakeConn{}
	_, err := NewSink(conn, nil).WriteTable(context.Background(), sample(1), Options{Schema: "synth"})
	require.NoError(t, err)

	assert.Equal(t, `CREATE SCHEMA IF NOT EXISTS "synth"`, conn.execs[0])
	assert.Contains(t, conn.execs[1], `CREATE TABLE IF NOT EXISTS "synth"."orders_fact"`)
	assert.Equal(t, pgx.Identifier{"synth", "orders_fact"}, conn.copies[0].table)
}

func TestSink_CopyError(t *testing.T) {
	conn := &fakeConn{copyErr: errors.New("permission denied")}
	_, err := NewSink(conn, nil).Write(context.Background(), dataset.Generated{Tables: []dataset.Table{sample(3)}}, Options{})
	assert.ErrorContains(t, err, "copy into orders_fact (offset=0, batch=3): permission denied")
}
