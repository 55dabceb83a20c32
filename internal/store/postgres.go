// Package store persists generated tables into Postgres.
package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"github.com/gyaneshwarpardhi/synthdata/internal/dataset"
	"github.com/gyaneshwarpardhi/synthdata/internal/metrics"
	"github.com/gyaneshwarpardhi/synthdata/internal/table"
)

const copyBatch = 1000

// Conn is the subset of *pgxpool.Pool the sink uses.
type Conn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// Options controls how tables are written.
type Options struct {
	// Schema qualifies every table name when set.
	Schema string
	// Truncate empties existing tables before copying.
	Truncate bool
}

// Sink writes dataset tables with CREATE TABLE IF NOT EXISTS and COPY.
type Sink struct {
	conn   Conn
	logger *slog.Logger
}

// Open connects a pool to dsn and pings it.
func Open(ctx context.Context, dsn string, maxConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// NewSink creates a Sink over conn. A nil logger uses slog.Default.
func NewSink(conn Conn, logger *slog.Logger) *Sink {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sink{conn: conn, logger: logger}
}

// TableCount is the number of rows copied into one table.
type TableCount struct {
	Table string `json:"table"`
	Rows  int64  `json:"rows"`
}

// Write persists every table of g in order.
func (s *Sink) Write(ctx context.Context, g dataset.Generated, opts Options) ([]TableCount, error) {
	out := make([]TableCount, 0, len(g.Tables))
	for _, t := range g.Tables {
		n, err := s.WriteTable(ctx, t, opts)
		if err != nil {
			return out, err
		}
		out = append(out, TableCount{Table: t.Name, Rows: n})
	}
	return out, nil
}

// WriteTable creates t if needed and copies its rows in batches.
func (s *Sink) WriteTable(ctx context.Context, t dataset.Table, opts Options) (int64, error) {
	if opts.Schema != "" {
		if _, err := s.conn.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+pq.QuoteIdentifier(opts.Schema)); err != nil {
			return 0, fmt.Errorf("create schema %s: %w", opts.Schema, err)
		}
	}
	ddl := table.CreateTableIn(opts.Schema, t)
	if _, err := s.conn.Exec(ctx, ddl); err != nil {
		return 0, fmt.Errorf("create table %s: %w", t.Name, err)
	}
	ident := identifier(t.Name, opts.Schema)
	if opts.Truncate {
		if _, err := s.conn.Exec(ctx, "TRUNCATE TABLE "+ident.Sanitize()); err != nil {
			return 0, fmt.Errorf("truncate %s: %w", t.Name, err)
		}
	}

	rows := CopyRows(t)
	var total int64
	for start := 0; start < len(rows); start += copyBatch {
		end := start + copyBatch
		if end > len(rows) {
			end = len(rows)
		}
		n, err := s.conn.CopyFrom(ctx, ident, t.Columns, pgx.CopyFromRows(rows[start:end]))
		if err != nil {
			return total, fmt.Errorf("copy into %s (offset=%d, batch=%d): %w", t.Name, start, end-start, err)
		}
		total += n
	}
	metrics.RowsPersisted.Add(float64(total))
	s.logger.Info("table persisted", "table", t.Name, "rows", total)
	return total, nil
}

// CopyRows converts t into COPY rows matching the inferred column types:
// numeric cells become float64, text cells strings, nil stays NULL.
func CopyRows(t dataset.Table) [][]any {
	kinds := table.InferKinds(t)
	out := make([][]any, len(t.Rows))
	for i, r := range t.Rows {
		row := make([]any, len(t.Columns))
		for j, c := range t.Columns {
			v := r[c]
			if v == nil {
				continue
			}
			switch kinds[j] {
			case table.KindNumeric:
				row[j], _ = dataset.ToFloat64(v)
			case table.KindBool:
				row[j] = v
			default:
				row[j] = dataset.FormatValue(v)
			}
		}
		out[i] = row
	}
	return out
}

func identifier(name, schema string) pgx.Identifier {
	if schema == "" {
		return pgx.Identifier{name}
	}
	return pgx.Identifier{schema, name}
}
