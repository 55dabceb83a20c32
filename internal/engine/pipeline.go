package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gyaneshwarpardhi/synthdata/internal/dataset"
	"github.com/gyaneshwarpardhi/synthdata/internal/enforce"
	"github.com/gyaneshwarpardhi/synthdata/internal/entity"
	"github.com/gyaneshwarpardhi/synthdata/internal/fake"
	"github.com/gyaneshwarpardhi/synthdata/internal/metrics"
	"github.com/gyaneshwarpardhi/synthdata/internal/quality"
	"github.com/gyaneshwarpardhi/synthdata/internal/simulate"
	"github.com/gyaneshwarpardhi/synthdata/internal/spec"
	"github.com/gyaneshwarpardhi/synthdata/internal/table"
)

// DefaultMaxRows caps RowCount when PipelineOptions.MaxRows is unset.
const DefaultMaxRows = 100000

// Request describes one generation run.
type Request struct {
	Spec       *spec.DataSpec   `json:"-"`
	RowCount   int              `json:"row_count"`
	TimeRange  []string         `json:"time_range"`
	SchemaType table.SchemaType `json:"schema_type"`
	// Domain selects the enforcer chain. Empty infers it from the spec.
	Domain string `json:"business_domain"`
	// Seed makes the run reproducible. Zero draws a fresh seed.
	Seed uint64 `json:"seed"`
	// Quality attaches a quality report to the result.
	Quality bool `json:"quality"`
}

// Result is the outcome of a generation run.
type Result struct {
	RunID      string            `json:"run_id"`
	Seed       uint64            `json:"seed"`
	Domain     string            `json:"business_domain"`
	SchemaType table.SchemaType  `json:"schema_type"`
	Enforcers  []string          `json:"enforcers"`
	Data       dataset.Generated `json:"data"`
	Warnings   []string          `json:"warnings,omitempty"`
	Quality    *quality.Report   `json:"quality,omitempty"`
	DurationMs int64             `json:"duration_ms"`
}

// PipelineOptions tunes a Pipeline.
type PipelineOptions struct {
	MaxRows    int
	MaxSimDays int
	// Now fixes the run clock. Nil means time.Now.
	Now func() time.Time
}

// Pipeline wires validation, entity generation, simulation, enforcement,
// table formatting, and quality scoring into one run.
type Pipeline struct {
	logger    *slog.Logger
	enforcers *enforce.Registry
	opts      PipelineOptions
}

// NewPipeline creates a Pipeline. A nil registry uses enforce.DefaultRegistry.
func NewPipeline(logger *slog.Logger, reg *enforce.Registry, opts PipelineOptions) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if reg == nil {
		reg = enforce.DefaultRegistry()
	}
	if opts.MaxRows <= 0 {
		opts.MaxRows = DefaultMaxRows
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Pipeline{logger: logger, enforcers: reg, opts: opts}
}

// Run executes req. Only an invalid spec or request, or a cancelled ctx, fail
// the run; quality findings are reported, never fatal.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	if req.Spec == nil {
		return nil, fmt.Errorf("%w: spec is required", spec.ErrInvalidSpec)
	}
	if err := spec.Validate(req.Spec); err != nil {
		return nil, err
	}
	if req.RowCount <= 0 {
		return nil, fmt.Errorf("row_count must be positive, got %d", req.RowCount)
	}
	schema, err := table.ParseSchemaType(string(req.SchemaType))
	if err != nil {
		return nil, err
	}
	rows := req.RowCount
	if rows > p.opts.MaxRows {
		p.logger.Warn("row count capped", "requested", rows, "max_rows", p.opts.MaxRows)
		rows = p.opts.MaxRows
	}
	seed := req.Seed
	if seed == 0 {
		seed = fake.NewSeed()
	}
	domain := req.Domain
	if domain == "" {
		domain = InferDomain(req.Spec)
	}
	chain, err := p.enforcers.ForDomain(domain)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger := p.logger.With("run_id", runID, "seed", seed)
	src := fake.New(seed, p.opts.Now().UTC())

	collection := entity.NewGenerator(src, logger).Generate(req.Spec, rows)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sim := simulate.New(req.Spec, logger, simulate.Options{MaxDays: p.opts.MaxSimDays})
	stream := sim.Run(collection, rows, req.TimeRange, src)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stream = chain.ApplyAll(stream, src)
	fact := table.FormatAsTable(req.Spec, stream)
	data := table.Assemble(schema, fact, collection)

	res := &Result{
		RunID:      runID,
		Seed:       seed,
		Domain:     domain,
		SchemaType: schema,
		Enforcers:  chain.Names(),
		Data:       data,
		Warnings:   spec.Lint(req.Spec),
	}
	if req.Quality {
		rep := quality.Validate(stream, quality.Options{Now: src.Now()})
		res.Quality = &rep
		metrics.QualityScore.Observe(float64(rep.QualityScore))
	}
	for _, t := range data.Tables {
		metrics.RowsGenerated.WithLabelValues(string(t.Type)).Add(float64(len(t.Rows)))
	}
	res.DurationMs = time.Since(start).Milliseconds()
	logger.Info("run complete", "rows", len(fact.Rows), "tables", len(data.Tables), "domain", domain, "duration_ms", res.DurationMs)
	return res, nil
}

// saasMarkers are column or attribute names that only SaaS specs declare.
var saasMarkers = map[string]bool{
	"subscription_plan": true,
	"billing_cycle":     true,
	"plan_price":        true,
	"mrr":               true,
}

// InferDomain guesses the business domain from the names a spec declares.
// It returns "saas" or "generic".
func InferDomain(s *spec.DataSpec) string {
	if s == nil {
		return "generic"
	}
	for _, e := range s.Entities {
		if strings.Contains(strings.ToLower(e.Name), "subscription") {
			return "saas"
		}
		for _, a := range e.Attributes {
			if saasMarkers[a.Name] {
				return "saas"
			}
		}
	}
	if s.EventStreamTable != nil {
		for _, c := range s.EventStreamTable.Columns {
			if saasMarkers[c.Name] {
				return "saas"
			}
		}
	}
	return "generic"
}
