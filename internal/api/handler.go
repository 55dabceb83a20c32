package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gyaneshwarpardhi/synthdata/internal/dataset"
	"github.com/gyaneshwarpardhi/synthdata/internal/engine"
	"github.com/gyaneshwarpardhi/synthdata/internal/metrics"
	"github.com/gyaneshwarpardhi/synthdata/internal/spec"
	"github.com/gyaneshwarpardhi/synthdata/internal/specgen"
	"github.com/gyaneshwarpardhi/synthdata/internal/store"
	"github.com/gyaneshwarpardhi/synthdata/internal/table"
)

const maxBodyBytes = 10 << 20

// Sink persists generated tables. *store.Sink implements it.
type Sink interface {
	Write(ctx context.Context, g dataset.Generated, opts store.Options) ([]store.TableCount, error)
}

// Options carries the optional handler dependencies.
type Options struct {
	Logger      *slog.Logger
	Producer    specgen.Producer // nil disables /v1/specs/generate
	Sink        Sink             // nil disables /v1/persist
	CORSOrigins []string
}

// Handler holds all HTTP handler dependencies.
type Handler struct {
	eng    *engine.Engine
	specs  *spec.Store
	opts   Options
	logger *slog.Logger
	mux    *http.ServeMux
}

// New creates an HTTP handler and registers all routes.
func New(eng *engine.Engine, specs *spec.Store, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{eng: eng, specs: specs, opts: opts, logger: logger, mux: http.NewServeMux()}

	h.mux.HandleFunc("POST /v1/generate", h.generate)
	h.mux.HandleFunc("POST /v1/export", h.export)
	h.mux.HandleFunc("POST /v1/specs/validate", h.validateSpec)
	h.mux.HandleFunc("GET /v1/specs", h.listSpecs)
	h.mux.HandleFunc("POST /v1/specs/reload", h.reloadSpecs)
	h.mux.HandleFunc("POST /v1/specs/generate", h.generateSpec)
	h.mux.HandleFunc("POST /v1/persist", h.persist)
	h.mux.HandleFunc("GET /healthz", h.healthz)
	h.mux.HandleFunc("GET /readyz", h.readyz)
	h.mux.Handle("GET /metrics", promhttp.Handler())

	return corsMiddleware(opts.CORSOrigins, loggingMiddleware(logger, h.mux))
}

// generateRequest is the body shared by generate, export, and persist. Exactly
// one of Spec or SpecID names the blueprint.
type generateRequest struct {
	Spec       json.RawMessage `json:"spec"`
	SpecID     string          `json:"spec_id"`
	RowCount   int             `json:"row_count"`
	TimeRange  []string        `json:"time_range"`
	SchemaType string          `json:"schema_type"`
	Domain     string          `json:"business_domain"`
	Seed       uint64          `json:"seed"`
	Quality    bool            `json:"quality"`

	// persist only
	Schema   string `json:"schema"`
	Truncate bool   `json:"truncate"`
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return false
	}
	return true
}

// run resolves the spec and executes the request on the engine. It writes
// the error response itself and returns nil on failure.
func (h *Handler) run(w http.ResponseWriter, r *http.Request, body generateRequest) *engine.Result {
	s, err := h.resolveSpec(body)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return nil
	}
	res, err := h.eng.ProcessSync(r.Context(), engine.Request{
		Spec:       s,
		RowCount:   body.RowCount,
		TimeRange:  body.TimeRange,
		SchemaType: table.SchemaType(body.SchemaType),
		Domain:     body.Domain,
		Seed:       body.Seed,
		Quality:    body.Quality,
	})
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return nil
	}
	return res
}

func (h *Handler) resolveSpec(body generateRequest) (*spec.DataSpec, error) {
	hasInline := len(body.Spec) > 0 && string(body.Spec) != "null"
	switch {
	case hasInline && body.SpecID != "":
		return nil, fmt.Errorf("only one of spec or spec_id may be set")
	case hasInline:
		return spec.Parse(body.Spec)
	case body.SpecID != "":
		e, ok := h.specs.Get(body.SpecID)
		if !ok {
			return nil, fmt.Errorf("%w: unknown spec_id %q", spec.ErrInvalidSpec, body.SpecID)
		}
		return e.Spec, nil
	}
	return nil, fmt.Errorf("one of spec or spec_id is required")
}

// POST /v1/generate: run a pipeline and return every table as JSON.
func (h *Handler) generate(w http.ResponseWriter, r *http.Request) {
	var body generateRequest
	if !decodeBody(w, r, &body) {
		return
	}
	res := h.run(w, r, body)
	if res == nil {
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// POST /v1/export?format=csv|sql|parquet|json&table=: run a pipeline and
// stream one table in the requested format. table defaults to the fact table.
func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	format, err := table.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var body generateRequest
	if !decodeBody(w, r, &body) {
		return
	}
	res := h.run(w, r, body)
	if res == nil {
		return
	}

	t := &res.Data.Tables[0]
	if name := r.URL.Query().Get("table"); name != "" {
		if t = res.Data.Table(name); t == nil {
			writeError(w, http.StatusNotFound, fmt.Sprintf("table %q not in result", name))
			return
		}
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", t.Name+"."+string(format)))
	w.Header().Set("X-Synthdata-Seed", fmt.Sprint(res.Seed))
	if err := table.Write(w, format, *t); err != nil {
		h.logger.Error("export write failed", "table", t.Name, "format", format, "err", err)
	}
}

// POST /v1/specs/validate: structural check plus advisory lint warnings.
func (h *Handler) validateSpec(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if ct := r.Header.Get("Content-Type"); strings.Contains(ct, "yaml") {
		if data, err = spec.YAMLToJSON(data); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid YAML: %s", err))
			return
		}
	}
	s, err := spec.Parse(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	resp := map[string]interface{}{
		"valid":    true,
		"warnings": spec.Lint(s),
		"domain":   engine.InferDomain(s),
	}
	if err := spec.Validate(s); err != nil {
		resp["valid"] = false
		resp["error"] = err.Error()
		writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// GET /v1/specs: list stored specs.
func (h *Handler) listSpecs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"specs": h.specs.List(),
	})
}

// POST /v1/specs/reload: re-read the spec directory.
func (h *Handler) reloadSpecs(w http.ResponseWriter, r *http.Request) {
	if err := h.specs.Reload(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reloaded":    true,
		"specs_count": len(h.specs.List()),
	})
}

type generateSpecRequest struct {
	specgen.Params
	// SaveAs stores the produced spec under this id.
	SaveAs string `json:"save_as"`
}

// POST /v1/specs/generate: ask the configured LLM for a spec.
func (h *Handler) generateSpec(w http.ResponseWriter, r *http.Request) {
	if h.opts.Producer == nil {
		writeError(w, http.StatusNotImplemented, "no spec producer configured")
		return
	}
	var body generateSpecRequest
	if !decodeBody(w, r, &body) {
		return
	}
	s, raw, err := specgen.Generate(r.Context(), h.opts.Producer, body.Params)
	if err != nil {
		status := http.StatusBadGateway
		if body.Params.Validate() != nil {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}
	if body.SaveAs != "" {
		h.specs.Put(body.SaveAs, s, raw)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":       body.SaveAs,
		"spec":     json.RawMessage(raw),
		"warnings": spec.Lint(s),
	})
}

// POST /v1/persist: run a pipeline and copy every table into Postgres.
func (h *Handler) persist(w http.ResponseWriter, r *http.Request) {
	if h.opts.Sink == nil {
		writeError(w, http.StatusServiceUnavailable, "postgres sink not configured")
		return
	}
	var body generateRequest
	if !decodeBody(w, r, &body) {
		return
	}
	res := h.run(w, r, body)
	if res == nil {
		return
	}
	counts, err := h.opts.Sink.Write(r.Context(), res.Data, store.Options{Schema: body.Schema, Truncate: body.Truncate})
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"run_id": res.RunID,
		"seed":   res.Seed,
		"tables": counts,
	})
}

// GET /healthz: always 200 (liveness probe).
func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /readyz: 503 if the run queue is >80% full.
func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	util := h.eng.QueueUtilization()
	metrics.QueueUtilization.Set(util)
	if util > 0.8 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":            "overloaded",
			"queue_utilization": util,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":            "ready",
		"queue_utilization": util,
		"busy_workers":      h.eng.Busy(),
		"specs":             len(h.specs.List()),
	})
}
