package api

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/synthdata/internal/config"
	"github.com/gyaneshwarpardhi/synthdata/internal/dataset"
	"github.com/gyaneshwarpardhi/synthdata/internal/engine"
	"github.com/gyaneshwarpardhi/synthdata/internal/spec"
	"github.com/gyaneshwarpardhi/synthdata/internal/specgen"
	"github.com/gyaneshwarpardhi/synthdata/internal/store"
)

type stubProducer struct{ answer []byte }

func (s stubProducer) Name() string { return "stub" }
func (s stubProducer) Produce(context.Context, specgen.Params) ([]byte, error) {
	return s.answer, nil
}

type fakeSink struct {
	got  dataset.Generated
	opts store.Options
	err  error
}

func (f *fakeSink) Write(_ context.Context, g dataset.Generated, opts store.Options) ([]store.TableCount, error) {
	f.got, f.opts = g, opts
	out := make([]store.TableCount, 0, len(g.Tables))
	for _, t := range g.Tables {
		out = append(out, store.TableCount{Table: t.Name, Rows: int64(len(t.Rows))})
	}
	return out, f.err
}

type fixture struct {
	handler http.Handler
	specs   *spec.Store
	sink    *fakeSink
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	p := engine.NewPipeline(nil, nil, engine.PipelineOptions{
		MaxRows: 1000,
		Now:     func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) },
	})
	eng := engine.New(ctx, p, config.EngineConf{Workers: 2, QueueDepth: 8, TimeoutMs: 30000})
	t.Cleanup(eng.Shutdown)

	specs, err := spec.NewStore("../../specs")
	require.NoError(t, err)
	return &fixture{handler: New(eng, specs, opts), specs: specs}
}

func (f *fixture) do(t *testing.T, method, target string, body interface{}, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, target, &buf)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealthAndReady(t *testing.T) {
	f := newFixture(t, Options{})

	rec := f.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = f.do(t, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", decode(t, rec)["status"])

	rec = f.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGenerate(t *testing.T) {
	f := newFixture(t, Options{})

	rec := f.do(t, http.MethodPost, "/v1/generate", map[string]interface{}{
		"spec_id": "saas", "row_count": 100, "time_range": []string{"2024"},
		"schema_type": "star", "seed": 7, "quality": true,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res engine.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, uint64(7), res.Seed)
	assert.Equal(t, "saas", res.Domain)
	require.Len(t, res.Data.Tables, 3)
	assert.Equal(t, "saas_events_fact", res.Data.Tables[0].Name)
	assert.LessOrEqual(t, len(res.Data.Tables[0].Rows), 100)
	assert.NotNil(t, res.Quality)
}

func TestGenerate_InlineSpec(t *testing.T) {
	f := newFixture(t, Options{})
	raw, err := os.ReadFile("../../specs/saas.json")
	require.NoError(t, err)

	body := `{"spec": ` + string(raw) + `, "row_count": 20, "seed": 1}`
	rec := f.do(t, http.MethodPost, "/v1/generate", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestGenerate_Errors(t *testing.T) {
	f := newFixture(t, Options{})

	cases := []struct {
		name   string
		body   interface{}
		status int
	}{
		{"bad json", "{", http.StatusBadRequest},
		{"no spec", map[string]interface{}{"row_count": 10}, http.StatusBadRequest},
		{"both", map[string]interface{}{"spec_id": "saas", "spec": map[string]interface{}{}, "row_count": 10}, http.StatusBadRequest},
		{"unknown id", map[string]interface{}{"spec_id": "nope", "row_count": 10}, http.StatusUnprocessableEntity},
		{"invalid spec", map[string]interface{}{"spec": map[string]interface{}{"entities": []interface{}{}}, "row_count": 10}, http.StatusUnprocessableEntity},
		{"zero rows", map[string]interface{}{"spec_id": "saas"}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/v1/generate", tc.body)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
			assert.NotEmpty(t, decode(t, rec)["error"])
		})
	}
}

func TestExport(t *testing.T) {
	f := newFixture(t, Options{})
	body := map[string]interface{}{"spec_id": "healthcare", "row_count": 50, "seed": 3, "schema_type": "star"}

	rec := f.do(t, http.MethodPost, "/v1/export?format=csv", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="claims_fact.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "3", rec.Header().Get("X-Synthdata-Seed"))
	rows, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, "claim_id", rows[0][0])

	rec = f.do(t, http.MethodPost, "/v1/export?format=sql&table=patient_dim", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `CREATE TABLE IF NOT EXISTS "patient_dim"`)

	rec = f.do(t, http.MethodPost, "/v1/export?format=json&table=missing_dim", body)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodPost, "/v1/export?format=xlsx", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestValidateSpec(t *testing.T) {
	f := newFixture(t, Options{})

	raw, err := os.ReadFile("../../specs/healthcare.yaml")
	require.NoError(t, err)
	rec := f.do(t, http.MethodPost, "/v1/specs/validate", string(raw), "Content-Type", "application/yaml")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decode(t, rec)
	assert.Equal(t, true, out["valid"])
	assert.Equal(t, "generic", out["domain"])

	rec = f.do(t, http.MethodPost, "/v1/specs/validate", `{"entities": []}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	out = decode(t, rec)
	assert.Equal(t, false, out["valid"])
	assert.Contains(t, out["error"], "invalid data spec")

	rec = f.do(t, http.MethodPost, "/v1/specs/validate", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSpecsListAndReload(t *testing.T) {
	f := newFixture(t, Options{})

	rec := f.do(t, http.MethodGet, "/v1/specs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode(t, rec)["specs"].([]interface{})
	require.Len(t, list, 2)
	assert.Equal(t, "healthcare", list[0].(map[string]interface{})["id"])

	rec = f.do(t, http.MethodPost, "/v1/specs/reload", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2.0, decode(t, rec)["specs_count"])
}

func TestGenerateSpec(t *testing.T) {
	f := newFixture(t, Options{})
	rec := f.do(t, http.MethodPost, "/v1/specs/generate", map[string]interface{}{"description": "x"})
	assert.Equal(t, http.StatusNotImplemented, rec.Code)

	raw, err := os.ReadFile("../../specs/saas.json")
	require.NoError(t, err)
	f = newFixture(t, Options{Producer: stubProducer{answer: append([]byte("```json\n"), raw...)}})

	rec = f.do(t, http.MethodPost, "/v1/specs/generate", map[string]interface{}{"description": "team chat SaaS", "save_as": "chat"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "chat", decode(t, rec)["id"])
	_, ok := f.specs.Get("chat")
	assert.True(t, ok)

	rec = f.do(t, http.MethodPost, "/v1/specs/generate", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPersist(t *testing.T) {
	f := newFixture(t, Options{})
	rec := f.do(t, http.MethodPost, "/v1/persist", map[string]interface{}{"spec_id": "saas", "row_count": 10})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	sink := &fakeSink{}
	f = newFixture(t, Options{Sink: sink})
	rec = f.do(t, http.MethodPost, "/v1/persist", map[string]interface{}{
		"spec_id": "saas", "row_count": 30, "schema_type": "star", "schema": "synth", "truncate": true,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, sink.got.Tables, 3)
	assert.Equal(t, store.Options{Schema: "synth", Truncate: true}, sink.opts)
	assert.Len(t, decode(t, rec)["tables"], 3)

	sink.err = errors.New("connection refused")
	rec = f.do(t, http.MethodPost, "/v1/persist", map[string]interface{}{"spec_id": "saas", "row_count": 10})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t, Options{})
	rec := f.do(t, http.MethodOptions, "/v1/generate", nil,
		"Origin", "http://localhost:3000",
		"Access-Control-Request-Method", http.MethodPost,
	)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusTooManyRequests, statusFor(engine.ErrQueueFull))
	assert.Equal(t, http.StatusGatewayTimeout, statusFor(engine.ErrTimeout))
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(spec.ErrInvalidSpec))
	assert.Equal(t, http.StatusBadRequest, statusFor(errors.New("row_count must be positive")))
}
