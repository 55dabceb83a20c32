// Package specgen asks a language model for a DataSpec that matches a plain
// description of a business.
package specgen

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gyaneshwarpardhi/synthdata/internal/spec"
)

// ErrEmptyResponse is returned when the model answers with no usable text.
var ErrEmptyResponse = errors.New("empty model response")

// Params describe the dataset a producer should design a spec for.
type Params struct {
	Description string   `json:"description"`
	Domain      string   `json:"business_domain,omitempty"`
	RowCount    int      `json:"row_count,omitempty"`
	TimeRange   []string `json:"time_range,omitempty"`
	// Entities optionally names the entities the spec must declare.
	Entities []string `json:"entities,omitempty"`
}

// Validate reports missing fields.
func (p Params) Validate() error {
	if strings.TrimSpace(p.Description) == "" {
		return errors.New("description is required")
	}
	return nil
}

// Producer returns the raw JSON text of a DataSpec for p.
type Producer interface {
	Name() string
	Produce(ctx context.Context, p Params) ([]byte, error)
}

// Generate runs prod, cleans its answer, and returns the parsed and
// validated spec together with the JSON it was decoded from.
func Generate(ctx context.Context, prod Producer, p Params) (*spec.DataSpec, []byte, error) {
	if err := p.Validate(); err != nil {
		return nil, nil, err
	}
	raw, err := prod.Produce(ctx, p)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", prod.Name(), err)
	}
	return Decode(raw)
}

// Decode extracts the JSON object from a model answer and parses it.
func Decode(answer []byte) (*spec.DataSpec, []byte, error) {
	raw, err := ExtractJSON(string(answer))
	if err != nil {
		return nil, nil, err
	}
	s, err := spec.Parse(raw)
	if err != nil {
		return nil, nil, err
	}
	if err := spec.Validate(s); err != nil {
		return nil, nil, err
	}
	return s, raw, nil
}

// ExtractJSON strips code fences and any prose around the outermost JSON
// object.
func ExtractJSON(text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if i := strings.Index(text, "```"); i >= 0 {
		body := text[i+3:]
		if nl := strings.IndexByte(body, '\n'); nl >= 0 {
			body = body[nl+1:]
		}
		if j := strings.Index(body, "```"); j >= 0 {
			body = body[:j]
		}
		text = strings.TrimSpace(body)
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end < start {
		return nil, ErrEmptyResponse
	}
	return []byte(text[start : end+1]), nil
}
