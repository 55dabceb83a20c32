// Package enforce holds the rule passes that repair generated records after
// simulation. Each Enforcer takes a record and returns a corrected copy; the
// input record is never modified. Passes are total and idempotent: running a
// pass on its own output changes nothing.
package enforce

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/gyaneshwarpardhi/synthdata/internal/dataset"
	"github.com/gyaneshwarpardhi/synthdata/internal/fake"
)

// Enforcer is one record-repair pass.
type Enforcer interface {
	// Name is the key the pass is registered under.
	Name() string
	// Enforce returns a corrected copy of rec.
	Enforce(rec dataset.Record, src *fake.Source) dataset.Record
}

// Func adapts a plain function to the Enforcer interface.
type Func struct {
	name string
	fn   func(rec dataset.Record, src *fake.Source)
}

// NewFunc wraps fn, which may modify the copy it is handed.
func NewFunc(name string, fn func(rec dataset.Record, src *fake.Source)) Func {
	return Func{name: name, fn: fn}
}

func (f Func) Name() string { return f.name }

func (f Func) Enforce(rec dataset.Record, src *fake.Source) dataset.Record {
	out := rec.Clone()
	f.fn(out, src)
	return out
}

// Registry maps pass names to enforcers.
// It is safe for concurrent reads; Register should only be called at startup.
type Registry struct {
	mu        sync.RWMutex
	enforcers map[string]Enforcer
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{enforcers: make(map[string]Enforcer)}
}

// DefaultRegistry returns a Registry holding every built-in pass.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(Placeholders)
	r.Register(Numeric)
	r.Register(Defaults)
	r.Register(SaaS)
	r.Register(SaaSPricing)
	r.Register(Healthcare)
	r.Register(PreAggregates)
	return r
}

// Register adds an enforcer. Panics on duplicate names to surface misconfiguration early.
func (r *Registry) Register(e Enforcer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.enforcers[e.Name()]; exists {
		panic(fmt.Sprintf("enforce registry: duplicate name %q", e.Name()))
	}
	r.enforcers[e.Name()] = e
}

// Get returns the enforcer registered under name.
func (r *Registry) Get(name string) (Enforcer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.enforcers[name]
	if !ok {
		return nil, fmt.Errorf("no enforcer registered under %q", name)
	}
	return e, nil
}

// Names returns all registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.enforcers))
	for k := range r.enforcers {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Chain resolves names into an ordered Chain.
func (r *Registry) Chain(names ...string) (Chain, error) {
	c := make(Chain, 0, len(names))
	for _, n := range names {
		e, err := r.Get(n)
		if err != nil {
			return nil, err
		}
		c = append(c, e)
	}
	return c, nil
}

// ForDomain returns the default chain for a business domain. Healthcare rules
// always run after the generic passes; saas adds its two passes before them.
func (r *Registry) ForDomain(domain string) (Chain, error) {
	return r.Chain(DomainOrder(domain)...)
}

// DomainOrder lists the pass names applied for domain.
func DomainOrder(domain string) []string {
	names := []string{"placeholders", "numeric", "defaults"}
	if strings.EqualFold(strings.TrimSpace(domain), "saas") {
		names = append(names, "saas", "saas_pricing")
	}
	return append(names, "healthcare", "preagg")
}

// Chain applies enforcers in order.
type Chain []Enforcer

// Apply runs every pass over rec and returns the result.
func (c Chain) Apply(rec dataset.Record, src *fake.Source) dataset.Record {
	for _, e := range c {
		rec = e.Enforce(rec, src)
	}
	return rec
}

// ApplyAll runs the chain over every record of stream and returns a new stream.
func (c Chain) ApplyAll(stream dataset.Stream, src *fake.Source) dataset.Stream {
	out := make(dataset.Stream, len(stream))
	for i, rec := range stream {
		out[i] = c.Apply(rec, src)
	}
	return out
}

// Names returns the pass names in application order.
func (c Chain) Names() []string {
	out := make([]string, len(c))
	for i, e := range c {
		out[i] = e.Name()
	}
	return out
}
