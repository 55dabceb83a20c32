package specgen

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gyaneshwarpardhi/synthdata/internal/metrics"
)

// Cache wraps a Producer and stores every spec that decodes and validates
// under <dir>/<sha256>.json, keyed by producer name and params.
type Cache struct {
	inner  Producer
	dir    string
	logger *slog.Logger
}

// NewCache creates dir if needed. A nil logger uses slog.Default.
func NewCache(inner Producer, dir string, logger *slog.Logger) (*Cache, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("spec cache dir %s: %w", dir, err)
	}
	return &Cache{inner: inner, dir: dir, logger: logger}, nil
}

func (c *Cache) Name() string { return c.inner.Name() }

// Key returns the cache key for p.
func (c *Cache) Key(p Params) string {
	b, _ := json.Marshal(struct {
		Producer string `json:"producer"`
		Params   Params `json:"params"`
	}{c.inner.Name(), p})
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Produce serves a cached spec when present. Otherwise it asks the wrapped
// producer and caches the answer only when it is a valid spec.
func (c *Cache) Produce(ctx context.Context, p Params) ([]byte, error) {
	path := filepath.Join(c.dir, c.Key(p)+".json")
	if data, err := os.ReadFile(path); err == nil {
		metrics.SpecRequests.WithLabelValues(c.Name(), "hit").Inc()
		return data, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		c.logger.Warn("spec cache read failed", "path", path, "err", err)
	}

	answer, err := c.inner.Produce(ctx, p)
	if err != nil {
		metrics.SpecRequests.WithLabelValues(c.Name(), "error").Inc()
		return nil, err
	}
	metrics.SpecRequests.WithLabelValues(c.Name(), "miss").Inc()

	_, raw, err := Decode(answer)
	if err != nil {
		return answer, nil
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		c.logger.Warn("spec cache write failed", "path", path, "err", err)
	}
	return raw, nil
}
