// Package fake owns all randomness used by a generation run.
//
// A Source is seeded once per run and threaded explicitly through the entity
// generator, simulator, and enforcers, so two runs with the same seed and
// reference time produce identical output. A Source is not safe for
// concurrent use; each run owns its own.
package fake

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
)

// Source is the per-run pseudo-random source.
type Source struct {
	seed  uint64
	now   time.Time
	rng   *rand.Rand
	faker *gofakeit.Faker
}

// New creates a Source. now anchors every "trailing N days" draw.
func New(seed uint64, now time.Time) *Source {
	return &Source{
		seed:  seed,
		now:   now.UTC(),
		rng:   rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		faker: gofakeit.New(seed),
	}
}

// NewSeed returns a time-derived seed for callers that did not pin one.
func NewSeed() uint64 {
	return uint64(time.Now().UnixNano())
}

// Seed returns the seed the source was built from.
func (s *Source) Seed() uint64 { return s.seed }

// Now returns the fixed reference instant of the run.
func (s *Source) Now() time.Time { return s.now }

// Faker returns the gofakeit generator sharing this source's PRNG.
func (s *Source) Faker() *gofakeit.Faker { return s.faker }

// IntN returns a value in [0, n). n <= 0 yields 0.
func (s *Source) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	return s.rng.IntN(n)
}

// IntRange returns a value in [min, max] inclusive.
func (s *Source) IntRange(min, max int) int {
	if max < min {
		min, max = max, min
	}
	return min + s.rng.IntN(max-min+1)
}

// Float64 returns a value in [0, 1).
func (s *Source) Float64() float64 {
	return s.rng.Float64()
}

// FloatRange returns a value in [min, max).
func (s *Source) FloatRange(min, max float64) float64 {
	return min + s.rng.Float64()*(max-min)
}

// Money returns a value in [min, max) rounded to cents.
func (s *Source) Money(min, max float64) float64 {
	return math.Round(s.FloatRange(min, max)*100) / 100
}

// Chance is a Bernoulli trial with probability p.
func (s *Source) Chance(p float64) bool {
	if p <= 0 {
		return false
	}
	return s.rng.Float64() < p
}

// Pick returns a uniformly chosen element ("" for an empty slice).
func (s *Source) Pick(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[s.rng.IntN(len(values))]
}

// Weighted draws one of values according to weights. Weights need not sum to 1;
// a non-positive total falls back to a uniform draw.
func (s *Source) Weighted(values []interface{}, weights []float64) interface{} {
	if len(values) == 0 {
		return nil
	}
	total := 0.0
	for i := range values {
		if i < len(weights) && weights[i] > 0 {
			total += weights[i]
		}
	}
	if total <= 0 {
		return values[s.rng.IntN(len(values))]
	}
	r := s.rng.Float64() * total
	for i, v := range values {
		if i >= len(weights) || weights[i] <= 0 {
			continue
		}
		r -= weights[i]
		if r < 0 {
			return v
		}
	}
	return values[len(values)-1]
}

// Read fills p from the run's generator so uuid and similar consumers stay reproducible.
func (s *Source) Read(p []byte) (int, error) {
	for i := 0; i < len(p); i += 8 {
		v := s.rng.Uint64()
		for j := 0; j < 8 && i+j < len(p); j++ {
			p[i+j] = byte(v >> (8 * j))
		}
	}
	return len(p), nil
}

// UUID returns a random (version 4) UUID drawn from this source.
func (s *Source) UUID() string {
	id, err := uuid.NewRandomFromReader(s)
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// ShortID returns the first eight hex characters of a fresh UUID.
func (s *Source) ShortID() string {
	return s.UUID()[:8]
}

// Within returns a random instant in [start, end).
func (s *Source) Within(start, end time.Time) time.Time {
	span := end.Sub(start)
	if span <= 0 {
		return start
	}
	return start.Add(time.Duration(s.rng.Int64N(int64(span))))
}

// Trailing returns a random instant in the `days` days before Now.
func (s *Source) Trailing(days int) time.Time {
	return s.Within(s.now.AddDate(0, 0, -days), s.now)
}
