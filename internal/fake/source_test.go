package fake

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/synthdata/internal/dataset"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestSource_SameSeedSameSequence(t *testing.T) {
	a := New(42, testNow)
	b := New(42, testNow)
	for i := 0; i < 50; i++ {
		require.Equal(t, a.IntN(1000), b.IntN(1000))
	}
	assert.Equal(t, a.UUID(), b.UUID())
	assert.Equal(t, a.faker.FirstName(), b.faker.FirstName())
}

func TestSource_IntRangeInclusive(t *testing.T) {
	s := New(1, testNow)
	seen := map[int]bool{}
	for i := 0; i < 500; i++ {
		v := s.IntRange(3, 5)
		require.GreaterOrEqual(t, v, 3)
		require.LessOrEqual(t, v, 5)
		seen[v] = true
	}
	assert.Len(t, seen, 3)
}

func TestSource_Weighted(t *testing.T) {
	s := New(7, testNow)
	values := []interface{}{"a", "b"}

	for i := 0; i < 100; i++ {
		assert.Equal(t, "b", s.Weighted(values, []float64{0, 1}))
	}
	assert.Nil(t, s.Weighted(nil, nil))

	// Non-positive weights fall back to uniform.
	got := s.Weighted(values, []float64{0, 0})
	assert.Contains(t, []interface{}{"a", "b"}, got)
}

func TestSource_Trailing(t *testing.T) {
	s := New(9, testNow)
	for i := 0; i < 100; i++ {
		ts := s.Trailing(365)
		require.False(t, ts.After(testNow))
		require.True(t, ts.After(testNow.AddDate(0, 0, -366)))
	}
}

func TestInvoke(t *testing.T) {
	s := New(3, testNow)

	v, err := s.Invoke("person.firstName")
	require.NoError(t, err)
	assert.NotEmpty(t, v)

	v, err = s.Invoke("Internet.Email")
	require.NoError(t, err)
	assert.Contains(t, v, "@")

	v, err = s.Invoke("address.city")
	require.NoError(t, err, "legacy namespace alias")
	assert.NotEmpty(t, v)

	v, err = s.Invoke("location.countryCode")
	require.NoError(t, err)
	assert.Len(t, v, 2)

	for _, bad := range []string{"person", "nope.method", "person.nope", ""} {
		_, err := s.Invoke(bad)
		assert.True(t, errors.Is(err, ErrUnknownMethod), "path %q", bad)
	}
}

func TestMethods_AllInvokable(t *testing.T) {
	s := New(11, testNow)
	for _, path := range Methods() {
		v, err := s.Invoke(path)
		require.NoError(t, err, path)
		assert.NotNil(t, v, path)
	}
}

func TestFallback(t *testing.T) {
	s := New(5, testNow)

	ts, ok := s.Fallback("signup_date").(string)
	require.True(t, ok)
	_, _, parsed := dataset.ParseTime(ts)
	assert.True(t, parsed)

	assert.Contains(t, s.Fallback("contact_email"), "@")
	assert.True(t, strings.HasPrefix(s.Fallback("user_id").(string), "user_"))

	amt, ok := s.Fallback("payment_amount").(float64)
	require.True(t, ok)
	assert.GreaterOrEqual(t, amt, 10.0)

	_, ok = s.Fallback("is_active").(bool)
	assert.True(t, ok)

	age := s.Fallback("user_age").(int)
	assert.GreaterOrEqual(t, age, 18)
	assert.NotEmpty(t, s.Fallback("whatever"))
}
