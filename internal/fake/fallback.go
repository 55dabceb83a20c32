package fake

import (
	"strings"

	"github.com/gyaneshwarpardhi/synthdata/internal/dataset"
)

var moneyWords = []string{"amount", "price", "cost", "revenue", "payment", "value", "fee", "total", "salary", "balance"}

var statusValues = []string{"active", "pending", "completed", "inactive"}

// Fallback returns a plausible value for a column when its configured source
// could not produce one. The column name decides the kind of value.
func (s *Source) Fallback(column string) interface{} {
	n := strings.ToLower(strings.TrimSpace(column))
	switch {
	case dataset.IsDateColumn(n):
		return dataset.FormatTimestamp(s.Trailing(365))
	case strings.Contains(n, "email"):
		return s.faker.Email()
	case n == "id":
		return s.UUID()
	case strings.HasSuffix(n, "_id"):
		return strings.TrimSuffix(n, "_id") + "_" + s.ShortID()
	case containsAny(n, moneyWords):
		return s.Money(10, 1000)
	case strings.HasPrefix(n, "is_") || strings.HasPrefix(n, "has_"):
		return s.faker.Bool()
	case strings.Contains(n, "name"):
		switch {
		case strings.Contains(n, "company"):
			return s.faker.Company()
		case strings.Contains(n, "product"):
			return s.faker.ProductName()
		}
		return s.faker.Name()
	case strings.Contains(n, "country"):
		return s.faker.Country()
	case strings.Contains(n, "city"):
		return s.faker.City()
	case strings.Contains(n, "phone"):
		return s.faker.Phone()
	case strings.Contains(n, "url"):
		return s.faker.URL()
	case strings.Contains(n, "status"):
		return s.Pick(statusValues)
	case n == "age" || strings.HasSuffix(n, "_age"):
		return s.IntRange(18, 80)
	case containsAny(n, []string{"count", "quantity", "qty", "num_"}):
		return s.IntRange(1, 100)
	}
	return s.faker.Word()
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
