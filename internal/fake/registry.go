package fake

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/gyaneshwarpardhi/synthdata/internal/dataset"
)

// ErrUnknownMethod is returned by Invoke when a namespace or method is not registered.
var ErrUnknownMethod = errors.New("unknown faker method")

// generatorFunc produces one value from the run source.
type generatorFunc func(s *Source) interface{}

// namespaces maps lower-cased "namespace" → "method" → generator. Method names
// follow the dotted camelCase paths spec authors write (person.firstName).
var namespaces = map[string]map[string]generatorFunc{
	"person": {
		"firstname": func(s *Source) interface{} { return s.faker.FirstName() },
		"lastname":  func(s *Source) interface{} { return s.faker.LastName() },
		"fullname":  func(s *Source) interface{} { return s.faker.Name() },
		"name":      func(s *Source) interface{} { return s.faker.Name() },
		"gender":    func(s *Source) interface{} { return s.faker.Gender() },
		"sex":       func(s *Source) interface{} { return s.faker.Gender() },
		"jobtitle":  func(s *Source) interface{} { return s.faker.JobTitle() },
	},
	"internet": {
		"email":      func(s *Source) interface{} { return s.faker.Email() },
		"username":   func(s *Source) interface{} { return s.faker.Username() },
		"url":        func(s *Source) interface{} { return s.faker.URL() },
		"domainname": func(s *Source) interface{} { return s.faker.DomainName() },
		"ip":         func(s *Source) interface{} { return s.faker.IPv4Address() },
		"ipv4":       func(s *Source) interface{} { return s.faker.IPv4Address() },
		"useragent":  func(s *Source) interface{} { return s.faker.UserAgent() },
	},
	"commerce": {
		"productname": func(s *Source) interface{} { return s.faker.ProductName() },
		"product":     func(s *Source) interface{} { return s.faker.ProductName() },
		"department":  func(s *Source) interface{} { return s.faker.ProductCategory() },
		"price":       func(s *Source) interface{} { return s.Money(5, 1000) },
	},
	"company": {
		"name":        func(s *Source) interface{} { return s.faker.Company() },
		"companyname": func(s *Source) interface{} { return s.faker.Company() },
		"catchphrase": func(s *Source) interface{} { return s.faker.BS() },
		"buzzword":    func(s *Source) interface{} { return s.faker.BuzzWord() },
	},
	"date": {
		"past":    func(s *Source) interface{} { return dataset.FormatTimestamp(s.Trailing(365)) },
		"recent":  func(s *Source) interface{} { return dataset.FormatTimestamp(s.Trailing(7)) },
		"anytime": func(s *Source) interface{} { return dataset.FormatTimestamp(s.Trailing(3650)) },
		"future":  func(s *Source) interface{} { return dataset.FormatTimestamp(s.Within(s.now, s.now.AddDate(1, 0, 0))) },
		"birthdate": func(s *Source) interface{} {
			return s.Within(s.now.AddDate(-80, 0, 0), s.now.AddDate(-18, 0, 0)).Format(dataset.DateLayout)
		},
	},
	"number": {
		"int":   func(s *Source) interface{} { return s.IntRange(0, 10000) },
		"float": func(s *Source) interface{} { return s.Money(0, 1000) },
	},
	"string": {
		"uuid":         func(s *Source) interface{} { return s.UUID() },
		"alphanumeric": func(s *Source) interface{} { return strings.ReplaceAll(s.UUID(), "-", "")[:10] },
		"numeric":      func(s *Source) interface{} { return fmt.Sprintf("%06d", s.IntN(1000000)) },
	},
	"location": {
		"city":          func(s *Source) interface{} { return s.faker.City() },
		"country":       func(s *Source) interface{} { return s.faker.Country() },
		"countrycode":   func(s *Source) interface{} { return s.faker.CountryAbr() },
		"state":         func(s *Source) interface{} { return s.faker.State() },
		"streetaddress": func(s *Source) interface{} { return s.faker.Street() },
		"street":        func(s *Source) interface{} { return s.faker.Street() },
		"zipcode":       func(s *Source) interface{} { return s.faker.Zip() },
		"latitude":      func(s *Source) interface{} { return round(s.faker.Latitude(), 6) },
		"longitude":     func(s *Source) interface{} { return round(s.faker.Longitude(), 6) },
	},
	"finance": {
		"amount":          func(s *Source) interface{} { return s.Money(1, 1000) },
		"currencycode":    func(s *Source) interface{} { return s.faker.CurrencyShort() },
		"accountnumber":   func(s *Source) interface{} { return s.faker.AchAccount() },
		"transactiontype": func(s *Source) interface{} { return s.Pick([]string{"deposit", "withdrawal", "payment", "invoice"}) },
	},
	"lorem": {
		"word":  func(s *Source) interface{} { return s.faker.Word() },
		"words": func(s *Source) interface{} { return words(s, 3) },
		"sentence": func(s *Source) interface{} {
			w := words(s, 6+s.IntN(6))
			return strings.ToUpper(w[:1]) + w[1:] + "."
		},
	},
	"datatype": {
		"boolean": func(s *Source) interface{} { return s.faker.Bool() },
	},
	"phone": {
		"number": func(s *Source) interface{} { return s.faker.Phone() },
	},
}

// aliases map legacy namespace names onto current ones.
var aliases = map[string]string{
	"name":    "person",
	"address": "location",
	"random":  "string",
}

// Invoke resolves a dotted "namespace.method" path and calls it.
func (s *Source) Invoke(path string) (interface{}, error) {
	ns, method, ok := strings.Cut(strings.TrimSpace(path), ".")
	if !ok || ns == "" || method == "" {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, path)
	}
	ns = strings.ToLower(ns)
	if a, ok := aliases[ns]; ok {
		ns = a
	}
	methods, ok := namespaces[ns]
	if !ok {
		return nil, fmt.Errorf("%w: namespace %q", ErrUnknownMethod, ns)
	}
	fn, ok := methods[strings.ToLower(method)]
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownMethod, ns, method)
	}
	return fn(s), nil
}

// Methods lists every registered "namespace.method" path, sorted.
func Methods() []string {
	var out []string
	for ns, methods := range namespaces {
		for m := range methods {
			out = append(out, ns+"."+m)
		}
	}
	sort.Strings(out)
	return out
}

func words(s *Source, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = s.faker.Word()
	}
	return strings.ToLower(strings.Join(parts, " "))
}

func round(f float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(f*p) / p
}
