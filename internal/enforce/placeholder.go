package enforce

import (
	"regexp"
	"sort"
	"strings"

	"github.com/gyaneshwarpardhi/synthdata/internal/dataset"
	"github.com/gyaneshwarpardhi/synthdata/internal/fake"
)

// genericDefault replaces a placeholder in a field with no value list.
const genericDefault = "Standard"

var (
	placeholderPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^option\s*[a-z0-9]$`),
		regexp.MustCompile(`(?i)^(value|item|type|category|choice|sample|test|example|placeholder)[\s_-]*\d+$`),
		regexp.MustCompile(`(?i)^(value|item|type|category|choice|sample|test|example|placeholder)[\s_-]+[a-z]$`),
		regexp.MustCompile(`(?i)^(placeholder|lorem ipsum.*|tbd|todo|xxx+|foo|bar|string|sample|example|n/?a|\?+)$`),
	}
	optionScrub = regexp.MustCompile(`(?i)\boption\s*[a-z]\b`)
	// stray tokens mix letters and digits, like "x7f2" or "A1".
	strayToken = regexp.MustCompile(`^[A-Za-z0-9_-]{1,16}$`)
	hasLetter  = regexp.MustCompile(`[A-Za-z]`)
	hasDigit   = regexp.MustCompile(`\d`)
)

// fieldValues are realistic replacements for enum-like fields, matched by
// exact name or by a "_name" suffix.
var fieldValues = []struct {
	field  string
	values []string
}{
	{"user_role", roles},
	{"role", roles},
	{"subscription_plan", plans},
	{"plan", plans},
	{"billing_cycle", billingCycles},
	{"claim_status", []string{"Approved", "Denied", "Pending"}},
	{"status", []string{"active", "pending", "completed", "inactive"}},
	{"event_type", []string{"signup", "login", "feature_usage", "payment", "support_ticket"}},
	{"device_type", deviceTypes},
	{"payment_method", []string{"credit_card", "debit_card", "paypal", "bank_transfer"}},
	{"industry", []string{"Technology", "Healthcare", "Finance", "Retail", "Manufacturing", "Education"}},
	{"department", []string{"Engineering", "Sales", "Marketing", "Support", "Finance", "Operations"}},
	{"category", []string{"Electronics", "Clothing", "Home", "Sports", "Books", "Beauty"}},
	{"channel", []string{"web", "mobile", "email", "partner"}},
	{"priority", []string{"low", "medium", "high", "urgent"}},
	{"country", saasCountries},
	{"insurance_provider", []string{"Aetna", "Cigna", "UnitedHealthcare", "Humana", "Kaiser", "Blue Cross"}},
	{"specialty", []string{"Cardiology", "Orthopedics", "Pediatrics", "Oncology", "General Practice", "Neurology"}},
	{"denied_reason", []string{"Not covered", "Missing documentation", "Out of network", "Duplicate claim"}},
}

func valuesFor(key string) []string {
	k := strings.ToLower(key)
	for _, fv := range fieldValues {
		if k == fv.field || strings.HasSuffix(k, "_"+fv.field) {
			return fv.values
		}
	}
	return nil
}

// IsPlaceholder reports whether s looks like template or LLM filler text.
func IsPlaceholder(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	for _, p := range placeholderPatterns {
		if p.MatchString(s) {
			return true
		}
	}
	return optionScrub.MatchString(s)
}

func isStrayToken(s string) bool {
	return strayToken.MatchString(s) && hasLetter.MatchString(s) && hasDigit.MatchString(s)
}

// sortedKeys gives passes a stable iteration order so a seeded run stays reproducible.
func sortedKeys(rec dataset.Record) []string {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

// Placeholders replaces filler values with realistic ones. Enum-like fields
// draw from their value list; anything else becomes "Standard". Letter/digit
// garbage in enum fields is replaced with a list member, and garbage in
// date-named fields is resampled within the trailing year.
var Placeholders Enforcer = NewFunc("placeholders", func(rec dataset.Record, src *fake.Source) {
	for _, k := range sortedKeys(rec) {
		s, ok := rec[k].(string)
		if !ok {
			continue
		}
		values := valuesFor(k)
		switch {
		case IsPlaceholder(s):
			if len(values) > 0 {
				rec[k] = src.Pick(values)
			} else {
				rec[k] = genericDefault
			}
		case dataset.IsDateColumn(k):
			if _, _, ok := dataset.ParseTime(s); !ok && isStrayToken(s) {
				rec[k] = dataset.FormatTimestamp(src.Trailing(365))
			}
		case len(values) > 0 && isStrayToken(s) && !contains(values, s):
			rec[k] = src.Pick(values)
		}
	}
})
