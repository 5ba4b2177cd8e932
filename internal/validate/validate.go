package validate

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	reEmail  = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reID     = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	reStatus = regexp.MustCompile(`^(IN_STOCK|ON_ORDER)$`)
)

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 254 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// Password enforces the registration minimum length.
func Password(s string) bool {
	return len(s) >= 6
}

// ID validates a resource identifier (part/category/user ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// Status validates the part status enum.
func Status(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reStatus.MatchString(s)
}

// Name validates a displayable name with a reasonable max length.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 200 {
		return "", false
	}
	return s, true
}

// Q normalizes a catalog text filter: trimmed, capped at 50 chars.
func Q(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 50 {
		s = s[:50]
	}
	return s
}

// Price parses a decimal price and rejects negatives.
func Price(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || d.IsNegative() {
		return decimal.Decimal{}, false
	}
	return d, true
}

// Stock rejects negative stock counts.
func Stock(n int) bool { return n >= 0 }
