package validators

import (
	"strings"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsDate accepts only zero-padded YYYY-MM-DD so stored dates sort
// chronologically.
func IsDate(s string) bool {
	t, err := time.Parse(DateLayout, s)
	return err == nil && t.Format(DateLayout) == s
}

// IsClock accepts only zero-padded 24h HH:MM.
func IsClock(s string) bool {
	t, err := time.Parse(ClockLayout, s)
	return err == nil && t.Format(ClockLayout) == s
}

// ParseBirthday returns nil for an empty value.
func ParseBirthday(s string) (*time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, true
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil, false
	}
	return &t, true
}
