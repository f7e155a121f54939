package channel

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"unicode"
)

// Members is a subscriber count, normalized once when the record is built.
type Members struct {
	raw   string
	value float64
}

// MembersOf wraps an already numeric member count.
func MembersOf(n float64) Members {
	if n < 0 {
		n = 0
	}
	return Members{raw: strconv.FormatFloat(n, 'f', -1, 64), value: n}
}

// ParseMembers normalizes a member count like "12.3K", "1.2M" or "45 210".
// A trailing K multiplies by a thousand, a trailing M by a million, every character that is
// not a digit or a decimal point is dropped. Anything unparsable is 0.
func ParseMembers(raw string) Members {
	m := Members{raw: raw}

	text := strings.TrimSpace(raw)
	multiplier := 1.0
	switch {
	case strings.HasSuffix(text, "K"), strings.HasSuffix(text, "k"):
		multiplier = 1_000
	case strings.HasSuffix(text, "M"), strings.HasSuffix(text, "m"):
		multiplier = 1_000_000
	}

	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) || r == '.' {
			return r
		}
		return -1
	}, text)
	if digits == "" {
		return m
	}

	n, err := strconv.ParseFloat(digits, 64)
	if err != nil || n < 0 {
		return m
	}
	m.value = n * multiplier
	return m
}

// Value is the normalized count used for scoring.
func (m Members) Value() float64 {
	return m.value
}

// Raw is the member count as the source presented it.
func (m Members) Raw() string {
	return m.raw
}

func (m Members) String() string {
	if m.raw == "" {
		return strconv.FormatFloat(m.value, 'f', -1, 64)
	}
	return m.raw
}

// UnmarshalJSON accepts either a JSON number or a string with a magnitude suffix.
func (m *Members) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = Members{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*m = ParseMembers(text)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*m = MembersOf(n)
	return nil
}
