package ai

import (
	"errors"
	"strings"

	"github.com/v0xg/autofill/internal/fields"
)

// ErrNoJSONObject is returned when a response holds no top-level {...}
// that parses as a JSON object.
var ErrNoJSONObject = errors.New("no JSON object found in response")

// ParseResponse extracts the first JSON object from a response that may
// contain surrounding text or code fences.
func ParseResponse(response string) (*fields.DataMap, error) {
	// First try direct parsing
	if data, err := fields.ParseDataMap(strings.TrimSpace(response)); err == nil {
		return data, nil
	}

	rest := response
	for {
		obj, end, ok := nextObject(rest)
		if !ok {
			return nil, ErrNoJSONObject
		}
		if data, err := fields.ParseDataMap(obj); err == nil {
			return data, nil
		}
		rest = rest[end:]
	}
}

// ExtractObject returns the first balanced {...} in s.
func ExtractObject(s string) (string, error) {
	obj, _, ok := nextObject(s)
	if !ok {
		return "", ErrNoJSONObject
	}
	return obj, nil
}

// nextObject finds the first balanced {...} in s and the offset just past
// it. Braces inside JSON strings are ignored.
func nextObject(s string) (string, int, bool) {
	start := strings.IndexByte(s, '{')
	if start == -1 {
		return "", 0, false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], i + 1, true
			}
		}
	}
	return "", 0, false
}
