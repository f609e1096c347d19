package extract

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Alias probing over the historical payload dialects is plain static data:
// ordered candidate-key lists evaluated against a string-keyed bag with a
// "first present key wins" rule.

func firstString(bag map[string]any, keys []string) (string, bool) {
	for _, key := range keys {
		v, ok := bag[key]
		if !ok {
			continue
		}
		if s, ok := stringField(v); ok {
			return s, true
		}
	}
	return "", false
}

func firstText(bag map[string]any, keys []string) (string, bool) {
	for _, key := range keys {
		v, ok := bag[key]
		if !ok {
			continue
		}
		if s, ok := textField(v); ok {
			return s, true
		}
	}
	return "", false
}

func firstSeconds(bag map[string]any, keys []string) (int64, bool) {
	for _, key := range keys {
		v, ok := bag[key]
		if !ok {
			continue
		}
		if ts, ok := secondsField(v); ok {
			return ts, true
		}
	}
	return 0, false
}

// stringField accepts only non-empty text.
func stringField(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	return s, true
}

// textField coerces text and numbers to a canonical string. Numbers go
// through decimal so JSON floats like 1e6 come out as "1000000" rather than
// the exponent form strconv would produce.
func textField(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return stringField(t)
	case float64:
		return decimal.NewFromFloat(t).String(), true
	case json.Number:
		if d, err := decimal.NewFromString(t.String()); err == nil {
			return d.String(), true
		}
		return "", false
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	default:
		return "", false
	}
}

// secondsField accepts numeric values or numeric strings, truncated to
// integer seconds. Zero counts as absent.
func secondsField(v any) (int64, bool) {
	var ts int64
	switch t := v.(type) {
	case float64:
		ts = int64(t)
	case int:
		ts = int64(t)
	case int64:
		ts = t
	case uint64:
		ts = int64(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		ts = int64(f)
	case string:
		trimmed := strings.TrimSpace(t)
		if trimmed == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return 0, false
		}
		ts = int64(f)
	default:
		return 0, false
	}
	if ts == 0 {
		return 0, false
	}
	return ts, true
}

// mapping unwraps a value into a string-keyed mapping, reparsing
// JSON-object-encoded strings, a dialect some historical payloads use.
func mapping(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case string:
		parsed, ok := parseJSONContainer(t)
		if !ok {
			return nil, false
		}
		m, ok := parsed.(map[string]any)
		return m, ok
	default:
		return nil, false
	}
}

func parseJSONContainer(s string) (any, bool) {
	trimmed := strings.TrimSpace(s)
	if len(trimmed) == 0 || (trimmed[0] != '{' && trimmed[0] != '[') {
		return nil, false
	}
	var parsed any
	if err := json.Unmarshal([]byte(trimmed), &parsed); err != nil {
		return nil, false
	}
	return parsed, true
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
