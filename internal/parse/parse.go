// Package parse turns untrusted model output into the fixed AgentResult
// field set. Models return whole-document JSON, fenced JSON, JSON buried
// in prose, or plain text; parsing is an ordered chain of strategies where
// the first success wins and the final stage always succeeds.
package parse

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	reFence = regexp.MustCompile("```(?:json)?\\s*\n?([\\s\\S]*?)\n?\\s*```")
	reBrace = regexp.MustCompile(`\{[\s\S]*\}`)
)

// Response parses model output into a generic map. It never fails: when no
// JSON can be recovered the raw text is wrapped as a best-effort result
// with confidence 0.5.
func Response(text string) map[string]any {
	// Whole text as JSON.
	if m := tryJSON(text); m != nil {
		return m
	}

	// First fenced code block.
	if match := reFence.FindStringSubmatch(text); match != nil {
		if m := tryJSON(match[1]); m != nil {
			return m
		}
	}

	// First top-level {...} span.
	if span := reBrace.FindString(text); span != "" {
		if m := tryJSON(span); m != nil {
			return m
		}
	}

	return map[string]any{
		"success":    true,
		"summary":    Truncate(text, 200),
		"data":       map[string]any{"raw": text},
		"actions":    []any{},
		"confidence": 0.5,
	}
}

func tryJSON(s string) map[string]any {
	var m map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(s)), &m); err != nil {
		return nil
	}
	return m
}

// CoerceData guarantees the data field is a map regardless of what the
// model produced.
func CoerceData(raw any) map[string]any {
	switch x := raw.(type) {
	case nil:
		return map[string]any{}
	case map[string]any:
		return x
	case []any:
		return map[string]any{"items": x}
	default:
		return map[string]any{"value": x}
	}
}

// CoerceActions guarantees the actions field is a list of strings. Dict
// elements get a best-effort field extracted; everything else is
// stringified.
func CoerceActions(raw any) []string {
	list, ok := raw.([]any)
	if !ok {
		if raw == nil || raw == "" || raw == false || raw == 0.0 {
			return []string{}
		}
		return []string{Stringify(raw)}
	}

	out := make([]string, 0, len(list))
	for _, item := range list {
		switch x := item.(type) {
		case string:
			out = append(out, x)
		case map[string]any:
			out = append(out, actionFromMap(x))
		default:
			out = append(out, Stringify(x))
		}
	}
	return out
}

// actionFromMap extracts a meaningful string from a dict-shaped action in
// field priority order, falling back to a JSON dump.
func actionFromMap(m map[string]any) string {
	for _, key := range []string{"recommendation", "action", "description", "name"} {
		if s, ok := m[key].(string); ok && s != "" {
			return s
		}
	}
	return Stringify(m)
}

// Stringify renders a value as compact JSON, falling back to fmt for
// unmarshalable values.
func Stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

// Truncate shortens s to at most n runes.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// ─── Tolerant field readers ──────────────────────────────────

// Bool reads a boolean field, tolerating absence.
func Bool(m map[string]any, key string, fallback bool) bool {
	if v, ok := m[key].(bool); ok {
		return v
	}
	return fallback
}

// String reads a string field, tolerating absence and null.
func String(m map[string]any, key, fallback string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return fallback
}

// Float reads a numeric field, tolerating ints and strings of digits.
func Float(m map[string]any, key string, fallback float64) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f
		}
	}
	return fallback
}
