// Package anonymize strips secrets and PII from outbound content before it
// leaves the process. Redaction is an ordered pass over a fixed pattern
// table; the multi-line private-key pattern must run before the
// line-oriented ones, and placeholders are chosen so a second pass leaves
// already-redacted text unchanged.
package anonymize

import (
	"regexp"
	"strings"
)

var (
	rePrivateKey = regexp.MustCompile(`-----BEGIN (?:RSA )?PRIVATE KEY-----[\s\S]*?-----END (?:RSA )?PRIVATE KEY-----`)
	reConnString = regexp.MustCompile(`(?i)(?:mongodb|postgres|mysql|redis|amqp)://[^\s'"]+`)
	reAWSKey     = regexp.MustCompile(`(?:AKIA|ASIA)[A-Z0-9]{16}`)
	reBearer     = regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9_\-/.+]{20,}`)
	reAPIKey     = regexp.MustCompile(`(?i)(?:api[_\-]?key|token|secret|password|credential|auth)['":\s=]+['"]?[A-Za-z0-9_\-/.]{20,}['"]?`)
	reEnvSecret  = regexp.MustCompile(`(?m)^(?:DATABASE_URL|DB_PASSWORD|SECRET_KEY|PRIVATE_KEY|AWS_SECRET|STRIPE_KEY|SENDGRID_KEY)[=:].+$`)
	reEmail      = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	reIPv4       = regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`)
	reIPv6       = regexp.MustCompile(`(?:[0-9a-fA-F]{1,4}:){7}[0-9a-fA-F]{1,4}`)
)

// String redacts sensitive content in s. Text with no matches is returned
// unchanged.
func String(s string) string {
	out := s

	out = rePrivateKey.ReplaceAllString(out, "[REDACTED_PRIVATE_KEY]")
	out = reConnString.ReplaceAllString(out, "[REDACTED_CONNECTION_STRING]")
	out = reAWSKey.ReplaceAllString(out, "[REDACTED_AWS_KEY]")
	out = reBearer.ReplaceAllString(out, "Bearer [REDACTED_TOKEN]")

	out = reAPIKey.ReplaceAllStringFunc(out, func(m string) string {
		// Keep the keyword, drop everything from the first separator on.
		if i := strings.IndexAny(m, `'":= `); i >= 0 {
			return m[:i] + ": [REDACTED]"
		}
		return "[REDACTED]"
	})

	out = reEnvSecret.ReplaceAllStringFunc(out, func(m string) string {
		if i := strings.IndexAny(m, "=:"); i >= 0 {
			return m[:i] + "=[REDACTED]"
		}
		return "[REDACTED]"
	})

	out = reEmail.ReplaceAllString(out, "[EMAIL]")
	out = reIPv4.ReplaceAllString(out, "[IP]")
	out = reIPv6.ReplaceAllString(out, "[IP]")

	return out
}

// Value redacts any value while preserving its structure: maps keep their
// keys, slices keep their order and length, and only string leaves are
// rewritten. Non-string scalars pass through untouched.
func Value(v any) any {
	switch x := v.(type) {
	case string:
		return String(x)
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = Value(item)
		}
		return out
	case []string:
		out := make([]string, len(x))
		for i, s := range x {
			out[i] = String(s)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[k] = Value(item)
		}
		return out
	case map[string]string:
		out := make(map[string]string, len(x))
		for k, s := range x {
			out[k] = String(s)
		}
		return out
	default:
		return v
	}
}
