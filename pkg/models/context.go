package models

import (
	"encoding/json"
	"fmt"
	"runtime"
	"strings"
)

// Context is the closed set of per-call context payloads. Each variant
// carries its own serialization rule; the engine anonymizes the underlying
// value before it leaves the process.
type Context interface {
	isContext()
	// Value returns the raw payload: a string for TextContext, a map for
	// the structured variants.
	Value() any
}

// TextContext is free-form text context.
type TextContext string

func (TextContext) isContext()   {}
func (c TextContext) Value() any { return string(c) }

// DataContext is structured key/value context.
type DataContext map[string]any

func (DataContext) isContext()   {}
func (c DataContext) Value() any { return map[string]any(c) }

// ErrorContext describes a failure the agent should analyze.
type ErrorContext struct {
	Type    string   `json:"type"`
	Message string   `json:"message"`
	Trace   []string `json:"trace,omitempty"`
}

func (ErrorContext) isContext() {}

func (c ErrorContext) Value() any {
	m := map[string]any{
		"type":    c.Type,
		"message": c.Message,
	}
	if len(c.Trace) > 0 {
		m["trace"] = c.Trace
	}
	return m
}

// NewErrorContext captures an error plus the current goroutine stack as an
// ErrorContext.
func NewErrorContext(err error) ErrorContext {
	if err == nil {
		return ErrorContext{}
	}
	buf := make([]byte, 8192)
	n := runtime.Stack(buf, false)
	return ErrorContext{
		Type:    fmt.Sprintf("%T", err),
		Message: err.Error(),
		Trace:   strings.Split(strings.TrimRight(string(buf[:n]), "\n"), "\n"),
	}
}

// ContextOf wraps an arbitrary value in the appropriate Context variant.
// Strings become TextContext, errors become ErrorContext, maps become
// DataContext, and anything else is serialized as indented JSON, with
// Sprintf as a last resort for values JSON cannot represent.
func ContextOf(v any) Context {
	switch x := v.(type) {
	case nil:
		return nil
	case Context:
		return x
	case string:
		return TextContext(x)
	case error:
		return NewErrorContext(x)
	case map[string]any:
		return DataContext(x)
	default:
		if b, err := json.MarshalIndent(x, "", "  "); err == nil {
			return TextContext(b)
		}
		return TextContext(fmt.Sprintf("%v", x))
	}
}
