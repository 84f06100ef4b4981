// Package provider dispatches agent requests to a model backend. Each
// backend implements the small Adapter interface; the Dispatcher owns the
// routing between the native-tools path and the structured-output path and
// all normalization of what comes back, so adapters stay thin.
package provider

import (
	"context"
	"fmt"

	"github.com/consoleagent/consoleagent/internal/attach"
	"github.com/consoleagent/consoleagent/pkg/models"
)

// Request is the provider-agnostic unit of work an adapter executes.
type Request struct {
	Instructions string // system prompt, already suffixed per path
	Message      string // user message with context and source appended
	Model        string
	APIKey       string // google only

	// Tools is non-empty only on the native-tools path.
	Tools []models.ToolSelector

	// JSONMode asks the backend for its native JSON output mode.
	JSONMode bool
	// Schema is a struct prototype for typed structured output.
	Schema any
	// Format is a loose JSON schema, used by backends that accept one
	// directly (ollama); otherwise it is conveyed via prompt text.
	Format map[string]any

	Files     []attach.Part
	Thinking  *models.ThinkingConfig
	Safety    []models.SafetySetting
	MaxTokens int
}

// Response is what an adapter hands back: raw content plus token metrics
// and any tool invocations it observed.
type Response struct {
	Text       string
	TokensUsed int
	ToolCalls  []models.ToolCall
}

// Adapter is one model backend. Complete submits instructions + message
// (+ tools) and returns content + token metrics; everything else is the
// dispatcher's job.
type Adapter interface {
	Name() models.ProviderName
	Complete(ctx context.Context, req *Request) (*Response, error)
}

// Dispatcher routes calls to the registered adapters.
type Dispatcher struct {
	adapters map[models.ProviderName]Adapter
}

// NewDispatcher registers the given adapters.
func NewDispatcher(adapters ...Adapter) *Dispatcher {
	d := &Dispatcher{adapters: make(map[models.ProviderName]Adapter, len(adapters))}
	for _, a := range adapters {
		d.adapters[a.Name()] = a
	}
	return d
}

func (d *Dispatcher) adapter(name models.ProviderName) (Adapter, error) {
	a, ok := d.adapters[name]
	if !ok {
		return nil, fmt.Errorf("no adapter registered for provider %q", name)
	}
	return a, nil
}
