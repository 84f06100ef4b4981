package agent

import (
	"context"
	"sync"

	"github.com/consoleagent/consoleagent/internal/budget"
	"github.com/consoleagent/consoleagent/pkg/models"
)

// The package-level engine serves callers that want the library without
// wiring their own Engine. It starts with defaults and is reconfigured
// through Configure.
var (
	defaultMu     sync.RWMutex
	defaultEngine *Engine
)

// Default returns the package-level engine, creating it on first use.
func Default() *Engine {
	defaultMu.RLock()
	e := defaultEngine
	defaultMu.RUnlock()
	if e != nil {
		return e
	}

	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultEngine == nil {
		defaultEngine = New(models.DefaultConfig())
	}
	return defaultEngine
}

// SetDefault replaces the package-level engine.
func SetDefault(e *Engine) {
	defaultMu.Lock()
	defaultEngine = e
	defaultMu.Unlock()
}

// Call executes a request on the default engine.
func Call(ctx context.Context, prompt string, contextVal any, opts *models.CallOptions) models.AgentResult {
	return Default().Call(ctx, prompt, contextVal, opts)
}

// CallAs executes a request with a forced persona on the default engine.
func CallAs(ctx context.Context, name models.PersonaName, prompt string, contextVal any, opts *models.CallOptions) models.AgentResult {
	return Default().CallAs(ctx, name, prompt, contextVal, opts)
}

// Configure merges a partial update into the default engine's config.
func Configure(update ConfigUpdate) {
	Default().Configure(update)
}

// Config returns a snapshot of the default engine's configuration.
func Config() models.AgentConfig {
	return Default().Config()
}

// Stats returns the default engine's budget usage snapshot.
func Stats() budget.Stats {
	return Default().Stats()
}
