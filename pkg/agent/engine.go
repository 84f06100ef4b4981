// Package agent implements the execution engine behind every consoleagent
// call: persona selection, rate and budget gating, anonymization, provider
// dispatch under a deadline, and normalization of every outcome into a
// complete AgentResult. No error ever escapes the entry points — denials,
// timeouts, and provider failures all come back as results.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/consoleagent/consoleagent/internal/anonymize"
	"github.com/consoleagent/consoleagent/internal/budget"
	"github.com/consoleagent/consoleagent/internal/console"
	"github.com/consoleagent/consoleagent/internal/persona"
	"github.com/consoleagent/consoleagent/internal/provider"
	"github.com/consoleagent/consoleagent/internal/ratelimit"
	"github.com/consoleagent/consoleagent/internal/source"
	"github.com/consoleagent/consoleagent/pkg/models"
)

// Engine owns the (config, limiter, tracker) triple. Reconfiguration swaps
// all three together so a reader never observes a new config paired with
// stale counters.
type Engine struct {
	mu       sync.RWMutex
	cfg      models.AgentConfig
	limiter  *ratelimit.Limiter
	tracker  *budget.Tracker
	dispatch *provider.Dispatcher
	renderer *console.Renderer

	// customDispatch marks an injected dispatcher (tests); it survives
	// reconfiguration.
	customDispatch bool

	tracer trace.Tracer
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithDispatcher injects a dispatcher, typically wrapping a mock adapter.
func WithDispatcher(d *provider.Dispatcher) Option {
	return func(e *Engine) {
		e.dispatch = d
		e.customDispatch = true
	}
}

// WithRenderer injects a console renderer. Used in tests to capture output.
func WithRenderer(r *console.Renderer) Option {
	return func(e *Engine) { e.renderer = r }
}

// New creates an engine with the given configuration.
func New(cfg models.AgentConfig, opts ...Option) *Engine {
	e := &Engine{
		cfg:     cfg,
		limiter: ratelimit.New(cfg.Budget.MaxCallsPerDay),
		tracker: budget.New(cfg.Budget),
		tracer:  otel.Tracer("consoleagent"),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.dispatch == nil {
		e.dispatch = buildDispatcher(cfg)
	}
	if e.renderer == nil {
		e.renderer = console.New(cfg.LogLevel)
	}
	applyLogLevel(cfg.LogLevel)
	return e
}

// buildDispatcher registers the real provider adapters.
func buildDispatcher(cfg models.AgentConfig) *provider.Dispatcher {
	adapters := []provider.Adapter{provider.NewGoogle()}
	if ol, err := provider.NewOllama(cfg.OllamaHost); err != nil {
		log.Warn().Err(err).Msg("ollama adapter unavailable")
	} else {
		adapters = append(adapters, ol)
	}
	return provider.NewDispatcher(adapters...)
}

// Config returns a value snapshot of the current configuration.
func (e *Engine) Config() models.AgentConfig {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cfg
}

// Stats returns the current budget usage snapshot.
func (e *Engine) Stats() budget.Stats {
	e.mu.RLock()
	t := e.tracker
	e.mu.RUnlock()
	return t.GetStats()
}

// RemainingCalls returns how many calls the rate limiter currently allows.
func (e *Engine) RemainingCalls() int {
	e.mu.RLock()
	l := e.limiter
	e.mu.RUnlock()
	return l.Remaining()
}

// Call executes one agent request. It always returns a fully-populated
// AgentResult; rate-limit and budget denials, timeouts, and provider
// failures are reported through the result, never as panics or errors.
func (e *Engine) Call(ctx context.Context, prompt string, contextVal any, opts *models.CallOptions) models.AgentResult {
	e.mu.RLock()
	cfg := e.cfg
	limiter := e.limiter
	tracker := e.tracker
	dispatch := e.dispatch
	renderer := e.renderer
	e.mu.RUnlock()

	callID := uuid.New().String()
	ctx, span := e.tracer.Start(ctx, "agent.call",
		trace.WithAttributes(
			attribute.String("call.id", callID),
			attribute.String("provider", string(cfg.Provider)),
		))
	defer span.End()

	verbose := cfg.Verbose
	if opts != nil && opts.Verbose != nil {
		verbose = *opts.Verbose
	}

	// Explicit per-call persona wins; otherwise auto-detect against the
	// configured default.
	var personaDef models.PersonaDefinition
	if opts != nil && opts.Persona != "" {
		def, err := persona.Get(opts.Persona)
		if err != nil {
			renderer.Error(err, personaDef, verbose)
			return errorResult(cfg, err.Error())
		}
		personaDef = def
	} else {
		personaDef = persona.Detect(prompt, cfg.Persona)
	}
	span.SetAttributes(attribute.String("persona", string(personaDef.Name)))
	log.Debug().Str("call_id", callID).Str("persona", string(personaDef.Name)).Msg("persona selected")

	if cfg.DryRun {
		renderer.DryRun(prompt, personaDef, serializeContext(contextVal, false), verbose)
		return dryRunResult(cfg, personaDef)
	}

	if !limiter.TryConsume() {
		renderer.RateLimitWarning(verbose)
		span.SetAttributes(attribute.String("outcome", "rate_limited"))
		return errorResult(cfg, "Rate limited — too many calls. Try again later.")
	}

	if check := tracker.CanMakeCall(); !check.Allowed {
		renderer.BudgetWarning(check.Reason, verbose)
		span.SetAttributes(attribute.String("outcome", "budget_denied"))
		return errorResult(cfg, check.Reason)
	}

	contextStr := serializeContext(contextVal, cfg.Anonymize)
	processedPrompt := prompt
	if cfg.Anonymize {
		processedPrompt = anonymize.String(prompt)
	}

	var src *source.Info
	includeSource := cfg.IncludeCallerSource
	if opts != nil && opts.IncludeCallerSource != nil {
		includeSource = *opts.IncludeCallerSource
	}
	if includeSource {
		src = source.Capture()
	}

	spinner := renderer.StartSpinner(personaDef, processedPrompt, verbose)

	timeout := provider.EffectiveTimeout(cfg, opts)
	dctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		res models.AgentResult
		err error
	}
	ch := make(chan outcome, 1)
	go func() {
		res, err := dispatch.Call(dctx, processedPrompt, contextStr, personaDef, cfg, opts, src)
		ch <- outcome{res, err}
	}()

	select {
	case out := <-ch:
		if out.err != nil {
			spinner.Stop(false)
			if errors.Is(out.err, context.DeadlineExceeded) {
				return e.timeoutResult(cfg, personaDef, renderer, span, verbose)
			}
			renderer.Error(out.err, personaDef, verbose)
			span.RecordError(out.err)
			span.SetAttributes(attribute.String("outcome", "error"))
			return errorResult(cfg, out.err.Error())
		}

		tracker.RecordUsage(
			out.res.Metadata.TokensUsed,
			budget.EstimateCost(out.res.Metadata.TokensUsed, out.res.Metadata.Model),
		)

		spinner.Stop(out.res.Success)
		renderer.Result(out.res, personaDef, verbose)
		span.SetAttributes(
			attribute.String("outcome", "success"),
			attribute.Int("tokens_used", out.res.Metadata.TokensUsed),
			attribute.Int64("latency_ms", out.res.Metadata.LatencyMs),
		)
		return out.res

	case <-dctx.Done():
		// The in-flight provider call is abandoned; it cannot outlive the
		// deadline from the caller's perspective.
		spinner.Stop(false)
		if errors.Is(dctx.Err(), context.DeadlineExceeded) {
			return e.timeoutResult(cfg, personaDef, renderer, span, verbose)
		}
		renderer.Error(dctx.Err(), personaDef, verbose)
		span.SetAttributes(attribute.String("outcome", "canceled"))
		return errorResult(cfg, dctx.Err().Error())
	}
}

// CallAs forces a persona, bypassing auto-detection.
func (e *Engine) CallAs(ctx context.Context, name models.PersonaName, prompt string, contextVal any, opts *models.CallOptions) models.AgentResult {
	var forced models.CallOptions
	if opts != nil {
		forced = *opts
	}
	forced.Persona = name
	return e.Call(ctx, prompt, contextVal, &forced)
}

func (e *Engine) timeoutResult(cfg models.AgentConfig, personaDef models.PersonaDefinition, renderer *console.Renderer, span trace.Span, verbose bool) models.AgentResult {
	err := fmt.Errorf("Agent timed out after %dms", cfg.TimeoutMs)
	renderer.Error(err, personaDef, verbose)
	span.SetAttributes(attribute.String("outcome", "timeout"))
	return errorResult(cfg, err.Error())
}

// ─── Result constructors ─────────────────────────────────────

func zeroMetadata(cfg models.AgentConfig) models.AgentMetadata {
	return models.AgentMetadata{
		Model:     cfg.Model,
		ToolCalls: []models.ToolCall{},
	}
}

func errorResult(cfg models.AgentConfig, message string) models.AgentResult {
	return models.AgentResult{
		Summary:  message,
		Data:     map[string]any{},
		Actions:  []string{},
		Metadata: zeroMetadata(cfg),
	}
}

func dryRunResult(cfg models.AgentConfig, personaDef models.PersonaDefinition) models.AgentResult {
	return models.AgentResult{
		Success:    true,
		Summary:    fmt.Sprintf("[DRY RUN] Would have executed with %s persona", personaDef.Name),
		Data:       map[string]any{"dry_run": true},
		Actions:    []string{},
		Confidence: 1,
		Metadata:   zeroMetadata(cfg),
	}
}

// serializeContext renders a context payload as text, anonymizing the
// underlying value first when enabled. Structured variants serialize as
// indented JSON.
func serializeContext(contextVal any, anon bool) string {
	c := models.ContextOf(contextVal)
	if c == nil {
		return ""
	}
	val := c.Value()
	if anon {
		val = anonymize.Value(val)
	}
	if s, ok := val.(string); ok {
		return s
	}
	b, err := json.MarshalIndent(val, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", val)
	}
	return string(b)
}

// ─── Dispatch timing helpers ─────────────────────────────────

// Timeout returns the effective dispatch deadline for a call, mostly for
// diagnostics.
func (e *Engine) Timeout(opts *models.CallOptions) time.Duration {
	return provider.EffectiveTimeout(e.Config(), opts)
}
