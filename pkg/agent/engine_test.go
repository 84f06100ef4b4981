package agent_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/consoleagent/consoleagent/internal/console"
	"github.com/consoleagent/consoleagent/internal/provider"
	"github.com/consoleagent/consoleagent/pkg/agent"
	"github.com/consoleagent/consoleagent/pkg/models"
)

// mockAdapter is a scripted google backend.
type mockAdapter struct {
	response *provider.Response
	err      error
	delay    time.Duration
	calls    int
}

func (m *mockAdapter) Name() models.ProviderName { return models.ProviderGoogle }
func (m *mockAdapter) Complete(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	m.calls++
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

func okResponse() *provider.Response {
	return &provider.Response{
		Text:       `{"success": true, "summary": "done", "data": {}, "actions": [], "confidence": 0.9}`,
		TokensUsed: 50,
	}
}

func newTestEngine(t *testing.T, cfg models.AgentConfig, mock *mockAdapter) *agent.Engine {
	t.Helper()
	cfg.LogLevel = models.LogSilent
	return agent.New(cfg,
		agent.WithDispatcher(provider.NewDispatcher(mock)),
		agent.WithRenderer(console.NewWithWriter(&bytes.Buffer{}, cfg.LogLevel)),
	)
}

func TestCall_Success(t *testing.T) {
	mock := &mockAdapter{response: okResponse()}
	e := newTestEngine(t, models.DefaultConfig(), mock)

	result := e.Call(context.Background(), "analyze this", nil, nil)
	if !result.Success {
		t.Fatalf("Success = false: %s", result.Summary)
	}
	if result.Summary != "done" {
		t.Errorf("Summary = %q", result.Summary)
	}
	if mock.calls != 1 {
		t.Errorf("adapter called %d times, want 1", mock.calls)
	}

	stats := e.Stats()
	if stats.CallsToday != 1 {
		t.Errorf("CallsToday = %d, want 1", stats.CallsToday)
	}
	if stats.TokensToday != 50 {
		t.Errorf("TokensToday = %d, want 50", stats.TokensToday)
	}
}

func TestCall_DryRun(t *testing.T) {
	mock := &mockAdapter{response: okResponse()}
	cfg := models.DefaultConfig()
	cfg.DryRun = true
	e := newTestEngine(t, cfg, mock)

	result := e.Call(context.Background(), "analyze this", nil, nil)
	if !result.Success {
		t.Fatal("Success = false for dry run")
	}
	if !strings.Contains(result.Summary, "[DRY RUN]") {
		t.Errorf("Summary = %q, want dry-run marker", result.Summary)
	}
	if result.Data["dry_run"] != true {
		t.Errorf("Data = %v", result.Data)
	}
	if mock.calls != 0 {
		t.Errorf("adapter called %d times during dry run, want 0", mock.calls)
	}
	// Dry runs must not consume rate or budget.
	if got := e.Stats().CallsToday; got != 0 {
		t.Errorf("CallsToday = %d after dry run, want 0", got)
	}
	if got := e.RemainingCalls(); got != cfg.Budget.MaxCallsPerDay {
		t.Errorf("RemainingCalls() = %d, want untouched bucket", got)
	}
}

func TestCall_RateLimited(t *testing.T) {
	mock := &mockAdapter{response: okResponse()}
	cfg := models.DefaultConfig()
	cfg.Budget.MaxCallsPerDay = 1
	e := newTestEngine(t, cfg, mock)

	first := e.Call(context.Background(), "one", nil, nil)
	if !first.Success {
		t.Fatalf("first call failed: %s", first.Summary)
	}

	// The limiter bucket is sized to MaxCallsPerDay, so the second call
	// is stopped at the rate gate before the tracker is consulted.
	second := e.Call(context.Background(), "two", nil, nil)
	if second.Success {
		t.Fatal("second call succeeded past the rate limiter")
	}
	if !strings.Contains(second.Summary, "Rate limited") {
		t.Errorf("Summary = %q, want a rate-limit denial", second.Summary)
	}
	if mock.calls != 1 {
		t.Errorf("adapter called %d times, want 1", mock.calls)
	}
}

func TestCall_BudgetDenied(t *testing.T) {
	mock := &mockAdapter{response: okResponse()}
	cfg := models.DefaultConfig()
	cfg.Budget.CostCapDaily = 0
	e := newTestEngine(t, cfg, mock)

	result := e.Call(context.Background(), "one", nil, nil)
	if result.Success {
		t.Fatal("call succeeded past the cost cap")
	}
	if !strings.Contains(result.Summary, "cost cap") {
		t.Errorf("Summary = %q, want a cost cap denial", result.Summary)
	}
	if mock.calls != 0 {
		t.Errorf("adapter called %d times, want 0", mock.calls)
	}
}

func TestCall_ProviderError(t *testing.T) {
	mock := &mockAdapter{err: errors.New("backend exploded")}
	e := newTestEngine(t, models.DefaultConfig(), mock)

	result := e.Call(context.Background(), "analyze", nil, nil)
	if result.Success {
		t.Fatal("Success = true for provider error")
	}
	if !strings.Contains(result.Summary, "backend exploded") {
		t.Errorf("Summary = %q", result.Summary)
	}
	// Failed calls do not count against the budget.
	if got := e.Stats().CallsToday; got != 0 {
		t.Errorf("CallsToday = %d after failure, want 0", got)
	}
}

func TestCall_Timeout(t *testing.T) {
	mock := &mockAdapter{response: okResponse(), delay: 500 * time.Millisecond}
	cfg := models.DefaultConfig()
	cfg.TimeoutMs = 50
	e := newTestEngine(t, cfg, mock)

	start := time.Now()
	result := e.Call(context.Background(), "slow call", nil, nil)
	if result.Success {
		t.Fatal("Success = true for timed-out call")
	}
	if !strings.Contains(result.Summary, "timed out") {
		t.Errorf("Summary = %q, want timeout message", result.Summary)
	}
	if elapsed := time.Since(start); elapsed > 400*time.Millisecond {
		t.Errorf("Call() took %v, should return at the deadline", elapsed)
	}
}

func TestCall_ExplicitPersona(t *testing.T) {
	mock := &mockAdapter{response: okResponse()}
	e := newTestEngine(t, models.DefaultConfig(), mock)

	result := e.CallAs(context.Background(), models.PersonaSecurity, "look at this", nil, nil)
	if !result.Success {
		t.Fatalf("CallAs() failed: %s", result.Summary)
	}
}

func TestCall_UnknownPersona(t *testing.T) {
	mock := &mockAdapter{response: okResponse()}
	e := newTestEngine(t, models.DefaultConfig(), mock)

	result := e.Call(context.Background(), "prompt", nil, &models.CallOptions{Persona: "pirate"})
	if result.Success {
		t.Fatal("Success = true for unknown persona")
	}
	if !strings.Contains(result.Summary, "pirate") {
		t.Errorf("Summary = %q, want persona name in message", result.Summary)
	}
	if mock.calls != 0 {
		t.Errorf("adapter called %d times, want 0", mock.calls)
	}
}

func TestCall_NeverPanicsOnWeirdContext(t *testing.T) {
	mock := &mockAdapter{response: okResponse()}
	e := newTestEngine(t, models.DefaultConfig(), mock)

	contexts := []any{
		nil,
		"plain string",
		map[string]any{"key": "value"},
		errors.New("an error context"),
		42,
		[]string{"a", "b"},
	}
	for _, c := range contexts {
		result := e.Call(context.Background(), "prompt", c, nil)
		if result.Summary == "" && !result.Success {
			t.Errorf("context %v produced an empty result", c)
		}
	}
}

func TestConfigure_SwapsBudget(t *testing.T) {
	mock := &mockAdapter{response: okResponse()}
	e := newTestEngine(t, models.DefaultConfig(), mock)

	e.Call(context.Background(), "one", nil, nil)
	if got := e.Stats().CallsToday; got != 1 {
		t.Fatalf("CallsToday = %d, want 1", got)
	}

	maxCalls := 5
	e.Configure(agent.ConfigUpdate{Budget: &agent.BudgetUpdate{MaxCallsPerDay: &maxCalls}})

	// New tracker starts fresh with the new cap.
	stats := e.Stats()
	if stats.CallsToday != 0 {
		t.Errorf("CallsToday = %d after reconfigure, want 0", stats.CallsToday)
	}
	if stats.CallsRemaining != 5 {
		t.Errorf("CallsRemaining = %d, want 5", stats.CallsRemaining)
	}

	cfg := e.Config()
	if cfg.Budget.MaxCallsPerDay != 5 {
		t.Errorf("MaxCallsPerDay = %d, want 5", cfg.Budget.MaxCallsPerDay)
	}
	// Untouched budget fields survive the merge.
	if cfg.Budget.MaxTokensPerCall != models.DefaultConfig().Budget.MaxTokensPerCall {
		t.Errorf("MaxTokensPerCall = %d, want default preserved", cfg.Budget.MaxTokensPerCall)
	}
}

func TestConfigure_KeepsInjectedDispatcher(t *testing.T) {
	mock := &mockAdapter{response: okResponse()}
	e := newTestEngine(t, models.DefaultConfig(), mock)

	model := "gemini-3-flash-preview"
	e.Configure(agent.ConfigUpdate{Model: &model})

	result := e.Call(context.Background(), "still mocked", nil, nil)
	if !result.Success {
		t.Fatalf("call after reconfigure failed: %s", result.Summary)
	}
	if mock.calls != 1 {
		t.Errorf("adapter called %d times, want 1 (injected dispatcher dropped?)", mock.calls)
	}
	if result.Metadata.Model != model {
		t.Errorf("Metadata.Model = %q, want %q", result.Metadata.Model, model)
	}
}

func TestDefaultEngine(t *testing.T) {
	mock := &mockAdapter{response: okResponse()}
	cfg := models.DefaultConfig()
	cfg.LogLevel = models.LogSilent
	agent.SetDefault(agent.New(cfg,
		agent.WithDispatcher(provider.NewDispatcher(mock)),
		agent.WithRenderer(console.NewWithWriter(&bytes.Buffer{}, cfg.LogLevel)),
	))

	result := agent.Call(context.Background(), "via default", nil, nil)
	if !result.Success {
		t.Fatalf("Call() via default engine failed: %s", result.Summary)
	}
	if agent.Stats().CallsToday != 1 {
		t.Errorf("Stats().CallsToday = %d, want 1", agent.Stats().CallsToday)
	}
}
