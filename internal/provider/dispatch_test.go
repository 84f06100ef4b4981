package provider_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/consoleagent/consoleagent/internal/persona"
	"github.com/consoleagent/consoleagent/internal/provider"
	"github.com/consoleagent/consoleagent/pkg/models"
)

// mockAdapter is a scripted backend that records the request it received.
type mockAdapter struct {
	name     models.ProviderName
	response *provider.Response
	err      error
	lastReq  *provider.Request
}

func (m *mockAdapter) Name() models.ProviderName { return m.name }
func (m *mockAdapter) Complete(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

func testConfig() models.AgentConfig {
	cfg := models.DefaultConfig()
	cfg.TimeoutMs = 5000
	return cfg
}

func generalDef(t *testing.T) models.PersonaDefinition {
	t.Helper()
	def, err := persona.Get(models.PersonaGeneral)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	return def
}

func TestUseToolsPath(t *testing.T) {
	cfg := testConfig()
	withTools := &models.CallOptions{Tools: models.Tools(models.ToolGoogleSearch)}

	if !provider.UseToolsPath(cfg, withTools) {
		t.Error("UseToolsPath() = false with explicit tools on google")
	}
	if provider.UseToolsPath(cfg, &models.CallOptions{}) {
		t.Error("UseToolsPath() = true without tools")
	}

	local := cfg
	local.LocalOnly = true
	if provider.UseToolsPath(local, withTools) {
		t.Error("UseToolsPath() = true in local-only mode")
	}

	ollama := cfg
	ollama.Provider = models.ProviderOllama
	if provider.UseToolsPath(ollama, withTools) {
		t.Error("UseToolsPath() = true on non-google provider")
	}
}

func TestEffectiveTimeout_ToolsFloor(t *testing.T) {
	cfg := testConfig()
	withTools := &models.CallOptions{Tools: models.Tools(models.ToolGoogleSearch)}

	if got := provider.EffectiveTimeout(cfg, &models.CallOptions{}); got != 5*time.Second {
		t.Errorf("EffectiveTimeout() = %v, want 5s", got)
	}
	if got := provider.EffectiveTimeout(cfg, withTools); got != 30*time.Second {
		t.Errorf("EffectiveTimeout() with tools = %v, want 30s floor", got)
	}

	cfg.TimeoutMs = 60000
	if got := provider.EffectiveTimeout(cfg, withTools); got != 60*time.Second {
		t.Errorf("EffectiveTimeout() = %v, want configured 60s over floor", got)
	}
}

func TestCall_DefaultPathNormalizes(t *testing.T) {
	mock := &mockAdapter{
		name: models.ProviderGoogle,
		response: &provider.Response{
			Text:       `{"success": true, "summary": "all good", "data": {"k": "v"}, "actions": ["checked"], "confidence": 0.9}`,
			TokensUsed: 120,
		},
	}
	d := provider.NewDispatcher(mock)

	result, err := d.Call(context.Background(), "check this", "", generalDef(t), testConfig(), nil, nil)
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if !result.Success {
		t.Error("Success = false")
	}
	if result.Summary != "all good" {
		t.Errorf("Summary = %q", result.Summary)
	}
	if result.Data["k"] != "v" {
		t.Errorf("Data = %v", result.Data)
	}
	if result.Confidence != 0.9 {
		t.Errorf("Confidence = %v", result.Confidence)
	}
	if result.Metadata.TokensUsed != 120 {
		t.Errorf("TokensUsed = %d", result.Metadata.TokensUsed)
	}
	if !mock.lastReq.JSONMode {
		t.Error("default path did not request JSON mode")
	}
	if !strings.Contains(mock.lastReq.Instructions, "valid JSON object") {
		t.Error("default path instructions missing JSON directive")
	}
}

func TestCall_PlainTextFallback(t *testing.T) {
	mock := &mockAdapter{
		name:     models.ProviderGoogle,
		response: &provider.Response{Text: "The answer is 4."},
	}
	d := provider.NewDispatcher(mock)

	result, err := d.Call(context.Background(), "what is 2+2", "", generalDef(t), testConfig(), nil, nil)
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if !result.Success {
		t.Error("Success = false for plain text fallback")
	}
	if result.Summary != "The answer is 4." {
		t.Errorf("Summary = %q", result.Summary)
	}
	if result.Data["raw"] != "The answer is 4." {
		t.Errorf("Data = %v, want raw wrapper", result.Data)
	}
	if result.Confidence != 0.5 {
		t.Errorf("Confidence = %v, want 0.5", result.Confidence)
	}
}

func TestCall_ToolsPath(t *testing.T) {
	mock := &mockAdapter{
		name: models.ProviderGoogle,
		response: &provider.Response{
			Text:      `{"summary": "searched", "actions": []}`,
			ToolCalls: []models.ToolCall{{Name: "google_search"}},
		},
	}
	d := provider.NewDispatcher(mock)
	opts := &models.CallOptions{Tools: models.Tools(models.ToolGoogleSearch)}

	result, err := d.Call(context.Background(), "look this up", "", generalDef(t), testConfig(), opts, nil)
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if len(mock.lastReq.Tools) != 1 {
		t.Errorf("adapter got %d tools, want 1", len(mock.lastReq.Tools))
	}
	if mock.lastReq.JSONMode {
		t.Error("tools path must not force JSON mode")
	}
	// Empty actions fall back to observed tool-call names.
	if len(result.Actions) != 1 || result.Actions[0] != "google_search" {
		t.Errorf("Actions = %v, want tool-call fallback", result.Actions)
	}
}

func TestCall_CustomSchemaWrapsEnvelope(t *testing.T) {
	mock := &mockAdapter{
		name:     models.ProviderGoogle,
		response: &provider.Response{Text: `{"city": "Oslo", "population": 700000}`},
	}
	d := provider.NewDispatcher(mock)
	opts := &models.CallOptions{
		ResponseFormat: &models.ResponseFormat{
			Type:   "json_schema",
			Schema: map[string]any{"type": "object"},
		},
	}

	result, err := d.Call(context.Background(), "describe oslo", "", generalDef(t), testConfig(), opts, nil)
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if !result.Success || result.Confidence != 1.0 {
		t.Errorf("envelope = success %v confidence %v, want true/1.0", result.Success, result.Confidence)
	}
	if result.Data["city"] != "Oslo" {
		t.Errorf("Data = %v, want schema payload", result.Data)
	}
	if mock.lastReq.Format == nil {
		t.Error("loose schema not passed through as Format")
	}
	if !strings.Contains(mock.lastReq.Instructions, "Output JSON schema") {
		t.Error("loose schema not conveyed in instructions")
	}
}

func TestCall_CustomSchemaNonJSONReply(t *testing.T) {
	mock := &mockAdapter{
		name:     models.ProviderGoogle,
		response: &provider.Response{Text: "I cannot produce that."},
	}
	d := provider.NewDispatcher(mock)
	opts := &models.CallOptions{
		ResponseFormat: &models.ResponseFormat{Schema: map[string]any{"type": "object"}},
	}

	result, err := d.Call(context.Background(), "describe oslo", "", generalDef(t), testConfig(), opts, nil)
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if result.Data["result"] != "I cannot produce that." {
		t.Errorf("Data = %v, want whole text under result", result.Data)
	}
}

func TestCall_ModelOverride(t *testing.T) {
	mock := &mockAdapter{name: models.ProviderGoogle, response: &provider.Response{Text: "{}"}}
	d := provider.NewDispatcher(mock)

	result, err := d.Call(context.Background(), "p", "", generalDef(t), testConfig(),
		&models.CallOptions{Model: "gemini-3-flash-preview"}, nil)
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if mock.lastReq.Model != "gemini-3-flash-preview" {
		t.Errorf("adapter model = %q", mock.lastReq.Model)
	}
	if result.Metadata.Model != "gemini-3-flash-preview" {
		t.Errorf("metadata model = %q", result.Metadata.Model)
	}
}

func TestCall_ContextInMessage(t *testing.T) {
	mock := &mockAdapter{name: models.ProviderGoogle, response: &provider.Response{Text: "{}"}}
	d := provider.NewDispatcher(mock)

	_, err := d.Call(context.Background(), "the prompt", "the context", generalDef(t), testConfig(), nil, nil)
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if !strings.Contains(mock.lastReq.Message, "the prompt") {
		t.Error("prompt missing from message")
	}
	if !strings.Contains(mock.lastReq.Message, "--- Context ---") {
		t.Error("context block missing from message")
	}
}

func TestCall_AdapterError(t *testing.T) {
	mock := &mockAdapter{name: models.ProviderGoogle, err: errors.New("backend down")}
	d := provider.NewDispatcher(mock)

	_, err := d.Call(context.Background(), "p", "", generalDef(t), testConfig(), nil, nil)
	if err == nil {
		t.Fatal("Call() error = nil, want backend error")
	}
}

func TestCall_UnknownProvider(t *testing.T) {
	d := provider.NewDispatcher()
	cfg := testConfig()

	_, err := d.Call(context.Background(), "p", "", generalDef(t), cfg, nil, nil)
	if err == nil {
		t.Fatal("Call() error = nil, want missing adapter error")
	}
	if !strings.Contains(err.Error(), "no adapter") {
		t.Errorf("error = %v", err)
	}
}
