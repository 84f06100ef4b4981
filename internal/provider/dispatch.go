package provider

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/consoleagent/consoleagent/internal/attach"
	"github.com/consoleagent/consoleagent/internal/parse"
	"github.com/consoleagent/consoleagent/internal/source"
	"github.com/consoleagent/consoleagent/pkg/models"
)

// ToolsMinTimeout is the floor applied whenever native tools are active.
// Tool round-trips (search, code execution) are slow enough that a short
// configured timeout would spuriously fail nearly every tool call.
const ToolsMinTimeout = 30000 * time.Millisecond

// jsonResponseInstruction is appended to the system prompt on the tools
// path, where the backend's structured-output mode is unavailable.
const jsonResponseInstruction = "\n\nIMPORTANT: You MUST respond with ONLY a valid JSON object " +
	"(no markdown, no code fences, no extra text).\n" +
	`Use this exact format:` + "\n" +
	`{"success": true, "summary": "one-line conclusion", ` +
	`"reasoning": "your thought process", ` +
	`"data": {"result": "primary finding"}, ` +
	`"actions": ["tools/steps used"], "confidence": 0.95}`

// defaultSchemaInstruction is appended on the structured path when the
// caller supplied no schema of their own.
const defaultSchemaInstruction = "\n\nYou MUST respond with a valid JSON object in this exact format:\n" +
	`{"success": true/false, "summary": "one-line conclusion", ` +
	`"reasoning": "your thought process or null", ` +
	`"data": {"key": "value pairs with findings"}, ` +
	`"actions": ["list of steps used"], ` +
	`"confidence": 0.0-1.0}`

// customSchemaInstruction is appended when the caller supplied their own
// output schema: the model should return bare schema data, not the
// result-wrapper fields.
const customSchemaInstruction = "\n\nIMPORTANT: You must respond with structured data matching the requested " +
	"output schema. Do not include result wrapper fields — just return " +
	"the data matching the schema."

// UseToolsPath reports whether a call takes the native-tools execution
// path: the caller explicitly asked for tools, the provider is google, and
// local-only mode is off.
func UseToolsPath(cfg models.AgentConfig, opts *models.CallOptions) bool {
	return opts.HasExplicitTools() && !cfg.LocalOnly && cfg.Provider == models.ProviderGoogle
}

// EffectiveTimeout resolves the dispatch deadline, enforcing the tools
// floor when the tools path is active.
func EffectiveTimeout(cfg models.AgentConfig, opts *models.CallOptions) time.Duration {
	timeout := time.Duration(cfg.TimeoutMs) * time.Millisecond
	if UseToolsPath(cfg, opts) && timeout < ToolsMinTimeout {
		return ToolsMinTimeout
	}
	return timeout
}

// Call executes one agent request against the configured provider and
// normalizes the output into an AgentResult. Backend failures propagate as
// errors; the caller converts them at the orchestrator boundary.
func (d *Dispatcher) Call(
	ctx context.Context,
	prompt, contextStr string,
	personaDef models.PersonaDefinition,
	cfg models.AgentConfig,
	opts *models.CallOptions,
	src *source.Info,
) (models.AgentResult, error) {
	start := time.Now()

	adapter, err := d.adapter(cfg.Provider)
	if err != nil {
		return models.AgentResult{}, err
	}

	modelName := cfg.Model
	if opts != nil && opts.Model != "" {
		modelName = opts.Model
	}
	log.Debug().Str("model", modelName).Str("persona", string(personaDef.Name)).Msg("dispatching")

	files, err := attach.Load(optFiles(opts))
	if err != nil {
		return models.AgentResult{}, err
	}

	req := &Request{
		Message:   buildUserMessage(prompt, contextStr, src),
		Model:     modelName,
		APIKey:    resolveAPIKey(cfg),
		Files:     files,
		Safety:    cfg.SafetySettings,
		MaxTokens: cfg.Budget.MaxTokensPerCall,
	}
	if opts != nil {
		req.Thinking = opts.Thinking
	}

	useTools := UseToolsPath(cfg, opts)
	useCustomSchema := opts != nil && (opts.SchemaModel != nil || opts.ResponseFormat != nil)

	switch {
	case useTools:
		// Native tools are incompatible with forced JSON output at the
		// backend API level: instruct via prompt and text-parse the reply.
		log.Debug().Int("tools", len(opts.Tools)).Msg("tools requested, using tools path")
		req.Instructions = personaDef.SystemPrompt + jsonResponseInstruction
		req.Tools = opts.Tools

	case useCustomSchema:
		req.Instructions = personaDef.SystemPrompt + customSchemaInstruction
		if opts.SchemaModel != nil {
			req.Schema = opts.SchemaModel
		} else {
			req.Format = opts.ResponseFormat.Schema
			req.Instructions += "\n\nOutput JSON schema:\n" + parse.Stringify(opts.ResponseFormat.Schema)
		}

	default:
		req.Instructions = personaDef.SystemPrompt + defaultSchemaInstruction
		req.JSONMode = true
	}

	resp, err := adapter.Complete(ctx, req)
	if err != nil {
		return models.AgentResult{}, err
	}

	latency := time.Since(start).Milliseconds()
	log.Debug().
		Int64("latency_ms", latency).
		Int("tokens", resp.TokensUsed).
		Int("tool_calls", len(resp.ToolCalls)).
		Msg("response received")

	meta := models.AgentMetadata{
		Model:      modelName,
		TokensUsed: resp.TokensUsed,
		LatencyMs:  latency,
		ToolCalls:  resp.ToolCalls,
	}
	if meta.ToolCalls == nil {
		meta.ToolCalls = []models.ToolCall{}
	}

	if useCustomSchema {
		return wrapCustomSchema(resp.Text, meta), nil
	}
	return normalize(resp, meta), nil
}

// normalize maps a parsed (or unparseable) model reply onto the fixed
// result shape. On the tools path an empty actions list falls back to the
// observed tool-call names.
func normalize(resp *Response, meta models.AgentMetadata) models.AgentResult {
	parsed := parse.Response(resp.Text)

	actions := parse.CoerceActions(parsed["actions"])
	if len(actions) == 0 {
		for _, tc := range resp.ToolCalls {
			actions = append(actions, tc.Name)
		}
	}

	data, hasData := parsed["data"]
	if !hasData {
		data = map[string]any{"raw": resp.Text}
	}

	return models.AgentResult{
		Success:    parse.Bool(parsed, "success", true),
		Summary:    parse.String(parsed, "summary", parse.Truncate(resp.Text, 200)),
		Reasoning:  parse.String(parsed, "reasoning", ""),
		Data:       parse.CoerceData(data),
		Actions:    actions,
		Confidence: parse.Float(parsed, "confidence", 0.5),
		Metadata:   meta,
	}
}

// wrapCustomSchema wraps caller-schema output in a result envelope. The
// payload is the data; the envelope fields are synthesized.
func wrapCustomSchema(text string, meta models.AgentMetadata) models.AgentResult {
	parsed := parse.Response(text)
	// The raw-text fallback shape means the reply was not schema JSON at
	// all; keep the whole text as a single field instead.
	if d, ok := parsed["data"].(map[string]any); ok {
		if _, raw := d["raw"]; raw && len(d) == 1 {
			parsed = map[string]any{"result": text}
		}
	}

	data := parse.CoerceData(parsed)
	return models.AgentResult{
		Success:    true,
		Summary:    fmt.Sprintf("Structured output returned (%d fields)", len(data)),
		Data:       data,
		Actions:    []string{},
		Confidence: 1.0,
		Metadata:   meta,
	}
}

// buildUserMessage combines the prompt, the serialized context block, and
// the caller-source excerpt, in that order.
func buildUserMessage(prompt, contextStr string, src *source.Info) string {
	parts := []string{prompt}
	if contextStr != "" {
		parts = append(parts, "\n--- Context ---\n"+contextStr)
	}
	if src != nil {
		parts = append(parts, "\n"+src.FormatForContext())
	}
	return strings.Join(parts, "\n")
}

// resolveAPIKey resolves the cloud API key: explicit config first, then
// the environment.
func resolveAPIKey(cfg models.AgentConfig) string {
	if cfg.APIKey != "" {
		return cfg.APIKey
	}
	if k := os.Getenv("GEMINI_API_KEY"); k != "" {
		return k
	}
	return os.Getenv("GOOGLE_GENERATIVE_AI_API_KEY")
}

func optFiles(opts *models.CallOptions) []models.FileAttachment {
	if opts == nil {
		return nil
	}
	return opts.Files
}
