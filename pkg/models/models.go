// Package models defines the value types shared across the consoleagent
// pipeline: the normalized AgentResult shape, persona definitions, budget
// and call configuration, and the per-call option bag.
package models

// ─── Core Result Types ───────────────────────────────────────

// ToolCall records one tool invocation observed during agent execution.
type ToolCall struct {
	Name   string         `json:"name"`
	Args   map[string]any `json:"args"`
	Result any            `json:"result,omitempty"`
}

// AgentMetadata is execution metadata attached to every AgentResult,
// including error, dry-run, and rate-limited results (zeroed there).
type AgentMetadata struct {
	Model      string     `json:"model"`
	TokensUsed int        `json:"tokens_used"`
	LatencyMs  int64      `json:"latency_ms"`
	ToolCalls  []ToolCall `json:"tool_calls"`
	Cached     bool       `json:"cached"`
}

// AgentResult is the normalized result returned by every agent call.
// Data is always a map and Actions always a list of strings — the
// normalizer coerces whatever the model produced into this shape.
type AgentResult struct {
	Success    bool           `json:"success"`
	Summary    string         `json:"summary"`
	Reasoning  string         `json:"reasoning,omitempty"`
	Data       map[string]any `json:"data"`
	Actions    []string       `json:"actions"`
	Confidence float64        `json:"confidence"`
	Metadata   AgentMetadata  `json:"metadata"`
}

// ─── Personas ────────────────────────────────────────────────

// PersonaName identifies one of the fixed personas.
type PersonaName string

const (
	PersonaDebugger  PersonaName = "debugger"
	PersonaSecurity  PersonaName = "security"
	PersonaArchitect PersonaName = "architect"
	PersonaGeneral   PersonaName = "general"
)

// PersonaDefinition is a named behavior profile: the system prompt, the
// default tool hints, and the keywords that trigger auto-detection.
// Definitions are immutable and registered at process start.
type PersonaDefinition struct {
	Name         PersonaName `json:"name"`
	Icon         string      `json:"icon"`
	Label        string      `json:"label"`
	SystemPrompt string      `json:"system_prompt"`
	DefaultTools []ToolName  `json:"default_tools"`
	Keywords     []string    `json:"keywords"`
}

// ─── Tools ───────────────────────────────────────────────────

// ToolName identifies a native provider tool.
type ToolName string

const (
	ToolCodeExecution ToolName = "code_execution"
	ToolGoogleSearch  ToolName = "google_search"
	ToolURLContext    ToolName = "url_context"
	ToolFileAnalysis  ToolName = "file_analysis"
)

// SearchToolConfig tunes the google_search tool.
type SearchToolConfig struct {
	Mode             string  `json:"mode,omitempty"`
	DynamicThreshold float64 `json:"dynamic_threshold,omitempty"`
}

// ToolSelector is one entry of CallOptions.Tools: a tool name with an
// optional richer config.
type ToolSelector struct {
	Type   ToolName          `json:"type"`
	Config *SearchToolConfig `json:"config,omitempty"`
}

// Tools builds a selector list from bare tool names.
func Tools(names ...ToolName) []ToolSelector {
	out := make([]ToolSelector, 0, len(names))
	for _, n := range names {
		out = append(out, ToolSelector{Type: n})
	}
	return out
}

// ─── Thinking & Safety ───────────────────────────────────────

// ThinkingConfig hints at model reasoning effort. Providers that do not
// support it ignore it.
type ThinkingConfig struct {
	Level           string `json:"level,omitempty"` // minimal, low, medium, high
	Budget          int    `json:"budget,omitempty"`
	IncludeThoughts bool   `json:"include_thoughts,omitempty"`
}

// HarmCategory mirrors the provider's harm taxonomy.
type HarmCategory string

const (
	HarmHateSpeech       HarmCategory = "HARM_CATEGORY_HATE_SPEECH"
	HarmDangerousContent HarmCategory = "HARM_CATEGORY_DANGEROUS_CONTENT"
	HarmHarassment       HarmCategory = "HARM_CATEGORY_HARASSMENT"
	HarmSexuallyExplicit HarmCategory = "HARM_CATEGORY_SEXUALLY_EXPLICIT"
)

// HarmBlockThreshold selects how aggressively a category is blocked.
type HarmBlockThreshold string

const (
	BlockNone           HarmBlockThreshold = "BLOCK_NONE"
	BlockOnlyHigh       HarmBlockThreshold = "BLOCK_ONLY_HIGH"
	BlockMediumAndAbove HarmBlockThreshold = "BLOCK_MEDIUM_AND_ABOVE"
	BlockLowAndAbove    HarmBlockThreshold = "BLOCK_LOW_AND_ABOVE"
)

// SafetySetting pairs a harm category with a block threshold.
type SafetySetting struct {
	Category  HarmCategory       `json:"category" yaml:"category"`
	Threshold HarmBlockThreshold `json:"threshold" yaml:"threshold"`
}

// ─── Structured Output ───────────────────────────────────────

// ResponseFormat carries a plain JSON schema for structured output when no
// typed schema prototype is supplied.
type ResponseFormat struct {
	Type   string         `json:"type"` // always "json_object"
	Schema map[string]any `json:"schema"`
}

// ─── File Attachments ────────────────────────────────────────

// FileAttachment names a file to attach to a call (PDF, image, etc.).
type FileAttachment struct {
	Path      string `json:"path"`
	MediaType string `json:"media_type,omitempty"` // optional MIME override
}

// ─── Providers & Modes ───────────────────────────────────────

// ProviderName selects the model backend.
type ProviderName string

const (
	ProviderGoogle ProviderName = "google"
	ProviderOllama ProviderName = "ollama"
)

// CallMode is retained for API compatibility; both modes currently resolve
// to the same blocking behavior.
type CallMode string

const (
	ModeFireAndForget CallMode = "fire-and-forget"
	ModeBlocking      CallMode = "blocking"
)

// LogLevel controls console/diagnostic output density.
type LogLevel string

const (
	LogSilent LogLevel = "silent"
	LogErrors LogLevel = "errors"
	LogInfo   LogLevel = "info"
	LogDebug  LogLevel = "debug"
)

var logLevelRank = map[LogLevel]int{
	LogSilent: 0,
	LogErrors: 1,
	LogInfo:   2,
	LogDebug:  3,
}

// Allows reports whether output at the given level should be emitted when
// the configured level is l. Unknown levels behave like "info".
func (l LogLevel) Allows(level LogLevel) bool {
	cur, ok := logLevelRank[l]
	if !ok {
		cur = logLevelRank[LogInfo]
	}
	return cur >= logLevelRank[level]
}

// ─── Budget & Config ─────────────────────────────────────────

// BudgetConfig caps daily spend independently of request rate.
type BudgetConfig struct {
	MaxCallsPerDay   int     `json:"max_calls_per_day" yaml:"max_calls_per_day"`
	MaxTokensPerCall int     `json:"max_tokens_per_call" yaml:"max_tokens_per_call"`
	CostCapDaily     float64 `json:"cost_cap_daily" yaml:"cost_cap_daily"`
}

// AgentConfig is the process-wide configuration. It is replaced wholesale
// on update; every read is a value snapshot.
type AgentConfig struct {
	Provider            ProviderName    `json:"provider" yaml:"provider"`
	APIKey              string          `json:"api_key,omitempty" yaml:"api_key"`
	Model               string          `json:"model" yaml:"model"`
	OllamaHost          string          `json:"ollama_host,omitempty" yaml:"ollama_host"`
	Persona             PersonaName     `json:"persona" yaml:"persona"`
	Budget              BudgetConfig    `json:"budget" yaml:"budget"`
	Mode                CallMode        `json:"mode" yaml:"mode"`
	TimeoutMs           int             `json:"timeout" yaml:"timeout"`
	Anonymize           bool            `json:"anonymize" yaml:"anonymize"`
	LocalOnly           bool            `json:"local_only" yaml:"local_only"`
	DryRun              bool            `json:"dry_run" yaml:"dry_run"`
	LogLevel            LogLevel        `json:"log_level" yaml:"log_level"`
	Verbose             bool            `json:"verbose" yaml:"verbose"`
	IncludeCallerSource bool            `json:"include_caller_source" yaml:"include_caller_source"`
	SafetySettings      []SafetySetting `json:"safety_settings,omitempty" yaml:"safety_settings"`
}

// DefaultConfig returns the process-start configuration.
func DefaultConfig() AgentConfig {
	return AgentConfig{
		Provider: ProviderGoogle,
		Model:    "gemini-2.5-flash-lite",
		Persona:  PersonaGeneral,
		Budget: BudgetConfig{
			MaxCallsPerDay:   100,
			MaxTokensPerCall: 8000,
			CostCapDaily:     1.0,
		},
		Mode:                ModeFireAndForget,
		TimeoutMs:           10000,
		Anonymize:           true,
		LogLevel:            LogInfo,
		IncludeCallerSource: true,
	}
}

// ─── Call Options ────────────────────────────────────────────

// CallOptions is the per-call override bag. Every field is optional and
// overrides the corresponding AgentConfig field for one call only.
type CallOptions struct {
	Model               string           `json:"model,omitempty"`
	Tools               []ToolSelector   `json:"tools,omitempty"`
	Thinking            *ThinkingConfig  `json:"thinking,omitempty"`
	Persona             PersonaName      `json:"persona,omitempty"`
	Mode                CallMode         `json:"mode,omitempty"`
	SchemaModel         any              `json:"-"` // struct prototype for typed output
	ResponseFormat      *ResponseFormat  `json:"response_format,omitempty"`
	Verbose             *bool            `json:"verbose,omitempty"`
	IncludeCallerSource *bool            `json:"include_caller_source,omitempty"`
	Files               []FileAttachment `json:"files,omitempty"`
}

// HasExplicitTools reports whether the caller asked for the native-tool
// execution path.
func (o *CallOptions) HasExplicitTools() bool {
	return o != nil && len(o.Tools) > 0
}
