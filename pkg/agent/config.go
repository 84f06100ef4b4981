package agent

import (
	"github.com/rs/zerolog"

	"github.com/consoleagent/consoleagent/internal/budget"
	"github.com/consoleagent/consoleagent/internal/console"
	"github.com/consoleagent/consoleagent/internal/ratelimit"
	"github.com/consoleagent/consoleagent/pkg/models"
)

// BudgetUpdate is a partial budget change; nil fields keep prior values.
type BudgetUpdate struct {
	MaxCallsPerDay   *int     `json:"max_calls_per_day,omitempty"`
	MaxTokensPerCall *int     `json:"max_tokens_per_call,omitempty"`
	CostCapDaily     *float64 `json:"cost_cap_daily,omitempty"`
}

// ConfigUpdate is a partial configuration change merged into the current
// config. The budget sub-object merges shallowly: unspecified budget
// fields retain prior values.
type ConfigUpdate struct {
	Provider            *models.ProviderName   `json:"provider,omitempty"`
	APIKey              *string                `json:"api_key,omitempty"`
	Model               *string                `json:"model,omitempty"`
	OllamaHost          *string                `json:"ollama_host,omitempty"`
	Persona             *models.PersonaName    `json:"persona,omitempty"`
	Budget              *BudgetUpdate          `json:"budget,omitempty"`
	Mode                *models.CallMode       `json:"mode,omitempty"`
	TimeoutMs           *int                   `json:"timeout,omitempty"`
	Anonymize           *bool                  `json:"anonymize,omitempty"`
	LocalOnly           *bool                  `json:"local_only,omitempty"`
	DryRun              *bool                  `json:"dry_run,omitempty"`
	LogLevel            *models.LogLevel       `json:"log_level,omitempty"`
	Verbose             *bool                  `json:"verbose,omitempty"`
	IncludeCallerSource *bool                  `json:"include_caller_source,omitempty"`
	SafetySettings      []models.SafetySetting `json:"safety_settings,omitempty"`
}

// Configure merges an update into the engine configuration and atomically
// swaps the (config, limiter, tracker) triple. Prior usage counters are
// discarded — reconfiguring the budget resets the day's accounting.
func (e *Engine) Configure(update ConfigUpdate) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cfg = mergeConfig(e.cfg, update)
	e.limiter = ratelimit.New(e.cfg.Budget.MaxCallsPerDay)
	e.tracker = budget.New(e.cfg.Budget)
	if !e.customDispatch {
		e.dispatch = buildDispatcher(e.cfg)
	}
	if e.renderer != nil {
		e.renderer.SetLevel(e.cfg.LogLevel)
	} else {
		e.renderer = console.New(e.cfg.LogLevel)
	}
	applyLogLevel(e.cfg.LogLevel)
}

func mergeConfig(cfg models.AgentConfig, u ConfigUpdate) models.AgentConfig {
	if u.Provider != nil {
		cfg.Provider = *u.Provider
	}
	if u.APIKey != nil {
		cfg.APIKey = *u.APIKey
	}
	if u.Model != nil {
		cfg.Model = *u.Model
	}
	if u.OllamaHost != nil {
		cfg.OllamaHost = *u.OllamaHost
	}
	if u.Persona != nil {
		cfg.Persona = *u.Persona
	}
	if u.Budget != nil {
		if u.Budget.MaxCallsPerDay != nil {
			cfg.Budget.MaxCallsPerDay = *u.Budget.MaxCallsPerDay
		}
		if u.Budget.MaxTokensPerCall != nil {
			cfg.Budget.MaxTokensPerCall = *u.Budget.MaxTokensPerCall
		}
		if u.Budget.CostCapDaily != nil {
			cfg.Budget.CostCapDaily = *u.Budget.CostCapDaily
		}
	}
	if u.Mode != nil {
		cfg.Mode = *u.Mode
	}
	if u.TimeoutMs != nil {
		cfg.TimeoutMs = *u.TimeoutMs
	}
	if u.Anonymize != nil {
		cfg.Anonymize = *u.Anonymize
	}
	if u.LocalOnly != nil {
		cfg.LocalOnly = *u.LocalOnly
	}
	if u.DryRun != nil {
		cfg.DryRun = *u.DryRun
	}
	if u.LogLevel != nil {
		cfg.LogLevel = *u.LogLevel
	}
	if u.Verbose != nil {
		cfg.Verbose = *u.Verbose
	}
	if u.IncludeCallerSource != nil {
		cfg.IncludeCallerSource = *u.IncludeCallerSource
	}
	if u.SafetySettings != nil {
		cfg.SafetySettings = u.SafetySettings
	}
	return cfg
}

// applyLogLevel maps the console log level onto zerolog's global level so
// diagnostic logging follows the same dial.
func applyLogLevel(level models.LogLevel) {
	switch level {
	case models.LogSilent:
		zerolog.SetGlobalLevel(zerolog.Disabled)
	case models.LogErrors:
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case models.LogDebug:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
