package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/consoleagent/consoleagent/pkg/models"
)

// Config holds all configuration for the agent daemon.
type Config struct {
	Port      int                `yaml:"port"`
	Version   string             `yaml:"version"`
	Telemetry TelemetryConfig    `yaml:"telemetry"`
	Agent     models.AgentConfig `yaml:"agent"`
}

type TelemetryConfig struct {
	Enabled      bool   `yaml:"enabled"`
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	ServiceName  string `yaml:"service_name"`
}

// Load reads configuration from environment variables with sensible defaults.
// When path is non-empty the YAML file at path is applied on top.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Port:    envInt("AGENTD_PORT", 8080),
		Version: envStr("AGENTD_VERSION", "0.1.0"),
		Telemetry: TelemetryConfig{
			Enabled:      envBool("OTEL_ENABLED", false),
			OTLPEndpoint: envStr("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			ServiceName:  envStr("OTEL_SERVICE_NAME", "consoleagent"),
		},
		Agent: models.DefaultConfig(),
	}

	if v := envStr("GEMINI_API_KEY", ""); v != "" {
		cfg.Agent.APIKey = v
	}
	if v := envStr("OLLAMA_HOST", ""); v != "" {
		cfg.Agent.OllamaHost = v
	}
	if v := envStr("AGENT_MODEL", ""); v != "" {
		cfg.Agent.Model = v
	}
	if v := envStr("AGENT_PROVIDER", ""); v != "" {
		cfg.Agent.Provider = models.ProviderName(v)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	return cfg, nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
