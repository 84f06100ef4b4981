// consoleagent runs a single governed agent call from the command line.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/consoleagent/consoleagent/pkg/agent"
	"github.com/consoleagent/consoleagent/pkg/models"
)

var (
	flagPersona   string
	flagModel     string
	flagProvider  string
	flagOllama    string
	flagTools     []string
	flagFiles     []string
	flagContext   string
	flagTimeout   int
	flagVerbose   bool
	flagDryRun    bool
	flagLocalOnly bool
	flagNoAnon    bool
	flagJSON      bool
	flagLogLevel  string
)

var rootCmd = &cobra.Command{
	Use:   "consoleagent [prompt]",
	Short: "Run a governed LLM agent call from the terminal",
	Long: `consoleagent sends a prompt through the full agent pipeline:
persona selection, rate and budget gating, anonymization, provider
dispatch and response normalization.

Examples:
  consoleagent "Summarize the attached log file" --file app.log
  consoleagent "Review this design" --persona architect --verbose
  consoleagent "Is this input sanitized?" --persona security --dry-run`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(strings.Join(args, " "))
	},
}

func init() {
	rootCmd.Flags().StringVarP(&flagPersona, "persona", "p", "", "persona to use (general, debugger, security, architect)")
	rootCmd.Flags().StringVarP(&flagModel, "model", "m", "", "model override")
	rootCmd.Flags().StringVar(&flagProvider, "provider", "", "provider (google, ollama)")
	rootCmd.Flags().StringVar(&flagOllama, "ollama-host", "", "ollama host URL")
	rootCmd.Flags().StringSliceVarP(&flagTools, "tools", "t", nil, "native tools to enable (search, code_execution)")
	rootCmd.Flags().StringSliceVarP(&flagFiles, "file", "f", nil, "file attachments")
	rootCmd.Flags().StringVarP(&flagContext, "context", "c", "", "context string, or @path to read a file")
	rootCmd.Flags().IntVar(&flagTimeout, "timeout", 0, "call timeout in milliseconds")
	rootCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose console output")
	rootCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "resolve and render without calling the provider")
	rootCmd.Flags().BoolVar(&flagLocalOnly, "local-only", false, "never leave the machine, force ollama")
	rootCmd.Flags().BoolVar(&flagNoAnon, "no-anonymize", false, "disable prompt anonymization")
	rootCmd.Flags().BoolVar(&flagJSON, "json", false, "print the full result as JSON on stdout")
	rootCmd.Flags().StringVar(&flagLogLevel, "log-level", "", "log level (silent, errors, info, debug)")
}

func run(prompt string) error {
	cfg := models.DefaultConfig()
	cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	if flagProvider != "" {
		cfg.Provider = models.ProviderName(flagProvider)
	}
	if flagOllama != "" {
		cfg.OllamaHost = flagOllama
	}
	if flagTimeout > 0 {
		cfg.TimeoutMs = flagTimeout
	}
	if flagDryRun {
		cfg.DryRun = true
	}
	if flagLocalOnly {
		cfg.LocalOnly = true
		cfg.Provider = models.ProviderOllama
	}
	if flagNoAnon {
		cfg.Anonymize = false
	}
	if flagVerbose {
		cfg.Verbose = true
	}
	if flagLogLevel != "" {
		cfg.LogLevel = models.LogLevel(flagLogLevel)
	}

	opts := &models.CallOptions{
		Model:   flagModel,
		Persona: models.PersonaName(flagPersona),
	}
	for _, t := range flagTools {
		opts.Tools = append(opts.Tools, models.ToolSelector{Type: models.ToolName(t)})
	}
	for _, f := range flagFiles {
		opts.Files = append(opts.Files, models.FileAttachment{Path: f})
	}

	var contextVal any
	if strings.HasPrefix(flagContext, "@") {
		data, err := os.ReadFile(flagContext[1:])
		if err != nil {
			return fmt.Errorf("read context file: %w", err)
		}
		contextVal = string(data)
	} else if flagContext != "" {
		contextVal = flagContext
	}

	eng := agent.New(cfg)
	result := eng.Call(context.Background(), prompt, contextVal, opts)

	if flagJSON {
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
		fmt.Println(string(out))
	}

	if !result.Success {
		os.Exit(1)
	}
	return nil
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
