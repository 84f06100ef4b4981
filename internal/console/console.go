// Package console renders agent results for humans: a quiet mode printing
// the summary and key data, and a verbose mode drawing the [AGENT] tree
// with confidence coloring and metadata footer. Output goes to stderr so
// it never mixes with machine-readable stdout.
package console

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/consoleagent/consoleagent/internal/parse"
	"github.com/consoleagent/consoleagent/pkg/models"
)

var (
	styleDim     = lipgloss.NewStyle().Faint(true)
	styleGreen   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	styleYellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	styleRed     = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	styleCyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	styleMagenta = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	styleBold    = lipgloss.NewStyle().Bold(true)
)

// Renderer writes human-facing output gated by the configured log level.
type Renderer struct {
	out   io.Writer
	level models.LogLevel
	isTTY bool
}

// New creates a renderer writing to stderr.
func New(level models.LogLevel) *Renderer {
	return &Renderer{
		out:   os.Stderr,
		level: level,
		isTTY: term.IsTerminal(int(os.Stderr.Fd())),
	}
}

// NewWithWriter creates a renderer for a specific writer. Used in tests.
func NewWithWriter(out io.Writer, level models.LogLevel) *Renderer {
	return &Renderer{out: out, level: level}
}

// SetLevel updates the output gate.
func (r *Renderer) SetLevel(level models.LogLevel) { r.level = level }

func (r *Renderer) printf(format string, args ...any) {
	fmt.Fprintf(r.out, format+"\n", args...)
}

func prefix() string { return styleDim.Render("[AGENT]") }

// Result renders a completed call.
func (r *Renderer) Result(res models.AgentResult, personaDef models.PersonaDefinition, verbose bool) {
	if !r.level.Allows(models.LogInfo) {
		return
	}

	if !verbose {
		r.printf("%s", res.Summary)
		for key, value := range res.Data {
			r.printf("  %s: %s", key, parse.Stringify(value))
		}
		return
	}

	conf := styleRed
	if res.Confidence >= 0.8 {
		conf = styleGreen
	} else if res.Confidence >= 0.5 {
		conf = styleYellow
	}

	status := styleRed.Render("✗")
	if res.Success {
		status = styleGreen.Render("✓")
	}

	r.printf("")
	r.printf("%s %s %s Complete", prefix(), personaDef.Icon, styleBold.Render(personaDef.Label))
	r.printf("%s ├─ %s %s", prefix(), status, res.Summary)

	for _, action := range res.Actions {
		r.printf("%s ├─ %s %s", prefix(), styleDim.Render("Tool:"), styleCyan.Render(action))
	}
	for key, value := range res.Data {
		r.printf("%s ├─ %s %s", prefix(), styleDim.Render(key+":"), parse.Stringify(value))
	}

	if res.Reasoning != "" {
		r.printf("%s ├─ %s", prefix(), styleDim.Render("Reasoning:"))
		lines := strings.Split(res.Reasoning, "\n")
		if len(lines) > 3 {
			lines = lines[:3]
		}
		for _, line := range lines {
			r.printf("%s │  %s", prefix(), styleDim.Render(strings.TrimSpace(line)))
		}
	}

	cached := ""
	if res.Metadata.Cached {
		cached = " " + styleGreen.Render("(cached)")
	}
	r.printf("%s └─ %s | %s | %s%s",
		prefix(),
		conf.Render(fmt.Sprintf("confidence: %.2f", res.Confidence)),
		styleDim.Render(fmt.Sprintf("%dms", res.Metadata.LatencyMs)),
		styleDim.Render(fmt.Sprintf("%d tokens", res.Metadata.TokensUsed)),
		cached,
	)
	r.printf("")
}

// Error renders a failed call.
func (r *Renderer) Error(err error, personaDef models.PersonaDefinition, verbose bool) {
	if !r.level.Allows(models.LogErrors) {
		return
	}
	if !verbose {
		r.printf("Error: %v", err)
		return
	}
	r.printf("")
	r.printf("%s %s %s %v", prefix(), personaDef.Icon, styleRed.Render("Error:"), err)
	r.printf("")
}

// BudgetWarning renders a budget denial.
func (r *Renderer) BudgetWarning(reason string, verbose bool) {
	if !r.level.Allows(models.LogErrors) {
		return
	}
	if !verbose {
		r.printf("Budget limit: %s", reason)
		return
	}
	r.printf("%s %s %s", prefix(), styleYellow.Render("⚠ Budget limit:"), reason)
}

// RateLimitWarning renders a rate-limit denial.
func (r *Renderer) RateLimitWarning(verbose bool) {
	if !r.level.Allows(models.LogErrors) {
		return
	}
	if !verbose {
		r.printf("Rate limited: Too many calls. Try again later.")
		return
	}
	r.printf("%s %s Too many calls. Try again later.", prefix(), styleYellow.Render("⚠ Rate limited:"))
}

// DryRun renders the dry-run notice instead of an external call.
func (r *Renderer) DryRun(prompt string, personaDef models.PersonaDefinition, contextStr string, verbose bool) {
	if !r.level.Allows(models.LogInfo) {
		return
	}
	if !verbose {
		r.printf("[DRY RUN] %s: %s", personaDef.Label, prompt)
		return
	}

	r.printf("")
	r.printf("%s %s %s %s", prefix(), styleMagenta.Render("DRY RUN"), personaDef.Icon, personaDef.Label)
	r.printf("%s ├─ %s %s", prefix(), styleDim.Render("Persona:"), personaDef.Name)
	r.printf("%s ├─ %s %s", prefix(), styleDim.Render("Prompt:"), prompt)
	if contextStr != "" {
		r.printf("%s ├─ %s", prefix(), styleDim.Render("Context:"))
		lines := strings.Split(contextStr, "\n")
		if len(lines) > 5 {
			lines = lines[:5]
		}
		for _, line := range lines {
			r.printf("%s │  %s", prefix(), styleDim.Render(line))
		}
	}
	r.printf("%s └─ %s", prefix(), styleDim.Render("(No API call made)"))
	r.printf("")
}
