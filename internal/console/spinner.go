package console

import (
	"fmt"
	"time"

	"github.com/consoleagent/consoleagent/pkg/models"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner is the in-flight indicator shown while the provider call runs.
// It animates only on a TTY; elsewhere Stop still prints the completion
// line in verbose mode.
type Spinner struct {
	r       *Renderer
	text    string
	verbose bool
	done    chan struct{}
	stopped chan struct{}
}

// StartSpinner begins the indicator for a call. Returns nil when output is
// suppressed (quiet mode or log level below info).
func (r *Renderer) StartSpinner(personaDef models.PersonaDefinition, prompt string, verbose bool) *Spinner {
	if !r.level.Allows(models.LogInfo) || !verbose {
		return nil
	}

	truncated := prompt
	if len([]rune(prompt)) > 60 {
		truncated = string([]rune(prompt)[:57]) + "..."
	}

	s := &Spinner{
		r:       r,
		text:    fmt.Sprintf("%s %s... %s", personaDef.Icon, personaDef.Label, styleDim.Render(truncated)),
		verbose: verbose,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}

	if !r.isTTY {
		close(s.stopped)
		return s
	}

	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()
		i := 0
		for {
			select {
			case <-s.done:
				// clear the animation line
				fmt.Fprint(r.out, "\r\033[K")
				return
			case <-ticker.C:
				fmt.Fprintf(r.out, "\r%s %s", styleCyan.Render(spinnerFrames[i%len(spinnerFrames)]), s.text)
				i++
			}
		}
	}()
	return s
}

// Stop ends the animation and prints the completion line.
func (s *Spinner) Stop(success bool) {
	if s == nil {
		return
	}
	select {
	case <-s.done:
	default:
		close(s.done)
	}
	<-s.stopped

	if s.verbose {
		icon := styleRed.Render("✗")
		if success {
			icon = styleGreen.Render("✓")
		}
		s.r.printf("%s %s %s", prefix(), icon, s.text)
	}
}
