// Package source captures the source file of the code that invoked the
// agent, so the model sees the surrounding program as context without the
// caller wiring it up manually.
package source

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// maxFileSize caps how much of a caller file is read. Larger files are
// truncated.
const maxFileSize = 100_000

// internalPatterns mark stack frames that belong to this module or the
// runtime; the first frame not matching any of these is the caller.
var internalPatterns = []string{
	"github.com/consoleagent/consoleagent/",
	"/runtime/",
	"runtime.",
	"testing.",
	"/libexec/src/",
	"/go/src/",
}

// Info describes the detected caller source file.
type Info struct {
	FilePath string
	FileName string
	Line     int
	Function string
	Content  string
}

// Capture walks the call stack and reads the first non-internal Go source
// file. Returns nil when no readable caller frame is found; capture is
// best-effort and never fails the call.
func Capture() *Info {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(2, pcs)
	if n == 0 {
		return nil
	}

	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if frame.File != "" && !isInternal(frame) && strings.HasSuffix(frame.File, ".go") {
			if info := read(frame); info != nil {
				return info
			}
		}
		if !more {
			return nil
		}
	}
}

func isInternal(frame runtime.Frame) bool {
	for _, p := range internalPatterns {
		if strings.Contains(frame.File, p) || strings.Contains(frame.Function, p) {
			return true
		}
	}
	return false
}

func read(frame runtime.Frame) *Info {
	data, err := os.ReadFile(frame.File)
	if err != nil {
		return nil
	}
	content := string(data)
	if len(content) > maxFileSize {
		content = content[:maxFileSize] + "\n... [truncated]"
	}
	return &Info{
		FilePath: frame.File,
		FileName: filepath.Base(frame.File),
		Line:     frame.Line,
		Function: frame.Function,
		Content:  content,
	}
}

// FormatForContext renders the captured file as a context block for the
// user message.
func (i *Info) FormatForContext() string {
	var b strings.Builder
	fmt.Fprintf(&b, "--- Caller Source: %s (line %d", i.FileName, i.Line)
	if i.Function != "" {
		fmt.Fprintf(&b, ", in %s", i.Function)
	}
	b.WriteString(") ---\n")
	b.WriteString(i.Content)
	if !strings.HasSuffix(i.Content, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("--- End Caller Source ---")
	return b.String()
}
