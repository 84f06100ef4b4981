package provider

import (
	"testing"

	"github.com/consoleagent/consoleagent/pkg/models"
)

func TestNativeTools_CodeExecution(t *testing.T) {
	tools := nativeTools([]models.ToolSelector{{Type: models.ToolCodeExecution}})
	if len(tools) != 1 {
		t.Fatalf("got %d tools, want 1", len(tools))
	}
	if tools[0].CodeExecution == nil {
		t.Error("CodeExecution not set")
	}
}

func TestNativeTools_UnsupportedDegrade(t *testing.T) {
	// google_search and url_context have no representation in this SDK,
	// and file_analysis rides on multimodal parts. None should produce a
	// tool declaration or an error.
	tools := nativeTools([]models.ToolSelector{
		{Type: models.ToolGoogleSearch},
		{Type: models.ToolURLContext},
		{Type: models.ToolFileAnalysis},
		{Type: models.ToolName("made_up")},
	})
	if len(tools) != 0 {
		t.Fatalf("got %d tools, want 0: %v", len(tools), tools)
	}
}
