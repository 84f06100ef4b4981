package attach

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/consoleagent/consoleagent/pkg/models"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoad_Empty(t *testing.T) {
	parts, err := Load(nil)
	if err != nil {
		t.Fatalf("Load(nil) error = %v", err)
	}
	if parts != nil {
		t.Errorf("Load(nil) = %v, want nil", parts)
	}
}

func TestLoad_SniffsMIME(t *testing.T) {
	path := writeTemp(t, "notes.txt", "plain text content")

	parts, err := Load([]models.FileAttachment{{Path: path}})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(parts) != 1 {
		t.Fatalf("got %d parts, want 1", len(parts))
	}
	if parts[0].Name != "notes.txt" {
		t.Errorf("Name = %q", parts[0].Name)
	}
	if !strings.HasPrefix(parts[0].MIMEType, "text/plain") {
		t.Errorf("MIMEType = %q, want text/plain", parts[0].MIMEType)
	}
	if string(parts[0].Data) != "plain text content" {
		t.Errorf("Data = %q", parts[0].Data)
	}
}

func TestLoad_ExplicitOverride(t *testing.T) {
	path := writeTemp(t, "report.bin", "not really a pdf")

	parts, err := Load([]models.FileAttachment{{Path: path, MediaType: "application/pdf"}})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if parts[0].MIMEType != "application/pdf" {
		t.Errorf("MIMEType = %q, want explicit override", parts[0].MIMEType)
	}
}

func TestLoad_MissingFileFailsBatch(t *testing.T) {
	good := writeTemp(t, "ok.txt", "fine")

	_, err := Load([]models.FileAttachment{
		{Path: good},
		{Path: filepath.Join(t.TempDir(), "missing.txt")},
	})
	if err == nil {
		t.Fatal("Load() error = nil, want failure for missing file")
	}
}
