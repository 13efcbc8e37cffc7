package corpus

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEntry_Text(t *testing.T) {
	e := Entry{
		ExampleQueries: []string{"How do I get started?", "Where do I begin?"},
	}
	want := "How do I get started? Where do I begin?"
	if got := e.Text(); got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
}

func TestEntry_Info(t *testing.T) {
	e := Entry{
		Topic: "Getting Started",
		Steps: []string{"Click Play", "Choose a game"},
	}
	want := "Guidance for Getting Started: Click Play Choose a game"
	if got := e.Info(); got != want {
		t.Errorf("Info() = %q, want %q", got, want)
	}
}

func TestLoad_EmbeddedDefault(t *testing.T) {
	entries, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") = %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("embedded seed corpus is empty")
	}
	for _, e := range entries {
		if e.Topic == "" {
			t.Error("embedded seed entry with empty topic")
		}
		if len(e.ExampleQueries) == 0 {
			t.Errorf("embedded seed entry %q has no example queries", e.Topic)
		}
	}
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seed.json")
	content := `{"guidance": [{"topic": "Refunds", "steps": ["Open orders", "Press refund"], "example_queries": ["How do I get a refund?"]}]}`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing seed file: %v", err)
	}

	entries, err := Load(path)
	if err != nil {
		t.Fatalf("Load(%q) = %v", path, err)
	}
	if len(entries) != 1 {
		t.Fatalf("Load returned %d entries, want 1", len(entries))
	}
	if entries[0].Topic != "Refunds" {
		t.Errorf("topic = %q, want Refunds", entries[0].Topic)
	}
	if !strings.HasPrefix(entries[0].Info(), "Guidance for Refunds: ") {
		t.Errorf("Info() = %q, want Guidance for Refunds prefix", entries[0].Info())
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "malformed json", content: `{"guidance": [`},
		{name: "missing topic", content: `{"guidance": [{"steps": ["a"], "example_queries": ["q"]}]}`},
		{name: "missing example queries", content: `{"guidance": [{"topic": "T", "steps": ["a"]}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "seed.json")
			if err := os.WriteFile(path, []byte(tt.content), 0o600); err != nil {
				t.Fatalf("writing seed file: %v", err)
			}
			if _, err := Load(path); err == nil {
				t.Error("Load accepted invalid seed")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("Load accepted a missing file")
	}
}
