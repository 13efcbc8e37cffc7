package generate

import (
	"strings"
	"testing"
)

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("guidance", "Guidance for Payments: open the wallet tab.")

	if !strings.Contains(prompt, "Below is the guidance retrieved from the knowledge base") {
		t.Errorf("prompt missing topic label:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Guidance for Payments: open the wallet tab.") {
		t.Errorf("prompt missing retrieved text:\n%s", prompt)
	}
	if !strings.Contains(prompt, "strictly based on and using the above information") {
		t.Errorf("prompt missing grounding instruction:\n%s", prompt)
	}
}

func TestNewClient(t *testing.T) {
	if _, err := NewClient(nil, "googleai/gemini-2.5-flash", nil); err == nil {
		t.Error("NewClient(nil genkit) should fail")
	}
}
