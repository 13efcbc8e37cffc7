package ground

import (
	"log/slog"

	"github.com/jdkato/prose/v2"
)

// ProseRecognizer recognizes named entities with the prose NLP pipeline.
// Recognition failures degrade to no entities; the token-set union in
// Entities still covers single-word game names.
type ProseRecognizer struct {
	logger *slog.Logger
}

// NewProseRecognizer creates a prose-backed Recognizer.
func NewProseRecognizer(logger *slog.Logger) *ProseRecognizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProseRecognizer{logger: logger}
}

// Recognize returns the entity spans found in text.
func (r *ProseRecognizer) Recognize(text string) []string {
	doc, err := prose.NewDocument(text, prose.WithExtraction(true))
	if err != nil {
		r.logger.Warn("entity recognition failed", "error", err)
		return nil
	}

	entities := doc.Entities()
	spans := make([]string, 0, len(entities))
	for _, ent := range entities {
		spans = append(spans, ent.Text)
	}
	return spans
}
