// Package pipeline sequences the retrieval-and-grounding steps that turn a
// user query into a grounded answer: embed, classify the topic, retrieve the
// closest knowledge, guard rules questions against unindexed games, and hand
// the assembled prompt to the language model.
package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ludobot/ludo/internal/generate"
	"github.com/ludobot/ludo/internal/ground"
	"github.com/ludobot/ludo/internal/knowledge"
)

const (
	// refusalPlatform is returned when the query falls outside the corpus:
	// unknown topic, empty store, or a failed retrieval.
	refusalPlatform = "Sorry, I can only answer questions about games on this platform or platform guidance."

	// refusalGame is returned for rules questions that mention no game the
	// registry knows about.
	refusalGame = "Sorry, I do not know anything about this game. I am a chatbot that can only utilize the information from my knowledge base."
)

// Store is the slice of the vector store the pipeline reads.
type Store interface {
	ClassifyTopic(ctx context.Context, embedding []float32) (string, error)
	ClosestInfo(ctx context.Context, embedding []float32) (string, error)
	ListGameNames(ctx context.Context) ([]string, error)
}

// Embedder turns texts into fixed-length vectors.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator produces the final answer text. Failures are data: the returned
// string is always presentable to the user.
type Generator interface {
	Generate(ctx context.Context, prompt, query string) string
}

// Pipeline answers queries against the knowledge corpus.
type Pipeline struct {
	store      Store
	embedder   Embedder
	generator  Generator
	recognizer ground.Recognizer
	logger     *slog.Logger
}

// New creates an answer pipeline. The recognizer may be nil, in which case
// the grounding guard falls back to the query's token set.
func New(store Store, embedder Embedder, generator Generator, recognizer ground.Recognizer, logger *slog.Logger) (*Pipeline, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	if embedder == nil {
		return nil, errors.New("embedder is required")
	}
	if generator == nil {
		return nil, errors.New("generator is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		store:      store,
		embedder:   embedder,
		generator:  generator,
		recognizer: recognizer,
		logger:     logger,
	}, nil
}

// Answer runs the full pipeline for one query. It never fails for normal
// operation: connectivity problems are logged and degrade to a refusal, and
// generation failures come back as the generator's own fallback text.
func (p *Pipeline) Answer(ctx context.Context, query string) string {
	vectors, err := p.embedder.Embed(ctx, []string{query})
	if err != nil || len(vectors) == 0 {
		p.logger.Error("embedding query failed", "error", err)
		return refusalPlatform
	}
	embedding := vectors[0]

	topic, err := p.store.ClassifyTopic(ctx, embedding)
	if err != nil {
		p.logger.Error("topic classification failed", "error", err)
		topic = knowledge.LabelUnknown
	}

	info, err := p.store.ClosestInfo(ctx, embedding)
	if err != nil {
		if !errors.Is(err, knowledge.ErrNoRecords) {
			p.logger.Error("retrieval failed", "error", err)
		}
		info = ""
	}

	if info == "" || topic == knowledge.LabelUnknown {
		p.logger.Info("refusing off-corpus query", "topic", topic)
		return refusalPlatform
	}

	if topic == knowledge.LabelRules {
		known, err := p.store.ListGameNames(ctx)
		if err != nil {
			p.logger.Error("listing game names failed", "error", err)
			known = nil
		}
		entities := ground.Entities(query, p.recognizer)
		if ground.IsUnknownGame(entities, known) {
			p.logger.Info("refusing query about unindexed game")
			return refusalGame
		}
	}

	prompt := generate.BuildPrompt(topic, info)
	return p.generator.Generate(ctx, prompt, query)
}
