package corpus

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ludobot/ludo/internal/knowledge"
)

// Embedder converts texts to fixed-length vectors, one per input, in order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Syncer reconciles staged guidance entries into the vector store.
type Syncer interface {
	SyncGuidance(ctx context.Context, entries []knowledge.GuidanceEntry) error
}

// Synchronizer embeds the seed corpus and reconciles it into the guidance
// partition. It runs once at startup; the staged diff-and-merge in the store
// makes repeated runs no-ops for an unchanged seed.
type Synchronizer struct {
	embedder Embedder
	store    Syncer
	logger   *slog.Logger
}

// NewSynchronizer creates a corpus Synchronizer.
func NewSynchronizer(embedder Embedder, store Syncer, logger *slog.Logger) (*Synchronizer, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Synchronizer{embedder: embedder, store: store, logger: logger}, nil
}

// Sync loads the seed corpus from path (empty = embedded default), embeds
// the guidance texts, and reconciles the store's guidance partition.
//
// A malformed or unreadable seed degrades to a logged no-op: the existing
// partition is left as-is rather than wiped.
func (s *Synchronizer) Sync(ctx context.Context, path string) error {
	entries, err := Load(path)
	if err != nil {
		s.logger.Error("loading guidance seed, synchronization skipped", "error", err)
		return nil
	}

	// Embed the example-query concatenations, mirroring how the rules
	// ingestion path embeds its derived queries.
	texts := make([]string, len(entries))
	for i, e := range entries {
		texts[i] = e.Text()
	}

	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding guidance seed: %w", err)
	}
	if len(vectors) != len(entries) {
		return fmt.Errorf("embedder returned %d vectors for %d seed entries", len(vectors), len(entries))
	}

	staged := make([]knowledge.GuidanceEntry, len(entries))
	for i, e := range entries {
		staged[i] = knowledge.GuidanceEntry{
			Text:      e.Text(),
			Info:      e.Info(),
			Embedding: vectors[i],
		}
	}

	if err := s.store.SyncGuidance(ctx, staged); err != nil {
		return fmt.Errorf("synchronizing guidance partition: %w", err)
	}

	s.logger.Info("guidance seed synchronized", "entries", len(staged))
	return nil
}
