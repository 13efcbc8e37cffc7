// Package ingest turns platform game-added events into rules records in the
// knowledge corpus.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ludobot/ludo/internal/knowledge"
)

// GameRule is one rule of a game as announced by the platform.
type GameRule struct {
	Rule        string `json:"rule"`
	Description string `json:"description"`
}

// GameAddedEvent announces a newly published game. Only the name and rules
// feed the corpus; the display fields ride along for logging.
type GameAddedEvent struct {
	GameName              string     `json:"gameName"`
	Description           string     `json:"description,omitempty"`
	Price                 float64    `json:"price,omitempty"`
	Currency              string     `json:"currency,omitempty"`
	MaxLobbyPlayersAmount int        `json:"maxLobbyPlayersAmount,omitempty"`
	FrontendURL           string     `json:"frontendUrl,omitempty"`
	BackendAPIURL         string     `json:"backendApiUrl,omitempty"`
	GameImageURL          string     `json:"gameImageUrl,omitempty"`
	Rules                 []GameRule `json:"rules"`
}

// ErrMissingGameName rejects events without a game name.
var ErrMissingGameName = errors.New("game added event has no game name")

// ExampleQueries returns the canonical questions players ask about a game.
// Their concatenation is what gets embedded for the game's rules record, so
// rules questions about the game land near it in vector space.
func ExampleQueries(gameName string) []string {
	return []string{
		fmt.Sprintf("How do I play %s?", gameName),
		fmt.Sprintf("What are the rules for %s?", gameName),
		fmt.Sprintf("Can you explain the rules of %s?", gameName),
		fmt.Sprintf("How do I start playing %s?", gameName),
		fmt.Sprintf("What is the objective of %s?", gameName),
	}
}

// Uploader is the slice of the vector store the handler writes.
type Uploader interface {
	Upload(ctx context.Context, text, info string, embedding []float32, topic knowledge.Topic) error
	RegisterGameName(ctx context.Context, name string) error
}

// Embedder turns texts into fixed-length vectors.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Handler ingests game-added events into the rules partition.
type Handler struct {
	store    Uploader
	embedder Embedder
	logger   *slog.Logger
}

// NewHandler creates a game-added event handler.
func NewHandler(store Uploader, embedder Embedder, logger *slog.Logger) (*Handler, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	if embedder == nil {
		return nil, errors.New("embedder is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{store: store, embedder: embedder, logger: logger}, nil
}

// Process parses one raw event payload and writes the game's rules record
// and registry entry. A duplicate game name is logged and ignored so
// redelivered events stay harmless.
func (h *Handler) Process(ctx context.Context, body []byte) error {
	var event GameAddedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("parsing game added event: %w", err)
	}
	if event.GameName == "" {
		return ErrMissingGameName
	}

	text := strings.Join(ExampleQueries(event.GameName), " ")
	info := ruleText(event)

	vectors, err := h.embedder.Embed(ctx, []string{text})
	if err != nil {
		return fmt.Errorf("embedding rules for %s: %w", event.GameName, err)
	}
	if len(vectors) == 0 {
		return fmt.Errorf("embedding rules for %s: no vector returned", event.GameName)
	}

	if err := h.store.Upload(ctx, text, info, vectors[0], knowledge.TopicRules); err != nil {
		return fmt.Errorf("uploading rules for %s: %w", event.GameName, err)
	}

	if err := h.store.RegisterGameName(ctx, event.GameName); err != nil {
		if errors.Is(err, knowledge.ErrDuplicateGame) {
			h.logger.Warn("game already registered", "game", event.GameName)
			return nil
		}
		return fmt.Errorf("registering game %s: %w", event.GameName, err)
	}

	h.logger.Info("new game rules added", "game", event.GameName)
	return nil
}

// ruleText renders the human-readable rules payload stored in the record's
// info column and handed to the generation step.
func ruleText(event GameAddedEvent) string {
	parts := make([]string, 0, len(event.Rules))
	for _, rule := range event.Rules {
		parts = append(parts, strings.TrimSpace(rule.Rule+" "+rule.Description))
	}
	return fmt.Sprintf("Rules for %s: %s", event.GameName, strings.Join(parts, " "))
}
