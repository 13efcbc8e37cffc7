// Package embedding bridges Genkit embedders to the plain vector interface
// the retrieval components consume.
package embedding

import (
	"context"
	"fmt"

	"github.com/firebase/genkit/go/ai"
)

// Client wraps a Genkit ai.Embedder behind a batch text-to-vector call.
type Client struct {
	embedder ai.Embedder
}

// NewClient creates an embedding Client.
func NewClient(embedder ai.Embedder) (*Client, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	return &Client{embedder: embedder}, nil
}

// Embed converts texts to fixed-length vectors, one per input, same order.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	docs := make([]*ai.Document, len(texts))
	for i, text := range texts {
		docs[i] = ai.DocumentFromText(text, nil)
	}

	resp, err := c.embedder.Embed(ctx, &ai.EmbedRequest{Input: docs})
	if err != nil {
		return nil, fmt.Errorf("embed failed: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(resp.Embeddings), len(texts))
	}

	vectors := make([][]float32, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		if len(emb.Embedding) == 0 {
			return nil, fmt.Errorf("empty embedding returned for text %d", i)
		}
		vectors[i] = emb.Embedding
	}
	return vectors, nil
}
