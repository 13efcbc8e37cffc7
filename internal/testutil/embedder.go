package testutil

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
	"strings"
	"sync"
)

// Embedder is a deterministic embedding stub.
//
// Each text maps to a normalized bag-of-words vector: every lowercased token
// hashes to one of the 768 dimensions. Texts sharing tokens therefore get
// high cosine similarity, identical texts similarity 1, and disjoint texts
// similarity near 0, enough structure to exercise classification and
// retrieval without a real model.
//
// Exact vectors can be pinned per text with Register.
type Embedder struct {
	mu        sync.Mutex
	overrides map[string][]float32
	callCount int
}

// NewEmbedder creates a deterministic embedding stub.
func NewEmbedder() *Embedder {
	return &Embedder{overrides: make(map[string][]float32)}
}

// Register pins an exact vector for a text, bypassing the hash embedding.
func (e *Embedder) Register(text string, vec []float32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.overrides[text] = vec
}

// CallCount reports how many Embed calls were made.
func (e *Embedder) CallCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.callCount
}

// Embed returns one vector per input text, in order.
func (e *Embedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	e.callCount++
	overrides := make(map[string][]float32, len(e.overrides))
	for k, v := range e.overrides {
		overrides[k] = v
	}
	e.mu.Unlock()

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		if vec, ok := overrides[text]; ok {
			vectors[i] = vec
			continue
		}
		vectors[i] = HashVector(text)
	}
	return vectors, nil
}

// HashVector builds the deterministic bag-of-words vector for a text.
func HashVector(text string) []float32 {
	vec := make([]float32, 768)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		token = strings.Trim(token, ".,!?:;\"'")
		if token == "" {
			continue
		}
		sum := sha256.Sum256([]byte(token))
		idx := binary.BigEndian.Uint32(sum[:4]) % 768
		vec[idx]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		vec[0] = 1
		return vec
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= scale
	}
	return vec
}

// BasisVector returns a 768-dim unit vector along one axis. Useful for
// constructing corpora with exactly known pairwise similarities.
func BasisVector(axis int) []float32 {
	vec := make([]float32, 768)
	vec[axis%768] = 1
	return vec
}

// BlendVectors returns the normalized weighted sum of two unit vectors,
// giving a vector whose cosine similarity to a is wa/sqrt(wa²+wb²) when a
// and b are orthogonal.
func BlendVectors(a, b []float32, wa, wb float64) []float32 {
	vec := make([]float32, len(a))
	var norm float64
	for i := range a {
		v := wa*float64(a[i]) + wb*float64(b[i])
		vec[i] = float32(v)
		norm += v * v
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= scale
	}
	return vec
}
