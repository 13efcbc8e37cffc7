// Package knowledge implements the vector corpus backing the assistant:
// topic-partitioned knowledge records with pgvector nearest-neighbor lookup,
// the known-game registry, and the guidance corpus synchronizer.
//
// The package exclusively owns persistence of knowledge records and game
// names; no other component touches the underlying pool.
package knowledge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// uniqueViolation is the PostgreSQL error code for unique constraint breaches.
const uniqueViolation = "23505"

// Store manages the knowledge corpus and game registry in PostgreSQL.
//
// Store is safe for concurrent use by multiple goroutines; reads interleave
// with the append-only ingestion path without further locking because every
// statement runs on a pooled connection.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewStore creates a knowledge Store.
func NewStore(pool *pgxpool.Pool, logger *slog.Logger) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{pool: pool, logger: logger}, nil
}

// Upload appends one knowledge record. No uniqueness is enforced at this
// layer; the guidance synchronizer dedups its own partition.
func (s *Store) Upload(ctx context.Context, text, info string, embedding []float32, topic Topic) error {
	if len(embedding) != VectorDimension {
		return fmt.Errorf("embedding dimension %d, want %d", len(embedding), VectorDimension)
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO knowledge (topic, text, info, embedding) VALUES ($1, $2, $3, $4)`,
		int32(topic), text, info, pgvector.NewVector(embedding),
	)
	if err != nil {
		return fmt.Errorf("uploading knowledge record: %w", err)
	}

	s.logger.Debug("uploaded knowledge record", "topic", topic.Label(), "info_length", len(info))
	return nil
}

// ClosestInfo returns the info field of the single nearest record by cosine
// similarity, across all topics. Returns ErrNoRecords when the corpus is
// empty. Ties break on lowest record id for reproducibility.
func (s *Store) ClosestInfo(ctx context.Context, embedding []float32) (string, error) {
	var info string
	err := s.pool.QueryRow(ctx,
		`SELECT info
		 FROM knowledge
		 ORDER BY embedding <=> $1, id
		 LIMIT 1`,
		pgvector.NewVector(embedding),
	).Scan(&info)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNoRecords
	}
	if err != nil {
		return "", fmt.Errorf("finding closest info: %w", err)
	}
	return info, nil
}

// ClassifyTopic maps a query embedding to a topic label via the nearest
// record. Returns LabelUnknown when the corpus is empty or the best
// similarity does not exceed SimilarityThreshold.
func (s *Store) ClassifyTopic(ctx context.Context, embedding []float32) (string, error) {
	var (
		topic      int32
		similarity float64
	)
	err := s.pool.QueryRow(ctx,
		`SELECT topic, 1 - (embedding <=> $1) AS similarity
		 FROM knowledge
		 ORDER BY embedding <=> $1, id
		 LIMIT 1`,
		pgvector.NewVector(embedding),
	).Scan(&topic, &similarity)
	if errors.Is(err, pgx.ErrNoRows) {
		return LabelUnknown, nil
	}
	if err != nil {
		return LabelUnknown, fmt.Errorf("classifying topic: %w", err)
	}

	label := decideTopic(Topic(topic), similarity)
	s.logger.Debug("classified query topic",
		"label", label, "similarity", similarity)
	return label, nil
}

// decideTopic applies the acceptance threshold to a nearest-neighbor hit.
// Similarity must be strictly greater than the threshold to accept.
func decideTopic(topic Topic, similarity float64) string {
	if similarity > SimilarityThreshold {
		return topic.Label()
	}
	return LabelUnknown
}

// CountByTopic returns the number of records in one topic partition.
func (s *Store) CountByTopic(ctx context.Context, topic Topic) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM knowledge WHERE topic = $1`, int32(topic),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting topic %d records: %w", topic, err)
	}
	return count, nil
}

// ListGameNames returns all registered game names. Order is unspecified.
func (s *Store) ListGameNames(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT name FROM game_names`)
	if err != nil {
		return nil, fmt.Errorf("listing game names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning game name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading game names: %w", err)
	}
	return names, nil
}

// RegisterGameName records a known game. Name identity is case-sensitive and
// unique at the storage layer; registering an existing name returns
// ErrDuplicateGame.
func (s *Store) RegisterGameName(ctx context.Context, name string) error {
	if name == "" {
		return fmt.Errorf("game name is required")
	}

	_, err := s.pool.Exec(ctx, `INSERT INTO game_names (name) VALUES ($1)`, name)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %q", ErrDuplicateGame, name)
		}
		return fmt.Errorf("registering game name %q: %w", name, err)
	}

	s.logger.Info("registered game", "name", name)
	return nil
}
