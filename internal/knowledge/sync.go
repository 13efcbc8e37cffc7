package knowledge

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"
)

// GuidanceEntry is one staged candidate for guidance synchronization.
// Text is the embedded example-query text, Info the guidance payload
// returned to generation ("Guidance for {topic}: ...").
type GuidanceEntry struct {
	Text      string
	Info      string
	Embedding []float32
}

// SyncGuidance reconciles the guidance partition with the staged seed
// entries using a staged diff-and-merge, keyed by info:
//
//  1. stage all candidates into a transaction-scoped temp table
//  2. delete guidance records whose info is not staged (stale seed entries)
//  3. update records whose info matches, refreshing text and embedding
//  4. insert staged entries whose text has no existing row
//
// The delete/update/insert sequence runs in one transaction so a crash
// mid-sync never leaves a half-updated partition. Rules records are never
// touched. Running twice on an unchanged seed is a no-op.
//
// An empty entries slice is treated as a failed/absent seed corpus and the
// synchronization is skipped rather than wiping the partition.
func (s *Store) SyncGuidance(ctx context.Context, entries []GuidanceEntry) error {
	if len(entries) == 0 {
		s.logger.Warn("empty guidance seed, skipping synchronization")
		return nil
	}
	for i, e := range entries {
		if len(e.Embedding) != VectorDimension {
			return fmt.Errorf("seed entry %d: embedding dimension %d, want %d",
				i, len(e.Embedding), VectorDimension)
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning sync transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			s.logger.Debug("sync transaction rollback", "error", rbErr)
		}
	}()

	_, err = tx.Exec(ctx,
		`CREATE TEMP TABLE staging_knowledge (
			topic     INT,
			text      TEXT,
			info      TEXT,
			embedding VECTOR(768)
		) ON COMMIT DROP`)
	if err != nil {
		return fmt.Errorf("creating staging table: %w", err)
	}

	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(
			`INSERT INTO staging_knowledge (topic, text, info, embedding) VALUES ($1, $2, $3, $4)`,
			int32(TopicGuidance), e.Text, e.Info, pgvector.NewVector(e.Embedding),
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("staging guidance entries: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM knowledge
		 WHERE topic = $1
		   AND info NOT IN (SELECT info FROM staging_knowledge)`,
		int32(TopicGuidance),
	); err != nil {
		return fmt.Errorf("deleting stale guidance records: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE knowledge
		 SET text = staging.text,
		     embedding = staging.embedding
		 FROM staging_knowledge staging
		 WHERE knowledge.topic = $1
		   AND knowledge.info = staging.info`,
		int32(TopicGuidance),
	); err != nil {
		return fmt.Errorf("updating matched guidance records: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO knowledge (topic, text, info, embedding)
		 SELECT staging.topic, staging.text, staging.info, staging.embedding
		 FROM staging_knowledge staging
		 LEFT JOIN knowledge ON knowledge.topic = $1 AND knowledge.text = staging.text
		 WHERE knowledge.id IS NULL`,
		int32(TopicGuidance),
	); err != nil {
		return fmt.Errorf("inserting new guidance records: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing guidance sync: %w", err)
	}

	s.logger.Info("guidance corpus synchronized", "seed_entries", len(entries))
	return nil
}
