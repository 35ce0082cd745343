package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/voxai/scrub/internal/aggregate"
)

// ArchiveRecords writes one row per conversation record inside a single
// transaction. sourceFile is the input transcript the records came from.
func (s *Store) ArchiveRecords(ctx context.Context, runID uuid.UUID, sourceFile string, recs []aggregate.Record) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, rec := range recs {
		dialogue, err := json.Marshal(rec.Dialogue)
		if err != nil {
			return fmt.Errorf("marshal dialogue: %w", err)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO conversations (id, run_id, source_file, source, peer, chat_date, dialogue, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, now())`,
			uuid.New(), runID, sourceFile, rec.Meta.Source, rec.Meta.Peer, rec.Meta.Date, dialogue,
		)
		if err != nil {
			return fmt.Errorf("insert conversation: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
