// internal/pipeline/store/history.go
package store

import (
	"context"
	"database/sql"
	"fmt"

	"ats-pipeline/internal/common/logger"
	"ats-pipeline/internal/models"
)

// HistoryStore reads the append-only transition ledger. Appends happen only
// inside ApplicationStore.Transition's transaction; the ledger itself has no
// dedup logic.
type HistoryStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewHistoryStore(db *sql.DB, log logger.Logger) *HistoryStore {
	return &HistoryStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "history-store"}),
	}
}

// appendTransitionTx inserts one audit record within the caller's
// transaction so the stage update and the ledger entry commit together.
func appendTransitionTx(ctx context.Context, tx *sql.Tx, rec *models.TransitionRecord) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO application_history (id, application_id, from_stage, to_stage, actor_id, changed_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.ID, rec.ApplicationID, rec.FromStage, rec.ToStage, rec.ActorID, rec.ChangedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: history insert failed: %v", ErrPersistenceFailure, err)
	}
	return nil
}

// ListFor returns every transition of an application in commit order. The
// final entry's to_stage always equals the application's current stage.
func (s *HistoryStore) ListFor(ctx context.Context, applicationID string) ([]models.TransitionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, application_id, from_stage, to_stage, actor_id, changed_at
		FROM application_history
		WHERE application_id = $1
		ORDER BY seq`, applicationID)
	if err != nil {
		return nil, fmt.Errorf("%w: history query failed: %v", ErrPersistenceFailure, err)
	}
	defer rows.Close()

	var records []models.TransitionRecord
	for rows.Next() {
		var rec models.TransitionRecord
		if err := rows.Scan(&rec.ID, &rec.ApplicationID, &rec.FromStage, &rec.ToStage, &rec.ActorID, &rec.ChangedAt); err != nil {
			return nil, fmt.Errorf("%w: history scan failed: %v", ErrPersistenceFailure, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: history rows: %v", ErrPersistenceFailure, err)
	}
	return records, nil
}
