// internal/pipeline/store/applications.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ats-pipeline/internal/common/logger"
	"ats-pipeline/internal/models"
	"ats-pipeline/internal/pipeline/stage"

	"github.com/google/uuid"
)

var (
	ErrNotFound             = errors.New("APPLICATION_NOT_FOUND")
	ErrConflict             = errors.New("TRANSITION_CONFLICT")
	ErrPersistenceFailure   = errors.New("PERSISTENCE_FAILURE")
	ErrDuplicateApplication = errors.New("DUPLICATE_APPLICATION")
)

// ApplicationStore is the durable record store for applications. Stage
// mutation goes through CompareAndSetStage or Transition only, so concurrent
// writers serialize on the conditional update instead of an external lock.
type ApplicationStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewApplicationStore(db *sql.DB, log logger.Logger) *ApplicationStore {
	return &ApplicationStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "application-store"}),
	}
}

// Create inserts a new application at the Applied stage. Duplicate
// (candidate, job) pairs are rejected.
func (s *ApplicationStore) Create(ctx context.Context, jobID, candidateID string) (*models.Application, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM applications
			WHERE candidate_id = $1 AND job_id = $2
		)`, candidateID, jobID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("%w: duplicate check failed: %v", ErrPersistenceFailure, err)
	}
	if exists {
		return nil, fmt.Errorf("%w: application already exists for candidate %s and job %s",
			ErrDuplicateApplication, candidateID, jobID)
	}

	now := time.Now().UTC()
	app := &models.Application{
		ID:          uuid.New().String(),
		JobID:       jobID,
		CandidateID: candidateID,
		Stage:       stage.Applied.String(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO applications (id, job_id, candidate_id, stage, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)`,
		app.ID, app.JobID, app.CandidateID, app.Stage, now,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: insert failed: %v", ErrPersistenceFailure, err)
	}

	s.logger.Info("application created", map[string]interface{}{
		"applicationId": app.ID,
		"jobId":         jobID,
		"candidateId":   candidateID,
	})

	return app, nil
}

// Get loads an application by id.
func (s *ApplicationStore) Get(ctx context.Context, id string) (*models.Application, error) {
	var app models.Application
	err := s.db.QueryRowContext(ctx, `
		SELECT id, job_id, candidate_id, stage, created_at, updated_at
		FROM applications WHERE id = $1`, id).
		Scan(&app.ID, &app.JobID, &app.CandidateID, &app.Stage, &app.CreatedAt, &app.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: application %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get failed: %v", ErrPersistenceFailure, err)
	}
	return &app, nil
}

// CompareAndSetStage updates the stage only when the current value still
// matches expected. It returns false when a concurrent transition won the
// race; the caller must re-derive its target from fresh state, never blindly
// overwrite.
func (s *ApplicationStore) CompareAndSetStage(ctx context.Context, id string, expected, next stage.Stage) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE applications SET stage = $1, updated_at = $2
		WHERE id = $3 AND stage = $4`,
		next.String(), time.Now().UTC(), id, expected.String(),
	)
	if err != nil {
		return false, fmt.Errorf("%w: conditional update failed: %v", ErrPersistenceFailure, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: rows affected: %v", ErrPersistenceFailure, err)
	}
	return n > 0, nil
}

// Transition applies the stage change and appends the audit record as one
// transaction: both become durably visible or neither does. The conditional
// update doubles as the concurrency gate, so the second of two racing
// requests rolls back with ErrConflict.
func (s *ApplicationStore) Transition(ctx context.Context, id string, from, to stage.Stage, actorID string) (*models.Application, *models.TransitionRecord, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: begin failed: %v", ErrPersistenceFailure, err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	app := &models.Application{
		ID:        id,
		Stage:     to.String(),
		UpdatedAt: now,
	}
	err = tx.QueryRowContext(ctx, `
		UPDATE applications SET stage = $1, updated_at = $2
		WHERE id = $3 AND stage = $4
		RETURNING job_id, candidate_id, created_at`,
		to.String(), now, id, from.String(),
	).Scan(&app.JobID, &app.CandidateID, &app.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("%w: application %s no longer at stage %s", ErrConflict, id, from)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w: stage update failed: %v", ErrPersistenceFailure, err)
	}

	rec := &models.TransitionRecord{
		ID:            uuid.New().String(),
		ApplicationID: id,
		FromStage:     from.String(),
		ToStage:       to.String(),
		ActorID:       actorID,
		ChangedAt:     now,
	}
	if err := appendTransitionTx(ctx, tx, rec); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("%w: commit failed: %v", ErrPersistenceFailure, err)
	}

	s.logger.Info("transition committed", map[string]interface{}{
		"applicationId": id,
		"fromStage":     from.String(),
		"toStage":       to.String(),
		"actorId":       actorID,
	})

	return app, rec, nil
}

// ListByJob returns applications for a job, optionally filtered by stage.
func (s *ApplicationStore) ListByJob(ctx context.Context, jobID string, stageFilter string) ([]models.Application, error) {
	query := `
		SELECT id, job_id, candidate_id, stage, created_at, updated_at
		FROM applications WHERE job_id = $1`
	args := []interface{}{jobID}
	if stageFilter != "" {
		query += ` AND stage = $2`
		args = append(args, stageFilter)
	}
	query += ` ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: list by job failed: %v", ErrPersistenceFailure, err)
	}
	defer rows.Close()
	return scanApplications(rows)
}

// ListByCandidate returns all applications submitted by a candidate.
func (s *ApplicationStore) ListByCandidate(ctx context.Context, candidateID string) ([]models.Application, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, job_id, candidate_id, stage, created_at, updated_at
		FROM applications WHERE candidate_id = $1 ORDER BY created_at`, candidateID)
	if err != nil {
		return nil, fmt.Errorf("%w: list by candidate failed: %v", ErrPersistenceFailure, err)
	}
	defer rows.Close()
	return scanApplications(rows)
}

func scanApplications(rows *sql.Rows) ([]models.Application, error) {
	var apps []models.Application
	for rows.Next() {
		var app models.Application
		if err := rows.Scan(&app.ID, &app.JobID, &app.CandidateID, &app.Stage, &app.CreatedAt, &app.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan failed: %v", ErrPersistenceFailure, err)
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: rows: %v", ErrPersistenceFailure, err)
	}
	return apps, nil
}
