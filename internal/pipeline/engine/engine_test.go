// internal/pipeline/engine/engine_test.go
package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "ats-pipeline/internal/common/errors"
	"ats-pipeline/internal/common/logger"
	"ats-pipeline/internal/models"
	"ats-pipeline/internal/pipeline/store"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

// captureQueue records enqueued jobs; full simulates a saturated queue.
type captureQueue struct {
	jobs []models.NotificationJob
	full bool
}

func (q *captureQueue) TryEnqueue(job models.NotificationJob) bool {
	if q.full {
		return false
	}
	q.jobs = append(q.jobs, job)
	return true
}

func newTestEngine(t *testing.T) (*Engine, sqlmock.Sqlmock, *captureQueue) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := logger.NewTestLogger(t)
	queue := &captureQueue{}
	apps := store.NewApplicationStore(db, log)
	return New(apps, queue, nil, log), mock, queue
}

func expectGet(mock sqlmock.Sqlmock, id, currentStage string) {
	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT id, job_id, candidate_id, stage, created_at, updated_at`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "job_id", "candidate_id", "stage", "created_at", "updated_at"}).
			AddRow(id, "job-001", "candidate-001", currentStage, now, now))
}

func expectTransition(mock sqlmock.Sqlmock, id, from, to string) {
	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE applications SET stage`).
		WithArgs(to, sqlmock.AnyArg(), id, from).
		WillReturnRows(sqlmock.NewRows([]string{"job_id", "candidate_id", "created_at"}).
			AddRow("job-001", "candidate-001", time.Now().UTC()))
	mock.ExpectExec(`INSERT INTO application_history`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
}

func TestRequestTransition_Success(t *testing.T) {
	eng, mock, queue := newTestEngine(t)

	expectGet(mock, "app-001", "Applied")
	expectTransition(mock, "app-001", "Applied", "Screening")

	app, err := eng.RequestTransition(context.Background(), "app-001", "Screening", "recruiter-001")

	assert.NoError(t, err)
	assert.Equal(t, "Screening", app.Stage)
	assert.Len(t, queue.jobs, 1)
	assert.Equal(t, "candidate-001", queue.jobs[0].RecipientID)
	assert.Equal(t, models.PriorityNormal, queue.jobs[0].Priority)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestTransition_TerminalMovePicksHighPriority(t *testing.T) {
	eng, mock, queue := newTestEngine(t)

	expectGet(mock, "app-001", "Offer")
	expectTransition(mock, "app-001", "Offer", "Hired")

	app, err := eng.RequestTransition(context.Background(), "app-001", "Hired", "recruiter-001")

	assert.NoError(t, err)
	assert.Equal(t, "Hired", app.Stage)
	assert.Len(t, queue.jobs, 1)
	assert.Equal(t, models.PriorityHigh, queue.jobs[0].Priority)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestTransition_IllegalMoveFailsBeforeWrite(t *testing.T) {
	eng, mock, queue := newTestEngine(t)

	// Skipping stages is rejected after the read, before any write.
	expectGet(mock, "app-001", "Applied")

	app, err := eng.RequestTransition(context.Background(), "app-001", "Offer", "recruiter-001")

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidTransition))
	assert.False(t, apperrors.IsRetryable(err))
	assert.Nil(t, app)
	assert.Empty(t, queue.jobs)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestTransition_BackwardMoveRejected(t *testing.T) {
	eng, mock, queue := newTestEngine(t)

	expectGet(mock, "app-001", "Interview")

	app, err := eng.RequestTransition(context.Background(), "app-001", "Screening", "recruiter-001")

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidTransition))
	assert.Nil(t, app)
	assert.Empty(t, queue.jobs)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestTransition_SelfMoveRejected(t *testing.T) {
	eng, mock, queue := newTestEngine(t)

	expectGet(mock, "app-001", "Screening")

	app, err := eng.RequestTransition(context.Background(), "app-001", "Screening", "recruiter-001")

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidTransition))
	assert.Nil(t, app)
	assert.Empty(t, queue.jobs)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestTransition_TerminalStageHasNoMoves(t *testing.T) {
	eng, mock, queue := newTestEngine(t)

	expectGet(mock, "app-001", "Hired")

	app, err := eng.RequestTransition(context.Background(), "app-001", "Rejected", "recruiter-001")

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidTransition))
	assert.Nil(t, app)
	assert.Empty(t, queue.jobs)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestTransition_UnknownTargetStage(t *testing.T) {
	eng, mock, queue := newTestEngine(t)

	// Target parsing fails before any database access.
	app, err := eng.RequestTransition(context.Background(), "app-001", "Archived", "recruiter-001")

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidTransition))
	assert.Nil(t, app)
	assert.Empty(t, queue.jobs)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestTransition_ApplicationNotFound(t *testing.T) {
	eng, mock, queue := newTestEngine(t)

	mock.ExpectQuery(`SELECT id, job_id, candidate_id, stage, created_at, updated_at`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "job_id", "candidate_id", "stage", "created_at", "updated_at"}))

	app, err := eng.RequestTransition(context.Background(), "missing", "Screening", "recruiter-001")

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Nil(t, app)
	assert.Empty(t, queue.jobs)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestTransition_ConflictSurfacedToCaller(t *testing.T) {
	eng, mock, queue := newTestEngine(t)

	expectGet(mock, "app-001", "Applied")
	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE applications SET stage`).
		WithArgs("Screening", sqlmock.AnyArg(), "app-001", "Applied").
		WillReturnRows(sqlmock.NewRows([]string{"job_id", "candidate_id", "created_at"}))
	mock.ExpectRollback()

	app, err := eng.RequestTransition(context.Background(), "app-001", "Screening", "recruiter-001")

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrConflict))
	assert.True(t, apperrors.IsRetryable(err))
	assert.Nil(t, app)
	assert.Empty(t, queue.jobs)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestTransition_FullQueueDoesNotFailTransition(t *testing.T) {
	eng, mock, queue := newTestEngine(t)
	queue.full = true

	expectGet(mock, "app-001", "Applied")
	expectTransition(mock, "app-001", "Applied", "Screening")

	app, err := eng.RequestTransition(context.Background(), "app-001", "Screening", "recruiter-001")

	assert.NoError(t, err)
	assert.Equal(t, "Screening", app.Stage)
	assert.Empty(t, queue.jobs)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmit_CreatesAndNotifies(t *testing.T) {
	eng, mock, queue := newTestEngine(t)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("candidate-001", "job-001").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(`INSERT INTO applications`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	app, err := eng.Submit(context.Background(), "job-001", "candidate-001")

	assert.NoError(t, err)
	assert.Equal(t, "Applied", app.Stage)
	assert.Len(t, queue.jobs, 1)
	assert.Equal(t, "candidate-001", queue.jobs[0].RecipientID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmit_Duplicate(t *testing.T) {
	eng, mock, queue := newTestEngine(t)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("candidate-001", "job-001").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	app, err := eng.Submit(context.Background(), "job-001", "candidate-001")

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateApplication))
	assert.Nil(t, app)
	assert.Empty(t, queue.jobs)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// Walks one application through review to rejection and checks each step's
// outcome against the transition table.
func TestRequestTransition_EndToEndScenario(t *testing.T) {
	eng, mock, queue := newTestEngine(t)

	expectGet(mock, "app-001", "Applied")
	expectTransition(mock, "app-001", "Applied", "Screening")

	app, err := eng.RequestTransition(context.Background(), "app-001", "Screening", "recruiter-001")
	assert.NoError(t, err)
	assert.Equal(t, "Screening", app.Stage)

	// Jumping straight to Offer is rejected and nothing is written.
	expectGet(mock, "app-001", "Screening")
	_, err = eng.RequestTransition(context.Background(), "app-001", "Offer", "recruiter-001")
	assert.True(t, errors.Is(err, ErrInvalidTransition))

	// Rejection is reachable from any active stage.
	expectGet(mock, "app-001", "Screening")
	expectTransition(mock, "app-001", "Screening", "Rejected")

	app, err = eng.RequestTransition(context.Background(), "app-001", "Rejected", "recruiter-001")
	assert.NoError(t, err)
	assert.Equal(t, "Rejected", app.Stage)

	// Two committed moves, two notifications; the rejected attempt sent none.
	assert.Len(t, queue.jobs, 2)
	assert.Equal(t, models.PriorityHigh, queue.jobs[1].Priority)

	assert.NoError(t, mock.ExpectationsWereMet())
}
