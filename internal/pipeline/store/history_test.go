// internal/pipeline/store/history_test.go
package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"ats-pipeline/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestHistoryStore_ListFor_CommitOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	t0 := time.Now().UTC().Add(-2 * time.Hour)
	t1 := t0.Add(time.Hour)

	mock.ExpectQuery(`SELECT id, application_id, from_stage, to_stage, actor_id, changed_at`).
		WithArgs("app-001").
		WillReturnRows(sqlmock.NewRows([]string{"id", "application_id", "from_stage", "to_stage", "actor_id", "changed_at"}).
			AddRow("rec-001", "app-001", "Applied", "Screening", "recruiter-001", t0).
			AddRow("rec-002", "app-001", "Screening", "Interview", "recruiter-002", t1))

	s := NewHistoryStore(db, logger.NewTestLogger(t))

	records, err := s.ListFor(context.Background(), "app-001")

	assert.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, "Screening", records[0].ToStage)
	assert.Equal(t, "Screening", records[1].FromStage)
	assert.Equal(t, "Interview", records[1].ToStage)
	assert.Equal(t, "recruiter-002", records[1].ActorID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryStore_ListFor_Empty(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, application_id, from_stage, to_stage, actor_id, changed_at`).
		WithArgs("app-009").
		WillReturnRows(sqlmock.NewRows([]string{"id", "application_id", "from_stage", "to_stage", "actor_id", "changed_at"}))

	s := NewHistoryStore(db, logger.NewTestLogger(t))

	records, err := s.ListFor(context.Background(), "app-009")

	assert.NoError(t, err)
	assert.Empty(t, records)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryStore_ListFor_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, application_id, from_stage, to_stage, actor_id, changed_at`).
		WithArgs("app-001").
		WillReturnError(errors.New("connection refused"))

	s := NewHistoryStore(db, logger.NewTestLogger(t))

	records, err := s.ListFor(context.Background(), "app-001")

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrPersistenceFailure))
	assert.Nil(t, records)

	assert.NoError(t, mock.ExpectationsWereMet())
}
