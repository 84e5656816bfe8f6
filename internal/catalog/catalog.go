// internal/catalog/catalog.go
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ats-pipeline/internal/common/logger"
	"ats-pipeline/internal/models"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("RECORD_NOT_FOUND")

// Catalog is the thin CRUD layer over companies, jobs and candidates. Every
// operation is a single statement with no cross-record invariant.
type Catalog struct {
	db     *sql.DB
	logger logger.Logger
}

func New(db *sql.DB, log logger.Logger) *Catalog {
	return &Catalog{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "catalog"}),
	}
}

func (c *Catalog) CreateCompany(ctx context.Context, name, description string) (*models.Company, error) {
	company := &models.Company{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO companies (id, name, description, created_at)
		VALUES ($1, $2, $3, $4)`,
		company.ID, company.Name, company.Description, company.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create company: %w", err)
	}
	return company, nil
}

func (c *Catalog) GetCompany(ctx context.Context, id string) (*models.Company, error) {
	var company models.Company
	err := c.db.QueryRowContext(ctx, `
		SELECT id, name, COALESCE(description, ''), created_at
		FROM companies WHERE id = $1`, id).
		Scan(&company.ID, &company.Name, &company.Description, &company.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: company %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get company: %w", err)
	}
	return &company, nil
}

func (c *Catalog) CreateJob(ctx context.Context, companyID, title, description, createdBy string) (*models.Job, error) {
	job := &models.Job{
		ID:          uuid.New().String(),
		CompanyID:   companyID,
		Title:       title,
		Description: description,
		Status:      models.JobStatusOpen,
		CreatedBy:   createdBy,
		CreatedAt:   time.Now().UTC(),
	}
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO jobs (id, company_id, title, description, status, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		job.ID, job.CompanyID, job.Title, job.Description, job.Status, job.CreatedBy, job.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	return job, nil
}

func (c *Catalog) GetJob(ctx context.Context, id string) (*models.Job, error) {
	var job models.Job
	err := c.db.QueryRowContext(ctx, `
		SELECT id, company_id, title, COALESCE(description, ''), status, COALESCE(created_by, ''), created_at
		FROM jobs WHERE id = $1`, id).
		Scan(&job.ID, &job.CompanyID, &job.Title, &job.Description, &job.Status, &job.CreatedBy, &job.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: job %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return &job, nil
}

func (c *Catalog) ListOpenJobs(ctx context.Context) ([]models.Job, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, company_id, title, COALESCE(description, ''), status, COALESCE(created_by, ''), created_at
		FROM jobs WHERE status = $1 ORDER BY created_at`, models.JobStatusOpen)
	if err != nil {
		return nil, fmt.Errorf("list open jobs: %w", err)
	}
	defer rows.Close()

	var jobs []models.Job
	for rows.Next() {
		var job models.Job
		if err := rows.Scan(&job.ID, &job.CompanyID, &job.Title, &job.Description, &job.Status, &job.CreatedBy, &job.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list open jobs rows: %w", err)
	}
	return jobs, nil
}

func (c *Catalog) CreateCandidate(ctx context.Context, name, email, phone string) (*models.Candidate, error) {
	candidate := &models.Candidate{
		ID:    uuid.New().String(),
		Name:  name,
		Email: email,
		Phone: phone,
	}
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO candidates (id, name, email, phone)
		VALUES ($1, $2, $3, $4)`,
		candidate.ID, candidate.Name, candidate.Email, candidate.Phone,
	)
	if err != nil {
		return nil, fmt.Errorf("create candidate: %w", err)
	}
	return candidate, nil
}

func (c *Catalog) GetCandidate(ctx context.Context, id string) (*models.Candidate, error) {
	var candidate models.Candidate
	err := c.db.QueryRowContext(ctx, `
		SELECT id, name, email, COALESCE(phone, '')
		FROM candidates WHERE id = $1`, id).
		Scan(&candidate.ID, &candidate.Name, &candidate.Email, &candidate.Phone)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: candidate %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get candidate: %w", err)
	}
	return &candidate, nil
}
