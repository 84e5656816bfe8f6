// internal/pipeline/engine/engine.go
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "ats-pipeline/internal/common/errors"
	"ats-pipeline/internal/common/logger"
	"ats-pipeline/internal/common/metrics"
	"ats-pipeline/internal/common/observability"
	"ats-pipeline/internal/models"
	"ats-pipeline/internal/notify"
	"ats-pipeline/internal/pipeline/stage"
	"ats-pipeline/internal/pipeline/store"
)

var (
	ErrInvalidTransition = errors.New("INVALID_TRANSITION")

	// Storage errors surfaced unchanged so callers match one taxonomy.
	ErrNotFound             = store.ErrNotFound
	ErrConflict             = store.ErrConflict
	ErrPersistenceFailure   = store.ErrPersistenceFailure
	ErrDuplicateApplication = store.ErrDuplicateApplication
)

// Enqueuer is the notification hand-off. Enqueue failure is never an error
// on the transition path.
type Enqueuer interface {
	TryEnqueue(job models.NotificationJob) bool
}

// Engine is the application lifecycle engine. It is the only writer of
// application stages: it validates the move against the transition table,
// persists the stage change together with its audit record atomically, and
// hands off a best-effort notification after commit.
type Engine struct {
	apps   *store.ApplicationStore
	queue  Enqueuer
	obs    *observability.Observability
	logger logger.Logger
}

func New(apps *store.ApplicationStore, queue Enqueuer, obs *observability.Observability, log logger.Logger) *Engine {
	return &Engine{
		apps:   apps,
		queue:  queue,
		obs:    obs,
		logger: log.WithFields(map[string]interface{}{"component": "lifecycle-engine"}),
	}
}

// Submit creates an application at the Applied stage and notifies the
// candidate that it was received.
func (e *Engine) Submit(ctx context.Context, jobID, candidateID string) (*models.Application, error) {
	app, err := e.apps.Create(ctx, jobID, candidateID)
	if err != nil {
		if errors.Is(err, ErrDuplicateApplication) {
			return nil, apperrors.NewDuplicateApplicationError(candidateID, jobID).WithCause(err)
		}
		return nil, apperrors.NewPersistenceFailureError(err)
	}

	e.enqueue(notify.NewSubmissionJob(app))
	return app, nil
}

// RequestTransition moves an application to the target stage on behalf of
// actorID. The actor is trusted as already authenticated and authorized.
//
// Legality and existence checks fail before any write. The persist step is a
// single atomic unit; losing the conditional write to a concurrent request
// surfaces ErrConflict and the caller decides whether to retry against fresh
// state. A full notification queue never rolls back the committed change.
func (e *Engine) RequestTransition(ctx context.Context, applicationID, target, actorID string) (*models.Application, error) {
	start := time.Now()

	to, err := stage.Parse(target)
	if err != nil {
		// Unknown stage names collapse into the same error kind as a
		// legal-value-but-illegal-move, per the engine contract.
		e.reject(ctx, "invalid_transition")
		return nil, apperrors.NewInvalidTransitionError("", target).
			WithCause(fmt.Errorf("%w: %v", ErrInvalidTransition, err))
	}

	app, err := e.apps.Get(ctx, applicationID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			e.reject(ctx, "not_found")
			return nil, apperrors.NewApplicationNotFoundError(applicationID).WithCause(err)
		}
		e.reject(ctx, "persistence_failure")
		return nil, apperrors.NewPersistenceFailureError(err)
	}

	from := stage.Stage(app.Stage)
	if !stage.IsLegal(from, to) {
		e.reject(ctx, "invalid_transition")
		return nil, apperrors.NewInvalidTransitionError(from.String(), to.String()).
			WithCause(fmt.Errorf("%w: %s -> %s is not allowed", ErrInvalidTransition, from, to))
	}

	updated, rec, err := e.apps.Transition(ctx, applicationID, from, to, actorID)
	if err != nil {
		if errors.Is(err, ErrConflict) {
			e.reject(ctx, "conflict")
			return nil, apperrors.NewTransitionConflictError(applicationID).WithCause(err)
		}
		e.reject(ctx, "persistence_failure")
		return nil, apperrors.NewPersistenceFailureError(err)
	}

	metrics.TransitionsCommitted.WithLabelValues(to.String()).Inc()
	metrics.TransitionDuration.Observe(time.Since(start).Seconds())
	if e.obs != nil {
		e.obs.RecordTransition(ctx, "committed")
		e.obs.RecordTransitionDuration(ctx, time.Since(start), "committed")
	}

	e.enqueue(notify.NewStageChangeJob(updated, rec))

	return updated, nil
}

func (e *Engine) reject(ctx context.Context, reason string) {
	metrics.TransitionsRejected.WithLabelValues(reason).Inc()
	if e.obs != nil {
		e.obs.RecordTransition(ctx, reason)
	}
}

// enqueue hands the job to the queue. A full queue is logged and counted,
// never surfaced: the transition already committed.
func (e *Engine) enqueue(job models.NotificationJob) {
	if e.queue == nil {
		return
	}
	if !e.queue.TryEnqueue(job) {
		e.logger.Warn("notification queue full, job dropped", map[string]interface{}{
			"recipientId": job.RecipientID,
			"subject":     job.Subject,
		})
	}
}
