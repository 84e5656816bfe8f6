// internal/pipeline/service.go
package pipeline

import (
	"context"
	"database/sql"
	"time"

	"ats-pipeline/internal/catalog"
	"ats-pipeline/internal/common/config"
	"ats-pipeline/internal/common/logger"
	"ats-pipeline/internal/common/observability"
	"ats-pipeline/internal/directory"
	"ats-pipeline/internal/notify"
	"ats-pipeline/internal/pipeline/engine"
	"ats-pipeline/internal/pipeline/store"

	"github.com/redis/go-redis/v9"
)

// Service bundles the pipeline core for embedding: the lifecycle engine and
// its stores on the request side, the notification dispatcher on the
// background side, sharing one in-process queue. The transport layer that
// embeds this service calls Engine and the read stores directly.
type Service struct {
	Engine       *engine.Engine
	Applications *store.ApplicationStore
	History      *store.HistoryStore
	Catalog      *catalog.Catalog
	Directory    *directory.Directory
	Queue        *notify.Queue

	dispatcher *notify.Dispatcher
}

func NewService(cfg *config.Config, db *sql.DB, cache *redis.Client, sender notify.Sender, obs *observability.Observability, log logger.Logger) *Service {
	queue := notify.NewQueue(cfg.Notifications.Queue.Capacity)

	dir := directory.New(
		db,
		cache,
		time.Duration(cfg.Pipeline.ContactCacheTTL)*time.Second,
		log,
	)

	apps := store.NewApplicationStore(db, log)

	return &Service{
		Engine:       engine.New(apps, queue, obs, log),
		Applications: apps,
		History:      store.NewHistoryStore(db, log),
		Catalog:      catalog.New(db, log),
		Directory:    dir,
		Queue:        queue,
		dispatcher: notify.NewDispatcher(
			queue,
			dir,
			sender,
			config.GetDuration(cfg.Notifications.Queue.Interval),
			cfg.Notifications.Queue.BatchSize,
			log,
		),
	}
}

// Run drives the notification dispatcher until the context is cancelled.
// The request-side entry points stay usable the whole time.
func (s *Service) Run(ctx context.Context) {
	s.dispatcher.Run(ctx)
}
