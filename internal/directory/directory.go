// internal/directory/directory.go
package directory

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ats-pipeline/internal/common/logger"

	"github.com/redis/go-redis/v9"
)

var ErrUnknownRecipient = errors.New("UNKNOWN_RECIPIENT")

const cacheKeyPrefix = "candidate:contact:"

type cachedContact struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Directory resolves candidate ids to delivery addresses. Lookups go through
// a Redis read-through cache; Redis being down degrades to the database path
// instead of failing the lookup.
type Directory struct {
	db     *sql.DB
	cache  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func New(db *sql.DB, cache *redis.Client, ttl time.Duration, log logger.Logger) *Directory {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Directory{
		db:     db,
		cache:  cache,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "directory"}),
	}
}

// Contact returns the candidate's email and phone.
func (d *Directory) Contact(ctx context.Context, candidateID string) (string, string, error) {
	key := cacheKeyPrefix + candidateID

	if d.cache != nil {
		val, err := d.cache.Get(ctx, key).Result()
		if err == nil {
			var c cachedContact
			if jsonErr := json.Unmarshal([]byte(val), &c); jsonErr == nil {
				return c.Email, c.Phone, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			d.logger.Debug("contact cache read failed", map[string]interface{}{
				"candidateId": candidateID,
				"error":       err,
			})
		}
	}

	var email, phone string
	err := d.db.QueryRowContext(ctx, `
		SELECT email, COALESCE(phone, '') FROM candidates WHERE id = $1`, candidateID).
		Scan(&email, &phone)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", fmt.Errorf("%w: candidate %s", ErrUnknownRecipient, candidateID)
	}
	if err != nil {
		return "", "", fmt.Errorf("contact lookup failed: %w", err)
	}

	if d.cache != nil {
		if payload, jsonErr := json.Marshal(cachedContact{Email: email, Phone: phone}); jsonErr == nil {
			if setErr := d.cache.Set(ctx, key, payload, d.ttl).Err(); setErr != nil {
				d.logger.Debug("contact cache write failed", map[string]interface{}{
					"candidateId": candidateID,
					"error":       setErr,
				})
			}
		}
	}

	return email, phone, nil
}

// Invalidate drops a cached contact, for callers that update candidate data.
func (d *Directory) Invalidate(ctx context.Context, candidateID string) {
	if d.cache == nil {
		return
	}
	if err := d.cache.Del(ctx, cacheKeyPrefix+candidateID).Err(); err != nil {
		d.logger.Debug("contact cache invalidate failed", map[string]interface{}{
			"candidateId": candidateID,
			"error":       err,
		})
	}
}
