package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	crmSvc "folio/internal/domain/services/crm"

	"github.com/redis/go-redis/v9"
)

// RevalidateChannel is the Redis channel page caches subscribe to
const RevalidateChannel = "folio:revalidate"

const publishTimeout = 2 * time.Second

// Verify interface compliance
var (
	_ crmSvc.Revalidator = (*RedisRevalidator)(nil)
	_ crmSvc.Revalidator = (*LogRevalidator)(nil)
)

// Event is the message published for a stale path
type Event struct {
	Path string    `json:"path"`
	At   time.Time `json:"at"`
}

// RedisRevalidator publishes stale-path events on a Redis channel.
// Publishing happens in the background; failures are logged only.
type RedisRevalidator struct {
	client  *redis.Client
	channel string
	logger  *slog.Logger
	wg      sync.WaitGroup
}

// NewRedisRevalidator creates a revalidator publishing on RevalidateChannel
func NewRedisRevalidator(client *redis.Client, logger *slog.Logger) *RedisRevalidator {
	return &RedisRevalidator{
		client:  client,
		channel: RevalidateChannel,
		logger:  logger,
	}
}

// Revalidate announces that path's data is stale. It never blocks on Redis.
func (r *RedisRevalidator) Revalidate(ctx context.Context, path string) {
	payload, err := json.Marshal(Event{Path: path, At: time.Now().UTC()})
	if err != nil {
		r.logger.Warn("failed to encode revalidation event", "path", path, "error", err)
		return
	}

	// Detach from the request so the publish outlives the response
	ctx = context.WithoutCancel(ctx)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
		defer cancel()

		if err := r.client.Publish(pubCtx, r.channel, payload).Err(); err != nil {
			r.logger.Warn("failed to publish revalidation", "path", path, "error", err)
			return
		}
		r.logger.Debug("revalidation published", "path", path)
	}()
}

// Wait blocks until in-flight publishes finish. Call before closing the client.
func (r *RedisRevalidator) Wait() {
	r.wg.Wait()
}

// LogRevalidator only logs; used when Redis is not configured
type LogRevalidator struct {
	logger *slog.Logger
}

// NewLogRevalidator creates a logging revalidator
func NewLogRevalidator(logger *slog.Logger) *LogRevalidator {
	return &LogRevalidator{logger: logger}
}

func (r *LogRevalidator) Revalidate(ctx context.Context, path string) {
	r.logger.Debug("revalidate", "path", path)
}
