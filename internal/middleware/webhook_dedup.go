package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultDedupTTL = 10 * time.Minute

// UpdateDeduper remembers Telegram update ids for a while. Telegram retries a
// webhook delivery until it gets a 2xx, so the same update can arrive twice.
type UpdateDeduper interface {
	// Seen marks updateID and reports whether it was already marked.
	Seen(ctx context.Context, updateID int64) (bool, error)
	Close() error
}

type redisDeduper struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func (d *redisDeduper) Seen(ctx context.Context, updateID int64) (bool, error) {
	key := d.prefix + strconv.FormatInt(updateID, 10)
	fresh, err := d.client.SetNX(ctx, key, 1, d.ttl).Result()
	if err != nil {
		return false, err
	}
	return !fresh, nil
}

func (d *redisDeduper) Close() error {
	return d.client.Close()
}

type memoryDeduper struct {
	mu      sync.Mutex
	expires map[int64]time.Time
	ttl     time.Duration
	sweepAt time.Time
	now     func() time.Time
}

// NewMemoryDeduper keeps update ids in process memory.
func NewMemoryDeduper(ttl time.Duration) UpdateDeduper {
	return newMemoryDeduper(ttl, time.Now)
}

func newMemoryDeduper(ttl time.Duration, now func() time.Time) *memoryDeduper {
	if ttl <= 0 {
		ttl = defaultDedupTTL
	}
	return &memoryDeduper{
		expires: make(map[int64]time.Time),
		ttl:     ttl,
		sweepAt: now().Add(ttl),
		now:     now,
	}
}

func (d *memoryDeduper) Seen(_ context.Context, updateID int64) (bool, error) {
	now := d.now()

	d.mu.Lock()
	defer d.mu.Unlock()

	if exp, ok := d.expires[updateID]; ok && now.Before(exp) {
		return true, nil
	}
	d.expires[updateID] = now.Add(d.ttl)

	if now.After(d.sweepAt) {
		for id, exp := range d.expires {
			if !now.Before(exp) {
				delete(d.expires, id)
			}
		}
		d.sweepAt = now.Add(d.ttl)
	}
	return false, nil
}

func (d *memoryDeduper) Close() error { return nil }

// NewUpdateDeduper uses Redis when addr is set and reachable, and process
// memory otherwise. A non-nil error explains the fallback; the returned
// deduper is always usable.
func NewUpdateDeduper(addr, pass string, db int, ttl time.Duration) (UpdateDeduper, error) {
	if ttl <= 0 {
		ttl = defaultDedupTTL
	}
	if addr == "" {
		return NewMemoryDeduper(ttl), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: pass,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return NewMemoryDeduper(ttl), err
	}

	return &redisDeduper{client: client, prefix: "kinobot:update:", ttl: ttl}, nil
}

// TelegramUpdateDedup answers repeated webhook deliveries with 200 "ok"
// without passing them on. Bodies it cannot read an update_id from go
// through untouched, and so does everything when the store errors.
func TelegramUpdateDedup(deduper UpdateDeduper, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if deduper == nil || req.Body == nil {
				return next(c)
			}

			raw, err := io.ReadAll(req.Body)
			if err != nil {
				return next(c)
			}
			req.Body = io.NopCloser(bytes.NewReader(raw))

			var update struct {
				UpdateID int64 `json:"update_id"`
			}
			if err := json.Unmarshal(raw, &update); err != nil || update.UpdateID == 0 {
				return next(c)
			}

			dup, err := deduper.Seen(req.Context(), update.UpdateID)
			if err != nil {
				logger.Warn("Update dedup failed", zap.Int64("update_id", update.UpdateID), zap.Error(err))
				return next(c)
			}
			if dup {
				logger.Debug("Duplicate update dropped", zap.Int64("update_id", update.UpdateID))
				return c.String(http.StatusOK, "ok")
			}
			return next(c)
		}
	}
}
