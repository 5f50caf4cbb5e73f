// Package broadcast fans one admin message out to every known user.
package broadcast

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Sender delivers a text message to one chat.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string, replyMarkup interface{}) error
}

// Recipients lists every chat a broadcast goes to.
type Recipients interface {
	IDs() ([]int64, error)
}

// Result summarizes one broadcast. Delivered is the count reported to the
// admin; Attempted always equals the number of users reached by the loop.
type Result struct {
	RunID     string
	Attempted int
	Delivered int
	Failed    int
	Duration  time.Duration
}

// Dispatcher sends broadcasts paced to stay under Telegram's bulk limits.
// Delivery failures (blocked bot, deleted account) are counted and skipped.
type Dispatcher struct {
	users   Recipients
	sender  Sender
	limiter *rate.Limiter
	logger  *zap.Logger
}

// New returns a dispatcher sending at most perSecond messages per second.
// A non-positive rate disables pacing.
func New(users Recipients, sender Sender, perSecond float64, logger *zap.Logger) *Dispatcher {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	return &Dispatcher{
		users:   users,
		sender:  sender,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}
}

// Send delivers text to every user. It returns an error only when the
// recipient list cannot be read; a cancelled ctx ends the run early with
// the counts reached so far.
func (d *Dispatcher) Send(ctx context.Context, text string) (Result, error) {
	res := Result{RunID: uuid.New().String()}
	started := time.Now()

	ids, err := d.users.IDs()
	if err != nil {
		return res, fmt.Errorf("load broadcast recipients: %w", err)
	}

	log := d.logger.With(zap.String("run_id", res.RunID))
	log.Info("Broadcast started", zap.Int("recipients", len(ids)))

	for _, id := range ids {
		if err := d.limiter.Wait(ctx); err != nil {
			log.Warn("Broadcast interrupted", zap.Int("attempted", res.Attempted), zap.Error(err))
			break
		}
		res.Attempted++
		if err := d.sender.SendMessage(ctx, id, text, nil); err != nil {
			res.Failed++
			log.Debug("Broadcast delivery failed", zap.Int64("chat_id", id), zap.Error(err))
			continue
		}
		res.Delivered++
	}

	res.Duration = time.Since(started)
	log.Info("Broadcast finished",
		zap.Int("attempted", res.Attempted),
		zap.Int("delivered", res.Delivered),
		zap.Int("failed", res.Failed),
		zap.Duration("took", res.Duration),
	)
	return res, nil
}
