package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"kinobot/internal/config"
)

const jobTimeout = 2 * time.Minute

// Notifier delivers a text message to one chat.
type Notifier interface {
	SendMessage(ctx context.Context, chatID int64, text string, replyMarkup interface{}) error
}

// StatsSource renders the admin statistics message.
type StatsSource interface {
	Stats() (string, error)
}

// InviteLinkWarmer resolves invite links for private channels ahead of time.
type InviteLinkWarmer interface {
	WarmInviteLinks(ctx context.Context) (int, error)
}

// Scheduler manages all cron jobs.
type Scheduler struct {
	cron     *cron.Cron
	cfg      *config.Config
	logger   *zap.Logger
	notifier Notifier
	stats    StatsSource
	links    InviteLinkWarmer
}

// New creates a new cron scheduler. Schedules use the six-field format with
// seconds.
func New(cfg *config.Config, notifier Notifier, stats StatsSource, links InviteLinkWarmer, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		cfg:      cfg,
		logger:   logger,
		notifier: notifier,
		stats:    stats,
		links:    links,
	}
}

// Start registers and starts all cron jobs. An empty schedule disables its job.
func (s *Scheduler) Start() error {
	s.logger.Info("Starting cron scheduler...")

	jobs := []struct {
		name string
		spec string
		run  func()
	}{
		{"daily report", s.cfg.Cron.Report, s.dailyStatusReport},
		{"invite links", s.cfg.Cron.InviteLinks, s.warmInviteLinks},
	}

	for _, job := range jobs {
		if job.spec == "" {
			s.logger.Info("Cron job disabled", zap.String("job", job.name))
			continue
		}
		job := job
		if _, err := s.cron.AddFunc(job.spec, func() {
			s.logger.Debug("Running cron job", zap.String("job", job.name))
			job.run()
		}); err != nil {
			return fmt.Errorf("schedule %s %q: %w", job.name, job.spec, err)
		}
	}

	s.cron.Start()
	s.logger.Info("Cron scheduler started", zap.Int("jobs", len(s.cron.Entries())))
	return nil
}

// Stop gracefully stops the cron scheduler.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// dailyStatusReport sends the statistics message to every admin.
func (s *Scheduler) dailyStatusReport() {
	defer s.recoverFromPanic("dailyStatusReport")

	if len(s.cfg.Bot.AdminIDs) == 0 {
		return
	}

	text, err := s.stats.Stats()
	if err != nil {
		s.logger.Error("Failed to build daily report", zap.Error(err))
		return
	}
	text = "🗓 " + time.Now().Format("2006-01-02") + "\n" + text

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	for _, adminID := range s.cfg.Bot.AdminIDs {
		if err := s.notifier.SendMessage(ctx, adminID, text, nil); err != nil {
			s.logger.Warn("Failed to send daily report", zap.Int64("admin_id", adminID), zap.Error(err))
		}
	}
}

func (s *Scheduler) warmInviteLinks() {
	defer s.recoverFromPanic("warmInviteLinks")

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := s.links.WarmInviteLinks(ctx)
	if err != nil {
		s.logger.Error("Invite link warm-up failed", zap.Error(err))
		return
	}
	if n > 0 {
		s.logger.Info("Invite links resolved", zap.Int("count", n))
	}
}

func (s *Scheduler) recoverFromPanic(jobName string) {
	if r := recover(); r != nil {
		s.logger.Error("Cron job panicked", zap.String("job", jobName), zap.Any("error", r))
	}
}
