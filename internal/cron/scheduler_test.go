package cron

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kinobot/internal/config"
)

type sentMessage struct {
	chatID int64
	text   string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
	fail map[int64]bool
}

func (n *fakeNotifier) SendMessage(_ context.Context, chatID int64, text string, _ interface{}) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail[chatID] {
		return errors.New("blocked")
	}
	n.sent = append(n.sent, sentMessage{chatID, text})
	return nil
}

type fakeStats struct {
	text string
	err  error
}

func (f fakeStats) Stats() (string, error) { return f.text, f.err }

type fakeWarmer struct {
	calls int
	err   error
}

func (f *fakeWarmer) WarmInviteLinks(context.Context) (int, error) {
	f.calls++
	return 1, f.err
}

func testConfig(admins ...int64) *config.Config {
	return &config.Config{
		Bot:  config.BotConfig{AdminIDs: admins},
		Cron: config.CronConfig{Report: "0 0 9 * * *", InviteLinks: "0 */30 * * * *"},
	}
}

func TestDailyStatusReportGoesToEveryAdmin(t *testing.T) {
	notifier := &fakeNotifier{fail: map[int64]bool{2: true}}
	s := New(testConfig(1, 2, 3), notifier, fakeStats{text: "users: 5"}, &fakeWarmer{}, zap.NewNop())

	s.dailyStatusReport()

	require.Len(t, notifier.sent, 2)
	assert.Equal(t, int64(1), notifier.sent[0].chatID)
	assert.Equal(t, int64(3), notifier.sent[1].chatID)
	assert.Contains(t, notifier.sent[0].text, "users: 5")
}

func TestDailyStatusReportSkipsOnStatsError(t *testing.T) {
	notifier := &fakeNotifier{}
	s := New(testConfig(1), notifier, fakeStats{err: errors.New("db down")}, &fakeWarmer{}, zap.NewNop())

	s.dailyStatusReport()
	assert.Empty(t, notifier.sent)
}

func TestWarmInviteLinks(t *testing.T) {
	warmer := &fakeWarmer{err: errors.New("list failed")}
	s := New(testConfig(), &fakeNotifier{}, fakeStats{}, warmer, zap.NewNop())

	s.warmInviteLinks()
	assert.Equal(t, 1, warmer.calls)
}

func TestStartRejectsBadSchedule(t *testing.T) {
	cfg := testConfig()
	cfg.Cron.Report = "every morning"
	s := New(cfg, &fakeNotifier{}, fakeStats{}, &fakeWarmer{}, zap.NewNop())

	assert.Error(t, s.Start())
}

func TestStartAndStop(t *testing.T) {
	cfg := testConfig()
	cfg.Cron.InviteLinks = ""
	s := New(cfg, &fakeNotifier{}, fakeStats{}, &fakeWarmer{}, zap.NewNop())

	require.NoError(t, s.Start())
	assert.Len(t, s.cron.Entries(), 1)
	<-s.Stop().Done()
}
