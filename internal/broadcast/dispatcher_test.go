package broadcast

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticUsers struct {
	ids []int64
	err error
}

func (s staticUsers) IDs() ([]int64, error) { return s.ids, s.err }

type recordingSender struct {
	mu      sync.Mutex
	blocked map[int64]bool
	sent    []int64
	// cancel, when set, is called after the n-th delivery attempt.
	cancel  context.CancelFunc
	cancelN int
	calls   int
}

func (s *recordingSender) SendMessage(_ context.Context, chatID int64, _ string, _ interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.cancel != nil && s.calls == s.cancelN {
		s.cancel()
	}
	if s.blocked[chatID] {
		return errors.New("Forbidden: bot was blocked by the user")
	}
	s.sent = append(s.sent, chatID)
	return nil
}

func TestSendCountsDeliveredAndFailed(t *testing.T) {
	sender := &recordingSender{blocked: map[int64]bool{2: true, 4: true}}
	d := New(staticUsers{ids: []int64{1, 2, 3, 4, 5}}, sender, 0, zap.NewNop())

	res, err := d.Send(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, 5, res.Attempted)
	assert.Equal(t, 3, res.Delivered)
	assert.Equal(t, 2, res.Failed)
	assert.Equal(t, []int64{1, 3, 5}, sender.sent)

	_, err = uuid.Parse(res.RunID)
	assert.NoError(t, err)
}

func TestSendWithNoUsers(t *testing.T) {
	d := New(staticUsers{}, &recordingSender{}, 25, zap.NewNop())

	res, err := d.Send(context.Background(), "hello")
	require.NoError(t, err)
	assert.Zero(t, res.Attempted)
	assert.Zero(t, res.Delivered)
}

func TestSendRecipientError(t *testing.T) {
	d := New(staticUsers{err: errors.New("disk")}, &recordingSender{}, 0, zap.NewNop())

	_, err := d.Send(context.Background(), "hello")
	assert.Error(t, err)
}

func TestSendStopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sender := &recordingSender{cancel: cancel, cancelN: 2}
	d := New(staticUsers{ids: []int64{1, 2, 3, 4}}, sender, 1000, zap.NewNop())

	res, err := d.Send(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Attempted)
	assert.Equal(t, 2, res.Delivered)
}
