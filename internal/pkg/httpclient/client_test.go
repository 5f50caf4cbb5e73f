package httpclient

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewSendsJSONOnce(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "/bot1:secret/sendMessage", r.URL.Path)
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":429}`))
	}))
	defer srv.Close()

	core, logs := observer.New(zapcore.DebugLevel)
	c := New(srv.URL+"/bot1:secret", Options{Logger: zap.New(core)})

	resp, err := c.R().SetBody(map[string]string{"text": "hi"}).Post("/sendMessage")
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode())
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "sendMessage", entries[0].ContextMap()["endpoint"])
	assert.NotContains(t, entries[0].Message, "secret")
}

func TestNewWithoutLogger(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := New(srv.URL, Options{})
	assert.Equal(t, defaultTimeout, c.GetClient().Timeout)

	resp, err := c.R().Post("/getMe")
	require.NoError(t, err)
	assert.True(t, resp.IsError())
}
