// Package httpclient builds the resty clients used for outbound API calls.
package httpclient

import (
	"path"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const defaultTimeout = 30 * time.Second

// Options tunes a client. A zero Timeout takes the default; a nil Logger
// disables response logging.
type Options struct {
	Timeout time.Duration
	Logger  *zap.Logger
}

// New creates a JSON resty client rooted at baseURL. Requests are sent once;
// callers decide what a failed response means.
func New(baseURL string, opts Options) *resty.Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")

	if opts.Logger != nil {
		logger := opts.Logger
		c.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
			if resp.IsError() {
				logger.Debug("HTTP error response",
					zap.String("endpoint", endpoint(resp)),
					zap.Int("status", resp.StatusCode()),
					zap.Duration("took", resp.Time()),
				)
			}
			return nil
		})
	}
	return c
}

// endpoint returns the last path segment only, so tokens embedded in the
// base URL never reach the log.
func endpoint(resp *resty.Response) string {
	if resp.Request == nil || resp.Request.RawRequest == nil {
		return ""
	}
	return path.Base(resp.Request.RawRequest.URL.Path)
}
