package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Signaler is notified after every successful mutating request so other
// local instances can invalidate their caches.
type Signaler interface {
	Touch(ctx context.Context) error
}

// Client is a stateless typed wrapper over the GigTune REST API. It never
// retries and never caches.
type Client struct {
	baseURL  string
	http     *http.Client
	signaler Signaler
	logger   *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds each request. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

func WithSignaler(s Signaler) Option {
	return func(c *Client) { c.signaler = s }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client for the API rooted at baseURL, e.g. http://localhost:3001/api.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type errorBody struct {
	Message string `json:"message"`
}

// do issues one request. out is left untouched when the response body is
// empty; the returned bool reports whether a payload was decoded.
func (c *Client) do(ctx context.Context, method, path string, in, out any) (bool, error) {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return false, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return false, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return false, transportError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	c.logger.Debug("request done",
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)),
	)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		_ = json.Unmarshal(raw, &eb)
		return false, statusError(resp.StatusCode, eb.Message)
	}
	if err != nil {
		return false, transportError(err)
	}
	if len(bytes.TrimSpace(raw)) == 0 || out == nil {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return true, nil
}

// mutate is do followed by the cross-instance signal.
func (c *Client) mutate(ctx context.Context, method, path string, in, out any) (bool, error) {
	ok, err := c.do(ctx, method, path, in, out)
	if err != nil {
		return false, err
	}
	if c.signaler != nil {
		if serr := c.signaler.Touch(ctx); serr != nil {
			c.logger.Warn("failed to write data signal", zap.String("path", path), zap.Error(serr))
		}
	}
	return ok, nil
}

// decoded adapts do's (ok, err) pair to a typed result that is nil when
// the response carried no payload.
func decoded[T any](v *T) func(bool, error) (*T, error) {
	return func(ok bool, err error) (*T, error) {
		if err != nil || !ok {
			return nil, err
		}
		return v, nil
	}
}
