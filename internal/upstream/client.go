// Package upstream is the typed client for the tourism reservations REST API.
// Every call takes the caller's bearer token explicitly; the client itself is
// stateless and safe for concurrent use.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// maxBodyBytes caps how much of an upstream response is read.
const maxBodyBytes = 8 << 20

// Options configures a Client.  Zero RPS disables outbound throttling.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	RPS        float64
	Burst      int
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client issues authenticated requests against the upstream API.
type Client struct {
	base    *url.URL
	http    *http.Client
	limiter *rate.Limiter
	log     *zap.Logger
}

// New validates opts and builds a Client.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("upstream: invalid base url %q", opts.BaseURL)
	}
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	var lim *rate.Limiter
	if opts.RPS > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		lim = rate.NewLimiter(rate.Limit(opts.RPS), burst)
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{base: base, http: hc, limiter: lim, log: log.Named("upstream")}, nil
}

// envelopeStatus is decoded ahead of the typed payload so that a 2xx with
// "success": false is still reported as an error.
type envelopeStatus struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
}

// do performs one request.  body, when non-nil, is sent as JSON; out, when
// non-nil, receives the decoded response.  No retries are attempted.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, token string, body, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &APIError{Message: msgUnreachable, Status: 0}
		}
	}

	u := *c.base
	u.Path = c.base.Path + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var rdr io.Reader
	if body != nil {
		bs, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("upstream: encode %s %s: %w", method, path, err)
		}
		rdr = bytes.NewReader(bs)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rdr)
	if err != nil {
		return fmt.Errorf("upstream: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("request failed",
			zap.String("method", method), zap.String("path", path), zap.Error(err))
		return &APIError{Message: msgUnreachable, Status: 0}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &APIError{Message: msgUnreachable, Status: 0}
	}
	c.log.Debug("request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(started)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, raw)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	var st envelopeStatus
	if err := json.Unmarshal(raw, &st); err == nil && st.Success != nil && !*st.Success {
		msg := st.Message
		if msg == "" {
			msg = msgFailed
		}
		return &APIError{Message: msg, Status: resp.StatusCode}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		c.log.Warn("decode failed", zap.String("path", path), zap.Error(err))
		return &APIError{Message: msgFailed, Status: http.StatusBadGateway}
	}
	return nil
}

// get is a convenience for GET requests without a body.
func (c *Client) get(ctx context.Context, path string, query url.Values, token string, out any) error {
	return c.do(ctx, http.MethodGet, path, query, token, nil, out)
}

// ErrNotFound is returned by single-resource lookups whose envelope carried
// no entity.
var ErrNotFound = &APIError{Message: "resource not found", Status: http.StatusNotFound}
