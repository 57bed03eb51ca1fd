// Package dispatch calls mechanic APIs on behalf of merchants.
package dispatch

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/sethvargo/go-retry"

	"workshop/src/core/domain"
	"workshop/src/core/ports"
	"workshop/src/infra/config"
)

// maxBodyBytes caps how much of a mechanic API response is read.
const maxBodyBytes = 1 << 20

// Used when the config leaves the values unset.
const (
	defaultRetryBackoff = 200 * time.Millisecond
	defaultTotalTimeout = 30 * time.Second
)

var errNotOK = errors.New("mechanic api answered with a non-200 status")

var _ ports.MechanicDispatcher = (*Client)(nil)

// Client is an HTTP MechanicDispatcher.
type Client struct {
	http         *http.Client
	log          *slog.Logger
	retryBackoff time.Duration
	totalTimeout time.Duration
}

// New creates a Client from config.
func New(cfg config.DispatchConfig, log *slog.Logger) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	c := NewWithHTTPClient(&http.Client{
		Transport: transport,
		Timeout:   cfg.Timeout,
	}, log)
	if cfg.RetryBackoff > 0 {
		c.retryBackoff = cfg.RetryBackoff
	}
	if cfg.TotalTimeout > 0 {
		c.totalTimeout = cfg.TotalTimeout
	}
	return c
}

// NewWithHTTPClient wraps an existing http.Client with the default retry
// backoff and total timeout.
func NewWithHTTPClient(hc *http.Client, log *slog.Logger) *Client {
	return &Client{
		http:         hc,
		log:          log,
		retryBackoff: defaultRetryBackoff,
		totalTimeout: defaultTotalTimeout,
	}
}

// Dispatch sends a GET to req.Endpoint. A 200 answer ends the call. Any other
// answer or a transport error is retried after a constant backoff while
// attempts remain; the first attempt is not counted against req.Repeats.
// All attempts together are bounded by the total timeout.
//
// When attempts or time run out, the most recent answer is returned as is.
// If no attempt got an answer the error is domain.ErrUnavailable. A caller
// that cancels ctx gets ctx.Err().
func (c *Client) Dispatch(ctx context.Context, req ports.DispatchRequest) (*ports.DispatchResult, error) {
	target, err := buildURL(req.Endpoint, req.Query)
	if err != nil {
		return nil, domain.NewValidationError("mechanic_api", "invalid URL")
	}

	callCtx, cancel := context.WithTimeout(ctx, c.totalTimeout)
	defer cancel()

	var (
		attempts int
		last     *ports.DispatchResult
		lastErr  error
	)
	backoff := retry.WithMaxRetries(uint64(max(req.Repeats, 0)), retry.NewConstant(c.retryBackoff))

	err = retry.Do(callCtx, backoff, func(ctx context.Context) error {
		attempts++
		status, body, err := c.do(ctx, target, req.Authorization)
		if err != nil {
			lastErr = err
			c.log.Debug("mechanic api attempt failed", "attempt", attempts, "error", err)
			return retry.RetryableError(err)
		}
		last = &ports.DispatchResult{StatusCode: status, Body: body, Attempts: attempts}
		if status != http.StatusOK {
			c.log.Debug("mechanic api attempt failed", "attempt", attempts, "status", status)
			return retry.RetryableError(errNotOK)
		}
		return nil
	})
	if err == nil {
		return last, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if last != nil {
		last.Attempts = attempts
		return last, nil
	}
	if lastErr == nil {
		lastErr = err
	}
	return nil, domain.NewUnavailableError(fmt.Sprintf("mechanic api unreachable after %d attempts: %v", attempts, lastErr))
}

func (c *Client) do(ctx context.Context, target, authorization string) (int, any, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, nil, err
	}
	httpReq.Header.Set("Accept", "application/json")
	if authorization != "" {
		httpReq.Header.Set("Authorization", authorization)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, decodeBody(raw), nil
}

func buildURL(endpoint string, extra url.Values) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", err
	}
	q := u.Query()
	for k, vs := range extra {
		q[k] = vs
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// decodeBody returns the JSON value of raw, or raw as text when it is not JSON.
func decodeBody(raw []byte) any {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return string(raw)
	}
	return v
}
