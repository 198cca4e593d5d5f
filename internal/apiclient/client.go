// Package apiclient calls the optimizer's own HTTP API with exponential backoff on transient failures.
package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

// Result is the outcome of a call. Exactly one of Data and Error is meaningful, per Success.
type Result struct {
	Success bool
	// Data is the decoded response body of a successful call.
	Data     json.RawMessage
	Error    string
	Err      error
	Status   int
	Attempts int
}

// Client talks to one API base URL.
type Client struct {
	http    *resty.Client
	retry   RetryConfig
	sleeper Sleeper
	logger  zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithRetryConfig replaces DefaultRetryConfig for every call that passes a nil config.
func WithRetryConfig(cfg RetryConfig) Option {
	return func(c *Client) { c.retry = cfg }
}

// WithSleeper replaces the real timer, mainly for tests.
func WithSleeper(s Sleeper) Option {
	return func(c *Client) { c.sleeper = s }
}

// WithTimeout bounds each individual attempt.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.SetTimeout(d) }
}

// WithToken sends a bearer token on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.http.SetAuthToken(token) }
}

// WithLogger sets the logger used for retry notices.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client for baseURL (e.g. http://localhost:8080).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		http:    resty.New().SetBaseURL(strings.TrimRight(baseURL, "/")),
		retry:   DefaultRetryConfig(),
		sleeper: TimerSleeper,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.http.SetRetryCount(0).SetHeader("Content-Type", "application/json")
	return c
}

// attemptOutcome is what one HTTP attempt produced.
type attemptOutcome struct {
	status    int
	body      []byte
	err       error // transport or decode failure
	retryable bool
}

// Call performs method on path with body encoded as JSON, retrying transient failures.
// A nil cfg uses the client's retry configuration.
func (c *Client) Call(ctx context.Context, method, path string, body any, cfg *RetryConfig) Result {
	retry := c.retry
	if cfg != nil {
		retry = *cfg
	}

	var last attemptOutcome
	attempts := 0
	for attempt := 0; attempt <= retry.MaxRetries; attempt++ {
		attempts++
		last = c.attempt(ctx, method, path, body)
		if err := ctx.Err(); err != nil {
			return Result{Error: ConnectivityMessage, Err: err, Attempts: attempts}
		}

		if last.err == nil && last.status < 300 {
			return Result{Success: true, Data: json.RawMessage(last.body), Status: last.status, Attempts: attempts}
		}

		if !last.retryable {
			msg := errorMessage(last)
			return Result{
				Error:    msg,
				Err:      &NonRetryableHTTPError{Status: last.status, Message: msg},
				Status:   last.status,
				Attempts: attempts,
			}
		}

		if attempt == retry.MaxRetries {
			break
		}

		delay := retry.Delay(attempt)
		c.logger.Debug().
			Str("path", path).
			Int("status", last.status).
			Err(last.err).
			Dur("delay", delay).
			Int("attempt", attempt+1).
			Msg("retrying request")
		if err := c.sleeper.Sleep(ctx, delay); err != nil {
			return Result{Error: ConnectivityMessage, Err: err, Attempts: attempts}
		}
	}

	msg := errorMessage(last)
	return Result{
		Error: msg,
		Err: &RetryExhaustedError{
			Attempts: attempts,
			Status:   last.status,
			Message:  msg,
			Cause:    last.err,
		},
		Status:   last.status,
		Attempts: attempts,
	}
}

func (c *Client) attempt(ctx context.Context, method, path string, body any) attemptOutcome {
	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return attemptOutcome{err: err, retryable: true}
	}

	out := attemptOutcome{status: resp.StatusCode(), body: resp.Body()}
	if out.status < 300 {
		if !json.Valid(out.body) {
			out.err = fmt.Errorf("response body is not valid JSON")
			out.retryable = true
		}
		return out
	}
	out.retryable = retryableStatus(out.status)
	return out
}

// errorMessage picks the body's error field, then the status table, then the transport error.
func errorMessage(o attemptOutcome) string {
	if o.status >= 300 {
		if msg := gjson.GetBytes(o.body, "error"); msg.Type == gjson.String && msg.String() != "" {
			return msg.String()
		}
		return StatusMessage(o.status)
	}
	if o.err != nil && !errors.Is(o.err, context.Canceled) {
		return o.err.Error()
	}
	return ConnectivityMessage
}

// Decode unmarshals a successful result into T, or returns the call's error.
func Decode[T any](res Result) (*T, error) {
	if !res.Success {
		if res.Err != nil {
			return nil, res.Err
		}
		return nil, errors.New(res.Error)
	}
	var out T
	if err := json.Unmarshal(res.Data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &out, nil
}
