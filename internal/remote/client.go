// Package remote is the HTTP client for the learning service: answer
// reporting, session finalization and the streak lookup. Question
// selection and spaced repetition live entirely on the service side.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"vocadrill/internal/practice"
)

const defaultTimeout = 10 * time.Second

// Client talks to the learning service over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

var _ practice.LearningService = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger sets the client logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// NewClient builds a Client for the service at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: defaultTimeout},
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SubmitAnswer reports one answered question.
func (c *Client) SubmitAnswer(ctx context.Context, sub practice.AnswerSubmission) error {
	url := fmt.Sprintf("%s/api/v1/sessions/%s/answers", c.baseURL, sub.SessionID)
	return c.post(ctx, url, sub, nil)
}

// SubmitAnswerBatch reports one matching round's outcomes in a single
// call.
func (c *Client) SubmitAnswerBatch(ctx context.Context, sessionID string, results []practice.BatchResult) error {
	url := fmt.Sprintf("%s/api/v1/sessions/%s/answers/batch", c.baseURL, sessionID)
	body := struct {
		Results []practice.BatchResult `json:"results"`
	}{Results: results}
	return c.post(ctx, url, body, nil)
}

// FinalizeSession marks the session complete on the service and returns
// its summary.
func (c *Client) FinalizeSession(ctx context.Context, sessionID string, durationSeconds int) (*practice.FinalizeResult, error) {
	url := fmt.Sprintf("%s/api/v1/sessions/%s/finalize", c.baseURL, sessionID)
	body := struct {
		DurationSeconds int `json:"duration_seconds"`
	}{DurationSeconds: durationSeconds}

	var result practice.FinalizeResult
	if err := c.post(ctx, url, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// FetchStreakStatus reads the current streak state.
func (c *Client) FetchStreakStatus(ctx context.Context) (*practice.StreakStatus, error) {
	url := c.baseURL + "/api/v1/streak"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	var status practice.StreakStatus
	if err := c.do(req, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// post sends a JSON body and optionally decodes the response into out.
func (c *Client) post(ctx context.Context, url string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("request failed",
			zap.String("url", req.URL.Path),
			zap.Error(err))
		return &ErrUnavailable{Err: err}
	}
	defer resp.Body.Close()

	c.log.Debug("request done",
		zap.String("url", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		// Fall through to decode.
	case resp.StatusCode == http.StatusTooManyRequests:
		return &ErrRateLimited{RetryAfter: retryAfter(resp)}
	case resp.StatusCode >= 500:
		return &ErrUnavailable{StatusCode: resp.StatusCode}
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &ErrRejected{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	secs, err := strconv.Atoi(h)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
