// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package publish sends approved drafts to the remote posting endpoint.
package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pdiddy/post-engine/internal/httputil"
	"github.com/pdiddy/post-engine/pkg/types"
)

// Defaults applied when PostingConfig leaves a field unset.
const (
	DefaultTimeout       = 30 * time.Second
	DefaultRatePerSecond = 1.0
	DefaultUserAgent     = "post-engine"
)

// maxErrorBody bounds how much of a failed response is kept.
const maxErrorBody = 4096

// PostError reports a non-200 answer from the posting endpoint.
type PostError struct {
	StatusCode int
	Body       string
}

func (e *PostError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("posting failed: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("posting failed: HTTP %d: %s", e.StatusCode, e.Body)
}

type postPayload struct {
	Username string `json:"username"`
	Text     string `json:"text"`
}

// Client posts text to the configured endpoint. Outbound requests share a
// token bucket, so concurrent callers are throttled together.
type Client struct {
	endpoint   string
	apiKey     string
	username   string
	userAgent  string
	maxRetries int
	http       *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// NewClient validates cfg and builds a Client.
func NewClient(cfg types.PostingConfig, logger *zap.Logger) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("posting.endpoint is required")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("posting api key missing; set posting.api_key or .secrets/posting-api-key")
	}
	if cfg.Username == "" {
		return nil, errors.New("posting.username is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	rps := cfg.RatePerSecond
	if rps <= 0 {
		rps = DefaultRatePerSecond
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}

	return &Client{
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.APIKey,
		username:   cfg.Username,
		userAgent:  ua,
		maxRetries: cfg.MaxRetries,
		http:       &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		logger:     logger,
	}, nil
}

// Post publishes text under the configured username. Only HTTP 200 counts
// as success; any other status is returned as *PostError.
func (c *Client) Post(ctx context.Context, text string) error {
	body, err := json.Marshal(postPayload{Username: c.username, Text: text})
	if err != nil {
		return fmt.Errorf("marshaling post: %w", err)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("api-key", c.apiKey)

	resp, err := httputil.DoWithRetry(ctx, c.http, req, c.maxRetries, c.logger)
	if err != nil {
		return fmt.Errorf("posting: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &PostError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}
	io.Copy(io.Discard, resp.Body)

	c.logger.Debug("post accepted", zap.Int("chars", len([]rune(text))))
	return nil
}
