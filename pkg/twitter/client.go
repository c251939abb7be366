package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"followrank/pkg/config"
	errs "followrank/pkg/errors"
	"followrank/pkg/logger"
	"followrank/pkg/ratelimit"
	"followrank/pkg/retry"
)

// Client represents a follower API client
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	baseURL    string
	pageSize   int
	retry      config.RetryConfig
	clock      ratelimit.Clock
	logger     logger.Logger
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithClock sets the clock used for retry waits and budget timestamps
func WithClock(clock ratelimit.Clock) Option {
	return func(c *Client) { c.clock = clock }
}

// NewClient creates a follower API client authenticated with a bearer token
func NewClient(cfg *config.TwitterConfig, retryCfg *config.RetryConfig, token string, log logger.Logger, opts ...Option) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		headers: map[string]string{
			"Authorization": "Bearer " + token,
			"Accept":        "application/json",
		},
		baseURL:  baseURL,
		pageSize: cfg.PageSize,
		clock:    ratelimit.RealClock{},
		logger:   log.WithField("component", "twitter"),
	}
	if cfg.UserAgent != "" {
		c.headers["User-Agent"] = cfg.UserAgent
	}
	if retryCfg != nil {
		c.retry = *retryCfg
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetHeader sets a custom header for the client
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// VerifyCredentials checks the token and returns the authenticated identity
func (c *Client) VerifyCredentials(ctx context.Context) (*User, error) {
	var user User
	if _, err := c.getJSON(ctx, VerifyCredentialsURL(c.baseURL), &user); err != nil {
		c.logger.WithError(err).Error("failed to verify credentials")
		return nil, err
	}

	c.logger.DebugWithFields("credentials verified", map[string]interface{}{
		"user_id":     user.ID,
		"screen_name": user.ScreenName,
	})
	return &user, nil
}

// FollowerIDs fetches one page of follower ids of accountID.
// Pass FirstCursor for the first page.
func (c *Client) FollowerIDs(ctx context.Context, accountID, cursor int64) (*IDsPage, error) {
	url := FollowerIDsURL(c.baseURL, accountID, cursor, c.pageSize)

	c.logger.DebugWithFields("fetching follower ids", map[string]interface{}{
		"account_id": accountID,
		"cursor":     cursor,
	})

	var resp idsResponse
	header, err := c.getJSON(ctx, url, &resp)
	if err != nil {
		c.logger.WithError(err).WithFields(map[string]interface{}{
			"account_id": accountID,
			"cursor":     cursor,
		}).Debug("failed to fetch follower ids")
		return nil, err
	}

	page := &IDsPage{
		IDs:        resp.IDs,
		NextCursor: resp.NextCursor,
		RateLimit:  ratelimit.ParseHeaders(header, c.clock.Now()),
	}

	c.logger.DebugWithFields("fetched follower ids", map[string]interface{}{
		"account_id":  accountID,
		"count":       len(page.IDs),
		"next_cursor": page.NextCursor,
		"remaining":   page.RateLimit.Remaining,
	})
	return page, nil
}

// getJSON performs a GET with retries and decodes the JSON body into target
func (c *Client) getJSON(ctx context.Context, url string, target interface{}) (http.Header, error) {
	return retry.DoWithResult(func() (http.Header, error) {
		return c.getJSONOnce(ctx, url, target)
	}, c.retryConfig(ctx))
}

func (c *Client) retryConfig(ctx context.Context) *retry.Config {
	attempts := c.retry.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	return &retry.Config{
		MaxAttempts: attempts,
		Backoff: &retry.ExponentialBackoff{
			BaseDelay:    c.retry.BaseDelay,
			MaxDelay:     c.retry.MaxDelay,
			Multiplier:   2.0,
			JitterFactor: 0.1,
		},
		RetryIf: retry.DefaultRetryIf,
		Context: ctx,
		Sleep:   c.clock.Sleep,
		Logger:  c.logger,
	}
}

func (c *Client) getJSONOnce(ctx context.Context, url string, target interface{}) (http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errs.Wrap(errs.KindOther, 0, "failed to create request", err)
	}

	resp, err := c.doRequest(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.Wrap(errs.KindOther, 0, "failed to read response body", err)
	}

	if err := c.checkResponseStatus(resp, body); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(body, target); err != nil {
		bodyPreview := string(body)
		if len(bodyPreview) > 200 {
			bodyPreview = bodyPreview[:200] + "..."
		}
		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"url":          url,
			"status":       resp.StatusCode,
			"error":        err.Error(),
			"body_preview": bodyPreview,
		})
		return nil, errs.Wrap(errs.KindOther, resp.StatusCode, "failed to parse JSON", err)
	}

	return resp.Header, nil
}

// doRequest performs an HTTP request with the configured headers
func (c *Client) doRequest(req *http.Request) (*http.Response, error) {
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.logger.WarnWithFields("HTTP request failed", map[string]interface{}{
			"url":      req.URL.Path,
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, errs.Wrap(errs.KindOther, 0, "network error", err)
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"url":      req.URL.Path,
		"status":   resp.StatusCode,
		"duration": duration,
	})
	return resp, nil
}

// checkResponseStatus maps non-2xx responses to classified errors
func (c *Client) checkResponseStatus(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	message := http.StatusText(resp.StatusCode)
	var payload apiErrors
	if json.Unmarshal(body, &payload) == nil && payload.message() != "" {
		message = payload.message()
	}

	kind := errs.FromStatus(resp.StatusCode)
	fields := map[string]interface{}{
		"status": resp.StatusCode,
		"url":    resp.Request.URL.Path,
		"kind":   string(kind),
	}
	if errs.IsDroppable(kind) {
		c.logger.DebugWithFields("account unavailable", fields)
	} else {
		c.logger.WarnWithFields("API error", fields)
	}

	return errs.New(kind, resp.StatusCode, fmt.Sprintf("status %d: %s", resp.StatusCode, message))
}
