// Package kipris is a client for the KIPRIS Plus patent word search.
package kipris

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/semiconip/patentspike/schema"
	"go.uber.org/zap"
)

// Service constants.
const (
	DefaultBaseURL   = "http://plus.kipris.or.kr/kipo-api/kipi"
	SearchPath       = "/patUtiModInfoSearchSevice/getWordSearch"
	PageSize         = 100
	MaxPages         = 5
	DefaultPageDelay = 300 * time.Millisecond
	DefaultTimeout   = 15 * time.Second
	userAgent        = "patentspike"
)

// dateLayout is the format KIPRIS expects for openStartDate and openEndDate.
const dateLayout = "20060102"

// ErrMissingAPIKey is returned by NewClient when no service key is given.
var ErrMissingAPIKey = errors.New("kipris: missing API key")

// APIError is a non-200 answer from KIPRIS.
type APIError struct {
	StatusCode int
	Body       string
	RequestID  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("kipris: HTTP %d: %s [request_id=%s]", e.StatusCode, e.Body, e.RequestID)
}

// IsRateLimited reports whether the server throttled the request.
func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// IsServerError reports whether the failure is on the server side.
func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}

// Client searches published patents by applicant word.
type Client struct {
	baseURL      string
	apiKey       string
	httpClient   *http.Client
	logger       *zap.Logger
	retryMax     int
	retryWaitMin time.Duration
	retryWaitMax time.Duration
	pageDelay    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another host, e.g. a test server.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimSuffix(u, "/")
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRetry sets the retry count and backoff bounds for transient failures.
func WithRetry(maxRetries int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.retryMax = maxRetries
		c.retryWaitMin = waitMin
		c.retryWaitMax = waitMax
	}
}

// WithPageDelay sets the pause between page requests.
func WithPageDelay(d time.Duration) Option {
	return func(c *Client) {
		c.pageDelay = d
	}
}

// NewClient creates a client for the given service key.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}
	c := &Client{
		baseURL:      DefaultBaseURL,
		apiKey:       apiKey,
		httpClient:   &http.Client{Timeout: DefaultTimeout},
		logger:       zap.NewNop(),
		retryMax:     2,
		retryWaitMin: 500 * time.Millisecond,
		retryWaitMax: 5 * time.Second,
		pageDelay:    DefaultPageDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	if _, err := url.Parse(c.baseURL); err != nil {
		return nil, fmt.Errorf("kipris: invalid base URL: %w", err)
	}
	return c, nil
}

// SearchPatents pages through the word search for query, restricted to patents
// published in [start, end]. It reads at most maxPages pages of PageSize items and
// stops early on an empty or short page.
//
// A failure on the first page is returned as an error. A failure on a later page
// ends the search and the pages read so far are returned.
func (c *Client) SearchPatents(ctx context.Context, query string, start, end time.Time, maxPages int) ([]schema.Patent, error) {
	if maxPages <= 0 || maxPages > MaxPages {
		maxPages = MaxPages
	}
	var all []schema.Patent
	for page := 1; page <= maxPages; page++ {
		if page > 1 {
			if err := sleepCtx(ctx, c.pageDelay); err != nil {
				return all, err
			}
		}
		items, raw, err := c.fetchPage(ctx, query, start, end, page)
		if err != nil {
			if page == 1 {
				return nil, err
			}
			c.logger.Warn("kipris page failed, keeping partial result",
				zap.String("query", query), zap.Int("page", page), zap.Int("patents", len(all)), zap.Error(err))
			break
		}
		all = append(all, items...)
		if raw < PageSize {
			break
		}
	}
	c.logger.Debug("kipris search done", zap.String("query", query), zap.Int("patents", len(all)))
	return all, nil
}

// fetchPage returns the dated patents of one page plus the raw item count.
func (c *Client) fetchPage(ctx context.Context, query string, start, end time.Time, page int) ([]schema.Patent, int, error) {
	params := url.Values{}
	params.Set("word", query)
	params.Set("ServiceKey", c.apiKey)
	params.Set("numOfRows", strconv.Itoa(PageSize))
	params.Set("pageNo", strconv.Itoa(page))
	params.Set("patent", "Y")
	params.Set("utility", "N")
	params.Set("openStartDate", start.Format(dateLayout))
	params.Set("openEndDate", end.Format(dateLayout))

	body, err := c.get(ctx, c.baseURL+SearchPath+"?"+params.Encode())
	if err != nil {
		return nil, 0, err
	}
	return parseSearchResponse(body)
}

// get performs a GET with retries on transport errors, 429 and 5xx answers.
func (c *Client) get(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.retryMax; attempt++ {
		if attempt > 0 {
			backoff := c.calculateBackoff(attempt)
			c.logger.Debug("kipris retry", zap.Int("attempt", attempt), zap.Duration("backoff", backoff))
			if err := sleepCtx(ctx, backoff); err != nil {
				return nil, err
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("kipris: failed to create request: %w", err)
		}
		requestID := uuid.NewString()
		req.Header.Set("Accept", "application/xml")
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("X-Request-ID", requestID)

		started := time.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("kipris: request failed: %w", err)
			continue
		}
		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("kipris: failed to read response body: %w", err)
			continue
		}
		c.logger.Debug("kipris request", zap.Int("status", resp.StatusCode),
			zap.Duration("elapsed", time.Since(started)), zap.String("request_id", requestID))

		if resp.StatusCode == http.StatusOK {
			return body, nil
		}
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: truncateBody(body), RequestID: requestID}
		if !apiErr.IsRateLimited() && !apiErr.IsServerError() {
			return nil, apiErr
		}
		lastErr = apiErr
	}
	return nil, lastErr
}

func (c *Client) calculateBackoff(attempt int) time.Duration {
	backoff := c.retryWaitMin * time.Duration(1<<uint(attempt-1))
	if backoff > c.retryWaitMax {
		backoff = c.retryWaitMax
	}
	if backoff < 4 {
		return backoff
	}
	return backoff + rand.N(backoff/4)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func truncateBody(b []byte) string {
	const limit = 256
	s := strings.TrimSpace(string(b))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
