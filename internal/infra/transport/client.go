// Package transport implements the HTTP client for the enforcement-task
// API: page fetches, per-task detail fetches, and the valid-filters
// endpoint. It owns authentication headers, request throttling, and retry;
// the paging layer above it never retries.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/google/uuid"

	"github.com/seclens/seclens-go/internal/domain/task"
	"github.com/seclens/seclens-go/internal/paging"
	"github.com/seclens/seclens-go/pkg/common"
	"github.com/seclens/seclens-go/pkg/common/logger"
)

const (
	tasksPath   = "/api/enforcements/tasks"
	filtersPath = "/api/enforcements/tasks/filters"
)

// RetryConfig defines transport-level retry behavior. Zero MaxAttempts
// disables retry entirely.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
}

// Config carries the connection settings for a Client.
type Config struct {
	// BaseURL is the scheme and host of the platform, e.g.
	// "https://seclens.example.com".
	BaseURL string

	// APIKey and APISecret authenticate every request.
	APIKey    string
	APISecret string

	// RateLimit caps outbound requests per second. Zero disables
	// throttling. RateBurst defaults to 1 when unset.
	RateLimit float64
	RateBurst int

	// Retry controls backoff retry of connection failures and 5xx
	// responses.
	Retry RetryConfig
}

// APIError is a transport failure surfaced unmodified to callers: a non-2xx
// response other than the not-found cases mapped to the domain taxonomy.
type APIError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api request %s failed: status %d: %s", e.URL, e.StatusCode, e.Body)
}

// Client talks to the enforcement-task API over HTTP.
type Client struct {
	httpClient *http.Client
	cfg        Config
	base       *url.URL
	limiter    *common.RateLimiter
	log        *logger.Logger
}

// NewClient creates a Client. A nil httpClient falls back to a default
// client with a 30 second timeout.
func NewClient(httpClient *http.Client, cfg Config, log *logger.Logger) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base url %q: %w", cfg.BaseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must include scheme and host", cfg.BaseURL)
	}

	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		httpClient: httpClient,
		cfg:        cfg,
		base:       base,
		limiter:    common.NewRateLimiter(cfg.RateLimit, burst),
		log:        log.With("component", "transport"),
	}, nil
}

// FetchTaskPage fetches one page of basic task rows for the given cursor
// and filter criteria. It satisfies the paging fetch contract for the task
// collection.
func (c *Client) FetchTaskPage(ctx context.Context, req paging.PageRequest, criteria task.Criteria) (paging.Page[task.Basic], error) {
	query := url.Values{}
	query.Set("offset", strconv.Itoa(req.Offset))
	query.Set("limit", strconv.Itoa(req.Limit))
	encodeCriteria(query, criteria)

	var payload struct {
		Tasks []task.Basic `json:"tasks"`
		Total int          `json:"total"`
	}
	if err := c.get(ctx, tasksPath, query, &payload); err != nil {
		return paging.Page[task.Basic]{}, err
	}

	return paging.Page[task.Basic]{Rows: payload.Tasks, Total: payload.Total}, nil
}

// FetchTaskFull fetches the complete detail record for one task id. A 404
// maps to task.ErrTaskNotFound; every other failure surfaces as-is.
func (c *Client) FetchTaskFull(ctx context.Context, id string) (task.Full, error) {
	var payload struct {
		Task task.Full `json:"task"`
	}
	err := c.get(ctx, tasksPath+"/"+url.PathEscape(id), nil, &payload)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return task.Full{}, fmt.Errorf("task %s: %w", id, task.ErrTaskNotFound)
		}
		return task.Full{}, err
	}
	return payload.Task, nil
}

// FetchValidFilters fetches the five raw dimension value-sets and builds
// the immutable Filters value object from them.
func (c *Client) FetchValidFilters(ctx context.Context) (*task.Filters, error) {
	var payload struct {
		ActionNames  []string              `json:"action_names"`
		DiscoveryIDs []string              `json:"discovery_ids"`
		Enforcements []task.EnforcementRef `json:"enforcements"`
		RunIDs       []int                 `json:"run_ids"`
		Statuses     []string              `json:"statuses"`
	}
	if err := c.get(ctx, filtersPath, nil, &payload); err != nil {
		return nil, err
	}

	return task.NewFilters(
		payload.ActionNames,
		payload.DiscoveryIDs,
		payload.Enforcements,
		payload.RunIDs,
		payload.Statuses,
	), nil
}

// get performs one authenticated GET, retrying connection failures and 5xx
// responses per the retry config, and decodes the 2xx body into out.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := *c.base
	u.Path = path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	operation := func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(fmt.Errorf("rate limiter wait: %w", err))
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("building request: %w", err))
		}
		req.Header.Set("Api-Key", c.cfg.APIKey)
		req.Header.Set("Api-Secret", c.cfg.APISecret)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Request-Id", uuid.New().String())

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("request %s failed: %w", u.String(), err)
		}
		defer resp.Body.Close()

		if rps, burst, ok := rateFromHeaders(resp.Header, time.Now()); ok {
			c.limiter.UpdateLimits(rps, burst)
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			apiErr := &APIError{StatusCode: resp.StatusCode, URL: u.String(), Body: string(data)}
			if resp.StatusCode >= 500 {
				return apiErr
			}
			return backoff.Permanent(apiErr)
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return backoff.Permanent(fmt.Errorf("decoding response from %s: %w", u.String(), err))
		}
		return nil
	}

	if c.cfg.Retry.MaxAttempts <= 0 {
		err := operation()
		return unwrapPermanent(err)
	}

	expBackoff := backoff.NewExponentialBackOff()
	if c.cfg.Retry.InitialWait > 0 {
		expBackoff.InitialInterval = c.cfg.Retry.InitialWait
	}
	if c.cfg.Retry.MaxWait > 0 {
		expBackoff.MaxInterval = c.cfg.Retry.MaxWait
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(expBackoff, uint64(c.cfg.Retry.MaxAttempts)), ctx)
	return unwrapPermanent(backoff.Retry(operation, policy))
}

// rateFromHeaders derives a request rate from the server's rate-limit
// response headers: spend the remaining quota evenly until the reset time,
// with a safety margin. ok is false when the headers are absent, malformed,
// or the window has already passed.
func rateFromHeaders(h http.Header, now time.Time) (rps float64, burst int, ok bool) {
	remaining, _ := strconv.ParseInt(h.Get("X-RateLimit-Remaining"), 10, 64)
	reset, _ := strconv.ParseInt(h.Get("X-RateLimit-Reset"), 10, 64)
	limit, _ := strconv.ParseInt(h.Get("X-RateLimit-Limit"), 10, 64)
	if remaining <= 0 || reset <= 0 || limit <= 0 {
		return 0, 0, false
	}

	window := time.Unix(reset, 0).Sub(now)
	if window <= 0 {
		return 0, 0, false
	}

	burst = int(remaining / 10)
	if burst < 1 {
		burst = 1
	}
	return float64(remaining) / window.Seconds() * 0.9, burst, true
}

// encodeCriteria writes the filter criteria into the request query.
func encodeCriteria(query url.Values, criteria task.Criteria) {
	for _, v := range criteria.ActionNames {
		query.Add("action", v)
	}
	for _, v := range criteria.DiscoveryIDs {
		query.Add("discovery", v)
	}
	for _, v := range criteria.EnforcementIDs {
		query.Add("enforcement", v)
	}
	for _, v := range criteria.RunIDs {
		query.Add("run", strconv.Itoa(v))
	}
	for _, v := range criteria.Statuses {
		query.Add("status", v)
	}
	if criteria.Search != "" {
		query.Set("search", criteria.Search)
	}
}

// unwrapPermanent removes the backoff permanent-error wrapper so callers
// see the underlying failure.
func unwrapPermanent(err error) error {
	if perm, ok := err.(*backoff.PermanentError); ok {
		return perm.Err
	}
	return err
}
