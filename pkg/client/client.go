// Package client provides the HTTP client for the Rick and Morty API with
// response revalidation, error classification and request metrics.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/character-gallery/pkg/cache"
	"github.com/Sternrassler/character-gallery/pkg/logging"
	"github.com/Sternrassler/character-gallery/pkg/rickmorty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Prometheus metrics for API client operations.
var (
	apiRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gallery_api_requests_total",
		Help: "Total upstream API requests by endpoint and status",
	}, []string{"endpoint", "status"})

	apiRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gallery_api_request_duration_seconds",
		Help:    "Upstream API request duration in seconds by endpoint",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"endpoint"})

	apiErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gallery_api_errors_total",
		Help: "Total upstream API errors by class",
	}, []string{"class"})
)

// legacyCountParam is sent with every character query. The API ignores it.
const legacyCountParam = "3"

// maxErrorBody bounds how much of an error response is read for its message.
const maxErrorBody = 4 << 10

// Client talks to the Rick and Morty API.
type Client struct {
	httpClient *http.Client
	cache      *cache.Manager
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL is the API root. Defaults to rickmorty.DefaultBaseURL.
	BaseURL string

	// UserAgent header sent with every request.
	UserAgent string

	// Timeout per HTTP request.
	Timeout time.Duration

	// Redis enables response revalidation when non-nil.
	Redis *redis.Client
}

// DefaultConfig returns the configuration used against the public API.
func DefaultConfig(userAgent string) Config {
	return Config{
		BaseURL:   rickmorty.DefaultBaseURL,
		UserAgent: userAgent,
		Timeout:   15 * time.Second,
	}
}

// New creates a new API client.
func New(cfg Config) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = rickmorty.DefaultBaseURL
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || !base.IsAbs() {
		return nil, fmt.Errorf("base url must be absolute (got %q)", cfg.BaseURL)
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be > 0 (got %s)", cfg.Timeout)
	}

	c := &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		config: cfg,
		logger: logging.NewLogger("api-client"),
	}
	if cfg.Redis != nil {
		c.cache = cache.NewManager(cfg.Redis)
	}

	return c, nil
}

// Do performs an HTTP request with revalidation, metrics and error
// classification. Responses with status >= 400 are returned to the caller
// unchanged; only transport failures produce an error.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	endpoint := endpointLabel(req.URL.Path)

	startTime := time.Now()
	defer func() {
		apiRequestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	var (
		cacheKey    cache.CacheKey
		cachedEntry *cache.CacheEntry
	)
	if c.cache != nil {
		cacheKey = cache.KeyForRequest(req)

		entry, err := c.cache.Get(ctx, cacheKey)
		if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
			c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("Cache get error")
		}
		cachedEntry = entry

		if cache.ShouldMakeConditionalRequest(cachedEntry) {
			cache.AddConditionalHeaders(req, cachedEntry)
			cache.ConditionalRequestsSent.Inc()
			c.logger.Debug().
				Str("endpoint", endpoint).
				Str("etag", cachedEntry.ETag).
				Msg("Making conditional request")
		}
	}

	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("url", req.URL.String()).
		Msg("Executing API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		errClass := c.classifyError(nil, err)
		apiErrorsTotal.WithLabelValues(string(errClass)).Inc()
		apiRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("HTTP request failed")
		return nil, &APIError{
			ErrorClass: errClass,
			URL:        req.URL.String(),
			Message:    "request failed",
			Err:        err,
		}
	}

	apiRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode == http.StatusNotModified && cachedEntry != nil {
		c.logger.Debug().Str("endpoint", endpoint).Msg("304 Not Modified - using cache")
		cache.NotModifiedResponses.Inc()

		if err := c.cache.Renew(ctx, cacheKey, resp.Header); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to renew cache entry")
		}

		resp.Body.Close()
		return cachedEntry.ToResponse(req), nil
	}

	if resp.StatusCode >= 400 {
		errClass := c.classifyError(resp, nil)
		apiErrorsTotal.WithLabelValues(string(errClass)).Inc()
		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Str("error_class", string(errClass)).
			Msg("API request error")
		return resp, nil
	}

	if c.cache != nil && resp.StatusCode == http.StatusOK {
		entry, err := cache.ResponseToEntry(resp)
		if err != nil {
			c.logger.Warn().Err(err).Msg("Failed to create cache entry")
		} else if cache.ShouldMakeConditionalRequest(entry) {
			if err := c.cache.Set(ctx, cacheKey, entry); err != nil {
				c.logger.Warn().Err(err).Msg("Failed to cache response")
			} else {
				c.logger.Debug().
					Str("endpoint", endpoint).
					Dur("ttl", entry.TTL()).
					Msg("Cached response")
			}
		}
	}

	return resp, nil
}

// classifyError categorizes an error for observability and handling.
func (c *Client) classifyError(resp *http.Response, err error) ErrorClass {
	if err != nil {
		return ErrorClassNetwork
	}

	switch {
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return ErrorClassClient
	case resp.StatusCode >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}

// Get performs a GET request. ref is either an absolute URL (as found in
// API payloads) or a path relative to the base URL.
func (c *Client) Get(ctx context.Context, ref string) (*http.Response, error) {
	target, err := c.resolve(ref)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	return c.Do(req)
}

// ListCharacters fetches one page of characters filtered by name. A name
// without matches yields an empty page, not an error.
func (c *Client) ListCharacters(ctx context.Context, page int, name string) (*rickmorty.CharacterPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("name", name)
	q.Set("count", legacyCountParam)

	var out rickmorty.CharacterPage
	err := c.getJSON(ctx, "/character?"+q.Encode(), &out)
	if errors.Is(err, ErrNotFound) {
		c.logger.Debug().
			Int("page", page).
			Str("name", name).
			Msg("No characters match query")
		return &rickmorty.CharacterPage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list characters: %w", err)
	}

	return &out, nil
}

// GetEpisode fetches the episode resource at ref.
func (c *Client) GetEpisode(ctx context.Context, ref string) (*rickmorty.Episode, error) {
	var out rickmorty.Episode
	if err := c.getJSON(ctx, ref, &out); err != nil {
		return nil, fmt.Errorf("get episode: %w", err)
	}
	return &out, nil
}

// getJSON GETs ref and decodes a 2xx JSON body into v.
func (c *Client) getJSON(ctx context.Context, ref string, v any) error {
	resp, err := c.Get(ctx, ref)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			ErrorClass: c.classifyError(resp, nil),
			URL:        requestURL(resp),
			Message:    errorMessage(resp),
		}
		if resp.StatusCode == http.StatusNotFound {
			apiErr.Err = ErrNotFound
		}
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		apiErrorsTotal.WithLabelValues(string(ErrorClassDecode)).Inc()
		return &APIError{
			StatusCode: resp.StatusCode,
			ErrorClass: ErrorClassDecode,
			URL:        requestURL(resp),
			Message:    "decode response",
			Err:        err,
		}
	}

	return nil
}

func requestURL(resp *http.Response) string {
	if resp.Request == nil || resp.Request.URL == nil {
		return ""
	}
	return resp.Request.URL.String()
}

func (c *Client) resolve(ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", ref, err)
	}
	if u.IsAbs() {
		return ref, nil
	}
	return c.config.BaseURL + "/" + strings.TrimLeft(ref, "/"), nil
}

// errorMessage extracts {"error": "..."} from an API error body, falling
// back to the status line.
func errorMessage(resp *http.Response) string {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err == nil {
		var payload struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
			return payload.Error
		}
	}
	return resp.Status
}

// endpointLabel reduces a request path to a low-cardinality metric label:
// the last path segment that is not an id.
func endpointLabel(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i := len(segments) - 1; i >= 0; i-- {
		seg := segments[i]
		if seg == "" {
			continue
		}
		if _, err := strconv.Atoi(seg); err == nil {
			continue
		}
		return seg
	}
	return "root"
}

// Ping verifies the revalidation store. It is a no-op without Redis.
func (c *Client) Ping(ctx context.Context) error {
	if c.cache == nil {
		return nil
	}
	return c.cache.Ping(ctx)
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// GetCache returns the cache manager, nil when revalidation is disabled.
func (c *Client) GetCache() *cache.Manager {
	return c.cache
}
