// Package client implements the caching HTTP client that is the single
// point of contact with the GitHub REST API. It merges default and
// authentication headers, consults the response cache for GET requests,
// classifies failures into the RequestError taxonomy, and writes
// successful GET responses back into the cache.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dishcool/github-go/internal/cache"
	"github.com/dishcool/github-go/internal/config"
	"github.com/dishcool/github-go/internal/constants"
	"github.com/dishcool/github-go/internal/credentials"
	"github.com/dishcool/github-go/internal/metrics"
	"github.com/dishcool/github-go/internal/models"
)

// Descriptor describes one API request. It is a per-call value and is
// never persisted.
type Descriptor struct {
	// Endpoint is the absolute request URL without query parameters.
	Endpoint string
	// Method is the HTTP method. Defaults to GET when empty.
	Method string
	// Params are sent as query parameters for GET requests and as form
	// fields for other methods.
	Params url.Values
	// Headers are per-call overrides. They win over default and
	// authorization headers on key collision.
	Headers map[string]string
	// UseCache enables the response cache for GET requests.
	UseCache bool
}

// method returns the effective HTTP method.
func (d Descriptor) method() string {
	if d.Method == "" {
		return http.MethodGet
	}
	return d.Method
}

// Client issues requests against the GitHub API. It holds no session
// state of its own: the access token is read from the credential store on
// every call and never retained.
type Client struct {
	httpClient *http.Client
	creds      credentials.Store
	cache      *cache.ResponseCache
	github     *config.GitHubConfig
	ttl        time.Duration
	logger     *logrus.Logger
	metrics    *metrics.Metrics
}

// New creates a Client using the given collaborators. The metrics handle
// may be nil to disable recording.
func New(
	cfg *config.Config,
	creds credentials.Store,
	respCache *cache.ResponseCache,
	m *metrics.Metrics,
	logger *logrus.Logger,
) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.HTTP.Timeout,
		},
		creds:   creds,
		cache:   respCache,
		github:  &cfg.GitHub,
		ttl:     cfg.Cache.TTL,
		logger:  logger,
		metrics: m,
	}
}

// TTL returns the configured cache time-to-live.
func (c *Client) TTL() time.Duration {
	return c.ttl
}

// Fingerprint derives the deterministic cache key for a descriptor from
// its endpoint and encoded parameters. url.Values.Encode sorts by key, so
// parameter order does not fragment the cache.
func Fingerprint(d Descriptor) string {
	return d.Endpoint + "_" + d.Params.Encode()
}

// JSON performs the request described by d and decodes the response body
// into T. For cacheable GET requests it serves fresh cache entries without
// a network call and stores successful response bodies for later reuse.
//
// Failures are reported as *models.RequestError; JSON never retries.
func JSON[T any](ctx context.Context, c *Client, d Descriptor) (T, error) {
	var zero T

	u, err := url.Parse(d.Endpoint)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return zero, models.NewInvalidEndpoint(d.Endpoint)
	}

	cacheable := d.method() == http.MethodGet && d.UseCache
	key := Fingerprint(d)

	if cacheable {
		if entry, ok := c.cache.Retrieve(key); ok {
			if entry.Age(time.Now()) < c.ttl {
				var decoded T
				if decodeErr := json.Unmarshal(entry.Body, &decoded); decodeErr == nil {
					c.metrics.ObserveCacheHit()
					c.logger.WithField("endpoint", d.Endpoint).Debug("Serving response from cache")
					return decoded, nil
				}
				// A fresh entry that does not decode into the caller's
				// shape is left in place; another caller may still be
				// able to use it.
				c.logger.WithField("endpoint", d.Endpoint).Debug("Cached response did not match expected shape")
			} else {
				c.cache.Remove(key)
				c.logger.WithField("endpoint", d.Endpoint).Debug("Cache entry expired")
			}
		}
		c.metrics.ObserveCacheMiss()
	}

	body, err := c.dispatch(ctx, u, d)
	if err != nil {
		return zero, err
	}

	var decoded T
	if decodeErr := json.Unmarshal(body, &decoded); decodeErr != nil {
		c.metrics.ObserveRequest(d.method(), "decoding_error")
		c.logger.WithFields(logrus.Fields{
			"endpoint": d.Endpoint,
			"error":    decodeErr,
		}).Error("Failed to decode response body")
		return zero, models.NewDecodingError(decodeErr)
	}

	if cacheable {
		c.cache.Store(key, body)
	}

	c.metrics.ObserveRequest(d.method(), "success")
	return decoded, nil
}

// JSONAllowStale performs the request like JSON, but degrades to any
// cached response for the same fingerprint when the live call is rejected
// by the API rate limit. The second return value reports whether stale
// cached data was served; callers surface it so users know the data may be
// out of date.
func JSONAllowStale[T any](ctx context.Context, c *Client, d Descriptor) (T, bool, error) {
	decoded, err := JSON[T](ctx, c, d)
	if err == nil {
		return decoded, false, nil
	}
	if !models.IsRateLimited(err) {
		return decoded, false, err
	}

	entry, ok := c.cache.Retrieve(Fingerprint(d))
	if !ok {
		return decoded, false, err
	}

	var stale T
	if decodeErr := json.Unmarshal(entry.Body, &stale); decodeErr != nil {
		return decoded, false, err
	}

	c.logger.WithFields(logrus.Fields{
		"endpoint": d.Endpoint,
		"age":      entry.Age(time.Now()).String(),
	}).Warn("Rate limited; serving stale cached response")
	return stale, true, nil
}

// dispatch issues the network request and classifies the outcome. On
// success it returns the raw response body.
func (c *Client) dispatch(ctx context.Context, u *url.URL, d Descriptor) ([]byte, error) {
	headers := c.mergeHeaders(d.Headers)

	params := cloneValues(d.Params)
	if headers[constants.HeaderAuthorization] == "" && u.Host == c.github.APIHost() {
		// Anonymous requests to the API host carry the application
		// credentials to raise the anonymous rate limit.
		params.Set(constants.ParamClientID, c.github.ClientID)
		params.Set(constants.ParamClientSecret, c.github.ClientSecret)
		c.logger.Debug("Using client credentials for unauthenticated request")
	}

	method := d.method()
	var bodyReader io.Reader
	if method == http.MethodGet {
		u.RawQuery = mergeQuery(u.RawQuery, params)
	} else if len(params) > 0 {
		bodyReader = strings.NewReader(params.Encode())
		headers[constants.HeaderContentType] = constants.ContentTypeFormURLEncoded
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), bodyReader)
	if err != nil {
		return nil, models.NewTransportError(fmt.Errorf("failed to create HTTP request: %w", err))
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	requestID := uuid.NewString()
	c.logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"method":     method,
		"endpoint":   d.Endpoint,
	}).Debug("Sending API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveRequest(method, "transport_error")
		c.logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     method,
			"endpoint":   d.Endpoint,
			"error":      err,
		}).Error("API request failed")
		return nil, models.NewTransportError(err)
	}
	defer resp.Body.Close()

	c.observeRateLimit(requestID, resp)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.ObserveRequest(method, "transport_error")
		return nil, models.NewTransportError(fmt.Errorf("failed to read response body: %w", err))
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, c.classifyStatus(requestID, resp.StatusCode, body, method)
	}

	return body, nil
}

// classifyStatus turns a non-2xx response into the typed error taxonomy.
// The body's "message" field drives the 403 rate-limit distinction.
func (c *Client) classifyStatus(requestID string, statusCode int, body []byte, method string) error {
	var apiError struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &apiError)

	c.logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"status":     statusCode,
		"message":    apiError.Message,
	}).Warn("API request rejected")

	switch {
	case statusCode == http.StatusUnauthorized:
		c.metrics.ObserveRequest(method, "unauthorized")
		return models.NewUnauthorized(apiError.Message)
	case statusCode == http.StatusForbidden &&
		strings.Contains(strings.ToLower(apiError.Message), "rate limit"):
		c.metrics.ObserveRequest(method, "rate_limited")
		return models.NewRateLimited(apiError.Message)
	default:
		c.metrics.ObserveRequest(method, "server_error")
		return models.NewServerError(statusCode, apiError.Message)
	}
}

// mergeHeaders builds the outgoing header set. Precedence, lowest first:
// base headers, Authorization from the credential store, per-call
// overrides.
func (c *Client) mergeHeaders(overrides map[string]string) map[string]string {
	headers := map[string]string{
		constants.HeaderAccept: constants.ContentTypeJSON,
	}

	if token, ok := c.creds.RetrieveToken(); ok {
		headers[constants.HeaderAuthorization] = fmt.Sprintf(constants.TokenFormat, token)
	}

	for k, v := range overrides {
		headers[k] = v
	}
	return headers
}

// observeRateLimit surfaces GitHub's quota headers for diagnostics. The
// client never enforces the limit itself.
func (c *Client) observeRateLimit(requestID string, resp *http.Response) {
	remaining := resp.Header.Get(constants.HeaderRateLimitRemaining)
	if remaining == "" {
		return
	}

	if n, err := strconv.ParseFloat(remaining, 64); err == nil {
		c.metrics.SetRateLimitRemaining(n)
	}

	c.logger.WithFields(logrus.Fields{
		"request_id":           requestID,
		"status":               resp.StatusCode,
		"rate_limit_remaining": remaining,
		"rate_limit_reset":     resp.Header.Get(constants.HeaderRateLimitReset),
	}).Debug("Received API response")
}

// ClearCache removes all cached responses.
func (c *Client) ClearCache() {
	c.cache.RemoveAll()
}

// ClearCacheFor removes cached responses for one endpoint, covering every
// parameter variant.
func (c *Client) ClearCacheFor(endpoint string) {
	removed := c.cache.RemovePrefix(endpoint)
	c.logger.WithFields(logrus.Fields{
		"endpoint": endpoint,
		"removed":  removed,
	}).Debug("Cleared cached responses for endpoint")
}

// RemoveExpiredCache purges entries older than the configured TTL and
// returns how many were removed.
func (c *Client) RemoveExpiredCache() int {
	return c.cache.RemoveExpired(c.ttl)
}

// cloneValues copies v so augmentation never mutates the caller's
// descriptor.
func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}

// mergeQuery combines a URL's existing raw query with additional
// parameters.
func mergeQuery(rawQuery string, params url.Values) string {
	if len(params) == 0 {
		return rawQuery
	}
	if rawQuery == "" {
		return params.Encode()
	}
	existing, err := url.ParseQuery(rawQuery)
	if err != nil {
		return params.Encode()
	}
	for k, vals := range params {
		for _, v := range vals {
			existing.Add(k, v)
		}
	}
	return existing.Encode()
}
