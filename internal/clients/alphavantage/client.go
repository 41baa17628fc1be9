// Package alphavantage provides a client for the Alpha Vantage API.
//
// Only the endpoints the dashboard needs are implemented: treasury yields for
// the rate history and daily bars for the benchmark charts. Responses are
// cached in memory and, when a repository is attached, in client_data.db so
// that a failed call can fall back to stale data.
package alphavantage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aristath/yieldboard/internal/clientdata"
	"github.com/rs/zerolog"
)

const (
	defaultBaseURL    = "https://www.alphavantage.co/query"
	defaultDailyLimit = 25
)

// ClientInterface is the subset of the client used by services.
type ClientInterface interface {
	GetTreasuryYield(ctx context.Context, maturity, interval string) (*EconomicData, error)
	GetDailyPrices(ctx context.Context, symbol string, full bool) ([]DailyPrice, error)
	GetRemainingRequests() int
}

type cacheEntry struct {
	value     interface{}
	expiresAt time.Time
}

// Client talks to Alpha Vantage with a daily request budget.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger

	mu           sync.Mutex
	requestCount int
	dailyLimit   int
	resetAt      time.Time

	cacheMu  sync.RWMutex
	cache    map[string]cacheEntry
	cacheTTL CacheTTL

	cacheRepo *clientdata.Repository
}

// NewClient creates a client with the free-tier budget of 25 requests per day.
func NewClient(apiKey string, log zerolog.Logger) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        log.With().Str("client", "alphavantage").Logger(),
		dailyLimit: defaultDailyLimit,
		resetAt:    nextMidnightUTC(),
		cache:      make(map[string]cacheEntry),
		cacheTTL:   DefaultCacheTTL(),
	}
}

// SetCacheRepo attaches persistent storage. Pass nil to disable it.
func (c *Client) SetCacheRepo(repo *clientdata.Repository) {
	c.cacheRepo = repo
}

// SetCacheTTL replaces the in-memory cache durations.
func (c *Client) SetCacheTTL(ttl CacheTTL) {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()
	c.cacheTTL = ttl
}

// GetRemainingRequests returns how many calls are left in today's budget.
func (c *Client) GetRemainingRequests() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maybeResetLocked()
	return c.dailyLimit - c.requestCount
}

// ResetDailyCounter restores the full daily budget.
func (c *Client) ResetDailyCounter() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requestCount = 0
	c.resetAt = nextMidnightUTC()
}

// ClearCache drops every in-memory entry. The persistent cache is untouched.
func (c *Client) ClearCache() {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()
	c.cache = make(map[string]cacheEntry)
}

// GetTreasuryYield fetches the US treasury yield series for a maturity
// (3month, 2year, 5year, 7year, 10year, 30year) at daily, weekly or monthly
// interval. Values are percentages as published.
func (c *Client) GetTreasuryYield(ctx context.Context, maturity, interval string) (*EconomicData, error) {
	params := map[string]string{"maturity": maturity, "interval": interval}
	key := buildCacheKey("TREASURY_YIELD", params)

	return fetchCached(ctx, c, clientdata.EconomicIndicators, key, c.ttl().EconomicIndicators,
		clientdata.TTLEconomic, func(body []byte) (*EconomicData, error) {
			data, err := parseEconomicData(body)
			if err != nil {
				return nil, err
			}
			if len(data.Data) == 0 {
				return nil, fmt.Errorf("treasury yield %s/%s returned no observations", maturity, interval)
			}
			return data, nil
		}, "TREASURY_YIELD", params)
}

// GetDailyPrices fetches daily bars for symbol, newest first. full requests the
// complete history instead of the last 100 trading days.
func (c *Client) GetDailyPrices(ctx context.Context, symbol string, full bool) ([]DailyPrice, error) {
	outputSize := "compact"
	if full {
		outputSize = "full"
	}
	params := map[string]string{"symbol": symbol, "outputsize": outputSize}
	key := symbol + ":" + outputSize

	prices, err := fetchCached(ctx, c, clientdata.DailyPrices, key, c.ttl().PriceData,
		clientdata.TTLDailyPrices, parseDailyTimeSeries, "TIME_SERIES_DAILY", params)
	if err != nil {
		var apiErr APIError
		if errors.As(err, &apiErr) {
			return nil, ErrSymbolNotFound{Symbol: symbol}
		}
		return nil, err
	}
	return prices, nil
}

func (c *Client) ttl() CacheTTL {
	c.cacheMu.RLock()
	defer c.cacheMu.RUnlock()
	return c.cacheTTL
}

// fetchCached resolves a call from memory, then fresh persistent data, then
// the API, and finally stale persistent data if the API call fails.
func fetchCached[T any](
	ctx context.Context,
	c *Client,
	table clientdata.Table,
	key string,
	memoryTTL, persistTTL time.Duration,
	parse func([]byte) (T, error),
	function string,
	params map[string]string,
) (T, error) {
	var zero T

	if cached, ok := c.getFromCache(key); ok {
		if value, ok := cached.(T); ok {
			return value, nil
		}
	}

	if value, ok := loadPersisted[T](c, table, key, true); ok {
		c.setCache(key, value, memoryTTL)
		return value, nil
	}

	body, err := c.fetch(ctx, function, params)
	var value T
	if err == nil {
		value, err = parse(body)
	}
	if err != nil {
		if stale, ok := loadPersisted[T](c, table, key, false); ok {
			c.log.Warn().Err(err).Str("function", function).Str("key", key).
				Msg("API call failed, using stale cached data")
			return stale, nil
		}
		return zero, err
	}

	c.setCache(key, value, memoryTTL)
	if c.cacheRepo != nil {
		if err := c.cacheRepo.Store(table, key, value, persistTTL); err != nil {
			c.log.Warn().Err(err).Str("table", table.Name).Str("key", key).Msg("Failed to persist response")
		}
	}
	return value, nil
}

func loadPersisted[T any](c *Client, table clientdata.Table, key string, freshOnly bool) (T, bool) {
	var value T
	if c.cacheRepo == nil {
		return value, false
	}

	var (
		data json.RawMessage
		err  error
	)
	if freshOnly {
		data, err = c.cacheRepo.GetIfFresh(table, key)
	} else {
		data, err = c.cacheRepo.Get(table, key)
	}
	if err != nil || data == nil {
		return value, false
	}
	if err := json.Unmarshal(data, &value); err != nil {
		c.log.Warn().Err(err).Str("table", table.Name).Str("key", key).Msg("Dropping unreadable cache entry")
		if err := c.cacheRepo.Delete(table, key); err != nil {
			c.log.Debug().Err(err).Str("table", table.Name).Str("key", key).Msg("Failed to drop cache entry")
		}
		return value, false
	}
	return value, true
}

// fetch performs one API call, counting it against the daily budget.
func (c *Client) fetch(ctx context.Context, function string, params map[string]string) ([]byte, error) {
	if c.apiKey == "" {
		return nil, ErrInvalidAPIKey{}
	}
	if err := c.checkRateLimit(); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("function", function)
	for k, v := range params {
		query.Set(k, v)
	}
	query.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.log.Debug().
		Str("function", function).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Int("remaining", c.GetRemainingRequests()).
		Msg("API call completed")

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}
	if err := c.checkAPIError(body); err != nil {
		return nil, err
	}
	return body, nil
}

func (c *Client) checkRateLimit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.maybeResetLocked()
	if c.requestCount >= c.dailyLimit {
		return ErrRateLimitExceeded{ResetAt: c.resetAt}
	}
	c.requestCount++
	return nil
}

func (c *Client) maybeResetLocked() {
	if time.Now().UTC().After(c.resetAt) {
		c.requestCount = 0
		c.resetAt = nextMidnightUTC()
	}
}

// checkAPIError recognizes the error payloads Alpha Vantage returns with 200 OK.
func (c *Client) checkAPIError(body []byte) error {
	if strings.Contains(string(body), "Thank you for using Alpha Vantage") {
		return ErrRateLimitExceeded{}
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		// Not a JSON object; the parser reports anything malformed.
		return nil
	}

	if msg, ok := payload["Error Message"].(string); ok {
		if strings.Contains(strings.ToLower(msg), "apikey") {
			return ErrInvalidAPIKey{}
		}
		return APIError{Message: msg}
	}
	for _, field := range []string{"Note", "Information"} {
		if msg, ok := payload[field].(string); ok {
			if strings.Contains(strings.ToLower(msg), "invalid api") {
				return ErrInvalidAPIKey{}
			}
			c.log.Warn().Str("message", msg).Msg("Alpha Vantage throttled the request")
			return ErrRateLimitExceeded{}
		}
	}
	return nil
}

func (c *Client) getFromCache(key string) (interface{}, bool) {
	c.cacheMu.RLock()
	defer c.cacheMu.RUnlock()

	entry, ok := c.cache[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.value, true
}

func (c *Client) setCache(key string, value interface{}, ttl time.Duration) {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()
	c.cache[key] = cacheEntry{value: value, expiresAt: time.Now().Add(ttl)}
}

// buildCacheKey produces a stable key from the function and its parameters.
// The API key never becomes part of the key.
func buildCacheKey(function string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == "apikey" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(function)
	for _, k := range keys {
		b.WriteString(":")
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(params[k])
	}
	return b.String()
}

func nextMidnightUTC() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)
}
