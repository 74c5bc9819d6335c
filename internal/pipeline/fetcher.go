package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/opengreens/verdant/internal/cache"
	"github.com/opengreens/verdant/internal/model"
	"github.com/opengreens/verdant/internal/observability"
	"github.com/opengreens/verdant/internal/util"
	"github.com/opengreens/verdant/internal/worker"
)

// Fetcher is the shared HTTP client for the API-backed sources. It enforces
// per-host rate limits, honors robots.txt when enabled, and caches responses
// so repeated runs inside the TTL window do not hammer the city portals.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	limiter    *worker.Limiter
	robots     *util.RobotsChecker // nil when robots checking is off
	store      cache.Cache         // nil when caching is off
	cacheTTL   time.Duration
	metrics    *observability.Metrics // nil when metrics are off
}

// NewFetcher creates a fetcher from the HTTP, cache and rate-limit sections
// of the configuration.
func NewFetcher(cfg *model.Config) *Fetcher {
	f := &Fetcher{
		httpClient: &http.Client{
			Timeout: cfg.HTTP.Timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, ""),
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent: cfg.HTTP.UserAgent,
		maxBytes:  cfg.HTTP.MaxBodyBytes,
		limiter:   worker.NewLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst),
	}

	if cfg.HTTP.CheckRobots {
		f.robots = util.NewRobotsChecker(cfg.HTTP.UserAgent, cfg.HTTP.Timeout)
	}

	if cfg.Cache.Enabled {
		f.cacheTTL = cfg.Cache.TTL
		if cfg.Cache.Dir != "" {
			f.store = cache.NewLayeredCache(cfg.Cache.TTL, cfg.Cache.Dir, cfg.Cache.TTL)
		} else {
			f.store = cache.NewMemoryCache(cfg.Cache.TTL, 10*time.Minute)
		}
	}

	return f
}

// WithMetrics attaches run metrics to the fetcher.
func (f *Fetcher) WithMetrics(m *observability.Metrics) *Fetcher {
	f.metrics = m
	return f
}

// Get fetches a URL and returns the response body. Cached bodies are served
// without touching the network or the rate limiter.
func (f *Fetcher) Get(ctx context.Context, rawURL string) ([]byte, error) {
	key := cache.Key(rawURL)
	if f.store != nil {
		if body, found := f.store.Get(key); found {
			return body, nil
		}
	}

	if f.robots != nil {
		allowed, crawlDelay, err := f.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return nil, fmt.Errorf("robots check: %w", err)
		}
		if !allowed {
			return nil, fmt.Errorf("disallowed by robots.txt: %s", rawURL)
		}
		if err := f.limiter.WaitWithDelay(ctx, rawURL, crawlDelay); err != nil {
			return nil, err
		}
	} else {
		if err := f.limiter.Wait(ctx, rawURL); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	body, err := f.doWithRetry(ctx, rawURL)
	if f.metrics != nil {
		f.metrics.FetchDuration.WithLabelValues(hostOf(rawURL)).Observe(time.Since(start).Seconds())
	}
	if err != nil {
		return nil, err
	}

	if f.store != nil {
		_ = f.store.Set(key, body, f.cacheTTL)
	}

	return body, nil
}

// fetchSleepFunc is swapped out in tests to avoid real backoff waits.
var fetchSleepFunc = time.Sleep

const fetchMaxAttempts = 3

// doWithRetry retries transient failures (429, 5xx, transport errors) with
// linear backoff.
func (f *Fetcher) doWithRetry(ctx context.Context, rawURL string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= fetchMaxAttempts; attempt++ {
		body, err := f.do(ctx, rawURL)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !isRetryableFetchError(err) || attempt == fetchMaxAttempts {
			break
		}
		fetchSleepFunc(time.Duration(attempt) * 500 * time.Millisecond)
	}
	return nil, lastErr
}

func isRetryableFetchError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, code := range []string{"status: 429", "status: 500", "status: 502", "status: 503", "status: 504"} {
		if strings.Contains(msg, code) {
			return true
		}
	}
	// Transport-level failures surface with the "fetch:" prefix and are worth
	// another attempt; request construction and body read failures are not.
	return strings.HasPrefix(msg, "fetch: ")
}

func (f *Fetcher) do(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return body, nil
}

func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "unknown"
	}
	return parsed.Host
}
