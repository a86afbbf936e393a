package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

const (
	defaultCacheEntries = 512
	defaultUserAgent    = "dexterm/0.1"
)

// errSuperseded is the cancellation cause attached when a newer Get starts.
var errSuperseded = errors.New("superseded by newer request")

// Options configure a Client.
type Options struct {
	CacheEntries      int     // zero uses defaultCacheEntries
	RequestsPerSecond float64 // zero or negative disables rate limiting
	Timeout           time.Duration
	UserAgent         string
	HTTPClient        *http.Client
	Logger            *slog.Logger
}

// Stats reports cache effectiveness.
type Stats struct {
	Hits    uint64
	Misses  uint64
	Entries int
}

// Client performs cached GET requests. Get calls on one Client supersede each
// other: starting a Get cancels the previous pending Get. Fetch shares the
// cache but never supersedes or gets superseded.
type Client struct {
	http      *http.Client
	userAgent string
	cache     *lru.Cache[string, []byte]
	limiter   *rate.Limiter
	logger    *slog.Logger

	mu            sync.Mutex
	seq           uint64
	cancelPending context.CancelCauseFunc

	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewClient builds a Client with its own cache and limiter.
func NewClient(opts Options) (*Client, error) {
	size := opts.CacheEntries
	if size <= 0 {
		size = defaultCacheEntries
	}
	cache, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, fmt.Errorf("create response cache: %w", err)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	limit := rate.Inf
	burst := 0
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
		burst = int(math.Max(1, math.Ceil(opts.RequestsPerSecond)))
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		http:      httpClient,
		userAgent: userAgent,
		cache:     cache,
		limiter:   rate.NewLimiter(limit, burst),
		logger:    logger,
	}, nil
}

// Get returns the body for url, cancelling any Get still pending on this
// client. A superseded call fails with ErrCancelled and its response is
// neither cached nor returned.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	reqCtx, token, cancel := c.begin(ctx)
	defer c.finish(token, cancel)

	if body, ok := c.lookup(url); ok {
		return body, nil
	}

	body, err := c.do(reqCtx, url)
	if err != nil {
		if errors.Is(context.Cause(reqCtx), errSuperseded) {
			return nil, &CancelledError{URL: url}
		}
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.seq != token {
		c.logger.Debug("discarding superseded response", slog.String("url", url))
		return nil, &CancelledError{URL: url}
	}
	c.cache.Add(url, body)
	return body, nil
}

// Fetch returns the body for url using the shared cache without taking part
// in Get's newest-wins cancellation. Fan-out callers use it.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	if body, ok := c.lookup(url); ok {
		return body, nil
	}
	body, err := c.do(ctx, url)
	if err != nil {
		return nil, err
	}
	c.cache.Add(url, body)
	return body, nil
}

// Purge drops every cached response.
func (c *Client) Purge() {
	c.cache.Purge()
}

// Stats returns cache counters.
func (c *Client) Stats() Stats {
	return Stats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Entries: c.cache.Len(),
	}
}

func (c *Client) begin(ctx context.Context) (context.Context, uint64, context.CancelCauseFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancelPending != nil {
		c.cancelPending(errSuperseded)
	}
	c.seq++
	reqCtx, cancel := context.WithCancelCause(ctx)
	c.cancelPending = cancel
	return reqCtx, c.seq, cancel
}

func (c *Client) finish(token uint64, cancel context.CancelCauseFunc) {
	c.mu.Lock()
	if c.seq == token {
		c.cancelPending = nil
	}
	c.mu.Unlock()
	cancel(nil)
}

func (c *Client) lookup(url string) ([]byte, bool) {
	body, ok := c.cache.Get(url)
	if ok {
		c.hits.Add(1)
		c.logger.Debug("cache hit", slog.String("url", url))
		return body, true
	}
	c.misses.Add(1)
	return nil, false
}

func (c *Client) do(ctx context.Context, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		if cause := context.Cause(ctx); cause != nil {
			return nil, cause
		}
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{URL: url, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}
