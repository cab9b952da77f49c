// Package fetch is the shared entry point for every outbound call: cache
// check, concurrency-limited execution, retry with rate-limit-aware
// backoff, and cache write-back.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"github.com/ciroautuori/trendscout/internal/store"
)

// Request describes one outbound GET.
type Request struct {
	URL    string
	Params url.Values
	Header http.Header

	// CacheKey enables the cache layer. Empty means always hit the
	// network.
	CacheKey string
}

// Payload is a fetched response body with its declared content type.
type Payload struct {
	Body        []byte
	ContentType string
}

// JSON decodes the body into v.
func (p *Payload) JSON(v any) error {
	return json.Unmarshal(p.Body, v)
}

// Text returns the body as a string, for feed and plain-text responses.
func (p *Payload) Text() string {
	return string(p.Body)
}

// IsJSON reports whether the server declared a JSON content type.
func (p *Payload) IsJSON() bool {
	return strings.Contains(p.ContentType, "json")
}

// Options configures a Client.
type Options struct {
	UserAgent      string
	MaxConcurrent  int
	CacheTTL       time.Duration
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
}

// Client issues rate-limited, cached, retrying HTTP GETs. Safe for
// concurrent use; all source adapters share one Client so the concurrency
// cap applies across every source combined.
type Client struct {
	http      *retryablehttp.Client
	cache     *store.Store
	sem       *semaphore.Weighted
	flight    singleflight.Group
	userAgent string
	ttl       time.Duration
}

type attemptKey struct{}

// New builds a Client backed by cache. A nil cache disables the cache
// layer entirely.
func New(cache *store.Store, opts Options) *Client {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 5
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 10 * time.Second
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 20 * time.Second
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = maxAttempts - 1
	rc.Logger = nil
	rc.HTTPClient = &http.Client{
		Timeout: opts.ReadTimeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: opts.ConnectTimeout,
			}).DialContext,
			TLSHandshakeTimeout: opts.ConnectTimeout,
		},
	}
	rc.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return shouldRetry(resp, err), nil
	}
	rc.Backoff = func(_, _ time.Duration, attemptNum int, resp *http.Response) time.Duration {
		// attemptNum is 0-based: 0 after the first failed attempt.
		return RetryWait(attemptNum+1, retryAfterHint(resp))
	}
	// Keep the last response around after the budget is spent so the
	// final status can be logged.
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, retryNum int) {
		if n, ok := req.Context().Value(attemptKey{}).(*atomic.Int32); ok {
			n.Store(int32(retryNum + 1))
		}
	}

	return &Client{
		http:      rc,
		cache:     cache,
		sem:       semaphore.NewWeighted(int64(opts.MaxConcurrent)),
		userAgent: opts.UserAgent,
		ttl:       opts.CacheTTL,
	}
}

// Do runs the full pipeline for one GET: cache, limiter, retrying
// transport, cache write-back. On any failure it returns a nil payload
// and the cause; callers treat that as "this call produced nothing".
func (c *Client) Do(ctx context.Context, req Request) (*Payload, error) {
	if c.cache != nil && req.CacheKey != "" {
		if e, ok := c.cache.Get(req.CacheKey); ok {
			log.WithFields(log.Fields{"url": req.URL, "cache_key": req.CacheKey}).Debug("cache hit")
			return &Payload{Body: e.Body, ContentType: e.ContentType}, nil
		}
	}

	if req.CacheKey == "" {
		return c.fetch(ctx, req)
	}

	// Concurrent misses on the same key ride the same request instead of
	// hitting the network redundantly.
	v, err, _ := c.flight.Do(req.CacheKey, func() (any, error) {
		return c.fetch(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Payload), nil
}

func (c *Client) fetch(ctx context.Context, req Request) (*Payload, error) {
	full := req.URL
	if len(req.Params) > 0 {
		sep := "?"
		if strings.Contains(full, "?") {
			sep = "&"
		}
		full += sep + req.Params.Encode()
	}

	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("acquiring request slot: %w", err)
	}
	defer c.sem.Release(1)

	attempts := &atomic.Int32{}
	attempts.Store(1)
	ctx = context.WithValue(ctx, attemptKey{}, attempts)

	hreq, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, full, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", req.URL, err)
	}
	for k, vals := range req.Header {
		for _, v := range vals {
			hreq.Header.Add(k, v)
		}
	}
	if c.userAgent != "" {
		hreq.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.http.Do(hreq)
	latency := time.Since(start)

	fields := log.Fields{
		"url":        full,
		"latency_ms": latency.Milliseconds(),
		"attempts":   attempts.Load(),
	}
	if resp != nil {
		fields["status"] = resp.StatusCode
	}

	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		log.WithFields(fields).WithError(err).Warn("fetch failed")
		return nil, fmt.Errorf("fetching %s: %w", req.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.WithFields(fields).Warn("fetch failed")
		return nil, fmt.Errorf("fetching %s: status %d", req.URL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.WithFields(fields).WithError(err).Warn("fetch failed reading body")
		return nil, fmt.Errorf("reading %s: %w", req.URL, err)
	}

	log.WithFields(fields).Debug("fetch ok")

	p := &Payload{
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
	}

	if c.cache != nil && req.CacheKey != "" {
		c.cache.Put(req.CacheKey, p.Body, p.ContentType, c.ttl)
	}

	return p, nil
}
