package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sitewise/geoenrich/internal/resilience"
)

// maxBodyBytes caps response bodies; feature service pages are large but a
// misbehaving proxy should not be able to stream forever.
const maxBodyBytes = 64 << 20

// Options configures the resilient fetcher.
type Options struct {
	UserAgent           string
	Timeout             time.Duration // per HTTP attempt
	AttemptDelay        time.Duration // fixed delay between attempts
	AttemptsPerEndpoint int           // retries within one endpoint before falling through
	Proxies             []Proxy
	RateLimit           rate.Limit // per-host request rate
	Burst               int
}

// Resilient implements JSONFetcher over net/http with endpoint fallback,
// fixed-delay retry, and per-host rate limiting.
type Resilient struct {
	client *http.Client
	opts   Options

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// New creates a Resilient fetcher with the given options.
func New(opts Options) *Resilient {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.AttemptDelay == 0 {
		opts.AttemptDelay = 500 * time.Millisecond
	}
	if opts.AttemptsPerEndpoint == 0 {
		opts.AttemptsPerEndpoint = 2
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "geoenrich/1.0"
	}
	if opts.RateLimit == 0 {
		opts.RateLimit = 10
	}
	if opts.Burst == 0 {
		opts.Burst = 10
	}
	transport := &http.Transport{
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     20,
		IdleConnTimeout:     90 * time.Second,
	}
	return &Resilient{
		client:   &http.Client{Transport: transport},
		opts:     opts,
		limiters: make(map[string]*rate.Limiter),
	}
}

// FetchJSON walks the endpoint chain — direct URL, then each proxy in order —
// and decodes the first syntactically valid JSON body into v. A fixed delay
// separates attempts. When every endpoint fails the last error is surfaced;
// nothing is cached between calls.
func (f *Resilient) FetchJSON(ctx context.Context, rawURL string, v any) error {
	log := zap.L().With(zap.String("component", "fetcher"))

	var lastErr error
	for i, endpoint := range endpoints(rawURL, f.opts.Proxies) {
		if i > 0 {
			if err := f.sleep(ctx); err != nil {
				return lastErr
			}
		}

		body, err := resilience.DoVal(ctx, f.retryConfig(), func(ctx context.Context) ([]byte, error) {
			return f.fetchOnce(ctx, endpoint)
		})
		if err != nil {
			lastErr = err
			log.Debug("endpoint failed, falling through",
				zap.String("endpoint", endpoint),
				zap.Int("position", i),
				zap.Error(err),
			)
			continue
		}

		if err := json.Unmarshal(body, v); err != nil {
			lastErr = &ParseError{URL: endpoint, Err: err}
			log.Debug("endpoint returned undecodable JSON",
				zap.String("endpoint", endpoint),
				zap.Error(err),
			)
			continue
		}
		return nil
	}

	if lastErr == nil {
		lastErr = &NetworkError{URL: rawURL, Err: eris.New("no endpoints configured")}
	}
	return lastErr
}

// fetchOnce performs a single HTTP attempt against one endpoint and returns
// the raw body after validating it is JSON, not a masked HTML error page.
func (f *Resilient) fetchOnce(ctx context.Context, endpoint string) ([]byte, error) {
	if err := f.limiterFor(endpoint).Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "fetcher: rate limiter wait")
	}

	attemptCtx, cancel := context.WithTimeout(ctx, f.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &NetworkError{URL: endpoint, Err: err}
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		// Timeouts and transport errors are retryable at this endpoint.
		return nil, resilience.NewTransientError(&NetworkError{URL: endpoint, Err: err}, 0)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, resilience.NewTransientError(&NetworkError{URL: endpoint, Err: err}, 0)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		nerr := &NetworkError{
			URL:        endpoint,
			StatusCode: resp.StatusCode,
			Err:        eris.Errorf("http %d", resp.StatusCode),
		}
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(nerr, resp.StatusCode)
		}
		return nil, nerr
	}

	// Proxies sometimes mask upstream errors as 200s with an HTML page.
	if looksLikeHTML(body) {
		return nil, &ParseError{URL: endpoint, Err: eris.New("HTML body masquerading as JSON")}
	}
	if !json.Valid(body) {
		return nil, &ParseError{URL: endpoint, Err: eris.New("invalid JSON body")}
	}
	return body, nil
}

// looksLikeHTML reports whether the body opens with an HTML document marker.
func looksLikeHTML(body []byte) bool {
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	if len(trimmed) == 0 {
		return false
	}
	lower := strings.ToLower(string(trimmed[:min(len(trimmed), 15)]))
	return strings.HasPrefix(lower, "<!doctype") || strings.HasPrefix(lower, "<html")
}

func (f *Resilient) retryConfig() resilience.RetryConfig {
	return resilience.RetryConfig{
		MaxAttempts:    f.opts.AttemptsPerEndpoint,
		InitialBackoff: f.opts.AttemptDelay,
		Multiplier:     1.0, // fixed delay between attempts
		OnRetry:        resilience.RetryLogger("fetcher", "fetch_json"),
	}
}

// sleep waits the fixed inter-attempt delay, honoring cancellation.
func (f *Resilient) sleep(ctx context.Context) error {
	timer := time.NewTimer(f.opts.AttemptDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// limiterFor returns the rate limiter for the endpoint's host, creating one
// on first use.
func (f *Resilient) limiterFor(rawURL string) *rate.Limiter {
	host := ""
	if u, err := url.Parse(rawURL); err == nil {
		host = u.Host
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	lim, ok := f.limiters[host]
	if !ok {
		lim = rate.NewLimiter(f.opts.RateLimit, f.opts.Burst)
		f.limiters[host] = lim
	}
	return lim
}
