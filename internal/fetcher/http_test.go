package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFetcher(proxies ...Proxy) *Resilient {
	return New(Options{
		UserAgent:           "test-agent",
		Timeout:             5 * time.Second,
		AttemptDelay:        time.Millisecond,
		AttemptsPerEndpoint: 1,
		Proxies:             proxies,
		RateLimit:           1000,
		Burst:               1000,
	})
}

func TestFetchJSON_Direct(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Write([]byte(`{"value": 7}`))
	}))
	defer srv.Close()

	var out struct {
		Value int `json:"value"`
	}
	f := newTestFetcher()
	err := f.FetchJSON(context.Background(), srv.URL+"/data", &out)
	require.NoError(t, err)
	assert.Equal(t, 7, out.Value)
}

func TestFetchJSON_SecondProxyWins(t *testing.T) {
	// 3-endpoint scenario: the direct URL 500s, the first proxy returns an
	// HTML error page with a 200, the second proxy returns valid JSON.
	var direct, p1, p2 atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/direct"):
			direct.Add(1)
			w.WriteHeader(http.StatusBadGateway)
		case strings.HasPrefix(r.URL.Path, "/p1"):
			p1.Add(1)
			w.Write([]byte("<!DOCTYPE html><html><body>blocked</body></html>"))
		case strings.HasPrefix(r.URL.Path, "/p2"):
			p2.Add(1)
			assert.NotEmpty(t, r.URL.Query().Get("u"))
			w.Write([]byte(`{"ok": true}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	proxies := []Proxy{
		{Name: "prefix-proxy", Base: srv.URL + "/p1?target=", Mode: ProxyPrefix},
		{Name: "wrap-proxy", Base: srv.URL + "/p2?u=", Mode: ProxyWrap},
	}

	var out struct {
		OK bool `json:"ok"`
	}
	f := newTestFetcher(proxies...)
	err := f.FetchJSON(context.Background(), srv.URL+"/direct", &out)
	require.NoError(t, err)
	assert.True(t, out.OK)
	assert.Equal(t, int32(1), direct.Load())
	assert.Equal(t, int32(1), p1.Load())
	assert.Equal(t, int32(1), p2.Load())
}

func TestFetchJSON_HTMLMaskedAs200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("  \n<html><head><title>504</title></head></html>"))
	}))
	defer srv.Close()

	var out map[string]any
	f := newTestFetcher()
	err := f.FetchJSON(context.Background(), srv.URL, &out)
	require.Error(t, err)
	var pe *ParseError
	assert.ErrorAs(t, err, &pe)
}

func TestFetchJSON_AllEndpointsFail_LastErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/p1") {
			w.Write([]byte("not json at all"))
			return
		}
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	var out map[string]any
	f := newTestFetcher(Proxy{Name: "p1", Base: srv.URL + "/p1?target=", Mode: ProxyPrefix})
	err := f.FetchJSON(context.Background(), srv.URL+"/direct", &out)
	require.Error(t, err)
	// The proxy attempt came last, so the parse error wins.
	var pe *ParseError
	assert.ErrorAs(t, err, &pe)
}

func TestFetchJSON_RetriesTransientWithinEndpoint(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	f := New(Options{
		UserAgent:           "test-agent",
		AttemptDelay:        time.Millisecond,
		AttemptsPerEndpoint: 3,
		RateLimit:           1000,
		Burst:               1000,
	})
	var out map[string]any
	err := f.FetchJSON(context.Background(), srv.URL, &out)
	require.NoError(t, err)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestFetchJSON_NonTransientStatusNotRetried(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := New(Options{
		UserAgent:           "test-agent",
		AttemptDelay:        time.Millisecond,
		AttemptsPerEndpoint: 3,
		RateLimit:           1000,
		Burst:               1000,
	})
	var out map[string]any
	err := f.FetchJSON(context.Background(), srv.URL, &out)
	require.Error(t, err)
	assert.Equal(t, int32(1), attempts.Load())

	var ne *NetworkError
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, http.StatusNotFound, ne.StatusCode)
}

func TestFetchJSON_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out map[string]any
	f := newTestFetcher(Proxy{Name: "p", Base: srv.URL + "/p?t=", Mode: ProxyPrefix})
	err := f.FetchJSON(ctx, srv.URL, &out)
	require.Error(t, err)
}

func TestProxy_Apply(t *testing.T) {
	target := "https://example.com/query?f=json&where=1=1"

	prefix := Proxy{Base: "https://proxy.example/", Mode: ProxyPrefix}
	assert.Equal(t, "https://proxy.example/"+target, prefix.Apply(target))

	wrap := Proxy{Base: "https://wrap.example/?url=", Mode: ProxyWrap}
	applied := wrap.Apply(target)
	assert.True(t, strings.HasPrefix(applied, "https://wrap.example/?url="))
	decoded, err := url.QueryUnescape(strings.TrimPrefix(applied, "https://wrap.example/?url="))
	require.NoError(t, err)
	assert.Equal(t, target, decoded)
}

func TestEndpoints_Order(t *testing.T) {
	proxies := []Proxy{
		{Base: "https://a/", Mode: ProxyPrefix},
		{Base: "https://b/?u=", Mode: ProxyWrap},
	}
	chain := endpoints("https://x/y", proxies)
	require.Len(t, chain, 3)
	assert.Equal(t, "https://x/y", chain[0])
	assert.Equal(t, "https://a/https://x/y", chain[1])
}

func TestLooksLikeHTML(t *testing.T) {
	assert.True(t, looksLikeHTML([]byte("<!DOCTYPE html>")))
	assert.True(t, looksLikeHTML([]byte("  <html lang=\"en\">")))
	assert.False(t, looksLikeHTML([]byte(`{"a":1}`)))
	assert.False(t, looksLikeHTML([]byte("")))
}

func TestNew_Defaults(t *testing.T) {
	f := New(Options{})
	assert.Equal(t, "geoenrich/1.0", f.opts.UserAgent)
	assert.Equal(t, 30*time.Second, f.opts.Timeout)
	assert.Equal(t, 2, f.opts.AttemptsPerEndpoint)
}
