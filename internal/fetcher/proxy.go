package fetcher

import "net/url"

// ProxyMode selects how a proxy rewrites the target URL.
type ProxyMode int

const (
	// ProxyPrefix prepends the proxy base to the raw URL.
	ProxyPrefix ProxyMode = iota + 1
	// ProxyWrap appends the URL-encoded target to the proxy base.
	ProxyWrap
)

// Proxy is one fallback endpoint transform in the fetch chain.
type Proxy struct {
	Name string
	Base string
	Mode ProxyMode
}

// Apply rewrites the raw target URL through the proxy.
func (p Proxy) Apply(raw string) string {
	switch p.Mode {
	case ProxyWrap:
		return p.Base + url.QueryEscape(raw)
	default:
		return p.Base + raw
	}
}

// endpoints returns the ordered fetch chain for a target URL: the direct URL
// followed by each proxy transform.
func endpoints(raw string, proxies []Proxy) []string {
	out := make([]string, 0, len(proxies)+1)
	out = append(out, raw)
	for _, p := range proxies {
		out = append(out, p.Apply(raw))
	}
	return out
}
