// Package fetcher downloads JSON documents from feature services, falling
// back across an ordered chain of endpoints (direct URL first, then each
// configured CORS-style proxy transform) until one returns a syntactically
// valid JSON body.
package fetcher

import "context"

// JSONFetcher is the network collaborator consumed by the engine.
type JSONFetcher interface {
	// FetchJSON downloads the URL and decodes the response body into v.
	FetchJSON(ctx context.Context, url string, v any) error
}

// NetworkError means every endpoint in the chain failed at the transport or
// HTTP level. It carries the last attempted URL.
type NetworkError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.Err != nil {
		return "fetch " + e.URL + ": " + e.Err.Error()
	}
	return "fetch " + e.URL + ": network error"
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ParseError means a response arrived but its body was not valid JSON —
// including HTML error pages that proxies return with a 2xx status.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return "parse " + e.URL + ": " + e.Err.Error()
	}
	return "parse " + e.URL + ": invalid JSON body"
}

func (e *ParseError) Unwrap() error { return e.Err }
