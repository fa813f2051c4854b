package stealth

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
)

// ProxyProvider abstracts a proxy backend.
type ProxyProvider interface {
	Transport() http.RoundTripper
	Name() string
}

// ProxyRotator cycles through multiple proxy providers.
type ProxyRotator struct {
	providers []ProxyProvider
	mu        sync.Mutex
	idx       int
}

// NewProxyRotator creates a rotator from a list of providers.
// Returns nil if no providers are given.
func NewProxyRotator(providers []ProxyProvider) *ProxyRotator {
	if len(providers) == 0 {
		return nil
	}
	return &ProxyRotator{providers: providers}
}

// Next returns the next proxy provider in round-robin order.
func (p *ProxyRotator) Next() ProxyProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	provider := p.providers[p.idx%len(p.providers)]
	p.idx++
	return provider
}

// HTTPProxyProvider routes through one HTTP or SOCKS5 proxy.
type HTTPProxyProvider struct {
	proxyURL  *url.URL
	transport http.RoundTripper
	once      sync.Once
}

// NewHTTPProxyProvider parses raw up front so a bad proxy setting fails at
// start-up instead of on the first import.
func NewHTTPProxyProvider(raw string) (*HTTPProxyProvider, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse proxy url: %w", err)
	}
	switch u.Scheme {
	case "http", "https", "socks5":
	default:
		return nil, fmt.Errorf("unsupported proxy scheme %q", u.Scheme)
	}
	return &HTTPProxyProvider{proxyURL: u}, nil
}

// Name omits credentials.
func (h *HTTPProxyProvider) Name() string { return h.proxyURL.Scheme + "://" + h.proxyURL.Host }

func (h *HTTPProxyProvider) Transport() http.RoundTripper {
	h.once.Do(func() {
		h.transport = &http.Transport{
			Proxy:             http.ProxyURL(h.proxyURL),
			DisableKeepAlives: true,
		}
	})
	return h.transport
}

// ProxyRotatorFromList builds a rotator from a comma separated proxy list.
// An empty list means direct connections and yields nil.
func ProxyRotatorFromList(list string) (*ProxyRotator, error) {
	var providers []ProxyProvider
	for _, raw := range strings.Split(list, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		p, err := NewHTTPProxyProvider(raw)
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}
	return NewProxyRotator(providers), nil
}
