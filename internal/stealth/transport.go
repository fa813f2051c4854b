package stealth

import (
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/time/rate"
)

// ErrRobotsDisallowed is returned when robots.txt forbids the request.
var ErrRobotsDisallowed = errors.New("blocked by robots.txt")

// StealthTransport is an http.RoundTripper that applies the outbound pipeline:
// Fingerprint → RobotsCheck → RateLimiter → Delay → Proxy → Send
type StealthTransport struct {
	Base        http.RoundTripper
	Robots      *RobotsChecker
	Fingerprint *FingerprintPool
	Proxy       *ProxyRotator
	Delay       *HumanDelay
	RateLimiter *rate.Limiter
}

func (t *StealthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTrip must not modify the caller's request.
	req = req.Clone(req.Context())

	// 1. Apply fingerprint (UA + headers)
	ua := req.Header.Get("User-Agent")
	if t.Fingerprint != nil {
		fp := t.Fingerprint.Next()
		ua = fp.UserAgent
		req.Header.Set("User-Agent", fp.UserAgent)
		for key, vals := range fp.Headers {
			if req.Header.Get(key) == "" {
				for _, v := range vals {
					req.Header.Add(key, v)
				}
			}
		}
	}

	// 2. Check robots.txt
	if t.Robots != nil && !t.Robots.IsAllowed(req.Context(), ua, req.URL) {
		return nil, fmt.Errorf("%w: %s", ErrRobotsDisallowed, req.URL.Path)
	}

	// 3. Wait for rate limiter token
	if t.RateLimiter != nil {
		if err := t.RateLimiter.Wait(req.Context()); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	// 4. Apply delay
	if t.Delay != nil {
		if err := t.Delay.Wait(req.Context()); err != nil {
			return nil, fmt.Errorf("delay: %w", err)
		}
	}

	// 5. Route through proxy if configured
	transport := t.Base
	if t.Proxy != nil {
		transport = t.Proxy.Next().Transport()
	}
	if transport == nil {
		transport = http.DefaultTransport
	}

	return transport.RoundTrip(req)
}
