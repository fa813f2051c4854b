package stealth

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

// RobotsChecker caches and checks robots.txt rules per origin.
type RobotsChecker struct {
	rules    map[string]*robotstxt.RobotsData
	expiry   map[string]time.Time
	mu       sync.RWMutex
	client   *http.Client
	cacheTTL time.Duration
	enabled  bool
}

// NewRobotsChecker creates a new robots.txt checker. A disabled checker
// allows everything without network access.
func NewRobotsChecker(client *http.Client, enabled bool) *RobotsChecker {
	return &RobotsChecker{
		rules:    make(map[string]*robotstxt.RobotsData),
		expiry:   make(map[string]time.Time),
		client:   client,
		cacheTTL: 1 * time.Hour,
		enabled:  enabled,
	}
}

// IsAllowed checks if the given URL is allowed by robots.txt. An unreachable
// robots.txt allows the request.
func (r *RobotsChecker) IsAllowed(ctx context.Context, userAgent string, u *url.URL) bool {
	if !r.enabled {
		return true
	}

	origin := u.Scheme + "://" + u.Host
	data, err := r.getRobots(ctx, origin)
	if err != nil {
		return true
	}

	return data.FindGroup(userAgent).Test(u.EscapedPath())
}

func (r *RobotsChecker) getRobots(ctx context.Context, origin string) (*robotstxt.RobotsData, error) {
	r.mu.RLock()
	data, ok := r.rules[origin]
	exp := r.expiry[origin]
	r.mu.RUnlock()

	if ok && time.Now().Before(exp) {
		return data, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock
	if data, ok := r.rules[origin]; ok && time.Now().Before(r.expiry[origin]) {
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, origin+"/robots.txt", nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch robots.txt: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 512<<10))
	if err != nil {
		return nil, fmt.Errorf("read robots.txt: %w", err)
	}

	// 4xx means allow all, 5xx means disallow all.
	data, err = robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt: %w", err)
	}

	r.rules[origin] = data
	r.expiry[origin] = time.Now().Add(r.cacheTTL)
	return data, nil
}
