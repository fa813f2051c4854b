package platform

import (
	"context"
	"net/http"
	"time"
)

// Request asks a strategy for one page.
type Request struct {
	URL string
}

// Page is a fetched document.
type Page struct {
	URL        string // final URL after redirects
	StatusCode int
	HTML       string
	Strategy   string
}

// Strategy is one way of getting a page's HTML.
type Strategy interface {
	Name() string
	Execute(ctx context.Context, req Request) (*Page, error)
}

// StrategyOptions is what a strategy may be built from.
type StrategyOptions struct {
	Client     *http.Client // shared outbound client
	MaxRetries int
	BrowserBin string        // headless browser binary, empty for auto-download
	Timeout    time.Duration // per page
}

// StrategyFactory builds a strategy from options.
type StrategyFactory func(opts StrategyOptions) Strategy
