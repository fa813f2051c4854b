package autovit

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/lukman83/autovit-sync/internal/apperr"
	"github.com/lukman83/autovit-sync/internal/platform"
)

// HeadlessBrowserStrategy renders the advert page in a headless browser. It
// is a fallback for pages the static fetch cannot read, such as bot
// challenges that resolve with JavaScript.
type HeadlessBrowserStrategy struct {
	browserBin string
	timeout    time.Duration
}

func NewHeadlessBrowserStrategy(browserBin string, timeout time.Duration) *HeadlessBrowserStrategy {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HeadlessBrowserStrategy{browserBin: browserBin, timeout: timeout}
}

func (h *HeadlessBrowserStrategy) Name() string { return StrategyHeadless }

func (h *HeadlessBrowserStrategy) Execute(ctx context.Context, req platform.Request) (*platform.Page, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	page, cleanup, err := h.openPage(ctx, req.URL)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstreamFetch, "Nu am putut accesa pagina Autovit.", err)
	}
	defer cleanup()

	if err := page.WaitLoad(); err != nil {
		return nil, apperr.Wrap(apperr.KindUpstreamFetch, "Nu am putut accesa pagina Autovit.", err)
	}
	// The payload script is server rendered; waiting for it is enough.
	if _, err := page.Element(payloadSelector); err != nil {
		return nil, ErrPayloadNotFound
	}

	htmlContent, err := page.HTML()
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstreamFetch, "Nu am putut citi pagina Autovit.", fmt.Errorf("get page HTML: %w", err))
	}

	finalURL := req.URL
	if info, err := page.Info(); err == nil && info != nil {
		finalURL = info.URL
	}
	if u, err := url.Parse(finalURL); err != nil || !AllowedHost(u.Hostname()) {
		return nil, apperr.New(apperr.KindUpstreamFetch, "Pagina Autovit a redirecționat în afara domeniului autovit.ro.")
	}
	return &platform.Page{
		URL:      finalURL,
		HTML:     htmlContent,
		Strategy: h.Name(),
	}, nil
}

func (h *HeadlessBrowserStrategy) openPage(ctx context.Context, pageURL string) (*rod.Page, func(), error) {
	l := launcher.New().Headless(true).Logger(io.Discard).Context(ctx)
	if h.browserBin != "" {
		l = l.Bin(h.browserBin)
	}
	controlURL, err := l.Launch()
	if err != nil {
		return nil, nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, nil, fmt.Errorf("connect browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: pageURL})
	if err != nil {
		browser.Close()
		l.Cleanup()
		return nil, nil, fmt.Errorf("open page: %w", err)
	}

	cleanup := func() {
		page.Close()
		browser.Close()
		l.Cleanup()
	}

	return page, cleanup, nil
}
