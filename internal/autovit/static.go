package autovit

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/lukman83/autovit-sync/internal/apperr"
	"github.com/lukman83/autovit-sync/internal/httputil"
	"github.com/lukman83/autovit-sync/internal/platform"
)

const (
	StrategyStatic   = "static"
	StrategyHeadless = "headless"
)

const msgPageTooLarge = "Pagina Autovit este prea mare pentru a fi procesată."

func init() {
	platform.Register(StrategyStatic, func(opts platform.StrategyOptions) platform.Strategy {
		return NewStaticPageStrategy(opts.Client, opts.MaxRetries)
	})
	platform.Register(StrategyHeadless, func(opts platform.StrategyOptions) platform.Strategy {
		return NewHeadlessBrowserStrategy(opts.BrowserBin, opts.Timeout)
	})
}

// StaticPageStrategy fetches the advert page with a plain GET.
type StaticPageStrategy struct {
	client     *http.Client
	maxRetries int
}

// NewStaticPageStrategy wraps client so that redirects leaving the allowed
// hosts are refused.
func NewStaticPageStrategy(client *http.Client, maxRetries int) *StaticPageStrategy {
	c := *client
	c.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= 10 {
			return errors.New("stopped after 10 redirects")
		}
		if req.URL.Scheme != "https" || !AllowedHost(req.URL.Hostname()) {
			return fmt.Errorf("redirect to %s is not allowed", req.URL.Host)
		}
		return nil
	}
	return &StaticPageStrategy{client: &c, maxRetries: maxRetries}
}

func (s *StaticPageStrategy) Name() string { return StrategyStatic }

func (s *StaticPageStrategy) Execute(ctx context.Context, req platform.Request) (*platform.Page, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "URL-ul trebuie să fie de pe domeniul autovit.ro", err)
	}
	for k, v := range httputil.BrowserHeaders() {
		httpReq.Header[k] = v
	}

	resp, err := httputil.DoWithRetry(s.client, httpReq, s.maxRetries)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstreamFetch, "Nu am putut accesa pagina Autovit.", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperr.New(apperr.KindUpstreamFetch, fmt.Sprintf("Autovit a răspuns cu status %d", resp.StatusCode))
	}

	body, err := httputil.ReadBody(resp)
	if errors.Is(err, httputil.ErrBodyTooLarge) {
		return nil, apperr.Wrap(apperr.KindUpstreamFetch, msgPageTooLarge, err)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstreamFetch, "Nu am putut citi pagina Autovit.", err)
	}

	return &platform.Page{
		URL:        resp.Request.URL.String(),
		StatusCode: resp.StatusCode,
		HTML:       string(body),
		Strategy:   s.Name(),
	}, nil
}
