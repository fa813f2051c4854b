// Package autovit reads vehicle adverts from autovit.ro pages and turns them
// into listing records.
package autovit

import (
	"context"
	"errors"
	"fmt"

	"github.com/lukman83/autovit-sync/internal/apperr"
	"github.com/lukman83/autovit-sync/internal/platform"
)

// Scraper fetches advert pages through an ordered chain of strategies.
type Scraper struct {
	strategies []platform.Strategy
}

// NewScraper creates a scraper that tries strategies in order.
func NewScraper(strategies ...platform.Strategy) *Scraper {
	return &Scraper{strategies: strategies}
}

// FetchAdvert fetches url and extracts its advert. The next strategy is tried
// only when the previous one could not reach the page or found no payload in
// it; any other failure is returned as is.
func (s *Scraper) FetchAdvert(ctx context.Context, url string) (*Advert, error) {
	if len(s.strategies) == 0 {
		return nil, apperr.New(apperr.KindConfiguration, "Nicio strategie de descărcare nu este configurată.")
	}

	var lastErr error
	for _, st := range s.strategies {
		platform.ReportProgress(ctx, fmt.Sprintf("Fetching advert via %s...", st.Name()))

		advert, err := s.fetchWith(ctx, st, url)
		if err == nil {
			platform.ReportProgress(ctx, fmt.Sprintf("Advert extracted via %s", st.Name()))
			return advert, nil
		}
		if ctx.Err() != nil {
			return nil, apperr.Wrap(apperr.KindUpstreamFetch, "Nu am putut accesa pagina Autovit.", ctx.Err())
		}

		lastErr = err
		kind := apperr.KindOf(err)
		if kind != apperr.KindUpstreamFetch && kind != apperr.KindPayloadShape {
			return nil, err
		}
		platform.ReportProgress(ctx, fmt.Sprintf("Strategy %s failed, trying next...", st.Name()))
	}
	return nil, lastErr
}

func (s *Scraper) fetchWith(ctx context.Context, st platform.Strategy, url string) (*Advert, error) {
	page, err := st.Execute(ctx, platform.Request{URL: url})
	if err != nil {
		return nil, err
	}
	if page == nil {
		return nil, apperr.Wrap(apperr.KindUpstreamFetch, "Nu am putut accesa pagina Autovit.", errors.New(st.Name()+" returned no page"))
	}
	return ExtractAdvert(page.HTML)
}
