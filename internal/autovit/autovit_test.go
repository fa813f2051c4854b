package autovit

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lukman83/autovit-sync/internal/apperr"
	"github.com/lukman83/autovit-sync/internal/httputil"
	"github.com/lukman83/autovit-sync/internal/platform"
	"github.com/lukman83/autovit-sync/internal/testutil"
	"github.com/stretchr/testify/require"
)

type fakeStrategy struct {
	name  string
	page  *platform.Page
	err   error
	calls int
}

func (f *fakeStrategy) Name() string { return f.name }

func (f *fakeStrategy) Execute(context.Context, platform.Request) (*platform.Page, error) {
	f.calls++
	return f.page, f.err
}

func TestStaticPageStrategy(t *testing.T) {
	page := testutil.AdvertPage(t, map[string]any{"id": "1", "price": map[string]any{"value": "100"}})
	var lang string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang = r.Header.Get("Accept-Language")
		fmt.Fprint(w, page)
	}))
	defer srv.Close()

	got, err := NewStaticPageStrategy(srv.Client(), 0).Execute(context.Background(), platform.Request{URL: srv.URL + "/anunt"})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, got.StatusCode)
	require.Equal(t, page, got.HTML)
	require.Equal(t, StrategyStatic, got.Strategy)
	require.Equal(t, "ro-RO,ro;q=0.9,en-US;q=0.8,en;q=0.7", lang)
}

func TestStaticPageStrategyNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := NewStaticPageStrategy(srv.Client(), 0).Execute(context.Background(), platform.Request{URL: srv.URL})
	require.Equal(t, apperr.KindUpstreamFetch, apperr.KindOf(err))
	require.Equal(t, "Autovit a răspuns cu status 404", apperr.MessageOf(err, ""))
}

func TestStaticPageStrategyOversizedPage(t *testing.T) {
	chunk := bytes.Repeat([]byte("<div></div>"), 64<<10)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for written := 0; written <= httputil.MaxBodyBytes; written += len(chunk) {
			if _, err := w.Write(chunk); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	_, err := NewStaticPageStrategy(srv.Client(), 0).Execute(context.Background(), platform.Request{URL: srv.URL})
	require.ErrorIs(t, err, httputil.ErrBodyTooLarge)
	require.Equal(t, apperr.KindUpstreamFetch, apperr.KindOf(err))
	require.Equal(t, msgPageTooLarge, apperr.MessageOf(err, ""))
}

func TestStaticPageStrategyRefusesForeignRedirect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "https://evil.example.com/steal", http.StatusFound)
	}))
	defer srv.Close()

	_, err := NewStaticPageStrategy(srv.Client(), 0).Execute(context.Background(), platform.Request{URL: srv.URL})
	require.Equal(t, apperr.KindUpstreamFetch, apperr.KindOf(err))
	require.ErrorContains(t, err, "redirect to evil.example.com is not allowed")
}

func TestScraperFallsBackOnFetchFailures(t *testing.T) {
	blocked := &fakeStrategy{name: "static", page: &platform.Page{HTML: "<html>captcha</html>"}}
	browser := &fakeStrategy{name: "headless", page: &platform.Page{HTML: testutil.AdvertPage(t, map[string]any{"id": "42"})}}

	var progress []string
	ctx := platform.WithProgress(context.Background(), func(msg string) { progress = append(progress, msg) })

	advert, err := NewScraper(blocked, browser).FetchAdvert(ctx, "https://www.autovit.ro/anunt/x")
	require.NoError(t, err)
	id, _ := advert.Get("id").Text()
	require.Equal(t, "42", id)
	require.Equal(t, 1, blocked.calls)
	require.Equal(t, 1, browser.calls)
	require.Equal(t, []string{
		"Fetching advert via static...",
		"Strategy static failed, trying next...",
		"Fetching advert via headless...",
		"Advert extracted via headless",
	}, progress)
}

func TestScraperStopsOnOtherErrors(t *testing.T) {
	first := &fakeStrategy{name: "static", err: apperr.New(apperr.KindValidation, "bad url")}
	second := &fakeStrategy{name: "headless"}

	_, err := NewScraper(first, second).FetchAdvert(context.Background(), "https://www.autovit.ro/anunt/x")
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	require.Equal(t, 0, second.calls)
}

func TestScraperReturnsLastError(t *testing.T) {
	first := &fakeStrategy{name: "static", err: apperr.New(apperr.KindUpstreamFetch, "Autovit a răspuns cu status 403")}
	second := &fakeStrategy{name: "headless", page: &platform.Page{HTML: "<html></html>"}}

	_, err := NewScraper(first, second).FetchAdvert(context.Background(), "https://www.autovit.ro/anunt/x")
	require.ErrorIs(t, err, ErrPayloadNotFound)
}

func TestScraperWithoutStrategies(t *testing.T) {
	_, err := NewScraper().FetchAdvert(context.Background(), "https://www.autovit.ro/anunt/x")
	require.Equal(t, apperr.KindConfiguration, apperr.KindOf(err))
}
