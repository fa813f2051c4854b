package autovit

import (
	"errors"
	"testing"

	"github.com/lukman83/autovit-sync/internal/apperr"
	"github.com/lukman83/autovit-sync/internal/testutil"
	"github.com/stretchr/testify/require"
)

func TestExtractPayloadMissingMarker(t *testing.T) {
	pages := map[string]string{
		"no script":       `<html><body><h1>Access denied</h1></body></html>`,
		"other script id": `<html><script id="__NUXT__" type="application/json">{"a":1}</script></html>`,
		"empty script":    testutil.PageWithScript("   "),
		"empty document":  "",
	}
	for name, page := range pages {
		t.Run(name, func(t *testing.T) {
			raw, err := ExtractPayload(page)
			require.Nil(t, raw)
			require.True(t, errors.Is(err, ErrPayloadNotFound))
			require.Equal(t, apperr.KindPayloadShape, apperr.KindOf(err))
		})
	}
}

func TestExtractPayloadInvalidJSON(t *testing.T) {
	raw, err := ExtractPayload(testutil.PageWithScript(`{"props": {"pageProps": `))
	require.Nil(t, raw)
	require.Equal(t, apperr.KindPayloadShape, apperr.KindOf(err))
}

func TestExtractAdvert(t *testing.T) {
	advert, err := ExtractAdvert(testutil.AdvertPage(t, map[string]any{"id": "123", "title": "Dacia Logan"}))
	require.NoError(t, err)

	title, ok := advert.Get("title").Text()
	require.True(t, ok)
	require.Equal(t, "Dacia Logan", title)
	require.JSONEq(t, `{"id":"123","title":"Dacia Logan"}`, string(advert.Raw))
}

func TestExtractAdvertMissing(t *testing.T) {
	pages := map[string]string{
		"no advert":       testutil.PageWithScript(`{"props":{"pageProps":{}}}`),
		"null advert":     testutil.PageWithScript(`{"props":{"pageProps":{"advert":null}}}`),
		"advert is array": testutil.PageWithScript(`{"props":{"pageProps":{"advert":[1,2]}}}`),
		"props is string": testutil.PageWithScript(`{"props":"x"}`),
	}
	for name, page := range pages {
		t.Run(name, func(t *testing.T) {
			advert, err := ExtractAdvert(page)
			require.Nil(t, advert)
			require.Equal(t, apperr.KindPayloadShape, apperr.KindOf(err))
			require.Equal(t, "Nu am putut extrage anunțul din pagina Autovit.", apperr.MessageOf(err, ""))
		})
	}
}

func TestNodeNeverPanics(t *testing.T) {
	n, err := ParseNode([]byte(`{"a":[{"b":1.50}],"s":"","t":true,"z":null}`))
	require.NoError(t, err)

	require.False(t, n.Get("missing", "deeper").Exists())
	require.False(t, n.Get("a").Get("b").Exists())
	require.False(t, n.Get("a").Index(5).Exists())
	require.False(t, n.Get("s").Index(0).Exists())
	require.False(t, n.Get("z").Exists())
	require.Nil(t, n.Get("a", "b").Array())

	_, ok := n.Get("s").Text()
	require.False(t, ok, "empty string is absent")

	v, ok := n.Get("a").Index(0).Get("b").Text()
	require.True(t, ok)
	require.Equal(t, "1.50", v, "numbers keep their source text")

	require.True(t, n.Get("t").Bool())
	require.False(t, n.Get("a").Bool())
	require.Nil(t, n.Get("nope").Raw())
}
