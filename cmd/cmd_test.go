package cmd

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lukman83/autovit-sync/internal/apperr"
	"github.com/lukman83/autovit-sync/internal/listing"
	"github.com/lukman83/autovit-sync/internal/models"
	"github.com/stretchr/testify/require"
)

type countingImporter struct {
	inFlight, peak atomic.Int32
}

func (c *countingImporter) Import(_ context.Context, req listing.ImportRequest) (listing.ImportResult, error) {
	n := c.inFlight.Add(1)
	defer c.inFlight.Add(-1)
	for {
		p := c.peak.Load()
		if n <= p || c.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)

	switch req.URL {
	case "https://www.autovit.ro/gone.html":
		return listing.ImportResult{}, apperr.New(apperr.KindUpstreamFetch, "Autovit a răspuns cu status 404")
	case "https://www.autovit.ro/broken.html":
		return listing.ImportResult{}, errors.New("boom")
	}
	return listing.ImportResult{AutovitID: req.URL, Status: models.StatusActive, Created: true}, nil
}

func TestImportAll(t *testing.T) {
	im := &countingImporter{}
	urls := []string{
		"https://www.autovit.ro/a.html",
		"https://www.autovit.ro/gone.html",
		"https://www.autovit.ro/b.html",
		"https://www.autovit.ro/broken.html",
		"https://www.autovit.ro/c.html",
	}

	out := importAll(context.Background(), im, urls, "", 2)

	require.Len(t, out, len(urls))
	for i, o := range out {
		require.Equal(t, urls[i], o.URL)
	}
	require.Equal(t, "Autovit a răspuns cu status 404", out[1].Error)
	require.Equal(t, "boom", out[3].Error)
	require.NotNil(t, out[4].Result)
	require.Equal(t, urls[4], out[4].Result.AutovitID)
	require.LessOrEqual(t, im.peak.Load(), int32(2))
}

func TestPrintImportTable(t *testing.T) {
	var buf bytes.Buffer
	printImportTable(&buf, []importOutcome{
		{URL: "https://www.autovit.ro/a.html?utm_source=x", Result: &listing.ImportResult{AutovitID: "1", Status: models.StatusActive, Created: true}},
		{URL: "https://www.autovit.ro/b.html", Result: &listing.ImportResult{AutovitID: "2", Status: models.StatusDraft}},
		{URL: "https://www.autovit.ro/c.html", Error: "Importul a eșuat"},
	})

	out := buf.String()
	require.Contains(t, out, "https://www.autovit.ro/a.html ")
	require.NotContains(t, out, "utm_source")
	require.Contains(t, out, "created")
	require.Contains(t, out, "updated")
	require.Contains(t, out, "error: Importul a eșuat")
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		value    float64
		currency string
		want     string
	}{
		{0, "EUR", "0 EUR"},
		{950, "EUR", "950 EUR"},
		{27900, "EUR", "27.900 EUR"},
		{1234567, "RON", "1.234.567 RON"},
		{27900.5, "EUR", "27.900,50 EUR"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, formatPrice(tt.value, tt.currency))
	}
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "BMW", truncate("BMW", 10))
	require.Equal(t, "Mercedes-...", truncate("Mercedes-Benz GLC", 12))
	require.Equal(t, "Ște", truncate("Ștefan", 3))
}
