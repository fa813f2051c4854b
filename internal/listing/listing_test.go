package listing_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/lukman83/autovit-sync/internal/apperr"
	"github.com/lukman83/autovit-sync/internal/autovit"
	"github.com/lukman83/autovit-sync/internal/listing"
	"github.com/lukman83/autovit-sync/internal/models"
	"github.com/lukman83/autovit-sync/internal/store"
	"github.com/lukman83/autovit-sync/internal/testutil"
	"github.com/stretchr/testify/require"
)

const advertURL = "https://www.autovit.ro/autoturisme/anunt/bmw-seria-5-ID7H1abc.html"

type fakeFetcher struct {
	t      testing.TB
	advert map[string]any
	err    error
	urls   []string
}

func newFetcher(t testing.TB, advert map[string]any) *fakeFetcher {
	return &fakeFetcher{t: t, advert: advert}
}

func (f *fakeFetcher) FetchAdvert(_ context.Context, url string) (*autovit.Advert, error) {
	f.urls = append(f.urls, url)
	if f.err != nil {
		return nil, f.err
	}
	return autovit.ExtractAdvert(testutil.AdvertPage(f.t, f.advert))
}

func TestImportCreatesThenUpdates(t *testing.T) {
	ctx := context.Background()
	s := testutil.OpenStore(t)
	fetcher := newFetcher(t, testutil.SampleAdvert())
	im := listing.NewImporter(fetcher, s, "")

	first, err := im.Import(ctx, listing.ImportRequest{URL: advertURL})
	require.NoError(t, err)
	require.True(t, first.Created)
	require.Equal(t, "7054112233", first.AutovitID)
	require.Equal(t, models.StatusActive, first.Status)
	require.Equal(t, []string{advertURL}, fetcher.urls)

	fetcher.advert["title"] = "BMW Seria 5 520d xDrive M Sport"
	second, err := im.Import(ctx, listing.ImportRequest{URL: advertURL, Status: "draft"})
	require.NoError(t, err)
	require.False(t, second.Created)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, models.StatusDraft, second.Status)

	rows, err := s.ListListings(ctx, store.ListFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "BMW Seria 5 520d xDrive M Sport", rows[0].Title)
}

func TestImportValidatesBeforeFetching(t *testing.T) {
	fetcher := newFetcher(t, testutil.SampleAdvert())
	im := listing.NewImporter(fetcher, testutil.OpenStore(t), store.PolicyOverwrite)

	for _, req := range []listing.ImportRequest{
		{URL: "https://evil.example.com/autovit.ro"},
		{URL: ""},
		{URL: advertURL, Status: "SOLD"},
	} {
		_, err := im.Import(context.Background(), req)
		require.Equal(t, apperr.KindValidation, apperr.KindOf(err), req)
	}
	require.Empty(t, fetcher.urls)
}

func TestImportPropagatesFetchErrors(t *testing.T) {
	fetcher := &fakeFetcher{err: apperr.New(apperr.KindUpstreamFetch, "Autovit a răspuns cu status 403")}
	s := testutil.OpenStore(t)
	im := listing.NewImporter(fetcher, s, store.PolicyOverwrite)

	_, err := im.Import(context.Background(), listing.ImportRequest{URL: advertURL})
	require.Equal(t, apperr.KindUpstreamFetch, apperr.KindOf(err))

	rows, err := s.ListListings(context.Background(), store.ListFilter{})
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestImportRespectsLocks(t *testing.T) {
	ctx := context.Background()
	s := testutil.OpenStore(t)
	fetcher := newFetcher(t, testutil.SampleAdvert())

	res, err := listing.NewImporter(fetcher, s, store.PolicyOverwrite).Import(ctx, listing.ImportRequest{URL: advertURL})
	require.NoError(t, err)

	title := "Titlu editat"
	_, err = listing.NewEditor(s).UpdateFields(ctx, res.ID, listing.Patch{Title: &title})
	require.NoError(t, err)

	_, err = listing.NewImporter(fetcher, s, store.PolicyRespectLocks).Import(ctx, listing.ImportRequest{URL: advertURL})
	require.NoError(t, err)
	got, err := s.GetListing(ctx, res.ID)
	require.NoError(t, err)
	require.Equal(t, "Titlu editat", got.Title)

	_, err = listing.NewImporter(fetcher, s, store.PolicyOverwrite).Import(ctx, listing.ImportRequest{URL: advertURL})
	require.NoError(t, err)
	got, err = s.GetListing(ctx, res.ID)
	require.NoError(t, err)
	require.Equal(t, "BMW Seria 5 520d xDrive", got.Title)
}

func TestImportWithoutStore(t *testing.T) {
	_, err := listing.NewImporter(&fakeFetcher{}, nil, "").Import(context.Background(), listing.ImportRequest{URL: advertURL})
	require.Equal(t, apperr.KindConfiguration, apperr.KindOf(err))
}

func TestValidateID(t *testing.T) {
	valid := []string{
		"3f0c1e1a-9a8b-4c2d-8e7f-1a2b3c4d5e6f",
		"3F0C1E1A-9A8B-1C2D-BE7F-1A2B3C4D5E6F",
	}
	for _, id := range valid {
		require.NoError(t, listing.ValidateID(id), id)
	}
	invalid := []string{
		"",
		"not-a-uuid",
		"3f0c1e1a9a8b4c2d8e7f1a2b3c4d5e6f",
		"{3f0c1e1a-9a8b-4c2d-8e7f-1a2b3c4d5e6f}",
		"3f0c1e1a-9a8b-6c2d-8e7f-1a2b3c4d5e6f", // version 6
		"3f0c1e1a-9a8b-4c2d-ce7f-1a2b3c4d5e6f", // variant
		"00000000-0000-0000-0000-000000000000",
	}
	for _, id := range invalid {
		err := listing.ValidateID(id)
		require.Equal(t, apperr.KindValidation, apperr.KindOf(err), id)
		require.Equal(t, "ID-ul anunțului este invalid", apperr.MessageOf(err, ""))
	}
}

func TestRemover(t *testing.T) {
	ctx := context.Background()
	s := testutil.OpenStore(t)
	res, err := listing.NewImporter(newFetcher(t, testutil.SampleAdvert()), s, "").Import(ctx, listing.ImportRequest{URL: advertURL})
	require.NoError(t, err)

	r := listing.NewRemover(s)
	require.NoError(t, r.Delete(ctx, res.ID))
	_, err = s.GetListing(ctx, res.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	// already gone
	require.NoError(t, r.Delete(ctx, res.ID))

	err = r.Delete(ctx, "42")
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

type failingStore struct{ listing.Store }

func (failingStore) DeleteListing(context.Context, string) (bool, error) {
	return false, apperr.Wrap(apperr.KindStorage, "Ștergerea anunțului a eșuat", errors.New("disk I/O error"))
}

func TestRemoverStorageFailure(t *testing.T) {
	err := listing.NewRemover(failingStore{}).Delete(context.Background(), "3f0c1e1a-9a8b-4c2d-8e7f-1a2b3c4d5e6f")
	require.Equal(t, apperr.KindStorage, apperr.KindOf(err))
	require.Equal(t, "Ștergerea anunțului a eșuat", apperr.MessageOf(err, ""))
}

func TestEditor(t *testing.T) {
	ctx := context.Background()
	s := testutil.OpenStore(t)
	res, err := listing.NewImporter(newFetcher(t, testutil.SampleAdvert()), s, "").Import(ctx, listing.ImportRequest{URL: advertURL})
	require.NoError(t, err)

	ed := listing.NewEditor(s)
	require.NoError(t, ed.UpdateStatus(ctx, res.ID, "archived"))
	got, err := s.GetListing(ctx, res.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusArchived, got.Status)

	err = ed.UpdateStatus(ctx, res.ID, "deleted")
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	price := 25500.0
	images := []string{" ", "https://img.example/new.jpg", "https://img.example/second.jpg"}
	empty := ""
	updated, err := ed.UpdateFields(ctx, res.ID, listing.Patch{
		PriceValue: &price,
		Images:     &images,
		Subtitle:   &empty,
	})
	require.NoError(t, err)
	require.Equal(t, 25500.0, updated.PriceValue)
	require.Nil(t, updated.Subtitle)
	require.Equal(t, []string{"images", "main_image", "price_value", "subtitle"}, updated.LockedFields)

	got, err = s.GetListing(ctx, res.ID)
	require.NoError(t, err)
	want := []models.Image{{URL: "https://img.example/new.jpg"}, {URL: "https://img.example/second.jpg"}}
	if diff := cmp.Diff(want, got.Images); diff != "" {
		t.Fatalf("images mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, "https://img.example/new.jpg", *got.MainImage)

	blank := "  "
	_, err = ed.UpdateFields(ctx, res.ID, listing.Patch{Title: &blank})
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	title := "Nou"
	_, err = ed.UpdateFields(ctx, "3f0c1e1a-9a8b-4c2d-8e7f-1a2b3c4d5e6f", listing.Patch{Title: &title})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestCatalogHidesInactive(t *testing.T) {
	ctx := context.Background()
	s := testutil.OpenStore(t)
	fetcher := newFetcher(t, testutil.SampleAdvert())
	res, err := listing.NewImporter(fetcher, s, "").Import(ctx, listing.ImportRequest{URL: advertURL})
	require.NoError(t, err)

	time.Sleep(2 * time.Millisecond)
	draft := testutil.SampleAdvert()
	draft["id"] = "draft-1"
	fetcher.advert = draft
	drafted, err := listing.NewImporter(fetcher, s, "").Import(ctx, listing.ImportRequest{URL: advertURL, Status: "DRAFT"})
	require.NoError(t, err)

	c := listing.NewCatalog(s)
	public, err := c.Public(ctx)
	require.NoError(t, err)
	require.Len(t, public, 1)
	require.Equal(t, res.ID, public[0].ID)

	_, err = c.Get(ctx, drafted.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = c.GetByAutovitID(ctx, "draft-1")
	require.ErrorIs(t, err, store.ErrNotFound)

	p, err := c.GetByAutovitID(ctx, "7054112233")
	require.NoError(t, err)
	require.Equal(t, res.ID, p.ID)

	all, err := c.Admin(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "draft-1", all[0].AutovitID)
	require.NotNil(t, all[0].Payload)

	l, err := c.LookupByAutovitID(ctx, "draft-1")
	require.NoError(t, err)
	require.Equal(t, models.StatusDraft, l.Status)
	l, err = c.Lookup(ctx, drafted.ID)
	require.NoError(t, err)
	require.Equal(t, "draft-1", l.AutovitID)
}
