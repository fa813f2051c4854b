package listing

import (
	"context"

	"github.com/lukman83/autovit-sync/internal/models"
	"github.com/lukman83/autovit-sync/internal/store"
)

const (
	PublicLimit = 60
	AdminLimit  = 200
)

// Catalog serves read-only listing views. The public methods only ever
// return active listings.
type Catalog struct {
	store Store
}

func NewCatalog(s Store) *Catalog {
	return &Catalog{store: s}
}

// Public lists the newest active listings.
func (c *Catalog) Public(ctx context.Context) ([]models.Summary, error) {
	rows, err := c.store.ListListings(ctx, store.ListFilter{
		Status: models.StatusActive,
		SortBy: store.SortCreated,
		Limit:  PublicLimit,
	})
	if err != nil {
		return nil, err
	}
	out := make([]models.Summary, len(rows))
	for i := range rows {
		out[i] = ToSummary(&rows[i])
	}
	return out, nil
}

// Get returns the detail view of an active listing by row id.
func (c *Catalog) Get(ctx context.Context, id string) (*models.Payload, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	return c.active(c.store.GetListing(ctx, id))
}

// GetByAutovitID returns the detail view of an active listing by advert id.
func (c *Catalog) GetByAutovitID(ctx context.Context, autovitID string) (*models.Payload, error) {
	return c.active(c.store.GetListingByAutovitID(ctx, autovitID))
}

func (c *Catalog) active(l *models.Listing, err error) (*models.Payload, error) {
	if err != nil {
		return nil, err
	}
	if l.Status != models.StatusActive {
		return nil, store.ErrNotFound
	}
	p := ToPayload(l)
	return &p, nil
}

// Admin lists every listing, most recently changed first, with the raw
// advert payload.
func (c *Catalog) Admin(ctx context.Context, status models.Status, limit int) ([]models.Listing, error) {
	if limit <= 0 || limit > AdminLimit {
		limit = AdminLimit
	}
	return c.store.ListListings(ctx, store.ListFilter{
		Status:      status,
		SortBy:      store.SortUpdated,
		Limit:       limit,
		WithPayload: true,
	})
}

// Lookup returns any listing by row id, whatever its status.
func (c *Catalog) Lookup(ctx context.Context, id string) (*models.Listing, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	return c.store.GetListing(ctx, id)
}

// LookupByAutovitID returns any listing by advert id, whatever its status.
func (c *Catalog) LookupByAutovitID(ctx context.Context, autovitID string) (*models.Listing, error) {
	return c.store.GetListingByAutovitID(ctx, autovitID)
}
