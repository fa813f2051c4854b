// Package listing implements the listing operations shared by the HTTP
// boundary, the CLI and the MCP tools: importing adverts, deleting and
// editing listings, and projecting rows into their public views.
package listing

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/lukman83/autovit-sync/internal/apperr"
	"github.com/lukman83/autovit-sync/internal/autovit"
	"github.com/lukman83/autovit-sync/internal/models"
	"github.com/lukman83/autovit-sync/internal/store"
)

// Store is the persistence the services need. *store.Store implements it.
type Store interface {
	UpsertListing(ctx context.Context, l *models.Listing, policy store.ConflictPolicy) (store.UpsertResult, error)
	GetListing(ctx context.Context, id string) (*models.Listing, error)
	GetListingByAutovitID(ctx context.Context, autovitID string) (*models.Listing, error)
	ListListings(ctx context.Context, f store.ListFilter) ([]models.Listing, error)
	UpdateStatus(ctx context.Context, id string, status models.Status) error
	SaveEdit(ctx context.Context, l *models.Listing, changed []string) error
	DeleteListing(ctx context.Context, id string) (bool, error)
}

// Fetcher returns the advert published at a URL. *autovit.Scraper
// implements it.
type Fetcher interface {
	FetchAdvert(ctx context.Context, url string) (*autovit.Advert, error)
}

const msgInvalidID = "ID-ul anunțului este invalid"

// ValidateID accepts only canonical RFC 4122 UUIDs of versions 1 to 5.
func ValidateID(id string) error {
	id = strings.TrimSpace(id)
	if len(id) != 36 {
		return apperr.New(apperr.KindValidation, msgInvalidID)
	}
	u, err := uuid.Parse(id)
	if err != nil || u.Variant() != uuid.RFC4122 || u.Version() < 1 || u.Version() > 5 {
		return apperr.New(apperr.KindValidation, msgInvalidID)
	}
	return nil
}

func parseStatus(s string) (models.Status, error) {
	st, err := models.ParseStatus(s)
	if err != nil {
		return "", apperr.Wrap(apperr.KindValidation, "Status invalid. Valori acceptate: ACTIVE, DRAFT, ARCHIVED", err)
	}
	return st, nil
}
