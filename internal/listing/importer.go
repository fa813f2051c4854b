package listing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lukman83/autovit-sync/internal/apperr"
	"github.com/lukman83/autovit-sync/internal/autovit"
	"github.com/lukman83/autovit-sync/internal/models"
	"github.com/lukman83/autovit-sync/internal/platform"
	"github.com/lukman83/autovit-sync/internal/store"
	"github.com/lukman83/autovit-sync/internal/telemetry"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ImportRequest names the advert to import and optionally the status the
// listing should get.
type ImportRequest struct {
	URL    string `json:"url"`
	Status string `json:"status,omitempty"`
}

// Validate checks the request without doing any I/O.
func (r ImportRequest) Validate() error {
	if _, err := autovit.ValidateURL(r.URL); err != nil {
		return err
	}
	if strings.TrimSpace(r.Status) != "" {
		if _, err := parseStatus(r.Status); err != nil {
			return err
		}
	}
	return nil
}

// ImportResult describes the stored listing.
type ImportResult struct {
	ID        string        `json:"id"`
	AutovitID string        `json:"autovit_id"`
	Title     string        `json:"title"`
	Status    models.Status `json:"status"`
	Created   bool          `json:"created"`
}

// Importer turns an advert URL into a stored listing.
type Importer struct {
	fetcher Fetcher
	store   Store
	policy  store.ConflictPolicy
}

// NewImporter creates an importer. An empty policy means overwrite.
func NewImporter(fetcher Fetcher, s Store, policy store.ConflictPolicy) *Importer {
	if policy == "" {
		policy = store.PolicyOverwrite
	}
	return &Importer{fetcher: fetcher, store: s, policy: policy}
}

// Import fetches the advert at req.URL and upserts it by its Autovit id.
// Importing the same advert again updates the existing row.
func (im *Importer) Import(ctx context.Context, req ImportRequest) (ImportResult, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "listing.Import", trace.WithAttributes(attribute.String("autovit.url", req.URL)))
	defer span.End()

	start := time.Now()
	res, err := im.importAdvert(ctx, req)
	logger := zerolog.Ctx(ctx)
	if err != nil {
		telemetry.RecordImport(telemetry.OutcomeFailed)
		span.RecordError(err)
		span.SetStatus(codes.Error, apperr.KindOf(err).String())
		logger.Warn().Err(err).
			Str("url", req.URL).
			Str("kind", apperr.KindOf(err).String()).
			Dur("took", time.Since(start)).
			Msg("import failed")
		return ImportResult{}, err
	}

	outcome := telemetry.OutcomeUpdated
	if res.Created {
		outcome = telemetry.OutcomeCreated
	}
	telemetry.RecordImport(outcome)
	span.SetAttributes(attribute.String("autovit.id", res.AutovitID), attribute.String("import.outcome", outcome))
	logger.Info().
		Str("url", req.URL).
		Str("autovit_id", res.AutovitID).
		Str("id", res.ID).
		Str("outcome", outcome).
		Dur("took", time.Since(start)).
		Msg("listing imported")
	return res, nil
}

func (im *Importer) importAdvert(ctx context.Context, req ImportRequest) (ImportResult, error) {
	if err := req.Validate(); err != nil {
		return ImportResult{}, err
	}
	if im.fetcher == nil {
		return ImportResult{}, apperr.New(apperr.KindConfiguration, "Importul nu este configurat")
	}
	if im.store == nil {
		return ImportResult{}, apperr.New(apperr.KindConfiguration, "Baza de date nu este configurată")
	}
	u, _ := autovit.ValidateURL(req.URL)

	advert, err := stage(ctx, "fetch", func(ctx context.Context) (*autovit.Advert, error) {
		return im.fetcher.FetchAdvert(ctx, u.String())
	})
	if err != nil {
		return ImportResult{}, err
	}

	platform.ReportProgress(ctx, "Building listing...")
	l, err := stage(ctx, "assemble", func(context.Context) (*models.Listing, error) {
		return autovit.BuildListing(advert, autovit.BuildOptions{Status: req.Status})
	})
	if err != nil {
		return ImportResult{}, err
	}

	platform.ReportProgress(ctx, fmt.Sprintf("Saving listing %s...", l.AutovitID))
	up, err := stage(ctx, "upsert", func(ctx context.Context) (store.UpsertResult, error) {
		return im.store.UpsertListing(ctx, l, im.policy)
	})
	if err != nil {
		return ImportResult{}, err
	}

	return ImportResult{
		ID:        up.ID,
		AutovitID: l.AutovitID,
		Title:     l.Title,
		Status:    l.Status,
		Created:   up.Created,
	}, nil
}

// stage runs fn in a child span named after the import step.
func stage[T any](ctx context.Context, name string, fn func(context.Context) (T, error)) (T, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "listing.Import."+name)
	defer span.End()
	v, err := fn(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return v, err
}
