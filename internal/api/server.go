// Package api is the HTTP boundary: the import and delete endpoints used by
// the admin panel, the public listing reads and the admin listing tools.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/lukman83/autovit-sync/internal/auth"
	"github.com/lukman83/autovit-sync/internal/listing"
	"github.com/lukman83/autovit-sync/internal/models"
	"github.com/lukman83/autovit-sync/internal/telemetry"
	"github.com/rs/zerolog"
)

// MaxBodyBytes caps request bodies.
const MaxBodyBytes = 1 << 20

type Importer interface {
	Import(ctx context.Context, req listing.ImportRequest) (listing.ImportResult, error)
}

type Remover interface {
	Delete(ctx context.Context, id string) error
}

type Editor interface {
	UpdateStatus(ctx context.Context, id, status string) error
	UpdateFields(ctx context.Context, id string, p listing.Patch) (*models.Listing, error)
}

type Catalog interface {
	Public(ctx context.Context) ([]models.Summary, error)
	Get(ctx context.Context, id string) (*models.Payload, error)
	GetByAutovitID(ctx context.Context, autovitID string) (*models.Payload, error)
	Admin(ctx context.Context, status models.Status, limit int) ([]models.Listing, error)
}

type Authorizer interface {
	Authorize(ctx context.Context, authorizationHeader string) (auth.User, error)
}

// Options wires the server. Nil services answer with a configuration error
// so a process without a database still starts.
type Options struct {
	Importer Importer
	Remover  Remover
	Editor   Editor
	Catalog  Catalog
	Gate     Authorizer

	// AllowedOrigins for CORS. Empty allows any origin.
	AllowedOrigins []string

	// Health reports whether dependencies are reachable. Optional.
	Health func(ctx context.Context) error

	// MCP is mounted at /mcp when set.
	MCP http.Handler

	Logger zerolog.Logger
}

// Server serves the HTTP API.
type Server struct {
	opts    Options
	handler http.Handler
}

func New(opts Options) *Server {
	s := &Server{opts: opts}

	mux := http.NewServeMux()
	for _, prefix := range []string{"", "/functions/v1"} {
		mux.HandleFunc(prefix+"/import-autovit", s.handleImport)
		mux.HandleFunc(prefix+"/delete-listing", s.handleDelete)
	}
	mux.HandleFunc("/listings", s.handleListings)
	mux.HandleFunc("/listings/{id}", s.handleListing)
	mux.HandleFunc("/listings/autovit/{autovitId}", s.handleListingByAutovitID)
	mux.HandleFunc("/admin/listings", s.handleAdminListings)
	mux.HandleFunc("/admin/listings/status", s.handleAdminStatus)
	mux.HandleFunc("/admin/listings/update", s.handleAdminUpdate)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle("/metrics", telemetry.MetricsHandler())
	if opts.MCP != nil {
		mux.Handle("/mcp", opts.MCP)
	}

	s.handler = s.observe(s.cors(mux))
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.handler }

// ListenAndServe serves on addr until ctx is cancelled, then drains
// in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.opts.Logger.Info().Str("addr", addr).Msg("http server listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
