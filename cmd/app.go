package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/lukman83/autovit-sync/internal/api"
	"github.com/lukman83/autovit-sync/internal/auth"
	"github.com/lukman83/autovit-sync/internal/listing"
	"github.com/lukman83/autovit-sync/internal/store"
	"github.com/lukman83/autovit-sync/internal/telemetry"
	mcpserver "github.com/lukman83/autovit-sync/mcp"
)

const serviceName = "autovit-sync"

var errNoDatabase = errors.New("no database configured: set AUTOVIT_DATABASE_URL or --database-url")

// app holds the services built from cfg. Without a database every service
// is nil.
type app struct {
	store    *store.Store
	importer *listing.Importer
	remover  *listing.Remover
	editor   *listing.Editor
	catalog  *listing.Catalog
}

// openApp connects the store and builds the listing services. A missing
// database URL is only an error when requireStore is set.
func openApp(ctx context.Context, requireStore bool) (*app, error) {
	a := &app{}
	if cfg.DatabaseURL == "" {
		if requireStore {
			return nil, errNoDatabase
		}
		logger.Warn().Msg("no database configured; listing endpoints will answer with a configuration error")
		return a, nil
	}

	s, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	policy, err := store.ParseConflictPolicy(cfg.ConflictPolicy)
	if err != nil {
		s.Close()
		return nil, err
	}
	scraper, err := buildScraper()
	if err != nil {
		s.Close()
		return nil, err
	}

	a.store = s
	a.importer = listing.NewImporter(scraper, s, policy)
	a.remover = listing.NewRemover(s)
	a.editor = listing.NewEditor(s)
	a.catalog = listing.NewCatalog(s)
	return a, nil
}

func (a *app) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}

// apiOptions wires the services into the HTTP boundary, leaving nil
// services out so they stay nil interfaces.
func (a *app) apiOptions() api.Options {
	opts := api.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		Gate:           a.gate(),
		Logger:         logger,
	}
	if a.store != nil {
		opts.Importer = a.importer
		opts.Remover = a.remover
		opts.Editor = a.editor
		opts.Catalog = a.catalog
		opts.Health = a.store.Ping
	}
	if cfg.MCPAPIKey != "" {
		opts.MCP = mcpserver.Handler(a.mcpServices(), cfg.MCPAPIKey)
	}
	return opts
}

func (a *app) mcpServices() mcpserver.Services {
	if a.store == nil {
		return mcpserver.Services{}
	}
	return mcpserver.Services{Importer: a.importer, Catalog: a.catalog}
}

// gate prefers local JWT verification and falls back to asking the hosted
// auth API. Without either, or without a store for roles, the gate answers
// with a configuration error.
func (a *app) gate() *auth.Gate {
	var verifier auth.Verifier
	switch {
	case cfg.JWTSecret != "":
		verifier = auth.NewJWTVerifier(cfg.JWTSecret)
	case cfg.SupabaseURL != "" && cfg.ServiceRoleKey != "":
		client := resty.New()
		telemetry.InstrumentResty(client)
		verifier = auth.NewRemoteVerifier(cfg.SupabaseURL, cfg.ServiceRoleKey, client)
	default:
		logger.Warn().Msg("no token verifier configured; admin endpoints are disabled")
	}

	var roles auth.RoleStore
	if a.store != nil {
		roles = a.store
	}
	return auth.NewGate(verifier, roles)
}

// startTracing installs the exporter when an endpoint is configured and
// returns the flush function.
func startTracing(ctx context.Context) func() {
	shutdown, err := telemetry.SetupTracing(ctx, serviceName, cfg.OTLPEndpoint, nil)
	if err != nil {
		logger.Warn().Err(err).Msg("tracing disabled")
		return func() {}
	}
	return func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Warn().Err(err).Msg("flush traces")
		}
	}
}
