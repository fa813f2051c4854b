package mcp

import (
	"context"

	"github.com/lukman83/autovit-sync/internal/listing"
	"github.com/lukman83/autovit-sync/internal/models"
	"github.com/mark3labs/mcp-go/server"
)

const (
	serverName    = "autovit-sync"
	serverVersion = "1.0.0"
)

type Importer interface {
	Import(ctx context.Context, req listing.ImportRequest) (listing.ImportResult, error)
}

type Catalog interface {
	Admin(ctx context.Context, status models.Status, limit int) ([]models.Listing, error)
	Lookup(ctx context.Context, id string) (*models.Listing, error)
	LookupByAutovitID(ctx context.Context, autovitID string) (*models.Listing, error)
}

// Services are what the tools run against. MCP callers act as admins, so
// the catalog methods used here see every status.
type Services struct {
	Importer Importer
	Catalog  Catalog
}

// NewServer builds an MCP server with all tools registered.
func NewServer(svc Services) *server.MCPServer {
	s := server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(true),
	)

	registerTools(s, svc)
	return s
}

// Serve starts the MCP stdio server with all tools registered.
func Serve(svc Services) error {
	return server.ServeStdio(NewServer(svc))
}
