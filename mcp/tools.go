package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lukman83/autovit-sync/internal/apperr"
	"github.com/lukman83/autovit-sync/internal/listing"
	"github.com/lukman83/autovit-sync/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type tools struct {
	svc Services
}

func registerTools(s *server.MCPServer, svc Services) {
	t := &tools{svc: svc}

	// import_listing
	importTool := mcp.NewTool("import_listing",
		mcp.WithDescription("Import or refresh an Autovit advert into the listings table"),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("Advert URL on autovit.ro"),
		),
		mcp.WithString("status",
			mcp.Description("Listing status: ACTIVE (default), DRAFT or ARCHIVED"),
		),
	)
	s.AddTool(importTool, t.handleImportListing)

	// list_listings
	listTool := mcp.NewTool("list_listings",
		mcp.WithDescription("List stored listings, most recently changed first"),
		mcp.WithString("status",
			mcp.Description("Only listings with this status"),
		),
		mcp.WithNumber("limit",
			mcp.Description(fmt.Sprintf("Maximum number of listings (default and max: %d)", listing.AdminLimit)),
		),
	)
	s.AddTool(listTool, t.handleListListings)

	// get_listing
	getTool := mcp.NewTool("get_listing",
		mcp.WithDescription("Get one listing by row id or by Autovit advert id"),
		mcp.WithString("id",
			mcp.Description("Listing row id (UUID)"),
		),
		mcp.WithString("autovit_id",
			mcp.Description("Autovit advert id"),
		),
	)
	s.AddTool(getTool, t.handleGetListing)
}

func (t *tools) handleImportListing(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url := request.GetString("url", "")
	if url == "" {
		return mcp.NewToolResultError("url is required"), nil
	}
	if t.svc.Importer == nil {
		return mcp.NewToolResultError("import is not configured"), nil
	}

	res, err := t.svc.Importer.Import(ctx, listing.ImportRequest{
		URL:    url,
		Status: request.GetString("status", ""),
	})
	if err != nil {
		return toolError("import error", err), nil
	}
	return jsonResult(res)
}

func (t *tools) handleListListings(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t.svc.Catalog == nil {
		return mcp.NewToolResultError("catalog is not configured"), nil
	}
	var status models.Status
	if v := request.GetString("status", ""); v != "" {
		st, err := models.ParseStatus(v)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		status = st
	}

	rows, err := t.svc.Catalog.Admin(ctx, status, request.GetInt("limit", listing.AdminLimit))
	if err != nil {
		return toolError("list error", err), nil
	}
	out := make([]models.Summary, len(rows))
	for i := range rows {
		out[i] = listing.ToSummary(&rows[i])
	}
	return jsonResult(out)
}

func (t *tools) handleGetListing(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t.svc.Catalog == nil {
		return mcp.NewToolResultError("catalog is not configured"), nil
	}
	id := request.GetString("id", "")
	autovitID := request.GetString("autovit_id", "")

	var (
		l   *models.Listing
		err error
	)
	switch {
	case id != "":
		l, err = t.svc.Catalog.Lookup(ctx, id)
	case autovitID != "":
		l, err = t.svc.Catalog.LookupByAutovitID(ctx, autovitID)
	default:
		return mcp.NewToolResultError("id or autovit_id is required"), nil
	}
	if err != nil {
		return toolError("get error", err), nil
	}
	return jsonResult(listing.ToPayload(l))
}

// toolError reports err's user-facing message, or err itself for errors
// without one.
func toolError(prefix string, err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf("%s: %s", prefix, apperr.MessageOf(err, err.Error())))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}
