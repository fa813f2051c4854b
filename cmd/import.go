package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lukman83/autovit-sync/internal/api"
	"github.com/lukman83/autovit-sync/internal/apperr"
	"github.com/lukman83/autovit-sync/internal/listing"
	"github.com/lukman83/autovit-sync/internal/platform"
	"github.com/lukman83/autovit-sync/internal/ui"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var importCmd = &cobra.Command{
	Use:   "import [url...]",
	Short: "Import Autovit adverts into the listings table",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runImport,
}

func init() {
	importCmd.Flags().String("status", "", "Status for imported listings: ACTIVE, DRAFT, ARCHIVED (default ACTIVE)")
	importCmd.Flags().String("format", "table", "Output format: json, table")
	rootCmd.AddCommand(importCmd)
}

// importOutcome is one line of the import report.
type importOutcome struct {
	URL    string                `json:"url"`
	Result *listing.ImportResult `json:"result,omitempty"`
	Error  string                `json:"error,omitempty"`
}

func runImport(cmd *cobra.Command, args []string) error {
	status, _ := cmd.Flags().GetString("status")
	format, _ := cmd.Flags().GetString("format")

	// reject bad input before touching the network or the database
	for _, u := range args {
		if err := (listing.ImportRequest{URL: u, Status: status}).Validate(); err != nil {
			return fmt.Errorf("%s: %s", u, apperr.MessageOf(err, err.Error()))
		}
	}

	ctx := cmd.Context()
	flush := startTracing(ctx)
	defer flush()

	a, err := openApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	spin := ui.NewSpinner(cmd.ErrOrStderr())
	spin.Start(fmt.Sprintf("Importing %d advert(s)...", len(args)))
	outcomes := importAll(platform.WithProgress(ctx, spin.Update), a.importer, args, status, cfg.MaxConcurrent)
	spin.Stop()

	switch format {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		enc.Encode(outcomes)
	default:
		printImportTable(cmd.OutOrStdout(), outcomes)
	}

	failed := 0
	for _, o := range outcomes {
		if o.Error != "" {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d imports failed", failed, len(outcomes))
	}
	return nil
}

// importAll runs one import per URL, at most limit at a time. A failed
// import does not stop the others.
func importAll(ctx context.Context, im api.Importer, urls []string, status string, limit int) []importOutcome {
	out := make([]importOutcome, len(urls))

	var g errgroup.Group
	g.SetLimit(limit)
	for i, u := range urls {
		g.Go(func() error {
			out[i].URL = u
			res, err := im.Import(ctx, listing.ImportRequest{URL: u, Status: status})
			if err != nil {
				out[i].Error = apperr.MessageOf(err, err.Error())
				return nil
			}
			out[i].Result = &res
			return nil
		})
	}
	g.Wait()
	return out
}
