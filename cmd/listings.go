package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/lukman83/autovit-sync/internal/listing"
	"github.com/lukman83/autovit-sync/internal/models"
	"github.com/spf13/cobra"
)

var listingsCmd = &cobra.Command{
	Use:   "listings",
	Short: "List stored listings, most recently changed first",
	Args:  cobra.NoArgs,
	RunE:  runListings,
}

var showCmd = &cobra.Command{
	Use:   "show [id | autovit-id]",
	Short: "Show one listing by row id or Autovit advert id",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var deleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a listing by row id",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	listingsCmd.Flags().String("status", "", "Only listings with this status: ACTIVE, DRAFT, ARCHIVED")
	listingsCmd.Flags().Int("limit", 50, fmt.Sprintf("Maximum number of listings (max %d)", listing.AdminLimit))
	listingsCmd.Flags().String("format", "table", "Output format: json, table")
	showCmd.Flags().String("format", "table", "Output format: json, table")
	rootCmd.AddCommand(listingsCmd, showCmd, deleteCmd)
}

func runListings(cmd *cobra.Command, args []string) error {
	statusFlag, _ := cmd.Flags().GetString("status")
	limit, _ := cmd.Flags().GetInt("limit")
	format, _ := cmd.Flags().GetString("format")

	var status models.Status
	if statusFlag != "" {
		st, err := models.ParseStatus(statusFlag)
		if err != nil {
			return err
		}
		status = st
	}

	a, err := openApp(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer a.Close()

	rows, err := a.catalog.Admin(cmd.Context(), status, limit)
	if err != nil {
		return fmt.Errorf("list listings: %w", err)
	}

	switch format {
	case "json":
		out := make([]models.Summary, len(rows))
		for i := range rows {
			out[i] = listing.ToSummary(&rows[i])
		}
		return writeJSON(cmd, out)
	default:
		printListingsTable(cmd.OutOrStdout(), rows)
	}
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	a, err := openApp(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer a.Close()

	var l *models.Listing
	if listing.ValidateID(args[0]) == nil {
		l, err = a.catalog.Lookup(cmd.Context(), args[0])
	} else {
		l, err = a.catalog.LookupByAutovitID(cmd.Context(), args[0])
	}
	if err != nil {
		return fmt.Errorf("show %s: %w", args[0], err)
	}

	p := listing.ToPayload(l)
	switch format {
	case "json":
		return writeJSON(cmd, p)
	default:
		printListingCard(cmd.OutOrStdout(), p)
	}
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	if err := listing.ValidateID(args[0]); err != nil {
		return err
	}

	a, err := openApp(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.remover.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("delete %s: %w", args[0], err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
	return nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
