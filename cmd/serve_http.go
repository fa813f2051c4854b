package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/lukman83/autovit-sync/internal/api"
	"github.com/spf13/cobra"
)

var serveHTTPCmd = &cobra.Command{
	Use:   "serve-http",
	Short: "Start the HTTP API",
	Long:  "Start the import/delete endpoints, the listing reads and, when an MCP API key is set, the MCP server at /mcp.",
	RunE:  runServeHTTP,
}

func init() {
	serveHTTPCmd.Flags().String("port", "", "HTTP port (default from $PORT or 8080)")
	rootCmd.AddCommand(serveHTTPCmd)
}

func runServeHTTP(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	flush := startTracing(ctx)
	defer flush()

	a, err := openApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	port := cfg.HTTPPort
	if p, _ := cmd.Flags().GetString("port"); p != "" {
		port = p
	}

	addr := fmt.Sprintf(":%s", port)
	return api.New(a.apiOptions()).ListenAndServe(ctx, addr)
}
