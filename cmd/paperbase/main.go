package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/paperbase/paperbase/internal/cli"
	"github.com/paperbase/paperbase/internal/cli/client"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "paperbase",
		Short: "Paperbase CLI - Document ingestion and retrieval",
		Long: `Paperbase CLI provides commands to register PDF documents, run the
ingestion pipeline and query the resulting knowledge base.

Environment variables:
  PAPERBASE_API_URL   API base URL (default: http://localhost:8080)`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env and config)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.AddCmd())
	rootCmd.AddCommand(client.ListCmd())
	rootCmd.AddCommand(client.GetCmd())
	rootCmd.AddCommand(client.IngestCmd())
	rootCmd.AddCommand(client.StatusCmd())
	rootCmd.AddCommand(client.SearchCmd())
	rootCmd.AddCommand(client.ContextCmd())
	rootCmd.AddCommand(client.DeleteCmd())
	rootCmd.AddCommand(client.DownloadCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
