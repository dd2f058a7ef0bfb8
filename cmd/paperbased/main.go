package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/paperbase/paperbase/internal/cli"
	"github.com/paperbase/paperbase/internal/cli/admin"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "paperbased",
		Short: "Paperbase daemon",
		Long:  "Paperbase daemon for running the API server and maintenance tasks",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.BackfillCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
