package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// StatusResponse represents the ingestion status of a document.
type StatusResponse struct {
	IsIngested bool `json:"is_ingested"`
	ChunkCount int  `json:"chunk_count"`
}

// StatusCmd creates the status command.
func StatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <document-id>",
		Short: "Show ingestion status for a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")

			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			resp, err := api.Get("/documents/" + args[0] + "/status")
			if err != nil {
				return fmt.Errorf("status failed: %w", err)
			}

			var status StatusResponse
			if err := json.Unmarshal(resp.Data, &status); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			if outputJSON {
				output, _ := json.MarshalIndent(status, "", "  ")
				fmt.Println(string(output))
				return nil
			}

			if status.IsIngested {
				fmt.Printf("Ingested: %d chunks\n", status.ChunkCount)
			} else {
				fmt.Println("Not ingested.")
			}
			return nil
		},
	}
}
