package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// DeleteChunksResponse represents the result of deleting a document's chunks.
type DeleteChunksResponse struct {
	DeletedCount int `json:"deleted_count"`
}

// DeleteCmd creates the delete command.
func DeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <document-id>",
		Short: "Delete all chunks for a document",
		Long:  "Removes the stored chunks for a document. The document record and its stored file are kept.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")

			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			resp, err := api.Delete("/documents/" + args[0] + "/chunks")
			if err != nil {
				return fmt.Errorf("delete failed: %w", err)
			}

			var result DeleteChunksResponse
			if err := json.Unmarshal(resp.Data, &result); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			if outputJSON {
				output, _ := json.MarshalIndent(result, "", "  ")
				fmt.Println(string(output))
				return nil
			}

			fmt.Printf("Deleted %d chunks.\n", result.DeletedCount)
			return nil
		},
	}
}
