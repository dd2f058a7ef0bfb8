package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// GetCmd creates the get command.
func GetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <document-id>",
		Short: "Show a document's metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")

			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			resp, err := api.Get("/documents/" + args[0])
			if err != nil {
				return fmt.Errorf("get failed: %w", err)
			}

			var doc DocumentResponse
			if err := json.Unmarshal(resp.Data, &doc); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			if outputJSON {
				output, _ := json.MarshalIndent(doc, "", "  ")
				fmt.Println(string(output))
				return nil
			}

			fmt.Printf("%s [%s]\n", doc.Name, doc.Category)
			fmt.Printf("  ID: %s\n", doc.ID)
			if doc.PageCount > 0 {
				fmt.Printf("  Pages: %d\n", doc.PageCount)
			}
			fmt.Printf("  Created: %s\n", doc.CreatedAt)
			fmt.Printf("  Updated: %s\n", doc.UpdatedAt)
			return nil
		},
	}
}
