package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// ContextRequest represents the context API request.
type ContextRequest struct {
	Query    string `json:"query"`
	Category string `json:"category,omitempty"`
	SourceID string `json:"source_id,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

// ContextResponse represents the context API response.
type ContextResponse struct {
	Context string `json:"context"`
}

// ContextCmd creates the context command.
func ContextCmd() *cobra.Command {
	var (
		category string
		sourceID string
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "context <query>",
		Short: "Build a prompt context block",
		Long:  "Retrieves the most relevant chunks and formats them as a single context block.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")

			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			req := ContextRequest{
				Query:    args[0],
				Category: category,
				SourceID: sourceID,
				Limit:    limit,
			}

			resp, err := api.Post("/context", req)
			if err != nil {
				return fmt.Errorf("context failed: %w", err)
			}

			var ctxResp ContextResponse
			if err := json.Unmarshal(resp.Data, &ctxResp); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			if outputJSON {
				output, _ := json.MarshalIndent(ctxResp, "", "  ")
				fmt.Println(string(output))
				return nil
			}

			fmt.Println(ctxResp.Context)
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "Filter by category")
	cmd.Flags().StringVar(&sourceID, "source", "", "Filter by source document ID")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of chunks")

	return cmd
}
