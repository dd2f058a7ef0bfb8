package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// IngestResponse represents the result of a single ingestion run.
type IngestResponse struct {
	Status        string `json:"status"`
	ChunksCreated int    `json:"chunks_created"`
	Error         string `json:"error,omitempty"`
}

// BatchResultResponse represents the result of a batch ingestion run.
type BatchResultResponse struct {
	Processed int                     `json:"processed"`
	Succeeded int                     `json:"succeeded"`
	Failed    int                     `json:"failed"`
	Results   []BatchDocumentResponse `json:"results"`
}

// BatchDocumentResponse represents one document within a batch result.
type BatchDocumentResponse struct {
	SourceID      string `json:"source_id"`
	Name          string `json:"name"`
	Status        string `json:"status"`
	ChunksCreated int    `json:"chunks_created"`
	Error         string `json:"error,omitempty"`
}

// IngestCmd creates the ingest command.
func IngestCmd() *cobra.Command {
	var (
		force bool
		all   bool
	)

	cmd := &cobra.Command{
		Use:   "ingest [document-id]",
		Short: "Run the ingestion pipeline",
		Long:  "Extracts, chunks and embeds a registered document. With --all, processes every document that has no chunks yet.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")

			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			if all {
				return runIngestAll(api, outputJSON)
			}
			if len(args) == 0 {
				return fmt.Errorf("document id required (or use --all)")
			}
			return runIngestOne(api, args[0], force, outputJSON)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Delete existing chunks and re-ingest")
	cmd.Flags().BoolVar(&all, "all", false, "Ingest all documents without chunks")

	return cmd
}

func runIngestOne(api *APIClient, id string, force, outputJSON bool) error {
	path := "/documents/" + id + "/ingest"
	if force {
		path += "?force=true"
	}

	resp, err := api.Post(path, nil)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	var result IngestResponse
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("Ingestion %s: %d chunks created\n", result.Status, result.ChunksCreated)
	if result.Error != "" {
		fmt.Printf("  Error: %s\n", result.Error)
	}
	return nil
}

func runIngestAll(api *APIClient, outputJSON bool) error {
	resp, err := api.Post("/documents/ingest-batch", nil)
	if err != nil {
		return fmt.Errorf("batch ingest failed: %w", err)
	}

	var batch BatchResultResponse
	if err := json.Unmarshal(resp.Data, &batch); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(batch, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("Processed %d documents: %d succeeded, %d failed\n",
		batch.Processed, batch.Succeeded, batch.Failed)
	for _, result := range batch.Results {
		line := fmt.Sprintf("  %s: %s", result.Name, result.Status)
		if result.Status == "completed" {
			line += fmt.Sprintf(" (%d chunks)", result.ChunksCreated)
		}
		fmt.Println(line)
		if result.Error != "" {
			fmt.Printf("    %s\n", result.Error)
		}
	}
	return nil
}
