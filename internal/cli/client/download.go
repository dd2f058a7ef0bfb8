package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// DownloadURLResponse represents the download URL API response.
type DownloadURLResponse struct {
	URL string `json:"url"`
}

// DownloadCmd creates the download command.
func DownloadCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "download <document-id>",
		Short: "Download the original PDF for a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runDownload(cmd, args[0], output, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&output, "file", "O", "", "Output file path (defaults to <name>.pdf)")

	return cmd
}

func runDownload(cmd *cobra.Command, id, outputPath string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	if outputPath == "" {
		resp, err := api.Get("/documents/" + id)
		if err != nil {
			return fmt.Errorf("failed to fetch document: %w", err)
		}
		var doc DocumentResponse
		if err := json.Unmarshal(resp.Data, &doc); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
		outputPath = doc.Name + ".pdf"
	}

	resp, err := api.Get("/documents/" + id + "/download")
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}

	var urlResp DownloadURLResponse
	if err := json.Unmarshal(resp.Data, &urlResp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(urlResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if err := api.DownloadFile(urlResp.URL, outputPath); err != nil {
		return err
	}

	fmt.Printf("Downloaded to %s\n", outputPath)
	return nil
}
