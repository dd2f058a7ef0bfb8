package client

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// RegisterRequest represents the document registration request.
type RegisterRequest struct {
	Name          string `json:"name"`
	Category      string `json:"category,omitempty"`
	ContentBase64 string `json:"content_base64"`
}

// DocumentResponse represents a registered document.
type DocumentResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	PageCount int    `json:"page_count"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// AddCmd creates the add command.
func AddCmd() *cobra.Command {
	var (
		name     string
		category string
		ingest   bool
	)

	cmd := &cobra.Command{
		Use:   "add <file.pdf>",
		Short: "Register a PDF document",
		Long:  "Uploads a PDF file and registers it as a source document.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runAdd(cmd, args[0], name, category, ingest, outputJSON)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Document name (defaults to the file name)")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Document category")
	cmd.Flags().BoolVar(&ingest, "ingest", false, "Run the ingestion pipeline after registering")

	return cmd
}

func runAdd(cmd *cobra.Command, filePath, name, category string, ingest, outputJSON bool) error {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	if name == "" {
		base := filepath.Base(filePath)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	req := RegisterRequest{
		Name:          name,
		Category:      category,
		ContentBase64: base64.StdEncoding.EncodeToString(content),
	}

	resp, err := api.Post("/documents", req)
	if err != nil {
		return fmt.Errorf("register failed: %w", err)
	}

	var doc DocumentResponse
	if err := json.Unmarshal(resp.Data, &doc); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON && !ingest {
		output, _ := json.MarshalIndent(doc, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if !outputJSON {
		fmt.Printf("Registered document: %s\n", doc.Name)
		fmt.Printf("  ID: %s\n", doc.ID)
		fmt.Printf("  Category: %s\n", doc.Category)
	}

	if ingest {
		return runIngestOne(api, doc.ID, false, outputJSON)
	}

	return nil
}
