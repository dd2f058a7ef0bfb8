package admin

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/paperbase/paperbase/internal/config"
	"github.com/paperbase/paperbase/internal/database"
	"github.com/paperbase/paperbase/internal/openai"
	"github.com/paperbase/paperbase/internal/repository"
	"github.com/paperbase/paperbase/internal/service"
)

// BackfillCmd returns the backfill command, a one-shot embedding backfill
// pass over chunks stored without a vector.
func BackfillCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backfill",
		Short: "Generate embeddings for chunks that are missing one",
		RunE:  runBackfill,
	}
}

func runBackfill(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if !cfg.HasOpenAI() {
		return fmt.Errorf("OPENAI_API_KEY is required for backfill")
	}

	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	chunkRepo := repository.NewChunkRepository(pool)
	knowledgeSvc := service.NewKnowledgeService(chunkRepo, openai.NewClient(cfg.OpenAIAPIKey))

	result, err := knowledgeSvc.MigrateMissingEmbeddings(ctx)
	if err != nil {
		return fmt.Errorf("backfill failed: %w", err)
	}

	fmt.Printf("scanned %d chunks: %d migrated, %d failed\n",
		result.Scanned, result.Migrated, result.Failed)
	return nil
}
