package admin

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"

	"github.com/paperbase/paperbase/internal/api/handlers"
	"github.com/paperbase/paperbase/internal/config"
	"github.com/paperbase/paperbase/internal/database"
	"github.com/paperbase/paperbase/internal/extraction"
	"github.com/paperbase/paperbase/internal/jobs"
	"github.com/paperbase/paperbase/internal/openai"
	"github.com/paperbase/paperbase/internal/repository"
	"github.com/paperbase/paperbase/internal/server"
	"github.com/paperbase/paperbase/internal/service"
	"github.com/paperbase/paperbase/internal/storage"
	"github.com/paperbase/paperbase/internal/telemetry"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the paperbase API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize Sentry with tracing if SENTRY_DSN is set
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              dsn,
			Environment:      environment,
			TracesSampleRate: sampleRate,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	log.Println("connected to database")

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	chunkRepo := repository.NewChunkRepository(pool)
	docRepo := repository.NewDocumentRepository(pool)

	var docStorage service.DocumentStorage
	var objStorage service.ObjectStorage
	if cfg.HasS3() {
		s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		})
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := s3Client.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		log.Printf("S3 bucket '%s' ready", cfg.S3Bucket)
		docStorage = s3Client
		objStorage = s3Client
	} else {
		log.Println("S3 not configured: document registration and ingestion disabled")
		noop := &noopStorage{}
		docStorage = noop
		objStorage = noop
	}

	var embeddingClient service.EmbeddingClient
	if cfg.HasOpenAI() {
		embeddingClient = openai.NewClient(cfg.OpenAIAPIKey)
	} else {
		log.Println("OpenAI not configured: chunks will be stored text-search only")
	}

	knowledgeSvc := service.NewKnowledgeServiceWithConfig(chunkRepo, embeddingClient, service.KnowledgeServiceConfig{
		Chunking: service.ChunkConfig{
			TargetChars: cfg.ChunkTargetChars,
			MinChars:    cfg.ChunkMinChars,
			MaxChars:    cfg.ChunkMaxChars,
			Overlap:     cfg.ChunkOverlap,
		},
		KeywordCount: cfg.KeywordCount,
		EmbedTimeout: cfg.EmbedTimeout,
		EmbedFanOut:  cfg.EmbedFanOut,
	})
	documentSvc := service.NewDocumentService(docRepo, docStorage)
	retrieverSvc := service.NewRetrieverService(chunkRepo, embeddingClient)
	contextSvc := service.NewContextService(retrieverSvc)
	orchestrator := service.NewIngestionOrchestrator(
		docRepo,
		chunkRepo,
		objStorage,
		extraction.NewPDFExtractor(),
		knowledgeSvc,
		cfg.ExtractTimeout,
	)

	var backfillWorker *jobs.Worker
	if embeddingClient != nil && cfg.BackfillInterval > 0 {
		backfillWorker = jobs.NewWorker(jobs.NewBackfillWorker(knowledgeSvc), cfg.BackfillInterval)
		go backfillWorker.Start(ctx)
		log.Println("embedding backfill worker started")
	}

	router := server.NewRouter(server.RouterConfig{
		DocumentHandler: handlers.NewDocumentHandler(documentSvc),
		IngestHandler:   handlers.NewIngestHandler(orchestrator, knowledgeSvc),
		SearchHandler:   handlers.NewSearchHandler(retrieverSvc, contextSvc),
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	if backfillWorker != nil {
		backfillWorker.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

// noopStorage stands in when S3 is not configured.
type noopStorage struct{}

func (s *noopStorage) PutObject(ctx context.Context, key string, content []byte, contentType string) error {
	return fmt.Errorf("object storage not configured: S3_ENDPOINT required")
}

func (s *noopStorage) GetObject(ctx context.Context, key string) ([]byte, error) {
	return nil, fmt.Errorf("object storage not configured: S3_ENDPOINT required")
}

func (s *noopStorage) GenerateDownloadURL(ctx context.Context, key string) (string, error) {
	return "", fmt.Errorf("object storage not configured: S3_ENDPOINT required")
}

func (s *noopStorage) DeleteObject(ctx context.Context, key string) error {
	return fmt.Errorf("object storage not configured: S3_ENDPOINT required")
}

func runMigrations(databaseURL string) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if err == migrate.ErrNilVersion {
		log.Println("migrations: database is up to date (no migrations applied)")
	} else if dirty {
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	} else if err == migrate.ErrNoChange {
		log.Printf("migrations: database is up to date (version %d)", version)
	} else {
		log.Printf("migrations: applied successfully (version %d)", version)
	}

	return nil
}
