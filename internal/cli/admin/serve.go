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
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"

	"github.com/ocrlab-io/ocrlab/internal/api/handlers"
	"github.com/ocrlab-io/ocrlab/internal/config"
	"github.com/ocrlab-io/ocrlab/internal/database"
	"github.com/ocrlab-io/ocrlab/internal/docintel"
	"github.com/ocrlab-io/ocrlab/internal/domain"
	"github.com/ocrlab-io/ocrlab/internal/jobs"
	"github.com/ocrlab-io/ocrlab/internal/openai"
	"github.com/ocrlab-io/ocrlab/internal/providers/fake"
	"github.com/ocrlab-io/ocrlab/internal/repository"
	"github.com/ocrlab-io/ocrlab/internal/search"
	"github.com/ocrlab-io/ocrlab/internal/server"
	"github.com/ocrlab-io/ocrlab/internal/service"
	"github.com/ocrlab-io/ocrlab/internal/storage"
	"github.com/ocrlab-io/ocrlab/internal/telemetry"
)

// blobStore is the full blob surface the daemon wires together.
type blobStore interface {
	UploadObject(ctx context.Context, key, contentType string, content []byte) error
	DownloadObject(ctx context.Context, key string) ([]byte, error)
	DeleteObject(ctx context.Context, key string) error
}

// searchIndex is the full index surface the daemon wires together.
type searchIndex interface {
	UploadDocuments(ctx context.Context, docs []domain.ChunkDocument) ([]domain.UploadResult, error)
	Query(ctx context.Context, userID string, embedding []float32, limit int) ([]*search.QueryResult, error)
	DeleteByParent(ctx context.Context, userID, parentID string) (int, error)
}

// providers groups the external dependencies selected by run mode.
type providers struct {
	analyzer service.DocumentAnalyzer
	embedder service.EmbeddingClient
	blobs    blobStore
	index    searchIndex
}

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server and processing workers",
		Long:  "Start the ocrlab API server, the file processing worker and the retry scheduler",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")
	cmd.Flags().Bool("no-workers", false, "Serve the API without background workers")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.SentryDSN != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              cfg.SentryDSN,
			Environment:      environment,
			TracesSampleRate: sampleRate,
			Debug:            cfg.Debug,
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

	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL, MaxConns: 10, MinConns: 2})
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

	fileRepo := repository.NewFileRepository(pool)
	folderRepo := repository.NewFolderRepository(pool)
	usageRepo := repository.NewUsageRepository(pool)
	queueRepo := repository.NewQueueRepository(pool)
	requeuer := repository.NewFileRequeuer(pool)

	provs, err := buildProviders(ctx, cfg, pool)
	if err != nil {
		return err
	}

	chunker := service.NewChunkingEngine(service.ChunkConfig{
		MaxChunkSize: cfg.ChunkMaxSize,
		MinChunkSize: cfg.ChunkMinSize,
		ChunkOverlap: cfg.ChunkOverlap,
	})
	embeddingStage := service.NewEmbeddingStage(provs.embedder, service.EmbeddingConfig{
		PacingDelay:   cfg.EmbedDelay,
		MaxTextLength: 8000,
	})
	publisher := service.NewIndexPublisher(provs.index)

	pipeline := service.NewFileProcessor(
		fileRepo, usageRepo, provs.blobs, provs.analyzer,
		chunker, embeddingStage, publisher,
	)
	retryScheduler := service.NewRetryScheduler(fileRepo, requeuer, service.RetryConfig{
		MaxAttempts: cfg.MaxRetryAttempts,
		MaxAge:      cfg.RetryMaxAge,
	})

	var workers []*jobs.Worker
	noWorkers, _ := cmd.Flags().GetBool("no-workers")
	if !noWorkers {
		processingWorker := jobs.NewWorker("processing",
			jobs.NewProcessingWorker(queueRepo, pipeline, cfg.WorkerBatchSize),
			cfg.WorkerPollInterval)
		retryWorker := jobs.NewWorker("retry", retryScheduler, cfg.RetryPollInterval)

		go processingWorker.Start(ctx)
		go retryWorker.Start(ctx)
		workers = append(workers, processingWorker, retryWorker)
		log.Println("processing and retry workers started")
	}

	fileSvc := service.NewFileService(fileRepo, folderRepo, provs.blobs, provs.index, queueRepo, requeuer)
	querySvc := service.NewQueryService(provs.embedder, provs.index, usageRepo)

	router := server.NewRouter(server.RouterConfig{
		FolderHandler: handlers.NewFolderHandler(folderRepo),
		FileHandler:   handlers.NewFileHandler(fileSvc, int64(cfg.MaxUploadSize)),
		QueryHandler:  handlers.NewQueryHandler(querySvc),
		UsageHandler:  handlers.NewUsageHandler(usageRepo),
		MaxBodyBytes:  int64(cfg.MaxUploadSize),
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s (run mode: %s)", cfg.Port, cfg.RunMode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	for _, w := range workers {
		w.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

// buildProviders selects real or fake external dependencies. Fake mode needs
// no provider credentials; real mode refuses to start with an incomplete
// configuration rather than failing on the first processed file.
func buildProviders(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) (*providers, error) {
	if cfg.RunMode == config.RunModeFake {
		log.Println("run mode fake: using in-process providers")
		return &providers{
			analyzer: fake.NewAnalyzer(),
			embedder: fake.NewEmbedder(),
			blobs:    fake.NewBlobStore(),
			index:    fake.NewIndex(),
		}, nil
	}

	if !cfg.HasDocIntel() {
		return nil, domain.NewConfigurationError("OCRLAB_DOCINTEL_ENDPOINT and OCRLAB_DOCINTEL_API_KEY are required in real mode")
	}
	if !cfg.HasOpenAI() {
		return nil, domain.NewConfigurationError("OCRLAB_OPENAI_API_KEY is required in real mode")
	}
	if !cfg.HasS3() {
		return nil, domain.NewConfigurationError("S3 settings (OCRLAB_S3_ENDPOINT, OCRLAB_S3_ACCESS_KEY_ID, OCRLAB_S3_SECRET_ACCESS_KEY) are required in real mode")
	}

	analyzer, err := docintel.NewClient(docintel.Config{
		Endpoint: cfg.DocIntelEndpoint,
		APIKey:   cfg.DocIntelAPIKey,
		ModelID:  cfg.DocIntelModelID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create document analysis client: %w", err)
	}

	embedder, err := openai.NewClient(cfg.OpenAIAPIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
	}

	s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        cfg.S3Endpoint,
		Region:          cfg.S3Region,
		AccessKeyID:     cfg.S3AccessKey,
		SecretAccessKey: cfg.S3SecretKey,
		Bucket:          cfg.S3Bucket,
		UsePathStyle:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}
	if err := s3Client.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure S3 bucket: %w", err)
	}
	log.Printf("S3 bucket '%s' ready", cfg.S3Bucket)

	return &providers{
		analyzer: analyzer,
		embedder: embedder,
		blobs:    s3Client,
		index:    search.NewIndex(pool),
	}, nil
}

func runMigrations(databaseURL string) error {
	// golang-migrate needs database/sql, not pgx native
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
