package admin

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ocrlab-io/ocrlab/internal/config"
	"github.com/ocrlab-io/ocrlab/internal/database"
	"github.com/ocrlab-io/ocrlab/internal/domain"
	"github.com/ocrlab-io/ocrlab/internal/repository"
)

// ProcessCmd returns the process command, which enqueues a file for
// processing by ID. Useful for reprocessing a file from the shell without
// going through the HTTP API.
func ProcessCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "process <file-id>",
		Short: "Enqueue a file for processing",
		Long:  "Enqueue an existing file for processing by its numeric ID",
		Args:  cobra.ExactArgs(1),
		RunE:  runProcess,
	}
}

func runProcess(cmd *cobra.Command, args []string) error {
	fileID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid file id %q", args[0])
	}

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	fileRepo := repository.NewFileRepository(pool)
	queueRepo := repository.NewQueueRepository(pool)

	file, err := fileRepo.GetByID(ctx, fileID)
	if err != nil {
		return fmt.Errorf("failed to load file %d: %w", fileID, err)
	}

	msg := domain.ProcessMessage{
		FileID:   file.ID,
		UserID:   file.UserID,
		BlobPath: file.BlobPath,
	}
	if err := queueRepo.Enqueue(ctx, msg); err != nil {
		return fmt.Errorf("failed to enqueue file %d: %w", fileID, err)
	}

	log.Printf("file %d (%s) enqueued for processing", file.ID, file.Name)
	return nil
}
