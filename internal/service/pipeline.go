package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/ocrlab-io/ocrlab/internal/docintel"
	"github.com/ocrlab-io/ocrlab/internal/domain"
	"github.com/ocrlab-io/ocrlab/internal/telemetry"
)

// FileRepository is the subset of file persistence the pipeline needs.
type FileRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.File, error)
	MarkProcessing(ctx context.Context, id int64) error
	MarkComplete(ctx context.Context, id int64, metadata *domain.FileMetadata) error
	MarkError(ctx context.Context, id int64, message string) error
}

// UsageRepository records per-user usage counters.
type UsageRepository interface {
	AddPagesProcessed(ctx context.Context, userID string, pages int) error
}

// BlobStore retrieves uploaded file content.
type BlobStore interface {
	DownloadObject(ctx context.Context, key string) ([]byte, error)
}

// DocumentAnalyzer runs layout analysis on raw document bytes.
type DocumentAnalyzer interface {
	AnalyzeDocument(ctx context.Context, content []byte) (*docintel.AnalyzeResult, error)
}

// FileProcessor runs the full OCR, chunking, embedding and indexing pipeline
// for a single file.
type FileProcessor struct {
	files      FileRepository
	usage      UsageRepository
	blobs      BlobStore
	analyzer   DocumentAnalyzer
	normalizer *ContentNormalizer
	chunker    *ChunkingEngine
	embedder   *EmbeddingStage
	publisher  *IndexPublisher
}

// NewFileProcessor creates a FileProcessor.
func NewFileProcessor(
	files FileRepository,
	usage UsageRepository,
	blobs BlobStore,
	analyzer DocumentAnalyzer,
	chunker *ChunkingEngine,
	embedder *EmbeddingStage,
	publisher *IndexPublisher,
) *FileProcessor {
	return &FileProcessor{
		files:      files,
		usage:      usage,
		blobs:      blobs,
		analyzer:   analyzer,
		normalizer: NewContentNormalizer(),
		chunker:    chunker,
		embedder:   embedder,
		publisher:  publisher,
	}
}

// Process drives one file through the pipeline. The file is marked processing
// at the start (incrementing its attempt counter) and ends up either complete
// with metadata or in the error state with a message.
func (p *FileProcessor) Process(ctx context.Context, msg domain.ProcessMessage) error {
	ctx, span := telemetry.StartSpan(ctx, "pipeline.process", telemetry.SpanAttributes{
		UserID:    msg.UserID,
		FileID:    msg.FileID,
		Operation: "process_file",
	})
	defer span.End()

	file, err := p.files.GetByID(ctx, msg.FileID)
	if err != nil {
		return fmt.Errorf("loading file %d: %w", msg.FileID, err)
	}

	log.Printf("processing file %d (%s) for user %s, attempt %d", file.ID, file.Name, file.UserID, file.Attempts+1)

	if err := p.files.MarkProcessing(ctx, file.ID); err != nil {
		return fmt.Errorf("marking file %d processing: %w", file.ID, err)
	}

	content, err := p.blobs.DownloadObject(ctx, file.BlobPath)
	if err != nil {
		return p.fail(ctx, file, fmt.Errorf("downloading %s: %w", file.BlobPath, err))
	}

	result, err := p.analyzer.AnalyzeDocument(ctx, content)
	if err != nil {
		return p.fail(ctx, file, domain.NewTransientProviderError("document analysis", err))
	}

	normalized := p.normalizer.Normalize(result)

	documentID := fmt.Sprintf("file_%d", file.ID)
	title := strings.TrimSuffix(file.Name, filepath.Ext(file.Name))

	chunks := p.chunker.Chunk(normalized, documentID, title)
	if len(chunks) == 0 {
		return p.fail(ctx, file, domain.ErrNoChunksProduced)
	}

	embedded, skipped, err := p.embedder.EmbedChunks(ctx, chunks)
	if err != nil {
		return p.fail(ctx, file, fmt.Errorf("embedding chunks: %w", err))
	}

	report, err := p.publisher.Publish(ctx, file.UserID, embedded)
	if err != nil {
		return p.fail(ctx, file, fmt.Errorf("publishing chunks: %w", err))
	}
	if report.Indexed == 0 {
		return p.fail(ctx, file, domain.ErrNothingIndexed)
	}

	metadata := &domain.FileMetadata{
		PageCount:     normalized.PageCount,
		IndexedChunks: report.Indexed,
		FailedChunks:  report.Failed,
		SkippedChunks: skipped,
	}
	if err := p.files.MarkComplete(ctx, file.ID, metadata); err != nil {
		return fmt.Errorf("marking file %d complete: %w", file.ID, err)
	}

	if err := p.usage.AddPagesProcessed(ctx, file.UserID, normalized.PageCount); err != nil {
		log.Printf("recording usage for user %s failed: %v", file.UserID, err)
	}

	log.Printf("file %d complete: %d pages, %d chunks indexed, %d failed, %d skipped",
		file.ID, normalized.PageCount, report.Indexed, report.Failed, skipped)
	return nil
}

// fail moves the file to the error state and returns the original failure.
func (p *FileProcessor) fail(ctx context.Context, file *domain.File, cause error) error {
	log.Printf("processing file %d (user %s) failed: %v", file.ID, file.UserID, cause)
	telemetry.CaptureError(ctx, cause)

	message := cause.Error()
	var domainErr *domain.DomainError
	if errors.As(cause, &domainErr) {
		message = domainErr.Message
	}

	if err := p.files.MarkError(ctx, file.ID, message); err != nil {
		log.Printf("marking file %d errored failed: %v", file.ID, err)
	}

	return cause
}
