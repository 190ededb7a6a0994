package jobs

import (
	"context"
	"fmt"
	"log"

	"github.com/ocrlab-io/ocrlab/internal/domain"
)

// QueueRepository defines the interface for claiming queued process messages
type QueueRepository interface {
	// Dequeue claims and removes up to limit messages from the queue
	Dequeue(ctx context.Context, limit int) ([]domain.ProcessMessage, error)
}

// Pipeline defines the interface for running a file through processing
type Pipeline interface {
	Process(ctx context.Context, msg domain.ProcessMessage) error
}

// ProcessingWorker drains the processing queue and runs each file through
// the pipeline
type ProcessingWorker struct {
	queue     QueueRepository
	pipeline  Pipeline
	batchSize int
}

// NewProcessingWorker creates a new ProcessingWorker instance
func NewProcessingWorker(queue QueueRepository, pipeline Pipeline, batchSize int) *ProcessingWorker {
	if batchSize <= 0 {
		batchSize = 1
	}
	return &ProcessingWorker{
		queue:     queue,
		pipeline:  pipeline,
		batchSize: batchSize,
	}
}

// ProcessJobs implements the JobProcessor interface
func (w *ProcessingWorker) ProcessJobs(ctx context.Context) error {
	messages, err := w.queue.Dequeue(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("failed to fetch queued files: %w", err)
	}

	if len(messages) == 0 {
		return nil
	}

	log.Printf("Processing %d queued files", len(messages))

	for _, msg := range messages {
		// The pipeline owns the file's final state; a failure here is
		// already recorded on the file row.
		if err := w.pipeline.Process(ctx, msg); err != nil {
			log.Printf("Error processing file %d: %v", msg.FileID, err)
		}
	}

	return nil
}
