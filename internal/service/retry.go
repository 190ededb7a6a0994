package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ocrlab-io/ocrlab/internal/domain"
)

// RetryRepository is the subset of file persistence the retry scheduler needs.
type RetryRepository interface {
	// GetFailedFiles returns errored files with fewer than maxAttempts
	// attempts, created after cutoff. Older files are abandoned.
	GetFailedFiles(ctx context.Context, maxAttempts int, cutoff time.Time) ([]*domain.File, error)
}

// QueueWriter enqueues processing messages.
type QueueWriter interface {
	Enqueue(ctx context.Context, msg domain.ProcessMessage) error
}

// Requeuer atomically flips an errored file back to queued and enqueues its
// processing message. Both writes land together or not at all.
type Requeuer interface {
	Requeue(ctx context.Context, id int64, message string, msg domain.ProcessMessage) error
}

// RetryConfig controls which failed files are eligible for another attempt.
type RetryConfig struct {
	MaxAttempts int
	MaxAge      time.Duration
}

// DefaultRetryConfig returns the production retry policy.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		MaxAge:      24 * time.Hour,
	}
}

// RetryScheduler periodically sweeps errored files back into the processing
// queue. It implements the jobs.JobProcessor interface.
type RetryScheduler struct {
	files   RetryRepository
	requeue Requeuer
	cfg     RetryConfig
	now     func() time.Time
}

// NewRetryScheduler creates a new RetryScheduler instance.
func NewRetryScheduler(files RetryRepository, requeue Requeuer, cfg RetryConfig) *RetryScheduler {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultRetryConfig().MaxAttempts
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = DefaultRetryConfig().MaxAge
	}
	return &RetryScheduler{files: files, requeue: requeue, cfg: cfg, now: time.Now}
}

// ProcessJobs requeues every currently eligible errored file.
func (s *RetryScheduler) ProcessJobs(ctx context.Context) error {
	cutoff := s.now().Add(-s.cfg.MaxAge)

	failed, err := s.files.GetFailedFiles(ctx, s.cfg.MaxAttempts, cutoff)
	if err != nil {
		return fmt.Errorf("failed to fetch retryable files: %w", err)
	}

	if len(failed) == 0 {
		return nil
	}

	log.Printf("Retrying %d failed files", len(failed))

	for _, file := range failed {
		if err := s.retryFile(ctx, file); err != nil {
			log.Printf("Error requeueing file %d: %v", file.ID, err)
		}
	}

	return nil
}

func (s *RetryScheduler) retryFile(ctx context.Context, file *domain.File) error {
	attempt := file.Attempts + 1
	message := fmt.Sprintf("retry %d: %s", attempt, file.ErrorMessage)

	msg := domain.ProcessMessage{
		FileID:   file.ID,
		UserID:   file.UserID,
		BlobPath: file.BlobPath,
		Retry:    true,
		Attempt:  attempt,
	}
	if err := s.requeue.Requeue(ctx, file.ID, message, msg); err != nil {
		return fmt.Errorf("failed to requeue file: %w", err)
	}

	log.Printf("File %d requeued for retry (attempt %d/%d)", file.ID, attempt, s.cfg.MaxAttempts)
	return nil
}
