package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ocrlab-io/ocrlab/internal/domain"
)

// MockJobProcessor is a mock implementation of JobProcessor
type MockJobProcessor struct {
	mock.Mock
}

func (m *MockJobProcessor) ProcessJobs(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockQueueRepository is a mock implementation of QueueRepository
type MockQueueRepository struct {
	mock.Mock
}

func (m *MockQueueRepository) Dequeue(ctx context.Context, limit int) ([]domain.ProcessMessage, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ProcessMessage), args.Error(1)
}

// MockPipeline is a mock implementation of Pipeline
type MockPipeline struct {
	mock.Mock
}

func (m *MockPipeline) Process(ctx context.Context, msg domain.ProcessMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// TestWorker_StartStop tests the worker start and stop functionality
func TestWorker_StartStop(t *testing.T) {
	mockProcessor := new(MockJobProcessor)
	mockProcessor.On("ProcessJobs", mock.Anything).Return(nil)

	worker := NewWorker("test", mockProcessor, 100*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start worker in goroutine
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(ctx)
	}()

	// Let it run for a bit
	time.Sleep(250 * time.Millisecond)

	// Stop worker
	worker.Stop()
	wg.Wait()

	// Verify ProcessJobs was called at least once
	mockProcessor.AssertCalled(t, "ProcessJobs", mock.Anything)
}

// TestWorker_ContextCancellation tests worker stops on context cancellation
func TestWorker_ContextCancellation(t *testing.T) {
	mockProcessor := new(MockJobProcessor)
	mockProcessor.On("ProcessJobs", mock.Anything).Return(nil)

	worker := NewWorker("test", mockProcessor, 100*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())

	// Start worker in goroutine
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(ctx)
	}()

	// Let it run for a bit
	time.Sleep(150 * time.Millisecond)

	// Cancel context
	cancel()
	wg.Wait()

	// Verify ProcessJobs was called
	mockProcessor.AssertCalled(t, "ProcessJobs", mock.Anything)
}

// TestWorker_ProcessorErrorKeepsPolling tests the loop survives processor errors
func TestWorker_ProcessorErrorKeepsPolling(t *testing.T) {
	mockProcessor := new(MockJobProcessor)
	mockProcessor.On("ProcessJobs", mock.Anything).Return(errors.New("transient failure"))

	worker := NewWorker("test", mockProcessor, 50*time.Millisecond)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(context.Background())
	}()

	time.Sleep(200 * time.Millisecond)
	worker.Stop()
	wg.Wait()

	assert.GreaterOrEqual(t, len(mockProcessor.Calls), 2)
}

// TestProcessingWorker_ProcessJobs_Empty tests when the queue is empty
func TestProcessingWorker_ProcessJobs_Empty(t *testing.T) {
	mockQueue := new(MockQueueRepository)
	mockPipeline := new(MockPipeline)

	mockQueue.On("Dequeue", mock.Anything, 5).Return([]domain.ProcessMessage{}, nil)

	worker := NewProcessingWorker(mockQueue, mockPipeline, 5)
	err := worker.ProcessJobs(context.Background())

	assert.NoError(t, err)
	mockQueue.AssertExpectations(t)
	mockPipeline.AssertNotCalled(t, "Process", mock.Anything, mock.Anything)
}

// TestProcessingWorker_ProcessJobs_Success tests a full claimed batch
func TestProcessingWorker_ProcessJobs_Success(t *testing.T) {
	mockQueue := new(MockQueueRepository)
	mockPipeline := new(MockPipeline)

	messages := []domain.ProcessMessage{
		{FileID: 1, UserID: "user1", BlobPath: "user1/a/one.pdf"},
		{FileID: 2, UserID: "user2", BlobPath: "user2/b/two.pdf"},
	}

	mockQueue.On("Dequeue", mock.Anything, 5).Return(messages, nil)
	mockPipeline.On("Process", mock.Anything, messages[0]).Return(nil)
	mockPipeline.On("Process", mock.Anything, messages[1]).Return(nil)

	worker := NewProcessingWorker(mockQueue, mockPipeline, 5)
	err := worker.ProcessJobs(context.Background())

	assert.NoError(t, err)
	mockQueue.AssertExpectations(t)
	mockPipeline.AssertExpectations(t)
}

// TestProcessingWorker_ProcessJobs_PipelineFailureContinues tests that one
// failed file does not stop the rest of the batch
func TestProcessingWorker_ProcessJobs_PipelineFailureContinues(t *testing.T) {
	mockQueue := new(MockQueueRepository)
	mockPipeline := new(MockPipeline)

	messages := []domain.ProcessMessage{
		{FileID: 1, UserID: "user1"},
		{FileID: 2, UserID: "user1"},
	}

	mockQueue.On("Dequeue", mock.Anything, 2).Return(messages, nil)
	mockPipeline.On("Process", mock.Anything, messages[0]).Return(errors.New("analysis failed"))
	mockPipeline.On("Process", mock.Anything, messages[1]).Return(nil)

	worker := NewProcessingWorker(mockQueue, mockPipeline, 2)
	err := worker.ProcessJobs(context.Background())

	assert.NoError(t, err)
	mockPipeline.AssertExpectations(t)
}

// TestProcessingWorker_ProcessJobs_DequeueError tests queue error handling
func TestProcessingWorker_ProcessJobs_DequeueError(t *testing.T) {
	mockQueue := new(MockQueueRepository)
	mockPipeline := new(MockPipeline)

	mockQueue.On("Dequeue", mock.Anything, mock.Anything).Return(nil, errors.New("database error"))

	worker := NewProcessingWorker(mockQueue, mockPipeline, 5)
	err := worker.ProcessJobs(context.Background())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch queued files")
	mockQueue.AssertExpectations(t)
}

// TestNewProcessingWorker_BatchSizeFloor tests the batch size floor of one
func TestNewProcessingWorker_BatchSizeFloor(t *testing.T) {
	mockQueue := new(MockQueueRepository)
	mockQueue.On("Dequeue", mock.Anything, 1).Return([]domain.ProcessMessage{}, nil)

	worker := NewProcessingWorker(mockQueue, new(MockPipeline), 0)
	err := worker.ProcessJobs(context.Background())

	assert.NoError(t, err)
	mockQueue.AssertExpectations(t)
}
