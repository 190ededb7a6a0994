package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocrlab-io/ocrlab/internal/api/handlers"
	"github.com/ocrlab-io/ocrlab/internal/domain"
	"github.com/ocrlab-io/ocrlab/internal/search"
	"github.com/ocrlab-io/ocrlab/internal/service"
)

type stubFileService struct{}

func (stubFileService) Upload(ctx context.Context, input service.UploadInput) (*domain.File, error) {
	return &domain.File{ID: 1, UserID: input.UserID, Name: input.Name, Status: domain.FileStatusQueued}, nil
}

func (stubFileService) Get(ctx context.Context, userID string, id int64) (*domain.File, error) {
	return nil, domain.ErrFileNotFound
}

func (stubFileService) List(ctx context.Context, userID string, folderID int64) ([]*domain.File, error) {
	return []*domain.File{}, nil
}

func (stubFileService) Delete(ctx context.Context, userID string, id int64) error {
	return nil
}

func (stubFileService) Retry(ctx context.Context, userID string, id int64) (*domain.File, error) {
	return nil, domain.ErrFileNotFound
}

type stubFolderService struct{}

func (stubFolderService) Create(ctx context.Context, f *domain.Folder) error { return nil }

func (stubFolderService) GetByID(ctx context.Context, id int64, userID string) (*domain.Folder, error) {
	return &domain.Folder{ID: id, UserID: userID, Name: "docs"}, nil
}

func (stubFolderService) ListByUser(ctx context.Context, userID string) ([]*domain.Folder, error) {
	return []*domain.Folder{{ID: 1, UserID: userID, Name: "docs"}}, nil
}

func (stubFolderService) Rename(ctx context.Context, id int64, userID, name string) error {
	return nil
}

func (stubFolderService) Delete(ctx context.Context, id int64, userID string) error { return nil }

type stubQueryService struct{}

func (stubQueryService) Query(ctx context.Context, userID, query string, limit int) ([]*search.QueryResult, error) {
	return []*search.QueryResult{}, nil
}

type stubUsageService struct{}

func (stubUsageService) GetByUser(ctx context.Context, userID string) ([]*domain.UsageStat, error) {
	return []*domain.UsageStat{{UserID: userID, Date: time.Now(), PagesProcessed: 7}}, nil
}

func newTestRouter() http.Handler {
	return NewRouter(RouterConfig{
		FolderHandler: handlers.NewFolderHandler(stubFolderService{}),
		FileHandler:   handlers.NewFileHandler(stubFileService{}, 1<<20),
		QueryHandler:  handlers.NewQueryHandler(stubQueryService{}),
		UsageHandler:  handlers.NewUsageHandler(stubUsageService{}),
		MaxBodyBytes:  1 << 20,
	})
}

func TestRouter_Health(t *testing.T) {
	router := newTestRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Data["status"])
}

func TestRouter_HealthSkipsAuth(t *testing.T) {
	router := newTestRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_DataRoutesRequireAuth(t *testing.T) {
	router := newTestRouter()

	for _, path := range []string{"/folders", "/files", "/usage"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "GET %s without x-user-id", path)
	}
}

func TestRouter_AuthenticatedRequest(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/usage", nil)
	req.Header.Set("x-user-id", "user1")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "pages_processed")
}

func TestRouter_FolderRoutes(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/folders/1", nil)
	req.Header.Set("x-user-id", "user1")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "docs")
}
