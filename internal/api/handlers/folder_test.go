package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ocrlab-io/ocrlab/internal/domain"
)

type MockFolderService struct {
	mock.Mock
}

func (m *MockFolderService) Create(ctx context.Context, f *domain.Folder) error {
	args := m.Called(ctx, f)
	if args.Error(0) == nil {
		f.ID = 21
	}
	return args.Error(0)
}

func (m *MockFolderService) GetByID(ctx context.Context, id int64, userID string) (*domain.Folder, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Folder), args.Error(1)
}

func (m *MockFolderService) ListByUser(ctx context.Context, userID string) ([]*domain.Folder, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Folder), args.Error(1)
}

func (m *MockFolderService) Rename(ctx context.Context, id int64, userID, name string) error {
	args := m.Called(ctx, id, userID, name)
	return args.Error(0)
}

func (m *MockFolderService) Delete(ctx context.Context, id int64, userID string) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func TestFolderCreate(t *testing.T) {
	svc := new(MockFolderService)
	svc.On("Create", mock.Anything, mock.MatchedBy(func(f *domain.Folder) bool {
		return f.UserID == "user1" && f.Name == "invoices"
	})).Return(nil)

	handler := NewFolderHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/folders", strings.NewReader(`{"name":"invoices"}`))
	rec := httptest.NewRecorder()
	handler.Create(rec, authedRequest(req, "user1"))

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Data FolderResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(21), resp.Data.ID)
	assert.Equal(t, "invoices", resp.Data.Name)
	svc.AssertExpectations(t)
}

func TestFolderCreate_EmptyName(t *testing.T) {
	svc := new(MockFolderService)
	handler := NewFolderHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/folders", strings.NewReader(`{"name":""}`))
	rec := httptest.NewRecorder()
	handler.Create(rec, authedRequest(req, "user1"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestFolderRename(t *testing.T) {
	svc := new(MockFolderService)
	svc.On("Rename", mock.Anything, int64(21), "user1", "receipts").Return(nil)
	svc.On("GetByID", mock.Anything, int64(21), "user1").Return(&domain.Folder{
		ID:        21,
		UserID:    "user1",
		Name:      "receipts",
		UpdatedAt: time.Now().UTC(),
	}, nil)

	handler := NewFolderHandler(svc)

	req := httptest.NewRequest(http.MethodPut, "/folders/21", strings.NewReader(`{"name":"receipts"}`))
	req = withURLParam(authedRequest(req, "user1"), "id", "21")

	rec := httptest.NewRecorder()
	handler.Rename(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data FolderResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "receipts", resp.Data.Name)
	svc.AssertExpectations(t)
}

func TestFolderDelete_NotFound(t *testing.T) {
	svc := new(MockFolderService)
	svc.On("Delete", mock.Anything, int64(99), "user1").Return(domain.ErrFolderNotFound)

	handler := NewFolderHandler(svc)

	req := httptest.NewRequest(http.MethodDelete, "/folders/99", nil)
	req = withURLParam(authedRequest(req, "user1"), "id", "99")

	rec := httptest.NewRecorder()
	handler.Delete(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFolderGet_InvalidID(t *testing.T) {
	handler := NewFolderHandler(new(MockFolderService))

	req := httptest.NewRequest(http.MethodGet, "/folders/abc", nil)
	req = withURLParam(authedRequest(req, "user1"), "id", "abc")

	rec := httptest.NewRecorder()
	handler.Get(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
