package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ocrlab-io/ocrlab/internal/api"
	"github.com/ocrlab-io/ocrlab/internal/api/middleware"
	"github.com/ocrlab-io/ocrlab/internal/domain"
)

type FolderService interface {
	Create(ctx context.Context, f *domain.Folder) error
	GetByID(ctx context.Context, id int64, userID string) (*domain.Folder, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Folder, error)
	Rename(ctx context.Context, id int64, userID, name string) error
	Delete(ctx context.Context, id int64, userID string) error
}

type FolderHandler struct {
	svc FolderService
}

func NewFolderHandler(svc FolderService) *FolderHandler {
	return &FolderHandler{svc: svc}
}

type FolderRequest struct {
	Name string `json:"name"`
}

type FolderResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func folderToResponse(f *domain.Folder) *FolderResponse {
	return &FolderResponse{
		ID:        f.ID,
		Name:      f.Name,
		CreatedAt: f.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: f.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func (h *FolderHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req FolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		api.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	now := time.Now().UTC()
	folder := &domain.Folder{
		UserID:    userID,
		Name:      req.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.svc.Create(r.Context(), folder); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, folderToResponse(folder))
}

func (h *FolderHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	folders, err := h.svc.ListByUser(r.Context(), userID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*FolderResponse, 0, len(folders))
	for _, f := range folders {
		responses = append(responses, folderToResponse(f))
	}
	api.Success(w, http.StatusOK, responses)
}

func (h *FolderHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := pathID(r)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	folder, err := h.svc.GetByID(r.Context(), id, userID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, folderToResponse(folder))
}

func (h *FolderHandler) Rename(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := pathID(r)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req FolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		api.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	if err := h.svc.Rename(r.Context(), id, userID, req.Name); err != nil {
		api.HandleError(w, err)
		return
	}

	folder, err := h.svc.GetByID(r.Context(), id, userID)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, folderToResponse(folder))
}

func (h *FolderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := pathID(r)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.svc.Delete(r.Context(), id, userID); err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusNoContent, nil)
}

// pathID parses the {id} URL parameter.
func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
