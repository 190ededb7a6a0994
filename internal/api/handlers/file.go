package handlers

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/ocrlab-io/ocrlab/internal/api"
	"github.com/ocrlab-io/ocrlab/internal/api/middleware"
	"github.com/ocrlab-io/ocrlab/internal/domain"
	"github.com/ocrlab-io/ocrlab/internal/service"
)

type FileAPI interface {
	Upload(ctx context.Context, input service.UploadInput) (*domain.File, error)
	Get(ctx context.Context, userID string, id int64) (*domain.File, error)
	List(ctx context.Context, userID string, folderID int64) ([]*domain.File, error)
	Delete(ctx context.Context, userID string, id int64) error
	Retry(ctx context.Context, userID string, id int64) (*domain.File, error)
}

type FileHandler struct {
	svc           FileAPI
	maxUploadSize int64
}

func NewFileHandler(svc FileAPI, maxUploadSize int64) *FileHandler {
	if maxUploadSize <= 0 {
		maxUploadSize = 50 << 20
	}
	return &FileHandler{svc: svc, maxUploadSize: maxUploadSize}
}

type FileResponse struct {
	ID            int64                `json:"id"`
	FolderID      int64                `json:"folder_id,omitempty"`
	Name          string               `json:"name"`
	MimeType      string               `json:"mime_type"`
	SizeBytes     int64                `json:"size_bytes"`
	Status        domain.FileStatus    `json:"status"`
	Attempts      int                  `json:"attempts"`
	LastAttemptAt string               `json:"last_attempt_at,omitempty"`
	ProcessedAt   string               `json:"processed_at,omitempty"`
	ErrorMessage  string               `json:"error_message,omitempty"`
	Metadata      *domain.FileMetadata `json:"metadata,omitempty"`
	CreatedAt     string               `json:"created_at"`
}

func fileToResponse(f *domain.File) *FileResponse {
	resp := &FileResponse{
		ID:           f.ID,
		FolderID:     f.FolderID,
		Name:         f.Name,
		MimeType:     f.MimeType,
		SizeBytes:    f.SizeBytes,
		Status:       f.Status,
		Attempts:     f.Attempts,
		ErrorMessage: f.ErrorMessage,
		Metadata:     f.Metadata,
		CreatedAt:    f.CreatedAt.UTC().Format(time.RFC3339),
	}
	if f.LastAttemptAt != nil {
		resp.LastAttemptAt = f.LastAttemptAt.UTC().Format(time.RFC3339)
	}
	if f.ProcessedAt != nil {
		resp.ProcessedAt = f.ProcessedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

// Upload accepts a multipart form with a "file" part and an optional
// "folder_id" field. The file is queued for processing immediately.
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	part, header, err := r.FormFile("file")
	if err != nil {
		api.Error(w, http.StatusBadRequest, "file part is required")
		return
	}
	defer part.Close()

	content, err := io.ReadAll(part)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "reading upload failed")
		return
	}
	if len(content) == 0 {
		api.Error(w, http.StatusBadRequest, "file is empty")
		return
	}

	var folderID int64
	if raw := r.FormValue("folder_id"); raw != "" {
		folderID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			api.Error(w, http.StatusBadRequest, "invalid folder_id")
			return
		}
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	file, err := h.svc.Upload(r.Context(), service.UploadInput{
		UserID:   userID,
		FolderID: folderID,
		Name:     header.Filename,
		MimeType: mimeType,
		Content:  content,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, fileToResponse(file))
}

func (h *FileHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var folderID int64
	if raw := r.URL.Query().Get("folder_id"); raw != "" {
		var err error
		folderID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			api.Error(w, http.StatusBadRequest, "invalid folder_id")
			return
		}
	}

	files, err := h.svc.List(r.Context(), userID, folderID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*FileResponse, 0, len(files))
	for _, f := range files {
		responses = append(responses, fileToResponse(f))
	}
	api.Success(w, http.StatusOK, responses)
}

func (h *FileHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	file, err := h.svc.Get(r.Context(), userID, id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, fileToResponse(file))
}

func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.svc.Delete(r.Context(), userID, id); err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusNoContent, nil)
}

// Retry requeues an errored file for another processing attempt.
func (h *FileHandler) Retry(w http.ResponseWriter, r *http.Request) {
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

	file, err := h.svc.Retry(r.Context(), userID, id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusAccepted, fileToResponse(file))
}
