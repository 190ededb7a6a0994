package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/ocrlab-io/ocrlab/internal/api"
	"github.com/ocrlab-io/ocrlab/internal/api/middleware"
	"github.com/ocrlab-io/ocrlab/internal/domain"
)

type UsageAPI interface {
	GetByUser(ctx context.Context, userID string) ([]*domain.UsageStat, error)
}

type UsageHandler struct {
	svc UsageAPI
}

func NewUsageHandler(svc UsageAPI) *UsageHandler {
	return &UsageHandler{svc: svc}
}

type UsageResponse struct {
	Date           string `json:"date"`
	PagesProcessed int    `json:"pages_processed"`
	QueriesMade    int    `json:"queries_made"`
}

func (h *UsageHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	stats, err := h.svc.GetByUser(r.Context(), userID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*UsageResponse, 0, len(stats))
	for _, s := range stats {
		responses = append(responses, &UsageResponse{
			Date:           s.Date.Format(time.DateOnly),
			PagesProcessed: s.PagesProcessed,
			QueriesMade:    s.QueriesMade,
		})
	}
	api.Success(w, http.StatusOK, responses)
}
