package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/ocrlab-io/ocrlab/internal/api"
	"github.com/ocrlab-io/ocrlab/internal/api/middleware"
	"github.com/ocrlab-io/ocrlab/internal/search"
)

type QueryAPI interface {
	Query(ctx context.Context, userID, query string, limit int) ([]*search.QueryResult, error)
}

type QueryHandler struct {
	svc QueryAPI
}

func NewQueryHandler(svc QueryAPI) *QueryHandler {
	return &QueryHandler{svc: svc}
}

type QueryRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

type QueryResponse struct {
	Results []*search.QueryResult `json:"results"`
}

func (h *QueryHandler) Query(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		api.Error(w, http.StatusBadRequest, "query is required")
		return
	}

	results, err := h.svc.Query(r.Context(), userID, req.Query, req.Limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, QueryResponse{Results: results})
}
