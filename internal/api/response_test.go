package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocrlab-io/ocrlab/internal/domain"
)

func TestDomainErrorToHTTP(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", domain.NewDomainError(domain.ErrCodeValidation, "bad input"), http.StatusBadRequest},
		{"invalid operation", domain.NewDomainError(domain.ErrCodeInvalidOperation, "not retryable"), http.StatusBadRequest},
		{"not found", domain.ErrFileNotFound, http.StatusNotFound},
		{"unauthorized", domain.NewDomainError(domain.ErrCodeUnauthorized, "no"), http.StatusUnauthorized},
		{"transient provider", domain.NewTransientProviderError("embedding", errors.New("timeout")), http.StatusBadGateway},
		{"configuration", domain.NewConfigurationError("missing key"), http.StatusInternalServerError},
		{"content", domain.ErrNoChunksProduced, http.StatusUnprocessableEntity},
		{"partial index", domain.ErrNothingIndexed, http.StatusUnprocessableEntity},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.status, DomainErrorToHTTP(tc.err))
		})
	}
}

func TestSuccess(t *testing.T) {
	rec := httptest.NewRecorder()

	Success(rec, http.StatusCreated, map[string]string{"name": "docs"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body SuccessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, map[string]interface{}{"name": "docs"}, body.Data)
}

func TestHandleError(t *testing.T) {
	rec := httptest.NewRecorder()

	HandleError(rec, domain.ErrFolderNotFound)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Error, "folder not found")
}
