package docintel

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{
		Endpoint:    server.URL,
		APIKey:      "test-key",
		PollDelay:   10 * time.Millisecond,
		PollTimeout: 2 * time.Second,
	})
	require.NoError(t, err)
	return client, server
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(Config{APIKey: "key"})
	assert.ErrorIs(t, err, ErrNoEndpoint)

	_, err = NewClient(Config{Endpoint: "https://example.com"})
	assert.ErrorIs(t, err, ErrNoAPIKey)

	client, err := NewClient(Config{Endpoint: "https://example.com", APIKey: "key"})
	require.NoError(t, err)
	assert.Equal(t, DefaultModelID, client.modelID)
}

func TestAnalyzeDocument_SubmitAndPoll(t *testing.T) {
	var polls int32
	mux := http.NewServeMux()

	var serverURL string
	mux.HandleFunc("POST /documentintelligence/documentModels/prebuilt-layout:analyze", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("Ocp-Apim-Subscription-Key"))
		w.Header().Set("Operation-Location", serverURL+"/operations/op-1")
		w.WriteHeader(http.StatusAccepted)
	})
	mux.HandleFunc("GET /operations/op-1", func(w http.ResponseWriter, r *http.Request) {
		op := map[string]interface{}{"status": "running"}
		if atomic.AddInt32(&polls, 1) >= 2 {
			op = map[string]interface{}{
				"status": "succeeded",
				"analyzeResult": map[string]interface{}{
					"content":    "recognized text",
					"paragraphs": []map[string]interface{}{{"content": "recognized text"}},
				},
			}
		}
		json.NewEncoder(w).Encode(op)
	})

	client, server := newTestClient(t, mux)
	serverURL = server.URL

	result, err := client.AnalyzeDocument(context.Background(), []byte("document bytes"))

	require.NoError(t, err)
	assert.Equal(t, "recognized text", result.Content)
	require.Len(t, result.Paragraphs, 1)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&polls), int32(2))
}

func TestAnalyzeDocument_OperationFailed(t *testing.T) {
	mux := http.NewServeMux()

	var serverURL string
	mux.HandleFunc("POST /documentintelligence/documentModels/prebuilt-layout:analyze", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Operation-Location", serverURL+"/operations/op-1")
		w.WriteHeader(http.StatusAccepted)
	})
	mux.HandleFunc("GET /operations/op-1", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "failed",
			"error":  map[string]string{"code": "InvalidContent", "message": "unreadable document"},
		})
	})

	client, server := newTestClient(t, mux)
	serverURL = server.URL

	_, err := client.AnalyzeDocument(context.Background(), []byte("junk"))

	require.ErrorIs(t, err, ErrAnalysisFailed)
	assert.Contains(t, err.Error(), "InvalidContent")
}

func TestAnalyzeDocument_SubmitRejected(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	}))

	_, err := client.AnalyzeDocument(context.Background(), []byte("junk"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestAnalyzeDocument_MissingOperationLocation(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))

	_, err := client.AnalyzeDocument(context.Background(), []byte("doc"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Operation-Location")
}

func TestAnalyzeDocument_ContextCancelled(t *testing.T) {
	mux := http.NewServeMux()

	var serverURL string
	mux.HandleFunc("POST /documentintelligence/documentModels/prebuilt-layout:analyze", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Operation-Location", serverURL+"/operations/op-1")
		w.WriteHeader(http.StatusAccepted)
	})
	mux.HandleFunc("GET /operations/op-1", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"status": "running"})
	})

	client, server := newTestClient(t, mux)
	serverURL = server.URL

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := client.AnalyzeDocument(ctx, []byte("doc"))

	require.ErrorIs(t, err, context.DeadlineExceeded)
}
