// Package docintel wraps the document layout-analysis REST API: submit a
// document for analysis, then poll the returned operation until it succeeds.
package docintel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultModelID is the prebuilt layout model used for analysis.
	DefaultModelID = "prebuilt-layout"

	apiVersion         = "2024-02-29-preview"
	defaultPollDelay   = 2 * time.Second
	defaultPollTimeout = 5 * time.Minute
)

var (
	// ErrNoEndpoint is returned when the analysis endpoint is not configured.
	ErrNoEndpoint = errors.New("document analysis endpoint not configured")
	// ErrNoAPIKey is returned when the analysis API key is not configured.
	ErrNoAPIKey = errors.New("document analysis API key not configured")
	// ErrAnalysisFailed is returned when the provider reports a failed operation.
	ErrAnalysisFailed = errors.New("document analysis operation failed")
)

// Config holds configuration for the analysis client.
type Config struct {
	Endpoint    string
	APIKey      string
	ModelID     string
	PollDelay   time.Duration
	PollTimeout time.Duration
	HTTPClient  *http.Client
}

// Client calls the layout-analysis service. Safe for concurrent use.
type Client struct {
	endpoint    string
	apiKey      string
	modelID     string
	pollDelay   time.Duration
	pollTimeout time.Duration
	http        *http.Client
}

// NewClient creates a Client with the given configuration.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, ErrNoEndpoint
	}
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	if cfg.ModelID == "" {
		cfg.ModelID = DefaultModelID
	}
	if cfg.PollDelay <= 0 {
		cfg.PollDelay = defaultPollDelay
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = defaultPollTimeout
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{
		endpoint:    cfg.Endpoint,
		apiKey:      cfg.APIKey,
		modelID:     cfg.ModelID,
		pollDelay:   cfg.PollDelay,
		pollTimeout: cfg.PollTimeout,
		http:        cfg.HTTPClient,
	}, nil
}

type operationResponse struct {
	Status        string         `json:"status"`
	AnalyzeResult *AnalyzeResult `json:"analyzeResult"`
	Error         *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// AnalyzeDocument submits the document bytes and polls until the analysis
// completes, returning the structured layout result.
func (c *Client) AnalyzeDocument(ctx context.Context, document []byte) (*AnalyzeResult, error) {
	operationURL, err := c.submit(ctx, document)
	if err != nil {
		return nil, err
	}
	return c.poll(ctx, operationURL)
}

func (c *Client) submit(ctx context.Context, document []byte) (string, error) {
	url := fmt.Sprintf("%s/documentintelligence/documentModels/%s:analyze?api-version=%s",
		c.endpoint, c.modelID, apiVersion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(document))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to submit document for analysis: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("analysis submit returned status %d: %s", resp.StatusCode, string(body))
	}

	operationURL := resp.Header.Get("Operation-Location")
	if operationURL == "" {
		return "", errors.New("analysis submit response missing Operation-Location header")
	}
	return operationURL, nil
}

func (c *Client) poll(ctx context.Context, operationURL string) (*AnalyzeResult, error) {
	deadline := time.Now().Add(c.pollTimeout)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollDelay):
		}

		op, err := c.getOperation(ctx, operationURL)
		if err != nil {
			return nil, err
		}

		switch op.Status {
		case "succeeded":
			if op.AnalyzeResult == nil {
				return nil, errors.New("analysis succeeded but returned no result")
			}
			return op.AnalyzeResult, nil
		case "failed":
			if op.Error != nil {
				return nil, fmt.Errorf("%w: %s: %s", ErrAnalysisFailed, op.Error.Code, op.Error.Message)
			}
			return nil, ErrAnalysisFailed
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("analysis did not complete within %v", c.pollTimeout)
		}
	}
}

func (c *Client) getOperation(ctx context.Context, operationURL string) (*operationResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, operationURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to poll analysis operation: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("analysis poll returned status %d: %s", resp.StatusCode, string(body))
	}

	var op operationResponse
	if err := json.NewDecoder(resp.Body).Decode(&op); err != nil {
		return nil, fmt.Errorf("failed to decode analysis operation: %w", err)
	}
	return &op, nil
}
