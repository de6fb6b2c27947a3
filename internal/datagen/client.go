package datagen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/cenkalti/backoff/v4"

	"github.com/kamilakurskaa/TrustFlow/internal/config"
	"github.com/kamilakurskaa/TrustFlow/internal/generator"
)

// Client calls the data generation service
type Client interface {
	// GenerateFeatures requests a synthetic feature set for a user
	GenerateFeatures(ctx context.Context, userID uint64, hasCreditHistory bool) (*generator.FeatureSet, error)

	// Healthy probes the service health endpoint
	Healthy(ctx context.Context) bool
}

type httpClient struct {
	baseURL    string
	maxRetries uint64
	client     *http.Client
}

// NewClient creates an HTTP client for the data generation service
func NewClient(cfg config.DatagenClientConfig) Client {
	return &httpClient{
		baseURL:    cfg.BaseURL,
		maxRetries: uint64(cfg.MaxRetries),
		client:     &http.Client{Timeout: cfg.Timeout},
	}
}

// GenerateFeatures requests a synthetic feature set, retrying transient
// failures with exponential backoff. Client errors are not retried.
func (c *httpClient) GenerateFeatures(ctx context.Context, userID uint64, hasCreditHistory bool) (*generator.FeatureSet, error) {
	body, err := json.Marshal(GenerateRequest{
		UserID:           userID,
		HasCreditHistory: hasCreditHistory,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal generate request: %w", err)
	}

	var result GenerateResponse
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
				return backoff.Permanent(fmt.Errorf("failed to decode generate response: %w", err))
			}
			return nil
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			return backoff.Permanent(fmt.Errorf("data generation rejected request: status %d: %s", resp.StatusCode, detail))
		default:
			return fmt.Errorf("data generation unavailable: status %d", resp.StatusCode)
		}
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, fmt.Errorf("failed to generate features for user %d: %w", userID, err)
	}

	return &result.Features, nil
}

// Healthy probes the service health endpoint
func (c *httpClient) Healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
