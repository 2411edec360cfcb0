// Package upstream notifies the external claims backend when a
// verification result is ready. It's a thin collaborator, not part of the
// core pipeline (spec.md §1).
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Noah-Everett/phiacta-verify/internal/model"
)

// Client notifies an upstream system about a completed verification.
type Client interface {
	NotifyResult(ctx context.Context, result model.VerificationResult) error
}

// HTTPClient posts the result JSON to a configured upstream URL with a
// bearer token, mirroring the teacher's outbound-webhook pattern.
type HTTPClient struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewHTTPClient returns a Client that posts to baseURL/v1/results.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *HTTPClient) NotifyResult(ctx context.Context, result model.VerificationResult) error {
	body, err := json.Marshal(result)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/results", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("upstream: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// NoOp discards every result. Used when no upstream URL is configured.
type NoOp struct{}

func (NoOp) NotifyResult(context.Context, model.VerificationResult) error { return nil }
