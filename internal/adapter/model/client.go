package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/valenlzmj2001/wildfire-risk-pipeline/internal/domain"
)

// Client calls the scoring service that serves the trained classifier.
type Client struct {
	baseURL  string
	metadata Metadata
	http     *http.Client
}

func NewClient(baseURL string, metadata Metadata, timeout time.Duration) *Client {
	return &Client{
		baseURL:  baseURL,
		metadata: metadata,
		http:     &http.Client{Timeout: timeout},
	}
}

type predictRequest struct {
	Features []float64 `json:"features"`
}

type predictResponse struct {
	Probability float64 `json:"probability"`
}

// Predict scores one sensor reading. Temporal features are derived
// from the current clock; the metadata decides the vector order.
func (c *Client) Predict(ctx context.Context, reading domain.SensorReading) (domain.Prediction, error) {
	vec, err := c.metadata.Vector(reading.FeatureValues())
	if err != nil {
		return domain.Prediction{}, err
	}

	body, err := json.Marshal(predictRequest{Features: vec})
	if err != nil {
		return domain.Prediction{}, fmt.Errorf("marshal predict request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return domain.Prediction{}, fmt.Errorf("create predict request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.Prediction{}, fmt.Errorf("call scoring service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.Prediction{}, fmt.Errorf("scoring service returned %d: %s", resp.StatusCode, snippet)
	}

	var out predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return domain.Prediction{}, fmt.Errorf("decode predict response: %w", err)
	}
	if out.Probability < 0 || out.Probability > 1 {
		return domain.Prediction{}, fmt.Errorf("scoring service returned probability %v outside [0,1]", out.Probability)
	}

	return domain.NewPrediction(out.Probability), nil
}

// Health probes the scoring service.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("create health request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("scoring service health check: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("scoring service health returned %d", resp.StatusCode)
	}
	return nil
}
