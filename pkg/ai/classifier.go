package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/johnquangdev/meeting-filter/pkg/config"
)

// Prediction is the raw verdict of the importance model: label 0 is
// important, 1 is noise.
type Prediction struct {
	Label      int     `json:"label"`
	Confidence float64 `json:"confidence"`
}

// ClassifierClient talks to the BERT inference server that hosts the
// importance model.
type ClassifierClient struct {
	baseURL string
	client  *http.Client
}

// NewClassifierClient creates a client for the inference server.
// If cfg is nil, falls back to environment variables.
func NewClassifierClient(cfg *config.ClassifierConfig) *ClassifierClient {
	c := &ClassifierClient{
		baseURL: os.Getenv("CLASSIFIER_URL"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
	if cfg != nil {
		if cfg.URL != "" {
			c.baseURL = cfg.URL
		}
		if cfg.Timeout > 0 {
			c.client.Timeout = cfg.Timeout
		}
	}
	return c
}

type predictRequest struct {
	Text string `json:"text"`
}

type predictBatchRequest struct {
	Texts []string `json:"texts"`
}

type predictBatchResponse struct {
	Predictions []Prediction `json:"predictions"`
}

type healthResponse struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
}

// Health verifies the server is up and has its model loaded.
func (c *ClassifierClient) Health(ctx context.Context) error {
	if c.baseURL == "" {
		return fmt.Errorf("classifier url is not configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return statusError("classifier", resp)
	}

	var hr healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&hr); err != nil {
		return fmt.Errorf("decode classifier health: %w", err)
	}
	if !hr.ModelLoaded {
		return fmt.Errorf("classifier model not loaded (status %q)", hr.Status)
	}
	return nil
}

// Predict classifies one input text.
func (c *ClassifierClient) Predict(ctx context.Context, text string) (Prediction, error) {
	var p Prediction
	if err := c.post(ctx, "/predict", predictRequest{Text: text}, &p); err != nil {
		return Prediction{}, err
	}
	return p, nil
}

// PredictBatch classifies texts in one forward pass. The result is
// index-aligned with texts.
func (c *ClassifierClient) PredictBatch(ctx context.Context, texts []string) ([]Prediction, error) {
	var out predictBatchResponse
	if err := c.post(ctx, "/predict/batch", predictBatchRequest{Texts: texts}, &out); err != nil {
		return nil, err
	}
	if len(out.Predictions) != len(texts) {
		return nil, fmt.Errorf("classifier returned %d predictions for %d texts", len(out.Predictions), len(texts))
	}
	return out.Predictions, nil
}

func (c *ClassifierClient) post(ctx context.Context, path string, body, out interface{}) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return statusError("classifier", resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode classifier response: %w", err)
	}
	return nil
}
