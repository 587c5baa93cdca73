package emotion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	analysis "github.com/zhouzirui/feelbetter/backend/internal/analysis/emotion"
)

const defaultHFBaseURL = "https://router.huggingface.co/hf-inference/models"

// Candidate is one label/confidence pair from a text-classification model.
type Candidate struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// StatusError captures non-2xx responses from the inference endpoint.
type StatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("huggingface: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

// HuggingFaceClient calls the Hugging Face Inference text-classification task.
type HuggingFaceClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

type Option func(*HuggingFaceClient)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *HuggingFaceClient) {
		c.httpClient = httpClient
	}
}

// NewHuggingFaceClient creates a client for the given model. An empty baseURL uses the public router.
func NewHuggingFaceClient(apiKey, model, baseURL string, opts ...Option) *HuggingFaceClient {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultHFBaseURL
	}
	c := &HuggingFaceClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      strings.Trim(model, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type classificationRequest struct {
	Inputs string `json:"inputs"`
}

// TextClassification returns every label/confidence pair the model produced for text.
func (c *HuggingFaceClient) TextClassification(ctx context.Context, text string) ([]Candidate, error) {
	payload, err := json.Marshal(classificationRequest{Inputs: text})
	if err != nil {
		return nil, fmt.Errorf("huggingface: marshal request: %w", err)
	}

	url := c.baseURL + "/" + c.model
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("huggingface: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("huggingface: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("huggingface: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: url, Body: strings.TrimSpace(string(body))}
	}

	return decodeCandidates(body)
}

// decodeCandidates accepts both the batched [[...]] and flat [...] response shapes.
func decodeCandidates(body []byte) ([]Candidate, error) {
	var batched [][]Candidate
	if err := json.Unmarshal(body, &batched); err == nil {
		if len(batched) == 0 {
			return nil, nil
		}
		return batched[0], nil
	}

	var flat []Candidate
	if err := json.Unmarshal(body, &flat); err != nil {
		return nil, fmt.Errorf("huggingface: decode response: %w", err)
	}
	return flat, nil
}

// topCandidate returns the highest-scoring candidate; the first one wins ties.
func topCandidate(candidates []Candidate) (Candidate, bool) {
	if len(candidates) == 0 {
		return Candidate{}, false
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Score > best.Score {
			best = c
		}
	}
	return best, true
}

type huggingFaceBackend struct {
	client *HuggingFaceClient
}

func (b huggingFaceBackend) classify(ctx context.Context, text string) (analysis.Label, error) {
	candidates, err := b.client.TextClassification(ctx, text)
	if err != nil {
		return analysis.Neutral, err
	}

	top, ok := topCandidate(candidates)
	if !ok {
		return analysis.Neutral, errors.New("no candidates returned")
	}

	label, ok := analysis.ParseLabel(top.Label)
	if !ok {
		return analysis.Neutral, fmt.Errorf("unexpected label %q", top.Label)
	}
	return label, nil
}
