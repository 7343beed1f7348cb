package ollama

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/vbonduro/menumate/internal/media"
	"github.com/vbonduro/menumate/internal/reasoning"
)

// Reasoner runs prompts against a local Ollama server with a vision model
// such as llava.
type Reasoner struct {
	host   string
	model  string
	client *http.Client
}

func NewReasoner(host, model string, timeout time.Duration) *Reasoner {
	return &Reasoner{
		host:   host,
		model:  model,
		client: &http.Client{Timeout: timeout},
	}
}

type generateRequest struct {
	Model  string   `json:"model"`
	System string   `json:"system,omitempty"`
	Prompt string   `json:"prompt"`
	Images []string `json:"images,omitempty"`
	Format string   `json:"format"`
	Stream bool     `json:"stream"`
}

func (r *Reasoner) Complete(ctx context.Context, req reasoning.Request) (string, error) {
	if r.host == "" {
		return "", reasoning.ErrNotConfigured
	}

	body := generateRequest{
		Model:  r.model,
		System: req.System,
		Prompt: req.Prompt,
		// Both prompts ask for a single JSON object.
		Format: "json",
	}
	if req.ImageURL != "" {
		data, _, err := media.Load(ctx, r.client, req.ImageURL)
		if err != nil {
			return "", fmt.Errorf("failed to load image: %w", err)
		}
		body.Images = []string{base64.StdEncoding.EncodeToString(data)}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.host+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to call ollama: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Error("failed to close ollama response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}

	var respBody struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&respBody); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	return respBody.Response, nil
}
