package serper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/vbonduro/menumate/internal/search"
)

const defaultBaseURL = "https://google.serper.dev"

// Client queries the Serper.dev Google search API.
type Client struct {
	apiKey  string
	client  *http.Client
	baseURL string
}

func NewClient(apiKey string, timeout time.Duration) *Client {
	return &Client{
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
		baseURL: defaultBaseURL,
	}
}

type query struct {
	Q   string `json:"q"`
	Num int    `json:"num"`
}

type webResponse struct {
	AnswerBox *struct {
		Title   string `json:"title"`
		Snippet string `json:"snippet"`
		Answer  string `json:"answer"`
		Link    string `json:"link"`
	} `json:"answerBox"`
	Organic []struct {
		Title   string `json:"title"`
		Snippet string `json:"snippet"`
		Link    string `json:"link"`
	} `json:"organic"`
}

type imagesResponse struct {
	Images []struct {
		ImageURL string `json:"imageUrl"`
		Link     string `json:"link"`
		Source   string `json:"source"`
	} `json:"images"`
}

func (c *Client) Web(ctx context.Context, q string, limit int) ([]search.Result, error) {
	var resp webResponse
	if err := c.post(ctx, "/search", query{Q: q, Num: 10}, &resp); err != nil {
		return nil, err
	}

	results := make([]search.Result, 0, limit+1)
	if ab := resp.AnswerBox; ab != nil {
		snippet := ab.Snippet
		if snippet == "" {
			snippet = ab.Answer
		}
		if snippet != "" {
			results = append(results, search.Result{Title: "Featured", Snippet: snippet, Link: ab.Link})
		}
	}
	for i, o := range resp.Organic {
		if i >= limit {
			break
		}
		results = append(results, search.Result{Title: o.Title, Snippet: o.Snippet, Link: o.Link})
	}
	return results, nil
}

func (c *Client) Images(ctx context.Context, q string, limit int) ([]search.Image, error) {
	var resp imagesResponse
	if err := c.post(ctx, "/images", query{Q: q, Num: 5}, &resp); err != nil {
		return nil, err
	}

	images := make([]search.Image, 0, limit)
	for _, img := range resp.Images {
		if len(images) >= limit {
			break
		}
		if img.ImageURL == "" {
			continue
		}
		images = append(images, search.Image{ImageURL: img.ImageURL, SourceURL: img.Link})
	}
	return images, nil
}

func (c *Client) post(ctx context.Context, path string, body query, out any) error {
	if c.apiKey == "" {
		return search.ErrNotConfigured
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call serper: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Error("failed to close serper response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("serper returned status %d: %s", resp.StatusCode, errBody)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
