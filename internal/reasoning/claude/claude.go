package claude

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/liushuangls/go-anthropic/v2"

	"github.com/vbonduro/menumate/internal/media"
	"github.com/vbonduro/menumate/internal/reasoning"
)

// Reasoner calls the Anthropic Messages API. Images are sent inline as base64,
// so remote image URLs are downloaded first.
type Reasoner struct {
	client     *anthropic.Client
	model      string
	configured bool
	media      *http.Client
}

func NewReasoner(apiKey, model string, timeout time.Duration, opts ...anthropic.ClientOption) *Reasoner {
	httpClient := &http.Client{Timeout: timeout}
	base := []anthropic.ClientOption{anthropic.WithHTTPClient(httpClient)}
	return &Reasoner{
		client:     anthropic.NewClient(apiKey, append(base, opts...)...),
		model:      model,
		configured: apiKey != "",
		media:      httpClient,
	}
}

func (r *Reasoner) Complete(ctx context.Context, req reasoning.Request) (string, error) {
	if !r.configured {
		return "", reasoning.ErrNotConfigured
	}

	content := make([]anthropic.MessageContent, 0, 2)
	if req.ImageURL != "" {
		data, mimeType, err := media.Load(ctx, r.media, req.ImageURL)
		if err != nil {
			return "", fmt.Errorf("failed to load image: %w", err)
		}
		content = append(content, anthropic.NewImageMessageContent(
			anthropic.NewMessageContentSource(
				anthropic.MessagesContentSourceTypeBase64,
				normaliseMIME(mimeType),
				base64.StdEncoding.EncodeToString(data),
			),
		))
	}
	content = append(content, anthropic.NewTextMessageContent(req.Prompt))

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	resp, err := r.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(r.model),
		System:    req.System,
		MaxTokens: maxTokens,
		Messages: []anthropic.Message{{
			Role:    anthropic.RoleUser,
			Content: content,
		}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to call claude: %w", err)
	}
	return resp.GetFirstContentText(), nil
}

// normaliseMIME maps image MIME types to the values the Anthropic API accepts.
// The API takes only jpeg, png, gif and webp; anything else is sent as jpeg.
func normaliseMIME(mimeType string) string {
	switch mimeType {
	case "image/png", "image/gif", "image/webp":
		return mimeType
	default:
		return "image/jpeg"
	}
}
