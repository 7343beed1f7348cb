package openai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/vbonduro/menumate/internal/imagegen"
)

// Generator creates images with the OpenAI Images API.
type Generator struct {
	client     openai.Client
	model      string
	configured bool
}

func NewGenerator(apiKey, model string, timeout time.Duration, opts ...option.RequestOption) *Generator {
	base := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(timeout),
	}
	return &Generator{
		client:     openai.NewClient(append(base, opts...)...),
		model:      model,
		configured: apiKey != "",
	}
}

func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	if !g.configured {
		return "", imagegen.ErrNotConfigured
	}

	resp, err := g.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt: prompt,
		Model:  openai.ImageModel(g.model),
		Size:   openai.ImageGenerateParamsSize1024x1024,
		N:      openai.Int(1),
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate image: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return "", errors.New("image generation returned no url")
	}
	return resp.Data[0].URL, nil
}
