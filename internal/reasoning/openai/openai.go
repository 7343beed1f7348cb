package openai

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"

	"github.com/vbonduro/menumate/internal/reasoning"
)

// Reasoner calls the OpenAI Responses API with an optional image input.
type Reasoner struct {
	client     openai.Client
	model      string
	configured bool
}

// NewReasoner builds a Reasoner. Retries are disabled: a failed call is a
// stage failure, not something to repeat.
func NewReasoner(apiKey, model string, timeout time.Duration, opts ...option.RequestOption) *Reasoner {
	base := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(timeout),
	}
	return &Reasoner{
		client:     openai.NewClient(append(base, opts...)...),
		model:      model,
		configured: apiKey != "",
	}
}

func (r *Reasoner) Complete(ctx context.Context, req reasoning.Request) (string, error) {
	if !r.configured {
		return "", reasoning.ErrNotConfigured
	}

	params := responses.ResponseNewParams{
		Model: openai.ChatModel(r.model),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: responses.ResponseInputParam{
				responses.ResponseInputItemParamOfMessage(buildContent(req), responses.EasyInputMessageRoleUser),
			},
		},
	}
	if req.System != "" {
		params.Instructions = openai.String(req.System)
	}
	if req.MaxTokens > 0 {
		params.MaxOutputTokens = openai.Int(int64(req.MaxTokens))
	}

	resp, err := r.client.Responses.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to call openai: %w", err)
	}
	return resp.OutputText(), nil
}

func buildContent(req reasoning.Request) responses.ResponseInputMessageContentListParam {
	text := &responses.ResponseInputTextParam{Text: req.Prompt}
	if req.ImageURL == "" {
		return responses.ResponseInputMessageContentListParam{{OfInputText: text}}
	}
	return responses.ResponseInputMessageContentListParam{
		{OfInputText: text},
		{
			OfInputImage: &responses.ResponseInputImageParam{
				Detail:   responses.ResponseInputImageDetailHigh,
				ImageURL: openai.String(req.ImageURL),
			},
		},
	}
}
