// Package openai adapts OpenAI's chat completions API to model.Client.
package openai

import (
	"context"
	"errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/stategraph/stategraph-go/graph/model"
)

const defaultModel = "gpt-4o"

// Client implements model.Client for OpenAI chat models. Safe for
// concurrent use.
type Client struct {
	client    *openai.Client
	modelName string
}

// New returns an OpenAI-backed client. An empty modelName uses a
// sensible default.
func New(apiKey, modelName string) *Client {
	if modelName == "" {
		modelName = defaultModel
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Client{client: &client, modelName: modelName}
}

func (c *Client) Complete(ctx context.Context, req model.Request) (model.Response, error) {
	if err := ctx.Err(); err != nil {
		return model.Response{}, err
	}

	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.modelName),
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(model.BuildPrompt(req)),
					},
				},
			},
		},
	})
	if err != nil {
		return model.Response{}, model.WrapError("openai", err)
	}
	if len(completion.Choices) == 0 {
		return model.Response{}, model.WrapError("openai", errors.New("empty completion"))
	}

	return model.Response{
		Text:   completion.Choices[0].Message.Content,
		Tokens: int(completion.Usage.TotalTokens),
	}, nil
}
