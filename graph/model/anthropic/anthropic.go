// Package anthropic adapts Anthropic's Claude API to model.Client.
package anthropic

import (
	"context"
	"errors"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/stategraph/stategraph-go/graph/model"
)

const defaultModel = "claude-3-5-sonnet-20241022"

// Client implements model.Client for Claude. Safe for concurrent use.
type Client struct {
	client    *anthropic.Client
	modelName string
}

// New returns a Claude-backed client. An empty modelName uses a
// sensible default. Get keys from https://console.anthropic.com/.
func New(apiKey, modelName string) *Client {
	if modelName == "" {
		modelName = defaultModel
	}
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &Client{client: &client, modelName: modelName}
}

func (c *Client) Complete(ctx context.Context, req model.Request) (model.Response, error) {
	if err := ctx.Err(); err != nil {
		return model.Response{}, err
	}

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.modelName),
		MaxTokens: 4096,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(model.BuildPrompt(req))),
		},
	})
	if err != nil {
		return model.Response{}, model.WrapError("anthropic", err)
	}

	var text string
	for _, block := range message.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return model.Response{}, model.WrapError("anthropic", errors.New("empty completion"))
	}

	return model.Response{
		Text:   text,
		Tokens: int(message.Usage.InputTokens + message.Usage.OutputTokens),
	}, nil
}
