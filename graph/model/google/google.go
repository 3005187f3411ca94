// Package google adapts Google's Gemini API to model.Client.
package google

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/stategraph/stategraph-go/graph/model"
)

const defaultModel = "gemini-1.5-pro"

// Client implements model.Client for Gemini. Unlike the other
// adapters it holds a live connection; call Close when done.
type Client struct {
	client    *genai.Client
	modelName string
}

// New dials the Gemini API. An empty modelName uses a sensible
// default.
func New(ctx context.Context, apiKey, modelName string) (*Client, error) {
	if modelName == "" {
		modelName = defaultModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Client{client: client, modelName: modelName}, nil
}

func (c *Client) Complete(ctx context.Context, req model.Request) (model.Response, error) {
	if err := ctx.Err(); err != nil {
		return model.Response{}, err
	}

	gm := c.client.GenerativeModel(c.modelName)
	resp, err := gm.GenerateContent(ctx, genai.Text(model.BuildPrompt(req)))
	if err != nil {
		return model.Response{}, model.WrapError("google", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return model.Response{}, model.WrapError("google", errors.New("empty completion"))
	}

	var text string
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text += string(t)
		}
	}

	tokens := 0
	if resp.UsageMetadata != nil {
		tokens = int(resp.UsageMetadata.TotalTokenCount)
	}
	return model.Response{Text: text, Tokens: tokens}, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.client.Close()
}
