package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultClaudeModel is used when no model is configured.
const DefaultClaudeModel = "claude-sonnet-4-5"

// Claude generates text with the Anthropic Messages API.
type Claude struct {
	client anthropic.Client
	opts   Options
}

// NewClaude creates a Claude generator. baseURL may be empty.
func NewClaude(apiKey, baseURL string, opts Options) (*Claude, error) {
	if apiKey == "" {
		return nil, errors.New("claude: API key is required")
	}
	if opts.Model == "" {
		opts.Model = DefaultClaudeModel
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 2048
	}
	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(baseURL))
	}
	return &Claude{client: anthropic.NewClient(reqOpts...), opts: opts}, nil
}

func (c *Claude) Name() string { return "claude" }

// Generate sends prompt as a single user message and joins the text blocks
// of the reply.
func (c *Claude) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := c.opts.withTimeout(ctx)
	defer cancel()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.opts.Model),
		MaxTokens: int64(c.opts.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if c.opts.Temperature > 0 {
		params.Temperature = anthropic.Float(float64(c.opts.Temperature))
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("claude API call failed: %w", err)
	}

	var response strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			response.WriteString(block.Text)
		}
	}
	if response.Len() == 0 {
		return "", errors.New("no response generated from claude")
	}
	return response.String(), nil
}
