package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.0-flash"

// Gemini generates text with the Gemini API.
type Gemini struct {
	client *genai.Client
	opts   Options
}

// NewGemini creates a Gemini generator. baseURL may be empty.
func NewGemini(ctx context.Context, apiKey, baseURL string, opts Options) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: API key is required")
	}
	if opts.Model == "" {
		opts.Model = DefaultGeminiModel
	}
	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}
	return &Gemini{client: client, opts: opts}, nil
}

func (g *Gemini) Name() string { return "gemini" }

// Generate sends prompt as a single user turn and concatenates the text
// parts of the first candidate that has any.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := g.opts.withTimeout(ctx)
	defer cancel()

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(g.opts.Temperature),
	}
	if g.opts.MaxTokens > 0 {
		config.MaxOutputTokens = int32(g.opts.MaxTokens)
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.opts.Model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}, config)
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}

	var response strings.Builder
	if resp != nil {
		for _, candidate := range resp.Candidates {
			if candidate == nil || candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part != nil && part.Text != "" {
					response.WriteString(part.Text)
				}
			}
			if response.Len() > 0 {
				break
			}
		}
	}
	if response.Len() == 0 {
		return "", errors.New("no response generated from gemini")
	}
	return response.String(), nil
}
