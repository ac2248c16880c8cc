// Package rewrite turns a raw transcript into a styled story by prompting a
// text generation model on an OpenAI compatible completion endpoint (a local
// llama.cpp / ollama server by default).
package rewrite

import (
	"context"
	"fmt"
	"strings"
	"sync"

	openai "github.com/sashabaranov/go-openai"
	"github.com/spf13/viper"
)

// Marker separates the echoed prompt from the generated story in the raw
// model output.
const Marker = "Rewrite:\n"

// Sampling is tuned for creative variance: the same transcript may come back
// different across runs, on purpose.
const (
	maxNewTokens = 220
	temperature  = 0.9
	topP         = 0.95
)

type Generator struct {
	model   string
	baseURL string
	apiKey  string

	once   sync.Once
	client *openai.Client
}

func NewGenerator() *Generator {
	model := viper.GetString("AURWRITE_MODEL")
	if model == "" {
		model = "gpt2"
	}

	host := viper.GetString("AURWRITE_LLM_HOST")
	if host == "" {
		host = "http://localhost:4000/v1"
	}

	apiKey := viper.GetString("OPENAI_API_KEY")
	if apiKey == "" {
		apiKey = "sk-local"
	}

	return &Generator{model: model, baseURL: host, apiKey: apiKey}
}

func (g *Generator) api() *openai.Client {
	g.once.Do(func() {
		cfg := openai.DefaultConfig(g.apiKey)
		cfg.BaseURL = g.baseURL
		g.client = openai.NewClientWithConfig(cfg)
	})
	return g.client
}

// ComposePrompt builds the single seed prompt the generator sees.
func ComposePrompt(stylePrompt, transcript string) string {
	return fmt.Sprintf("%s\n\nOriginal:\n%s\n\n%s", stylePrompt, transcript, Marker)
}

// Rewrite generates the styled story for the transcript.
func (g *Generator) Rewrite(ctx context.Context, stylePrompt, transcript string) (string, error) {
	prompt := ComposePrompt(stylePrompt, transcript)

	resp, err := g.api().CreateCompletion(ctx, openai.CompletionRequest{
		Model:       g.model,
		Prompt:      prompt,
		MaxTokens:   maxNewTokens,
		Temperature: temperature,
		TopP:        topP,
		N:           1,
	})
	if err != nil {
		return "", fmt.Errorf("generation request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("generation returned no choices")
	}

	return ExtractStory(resp.Choices[0].Text), nil
}

// ExtractStory discards the echoed prompt: everything up to and including the
// last occurrence of the marker goes. Splitting on the last occurrence skips
// style templates that mention the marker themselves. When the model never
// reproduced the marker the whole trimmed output is returned.
func ExtractStory(raw string) string {
	if i := strings.LastIndex(raw, Marker); i >= 0 {
		raw = raw[i+len(Marker):]
	}
	return strings.TrimSpace(raw)
}
