package openai

import (
	"context"
	"fmt"
	"math"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/candidhr/talentsearch/internal/domain"
	"github.com/candidhr/talentsearch/internal/metrics"
)

// Generator is a natural-language generation provider backed by chat
// completions on the OpenAI-compatible API.
type Generator struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
	provider    string
	logger      *zap.Logger
}

// GeneratorConfig holds the generation provider settings. A nil Temperature
// means the 0.7 default; an explicit 0 requests deterministic output.
type GeneratorConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature *float32
	Provider    string
	Logger      *zap.Logger
}

// NewGenerator creates an OpenAI-compatible chat completion provider.
func NewGenerator(cfg *GeneratorConfig) *Generator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 600
	}
	temperature := float32(0.7)
	if cfg.Temperature != nil {
		temperature = *cfg.Temperature
	}
	if temperature == 0 {
		// go-openai omits a zero temperature from the request body; the
		// smallest positive float32 survives serialization and the API
		// treats it as zero.
		temperature = math.SmallestNonzeroFloat32
	}

	return &Generator{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		maxTokens:   maxTokens,
		temperature: temperature,
		provider:    cfg.Provider,
		logger:      cfg.Logger,
	}
}

// Generate runs one chat completion with a system and a user prompt. Provider
// errors and empty responses wrap domain.ErrSynthesisFailure.
func (g *Generator) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       g.model,
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	}

	start := time.Now()

	resp, err := g.client.CreateChatCompletion(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.SynthesisRequestsTotal.WithLabelValues(g.provider, g.model, "error").Inc()
		return "", parseAPIError("chat", err, domain.ErrSynthesisFailure)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		metrics.SynthesisRequestsTotal.WithLabelValues(g.provider, g.model, "error").Inc()
		return "", fmt.Errorf("empty chat response: %w", domain.ErrSynthesisFailure)
	}

	metrics.SynthesisRequestsTotal.WithLabelValues(g.provider, g.model, "success").Inc()
	metrics.SynthesisRequestDuration.WithLabelValues(g.provider, g.model).Observe(duration.Seconds())

	g.logger.Debug("generated commentary",
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("duration", duration),
	)

	return resp.Choices[0].Message.Content, nil
}
