// Package openai is the assist-provider adapter: classification fallback for
// low-confidence documents, vision OCR for image uploads, and optional text
// cleanup. Every call goes through a shared rate limiter and the resilience
// executor.
package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/vmoraru/fiscaldoc/internal/core/domain"
	"github.com/vmoraru/fiscaldoc/internal/infrastructure/resilience"
)

type completionAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type Provider struct {
	api      completionAPI
	model    string
	timeout  time.Duration
	limiter  *rate.Limiter
	executor *resilience.Executor
}

type Options struct {
	APIKey            string
	Model             string
	Timeout           time.Duration
	RequestsPerSecond float64
}

func New(opts Options, executor *resilience.Executor) *Provider {
	if opts.Model == "" {
		opts.Model = openai.GPT4o
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 2
	}
	return &Provider{
		api:      openai.NewClient(opts.APIKey),
		model:    opts.Model,
		timeout:  opts.Timeout,
		limiter:  rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1),
		executor: executor,
	}
}

func (p *Provider) ClassifyDocument(ctx context.Context, text, language string) (*domain.AssistAnswer, error) {
	raw, err := p.complete(ctx, "openai_classify", openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: classifySystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildClassifyPrompt(text, language)},
		},
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, err
	}

	var answer domain.AssistAnswer
	if err := json.Unmarshal([]byte(extractJSONObject(raw)), &answer); err != nil {
		return nil, fmt.Errorf("parse classification json: %w", err)
	}

	answer.Type = strings.ToLower(strings.TrimSpace(answer.Type))
	if answer.Type == "" {
		return nil, fmt.Errorf("classification response missing type")
	}
	if answer.Confidence < 0 {
		answer.Confidence = 0
	}
	if answer.Confidence > 1 {
		answer.Confidence = 1
	}
	return &answer, nil
}

func (p *Provider) ExtractImageText(ctx context.Context, image []byte, mimeType, language string) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("empty image payload")
	}
	if mimeType == "" {
		mimeType = "image/png"
	}
	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))

	return p.complete(ctx, "openai_vision", openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: buildVisionPrompt(language)},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURL,
							Detail: openai.ImageURLDetailAuto,
						},
					},
				},
			},
		},
		Temperature: 0,
	})
}

func (p *Provider) EnhanceText(ctx context.Context, text, language string) (string, error) {
	return p.complete(ctx, "openai_enhance", openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: enhanceSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildEnhancePrompt(text, language)},
		},
		Temperature: 0,
	})
}

func (p *Provider) complete(ctx context.Context, operation string, req openai.ChatCompletionRequest) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	var content string
	err := p.executor.Execute(ctx, operation, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, p.timeout)
		defer cancel()

		resp, err := p.api.CreateChatCompletion(callCtx, req)
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("%s: empty completion", operation)
		}
		content = strings.TrimSpace(resp.Choices[0].Message.Content)
		return nil
	}, classifyOpenAIError)
	if err != nil {
		return "", wrapTemporaryIfNeeded(operation, err)
	}
	return content, nil
}

// extractJSONObject tolerates models that wrap the JSON answer in prose or
// code fences.
func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
