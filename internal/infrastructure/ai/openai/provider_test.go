package openai

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/vmoraru/fiscaldoc/internal/core/domain"
	"github.com/vmoraru/fiscaldoc/internal/infrastructure/resilience"
)

type apiFake struct {
	responses []string
	err       error
	requests  []openai.ChatCompletionRequest
}

func (f *apiFake) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	content := ""
	if len(f.responses) > 0 {
		content = f.responses[0]
		f.responses = f.responses[1:]
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: content}},
		},
	}, nil
}

func testProvider(api completionAPI) *Provider {
	return &Provider{
		api:     api,
		model:   openai.GPT4o,
		timeout: time.Second,
		limiter: rate.NewLimiter(rate.Inf, 1),
		executor: resilience.NewExecutor(resilience.Config{
			RetryMaxAttempts: 1,
			BreakerEnabled:   false,
		}, nil),
	}
}

func TestClassifyDocumentParsesAnswer(t *testing.T) {
	api := &apiFake{responses: []string{
		"```json\n{\"type\": \"Factura_Fiscala\", \"confidence\": 1.4, \"data\": {\"number\": \"FF-1\"}}\n```",
	}}
	p := testProvider(api)

	answer, err := p.ClassifyDocument(context.Background(), "some text", domain.LanguageRO)
	if err != nil {
		t.Fatalf("ClassifyDocument() error = %v", err)
	}
	if answer.Type != "factura_fiscala" {
		t.Fatalf("Type = %q, want normalized factura_fiscala", answer.Type)
	}
	if answer.Confidence != 1 {
		t.Fatalf("Confidence = %v, want clamped 1", answer.Confidence)
	}
	if answer.Data["number"] != "FF-1" {
		t.Fatalf("Data = %+v", answer.Data)
	}

	req := api.requests[0]
	if req.ResponseFormat == nil || req.ResponseFormat.Type != openai.ChatCompletionResponseFormatTypeJSONObject {
		t.Fatalf("classification must request JSON mode")
	}
}

func TestClassifyDocumentRejectsMalformedAnswer(t *testing.T) {
	cases := []string{
		"not json at all",
		`{"confidence": 0.9}`,
		`{"type": "  "}`,
	}
	for _, response := range cases {
		p := testProvider(&apiFake{responses: []string{response}})
		if _, err := p.ClassifyDocument(context.Background(), "text", domain.LanguageRU); err == nil {
			t.Errorf("response %q: expected error", response)
		}
	}
}

func TestExtractImageTextBuildsDataURL(t *testing.T) {
	api := &apiFake{responses: []string{"Bon fiscal\nTotal: 80.00"}}
	p := testProvider(api)

	text, err := p.ExtractImageText(context.Background(), []byte{0x89, 0x50}, "image/png", domain.LanguageRO)
	if err != nil {
		t.Fatalf("ExtractImageText() error = %v", err)
	}
	if text != "Bon fiscal\nTotal: 80.00" {
		t.Fatalf("text = %q", text)
	}

	parts := api.requests[0].Messages[0].MultiContent
	if len(parts) != 2 {
		t.Fatalf("expected text + image parts, got %d", len(parts))
	}
	if parts[1].ImageURL == nil || !strings.HasPrefix(parts[1].ImageURL.URL, "data:image/png;base64,") {
		t.Fatalf("image part = %+v", parts[1])
	}
}

func TestExtractImageTextRejectsEmptyPayload(t *testing.T) {
	p := testProvider(&apiFake{})
	if _, err := p.ExtractImageText(context.Background(), nil, "image/png", domain.LanguageRO); err == nil {
		t.Fatalf("expected error")
	}
}

func TestCompleteWrapsRetryableErrors(t *testing.T) {
	apiErr := &openai.APIError{HTTPStatusCode: 503, Message: "overloaded"}
	p := testProvider(&apiFake{err: apiErr})

	_, err := p.EnhanceText(context.Background(), "text", domain.LanguageRU)
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary error, got %v", err)
	}
}

func TestCompleteDoesNotWrapCallerErrors(t *testing.T) {
	apiErr := &openai.APIError{HTTPStatusCode: 400, Message: "bad request"}
	p := testProvider(&apiFake{err: apiErr})

	_, err := p.EnhanceText(context.Background(), "text", domain.LanguageRU)
	if err == nil {
		t.Fatalf("expected error")
	}
	if domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("4xx must not be marked temporary: %v", err)
	}
}

func TestClassifyOpenAIError(t *testing.T) {
	retryable := classifyOpenAIError(&openai.APIError{HTTPStatusCode: 429})
	if !retryable.Retryable || !retryable.RecordFailure {
		t.Fatalf("429 should be retryable and recorded: %+v", retryable)
	}

	caller := classifyOpenAIError(&openai.APIError{HTTPStatusCode: 401})
	if caller.Retryable || caller.RecordFailure {
		t.Fatalf("401 should be terminal and unrecorded: %+v", caller)
	}

	canceled := classifyOpenAIError(context.Canceled)
	if canceled.Retryable || canceled.RecordFailure {
		t.Fatalf("cancellation should be terminal and unrecorded: %+v", canceled)
	}

	unknown := classifyOpenAIError(errors.New("boom"))
	if unknown.Retryable || !unknown.RecordFailure {
		t.Fatalf("unknown errors are recorded but not retried: %+v", unknown)
	}
}
