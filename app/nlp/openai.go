package nlp

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// NewOpenAIClient returns a client for any OpenAI-compatible endpoint, such
// as a local Ollama server exposing /v1.
func NewOpenAIClient(baseURL, apiKey string) *openai.Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(config)
}

// ChatCompleter is the subset of the OpenAI client used by the backends.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

var _ ChatCompleter = (*openai.Client)(nil)

// Complete sends a system and user message pair and returns the first choice.
func Complete(ctx context.Context, client ChatCompleter, model, system, user string, maxTokens int) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0.2,
	}
	if maxTokens > 0 {
		req.MaxTokens = maxTokens
	}

	resp, err := client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("chat completion returned empty content")
	}

	return content, nil
}

var _ TranslationBackend = (*OpenAITranslator)(nil)

type OpenAITranslator struct {
	client ChatCompleter
	model  string
	prompt string
}

// NewOpenAITranslationFactory yields one chat-backed translator per language pair.
func NewOpenAITranslationFactory(client ChatCompleter, model string) BackendFactory {
	return func(_ context.Context, source, target string) (TranslationBackend, error) {
		sourceName, err := languageName(source)
		if err != nil {
			return nil, err
		}
		targetName, err := languageName(target)
		if err != nil {
			return nil, err
		}

		return &OpenAITranslator{
			client: client,
			model:  model,
			prompt: fmt.Sprintf(
				"You are a professional translator. Translate the user's text from %s to %s. "+
					"Reply with the translation only, without notes or quotation marks.",
				sourceName, targetName),
		}, nil
	}
}

func (t *OpenAITranslator) Translate(ctx context.Context, text string) (string, error) {
	return Complete(ctx, t.client, t.model, t.prompt, text, 0)
}

var _ SummaryBackend = (*OpenAISummarizer)(nil)

type OpenAISummarizer struct {
	client ChatCompleter
	model  string
}

func NewOpenAISummarizer(client ChatCompleter, model string) *OpenAISummarizer {
	return &OpenAISummarizer{
		client: client,
		model:  model,
	}
}

func (s *OpenAISummarizer) Summarize(ctx context.Context, text string, maxLength, minLength int) (string, error) {
	system := fmt.Sprintf(
		"You summarize news text. Write a neutral summary between %d and %d words using complete sentences. "+
			"Reply with the summary only.",
		minLength, maxLength)

	return Complete(ctx, s.client, s.model, system, text, maxLength*2)
}

func languageName(code string) (string, error) {
	tag, err := language.Parse(code)
	if err != nil {
		return "", fmt.Errorf("unsupported language %q: %w", code, err)
	}
	return display.English.Tags().Name(tag), nil
}
