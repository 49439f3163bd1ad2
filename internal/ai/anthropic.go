package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	antoption "github.com/anthropics/anthropic-sdk-go/option"
)

// anthropicBackend calls the Anthropic Messages API. The system prompt goes in
// the dedicated system field rather than the message list.
type anthropicBackend struct {
	clients   *Registry
	baseURL   string
	maxTokens int
}

func (b *anthropicBackend) Provider() Provider { return ProviderAnthropic }

func (b *anthropicBackend) newClient(_ context.Context, apiKey string) (any, error) {
	opts := []antoption.RequestOption{
		antoption.WithAPIKey(apiKey),
		antoption.WithMaxRetries(0),
	}
	if b.baseURL != "" {
		opts = append(opts, antoption.WithBaseURL(b.baseURL))
	}
	client := anthropic.NewClient(opts...)
	return &client, nil
}

// Complete implements Backend.
func (b *anthropicBackend) Complete(ctx context.Context, model ModelConfig, messages []Message, systemPrompt string) (Completion, error) {
	client, err := acquireAs[*anthropic.Client](ctx, b.clients, ProviderAnthropic, b.newClient)
	if err != nil {
		return Completion{}, err
	}

	msg, err := client.Messages.New(ctx, buildAnthropicParams(model.APIModel, messages, systemPrompt, b.maxTokens))
	if err != nil {
		return Completion{}, fmt.Errorf("anthropic: messages: %w", err)
	}
	return anthropicCompletion(msg), nil
}

func buildAnthropicParams(apiModel string, messages []Message, systemPrompt string, maxTokens int) anthropic.MessageNewParams {
	if maxTokens <= 0 {
		// max_tokens is mandatory for this API.
		maxTokens = DefaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(apiModel),
		MaxTokens: int64(maxTokens),
		Messages:  make([]anthropic.MessageParam, 0, len(messages)),
	}
	if systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: systemPrompt}}
	}
	for _, m := range messages {
		block := anthropic.NewTextBlock(m.Content)
		if m.Role == RoleAssistant {
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(block))
			continue
		}
		params.Messages = append(params.Messages, anthropic.NewUserMessage(block))
	}
	return params
}

// anthropicCompletion joins all text blocks; other block types are ignored.
func anthropicCompletion(msg *anthropic.Message) Completion {
	if msg == nil {
		return Completion{}
	}
	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return Completion{
		Text:         text.String(),
		InputTokens:  tokenCount(msg.Usage.InputTokens),
		OutputTokens: tokenCount(msg.Usage.OutputTokens),
	}
}
