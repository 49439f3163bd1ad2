package ai

import (
	"context"
	"fmt"

	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"github.com/mozilla-ai/any-llm-go/providers/deepseek"
)

// deepSeekBackend calls DeepSeek's OpenAI-compatible chat API through the
// any-llm-go deepseek provider.
type deepSeekBackend struct {
	clients   *Registry
	baseURL   string
	maxTokens int
}

func (b *deepSeekBackend) Provider() Provider { return ProviderDeepSeek }

func (b *deepSeekBackend) newClient(_ context.Context, apiKey string) (any, error) {
	opts := []anyllmlib.Option{anyllmlib.WithAPIKey(apiKey)}
	if b.baseURL != "" {
		opts = append(opts, anyllmlib.WithBaseURL(b.baseURL))
	}
	p, err := deepseek.New(opts...)
	if err != nil {
		return nil, err
	}
	var backend anyllmlib.Provider = p
	return backend, nil
}

// Complete implements Backend.
func (b *deepSeekBackend) Complete(ctx context.Context, model ModelConfig, messages []Message, systemPrompt string) (Completion, error) {
	client, err := acquireAs[anyllmlib.Provider](ctx, b.clients, ProviderDeepSeek, b.newClient)
	if err != nil {
		return Completion{}, err
	}

	resp, err := client.Completion(ctx, buildDeepSeekParams(model.APIModel, messages, systemPrompt, b.maxTokens))
	if err != nil {
		return Completion{}, fmt.Errorf("deepseek: completion: %w", err)
	}
	return deepSeekCompletion(resp), nil
}

// deepSeekCompletion reads the first choice's text and the usage block.
func deepSeekCompletion(resp *anyllmlib.ChatCompletion) Completion {
	if resp == nil {
		return Completion{}
	}
	var c Completion
	if len(resp.Choices) > 0 {
		c.Text = resp.Choices[0].Message.ContentString()
	}
	if resp.Usage != nil {
		c.InputTokens = tokenCount(resp.Usage.PromptTokens)
		c.OutputTokens = tokenCount(resp.Usage.CompletionTokens)
	}
	return c
}

func buildDeepSeekParams(apiModel string, messages []Message, systemPrompt string, maxTokens int) anyllmlib.CompletionParams {
	msgs := make([]anyllmlib.Message, 0, len(messages)+1)
	if systemPrompt != "" {
		msgs = append(msgs, anyllmlib.Message{Role: anyllmlib.RoleSystem, Content: systemPrompt})
	}
	for _, m := range messages {
		role := anyllmlib.RoleUser
		if m.Role == RoleAssistant {
			role = anyllmlib.RoleAssistant
		}
		msgs = append(msgs, anyllmlib.Message{Role: role, Content: m.Content})
	}

	params := anyllmlib.CompletionParams{
		Model:    apiModel,
		Messages: msgs,
	}
	if maxTokens > 0 {
		mt := maxTokens
		params.MaxTokens = &mt
	}
	return params
}
