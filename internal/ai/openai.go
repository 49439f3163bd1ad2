package ai

import (
	"context"
	"fmt"
	"strings"

	oai "github.com/openai/openai-go"
	oaioption "github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"
)

// completionTokenPrefixes are OpenAI model families that reject max_tokens and
// require max_completion_tokens instead.
var completionTokenPrefixes = []string{"gpt-5", "o1", "o3", "o4"}

// usesMaxCompletionTokens checks the vendor model id prefix only.
func usesMaxCompletionTokens(apiModel string) bool {
	lower := strings.ToLower(apiModel)
	for _, prefix := range completionTokenPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// openAIBackend calls the OpenAI chat completions API.
type openAIBackend struct {
	clients   *Registry
	baseURL   string
	maxTokens int
}

func (b *openAIBackend) Provider() Provider { return ProviderOpenAI }

func (b *openAIBackend) newClient(_ context.Context, apiKey string) (any, error) {
	opts := []oaioption.RequestOption{
		oaioption.WithAPIKey(apiKey),
		oaioption.WithMaxRetries(0),
	}
	if b.baseURL != "" {
		opts = append(opts, oaioption.WithBaseURL(b.baseURL))
	}
	client := oai.NewClient(opts...)
	return &client, nil
}

// Complete implements Backend.
func (b *openAIBackend) Complete(ctx context.Context, model ModelConfig, messages []Message, systemPrompt string) (Completion, error) {
	client, err := acquireAs[*oai.Client](ctx, b.clients, ProviderOpenAI, b.newClient)
	if err != nil {
		return Completion{}, err
	}

	resp, err := client.Chat.Completions.New(ctx, buildOpenAIParams(model.APIModel, messages, systemPrompt, b.maxTokens))
	if err != nil {
		return Completion{}, fmt.Errorf("openai: chat completion: %w", err)
	}
	return openAICompletion(resp), nil
}

func buildOpenAIParams(apiModel string, messages []Message, systemPrompt string, maxTokens int) oai.ChatCompletionNewParams {
	params := oai.ChatCompletionNewParams{
		Model:    shared.ChatModel(apiModel),
		Messages: openAIMessages(messages, systemPrompt),
	}
	if maxTokens > 0 {
		if usesMaxCompletionTokens(apiModel) {
			params.MaxCompletionTokens = param.NewOpt(int64(maxTokens))
		} else {
			params.MaxTokens = param.NewOpt(int64(maxTokens))
		}
	}
	return params
}

func openAIMessages(messages []Message, systemPrompt string) []oai.ChatCompletionMessageParamUnion {
	out := make([]oai.ChatCompletionMessageParamUnion, 0, len(messages)+1)
	if systemPrompt != "" {
		out = append(out, oai.SystemMessage(systemPrompt))
	}
	for _, m := range messages {
		if m.Role == RoleAssistant {
			asst := oai.ChatCompletionAssistantMessageParam{}
			asst.Content.OfString = oai.String(m.Content)
			out = append(out, oai.ChatCompletionMessageParamUnion{OfAssistant: &asst})
			continue
		}
		out = append(out, oai.UserMessage(m.Content))
	}
	return out
}

// openAICompletion maps a chat completion, tolerating empty choices and usage.
func openAICompletion(resp *oai.ChatCompletion) Completion {
	if resp == nil {
		return Completion{}
	}
	var c Completion
	if len(resp.Choices) > 0 {
		c.Text = resp.Choices[0].Message.Content
	}
	c.InputTokens = tokenCount(resp.Usage.PromptTokens)
	c.OutputTokens = tokenCount(resp.Usage.CompletionTokens)
	return c
}
