package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Gemini's chat session uses "model" for the assistant role.
const geminiModelRole = "model"

// geminiBackend drives a Gemini chat session: every message except the last
// becomes session history and the last one is sent as the new turn.
type geminiBackend struct {
	clients   *Registry
	baseURL   string
	maxTokens int
}

func (b *geminiBackend) Provider() Provider { return ProviderGoogle }

func (b *geminiBackend) newClient(ctx context.Context, apiKey string) (any, error) {
	opts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if b.baseURL != "" {
		opts = append(opts, option.WithEndpoint(b.baseURL))
	}
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return client, nil
}

// Complete implements Backend.
func (b *geminiBackend) Complete(ctx context.Context, model ModelConfig, messages []Message, systemPrompt string) (Completion, error) {
	if len(messages) == 0 {
		return Completion{}, ErrNoMessages
	}

	client, err := acquireAs[*genai.Client](ctx, b.clients, ProviderGoogle, b.newClient)
	if err != nil {
		return Completion{}, err
	}

	// GenerativeModel is a local handle; building one per call keeps the
	// shared client free of per-request settings.
	cs, last := b.startChat(client.GenerativeModel(model.APIModel), messages, systemPrompt)
	return sendGeminiTurn(ctx, cs, last)
}

// geminiChat is the part of *genai.ChatSession a call needs.
type geminiChat interface {
	SendMessage(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// startChat applies the system instruction and token cap to gm and opens a
// session holding every message but the last, which it returns.
func (b *geminiBackend) startChat(gm *genai.GenerativeModel, messages []Message, systemPrompt string) (*genai.ChatSession, string) {
	if systemPrompt != "" {
		gm.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}
	}
	if b.maxTokens > 0 {
		gm.SetMaxOutputTokens(int32(b.maxTokens))
	}

	history, last := geminiSession(messages)
	cs := gm.StartChat()
	cs.History = history
	return cs, last
}

func sendGeminiTurn(ctx context.Context, cs geminiChat, last string) (Completion, error) {
	resp, err := cs.SendMessage(ctx, genai.Text(last))
	if err != nil {
		return Completion{}, fmt.Errorf("gemini: send message: %w", err)
	}
	return geminiCompletion(resp), nil
}

// geminiSession splits a conversation into session history and the new turn.
func geminiSession(messages []Message) ([]*genai.Content, string) {
	if len(messages) == 0 {
		return nil, ""
	}
	prior := messages[:len(messages)-1]
	history := make([]*genai.Content, 0, len(prior))
	for _, m := range prior {
		role := string(RoleUser)
		if m.Role == RoleAssistant {
			role = geminiModelRole
		}
		history = append(history, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(m.Content)},
		})
	}
	return history, messages[len(messages)-1].Content
}

// geminiCompletion concatenates the text parts of the first candidate.
func geminiCompletion(resp *genai.GenerateContentResponse) Completion {
	if resp == nil {
		return Completion{}
	}
	var c Completion
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		var text strings.Builder
		for _, part := range resp.Candidates[0].Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				text.WriteString(string(txt))
			}
		}
		c.Text = text.String()
	}
	if resp.UsageMetadata != nil {
		c.InputTokens = tokenCount(resp.UsageMetadata.PromptTokenCount)
		c.OutputTokens = tokenCount(resp.UsageMetadata.CandidatesTokenCount)
	}
	return c
}
