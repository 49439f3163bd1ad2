package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"
)

func TestGeminiSession(t *testing.T) {
	conv := []Message{
		{Role: RoleUser, Content: "Iceland in winter"},
		{Role: RoleAssistant, Content: "How many days?"},
		{Role: RoleUser, Content: "5 days, aurora"},
	}
	history, last := geminiSession(conv)

	if last != "5 days, aurora" {
		t.Errorf("expected last turn as new message, got %q", last)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(history))
	}
	if history[0].Role != "user" || history[1].Role != "model" {
		t.Errorf("unexpected roles %q, %q", history[0].Role, history[1].Role)
	}
	if txt, ok := history[1].Parts[0].(genai.Text); !ok || string(txt) != "How many days?" {
		t.Errorf("unexpected history content %v", history[1].Parts[0])
	}
}

func TestGeminiSession_SingleMessage(t *testing.T) {
	history, last := geminiSession(hello)
	if len(history) != 0 {
		t.Errorf("expected empty history, got %d", len(history))
	}
	if last != hello[0].Content {
		t.Errorf("unexpected last %q", last)
	}
}

func TestGeminiCompletion(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text("Day 1: "), genai.Text("Jokulsarlon at sunrise")}},
		}},
		UsageMetadata: &genai.UsageMetadata{PromptTokenCount: 40, CandidatesTokenCount: 9},
	}
	c := geminiCompletion(resp)
	if c.Text != "Day 1: Jokulsarlon at sunrise" {
		t.Errorf("unexpected text %q", c.Text)
	}
	if c.InputTokens == nil || *c.InputTokens != 40 || c.OutputTokens == nil || *c.OutputTokens != 9 {
		t.Errorf("unexpected usage %v / %v", c.InputTokens, c.OutputTokens)
	}
}

func TestGeminiCompletion_MissingPieces(t *testing.T) {
	if c := geminiCompletion(nil); c.Text != "" || c.InputTokens != nil {
		t.Errorf("expected empty completion for nil response, got %+v", c)
	}
	c := geminiCompletion(&genai.GenerateContentResponse{})
	if c.Text != "" || c.InputTokens != nil || c.OutputTokens != nil {
		t.Errorf("expected empty completion, got %+v", c)
	}
	c = geminiCompletion(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}})
	if c.Text != "" {
		t.Errorf("expected empty text for candidate without content, got %q", c.Text)
	}
}

// fakeGeminiChat records the parts sent as the new turn.
type fakeGeminiChat struct {
	parts []genai.Part
	resp  *genai.GenerateContentResponse
	err   error
}

func (f *fakeGeminiChat) SendMessage(_ context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	f.parts = parts
	return f.resp, f.err
}

func TestGeminiStartChat(t *testing.T) {
	b := &geminiBackend{maxTokens: 768}
	gm := (&genai.Client{}).GenerativeModel("gemini-2.0-flash")
	conv := []Message{
		{Role: RoleUser, Content: "Santorini"},
		{Role: RoleAssistant, Content: "Sunset or sunrise?"},
		{Role: RoleUser, Content: "sunset, architecture"},
	}

	cs, last := b.startChat(gm, conv, "plan carefully")

	if gm.SystemInstruction == nil || len(gm.SystemInstruction.Parts) != 1 {
		t.Fatalf("expected system instruction, got %+v", gm.SystemInstruction)
	}
	if txt, ok := gm.SystemInstruction.Parts[0].(genai.Text); !ok || string(txt) != "plan carefully" {
		t.Errorf("unexpected system instruction %v", gm.SystemInstruction.Parts[0])
	}
	if gm.MaxOutputTokens == nil || *gm.MaxOutputTokens != 768 {
		t.Errorf("expected max output tokens 768, got %v", gm.MaxOutputTokens)
	}
	if len(cs.History) != 2 || cs.History[0].Role != "user" || cs.History[1].Role != "model" {
		t.Fatalf("unexpected history %+v", cs.History)
	}
	if last != "sunset, architecture" {
		t.Errorf("expected last user turn, got %q", last)
	}
}

func TestGeminiStartChat_NoSystemNoLimit(t *testing.T) {
	b := &geminiBackend{}
	gm := (&genai.Client{}).GenerativeModel("gemini-2.0-flash")

	cs, last := b.startChat(gm, hello, "")
	if gm.SystemInstruction != nil {
		t.Errorf("expected no system instruction, got %+v", gm.SystemInstruction)
	}
	if gm.MaxOutputTokens != nil {
		t.Errorf("expected no token cap, got %d", *gm.MaxOutputTokens)
	}
	if len(cs.History) != 0 || last != hello[0].Content {
		t.Errorf("unexpected session: history=%d last=%q", len(cs.History), last)
	}
}

func TestSendGeminiTurn(t *testing.T) {
	chat := &fakeGeminiChat{resp: &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []genai.Part{genai.Text("Day 1: Oia at golden hour")}}}},
	}}

	c, err := sendGeminiTurn(context.Background(), chat, "sunset, architecture")
	if err != nil {
		t.Fatalf("sendGeminiTurn: %v", err)
	}
	if len(chat.parts) != 1 {
		t.Fatalf("expected one part sent, got %d", len(chat.parts))
	}
	if txt, ok := chat.parts[0].(genai.Text); !ok || string(txt) != "sunset, architecture" {
		t.Errorf("unexpected turn sent %v", chat.parts[0])
	}
	if c.Text != "Day 1: Oia at golden hour" || c.InputTokens != nil {
		t.Errorf("unexpected completion %+v", c)
	}
}

func TestSendGeminiTurn_Error(t *testing.T) {
	vendorErr := errors.New("googleapi: Error 429")
	_, err := sendGeminiTurn(context.Background(), &fakeGeminiChat{err: vendorErr}, "x")
	if !errors.Is(err, vendorErr) {
		t.Fatalf("expected wrapped vendor error, got %v", err)
	}
}
