package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// captureServer records the last JSON request body and replies with reply.
type captureServer struct {
	*httptest.Server

	mu   sync.Mutex
	body map[string]any
	hdr  http.Header
}

func newCaptureServer(t *testing.T, reply string) *captureServer {
	t.Helper()
	cs := &captureServer{}
	cs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		if err := json.Unmarshal(raw, &body); err != nil {
			t.Errorf("request body is not JSON: %v", err)
		}
		cs.mu.Lock()
		cs.body = body
		cs.hdr = r.Header.Clone()
		cs.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(cs.Close)
	return cs
}

func (cs *captureServer) lastBody() map[string]any {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.body
}

const openAIReply = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1718000000,
  "model": "gpt-4o",
  "choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "Day 1: Shibuya crossing at blue hour"}}],
  "usage": {"prompt_tokens": 31, "completion_tokens": 12, "total_tokens": 43}
}`

func newOpenAITestDispatcher(url string) *Dispatcher {
	return NewDispatcher(Options{
		Getenv:    envMap(map[string]string{"OPENAI_API_KEY": "sk-test"}),
		BaseURLs:  map[Provider]string{ProviderOpenAI: url},
		MaxTokens: 512,
	})
}

func TestUsesMaxCompletionTokens(t *testing.T) {
	tests := map[string]bool{
		"gpt-5":         true,
		"gpt-5-mini":    true,
		"o1-preview":    true,
		"o3-mini":       true,
		"o4-mini":       true,
		"O4-MINI":       true,
		"gpt-4o":        false,
		"gpt-4o-mini":   false,
		"gpt-4.1":       false,
		"chatgpt-4o":    false,
		"text-o1-clone": false,
	}
	for model, want := range tests {
		if got := usesMaxCompletionTokens(model); got != want {
			t.Errorf("usesMaxCompletionTokens(%q) = %v, want %v", model, got, want)
		}
	}
}

func TestOpenAI_MaxTokensParameter(t *testing.T) {
	tests := []struct {
		apiModel string
		wantKey  string
		otherKey string
	}{
		{"gpt-4o", "max_tokens", "max_completion_tokens"},
		{"gpt-5-mini", "max_completion_tokens", "max_tokens"},
		{"o4-mini", "max_completion_tokens", "max_tokens"},
	}
	for _, tc := range tests {
		t.Run(tc.apiModel, func(t *testing.T) {
			srv := newCaptureServer(t, openAIReply)
			d := newOpenAITestDispatcher(srv.URL)

			model := ModelConfig{ID: tc.apiModel, Name: tc.apiModel, Provider: ProviderOpenAI, APIModel: tc.apiModel}
			if _, err := d.Dispatch(context.Background(), model, hello, ""); err != nil {
				t.Fatalf("Dispatch: %v", err)
			}

			body := srv.lastBody()
			if v, ok := body[tc.wantKey].(float64); !ok || v != 512 {
				t.Errorf("expected %s=512, got %v", tc.wantKey, body[tc.wantKey])
			}
			if _, ok := body[tc.otherKey]; ok {
				t.Errorf("unexpected %s in request", tc.otherKey)
			}
			if body["model"] != tc.apiModel {
				t.Errorf("expected model %q, got %v", tc.apiModel, body["model"])
			}
		})
	}
}

func TestOpenAI_MessagesAndResponse(t *testing.T) {
	srv := newCaptureServer(t, openAIReply)
	d := newOpenAITestDispatcher(srv.URL)

	conv := []Message{
		{Role: RoleUser, Content: "Tokyo, 3 days"},
		{Role: RoleAssistant, Content: "Any interests?"},
		{Role: RoleUser, Content: "night and street"},
	}
	model := ModelConfig{ID: "gpt-4o", Name: "GPT-4o", Provider: ProviderOpenAI, APIModel: "gpt-4o"}
	resp, err := d.Dispatch(context.Background(), model, conv, "be brief")
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	msgs, _ := srv.lastBody()["messages"].([]any)
	if len(msgs) != 4 {
		t.Fatalf("expected system + 3 messages, got %d", len(msgs))
	}
	wantRoles := []string{"system", "user", "assistant", "user"}
	wantContent := []string{"be brief", "Tokyo, 3 days", "Any interests?", "night and street"}
	for i, raw := range msgs {
		m := raw.(map[string]any)
		if m["role"] != wantRoles[i] {
			t.Errorf("message %d: expected role %s, got %v", i, wantRoles[i], m["role"])
		}
		if m["content"] != wantContent[i] {
			t.Errorf("message %d: expected content %q, got %v", i, wantContent[i], m["content"])
		}
	}

	if resp.Text != "Day 1: Shibuya crossing at blue hour" {
		t.Errorf("unexpected text %q", resp.Text)
	}
	if resp.Model != "GPT-4o" {
		t.Errorf("expected display name, got %q", resp.Model)
	}
	if resp.InputTokens == nil || *resp.InputTokens != 31 {
		t.Errorf("expected 31 input tokens, got %v", resp.InputTokens)
	}
	if resp.OutputTokens == nil || *resp.OutputTokens != 12 {
		t.Errorf("expected 12 output tokens, got %v", resp.OutputTokens)
	}
	if got := srv.hdr.Get("Authorization"); got != "Bearer sk-test" {
		t.Errorf("unexpected Authorization header %q", got)
	}
}

func TestOpenAI_EmptyChoicesAndUsage(t *testing.T) {
	srv := newCaptureServer(t, `{"id":"x","object":"chat.completion","created":1,"model":"gpt-4o","choices":[]}`)
	d := newOpenAITestDispatcher(srv.URL)

	model := ModelConfig{ID: "gpt-4o", Name: "GPT-4o", Provider: ProviderOpenAI, APIModel: "gpt-4o"}
	resp, err := d.Dispatch(context.Background(), model, hello, "")
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if resp.Text != "" {
		t.Errorf("expected empty text, got %q", resp.Text)
	}
	if resp.InputTokens != nil || resp.OutputTokens != nil {
		t.Errorf("expected absent token counts, got %v / %v", resp.InputTokens, resp.OutputTokens)
	}
}

func TestOpenAI_VendorErrorNotRetried(t *testing.T) {
	var mu sync.Mutex
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits++
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error":{"message":"rate limited","type":"rate_limit_error"}}`)
	}))
	defer srv.Close()

	d := newOpenAITestDispatcher(srv.URL)
	model := ModelConfig{ID: "gpt-4o", Name: "GPT-4o", Provider: ProviderOpenAI, APIModel: "gpt-4o"}
	if _, err := d.Dispatch(context.Background(), model, hello, ""); err == nil {
		t.Fatal("expected vendor error")
	}

	mu.Lock()
	defer mu.Unlock()
	if hits != 1 {
		t.Fatalf("expected exactly 1 request, got %d", hits)
	}
}

func TestOpenAI_ClientReused(t *testing.T) {
	srv := newCaptureServer(t, openAIReply)
	d := newOpenAITestDispatcher(srv.URL)
	model := ModelConfig{ID: "gpt-4o", Name: "GPT-4o", Provider: ProviderOpenAI, APIModel: "gpt-4o"}

	if _, err := d.Dispatch(context.Background(), model, hello, ""); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	first, _ := d.Registry().Acquire(context.Background(), ProviderOpenAI, func(context.Context, string) (any, error) {
		t.Fatal("client rebuilt")
		return nil, nil
	})
	if _, err := d.Dispatch(context.Background(), model, hello, ""); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	second, _ := d.Registry().Acquire(context.Background(), ProviderOpenAI, nil)
	if first != second {
		t.Fatal("expected the same client across dispatches")
	}
}
