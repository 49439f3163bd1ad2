// README: Chat handler; streams a plan as Server-Sent Events and extracts trip params.
package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"shutterplan/internal/ai"
	"shutterplan/internal/maps"
	"shutterplan/internal/modules/planparams"
	"shutterplan/internal/observe"
	"shutterplan/internal/service"
	"shutterplan/internal/types"
)

// SSE event names.
const (
	eventDelta = "delta"
	eventDone  = "done"
	eventError = "error"
)

type Planner interface {
	ResolveModel(id string) (ai.ModelConfig, error)
	Chat(ctx context.Context, req service.ChatRequest) (*service.ChatResult, error)
}

type ChatHandler struct {
	planner Planner
	timeout time.Duration
}

func NewChatHandler(planner Planner, timeout time.Duration) *ChatHandler {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &ChatHandler{planner: planner, timeout: timeout}
}

type chatReq struct {
	Model        string       `json:"model"`
	Messages     []ai.Message `json:"messages"`
	SystemPrompt string       `json:"systemPrompt"`
}

type doneEvent struct {
	Model        string                `json:"model"`
	ModelID      string                `json:"modelId"`
	LatencyMs    int64                 `json:"latencyMs"`
	InputTokens  *int                  `json:"inputTokens,omitempty"`
	OutputTokens *int                  `json:"outputTokens,omitempty"`
	Params       planparams.PlanParams `json:"params"`
	CacheKey     string                `json:"cacheKey,omitempty"`
	Cached       bool                  `json:"cached"`
	Cost         types.Money           `json:"cost"`
	Spots        []maps.Place          `json:"spots,omitempty"`
}

// Chat handles POST /api/chat.
//
// Request validation and model resolution fail with a JSON error. Once the
// model is resolved the response is an event stream: one or more delta
// events carrying text, then a done event, or an error event.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req chatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	req.Model = strings.TrimSpace(req.Model)
	if req.Model == "" {
		writeError(c, http.StatusBadRequest, "missing model")
		return
	}
	if msg := validateMessages(req.Messages); msg != "" {
		writeError(c, http.StatusBadRequest, msg)
		return
	}

	model, err := h.planner.ResolveModel(req.Model)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	res, err := h.planner.Chat(ctx, service.ChatRequest{
		ModelID:      model.ID,
		Messages:     req.Messages,
		SystemPrompt: req.SystemPrompt,
	})
	if err != nil {
		_, msg := errorStatus(err)
		observe.LoggerFromContext(ctx).Warn("chat failed", "model", model.ID, "error", err)
		c.SSEvent(eventError, gin.H{"message": msg})
		c.Writer.Flush()
		return
	}

	for _, chunk := range textChunks(res.Response.Text) {
		c.SSEvent(eventDelta, gin.H{"text": chunk})
		c.Writer.Flush()
	}
	c.SSEvent(eventDone, doneEvent{
		Model:        res.Response.Model,
		ModelID:      model.ID,
		LatencyMs:    res.Response.LatencyMs,
		InputTokens:  res.Response.InputTokens,
		OutputTokens: res.Response.OutputTokens,
		Params:       res.Params,
		CacheKey:     res.CacheKey,
		Cached:       res.Cached,
		Cost:         res.Cost,
		Spots:        res.Spots,
	})
	c.Writer.Flush()
}

type paramsReq struct {
	Messages []ai.Message          `json:"messages"`
	Existing planparams.PlanParams `json:"existing"`
}

type paramsResp struct {
	Params   planparams.PlanParams `json:"params"`
	CacheKey string                `json:"cacheKey,omitempty"`
}

// Params handles POST /api/params: extracts trip params from the user turns
// and merges them over any previously known params.
func (h *ChatHandler) Params(c *gin.Context) {
	var req paramsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if msg := validateMessages(req.Messages); msg != "" {
		writeError(c, http.StatusBadRequest, msg)
		return
	}

	var turns []string
	for _, m := range req.Messages {
		if m.Role == ai.RoleUser {
			turns = append(turns, m.Content)
		}
	}
	params := planparams.Merge(req.Existing, planparams.FromConversation(turns))
	key, _ := planparams.CacheKey(params)
	writeJSON(c, http.StatusOK, paramsResp{Params: params, CacheKey: key})
}

func validateMessages(messages []ai.Message) string {
	if len(messages) == 0 {
		return "missing messages"
	}
	for _, m := range messages {
		if m.Role != ai.RoleUser && m.Role != ai.RoleAssistant {
			return "invalid message role " + string(m.Role)
		}
	}
	return ""
}

// textChunks splits text into line-sized pieces whose concatenation is text.
func textChunks(text string) []string {
	var chunks []string
	for _, line := range strings.SplitAfter(text, "\n") {
		if line != "" {
			chunks = append(chunks, line)
		}
	}
	return chunks
}
