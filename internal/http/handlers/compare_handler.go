// README: Comparison handler; one prompt against several models.
package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"shutterplan/internal/ai"
	"shutterplan/internal/compare"
)

type CompareRunner interface {
	Run(ctx context.Context, prompt, systemPrompt string, models []ai.ModelConfig) ([]compare.Result, error)
}

type CompareHandler struct {
	runner  CompareRunner
	catalog *ai.Catalog
	timeout time.Duration
}

func NewCompareHandler(runner CompareRunner, catalog *ai.Catalog, timeout time.Duration) *CompareHandler {
	if timeout <= 0 {
		timeout = 180 * time.Second
	}
	return &CompareHandler{runner: runner, catalog: catalog, timeout: timeout}
}

type compareReq struct {
	Prompt       string   `json:"prompt"`
	Models       []string `json:"models"`
	SystemPrompt string   `json:"systemPrompt"`
}

type compareResp struct {
	Results []compare.Result `json:"results"`
	Summary compare.Summary  `json:"summary"`
}

// Compare handles POST /api/compare. An empty model list means every enabled model.
func (h *CompareHandler) Compare(c *gin.Context) {
	var req compareReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	req.Prompt = strings.TrimSpace(req.Prompt)
	if req.Prompt == "" {
		writeError(c, http.StatusBadRequest, "missing prompt")
		return
	}

	models := h.catalog.Enabled()
	if len(req.Models) > 0 {
		models = make([]ai.ModelConfig, 0, len(req.Models))
		for _, id := range req.Models {
			m, err := h.catalog.Find(id)
			if err != nil {
				writeServiceError(c, err)
				return
			}
			models = append(models, m)
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	results, err := h.runner.Run(ctx, req.Prompt, req.SystemPrompt, models)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, compareResp{Results: results, Summary: compare.Summarize(results)})
}
