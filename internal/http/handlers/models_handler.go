// README: Model catalog handler with per-model availability.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shutterplan/internal/ai"
	"shutterplan/internal/modules/pricing"
)

// Reference call size used for the per-call cost column.
const (
	refInputTokens  = 1500
	refOutputTokens = 1500
)

type Availability interface {
	IsAvailable(model ai.ModelConfig) bool
}

type ModelsHandler struct {
	catalog   *ai.Catalog
	available Availability
}

func NewModelsHandler(catalog *ai.Catalog, available Availability) *ModelsHandler {
	return &ModelsHandler{catalog: catalog, available: available}
}

type modelView struct {
	ai.ModelConfig
	Enabled    bool    `json:"enabled"`
	Available  bool    `json:"available"`
	PerCallUSD float64 `json:"perCallUsd"`
}

// List handles GET /api/models.
func (h *ModelsHandler) List(c *gin.Context) {
	models := h.catalog.Models()
	out := make([]modelView, 0, len(models))
	for _, m := range models {
		enabled := m.IsEnabled()
		out = append(out, modelView{
			ModelConfig: m,
			Enabled:     enabled,
			Available:   enabled && h.available.IsAvailable(m),
			PerCallUSD:  pricing.PerCallUSD(m, refInputTokens, refOutputTokens),
		})
	}
	writeJSON(c, http.StatusOK, gin.H{"models": out})
}
