// README: Usage ledger summary handler.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"shutterplan/internal/modules/usage"
	"shutterplan/internal/observe"
)

const defaultUsageWindow = 24 * time.Hour

type UsageSummarizer interface {
	Summary(ctx context.Context, since time.Time) ([]usage.ModelSummary, error)
}

type UsageHandler struct {
	usage UsageSummarizer
	now   func() time.Time
}

// NewUsageHandler accepts a nil summarizer when the ledger is disabled.
func NewUsageHandler(u UsageSummarizer) *UsageHandler {
	return &UsageHandler{usage: u, now: time.Now}
}

// Summary handles GET /api/usage?since=. since is an RFC 3339 time or a
// duration back from now (e.g. "72h"); it defaults to 24h.
func (h *UsageHandler) Summary(c *gin.Context) {
	if h.usage == nil {
		writeError(c, http.StatusNotFound, "usage ledger disabled")
		return
	}

	since, ok := h.parseSince(c.Query("since"))
	if !ok {
		writeError(c, http.StatusBadRequest, "invalid since")
		return
	}

	models, err := h.usage.Summary(c.Request.Context(), since)
	if err != nil {
		observe.LoggerFromContext(c.Request.Context()).Error("usage summary failed", "error", err)
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	if models == nil {
		models = []usage.ModelSummary{}
	}
	writeJSON(c, http.StatusOK, gin.H{"since": since, "models": models})
}

func (h *UsageHandler) parseSince(v string) (time.Time, bool) {
	if v == "" {
		return h.now().Add(-defaultUsageWindow), true
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, true
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return h.now().Add(-d), true
	}
	return time.Time{}, false
}
