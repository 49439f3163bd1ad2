package usage

import (
	"time"

	"github.com/google/uuid"
)

// Entry is one recorded model call.
type Entry struct {
	ID           uuid.UUID `json:"id"`
	ModelID      string    `json:"modelId"`
	Provider     string    `json:"provider"`
	LatencyMs    int64     `json:"latencyMs"`
	InputTokens  *int      `json:"inputTokens,omitempty"`
	OutputTokens *int      `json:"outputTokens,omitempty"`
	CostMicroUSD int64     `json:"costMicroUsd"`
	Cached       bool      `json:"cached"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ModelSummary aggregates entries for one model.
type ModelSummary struct {
	ModelID      string  `json:"modelId"`
	Provider     string  `json:"provider"`
	Calls        int64   `json:"calls"`
	CachedCalls  int64   `json:"cachedCalls"`
	AvgLatencyMs float64 `json:"avgLatencyMs"`
	InputTokens  int64   `json:"inputTokens"`
	OutputTokens int64   `json:"outputTokens"`
	CostMicroUSD int64   `json:"costMicroUsd"`
}
