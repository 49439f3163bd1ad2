// README: Cached plan value and cache errors.
package plancache

import (
	"errors"
	"time"
)

// ErrCacheMiss is returned by Get when no plan is stored under the key.
var ErrCacheMiss = errors.New("plan cache miss")

// CachedPlan is a previously generated reply for a first-turn conversation.
type CachedPlan struct {
	Text      string    `json:"text"`
	Model     string    `json:"model"`
	ModelID   string    `json:"modelId"`
	CreatedAt time.Time `json:"createdAt"`
}
