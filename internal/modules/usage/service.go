// Package usage keeps a ledger of model calls in Postgres: one row per
// dispatch with latency, token counts, and estimated cost.
package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"shutterplan/internal/ai"
	"shutterplan/internal/modules/pricing"
)

type ledgerStore interface {
	Insert(ctx context.Context, e Entry) error
	Summary(ctx context.Context, since time.Time) ([]ModelSummary, error)
}

// Service prices and records model calls.
type Service struct {
	store   ledgerStore
	pricing *pricing.Service
	now     func() time.Time
}

// NewService creates a Service backed by the given Store.
func NewService(store *Store, prices *pricing.Service) *Service {
	return newService(store, prices)
}

func newService(store ledgerStore, prices *pricing.Service) *Service {
	if prices == nil {
		prices = pricing.NewService()
	}
	return &Service{store: store, pricing: prices, now: time.Now}
}

// Record writes one entry for a completed call and returns it.
// Cached replies are recorded with zero cost.
func (s *Service) Record(ctx context.Context, model ai.ModelConfig, resp ai.LLMResponse, cached bool) (Entry, error) {
	e := Entry{
		ID:           uuid.New(),
		ModelID:      model.ID,
		Provider:     string(model.Provider),
		LatencyMs:    resp.LatencyMs,
		InputTokens:  resp.InputTokens,
		OutputTokens: resp.OutputTokens,
		Cached:       cached,
		CreatedAt:    s.now().UTC(),
	}
	if !cached {
		e.CostMicroUSD = s.pricing.Estimate(model, resp.InputTokens, resp.OutputTokens).Amount
	}
	if err := s.store.Insert(ctx, e); err != nil {
		return Entry{}, fmt.Errorf("usage: record %s: %w", model.ID, err)
	}
	return e, nil
}

// Summary returns per-model aggregates since the given time.
func (s *Service) Summary(ctx context.Context, since time.Time) ([]ModelSummary, error) {
	out, err := s.store.Summary(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("usage: summary: %w", err)
	}
	return out, nil
}
