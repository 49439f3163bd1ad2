package ai

import (
	"context"
)

// Backend is one vendor's calling convention. The Dispatcher selects a
// Backend by provider tag, so adding a vendor means adding a Backend.
type Backend interface {
	// Provider returns the tag this backend serves.
	Provider() Provider

	// Complete issues exactly one vendor call for the conversation and returns
	// the vendor reply mapped to a Completion. Implementations acquire their
	// client through the shared Registry and must not retry.
	Complete(ctx context.Context, model ModelConfig, messages []Message, systemPrompt string) (Completion, error)
}

// Completion is a vendor reply before timing and display naming are applied.
// Missing text is "" and missing token counts are nil.
type Completion struct {
	Text         string
	InputTokens  *int
	OutputTokens *int
}

// tokenCount converts a vendor count to an optional value; vendors that omit
// usage decode to zero, which is treated as not reported.
func tokenCount[T ~int | ~int32 | ~int64](n T) *int {
	if n <= 0 {
		return nil
	}
	v := int(n)
	return &v
}
