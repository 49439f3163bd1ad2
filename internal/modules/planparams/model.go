// README: Structured trip parameters extracted from chat turns, and the merge rule across turns.
package planparams

// PlanParams captures the trip intent derived from free text.
// A nil field means "not yet determined", never "explicitly empty".
type PlanParams struct {
	Destination *string `json:"destination"`
	// Interests holds at most three catalog keywords joined by "-".
	Interests *string `json:"interests"`
	// Duration is a day count rendered as text (e.g. "3").
	Duration *string `json:"duration"`
}

// Merge combines params across conversation turns. A non-nil incoming field
// wins; a nil incoming field keeps the existing value.
func Merge(existing, incoming PlanParams) PlanParams {
	return PlanParams{
		Destination: pick(existing.Destination, incoming.Destination),
		Interests:   pick(existing.Interests, incoming.Interests),
		Duration:    pick(existing.Duration, incoming.Duration),
	}
}

// IsZero reports whether no field has been determined yet.
func (p PlanParams) IsZero() bool {
	return p.Destination == nil && p.Interests == nil && p.Duration == nil
}

func pick(existing, incoming *string) *string {
	if incoming != nil {
		return incoming
	}
	return existing
}

func strPtr(s string) *string {
	return &s
}
