// README: Deterministic keyword/pattern extraction of PlanParams from one chat message.
package planparams

import "strings"

// Extract derives PlanParams from a single message. Matching is
// case-insensitive substring containment against the fixed catalogs; the
// function is total and has no side effects.
func Extract(message string) PlanParams {
	lower := strings.ToLower(message)
	return PlanParams{
		Destination: matchDestination(lower),
		Interests:   matchInterests(lower),
		Duration:    matchDuration(lower),
	}
}

// FromConversation folds Extract and Merge over the given user turns in order,
// so later statements fill gaps or override earlier ones.
func FromConversation(userTurns []string) PlanParams {
	var params PlanParams
	for _, turn := range userTurns {
		params = Merge(params, Extract(turn))
	}
	return params
}

func matchDestination(lower string) *string {
	for _, dest := range Destinations {
		if strings.Contains(lower, dest) {
			return strPtr(dest)
		}
	}
	return nil
}

func matchInterests(lower string) *string {
	var found []string
	for _, kw := range Interests {
		if strings.Contains(lower, kw) {
			found = append(found, kw)
		}
	}
	if len(found) == 0 {
		return nil
	}
	if len(found) > MaxInterests {
		found = found[:MaxInterests]
	}
	return strPtr(strings.Join(found, InterestSeparator))
}

func matchDuration(lower string) *string {
	for _, phrase := range weekPhrases {
		if strings.Contains(lower, phrase) {
			return strPtr("7")
		}
	}
	if strings.Contains(lower, weekendPhrase) {
		return strPtr("2")
	}
	for _, re := range durationPatterns {
		if m := re.FindStringSubmatch(lower); m != nil {
			return strPtr(m[1])
		}
	}
	return nil
}
