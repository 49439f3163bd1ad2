// README: Cache-key derivation from PlanParams.
package planparams

import "strings"

const cacheKeyPrefix = "plan:v1"

// CacheKey returns the plan-cache key for p. No key is produced until the
// destination is known; unknown interests and duration use fixed placeholders.
func CacheKey(p PlanParams) (string, bool) {
	if p.Destination == nil || strings.TrimSpace(*p.Destination) == "" {
		return "", false
	}

	interests := "general"
	if p.Interests != nil && *p.Interests != "" {
		interests = slug(*p.Interests)
	}
	duration := "any"
	if p.Duration != nil && *p.Duration != "" {
		duration = slug(*p.Duration)
	}

	return strings.Join([]string{cacheKeyPrefix, slug(*p.Destination), interests, duration}, ":"), true
}

func slug(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "_")
}
