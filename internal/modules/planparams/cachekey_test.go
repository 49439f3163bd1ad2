package planparams

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCacheKey(t *testing.T) {
	tests := []struct {
		name   string
		params PlanParams
		want   string
		ok     bool
	}{
		{
			name:   "no destination",
			params: PlanParams{Interests: strPtr("street"), Duration: strPtr("3")},
			ok:     false,
		},
		{
			name:   "blank destination",
			params: PlanParams{Destination: strPtr("  ")},
			ok:     false,
		},
		{
			name:   "destination only",
			params: PlanParams{Destination: strPtr("tokyo")},
			want:   "plan:v1:tokyo:general:any",
			ok:     true,
		},
		{
			name: "all fields",
			params: PlanParams{
				Destination: strPtr("new york"),
				Interests:   strPtr("golden hour-night"),
				Duration:    strPtr("4"),
			},
			want: "plan:v1:new_york:golden_hour-night:4",
			ok:   true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := CacheKey(tc.params)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCacheKey_StableAcrossPhrasing(t *testing.T) {
	a, okA := CacheKey(Extract("3 days of street photography in Tokyo"))
	b, okB := CacheKey(FromConversation([]string{"Tokyo trip", "street shots", "for 3 days"}))
	assert.True(t, okA)
	assert.True(t, okB)
	assert.Equal(t, a, b)
}
