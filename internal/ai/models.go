package ai

// Provider tags one external LLM vendor.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderDeepSeek  Provider = "deepseek"
	ProviderGoogle    Provider = "google"
)

// Providers lists every supported provider tag.
var Providers = []Provider{ProviderOpenAI, ProviderAnthropic, ProviderDeepSeek, ProviderGoogle}

// Valid reports whether p is a supported provider tag.
func (p Provider) Valid() bool {
	_, ok := CredentialEnv[p]
	return ok
}

// Tier is a coarse pricing label used for display and filtering.
type Tier string

const (
	TierBudget  Tier = "budget"
	TierMid     Tier = "mid"
	TierPremium Tier = "premium"
)

// ModelConfig is the static descriptor of one callable model.
// Catalog entries are built once at startup and never mutated.
type ModelConfig struct {
	// ID is the stable identifier used by clients (e.g. "gpt-4o-mini").
	ID string `json:"id" yaml:"id" toml:"id"`

	// Name is the human-readable display name reported in responses.
	Name string `json:"name" yaml:"name" toml:"name"`

	Provider Provider `json:"provider" yaml:"provider" toml:"provider"`

	// APIModel is the vendor's model string (e.g. "claude-sonnet-4-20250514").
	APIModel string `json:"apiModel" yaml:"api_model" toml:"api_model"`

	// InputCostPerM and OutputCostPerM are USD per million tokens.
	InputCostPerM  float64 `json:"inputCostPerM" yaml:"input_cost_per_m" toml:"input_cost_per_m"`
	OutputCostPerM float64 `json:"outputCostPerM" yaml:"output_cost_per_m" toml:"output_cost_per_m"`

	Tier  Tier   `json:"tier" yaml:"tier" toml:"tier"`
	Notes string `json:"notes,omitempty" yaml:"notes,omitempty" toml:"notes,omitempty"`

	// Enabled is nil when unspecified, which counts as enabled.
	Enabled *bool `json:"enabled,omitempty" yaml:"enabled,omitempty" toml:"enabled,omitempty"`
}

// IsEnabled reports whether the model may be offered to callers.
func (m ModelConfig) IsEnabled() bool {
	return m.Enabled == nil || *m.Enabled
}

// Role is the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single conversation turn. Slices of Message are chronological.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// LLMResponse is the normalized result of one dispatch.
type LLMResponse struct {
	Text string `json:"text"`

	// Model is the display name of the model, not the vendor model string.
	Model string `json:"model"`

	LatencyMs int64 `json:"latencyMs"`

	// Token counts are nil when the vendor did not report them.
	InputTokens  *int `json:"inputTokens,omitempty"`
	OutputTokens *int `json:"outputTokens,omitempty"`
}
