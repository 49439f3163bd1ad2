package ai

import (
	"errors"
	"fmt"
)

// Catalog is an ordered, read-only list of model descriptors.
type Catalog struct {
	models []ModelConfig
	byID   map[string]int
}

// NewCatalog validates models and indexes them by id.
func NewCatalog(models []ModelConfig) (*Catalog, error) {
	if err := ValidateModels(models); err != nil {
		return nil, err
	}
	c := &Catalog{
		models: append([]ModelConfig(nil), models...),
		byID:   make(map[string]int, len(models)),
	}
	for i, m := range c.models {
		c.byID[m.ID] = i
	}
	return c, nil
}

// ValidateModels checks every entry and returns all problems joined.
func ValidateModels(models []ModelConfig) error {
	if len(models) == 0 {
		return errors.New("catalog: no models defined")
	}
	var errs []error
	seen := make(map[string]bool, len(models))
	for i, m := range models {
		if m.ID == "" {
			errs = append(errs, fmt.Errorf("catalog: models[%d]: id is required", i))
		} else if seen[m.ID] {
			errs = append(errs, fmt.Errorf("catalog: duplicate model id %q", m.ID))
		}
		seen[m.ID] = true
		if m.Name == "" {
			errs = append(errs, fmt.Errorf("catalog: model %q: name is required", m.ID))
		}
		if !m.Provider.Valid() {
			errs = append(errs, fmt.Errorf("catalog: model %q: %w %q", m.ID, ErrUnknownProvider, m.Provider))
		}
		if m.APIModel == "" {
			errs = append(errs, fmt.Errorf("catalog: model %q: api model is required", m.ID))
		}
		if m.InputCostPerM < 0 || m.OutputCostPerM < 0 {
			errs = append(errs, fmt.Errorf("catalog: model %q: costs must not be negative", m.ID))
		}
	}
	return errors.Join(errs...)
}

// Models returns a copy of all entries in catalog order.
func (c *Catalog) Models() []ModelConfig {
	return append([]ModelConfig(nil), c.models...)
}

// Enabled returns the enabled entries in catalog order.
func (c *Catalog) Enabled() []ModelConfig {
	out := make([]ModelConfig, 0, len(c.models))
	for _, m := range c.models {
		if m.IsEnabled() {
			out = append(out, m)
		}
	}
	return out
}

// Find returns the model with the given id.
func (c *Catalog) Find(id string) (ModelConfig, error) {
	i, ok := c.byID[id]
	if !ok {
		return ModelConfig{}, fmt.Errorf("%w: %q", ErrModelNotFound, id)
	}
	return c.models[i], nil
}

func disabled() *bool {
	f := false
	return &f
}

// DefaultModels is the built-in catalog.
var DefaultModels = []ModelConfig{
	{
		ID: "gpt-4o", Name: "GPT-4o", Provider: ProviderOpenAI, APIModel: "gpt-4o",
		InputCostPerM: 2.50, OutputCostPerM: 10.00, Tier: TierPremium,
	},
	{
		ID: "gpt-4o-mini", Name: "GPT-4o mini", Provider: ProviderOpenAI, APIModel: "gpt-4o-mini",
		InputCostPerM: 0.15, OutputCostPerM: 0.60, Tier: TierBudget,
	},
	{
		ID: "gpt-5-mini", Name: "GPT-5 mini", Provider: ProviderOpenAI, APIModel: "gpt-5-mini",
		InputCostPerM: 0.25, OutputCostPerM: 2.00, Tier: TierMid,
		Notes: "Reasoning model; sends max_completion_tokens.",
	},
	{
		ID: "o4-mini", Name: "o4-mini", Provider: ProviderOpenAI, APIModel: "o4-mini",
		InputCostPerM: 1.10, OutputCostPerM: 4.40, Tier: TierMid,
		Notes: "Reasoning model; slower first token.",
	},
	{
		ID: "claude-sonnet-4", Name: "Claude Sonnet 4", Provider: ProviderAnthropic, APIModel: "claude-sonnet-4-20250514",
		InputCostPerM: 3.00, OutputCostPerM: 15.00, Tier: TierPremium,
	},
	{
		ID: "claude-3-5-haiku", Name: "Claude 3.5 Haiku", Provider: ProviderAnthropic, APIModel: "claude-3-5-haiku-20241022",
		InputCostPerM: 0.80, OutputCostPerM: 4.00, Tier: TierMid,
	},
	{
		ID: "deepseek-chat", Name: "DeepSeek V3", Provider: ProviderDeepSeek, APIModel: "deepseek-chat",
		InputCostPerM: 0.27, OutputCostPerM: 1.10, Tier: TierBudget,
	},
	{
		ID: "deepseek-reasoner", Name: "DeepSeek R1", Provider: ProviderDeepSeek, APIModel: "deepseek-reasoner",
		InputCostPerM: 0.55, OutputCostPerM: 2.19, Tier: TierMid,
		Notes: "Long reasoning traces; high latency.",
	},
	{
		ID: "gemini-2.0-flash", Name: "Gemini 2.0 Flash", Provider: ProviderGoogle, APIModel: "gemini-2.0-flash",
		InputCostPerM: 0.10, OutputCostPerM: 0.40, Tier: TierBudget,
	},
	{
		ID: "gemini-1.5-pro", Name: "Gemini 1.5 Pro", Provider: ProviderGoogle, APIModel: "gemini-1.5-pro",
		InputCostPerM: 1.25, OutputCostPerM: 5.00, Tier: TierPremium,
		Notes: "Superseded by 2.x models.", Enabled: disabled(),
	},
}
