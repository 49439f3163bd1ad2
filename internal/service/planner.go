package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"shutterplan/internal/ai"
	"shutterplan/internal/maps"
	"shutterplan/internal/modules/plancache"
	"shutterplan/internal/modules/planparams"
	"shutterplan/internal/modules/pricing"
	"shutterplan/internal/modules/usage"
	"shutterplan/internal/observe"
	"shutterplan/internal/types"
)

// ErrModelUnavailable means the requested model is disabled or its vendor
// credential is not configured.
var ErrModelUnavailable = errors.New("model unavailable")

// spotLookupTimeout bounds the best-effort Places/Directions enrichment.
const spotLookupTimeout = 5 * time.Second

type Dispatcher interface {
	Dispatch(ctx context.Context, model ai.ModelConfig, messages []ai.Message, systemPromptOverride string) (ai.LLMResponse, error)
	IsAvailable(model ai.ModelConfig) bool
	SystemPrompt() string
}

type ModelCatalog interface {
	Find(id string) (ai.ModelConfig, error)
}

type PlanCache interface {
	Get(ctx context.Context, key, modelID string) (plancache.CachedPlan, error)
	Set(ctx context.Context, key string, p plancache.CachedPlan) error
}

type UsageRecorder interface {
	Record(ctx context.Context, model ai.ModelConfig, resp ai.LLMResponse, cached bool) (usage.Entry, error)
}

type SpotFinder interface {
	PhotoSpots(ctx context.Context, destination string, interests []string) ([]maps.Place, error)
}

type LegEstimator interface {
	SpotLegs(ctx context.Context, places []maps.Place) []maps.Leg
}

// PlannerDeps wires a Planner. Catalog and Dispatcher are required; the rest
// are optional and skipped when nil.
type PlannerDeps struct {
	Catalog    ModelCatalog
	Dispatcher Dispatcher
	Cache      PlanCache
	Usage      UsageRecorder
	Spots      SpotFinder
	Routes     LegEstimator
	Pricing    *pricing.Service
	Metrics    *observe.Metrics
}

// Planner turns a photography-trip conversation into a model reply.
type Planner struct {
	catalog    ModelCatalog
	dispatcher Dispatcher
	cache      PlanCache
	usage      UsageRecorder
	spots      SpotFinder
	routes     LegEstimator
	pricing    *pricing.Service
	metrics    *observe.Metrics
}

func NewPlanner(deps PlannerDeps) *Planner {
	if deps.Pricing == nil {
		deps.Pricing = pricing.NewService()
	}
	return &Planner{
		catalog:    deps.Catalog,
		dispatcher: deps.Dispatcher,
		cache:      deps.Cache,
		usage:      deps.Usage,
		spots:      deps.Spots,
		routes:     deps.Routes,
		pricing:    deps.Pricing,
		metrics:    deps.Metrics,
	}
}

type ChatRequest struct {
	ModelID  string       `json:"model"`
	Messages []ai.Message `json:"messages"`
	// SystemPrompt replaces the generated prompt when set; such requests are
	// never served from or stored in the plan cache.
	SystemPrompt string `json:"systemPrompt,omitempty"`
}

type ChatResult struct {
	Response ai.LLMResponse        `json:"response"`
	Params   planparams.PlanParams `json:"params"`
	CacheKey string                `json:"cacheKey,omitempty"`
	Cached   bool                  `json:"cached"`
	Spots    []maps.Place          `json:"spots,omitempty"`
	Cost     types.Money           `json:"cost"`
}

// ResolveModel returns the catalog entry for id when it can be dispatched.
func (p *Planner) ResolveModel(id string) (ai.ModelConfig, error) {
	model, err := p.catalog.Find(id)
	if err != nil {
		return ai.ModelConfig{}, err
	}
	if !model.IsEnabled() {
		return ai.ModelConfig{}, fmt.Errorf("%w: %s is disabled", ErrModelUnavailable, model.ID)
	}
	if !p.dispatcher.IsAvailable(model) {
		return ai.ModelConfig{}, fmt.Errorf("%w: %s credential %s is not set", ErrModelUnavailable, model.ID, ai.CredentialEnv[model.Provider])
	}
	return model, nil
}

// Chat answers the conversation with the requested model.
//
// Trip parameters are derived from every user turn. A first-turn request
// with a known destination and no prompt override is served from the plan
// cache when possible. Enrichment, usage recording, and caching are best
// effort: their failures are logged and never fail the request.
func (p *Planner) Chat(ctx context.Context, req ChatRequest) (*ChatResult, error) {
	start := time.Now()
	log := observe.LoggerFromContext(ctx)

	model, err := p.ResolveModel(req.ModelID)
	if err != nil {
		return nil, err
	}
	if len(req.Messages) == 0 {
		return nil, ai.ErrNoMessages
	}

	params := planparams.FromConversation(userTurns(req.Messages))
	key, hasKey := planparams.CacheKey(params)
	result := &ChatResult{Params: params, CacheKey: key}

	cacheable := p.cache != nil && hasKey && isFirstTurn(req)
	if cacheable {
		if hit, ok := p.lookupCache(ctx, log, key, model); ok {
			result.Response = ai.LLMResponse{
				Text:      hit.Text,
				Model:     model.Name,
				LatencyMs: time.Since(start).Milliseconds(),
			}
			result.Cached = true
			result.Cost = types.MicroUSD(0)
			p.recordUsage(ctx, log, model, result.Response, true)
			return result, nil
		}
	}

	prompt := req.SystemPrompt
	if prompt == "" {
		var spotLines []string
		result.Spots, spotLines = p.enrich(ctx, log, params)
		prompt = ai.BuildSystemPrompt(p.dispatcher.SystemPrompt(), TripContext(params), spotLines)
	}

	resp, err := p.dispatcher.Dispatch(ctx, model, req.Messages, prompt)
	if err != nil {
		return nil, err
	}
	result.Response = resp
	result.Cost = p.pricing.Estimate(model, resp.InputTokens, resp.OutputTokens)
	p.recordUsage(ctx, log, model, resp, false)

	if cacheable && resp.Text != "" {
		err := p.cache.Set(ctx, key, plancache.CachedPlan{Text: resp.Text, Model: model.Name, ModelID: model.ID})
		if err != nil {
			log.Warn("plan cache store failed", "key", key, "model", model.ID, "error", err)
		}
	}
	return result, nil
}

func (p *Planner) lookupCache(ctx context.Context, log *slog.Logger, key string, model ai.ModelConfig) (plancache.CachedPlan, bool) {
	hit, err := p.cache.Get(ctx, key, model.ID)
	switch {
	case err == nil:
		p.metrics.RecordCacheLookup(ctx, "hit")
		log.Debug("plan cache hit", "key", key, "model", model.ID)
		return hit, true
	case errors.Is(err, plancache.ErrCacheMiss):
		p.metrics.RecordCacheLookup(ctx, "miss")
	default:
		p.metrics.RecordCacheLookup(ctx, "error")
		log.Warn("plan cache lookup failed", "key", key, "error", err)
	}
	return plancache.CachedPlan{}, false
}

// enrich looks up photo spots and transit legs for the destination.
func (p *Planner) enrich(ctx context.Context, log *slog.Logger, params planparams.PlanParams) ([]maps.Place, []string) {
	if p.spots == nil || params.Destination == nil {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, spotLookupTimeout)
	defer cancel()

	var interests []string
	if params.Interests != nil {
		interests = strings.Split(*params.Interests, planparams.InterestSeparator)
	}
	spots, err := p.spots.PhotoSpots(ctx, *params.Destination, interests)
	if err != nil {
		log.Warn("photo spot lookup failed", "destination", *params.Destination, "error", err)
		return nil, nil
	}

	lines := make([]string, 0, len(spots)+maps.MaxLegs)
	for _, s := range spots {
		lines = append(lines, s.Label())
	}
	if p.routes != nil && len(spots) > 1 {
		for _, leg := range p.routes.SpotLegs(ctx, spots) {
			lines = append(lines, leg.Label())
		}
	}
	return spots, lines
}

func (p *Planner) recordUsage(ctx context.Context, log *slog.Logger, model ai.ModelConfig, resp ai.LLMResponse, cached bool) {
	if p.usage == nil {
		return
	}
	if _, err := p.usage.Record(ctx, model, resp, cached); err != nil {
		log.Warn("usage record failed", "model", model.ID, "error", err)
	}
}

func userTurns(messages []ai.Message) []string {
	turns := make([]string, 0, len(messages))
	for _, m := range messages {
		if m.Role == ai.RoleUser {
			turns = append(turns, m.Content)
		}
	}
	return turns
}

func isFirstTurn(req ChatRequest) bool {
	return req.SystemPrompt == "" && len(req.Messages) == 1 && req.Messages[0].Role == ai.RoleUser
}

// TripContext renders known params as the trip-context map of
// ai.BuildSystemPrompt, with interests joined by ", ".
func TripContext(params planparams.PlanParams) map[string]string {
	ctx := make(map[string]string, 3)
	if params.Destination != nil {
		ctx["destination"] = *params.Destination
	}
	if params.Interests != nil {
		ctx["interests"] = strings.ReplaceAll(*params.Interests, planparams.InterestSeparator, ", ")
	}
	if params.Duration != nil {
		ctx["duration_days"] = *params.Duration
	}
	return ctx
}
