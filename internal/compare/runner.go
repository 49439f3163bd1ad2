// Package compare sends one prompt to several models concurrently and
// collects a result per model, for side-by-side quality and cost review.
package compare

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"shutterplan/internal/ai"
	"shutterplan/internal/modules/pricing"
	"shutterplan/internal/observe"
	"shutterplan/internal/types"
)

// ErrNoModels is returned when Run is given no models.
var ErrNoModels = errors.New("no models to compare")

const (
	DefaultWorkers = 4
	DefaultTimeout = 120 * time.Second
)

type Status string

const (
	StatusOK   Status = "OK"
	StatusFail Status = "FAIL"
	StatusSkip Status = "SKIP"
)

type Dispatcher interface {
	Dispatch(ctx context.Context, model ai.ModelConfig, messages []ai.Message, systemPromptOverride string) (ai.LLMResponse, error)
	IsAvailable(model ai.ModelConfig) bool
}

// Result is the outcome for one model.
type Result struct {
	ModelID  string          `json:"modelId"`
	Model    string          `json:"model"`
	Provider ai.Provider     `json:"provider"`
	Tier     ai.Tier         `json:"tier"`
	Status   Status          `json:"status"`
	Response *ai.LLMResponse `json:"response,omitempty"`
	Cost     types.Money     `json:"cost"`
	Note     string          `json:"note,omitempty"`
}

type Options struct {
	// Workers bounds concurrent dispatches.
	Workers int
	// Timeout bounds each model's call.
	Timeout time.Duration
	Pricing *pricing.Service
	Logger  *slog.Logger
}

type Runner struct {
	dispatcher Dispatcher
	workers    int
	timeout    time.Duration
	pricing    *pricing.Service
	logger     *slog.Logger
}

func NewRunner(d Dispatcher, opts Options) *Runner {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Pricing == nil {
		opts.Pricing = pricing.NewService()
	}
	if opts.Logger == nil {
		opts.Logger = observe.Logger()
	}
	return &Runner{
		dispatcher: d,
		workers:    opts.Workers,
		timeout:    opts.Timeout,
		pricing:    opts.Pricing,
		logger:     opts.Logger,
	}
}

// Run dispatches prompt as a single user turn to every model. Disabled models
// and models without credentials are reported as skipped. Results keep the
// order of models; one model failing never cancels the others.
func (r *Runner) Run(ctx context.Context, prompt, systemPrompt string, models []ai.ModelConfig) ([]Result, error) {
	if prompt == "" {
		return nil, ai.ErrNoMessages
	}
	if len(models) == 0 {
		return nil, ErrNoModels
	}

	messages := []ai.Message{{Role: ai.RoleUser, Content: prompt}}
	results := make([]Result, len(models))

	var g errgroup.Group
	g.SetLimit(r.workers)
	for i, m := range models {
		results[i] = Result{ModelID: m.ID, Model: m.Name, Provider: m.Provider, Tier: m.Tier}
		switch {
		case !m.IsEnabled():
			results[i].Status, results[i].Note = StatusSkip, "disabled"
			continue
		case !r.dispatcher.IsAvailable(m):
			results[i].Status, results[i].Note = StatusSkip, "missing "+ai.CredentialEnv[m.Provider]
			continue
		}

		g.Go(func() error {
			results[i] = r.runOne(ctx, m, messages, systemPrompt, results[i])
			return nil
		})
	}
	_ = g.Wait()
	return results, nil
}

func (r *Runner) runOne(ctx context.Context, m ai.ModelConfig, messages []ai.Message, systemPrompt string, res Result) Result {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	resp, err := r.dispatcher.Dispatch(ctx, m, messages, systemPrompt)
	if err != nil {
		r.logger.Warn("compare: model failed", "model", m.ID, "error", err)
		res.Status, res.Note = StatusFail, err.Error()
		return res
	}
	res.Status = StatusOK
	res.Response = &resp
	res.Cost = r.pricing.Estimate(m, resp.InputTokens, resp.OutputTokens)
	return res
}

// Summary tallies a comparison.
type Summary struct {
	OK        int         `json:"ok"`
	Failed    int         `json:"failed"`
	Skipped   int         `json:"skipped"`
	Fastest   string      `json:"fastest,omitempty"`
	Cheapest  string      `json:"cheapest,omitempty"`
	TotalCost types.Money `json:"totalCost"`
}

func Summarize(results []Result) Summary {
	var s Summary
	s.TotalCost = types.MicroUSD(0)
	var fastest, cheapest *Result
	for i := range results {
		res := &results[i]
		switch res.Status {
		case StatusOK:
			s.OK++
		case StatusFail:
			s.Failed++
			continue
		default:
			s.Skipped++
			continue
		}
		s.TotalCost = s.TotalCost.Add(res.Cost)
		if fastest == nil || res.Response.LatencyMs < fastest.Response.LatencyMs {
			fastest = res
		}
		if cheapest == nil || res.Cost.Amount < cheapest.Cost.Amount {
			cheapest = res
		}
	}
	if fastest != nil {
		s.Fastest = fastest.ModelID
	}
	if cheapest != nil {
		s.Cheapest = cheapest.ModelID
	}
	return s
}
