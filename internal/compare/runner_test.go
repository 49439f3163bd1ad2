package compare

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"shutterplan/internal/ai"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeDispatcher struct {
	missing map[ai.Provider]bool
	fail    map[string]error
	delay   map[string]time.Duration

	inflight atomic.Int32
	peak     atomic.Int32

	mu      sync.Mutex
	prompts []string
}

func (f *fakeDispatcher) IsAvailable(m ai.ModelConfig) bool { return !f.missing[m.Provider] }

func (f *fakeDispatcher) Dispatch(ctx context.Context, m ai.ModelConfig, msgs []ai.Message, sys string) (ai.LLMResponse, error) {
	n := f.inflight.Add(1)
	defer f.inflight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}

	f.mu.Lock()
	f.prompts = append(f.prompts, sys)
	f.mu.Unlock()

	select {
	case <-time.After(f.delay[m.ID]):
	case <-ctx.Done():
		return ai.LLMResponse{}, ctx.Err()
	}
	if err := f.fail[m.ID]; err != nil {
		return ai.LLMResponse{}, err
	}
	in, out := 1000, 1000
	return ai.LLMResponse{Text: "plan from " + m.ID, Model: m.Name, LatencyMs: f.delay[m.ID].Milliseconds(), InputTokens: &in, OutputTokens: &out}, nil
}

func model(id string, p ai.Provider, in, out float64) ai.ModelConfig {
	return ai.ModelConfig{ID: id, Name: id, Provider: p, APIModel: id, InputCostPerM: in, OutputCostPerM: out}
}

func TestRun_CollectsOneResultPerModelInOrder(t *testing.T) {
	off := false
	models := []ai.ModelConfig{
		model("slow", ai.ProviderOpenAI, 2.5, 10),
		model("broken", ai.ProviderAnthropic, 3, 15),
		model("nokey", ai.ProviderGoogle, 0.1, 0.4),
		model("fast", ai.ProviderDeepSeek, 0.27, 1.1),
	}
	disabled := model("old", ai.ProviderOpenAI, 1, 1)
	disabled.Enabled = &off
	models = append(models, disabled)

	d := &fakeDispatcher{
		missing: map[ai.Provider]bool{ai.ProviderGoogle: true},
		fail:    map[string]error{"broken": errors.New("529 overloaded")},
		delay:   map[string]time.Duration{"slow": 30 * time.Millisecond, "fast": 5 * time.Millisecond},
	}
	r := NewRunner(d, Options{Workers: 2})

	results, err := r.Run(context.Background(), "Kyoto, 3 days", "", models)
	require.NoError(t, err)
	require.Len(t, results, 5)

	ids := make([]string, len(results))
	for i, res := range results {
		ids[i] = res.ModelID
	}
	assert.Equal(t, []string{"slow", "broken", "nokey", "fast", "old"}, ids)

	assert.Equal(t, StatusOK, results[0].Status)
	assert.Equal(t, "plan from slow", results[0].Response.Text)
	assert.Equal(t, int64(12500), results[0].Cost.Amount)

	assert.Equal(t, StatusFail, results[1].Status)
	assert.Contains(t, results[1].Note, "overloaded")
	assert.Nil(t, results[1].Response)

	assert.Equal(t, StatusSkip, results[2].Status)
	assert.Equal(t, "missing GEMINI_API_KEY", results[2].Note)

	assert.Equal(t, StatusOK, results[3].Status, "a failing model must not cancel the others")
	assert.Equal(t, StatusSkip, results[4].Status)
	assert.Equal(t, "disabled", results[4].Note)

	s := Summarize(results)
	assert.Equal(t, 2, s.OK)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 2, s.Skipped)
	assert.Equal(t, "fast", s.Fastest)
	assert.Equal(t, "fast", s.Cheapest)
	assert.Equal(t, int64(12500+1370), s.TotalCost.Amount)
}

func TestRun_RespectsWorkerLimit(t *testing.T) {
	var models []ai.ModelConfig
	delay := map[string]time.Duration{}
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		models = append(models, model(id, ai.ProviderOpenAI, 1, 1))
		delay[id] = 15 * time.Millisecond
	}
	d := &fakeDispatcher{delay: delay}
	r := NewRunner(d, Options{Workers: 3})

	results, err := r.Run(context.Background(), "Paris", "sys", models)
	require.NoError(t, err)
	assert.Len(t, results, 8)
	assert.LessOrEqual(t, d.peak.Load(), int32(3))
	assert.Greater(t, d.peak.Load(), int32(1), "dispatches should overlap")
	for _, p := range d.prompts {
		assert.Equal(t, "sys", p)
	}
}

func TestRun_PerModelTimeout(t *testing.T) {
	d := &fakeDispatcher{delay: map[string]time.Duration{"stuck": time.Minute, "ok": 0}}
	r := NewRunner(d, Options{Timeout: 20 * time.Millisecond})

	results, err := r.Run(context.Background(), "Tokyo", "", []ai.ModelConfig{
		model("stuck", ai.ProviderOpenAI, 1, 1),
		model("ok", ai.ProviderAnthropic, 1, 1),
	})
	require.NoError(t, err)
	assert.Equal(t, StatusFail, results[0].Status)
	assert.Contains(t, results[0].Note, context.DeadlineExceeded.Error())
	assert.Equal(t, StatusOK, results[1].Status)
}

func TestRun_InvalidInput(t *testing.T) {
	r := NewRunner(&fakeDispatcher{}, Options{})

	_, err := r.Run(context.Background(), "", "", []ai.ModelConfig{model("a", ai.ProviderOpenAI, 1, 1)})
	assert.ErrorIs(t, err, ai.ErrNoMessages)

	_, err = r.Run(context.Background(), "Rome", "", nil)
	assert.ErrorIs(t, err, ErrNoModels)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	assert.Zero(t, s.OK)
	assert.Empty(t, s.Fastest)
	assert.Zero(t, s.TotalCost.Amount)
}
