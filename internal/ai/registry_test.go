package ai

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestRegistry_ConcurrentAcquireBuildsOnce(t *testing.T) {
	r := NewRegistry(envMap(map[string]string{"OPENAI_API_KEY": "sk-test"}))

	var builds atomic.Int32
	build := func(_ context.Context, key string) (any, error) {
		builds.Add(1)
		time.Sleep(10 * time.Millisecond)
		return "client:" + key, nil
	}

	const n = 64
	results := make([]any, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := r.Acquire(context.Background(), ProviderOpenAI, build)
			if err != nil {
				t.Errorf("Acquire: %v", err)
				return
			}
			results[i] = c
		}(i)
	}
	wg.Wait()

	if got := builds.Load(); got != 1 {
		t.Fatalf("expected 1 construction, got %d", got)
	}
	for i, c := range results {
		if c != "client:sk-test" {
			t.Fatalf("result %d: unexpected client %v", i, c)
		}
	}
	if !r.Has(ProviderOpenAI) {
		t.Fatal("expected client to be cached")
	}
}

func TestRegistry_MissingCredentialNotCached(t *testing.T) {
	env := map[string]string{}
	var mu sync.Mutex
	r := NewRegistry(func(k string) string {
		mu.Lock()
		defer mu.Unlock()
		return env[k]
	})

	build := func(_ context.Context, key string) (any, error) { return key, nil }

	_, err := r.Acquire(context.Background(), ProviderAnthropic, build)
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.EnvVar != "ANTHROPIC_API_KEY" {
		t.Fatalf("expected ConfigError for ANTHROPIC_API_KEY, got %v", err)
	}
	if r.Has(ProviderAnthropic) {
		t.Fatal("failure must not be cached")
	}

	mu.Lock()
	env["ANTHROPIC_API_KEY"] = "  sk-ant  "
	mu.Unlock()

	c, err := r.Acquire(context.Background(), ProviderAnthropic, build)
	if err != nil {
		t.Fatalf("Acquire after setting credential: %v", err)
	}
	if c != "sk-ant" {
		t.Fatalf("expected trimmed key, got %v", c)
	}
}

func TestRegistry_BuildErrorNotCached(t *testing.T) {
	r := NewRegistry(envMap(map[string]string{"GEMINI_API_KEY": "gm"}))
	boom := errors.New("dial failed")

	calls := 0
	build := func(_ context.Context, _ string) (any, error) {
		calls++
		if calls == 1 {
			return nil, boom
		}
		return "ok", nil
	}

	if _, err := r.Acquire(context.Background(), ProviderGoogle, build); !errors.Is(err, boom) {
		t.Fatalf("expected build error, got %v", err)
	}
	if r.Has(ProviderGoogle) {
		t.Fatal("failed construction must not be cached")
	}
	if _, err := r.Acquire(context.Background(), ProviderGoogle, build); err != nil {
		t.Fatalf("second Acquire: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 build attempts, got %d", calls)
	}
}

func TestRegistry_ProvidersAreIndependent(t *testing.T) {
	r := NewRegistry(envMap(map[string]string{"OPENAI_API_KEY": "a", "DEEPSEEK_API_KEY": "b"}))
	build := func(_ context.Context, key string) (any, error) { return key, nil }

	a, _ := r.Acquire(context.Background(), ProviderOpenAI, build)
	b, _ := r.Acquire(context.Background(), ProviderDeepSeek, build)
	if a != "a" || b != "b" {
		t.Fatalf("clients crossed between providers: %v %v", a, b)
	}
	if r.Has(ProviderAnthropic) || r.Has(ProviderGoogle) {
		t.Fatal("unrelated providers must stay unbuilt")
	}
}

func TestAcquireAs_TypeMismatch(t *testing.T) {
	r := NewRegistry(envMap(map[string]string{"OPENAI_API_KEY": "a"}))
	build := func(_ context.Context, _ string) (any, error) { return 42, nil }

	if _, err := acquireAs[string](context.Background(), r, ProviderOpenAI, build); err == nil {
		t.Fatal("expected type mismatch error")
	}
	n, err := acquireAs[int](context.Background(), r, ProviderOpenAI, build)
	if err != nil || n != 42 {
		t.Fatalf("acquireAs[int] = %d, %v", n, err)
	}
}

func TestCredential_UnknownProvider(t *testing.T) {
	r := NewRegistry(envMap(map[string]string{"MISTRAL_API_KEY": "x"}))
	if _, ok := r.Credential("mistral"); ok {
		t.Fatal("unknown provider must have no credential")
	}
}

func TestTokenCount(t *testing.T) {
	if tokenCount(int64(0)) != nil {
		t.Error("zero must map to nil")
	}
	if tokenCount(int32(-3)) != nil {
		t.Error("negative must map to nil")
	}
	if v := tokenCount(int64(128)); v == nil || *v != 128 {
		t.Errorf("expected 128, got %v", v)
	}
}

func TestRegistry_BuildIgnoresLeaderCancellation(t *testing.T) {
	r := NewRegistry(envMap(map[string]string{"GEMINI_API_KEY": "gm-test"}))

	started := make(chan struct{})
	release := make(chan struct{})
	build := func(ctx context.Context, key string) (any, error) {
		close(started)
		<-release
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return "client:" + key, nil
	}

	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	leaderErr := make(chan error, 1)
	go func() {
		_, err := r.Acquire(canceled, ProviderGoogle, build)
		leaderErr <- err
	}()
	<-started

	waiterErr := make(chan error, 1)
	go func() {
		c, err := r.Acquire(context.Background(), ProviderGoogle, build)
		if err == nil && c != "client:gm-test" {
			err = errors.New("unexpected client")
		}
		waiterErr <- err
	}()
	close(release)

	if err := <-leaderErr; err != nil {
		t.Errorf("leader: expected client despite canceled context, got %v", err)
	}
	if err := <-waiterErr; err != nil {
		t.Errorf("waiter: %v", err)
	}
	if !r.Has(ProviderGoogle) {
		t.Error("expected client cached")
	}
}
