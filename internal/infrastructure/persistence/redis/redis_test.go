package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"resume-ai-api/internal/config"
	"resume-ai-api/internal/workflow/prompt"
)

func unreachableRedis() *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestNewClient_Unreachable(t *testing.T) {
	_, err := NewClient(&config.RedisConfig{
		Host:        "127.0.0.1",
		Port:        1,
		DialTimeout: 50 * time.Millisecond,
	})
	if err == nil {
		t.Fatal("expected ping error")
	}
}

func TestPromptStore_Key(t *testing.T) {
	tests := []struct {
		prefix string
		want   string
	}{
		{"", "prompt:override:resume_v1"},
		{"prompt:override:", "prompt:override:resume_v1"},
		{"staging:prompts", "staging:prompts:resume_v1"},
	}
	for _, tt := range tests {
		s := NewPromptStore(nil, tt.prefix, time.Minute)
		if got := s.Key(prompt.PromptResumeV1); got != tt.want {
			t.Errorf("Key() with prefix %q = %q, want %q", tt.prefix, got, tt.want)
		}
	}
}

func TestPromptStore_RedisDownReturnsError(t *testing.T) {
	rdb := unreachableRedis()
	defer rdb.Close()

	s := NewPromptStore(NewCacheWithRedis(rdb), "", time.Minute)
	called := false
	_, err := s.Load(context.Background(), prompt.PromptResumeV1, func() (string, error) {
		called = true
		return "embedded", nil
	})
	if err == nil {
		t.Fatal("expected error when redis is unreachable")
	}
	if called {
		t.Error("fallback should not run when redis read fails")
	}
}

func TestRegistry_DegradesWhenRedisDown(t *testing.T) {
	rdb := unreachableRedis()
	defer rdb.Close()

	reg := prompt.NewRegistry(prompt.WithOverrides(NewPromptStore(NewCacheWithRedis(rdb), "", time.Minute)))
	tpl, err := reg.Template(context.Background(), prompt.PromptResumeV1)
	if err != nil {
		t.Fatalf("Template() error = %v", err)
	}
	if tpl == "" {
		t.Fatal("expected embedded template")
	}

	// redis 故障时未知 ID 仍由内置模板报告
	_, err = reg.Template(context.Background(), prompt.PromptID("nope"))
	if !errors.Is(err, prompt.ErrPromptNotFound) {
		t.Fatalf("Template(unknown) error = %v", err)
	}
}

func TestIsNil(t *testing.T) {
	if !IsNil(goredis.Nil) {
		t.Error("IsNil(redis.Nil) = false")
	}
	if !IsNil(fmt.Errorf("get prompt: %w", goredis.Nil)) {
		t.Error("IsNil(wrapped redis.Nil) = false")
	}
	if IsNil(errors.New("other")) {
		t.Error("IsNil(other) = true")
	}
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestNewClient_HealthCheck(t *testing.T) {
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	if err != nil {
		t.Fatalf("parse port: %v", err)
	}

	client, err := NewClient(&config.RedisConfig{
		Host:        mr.Host(),
		Port:        port,
		DialTimeout: time.Second,
	})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	defer client.Close()

	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck() error = %v", err)
	}

	mr.Close()
	if err := client.HealthCheck(context.Background()); err == nil {
		t.Fatal("HealthCheck() should fail after redis stops")
	}
}

func TestPromptStore_Load(t *testing.T) {
	const ttl = 10 * time.Minute

	tests := []struct {
		name         string
		stored       *string
		want         string
		wantFallback bool
		wantStored   string
		wantTTL      time.Duration
	}{
		{
			name:       "override replaces embedded template",
			stored:     strPtr("  custom {{userDescription}}\n"),
			want:       "custom {{userDescription}}",
			wantStored: "  custom {{userDescription}}\n",
		},
		{
			name:         "miss seeds key with embedded template",
			want:         "embedded {{userDescription}}",
			wantFallback: true,
			wantStored:   "embedded {{userDescription}}",
			wantTTL:      ttl,
		},
		{
			name:         "blank override falls back to embedded",
			stored:       strPtr("   "),
			want:         "embedded {{userDescription}}",
			wantFallback: true,
			wantStored:   "   ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mr, rdb := newTestRedis(t)
			s := NewPromptStore(NewCacheWithRedis(rdb), "", ttl)
			key := s.Key(prompt.PromptResumeV1)
			if tt.stored != nil {
				if err := mr.Set(key, *tt.stored); err != nil {
					t.Fatalf("seed override: %v", err)
				}
			}

			fallbackCalled := false
			got, err := s.Load(context.Background(), prompt.PromptResumeV1, func() (string, error) {
				fallbackCalled = true
				return "embedded {{userDescription}}", nil
			})
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Load() = %q, want %q", got, tt.want)
			}
			if fallbackCalled != tt.wantFallback {
				t.Errorf("fallback called = %v, want %v", fallbackCalled, tt.wantFallback)
			}

			stored, err := mr.Get(key)
			if err != nil {
				t.Fatalf("read %s: %v", key, err)
			}
			if stored != tt.wantStored {
				t.Errorf("stored %s = %q, want %q", key, stored, tt.wantStored)
			}
			if got := mr.TTL(key); got != tt.wantTTL {
				t.Errorf("TTL(%s) = %v, want %v", key, got, tt.wantTTL)
			}
		})
	}
}

func TestRegistry_RedisOverride(t *testing.T) {
	mr, rdb := newTestRedis(t)
	store := NewPromptStore(NewCacheWithRedis(rdb), "prompt:override", time.Hour)
	if err := mr.Set("prompt:override:job_resume_v1", "JD={{jobDescription}} ME={{userDescription}}"); err != nil {
		t.Fatalf("seed override: %v", err)
	}

	reg := prompt.NewRegistry(prompt.WithOverrides(store))
	out, err := reg.Render(context.Background(), prompt.PromptJobResumeV1, map[string]string{
		"userDescription": "Go dev",
		"jobDescription":  "SRE",
	})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if out != "JD=SRE ME=Go dev" {
		t.Errorf("Render() = %q", out)
	}

	// 预热为未覆盖的提示词回填内置模板
	if err := reg.Warm(context.Background()); err != nil {
		t.Fatalf("Warm() error = %v", err)
	}
	seeded, err := mr.Get("prompt:override:resume_v1")
	if err != nil {
		t.Fatalf("resume_v1 not seeded: %v", err)
	}
	embedded, _ := prompt.NewRegistry().Template(context.Background(), prompt.PromptResumeV1)
	if seeded != embedded {
		t.Errorf("seeded template differs from embedded one")
	}
}

func TestCache_GetOrLoadSafe(t *testing.T) {
	mr, rdb := newTestRedis(t)
	c := NewCacheWithRedis(rdb)
	ctx := context.Background()

	var mu sync.Mutex
	loads := 0
	loader := func(context.Context) ([]byte, error) {
		mu.Lock()
		loads++
		mu.Unlock()
		time.Sleep(200 * time.Millisecond)
		return []byte("v1"), nil
	}

	const callers = 8
	type outcome struct {
		val    string
		loaded bool
		err    error
	}
	results := make(chan outcome, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			val, loaded, err := c.GetOrLoadSafe(ctx, "k", time.Minute, loader)
			results <- outcome{string(val), loaded, err}
		}()
	}
	wg.Wait()
	close(results)

	for r := range results {
		if r.err != nil {
			t.Fatalf("GetOrLoadSafe() error = %v", r.err)
		}
		if r.val != "v1" || !r.loaded {
			t.Errorf("shared load = (%q, %v), want (v1, true)", r.val, r.loaded)
		}
	}
	if loads != 1 {
		t.Errorf("loader calls = %d, want 1", loads)
	}

	val, loaded, err := c.GetOrLoadSafe(ctx, "k", time.Minute, loader)
	if err != nil || string(val) != "v1" || loaded {
		t.Errorf("cached read = (%q, %v, %v), want (v1, false, nil)", val, loaded, err)
	}
	if got, _ := mr.Get("k"); got != "v1" {
		t.Errorf("stored value = %q", got)
	}

	if _, _, err := c.GetOrLoadSafe(ctx, "broken", time.Minute, func(context.Context) ([]byte, error) {
		return nil, errors.New("load failed")
	}); err == nil {
		t.Error("loader error should propagate")
	}
	if mr.Exists("broken") {
		t.Error("failed load should not be cached")
	}
}

func strPtr(s string) *string { return &s }
