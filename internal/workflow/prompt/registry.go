// Package prompt 提供提示词模板的加载与渲染
package prompt

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"resume-ai-api/pkg/logger"
)

//go:embed templates/*.txt
var templatesFS embed.FS

type PromptID string

const (
	PromptResumeV1    PromptID = "resume_v1"
	PromptJobResumeV1 PromptID = "job_resume_v1"
)

// ErrPromptNotFound 未知的提示词 ID
var ErrPromptNotFound = errors.New("prompt not found")

// OverrideStore 外部模板覆盖存储（例如 Redis）。
// fallback 返回内置模板，供存储在未命中时回填。
type OverrideStore interface {
	Load(ctx context.Context, id PromptID, fallback func() (string, error)) (string, error)
}

// Registry 内置模板 + 可选外部覆盖
type Registry struct {
	mu        sync.RWMutex
	cache     map[PromptID]string
	overrides OverrideStore
}

// Option 配置 Registry
type Option func(*Registry)

// WithOverrides 设置外部覆盖存储
func WithOverrides(store OverrideStore) Option {
	return func(r *Registry) {
		r.overrides = store
	}
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		cache: make(map[PromptID]string),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Template 返回模板原文。覆盖存储故障时降级为内置模板，未知 ID 返回 ErrPromptNotFound。
func (r *Registry) Template(ctx context.Context, id PromptID) (string, error) {
	if r == nil {
		return "", fmt.Errorf("prompt registry is nil")
	}

	if r.overrides != nil {
		text, err := r.overrides.Load(ctx, id, func() (string, error) {
			return r.embedded(id)
		})
		if err == nil {
			return text, nil
		}
		if errors.Is(err, ErrPromptNotFound) {
			return "", err
		}
		logger.Warn(ctx, "prompt override store unavailable, using embedded template",
			"prompt_id", string(id),
			"error", err.Error(),
		)
	}

	return r.embedded(id)
}

// Render 加载模板并执行占位符替换
func (r *Registry) Render(ctx context.Context, id PromptID, values map[string]string) (string, error) {
	tpl, err := r.Template(ctx, id)
	if err != nil {
		return "", err
	}

	if missing := Missing(tpl, values); len(missing) > 0 {
		logger.Debug(ctx, "prompt rendered with unfilled placeholders",
			"prompt_id", string(id),
			"missing", missing,
		)
	}
	return Render(tpl, values), nil
}

func (r *Registry) embedded(id PromptID) (string, error) {
	r.mu.RLock()
	if tpl, ok := r.cache[id]; ok {
		r.mu.RUnlock()
		return tpl, nil
	}
	r.mu.RUnlock()

	path, err := resolvePromptFile(id)
	if err != nil {
		return "", err
	}
	tpl, err := readEmbeddedText(path)
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	r.cache[id] = tpl
	r.mu.Unlock()
	return tpl, nil
}

// Warm 启动时加载全部内置提示词；挂载覆盖存储时同时完成回填
func (r *Registry) Warm(ctx context.Context) error {
	for _, id := range KnownPrompts() {
		if _, err := r.Template(ctx, id); err != nil {
			return fmt.Errorf("warm prompt %s: %w", id, err)
		}
	}
	return nil
}

// KnownPrompts 返回所有内置提示词 ID
func KnownPrompts() []PromptID {
	return []PromptID{PromptResumeV1, PromptJobResumeV1}
}

func resolvePromptFile(id PromptID) (string, error) {
	switch id {
	case PromptResumeV1:
		return "templates/resume_v1.txt", nil
	case PromptJobResumeV1:
		return "templates/job_resume_v1.txt", nil
	default:
		return "", fmt.Errorf("%w: %s", ErrPromptNotFound, id)
	}
}

func readEmbeddedText(path string) (string, error) {
	b, err := templatesFS.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
