package redis

import (
	"context"
	"strings"
	"time"

	"resume-ai-api/internal/workflow/prompt"
	"resume-ai-api/pkg/metrics"
)

const defaultPromptKeyPrefix = "prompt:override"

// PromptStore 提示词覆盖存储：prompt:override:<id> 存在时替换内置模板。
// 未命中时以内置模板回填，运维覆盖该 key 即可热更新提示词。
type PromptStore struct {
	cache  *Cache
	prefix string
	ttl    time.Duration
}

// NewPromptStore 创建提示词覆盖存储
func NewPromptStore(cache *Cache, prefix string, ttl time.Duration) *PromptStore {
	prefix = strings.TrimSuffix(strings.TrimSpace(prefix), ":")
	if prefix == "" {
		prefix = defaultPromptKeyPrefix
	}
	return &PromptStore{cache: cache, prefix: prefix, ttl: ttl}
}

// Key 返回提示词对应的 Redis key
func (s *PromptStore) Key(id prompt.PromptID) string {
	return s.prefix + ":" + string(id)
}

// Load 实现 prompt.OverrideStore
func (s *PromptStore) Load(ctx context.Context, id prompt.PromptID, fallback func() (string, error)) (string, error) {
	val, loaded, err := s.cache.GetOrLoadSafe(ctx, s.Key(id), s.ttl, func(context.Context) ([]byte, error) {
		text, err := fallback()
		if err != nil {
			return nil, err
		}
		return []byte(text), nil
	})
	if err != nil {
		return "", err
	}

	source := "redis"
	if loaded {
		source = "embedded"
	}
	metrics.PromptLoadTotal.WithLabelValues(string(id), source).Inc()

	text := strings.TrimSpace(string(val))
	if text == "" {
		// 空覆盖值视为未配置
		return fallback()
	}
	return text, nil
}
