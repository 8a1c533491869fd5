// Package llm 管理 LLM ChatModel 客户端
package llm

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"resume-ai-api/internal/config"
)

// ErrProviderNotFound 配置中不存在的 provider
var ErrProviderNotFound = errors.New("llm provider not found")

// EinoFactory 按 provider 名称惰性创建并缓存 Eino ChatModel（OpenAI 兼容协议）
type EinoFactory struct {
	config *config.LLMConfig
	models map[string]model.BaseChatModel
	mu     sync.RWMutex
}

// NewEinoFactory 创建 Eino LLM 工厂
func NewEinoFactory(cfg *config.Config) *EinoFactory {
	return &EinoFactory{
		config: &cfg.LLM,
		models: make(map[string]model.BaseChatModel),
	}
}

// Get 获取指定名称的 ChatModel，name 为空时使用默认 provider
func (f *EinoFactory) Get(ctx context.Context, name string) (model.BaseChatModel, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = f.DefaultProvider()
	}

	f.mu.RLock()
	m, ok := f.models[name]
	f.mu.RUnlock()
	if ok {
		return m, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if m, ok = f.models[name]; ok {
		return m, nil
	}

	providerCfg, ok := f.config.Providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrProviderNotFound, name)
	}

	chatModel, err := openai.NewChatModel(ctx, chatModelConfig(providerCfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create eino chat model for %s: %w", name, err)
	}

	f.models[name] = chatModel
	return chatModel, nil
}

// DefaultProvider 返回默认 provider 名称；未配置且仅有一个 provider 时使用该 provider
func (f *EinoFactory) DefaultProvider() string {
	if p := strings.TrimSpace(f.config.DefaultProvider); p != "" {
		return p
	}
	if names := f.Providers(); len(names) == 1 {
		return names[0]
	}
	return ""
}

// Providers 返回已配置的 provider 名称（排序）
func (f *EinoFactory) Providers() []string {
	names := make([]string, 0, len(f.config.Providers))
	for name := range f.config.Providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ModelFor 返回 provider 的默认模型名
func (f *EinoFactory) ModelFor(name string) string {
	if strings.TrimSpace(name) == "" {
		name = f.DefaultProvider()
	}
	return f.config.Providers[name].Model
}

// Sampling 返回 provider 配置的 temperature / max_tokens，未配置的项为 nil
func (f *EinoFactory) Sampling(name string) (temperature *float32, maxTokens *int) {
	if strings.TrimSpace(name) == "" {
		name = f.DefaultProvider()
	}
	providerCfg, ok := f.config.Providers[name]
	if !ok {
		return nil, nil
	}
	cfg := chatModelConfig(providerCfg)
	return cfg.Temperature, cfg.MaxTokens
}

// chatModelConfig 零值的 MaxTokens / Temperature 交给服务端默认值
func chatModelConfig(p config.ProviderConfig) *openai.ChatModelConfig {
	cfg := &openai.ChatModelConfig{
		APIKey:  p.APIKey,
		BaseURL: p.BaseURL,
		Model:   p.Model,
		Timeout: p.Timeout,
	}
	if p.MaxTokens > 0 {
		maxTokens := p.MaxTokens
		cfg.MaxTokens = &maxTokens
	}
	if p.Temperature > 0 {
		temperature := float32(p.Temperature)
		cfg.Temperature = &temperature
	}
	return cfg
}
