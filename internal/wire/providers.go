// Package wire 提供依赖注入配置
package wire

import (
	"context"
	"strings"

	"resume-ai-api/internal/application/resume"
	"resume-ai-api/internal/config"
	"resume-ai-api/internal/infrastructure/llm"
	"resume-ai-api/internal/infrastructure/messaging"
	"resume-ai-api/internal/infrastructure/persistence/redis"
	"resume-ai-api/internal/interfaces/http/handler"
	wfnode "resume-ai-api/internal/workflow/node"
	workflowport "resume-ai-api/internal/workflow/port"
	"resume-ai-api/internal/workflow/prompt"
	"resume-ai-api/pkg/logger"
)

// ProvideRedisClientOptional 提供可选的 Redis 客户端。
// 未启用或不可达时返回 nil，服务以内置提示词 + 演示模式推送运行。
func ProvideRedisClientOptional(ctx context.Context, cfg *config.Config) (*redis.Client, func(), error) {
	if !cfg.Cache.Redis.Enabled {
		return nil, func() {}, nil
	}
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		logger.Warn(ctx, "redis not available, prompt overrides and notify hand-off disabled", "error", err.Error())
		return nil, func() {}, nil
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvidePromptRegistry 提供提示词注册表，按配置挂载 Redis 覆盖，并预热全部内置提示词
func ProvidePromptRegistry(ctx context.Context, cfg *config.Config, client *redis.Client) (*prompt.Registry, error) {
	var opts []prompt.Option
	if client != nil && cfg.Prompts.RedisOverrides {
		store := redis.NewPromptStore(redis.NewCache(client), cfg.Prompts.KeyPrefix, cfg.Prompts.CacheTTL)
		opts = append(opts, prompt.WithOverrides(store))
	}
	registry := prompt.NewRegistry(opts...)
	if err := registry.Warm(ctx); err != nil {
		return nil, err
	}
	return registry, nil
}

// ProvideExtractor 提供模型输出解析器
func ProvideExtractor(cfg *config.Config) *wfnode.Extractor {
	return wfnode.NewExtractor(wfnode.ExtractorOptions{
		ReasoningOpen:  cfg.Extraction.ReasoningOpen,
		ReasoningClose: cfg.Extraction.ReasoningClose,
		FenceLanguage:  cfg.Extraction.FenceLanguage,
		RepairEnabled:  cfg.Extraction.RepairEnabled,
	})
}

// ProvideGenerator 提供简历生成服务
func ProvideGenerator(cfg *config.Config, prompts *prompt.Registry, factory *llm.EinoFactory, extractor *wfnode.Extractor) *resume.Generator {
	return resume.NewGenerator(prompts, factory, extractor, resume.GeneratorOptions{
		JSONMode: cfg.LLM.JSONMode,
		Catalog:  factory,
	})
}

// ProvideMessagingProducer 提供消息生产者，Redis 不可用时为 nil
func ProvideMessagingProducer(client *redis.Client, cfg *config.Config) *messaging.Producer {
	if client == nil {
		return nil
	}
	maxLen := cfg.Messaging.RedisStream.MaxLen
	if maxLen <= 0 {
		maxLen = 100000
	}
	return messaging.NewProducer(client.Redis(), int64(maxLen))
}

// ProvideNotifier 提供外发通道：配置了发送号码且 Redis 可用时写入 Stream，否则为演示模式
func ProvideNotifier(ctx context.Context, cfg *config.Config, producer *messaging.Producer) workflowport.Notifier {
	sender := strings.TrimSpace(cfg.Notify.SenderNumber)
	if producer == nil || sender == "" {
		logger.Warn(ctx, "notify running in demo mode", "channel", cfg.Notify.Channel)
		return messaging.NewDemoNotifier(cfg.Notify.Channel)
	}
	return messaging.NewStreamNotifier(
		producer,
		messaging.Stream(cfg.Messaging.RedisStream.NotifyStream),
		cfg.Notify.Channel,
		resume.FormatAddress(cfg.Notify.AddressPrefix, sender),
	)
}

// ProvideSharer 提供简历分享服务
func ProvideSharer(cfg *config.Config, notifier workflowport.Notifier) *resume.Sharer {
	return resume.NewSharer(notifier, resume.SharerOptions{
		Channel:       cfg.Notify.Channel,
		AddressPrefix: cfg.Notify.AddressPrefix,
		MaxBodyRunes:  cfg.Notify.MaxBodyRunes,
	})
}

// ProvideHealthHandler 提供健康检查处理器，Redis 未启用时不参与就绪检查
func ProvideHealthHandler(cfg *config.Config, client *redis.Client) *handler.HealthHandler {
	if client == nil {
		return handler.NewHealthHandler(cfg.App.Version, nil)
	}
	return handler.NewHealthHandler(cfg.App.Version, client)
}
