//go:build wireinject
// +build wireinject

// Package wire 提供依赖注入配置
package wire

import (
	"context"

	"github.com/google/wire"

	"resume-ai-api/internal/application/resume"
	"resume-ai-api/internal/config"
	"resume-ai-api/internal/infrastructure/llm"
	"resume-ai-api/internal/interfaces/http/handler"
	"resume-ai-api/internal/interfaces/http/router"
)

// InitializeApp 初始化整个应用（带路由器）
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	wire.Build(
		RedisSet,
		MessagingSet,
		WorkflowSet,
		RouterSet,
	)
	return nil, nil, nil
}

// RedisSet 可选 Redis 提供者集合
var RedisSet = wire.NewSet(
	ProvideRedisClientOptional,
	ProvidePromptRegistry,
)

// MessagingSet 消息推送提供者集合
var MessagingSet = wire.NewSet(
	ProvideMessagingProducer,
	ProvideNotifier,
	ProvideSharer,
)

// WorkflowSet 生成链路提供者集合
var WorkflowSet = wire.NewSet(
	llm.NewEinoFactory,
	ProvideExtractor,
	ProvideGenerator,
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	ProvideHealthHandler,
	handler.NewResumeHandler,
	wire.Bind(new(handler.ResumeGenerator), new(*resume.Generator)),
	wire.Bind(new(handler.ResumeSharer), new(*resume.Sharer)),
	wire.Struct(new(router.RouterHandlers), "*"),
	router.NewWithDeps,
)
