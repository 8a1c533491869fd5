// Package service 定义跨层共享的 LLM 调用上下文
package service

import (
	"context"
	"strings"

	"resume-ai-api/pkg/logger"
)

const unknownLabel = "unknown"

type llmCallKey struct{}

// llmCall 一次模型调用的观测标签，由工作流写入、eino callbacks 读取
type llmCall struct {
	workflow string
	provider string
}

// WithWorkflowProvider 写入工作流与 provider 标签，空值保留已有标签。
// workflow 同时写入 logger.WorkflowKey，使日志带上工作流名称。
func WithWorkflowProvider(ctx context.Context, workflow, provider string) context.Context {
	if ctx == nil {
		return nil
	}
	cur := callFromContext(ctx)
	if w := strings.TrimSpace(workflow); w != "" {
		cur.workflow = w
		ctx = context.WithValue(ctx, logger.WorkflowKey, w)
	}
	if p := strings.TrimSpace(provider); p != "" {
		cur.provider = p
	}
	return context.WithValue(ctx, llmCallKey{}, cur)
}

func WithWorkflow(ctx context.Context, workflow string) context.Context {
	return WithWorkflowProvider(ctx, workflow, "")
}

func WorkflowFromContext(ctx context.Context) string {
	return labelOrUnknown(callFromContext(ctx).workflow)
}

func ProviderFromContext(ctx context.Context) string {
	return labelOrUnknown(callFromContext(ctx).provider)
}

func callFromContext(ctx context.Context) llmCall {
	if ctx == nil {
		return llmCall{}
	}
	c, _ := ctx.Value(llmCallKey{}).(llmCall)
	return c
}

func labelOrUnknown(s string) string {
	if s == "" {
		return unknownLabel
	}
	return s
}
