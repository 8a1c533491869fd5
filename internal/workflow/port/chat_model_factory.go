package port

import (
	"context"

	"github.com/cloudwego/eino/components/model"

	"resume-ai-api/internal/workflow/prompt"
)

// ChatModelFactory 定义工作流层对 LLM ChatModel 的最小依赖（port）。
// name 为空时使用默认 provider。
type ChatModelFactory interface {
	Get(ctx context.Context, name string) (model.BaseChatModel, error)
}

// PromptRenderer 按提示词 ID 渲染模板
type PromptRenderer interface {
	Render(ctx context.Context, id prompt.PromptID, values map[string]string) (string, error)
}
