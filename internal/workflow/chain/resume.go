package chain

import (
	"context"
	"fmt"
	"strings"
	"sync"

	openaiopts "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	llmctx "resume-ai-api/internal/domain/service"
	wfmodel "resume-ai-api/internal/workflow/model"
	wfnode "resume-ai-api/internal/workflow/node"
	workflowport "resume-ai-api/internal/workflow/port"
	"resume-ai-api/pkg/logger"
)

// ResumeChain init -> template -> llm -> finalize
type ResumeChain struct {
	factory workflowport.ChatModelFactory

	chainOnce sync.Once
	chain     compose.Runnable[*wfmodel.ResumeGenerateInput, *schema.Message]
	chainErr  error
}

func NewResumeChain(factory workflowport.ChatModelFactory) *ResumeChain {
	return &ResumeChain{factory: factory}
}

func (c *ResumeChain) Invoke(ctx context.Context, in *wfmodel.ResumeGenerateInput) (*schema.Message, error) {
	if c == nil || c.factory == nil {
		return nil, fmt.Errorf("llm factory not configured")
	}
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}

	chain, err := c.getChain()
	if err != nil {
		return nil, err
	}
	return chain.Invoke(ctx, in)
}

type resumeChainState struct {
	In       *wfmodel.ResumeGenerateInput
	Messages []*schema.Message
	OutMsg   *schema.Message
}

func (c *ResumeChain) getChain() (compose.Runnable[*wfmodel.ResumeGenerateInput, *schema.Message], error) {
	c.chainOnce.Do(func() {
		c.chain, c.chainErr = c.buildChain(context.Background())
	})
	return c.chain, c.chainErr
}

func (c *ResumeChain) buildChain(ctx context.Context) (compose.Runnable[*wfmodel.ResumeGenerateInput, *schema.Message], error) {
	chain := compose.NewChain[*wfmodel.ResumeGenerateInput, *schema.Message]()

	chain.AppendLambda(
		compose.InvokableLambda(func(_ context.Context, in *wfmodel.ResumeGenerateInput) (*resumeChainState, error) {
			if in == nil {
				return nil, fmt.Errorf("input is nil")
			}
			if strings.TrimSpace(in.Prompt) == "" {
				return nil, fmt.Errorf("prompt is empty")
			}
			return &resumeChainState{In: in}, nil
		}),
		compose.WithNodeName("resume.init"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(_ context.Context, st *resumeChainState) (*resumeChainState, error) {
			if st == nil || st.In == nil {
				return nil, fmt.Errorf("state is nil")
			}
			st.Messages = []*schema.Message{schema.UserMessage(st.In.Prompt)}
			return st, nil
		}),
		compose.WithNodeName("resume.template"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, st *resumeChainState) (*resumeChainState, error) {
			if st == nil || st.In == nil {
				return nil, fmt.Errorf("state is nil")
			}

			provider := strings.TrimSpace(st.In.Provider)
			ctx = llmctx.WithWorkflowProvider(ctx, st.In.Workflow, provider)
			chatModel, err := c.factory.Get(ctx, provider)
			if err != nil {
				return nil, err
			}

			outMsg, err := chatModel.Generate(ctx, st.Messages, buildResumeModelOptions(st.In, st.In.JSONMode)...)
			if err != nil && st.In.JSONMode && wfnode.IsResponseFormatUnsupportedError(err) {
				logger.Warn(ctx, "llm json mode not supported, fallback to prompt-only",
					"provider", provider,
					"model", strings.TrimSpace(st.In.Model),
					"error", err.Error(),
				)
				outMsg, err = chatModel.Generate(ctx, st.Messages, buildResumeModelOptions(st.In, false)...)
			}
			if err != nil {
				return nil, err
			}
			if outMsg == nil {
				return nil, fmt.Errorf("empty llm response")
			}
			st.OutMsg = outMsg
			return st, nil
		}),
		compose.WithNodeName("resume.llm"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(_ context.Context, st *resumeChainState) (*schema.Message, error) {
			if st == nil || st.OutMsg == nil {
				return nil, fmt.Errorf("state is nil")
			}
			return st.OutMsg, nil
		}),
		compose.WithNodeName("resume.finalize"),
	)

	return chain.Compile(ctx)
}

func buildResumeModelOptions(in *wfmodel.ResumeGenerateInput, jsonMode bool) []model.Option {
	opts := make([]model.Option, 0, 4)
	if in == nil {
		return opts
	}
	if in.Temperature != nil {
		opts = append(opts, model.WithTemperature(*in.Temperature))
	}
	if in.MaxTokens != nil {
		opts = append(opts, model.WithMaxTokens(*in.MaxTokens))
	}
	if strings.TrimSpace(in.Model) != "" {
		opts = append(opts, model.WithModel(strings.TrimSpace(in.Model)))
	}
	if jsonMode {
		opts = append(opts, openaiopts.WithExtraFields(map[string]any{
			"response_format": map[string]any{"type": "json_object"},
		}))
	}
	return opts
}
