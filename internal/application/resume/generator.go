// Package resume 简历生成与分享的应用服务
package resume

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	workflowchain "resume-ai-api/internal/workflow/chain"
	wfmodel "resume-ai-api/internal/workflow/model"
	wfnode "resume-ai-api/internal/workflow/node"
	workflowport "resume-ai-api/internal/workflow/port"
	"resume-ai-api/internal/workflow/prompt"
	apperrors "resume-ai-api/pkg/errors"
	"resume-ai-api/pkg/logger"
	"resume-ai-api/pkg/metrics"
	"resume-ai-api/pkg/tracer"
)

const (
	WorkflowGenerate         = "resume_generate"
	WorkflowGenerateTailored = "resume_generate_tailored"
)

// ModelCatalog 按配置补全请求未指定的 provider / model 与采样参数
type ModelCatalog interface {
	DefaultProvider() string
	ModelFor(provider string) string
	Sampling(provider string) (temperature *float32, maxTokens *int)
}

// GenerateRequest 生成请求，Provider / Model 为空时使用配置默认值
type GenerateRequest struct {
	UserDescription string
	JobDescription  string
	Provider        string
	Model           string
}

// GenerateResult 解析后的简历。Data 永不为 nil，解析失败时为错误描述。
type GenerateResult struct {
	Think    *string
	Data     map[string]any
	Strategy wfnode.Strategy
	Meta     wfmodel.GenerationMeta
}

// GeneratorOptions 生成器可选项
type GeneratorOptions struct {
	JSONMode bool
	Catalog  ModelCatalog
}

type Generator struct {
	prompts   workflowport.PromptRenderer
	chain     *workflowchain.ResumeChain
	extractor *wfnode.Extractor
	opts      GeneratorOptions
}

func NewGenerator(prompts workflowport.PromptRenderer, factory workflowport.ChatModelFactory, extractor *wfnode.Extractor, opts GeneratorOptions) *Generator {
	if extractor == nil {
		extractor = wfnode.NewExtractor(wfnode.ExtractorOptions{})
	}
	return &Generator{
		prompts:   prompts,
		chain:     workflowchain.NewResumeChain(factory),
		extractor: extractor,
		opts:      opts,
	}
}

// Generate 根据用户描述生成简历（resume_v1）
func (g *Generator) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	if strings.TrimSpace(req.UserDescription) == "" {
		return nil, apperrors.ErrInvalidParam.WithDetail("userDescription is required")
	}
	return g.run(ctx, WorkflowGenerate, prompt.PromptResumeV1, req, map[string]string{
		"userDescription": req.UserDescription,
	})
}

// GenerateTailored 根据用户描述与职位描述生成定制简历（job_resume_v1）
func (g *Generator) GenerateTailored(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	if strings.TrimSpace(req.UserDescription) == "" {
		return nil, apperrors.ErrInvalidParam.WithDetail("userDescription is required")
	}
	if strings.TrimSpace(req.JobDescription) == "" {
		return nil, apperrors.ErrInvalidParam.WithDetail("jobDescription is required")
	}
	return g.run(ctx, WorkflowGenerateTailored, prompt.PromptJobResumeV1, req, map[string]string{
		"userDescription": req.UserDescription,
		"jobDescription":  req.JobDescription,
	})
}

// run 渲染提示词 -> 调用模型 -> 解析输出
func (g *Generator) run(ctx context.Context, workflow string, promptID prompt.PromptID, req GenerateRequest, values map[string]string) (res *GenerateResult, err error) {
	if g == nil || g.prompts == nil || g.chain == nil {
		return nil, apperrors.ErrInternalError.WithDetail("resume workflow not configured")
	}

	ctx, span := tracer.Start(ctx, "resume."+workflow, trace.WithAttributes(
		attribute.String("resume.prompt_id", string(promptID)),
	))
	start := time.Now()
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		metrics.ResumeGenerationTotal.WithLabelValues(workflow, status).Inc()
		metrics.ResumeGenerationDuration.WithLabelValues(workflow).Observe(time.Since(start).Seconds())
		span.End()
	}()

	text, err := g.prompts.Render(ctx, promptID, values)
	if err != nil {
		if errors.Is(err, prompt.ErrPromptNotFound) {
			return nil, apperrors.ErrPromptNotFound.WithDetail(string(promptID)).WithError(err)
		}
		return nil, apperrors.ErrGenerationFailed.WithError(fmt.Errorf("render prompt %s: %w", promptID, err))
	}

	in := g.buildInput(workflow, text, req)
	span.SetAttributes(
		attribute.String("llm.provider", in.Provider),
		attribute.String("llm.model", in.Model),
	)
	outMsg, err := g.chain.Invoke(ctx, in)
	if err != nil {
		logger.Error(ctx, "resume llm call failed", err,
			"workflow", workflow,
			"provider", in.Provider,
		)
		return nil, apperrors.ErrLLMCallFailed.WithError(err)
	}

	extraction := g.extractor.Extract(outMsg.Content)
	metrics.ExtractionTotal.WithLabelValues(string(extraction.Strategy), strconv.FormatBool(extraction.Reasoning != nil)).Inc()
	span.SetAttributes(attribute.String("resume.extraction_strategy", string(extraction.Strategy)))

	if extraction.Failed() {
		logger.Warn(ctx, "model response could not be parsed as json",
			"workflow", workflow,
			"response_len", len(outMsg.Content),
		)
	} else {
		logger.Debug(ctx, "model response parsed",
			"workflow", workflow,
			"strategy", string(extraction.Strategy),
			"has_reasoning", extraction.Reasoning != nil,
		)
	}

	meta := usageMeta(in, outMsg.ResponseMeta)
	logger.Info(ctx, "resume generated",
		"workflow", workflow,
		"provider", meta.Provider,
		"model", meta.Model,
		"temperature", meta.Temperature,
		"prompt_tokens", meta.PromptTokens,
		"completion_tokens", meta.CompletionTokens,
	)

	return &GenerateResult{
		Think:    extraction.Reasoning,
		Data:     extraction.Data,
		Strategy: extraction.Strategy,
		Meta:     meta,
	}, nil
}

// buildInput 请求中的 provider / model 优先，其余取配置值
func (g *Generator) buildInput(workflow, text string, req GenerateRequest) *wfmodel.ResumeGenerateInput {
	in := &wfmodel.ResumeGenerateInput{
		Workflow: workflow,
		Prompt:   text,
		Provider: strings.TrimSpace(req.Provider),
		Model:    strings.TrimSpace(req.Model),
		JSONMode: g.opts.JSONMode,
	}
	c := g.opts.Catalog
	if c == nil {
		return in
	}
	if in.Provider == "" {
		in.Provider = c.DefaultProvider()
	}
	if in.Model == "" {
		in.Model = c.ModelFor(in.Provider)
	}
	in.Temperature, in.MaxTokens = c.Sampling(in.Provider)
	return in
}

func usageMeta(in *wfmodel.ResumeGenerateInput, rm *schema.ResponseMeta) wfmodel.GenerationMeta {
	meta := wfmodel.NewGenerationMeta(in)
	if rm != nil && rm.Usage != nil {
		meta.PromptTokens = rm.Usage.PromptTokens
		meta.CompletionTokens = rm.Usage.CompletionTokens
	}
	return meta
}
