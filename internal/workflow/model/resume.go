// Package model 简历工作流的输入与元数据
package model

import "time"

// ResumeGenerateInput 一次简历生成的模型调用输入。
// Provider / Model / Temperature / MaxTokens 在进入 chain 前已按配置补全。
type ResumeGenerateInput struct {
	// Workflow 用于日志与指标标签，例如 resume_generate
	Workflow string
	// Prompt 已渲染的提示词
	Prompt string

	Provider    string
	Model       string
	Temperature *float32
	MaxTokens   *int
	// JSONMode 请求 response_format=json_object
	JSONMode bool
}

// GenerationMeta 一次生成实际使用的模型参数与 token 用量
type GenerationMeta struct {
	Workflow         string
	Provider         string
	Model            string
	Temperature      float64
	MaxTokens        int
	PromptTokens     int
	CompletionTokens int
	GeneratedAt      time.Time
}

// NewGenerationMeta 从调用输入生成元数据，token 用量由调用方补充
func NewGenerationMeta(in *ResumeGenerateInput) GenerationMeta {
	meta := GenerationMeta{GeneratedAt: time.Now().UTC()}
	if in == nil {
		return meta
	}
	meta.Workflow = in.Workflow
	meta.Provider = in.Provider
	meta.Model = in.Model
	if in.Temperature != nil {
		meta.Temperature = float64(*in.Temperature)
	}
	if in.MaxTokens != nil {
		meta.MaxTokens = *in.MaxTokens
	}
	return meta
}
