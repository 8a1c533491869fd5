package dto

import (
	"resume-ai-api/internal/application/resume"
)

// GenerateResumeRequest 简历生成请求
type GenerateResumeRequest struct {
	UserDescription string `json:"userDescription"`
	JobDescription  string `json:"jobDescription,omitempty"`

	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`
}

// ToGenerateRequest 转换为应用层请求
func (r *GenerateResumeRequest) ToGenerateRequest() resume.GenerateRequest {
	return resume.GenerateRequest{
		UserDescription: r.UserDescription,
		JobDescription:  r.JobDescription,
		Provider:        r.Provider,
		Model:           r.Model,
	}
}

// ResumeResponse 简历生成响应；think 缺失时为 null
type ResumeResponse struct {
	Think *string        `json:"think"`
	Data  map[string]any `json:"data"`
}

// ToResumeResponse 由生成结果构造响应
func ToResumeResponse(res *resume.GenerateResult) *ResumeResponse {
	if res == nil {
		return &ResumeResponse{}
	}
	return &ResumeResponse{
		Think: res.Think,
		Data:  res.Data,
	}
}

// ShareRequest 分享简历请求
type ShareRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	ResumeData  string `json:"resumeData"`
}

// ShareResponse 分享简历响应，失败时不返回 isDemoMode
type ShareResponse struct {
	Success    bool   `json:"success"`
	IsDemoMode *bool  `json:"isDemoMode,omitempty"`
	Message    string `json:"message"`
}

// HealthResponse 服务状态响应
type HealthResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
	Version   string `json:"version,omitempty"`
	Endpoint  string `json:"endpoint,omitempty"`
}
