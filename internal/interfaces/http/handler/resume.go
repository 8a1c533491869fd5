package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-ai-api/internal/application/resume"
	"resume-ai-api/internal/interfaces/http/dto"
	"resume-ai-api/pkg/logger"
)

const (
	shareSuccessMessage = "Resume sent to WhatsApp successfully"
	shareFailureMessage = "Failed to send resume to WhatsApp. Please check your phone number or try again later."
)

// ResumeGenerator 简历生成
type ResumeGenerator interface {
	Generate(ctx context.Context, req resume.GenerateRequest) (*resume.GenerateResult, error)
	GenerateTailored(ctx context.Context, req resume.GenerateRequest) (*resume.GenerateResult, error)
}

// ResumeSharer 简历分享
type ResumeSharer interface {
	Share(ctx context.Context, req resume.ShareRequest) (*resume.ShareResult, error)
}

// ResumeHandler 简历处理器
type ResumeHandler struct {
	generator ResumeGenerator
	sharer    ResumeSharer
}

// NewResumeHandler 创建简历处理器
func NewResumeHandler(generator ResumeGenerator, sharer ResumeSharer) *ResumeHandler {
	return &ResumeHandler{
		generator: generator,
		sharer:    sharer,
	}
}

// Generate 根据用户描述生成简历
// @Summary 生成简历
// @Tags Resume
// @Accept json
// @Produce json
// @Param body body dto.GenerateResumeRequest true "生成请求"
// @Success 200 {object} dto.ResumeResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /api/v1/resume/generate [post]
func (h *ResumeHandler) Generate(c *gin.Context) {
	h.generate(c, h.generator.Generate)
}

// GenerateTailored 根据用户描述与职位描述生成定制简历
// @Summary 生成定制简历
// @Tags Resume
// @Accept json
// @Produce json
// @Param body body dto.GenerateResumeRequest true "生成请求"
// @Success 200 {object} dto.ResumeResponse
// @Router /api/v1/resume/generate-tailored [post]
func (h *ResumeHandler) GenerateTailored(c *gin.Context) {
	h.generate(c, h.generator.GenerateTailored)
}

type generateFunc func(ctx context.Context, req resume.GenerateRequest) (*resume.GenerateResult, error)

func (h *ResumeHandler) generate(c *gin.Context, fn generateFunc) {
	ctx := c.Request.Context()

	var req dto.GenerateResumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body")
		return
	}

	res, err := fn(ctx, req.ToGenerateRequest())
	if err != nil {
		logger.Error(ctx, "failed to generate resume", err)
		dto.AppError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToResumeResponse(res))
}

// SendWhatsApp 将简历交给消息通道
// @Summary 分享简历到 WhatsApp
// @Tags Resume
// @Accept json
// @Produce json
// @Param body body dto.ShareRequest true "分享请求"
// @Success 200 {object} dto.ShareResponse
// @Failure 400 {object} dto.ShareResponse
// @Failure 500 {object} dto.ShareResponse
// @Router /api/v1/resume/send-whatsapp [post]
func (h *ResumeHandler) SendWhatsApp(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ShareResponse{Message: "invalid request body"})
		return
	}

	res, err := h.sharer.Share(ctx, resume.ShareRequest{
		PhoneNumber: req.PhoneNumber,
		ResumeData:  req.ResumeData,
	})
	if errors.Is(err, resume.ErrPhoneRequired) {
		c.JSON(http.StatusBadRequest, dto.ShareResponse{Message: resume.ErrPhoneRequired.Detail})
		return
	}
	if err != nil {
		logger.Error(ctx, "failed to share resume", err)
		c.JSON(http.StatusInternalServerError, dto.ShareResponse{Message: shareFailureMessage})
		return
	}

	demo := res.DemoMode
	c.JSON(http.StatusOK, dto.ShareResponse{
		Success:    true,
		IsDemoMode: &demo,
		Message:    shareSuccessMessage,
	})
}
