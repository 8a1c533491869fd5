// Package router 提供 HTTP 路由配置
package router

import (
	"resume-ai-api/internal/interfaces/http/handler"

	"github.com/gin-gonic/gin"
)

// RegisterV1Routes 注册 v1 版本路由
func RegisterV1Routes(
	v1 *gin.RouterGroup,
	resumeHandler *handler.ResumeHandler,
	healthHandler *handler.HealthHandler,
) {
	resume := v1.Group("/resume")
	{
		resume.POST("/generate", resumeHandler.Generate)
		resume.POST("/generate-tailored", resumeHandler.GenerateTailored)
		resume.POST("/send-whatsapp", resumeHandler.SendWhatsApp)
		resume.POST("/sendWhatsApp", resumeHandler.SendWhatsApp) // 兼容旧前端
		resume.GET("/health", healthHandler.Health)
	}
}
