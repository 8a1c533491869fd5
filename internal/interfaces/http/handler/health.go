// Package handler 提供 HTTP 请求处理器
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"resume-ai-api/internal/interfaces/http/dto"
)

const healthMessage = "Resume AI Backend is running"

// HealthChecker 可探测的外部依赖
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler 健康检查处理器
type HealthHandler struct {
	version string
	// redis 为 nil 表示未启用，不影响就绪态
	redis HealthChecker
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(version string, redis HealthChecker) *HealthHandler {
	return &HealthHandler{
		version: version,
		redis:   redis,
	}
}

type readinessCheck struct {
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	LatencyMs int64  `json:"latency_ms,omitempty"`
}

type readinessResponse struct {
	Status string                     `json:"status"`
	Checks map[string]*readinessCheck `json:"checks,omitempty"`
}

// Health 服务状态
// @Summary 服务状态
// @Tags System
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, h.status(""))
}

// APIHealth 与 Health 相同，额外返回探测端点
// @Router /api/health [get]
func (h *HealthHandler) APIHealth(c *gin.Context) {
	c.JSON(http.StatusOK, h.status(c.FullPath()))
}

func (h *HealthHandler) status(endpoint string) *dto.HealthResponse {
	return &dto.HealthResponse{
		Status:    "healthy",
		Message:   healthMessage,
		Timestamp: time.Now().UnixMilli(),
		Version:   h.version,
		Endpoint:  endpoint,
	}
}

// Ready 就绪检查接口
// @Summary 就绪检查
// @Description 检查服务是否可以接收流量
// @Tags System
// @Produce json
// @Router /ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]*readinessCheck{
		"redis": {Status: "disabled"},
	}
	ready := true

	// Redis（启用时必需）
	if h.redis != nil {
		start := time.Now()
		err := h.redis.HealthCheck(ctx)
		checks["redis"].LatencyMs = time.Since(start).Milliseconds()
		if err != nil {
			checks["redis"].Status = "error"
			checks["redis"].Error = err.Error()
			ready = false
		} else {
			checks["redis"].Status = "ok"
		}
	}

	resp := readinessResponse{
		Status: "ok",
		Checks: checks,
	}
	if !ready {
		resp.Status = "not_ready"
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Live 存活检查接口
// @Router /live [get]
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
