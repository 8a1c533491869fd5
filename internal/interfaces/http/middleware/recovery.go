// Package middleware 提供 HTTP 中间件
package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	apperrors "resume-ai-api/pkg/errors"
	"resume-ai-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Recovery Panic 恢复中间件，返回与业务错误一致的响应结构
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			// 客户端断开时 net/http 使用的哨兵 panic，继续向上传递
			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rec)
			}

			logger.Error(c.Request.Context(), "panic recovered",
				fmt.Errorf("%v", rec),
				"stack", string(debug.Stack()),
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
			)

			if c.Writer.Written() {
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"code":     http.StatusInternalServerError,
				"message":  apperrors.ErrInternalError.Message,
				"error":    gin.H{"error_code": string(apperrors.CodeInternalError)},
				"trace_id": c.GetString("trace_id"),
			})
		}()

		c.Next()
	}
}
