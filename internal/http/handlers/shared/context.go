package shared

import (
	"strings"

	"github.com/dujiao-next/storefront/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ContextValue 读取中间件写入的上下文值，缺失或类型不符时 ok 为 false
func ContextValue[T any](c *gin.Context, key string) (T, bool) {
	var zero T
	raw, exists := c.Get(key)
	if !exists {
		return zero, false
	}
	value, ok := raw.(T)
	return value, ok
}

// ContextString 读取字符串上下文值并去除首尾空白
func ContextString(c *gin.Context, key string) string {
	value, _ := ContextValue[string](c, key)
	return strings.TrimSpace(value)
}

// RequireContextID 读取鉴权中间件写入的主体 ID，缺失时写回 401，类型错误时写回 500
func RequireContextID(c *gin.Context, key string) (uint, bool) {
	if _, exists := c.Get(key); !exists {
		RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return 0, false
	}
	id, ok := ContextValue[uint](c, key)
	if !ok {
		RespondError(c, response.CodeInternal, "error.context_type_invalid", nil)
		return 0, false
	}
	if id == 0 {
		RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return 0, false
	}
	return id, true
}
