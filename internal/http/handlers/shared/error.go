package shared

import (
	"errors"

	"github.com/dujiao-next/storefront/internal/http/response"
	"github.com/dujiao-next/storefront/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID, ok := c.Get("request_id"); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// RespondError 按错误键返回响应，并在有原始错误时记录日志。
func RespondError(c *gin.Context, code int, key string, err error) {
	appErr := response.WrapError(code, key, Message(key), err)
	if err != nil {
		RequestLog(c).Errorw("handler_error",
			"code", appErr.Code,
			"key", appErr.Key,
			"error", err,
		)
	}
	response.AppErrorResponse(c, appErr)
}

// ErrorRule 业务错误到接口错误响应的映射。
type ErrorRule struct {
	Target error
	Code   int
	Key    string
}

// RespondMappedError 命中映射规则时返回对应错误，否则按兜底错误处理并记录原始错误。
func RespondMappedError(c *gin.Context, err error, rules []ErrorRule, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.Target) {
			RespondError(c, rule.Code, rule.Key, nil)
			return
		}
	}
	RespondError(c, fallbackCode, fallbackKey, err)
}

// ConcatErrorRules 合并多组映射规则。
func ConcatErrorRules(groups ...[]ErrorRule) []ErrorRule {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]ErrorRule, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}
