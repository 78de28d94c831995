package shared

import (
	"strconv"
	"strings"
	"time"

	"github.com/dujiao-next/storefront/internal/http/response"

	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// PageQuery 读取 page 与 page_size，非法值回落为第一页与默认条数，条数上限 100
func PageQuery(c *gin.Context) (int, int) {
	page := queryInt(c, "page")
	if page < 1 {
		page = 1
	}
	size := queryInt(c, "page_size")
	switch {
	case size <= 0:
		size = defaultPageSize
	case size > maxPageSize:
		size = maxPageSize
	}
	return page, size
}

func queryInt(c *gin.Context, name string) int {
	value, err := strconv.Atoi(strings.TrimSpace(c.Query(name)))
	if err != nil {
		return 0
	}
	return value
}

func parsePositiveUint(raw string) (uint, bool) {
	value, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || value == 0 {
		return 0, false
	}
	return uint(value), true
}

// ParseUintParam 路径参数必须是正整数
func ParseUintParam(c *gin.Context, name string) (uint, bool) {
	return parsePositiveUint(c.Param(name))
}

// ParseUintQuery 可选过滤参数，缺省或非法时为 0 表示不过滤
func ParseUintQuery(c *gin.Context, name string) uint {
	value, _ := parsePositiveUint(c.Query(name))
	return value
}

// ParseBoolQuery 缺省或非法时返回 nil
func ParseBoolQuery(c *gin.Context, name string) *bool {
	value, err := strconv.ParseBool(strings.TrimSpace(c.Query(name)))
	if err != nil {
		return nil
	}
	return &value
}

var nullableTimeLayouts = []string{time.RFC3339, time.DateTime, time.DateOnly}

// ParseTimeNullable 支持 RFC3339、"2006-01-02 15:04:05" 与纯日期，非 RFC3339 按本地时区解析
func ParseTimeNullable(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var lastErr error
	for _, layout := range nullableTimeLayouts {
		t, err := time.ParseInLocation(layout, raw, time.Local)
		if err == nil {
			return &t, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// BindJSON 解析请求体，失败时写回 400 并返回 false
func BindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		RespondError(c, response.CodeBadRequest, "error.bad_request", err)
		return false
	}
	return true
}
