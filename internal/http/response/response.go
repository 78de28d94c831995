package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const successMsg = "success"

// Response 统一响应体。HTTP 状态码恒为 200，调用方以 status_code 判断结果
type Response struct {
	StatusCode int         `json:"status_code"`
	Msg        string      `json:"msg"`
	ErrorKey   string      `json:"error_key,omitempty"`
	Data       interface{} `json:"data"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"page_size"`
	Total     int64 `json:"total"`
	TotalPage int64 `json:"total_page"`
}

// NewPagination pageSize 非正数时总页数记为 0
func NewPagination(page, pageSize int, total int64) Pagination {
	var pages int64
	if pageSize > 0 {
		pages = (total + int64(pageSize) - 1) / int64(pageSize)
	}
	return Pagination{Page: page, PageSize: pageSize, Total: total, TotalPage: pages}
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{StatusCode: CodeOK, Msg: successMsg, Data: data})
}

func SuccessWithPage(c *gin.Context, data interface{}, pagination Pagination) {
	c.JSON(http.StatusOK, Response{StatusCode: CodeOK, Msg: successMsg, Data: data, Pagination: &pagination})
}

// Error 无错误键的失败响应，中间件拦截请求时使用
func Error(c *gin.Context, statusCode int, msg string) {
	fail(c, statusCode, "", msg)
}

// AppErrorResponse 输出 AppError，nil 视为内部错误
func AppErrorResponse(c *gin.Context, err *AppError) {
	if err == nil {
		fail(c, CodeInternal, "", "internal error")
		return
	}
	fail(c, err.Code, err.Key, err.Message)
}

// fail 失败响应的 data 只放 request_id，方便用户反馈时对照日志
func fail(c *gin.Context, code int, key, msg string) {
	var data interface{}
	if id := c.GetString("request_id"); id != "" {
		data = gin.H{"request_id": id}
	}
	c.JSON(http.StatusOK, Response{StatusCode: code, Msg: msg, ErrorKey: key, Data: data})
}
