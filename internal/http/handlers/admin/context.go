package admin

import (
	handlershared "github.com/dujiao-next/storefront/internal/http/handlers/shared"
	"github.com/dujiao-next/storefront/internal/http/response"
	"github.com/dujiao-next/storefront/internal/provider"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 后台管理接口
type Handler struct {
	*provider.Container
}

func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}

func getAdminID(c *gin.Context) (uint, bool) {
	return handlershared.RequireContextID(c, "admin_id")
}

func currentUsername(c *gin.Context) string {
	return handlershared.ContextString(c, "username")
}

func currentIsSuper(c *gin.Context) bool {
	flag, _ := handlershared.ContextValue[bool](c, "admin_is_super")
	return flag
}

// parseIDParam 解析路径 ID，失败时直接写回 400
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, ok := handlershared.ParseUintParam(c, name)
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return 0, false
	}
	return id, true
}

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

func respondMappedError(c *gin.Context, err error, rules []handlershared.ErrorRule, fallbackKey string) {
	handlershared.RespondMappedError(c, err, rules, response.CodeInternal, fallbackKey)
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	return handlershared.BindJSON(c, dst)
}
