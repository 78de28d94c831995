package public

import (
	handlershared "github.com/dujiao-next/storefront/internal/http/handlers/shared"
	"github.com/dujiao-next/storefront/internal/http/response"
	"github.com/dujiao-next/storefront/internal/provider"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 店铺前台接口，游客与登录用户共用
type Handler struct {
	*provider.Container
}

func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}

func getUserID(c *gin.Context) (uint, bool) {
	return handlershared.RequireContextID(c, "user_id")
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
