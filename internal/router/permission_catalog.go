package router

import (
	"cmp"
	"slices"
	"strings"

	"github.com/dujiao-next/storefront/internal/authz"
	"github.com/dujiao-next/storefront/internal/http/response"

	"github.com/gin-gonic/gin"
)

const (
	adminRoutePrefix = "/api/v1/admin/"
	adminLoginRoute  = "/api/v1/admin/login"
)

type adminPermissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

// permissionCatalogHandler 在请求时读取路由表，保证目录与实际注册的路由一致
func permissionCatalogHandler(engine *gin.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		response.Success(c, buildAdminPermissionCatalog(engine))
	}
}

// buildAdminPermissionCatalog 列出可授权的后台路由，登录接口不参与授权
func buildAdminPermissionCatalog(engine *gin.Engine) []adminPermissionCatalogItem {
	items := make([]adminPermissionCatalogItem, 0)
	if engine == nil {
		return items
	}
	seen := make(map[string]bool)
	for _, route := range engine.Routes() {
		method := strings.ToUpper(strings.TrimSpace(route.Method))
		switch {
		case method == "", method == "OPTIONS", method == "HEAD":
			continue
		case !strings.HasPrefix(route.Path, adminRoutePrefix), route.Path == adminLoginRoute:
			continue
		}
		object := authz.NormalizeObject(route.Path)
		permission := method + ":" + object
		if seen[permission] {
			continue
		}
		seen[permission] = true
		items = append(items, adminPermissionCatalogItem{
			Module:     deriveAdminPermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}
	slices.SortFunc(items, func(a, b adminPermissionCatalogItem) int {
		return cmp.Or(
			cmp.Compare(a.Module, b.Module),
			cmp.Compare(a.Object, b.Object),
			cmp.Compare(a.Method, b.Method),
		)
	})
	return items
}

// deriveAdminPermissionModule 取 /admin 之后的第一段作为模块名
func deriveAdminPermissionModule(object string) string {
	segments := strings.Split(strings.Trim(strings.TrimSpace(object), "/"), "/")
	switch {
	case segments[0] == "":
		return "system"
	case segments[0] == "admin" && len(segments) > 1:
		return segments[1]
	default:
		return segments[0]
	}
}
