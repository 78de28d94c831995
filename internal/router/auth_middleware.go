package router

import (
	"strings"

	"github.com/dujiao-next/storefront/internal/authz"
	"github.com/dujiao-next/storefront/internal/cache"
	"github.com/dujiao-next/storefront/internal/constants"
	handlershared "github.com/dujiao-next/storefront/internal/http/handlers/shared"
	"github.com/dujiao-next/storefront/internal/http/response"
	"github.com/dujiao-next/storefront/internal/logger"
	"github.com/dujiao-next/storefront/internal/repository"
	"github.com/dujiao-next/storefront/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	ctxAdminID             = "admin_id"
	ctxAdminUsername       = "username"
	ctxAdminRole           = "admin_role"
	adminIsSuperContextKey = "admin_is_super"
	ctxUserID              = "user_id"
	ctxUserEmail           = "user_email"
)

func abortUnauthorized(c *gin.Context, key string) {
	response.Error(c, response.CodeUnauthorized, handlershared.Message(key))
	c.Abort()
}

// bearerToken 读取 Bearer 令牌；失败时已写回 401
func bearerToken(c *gin.Context, secretKey string) (string, bool) {
	if secretKey == "" {
		abortUnauthorized(c, "error.jwt_secret_missing")
		return "", false
	}
	header := c.GetHeader("Authorization")
	if header == "" {
		abortUnauthorized(c, "error.auth_header_missing")
		return "", false
	}
	scheme, raw, found := strings.Cut(header, " ")
	raw = strings.TrimSpace(raw)
	if !found || scheme != "Bearer" || raw == "" {
		abortUnauthorized(c, "error.auth_header_invalid")
		return "", false
	}
	return raw, true
}

// JWTAuthMiddleware 管理端鉴权。管理员角色优先取自缓存，未命中时回源并回填。
func JWTAuthMiddleware(secretKey string, adminRepo repository.AdminRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c, secretKey)
		if !ok {
			return
		}
		claims, err := service.ParseAdminToken(raw, secretKey)
		if err != nil || adminRepo == nil {
			abortUnauthorized(c, "error.token_invalid")
			return
		}
		role, ok := resolveAdminRole(c, adminRepo, claims.AdminID)
		if !ok {
			abortUnauthorized(c, "error.token_invalid")
			return
		}
		c.Set(ctxAdminID, claims.AdminID)
		c.Set(ctxAdminUsername, claims.Username)
		c.Set(ctxAdminRole, role)
		c.Set(adminIsSuperContextKey, role == constants.AdminRoleSuper)
		c.Next()
	}
}

func resolveAdminRole(c *gin.Context, adminRepo repository.AdminRepository, adminID uint) (string, bool) {
	ctx := c.Request.Context()
	if state, hit, err := cache.GetAdminAuthState(ctx, adminID); err == nil && hit && state != nil {
		return state.Role, true
	}
	admin, err := adminRepo.GetByID(adminID)
	if err != nil || admin == nil {
		return "", false
	}
	if err := cache.SetAdminAuthState(ctx, cache.BuildAdminAuthState(admin)); err != nil {
		logger.Debugw("admin_auth_state_cache_failed", "admin_id", admin.ID, "error", err)
	}
	return admin.Role, true
}

// AdminRBACMiddleware 超级管理员直接放行，其余按路由模板与方法做 casbin 校验
func AdminRBACMiddleware(authzService *authz.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authzService == nil {
			logger.Errorw("admin_rbac_service_unavailable")
			abortUnauthorized(c, "error.unauthorized")
			return
		}
		if c.GetBool(adminIsSuperContextKey) {
			c.Next()
			return
		}
		adminID := c.GetUint(ctxAdminID)
		if adminID == 0 {
			abortUnauthorized(c, "error.unauthorized")
			return
		}
		resource := strings.TrimSpace(c.FullPath())
		if resource == "" {
			resource = c.Request.URL.Path
		}

		allowed, err := authzService.EnforceAdmin(adminID, resource, c.Request.Method)
		if err != nil {
			logger.Errorw("admin_rbac_enforce_failed", "admin_id", adminID, "method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
			abortUnauthorized(c, "error.unauthorized")
			return
		}
		if !allowed {
			logger.Warnw("admin_rbac_permission_denied", "admin_id", adminID, "method", c.Request.Method, "resource", authz.NormalizeObject(resource))
			response.Error(c, response.CodeForbidden, handlershared.Message("error.forbidden"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// UserJWTAuthMiddleware 顾客鉴权，被禁用的账号即使令牌未过期也立即拒绝
func UserJWTAuthMiddleware(secretKey string, userRepo repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c, secretKey)
		if !ok {
			return
		}
		claims, err := service.ParseUserToken(raw, secretKey)
		if err != nil || userRepo == nil {
			abortUnauthorized(c, "error.token_invalid")
			return
		}
		status, ok := resolveUserStatus(c, userRepo, claims.UserID)
		if !ok {
			abortUnauthorized(c, "error.token_invalid")
			return
		}
		if !isActiveUserStatus(status) {
			abortUnauthorized(c, "error.user_disabled")
			return
		}
		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxUserEmail, claims.Email)
		c.Next()
	}
}

func resolveUserStatus(c *gin.Context, userRepo repository.UserRepository, userID uint) (string, bool) {
	ctx := c.Request.Context()
	if state, hit, err := cache.GetUserAuthState(ctx, userID); err == nil && hit && state != nil {
		return state.Status, true
	}
	user, err := userRepo.GetByID(userID)
	if err != nil || user == nil {
		return "", false
	}
	if err := cache.SetUserAuthState(ctx, cache.BuildUserAuthState(user)); err != nil {
		logger.Debugw("user_auth_state_cache_failed", "user_id", user.ID, "error", err)
	}
	return user.Status, true
}

func isActiveUserStatus(status string) bool {
	return strings.EqualFold(strings.TrimSpace(status), constants.UserStatusActive)
}
