package admin

import (
	"time"

	handlershared "github.com/dujiao-next/storefront/internal/http/handlers/shared"
	"github.com/dujiao-next/storefront/internal/http/response"
	"github.com/dujiao-next/storefront/internal/models"

	"github.com/gin-gonic/gin"
)

type adminCredentials struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type adminPasswordChange struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// adminProfile 后台登录与 /me 共用的管理员视图
type adminProfile struct {
	ID          uint       `json:"id"`
	Username    string     `json:"username"`
	Role        string     `json:"role"`
	IsSuper     bool       `json:"is_super"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

func newAdminProfile(admin *models.Admin, isSuper bool) adminProfile {
	return adminProfile{
		ID:          admin.ID,
		Username:    admin.Username,
		Role:        admin.Role,
		IsSuper:     isSuper,
		LastLoginAt: admin.LastLoginAt,
	}
}

// AdminLogin 账号密码换取后台令牌
func (h *Handler) AdminLogin(c *gin.Context) {
	var creds adminCredentials
	if !bindJSON(c, &creds) {
		return
	}
	admin, token, expiresAt, err := h.AuthService.Login(creds.Username, creds.Password)
	if err != nil {
		requestLog(c).Warnw("admin_login_failed", "username", creds.Username, "error", err)
		respondMappedError(c, err, handlershared.AuthErrorRules, "error.internal")
		return
	}
	requestLog(c).Infow("admin_login_success", "admin_id", admin.ID)
	response.Success(c, gin.H{
		"token":      token,
		"expires_at": expiresAt.Format(time.RFC3339),
		"user":       newAdminProfile(admin, false),
	})
}

func (h *Handler) GetAdminMe(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	admin, err := h.AuthService.GetAdmin(adminID)
	if err != nil {
		respondMappedError(c, err, handlershared.AuthErrorRules, "error.internal")
		return
	}
	response.Success(c, newAdminProfile(admin, currentIsSuper(c)))
}

// UpdateAdminPassword 修改后立即刷新鉴权缓存，旧令牌随之失效
func (h *Handler) UpdateAdminPassword(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	var body adminPasswordChange
	if !bindJSON(c, &body) {
		return
	}
	if err := h.AuthService.ChangePassword(adminID, body.OldPassword, body.NewPassword); err != nil {
		respondMappedError(c, err, handlershared.AuthErrorRules, "error.user_update_failed")
		return
	}
	requestLog(c).Infow("admin_password_changed", "admin_id", adminID)
	response.Success(c, nil)
}
