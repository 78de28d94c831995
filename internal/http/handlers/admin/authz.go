package admin

import (
	"net/url"
	"strings"
	"time"

	handlershared "github.com/dujiao-next/storefront/internal/http/handlers/shared"
	"github.com/dujiao-next/storefront/internal/http/response"
	"github.com/dujiao-next/storefront/internal/models"

	"github.com/gin-gonic/gin"
)

type authzRolePayload struct {
	Role string `json:"role" binding:"required"`
}

type authzPolicyPayload struct {
	Role   string `json:"role" binding:"required"`
	Object string `json:"object" binding:"required"`
	Action string `json:"action" binding:"required"`
}

type authzSetAdminRolesPayload struct {
	Roles []string `json:"roles"`
}

type authzAdminView struct {
	ID          uint       `json:"id"`
	Username    string     `json:"username"`
	Role        string     `json:"role"`
	LastLoginAt *time.Time `json:"last_login_at"`
	CreatedAt   time.Time  `json:"created_at"`
	Roles       []string   `json:"roles"`
}

func respondAuthzError(c *gin.Context, err error) {
	respondMappedError(c, err, handlershared.AuthzErrorRules, "error.authz_update_failed")
}

// GetAuthzMe 当前管理员的角色与生效策略
func (h *Handler) GetAuthzMe(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	roles, err := h.AuthzService.GetAdminRoles(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_fetch_failed", err)
		return
	}
	policies, err := h.AuthzService.GetAdminPolicies(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_fetch_failed", err)
		return
	}
	response.Success(c, gin.H{
		"admin_id": adminID,
		"is_super": currentIsSuper(c),
		"roles":    roles,
		"policies": policies,
	})
}

func (h *Handler) ListAuthzRoles(c *gin.Context) {
	roles, err := h.AuthzService.ListRoles()
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_fetch_failed", err)
		return
	}
	response.Success(c, roles)
}

// ListAuthzAdmins 管理员列表附带各自的授权角色
func (h *Handler) ListAuthzAdmins(c *gin.Context) {
	admins, err := h.AdminRepo.List()
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_fetch_failed", err)
		return
	}
	views := make([]authzAdminView, 0, len(admins))
	for _, admin := range admins {
		roles, err := h.AuthzService.GetAdminRoles(admin.ID)
		if err != nil {
			respondError(c, response.CodeInternal, "error.authz_fetch_failed", err)
			return
		}
		views = append(views, authzAdminView{
			ID:          admin.ID,
			Username:    admin.Username,
			Role:        admin.Role,
			LastLoginAt: admin.LastLoginAt,
			CreatedAt:   admin.CreatedAt,
			Roles:       roles,
		})
	}
	response.Success(c, views)
}

func (h *Handler) CreateAuthzRole(c *gin.Context) {
	var req authzRolePayload
	if !bindJSON(c, &req) {
		return
	}
	role, err := h.AuthzService.EnsureRole(req.Role)
	if err != nil {
		respondAuthzError(c, err)
		return
	}
	requestLog(c).Infow("admin_authz_role_created", "operator", currentUsername(c), "role", role)
	response.Success(c, gin.H{"role": role})
}

// DeleteAuthzRole 内置角色返回 403
func (h *Handler) DeleteAuthzRole(c *gin.Context) {
	role, ok := roleParam(c)
	if !ok {
		return
	}
	if err := h.AuthzService.DeleteRole(role); err != nil {
		respondAuthzError(c, err)
		return
	}
	requestLog(c).Infow("admin_authz_role_deleted", "operator", currentUsername(c), "role", role)
	response.Success(c, nil)
}

func (h *Handler) GetAuthzRolePolicies(c *gin.Context) {
	role, ok := roleParam(c)
	if !ok {
		return
	}
	policies, err := h.AuthzService.GetRolePolicies(role)
	if err != nil {
		respondAuthzError(c, err)
		return
	}
	response.Success(c, policies)
}

func (h *Handler) GrantAuthzPolicy(c *gin.Context) {
	h.changePolicy(c, "admin_authz_policy_granted", h.AuthzService.GrantRolePolicy)
}

func (h *Handler) RevokeAuthzPolicy(c *gin.Context) {
	h.changePolicy(c, "admin_authz_policy_revoked", h.AuthzService.RevokeRolePolicy)
}

func (h *Handler) changePolicy(c *gin.Context, event string, apply func(role, object, action string) error) {
	var req authzPolicyPayload
	if !bindJSON(c, &req) {
		return
	}
	if err := apply(req.Role, req.Object, req.Action); err != nil {
		respondAuthzError(c, err)
		return
	}
	requestLog(c).Infow(event,
		"operator", currentUsername(c),
		"role", req.Role,
		"object", req.Object,
		"action", strings.ToUpper(strings.TrimSpace(req.Action)),
	)
	response.Success(c, nil)
}

func (h *Handler) GetAuthzAdminRoles(c *gin.Context) {
	admin, ok := h.loadTargetAdmin(c)
	if !ok {
		return
	}
	roles, err := h.AuthzService.GetAdminRoles(admin.ID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_fetch_failed", err)
		return
	}
	response.Success(c, roles)
}

// SetAuthzAdminRoles 整体替换管理员的角色集合
func (h *Handler) SetAuthzAdminRoles(c *gin.Context) {
	admin, ok := h.loadTargetAdmin(c)
	if !ok {
		return
	}
	var req authzSetAdminRolesPayload
	if !bindJSON(c, &req) {
		return
	}
	if err := h.AuthzService.SetAdminRoles(admin.ID, req.Roles); err != nil {
		respondAuthzError(c, err)
		return
	}
	requestLog(c).Infow("admin_authz_admin_roles_updated",
		"operator", currentUsername(c),
		"target_admin_id", admin.ID,
		"target_username", admin.Username,
		"roles", req.Roles,
	)
	response.Success(c, nil)
}

func (h *Handler) loadTargetAdmin(c *gin.Context) (*models.Admin, bool) {
	adminID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.admin_id_invalid", nil)
		return nil, false
	}
	admin, err := h.AdminRepo.GetByID(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_fetch_failed", err)
		return nil, false
	}
	if admin == nil {
		respondError(c, response.CodeNotFound, "error.admin_not_found", nil)
		return nil, false
	}
	return admin, true
}

// roleParam 路由中的角色名可能经过 URL 编码，如 role%3Aops
func roleParam(c *gin.Context) (string, bool) {
	raw := c.Param("role")
	if decoded, err := url.PathUnescape(raw); err == nil {
		raw = decoded
	}
	role := strings.TrimSpace(raw)
	if role == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return "", false
	}
	return role, true
}
