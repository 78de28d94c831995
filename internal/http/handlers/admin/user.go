package admin

import (
	"strings"

	"github.com/dujiao-next/storefront/internal/constants"
	handlershared "github.com/dujiao-next/storefront/internal/http/handlers/shared"
	"github.com/dujiao-next/storefront/internal/http/response"
	"github.com/dujiao-next/storefront/internal/repository"

	"github.com/gin-gonic/gin"
)

// UserStatusRequest 用户状态请求
type UserStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// GetAdminUsers 用户列表
func (h *Handler) GetAdminUsers(c *gin.Context) {
	page, pageSize := handlershared.PageQuery(c)
	createdFrom, err := handlershared.ParseTimeNullable(c.Query("created_from"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	createdTo, err := handlershared.ParseTimeNullable(c.Query("created_to"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	users, total, err := h.UserAuthService.ListUsers(repository.UserListFilter{
		Page:        page,
		PageSize:    pageSize,
		Keyword:     strings.TrimSpace(c.Query("keyword")),
		Status:      strings.TrimSpace(c.Query("status")),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.user_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, users, response.NewPagination(page, pageSize, total))
}

// GetAdminUser 用户详情
func (h *Handler) GetAdminUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	user, err := h.UserAuthService.GetUserByID(id)
	if err != nil {
		respondMappedError(c, err, handlershared.AuthErrorRules, "error.user_fetch_failed")
		return
	}
	response.Success(c, user)
}

// UpdateUserStatus 启用或禁用用户
func (h *Handler) UpdateUserStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req UserStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	status := strings.ToLower(strings.TrimSpace(req.Status))
	if status != constants.UserStatusActive && status != constants.UserStatusDisabled {
		respondError(c, response.CodeBadRequest, "error.user_status_invalid", nil)
		return
	}
	user, err := h.UserAuthService.SetUserStatus(id, status)
	if err != nil {
		respondMappedError(c, err, handlershared.AuthErrorRules, "error.user_update_failed")
		return
	}
	response.Success(c, user)
}
