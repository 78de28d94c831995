package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/dujiao-next/storefront/internal/models"
)

const authStateCacheTTL = 10 * time.Minute

// UserAuthState 顾客账号状态快照，鉴权中间件据此拦截被禁用的账号
type UserAuthState struct {
	UserID    uint   `json:"user_id"`
	Status    string `json:"status"`
	UpdatedAt int64  `json:"updated_at"`
}

// AdminAuthState 管理员快照，super_admin 角色跳过 RBAC
type AdminAuthState struct {
	AdminID   uint   `json:"admin_id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	UpdatedAt int64  `json:"updated_at"`
}

func userAuthStateKey(userID uint) string {
	return fmt.Sprintf("auth:user:%d", userID)
}

func adminAuthStateKey(adminID uint) string {
	return fmt.Sprintf("auth:admin:%d", adminID)
}

// BuildUserAuthState 从顾客模型构建快照
func BuildUserAuthState(user *models.User) *UserAuthState {
	if user == nil {
		return nil
	}
	return &UserAuthState{UserID: user.ID, Status: user.Status, UpdatedAt: time.Now().Unix()}
}

// BuildAdminAuthState 从管理员模型构建快照
func BuildAdminAuthState(admin *models.Admin) *AdminAuthState {
	if admin == nil {
		return nil
	}
	return &AdminAuthState{AdminID: admin.ID, Username: admin.Username, Role: admin.Role, UpdatedAt: time.Now().Unix()}
}

func getState[T any](ctx context.Context, id uint, key string) (*T, bool, error) {
	if id == 0 {
		return nil, false, nil
	}
	var state T
	hit, err := GetJSON(ctx, key, &state)
	if err != nil || !hit {
		return nil, false, err
	}
	return &state, true, nil
}

// GetUserAuthState 读取顾客快照
func GetUserAuthState(ctx context.Context, userID uint) (*UserAuthState, bool, error) {
	return getState[UserAuthState](ctx, userID, userAuthStateKey(userID))
}

// SetUserAuthState 写入顾客快照
func SetUserAuthState(ctx context.Context, state *UserAuthState) error {
	if state == nil || state.UserID == 0 {
		return nil
	}
	return SetJSON(ctx, userAuthStateKey(state.UserID), state, authStateCacheTTL)
}

// DelUserAuthState 账号状态变更后清除快照
func DelUserAuthState(ctx context.Context, userID uint) error {
	if userID == 0 {
		return nil
	}
	return Del(ctx, userAuthStateKey(userID))
}

// GetAdminAuthState 读取管理员快照
func GetAdminAuthState(ctx context.Context, adminID uint) (*AdminAuthState, bool, error) {
	return getState[AdminAuthState](ctx, adminID, adminAuthStateKey(adminID))
}

// SetAdminAuthState 写入管理员快照
func SetAdminAuthState(ctx context.Context, state *AdminAuthState) error {
	if state == nil || state.AdminID == 0 {
		return nil
	}
	return SetJSON(ctx, adminAuthStateKey(state.AdminID), state, authStateCacheTTL)
}
