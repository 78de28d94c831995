package service

import (
	"context"
	"strings"
	"time"

	"github.com/dujiao-next/storefront/internal/cache"
	"github.com/dujiao-next/storefront/internal/config"
	"github.com/dujiao-next/storefront/internal/logger"
	"github.com/dujiao-next/storefront/internal/models"
	"github.com/dujiao-next/storefront/internal/repository"
)

// AuthService 后台管理员登录与改密
type AuthService struct {
	cfg       *config.Config
	adminRepo repository.AdminRepository
}

func NewAuthService(cfg *config.Config, adminRepo repository.AdminRepository) *AuthService {
	return &AuthService{cfg: cfg, adminRepo: adminRepo}
}

// Login 账号不存在与密码错误返回同一错误
func (s *AuthService) Login(username, password string) (*models.Admin, string, time.Time, error) {
	admin, err := s.adminRepo.GetByUsername(strings.TrimSpace(username))
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if admin == nil || !passwordMatches(admin.PasswordHash, password) {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	now := time.Now()
	token, expiresAt, err := IssueAdminToken(s.cfg.JWT, admin, now)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if err := s.adminRepo.TouchLastLogin(admin.ID, now); err != nil {
		return nil, "", time.Time{}, err
	}
	admin.LastLoginAt = &now
	s.refreshAuthState(admin)
	return admin, token, expiresAt, nil
}

func (s *AuthService) GetAdmin(adminID uint) (*models.Admin, error) {
	admin, err := s.adminRepo.GetByID(adminID)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, ErrAdminNotFound
	}
	return admin, nil
}

// ChangePassword 需要校验旧密码，新密码受密码策略约束
func (s *AuthService) ChangePassword(adminID uint, oldPassword, newPassword string) error {
	admin, err := s.GetAdmin(adminID)
	if err != nil {
		return err
	}
	hash, err := replacePassword(s.cfg.Security.PasswordPolicy, admin.PasswordHash, oldPassword, newPassword)
	if err != nil {
		return err
	}
	if err := s.adminRepo.UpdatePasswordHash(admin.ID, hash); err != nil {
		return err
	}
	admin.PasswordHash = hash
	s.refreshAuthState(admin)
	return nil
}

func (s *AuthService) refreshAuthState(admin *models.Admin) {
	if err := cache.SetAdminAuthState(context.Background(), cache.BuildAdminAuthState(admin)); err != nil {
		logger.Debugw("admin_auth_state_refresh_failed", "admin_id", admin.ID, "error", err)
	}
}
