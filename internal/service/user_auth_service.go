package service

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/dujiao-next/storefront/internal/cache"
	"github.com/dujiao-next/storefront/internal/config"
	"github.com/dujiao-next/storefront/internal/constants"
	"github.com/dujiao-next/storefront/internal/logger"
	"github.com/dujiao-next/storefront/internal/models"
	"github.com/dujiao-next/storefront/internal/repository"
)

// UserAuthService 顾客注册、登录与账户资料
type UserAuthService struct {
	cfg         *config.Config
	userRepo    repository.UserRepository
	referralSvc *ReferralService
}

func NewUserAuthService(cfg *config.Config, userRepo repository.UserRepository, referralSvc *ReferralService) *UserAuthService {
	return &UserAuthService{cfg: cfg, userRepo: userRepo, referralSvc: referralSvc}
}

// RegisterInput 注册参数，ReferralCode 可选
type RegisterInput struct {
	Email        string
	Password     string
	Name         string
	Phone        string
	ReferralCode string
}

// Register 创建顾客并签发令牌。邀请码无效只记录日志，不阻断注册。
func (s *UserAuthService) Register(input RegisterInput) (*models.User, string, time.Time, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if err := validatePassword(s.cfg.Security.PasswordPolicy, input.Password); err != nil {
		return nil, "", time.Time{}, err
	}
	if existing, err := s.userRepo.GetByEmail(email); err != nil {
		return nil, "", time.Time{}, err
	} else if existing != nil {
		return nil, "", time.Time{}, ErrEmailExists
	}

	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	user := &models.User{
		Email:        email,
		Name:         strings.TrimSpace(input.Name),
		Phone:        strings.TrimSpace(input.Phone),
		PasswordHash: hash,
		Status:       constants.UserStatusActive,
	}
	if user.Name == "" {
		user.Name, _, _ = strings.Cut(email, "@")
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, "", time.Time{}, err
	}

	if code := strings.TrimSpace(input.ReferralCode); code != "" && s.referralSvc != nil {
		if _, err := s.referralSvc.ApplyCode(user.ID, code); err != nil {
			logger.Warnw("register_referral_apply_failed", "user_id", user.ID, "code", code, "error", err)
		}
	}
	return s.issue(user)
}

// Login 被禁用的账号在密码正确时才提示禁用，避免探测账号状态
func (s *UserAuthService) Login(email, password string) (*models.User, string, time.Time, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	user, err := s.userRepo.GetByEmail(normalized)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if user == nil || !passwordMatches(user.PasswordHash, password) {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if !strings.EqualFold(user.Status, constants.UserStatusActive) {
		return nil, "", time.Time{}, ErrUserDisabled
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(user); err != nil {
		return nil, "", time.Time{}, err
	}
	return s.issue(user)
}

func (s *UserAuthService) issue(user *models.User) (*models.User, string, time.Time, error) {
	token, expiresAt, err := IssueUserToken(s.cfg.UserJWT, user, time.Now())
	if err != nil {
		return nil, "", time.Time{}, err
	}
	s.refreshAuthState(user)
	return user, token, expiresAt, nil
}

func (s *UserAuthService) refreshAuthState(user *models.User) {
	ctx := context.Background()
	if err := cache.SetUserAuthState(ctx, cache.BuildUserAuthState(user)); err != nil {
		// 写缓存失败时删除旧状态，避免禁用后仍命中
		_ = cache.DelUserAuthState(ctx, user.ID)
	}
}

func (s *UserAuthService) ChangePassword(userID uint, oldPassword, newPassword string) error {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}
	hash, err := replacePassword(s.cfg.Security.PasswordPolicy, user.PasswordHash, oldPassword, newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	return s.userRepo.Update(user)
}

// UpdateProfile 空昵称忽略，手机号允许清空
func (s *UserAuthService) UpdateProfile(userID uint, name, phone *string) (*models.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	if name != nil && strings.TrimSpace(*name) != "" {
		user.Name = strings.TrimSpace(*name)
	}
	if phone != nil {
		user.Phone = strings.TrimSpace(*phone)
	}
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserAuthService) GetUserByID(id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *UserAuthService) ListUsers(filter repository.UserListFilter) ([]models.User, int64, error) {
	return s.userRepo.List(filter)
}

// SetUserStatus 后台启用或禁用顾客，认证状态缓存同步刷新使禁用立即生效
func (s *UserAuthService) SetUserStatus(userID uint, status string) (*models.User, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if status != constants.UserStatusActive && status != constants.UserStatusDisabled {
		return nil, ErrUserDisabled
	}
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdateStatus(userID, status); err != nil {
		return nil, err
	}
	user.Status = status
	s.refreshAuthState(user)
	return user, nil
}

// normalizeEmail 只接受裸地址，不接受带显示名的形式
func normalizeEmail(email string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(email))
	if trimmed == "" {
		return "", ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(trimmed)
	if err != nil || addr.Address != trimmed {
		return "", ErrInvalidEmail
	}
	return trimmed, nil
}
