package service

import (
	"strings"
	"time"

	"github.com/dujiao-next/storefront/internal/constants"
	"github.com/dujiao-next/storefront/internal/models"
	"github.com/dujiao-next/storefront/internal/repository"

	"github.com/shopspring/decimal"
)

// CouponAdminService 优惠券管理服务
type CouponAdminService struct {
	repo      repository.CouponRepository
	usageRepo repository.CouponUsageRepository
}

// NewCouponAdminService 创建优惠券管理服务
func NewCouponAdminService(repo repository.CouponRepository, usageRepo repository.CouponUsageRepository) *CouponAdminService {
	return &CouponAdminService{repo: repo, usageRepo: usageRepo}
}

// CouponInput 创建/更新优惠券输入
type CouponInput struct {
	Code          string
	DiscountType  string
	DiscountValue models.Money
	MinCartValue  models.Money
	MaxDiscount   *models.Money
	MaxUsage      int
	PerUserLimit  int
	ValidFrom     *time.Time
	ValidUntil    *time.Time
	IsActive      *bool
}

// Create 创建优惠券
func (s *CouponAdminService) Create(input CouponInput) (*models.Coupon, error) {
	code := normalizeCouponCode(input.Code)
	if code == "" {
		return nil, ErrCouponInvalid
	}
	exist, err := s.repo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if exist != nil {
		return nil, ErrCouponCodeExists
	}
	coupon := &models.Coupon{Code: code, IsActive: true, PerUserLimit: 1}
	if err := applyCouponInput(coupon, input); err != nil {
		return nil, err
	}
	if err := s.repo.Create(coupon); err != nil {
		return nil, err
	}
	if !coupon.IsActive {
		if err := s.repo.Update(coupon); err != nil {
			return nil, err
		}
	}
	return coupon, nil
}

// Update 更新优惠券，优惠码不可修改
func (s *CouponAdminService) Update(id uint, input CouponInput) (*models.Coupon, error) {
	coupon, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}
	if err := applyCouponInput(coupon, input); err != nil {
		return nil, err
	}
	if err := s.repo.Update(coupon); err != nil {
		return nil, err
	}
	return coupon, nil
}

// Delete 删除优惠券（软删除，已应用该券的购物车会在下次重算时解除）
func (s *CouponAdminService) Delete(id uint) error {
	coupon, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if coupon == nil {
		return ErrCouponNotFound
	}
	return s.repo.Delete(id)
}

// List 优惠券列表
func (s *CouponAdminService) List(filter repository.CouponListFilter) ([]models.Coupon, int64, error) {
	return s.repo.List(filter)
}

// ListUsages 核销记录
func (s *CouponAdminService) ListUsages(filter repository.CouponUsageListFilter) ([]models.CouponUsage, int64, error) {
	return s.usageRepo.List(filter)
}

func applyCouponInput(coupon *models.Coupon, input CouponInput) error {
	couponType := strings.ToLower(strings.TrimSpace(input.DiscountType))
	if couponType != constants.CouponTypeFixed && couponType != constants.CouponTypePercentage {
		return ErrCouponInvalid
	}
	value := input.DiscountValue.Decimal.Round(2)
	if !value.IsPositive() {
		return ErrCouponInvalid
	}
	if couponType == constants.CouponTypePercentage && value.GreaterThan(decimal.NewFromInt(100)) {
		return ErrCouponInvalid
	}
	if input.MinCartValue.Decimal.IsNegative() || input.MaxUsage < 0 || input.PerUserLimit < 0 {
		return ErrCouponInvalid
	}
	if input.MaxDiscount != nil && !input.MaxDiscount.Decimal.IsPositive() {
		return ErrCouponInvalid
	}
	if input.ValidFrom != nil && input.ValidUntil != nil && !input.ValidUntil.After(*input.ValidFrom) {
		return ErrCouponInvalid
	}
	coupon.DiscountType = couponType
	coupon.DiscountValue = models.NewMoneyFromDecimal(value)
	coupon.MinCartValue = models.NewMoneyFromDecimal(input.MinCartValue.Decimal)
	if input.MaxDiscount != nil {
		maxDiscount := models.NewMoneyFromDecimal(input.MaxDiscount.Decimal)
		coupon.MaxDiscount = &maxDiscount
	} else {
		coupon.MaxDiscount = nil
	}
	coupon.MaxUsage = input.MaxUsage
	if input.PerUserLimit > 0 {
		coupon.PerUserLimit = input.PerUserLimit
	}
	coupon.ValidFrom = input.ValidFrom
	coupon.ValidUntil = input.ValidUntil
	if input.IsActive != nil {
		coupon.IsActive = *input.IsActive
	}
	return nil
}

func normalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
