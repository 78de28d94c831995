package service

import (
	"errors"
	"strings"
	"time"

	"github.com/dujiao-next/storefront/internal/logger"
	"github.com/dujiao-next/storefront/internal/metrics"
	"github.com/dujiao-next/storefront/internal/models"
	"github.com/dujiao-next/storefront/internal/pricing"
	"github.com/dujiao-next/storefront/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CouponService 优惠券服务
type CouponService struct {
	couponRepo repository.CouponRepository
	usageRepo  repository.CouponUsageRepository
}

// NewCouponService 创建优惠券服务
func NewCouponService(couponRepo repository.CouponRepository, usageRepo repository.CouponUsageRepository) *CouponService {
	return &CouponService{
		couponRepo: couponRepo,
		usageRepo:  usageRepo,
	}
}

// WithTx 返回绑定事务的优惠券服务
func (s *CouponService) WithTx(tx *gorm.DB) *CouponService {
	if tx == nil {
		return s
	}
	return &CouponService{
		couponRepo: s.couponRepo.WithTx(tx),
		usageRepo:  s.usageRepo.WithTx(tx),
	}
}

// ValidateCode 按优惠码查找并校验优惠券
func (s *CouponService) ValidateCode(code string, userID uint, totals pricing.CartTotals, now time.Time) (*models.Coupon, error) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return nil, s.reject(ErrCouponNotFound)
	}
	coupon, err := s.couponRepo.GetByCode(trimmed)
	if err != nil {
		return nil, err
	}
	if err := s.Validate(coupon, userID, totals, now); err != nil {
		return coupon, err
	}
	return coupon, nil
}

// Validate 按固定顺序校验优惠券，遇到第一个失败即返回：
// 存在 → 个人次数 → 总次数 → 过期 → 启用 → 开始时间 → 门槛金额
func (s *CouponService) Validate(coupon *models.Coupon, userID uint, totals pricing.CartTotals, now time.Time) error {
	if coupon == nil || coupon.ID == 0 || coupon.DeletedAt.Valid {
		return s.reject(ErrCouponNotFound)
	}
	if coupon.PerUserLimit > 0 && userID != 0 {
		count, err := s.usageRepo.CountByUser(coupon.ID, userID)
		if err != nil {
			return err
		}
		if int(count) >= coupon.PerUserLimit {
			return s.reject(ErrCouponPerUserLimit)
		}
	}
	if coupon.MaxUsage > 0 && coupon.UsedCount >= coupon.MaxUsage {
		return s.reject(ErrCouponUsageLimit)
	}
	if coupon.ValidUntil != nil && now.After(*coupon.ValidUntil) {
		return s.reject(ErrCouponExpired)
	}
	if !coupon.IsActive {
		return s.reject(ErrCouponInactive)
	}
	if coupon.ValidFrom != nil && now.Before(*coupon.ValidFrom) {
		return s.reject(ErrCouponNotStarted)
	}
	if totals.GrandTotal.LessThan(coupon.MinCartValue.Decimal) {
		return s.reject(ErrCouponMinAmount)
	}
	return nil
}

// AvailableCoupon 购物车页展示的可领用优惠券
type AvailableCoupon struct {
	Code          string        `json:"code"`
	DiscountType  string        `json:"discount_type"`
	DiscountValue models.Money  `json:"discount_value"`
	MinCartValue  models.Money  `json:"min_cart_value"`
	MaxDiscount   *models.Money `json:"max_discount,omitempty"`
	ValidUntil    *time.Time    `json:"valid_until,omitempty"`
	RemainingUses int           `json:"remaining_uses"`
}

// ListAvailable 用户当前仍可使用的优惠券，已达个人上限的不返回。
// 门槛金额不在此过滤，由下单前的购物车校验负责。
func (s *CouponService) ListAvailable(userID uint, now time.Time) ([]AvailableCoupon, error) {
	coupons, err := s.couponRepo.ListRedeemable(now)
	if err != nil {
		return nil, err
	}
	result := make([]AvailableCoupon, 0, len(coupons))
	for i := range coupons {
		coupon := &coupons[i]
		remaining := -1
		if coupon.PerUserLimit > 0 {
			used, err := s.usageRepo.CountByUser(coupon.ID, userID)
			if err != nil {
				return nil, err
			}
			remaining = coupon.PerUserLimit - int(used)
			if remaining <= 0 {
				continue
			}
		}
		result = append(result, AvailableCoupon{
			Code:          coupon.Code,
			DiscountType:  coupon.DiscountType,
			DiscountValue: coupon.DiscountValue,
			MinCartValue:  coupon.MinCartValue,
			MaxDiscount:   coupon.MaxDiscount,
			ValidUntil:    coupon.ValidUntil,
			RemainingUses: remaining,
		})
	}
	return result, nil
}

// Discount 计算优惠券抵扣金额
func (s *CouponService) Discount(coupon *models.Coupon, totals pricing.CartTotals) decimal.Decimal {
	if coupon == nil {
		return decimal.Zero
	}
	return pricing.ComputeCouponDiscount(CouponTerms(coupon), pricing.CouponBase(totals))
}

// CommitUsageInTx 下单时在事务内核销优惠券：原子递增使用次数并写入核销记录
func (s *CouponService) CommitUsageInTx(tx *gorm.DB, coupon *models.Coupon, userID, orderID uint, discount decimal.Decimal) error {
	if coupon == nil {
		return nil
	}
	affected, err := s.couponRepo.WithTx(tx).IncrementUsedCount(coupon.ID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return s.reject(ErrCouponUsageLimit)
	}
	usage := &models.CouponUsage{
		CouponID:       coupon.ID,
		UserID:         userID,
		OrderID:        orderID,
		DiscountAmount: models.NewMoneyFromDecimal(discount),
	}
	if err := s.usageRepo.WithTx(tx).Create(usage); err != nil {
		return err
	}
	return nil
}

// CouponTerms 将优惠券模型转换为计算参数
func CouponTerms(coupon *models.Coupon) pricing.CouponTerms {
	terms := pricing.CouponTerms{
		DiscountType: strings.ToLower(strings.TrimSpace(coupon.DiscountType)),
		Value:        coupon.DiscountValue.Decimal,
	}
	if coupon.MaxDiscount != nil {
		maxDiscount := coupon.MaxDiscount.Decimal
		terms.MaxDiscount = &maxDiscount
	}
	return terms
}

func (s *CouponService) reject(err error) error {
	metrics.CouponRejections.WithLabelValues(couponRejectReason(err)).Inc()
	logger.Debugw("coupon_rejected", "reason", couponRejectReason(err))
	return err
}

func couponRejectReason(err error) string {
	switch {
	case errors.Is(err, ErrCouponNotFound):
		return "not_found"
	case errors.Is(err, ErrCouponPerUserLimit):
		return "per_user_limit"
	case errors.Is(err, ErrCouponUsageLimit):
		return "usage_limit"
	case errors.Is(err, ErrCouponExpired):
		return "expired"
	case errors.Is(err, ErrCouponInactive):
		return "inactive"
	case errors.Is(err, ErrCouponNotStarted):
		return "not_started"
	case errors.Is(err, ErrCouponMinAmount):
		return "min_amount"
	default:
		return "invalid"
	}
}
