package repository

import (
	"strings"
	"time"

	"github.com/dujiao-next/storefront/internal/models"

	"gorm.io/gorm"
)

// CouponRepository 优惠券数据访问
type CouponRepository interface {
	GetByID(id uint) (*models.Coupon, error)
	GetByCode(code string) (*models.Coupon, error)
	Create(coupon *models.Coupon) error
	Update(coupon *models.Coupon) error
	Delete(id uint) error
	List(filter CouponListFilter) ([]models.Coupon, int64, error)
	IncrementUsedCount(id uint) (int64, error)
	ListRedeemable(now time.Time) ([]models.Coupon, error)
	WithTx(tx *gorm.DB) *GormCouponRepository
}

// GormCouponRepository GORM 实现
type GormCouponRepository struct {
	db *gorm.DB
}

// NewCouponRepository 创建优惠券仓库
func NewCouponRepository(db *gorm.DB) *GormCouponRepository {
	return &GormCouponRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCouponRepository) WithTx(tx *gorm.DB) *GormCouponRepository {
	if tx == nil {
		return r
	}
	return &GormCouponRepository{db: tx}
}

// normalizeCouponCode 优惠码统一去空白并大写存储
func normalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// GetByID 软删除的优惠券视为不存在
func (r *GormCouponRepository) GetByID(id uint) (*models.Coupon, error) {
	return findOne[models.Coupon](r.db.Where("id = ?", id))
}

// GetByCode 按优惠码查询，大小写不敏感
func (r *GormCouponRepository) GetByCode(code string) (*models.Coupon, error) {
	code = normalizeCouponCode(code)
	if code == "" {
		return nil, nil
	}
	return findOne[models.Coupon](r.db.Where("code = ?", code))
}

func (r *GormCouponRepository) Create(coupon *models.Coupon) error {
	coupon.Code = normalizeCouponCode(coupon.Code)
	return r.db.Create(coupon).Error
}

func (r *GormCouponRepository) Update(coupon *models.Coupon) error {
	coupon.Code = normalizeCouponCode(coupon.Code)
	return r.db.Save(coupon).Error
}

// Delete 软删除，历史订单仍可通过 Unscoped 追溯
func (r *GormCouponRepository) Delete(id uint) error {
	return r.db.Delete(&models.Coupon{}, id).Error
}

// List 后台列表，优惠码模糊匹配
func (r *GormCouponRepository) List(filter CouponListFilter) ([]models.Coupon, int64, error) {
	query := r.db.Model(&models.Coupon{})
	query = whereKeyword(query, normalizeCouponCode(filter.Code), "code")
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	return findPage[models.Coupon](query, filter.Page, filter.PageSize, "")
}

// IncrementUsedCount 原子递增使用次数；已达总上限时不更新，返回影响行数 0
func (r *GormCouponRepository) IncrementUsedCount(id uint) (int64, error) {
	result := r.db.Model(&models.Coupon{}).
		Where("id = ?", id).
		Where("max_usage = 0 OR used_count < max_usage").
		UpdateColumn("used_count", gorm.Expr("used_count + 1"))
	return result.RowsAffected, result.Error
}

// ListRedeemable 启用、处于有效期内且总次数未用完的优惠券，门槛低的排在前面
func (r *GormCouponRepository) ListRedeemable(now time.Time) ([]models.Coupon, error) {
	var coupons []models.Coupon
	err := r.db.
		Where("is_active = ?", true).
		Where("valid_from IS NULL OR valid_from <= ?", now).
		Where("valid_until IS NULL OR valid_until >= ?", now).
		Where("max_usage = 0 OR used_count < max_usage").
		Order("min_cart_value asc, id asc").
		Find(&coupons).Error
	return coupons, err
}
