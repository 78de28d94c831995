package repository

import (
	"time"

	"github.com/dujiao-next/storefront/internal/constants"
	"github.com/dujiao-next/storefront/internal/models"

	"gorm.io/gorm"
)

// PromotionRepository 促销折扣数据访问接口
type PromotionRepository interface {
	GetByID(id uint) (*models.PromotionalOffer, error)
	ListActiveByProduct(productID uint, now time.Time) ([]models.PromotionalOffer, error)
	ListActiveByCategory(categoryID uint, now time.Time) ([]models.PromotionalOffer, error)
	Create(offer *models.PromotionalOffer) error
	Update(offer *models.PromotionalOffer) error
	Delete(id uint) error
	List(filter OfferListFilter) ([]models.PromotionalOffer, int64, error)
	WithTx(tx *gorm.DB) *GormPromotionRepository
}

// GormPromotionRepository GORM 实现
type GormPromotionRepository struct {
	db *gorm.DB
}

// NewPromotionRepository 创建促销仓库
func NewPromotionRepository(db *gorm.DB) *GormPromotionRepository {
	return &GormPromotionRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPromotionRepository) WithTx(tx *gorm.DB) *GormPromotionRepository {
	if tx == nil {
		return r
	}
	return &GormPromotionRepository{db: tx}
}

// GetByID 根据ID获取促销
func (r *GormPromotionRepository) GetByID(id uint) (*models.PromotionalOffer, error) {
	return findOne[models.PromotionalOffer](r.db.Where("id = ?", id))
}

func (r *GormPromotionRepository) activeAt(now time.Time) *gorm.DB {
	return r.db.Model(&models.PromotionalOffer{}).
		Where("is_active = ?", true).
		Where("valid_from <= ? AND valid_until >= ?", now, now)
}

// ListActiveByProduct 获取商品范围内当前生效的促销
func (r *GormPromotionRepository) ListActiveByProduct(productID uint, now time.Time) ([]models.PromotionalOffer, error) {
	if productID == 0 {
		return []models.PromotionalOffer{}, nil
	}
	var offers []models.PromotionalOffer
	if err := r.activeAt(now).
		Where("scope = ? AND product_id = ?", constants.OfferScopeProduct, productID).
		Order("discount_percentage DESC, id ASC").
		Find(&offers).Error; err != nil {
		return nil, err
	}
	return offers, nil
}

// ListActiveByCategory 获取分类范围内当前生效的促销
func (r *GormPromotionRepository) ListActiveByCategory(categoryID uint, now time.Time) ([]models.PromotionalOffer, error) {
	if categoryID == 0 {
		return []models.PromotionalOffer{}, nil
	}
	var offers []models.PromotionalOffer
	if err := r.activeAt(now).
		Where("scope = ? AND category_id = ?", constants.OfferScopeCategory, categoryID).
		Order("discount_percentage DESC, id ASC").
		Find(&offers).Error; err != nil {
		return nil, err
	}
	return offers, nil
}

// Create 创建促销
func (r *GormPromotionRepository) Create(offer *models.PromotionalOffer) error {
	return r.db.Create(offer).Error
}

// Update 更新促销
func (r *GormPromotionRepository) Update(offer *models.PromotionalOffer) error {
	return r.db.Save(offer).Error
}

// Delete 删除促销（软删除）
func (r *GormPromotionRepository) Delete(id uint) error {
	return r.db.Delete(&models.PromotionalOffer{}, id).Error
}

// List 获取促销列表
func (r *GormPromotionRepository) List(filter OfferListFilter) ([]models.PromotionalOffer, int64, error) {
	var offers []models.PromotionalOffer
	query := r.db.Model(&models.PromotionalOffer{})

	if filter.Scope != "" {
		query = query.Where("scope = ?", filter.Scope)
	}
	if filter.ProductID != 0 {
		query = query.Where("product_id = ?", filter.ProductID)
	}
	if filter.CategoryID != 0 {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	if err := query.Order("id desc").Find(&offers).Error; err != nil {
		return nil, 0, err
	}
	return offers, total, nil
}
