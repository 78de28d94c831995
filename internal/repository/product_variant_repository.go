package repository

import (
	"errors"

	"github.com/dujiao-next/storefront/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductVariantRepository 商品规格数据访问接口
type ProductVariantRepository interface {
	GetByID(id uint) (*models.ProductVariant, error)
	GetByIDForUpdate(id uint) (*models.ProductVariant, error)
	ListByIDs(ids []uint) ([]models.ProductVariant, error)
	Create(item *models.ProductVariant) error
	Update(item *models.ProductVariant) error
	DecrementStock(variantID uint, quantity int) (int64, error)
	RestoreStock(variantID uint, quantity int) (int64, error)
	WithTx(tx *gorm.DB) ProductVariantRepository
}

// GormProductVariantRepository GORM 实现
type GormProductVariantRepository struct {
	db *gorm.DB
}

// NewProductVariantRepository 创建规格仓库
func NewProductVariantRepository(db *gorm.DB) *GormProductVariantRepository {
	return &GormProductVariantRepository{db: db}
}

// WithTx 绑定事务
func (r *GormProductVariantRepository) WithTx(tx *gorm.DB) ProductVariantRepository {
	if tx == nil {
		return r
	}
	return &GormProductVariantRepository{db: tx}
}

// GetByID 根据 ID 获取规格（含商品）
func (r *GormProductVariantRepository) GetByID(id uint) (*models.ProductVariant, error) {
	if id == 0 {
		return nil, nil
	}
	return findOne[models.ProductVariant](r.db.Preload("Product").Where("id = ?", id))
}

// GetByIDForUpdate 加锁获取规格
func (r *GormProductVariantRepository) GetByIDForUpdate(id uint) (*models.ProductVariant, error) {
	if id == 0 {
		return nil, nil
	}
	return findOne[models.ProductVariant](forUpdate(r.db).
		Preload("Product").Where("id = ?", id))
}

// ListByIDs 批量获取规格
func (r *GormProductVariantRepository) ListByIDs(ids []uint) ([]models.ProductVariant, error) {
	if len(ids) == 0 {
		return []models.ProductVariant{}, nil
	}
	var items []models.ProductVariant
	if err := r.db.Preload("Product").Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Create 创建规格
func (r *GormProductVariantRepository) Create(item *models.ProductVariant) error {
	return r.db.Create(item).Error
}

// Update 更新规格
func (r *GormProductVariantRepository) Update(item *models.ProductVariant) error {
	return r.db.Omit(clause.Associations).Save(item).Error
}

// DecrementStock 扣减库存，库存不足时不更新（RowsAffected 为 0）
func (r *GormProductVariantRepository) DecrementStock(variantID uint, quantity int) (int64, error) {
	if variantID == 0 || quantity <= 0 {
		return 0, errors.New("invalid stock decrement params")
	}
	result := r.db.Model(&models.ProductVariant{}).
		Where("id = ? AND stock >= ?", variantID, quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// RestoreStock 回补库存
func (r *GormProductVariantRepository) RestoreStock(variantID uint, quantity int) (int64, error) {
	if variantID == 0 || quantity <= 0 {
		return 0, errors.New("invalid stock restore params")
	}
	result := r.db.Model(&models.ProductVariant{}).
		Where("id = ?", variantID).
		UpdateColumn("stock", gorm.Expr("stock + ?", quantity))
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
