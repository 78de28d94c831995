package repository

import (
	"github.com/dujiao-next/storefront/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductRepository 商品与其规格的读取，规格价格由规格仓库维护
type ProductRepository interface {
	List(filter ProductListFilter) ([]models.Product, int64, error)
	GetByID(id uint) (*models.Product, error)
	GetBySlug(slug string, onlyActive bool) (*models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	CountBySlug(slug string, excludeID uint) (int64, error)
	WithTx(tx *gorm.DB) ProductRepository
}

// GormProductRepository GORM 实现
type GormProductRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓库
func NewProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// WithTx 绑定事务
func (r *GormProductRepository) WithTx(tx *gorm.DB) ProductRepository {
	if tx == nil {
		return r
	}
	return &GormProductRepository{db: tx}
}

// catalogQuery 前台只看上架商品与上架规格，后台看全部
func (r *GormProductRepository) catalogQuery(onlyActive, withCategory bool) *gorm.DB {
	query := r.db.Model(&models.Product{}).Preload("Variants", func(db *gorm.DB) *gorm.DB {
		if onlyActive {
			db = db.Where("is_active = ?", true)
		}
		return db.Order("id asc")
	})
	if withCategory {
		query = query.Preload("Category")
	}
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}
	return query
}

// List 新上架的商品排在前面
func (r *GormProductRepository) List(filter ProductListFilter) ([]models.Product, int64, error) {
	query := r.catalogQuery(filter.OnlyActive, filter.WithCategory)
	if filter.CategoryID != 0 {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	query = whereKeyword(query, filter.Search, "name", "slug")
	return findPage[models.Product](query, filter.Page, filter.PageSize, "created_at desc")
}

func (r *GormProductRepository) GetByID(id uint) (*models.Product, error) {
	if id == 0 {
		return nil, nil
	}
	return findOne[models.Product](r.catalogQuery(false, true).Where("id = ?", id))
}

func (r *GormProductRepository) GetBySlug(slug string, onlyActive bool) (*models.Product, error) {
	if slug == "" {
		return nil, nil
	}
	return findOne[models.Product](r.catalogQuery(onlyActive, true).Where("slug = ?", slug))
}

func (r *GormProductRepository) Create(product *models.Product) error {
	return r.db.Create(product).Error
}

// Update 只保存商品本身，规格与分类关联不随之写回
func (r *GormProductRepository) Update(product *models.Product) error {
	return r.db.Omit(clause.Associations).Save(product).Error
}

func (r *GormProductRepository) CountBySlug(slug string, excludeID uint) (int64, error) {
	query := r.db.Model(&models.Product{}).Where("slug = ?", slug)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	return countRows(query)
}
