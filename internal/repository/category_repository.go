package repository

import (
	"github.com/dujiao-next/storefront/internal/models"

	"gorm.io/gorm"
)

// CategoryRepository 商品分类数据访问
type CategoryRepository interface {
	List(onlyActive bool) ([]models.Category, error)
	GetByID(id uint) (*models.Category, error)
	Create(category *models.Category) error
	Update(category *models.Category) error
	CountBySlug(slug string, excludeID uint) (int64, error)
	CountProducts(categoryID uint) (int64, error)
	Delete(id uint) error
}

// GormCategoryRepository GORM 实现
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository 创建分类仓库
func NewCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// List 分类按创建顺序返回；onlyActive 用于前台
func (r *GormCategoryRepository) List(onlyActive bool) ([]models.Category, error) {
	query := r.db.Model(&models.Category{})
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}
	categories := make([]models.Category, 0)
	if err := query.Order("id asc").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *GormCategoryRepository) GetByID(id uint) (*models.Category, error) {
	if id == 0 {
		return nil, nil
	}
	return findOne[models.Category](r.db.Where("id = ?", id))
}

func (r *GormCategoryRepository) Create(category *models.Category) error {
	return r.db.Create(category).Error
}

func (r *GormCategoryRepository) Update(category *models.Category) error {
	return r.db.Save(category).Error
}

// CountBySlug slug 唯一性检查，excludeID 为正在编辑的分类
func (r *GormCategoryRepository) CountBySlug(slug string, excludeID uint) (int64, error) {
	query := r.db.Model(&models.Category{}).Where("slug = ?", slug)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	return countRows(query)
}

// CountProducts 分类下仍有商品时禁止删除
func (r *GormCategoryRepository) CountProducts(categoryID uint) (int64, error) {
	return countRows(r.db.Model(&models.Product{}).Where("category_id = ?", categoryID))
}

func (r *GormCategoryRepository) Delete(id uint) error {
	return r.db.Delete(&models.Category{}, id).Error
}
