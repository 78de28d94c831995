package service

import (
	"strings"

	"github.com/dujiao-next/storefront/internal/models"
	"github.com/dujiao-next/storefront/internal/repository"
)

// CategoryService 分类业务服务
type CategoryService struct {
	repo repository.CategoryRepository
}

// NewCategoryService 创建分类服务
func NewCategoryService(repo repository.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

// CategoryInput 创建/更新分类输入
type CategoryInput struct {
	Name     string
	Slug     string
	IsActive *bool
}

// List 获取分类列表
func (s *CategoryService) List(onlyActive bool) ([]models.Category, error) {
	return s.repo.List(onlyActive)
}

// Create 创建分类
func (s *CategoryService) Create(input CategoryInput) (*models.Category, error) {
	name, slug := strings.TrimSpace(input.Name), normalizeSlug(input.Slug)
	if name == "" || slug == "" {
		return nil, ErrCatalogInputInvalid
	}
	count, err := s.repo.CountBySlug(slug, 0)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrSlugExists
	}

	category := models.Category{Name: name, Slug: slug, IsActive: true}
	if err := s.repo.Create(&category); err != nil {
		return nil, err
	}
	// default:true 的列创建时会忽略 false，需要补一次更新
	if input.IsActive != nil && !*input.IsActive {
		category.IsActive = false
		if err := s.repo.Update(&category); err != nil {
			return nil, err
		}
	}
	return &category, nil
}

// Update 更新分类
func (s *CategoryService) Update(id uint, input CategoryInput) (*models.Category, error) {
	category, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		category.Name = name
	}
	if slug := normalizeSlug(input.Slug); slug != "" && slug != category.Slug {
		count, err := s.repo.CountBySlug(slug, id)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, ErrSlugExists
		}
		category.Slug = slug
	}
	if input.IsActive != nil {
		category.IsActive = *input.IsActive
	}

	if err := s.repo.Update(category); err != nil {
		return nil, err
	}
	return category, nil
}

// Delete 删除分类，分类下仍有商品时拒绝
func (s *CategoryService) Delete(id uint) error {
	category, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if category == nil {
		return ErrCategoryNotFound
	}
	count, err := s.repo.CountProducts(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrCategoryInUse
	}
	return s.repo.Delete(id)
}

func normalizeSlug(raw string) string {
	slug := strings.ToLower(strings.TrimSpace(raw))
	return strings.Join(strings.Fields(slug), "-")
}
