package service

import (
	"strings"
	"time"

	"github.com/dujiao-next/storefront/internal/models"
	"github.com/dujiao-next/storefront/internal/pricing"
	"github.com/dujiao-next/storefront/internal/repository"

	"github.com/shopspring/decimal"
)

// ProductService 商品业务服务
type ProductService struct {
	repo         repository.ProductRepository
	variantRepo  repository.ProductVariantRepository
	categoryRepo repository.CategoryRepository
	offerSvc     *OfferService
}

// NewProductService 创建商品服务
func NewProductService(repo repository.ProductRepository, variantRepo repository.ProductVariantRepository, categoryRepo repository.CategoryRepository, offerSvc *OfferService) *ProductService {
	return &ProductService{
		repo:         repo,
		variantRepo:  variantRepo,
		categoryRepo: categoryRepo,
		offerSvc:     offerSvc,
	}
}

// ProductInput 创建/更新商品输入
type ProductInput struct {
	CategoryID uint
	Name       string
	Slug       string
	IsActive   *bool
}

// VariantInput 创建/更新规格输入
type VariantInput struct {
	Name        string
	SalePrice   decimal.Decimal
	ActualPrice decimal.Decimal
	Stock       *int
	IsActive    *bool
}

// ProductView 前台商品展示（含当前生效促销与到手价）
type ProductView struct {
	*models.Product
	OfferKind       string             `json:"offer_kind"`
	OfferPercentage models.Money       `json:"offer_percentage"`
	VariantPrices   []VariantPriceView `json:"variant_prices"`
}

// VariantPriceView 规格价格展示
type VariantPriceView struct {
	VariantID      uint         `json:"variant_id"`
	Name           string       `json:"name"`
	ActualPrice    models.Money `json:"actual_price"`
	SalePrice      models.Money `json:"sale_price"`
	EffectivePrice models.Money `json:"effective_price"`
	InStock        bool         `json:"in_stock"`
}

// ListPublic 获取公开商品列表
func (s *ProductService) ListPublic(categoryID uint, search string, page, pageSize int) ([]ProductView, int64, error) {
	products, total, err := s.repo.List(repository.ProductListFilter{
		Page:         page,
		PageSize:     pageSize,
		CategoryID:   categoryID,
		Search:       search,
		OnlyActive:   true,
		WithCategory: true,
	})
	if err != nil {
		return nil, 0, err
	}

	refs := make([]*models.Product, 0, len(products))
	for i := range products {
		refs = append(refs, &products[i])
	}
	offers, err := s.offerSvc.ResolveMany(refs, time.Now())
	if err != nil {
		return nil, 0, err
	}
	views := make([]ProductView, 0, len(refs))
	for _, product := range refs {
		views = append(views, buildProductView(product, offers[product.ID]))
	}
	return views, total, nil
}

// GetPublicBySlug 获取公开商品详情
func (s *ProductService) GetPublicBySlug(slug string) (*ProductView, error) {
	product, err := s.repo.GetBySlug(strings.TrimSpace(slug), true)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	offer, err := s.offerSvc.Resolve(product, time.Now())
	if err != nil {
		return nil, err
	}
	view := buildProductView(product, offer)
	return &view, nil
}

// ListAdmin 获取后台商品列表
func (s *ProductService) ListAdmin(categoryID uint, search string, page, pageSize int) ([]models.Product, int64, error) {
	return s.repo.List(repository.ProductListFilter{
		Page:         page,
		PageSize:     pageSize,
		CategoryID:   categoryID,
		Search:       search,
		WithCategory: true,
	})
}

// GetAdminByID 获取后台商品详情
func (s *ProductService) GetAdminByID(id uint) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// Create 创建商品
func (s *ProductService) Create(input ProductInput) (*models.Product, error) {
	name, slug := strings.TrimSpace(input.Name), normalizeSlug(input.Slug)
	if name == "" || slug == "" {
		return nil, ErrCatalogInputInvalid
	}
	if err := s.ensureCategory(input.CategoryID); err != nil {
		return nil, err
	}
	count, err := s.repo.CountBySlug(slug, 0)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrSlugExists
	}

	product := models.Product{CategoryID: input.CategoryID, Name: name, Slug: slug, IsActive: true}
	if err := s.repo.Create(&product); err != nil {
		return nil, err
	}
	if input.IsActive != nil && !*input.IsActive {
		product.IsActive = false
		if err := s.repo.Update(&product); err != nil {
			return nil, err
		}
	}
	return &product, nil
}

// Update 更新商品
func (s *ProductService) Update(id uint, input ProductInput) (*models.Product, error) {
	product, err := s.GetAdminByID(id)
	if err != nil {
		return nil, err
	}
	if input.CategoryID != 0 && input.CategoryID != product.CategoryID {
		if err := s.ensureCategory(input.CategoryID); err != nil {
			return nil, err
		}
		product.CategoryID = input.CategoryID
		product.Category = nil
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		product.Name = name
	}
	if slug := normalizeSlug(input.Slug); slug != "" && slug != product.Slug {
		count, err := s.repo.CountBySlug(slug, id)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, ErrSlugExists
		}
		product.Slug = slug
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	variants := product.Variants
	product.Variants = nil
	if err := s.repo.Update(product); err != nil {
		return nil, err
	}
	product.Variants = variants
	return product, nil
}

// CreateVariant 为商品新增规格
func (s *ProductService) CreateVariant(productID uint, input VariantInput) (*models.ProductVariant, error) {
	if _, err := s.GetAdminByID(productID); err != nil {
		return nil, err
	}
	variant := models.ProductVariant{ProductID: productID, IsActive: true}
	if err := applyVariantInput(&variant, input); err != nil {
		return nil, err
	}
	active := variant.IsActive
	variant.IsActive = true
	if err := s.variantRepo.Create(&variant); err != nil {
		return nil, err
	}
	if !active {
		variant.IsActive = false
		if err := s.variantRepo.Update(&variant); err != nil {
			return nil, err
		}
	}
	return &variant, nil
}

// UpdateVariant 更新规格价格、库存与状态
func (s *ProductService) UpdateVariant(variantID uint, input VariantInput) (*models.ProductVariant, error) {
	variant, err := s.variantRepo.GetByID(variantID)
	if err != nil {
		return nil, err
	}
	if variant == nil {
		return nil, ErrVariantNotFound
	}
	if err := applyVariantInput(variant, input); err != nil {
		return nil, err
	}
	variant.Product = nil
	if err := s.variantRepo.Update(variant); err != nil {
		return nil, err
	}
	return variant, nil
}

func (s *ProductService) ensureCategory(categoryID uint) error {
	category, err := s.categoryRepo.GetByID(categoryID)
	if err != nil {
		return err
	}
	if category == nil {
		return ErrCategoryNotFound
	}
	return nil
}

func applyVariantInput(variant *models.ProductVariant, input VariantInput) error {
	sale := input.SalePrice.Round(2)
	actual := input.ActualPrice.Round(2)
	if !sale.IsPositive() || actual.IsNegative() {
		return ErrVariantPriceInvalid
	}
	if actual.IsZero() {
		actual = sale
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		variant.Name = name
	}
	variant.SalePrice = models.NewMoneyFromDecimal(sale)
	variant.ActualPrice = models.NewMoneyFromDecimal(actual)
	if input.Stock != nil {
		if *input.Stock < 0 {
			return ErrInvalidQuantity
		}
		variant.Stock = *input.Stock
	}
	if input.IsActive != nil {
		variant.IsActive = *input.IsActive
	}
	return nil
}

func buildProductView(product *models.Product, offer pricing.Offer) ProductView {
	if offer.Kind == "" {
		offer = pricing.NoOffer()
	}
	view := ProductView{
		Product:         product,
		OfferKind:       string(offer.Kind),
		OfferPercentage: models.NewMoneyFromDecimal(offer.Percentage),
		VariantPrices:   make([]VariantPriceView, 0, len(product.Variants)),
	}
	for _, variant := range product.Variants {
		view.VariantPrices = append(view.VariantPrices, VariantPriceView{
			VariantID:      variant.ID,
			Name:           variant.Name,
			ActualPrice:    variant.ActualPrice,
			SalePrice:      variant.SalePrice,
			EffectivePrice: models.NewMoneyFromDecimal(pricing.EffectiveUnitPrice(variant.SalePrice.Decimal, offer)),
			InStock:        variant.Stock > 0,
		})
	}
	return view
}
