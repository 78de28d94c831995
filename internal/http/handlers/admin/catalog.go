package admin

import (
	"strings"

	handlershared "github.com/dujiao-next/storefront/internal/http/handlers/shared"
	"github.com/dujiao-next/storefront/internal/http/response"
	"github.com/dujiao-next/storefront/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CategoryRequest 分类请求
type CategoryRequest struct {
	Name     string `json:"name" binding:"required"`
	Slug     string `json:"slug" binding:"required"`
	IsActive *bool  `json:"is_active"`
}

// ProductRequest 商品请求
type ProductRequest struct {
	CategoryID uint   `json:"category_id" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Slug       string `json:"slug" binding:"required"`
	IsActive   *bool  `json:"is_active"`
}

// VariantRequest 规格请求
type VariantRequest struct {
	Name        string          `json:"name" binding:"required"`
	SalePrice   decimal.Decimal `json:"sale_price"`
	ActualPrice decimal.Decimal `json:"actual_price"`
	Stock       *int            `json:"stock"`
	IsActive    *bool           `json:"is_active"`
}

func (r CategoryRequest) toInput() service.CategoryInput {
	return service.CategoryInput{Name: r.Name, Slug: r.Slug, IsActive: r.IsActive}
}

func (r ProductRequest) toInput() service.ProductInput {
	return service.ProductInput{CategoryID: r.CategoryID, Name: r.Name, Slug: r.Slug, IsActive: r.IsActive}
}

func (r VariantRequest) toInput() service.VariantInput {
	return service.VariantInput{
		Name:        r.Name,
		SalePrice:   r.SalePrice,
		ActualPrice: r.ActualPrice,
		Stock:       r.Stock,
		IsActive:    r.IsActive,
	}
}

// GetAdminCategories 获取分类列表 (Admin)
func (h *Handler) GetAdminCategories(c *gin.Context) {
	categories, err := h.CategoryService.List(false)
	if err != nil {
		respondError(c, response.CodeInternal, "error.category_fetch_failed", err)
		return
	}
	response.Success(c, categories)
}

// CreateCategory 创建分类
func (h *Handler) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	category, err := h.CategoryService.Create(req.toInput())
	if err != nil {
		respondMappedError(c, err, handlershared.CatalogErrorRules, "error.category_save_failed")
		return
	}
	response.Success(c, category)
}

// UpdateCategory 更新分类
func (h *Handler) UpdateCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req CategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	category, err := h.CategoryService.Update(id, req.toInput())
	if err != nil {
		respondMappedError(c, err, handlershared.CatalogErrorRules, "error.category_save_failed")
		return
	}
	response.Success(c, category)
}

// DeleteCategory 删除分类，仍有商品时拒绝
func (h *Handler) DeleteCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.CategoryService.Delete(id); err != nil {
		respondMappedError(c, err, handlershared.CatalogErrorRules, "error.category_save_failed")
		return
	}
	response.Success(c, nil)
}

// GetAdminProducts 获取商品列表 (Admin)
func (h *Handler) GetAdminProducts(c *gin.Context) {
	page, pageSize := handlershared.PageQuery(c)
	categoryID := handlershared.ParseUintQuery(c, "category_id")
	search := strings.TrimSpace(c.Query("search"))

	products, total, err := h.ProductService.ListAdmin(categoryID, search, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "error.product_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, products, response.NewPagination(page, pageSize, total))
}

// GetAdminProduct 获取商品详情 (Admin)
func (h *Handler) GetAdminProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	product, err := h.ProductService.GetAdminByID(id)
	if err != nil {
		respondMappedError(c, err, handlershared.CatalogErrorRules, "error.product_fetch_failed")
		return
	}
	response.Success(c, product)
}

// CreateProduct 创建商品
func (h *Handler) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if !bindJSON(c, &req) {
		return
	}
	product, err := h.ProductService.Create(req.toInput())
	if err != nil {
		respondMappedError(c, err, handlershared.CatalogErrorRules, "error.product_save_failed")
		return
	}
	response.Success(c, product)
}

// UpdateProduct 更新商品
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req ProductRequest
	if !bindJSON(c, &req) {
		return
	}
	product, err := h.ProductService.Update(id, req.toInput())
	if err != nil {
		respondMappedError(c, err, handlershared.CatalogErrorRules, "error.product_save_failed")
		return
	}
	response.Success(c, product)
}

// CreateVariant 为商品新增规格
func (h *Handler) CreateVariant(c *gin.Context) {
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req VariantRequest
	if !bindJSON(c, &req) {
		return
	}
	variant, err := h.ProductService.CreateVariant(productID, req.toInput())
	if err != nil {
		respondMappedError(c, err, handlershared.CatalogErrorRules, "error.product_save_failed")
		return
	}
	response.Success(c, variant)
}

// UpdateVariant 更新规格价格与库存
func (h *Handler) UpdateVariant(c *gin.Context) {
	variantID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req VariantRequest
	if !bindJSON(c, &req) {
		return
	}
	variant, err := h.ProductService.UpdateVariant(variantID, req.toInput())
	if err != nil {
		respondMappedError(c, err, handlershared.CatalogErrorRules, "error.product_save_failed")
		return
	}
	response.Success(c, variant)
}
