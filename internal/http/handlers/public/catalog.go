package public

import (
	"strings"

	handlershared "github.com/dujiao-next/storefront/internal/http/handlers/shared"
	"github.com/dujiao-next/storefront/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetCategories 获取启用的分类
func (h *Handler) GetCategories(c *gin.Context) {
	categories, err := h.CategoryService.List(true)
	if err != nil {
		respondError(c, response.CodeInternal, "error.category_fetch_failed", err)
		return
	}
	response.Success(c, categories)
}

// GetProducts 获取商品列表，价格包含当前生效的促销
func (h *Handler) GetProducts(c *gin.Context) {
	page, pageSize := handlershared.PageQuery(c)
	categoryID := handlershared.ParseUintQuery(c, "category_id")
	search := strings.TrimSpace(c.Query("search"))

	products, total, err := h.ProductService.ListPublic(categoryID, search, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "error.product_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, products, response.NewPagination(page, pageSize, total))
}

// GetProductBySlug 获取商品详情
func (h *Handler) GetProductBySlug(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	if slug == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	product, err := h.ProductService.GetPublicBySlug(slug)
	if err != nil {
		respondMappedError(c, err, handlershared.CatalogErrorRules, "error.product_fetch_failed")
		return
	}
	response.Success(c, product)
}
