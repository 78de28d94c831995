package admin

import (
	"strings"
	"time"

	handlershared "github.com/dujiao-next/storefront/internal/http/handlers/shared"
	"github.com/dujiao-next/storefront/internal/http/response"
	"github.com/dujiao-next/storefront/internal/models"
	"github.com/dujiao-next/storefront/internal/repository"
	"github.com/dujiao-next/storefront/internal/service"

	"github.com/gin-gonic/gin"
)

// OfferRequest 促销请求
type OfferRequest struct {
	Name               string       `json:"name" binding:"required"`
	Scope              string       `json:"scope" binding:"required"`
	TargetID           uint         `json:"target_id" binding:"required"`
	DiscountPercentage models.Money `json:"discount_percentage"`
	ValidFrom          time.Time    `json:"valid_from" binding:"required"`
	ValidUntil         time.Time    `json:"valid_until" binding:"required"`
	IsActive           *bool        `json:"is_active"`
}

func (r OfferRequest) toInput() service.OfferInput {
	return service.OfferInput{
		Name:               r.Name,
		Scope:              strings.TrimSpace(r.Scope),
		TargetID:           r.TargetID,
		DiscountPercentage: r.DiscountPercentage,
		ValidFrom:          r.ValidFrom,
		ValidUntil:         r.ValidUntil,
		IsActive:           r.IsActive,
	}
}

// ListOffers 促销列表
func (h *Handler) ListOffers(c *gin.Context) {
	page, pageSize := handlershared.PageQuery(c)
	offers, total, err := h.OfferAdminService.List(repository.OfferListFilter{
		Page:       page,
		PageSize:   pageSize,
		Scope:      strings.TrimSpace(c.Query("scope")),
		ProductID:  handlershared.ParseUintQuery(c, "product_id"),
		CategoryID: handlershared.ParseUintQuery(c, "category_id"),
		IsActive:   handlershared.ParseBoolQuery(c, "is_active"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.offer_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, offers, response.NewPagination(page, pageSize, total))
}

// CreateOffer 创建促销
func (h *Handler) CreateOffer(c *gin.Context) {
	var req OfferRequest
	if !bindJSON(c, &req) {
		return
	}
	offer, err := h.OfferAdminService.Create(req.toInput())
	if err != nil {
		respondMappedError(c, err, handlershared.CatalogErrorRules, "error.offer_save_failed")
		return
	}
	response.Success(c, offer)
}

// UpdateOffer 更新促销
func (h *Handler) UpdateOffer(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req OfferRequest
	if !bindJSON(c, &req) {
		return
	}
	offer, err := h.OfferAdminService.Update(id, req.toInput())
	if err != nil {
		respondMappedError(c, err, handlershared.CatalogErrorRules, "error.offer_save_failed")
		return
	}
	response.Success(c, offer)
}

// DeactivateOffer 停用促销
func (h *Handler) DeactivateOffer(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.OfferAdminService.Deactivate(id); err != nil {
		respondMappedError(c, err, handlershared.CatalogErrorRules, "error.offer_save_failed")
		return
	}
	response.Success(c, nil)
}

// DeleteOffer 删除促销
func (h *Handler) DeleteOffer(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.OfferAdminService.Delete(id); err != nil {
		respondMappedError(c, err, handlershared.CatalogErrorRules, "error.offer_save_failed")
		return
	}
	response.Success(c, nil)
}
