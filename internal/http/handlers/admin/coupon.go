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

// CouponRequest 优惠券请求
type CouponRequest struct {
	Code          string        `json:"code" binding:"required"`
	DiscountType  string        `json:"discount_type" binding:"required"`
	DiscountValue models.Money  `json:"discount_value"`
	MinCartValue  models.Money  `json:"min_cart_value"`
	MaxDiscount   *models.Money `json:"max_discount"`
	MaxUsage      int           `json:"max_usage"`
	PerUserLimit  int           `json:"per_user_limit"`
	ValidFrom     *time.Time    `json:"valid_from"`
	ValidUntil    *time.Time    `json:"valid_until"`
	IsActive      *bool         `json:"is_active"`
}

func (r CouponRequest) toInput() service.CouponInput {
	return service.CouponInput{
		Code:          r.Code,
		DiscountType:  strings.TrimSpace(r.DiscountType),
		DiscountValue: r.DiscountValue,
		MinCartValue:  r.MinCartValue,
		MaxDiscount:   r.MaxDiscount,
		MaxUsage:      r.MaxUsage,
		PerUserLimit:  r.PerUserLimit,
		ValidFrom:     r.ValidFrom,
		ValidUntil:    r.ValidUntil,
		IsActive:      r.IsActive,
	}
}

// GetAdminCoupons 获取优惠券列表
func (h *Handler) GetAdminCoupons(c *gin.Context) {
	page, pageSize := handlershared.PageQuery(c)
	coupons, total, err := h.CouponAdminService.List(repository.CouponListFilter{
		Page:     page,
		PageSize: pageSize,
		Code:     strings.TrimSpace(c.Query("code")),
		IsActive: handlershared.ParseBoolQuery(c, "is_active"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.coupon_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, coupons, response.NewPagination(page, pageSize, total))
}

// CreateCoupon 创建优惠券
func (h *Handler) CreateCoupon(c *gin.Context) {
	var req CouponRequest
	if !bindJSON(c, &req) {
		return
	}
	coupon, err := h.CouponAdminService.Create(req.toInput())
	if err != nil {
		respondMappedError(c, err, handlershared.CouponErrorRules, "error.coupon_save_failed")
		return
	}
	response.Success(c, coupon)
}

// UpdateCoupon 更新优惠券
func (h *Handler) UpdateCoupon(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req CouponRequest
	if !bindJSON(c, &req) {
		return
	}
	coupon, err := h.CouponAdminService.Update(id, req.toInput())
	if err != nil {
		respondMappedError(c, err, handlershared.CouponErrorRules, "error.coupon_save_failed")
		return
	}
	response.Success(c, coupon)
}

// DeleteCoupon 删除优惠券
func (h *Handler) DeleteCoupon(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.CouponAdminService.Delete(id); err != nil {
		respondMappedError(c, err, handlershared.CouponErrorRules, "error.coupon_save_failed")
		return
	}
	response.Success(c, nil)
}

// GetCouponUsages 优惠券使用记录
func (h *Handler) GetCouponUsages(c *gin.Context) {
	page, pageSize := handlershared.PageQuery(c)
	usages, total, err := h.CouponAdminService.ListUsages(repository.CouponUsageListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   handlershared.ParseUintQuery(c, "user_id"),
		CouponID: handlershared.ParseUintQuery(c, "coupon_id"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.coupon_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, usages, response.NewPagination(page, pageSize, total))
}
