package public

import (
	"time"

	handlershared "github.com/dujiao-next/storefront/internal/http/handlers/shared"
	"github.com/dujiao-next/storefront/internal/http/response"

	"github.com/gin-gonic/gin"
)

// CartItemRequest 购物车项请求
type CartItemRequest struct {
	VariantID uint `json:"variant_id" binding:"required"`
	Quantity  int  `json:"quantity"`
}

// CartQuantityRequest 修改数量请求，数量为 0 时移除
type CartQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// ApplyCouponRequest 使用优惠券请求
type ApplyCouponRequest struct {
	Code string `json:"code" binding:"required"`
}

// GetCart 获取购物车（读取时按最新价格与促销重算）
func (h *Handler) GetCart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	view, err := h.CartService.GetCart(uid)
	if err != nil {
		respondMappedError(c, err, handlershared.CartErrorRules, "error.cart_fetch_failed")
		return
	}
	response.Success(c, view)
}

// AddCartItem 加入购物车
func (h *Handler) AddCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CartItemRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.CartService.AddItem(uid, req.VariantID, req.Quantity)
	if err != nil {
		respondMappedError(c, err, handlershared.CartErrorRules, "error.cart_update_failed")
		return
	}
	response.Success(c, view)
}

// UpdateCartItem 修改购物车数量
func (h *Handler) UpdateCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	variantID, ok := handlershared.ParseUintParam(c, "variant_id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	var req CartQuantityRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.CartService.UpdateQuantity(uid, variantID, req.Quantity)
	if err != nil {
		respondMappedError(c, err, handlershared.CartErrorRules, "error.cart_update_failed")
		return
	}
	response.Success(c, view)
}

// DeleteCartItem 删除购物车项
func (h *Handler) DeleteCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	variantID, ok := handlershared.ParseUintParam(c, "variant_id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	view, err := h.CartService.RemoveItem(uid, variantID)
	if err != nil {
		respondMappedError(c, err, handlershared.CartErrorRules, "error.cart_update_failed")
		return
	}
	response.Success(c, view)
}

// ApplyCartCoupon 使用优惠券
func (h *Handler) ApplyCartCoupon(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req ApplyCouponRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.CartService.ApplyCoupon(uid, req.Code)
	if err != nil {
		respondMappedError(c, err, handlershared.CartErrorRules, "error.cart_update_failed")
		return
	}
	response.Success(c, view)
}

// RemoveCartCoupon 取消优惠券
func (h *Handler) RemoveCartCoupon(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	view, err := h.CartService.RemoveCoupon(uid)
	if err != nil {
		respondMappedError(c, err, handlershared.CartErrorRules, "error.cart_update_failed")
		return
	}
	response.Success(c, view)
}

// ListAvailableCoupons 当前用户可用的优惠券，remaining_uses 为 -1 表示不限次数
func (h *Handler) ListAvailableCoupons(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	coupons, err := h.CouponService.ListAvailable(uid, time.Now())
	if err != nil {
		respondMappedError(c, err, handlershared.CouponErrorRules, "error.coupon_fetch_failed")
		return
	}
	response.Success(c, gin.H{"coupons": coupons})
}
