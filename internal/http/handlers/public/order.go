package public

import (
	"strings"
	"time"

	handlershared "github.com/dujiao-next/storefront/internal/http/handlers/shared"
	"github.com/dujiao-next/storefront/internal/http/response"
	"github.com/dujiao-next/storefront/internal/repository"
	"github.com/dujiao-next/storefront/internal/service"

	"github.com/gin-gonic/gin"
)

// PlaceOrderRequest 下单请求，商品取自当前购物车
type PlaceOrderRequest struct {
	PaymentMethod   string `json:"payment_method" binding:"required"`
	ShippingName    string `json:"shipping_name"`
	ShippingPhone   string `json:"shipping_phone"`
	ShippingAddress string `json:"shipping_address"`
	ShippingPincode string `json:"shipping_pincode"`
}

// CancelItemRequest 取消订单项请求
type CancelItemRequest struct {
	Reason       string `json:"reason" binding:"required"`
	CustomReason string `json:"custom_reason"`
}

// PlaceOrder 购物车下单
func (h *Handler) PlaceOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req PlaceOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.CheckoutService.PlaceOrder(c.Request.Context(), service.PlaceOrderInput{
		UserID:          uid,
		PaymentMethod:   strings.TrimSpace(req.PaymentMethod),
		ShippingName:    req.ShippingName,
		ShippingPhone:   req.ShippingPhone,
		ShippingAddress: req.ShippingAddress,
		ShippingPincode: req.ShippingPincode,
	})
	if err != nil {
		respondMappedError(c, err, handlershared.CheckoutErrorRules, "error.order_create_failed")
		return
	}
	response.Success(c, result)
}

// RetryOrderPayment 支付失败后重新发起网关支付
func (h *Handler) RetryOrderPayment(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orderID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	result, err := h.CheckoutService.RetryOrderPayment(c.Request.Context(), uid, orderID)
	if err != nil {
		respondMappedError(c, err, handlershared.CheckoutErrorRules, "error.order_update_failed")
		return
	}
	response.Success(c, result)
}

// ListOrders 获取订单列表
func (h *Handler) ListOrders(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.PageQuery(c)

	orders, total, err := h.OrderService.ListOrdersByUser(repository.OrderListFilter{
		Page:       page,
		PageSize:   pageSize,
		UserID:     uid,
		OrderNo:    strings.TrimSpace(c.Query("order_no")),
		ItemStatus: strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.order_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, orders, response.NewPagination(page, pageSize, total))
}

// GetOrder 获取订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orderID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	order, err := h.OrderService.GetOrderByUser(orderID, uid)
	if err != nil {
		respondMappedError(c, err, handlershared.OrderErrorRules, "error.order_fetch_failed")
		return
	}
	response.Success(c, order)
}

// GetOrderByOrderNo 按订单号获取订单详情
func (h *Handler) GetOrderByOrderNo(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orderNo := strings.TrimSpace(c.Param("order_no"))
	if orderNo == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	order, err := h.OrderService.GetOrderByUserOrderNo(orderNo, uid)
	if err != nil {
		respondMappedError(c, err, handlershared.OrderErrorRules, "error.order_fetch_failed")
		return
	}
	response.Success(c, order)
}

// CancelOrderItem 用户取消订单项，已支付部分按比例退回钱包
func (h *Handler) CancelOrderItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orderID, okOrder := handlershared.ParseUintParam(c, "id")
	itemID, okItem := handlershared.ParseUintParam(c, "item_id")
	if !okOrder || !okItem {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	var req CancelItemRequest
	if !bindJSON(c, &req) {
		return
	}
	order, _, err := h.OrderService.GetItemForUser(itemID, uid)
	if err != nil {
		respondMappedError(c, err, handlershared.OrderErrorRules, "error.order_fetch_failed")
		return
	}
	if order.ID != orderID {
		respondError(c, response.CodeNotFound, "error.order_item_not_found", nil)
		return
	}

	result, err := h.OrderService.CancelItem(c.Request.Context(), uid, service.CancelItemInput{
		ItemID:       itemID,
		Reason:       req.Reason,
		CustomReason: req.CustomReason,
	})
	if err != nil {
		respondMappedError(c, err, handlershared.OrderErrorRules, "error.order_update_failed")
		return
	}
	response.Success(c, result)
}

// GetOrderInvoice 获取订单发票数据
func (h *Handler) GetOrderInvoice(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orderID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	order, err := h.OrderService.GetOrderByUser(orderID, uid)
	if err != nil {
		respondMappedError(c, err, handlershared.OrderErrorRules, "error.order_fetch_failed")
		return
	}
	invoice, err := service.BuildInvoice(order, time.Now())
	if err != nil {
		respondError(c, response.CodeInternal, "error.invoice_unavailable", err)
		return
	}
	response.Success(c, invoice)
}

// ListOrderPayments 订单的网关支付记录
func (h *Handler) ListOrderPayments(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orderID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if _, err := h.OrderService.GetOrderByUser(orderID, uid); err != nil {
		respondMappedError(c, err, handlershared.OrderErrorRules, "error.order_fetch_failed")
		return
	}
	payments, err := h.PaymentService.ListOrderPayments(orderID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.payment_fetch_failed", err)
		return
	}
	response.Success(c, payments)
}
