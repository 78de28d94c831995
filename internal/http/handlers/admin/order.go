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

// UpdateItemStatusRequest 订单项状态流转请求
type UpdateItemStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// AdminCancelItemRequest 后台取消订单项请求
type AdminCancelItemRequest struct {
	Reason       string `json:"reason" binding:"required"`
	CustomReason string `json:"custom_reason"`
}

// GetAdminOrders 获取订单列表
func (h *Handler) GetAdminOrders(c *gin.Context) {
	page, pageSize := handlershared.PageQuery(c)
	createdFrom, err := handlershared.ParseTimeNullable(c.Query("created_from"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	createdTo, err := handlershared.ParseTimeNullable(c.Query("created_to"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	orders, total, err := h.OrderService.ListOrdersForAdmin(repository.OrderListFilter{
		Page:          page,
		PageSize:      pageSize,
		UserID:        handlershared.ParseUintQuery(c, "user_id"),
		OrderNo:       strings.TrimSpace(c.Query("order_no")),
		PaymentMethod: strings.TrimSpace(c.Query("payment_method")),
		ItemStatus:    strings.TrimSpace(c.Query("status")),
		IsPaid:        handlershared.ParseBoolQuery(c, "is_paid"),
		CreatedFrom:   createdFrom,
		CreatedTo:     createdTo,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.order_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, orders, response.NewPagination(page, pageSize, total))
}

// GetAdminOrder 获取订单详情
func (h *Handler) GetAdminOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	order, err := h.OrderService.GetOrderForAdmin(id)
	if err != nil {
		respondMappedError(c, err, handlershared.OrderErrorRules, "error.order_fetch_failed")
		return
	}
	response.Success(c, order)
}

// GetAdminOrderPayments 订单网关支付记录
func (h *Handler) GetAdminOrderPayments(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	payments, err := h.PaymentService.ListOrderPayments(id)
	if err != nil {
		respondError(c, response.CodeInternal, "error.payment_fetch_failed", err)
		return
	}
	response.Success(c, payments)
}

// GetAdminOrderInvoice 订单发票数据
func (h *Handler) GetAdminOrderInvoice(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	order, err := h.OrderService.GetOrderForAdmin(id)
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

// UpdateOrderItemStatus 推进订单项履约状态
func (h *Handler) UpdateOrderItemStatus(c *gin.Context) {
	itemID, ok := h.resolveOrderItem(c)
	if !ok {
		return
	}
	var req UpdateItemStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.OrderService.UpdateItemStatus(c.Request.Context(), itemID, strings.TrimSpace(req.Status))
	if err != nil {
		respondMappedError(c, err, handlershared.OrderErrorRules, "error.order_update_failed")
		return
	}
	requestLog(c).Infow("admin_order_item_status_updated",
		"operator", currentUsername(c),
		"item_id", itemID,
		"status", item.Status,
	)
	response.Success(c, item)
}

// CancelOrderItem 后台取消订单项，退款规则与用户取消一致
func (h *Handler) CancelOrderItem(c *gin.Context) {
	itemID, ok := h.resolveOrderItem(c)
	if !ok {
		return
	}
	var req AdminCancelItemRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.OrderService.AdminCancelItem(c.Request.Context(), service.CancelItemInput{
		ItemID:       itemID,
		Reason:       req.Reason,
		CustomReason: req.CustomReason,
	})
	if err != nil {
		respondMappedError(c, err, handlershared.OrderErrorRules, "error.order_update_failed")
		return
	}
	requestLog(c).Infow("admin_order_item_cancelled",
		"operator", currentUsername(c),
		"item_id", itemID,
		"refund_amount", result.RefundAmount,
	)
	response.Success(c, result)
}

// resolveOrderItem 校验路径中的订单项属于该订单
func (h *Handler) resolveOrderItem(c *gin.Context) (uint, bool) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return 0, false
	}
	itemID, ok := parseIDParam(c, "item_id")
	if !ok {
		return 0, false
	}
	order, err := h.OrderService.GetOrderForAdmin(orderID)
	if err != nil {
		respondMappedError(c, err, handlershared.OrderErrorRules, "error.order_fetch_failed")
		return 0, false
	}
	if !orderHasItem(order, itemID) {
		respondError(c, response.CodeNotFound, "error.order_item_not_found", nil)
		return 0, false
	}
	return itemID, true
}

func orderHasItem(order *models.Order, itemID uint) bool {
	if order == nil {
		return false
	}
	for _, item := range order.Items {
		if item.ID == itemID {
			return true
		}
	}
	return false
}
