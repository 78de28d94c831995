package public

import (
	"strings"

	handlershared "github.com/dujiao-next/storefront/internal/http/handlers/shared"
	"github.com/dujiao-next/storefront/internal/http/response"
	"github.com/dujiao-next/storefront/internal/repository"

	"github.com/gin-gonic/gin"
)

// ReturnRequestBody 退货申请请求
type ReturnRequestBody struct {
	Reason string `json:"reason"`
}

// RequestReturn 对已送达的订单项发起退货
func (h *Handler) RequestReturn(c *gin.Context) {
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
	var req ReturnRequestBody
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
	returnReq, err := h.ReturnService.RequestReturn(c.Request.Context(), uid, itemID, req.Reason)
	if err != nil {
		respondMappedError(c, err, handlershared.ReturnErrorRules, "error.return_update_failed")
		return
	}
	response.Success(c, returnReq)
}

// ListMyReturns 我的退货申请
func (h *Handler) ListMyReturns(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.PageQuery(c)
	items, total, err := h.ReturnService.List(repository.ReturnListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   uid,
		Status:   strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.return_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, items, response.NewPagination(page, pageSize, total))
}
