package admin

import (
	"strings"

	handlershared "github.com/dujiao-next/storefront/internal/http/handlers/shared"
	"github.com/dujiao-next/storefront/internal/http/response"
	"github.com/dujiao-next/storefront/internal/repository"
	"github.com/dujiao-next/storefront/internal/service"

	"github.com/gin-gonic/gin"
)

// ReturnDecisionRequest 退货审核请求
type ReturnDecisionRequest struct {
	AdminNote string `json:"admin_note"`
}

// GetAdminReturns 退货申请列表
func (h *Handler) GetAdminReturns(c *gin.Context) {
	page, pageSize := handlershared.PageQuery(c)
	items, total, err := h.ReturnService.List(repository.ReturnListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   handlershared.ParseUintQuery(c, "user_id"),
		OrderID:  handlershared.ParseUintQuery(c, "order_id"),
		Status:   strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.return_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, items, response.NewPagination(page, pageSize, total))
}

// GetAdminReturn 退货申请详情
func (h *Handler) GetAdminReturn(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	item, err := h.ReturnService.Get(id)
	if err != nil {
		respondMappedError(c, err, handlershared.ReturnErrorRules, "error.return_fetch_failed")
		return
	}
	response.Success(c, item)
}

// ApproveReturn 通过退货，退款入账到用户钱包
func (h *Handler) ApproveReturn(c *gin.Context) {
	h.decideReturn(c, true)
}

// RejectReturn 驳回退货
func (h *Handler) RejectReturn(c *gin.Context) {
	h.decideReturn(c, false)
}

func (h *Handler) decideReturn(c *gin.Context, approve bool) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	var req ReturnDecisionRequest
	// 备注可选，空请求体同样允许
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return
		}
	}
	input := service.ReturnDecisionInput{
		ReturnID:  id,
		AdminID:   adminID,
		AdminNote: strings.TrimSpace(req.AdminNote),
	}
	decide := h.ReturnService.Reject
	if approve {
		decide = h.ReturnService.Approve
	}
	item, err := decide(c.Request.Context(), input)
	if err != nil {
		respondMappedError(c, err, handlershared.ReturnErrorRules, "error.return_update_failed")
		return
	}
	requestLog(c).Infow("admin_return_decided",
		"return_id", id,
		"admin_id", adminID,
		"approved", approve,
	)
	response.Success(c, item)
}
