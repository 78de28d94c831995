package public

import (
	"strings"

	handlershared "github.com/dujiao-next/storefront/internal/http/handlers/shared"
	"github.com/dujiao-next/storefront/internal/http/response"
	"github.com/dujiao-next/storefront/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// WalletTopupRequest 钱包充值请求
type WalletTopupRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// GetMyWallet 获取当前用户钱包
func (h *Handler) GetMyWallet(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	wallet, err := h.WalletService.GetWallet(uid)
	if err != nil {
		respondMappedError(c, err, handlershared.WalletErrorRules, "error.wallet_fetch_failed")
		return
	}
	response.Success(c, wallet)
}

// ListMyWalletTransactions 钱包流水
func (h *Handler) ListMyWalletTransactions(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
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

	txns, total, err := h.WalletService.ListTransactions(repository.WalletTransactionListFilter{
		Page:        page,
		PageSize:    pageSize,
		UserID:      uid,
		Type:        strings.TrimSpace(c.Query("type")),
		Status:      strings.TrimSpace(c.Query("status")),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.wallet_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, txns, response.NewPagination(page, pageSize, total))
}

// CreateWalletTopup 发起钱包充值，返回网关下单信息
func (h *Handler) CreateWalletTopup(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req WalletTopupRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.WalletService.CreateTopup(c.Request.Context(), uid, req.Amount)
	if err != nil {
		respondMappedError(c, err, handlershared.WalletErrorRules, "error.wallet_update_failed")
		return
	}
	response.Success(c, result)
}
