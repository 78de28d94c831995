package admin

import (
	"strings"

	handlershared "github.com/dujiao-next/storefront/internal/http/handlers/shared"
	"github.com/dujiao-next/storefront/internal/http/response"
	"github.com/dujiao-next/storefront/internal/repository"

	"github.com/gin-gonic/gin"
)

// WalletStatusRequest 钱包启停请求
type WalletStatusRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// GetAdminWallets 钱包列表
func (h *Handler) GetAdminWallets(c *gin.Context) {
	page, pageSize := handlershared.PageQuery(c)
	wallets, total, err := h.WalletService.ListWallets(repository.WalletListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   handlershared.ParseUintQuery(c, "user_id"),
		IsActive: handlershared.ParseBoolQuery(c, "is_active"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.wallet_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, wallets, response.NewPagination(page, pageSize, total))
}

// GetAdminWallet 指定用户的钱包
func (h *Handler) GetAdminWallet(c *gin.Context) {
	userID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}
	wallet, err := h.WalletService.GetWallet(userID)
	if err != nil {
		respondMappedError(c, err, handlershared.WalletErrorRules, "error.wallet_fetch_failed")
		return
	}
	response.Success(c, wallet)
}

// GetAdminWalletTransactions 钱包流水
func (h *Handler) GetAdminWalletTransactions(c *gin.Context) {
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
		UserID:      handlershared.ParseUintQuery(c, "user_id"),
		OrderID:     handlershared.ParseUintQuery(c, "order_id"),
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

// ReconcileWallet 对账：余额与流水合计比对
func (h *Handler) ReconcileWallet(c *gin.Context) {
	userID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}
	result, err := h.WalletService.Reconcile(userID)
	if err != nil {
		respondMappedError(c, err, handlershared.WalletErrorRules, "error.wallet_fetch_failed")
		return
	}
	if !result.Balanced {
		requestLog(c).Warnw("admin_wallet_reconcile_drift",
			"user_id", userID,
			"balance", result.Balance,
			"ledger_sum", result.LedgerSum,
			"drift", result.Drift,
		)
	}
	response.Success(c, result)
}

// UpdateWalletStatus 启用或冻结钱包
func (h *Handler) UpdateWalletStatus(c *gin.Context) {
	userID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}
	var req WalletStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	wallet, err := h.WalletService.AdminSetActive(userID, *req.IsActive)
	if err != nil {
		respondMappedError(c, err, handlershared.WalletErrorRules, "error.wallet_update_failed")
		return
	}
	response.Success(c, wallet)
}
