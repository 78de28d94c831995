package public

import (
	"strings"

	handlershared "github.com/dujiao-next/storefront/internal/http/handlers/shared"
	"github.com/dujiao-next/storefront/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ApplyReferralRequest 绑定邀请码请求
type ApplyReferralRequest struct {
	Code string `json:"code" binding:"required"`
}

// GetMyReferralCode 获取（必要时生成）我的邀请码
func (h *Handler) GetMyReferralCode(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	referral, err := h.ReferralService.GetOrCreateCode(uid)
	if err != nil {
		respondMappedError(c, err, handlershared.ReferralErrorRules, "error.referral_fetch_failed")
		return
	}
	response.Success(c, referral)
}

// ApplyReferralCode 注册后补绑邀请码
func (h *Handler) ApplyReferralCode(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req ApplyReferralRequest
	if !bindJSON(c, &req) {
		return
	}
	referral, err := h.ReferralService.ApplyCode(uid, strings.TrimSpace(req.Code))
	if err != nil {
		respondMappedError(c, err, handlershared.ReferralErrorRules, "error.referral_update_failed")
		return
	}
	response.Success(c, referral)
}
