package admin

import (
	"time"

	handlershared "github.com/dujiao-next/storefront/internal/http/handlers/shared"
	"github.com/dujiao-next/storefront/internal/http/response"
	"github.com/dujiao-next/storefront/internal/models"
	"github.com/dujiao-next/storefront/internal/repository"
	"github.com/dujiao-next/storefront/internal/service"

	"github.com/gin-gonic/gin"
)

const defaultReferralRetryLimit = 100

// ReferralOfferRequest 邀请活动请求
type ReferralOfferRequest struct {
	Name           string       `json:"name" binding:"required"`
	Description    string       `json:"description"`
	ReferrerReward models.Money `json:"referrer_reward"`
	ReferredReward models.Money `json:"referred_reward"`
	IsActive       *bool        `json:"is_active"`
	ValidFrom      *time.Time   `json:"valid_from"`
	ValidUntil     *time.Time   `json:"valid_until"`
}

func (r ReferralOfferRequest) toInput() service.ReferralOfferInput {
	return service.ReferralOfferInput{
		Name:           r.Name,
		Description:    r.Description,
		ReferrerReward: r.ReferrerReward,
		ReferredReward: r.ReferredReward,
		IsActive:       r.IsActive,
		ValidFrom:      r.ValidFrom,
		ValidUntil:     r.ValidUntil,
	}
}

// GetReferralOffers 邀请活动列表
func (h *Handler) GetReferralOffers(c *gin.Context) {
	offers, err := h.ReferralService.ListOffers()
	if err != nil {
		respondError(c, response.CodeInternal, "error.referral_fetch_failed", err)
		return
	}
	response.Success(c, offers)
}

// CreateReferralOffer 创建邀请活动
func (h *Handler) CreateReferralOffer(c *gin.Context) {
	var req ReferralOfferRequest
	if !bindJSON(c, &req) {
		return
	}
	offer, err := h.ReferralService.CreateOffer(req.toInput())
	if err != nil {
		respondMappedError(c, err, handlershared.ReferralErrorRules, "error.referral_update_failed")
		return
	}
	response.Success(c, offer)
}

// UpdateReferralOffer 更新邀请活动
func (h *Handler) UpdateReferralOffer(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req ReferralOfferRequest
	if !bindJSON(c, &req) {
		return
	}
	offer, err := h.ReferralService.UpdateOffer(id, req.toInput())
	if err != nil {
		respondMappedError(c, err, handlershared.ReferralErrorRules, "error.referral_update_failed")
		return
	}
	response.Success(c, offer)
}

// GetReferrals 邀请记录
func (h *Handler) GetReferrals(c *gin.Context) {
	page, pageSize := handlershared.PageQuery(c)
	referrals, total, err := h.ReferralService.ListReferrals(repository.ReferralListFilter{
		Page:       page,
		PageSize:   pageSize,
		ReferrerID: handlershared.ParseUintQuery(c, "referrer_id"),
		IsUsed:     handlershared.ParseBoolQuery(c, "is_used"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.referral_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, referrals, response.NewPagination(page, pageSize, total))
}

// RetryReferralRewards 补发未入账的邀请奖励
func (h *Handler) RetryReferralRewards(c *gin.Context) {
	processed, err := h.ReferralService.RetryPendingRewards(c.Request.Context(), defaultReferralRetryLimit)
	if err != nil {
		respondMappedError(c, err, handlershared.ReferralErrorRules, "error.referral_update_failed")
		return
	}
	requestLog(c).Infow("admin_referral_rewards_retried", "operator", currentUsername(c), "processed", processed)
	response.Success(c, gin.H{"processed": processed})
}
