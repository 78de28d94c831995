package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/dujiao-next/storefront/internal/constants"
	"github.com/dujiao-next/storefront/internal/logger"
	"github.com/dujiao-next/storefront/internal/models"
	"github.com/dujiao-next/storefront/internal/queue"
	"github.com/dujiao-next/storefront/internal/repository"

	"gorm.io/gorm"
)

const (
	referralCodeLength   = 8
	referralCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	referralRetryDelay   = time.Minute
)

// ReferralService 邀请码与邀请奖励
type ReferralService struct {
	referralRepo repository.ReferralRepository
	orderRepo    repository.OrderRepository
	walletSvc    *WalletService
	queueClient  *queue.Client
	notifier     Notifier
	enabled      bool
}

// NewReferralService 创建邀请服务
func NewReferralService(referralRepo repository.ReferralRepository, orderRepo repository.OrderRepository, walletSvc *WalletService, queueClient *queue.Client, notifier Notifier, enabled bool) *ReferralService {
	return &ReferralService{
		referralRepo: referralRepo,
		orderRepo:    orderRepo,
		walletSvc:    walletSvc,
		queueClient:  queueClient,
		notifier:     notifierOrNoop(notifier),
		enabled:      enabled,
	}
}

// ReferralRewardResult 奖励发放结果
type ReferralRewardResult struct {
	Referral         *models.Referral `json:"referral"`
	ReferrerCredited bool             `json:"referrer_credited"`
	ReferredCredited bool             `json:"referred_credited"`
}

// GetOrCreateCode 获取用户当前可分享的邀请码，没有则生成
func (s *ReferralService) GetOrCreateCode(userID uint) (*models.Referral, error) {
	if userID == 0 {
		return nil, ErrUserNotFound
	}
	existing, err := s.referralRepo.GetUnusedByReferrer(userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	var lastErr error
	for attempt := 0; attempt < 5; attempt++ {
		code, err := generateReferralCode()
		if err != nil {
			return nil, err
		}
		taken, err := s.referralRepo.GetByCode(code)
		if err != nil {
			return nil, err
		}
		if taken != nil {
			continue
		}
		referral := &models.Referral{ReferrerID: userID, Code: code}
		if err := s.referralRepo.Create(referral); err != nil {
			lastErr = err
			continue
		}
		return referral, nil
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, fmt.Errorf("generate referral code: exhausted attempts")
}

// ApplyCode 尚未完成过支付的用户绑定邀请码，同时快照当前生效的奖励方案
func (s *ReferralService) ApplyCode(userID uint, code string) (*models.Referral, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if userID == 0 {
		return nil, ErrUserNotFound
	}
	if code == "" {
		return nil, ErrReferralCodeNotFound
	}
	paid, err := s.orderRepo.CountPaidByUser(userID)
	if err != nil {
		return nil, err
	}
	if paid > 0 {
		return nil, ErrReferralNotEligible
	}
	now := time.Now()
	var applied *models.Referral
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.referralRepo.WithTx(tx)
		bound, err := repo.GetByReferredUserForUpdate(userID)
		if err != nil {
			return err
		}
		if bound != nil {
			return ErrReferralAlreadyBound
		}
		referral, err := repo.GetByCodeForUpdate(code)
		if err != nil {
			return err
		}
		if referral == nil {
			return ErrReferralCodeNotFound
		}
		if referral.ReferrerID == userID {
			return ErrReferralSelf
		}
		if referral.IsUsed {
			return ErrReferralAlreadyUsed
		}
		offer, err := repo.GetActiveOffer(now)
		if err != nil {
			return err
		}
		if offer == nil {
			return ErrReferralNoActiveOffer
		}
		referred := userID
		offerID := offer.ID
		if err := repo.UpdateFields(referral.ID, map[string]interface{}{
			"referred_user_id": referred,
			"is_used":          true,
			"used_at":          now,
			"offer_id":         offerID,
			"updated_at":       now,
		}); err != nil {
			return err
		}
		referral.ReferredUserID = &referred
		referral.IsUsed = true
		referral.UsedAt = &now
		referral.OfferID = &offerID
		referral.Offer = offer
		applied = referral
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("referral_code_applied", "referral_id", applied.ID, "referrer_id", applied.ReferrerID, "referred_user_id", userID)
	return applied, nil
}

// GiveRewards 发放邀请奖励。双方奖励各自由标记控制，重复调用不会重复入账。
func (s *ReferralService) GiveRewards(ctx context.Context, referralID uint) (*ReferralRewardResult, error) {
	result := &ReferralRewardResult{}
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.referralRepo.WithTx(tx)
		referral, err := repo.GetByIDForUpdate(referralID)
		if err != nil {
			return err
		}
		if referral == nil {
			return ErrReferralNotFound
		}
		result.Referral = referral
		if !referral.IsUsed || referral.ReferredUserID == nil {
			return ErrReferralNotFound
		}
		if referral.RewardsComplete() {
			return nil
		}
		offer := referral.Offer
		if offer == nil {
			if referral.OfferID == nil {
				return ErrReferralOfferInvalid
			}
			offer, err = repo.GetOfferByID(*referral.OfferID)
			if err != nil {
				return err
			}
			if offer == nil {
				return ErrReferralOfferInvalid
			}
		}

		updates := map[string]interface{}{}
		if !referral.RewardGivenToReferred {
			if offer.ReferredReward.Decimal.IsPositive() {
				if _, err := s.walletSvc.CreditInTx(tx, WalletCreditInput{
					UserID:      *referral.ReferredUserID,
					Amount:      offer.ReferredReward.Decimal,
					Prefix:      constants.WalletTxnPrefixReferral,
					Description: fmt.Sprintf("邀请奖励（邀请码 %s）", referral.Code),
				}); err != nil {
					return err
				}
				result.ReferredCredited = true
			}
			updates["reward_given_to_referred"] = true
			referral.RewardGivenToReferred = true
		}
		if !referral.RewardGivenToReferrer {
			if offer.ReferrerReward.Decimal.IsPositive() {
				if _, err := s.walletSvc.CreditInTx(tx, WalletCreditInput{
					UserID:      referral.ReferrerID,
					Amount:      offer.ReferrerReward.Decimal,
					Prefix:      constants.WalletTxnPrefixReferral,
					Description: fmt.Sprintf("邀请好友奖励（邀请码 %s）", referral.Code),
				}); err != nil {
					return err
				}
				result.ReferrerCredited = true
			}
			updates["reward_given_to_referrer"] = true
			referral.RewardGivenToReferrer = true
		}
		updates["updated_at"] = time.Now()
		return repo.UpdateFields(referral.ID, updates)
	})
	if err != nil {
		return nil, err
	}
	if result.ReferredCredited || result.ReferrerCredited {
		logger.Infow("referral_rewards_given",
			"referral_id", referralID,
			"referrer_credited", result.ReferrerCredited,
			"referred_credited", result.ReferredCredited,
		)
		ref := result.Referral
		if result.ReferredCredited {
			s.notifier.Notify(ctx, OrderEvent{Event: constants.EventReferralReward, UserID: *ref.ReferredUserID, Extra: map[string]string{"role": "referred"}})
		}
		if result.ReferrerCredited {
			s.notifier.Notify(ctx, OrderEvent{Event: constants.EventReferralReward, UserID: ref.ReferrerID, Extra: map[string]string{"role": "referrer"}})
		}
	}
	return result, nil
}

// OnOrderPaid 被邀请用户的首笔订单支付确认后发放奖励，之后的订单不再触发。
// 发放失败时投递延迟任务重试，不影响支付主流程。
func (s *ReferralService) OnOrderPaid(ctx context.Context, userID uint) {
	if s == nil || !s.enabled || userID == 0 {
		return
	}
	referral, err := s.referralRepo.GetByReferredUser(userID)
	if err != nil {
		logger.Warnw("referral_lookup_failed", "user_id", userID, "error", err)
		return
	}
	if referral == nil || referral.RewardsComplete() {
		return
	}
	paid, err := s.orderRepo.CountPaidByUser(userID)
	if err != nil {
		logger.Warnw("referral_paid_count_failed", "user_id", userID, "error", err)
		return
	}
	// 首单奖励发放失败的记录由 RetryPendingRewards 补发
	if paid != 1 {
		return
	}
	if _, err := s.GiveRewards(ctx, referral.ID); err != nil {
		logger.Warnw("referral_reward_failed", "referral_id", referral.ID, "user_id", userID, "error", err)
		if s.queueClient != nil && s.queueClient.Enabled() {
			if err := s.queueClient.EnqueueReferralRewardSync(queue.ReferralRewardSyncPayload{ReferralID: referral.ID}, referralRetryDelay); err != nil {
				logger.Warnw("referral_reward_enqueue_failed", "referral_id", referral.ID, "error", err)
			}
		}
	}
}

// RetryPendingRewards 补发被邀请人已有支付订单但奖励未发完的记录，返回成功处理数
func (s *ReferralService) RetryPendingRewards(ctx context.Context, limit int) (int, error) {
	if !s.enabled {
		return 0, nil
	}
	pending, err := s.referralRepo.ListPendingRewards(limit)
	if err != nil {
		return 0, err
	}
	processed := 0
	for _, referral := range pending {
		if referral.ReferredUserID == nil {
			continue
		}
		paid, err := s.orderRepo.CountPaidByUser(*referral.ReferredUserID)
		if err != nil {
			return processed, err
		}
		if paid == 0 {
			continue
		}
		if _, err := s.GiveRewards(ctx, referral.ID); err != nil {
			logger.Warnw("referral_reward_retry_failed", "referral_id", referral.ID, "error", err)
			continue
		}
		processed++
	}
	return processed, nil
}

// ListReferrals 邀请记录列表
func (s *ReferralService) ListReferrals(filter repository.ReferralListFilter) ([]models.Referral, int64, error) {
	return s.referralRepo.List(filter)
}

// ReferralOfferInput 奖励方案输入
type ReferralOfferInput struct {
	Name           string
	Description    string
	ReferrerReward models.Money
	ReferredReward models.Money
	IsActive       *bool
	ValidFrom      *time.Time
	ValidUntil     *time.Time
}

// CreateOffer 创建奖励方案
func (s *ReferralService) CreateOffer(input ReferralOfferInput) (*models.ReferralOffer, error) {
	offer := &models.ReferralOffer{IsActive: true, ValidFrom: time.Now()}
	if err := applyReferralOfferInput(offer, input); err != nil {
		return nil, err
	}
	if err := s.referralRepo.CreateOffer(offer); err != nil {
		return nil, err
	}
	if input.IsActive != nil && !*input.IsActive {
		offer.IsActive = false
		if err := s.referralRepo.UpdateOffer(offer); err != nil {
			return nil, err
		}
	}
	return offer, nil
}

// UpdateOffer 更新奖励方案
func (s *ReferralService) UpdateOffer(id uint, input ReferralOfferInput) (*models.ReferralOffer, error) {
	offer, err := s.referralRepo.GetOfferByID(id)
	if err != nil {
		return nil, err
	}
	if offer == nil {
		return nil, ErrReferralOfferInvalid
	}
	if err := applyReferralOfferInput(offer, input); err != nil {
		return nil, err
	}
	if err := s.referralRepo.UpdateOffer(offer); err != nil {
		return nil, err
	}
	return offer, nil
}

// ListOffers 奖励方案列表
func (s *ReferralService) ListOffers() ([]models.ReferralOffer, error) {
	return s.referralRepo.ListOffers()
}

func applyReferralOfferInput(offer *models.ReferralOffer, input ReferralOfferInput) error {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return ErrReferralOfferInvalid
	}
	if input.ReferrerReward.Decimal.IsNegative() || input.ReferredReward.Decimal.IsNegative() {
		return ErrReferralOfferInvalid
	}
	if input.ValidFrom != nil {
		offer.ValidFrom = *input.ValidFrom
	}
	offer.ValidUntil = input.ValidUntil
	if offer.ValidUntil != nil && offer.ValidUntil.Before(offer.ValidFrom) {
		return ErrReferralOfferInvalid
	}
	offer.Name = name
	offer.Description = strings.TrimSpace(input.Description)
	offer.ReferrerReward = models.NewMoneyFromDecimal(input.ReferrerReward.Decimal)
	offer.ReferredReward = models.NewMoneyFromDecimal(input.ReferredReward.Decimal)
	if input.IsActive != nil {
		offer.IsActive = *input.IsActive
	}
	return nil
}

func generateReferralCode() (string, error) {
	var b strings.Builder
	limit := big.NewInt(int64(len(referralCodeAlphabet)))
	for i := 0; i < referralCodeLength; i++ {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		b.WriteByte(referralCodeAlphabet[n.Int64()])
	}
	return b.String(), nil
}
