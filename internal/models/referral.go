package models

import "time"

// Referral 邀请码（一次性），被使用后记录被邀请人与奖励发放标记
type Referral struct {
	ID                    uint       `gorm:"primarykey" json:"id"`                                       // 主键
	ReferrerID            uint       `gorm:"index;not null" json:"referrer_id"`                          // 邀请人
	ReferredUserID        *uint      `gorm:"uniqueIndex" json:"referred_user_id,omitempty"`              // 被邀请人（每人只能被邀请一次）
	Code                  string     `gorm:"type:varchar(20);uniqueIndex;not null" json:"referral_code"` // 邀请码
	IsUsed                bool       `gorm:"not null;default:false;index" json:"is_used"`                // 是否已被使用
	UsedAt                *time.Time `json:"used_at,omitempty"`                                          // 使用时间
	OfferID               *uint      `gorm:"index" json:"offer_id,omitempty"`                            // 使用时生效的奖励方案
	RewardGivenToReferrer bool       `gorm:"not null;default:false" json:"reward_given_to_referrer"`     // 邀请人奖励已发
	RewardGivenToReferred bool       `gorm:"not null;default:false" json:"reward_given_to_referred"`     // 被邀请人奖励已发
	CreatedAt             time.Time  `gorm:"index" json:"created_at"`                                    // 创建时间
	UpdatedAt             time.Time  `json:"updated_at"`                                                 // 更新时间

	Offer *ReferralOffer `gorm:"foreignKey:OfferID" json:"offer,omitempty"` // 奖励方案
}

// TableName 指定表名
func (Referral) TableName() string {
	return "referrals"
}

// RewardsComplete 双方奖励均已发放
func (r *Referral) RewardsComplete() bool {
	return r != nil && r.RewardGivenToReferrer && r.RewardGivenToReferred
}

// ReferralOffer 邀请奖励方案
type ReferralOffer struct {
	ID             uint       `gorm:"primarykey" json:"id"`                                  // 主键
	Name           string     `gorm:"type:varchar(100);not null" json:"name"`                // 名称
	Description    string     `gorm:"type:text" json:"description"`                          // 说明
	ReferrerReward Money      `gorm:"type:decimal(20,2);not null" json:"referrer_reward"`    // 邀请人奖励
	ReferredReward Money      `gorm:"type:decimal(20,2);not null" json:"referred_reward"`    // 被邀请人奖励
	IsActive       bool       `gorm:"not null;default:true;index" json:"is_active"`          // 是否启用
	ValidFrom      time.Time  `gorm:"index;not null" json:"valid_from"`                      // 生效时间
	ValidUntil     *time.Time `gorm:"index" json:"valid_until,omitempty"`                    // 失效时间（空表示长期）
	CreatedAt      time.Time  `gorm:"index" json:"created_at"`                               // 创建时间
	UpdatedAt      time.Time  `json:"updated_at"`                                            // 更新时间
}

// TableName 指定表名
func (ReferralOffer) TableName() string {
	return "referral_offers"
}
