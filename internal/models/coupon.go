package models

import (
	"time"

	"gorm.io/gorm"
)

// Coupon 优惠券
type Coupon struct {
	ID            uint           `gorm:"primarykey" json:"id"`                                         // 主键
	Code          string         `gorm:"uniqueIndex;not null" json:"code"`                             // 优惠码（大写）
	DiscountType  string         `gorm:"type:varchar(20);not null" json:"discount_type"`              // 类型（fixed/percentage）
	DiscountValue Money          `gorm:"type:decimal(20,2);not null" json:"discount_value"`            // 固定金额或百分比
	MinCartValue  Money          `gorm:"type:decimal(20,2);not null;default:0" json:"min_cart_value"` // 使用门槛
	MaxDiscount   *Money         `gorm:"type:decimal(20,2)" json:"max_discount,omitempty"`             // 最大优惠金额（空表示不限）
	MaxUsage      int            `gorm:"not null;default:0" json:"max_usage"`                          // 总使用上限（0 表示不限制）
	PerUserLimit  int            `gorm:"not null;default:1" json:"per_user_limit"`                     // 每人使用上限
	UsedCount     int            `gorm:"not null;default:0" json:"used_count"`                         // 已使用次数
	ValidFrom     *time.Time     `gorm:"index" json:"valid_from"`                                      // 生效时间
	ValidUntil    *time.Time     `gorm:"index" json:"valid_until"`                                     // 失效时间
	IsActive      bool           `gorm:"not null;default:true" json:"is_active"`                       // 是否启用
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                                      // 创建时间
	UpdatedAt     time.Time      `gorm:"index" json:"updated_at"`                                      // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                                               // 软删除时间
}

// TableName 指定表名
func (Coupon) TableName() string {
	return "coupons"
}
