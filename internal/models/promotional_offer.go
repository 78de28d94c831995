package models

import (
	"time"

	"gorm.io/gorm"
)

// PromotionalOffer 促销折扣（按商品或分类生效）
type PromotionalOffer struct {
	ID                 uint           `gorm:"primarykey" json:"id"`                                            // 主键
	Name               string         `gorm:"type:varchar(100);not null" json:"name"`                          // 活动名称
	Scope              string         `gorm:"type:varchar(20);index;not null" json:"scope"`                    // 范围（product/category）
	ProductID          *uint          `gorm:"index" json:"product_id,omitempty"`                               // 商品ID（商品范围）
	CategoryID         *uint          `gorm:"index" json:"category_id,omitempty"`                              // 分类ID（分类范围）
	DiscountPercentage Money          `gorm:"type:decimal(5,2);not null;default:0" json:"discount_percentage"` // 折扣百分比
	ValidFrom          time.Time      `gorm:"index;not null" json:"valid_from"`                                // 生效时间
	ValidUntil         time.Time      `gorm:"index;not null" json:"valid_until"`                               // 失效时间
	IsActive           bool           `gorm:"not null;default:true;index" json:"is_active"`                    // 是否启用
	CreatedAt          time.Time      `gorm:"index" json:"created_at"`                                         // 创建时间
	UpdatedAt          time.Time      `json:"updated_at"`                                                      // 更新时间
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`                                                  // 软删除时间
}

// TableName 指定表名
func (PromotionalOffer) TableName() string {
	return "promotional_offers"
}
