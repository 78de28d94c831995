package models

import "time"

// Cart 购物车聚合（每个用户一个），金额字段在每次变更后重算并落库
type Cart struct {
	ID                  uint      `gorm:"primarykey" json:"id"`                                                // 主键
	UserID              uint      `gorm:"uniqueIndex;not null" json:"user_id"`                                 // 用户ID
	CouponID            *uint     `gorm:"index" json:"coupon_id,omitempty"`                                    // 已应用优惠券
	TotalActualPrice    Money     `gorm:"type:decimal(20,2);not null;default:0" json:"total_actual_price"`     // 原价合计
	TotalSalePrice      Money     `gorm:"type:decimal(20,2);not null;default:0" json:"total_sale_price"`       // 售价合计
	TotalNormalDiscount Money     `gorm:"type:decimal(20,2);not null;default:0" json:"total_normal_discount"`  // 原价与售价差额
	TotalOfferDiscount  Money     `gorm:"type:decimal(20,2);not null;default:0" json:"total_offer_discount"`   // 促销折扣合计
	SubtotalAfterOffers Money     `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal_after_offers"`  // 促销后小计
	DeliveryCharge      Money     `gorm:"type:decimal(20,2);not null;default:0" json:"delivery_charge"`        // 运费
	GrandTotal          Money     `gorm:"type:decimal(20,2);not null;default:0" json:"grand_total"`            // 应付合计（不含优惠券）
	CouponDiscount      Money     `gorm:"type:decimal(20,2);not null;default:0" json:"coupon_discount"`        // 优惠券抵扣
	PayableAmount       Money     `gorm:"type:decimal(20,2);not null;default:0" json:"payable_amount"`         // 扣除优惠券后应付
	CreatedAt           time.Time `gorm:"index" json:"created_at"`                                             // 创建时间
	UpdatedAt           time.Time `json:"updated_at"`                                                          // 更新时间

	Coupon *Coupon    `gorm:"foreignKey:CouponID" json:"coupon,omitempty"` // 关联优惠券
	Items  []CartItem `gorm:"foreignKey:CartID" json:"items,omitempty"`    // 购物车项
}

// TableName 指定表名
func (Cart) TableName() string {
	return "carts"
}

// CartItem 购物车项
type CartItem struct {
	ID        uint      `gorm:"primarykey" json:"id"`                                           // 主键
	CartID    uint      `gorm:"not null;uniqueIndex:idx_cart_item_variant" json:"cart_id"`      // 购物车ID
	VariantID uint      `gorm:"not null;uniqueIndex:idx_cart_item_variant" json:"variant_id"`   // 规格ID
	Quantity  int       `gorm:"not null" json:"quantity"`                                       // 数量
	CreatedAt time.Time `gorm:"index" json:"created_at"`                                        // 创建时间
	UpdatedAt time.Time `json:"updated_at"`                                                     // 更新时间

	Variant *ProductVariant `gorm:"foreignKey:VariantID" json:"variant,omitempty"` // 关联规格
}

// TableName 指定表名
func (CartItem) TableName() string {
	return "cart_items"
}
