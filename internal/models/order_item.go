package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem 订单项，价格字段为下单时快照
type OrderItem struct {
	ID                 uint       `gorm:"primarykey" json:"id"`                                             // 主键
	OrderID            uint       `gorm:"index;not null" json:"order_id"`                                   // 订单ID
	ProductID          uint       `gorm:"index;not null" json:"product_id"`                                 // 商品ID
	VariantID          uint       `gorm:"index;not null" json:"variant_id"`                                 // 规格ID
	ProductName        string     `gorm:"type:varchar(200)" json:"product_name"`                            // 商品名称快照
	VariantName        string     `gorm:"type:varchar(100)" json:"variant_name"`                            // 规格名称快照
	Price              Money      `gorm:"type:decimal(20,2);not null;default:0" json:"price"`               // 售价快照
	OriginalPrice      Money      `gorm:"type:decimal(20,2);not null;default:0" json:"original_price"`      // 原价快照（MRP）
	OfferPercentage    Money      `gorm:"type:decimal(5,2);not null;default:0" json:"offer_percentage"`     // 下单时促销折扣
	OfferKind          string     `gorm:"type:varchar(20)" json:"offer_kind"`                               // 促销来源（product/category/none）
	EffectivePrice     Money      `gorm:"type:decimal(20,2);not null;default:0" json:"effective_price"`     // 促销后单价
	Quantity           int        `gorm:"not null" json:"quantity"`                                         // 数量
	Status             string     `gorm:"type:varchar(32);index;not null" json:"status"`                    // 订单项状态
	PaymentStatus      string     `gorm:"type:varchar(32);index;not null" json:"item_payment_status"`       // 订单项支付状态
	CancelReason       string     `gorm:"type:varchar(50)" json:"cancel_reason,omitempty"`                  // 取消原因
	CancelReasonCustom string     `gorm:"type:text" json:"cancel_reason_custom,omitempty"`                  // 自定义取消原因
	RefundAmount       Money      `gorm:"type:decimal(20,2);not null;default:0" json:"refund_amount"`       // 已退款金额
	DeliveredAt        *time.Time `json:"delivered_at,omitempty"`                                           // 签收时间
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`                                           // 取消时间
	CreatedAt          time.Time  `gorm:"index" json:"created_at"`                                          // 创建时间
	UpdatedAt          time.Time  `gorm:"index" json:"updated_at"`                                          // 更新时间
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}

// LineTotal 促销后行金额（快照单价 × 数量）
func (i *OrderItem) LineTotal() decimal.Decimal {
	if i == nil {
		return decimal.Zero
	}
	return i.EffectivePrice.Decimal.Mul(decimal.NewFromInt(int64(i.Quantity))).Round(2)
}
