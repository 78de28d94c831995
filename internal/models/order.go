package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order 订单
type Order struct {
	ID             uint   `gorm:"primarykey" json:"id"`                                         // 主键
	OrderNo        string `gorm:"uniqueIndex;not null" json:"order_no"`                         // 订单编号
	UserID         uint   `gorm:"index;not null" json:"user_id"`                                // 用户ID
	Subtotal       Money  `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal"`        // 促销后商品小计
	Discount       Money  `gorm:"type:decimal(20,2);not null;default:0" json:"discount"`        // 优惠券抵扣
	ShippingCost   Money  `gorm:"type:decimal(20,2);not null;default:0" json:"shipping_cost"`   // 运费
	TotalAmount    Money  `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"`    // 实付金额
	RefundedAmount Money  `gorm:"type:decimal(20,2);not null;default:0" json:"refunded_amount"` // 已退款到钱包的金额
	Currency       string `gorm:"type:varchar(10);not null" json:"currency"`                    // 币种
	PaymentMethod  string `gorm:"type:varchar(32);index;not null" json:"payment_method"`        // 支付方式
	IsPaid         bool   `gorm:"not null;default:false;index" json:"is_paid"`                  // 是否已支付
	CouponID       *uint  `gorm:"index" json:"coupon_id,omitempty"`                             // 优惠券ID
	GatewayOrderID string `gorm:"type:varchar(64);index" json:"gateway_order_id,omitempty"`     // 最近一次网关支付单号
	// 收货信息快照
	ShippingName    string         `gorm:"type:varchar(100)" json:"shipping_name"`
	ShippingPhone   string         `gorm:"type:varchar(32)" json:"shipping_phone"`
	ShippingAddress string         `gorm:"type:text" json:"shipping_address"`
	ShippingPincode string         `gorm:"type:varchar(16)" json:"shipping_pincode"`
	PaidAt          *time.Time     `gorm:"index" json:"paid_at"`    // 支付时间
	CreatedAt       time.Time      `gorm:"index" json:"created_at"` // 创建时间
	UpdatedAt       time.Time      `gorm:"index" json:"updated_at"` // 更新时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`          // 软删除时间

	Items  []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`   // 订单项
	Coupon *Coupon     `gorm:"foreignKey:CouponID" json:"coupon,omitempty"` // 优惠券
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

// AmountBalanced 校验 total = subtotal + shipping - discount（允许 0.01 误差）
func (o *Order) AmountBalanced() bool {
	if o == nil {
		return false
	}
	expected := o.Subtotal.Decimal.Add(o.ShippingCost.Decimal).Sub(o.Discount.Decimal)
	return expected.Sub(o.TotalAmount.Decimal).Abs().LessThanOrEqual(decimal.New(1, -2))
}
