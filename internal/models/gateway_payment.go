package models

import "time"

// GatewayPayment 网关支付单，按网关订单号保证回调幂等
type GatewayPayment struct {
	ID                  uint       `gorm:"primarykey" json:"id"`                                            // 主键
	GatewayOrderID      string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"gateway_order_id"`   // 网关订单号
	Purpose             string     `gorm:"type:varchar(20);index;not null" json:"purpose"`                  // 用途（order/wallet_topup）
	UserID              uint       `gorm:"index;not null" json:"user_id"`                                   // 用户ID
	OrderID             *uint      `gorm:"index" json:"order_id,omitempty"`                                 // 关联订单
	WalletTransactionID *uint      `gorm:"index" json:"wallet_transaction_id,omitempty"`                    // 关联充值流水
	Amount              Money      `gorm:"type:decimal(20,2);not null" json:"amount"`                       // 金额
	Currency            string     `gorm:"type:varchar(10);not null" json:"currency"`                       // 币种
	Status              string     `gorm:"type:varchar(20);index;not null" json:"status"`                   // created/success/failed
	GatewayPaymentID    string     `gorm:"type:varchar(64);index" json:"gateway_payment_id,omitempty"`      // 网关支付流水号
	Signature           string     `gorm:"type:varchar(255)" json:"-"`                                      // 回调签名
	FailureReason       string     `gorm:"type:varchar(255)" json:"failure_reason,omitempty"`               // 失败原因
	CallbackAt          *time.Time `json:"callback_at,omitempty"`                                           // 回调时间
	CreatedAt           time.Time  `gorm:"index" json:"created_at"`                                         // 创建时间
	UpdatedAt           time.Time  `json:"updated_at"`                                                      // 更新时间
}

// TableName 指定表名
func (GatewayPayment) TableName() string {
	return "gateway_payments"
}
