package models

import "time"

// ReturnRequest 退货申请
type ReturnRequest struct {
	ID           uint       `gorm:"primarykey" json:"id"`                                       // 主键
	OrderID      uint       `gorm:"index;not null" json:"order_id"`                             // 订单ID
	OrderItemID  uint       `gorm:"index;not null" json:"order_item_id"`                        // 订单项ID
	UserID       uint       `gorm:"index;not null" json:"user_id"`                              // 申请用户
	Reason       string     `gorm:"type:text;not null" json:"reason"`                           // 退货原因
	Status       string     `gorm:"type:varchar(20);index;not null" json:"status"`              // 状态（pending/approved/rejected）
	RefundAmount Money      `gorm:"type:decimal(20,2);not null;default:0" json:"refund_amount"` // 退款金额
	AdminNote    string     `gorm:"type:text" json:"admin_note,omitempty"`                      // 审核备注
	ProcessedBy  *uint      `json:"processed_by,omitempty"`                                     // 审核管理员
	ProcessedAt  *time.Time `json:"processed_at,omitempty"`                                     // 审核时间
	CreatedAt    time.Time  `gorm:"index" json:"created_at"`                                    // 创建时间
	UpdatedAt    time.Time  `json:"updated_at"`                                                 // 更新时间

	OrderItem *OrderItem `gorm:"foreignKey:OrderItemID" json:"order_item,omitempty"` // 关联订单项
}

// TableName 指定表名
func (ReturnRequest) TableName() string {
	return "return_requests"
}
