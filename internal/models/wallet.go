package models

import "time"

// Wallet 用户钱包，余额等于全部已完成流水的带符号合计
type Wallet struct {
	ID        uint      `gorm:"primarykey" json:"id"`                                 // 主键
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`                  // 用户ID
	Balance   Money     `gorm:"type:decimal(20,2);not null;default:0" json:"balance"` // 余额
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`               // 是否可用于支付
	CreatedAt time.Time `gorm:"index" json:"created_at"`                              // 创建时间
	UpdatedAt time.Time `json:"updated_at"`                                           // 更新时间
}

// TableName 指定表名
func (Wallet) TableName() string {
	return "wallets"
}

// WalletTransaction 钱包流水（只追加）
type WalletTransaction struct {
	ID            uint      `gorm:"primarykey" json:"id"`                                         // 主键
	WalletID      uint      `gorm:"index;not null" json:"wallet_id"`                              // 钱包ID
	UserID        uint      `gorm:"index;not null" json:"user_id"`                                // 用户ID
	TxnID         string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"transaction_id"`  // 交易号（前缀标识来源）
	Type          string    `gorm:"type:varchar(16);index;not null" json:"type"`                  // credit/debit
	Amount        Money     `gorm:"type:decimal(20,2);not null" json:"amount"`                    // 金额（正数）
	Status        string    `gorm:"type:varchar(16);index;not null" json:"status"`                // completed/pending/failed
	Description   string    `gorm:"type:varchar(255)" json:"description"`                         // 描述
	OrderID       *uint     `gorm:"index" json:"order_id,omitempty"`                              // 关联订单
	BalanceBefore Money     `gorm:"type:decimal(20,2);not null;default:0" json:"balance_before"`  // 入账前余额
	BalanceAfter  Money     `gorm:"type:decimal(20,2);not null;default:0" json:"balance_after"`   // 入账后余额
	CreatedAt     time.Time `gorm:"index" json:"created_at"`                                      // 创建时间
	UpdatedAt     time.Time `json:"updated_at"`                                                   // 更新时间
}

// TableName 指定表名
func (WalletTransaction) TableName() string {
	return "wallet_transactions"
}
