package repository

import "time"

// ProductListFilter 查询商品列表的过滤条件
type ProductListFilter struct {
	Page         int
	PageSize     int
	CategoryID   uint
	Search       string
	OnlyActive   bool
	WithCategory bool
}

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page          int
	PageSize      int
	UserID        uint
	OrderNo       string
	PaymentMethod string
	ItemStatus    string
	IsPaid        *bool
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
}

// OfferListFilter 查询促销列表的过滤条件
type OfferListFilter struct {
	Page       int
	PageSize   int
	Scope      string
	ProductID  uint
	CategoryID uint
	IsActive   *bool
}

// CouponListFilter 查询优惠券列表的过滤条件
type CouponListFilter struct {
	Page     int
	PageSize int
	Code     string
	IsActive *bool
}

// CouponUsageListFilter 查询优惠券使用记录列表的过滤条件
type CouponUsageListFilter struct {
	Page     int
	PageSize int
	UserID   uint
	CouponID uint
}

// ReturnListFilter 查询退货申请列表的过滤条件
type ReturnListFilter struct {
	Page     int
	PageSize int
	UserID   uint
	OrderID  uint
	Status   string
}

// WalletListFilter 查询钱包列表的过滤条件
type WalletListFilter struct {
	Page     int
	PageSize int
	UserID   uint
	IsActive *bool
}

// WalletTransactionListFilter 查询钱包流水列表的过滤条件
type WalletTransactionListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	OrderID     uint
	Type        string
	Status      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// ReferralListFilter 查询邀请记录列表的过滤条件
type ReferralListFilter struct {
	Page       int
	PageSize   int
	ReferrerID uint
	IsUsed     *bool
}

// UserListFilter 查询用户列表的过滤条件
type UserListFilter struct {
	Page        int
	PageSize    int
	Keyword     string
	Status      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}
