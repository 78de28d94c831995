package constants

// 订单项状态常量
const (
	OrderItemStatusPending         = "Pending"
	OrderItemStatusProcessing      = "Processing"
	OrderItemStatusShipped         = "Shipped"
	OrderItemStatusOnTheWay        = "On-the-way"
	OrderItemStatusDelivered       = "Delivered"
	OrderItemStatusCancelled       = "Cancelled"
	OrderItemStatusReturnRequested = "Return_Requested"
	OrderItemStatusReturned        = "Returned"
	OrderItemStatusRejected        = "Rejected"
	OrderItemStatusPaymentFailed   = "Payment-Failed"
)

// 订单项支付状态常量
const (
	ItemPaymentStatusPaid       = "Paid"
	ItemPaymentStatusUnpaid     = "Unpaid"
	ItemPaymentStatusRefunded   = "Refunded"
	ItemPaymentStatusCancelled  = "Cancelled"
	ItemPaymentStatusProcessing = "Processing"
)

// 支付方式常量
const (
	PaymentMethodCOD             = "cod"
	PaymentMethodWallet          = "wallet"
	PaymentMethodGatewayRedirect = "gateway_redirect"
	PaymentMethodGatewayDirect   = "gateway_direct"
)

// 取消原因常量
const (
	CancelReasonChangedMind      = "changed_mind"
	CancelReasonOrderedByMistake = "ordered_by_mistake"
	CancelReasonBetterPrice      = "better_price"
	CancelReasonDeliveryDelay    = "delivery_delay"
	CancelReasonCustom           = "custom"
)

// 退货申请状态常量
const (
	ReturnStatusPending  = "pending"
	ReturnStatusApproved = "approved"
	ReturnStatusRejected = "rejected"
)

// 促销活动范围常量
const (
	OfferScopeProduct  = "product"
	OfferScopeCategory = "category"
)

// 优惠券类型常量
const (
	CouponTypeFixed      = "fixed"
	CouponTypePercentage = "percentage"
)

// 钱包交易类型常量
const (
	WalletTxnTypeCredit = "credit"
	WalletTxnTypeDebit  = "debit"
)

// 钱包交易状态常量
const (
	WalletTxnStatusCompleted = "completed"
	WalletTxnStatusPending   = "pending"
	WalletTxnStatusFailed    = "failed"
)

// 钱包交易号前缀
const (
	WalletTxnPrefixPayment      = "TXN-"
	WalletTxnPrefixCancelRefund = "RF"
	WalletTxnPrefixReturnRefund = "RT"
	WalletTxnPrefixReferral     = "REF"
)

// 网关支付单用途与状态
const (
	GatewayPurposeOrder       = "order"
	GatewayPurposeWalletTopup = "wallet_topup"

	GatewayPaymentStatusCreated = "created"
	GatewayPaymentStatusSuccess = "success"
	GatewayPaymentStatusFailed  = "failed"
)

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 队列相关常量
const (
	QueueDefault  = "default"
	QueueCritical = "critical"

	TaskNotifyOrderEvent   = "notify:order_event"
	TaskReferralRewardSync = "referral:reward_sync"
)

// 通知事件常量
const (
	EventOrderPlaced     = "order_placed"
	EventOrderPaid       = "order_paid"
	EventPaymentFailed   = "payment_failed"
	EventItemCancelled   = "item_cancelled"
	EventItemStatus      = "item_status_changed"
	EventReturnRequested = "return_requested"
	EventReturnApproved  = "return_approved"
	EventReturnRejected  = "return_rejected"
	EventReferralReward  = "referral_rewarded"
	EventWalletTopup     = "wallet_topup"
)

// 管理员内置角色
const (
	AdminRoleSuper   = "super_admin"
	AdminRoleOrders  = "order_manager"
	AdminRoleCatalog = "catalog_manager"
)
