package service

import "errors"

// 通用与鉴权
var (
	ErrNotFound              = errors.New("resource not found")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrUserDisabled          = errors.New("user disabled")
	ErrUserNotFound          = errors.New("user not found")
	ErrEmailExists           = errors.New("email already registered")
	ErrInvalidEmail          = errors.New("invalid email")
	ErrWeakPassword          = errors.New("password too weak")
	ErrAdminNotFound         = errors.New("admin not found")
	ErrInvalidToken          = errors.New("invalid token")
	ErrTokenExpired          = errors.New("token expired")
	ErrForbidden             = errors.New("forbidden")
	ErrDashboardRangeInvalid = errors.New("dashboard range invalid")
)

// 商品与购物车
var (
	ErrProductNotFound     = errors.New("product not found")
	ErrVariantNotFound     = errors.New("variant not found")
	ErrVariantUnavailable  = errors.New("variant unavailable")
	ErrInvalidQuantity     = errors.New("invalid quantity")
	ErrQuantityExceeded    = errors.New("quantity exceeds per item limit")
	ErrStockInsufficient   = errors.New("stock insufficient")
	ErrCartEmpty           = errors.New("cart is empty")
	ErrCartItemNotFound    = errors.New("cart item not found")
	ErrCartUpdateFailed    = errors.New("cart update failed")
	ErrOfferInvalid        = errors.New("offer invalid")
	ErrOfferNotFound       = errors.New("offer not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrCategoryInUse       = errors.New("category has products")
	ErrSlugExists          = errors.New("slug already exists")
	ErrVariantPriceInvalid = errors.New("variant price invalid")
	ErrCatalogInputInvalid = errors.New("catalog input invalid")
)

// 优惠券
var (
	ErrCouponNotFound     = errors.New("coupon not found")
	ErrCouponInactive     = errors.New("coupon inactive")
	ErrCouponNotStarted   = errors.New("coupon not started")
	ErrCouponExpired      = errors.New("coupon expired")
	ErrCouponUsageLimit   = errors.New("coupon usage limit reached")
	ErrCouponPerUserLimit = errors.New("coupon per user limit reached")
	ErrCouponMinAmount    = errors.New("cart below coupon minimum")
	ErrCouponInvalid      = errors.New("coupon invalid")
	ErrCouponCodeExists   = errors.New("coupon code already exists")
	ErrCouponNotApplied   = errors.New("no coupon applied")
)

// 订单与取消
var (
	ErrOrderNotFound          = errors.New("order not found")
	ErrOrderItemNotFound      = errors.New("order item not found")
	ErrOrderFetchFailed       = errors.New("order fetch failed")
	ErrOrderCreateFailed      = errors.New("order create failed")
	ErrOrderUpdateFailed      = errors.New("order update failed")
	ErrOrderItemStatusInvalid = errors.New("order item status invalid")
	ErrOrderAlreadyPaid       = errors.New("order already paid")
	ErrPaymentMethodInvalid   = errors.New("payment method invalid")
	ErrCODLimitExceeded       = errors.New("cash on delivery limit exceeded")
	ErrCancelReasonInvalid    = errors.New("cancel reason invalid")
	ErrShippingAddressInvalid = errors.New("shipping address invalid")
)

// 退货
var (
	ErrReturnNotAllowed       = errors.New("return not allowed")
	ErrReturnNotFound         = errors.New("return request not found")
	ErrReturnRequestProcessed = errors.New("return request already processed")
	ErrReturnReasonRequired   = errors.New("return reason required")
	ErrReturnItemUnpaid       = errors.New("return item has not been paid")
)

// 钱包
var (
	ErrWalletNotFound                = errors.New("wallet not found")
	ErrWalletInactive                = errors.New("wallet inactive")
	ErrWalletInvalidAmount           = errors.New("wallet invalid amount")
	ErrWalletInsufficientBalance     = errors.New("wallet insufficient balance")
	ErrWalletAccountCreateFailed     = errors.New("wallet account create failed")
	ErrWalletAccountUpdateFailed     = errors.New("wallet account update failed")
	ErrWalletTransactionCreateFailed = errors.New("wallet transaction create failed")
	ErrWalletTopupOutOfRange         = errors.New("wallet topup amount out of range")
	ErrWalletTopupNotFound           = errors.New("wallet topup not found")
	ErrWalletTopupStatusInvalid      = errors.New("wallet topup status invalid")
)

// 邀请
var (
	ErrReferralCodeNotFound  = errors.New("referral code not found")
	ErrReferralSelf          = errors.New("cannot use own referral code")
	ErrReferralNotEligible   = errors.New("referral code only applies before the first purchase")
	ErrReferralAlreadyUsed   = errors.New("referral code already used")
	ErrReferralAlreadyBound  = errors.New("user already referred")
	ErrReferralNoActiveOffer = errors.New("no active referral offer")
	ErrReferralNotFound      = errors.New("referral not found")
	ErrReferralOfferInvalid  = errors.New("referral offer invalid")
)

// 支付网关
var (
	ErrPaymentGatewayRequestFailed = errors.New("payment gateway request failed")
	ErrPaymentNotFound             = errors.New("payment not found")
	ErrPaymentSignatureInvalid     = errors.New("payment signature invalid")
	ErrPaymentCallbackInvalid      = errors.New("payment callback invalid")
	ErrPaymentCallbackBusy         = errors.New("payment callback in progress")
	ErrQueueUnavailable            = errors.New("queue unavailable")
)
