package shared

import (
	"github.com/dujiao-next/storefront/internal/authz"
	"github.com/dujiao-next/storefront/internal/http/response"
	"github.com/dujiao-next/storefront/internal/service"
)

// AuthErrorRules 登录注册类错误
var AuthErrorRules = []ErrorRule{
	{Target: service.ErrInvalidCredentials, Code: response.CodeUnauthorized, Key: "error.invalid_credentials"},
	{Target: service.ErrUserDisabled, Code: response.CodeUnauthorized, Key: "error.user_disabled"},
	{Target: service.ErrUserNotFound, Code: response.CodeNotFound, Key: "error.user_not_found"},
	{Target: service.ErrAdminNotFound, Code: response.CodeNotFound, Key: "error.admin_not_found"},
	{Target: service.ErrEmailExists, Code: response.CodeConflict, Key: "error.email_exists"},
	{Target: service.ErrInvalidEmail, Code: response.CodeBadRequest, Key: "error.email_invalid"},
	{Target: service.ErrWeakPassword, Code: response.CodeBadRequest, Key: "error.password_weak"},
	{Target: service.ErrNotFound, Code: response.CodeNotFound, Key: "error.not_found"},
}

// CatalogErrorRules 商品目录类错误
var CatalogErrorRules = []ErrorRule{
	{Target: service.ErrProductNotFound, Code: response.CodeNotFound, Key: "error.product_not_found"},
	{Target: service.ErrVariantNotFound, Code: response.CodeNotFound, Key: "error.variant_not_found"},
	{Target: service.ErrCategoryNotFound, Code: response.CodeNotFound, Key: "error.category_not_found"},
	{Target: service.ErrCategoryInUse, Code: response.CodeConflict, Key: "error.category_in_use"},
	{Target: service.ErrSlugExists, Code: response.CodeConflict, Key: "error.slug_exists"},
	{Target: service.ErrVariantPriceInvalid, Code: response.CodeBadRequest, Key: "error.variant_price_invalid"},
	{Target: service.ErrCatalogInputInvalid, Code: response.CodeBadRequest, Key: "error.catalog_input_invalid"},
	{Target: service.ErrOfferInvalid, Code: response.CodeBadRequest, Key: "error.offer_invalid"},
	{Target: service.ErrOfferNotFound, Code: response.CodeNotFound, Key: "error.offer_not_found"},
}

// CouponErrorRules 优惠券类错误
var CouponErrorRules = []ErrorRule{
	{Target: service.ErrCouponNotFound, Code: response.CodeNotFound, Key: "error.coupon_not_found"},
	{Target: service.ErrCouponInactive, Code: response.CodeBadRequest, Key: "error.coupon_inactive"},
	{Target: service.ErrCouponNotStarted, Code: response.CodeBadRequest, Key: "error.coupon_not_started"},
	{Target: service.ErrCouponExpired, Code: response.CodeBadRequest, Key: "error.coupon_expired"},
	{Target: service.ErrCouponUsageLimit, Code: response.CodeBadRequest, Key: "error.coupon_usage_limit"},
	{Target: service.ErrCouponPerUserLimit, Code: response.CodeBadRequest, Key: "error.coupon_per_user_limit"},
	{Target: service.ErrCouponMinAmount, Code: response.CodeBadRequest, Key: "error.coupon_min_amount"},
	{Target: service.ErrCouponInvalid, Code: response.CodeBadRequest, Key: "error.coupon_invalid"},
	{Target: service.ErrCouponCodeExists, Code: response.CodeConflict, Key: "error.coupon_code_exists"},
	{Target: service.ErrCouponNotApplied, Code: response.CodeBadRequest, Key: "error.coupon_not_applied"},
}

// CartErrorRules 购物车类错误
var CartErrorRules = ConcatErrorRules([]ErrorRule{
	{Target: service.ErrVariantNotFound, Code: response.CodeNotFound, Key: "error.variant_not_found"},
	{Target: service.ErrVariantUnavailable, Code: response.CodeBadRequest, Key: "error.variant_unavailable"},
	{Target: service.ErrInvalidQuantity, Code: response.CodeBadRequest, Key: "error.quantity_invalid"},
	{Target: service.ErrQuantityExceeded, Code: response.CodeBadRequest, Key: "error.quantity_exceeded"},
	{Target: service.ErrStockInsufficient, Code: response.CodeBadRequest, Key: "error.stock_insufficient"},
	{Target: service.ErrCartEmpty, Code: response.CodeBadRequest, Key: "error.cart_empty"},
	{Target: service.ErrCartItemNotFound, Code: response.CodeNotFound, Key: "error.cart_item_not_found"},
}, CouponErrorRules)

// WalletErrorRules 钱包类错误
var WalletErrorRules = []ErrorRule{
	{Target: service.ErrWalletNotFound, Code: response.CodeNotFound, Key: "error.wallet_not_found"},
	{Target: service.ErrWalletInactive, Code: response.CodeBadRequest, Key: "error.wallet_inactive"},
	{Target: service.ErrWalletInvalidAmount, Code: response.CodeBadRequest, Key: "error.wallet_amount_invalid"},
	{Target: service.ErrWalletInsufficientBalance, Code: response.CodeBadRequest, Key: "error.wallet_insufficient_balance"},
	{Target: service.ErrWalletTopupOutOfRange, Code: response.CodeBadRequest, Key: "error.wallet_topup_out_of_range"},
	{Target: service.ErrPaymentGatewayRequestFailed, Code: response.CodeInternal, Key: "error.payment_gateway_failed"},
}

// CheckoutErrorRules 下单类错误
var CheckoutErrorRules = ConcatErrorRules(CartErrorRules, WalletErrorRules, []ErrorRule{
	{Target: service.ErrPaymentMethodInvalid, Code: response.CodeBadRequest, Key: "error.payment_method_invalid"},
	{Target: service.ErrCODLimitExceeded, Code: response.CodeBadRequest, Key: "error.cod_limit_exceeded"},
	{Target: service.ErrShippingAddressInvalid, Code: response.CodeBadRequest, Key: "error.shipping_address_invalid"},
	{Target: service.ErrOrderNotFound, Code: response.CodeNotFound, Key: "error.order_not_found"},
	{Target: service.ErrOrderAlreadyPaid, Code: response.CodeBadRequest, Key: "error.order_already_paid"},
	{Target: service.ErrOrderItemStatusInvalid, Code: response.CodeBadRequest, Key: "error.order_item_status_invalid"},
})

// OrderErrorRules 订单与取消类错误
var OrderErrorRules = ConcatErrorRules([]ErrorRule{
	{Target: service.ErrOrderNotFound, Code: response.CodeNotFound, Key: "error.order_not_found"},
	{Target: service.ErrOrderItemNotFound, Code: response.CodeNotFound, Key: "error.order_item_not_found"},
	{Target: service.ErrOrderItemStatusInvalid, Code: response.CodeBadRequest, Key: "error.order_item_status_invalid"},
	{Target: service.ErrCancelReasonInvalid, Code: response.CodeBadRequest, Key: "error.cancel_reason_invalid"},
}, WalletErrorRules)

// ReturnErrorRules 退货类错误
var ReturnErrorRules = ConcatErrorRules([]ErrorRule{
	{Target: service.ErrReturnNotAllowed, Code: response.CodeBadRequest, Key: "error.return_not_allowed"},
	{Target: service.ErrReturnNotFound, Code: response.CodeNotFound, Key: "error.return_not_found"},
	{Target: service.ErrReturnRequestProcessed, Code: response.CodeConflict, Key: "error.return_processed"},
	{Target: service.ErrReturnReasonRequired, Code: response.CodeBadRequest, Key: "error.return_reason_required"},
	{Target: service.ErrReturnItemUnpaid, Code: response.CodeConflict, Key: "error.return_item_unpaid"},
}, OrderErrorRules)

// ReferralErrorRules 邀请类错误
var ReferralErrorRules = ConcatErrorRules([]ErrorRule{
	{Target: service.ErrReferralCodeNotFound, Code: response.CodeNotFound, Key: "error.referral_code_not_found"},
	{Target: service.ErrReferralSelf, Code: response.CodeBadRequest, Key: "error.referral_self"},
	{Target: service.ErrReferralNotEligible, Code: response.CodeBadRequest, Key: "error.referral_not_eligible"},
	{Target: service.ErrReferralAlreadyUsed, Code: response.CodeBadRequest, Key: "error.referral_used"},
	{Target: service.ErrReferralAlreadyBound, Code: response.CodeBadRequest, Key: "error.referral_bound"},
	{Target: service.ErrReferralNoActiveOffer, Code: response.CodeBadRequest, Key: "error.referral_no_offer"},
	{Target: service.ErrReferralNotFound, Code: response.CodeNotFound, Key: "error.referral_not_found"},
	{Target: service.ErrReferralOfferInvalid, Code: response.CodeBadRequest, Key: "error.referral_offer_invalid"},
}, WalletErrorRules)

// PaymentErrorRules 支付回调类错误
var PaymentErrorRules = []ErrorRule{
	{Target: service.ErrPaymentNotFound, Code: response.CodeNotFound, Key: "error.payment_not_found"},
	{Target: service.ErrPaymentSignatureInvalid, Code: response.CodeBadRequest, Key: "error.payment_signature_invalid"},
	{Target: service.ErrPaymentCallbackInvalid, Code: response.CodeBadRequest, Key: "error.payment_callback_invalid"},
	{Target: service.ErrPaymentCallbackBusy, Code: response.CodeTooManyRequests, Key: "error.payment_callback_busy"},
}

// AuthzErrorRules 角色与策略管理错误
var AuthzErrorRules = []ErrorRule{
	{Target: authz.ErrImmutableRole, Code: response.CodeForbidden, Key: "error.authz_role_immutable"},
	{Target: authz.ErrRoleRequired, Code: response.CodeBadRequest, Key: "error.authz_role_invalid"},
	{Target: authz.ErrReservedRole, Code: response.CodeBadRequest, Key: "error.authz_role_invalid"},
	{Target: authz.ErrActionRequired, Code: response.CodeBadRequest, Key: "error.authz_policy_invalid"},
	{Target: authz.ErrAdminRequired, Code: response.CodeBadRequest, Key: "error.admin_id_invalid"},
	{Target: authz.ErrUnavailable, Code: response.CodeInternal, Key: "error.authz_fetch_failed"},
}
