package shared

import "fmt"

// messages 错误键对应的提示文案
var messages = map[string]string{
	"error.bad_request":            "invalid request",
	"error.unauthorized":           "unauthorized",
	"error.forbidden":              "permission denied",
	"error.not_found":              "resource not found",
	"error.internal":               "internal error",
	"error.rate_limited":           "too many requests, retry in %d seconds",
	"error.rate_limit_unavailable": "rate limiter unavailable",
	"error.login_too_many":         "too many login attempts, retry in %d seconds",
	"error.coupon_too_many":        "too many coupon attempts, retry in %d seconds",

	"error.jwt_secret_missing":   "authentication is not configured",
	"error.auth_header_missing":  "authorization header missing",
	"error.auth_header_invalid":  "authorization header invalid",
	"error.token_invalid":        "token invalid",
	"error.invalid_credentials":  "invalid email or password",
	"error.user_disabled":        "account disabled",
	"error.user_not_found":       "user not found",
	"error.admin_not_found":      "admin not found",
	"error.email_exists":         "email already registered",
	"error.email_invalid":        "email invalid",
	"error.password_weak":        "password does not meet the policy",
	"error.user_id_invalid":      "user id invalid",
	"error.admin_id_invalid":     "admin id invalid",
	"error.context_type_invalid": "request context invalid",
	"error.user_update_failed":   "user update failed",
	"error.user_fetch_failed":    "user fetch failed",
	"error.user_status_invalid":  "user status invalid",

	"error.product_not_found":     "product not found",
	"error.product_fetch_failed":  "product fetch failed",
	"error.product_save_failed":   "product save failed",
	"error.variant_not_found":     "variant not found",
	"error.variant_unavailable":   "variant unavailable",
	"error.variant_price_invalid": "sale price must not exceed actual price",
	"error.category_not_found":    "category not found",
	"error.category_in_use":       "category still has products",
	"error.category_fetch_failed": "category fetch failed",
	"error.category_save_failed":  "category save failed",
	"error.slug_exists":           "slug already exists",
	"error.catalog_input_invalid": "catalog input invalid",
	"error.offer_invalid":         "offer invalid",
	"error.offer_not_found":       "offer not found",
	"error.offer_fetch_failed":    "offer fetch failed",
	"error.offer_save_failed":     "offer save failed",

	"error.quantity_invalid":    "quantity invalid",
	"error.quantity_exceeded":   "quantity exceeds the per item limit",
	"error.stock_insufficient":  "stock insufficient",
	"error.cart_empty":          "cart is empty",
	"error.cart_item_not_found": "cart item not found",
	"error.cart_fetch_failed":   "cart fetch failed",
	"error.cart_update_failed":  "cart update failed",

	"error.coupon_not_found":      "coupon not found",
	"error.coupon_inactive":       "coupon inactive",
	"error.coupon_not_started":    "coupon not started",
	"error.coupon_expired":        "coupon expired",
	"error.coupon_usage_limit":    "coupon usage limit reached",
	"error.coupon_per_user_limit": "coupon already used",
	"error.coupon_min_amount":     "cart total below coupon minimum",
	"error.coupon_invalid":        "coupon invalid",
	"error.coupon_code_exists":    "coupon code already exists",
	"error.coupon_not_applied":    "no coupon applied",
	"error.coupon_fetch_failed":   "coupon fetch failed",
	"error.coupon_save_failed":    "coupon save failed",

	"error.payment_method_invalid":    "payment method invalid",
	"error.cod_limit_exceeded":        "order exceeds cash on delivery limit",
	"error.shipping_address_invalid":  "shipping address invalid",
	"error.order_not_found":           "order not found",
	"error.order_item_not_found":      "order item not found",
	"error.order_already_paid":        "order already paid",
	"error.order_item_status_invalid": "order item status does not allow this action",
	"error.order_create_failed":       "order create failed",
	"error.order_fetch_failed":        "order fetch failed",
	"error.order_update_failed":       "order update failed",
	"error.cancel_reason_invalid":     "cancel reason invalid",
	"error.invoice_unavailable":       "invoice unavailable",

	"error.return_not_allowed":     "item cannot be returned",
	"error.return_item_unpaid":     "item has not been paid, nothing to refund",
	"error.return_not_found":       "return request not found",
	"error.return_processed":       "return request already processed",
	"error.return_reason_required": "return reason required",
	"error.return_fetch_failed":    "return fetch failed",
	"error.return_update_failed":   "return update failed",

	"error.wallet_not_found":            "wallet not found",
	"error.wallet_inactive":             "wallet inactive",
	"error.wallet_amount_invalid":       "amount invalid",
	"error.wallet_insufficient_balance": "wallet balance insufficient",
	"error.wallet_topup_out_of_range":   "top-up amount out of range",
	"error.wallet_fetch_failed":         "wallet fetch failed",
	"error.wallet_update_failed":        "wallet update failed",

	"error.referral_code_not_found": "referral code not found",
	"error.referral_self":           "cannot use your own referral code",
	"error.referral_not_eligible":   "referral codes can only be applied before your first purchase",
	"error.referral_used":           "referral code already used",
	"error.referral_bound":          "account already referred",
	"error.referral_no_offer":       "no active referral offer",
	"error.referral_not_found":      "referral not found",
	"error.referral_offer_invalid":  "referral offer invalid",
	"error.referral_fetch_failed":   "referral fetch failed",
	"error.referral_update_failed":  "referral update failed",

	"error.payment_not_found":         "payment not found",
	"error.payment_signature_invalid": "payment signature invalid",
	"error.payment_callback_invalid":  "payment callback invalid",
	"error.payment_callback_busy":     "payment callback in progress",
	"error.payment_gateway_failed":    "payment gateway request failed",
	"error.payment_fetch_failed":      "payment fetch failed",

	"error.dashboard_range_invalid": "dashboard range invalid",
	"error.dashboard_fetch_failed":  "dashboard fetch failed",

	"error.authz_role_invalid":   "role invalid",
	"error.authz_role_immutable": "builtin role cannot be deleted",
	"error.authz_policy_invalid": "policy invalid",
	"error.authz_update_failed":  "permission update failed",
	"error.authz_fetch_failed":   "permission fetch failed",
}

// Message 返回错误键对应的文案，未登记的键原样返回。
func Message(key string) string {
	if msg, ok := messages[key]; ok {
		return msg
	}
	return key
}

// Messagef 按错误键格式化文案。
func Messagef(key string, args ...interface{}) string {
	return fmt.Sprintf(Message(key), args...)
}
