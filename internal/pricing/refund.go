package pricing

import "github.com/shopspring/decimal"

// RefundBreakdown 退款分摊结果
type RefundBreakdown struct {
	LineTotal   decimal.Decimal // 订单项促销后金额
	Proportion  decimal.Decimal // 订单项占优惠前订单金额的比例
	CouponShare decimal.Decimal // 分摊的优惠券金额
	Refund      decimal.Decimal // 应退金额
}

// ProportionalRefund 按订单项金额占比分摊订单级优惠券后计算应退金额。
//
//	denominator = orderTotal + orderDiscount
//	couponShare = orderDiscount × lineTotal / denominator
//	refund      = max(0, lineTotal − couponShare)
func ProportionalRefund(lineTotal, orderTotal, orderDiscount decimal.Decimal) RefundBreakdown {
	result := RefundBreakdown{
		LineTotal:   lineTotal.Round(2),
		Proportion:  decimal.Zero,
		CouponShare: decimal.Zero,
		Refund:      decimal.Zero,
	}
	if !result.LineTotal.IsPositive() {
		return result
	}

	discount := orderDiscount
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	denominator := orderTotal.Add(discount)
	if denominator.IsPositive() {
		result.Proportion = result.LineTotal.Div(denominator)
		// 先乘后除，避免比例截断带来的误差
		result.CouponShare = discount.Mul(result.LineTotal).Div(denominator).Round(2)
		if result.CouponShare.GreaterThan(discount) {
			result.CouponShare = discount
		}
	}

	refund := result.LineTotal.Sub(result.CouponShare)
	if refund.IsNegative() {
		refund = decimal.Zero
	}
	result.Refund = refund.Round(2)
	return result
}
