package pricing

import (
	"github.com/dujiao-next/storefront/internal/constants"

	"github.com/shopspring/decimal"
)

// CouponTerms 优惠券计算参数
type CouponTerms struct {
	DiscountType string // fixed / percentage
	Value        decimal.Decimal
	MaxDiscount  *decimal.Decimal // 为空表示不设上限
}

// CouponBase 优惠券计算基数：应付合计扣除运费后的商品金额
func CouponBase(totals CartTotals) decimal.Decimal {
	base := totals.GrandTotal.Sub(totals.DeliveryCharge)
	if base.IsNegative() {
		return decimal.Zero
	}
	return base
}

// ComputeCouponDiscount 计算优惠券抵扣金额。
// 结果不超过 MaxDiscount，且至少保留一个最小货币单位需支付，不会为负。
func ComputeCouponDiscount(terms CouponTerms, base decimal.Decimal) decimal.Decimal {
	if !base.IsPositive() || !terms.Value.IsPositive() {
		return decimal.Zero
	}

	var discount decimal.Decimal
	switch terms.DiscountType {
	case constants.CouponTypeFixed:
		discount = terms.Value
	case constants.CouponTypePercentage:
		discount = base.Mul(clampPercentage(terms.Value)).Div(hundred).Truncate(2)
	default:
		return decimal.Zero
	}

	if terms.MaxDiscount != nil && terms.MaxDiscount.IsPositive() && discount.GreaterThan(*terms.MaxDiscount) {
		discount = *terms.MaxDiscount
	}

	ceiling := base.Sub(minorUnit)
	if discount.GreaterThan(ceiling) {
		discount = ceiling
	}
	if discount.IsNegative() {
		return decimal.Zero
	}
	return discount.Round(2)
}
