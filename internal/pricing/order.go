package pricing

import "github.com/shopspring/decimal"

// OrderAmounts 订单金额
type OrderAmounts struct {
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// Rebalance 重新计算 total = subtotal + shipping - discount。
// 小计为 0 时运费、优惠与合计一并清零；优惠超过小计加运费时按上限截断。
func (a OrderAmounts) Rebalance() OrderAmounts {
	if !a.Subtotal.IsPositive() {
		return OrderAmounts{
			Subtotal: decimal.Zero,
			Shipping: decimal.Zero,
			Discount: decimal.Zero,
			Total:    decimal.Zero,
		}
	}
	if a.Shipping.IsNegative() {
		a.Shipping = decimal.Zero
	}
	if a.Discount.IsNegative() {
		a.Discount = decimal.Zero
	}
	gross := a.Subtotal.Add(a.Shipping)
	if a.Discount.GreaterThan(gross) {
		a.Discount = gross
	}
	a.Subtotal = a.Subtotal.Round(2)
	a.Shipping = a.Shipping.Round(2)
	a.Discount = a.Discount.Round(2)
	a.Total = a.Subtotal.Add(a.Shipping).Sub(a.Discount)
	return a
}

// RemoveLine 从订单中扣除一个订单项的金额并重新平衡
func (a OrderAmounts) RemoveLine(lineTotal decimal.Decimal) OrderAmounts {
	a.Subtotal = a.Subtotal.Sub(lineTotal)
	return a.Rebalance()
}

// Balanced 判断 total 与 subtotal + shipping - discount 相差不超过一个最小货币单位
func (a OrderAmounts) Balanced() bool {
	expected := a.Subtotal.Add(a.Shipping).Sub(a.Discount)
	return expected.Sub(a.Total).Abs().LessThanOrEqual(minorUnit)
}
