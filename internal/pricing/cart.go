package pricing

import "github.com/shopspring/decimal"

var (
	hundred   = decimal.NewFromInt(100)
	minorUnit = decimal.New(1, -2)
)

// ShippingPolicy 运费策略：促销后小计严格大于阈值时免运费
type ShippingPolicy struct {
	FreeThreshold decimal.Decimal
	FlatFee       decimal.Decimal
}

// DefaultShippingPolicy 默认运费策略（满 4999 以上免运费，否则 99）
func DefaultShippingPolicy() ShippingPolicy {
	return ShippingPolicy{
		FreeThreshold: decimal.NewFromInt(4999),
		FlatFee:       decimal.NewFromInt(99),
	}
}

// DeliveryCharge 计算运费，空购物车不收运费
func (p ShippingPolicy) DeliveryCharge(subtotal decimal.Decimal) decimal.Decimal {
	if !subtotal.IsPositive() {
		return decimal.Zero
	}
	if subtotal.GreaterThan(p.FreeThreshold) {
		return decimal.Zero
	}
	return p.FlatFee
}

// Line 购物车行
type Line struct {
	ActualPrice decimal.Decimal // 原价（MRP）
	SalePrice   decimal.Decimal // 售价
	Quantity    int
	Offer       Offer
}

// CartTotals 购物车合计
type CartTotals struct {
	TotalActualPrice    decimal.Decimal
	TotalSalePrice      decimal.Decimal
	TotalNormalDiscount decimal.Decimal
	TotalOfferDiscount  decimal.Decimal
	SubtotalAfterOffers decimal.Decimal
	DeliveryCharge      decimal.Decimal
	GrandTotal          decimal.Decimal
}

// EffectiveUnitPrice 售价扣除促销折扣后的单价，折扣按单件四舍五入到分
func EffectiveUnitPrice(salePrice decimal.Decimal, offer Offer) decimal.Decimal {
	return salePrice.Sub(UnitOfferDiscount(salePrice, offer)).Round(2)
}

// UnitOfferDiscount 单件促销折扣，促销叠加在售价之上
func UnitOfferDiscount(salePrice decimal.Decimal, offer Offer) decimal.Decimal {
	pct := clampPercentage(offer.Percentage)
	if pct.IsZero() || !salePrice.IsPositive() {
		return decimal.Zero
	}
	return salePrice.Mul(pct).Div(hundred).Round(2)
}

// ComputeCartTotals 根据购物车行重新计算全部合计
func ComputeCartTotals(lines []Line, policy ShippingPolicy) CartTotals {
	totals := CartTotals{
		TotalActualPrice:   decimal.Zero,
		TotalSalePrice:     decimal.Zero,
		TotalOfferDiscount: decimal.Zero,
	}
	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		qty := decimal.NewFromInt(int64(line.Quantity))
		totals.TotalActualPrice = totals.TotalActualPrice.Add(line.ActualPrice.Mul(qty))
		totals.TotalSalePrice = totals.TotalSalePrice.Add(line.SalePrice.Mul(qty))
		totals.TotalOfferDiscount = totals.TotalOfferDiscount.Add(UnitOfferDiscount(line.SalePrice, line.Offer).Mul(qty))
	}
	totals.TotalActualPrice = totals.TotalActualPrice.Round(2)
	totals.TotalSalePrice = totals.TotalSalePrice.Round(2)
	totals.TotalOfferDiscount = totals.TotalOfferDiscount.Round(2)

	totals.TotalNormalDiscount = totals.TotalActualPrice.Sub(totals.TotalSalePrice)
	if totals.TotalNormalDiscount.IsNegative() {
		totals.TotalNormalDiscount = decimal.Zero
	}
	totals.SubtotalAfterOffers = totals.TotalSalePrice.Sub(totals.TotalOfferDiscount)
	if totals.SubtotalAfterOffers.IsNegative() {
		totals.SubtotalAfterOffers = decimal.Zero
	}
	totals.DeliveryCharge = policy.DeliveryCharge(totals.SubtotalAfterOffers)
	totals.GrandTotal = totals.SubtotalAfterOffers.Add(totals.DeliveryCharge)
	return totals
}
