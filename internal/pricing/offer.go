// Package pricing 提供与存储无关的计价纯函数：促销选择、购物车合计、优惠券抵扣与退款分摊。
package pricing

import "github.com/shopspring/decimal"

// OfferKind 促销来源
type OfferKind string

const (
	OfferKindNone     OfferKind = "none"
	OfferKindProduct  OfferKind = "product"
	OfferKindCategory OfferKind = "category"
)

// Offer 生效的促销折扣
type Offer struct {
	Kind       OfferKind
	Percentage decimal.Decimal
	OfferID    uint
}

// OfferCandidate 参与比较的促销
type OfferCandidate struct {
	OfferID    uint
	Percentage decimal.Decimal
}

// NoOffer 无促销
func NoOffer() Offer {
	return Offer{Kind: OfferKindNone, Percentage: decimal.Zero}
}

// PickBestOffer 从商品级与分类级候选中选出折扣最高者，折扣相同时商品级优先
func PickBestOffer(productOffers, categoryOffers []OfferCandidate) Offer {
	product, productOK := highest(productOffers)
	category, categoryOK := highest(categoryOffers)

	productPct := decimal.Zero
	if productOK {
		productPct = product.Percentage
	}
	categoryPct := decimal.Zero
	if categoryOK {
		categoryPct = category.Percentage
	}

	switch {
	case productPct.IsZero() && categoryPct.IsZero():
		return NoOffer()
	case productPct.GreaterThanOrEqual(categoryPct):
		return Offer{Kind: OfferKindProduct, Percentage: productPct, OfferID: product.OfferID}
	default:
		return Offer{Kind: OfferKindCategory, Percentage: categoryPct, OfferID: category.OfferID}
	}
}

func highest(candidates []OfferCandidate) (OfferCandidate, bool) {
	var best OfferCandidate
	found := false
	for _, c := range candidates {
		pct := clampPercentage(c.Percentage)
		if pct.IsZero() {
			continue
		}
		if !found || pct.GreaterThan(best.Percentage) {
			best = OfferCandidate{OfferID: c.OfferID, Percentage: pct}
			found = true
		}
	}
	return best, found
}

func clampPercentage(pct decimal.Decimal) decimal.Decimal {
	if pct.IsNegative() {
		return decimal.Zero
	}
	if pct.GreaterThan(hundred) {
		return hundred
	}
	return pct
}
