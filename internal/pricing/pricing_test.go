package pricing

import (
	"math/rand"
	"testing"

	"github.com/dujiao-next/storefront/internal/constants"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msg string) {
	t.Helper()
	assert.Truef(t, d(want).Equal(got), "%s: want %s got %s", msg, want, got.StringFixed(2))
}

func TestPickBestOffer(t *testing.T) {
	cases := []struct {
		name     string
		product  []OfferCandidate
		category []OfferCandidate
		kind     OfferKind
		pct      string
		offerID  uint
	}{
		{name: "none", kind: OfferKindNone, pct: "0"},
		{name: "only zero offers", product: []OfferCandidate{{OfferID: 1, Percentage: d("0")}}, kind: OfferKindNone, pct: "0"},
		{name: "product highest wins within scope", product: []OfferCandidate{{OfferID: 1, Percentage: d("5")}, {OfferID: 2, Percentage: d("12")}}, kind: OfferKindProduct, pct: "12", offerID: 2},
		{name: "category larger", product: []OfferCandidate{{OfferID: 1, Percentage: d("10")}}, category: []OfferCandidate{{OfferID: 7, Percentage: d("15")}}, kind: OfferKindCategory, pct: "15", offerID: 7},
		{name: "tie goes to product", product: []OfferCandidate{{OfferID: 3, Percentage: d("20")}}, category: []OfferCandidate{{OfferID: 8, Percentage: d("20")}}, kind: OfferKindProduct, pct: "20", offerID: 3},
		{name: "category only", category: []OfferCandidate{{OfferID: 9, Percentage: d("7.5")}}, kind: OfferKindCategory, pct: "7.5", offerID: 9},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := PickBestOffer(tc.product, tc.category)
			assert.Equal(t, tc.kind, got.Kind)
			assertDecimal(t, tc.pct, got.Percentage, "percentage")
			assert.Equal(t, tc.offerID, got.OfferID)
		})
	}
}

func TestComputeCartTotalsWithoutOffer(t *testing.T) {
	totals := ComputeCartTotals([]Line{
		{ActualPrice: d("1200"), SalePrice: d("1000"), Quantity: 2, Offer: NoOffer()},
	}, DefaultShippingPolicy())

	assertDecimal(t, "2400", totals.TotalActualPrice, "actual")
	assertDecimal(t, "2000", totals.TotalSalePrice, "sale")
	assertDecimal(t, "400", totals.TotalNormalDiscount, "normal discount")
	assertDecimal(t, "0", totals.TotalOfferDiscount, "offer discount")
	assertDecimal(t, "2000", totals.SubtotalAfterOffers, "subtotal")
	assertDecimal(t, "99", totals.DeliveryCharge, "delivery")
	assertDecimal(t, "2099", totals.GrandTotal, "grand total")
}

func TestComputeCartTotalsWithProductOffer(t *testing.T) {
	offer := Offer{Kind: OfferKindProduct, Percentage: d("10")}
	totals := ComputeCartTotals([]Line{
		{ActualPrice: d("1000"), SalePrice: d("1000"), Quantity: 2, Offer: offer},
	}, DefaultShippingPolicy())

	assertDecimal(t, "200", totals.TotalOfferDiscount, "offer discount")
	assertDecimal(t, "1800", totals.SubtotalAfterOffers, "subtotal")
	assertDecimal(t, "1899", totals.GrandTotal, "grand total")
	assertDecimal(t, "900", EffectiveUnitPrice(d("1000"), offer), "effective unit price")
}

func TestComputeCartTotalsShippingThreshold(t *testing.T) {
	policy := DefaultShippingPolicy()

	atThreshold := ComputeCartTotals([]Line{{SalePrice: d("4999"), ActualPrice: d("4999"), Quantity: 1}}, policy)
	assertDecimal(t, "99", atThreshold.DeliveryCharge, "threshold is exclusive")

	above := ComputeCartTotals([]Line{{SalePrice: d("4999.01"), ActualPrice: d("4999.01"), Quantity: 1}}, policy)
	assertDecimal(t, "0", above.DeliveryCharge, "free shipping above threshold")
	assertDecimal(t, "4999.01", above.GrandTotal, "grand total")

	empty := ComputeCartTotals(nil, policy)
	assertDecimal(t, "0", empty.DeliveryCharge, "empty cart")
	assertDecimal(t, "0", empty.GrandTotal, "empty cart total")
}

func TestComputeCartTotalsNormalDiscountFloor(t *testing.T) {
	totals := ComputeCartTotals([]Line{{ActualPrice: d("100"), SalePrice: d("150"), Quantity: 1}}, DefaultShippingPolicy())
	assertDecimal(t, "0", totals.TotalNormalDiscount, "normal discount floor")
}

func TestComputeCouponDiscount(t *testing.T) {
	maxCap := d("150")
	cases := []struct {
		name  string
		terms CouponTerms
		base  string
		want  string
	}{
		{name: "fixed", terms: CouponTerms{DiscountType: constants.CouponTypeFixed, Value: d("99")}, base: "2000", want: "99"},
		{name: "percentage", terms: CouponTerms{DiscountType: constants.CouponTypePercentage, Value: d("10")}, base: "1800", want: "180"},
		{name: "percentage truncates to cents", terms: CouponTerms{DiscountType: constants.CouponTypePercentage, Value: d("15")}, base: "333.33", want: "49.99"},
		{name: "max cap clamps downward", terms: CouponTerms{DiscountType: constants.CouponTypePercentage, Value: d("50"), MaxDiscount: &maxCap}, base: "1000", want: "150"},
		{name: "max cap above discount is ignored", terms: CouponTerms{DiscountType: constants.CouponTypePercentage, Value: d("10"), MaxDiscount: &maxCap}, base: "1000", want: "100"},
		{name: "fixed never reaches base", terms: CouponTerms{DiscountType: constants.CouponTypeFixed, Value: d("500")}, base: "300", want: "299.99"},
		{name: "hundred percent keeps a cent", terms: CouponTerms{DiscountType: constants.CouponTypePercentage, Value: d("100")}, base: "80", want: "79.99"},
		{name: "zero base", terms: CouponTerms{DiscountType: constants.CouponTypeFixed, Value: d("10")}, base: "0", want: "0"},
		{name: "unknown type", terms: CouponTerms{DiscountType: "bogus", Value: d("10")}, base: "100", want: "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assertDecimal(t, tc.want, ComputeCouponDiscount(tc.terms, d(tc.base)), tc.name)
		})
	}
}

func TestCouponBaseExcludesDeliveryCharge(t *testing.T) {
	totals := ComputeCartTotals([]Line{{SalePrice: d("1000"), ActualPrice: d("1000"), Quantity: 1}}, DefaultShippingPolicy())
	assertDecimal(t, "1000", CouponBase(totals), "coupon base")
}

func TestCouponCapProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		base := decimal.NewFromInt(int64(rng.Intn(20000))).Div(decimal.NewFromInt(100)).Add(decimal.NewFromInt(int64(rng.Intn(5000))))
		capValue := decimal.NewFromInt(int64(rng.Intn(1000) + 1))
		terms := CouponTerms{
			DiscountType: constants.CouponTypePercentage,
			Value:        decimal.NewFromInt(int64(rng.Intn(100) + 1)),
			MaxDiscount:  &capValue,
		}
		if i%2 == 0 {
			terms.DiscountType = constants.CouponTypeFixed
			terms.Value = decimal.NewFromInt(int64(rng.Intn(6000) + 1))
		}
		got := ComputeCouponDiscount(terms, base)
		require.False(t, got.IsNegative(), "discount must not be negative")
		require.True(t, got.LessThanOrEqual(capValue), "discount %s exceeds cap %s", got, capValue)
		if base.IsPositive() {
			require.True(t, got.LessThan(base), "discount %s must stay below base %s", got, base)
		}
	}
}

func TestProportionalRefundScenario(t *testing.T) {
	got := ProportionalRefund(d("1000"), d("2099"), d("99"))
	assertDecimal(t, "45.04", got.CouponShare, "coupon share")
	assertDecimal(t, "954.96", got.Refund, "refund")
	assert.True(t, got.Proportion.Round(4).Equal(d("0.4550")), "proportion %s", got.Proportion)
}

func TestProportionalRefundEdges(t *testing.T) {
	noCoupon := ProportionalRefund(d("500"), d("1599"), d("0"))
	assertDecimal(t, "500", noCoupon.Refund, "no coupon refunds full line")

	zeroDenominator := ProportionalRefund(d("500"), d("0"), d("0"))
	assertDecimal(t, "500", zeroDenominator.Refund, "zero denominator")
	assertDecimal(t, "0", zeroDenominator.Proportion, "zero denominator proportion")

	zeroLine := ProportionalRefund(d("0"), d("1000"), d("100"))
	assertDecimal(t, "0", zeroLine.Refund, "zero line")
}

func TestProportionalRefundNeverNegative(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		line := decimal.NewFromInt(int64(rng.Intn(100000))).Div(decimal.NewFromInt(100))
		total := decimal.NewFromInt(int64(rng.Intn(100000)-1000)).Div(decimal.NewFromInt(100))
		discount := decimal.NewFromInt(int64(rng.Intn(50000))).Div(decimal.NewFromInt(100))
		got := ProportionalRefund(line, total, discount)
		require.False(t, got.Refund.IsNegative(), "refund negative for line=%s total=%s discount=%s", line, total, discount)
		require.True(t, got.Refund.LessThanOrEqual(got.LineTotal), "refund exceeds line total")
	}
}

func TestOrderAmountsRemoveLine(t *testing.T) {
	amounts := OrderAmounts{Subtotal: d("2000"), Shipping: d("99"), Discount: d("99")}.Rebalance()
	assertDecimal(t, "2000", amounts.Total, "initial total")

	partial := amounts.RemoveLine(d("1000"))
	assertDecimal(t, "1000", partial.Subtotal, "subtotal after cancel")
	assertDecimal(t, "99", partial.Shipping, "shipping kept")
	assertDecimal(t, "1000", partial.Total, "total after cancel")
	assert.True(t, partial.Balanced())

	empty := partial.RemoveLine(d("1000"))
	assertDecimal(t, "0", empty.Subtotal, "subtotal")
	assertDecimal(t, "0", empty.Shipping, "shipping zeroed")
	assertDecimal(t, "0", empty.Discount, "discount zeroed")
	assertDecimal(t, "0", empty.Total, "total zeroed")
}

func TestOrderAmountsDiscountCapped(t *testing.T) {
	amounts := OrderAmounts{Subtotal: d("300"), Shipping: d("99"), Discount: d("500")}.Rebalance()
	assertDecimal(t, "399", amounts.Discount, "discount capped")
	assertDecimal(t, "0", amounts.Total, "total floor")
	assert.True(t, amounts.Balanced())
}

func TestOrderAmountsBalancedProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	for i := 0; i < 300; i++ {
		amounts := OrderAmounts{
			Subtotal: decimal.NewFromInt(int64(rng.Intn(1000000))).Div(decimal.NewFromInt(100)),
			Shipping: decimal.NewFromInt(int64(rng.Intn(2) * 99)),
			Discount: decimal.NewFromInt(int64(rng.Intn(50000))).Div(decimal.NewFromInt(100)),
		}.Rebalance()
		for j := 0; j < 3; j++ {
			amounts = amounts.RemoveLine(decimal.NewFromInt(int64(rng.Intn(300000))).Div(decimal.NewFromInt(100)))
			require.True(t, amounts.Balanced(), "unbalanced amounts: %+v", amounts)
			require.False(t, amounts.Total.IsNegative(), "negative total: %+v", amounts)
		}
	}
}
