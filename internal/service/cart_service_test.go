package service

import (
	"errors"
	"testing"

	"github.com/dujiao-next/storefront/internal/constants"
)

func TestCartTotalsWithoutOffer(t *testing.T) {
	env := newServiceTestEnv(t)
	user := env.createUser(t, "cart_plain@example.com")
	variant := env.createVariant(t, "cart-plain", "1000", "1250", 5)

	view, err := env.cartSvc.AddItem(user.ID, variant.ID, 2)
	if err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	assertMoney(t, "2500", view.TotalActualPrice.Decimal, "total actual")
	assertMoney(t, "2000", view.TotalSalePrice.Decimal, "total sale")
	assertMoney(t, "500", view.TotalNormalDiscount.Decimal, "normal discount")
	assertMoney(t, "0", view.TotalOfferDiscount.Decimal, "offer discount")
	assertMoney(t, "2000", view.SubtotalAfterOffers.Decimal, "subtotal after offers")
	assertMoney(t, "99", view.DeliveryCharge.Decimal, "delivery charge")
	assertMoney(t, "2099", view.GrandTotal.Decimal, "grand total")
	assertMoney(t, "2099", view.PayableAmount.Decimal, "payable")
	if len(view.Items) != 1 || view.Items[0].OfferKind != "none" {
		t.Fatalf("unexpected cart lines: %+v", view.Items)
	}

	// 读取时同样重算，结果一致
	again, err := env.cartSvc.GetCart(user.ID)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	assertMoney(t, "2099", again.GrandTotal.Decimal, "grand total on read")
}

func TestCartTotalsWithProductOffer(t *testing.T) {
	env := newServiceTestEnv(t)
	user := env.createUser(t, "cart_offer@example.com")
	variant := env.createVariant(t, "cart-offer", "1000", "1000", 5)
	env.createProductOffer(t, variant.ProductID, "10")

	view, err := env.cartSvc.AddItem(user.ID, variant.ID, 2)
	if err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	assertMoney(t, "200", view.TotalOfferDiscount.Decimal, "offer discount")
	assertMoney(t, "1800", view.SubtotalAfterOffers.Decimal, "subtotal after offers")
	assertMoney(t, "1899", view.GrandTotal.Decimal, "grand total")
	assertMoney(t, "900", view.Items[0].EffectiveUnitPrice.Decimal, "effective unit price")
}

func TestCartFreeShippingAboveThreshold(t *testing.T) {
	env := newServiceTestEnv(t)
	user := env.createUser(t, "cart_free_ship@example.com")
	at := env.createVariant(t, "cart-threshold", "4999", "4999", 5)
	above := env.createVariant(t, "cart-above", "1", "1", 5)

	view, err := env.cartSvc.AddItem(user.ID, at.ID, 1)
	if err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	assertMoney(t, "99", view.DeliveryCharge.Decimal, "delivery at threshold")

	view, err = env.cartSvc.AddItem(user.ID, above.ID, 1)
	if err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	assertMoney(t, "0", view.DeliveryCharge.Decimal, "delivery above threshold")
	assertMoney(t, "5000", view.GrandTotal.Decimal, "grand total")
}

func TestCartCouponDetachedWhenBelowMinimum(t *testing.T) {
	env := newServiceTestEnv(t)
	user := env.createUser(t, "cart_detach@example.com")
	base := env.createVariant(t, "cart-detach-main", "900", "900", 5)
	extra := env.createVariant(t, "cart-detach-extra", "500", "500", 5)
	env.createCoupon(t, "MIN1000", constants.CouponTypeFixed, "100", "1000")

	if _, err := env.cartSvc.AddItem(user.ID, base.ID, 1); err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	if _, err := env.cartSvc.AddItem(user.ID, extra.ID, 1); err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	view, err := env.cartSvc.ApplyCoupon(user.ID, "MIN1000")
	if err != nil {
		t.Fatalf("apply coupon failed: %v", err)
	}
	assertMoney(t, "100", view.CouponDiscount.Decimal, "coupon discount")
	assertMoney(t, "1399", view.PayableAmount.Decimal, "payable with coupon")

	view, err = env.cartSvc.RemoveItem(user.ID, extra.ID)
	if err != nil {
		t.Fatalf("remove item failed: %v", err)
	}
	if !view.CouponDetached || view.DetachReason == "" {
		t.Fatalf("expected coupon detached, got %+v", view)
	}
	assertMoney(t, "0", view.CouponDiscount.Decimal, "coupon discount after detach")
	assertMoney(t, "999", view.PayableAmount.Decimal, "payable after detach")
	if view.CouponCode != "" {
		t.Fatalf("coupon code must be cleared")
	}

	// 再次加回商品后不会自动重新挂载
	view, err = env.cartSvc.AddItem(user.ID, extra.ID, 1)
	if err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	if view.CouponCode != "" || !view.CouponDiscount.Decimal.IsZero() {
		t.Fatalf("coupon must stay detached, got %+v", view)
	}
}

func TestCartApplyCouponErrors(t *testing.T) {
	env := newServiceTestEnv(t)
	user := env.createUser(t, "cart_coupon_errors@example.com")
	variant := env.createVariant(t, "cart-coupon-errors", "300", "300", 5)
	env.createCoupon(t, "BIGSPEND", constants.CouponTypePercentage, "10", "5000")

	if _, err := env.cartSvc.ApplyCoupon(user.ID, "BIGSPEND"); !errors.Is(err, ErrCartEmpty) {
		t.Fatalf("expected empty cart, got %v", err)
	}
	if _, err := env.cartSvc.AddItem(user.ID, variant.ID, 1); err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	if _, err := env.cartSvc.ApplyCoupon(user.ID, "BIGSPEND"); !errors.Is(err, ErrCouponMinAmount) {
		t.Fatalf("expected min amount error, got %v", err)
	}
	if _, err := env.cartSvc.ApplyCoupon(user.ID, "UNKNOWN"); !errors.Is(err, ErrCouponNotFound) {
		t.Fatalf("expected coupon not found, got %v", err)
	}
	if _, err := env.cartSvc.RemoveCoupon(user.ID); !errors.Is(err, ErrCouponNotApplied) {
		t.Fatalf("expected no coupon applied, got %v", err)
	}
}

func TestCartQuantityRules(t *testing.T) {
	env := newServiceTestEnv(t)
	user := env.createUser(t, "cart_quantity@example.com")
	variant := env.createVariant(t, "cart-quantity", "100", "100", 3)
	plenty := env.createVariant(t, "cart-quantity-plenty", "100", "100", 50)

	if _, err := env.cartSvc.AddItem(user.ID, variant.ID, 0); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected invalid quantity, got %v", err)
	}
	if _, err := env.cartSvc.AddItem(user.ID, variant.ID, 4); !errors.Is(err, ErrStockInsufficient) {
		t.Fatalf("expected stock insufficient, got %v", err)
	}
	if _, err := env.cartSvc.AddItem(user.ID, plenty.ID, 6); !errors.Is(err, ErrQuantityExceeded) {
		t.Fatalf("expected per item cap, got %v", err)
	}
	if _, err := env.cartSvc.AddItem(user.ID, plenty.ID, 3); err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	if _, err := env.cartSvc.AddItem(user.ID, plenty.ID, 3); !errors.Is(err, ErrQuantityExceeded) {
		t.Fatalf("expected accumulated quantity capped, got %v", err)
	}

	view, err := env.cartSvc.UpdateQuantity(user.ID, plenty.ID, 5)
	if err != nil {
		t.Fatalf("update quantity failed: %v", err)
	}
	if view.Items[0].Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", view.Items[0].Quantity)
	}
	view, err = env.cartSvc.UpdateQuantity(user.ID, plenty.ID, 0)
	if err != nil {
		t.Fatalf("remove by zero quantity failed: %v", err)
	}
	if len(view.Items) != 0 {
		t.Fatalf("expected empty cart")
	}
	if _, err := env.cartSvc.RemoveItem(user.ID, plenty.ID); !errors.Is(err, ErrCartItemNotFound) {
		t.Fatalf("expected cart item not found, got %v", err)
	}
}

func TestCartRejectsInactiveVariant(t *testing.T) {
	env := newServiceTestEnv(t)
	user := env.createUser(t, "cart_inactive@example.com")
	variant := env.createVariant(t, "cart-inactive", "100", "100", 3)
	if err := env.db.Model(variant).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate variant failed: %v", err)
	}
	if _, err := env.cartSvc.AddItem(user.ID, variant.ID, 1); !errors.Is(err, ErrVariantUnavailable) {
		t.Fatalf("expected variant unavailable, got %v", err)
	}
	if _, err := env.cartSvc.AddItem(user.ID, 99999, 1); !errors.Is(err, ErrVariantNotFound) {
		t.Fatalf("expected variant not found, got %v", err)
	}
}
