package service

import (
	"testing"
	"time"

	"github.com/dujiao-next/storefront/internal/constants"
	"github.com/dujiao-next/storefront/internal/models"
)

func TestListAvailableCouponsFiltersByWindowAndUsage(t *testing.T) {
	env := newServiceTestEnv(t)
	user := env.createUser(t, "coupon_list@example.com")
	other := env.createUser(t, "coupon_list_other@example.com")
	now := time.Now()
	past := now.Add(-48 * time.Hour)
	future := now.Add(48 * time.Hour)

	open := env.createCoupon(t, "OPEN100", constants.CouponTypeFixed, "100", "500")
	env.db.Model(open).Updates(map[string]interface{}{"per_user_limit": 2, "valid_until": future})

	used := env.createCoupon(t, "USEDUP", constants.CouponTypeFixed, "50", "0")
	env.db.Create(&models.CouponUsage{CouponID: used.ID, UserID: user.ID, OrderID: 9001, DiscountAmount: money("50")})

	exhausted := env.createCoupon(t, "SOLDOUT", constants.CouponTypePercentage, "10", "0")
	env.db.Model(exhausted).Updates(map[string]interface{}{"max_usage": 3, "used_count": 3})

	expired := env.createCoupon(t, "EXPIRED", constants.CouponTypeFixed, "30", "0")
	env.db.Model(expired).Update("valid_until", past)

	upcoming := env.createCoupon(t, "UPCOMING", constants.CouponTypeFixed, "30", "0")
	env.db.Model(upcoming).Update("valid_from", future)

	disabled := env.createCoupon(t, "DISABLED", constants.CouponTypeFixed, "30", "0")
	env.db.Model(disabled).Update("is_active", false)

	coupons, err := env.couponSvc.ListAvailable(user.ID, now)
	if err != nil {
		t.Fatalf("list available failed: %v", err)
	}
	if len(coupons) != 1 || coupons[0].Code != "OPEN100" {
		t.Fatalf("expected only OPEN100, got %+v", coupons)
	}
	if coupons[0].RemainingUses != 2 {
		t.Fatalf("expected 2 remaining uses, got %d", coupons[0].RemainingUses)
	}
	assertMoney(t, "500", coupons[0].MinCartValue.Decimal, "min cart value")
	if coupons[0].ValidUntil == nil {
		t.Fatalf("expected valid_until to be returned")
	}

	// 其他用户未使用过 USEDUP
	coupons, err = env.couponSvc.ListAvailable(other.ID, now)
	if err != nil {
		t.Fatalf("list available for other user failed: %v", err)
	}
	codes := map[string]bool{}
	for _, c := range coupons {
		codes[c.Code] = true
	}
	if len(coupons) != 2 || !codes["OPEN100"] || !codes["USEDUP"] {
		t.Fatalf("unexpected coupons for other user: %+v", coupons)
	}
	// 门槛低的在前
	if coupons[0].Code != "USEDUP" {
		t.Fatalf("expected ordering by min cart value, got %+v", coupons)
	}
}

func TestListAvailableCouponsUnlimitedPerUser(t *testing.T) {
	env := newServiceTestEnv(t)
	user := env.createUser(t, "coupon_unlimited@example.com")
	coupon := env.createCoupon(t, "EVERYDAY", constants.CouponTypeFixed, "20", "0")
	env.db.Model(coupon).Update("per_user_limit", 0)
	for i := uint(1); i <= 3; i++ {
		env.db.Create(&models.CouponUsage{CouponID: coupon.ID, UserID: user.ID, OrderID: 8000 + i, DiscountAmount: money("20")})
	}

	coupons, err := env.couponSvc.ListAvailable(user.ID, time.Now())
	if err != nil {
		t.Fatalf("list available failed: %v", err)
	}
	if len(coupons) != 1 || coupons[0].RemainingUses != -1 {
		t.Fatalf("expected unlimited coupon, got %+v", coupons)
	}
}
