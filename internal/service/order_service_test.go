package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dujiao-next/storefront/internal/constants"
	"github.com/dujiao-next/storefront/internal/models"
)

// 订单 2099 = 2099 + 99 - 99，取消促销后金额 1000 的订单项
func setupCouponOrder(t *testing.T, env *serviceTestEnv, method string, paymentStatus string) (*models.User, *models.Order, *models.ProductVariant, *models.ProductVariant) {
	t.Helper()
	user := env.createUser(t, "cancel_"+method+"@example.com")
	first := env.createVariant(t, "cancel-first-"+method, "1000", "1000", 3)
	second := env.createVariant(t, "cancel-second-"+method, "1099", "1099", 3)
	order := env.createOrderFixture(t, user.ID, method, paymentStatus == constants.ItemPaymentStatusPaid,
		fixtureAmounts{subtotal: "2099", shipping: "99", discount: "99", total: "2099"},
		fixtureLine{variant: first, effective: "1000", quantity: 1, status: constants.OrderItemStatusPending, paymentStatus: paymentStatus},
		fixtureLine{variant: second, effective: "1099", quantity: 1, status: constants.OrderItemStatusPending, paymentStatus: paymentStatus},
	)
	return user, order, first, second
}

func TestCancelItemRefundsCouponAdjustedShare(t *testing.T) {
	env := newServiceTestEnv(t)
	user, order, first, _ := setupCouponOrder(t, env, constants.PaymentMethodWallet, constants.ItemPaymentStatusPaid)

	result, err := env.orderSvc.CancelItem(context.Background(), user.ID, CancelItemInput{
		ItemID: order.Items[0].ID,
		Reason: constants.CancelReasonChangedMind,
	})
	if err != nil {
		t.Fatalf("cancel item failed: %v", err)
	}
	assertMoney(t, "45.04", result.Refund.CouponShare, "coupon share")
	assertMoney(t, "954.96", result.RefundAmount.Decimal, "refund")
	if result.Transaction == nil || !strings.HasPrefix(result.Transaction.TxnID, constants.WalletTxnPrefixCancelRefund) {
		t.Fatalf("expected RF wallet transaction, got %+v", result.Transaction)
	}

	reloaded := env.reloadOrder(t, order.ID)
	assertMoney(t, "1099", reloaded.Subtotal.Decimal, "subtotal")
	assertMoney(t, "99", reloaded.ShippingCost.Decimal, "shipping")
	assertMoney(t, "99", reloaded.Discount.Decimal, "discount")
	assertMoney(t, "1099", reloaded.TotalAmount.Decimal, "total")
	assertMoney(t, "954.96", reloaded.RefundedAmount.Decimal, "refunded amount")
	if !reloaded.AmountBalanced() {
		t.Fatalf("order amounts not balanced after cancel: %+v", reloaded)
	}

	cancelled := reloaded.Items[0]
	if cancelled.Status != constants.OrderItemStatusCancelled || cancelled.PaymentStatus != constants.ItemPaymentStatusRefunded {
		t.Fatalf("unexpected cancelled item state: %s/%s", cancelled.Status, cancelled.PaymentStatus)
	}
	if cancelled.CancelReason != constants.CancelReasonChangedMind {
		t.Fatalf("cancel reason not stored")
	}
	assertMoney(t, "954.96", env.walletBalance(t, user.ID), "wallet balance")
	if got := env.reloadVariant(t, first.ID).Stock; got != 4 {
		t.Fatalf("expected stock restored to 4, got %d", got)
	}
	if !env.notifier.has(constants.EventItemCancelled) {
		t.Fatalf("expected item cancelled event")
	}

	_, err = env.orderSvc.CancelItem(context.Background(), user.ID, CancelItemInput{
		ItemID: order.Items[0].ID,
		Reason: constants.CancelReasonChangedMind,
	})
	if !errors.Is(err, ErrOrderItemStatusInvalid) {
		t.Fatalf("expected re-cancel rejected, got %v", err)
	}
}

func TestCancelLastItemZeroesOrder(t *testing.T) {
	env := newServiceTestEnv(t)
	user, order, _, _ := setupCouponOrder(t, env, constants.PaymentMethodWallet, constants.ItemPaymentStatusPaid)

	for _, item := range order.Items {
		if _, err := env.orderSvc.AdminCancelItem(context.Background(), CancelItemInput{
			ItemID: item.ID,
			Reason: constants.CancelReasonDeliveryDelay,
		}); err != nil {
			t.Fatalf("admin cancel failed: %v", err)
		}
	}

	reloaded := env.reloadOrder(t, order.ID)
	for field, value := range map[string]models.Money{
		"subtotal": reloaded.Subtotal,
		"shipping": reloaded.ShippingCost,
		"discount": reloaded.Discount,
		"total":    reloaded.TotalAmount,
	} {
		if !value.Decimal.IsZero() {
			t.Fatalf("expected %s zero after cancelling every item, got %s", field, value.String())
		}
	}
	// 第二项按剩余订单（1099 + 99 - 99）重新分摊：1099 - 99×1099/1198
	assertMoney(t, "954.96", reloaded.Items[0].RefundAmount.Decimal, "first refund")
	assertMoney(t, "1008.18", reloaded.Items[1].RefundAmount.Decimal, "second refund")
	assertMoney(t, "1963.14", env.walletBalance(t, user.ID), "wallet balance")
}

func TestCancelUnpaidItemDoesNotCreditWallet(t *testing.T) {
	env := newServiceTestEnv(t)
	user, order, _, _ := setupCouponOrder(t, env, constants.PaymentMethodCOD, constants.ItemPaymentStatusUnpaid)

	result, err := env.orderSvc.CancelItem(context.Background(), user.ID, CancelItemInput{
		ItemID:       order.Items[1].ID,
		Reason:       constants.CancelReasonCustom,
		CustomReason: "found it locally",
	})
	if err != nil {
		t.Fatalf("cancel item failed: %v", err)
	}
	if result.Transaction != nil || !result.RefundAmount.Decimal.IsZero() {
		t.Fatalf("unpaid item must not be refunded: %+v", result)
	}
	if result.Item.PaymentStatus != constants.ItemPaymentStatusCancelled {
		t.Fatalf("expected payment status cancelled, got %s", result.Item.PaymentStatus)
	}
	if result.Item.CancelReasonCustom != "found it locally" {
		t.Fatalf("custom reason not stored")
	}
	wallet, err := env.walletRepo.GetByUserID(user.ID)
	if err != nil {
		t.Fatalf("get wallet failed: %v", err)
	}
	if wallet != nil && !wallet.Balance.Decimal.IsZero() {
		t.Fatalf("wallet must stay empty, got %s", wallet.Balance.String())
	}
}

func TestCancelItemValidation(t *testing.T) {
	env := newServiceTestEnv(t)
	user, order, _, _ := setupCouponOrder(t, env, constants.PaymentMethodWallet, constants.ItemPaymentStatusPaid)
	other := env.createUser(t, "someone_else@example.com")

	_, err := env.orderSvc.CancelItem(context.Background(), user.ID, CancelItemInput{ItemID: order.Items[0].ID, Reason: "because"})
	if !errors.Is(err, ErrCancelReasonInvalid) {
		t.Fatalf("expected invalid reason, got %v", err)
	}
	_, err = env.orderSvc.CancelItem(context.Background(), user.ID, CancelItemInput{ItemID: order.Items[0].ID, Reason: constants.CancelReasonCustom})
	if !errors.Is(err, ErrCancelReasonInvalid) {
		t.Fatalf("expected custom reason text required, got %v", err)
	}
	_, err = env.orderSvc.CancelItem(context.Background(), other.ID, CancelItemInput{ItemID: order.Items[0].ID, Reason: constants.CancelReasonBetterPrice})
	if !errors.Is(err, ErrOrderItemNotFound) {
		t.Fatalf("expected foreign item hidden, got %v", err)
	}

	if err := env.orderRepo.UpdateItem(order.Items[1].ID, map[string]interface{}{"status": constants.OrderItemStatusDelivered}); err != nil {
		t.Fatalf("update item failed: %v", err)
	}
	_, err = env.orderSvc.CancelItem(context.Background(), user.ID, CancelItemInput{ItemID: order.Items[1].ID, Reason: constants.CancelReasonBetterPrice})
	if !errors.Is(err, ErrOrderItemStatusInvalid) {
		t.Fatalf("expected delivered item not cancellable, got %v", err)
	}
}

func TestUpdateItemStatusCODDeliveryMarksOrderPaid(t *testing.T) {
	env := newServiceTestEnv(t)
	user := env.createUser(t, "cod_delivery@example.com")
	variant := env.createVariant(t, "cod-delivery", "500", "500", 5)
	order := env.createOrderFixture(t, user.ID, constants.PaymentMethodCOD, false,
		fixtureAmounts{subtotal: "500", shipping: "99", discount: "0", total: "599"},
		fixtureLine{variant: variant, effective: "500", quantity: 1, status: constants.OrderItemStatusPending, paymentStatus: constants.ItemPaymentStatusUnpaid},
	)
	itemID := order.Items[0].ID

	if _, err := env.orderSvc.UpdateItemStatus(context.Background(), itemID, constants.OrderItemStatusDelivered); !errors.Is(err, ErrOrderItemStatusInvalid) {
		t.Fatalf("expected pending to delivered rejected, got %v", err)
	}
	for _, status := range []string{
		constants.OrderItemStatusProcessing,
		constants.OrderItemStatusShipped,
		constants.OrderItemStatusOnTheWay,
	} {
		if _, err := env.orderSvc.UpdateItemStatus(context.Background(), itemID, status); err != nil {
			t.Fatalf("advance to %s failed: %v", status, err)
		}
	}
	if env.reloadOrder(t, order.ID).IsPaid {
		t.Fatalf("cod order must stay unpaid before delivery")
	}

	item, err := env.orderSvc.UpdateItemStatus(context.Background(), itemID, constants.OrderItemStatusDelivered)
	if err != nil {
		t.Fatalf("deliver failed: %v", err)
	}
	if item.PaymentStatus != constants.ItemPaymentStatusPaid || item.DeliveredAt == nil {
		t.Fatalf("expected delivered cod item paid, got %+v", item)
	}
	if !env.reloadOrder(t, order.ID).IsPaid {
		t.Fatalf("expected order paid once every live item is paid")
	}
	if env.paidHook.count() != 1 {
		t.Fatalf("expected paid hook once, got %d", env.paidHook.count())
	}
}

func TestUpdateItemStatusRequiresPaymentForPrepaidOrders(t *testing.T) {
	env := newServiceTestEnv(t)
	user := env.createUser(t, "gateway_unpaid@example.com")
	variant := env.createVariant(t, "gateway-unpaid", "500", "500", 5)
	order := env.createOrderFixture(t, user.ID, constants.PaymentMethodGatewayDirect, false,
		fixtureAmounts{subtotal: "500", shipping: "99", discount: "0", total: "599"},
		fixtureLine{variant: variant, effective: "500", quantity: 1, status: constants.OrderItemStatusPending, paymentStatus: constants.ItemPaymentStatusUnpaid},
	)
	if _, err := env.orderSvc.UpdateItemStatus(context.Background(), order.Items[0].ID, constants.OrderItemStatusProcessing); !errors.Is(err, ErrOrderItemStatusInvalid) {
		t.Fatalf("expected unpaid prepaid item blocked, got %v", err)
	}
}
