package service

import (
	"context"
	"errors"
	"testing"

	"github.com/dujiao-next/storefront/internal/constants"
	"github.com/dujiao-next/storefront/internal/payment/gateway"

	"github.com/shopspring/decimal"
)

func placeGatewayOrder(t *testing.T, env *serviceTestEnv, email string) *PlaceOrderResult {
	t.Helper()
	user := env.createUser(t, email)
	variant := env.createVariant(t, "gateway-"+email, "1000", "1000", 5)
	if _, err := env.cartSvc.AddItem(user.ID, variant.ID, 1); err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	result, err := env.checkoutSvc.PlaceOrder(context.Background(), PlaceOrderInput{
		UserID:          user.ID,
		PaymentMethod:   constants.PaymentMethodGatewayDirect,
		ShippingName:    "Tester",
		ShippingAddress: "1 Test Street",
	})
	if err != nil {
		t.Fatalf("place gateway order failed: %v", err)
	}
	return result
}

func signedCallback(orderID, paymentID string) PaymentCallbackInput {
	return PaymentCallbackInput{CallbackData: gateway.CallbackData{
		OrderID:   orderID,
		PaymentID: paymentID,
		Signature: gateway.Sign(orderID, paymentID, testGatewaySecret),
	}}
}

func TestHandleCallbackMarksOrderPaidOnce(t *testing.T) {
	env := newServiceTestEnv(t)
	placed := placeGatewayOrder(t, env, "callback_ok@example.com")

	result, err := env.paymentSvc.HandleCallback(context.Background(), signedCallback(placed.Gateway.ID, "pay_001"))
	if err != nil {
		t.Fatalf("handle callback failed: %v", err)
	}
	if result.Result != CallbackResultSuccess {
		t.Fatalf("expected success, got %s", result.Result)
	}
	order := env.reloadOrder(t, placed.Order.ID)
	if !order.IsPaid || order.Items[0].PaymentStatus != constants.ItemPaymentStatusPaid {
		t.Fatalf("expected order and item paid, got %+v", order)
	}
	payment, err := env.paymentRepo.GetByGatewayOrderID(placed.Gateway.ID)
	if err != nil || payment == nil {
		t.Fatalf("reload payment failed: %v", err)
	}
	if payment.Status != constants.GatewayPaymentStatusSuccess || payment.GatewayPaymentID != "pay_001" {
		t.Fatalf("unexpected payment record: %+v", payment)
	}
	if env.paidHook.count() != 1 {
		t.Fatalf("expected paid hook once, got %d", env.paidHook.count())
	}

	again, err := env.paymentSvc.HandleCallback(context.Background(), signedCallback(placed.Gateway.ID, "pay_001"))
	if err != nil {
		t.Fatalf("duplicate callback failed: %v", err)
	}
	if again.Result != CallbackResultDuplicate {
		t.Fatalf("expected duplicate, got %s", again.Result)
	}
	if env.paidHook.count() != 1 {
		t.Fatalf("duplicate callback must not fire paid hook again")
	}
}

func TestHandleCallbackInvalidSignatureThenRetry(t *testing.T) {
	env := newServiceTestEnv(t)
	placed := placeGatewayOrder(t, env, "callback_bad@example.com")

	forged := signedCallback(placed.Gateway.ID, "pay_bad")
	forged.Signature = "deadbeef"
	result, err := env.paymentSvc.HandleCallback(context.Background(), forged)
	if !errors.Is(err, ErrPaymentSignatureInvalid) {
		t.Fatalf("expected signature invalid, got %v", err)
	}
	if result == nil || result.Result != CallbackResultFailed {
		t.Fatalf("expected failed result, got %+v", result)
	}
	order := env.reloadOrder(t, placed.Order.ID)
	if order.IsPaid || order.Items[0].Status != constants.OrderItemStatusPaymentFailed {
		t.Fatalf("expected payment failed item, got %+v", order.Items[0])
	}
	if !env.notifier.has(constants.EventPaymentFailed) {
		t.Fatalf("expected payment failed event")
	}

	retry, err := env.checkoutSvc.RetryOrderPayment(context.Background(), order.UserID, order.ID)
	if err != nil {
		t.Fatalf("retry payment failed: %v", err)
	}
	if retry.Gateway.ID == placed.Gateway.ID {
		t.Fatalf("retry must create a new gateway order")
	}
	if got := env.reloadOrder(t, order.ID).Items[0].Status; got != constants.OrderItemStatusPending {
		t.Fatalf("expected item back to pending, got %s", got)
	}
	payments, err := env.paymentSvc.ListOrderPayments(order.ID)
	if err != nil || len(payments) != 2 {
		t.Fatalf("expected two payment records, got %d err %v", len(payments), err)
	}

	if _, err := env.paymentSvc.HandleCallback(context.Background(), signedCallback(retry.Gateway.ID, "pay_002")); err != nil {
		t.Fatalf("retry callback failed: %v", err)
	}
	if !env.reloadOrder(t, order.ID).IsPaid {
		t.Fatalf("expected order paid after retry")
	}
	if _, err := env.checkoutSvc.RetryOrderPayment(context.Background(), order.UserID, order.ID); !errors.Is(err, ErrOrderAlreadyPaid) {
		t.Fatalf("expected already paid, got %v", err)
	}
}

func TestHandleCallbackGatewayReportedFailure(t *testing.T) {
	env := newServiceTestEnv(t)
	placed := placeGatewayOrder(t, env, "callback_declined@example.com")

	input := signedCallback(placed.Gateway.ID, "pay_declined")
	input.Status = "failed"
	input.FailureReason = "card declined"
	result, err := env.paymentSvc.HandleCallback(context.Background(), input)
	if err != nil {
		t.Fatalf("failed callback should not error: %v", err)
	}
	if result.Result != CallbackResultFailed {
		t.Fatalf("expected failed result, got %s", result.Result)
	}
	payment, err := env.paymentRepo.GetByGatewayOrderID(placed.Gateway.ID)
	if err != nil || payment == nil {
		t.Fatalf("reload payment failed: %v", err)
	}
	if payment.FailureReason != "card declined" {
		t.Fatalf("expected failure reason stored, got %q", payment.FailureReason)
	}
}

func TestHandleCallbackUnknownOrder(t *testing.T) {
	env := newServiceTestEnv(t)
	if _, err := env.paymentSvc.HandleCallback(context.Background(), PaymentCallbackInput{}); !errors.Is(err, ErrPaymentCallbackInvalid) {
		t.Fatalf("expected invalid callback, got %v", err)
	}
	if _, err := env.paymentSvc.HandleCallback(context.Background(), signedCallback("order_missing", "pay_x")); !errors.Is(err, ErrPaymentNotFound) {
		t.Fatalf("expected payment not found, got %v", err)
	}
}

func TestHandleCallbackCompletesWalletTopup(t *testing.T) {
	env := newServiceTestEnv(t)
	user := env.createUser(t, "topup_callback@example.com")
	topup, err := env.walletSvc.CreateTopup(context.Background(), user.ID, decimal.NewFromInt(500))
	if err != nil {
		t.Fatalf("create topup failed: %v", err)
	}

	result, err := env.paymentSvc.HandleCallback(context.Background(), signedCallback(topup.Gateway.ID, "pay_topup"))
	if err != nil {
		t.Fatalf("topup callback failed: %v", err)
	}
	if result.Result != CallbackResultSuccess {
		t.Fatalf("expected success, got %s", result.Result)
	}
	assertMoney(t, "500", env.walletBalance(t, user.ID), "balance after topup")
	if !env.notifier.has(constants.EventWalletTopup) {
		t.Fatalf("expected wallet topup event")
	}
	if env.paidHook.count() != 0 {
		t.Fatalf("topup must not count as an order payment")
	}

	if _, err := env.paymentSvc.HandleCallback(context.Background(), signedCallback(topup.Gateway.ID, "pay_topup")); err != nil {
		t.Fatalf("duplicate topup callback failed: %v", err)
	}
	assertMoney(t, "500", env.walletBalance(t, user.ID), "balance after duplicate")

	reconcile, err := env.walletSvc.Reconcile(user.ID)
	if err != nil || !reconcile.Balanced {
		t.Fatalf("expected balanced ledger, got %+v err %v", reconcile, err)
	}
}

func TestHandleCallbackForgedFailureDoesNotBlockSignedSuccess(t *testing.T) {
	env := newServiceTestEnv(t)
	placed := placeGatewayOrder(t, env, "callback_forged@example.com")

	forged := signedCallback(placed.Gateway.ID, "pay_forged")
	forged.Signature = "not-a-signature"
	forged.Status = "failed"
	if _, err := env.paymentSvc.HandleCallback(context.Background(), forged); !errors.Is(err, ErrPaymentSignatureInvalid) {
		t.Fatalf("expected signature invalid, got %v", err)
	}
	payment, err := env.paymentRepo.GetByGatewayOrderID(placed.Gateway.ID)
	if err != nil || payment == nil {
		t.Fatalf("reload payment failed: %v", err)
	}
	if payment.Status != constants.GatewayPaymentStatusCreated {
		t.Fatalf("unverified callback must keep payment open, got %s", payment.Status)
	}
	if payment.FailureReason == "" {
		t.Fatalf("expected failure reason recorded")
	}

	result, err := env.paymentSvc.HandleCallback(context.Background(), signedCallback(placed.Gateway.ID, "pay_real"))
	if err != nil {
		t.Fatalf("signed callback failed: %v", err)
	}
	if result.Result != CallbackResultSuccess {
		t.Fatalf("expected success after forged failure, got %s", result.Result)
	}
	order := env.reloadOrder(t, placed.Order.ID)
	item := order.Items[0]
	if !order.IsPaid || item.Status != constants.OrderItemStatusPending || item.PaymentStatus != constants.ItemPaymentStatusPaid {
		t.Fatalf("expected paid order with pending item, got paid=%v item=%s/%s", order.IsPaid, item.Status, item.PaymentStatus)
	}
	if env.paidHook.count() != 1 {
		t.Fatalf("expected paid hook once, got %d", env.paidHook.count())
	}
}

func TestHandleCallbackSignedSuccessAfterSignedFailure(t *testing.T) {
	env := newServiceTestEnv(t)
	placed := placeGatewayOrder(t, env, "callback_late_success@example.com")

	declined := signedCallback(placed.Gateway.ID, "pay_first")
	declined.Status = "failed"
	if _, err := env.paymentSvc.HandleCallback(context.Background(), declined); err != nil {
		t.Fatalf("declined callback failed: %v", err)
	}
	again, err := env.paymentSvc.HandleCallback(context.Background(), declined)
	if err != nil || again.Result != CallbackResultDuplicate {
		t.Fatalf("repeated failure should be duplicate, got %+v err %v", again, err)
	}

	result, err := env.paymentSvc.HandleCallback(context.Background(), signedCallback(placed.Gateway.ID, "pay_second"))
	if err != nil || result.Result != CallbackResultSuccess {
		t.Fatalf("expected late success applied, got %+v err %v", result, err)
	}
	if !env.reloadOrder(t, placed.Order.ID).IsPaid {
		t.Fatalf("expected order paid")
	}
}

func TestHandleCallbackForgedTopupKeepsPending(t *testing.T) {
	env := newServiceTestEnv(t)
	user := env.createUser(t, "topup_forged@example.com")
	topup, err := env.walletSvc.CreateTopup(context.Background(), user.ID, decimal.NewFromInt(300))
	if err != nil {
		t.Fatalf("create topup failed: %v", err)
	}
	forged := signedCallback(topup.Gateway.ID, "pay_forged")
	forged.Signature = "bad"
	if _, err := env.paymentSvc.HandleCallback(context.Background(), forged); !errors.Is(err, ErrPaymentSignatureInvalid) {
		t.Fatalf("expected signature invalid, got %v", err)
	}
	if _, err := env.paymentSvc.HandleCallback(context.Background(), signedCallback(topup.Gateway.ID, "pay_ok")); err != nil {
		t.Fatalf("signed topup callback failed: %v", err)
	}
	assertMoney(t, "300", env.walletBalance(t, user.ID), "balance after signed topup")
}
