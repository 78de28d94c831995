package service

import (
	"errors"
	"testing"
	"time"

	"github.com/dujiao-next/storefront/internal/constants"
	"github.com/dujiao-next/storefront/internal/models"
)

func TestBuildInvoiceSkipsCancelledLines(t *testing.T) {
	order := &models.Order{
		OrderNo:        "SO20260101",
		Currency:       "INR",
		Subtotal:       money("2099"),
		ShippingCost:   money("99"),
		Discount:       money("99"),
		TotalAmount:    money("2099"),
		RefundedAmount: models.ZeroMoney(),
		Items: []models.OrderItem{
			{ID: 11, ProductName: "Kettle", Quantity: 1, EffectivePrice: money("1000"), Status: constants.OrderItemStatusDelivered, PaymentStatus: constants.ItemPaymentStatusPaid},
			{ID: 12, ProductName: "Mug", Quantity: 1, EffectivePrice: money("1099"), Status: constants.OrderItemStatusCancelled, PaymentStatus: constants.ItemPaymentStatusRefunded},
		},
	}
	issued := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	inv, err := BuildInvoice(order, issued)
	if err != nil {
		t.Fatalf("build invoice failed: %v", err)
	}
	if len(inv.Lines) != 1 {
		t.Fatalf("expected cancelled line skipped, got %d lines", len(inv.Lines))
	}
	line := inv.Lines[0]
	if line.InvoiceNo != "ORD-SO20260101-11" {
		t.Fatalf("unexpected invoice no %s", line.InvoiceNo)
	}
	assertMoney(t, "1000", line.LineTotal.Decimal, "line total")
	assertMoney(t, "45.04", line.CouponShare.Decimal, "coupon share")
	assertMoney(t, "954.96", line.NetAmount.Decimal, "net amount")
	if !inv.IssuedAt.Equal(issued) || inv.Currency != "INR" {
		t.Fatalf("unexpected invoice header: %+v", inv)
	}
}

func TestBuildInvoiceNilOrder(t *testing.T) {
	if _, err := BuildInvoice(nil, time.Now()); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected order not found, got %v", err)
	}
}
