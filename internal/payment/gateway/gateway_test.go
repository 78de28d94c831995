package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
)

func TestSignAndVerifyCallback(t *testing.T) {
	cfg := &Config{KeySecret: "secret"}
	cfg.Normalize()
	data := &CallbackData{
		OrderID:   "order_abc",
		PaymentID: "pay_123",
		Signature: Sign("order_abc", "pay_123", "secret"),
	}
	if err := VerifyCallback(cfg, data); err != nil {
		t.Fatalf("valid signature rejected: %v", err)
	}

	data.Signature = Sign("order_abc", "pay_124", "secret")
	if err := VerifyCallback(cfg, data); err != ErrSignatureInvalid {
		t.Fatalf("tampered signature should fail, got %v", err)
	}

	if err := VerifyCallback(cfg, &CallbackData{OrderID: "order_abc"}); err != ErrSignatureInvalid {
		t.Fatalf("missing params should fail, got %v", err)
	}
}

func TestCreateOrderSandbox(t *testing.T) {
	cfg := &Config{KeyID: "key", KeySecret: "secret"}
	cfg.Normalize()
	result, err := CreateOrder(context.Background(), cfg, CreateInput{
		Amount:  decimal.RequireFromString("2099.50"),
		Receipt: "SO20261019000000123456",
	})
	if err != nil {
		t.Fatalf("sandbox create failed: %v", err)
	}
	if !result.Sandbox || result.AmountMinor != 209950 || result.Currency != "INR" {
		t.Fatalf("sandbox result mismatch: %+v", result)
	}
	if len(result.OrderID) != len("order_")+14 {
		t.Fatalf("unexpected order id: %s", result.OrderID)
	}

	if _, err := CreateOrder(context.Background(), cfg, CreateInput{Amount: decimal.Zero, Receipt: "x"}); err == nil {
		t.Fatalf("zero amount should be rejected")
	}
}

func TestCreateOrderRemote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "key" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":       "order_remote",
			"amount":   body["amount"],
			"currency": body["currency"],
			"status":   "created",
		})
	}))
	defer server.Close()

	cfg := &Config{BaseURL: server.URL + "/", KeyID: "key", KeySecret: "secret"}
	cfg.Normalize()
	if err := ValidateConfig(cfg); err != nil {
		t.Fatalf("config should be valid: %v", err)
	}
	result, err := CreateOrder(context.Background(), cfg, CreateInput{
		Amount:  decimal.NewFromInt(500),
		Receipt: "TXN-1",
	})
	if err != nil {
		t.Fatalf("remote create failed: %v", err)
	}
	if result.OrderID != "order_remote" || result.AmountMinor != 50000 || result.Sandbox {
		t.Fatalf("remote result mismatch: %+v", result)
	}

	bad := &Config{BaseURL: server.URL, KeyID: "key", KeySecret: "wrong"}
	bad.Normalize()
	if _, err := CreateOrder(context.Background(), bad, CreateInput{Amount: decimal.NewFromInt(1), Receipt: "x"}); err == nil {
		t.Fatalf("unauthorized request should fail")
	}
}
