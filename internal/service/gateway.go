package service

import (
	"context"

	"github.com/dujiao-next/storefront/internal/config"
	"github.com/dujiao-next/storefront/internal/payment/gateway"

	"github.com/shopspring/decimal"
)

// GatewayOrderRequest 网关下单请求
type GatewayOrderRequest struct {
	Amount   decimal.Decimal
	Currency string
	Receipt  string
	Notes    map[string]string
}

// GatewayOrder 网关订单
type GatewayOrder struct {
	ID          string `json:"gateway_order_id"`
	AmountMinor int64  `json:"amount"`
	Currency    string `json:"currency"`
	KeyID       string `json:"key_id"`
}

// PaymentGateway 外部支付网关
type PaymentGateway interface {
	CreateOrder(ctx context.Context, req GatewayOrderRequest) (*GatewayOrder, error)
	VerifyCallback(data gateway.CallbackData) error
}

// SignedGateway 基于 HMAC 回调签名的网关实现
type SignedGateway struct {
	cfg *gateway.Config
}

// NewSignedGateway 创建网关
func NewSignedGateway(cfg config.GatewayConfig) *SignedGateway {
	gwCfg := &gateway.Config{
		BaseURL:   cfg.BaseURL,
		KeyID:     cfg.KeyID,
		KeySecret: cfg.KeySecret,
		Currency:  cfg.Currency,
	}
	gwCfg.Normalize()
	return &SignedGateway{cfg: gwCfg}
}

// CreateOrder 创建网关订单
func (g *SignedGateway) CreateOrder(ctx context.Context, req GatewayOrderRequest) (*GatewayOrder, error) {
	result, err := gateway.CreateOrder(ctx, g.cfg, gateway.CreateInput{
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Notes:    req.Notes,
	})
	if err != nil {
		return nil, err
	}
	return &GatewayOrder{
		ID:          result.OrderID,
		AmountMinor: result.AmountMinor,
		Currency:    result.Currency,
		KeyID:       result.KeyID,
	}, nil
}

// VerifyCallback 校验回调签名
func (g *SignedGateway) VerifyCallback(data gateway.CallbackData) error {
	return gateway.VerifyCallback(g.cfg, &data)
}
