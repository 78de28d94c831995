package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrConfigInvalid    = errors.New("gateway config invalid")
	ErrRequestFailed    = errors.New("gateway request failed")
	ErrResponseInvalid  = errors.New("gateway response invalid")
	ErrSignatureInvalid = errors.New("gateway signature invalid")
)

// Config 网关配置
type Config struct {
	BaseURL   string // 网关 API 地址，为空时本地沙箱下单
	KeyID     string
	KeySecret string
	Currency  string
	Timeout   time.Duration
}

// CreateInput 创建网关订单输入
type CreateInput struct {
	Amount   decimal.Decimal
	Currency string
	Receipt  string // 商户单号（订单号或充值交易号）
	Notes    map[string]string
}

// CreateResult 创建网关订单结果
type CreateResult struct {
	OrderID     string // 网关订单号
	AmountMinor int64  // 以最小货币单位计的金额
	Currency    string
	KeyID       string // 前端拉起支付使用的公钥 ID
	Sandbox     bool
}

// CallbackData 支付回调参数
type CallbackData struct {
	OrderID   string `json:"gateway_order_id" form:"gateway_order_id"`
	PaymentID string `json:"gateway_payment_id" form:"gateway_payment_id"`
	Signature string `json:"gateway_signature" form:"gateway_signature"`
}

// Normalize 清理配置
func (c *Config) Normalize() {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	c.KeyID = strings.TrimSpace(c.KeyID)
	c.KeySecret = strings.TrimSpace(c.KeySecret)
	c.Currency = strings.ToUpper(strings.TrimSpace(c.Currency))
	if c.Currency == "" {
		c.Currency = "INR"
	}
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
}

// ValidateConfig 校验配置，密钥为签名校验所必需
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", ErrConfigInvalid)
	}
	if cfg.KeySecret == "" {
		return fmt.Errorf("%w: key_secret is required", ErrConfigInvalid)
	}
	if cfg.BaseURL != "" && cfg.KeyID == "" {
		return fmt.Errorf("%w: key_id is required", ErrConfigInvalid)
	}
	return nil
}

// ToMinorUnits 将金额转换为最小货币单位
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Round(2).Shift(2).IntPart()
}

// CreateOrder 创建网关订单
func CreateOrder(ctx context.Context, cfg *Config, input CreateInput) (*CreateResult, error) {
	if cfg == nil {
		return nil, ErrConfigInvalid
	}
	if !input.Amount.IsPositive() || strings.TrimSpace(input.Receipt) == "" {
		return nil, fmt.Errorf("%w: amount and receipt are required", ErrConfigInvalid)
	}
	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = cfg.Currency
	}
	amountMinor := ToMinorUnits(input.Amount)

	if cfg.BaseURL == "" {
		return &CreateResult{
			OrderID:     "order_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:14],
			AmountMinor: amountMinor,
			Currency:    currency,
			KeyID:       cfg.KeyID,
			Sandbox:     true,
		}, nil
	}

	params := map[string]interface{}{
		"amount":   amountMinor,
		"currency": currency,
		"receipt":  input.Receipt,
	}
	if len(input.Notes) > 0 {
		params["notes"] = input.Notes
	}
	respBytes, err := postJSON(ctx, cfg, cfg.BaseURL+"/v1/orders", params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	var resp struct {
		ID       string `json:"id"`
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
		Status   string `json:"status"`
	}
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	if resp.ID == "" {
		return nil, fmt.Errorf("%w: missing order id", ErrResponseInvalid)
	}
	return &CreateResult{
		OrderID:     resp.ID,
		AmountMinor: resp.Amount,
		Currency:    resp.Currency,
		KeyID:       cfg.KeyID,
	}, nil
}

// Sign 生成回调签名：HMAC-SHA256(order_id + "|" + payment_id, key_secret) 的十六进制小写
func Sign(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyCallback 验证回调签名
func VerifyCallback(cfg *Config, data *CallbackData) error {
	if cfg == nil || cfg.KeySecret == "" {
		return ErrConfigInvalid
	}
	if data == nil || data.OrderID == "" || data.PaymentID == "" || data.Signature == "" {
		return ErrSignatureInvalid
	}
	expected := Sign(data.OrderID, data.PaymentID, cfg.KeySecret)
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(strings.TrimSpace(data.Signature)))) {
		return ErrSignatureInvalid
	}
	return nil
}

// ParseCallback 解析 JSON 回调数据
func ParseCallback(body []byte) (*CallbackData, error) {
	if len(body) == 0 {
		return nil, ErrResponseInvalid
	}
	var data CallbackData
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	data.OrderID = strings.TrimSpace(data.OrderID)
	data.PaymentID = strings.TrimSpace(data.PaymentID)
	data.Signature = strings.TrimSpace(data.Signature)
	return &data, nil
}

func postJSON(ctx context.Context, cfg *Config, endpoint string, params map[string]interface{}) ([]byte, error) {
	body, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(string(body)))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(cfg.KeyID, cfg.KeySecret)

	client := &http.Client{Timeout: cfg.Timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("http status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
