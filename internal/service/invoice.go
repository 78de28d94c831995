package service

import (
	"fmt"
	"time"

	"github.com/dujiao-next/storefront/internal/constants"
	"github.com/dujiao-next/storefront/internal/models"
	"github.com/dujiao-next/storefront/internal/pricing"

	"github.com/shopspring/decimal"
)

// InvoiceLine 发票行
type InvoiceLine struct {
	InvoiceNo      string       `json:"invoice_no"`
	OrderItemID    uint         `json:"order_item_id"`
	ProductName    string       `json:"product_name"`
	VariantName    string       `json:"variant_name"`
	Quantity       int          `json:"quantity"`
	OriginalPrice  models.Money `json:"original_price"`
	SalePrice      models.Money `json:"sale_price"`
	OfferPercent   models.Money `json:"offer_percentage"`
	EffectivePrice models.Money `json:"effective_price"`
	LineTotal      models.Money `json:"line_total"`
	CouponShare    models.Money `json:"coupon_share"`
	NetAmount      models.Money `json:"net_amount"`
	Status         string       `json:"status"`
	PaymentStatus  string       `json:"payment_status"`
}

// Invoice 订单发票数据，供文档生成使用
type Invoice struct {
	OrderNo         string        `json:"order_no"`
	IssuedAt        time.Time     `json:"issued_at"`
	Currency        string        `json:"currency"`
	PaymentMethod   string        `json:"payment_method"`
	ShippingName    string        `json:"shipping_name"`
	ShippingPhone   string        `json:"shipping_phone"`
	ShippingAddress string        `json:"shipping_address"`
	ShippingPincode string        `json:"shipping_pincode"`
	Lines           []InvoiceLine `json:"lines"`
	Subtotal        models.Money  `json:"subtotal"`
	ShippingCost    models.Money  `json:"shipping_cost"`
	Discount        models.Money  `json:"discount"`
	TotalAmount     models.Money  `json:"total_amount"`
	RefundedAmount  models.Money  `json:"refunded_amount"`
}

// InvoiceNo 单个订单项的发票号
func InvoiceNo(orderNo string, itemID uint) string {
	return fmt.Sprintf("ORD-%s-%d", orderNo, itemID)
}

// BuildInvoice 从订单快照生成发票数据，已取消的订单项不计入
func BuildInvoice(order *models.Order, issuedAt time.Time) (*Invoice, error) {
	if order == nil {
		return nil, ErrOrderNotFound
	}
	inv := &Invoice{
		OrderNo:         order.OrderNo,
		IssuedAt:        issuedAt,
		Currency:        order.Currency,
		PaymentMethod:   order.PaymentMethod,
		ShippingName:    order.ShippingName,
		ShippingPhone:   order.ShippingPhone,
		ShippingAddress: order.ShippingAddress,
		ShippingPincode: order.ShippingPincode,
		Subtotal:        order.Subtotal,
		ShippingCost:    order.ShippingCost,
		Discount:        order.Discount,
		TotalAmount:     order.TotalAmount,
		RefundedAmount:  order.RefundedAmount,
		Lines:           make([]InvoiceLine, 0, len(order.Items)),
	}
	for i := range order.Items {
		item := &order.Items[i]
		if item.Status == constants.OrderItemStatusCancelled {
			continue
		}
		lineTotal := item.LineTotal()
		share := pricing.ProportionalRefund(lineTotal, order.TotalAmount.Decimal, order.Discount.Decimal)
		inv.Lines = append(inv.Lines, InvoiceLine{
			InvoiceNo:      InvoiceNo(order.OrderNo, item.ID),
			OrderItemID:    item.ID,
			ProductName:    item.ProductName,
			VariantName:    item.VariantName,
			Quantity:       item.Quantity,
			OriginalPrice:  item.OriginalPrice,
			SalePrice:      item.Price,
			OfferPercent:   item.OfferPercentage,
			EffectivePrice: item.EffectivePrice,
			LineTotal:      models.NewMoneyFromDecimal(lineTotal),
			CouponShare:    models.NewMoneyFromDecimal(share.CouponShare),
			NetAmount:      models.NewMoneyFromDecimal(decimal.Max(decimal.Zero, lineTotal.Sub(share.CouponShare))),
			Status:         item.Status,
			PaymentStatus:  item.PaymentStatus,
		})
	}
	return inv, nil
}
