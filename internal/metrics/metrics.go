package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

const namespace = "storefront"

var (
	// OrdersPlaced 下单数（按支付方式）
	OrdersPlaced = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_placed_total",
		Help:      "Orders placed, labelled by payment method.",
	}, []string{"payment_method"})

	// ItemCancellations 订单项取消数（按发起方）
	ItemCancellations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_item_cancellations_total",
		Help:      "Order item cancellations, labelled by actor.",
	}, []string{"actor"})

	// ReturnsDecided 退货审核数（按结果）
	ReturnsDecided = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "returns_decided_total",
		Help:      "Return requests decided, labelled by outcome.",
	}, []string{"outcome"})

	// RefundAmount 退回钱包的金额合计（按来源）
	RefundAmount = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "refund_amount_total",
		Help:      "Amount refunded to wallets, labelled by source.",
	}, []string{"source"})

	// WalletTransactions 钱包流水数（按方向与前缀）
	WalletTransactions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "wallet_transactions_total",
		Help:      "Completed wallet ledger entries, labelled by type and prefix.",
	}, []string{"type", "prefix"})

	// CouponRejections 优惠券校验失败数（按原因）
	CouponRejections = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "coupon_rejections_total",
		Help:      "Coupon validation failures, labelled by reason.",
	}, []string{"reason"})

	// GatewayCallbacks 网关回调数（按结果）
	GatewayCallbacks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gateway_callbacks_total",
		Help:      "Payment gateway callbacks, labelled by result.",
	}, []string{"result"})
)

// Registry 应用指标注册表
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		OrdersPlaced,
		ItemCancellations,
		ReturnsDecided,
		RefundAmount,
		WalletTransactions,
		CouponRejections,
		GatewayCallbacks,
	)
}

// Handler 返回 /metrics 处理器
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// ObserveRefund 记录一笔退款
func ObserveRefund(source string, amount decimal.Decimal) {
	if !amount.IsPositive() {
		return
	}
	RefundAmount.WithLabelValues(source).Add(amount.InexactFloat64())
}
