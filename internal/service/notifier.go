package service

import (
	"context"
	"strings"

	"github.com/dujiao-next/storefront/internal/logger"
	"github.com/dujiao-next/storefront/internal/queue"
)

// OrderEvent 订单事件
type OrderEvent struct {
	Event       string
	UserID      uint
	OrderID     uint
	OrderItemID uint
	Amount      string
	Extra       map[string]string
}

// Notifier 订单事件通知
// 通知失败不影响主流程，实现方自行记录错误。
type Notifier interface {
	Notify(ctx context.Context, event OrderEvent)
}

// NotificationSender 实际投递通知
type NotificationSender interface {
	Send(ctx context.Context, payload queue.OrderEventPayload) error
}

// LogSender 仅写日志的通知投递实现
type LogSender struct{}

// Send 记录通知
func (LogSender) Send(_ context.Context, payload queue.OrderEventPayload) error {
	logger.Infow("order_event_notified",
		"event", payload.Event,
		"user_id", payload.UserID,
		"order_id", payload.OrderID,
		"order_item_id", payload.OrderItemID,
		"amount", payload.Amount,
	)
	return nil
}

// QueueNotifier 通过异步队列投递通知，队列未启用时直接交给 sender
type QueueNotifier struct {
	client *queue.Client
	sender NotificationSender
}

// NewQueueNotifier 创建队列通知器
func NewQueueNotifier(client *queue.Client, sender NotificationSender) *QueueNotifier {
	if sender == nil {
		sender = LogSender{}
	}
	return &QueueNotifier{client: client, sender: sender}
}

// Notify 投递订单事件
func (n *QueueNotifier) Notify(ctx context.Context, event OrderEvent) {
	if n == nil || strings.TrimSpace(event.Event) == "" {
		return
	}
	payload := queue.OrderEventPayload{
		Event:       strings.TrimSpace(event.Event),
		UserID:      event.UserID,
		OrderID:     event.OrderID,
		OrderItemID: event.OrderItemID,
		Amount:      event.Amount,
		Extra:       event.Extra,
	}
	if n.client != nil && n.client.Enabled() {
		if err := n.client.EnqueueOrderEvent(payload); err != nil {
			logger.Warnw("order_event_enqueue_failed", "event", payload.Event, "order_id", payload.OrderID, "error", err)
		}
		return
	}
	if err := n.sender.Send(ctx, payload); err != nil {
		logger.Warnw("order_event_send_failed", "event", payload.Event, "order_id", payload.OrderID, "error", err)
	}
}

// noopNotifier 未配置通知器时使用
type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, OrderEvent) {}

func notifierOrNoop(n Notifier) Notifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}
