package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dujiao-next/storefront/internal/constants"
	"github.com/dujiao-next/storefront/internal/logger"
	"github.com/dujiao-next/storefront/internal/metrics"
	"github.com/dujiao-next/storefront/internal/models"
	"github.com/dujiao-next/storefront/internal/pricing"
	"github.com/dujiao-next/storefront/internal/repository"

	"gorm.io/gorm"
)

// OrderService 订单服务（查询、取消、状态推进）
type OrderService struct {
	orderRepo   repository.OrderRepository
	variantRepo repository.ProductVariantRepository
	walletSvc   *WalletService
	notifier    Notifier
	paidHook    OrderPaidHook
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo repository.OrderRepository, variantRepo repository.ProductVariantRepository, walletSvc *WalletService, notifier Notifier, paidHook OrderPaidHook) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		variantRepo: variantRepo,
		walletSvc:   walletSvc,
		notifier:    notifierOrNoop(notifier),
		paidHook:    paidHook,
	}
}

// SetPaidHook 设置支付确认回调
func (s *OrderService) SetPaidHook(hook OrderPaidHook) {
	s.paidHook = hook
}

// CancelItemInput 取消订单项输入
type CancelItemInput struct {
	ItemID       uint
	Reason       string
	CustomReason string
}

// CancelItemResult 取消结果
type CancelItemResult struct {
	Order  *models.Order           `json:"order"`
	Item   *models.OrderItem       `json:"item"`
	Refund pricing.RefundBreakdown `json:"-"`
	// 实际退回钱包的金额，未支付的订单项为 0
	RefundAmount models.Money             `json:"refund_amount"`
	Transaction  *models.WalletTransaction `json:"transaction,omitempty"`
}

// CancelItem 用户取消自己订单中的订单项
func (s *OrderService) CancelItem(ctx context.Context, userID uint, input CancelItemInput) (*CancelItemResult, error) {
	if userID == 0 {
		return nil, ErrOrderItemNotFound
	}
	return s.cancelItem(ctx, userID, input, "user")
}

// AdminCancelItem 管理端取消订单项
func (s *OrderService) AdminCancelItem(ctx context.Context, input CancelItemInput) (*CancelItemResult, error) {
	return s.cancelItem(ctx, 0, input, "admin")
}

func (s *OrderService) cancelItem(ctx context.Context, userID uint, input CancelItemInput, actor string) (*CancelItemResult, error) {
	reason, custom, err := normalizeCancelReason(input.Reason, input.CustomReason)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	result := &CancelItemResult{}
	var becamePaid bool
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		item, err := orderRepo.GetItemForUpdate(input.ItemID)
		if err != nil {
			return ErrOrderFetchFailed
		}
		if item == nil {
			return ErrOrderItemNotFound
		}
		order, err := orderRepo.GetByIDForUpdate(item.OrderID)
		if err != nil {
			return ErrOrderFetchFailed
		}
		if order == nil || (userID != 0 && order.UserID != userID) {
			return ErrOrderItemNotFound
		}
		if !isItemCancellable(item.Status) {
			return ErrOrderItemStatusInvalid
		}

		lineTotal := item.LineTotal()
		breakdown := pricing.ProportionalRefund(lineTotal, order.TotalAmount.Decimal, order.Discount.Decimal)
		result.Refund = breakdown

		if _, err := s.variantRepo.WithTx(tx).RestoreStock(item.VariantID, item.Quantity); err != nil {
			return err
		}

		amounts := pricing.OrderAmounts{
			Subtotal: order.Subtotal.Decimal,
			Shipping: order.ShippingCost.Decimal,
			Discount: order.Discount.Decimal,
			Total:    order.TotalAmount.Decimal,
		}.RemoveLine(lineTotal)

		paymentStatus := constants.ItemPaymentStatusCancelled
		refunded := order.RefundedAmount.Decimal
		refundAmount := models.ZeroMoney()
		if item.PaymentStatus == constants.ItemPaymentStatusPaid {
			paymentStatus = constants.ItemPaymentStatusRefunded
			if breakdown.Refund.IsPositive() {
				orderID := order.ID
				txn, err := s.walletSvc.CreditInTx(tx, WalletCreditInput{
					UserID:      order.UserID,
					Amount:      breakdown.Refund,
					Prefix:      constants.WalletTxnPrefixCancelRefund,
					Description: fmt.Sprintf("订单 %s 取消退款", order.OrderNo),
					OrderID:     &orderID,
				})
				if err != nil {
					return err
				}
				result.Transaction = txn
				refundAmount = models.NewMoneyFromDecimal(breakdown.Refund)
				refunded = refunded.Add(breakdown.Refund)
			}
		}

		itemUpdates := map[string]interface{}{
			"status":               constants.OrderItemStatusCancelled,
			"payment_status":       paymentStatus,
			"cancel_reason":        reason,
			"cancel_reason_custom": custom,
			"refund_amount":        refundAmount,
			"cancelled_at":         now,
			"updated_at":           now,
		}
		if err := orderRepo.UpdateItem(item.ID, itemUpdates); err != nil {
			return ErrOrderUpdateFailed
		}
		if err := orderRepo.UpdateFields(order.ID, map[string]interface{}{
			"subtotal":        models.NewMoneyFromDecimal(amounts.Subtotal),
			"shipping_cost":   models.NewMoneyFromDecimal(amounts.Shipping),
			"discount":        models.NewMoneyFromDecimal(amounts.Discount),
			"total_amount":    models.NewMoneyFromDecimal(amounts.Total),
			"refunded_amount": models.NewMoneyFromDecimal(refunded),
			"updated_at":      now,
		}); err != nil {
			return ErrOrderUpdateFailed
		}

		paid, err := syncOrderPaidInTx(orderRepo, order, now)
		if err != nil {
			return ErrOrderUpdateFailed
		}
		becamePaid = paid

		item.Status = constants.OrderItemStatusCancelled
		item.PaymentStatus = paymentStatus
		item.CancelReason = reason
		item.CancelReasonCustom = custom
		item.RefundAmount = refundAmount
		item.CancelledAt = &now
		result.Item = item
		result.RefundAmount = refundAmount

		reloaded, err := orderRepo.GetByID(order.ID)
		if err != nil {
			return ErrOrderFetchFailed
		}
		result.Order = reloaded
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.ItemCancellations.WithLabelValues(actor).Inc()
	metrics.ObserveRefund("cancellation", result.RefundAmount.Decimal)
	logger.Infow("order_item_cancelled",
		"order_id", result.Order.ID,
		"order_item_id", result.Item.ID,
		"actor", actor,
		"reason", result.Item.CancelReason,
		"refund", result.RefundAmount.String(),
	)
	s.notifier.Notify(ctx, OrderEvent{
		Event:       constants.EventItemCancelled,
		UserID:      result.Order.UserID,
		OrderID:     result.Order.ID,
		OrderItemID: result.Item.ID,
		Amount:      result.RefundAmount.String(),
		Extra:       map[string]string{"actor": actor},
	})
	if becamePaid && s.paidHook != nil {
		s.paidHook.OnOrderPaid(ctx, result.Order.UserID)
	}
	return result, nil
}

// UpdateItemStatus 管理端推进订单项状态。
// 货到付款的订单项签收时视为已支付，全部有效订单项支付完成后订单标记为已支付。
func (s *OrderService) UpdateItemStatus(ctx context.Context, itemID uint, targetStatus string) (*models.OrderItem, error) {
	target := strings.TrimSpace(targetStatus)
	if target == "" {
		return nil, ErrOrderItemStatusInvalid
	}
	now := time.Now()
	var (
		updated    *models.OrderItem
		order      *models.Order
		becamePaid bool
	)
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		item, err := orderRepo.GetItemForUpdate(itemID)
		if err != nil {
			return ErrOrderFetchFailed
		}
		if item == nil {
			return ErrOrderItemNotFound
		}
		order, err = orderRepo.GetByIDForUpdate(item.OrderID)
		if err != nil {
			return ErrOrderFetchFailed
		}
		if order == nil {
			return ErrOrderNotFound
		}
		if item.Status == target {
			updated = item
			return nil
		}
		if !isItemTransitionAllowed(item.Status, target) {
			return ErrOrderItemStatusInvalid
		}
		// 网关与钱包订单需支付完成后才能发货
		if order.PaymentMethod != constants.PaymentMethodCOD && item.PaymentStatus != constants.ItemPaymentStatusPaid {
			return ErrOrderItemStatusInvalid
		}

		updates := map[string]interface{}{
			"status":     target,
			"updated_at": now,
		}
		if target == constants.OrderItemStatusDelivered {
			updates["delivered_at"] = now
			item.DeliveredAt = &now
			if order.PaymentMethod == constants.PaymentMethodCOD && item.PaymentStatus != constants.ItemPaymentStatusPaid {
				updates["payment_status"] = constants.ItemPaymentStatusPaid
				item.PaymentStatus = constants.ItemPaymentStatusPaid
			}
		}
		if err := orderRepo.UpdateItem(item.ID, updates); err != nil {
			return ErrOrderUpdateFailed
		}
		item.Status = target
		item.UpdatedAt = now
		updated = item

		if target == constants.OrderItemStatusDelivered {
			paid, err := syncOrderPaidInTx(orderRepo, order, now)
			if err != nil {
				return ErrOrderUpdateFailed
			}
			becamePaid = paid
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("order_item_status_updated", "order_id", updated.OrderID, "order_item_id", updated.ID, "status", updated.Status)
	s.notifier.Notify(ctx, OrderEvent{
		Event:       constants.EventItemStatus,
		UserID:      order.UserID,
		OrderID:     order.ID,
		OrderItemID: updated.ID,
		Extra:       map[string]string{"status": updated.Status},
	})
	if becamePaid {
		s.notifier.Notify(ctx, OrderEvent{Event: constants.EventOrderPaid, UserID: order.UserID, OrderID: order.ID, Amount: order.TotalAmount.String()})
		if s.paidHook != nil {
			s.paidHook.OnOrderPaid(ctx, order.UserID)
		}
	}
	return updated, nil
}

// GetOrderByUser 获取用户订单详情
func (s *OrderService) GetOrderByUser(orderID uint, userID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByIDAndUser(orderID, userID)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// GetOrderByUserOrderNo 按订单号获取用户订单详情
func (s *OrderService) GetOrderByUserOrderNo(orderNo string, userID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByOrderNo(orderNo)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil || order.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListOrdersByUser 获取用户订单列表
func (s *OrderService) ListOrdersByUser(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.ListByUser(filter)
}

// ListOrdersForAdmin 管理端订单列表
func (s *OrderService) ListOrdersForAdmin(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.ListAdmin(filter)
}

// GetOrderForAdmin 管理端订单详情
func (s *OrderService) GetOrderForAdmin(orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// GetItemForUser 获取用户订单项及其订单
func (s *OrderService) GetItemForUser(itemID, userID uint) (*models.Order, *models.OrderItem, error) {
	item, err := s.orderRepo.GetItem(itemID)
	if err != nil {
		return nil, nil, ErrOrderFetchFailed
	}
	if item == nil {
		return nil, nil, ErrOrderItemNotFound
	}
	order, err := s.orderRepo.GetByIDAndUser(item.OrderID, userID)
	if err != nil {
		return nil, nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, nil, ErrOrderItemNotFound
	}
	return order, item, nil
}

func normalizeCancelReason(reason, custom string) (string, string, error) {
	reason = strings.ToLower(strings.TrimSpace(reason))
	custom = strings.TrimSpace(custom)
	switch reason {
	case constants.CancelReasonChangedMind,
		constants.CancelReasonOrderedByMistake,
		constants.CancelReasonBetterPrice,
		constants.CancelReasonDeliveryDelay:
		return reason, "", nil
	case constants.CancelReasonCustom:
		if custom == "" {
			return "", "", ErrCancelReasonInvalid
		}
		if len([]rune(custom)) > 500 {
			custom = string([]rune(custom)[:500])
		}
		return reason, custom, nil
	default:
		return "", "", ErrCancelReasonInvalid
	}
}
