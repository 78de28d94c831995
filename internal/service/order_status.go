package service

import (
	"strings"
	"time"

	"github.com/dujiao-next/storefront/internal/constants"
	"github.com/dujiao-next/storefront/internal/models"
	"github.com/dujiao-next/storefront/internal/repository"
)

// allowedItemTransitions 管理端可推进的订单项状态
var allowedItemTransitions = map[string]map[string]bool{
	constants.OrderItemStatusPending: {
		constants.OrderItemStatusProcessing: true,
	},
	constants.OrderItemStatusProcessing: {
		constants.OrderItemStatusShipped: true,
	},
	constants.OrderItemStatusShipped: {
		constants.OrderItemStatusOnTheWay:  true,
		constants.OrderItemStatusDelivered: true,
	},
	constants.OrderItemStatusOnTheWay: {
		constants.OrderItemStatusDelivered: true,
	},
}

// nonCancellableItemStatuses 不可再取消的订单项状态
var nonCancellableItemStatuses = map[string]bool{
	constants.OrderItemStatusDelivered:       true,
	constants.OrderItemStatusCancelled:       true,
	constants.OrderItemStatusReturned:        true,
	constants.OrderItemStatusReturnRequested: true,
}

func isItemTransitionAllowed(current, target string) bool {
	nexts, ok := allowedItemTransitions[current]
	if !ok {
		return false
	}
	return nexts[target]
}

func isItemCancellable(status string) bool {
	return !nonCancellableItemStatuses[strings.TrimSpace(status)]
}

// isItemLive 订单项仍计入订单（未取消）
func isItemLive(item *models.OrderItem) bool {
	if item == nil {
		return false
	}
	return item.Status != constants.OrderItemStatusCancelled
}

func isItemSettled(item *models.OrderItem) bool {
	return item.PaymentStatus == constants.ItemPaymentStatusPaid || item.PaymentStatus == constants.ItemPaymentStatusRefunded
}

// syncOrderPaidInTx 所有未取消订单项均已支付时标记订单已支付，返回订单是否在本次变为已支付
func syncOrderPaidInTx(orderRepo *repository.GormOrderRepository, order *models.Order, now time.Time) (bool, error) {
	if order == nil || order.IsPaid {
		return false, nil
	}
	items, err := orderRepo.ListItems(order.ID)
	if err != nil {
		return false, err
	}
	live := 0
	for i := range items {
		if !isItemLive(&items[i]) {
			continue
		}
		live++
		if !isItemSettled(&items[i]) {
			return false, nil
		}
	}
	if live == 0 {
		return false, nil
	}
	if err := orderRepo.UpdateFields(order.ID, map[string]interface{}{
		"is_paid":    true,
		"paid_at":    now,
		"updated_at": now,
	}); err != nil {
		return false, err
	}
	order.IsPaid = true
	order.PaidAt = &now
	return true, nil
}
