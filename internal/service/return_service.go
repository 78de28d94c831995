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

// ReturnService 退货申请服务
type ReturnService struct {
	returnRepo  repository.ReturnRepository
	orderRepo   repository.OrderRepository
	variantRepo repository.ProductVariantRepository
	walletSvc   *WalletService
	notifier    Notifier
}

// NewReturnService 创建退货服务
func NewReturnService(returnRepo repository.ReturnRepository, orderRepo repository.OrderRepository, variantRepo repository.ProductVariantRepository, walletSvc *WalletService, notifier Notifier) *ReturnService {
	return &ReturnService{
		returnRepo:  returnRepo,
		orderRepo:   orderRepo,
		variantRepo: variantRepo,
		walletSvc:   walletSvc,
		notifier:    notifierOrNoop(notifier),
	}
}

// RequestReturn 用户对已签收的订单项发起退货
func (s *ReturnService) RequestReturn(ctx context.Context, userID, itemID uint, reason string) (*models.ReturnRequest, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrReturnReasonRequired
	}
	now := time.Now()
	var req *models.ReturnRequest
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		returnRepo := s.returnRepo.WithTx(tx)
		item, err := orderRepo.GetItemForUpdate(itemID)
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
		if order == nil || order.UserID != userID {
			return ErrOrderItemNotFound
		}
		if item.Status != constants.OrderItemStatusDelivered {
			return ErrReturnNotAllowed
		}
		pending, err := returnRepo.GetPendingByItem(item.ID)
		if err != nil {
			return err
		}
		if pending != nil {
			return ErrReturnNotAllowed
		}
		req = &models.ReturnRequest{
			OrderID:      order.ID,
			OrderItemID:  item.ID,
			UserID:       userID,
			Reason:       reason,
			Status:       constants.ReturnStatusPending,
			RefundAmount: models.ZeroMoney(),
		}
		if err := returnRepo.Create(req); err != nil {
			return err
		}
		return orderRepo.UpdateItem(item.ID, map[string]interface{}{
			"status":     constants.OrderItemStatusReturnRequested,
			"updated_at": now,
		})
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("return_requested", "return_id", req.ID, "order_id", req.OrderID, "order_item_id", req.OrderItemID, "user_id", userID)
	s.notifier.Notify(ctx, OrderEvent{
		Event:       constants.EventReturnRequested,
		UserID:      userID,
		OrderID:     req.OrderID,
		OrderItemID: req.OrderItemID,
	})
	return req, nil
}

// ReturnDecisionInput 审核输入
type ReturnDecisionInput struct {
	ReturnID  uint
	AdminID   uint
	AdminNote string
}

// Approve 审核通过：按优惠券占比计算退款并退回钱包，回补库存。
// 订单金额不因退货而减少，退款累计到 refunded_amount。
func (s *ReturnService) Approve(ctx context.Context, input ReturnDecisionInput) (*models.ReturnRequest, error) {
	now := time.Now()
	var (
		req   *models.ReturnRequest
		order *models.Order
	)
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		var item *models.OrderItem
		var err error
		req, order, item, err = s.lockPending(tx, input.ReturnID)
		if err != nil {
			return err
		}
		// 未收款的订单项不能走退款
		if item.PaymentStatus != constants.ItemPaymentStatusPaid {
			return ErrReturnItemUnpaid
		}
		breakdown := pricing.ProportionalRefund(item.LineTotal(), order.TotalAmount.Decimal, order.Discount.Decimal)
		refund := breakdown.Refund
		// 退款不超过该订单项尚未退还的金额
		if remaining := item.LineTotal().Sub(item.RefundAmount.Decimal); refund.GreaterThan(remaining) {
			refund = remaining
		}

		if refund.IsPositive() {
			orderID := order.ID
			if _, err := s.walletSvc.CreditInTx(tx, WalletCreditInput{
				UserID:      order.UserID,
				Amount:      refund,
				Prefix:      constants.WalletTxnPrefixReturnRefund,
				Description: fmt.Sprintf("订单 %s 退货退款", order.OrderNo),
				OrderID:     &orderID,
			}); err != nil {
				return err
			}
		}
		if _, err := s.variantRepo.WithTx(tx).RestoreStock(item.VariantID, item.Quantity); err != nil {
			return err
		}

		orderRepo := s.orderRepo.WithTx(tx)
		refundMoney := models.NewMoneyFromDecimal(refund)
		if err := orderRepo.UpdateItem(item.ID, map[string]interface{}{
			"status":         constants.OrderItemStatusReturned,
			"payment_status": constants.ItemPaymentStatusRefunded,
			"refund_amount":  models.NewMoneyFromDecimal(item.RefundAmount.Decimal.Add(refund)),
			"updated_at":     now,
		}); err != nil {
			return ErrOrderUpdateFailed
		}
		if err := orderRepo.UpdateFields(order.ID, map[string]interface{}{
			"refunded_amount": models.NewMoneyFromDecimal(order.RefundedAmount.Decimal.Add(refund)),
			"updated_at":      now,
		}); err != nil {
			return ErrOrderUpdateFailed
		}
		adminID := input.AdminID
		if err := s.returnRepo.WithTx(tx).UpdateFields(req.ID, map[string]interface{}{
			"status":        constants.ReturnStatusApproved,
			"refund_amount": refundMoney,
			"admin_note":    strings.TrimSpace(input.AdminNote),
			"processed_by":  adminID,
			"processed_at":  now,
			"updated_at":    now,
		}); err != nil {
			return err
		}
		req.Status = constants.ReturnStatusApproved
		req.RefundAmount = refundMoney
		req.AdminNote = strings.TrimSpace(input.AdminNote)
		req.ProcessedBy = &adminID
		req.ProcessedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.ReturnsDecided.WithLabelValues(constants.ReturnStatusApproved).Inc()
	metrics.ObserveRefund("return", req.RefundAmount.Decimal)
	logger.Infow("return_approved", "return_id", req.ID, "order_id", req.OrderID, "refund", req.RefundAmount.String(), "admin_id", input.AdminID)
	s.notifier.Notify(ctx, OrderEvent{
		Event:       constants.EventReturnApproved,
		UserID:      order.UserID,
		OrderID:     order.ID,
		OrderItemID: req.OrderItemID,
		Amount:      req.RefundAmount.String(),
	})
	return req, nil
}

// Reject 审核拒绝：订单项恢复为已签收，无资金变动
func (s *ReturnService) Reject(ctx context.Context, input ReturnDecisionInput) (*models.ReturnRequest, error) {
	now := time.Now()
	var req *models.ReturnRequest
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		var (
			item *models.OrderItem
			err  error
		)
		req, _, item, err = s.lockPending(tx, input.ReturnID)
		if err != nil {
			return err
		}
		if err := s.orderRepo.WithTx(tx).UpdateItem(item.ID, map[string]interface{}{
			"status":     constants.OrderItemStatusDelivered,
			"updated_at": now,
		}); err != nil {
			return ErrOrderUpdateFailed
		}
		adminID := input.AdminID
		if err := s.returnRepo.WithTx(tx).UpdateFields(req.ID, map[string]interface{}{
			"status":       constants.ReturnStatusRejected,
			"admin_note":   strings.TrimSpace(input.AdminNote),
			"processed_by": adminID,
			"processed_at": now,
			"updated_at":   now,
		}); err != nil {
			return err
		}
		req.Status = constants.ReturnStatusRejected
		req.AdminNote = strings.TrimSpace(input.AdminNote)
		req.ProcessedBy = &adminID
		req.ProcessedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.ReturnsDecided.WithLabelValues(constants.ReturnStatusRejected).Inc()
	logger.Infow("return_rejected", "return_id", req.ID, "order_id", req.OrderID, "admin_id", input.AdminID)
	s.notifier.Notify(ctx, OrderEvent{
		Event:       constants.EventReturnRejected,
		UserID:      req.UserID,
		OrderID:     req.OrderID,
		OrderItemID: req.OrderItemID,
	})
	return req, nil
}

// List 退货申请列表
func (s *ReturnService) List(filter repository.ReturnListFilter) ([]models.ReturnRequest, int64, error) {
	return s.returnRepo.List(filter)
}

// Get 退货申请详情
func (s *ReturnService) Get(id uint) (*models.ReturnRequest, error) {
	req, err := s.returnRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrReturnNotFound
	}
	return req, nil
}

func (s *ReturnService) lockPending(tx *gorm.DB, returnID uint) (*models.ReturnRequest, *models.Order, *models.OrderItem, error) {
	req, err := s.returnRepo.WithTx(tx).GetByIDForUpdate(returnID)
	if err != nil {
		return nil, nil, nil, err
	}
	if req == nil {
		return nil, nil, nil, ErrReturnNotFound
	}
	if req.Status != constants.ReturnStatusPending {
		return nil, nil, nil, ErrReturnRequestProcessed
	}
	orderRepo := s.orderRepo.WithTx(tx)
	item, err := orderRepo.GetItemForUpdate(req.OrderItemID)
	if err != nil {
		return nil, nil, nil, ErrOrderFetchFailed
	}
	if item == nil {
		return nil, nil, nil, ErrOrderItemNotFound
	}
	if item.Status != constants.OrderItemStatusReturnRequested {
		return nil, nil, nil, ErrOrderItemStatusInvalid
	}
	order, err := orderRepo.GetByIDForUpdate(req.OrderID)
	if err != nil {
		return nil, nil, nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, nil, nil, ErrOrderNotFound
	}
	return req, order, item, nil
}
