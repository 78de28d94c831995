package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dujiao-next/storefront/internal/cache"
	"github.com/dujiao-next/storefront/internal/constants"
	"github.com/dujiao-next/storefront/internal/logger"
	"github.com/dujiao-next/storefront/internal/metrics"
	"github.com/dujiao-next/storefront/internal/models"
	"github.com/dujiao-next/storefront/internal/payment/gateway"
	"github.com/dujiao-next/storefront/internal/repository"

	"gorm.io/gorm"
)

// 回调处理结果
const (
	CallbackResultSuccess   = "success"
	CallbackResultFailed    = "failed"
	CallbackResultDuplicate = "duplicate"
	CallbackResultInvalid   = "invalid"
)

// PaymentCallbackInput 网关回调参数
type PaymentCallbackInput struct {
	gateway.CallbackData
	// 网关上报的失败状态，为空视为成功回调
	Status        string `json:"status" form:"status"`
	FailureReason string `json:"error_description" form:"error_description"`
}

// PaymentCallbackResult 回调处理结果
type PaymentCallbackResult struct {
	Result  string                 `json:"result"`
	Payment *models.GatewayPayment `json:"payment"`
}

// PaymentService 网关回调处理
type PaymentService struct {
	paymentRepo repository.PaymentRepository
	orderRepo   repository.OrderRepository
	walletSvc   *WalletService
	gateway     PaymentGateway
	notifier    Notifier
	paidHook    OrderPaidHook
	lockTTL     time.Duration
}

// NewPaymentService 创建支付服务
func NewPaymentService(paymentRepo repository.PaymentRepository, orderRepo repository.OrderRepository, walletSvc *WalletService, gw PaymentGateway, notifier Notifier, paidHook OrderPaidHook, lockSeconds int) *PaymentService {
	if lockSeconds <= 0 {
		lockSeconds = 30
	}
	return &PaymentService{
		paymentRepo: paymentRepo,
		orderRepo:   orderRepo,
		walletSvc:   walletSvc,
		gateway:     gw,
		notifier:    notifierOrNoop(notifier),
		paidHook:    paidHook,
		lockTTL:     time.Duration(lockSeconds) * time.Second,
	}
}

// SetPaidHook 设置支付确认回调
func (s *PaymentService) SetPaidHook(hook OrderPaidHook) {
	s.paidHook = hook
}

// HandleCallback 处理网关回调。
// 同一网关订单号的回调先取分布式锁再加行锁，已成功的支付单直接返回，不会重复入账。
// 签名不匹配或参数缺失时订单项标记为 Payment-Failed，支付单保持 created 等待验签通过的回调。
// 网关签名确认的失败会关闭支付单，之后仅订单支付单允许被验签成功的回调改写为成功。
func (s *PaymentService) HandleCallback(ctx context.Context, input PaymentCallbackInput) (*PaymentCallbackResult, error) {
	orderID := strings.TrimSpace(input.OrderID)
	if orderID == "" {
		metrics.GatewayCallbacks.WithLabelValues(CallbackResultInvalid).Inc()
		return nil, ErrPaymentCallbackInvalid
	}

	lock, ok, err := cache.AcquireLock(ctx, "payment:callback:"+orderID, s.lockTTL)
	if err != nil {
		logger.Warnw("payment_callback_lock_failed", "gateway_order_id", orderID, "error", err)
	} else if !ok {
		return nil, ErrPaymentCallbackBusy
	} else {
		defer func() {
			if err := lock.Release(context.Background()); err != nil {
				logger.Warnw("payment_callback_unlock_failed", "gateway_order_id", orderID, "error", err)
			}
		}()
	}

	verifyErr := s.verify(input)
	success := verifyErr == nil && !isFailedCallbackStatus(input.Status)
	failureReason := callbackFailureReason(input, verifyErr)

	now := time.Now()
	result := &PaymentCallbackResult{}
	var (
		order      *models.Order
		becamePaid bool
	)
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		paymentRepo := s.paymentRepo.WithTx(tx)
		payment, err := paymentRepo.GetByGatewayOrderIDForUpdate(orderID)
		if err != nil {
			return err
		}
		if payment == nil {
			return ErrPaymentNotFound
		}
		result.Payment = payment
		if isSettledPayment(payment, success) {
			result.Result = CallbackResultDuplicate
			return nil
		}

		// 未通过验签的回调只记录失败原因，支付单保持 created
		if verifyErr != nil {
			result.Result = CallbackResultFailed
			if err := paymentRepo.UpdateFields(payment.ID, map[string]interface{}{
				"failure_reason": failureReason,
				"updated_at":     now,
			}); err != nil {
				return err
			}
			payment.FailureReason = failureReason
			if payment.Purpose == constants.GatewayPurposeOrder {
				order, _, err = s.applyOrderCallback(tx, payment, false, now)
			}
			return err
		}

		updates := map[string]interface{}{
			"gateway_payment_id": strings.TrimSpace(input.PaymentID),
			"signature":          strings.TrimSpace(input.Signature),
			"callback_at":        now,
			"updated_at":         now,
		}
		if success {
			updates["status"] = constants.GatewayPaymentStatusSuccess
			updates["failure_reason"] = ""
			result.Result = CallbackResultSuccess
		} else {
			updates["status"] = constants.GatewayPaymentStatusFailed
			updates["failure_reason"] = failureReason
			result.Result = CallbackResultFailed
		}
		if err := paymentRepo.UpdateFields(payment.ID, updates); err != nil {
			return err
		}
		payment.Status = updates["status"].(string)
		payment.GatewayPaymentID = strings.TrimSpace(input.PaymentID)
		payment.CallbackAt = &now

		switch payment.Purpose {
		case constants.GatewayPurposeOrder:
			order, becamePaid, err = s.applyOrderCallback(tx, payment, success, now)
			return err
		case constants.GatewayPurposeWalletTopup:
			if payment.WalletTransactionID == nil {
				return ErrWalletTopupNotFound
			}
			if success {
				_, err = s.walletSvc.CompleteTopupInTx(tx, *payment.WalletTransactionID)
			} else {
				_, err = s.walletSvc.FailTopupInTx(tx, *payment.WalletTransactionID)
			}
			return err
		default:
			return ErrPaymentCallbackInvalid
		}
	})
	if err != nil {
		if !errors.Is(err, ErrPaymentNotFound) {
			logger.Errorw("payment_callback_failed", "gateway_order_id", orderID, "error", err)
		}
		metrics.GatewayCallbacks.WithLabelValues(CallbackResultInvalid).Inc()
		return nil, err
	}

	metrics.GatewayCallbacks.WithLabelValues(result.Result).Inc()
	logger.Infow("payment_callback_handled",
		"gateway_order_id", orderID,
		"purpose", result.Payment.Purpose,
		"result", result.Result,
	)
	s.afterCallback(ctx, result, order, becamePaid, failureReason)
	if verifyErr != nil && result.Result == CallbackResultFailed {
		return result, ErrPaymentSignatureInvalid
	}
	return result, nil
}

func (s *PaymentService) verify(input PaymentCallbackInput) error {
	if s.gateway == nil {
		return ErrPaymentSignatureInvalid
	}
	if strings.TrimSpace(input.PaymentID) == "" || strings.TrimSpace(input.Signature) == "" {
		return ErrPaymentSignatureInvalid
	}
	if err := s.gateway.VerifyCallback(input.CallbackData); err != nil {
		return ErrPaymentSignatureInvalid
	}
	return nil
}

func (s *PaymentService) applyOrderCallback(tx *gorm.DB, payment *models.GatewayPayment, success bool, now time.Time) (*models.Order, bool, error) {
	if payment.OrderID == nil {
		return nil, false, ErrOrderNotFound
	}
	orderRepo := s.orderRepo.WithTx(tx)
	order, err := orderRepo.GetByIDForUpdate(*payment.OrderID)
	if err != nil {
		return nil, false, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, false, ErrOrderNotFound
	}
	if order.IsPaid {
		return order, false, nil
	}
	if !success {
		if err := orderRepo.UpdateItemsByOrder(order.ID, constants.OrderItemStatusPending, map[string]interface{}{
			"status":     constants.OrderItemStatusPaymentFailed,
			"updated_at": now,
		}); err != nil {
			return nil, false, ErrOrderUpdateFailed
		}
		return order, false, nil
	}
	if err := orderRepo.UpdateItemsByOrder(order.ID, constants.OrderItemStatusPaymentFailed, map[string]interface{}{
		"status":     constants.OrderItemStatusPending,
		"updated_at": now,
	}); err != nil {
		return nil, false, ErrOrderUpdateFailed
	}
	if err := markOrderPaidInTx(orderRepo, order, now); err != nil {
		return nil, false, err
	}
	return order, true, nil
}

func (s *PaymentService) afterCallback(ctx context.Context, result *PaymentCallbackResult, order *models.Order, becamePaid bool, failureReason string) {
	payment := result.Payment
	switch {
	case result.Result == CallbackResultDuplicate:
		return
	case payment.Purpose == constants.GatewayPurposeWalletTopup:
		if result.Result == CallbackResultSuccess {
			s.notifier.Notify(ctx, OrderEvent{Event: constants.EventWalletTopup, UserID: payment.UserID, Amount: payment.Amount.String()})
		}
	case order != nil && becamePaid:
		s.notifier.Notify(ctx, OrderEvent{Event: constants.EventOrderPaid, UserID: order.UserID, OrderID: order.ID, Amount: order.TotalAmount.String()})
		if s.paidHook != nil {
			s.paidHook.OnOrderPaid(ctx, order.UserID)
		}
	case order != nil && result.Result == CallbackResultFailed:
		s.notifier.Notify(ctx, OrderEvent{
			Event:   constants.EventPaymentFailed,
			UserID:  order.UserID,
			OrderID: order.ID,
			Amount:  order.TotalAmount.String(),
			Extra:   map[string]string{"reason": failureReason},
		})
	}
}

// ListOrderPayments 订单的网关支付记录
func (s *PaymentService) ListOrderPayments(orderID uint) ([]models.GatewayPayment, error) {
	return s.paymentRepo.ListByOrderID(orderID)
}

// isSettledPayment 判断回调是否命中已结清的支付单
func isSettledPayment(payment *models.GatewayPayment, verifiedSuccess bool) bool {
	switch payment.Status {
	case constants.GatewayPaymentStatusCreated:
		return false
	case constants.GatewayPaymentStatusFailed:
		return !(verifiedSuccess && payment.Purpose == constants.GatewayPurposeOrder)
	default:
		return true
	}
}

func isFailedCallbackStatus(status string) bool {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "failed", "failure", "error", "cancelled":
		return true
	default:
		return false
	}
}

func callbackFailureReason(input PaymentCallbackInput, verifyErr error) string {
	if verifyErr != nil {
		return "signature verification failed"
	}
	reason := strings.TrimSpace(input.FailureReason)
	if reason == "" && isFailedCallbackStatus(input.Status) {
		reason = "gateway reported failure"
	}
	if len(reason) > 255 {
		reason = reason[:255]
	}
	return reason
}
