package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/dujiao-next/storefront/internal/constants"
	"github.com/dujiao-next/storefront/internal/logger"
	"github.com/dujiao-next/storefront/internal/metrics"
	"github.com/dujiao-next/storefront/internal/models"
	"github.com/dujiao-next/storefront/internal/repository"

	"gorm.io/gorm"
)

// OrderPaidHook 订单支付确认后的回调（邀请奖励）
type OrderPaidHook interface {
	OnOrderPaid(ctx context.Context, userID uint)
}

// PlaceOrderInput 下单输入
type PlaceOrderInput struct {
	UserID          uint
	PaymentMethod   string
	ShippingName    string
	ShippingPhone   string
	ShippingAddress string
	ShippingPincode string
}

// PlaceOrderResult 下单结果
type PlaceOrderResult struct {
	Order   *models.Order         `json:"order"`
	Gateway *GatewayOrder         `json:"gateway,omitempty"`
	Payment *models.GatewayPayment `json:"-"`
}

// CheckoutService 下单服务
type CheckoutService struct {
	orderRepo   repository.OrderRepository
	variantRepo repository.ProductVariantRepository
	paymentRepo repository.PaymentRepository
	cartSvc     *CartService
	couponSvc   *CouponService
	walletSvc   *WalletService
	gateway     PaymentGateway
	notifier    Notifier
	paidHook    OrderPaidHook
	settings    PricingSettings
	currency    string
}

// CheckoutDeps 下单服务依赖
type CheckoutDeps struct {
	OrderRepo   repository.OrderRepository
	VariantRepo repository.ProductVariantRepository
	PaymentRepo repository.PaymentRepository
	CartSvc     *CartService
	CouponSvc   *CouponService
	WalletSvc   *WalletService
	Gateway     PaymentGateway
	Notifier    Notifier
	PaidHook    OrderPaidHook
	Settings    PricingSettings
	Currency    string
}

// NewCheckoutService 创建下单服务
func NewCheckoutService(deps CheckoutDeps) *CheckoutService {
	return &CheckoutService{
		orderRepo:   deps.OrderRepo,
		variantRepo: deps.VariantRepo,
		paymentRepo: deps.PaymentRepo,
		cartSvc:     deps.CartSvc,
		couponSvc:   deps.CouponSvc,
		walletSvc:   deps.WalletSvc,
		gateway:     deps.Gateway,
		notifier:    notifierOrNoop(deps.Notifier),
		paidHook:    deps.PaidHook,
		settings:    deps.Settings,
		currency:    normalizeWalletCurrency(deps.Currency),
	}
}

// SetPaidHook 设置支付确认回调
func (s *CheckoutService) SetPaidHook(hook OrderPaidHook) {
	s.paidHook = hook
}

// PlaceOrder 将购物车转换为订单。
// 校验、建单、扣库存、核销优惠券、钱包扣款与清空购物车在同一事务内完成；
// 网关支付在事务提交后创建网关订单，失败时保留未支付订单供重试。
func (s *CheckoutService) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*PlaceOrderResult, error) {
	if input.UserID == 0 {
		return nil, ErrUserNotFound
	}
	method := strings.ToLower(strings.TrimSpace(input.PaymentMethod))
	if !isValidPaymentMethod(method) {
		return nil, ErrPaymentMethodInvalid
	}
	if strings.TrimSpace(input.ShippingAddress) == "" || strings.TrimSpace(input.ShippingName) == "" {
		return nil, ErrShippingAddressInvalid
	}

	var order *models.Order
	now := time.Now()
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		view, err := s.cartSvc.LoadForCheckoutInTx(tx, input.UserID, now)
		if err != nil {
			return err
		}
		if view.CouponDetached {
			return ErrCouponInvalid
		}
		if len(view.Items) == 0 {
			return ErrCartEmpty
		}
		items := make([]models.OrderItem, 0, len(view.Items))
		for _, line := range view.Items {
			if !line.Available {
				return ErrVariantUnavailable
			}
			if line.Variant != nil && line.Quantity > line.Variant.Stock {
				return ErrStockInsufficient
			}
			items = append(items, models.OrderItem{
				ProductID:       line.ProductID,
				VariantID:       line.VariantID,
				ProductName:     line.ProductName,
				VariantName:     line.VariantName,
				Price:           line.SalePrice,
				OriginalPrice:   line.ActualPrice,
				OfferPercentage: line.OfferPercentage,
				OfferKind:       line.OfferKind,
				EffectivePrice:  line.EffectiveUnitPrice,
				Quantity:        line.Quantity,
				Status:          constants.OrderItemStatusPending,
				PaymentStatus:   constants.ItemPaymentStatusUnpaid,
			})
		}

		total := view.PayableAmount.Decimal
		if method == constants.PaymentMethodCOD && total.GreaterThan(s.settings.CODLimit) {
			return ErrCODLimitExceeded
		}

		order = &models.Order{
			OrderNo:         generateOrderNo(),
			UserID:          input.UserID,
			Subtotal:        view.SubtotalAfterOffers,
			Discount:        view.CouponDiscount,
			ShippingCost:    view.DeliveryCharge,
			TotalAmount:     view.PayableAmount,
			RefundedAmount:  models.ZeroMoney(),
			Currency:        s.currency,
			PaymentMethod:   method,
			ShippingName:    strings.TrimSpace(input.ShippingName),
			ShippingPhone:   strings.TrimSpace(input.ShippingPhone),
			ShippingAddress: strings.TrimSpace(input.ShippingAddress),
			ShippingPincode: strings.TrimSpace(input.ShippingPincode),
		}
		if view.Coupon != nil {
			couponID := view.Coupon.ID
			order.CouponID = &couponID
		}
		orderRepo := s.orderRepo.WithTx(tx)
		if err := orderRepo.Create(order, items); err != nil {
			return fmt.Errorf("%w: %v", ErrOrderCreateFailed, err)
		}

		variantRepo := s.variantRepo.WithTx(tx)
		for _, item := range items {
			affected, err := variantRepo.DecrementStock(item.VariantID, item.Quantity)
			if err != nil {
				return err
			}
			if affected == 0 {
				return ErrStockInsufficient
			}
		}

		if view.Coupon != nil {
			if err := s.couponSvc.CommitUsageInTx(tx, view.Coupon, input.UserID, order.ID, view.CouponDiscount.Decimal); err != nil {
				return err
			}
		}

		if method == constants.PaymentMethodWallet {
			orderID := order.ID
			if _, err := s.walletSvc.DebitInTx(tx, WalletDebitInput{
				UserID:      input.UserID,
				Amount:      total,
				Description: fmt.Sprintf("订单 %s 钱包支付", order.OrderNo),
				OrderID:     &orderID,
			}); err != nil {
				return err
			}
			if err := markOrderPaidInTx(orderRepo, order, now); err != nil {
				return err
			}
		}

		return s.cartSvc.ClearInTx(tx, view.Cart)
	})
	if err != nil {
		if !isBusinessError(err) {
			logger.Errorw("checkout_place_order_failed", "user_id", input.UserID, "payment_method", method, "error", err)
		}
		return nil, err
	}

	metrics.OrdersPlaced.WithLabelValues(method).Inc()
	logger.Infow("order_placed", "order_id", order.ID, "order_no", order.OrderNo, "user_id", order.UserID, "payment_method", method, "total", order.TotalAmount.String())
	s.notifier.Notify(ctx, OrderEvent{Event: constants.EventOrderPlaced, UserID: order.UserID, OrderID: order.ID, Amount: order.TotalAmount.String()})

	result := &PlaceOrderResult{Order: order}
	switch method {
	case constants.PaymentMethodWallet:
		s.afterOrderPaid(ctx, order)
	case constants.PaymentMethodGatewayRedirect, constants.PaymentMethodGatewayDirect:
		gatewayOrder, payment, err := s.createGatewayPayment(ctx, order)
		if err != nil {
			return result, err
		}
		result.Gateway = gatewayOrder
		result.Payment = payment
	}
	return result, nil
}

// RetryOrderPayment 为未支付的网关订单重新创建网关支付单
func (s *CheckoutService) RetryOrderPayment(ctx context.Context, userID, orderID uint) (*PlaceOrderResult, error) {
	order, err := s.orderRepo.GetByIDAndUser(orderID, userID)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.IsPaid {
		return nil, ErrOrderAlreadyPaid
	}
	if order.PaymentMethod != constants.PaymentMethodGatewayRedirect && order.PaymentMethod != constants.PaymentMethodGatewayDirect {
		return nil, ErrPaymentMethodInvalid
	}
	if !order.TotalAmount.Decimal.IsPositive() {
		return nil, ErrOrderItemStatusInvalid
	}
	if err := s.orderRepo.UpdateItemsByOrder(order.ID, constants.OrderItemStatusPaymentFailed, map[string]interface{}{
		"status":         constants.OrderItemStatusPending,
		"payment_status": constants.ItemPaymentStatusUnpaid,
		"updated_at":     time.Now(),
	}); err != nil {
		return nil, ErrOrderUpdateFailed
	}
	gatewayOrder, payment, err := s.createGatewayPayment(ctx, order)
	if err != nil {
		return nil, err
	}
	return &PlaceOrderResult{Order: order, Gateway: gatewayOrder, Payment: payment}, nil
}

func (s *CheckoutService) createGatewayPayment(ctx context.Context, order *models.Order) (*GatewayOrder, *models.GatewayPayment, error) {
	if s.gateway == nil {
		return nil, nil, ErrPaymentGatewayRequestFailed
	}
	gatewayOrder, err := s.gateway.CreateOrder(ctx, GatewayOrderRequest{
		Amount:   order.TotalAmount.Decimal,
		Currency: order.Currency,
		Receipt:  order.OrderNo,
		Notes:    map[string]string{"purpose": constants.GatewayPurposeOrder},
	})
	if err != nil {
		logger.Warnw("checkout_gateway_order_failed", "order_id", order.ID, "order_no", order.OrderNo, "error", err)
		return nil, nil, ErrPaymentGatewayRequestFailed
	}
	orderID := order.ID
	payment := &models.GatewayPayment{
		GatewayOrderID: gatewayOrder.ID,
		Purpose:        constants.GatewayPurposeOrder,
		UserID:         order.UserID,
		OrderID:        &orderID,
		Amount:         order.TotalAmount,
		Currency:       order.Currency,
		Status:         constants.GatewayPaymentStatusCreated,
	}
	if err := s.paymentRepo.Create(payment); err != nil {
		logger.Errorw("checkout_gateway_payment_save_failed", "order_id", order.ID, "gateway_order_id", gatewayOrder.ID, "error", err)
		return nil, nil, ErrPaymentGatewayRequestFailed
	}
	if err := s.orderRepo.UpdateFields(order.ID, map[string]interface{}{
		"gateway_order_id": gatewayOrder.ID,
		"updated_at":       time.Now(),
	}); err != nil {
		return nil, nil, ErrOrderUpdateFailed
	}
	order.GatewayOrderID = gatewayOrder.ID
	return gatewayOrder, payment, nil
}

func (s *CheckoutService) afterOrderPaid(ctx context.Context, order *models.Order) {
	s.notifier.Notify(ctx, OrderEvent{Event: constants.EventOrderPaid, UserID: order.UserID, OrderID: order.ID, Amount: order.TotalAmount.String()})
	if s.paidHook != nil {
		s.paidHook.OnOrderPaid(ctx, order.UserID)
	}
}

// markOrderPaidInTx 标记订单及其未支付的订单项为已支付
func markOrderPaidInTx(orderRepo *repository.GormOrderRepository, order *models.Order, now time.Time) error {
	if err := orderRepo.UpdateFields(order.ID, map[string]interface{}{
		"is_paid":    true,
		"paid_at":    now,
		"updated_at": now,
	}); err != nil {
		return ErrOrderUpdateFailed
	}
	for _, status := range []string{constants.ItemPaymentStatusUnpaid, constants.ItemPaymentStatusProcessing} {
		if err := orderRepo.UpdateItemPaymentByOrder(order.ID, status, constants.ItemPaymentStatusPaid); err != nil {
			return ErrOrderUpdateFailed
		}
	}
	order.IsPaid = true
	order.PaidAt = &now
	for i := range order.Items {
		if order.Items[i].PaymentStatus == constants.ItemPaymentStatusUnpaid || order.Items[i].PaymentStatus == constants.ItemPaymentStatusProcessing {
			order.Items[i].PaymentStatus = constants.ItemPaymentStatusPaid
		}
	}
	return nil
}

func isValidPaymentMethod(method string) bool {
	switch method {
	case constants.PaymentMethodCOD, constants.PaymentMethodWallet, constants.PaymentMethodGatewayRedirect, constants.PaymentMethodGatewayDirect:
		return true
	default:
		return false
	}
}

// isBusinessError 判断是否为可预期的业务错误（无需记录错误日志）
func isBusinessError(err error) bool {
	for _, target := range []error{
		ErrCartEmpty, ErrVariantUnavailable, ErrStockInsufficient, ErrCODLimitExceeded,
		ErrWalletInactive, ErrWalletInsufficientBalance, ErrCouponInvalid, ErrCouponUsageLimit,
		ErrPaymentMethodInvalid, ErrShippingAddressInvalid,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func generateOrderNo() string {
	now := time.Now().Format("20060102150405")
	randPart := randNumeric(6)
	return fmt.Sprintf("SO%s%s", now, randPart)
}

func randNumeric(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteString("0")
			continue
		}
		b.WriteString(fmt.Sprintf("%d", n.Int64()))
	}
	return b.String()
}
