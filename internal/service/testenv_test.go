package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dujiao-next/storefront/internal/config"
	"github.com/dujiao-next/storefront/internal/constants"
	"github.com/dujiao-next/storefront/internal/models"
	"github.com/dujiao-next/storefront/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const testGatewaySecret = "test_gateway_secret"

// recordingNotifier 记录投递的事件
type recordingNotifier struct {
	mu     sync.Mutex
	events []OrderEvent
}

func (n *recordingNotifier) Notify(_ context.Context, event OrderEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) has(event string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, e := range n.events {
		if e.Event == event {
			return true
		}
	}
	return false
}

// recordingPaidHook 记录支付确认回调
type recordingPaidHook struct {
	mu    sync.Mutex
	users []uint
}

func (h *recordingPaidHook) OnOrderPaid(_ context.Context, userID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.users = append(h.users, userID)
}

func (h *recordingPaidHook) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.users)
}

type serviceTestEnv struct {
	db       *gorm.DB
	notifier *recordingNotifier
	paidHook *recordingPaidHook

	orderRepo    *repository.GormOrderRepository
	variantRepo  *repository.GormProductVariantRepository
	paymentRepo  *repository.GormPaymentRepository
	walletRepo   *repository.GormWalletRepository
	referralRepo *repository.GormReferralRepository

	offerSvc    *OfferService
	couponSvc   *CouponService
	cartSvc     *CartService
	walletSvc   *WalletService
	checkoutSvc *CheckoutService
	orderSvc    *OrderService
	returnSvc   *ReturnService
	referralSvc *ReferralService
	paymentSvc  *PaymentService
}

func newServiceTestEnv(t *testing.T) *serviceTestEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	env := &serviceTestEnv{
		db:           db,
		notifier:     &recordingNotifier{},
		paidHook:     &recordingPaidHook{},
		orderRepo:    repository.NewOrderRepository(db),
		variantRepo:  repository.NewProductVariantRepository(db),
		paymentRepo:  repository.NewPaymentRepository(db),
		walletRepo:   repository.NewWalletRepository(db),
		referralRepo: repository.NewReferralRepository(db),
	}
	gw := NewSignedGateway(config.GatewayConfig{KeyID: "key_test", KeySecret: testGatewaySecret, Currency: "INR"})
	settings := DefaultPricingSettings()

	env.offerSvc = NewOfferService(repository.NewPromotionRepository(db))
	env.couponSvc = NewCouponService(repository.NewCouponRepository(db), repository.NewCouponUsageRepository(db))
	env.cartSvc = NewCartService(repository.NewCartRepository(db), env.variantRepo, env.offerSvc, env.couponSvc, settings)
	env.walletSvc = NewWalletService(env.walletRepo, env.paymentRepo, gw, NewWalletSettings(config.WalletConfig{}))
	env.checkoutSvc = NewCheckoutService(CheckoutDeps{
		OrderRepo:   env.orderRepo,
		VariantRepo: env.variantRepo,
		PaymentRepo: env.paymentRepo,
		CartSvc:     env.cartSvc,
		CouponSvc:   env.couponSvc,
		WalletSvc:   env.walletSvc,
		Gateway:     gw,
		Notifier:    env.notifier,
		PaidHook:    env.paidHook,
		Settings:    settings,
		Currency:    "INR",
	})
	env.orderSvc = NewOrderService(env.orderRepo, env.variantRepo, env.walletSvc, env.notifier, env.paidHook)
	env.returnSvc = NewReturnService(repository.NewReturnRepository(db), env.orderRepo, env.variantRepo, env.walletSvc, env.notifier)
	env.referralSvc = NewReferralService(env.referralRepo, env.orderRepo, env.walletSvc, nil, env.notifier, true)
	env.paymentSvc = NewPaymentService(env.paymentRepo, env.orderRepo, env.walletSvc, gw, env.notifier, env.paidHook, 10)
	return env
}

func money(v string) models.Money {
	return models.NewMoneyFromDecimal(decimal.RequireFromString(v))
}

func (e *serviceTestEnv) createUser(t *testing.T, email string) *models.User {
	t.Helper()
	user := &models.User{Email: email, Name: "tester", PasswordHash: "hash", Status: constants.UserStatusActive}
	if err := e.db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

// createVariant 创建分类、商品与规格
func (e *serviceTestEnv) createVariant(t *testing.T, slug, sale, actual string, stock int) *models.ProductVariant {
	t.Helper()
	category := &models.Category{Name: "Category " + slug, Slug: slug + "-cat", IsActive: true}
	if err := e.db.Create(category).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	product := &models.Product{CategoryID: category.ID, Name: "Product " + slug, Slug: slug, IsActive: true}
	if err := e.db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	variant := &models.ProductVariant{
		ProductID:   product.ID,
		Name:        "Default",
		SalePrice:   money(sale),
		ActualPrice: money(actual),
		Stock:       stock,
		IsActive:    true,
	}
	if err := e.db.Create(variant).Error; err != nil {
		t.Fatalf("create variant failed: %v", err)
	}
	variant.Product = product
	return variant
}

func (e *serviceTestEnv) createProductOffer(t *testing.T, productID uint, pct string) *models.PromotionalOffer {
	t.Helper()
	now := time.Now()
	offer := &models.PromotionalOffer{
		Name:               "offer",
		Scope:              constants.OfferScopeProduct,
		ProductID:          &productID,
		DiscountPercentage: money(pct),
		ValidFrom:          now.Add(-time.Hour),
		ValidUntil:         now.Add(24 * time.Hour),
		IsActive:           true,
	}
	if err := e.db.Create(offer).Error; err != nil {
		t.Fatalf("create offer failed: %v", err)
	}
	return offer
}

func (e *serviceTestEnv) createCoupon(t *testing.T, code, discountType, value, minCart string) *models.Coupon {
	t.Helper()
	coupon := &models.Coupon{
		Code:          code,
		DiscountType:  discountType,
		DiscountValue: money(value),
		MinCartValue:  money(minCart),
		PerUserLimit:  1,
		IsActive:      true,
	}
	if err := e.db.Create(coupon).Error; err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}
	return coupon
}

func (e *serviceTestEnv) fundWallet(t *testing.T, userID uint, amount string) {
	t.Helper()
	if err := e.db.Transaction(func(tx *gorm.DB) error {
		_, err := e.walletSvc.CreditInTx(tx, WalletCreditInput{
			UserID:      userID,
			Amount:      decimal.RequireFromString(amount),
			Prefix:      constants.WalletTxnPrefixPayment,
			Description: "test funding",
		})
		return err
	}); err != nil {
		t.Fatalf("fund wallet failed: %v", err)
	}
}

func (e *serviceTestEnv) walletBalance(t *testing.T, userID uint) decimal.Decimal {
	t.Helper()
	wallet, err := e.walletSvc.GetWallet(userID)
	if err != nil {
		t.Fatalf("get wallet failed: %v", err)
	}
	return wallet.Balance.Decimal
}

func (e *serviceTestEnv) reloadOrder(t *testing.T, orderID uint) *models.Order {
	t.Helper()
	order, err := e.orderRepo.GetByID(orderID)
	if err != nil || order == nil {
		t.Fatalf("reload order failed: %v", err)
	}
	return order
}

func (e *serviceTestEnv) reloadVariant(t *testing.T, variantID uint) *models.ProductVariant {
	t.Helper()
	variant, err := e.variantRepo.GetByID(variantID)
	if err != nil || variant == nil {
		t.Fatalf("reload variant failed: %v", err)
	}
	return variant
}

// placeWalletOrder 加购并以钱包支付下单
func (e *serviceTestEnv) placeWalletOrder(t *testing.T, userID uint, variantID uint, qty int) *models.Order {
	t.Helper()
	if _, err := e.cartSvc.AddItem(userID, variantID, qty); err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	result, err := e.checkoutSvc.PlaceOrder(context.Background(), PlaceOrderInput{
		UserID:          userID,
		PaymentMethod:   constants.PaymentMethodWallet,
		ShippingName:    "Tester",
		ShippingAddress: "1 Test Street",
	})
	if err != nil {
		t.Fatalf("place wallet order failed: %v", err)
	}
	return result.Order
}

func assertMoney(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Fatalf("unexpected %s: want %s got %s", field, want, got.StringFixed(2))
	}
}

type fixtureLine struct {
	variant       *models.ProductVariant
	effective     string
	quantity      int
	status        string
	paymentStatus string
}

type fixtureAmounts struct {
	subtotal string
	shipping string
	discount string
	total    string
}

// createOrderFixture 直接写入订单快照，用于取消、退货与状态流转测试
func (e *serviceTestEnv) createOrderFixture(t *testing.T, userID uint, method string, paid bool, amounts fixtureAmounts, lines ...fixtureLine) *models.Order {
	t.Helper()
	order := &models.Order{
		OrderNo:         fmt.Sprintf("SOTEST%d", time.Now().UnixNano()),
		UserID:          userID,
		Subtotal:        money(amounts.subtotal),
		ShippingCost:    money(amounts.shipping),
		Discount:        money(amounts.discount),
		TotalAmount:     money(amounts.total),
		RefundedAmount:  models.ZeroMoney(),
		Currency:        "INR",
		PaymentMethod:   method,
		ShippingName:    "Tester",
		ShippingAddress: "1 Test Street",
	}
	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, models.OrderItem{
			ProductID:      line.variant.ProductID,
			VariantID:      line.variant.ID,
			ProductName:    "Product",
			VariantName:    line.variant.Name,
			Price:          money(line.effective),
			OriginalPrice:  money(line.effective),
			OfferKind:      "none",
			EffectivePrice: money(line.effective),
			Quantity:       line.quantity,
			Status:         line.status,
			PaymentStatus:  line.paymentStatus,
		})
	}
	if err := e.orderRepo.Create(order, items); err != nil {
		t.Fatalf("create order fixture failed: %v", err)
	}
	if paid {
		now := time.Now()
		if err := e.orderRepo.UpdateFields(order.ID, map[string]interface{}{"is_paid": true, "paid_at": now}); err != nil {
			t.Fatalf("mark fixture paid failed: %v", err)
		}
	}
	return e.reloadOrder(t, order.ID)
}
