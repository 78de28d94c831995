package service

import (
	"time"

	"github.com/dujiao-next/storefront/internal/config"
	"github.com/dujiao-next/storefront/internal/logger"
	"github.com/dujiao-next/storefront/internal/models"
	"github.com/dujiao-next/storefront/internal/pricing"
	"github.com/dujiao-next/storefront/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PricingSettings 计价配置
type PricingSettings struct {
	Shipping           pricing.ShippingPolicy
	CODLimit           decimal.Decimal
	MaxQuantityPerItem int
}

// NewPricingSettings 从配置构建计价设置
func NewPricingSettings(cfg config.PricingConfig) PricingSettings {
	policy := pricing.DefaultShippingPolicy()
	policy.FreeThreshold = parseDecimalOr(cfg.FreeShippingThreshold, policy.FreeThreshold)
	policy.FlatFee = parseDecimalOr(cfg.DeliveryFee, policy.FlatFee)
	maxQty := cfg.MaxQuantityPerItem
	if maxQty <= 0 {
		maxQty = 5
	}
	return PricingSettings{
		Shipping:           policy,
		CODLimit:           parseDecimalOr(cfg.CODLimit, decimal.NewFromInt(10000)),
		MaxQuantityPerItem: maxQty,
	}
}

// DefaultPricingSettings 默认计价设置
func DefaultPricingSettings() PricingSettings {
	return NewPricingSettings(config.PricingConfig{})
}

// CartLineView 购物车行详情
type CartLineView struct {
	ItemID             uint                   `json:"id"`
	VariantID          uint                   `json:"variant_id"`
	ProductID          uint                   `json:"product_id"`
	ProductName        string                 `json:"product_name"`
	VariantName        string                 `json:"variant_name"`
	Quantity           int                    `json:"quantity"`
	ActualPrice        models.Money           `json:"actual_price"`
	SalePrice          models.Money           `json:"sale_price"`
	OfferPercentage    models.Money           `json:"offer_percentage"`
	OfferKind          string                 `json:"offer_kind"`
	EffectiveUnitPrice models.Money           `json:"effective_unit_price"`
	LineTotal          models.Money           `json:"line_total"`
	Available          bool                   `json:"available"`
	Variant            *models.ProductVariant `json:"-"`
	Offer              pricing.Offer          `json:"-"`
}

// CartView 重算后的购物车
type CartView struct {
	CartID              uint           `json:"cart_id"`
	Items               []CartLineView `json:"items"`
	CouponCode          string         `json:"coupon_code,omitempty"`
	TotalActualPrice    models.Money   `json:"total_actual_price"`
	TotalSalePrice      models.Money   `json:"total_sale_price"`
	TotalNormalDiscount models.Money   `json:"total_normal_discount"`
	TotalOfferDiscount  models.Money   `json:"total_offer_discount"`
	SubtotalAfterOffers models.Money   `json:"subtotal_after_offers"`
	DeliveryCharge      models.Money   `json:"delivery_charge"`
	GrandTotal          models.Money   `json:"grand_total"`
	CouponDiscount      models.Money   `json:"coupon_discount"`
	PayableAmount       models.Money   `json:"payable_amount"`
	CouponDetached      bool           `json:"coupon_detached"`
	DetachReason        string         `json:"detach_reason,omitempty"`

	Totals pricing.CartTotals `json:"-"`
	Coupon *models.Coupon     `json:"-"`
	Cart   *models.Cart       `json:"-"`
}

// CartService 购物车服务，每次变更与读取都会重算并保存合计
type CartService struct {
	cartRepo    repository.CartRepository
	variantRepo repository.ProductVariantRepository
	offerSvc    *OfferService
	couponSvc   *CouponService
	settings    PricingSettings
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo repository.CartRepository, variantRepo repository.ProductVariantRepository, offerSvc *OfferService, couponSvc *CouponService, settings PricingSettings) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		variantRepo: variantRepo,
		offerSvc:    offerSvc,
		couponSvc:   couponSvc,
		settings:    settings,
	}
}

// GetCart 获取购物车
func (s *CartService) GetCart(userID uint) (*CartView, error) {
	return s.mutate(userID, nil)
}

// AddItem 加入购物车，已存在时累加数量
func (s *CartService) AddItem(userID, variantID uint, quantity int) (*CartView, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	return s.mutate(userID, func(tx *gorm.DB, repo *repository.GormCartRepository, cart *models.Cart) error {
		variant, err := s.loadPurchasableVariant(tx, variantID)
		if err != nil {
			return err
		}
		existing, err := repo.GetItem(cart.ID, variantID)
		if err != nil {
			return err
		}
		total := quantity
		if existing != nil {
			total += existing.Quantity
		}
		if err := s.checkQuantity(variant, total); err != nil {
			return err
		}
		return repo.UpsertItem(&models.CartItem{
			CartID:    cart.ID,
			VariantID: variantID,
			Quantity:  total,
			UpdatedAt: time.Now(),
		})
	})
}

// UpdateQuantity 修改数量，数量为 0 时移除该项
func (s *CartService) UpdateQuantity(userID, variantID uint, quantity int) (*CartView, error) {
	if quantity < 0 {
		return nil, ErrInvalidQuantity
	}
	if quantity == 0 {
		return s.RemoveItem(userID, variantID)
	}
	return s.mutate(userID, func(tx *gorm.DB, repo *repository.GormCartRepository, cart *models.Cart) error {
		existing, err := repo.GetItem(cart.ID, variantID)
		if err != nil {
			return err
		}
		if existing == nil {
			return ErrCartItemNotFound
		}
		variant, err := s.loadPurchasableVariant(tx, variantID)
		if err != nil {
			return err
		}
		if err := s.checkQuantity(variant, quantity); err != nil {
			return err
		}
		existing.Quantity = quantity
		existing.UpdatedAt = time.Now()
		return repo.UpsertItem(existing)
	})
}

// RemoveItem 移除购物车项
func (s *CartService) RemoveItem(userID, variantID uint) (*CartView, error) {
	return s.mutate(userID, func(_ *gorm.DB, repo *repository.GormCartRepository, cart *models.Cart) error {
		existing, err := repo.GetItem(cart.ID, variantID)
		if err != nil {
			return err
		}
		if existing == nil {
			return ErrCartItemNotFound
		}
		return repo.DeleteItem(cart.ID, variantID)
	})
}

// ApplyCoupon 应用优惠券，校验失败时返回具体原因且不修改购物车
func (s *CartService) ApplyCoupon(userID uint, code string) (*CartView, error) {
	return s.mutate(userID, func(tx *gorm.DB, repo *repository.GormCartRepository, cart *models.Cart) error {
		view, err := s.recompute(tx, cart, userID, time.Now())
		if err != nil {
			return err
		}
		if len(view.Items) == 0 {
			return ErrCartEmpty
		}
		coupon, err := s.couponSvc.WithTx(tx).ValidateCode(code, userID, view.Totals, time.Now())
		if err != nil {
			return err
		}
		cart.CouponID = &coupon.ID
		cart.Coupon = coupon
		return nil
	})
}

// RemoveCoupon 移除优惠券
func (s *CartService) RemoveCoupon(userID uint) (*CartView, error) {
	return s.mutate(userID, func(_ *gorm.DB, _ *repository.GormCartRepository, cart *models.Cart) error {
		if cart.CouponID == nil {
			return ErrCouponNotApplied
		}
		cart.CouponID = nil
		cart.Coupon = nil
		return nil
	})
}

// LoadForCheckoutInTx 在下单事务内加锁读取并重算购物车
func (s *CartService) LoadForCheckoutInTx(tx *gorm.DB, userID uint, now time.Time) (*CartView, error) {
	repo := s.cartRepo.WithTx(tx)
	cart, err := repo.GetByUserForUpdate(userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, ErrCartEmpty
	}
	view, err := s.recompute(tx, cart, userID, now)
	if err != nil {
		return nil, err
	}
	if err := repo.SaveTotals(cart); err != nil {
		return nil, ErrCartUpdateFailed
	}
	return view, nil
}

// ClearInTx 在事务内清空购物车并重置合计
func (s *CartService) ClearInTx(tx *gorm.DB, cart *models.Cart) error {
	if cart == nil || cart.ID == 0 {
		return nil
	}
	repo := s.cartRepo.WithTx(tx)
	if err := repo.ClearItems(cart.ID); err != nil {
		return err
	}
	cart.Items = nil
	cart.CouponID = nil
	cart.Coupon = nil
	applyTotalsToCart(cart, pricing.CartTotals{}, decimal.Zero, decimal.Zero)
	return repo.SaveTotals(cart)
}

type cartMutation func(tx *gorm.DB, repo *repository.GormCartRepository, cart *models.Cart) error

func (s *CartService) mutate(userID uint, fn cartMutation) (*CartView, error) {
	if userID == 0 {
		return nil, ErrUserNotFound
	}
	var view *CartView
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.cartRepo.WithTx(tx)
		cart, err := s.ensureCartForUpdate(repo, userID)
		if err != nil {
			return err
		}
		if fn != nil {
			couponID := cart.CouponID
			if err := fn(tx, repo, cart); err != nil {
				return err
			}
			coupon := cart.Coupon
			// 重新加载购物车项，保留本次变更后的优惠券
			reloaded, err := repo.GetByUserForUpdate(userID)
			if err != nil {
				return err
			}
			if reloaded == nil {
				return ErrCartUpdateFailed
			}
			if !sameCouponRef(couponID, cart.CouponID) {
				reloaded.CouponID = cart.CouponID
				reloaded.Coupon = coupon
			}
			cart = reloaded
		}
		view, err = s.recompute(tx, cart, userID, time.Now())
		if err != nil {
			return err
		}
		if err := repo.SaveTotals(cart); err != nil {
			return ErrCartUpdateFailed
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if view.CouponDetached {
		logger.Infow("cart_coupon_detached", "user_id", userID, "cart_id", view.CartID, "reason", view.DetachReason)
	}
	return view, nil
}

// recompute 根据购物车项、当前促销与优惠券重算合计并写回 cart（不落库）
func (s *CartService) recompute(tx *gorm.DB, cart *models.Cart, userID uint, now time.Time) (*CartView, error) {
	view := &CartView{CartID: cart.ID, Cart: cart, Items: make([]CartLineView, 0, len(cart.Items))}
	offerSvc := s.offerSvc.WithTx(tx)
	lines := make([]pricing.Line, 0, len(cart.Items))
	for _, item := range cart.Items {
		line := CartLineView{
			ItemID:    item.ID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
			Variant:   item.Variant,
			Offer:     pricing.NoOffer(),
		}
		variant := item.Variant
		if variant != nil {
			line.VariantName = variant.Name
			line.ProductID = variant.ProductID
			line.ActualPrice = variant.ActualPrice
			line.SalePrice = variant.SalePrice
			if variant.Product != nil {
				line.ProductName = variant.Product.Name
			}
			line.Available = variant.Purchasable() && variant.Product != nil
		}
		if line.Available {
			offer, err := offerSvc.Resolve(variant.Product, now)
			if err != nil {
				return nil, err
			}
			line.Offer = offer
			lines = append(lines, pricing.Line{
				ActualPrice: variant.ActualPrice.Decimal,
				SalePrice:   variant.SalePrice.Decimal,
				Quantity:    item.Quantity,
				Offer:       offer,
			})
		}
		line.OfferKind = string(line.Offer.Kind)
		line.OfferPercentage = models.NewMoneyFromDecimal(line.Offer.Percentage)
		effective := pricing.EffectiveUnitPrice(line.SalePrice.Decimal, line.Offer)
		line.EffectiveUnitPrice = models.NewMoneyFromDecimal(effective)
		if line.Available {
			line.LineTotal = models.NewMoneyFromDecimal(effective.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
		view.Items = append(view.Items, line)
	}

	totals := pricing.ComputeCartTotals(lines, s.settings.Shipping)
	view.Totals = totals

	couponDiscount := decimal.Zero
	if cart.CouponID != nil {
		err := s.couponSvc.WithTx(tx).Validate(cart.Coupon, userID, totals, now)
		if err == nil && len(lines) == 0 {
			err = ErrCartEmpty
		}
		if err != nil {
			view.CouponDetached = true
			view.DetachReason = couponRejectReason(err)
			cart.CouponID = nil
			cart.Coupon = nil
		} else {
			couponDiscount = s.couponSvc.Discount(cart.Coupon, totals)
			view.Coupon = cart.Coupon
			view.CouponCode = cart.Coupon.Code
		}
	}
	payable := totals.GrandTotal.Sub(couponDiscount)
	applyTotalsToCart(cart, totals, couponDiscount, payable)
	cart.UpdatedAt = now

	view.TotalActualPrice = cart.TotalActualPrice
	view.TotalSalePrice = cart.TotalSalePrice
	view.TotalNormalDiscount = cart.TotalNormalDiscount
	view.TotalOfferDiscount = cart.TotalOfferDiscount
	view.SubtotalAfterOffers = cart.SubtotalAfterOffers
	view.DeliveryCharge = cart.DeliveryCharge
	view.GrandTotal = cart.GrandTotal
	view.CouponDiscount = cart.CouponDiscount
	view.PayableAmount = cart.PayableAmount
	return view, nil
}

func applyTotalsToCart(cart *models.Cart, totals pricing.CartTotals, couponDiscount, payable decimal.Decimal) {
	cart.TotalActualPrice = models.NewMoneyFromDecimal(totals.TotalActualPrice)
	cart.TotalSalePrice = models.NewMoneyFromDecimal(totals.TotalSalePrice)
	cart.TotalNormalDiscount = models.NewMoneyFromDecimal(totals.TotalNormalDiscount)
	cart.TotalOfferDiscount = models.NewMoneyFromDecimal(totals.TotalOfferDiscount)
	cart.SubtotalAfterOffers = models.NewMoneyFromDecimal(totals.SubtotalAfterOffers)
	cart.DeliveryCharge = models.NewMoneyFromDecimal(totals.DeliveryCharge)
	cart.GrandTotal = models.NewMoneyFromDecimal(totals.GrandTotal)
	cart.CouponDiscount = models.NewMoneyFromDecimal(couponDiscount)
	cart.PayableAmount = models.NewMoneyFromDecimal(payable)
}

func (s *CartService) ensureCartForUpdate(repo *repository.GormCartRepository, userID uint) (*models.Cart, error) {
	cart, err := repo.GetByUserForUpdate(userID)
	if err != nil {
		return nil, err
	}
	if cart != nil {
		return cart, nil
	}
	cart = &models.Cart{UserID: userID}
	if err := repo.Create(cart); err != nil {
		created, queryErr := repo.GetByUserForUpdate(userID)
		if queryErr == nil && created != nil {
			return created, nil
		}
		return nil, ErrCartUpdateFailed
	}
	return cart, nil
}

func (s *CartService) loadPurchasableVariant(tx *gorm.DB, variantID uint) (*models.ProductVariant, error) {
	variant, err := s.variantRepo.WithTx(tx).GetByID(variantID)
	if err != nil {
		return nil, err
	}
	if variant == nil {
		return nil, ErrVariantNotFound
	}
	if !variant.Purchasable() || variant.Product == nil {
		return nil, ErrVariantUnavailable
	}
	return variant, nil
}

func (s *CartService) checkQuantity(variant *models.ProductVariant, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if quantity > s.settings.MaxQuantityPerItem {
		return ErrQuantityExceeded
	}
	if variant != nil && quantity > variant.Stock {
		return ErrStockInsufficient
	}
	return nil
}

func sameCouponRef(a, b *uint) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
