package main

import (
	"errors"
	"time"

	"github.com/dujiao-next/storefront/internal/config"
	"github.com/dujiao-next/storefront/internal/constants"
	"github.com/dujiao-next/storefront/internal/logger"
	"github.com/dujiao-next/storefront/internal/models"
	"github.com/dujiao-next/storefront/internal/repository"
	"github.com/dujiao-next/storefront/internal/service"

	"github.com/shopspring/decimal"
)

type seedVariant struct {
	name   string
	sale   string
	actual string
	stock  int
}

type seedProduct struct {
	category string
	name     string
	slug     string
	variants []seedVariant
}

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.Setup(cfg.Database, false); err != nil {
		stdLog.Fatalf("Failed to prepare database: %v", err)
	}
	if _, err := models.EnsureDefaultAdmin(models.DB, "", ""); err != nil {
		stdLog.Printf("Failed to init default admin: %v", err)
	}

	db := models.DB
	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	promotionRepo := repository.NewPromotionRepository(db)
	offerSvc := service.NewOfferService(promotionRepo)
	categorySvc := service.NewCategoryService(categoryRepo)
	productSvc := service.NewProductService(productRepo, repository.NewProductVariantRepository(db), categoryRepo, offerSvc)
	offerAdminSvc := service.NewOfferAdminService(promotionRepo, productRepo, categoryRepo)
	couponAdminSvc := service.NewCouponAdminService(repository.NewCouponRepository(db), repository.NewCouponUsageRepository(db))
	referralSvc := service.NewReferralService(repository.NewReferralRepository(db), repository.NewOrderRepository(db), nil, nil, nil, true)

	// 分类
	categoryIDs := map[string]uint{}
	if existing, err := categorySvc.List(false); err == nil {
		for _, category := range existing {
			categoryIDs[category.Slug] = category.ID
		}
	}
	for _, item := range []struct{ name, slug string }{
		{"Electronics", "electronics"},
		{"Home & Living", "home-living"},
		{"Accessories", "accessories"},
	} {
		if _, exists := categoryIDs[item.slug]; exists {
			stdLog.Printf("Category already exists: %s", item.slug)
			continue
		}
		category, err := categorySvc.Create(service.CategoryInput{Name: item.name, Slug: item.slug})
		if err != nil {
			stdLog.Printf("Failed to create category %s: %v", item.slug, err)
			continue
		}
		categoryIDs[item.slug] = category.ID
		stdLog.Printf("Created category: %s", item.slug)
	}

	// 商品与规格
	products := []seedProduct{
		{
			category: "electronics", name: "Noise Cancelling Headphones", slug: "nc-headphones",
			variants: []seedVariant{{"Black", "1000", "1299", 50}, {"Silver", "1099", "1299", 30}},
		},
		{
			category: "electronics", name: "Smart Watch", slug: "smart-watch",
			variants: []seedVariant{{"42mm", "2499", "2999", 20}, {"46mm", "2799", "3299", 20}},
		},
		{
			category: "home-living", name: "Ceramic Mug Set", slug: "ceramic-mug-set",
			variants: []seedVariant{{"Set of 2", "349", "399", 100}, {"Set of 4", "649", "799", 60}},
		},
		{
			category: "accessories", name: "USB-C Cable", slug: "usb-c-cable",
			variants: []seedVariant{{"1m", "199", "249", 200}, {"2m", "249", "299", 150}},
		},
	}
	productIDs := map[string]uint{}
	for _, item := range products {
		categoryID, ok := categoryIDs[item.category]
		if !ok {
			continue
		}
		product, err := productSvc.Create(service.ProductInput{CategoryID: categoryID, Name: item.name, Slug: item.slug})
		if err != nil {
			if errors.Is(err, service.ErrSlugExists) {
				stdLog.Printf("Product already exists: %s", item.slug)
			} else {
				stdLog.Printf("Failed to create product %s: %v", item.slug, err)
			}
			continue
		}
		productIDs[item.slug] = product.ID
		for _, v := range item.variants {
			stock := v.stock
			if _, err := productSvc.CreateVariant(product.ID, service.VariantInput{
				Name:        v.name,
				SalePrice:   decimal.RequireFromString(v.sale),
				ActualPrice: decimal.RequireFromString(v.actual),
				Stock:       &stock,
			}); err != nil {
				stdLog.Printf("Failed to create variant %s/%s: %v", item.slug, v.name, err)
			}
		}
		stdLog.Printf("Created product: %s", item.slug)
	}

	now := time.Now()

	// 促销：首次导入商品时附带一个分类级折扣
	if categoryID, ok := categoryIDs["accessories"]; ok && len(productIDs) > 0 {
		if _, err := offerAdminSvc.Create(service.OfferInput{
			Name:               "Accessories week",
			Scope:              constants.OfferScopeCategory,
			TargetID:           categoryID,
			DiscountPercentage: models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
			ValidFrom:          now,
			ValidUntil:         now.AddDate(0, 0, 7),
		}); err != nil {
			stdLog.Printf("Failed to create offer: %v", err)
		}
	}

	// 优惠券
	maxDiscount := models.NewMoneyFromDecimal(decimal.NewFromInt(500))
	coupons := []service.CouponInput{
		{
			Code:          "FLAT99",
			DiscountType:  constants.CouponTypeFixed,
			DiscountValue: models.NewMoneyFromDecimal(decimal.NewFromInt(99)),
			MinCartValue:  models.NewMoneyFromDecimal(decimal.NewFromInt(999)),
			PerUserLimit:  1,
		},
		{
			Code:          "SAVE10",
			DiscountType:  constants.CouponTypePercentage,
			DiscountValue: models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
			MinCartValue:  models.NewMoneyFromDecimal(decimal.NewFromInt(1500)),
			MaxDiscount:   &maxDiscount,
			MaxUsage:      1000,
			PerUserLimit:  2,
		},
	}
	for _, input := range coupons {
		if _, err := couponAdminSvc.Create(input); err != nil {
			if errors.Is(err, service.ErrCouponCodeExists) {
				stdLog.Printf("Coupon already exists: %s", input.Code)
				continue
			}
			stdLog.Printf("Failed to create coupon %s: %v", input.Code, err)
			continue
		}
		stdLog.Printf("Created coupon: %s", input.Code)
	}

	// 邀请奖励方案
	offers, err := referralSvc.ListOffers()
	if err != nil {
		stdLog.Printf("Failed to load referral offers: %v", err)
	} else if len(offers) == 0 {
		if _, err := referralSvc.CreateOffer(service.ReferralOfferInput{
			Name:           "Invite a friend",
			Description:    "Both sides receive wallet credit after the first paid order.",
			ReferrerReward: models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
			ReferredReward: models.NewMoneyFromDecimal(decimal.NewFromInt(50)),
			ValidFrom:      &now,
		}); err != nil {
			stdLog.Printf("Failed to create referral offer: %v", err)
		} else {
			stdLog.Printf("Created referral offer")
		}
	}

	stdLog.Printf("Seed completed")
}
