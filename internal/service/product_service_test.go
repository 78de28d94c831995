package service

import (
	"errors"
	"testing"

	"github.com/dujiao-next/storefront/internal/repository"

	"github.com/shopspring/decimal"
)

func newCatalogServices(env *serviceTestEnv) (*CategoryService, *ProductService) {
	categoryRepo := repository.NewCategoryRepository(env.db)
	categorySvc := NewCategoryService(categoryRepo)
	productSvc := NewProductService(repository.NewProductRepository(env.db), env.variantRepo, categoryRepo, env.offerSvc)
	return categorySvc, productSvc
}

func TestCatalogCreateAndPublicView(t *testing.T) {
	env := newServiceTestEnv(t)
	categorySvc, productSvc := newCatalogServices(env)

	category, err := categorySvc.Create(CategoryInput{Name: "Kitchen", Slug: " Home Kitchen "})
	if err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	if category.Slug != "home-kitchen" {
		t.Fatalf("expected normalized slug, got %q", category.Slug)
	}
	if _, err := categorySvc.Create(CategoryInput{Name: "Dup", Slug: "home-kitchen"}); !errors.Is(err, ErrSlugExists) {
		t.Fatalf("expected duplicate slug, got %v", err)
	}

	product, err := productSvc.Create(ProductInput{CategoryID: category.ID, Name: "Kettle", Slug: "kettle"})
	if err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	stock := 4
	if _, err := productSvc.CreateVariant(product.ID, VariantInput{Name: "1L", SalePrice: decimal.NewFromInt(1000), Stock: &stock}); err != nil {
		t.Fatalf("create variant failed: %v", err)
	}
	empty := 0
	if _, err := productSvc.CreateVariant(product.ID, VariantInput{Name: "2L", SalePrice: decimal.NewFromInt(1500), ActualPrice: decimal.NewFromInt(1800), Stock: &empty}); err != nil {
		t.Fatalf("create variant failed: %v", err)
	}
	env.createProductOffer(t, product.ID, "20")

	view, err := productSvc.GetPublicBySlug("kettle")
	if err != nil {
		t.Fatalf("get public product failed: %v", err)
	}
	if view.OfferKind != "product" || len(view.VariantPrices) != 2 {
		t.Fatalf("unexpected product view: %+v", view)
	}
	prices := map[string]VariantPriceView{}
	for _, p := range view.VariantPrices {
		prices[p.Name] = p
	}
	assertMoney(t, "1000", prices["1L"].ActualPrice.Decimal, "actual price defaults to sale")
	assertMoney(t, "800", prices["1L"].EffectivePrice.Decimal, "effective price")
	assertMoney(t, "1200", prices["2L"].EffectivePrice.Decimal, "effective price")
	if !prices["1L"].InStock || prices["2L"].InStock {
		t.Fatalf("unexpected stock flags: %+v", prices)
	}

	views, total, err := productSvc.ListPublic(category.ID, "kett", 1, 20)
	if err != nil {
		t.Fatalf("list public failed: %v", err)
	}
	if total != 1 || len(views) != 1 || views[0].OfferKind != "product" {
		t.Fatalf("unexpected public list: total %d views %+v", total, views)
	}
}

func TestCatalogInactiveProductHidden(t *testing.T) {
	env := newServiceTestEnv(t)
	categorySvc, productSvc := newCatalogServices(env)
	category, err := categorySvc.Create(CategoryInput{Name: "Garden", Slug: "garden"})
	if err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	inactive := false
	product, err := productSvc.Create(ProductInput{CategoryID: category.ID, Name: "Hose", Slug: "hose", IsActive: &inactive})
	if err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	if _, err := productSvc.GetPublicBySlug("hose"); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected inactive product hidden, got %v", err)
	}
	admin, err := productSvc.GetAdminByID(product.ID)
	if err != nil || admin.IsActive {
		t.Fatalf("admin should see inactive product, got %+v err %v", admin, err)
	}

	active := true
	if _, err := productSvc.Update(product.ID, ProductInput{IsActive: &active}); err != nil {
		t.Fatalf("activate product failed: %v", err)
	}
	if _, err := productSvc.GetPublicBySlug("hose"); err != nil {
		t.Fatalf("expected active product visible, got %v", err)
	}
}

func TestCatalogValidation(t *testing.T) {
	env := newServiceTestEnv(t)
	categorySvc, productSvc := newCatalogServices(env)

	if _, err := categorySvc.Create(CategoryInput{Name: " ", Slug: "x"}); !errors.Is(err, ErrCatalogInputInvalid) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if _, err := productSvc.Create(ProductInput{CategoryID: 999, Name: "Ghost", Slug: "ghost"}); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("expected category not found, got %v", err)
	}
	category, err := categorySvc.Create(CategoryInput{Name: "Tools", Slug: "tools"})
	if err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	product, err := productSvc.Create(ProductInput{CategoryID: category.ID, Name: "Hammer", Slug: "hammer"})
	if err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	if _, err := productSvc.CreateVariant(product.ID, VariantInput{Name: "free", SalePrice: decimal.Zero}); !errors.Is(err, ErrVariantPriceInvalid) {
		t.Fatalf("expected invalid price, got %v", err)
	}
	negative := -1
	if _, err := productSvc.CreateVariant(product.ID, VariantInput{Name: "neg", SalePrice: decimal.NewFromInt(10), Stock: &negative}); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected invalid stock, got %v", err)
	}
	if _, err := productSvc.UpdateVariant(12345, VariantInput{SalePrice: decimal.NewFromInt(10)}); !errors.Is(err, ErrVariantNotFound) {
		t.Fatalf("expected variant not found, got %v", err)
	}
	if err := categorySvc.Delete(category.ID); !errors.Is(err, ErrCategoryInUse) {
		t.Fatalf("expected category in use, got %v", err)
	}
}
