//go:build integration
// +build integration

package repository

import (
	"os"
	"strings"
	"testing"

	"github.com/dujiao-next/storefront/internal/constants"
	"github.com/dujiao-next/storefront/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	all := models.AllModels()
	_ = db.Migrator().DropTable(all...)
	if err := db.AutoMigrate(all...); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(all...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func TestPostgresCaseInsensitiveProductSearch(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	createCatalogVariant(t, db, "pg-rocket-phone", 5)

	rows, total, err := NewProductRepository(db).List(ProductListFilter{Page: 1, Search: "ROCKET"})
	if err != nil {
		t.Fatalf("product search failed: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("ILIKE search want 1 got total=%d len=%d", total, len(rows))
	}
}

func TestPostgresStockAndLedgerConcurrency(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	_, variant := createCatalogVariant(t, db, "pg-stock-phone", 1)

	variantRepo := NewProductVariantRepository(db)
	results := make(chan int64, 2)
	for i := 0; i < 2; i++ {
		go func() {
			affected, err := variantRepo.DecrementStock(variant.ID, 1)
			if err != nil {
				results <- -1
				return
			}
			results <- affected
		}()
	}
	succeeded := int64(0)
	for i := 0; i < 2; i++ {
		succeeded += <-results
	}
	if succeeded != 1 {
		t.Fatalf("exactly one concurrent decrement should succeed, got %d", succeeded)
	}

	walletRepo := NewWalletRepository(db)
	wallet := &models.Wallet{UserID: 42}
	if err := walletRepo.Create(wallet); err != nil {
		t.Fatalf("create wallet failed: %v", err)
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		locked, err := walletRepo.WithTx(tx).GetByUserIDForUpdate(42)
		if err != nil {
			return err
		}
		txn := &models.WalletTransaction{
			WalletID: locked.ID,
			UserID:   locked.UserID,
			TxnID:    "RF-PG-1",
			Type:     constants.WalletTxnTypeCredit,
			Amount:   models.NewMoneyFromDecimal(decimal.RequireFromString("954.96")),
			Status:   constants.WalletTxnStatusCompleted,
		}
		if err := walletRepo.WithTx(tx).CreateTransaction(txn); err != nil {
			return err
		}
		return walletRepo.WithTx(tx).UpdateBalance(locked.ID, txn.Amount.Decimal)
	})
	if err != nil {
		t.Fatalf("ledger transaction failed: %v", err)
	}
	sum, err := walletRepo.SumCompleted(wallet.ID)
	if err != nil {
		t.Fatalf("sum failed: %v", err)
	}
	if !sum.Equal(decimal.RequireFromString("954.96")) {
		t.Fatalf("ledger sum want 954.96 got %s", sum)
	}
}
