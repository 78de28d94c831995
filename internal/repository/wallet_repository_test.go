package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/dujiao-next/storefront/internal/constants"
	"github.com/dujiao-next/storefront/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func openRepositoryTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return db
}

func createWalletTxn(t *testing.T, repo *GormWalletRepository, wallet *models.Wallet, txnID, txnType, status, amount string) {
	t.Helper()
	txn := &models.WalletTransaction{
		WalletID: wallet.ID,
		UserID:   wallet.UserID,
		TxnID:    txnID,
		Type:     txnType,
		Amount:   models.NewMoneyFromDecimal(decimal.RequireFromString(amount)),
		Status:   status,
	}
	if err := repo.CreateTransaction(txn); err != nil {
		t.Fatalf("create txn %s failed: %v", txnID, err)
	}
}

func TestWalletRepositorySumCompleted(t *testing.T) {
	db := openRepositoryTestDB(t, "wallet_repo_sum")
	repo := NewWalletRepository(db)

	wallet := &models.Wallet{UserID: 7, Balance: models.NewMoneyFromInt(0)}
	if err := repo.Create(wallet); err != nil {
		t.Fatalf("create wallet failed: %v", err)
	}

	createWalletTxn(t, repo, wallet, "TXN-1", constants.WalletTxnTypeCredit, constants.WalletTxnStatusCompleted, "500.00")
	createWalletTxn(t, repo, wallet, "TXN-2", constants.WalletTxnTypeDebit, constants.WalletTxnStatusCompleted, "120.50")
	createWalletTxn(t, repo, wallet, "TXN-3", constants.WalletTxnTypeCredit, constants.WalletTxnStatusPending, "1000.00")
	createWalletTxn(t, repo, wallet, "RF-4", constants.WalletTxnTypeCredit, constants.WalletTxnStatusCompleted, "954.96")
	createWalletTxn(t, repo, wallet, "TXN-5", constants.WalletTxnTypeCredit, constants.WalletTxnStatusFailed, "50.00")

	sum, err := repo.SumCompleted(wallet.ID)
	if err != nil {
		t.Fatalf("sum completed failed: %v", err)
	}
	if !sum.Equal(decimal.RequireFromString("1334.46")) {
		t.Fatalf("sum want 1334.46 got %s", sum.StringFixed(2))
	}
}

func TestWalletRepositoryTxnIDUnique(t *testing.T) {
	db := openRepositoryTestDB(t, "wallet_repo_unique")
	repo := NewWalletRepository(db)

	wallet := &models.Wallet{UserID: 8}
	if err := repo.Create(wallet); err != nil {
		t.Fatalf("create wallet failed: %v", err)
	}
	createWalletTxn(t, repo, wallet, "REF-DUP", constants.WalletTxnTypeCredit, constants.WalletTxnStatusCompleted, "100.00")

	dup := &models.WalletTransaction{
		WalletID: wallet.ID,
		UserID:   wallet.UserID,
		TxnID:    "REF-DUP",
		Type:     constants.WalletTxnTypeCredit,
		Amount:   models.NewMoneyFromInt(100),
		Status:   constants.WalletTxnStatusCompleted,
	}
	if err := repo.CreateTransaction(dup); err == nil {
		t.Fatalf("duplicate txn id should be rejected")
	}
}

func TestWalletRepositoryListTransactions(t *testing.T) {
	db := openRepositoryTestDB(t, "wallet_repo_list")
	repo := NewWalletRepository(db)

	wallet := &models.Wallet{UserID: 9}
	if err := repo.Create(wallet); err != nil {
		t.Fatalf("create wallet failed: %v", err)
	}
	other := &models.Wallet{UserID: 10}
	if err := repo.Create(other); err != nil {
		t.Fatalf("create other wallet failed: %v", err)
	}
	createWalletTxn(t, repo, wallet, "TXN-A", constants.WalletTxnTypeCredit, constants.WalletTxnStatusCompleted, "200.00")
	createWalletTxn(t, repo, wallet, "TXN-B", constants.WalletTxnTypeDebit, constants.WalletTxnStatusCompleted, "50.00")
	createWalletTxn(t, repo, other, "TXN-C", constants.WalletTxnTypeCredit, constants.WalletTxnStatusCompleted, "70.00")

	rows, total, err := repo.ListTransactions(WalletTransactionListFilter{Page: 1, PageSize: 10, UserID: 9})
	if err != nil {
		t.Fatalf("list transactions failed: %v", err)
	}
	if total != 2 || len(rows) != 2 {
		t.Fatalf("want 2 rows got total=%d len=%d", total, len(rows))
	}
	if rows[0].TxnID != "TXN-B" {
		t.Fatalf("rows should be newest first, got %s", rows[0].TxnID)
	}

	rows, total, err = repo.ListTransactions(WalletTransactionListFilter{Page: 1, PageSize: 10, UserID: 9, Type: constants.WalletTxnTypeCredit})
	if err != nil {
		t.Fatalf("list credits failed: %v", err)
	}
	if total != 1 || rows[0].TxnID != "TXN-A" {
		t.Fatalf("credit filter mismatch total=%d", total)
	}
}

func TestWalletRepositorySetActive(t *testing.T) {
	db := openRepositoryTestDB(t, "wallet_repo_active")
	repo := NewWalletRepository(db)

	wallet := &models.Wallet{UserID: 11}
	if err := repo.Create(wallet); err != nil {
		t.Fatalf("create wallet failed: %v", err)
	}
	created, err := repo.GetByUserID(11)
	if err != nil || created == nil || !created.IsActive {
		t.Fatalf("wallet should default to active, got %+v err=%v", created, err)
	}
	if err := repo.SetActive(wallet.ID, false); err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}
	got, err := repo.GetByUserID(11)
	if err != nil {
		t.Fatalf("get wallet failed: %v", err)
	}
	if got == nil || got.IsActive {
		t.Fatalf("wallet should be inactive, got %+v", got)
	}

	missing, err := repo.GetByUserID(999)
	if err != nil || missing != nil {
		t.Fatalf("missing wallet should return nil,nil got %+v,%v", missing, err)
	}
}
