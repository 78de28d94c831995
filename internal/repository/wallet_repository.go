package repository

import (
	"strings"

	"github.com/dujiao-next/storefront/internal/constants"
	"github.com/dujiao-next/storefront/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WalletRepository 钱包数据访问接口
type WalletRepository interface {
	GetByUserID(userID uint) (*models.Wallet, error)
	GetByUserIDForUpdate(userID uint) (*models.Wallet, error)
	Create(wallet *models.Wallet) error
	UpdateBalance(walletID uint, balance decimal.Decimal) error
	SetActive(walletID uint, active bool) error
	List(filter WalletListFilter) ([]models.Wallet, int64, error)
	CreateTransaction(txn *models.WalletTransaction) error
	UpdateTransaction(id uint, updates map[string]interface{}) error
	GetTransactionByTxnID(txnID string) (*models.WalletTransaction, error)
	GetTransactionByTxnIDForUpdate(txnID string) (*models.WalletTransaction, error)
	ListTransactions(filter WalletTransactionListFilter) ([]models.WalletTransaction, int64, error)
	SumCompleted(walletID uint) (decimal.Decimal, error)
	WithTx(tx *gorm.DB) *GormWalletRepository
}

// GormWalletRepository GORM 钱包仓储实现
type GormWalletRepository struct {
	db *gorm.DB
}

// NewWalletRepository 创建钱包仓储
func NewWalletRepository(db *gorm.DB) *GormWalletRepository {
	return &GormWalletRepository{db: db}
}

// WithTx 绑定事务
func (r *GormWalletRepository) WithTx(tx *gorm.DB) *GormWalletRepository {
	if tx == nil {
		return r
	}
	return &GormWalletRepository{db: tx}
}

// GetByUserID 按用户ID获取钱包
func (r *GormWalletRepository) GetByUserID(userID uint) (*models.Wallet, error) {
	if userID == 0 {
		return nil, nil
	}
	return findOne[models.Wallet](r.db.Where("user_id = ?", userID))
}

// GetByUserIDForUpdate 按用户ID加锁获取钱包
func (r *GormWalletRepository) GetByUserIDForUpdate(userID uint) (*models.Wallet, error) {
	if userID == 0 {
		return nil, nil
	}
	return findOne[models.Wallet](forUpdate(r.db).
		Where("user_id = ?", userID))
}

// Create 创建钱包
func (r *GormWalletRepository) Create(wallet *models.Wallet) error {
	return r.db.Create(wallet).Error
}

// UpdateBalance 更新钱包余额
func (r *GormWalletRepository) UpdateBalance(walletID uint, balance decimal.Decimal) error {
	return r.db.Model(&models.Wallet{}).
		Where("id = ?", walletID).
		Update("balance", models.NewMoneyFromDecimal(balance)).Error
}

// SetActive 启用或停用钱包
func (r *GormWalletRepository) SetActive(walletID uint, active bool) error {
	return r.db.Model(&models.Wallet{}).
		Where("id = ?", walletID).
		Update("is_active", active).Error
}

// List 分页查询钱包
func (r *GormWalletRepository) List(filter WalletListFilter) ([]models.Wallet, int64, error) {
	query := r.db.Model(&models.Wallet{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var wallets []models.Wallet
	if err := query.Order("id desc").Find(&wallets).Error; err != nil {
		return nil, 0, err
	}
	return wallets, total, nil
}

// CreateTransaction 创建钱包流水
func (r *GormWalletRepository) CreateTransaction(txn *models.WalletTransaction) error {
	return r.db.Create(txn).Error
}

// UpdateTransaction 更新钱包流水（仅用于待处理充值的状态流转）
func (r *GormWalletRepository) UpdateTransaction(id uint, updates map[string]interface{}) error {
	if id == 0 || len(updates) == 0 {
		return nil
	}
	return r.db.Model(&models.WalletTransaction{}).Where("id = ?", id).Updates(updates).Error
}

// GetTransactionByTxnID 按交易号获取流水
func (r *GormWalletRepository) GetTransactionByTxnID(txnID string) (*models.WalletTransaction, error) {
	txnID = strings.TrimSpace(txnID)
	if txnID == "" {
		return nil, nil
	}
	return findOne[models.WalletTransaction](r.db.Where("txn_id = ?", txnID))
}

// GetTransactionByTxnIDForUpdate 按交易号加锁获取流水
func (r *GormWalletRepository) GetTransactionByTxnIDForUpdate(txnID string) (*models.WalletTransaction, error) {
	txnID = strings.TrimSpace(txnID)
	if txnID == "" {
		return nil, nil
	}
	return findOne[models.WalletTransaction](forUpdate(r.db).
		Where("txn_id = ?", txnID))
}

// ListTransactions 分页查询钱包流水
func (r *GormWalletRepository) ListTransactions(filter WalletTransactionListFilter) ([]models.WalletTransaction, int64, error) {
	query := r.db.Model(&models.WalletTransaction{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.OrderID != 0 {
		query = query.Where("order_id = ?", filter.OrderID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var txns []models.WalletTransaction
	if err := query.Order("id desc").Find(&txns).Error; err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}

// SumCompleted 计算钱包已完成流水的带符号合计（入账为正，出账为负）
func (r *GormWalletRepository) SumCompleted(walletID uint) (decimal.Decimal, error) {
	var rows []struct {
		Type   string
		Amount models.Money
	}
	if err := r.db.Model(&models.WalletTransaction{}).
		Select("type", "amount").
		Where("wallet_id = ? AND status = ?", walletID, constants.WalletTxnStatusCompleted).
		Find(&rows).Error; err != nil {
		return decimal.Zero, err
	}
	sum := decimal.Zero
	for _, row := range rows {
		switch row.Type {
		case constants.WalletTxnTypeCredit:
			sum = sum.Add(row.Amount.Decimal)
		case constants.WalletTxnTypeDebit:
			sum = sum.Sub(row.Amount.Decimal)
		}
	}
	return sum.Round(2), nil
}
