package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dujiao-next/storefront/internal/config"
	"github.com/dujiao-next/storefront/internal/constants"
	"github.com/dujiao-next/storefront/internal/logger"
	"github.com/dujiao-next/storefront/internal/metrics"
	"github.com/dujiao-next/storefront/internal/models"
	"github.com/dujiao-next/storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	walletDefaultCurrency = "INR"
)

// WalletSettings 钱包充值限额与币种
type WalletSettings struct {
	TopupMin decimal.Decimal
	TopupMax decimal.Decimal
	Currency string
}

// NewWalletSettings 从配置构建钱包设置，非法配置回退默认值
func NewWalletSettings(cfg config.WalletConfig) WalletSettings {
	return WalletSettings{
		TopupMin: parseDecimalOr(cfg.TopupMin, decimal.NewFromInt(100)),
		TopupMax: parseDecimalOr(cfg.TopupMax, decimal.NewFromInt(20000)),
		Currency: normalizeWalletCurrency(cfg.Currency),
	}
}

// WalletService 钱包服务
type WalletService struct {
	walletRepo  *repository.GormWalletRepository
	paymentRepo repository.PaymentRepository
	gateway     PaymentGateway
	settings    WalletSettings
}

// WalletCreditInput 事务内入账输入
type WalletCreditInput struct {
	UserID      uint
	Amount      decimal.Decimal
	Prefix      string // 交易号前缀（RF/RT/REF）
	TxnID       string // 指定交易号时按交易号幂等
	Description string
	OrderID     *uint
}

// WalletDebitInput 事务内扣款输入
type WalletDebitInput struct {
	UserID      uint
	Amount      decimal.Decimal
	Description string
	OrderID     *uint
}

// WalletTopupResult 充值下单结果
type WalletTopupResult struct {
	Transaction *models.WalletTransaction
	Payment     *models.GatewayPayment
	Gateway     *GatewayOrder
}

// WalletReconcileResult 余额对账结果
type WalletReconcileResult struct {
	UserID    uint            `json:"user_id"`
	Balance   decimal.Decimal `json:"balance"`
	LedgerSum decimal.Decimal `json:"ledger_sum"`
	Drift     decimal.Decimal `json:"drift"`
	Balanced  bool            `json:"balanced"`
}

// NewWalletService 创建钱包服务
func NewWalletService(walletRepo *repository.GormWalletRepository, paymentRepo repository.PaymentRepository, gateway PaymentGateway, settings WalletSettings) *WalletService {
	return &WalletService{
		walletRepo:  walletRepo,
		paymentRepo: paymentRepo,
		gateway:     gateway,
		settings:    settings,
	}
}

// GetWallet 获取钱包（不存在时自动创建）
func (s *WalletService) GetWallet(userID uint) (*models.Wallet, error) {
	if userID == 0 {
		return nil, ErrWalletNotFound
	}
	return s.getOrCreateWallet(userID)
}

// ListTransactions 查询钱包流水
func (s *WalletService) ListTransactions(filter repository.WalletTransactionListFilter) ([]models.WalletTransaction, int64, error) {
	return s.walletRepo.ListTransactions(filter)
}

// ListWallets 管理端查询钱包
func (s *WalletService) ListWallets(filter repository.WalletListFilter) ([]models.Wallet, int64, error) {
	return s.walletRepo.List(filter)
}

// AdminSetActive 管理员启用/停用钱包支付
func (s *WalletService) AdminSetActive(userID uint, active bool) (*models.Wallet, error) {
	wallet, err := s.GetWallet(userID)
	if err != nil {
		return nil, err
	}
	if err := s.walletRepo.SetActive(wallet.ID, active); err != nil {
		return nil, ErrWalletAccountUpdateFailed
	}
	wallet.IsActive = active
	logger.Infow("wallet_active_changed", "user_id", userID, "is_active", active)
	return wallet, nil
}

// CreditInTx 在事务内执行钱包入账并写入流水。
// 指定 TxnID 且流水已存在时直接返回已有流水，不重复入账。
func (s *WalletService) CreditInTx(tx *gorm.DB, input WalletCreditInput) (*models.WalletTransaction, error) {
	if tx == nil {
		return nil, ErrWalletAccountUpdateFailed
	}
	if input.UserID == 0 {
		return nil, ErrWalletNotFound
	}
	amount := input.Amount.Round(2)
	if !amount.IsPositive() {
		return nil, ErrWalletInvalidAmount
	}
	repo := s.walletRepo.WithTx(tx)
	txnID := strings.TrimSpace(input.TxnID)
	if txnID != "" {
		exists, err := repo.GetTransactionByTxnID(txnID)
		if err != nil {
			return nil, err
		}
		if exists != nil {
			return exists, nil
		}
	} else {
		txnID = generateWalletTxnID(input.Prefix)
	}

	now := time.Now()
	wallet, err := s.ensureWalletForUpdate(repo, input.UserID, now)
	if err != nil {
		return nil, err
	}
	before := wallet.Balance.Decimal.Round(2)
	after := before.Add(amount).Round(2)
	if err := repo.UpdateBalance(wallet.ID, after); err != nil {
		return nil, ErrWalletAccountUpdateFailed
	}
	wallet.Balance = models.NewMoneyFromDecimal(after)

	txn := &models.WalletTransaction{
		WalletID:      wallet.ID,
		UserID:        input.UserID,
		TxnID:         txnID,
		Type:          constants.WalletTxnTypeCredit,
		Amount:        models.NewMoneyFromDecimal(amount),
		Status:        constants.WalletTxnStatusCompleted,
		Description:   cleanWalletRemark(input.Description, "钱包入账"),
		OrderID:       input.OrderID,
		BalanceBefore: models.NewMoneyFromDecimal(before),
		BalanceAfter:  models.NewMoneyFromDecimal(after),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := repo.CreateTransaction(txn); err != nil {
		return nil, ErrWalletTransactionCreateFailed
	}
	recordLedgerWrite(txn)
	return txn, nil
}

// DebitInTx 在事务内从钱包扣款，钱包需为启用状态且余额充足
func (s *WalletService) DebitInTx(tx *gorm.DB, input WalletDebitInput) (*models.WalletTransaction, error) {
	if tx == nil {
		return nil, ErrWalletAccountUpdateFailed
	}
	if input.UserID == 0 {
		return nil, ErrWalletNotFound
	}
	amount := input.Amount.Round(2)
	if !amount.IsPositive() {
		return nil, ErrWalletInvalidAmount
	}
	now := time.Now()
	repo := s.walletRepo.WithTx(tx)
	wallet, err := s.ensureWalletForUpdate(repo, input.UserID, now)
	if err != nil {
		return nil, err
	}
	if !wallet.IsActive {
		return nil, ErrWalletInactive
	}
	before := wallet.Balance.Decimal.Round(2)
	if before.LessThan(amount) {
		return nil, ErrWalletInsufficientBalance
	}
	after := before.Sub(amount).Round(2)
	if err := repo.UpdateBalance(wallet.ID, after); err != nil {
		return nil, ErrWalletAccountUpdateFailed
	}
	wallet.Balance = models.NewMoneyFromDecimal(after)

	txnID := generateWalletTxnID(constants.WalletTxnPrefixPayment)
	txn := &models.WalletTransaction{
		WalletID:      wallet.ID,
		UserID:        input.UserID,
		TxnID:         txnID,
		Type:          constants.WalletTxnTypeDebit,
		Amount:        models.NewMoneyFromDecimal(amount),
		Status:        constants.WalletTxnStatusCompleted,
		Description:   cleanWalletRemark(input.Description, "钱包支付"),
		OrderID:       input.OrderID,
		BalanceBefore: models.NewMoneyFromDecimal(before),
		BalanceAfter:  models.NewMoneyFromDecimal(after),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := repo.CreateTransaction(txn); err != nil {
		return nil, ErrWalletTransactionCreateFailed
	}
	recordLedgerWrite(txn)
	return txn, nil
}

// CreateTopup 创建充值：写入待支付流水，再向网关下单
func (s *WalletService) CreateTopup(ctx context.Context, userID uint, amount decimal.Decimal) (*WalletTopupResult, error) {
	if userID == 0 {
		return nil, ErrWalletNotFound
	}
	amount = amount.Round(2)
	if amount.LessThan(s.settings.TopupMin) || amount.GreaterThan(s.settings.TopupMax) {
		return nil, ErrWalletTopupOutOfRange
	}
	if s.gateway == nil {
		return nil, ErrPaymentGatewayRequestFailed
	}

	var txn *models.WalletTransaction
	if err := models.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.walletRepo.WithTx(tx)
		wallet, err := s.ensureWalletForUpdate(repo, userID, time.Now())
		if err != nil {
			return err
		}
		balance := wallet.Balance
		txn = &models.WalletTransaction{
			WalletID:      wallet.ID,
			UserID:        userID,
			TxnID:         generateWalletTxnID(constants.WalletTxnPrefixPayment),
			Type:          constants.WalletTxnTypeCredit,
			Amount:        models.NewMoneyFromDecimal(amount),
			Status:        constants.WalletTxnStatusPending,
			Description:   "钱包充值",
			BalanceBefore: balance,
			BalanceAfter:  balance,
		}
		if err := repo.CreateTransaction(txn); err != nil {
			return ErrWalletTransactionCreateFailed
		}
		return nil
	}); err != nil {
		return nil, err
	}

	gatewayOrder, err := s.gateway.CreateOrder(ctx, GatewayOrderRequest{
		Amount:   amount,
		Currency: s.settings.Currency,
		Receipt:  txn.TxnID,
		Notes:    map[string]string{"purpose": constants.GatewayPurposeWalletTopup},
	})
	if err != nil {
		logger.Warnw("wallet_topup_gateway_order_failed", "user_id", userID, "txn_id", txn.TxnID, "error", err)
		if updateErr := s.walletRepo.UpdateTransaction(txn.ID, map[string]interface{}{
			"status":     constants.WalletTxnStatusFailed,
			"updated_at": time.Now(),
		}); updateErr != nil {
			logger.Errorw("wallet_topup_mark_failed_error", "txn_id", txn.TxnID, "error", updateErr)
		}
		return nil, ErrPaymentGatewayRequestFailed
	}

	txnRowID := txn.ID
	payment := &models.GatewayPayment{
		GatewayOrderID:      gatewayOrder.ID,
		Purpose:             constants.GatewayPurposeWalletTopup,
		UserID:              userID,
		WalletTransactionID: &txnRowID,
		Amount:              models.NewMoneyFromDecimal(amount),
		Currency:            s.settings.Currency,
		Status:              constants.GatewayPaymentStatusCreated,
	}
	if err := s.paymentRepo.Create(payment); err != nil {
		return nil, fmt.Errorf("save gateway payment: %w", err)
	}
	return &WalletTopupResult{Transaction: txn, Payment: payment, Gateway: gatewayOrder}, nil
}

// CompleteTopupInTx 在事务内确认充值到账，已完成的流水直接返回
func (s *WalletService) CompleteTopupInTx(tx *gorm.DB, txnRowID uint) (*models.WalletTransaction, error) {
	repo := s.walletRepo.WithTx(tx)
	txn, err := s.lockTopup(tx, txnRowID)
	if err != nil {
		return nil, err
	}
	if txn.Status == constants.WalletTxnStatusCompleted {
		return txn, nil
	}
	if txn.Status != constants.WalletTxnStatusPending {
		return nil, ErrWalletTopupStatusInvalid
	}
	now := time.Now()
	wallet, err := s.ensureWalletForUpdate(repo, txn.UserID, now)
	if err != nil {
		return nil, err
	}
	before := wallet.Balance.Decimal.Round(2)
	after := before.Add(txn.Amount.Decimal).Round(2)
	if err := repo.UpdateBalance(wallet.ID, after); err != nil {
		return nil, ErrWalletAccountUpdateFailed
	}
	if err := repo.UpdateTransaction(txn.ID, map[string]interface{}{
		"status":         constants.WalletTxnStatusCompleted,
		"balance_before": models.NewMoneyFromDecimal(before),
		"balance_after":  models.NewMoneyFromDecimal(after),
		"updated_at":     now,
	}); err != nil {
		return nil, ErrWalletTransactionCreateFailed
	}
	txn.Status = constants.WalletTxnStatusCompleted
	txn.BalanceBefore = models.NewMoneyFromDecimal(before)
	txn.BalanceAfter = models.NewMoneyFromDecimal(after)
	recordLedgerWrite(txn)
	return txn, nil
}

// FailTopupInTx 在事务内将待支付充值标记为失败
func (s *WalletService) FailTopupInTx(tx *gorm.DB, txnRowID uint) (*models.WalletTransaction, error) {
	txn, err := s.lockTopup(tx, txnRowID)
	if err != nil {
		return nil, err
	}
	if txn.Status != constants.WalletTxnStatusPending {
		return txn, nil
	}
	if err := s.walletRepo.WithTx(tx).UpdateTransaction(txn.ID, map[string]interface{}{
		"status":     constants.WalletTxnStatusFailed,
		"updated_at": time.Now(),
	}); err != nil {
		return nil, ErrWalletTransactionCreateFailed
	}
	txn.Status = constants.WalletTxnStatusFailed
	return txn, nil
}

// Reconcile 以已完成流水重算余额并与钱包余额比对
func (s *WalletService) Reconcile(userID uint) (*WalletReconcileResult, error) {
	wallet, err := s.walletRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	if wallet == nil {
		return nil, ErrWalletNotFound
	}
	sum, err := s.walletRepo.SumCompleted(wallet.ID)
	if err != nil {
		return nil, err
	}
	balance := wallet.Balance.Decimal.Round(2)
	drift := balance.Sub(sum).Round(2)
	result := &WalletReconcileResult{
		UserID:    userID,
		Balance:   balance,
		LedgerSum: sum.Round(2),
		Drift:     drift,
		Balanced:  drift.IsZero(),
	}
	if !result.Balanced {
		logger.Errorw("wallet_ledger_drift", "user_id", userID, "balance", balance.String(), "ledger_sum", sum.String())
	}
	return result, nil
}

func (s *WalletService) lockTopup(tx *gorm.DB, txnRowID uint) (*models.WalletTransaction, error) {
	if tx == nil || txnRowID == 0 {
		return nil, ErrWalletTopupNotFound
	}
	var row models.WalletTransaction
	if err := tx.First(&row, txnRowID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletTopupNotFound
		}
		return nil, err
	}
	txn, err := s.walletRepo.WithTx(tx).GetTransactionByTxnIDForUpdate(row.TxnID)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, ErrWalletTopupNotFound
	}
	return txn, nil
}

func (s *WalletService) getOrCreateWallet(userID uint) (*models.Wallet, error) {
	wallet, err := s.walletRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	if wallet != nil {
		return wallet, nil
	}
	wallet = &models.Wallet{
		UserID:   userID,
		Balance:  models.ZeroMoney(),
		IsActive: true,
	}
	if err := s.walletRepo.Create(wallet); err != nil {
		created, queryErr := s.walletRepo.GetByUserID(userID)
		if queryErr == nil && created != nil {
			return created, nil
		}
		return nil, ErrWalletAccountCreateFailed
	}
	return wallet, nil
}

func (s *WalletService) ensureWalletForUpdate(repo *repository.GormWalletRepository, userID uint, now time.Time) (*models.Wallet, error) {
	wallet, err := repo.GetByUserIDForUpdate(userID)
	if err != nil {
		return nil, err
	}
	if wallet != nil {
		return wallet, nil
	}
	wallet = &models.Wallet{
		UserID:    userID,
		Balance:   models.ZeroMoney(),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo.Create(wallet); err != nil {
		created, queryErr := repo.GetByUserIDForUpdate(userID)
		if queryErr == nil && created != nil {
			return created, nil
		}
		return nil, ErrWalletAccountCreateFailed
	}
	return wallet, nil
}

// generateWalletTxnID 生成交易号：前缀 + Unix 秒 + 8 位随机十六进制
func generateWalletTxnID(prefix string) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = constants.WalletTxnPrefixPayment
	}
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("%s%d%s", prefix, time.Now().Unix(), suffix)
}

func txnPrefixLabel(txnID string) string {
	for _, prefix := range []string{
		constants.WalletTxnPrefixPayment,
		constants.WalletTxnPrefixReferral,
		constants.WalletTxnPrefixCancelRefund,
		constants.WalletTxnPrefixReturnRefund,
	} {
		if strings.HasPrefix(txnID, prefix) {
			return prefix
		}
	}
	return "other"
}

func normalizeWalletCurrency(currency string) string {
	normalized := strings.ToUpper(strings.TrimSpace(currency))
	if normalized == "" {
		return walletDefaultCurrency
	}
	return normalized
}

func cleanWalletRemark(raw string, fallback string) string {
	remark := strings.TrimSpace(raw)
	if remark == "" {
		return fallback
	}
	return remark
}

func parseDecimalOr(raw string, fallback decimal.Decimal) decimal.Decimal {
	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || value.IsNegative() {
		return fallback
	}
	return value
}

// recordLedgerWrite 计数并写资金流水日志。
// 流水在事务内写入，事务回滚时日志仍保留这条记录，核对以数据库为准。
func recordLedgerWrite(txn *models.WalletTransaction) {
	metrics.WalletTransactions.WithLabelValues(txn.Type, txnPrefixLabel(txn.TxnID)).Inc()
	logger.Ledger().Infow("wallet_ledger_write",
		"txn_id", txn.TxnID,
		"user_id", txn.UserID,
		"type", txn.Type,
		"amount", txn.Amount.String(),
		"balance_before", txn.BalanceBefore.String(),
		"balance_after", txn.BalanceAfter.String(),
		"order_id", txn.OrderID,
	)
}
