package repository

import (
	"strings"

	"github.com/dujiao-next/storefront/internal/models"

	"gorm.io/gorm"
)

// PaymentRepository 网关支付单数据访问接口
type PaymentRepository interface {
	Create(payment *models.GatewayPayment) error
	GetByGatewayOrderID(gatewayOrderID string) (*models.GatewayPayment, error)
	GetByGatewayOrderIDForUpdate(gatewayOrderID string) (*models.GatewayPayment, error)
	ListByOrderID(orderID uint) ([]models.GatewayPayment, error)
	UpdateFields(id uint, updates map[string]interface{}) error
	WithTx(tx *gorm.DB) *GormPaymentRepository
}

// GormPaymentRepository GORM 实现
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository 创建支付单仓库
func NewPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPaymentRepository) WithTx(tx *gorm.DB) *GormPaymentRepository {
	if tx == nil {
		return r
	}
	return &GormPaymentRepository{db: tx}
}

// Create 创建支付单
func (r *GormPaymentRepository) Create(payment *models.GatewayPayment) error {
	return r.db.Create(payment).Error
}

// GetByGatewayOrderID 根据网关订单号获取支付单
func (r *GormPaymentRepository) GetByGatewayOrderID(gatewayOrderID string) (*models.GatewayPayment, error) {
	gatewayOrderID = strings.TrimSpace(gatewayOrderID)
	if gatewayOrderID == "" {
		return nil, nil
	}
	return findOne[models.GatewayPayment](r.db.Where("gateway_order_id = ?", gatewayOrderID))
}

// GetByGatewayOrderIDForUpdate 根据网关订单号加锁获取支付单
func (r *GormPaymentRepository) GetByGatewayOrderIDForUpdate(gatewayOrderID string) (*models.GatewayPayment, error) {
	gatewayOrderID = strings.TrimSpace(gatewayOrderID)
	if gatewayOrderID == "" {
		return nil, nil
	}
	return findOne[models.GatewayPayment](forUpdate(r.db).
		Where("gateway_order_id = ?", gatewayOrderID))
}

// ListByOrderID 获取订单的全部支付单
func (r *GormPaymentRepository) ListByOrderID(orderID uint) ([]models.GatewayPayment, error) {
	var payments []models.GatewayPayment
	if orderID == 0 {
		return payments, nil
	}
	if err := r.db.Where("order_id = ?", orderID).Order("id desc").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// UpdateFields 更新支付单字段
func (r *GormPaymentRepository) UpdateFields(id uint, updates map[string]interface{}) error {
	if id == 0 || len(updates) == 0 {
		return nil
	}
	return r.db.Model(&models.GatewayPayment{}).Where("id = ?", id).Updates(updates).Error
}
