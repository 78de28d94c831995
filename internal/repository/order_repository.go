package repository

import (
	"strings"

	"github.com/dujiao-next/storefront/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderRepository 订单数据访问接口
type OrderRepository interface {
	Create(order *models.Order, items []models.OrderItem) error
	GetByID(id uint) (*models.Order, error)
	GetByIDForUpdate(id uint) (*models.Order, error)
	GetByIDAndUser(id uint, userID uint) (*models.Order, error)
	GetByOrderNo(orderNo string) (*models.Order, error)
	ListByUser(filter OrderListFilter) ([]models.Order, int64, error)
	ListAdmin(filter OrderListFilter) ([]models.Order, int64, error)
	UpdateFields(id uint, updates map[string]interface{}) error
	CountPaidByUser(userID uint) (int64, error)
	GetItem(itemID uint) (*models.OrderItem, error)
	GetItemForUpdate(itemID uint) (*models.OrderItem, error)
	ListItems(orderID uint) ([]models.OrderItem, error)
	UpdateItem(itemID uint, updates map[string]interface{}) error
	UpdateItemsByOrder(orderID uint, fromStatus string, updates map[string]interface{}) error
	UpdateItemPaymentByOrder(orderID uint, fromPaymentStatus, toPaymentStatus string) error
	WithTx(tx *gorm.DB) *GormOrderRepository
}

// GormOrderRepository GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderRepository) WithTx(tx *gorm.DB) *GormOrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

func withItems(query *gorm.DB) *gorm.DB {
	return query.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	})
}

// Create 创建订单与订单项
func (r *GormOrderRepository) Create(order *models.Order, items []models.OrderItem) error {
	if err := r.db.Omit(clause.Associations).Create(order).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].OrderID = order.ID
	}
	if len(items) > 0 {
		if err := r.db.Create(&items).Error; err != nil {
			return err
		}
	}
	order.Items = items
	return nil
}

// GetByID 根据 ID 获取订单
func (r *GormOrderRepository) GetByID(id uint) (*models.Order, error) {
	if id == 0 {
		return nil, nil
	}
	return findOne[models.Order](withItems(r.db).Preload("Coupon").Where("id = ?", id))
}

// GetByIDForUpdate 加锁获取订单（不预加载订单项）
func (r *GormOrderRepository) GetByIDForUpdate(id uint) (*models.Order, error) {
	if id == 0 {
		return nil, nil
	}
	return findOne[models.Order](forUpdate(r.db).Where("id = ?", id))
}

// GetByIDAndUser 获取用户订单详情
func (r *GormOrderRepository) GetByIDAndUser(id uint, userID uint) (*models.Order, error) {
	if id == 0 || userID == 0 {
		return nil, nil
	}
	return findOne[models.Order](withItems(r.db).Preload("Coupon").
		Where("id = ? AND user_id = ?", id, userID))
}

// GetByOrderNo 根据订单号获取订单
func (r *GormOrderRepository) GetByOrderNo(orderNo string) (*models.Order, error) {
	orderNo = strings.TrimSpace(orderNo)
	if orderNo == "" {
		return nil, nil
	}
	return findOne[models.Order](withItems(r.db).Where("order_no = ?", orderNo))
}

func applyOrderFilter(query *gorm.DB, filter OrderListFilter) *gorm.DB {
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	query = whereKeyword(query, filter.OrderNo, "order_no")
	if filter.PaymentMethod != "" {
		query = query.Where("payment_method = ?", filter.PaymentMethod)
	}
	if filter.IsPaid != nil {
		query = query.Where("is_paid = ?", *filter.IsPaid)
	}
	if filter.ItemStatus != "" {
		query = query.Where("EXISTS (SELECT 1 FROM order_items oi WHERE oi.order_id = orders.id AND oi.status = ?)", filter.ItemStatus)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}
	return query
}

// ListByUser 获取用户订单列表
func (r *GormOrderRepository) ListByUser(filter OrderListFilter) ([]models.Order, int64, error) {
	if filter.UserID == 0 {
		return []models.Order{}, 0, nil
	}
	return r.list(filter)
}

// ListAdmin 管理端订单列表
func (r *GormOrderRepository) ListAdmin(filter OrderListFilter) ([]models.Order, int64, error) {
	return r.list(filter)
}

func (r *GormOrderRepository) list(filter OrderListFilter) ([]models.Order, int64, error) {
	var orders []models.Order
	query := applyOrderFilter(r.db.Model(&models.Order{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	if err := withItems(query).Order("id desc").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// UpdateFields 更新订单字段
func (r *GormOrderRepository) UpdateFields(id uint, updates map[string]interface{}) error {
	if id == 0 || len(updates) == 0 {
		return nil
	}
	return r.db.Model(&models.Order{}).Where("id = ?", id).Updates(updates).Error
}

// CountPaidByUser 统计用户已支付订单数
func (r *GormOrderRepository) CountPaidByUser(userID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.Order{}).
		Where("user_id = ? AND is_paid = ?", userID, true).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GetItem 获取订单项
func (r *GormOrderRepository) GetItem(itemID uint) (*models.OrderItem, error) {
	if itemID == 0 {
		return nil, nil
	}
	return findOne[models.OrderItem](r.db.Where("id = ?", itemID))
}

// GetItemForUpdate 加锁获取订单项
func (r *GormOrderRepository) GetItemForUpdate(itemID uint) (*models.OrderItem, error) {
	if itemID == 0 {
		return nil, nil
	}
	return findOne[models.OrderItem](forUpdate(r.db).Where("id = ?", itemID))
}

// ListItems 获取订单全部订单项
func (r *GormOrderRepository) ListItems(orderID uint) ([]models.OrderItem, error) {
	var items []models.OrderItem
	if orderID == 0 {
		return items, nil
	}
	if err := r.db.Where("order_id = ?", orderID).Order("id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateItem 更新订单项字段
func (r *GormOrderRepository) UpdateItem(itemID uint, updates map[string]interface{}) error {
	if itemID == 0 || len(updates) == 0 {
		return nil
	}
	return r.db.Model(&models.OrderItem{}).Where("id = ?", itemID).Updates(updates).Error
}

// UpdateItemsByOrder 批量更新订单下处于指定状态的订单项，fromStatus 为空时更新全部
func (r *GormOrderRepository) UpdateItemsByOrder(orderID uint, fromStatus string, updates map[string]interface{}) error {
	if orderID == 0 || len(updates) == 0 {
		return nil
	}
	query := r.db.Model(&models.OrderItem{}).Where("order_id = ?", orderID)
	if fromStatus != "" {
		query = query.Where("status = ?", fromStatus)
	}
	return query.Updates(updates).Error
}

// UpdateItemPaymentByOrder 批量将订单下指定支付状态的订单项改为目标支付状态
func (r *GormOrderRepository) UpdateItemPaymentByOrder(orderID uint, fromPaymentStatus, toPaymentStatus string) error {
	if orderID == 0 || toPaymentStatus == "" {
		return nil
	}
	query := r.db.Model(&models.OrderItem{}).Where("order_id = ?", orderID)
	if fromPaymentStatus != "" {
		query = query.Where("payment_status = ?", fromPaymentStatus)
	}
	return query.Update("payment_status", toPaymentStatus).Error
}
