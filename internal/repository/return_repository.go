package repository

import (
	"github.com/dujiao-next/storefront/internal/constants"
	"github.com/dujiao-next/storefront/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReturnRepository 退货申请数据访问接口
type ReturnRepository interface {
	Create(req *models.ReturnRequest) error
	GetByID(id uint) (*models.ReturnRequest, error)
	GetByIDForUpdate(id uint) (*models.ReturnRequest, error)
	GetPendingByItem(orderItemID uint) (*models.ReturnRequest, error)
	List(filter ReturnListFilter) ([]models.ReturnRequest, int64, error)
	UpdateFields(id uint, updates map[string]interface{}) error
	WithTx(tx *gorm.DB) *GormReturnRepository
}

// GormReturnRepository GORM 实现
type GormReturnRepository struct {
	db *gorm.DB
}

// NewReturnRepository 创建退货申请仓库
func NewReturnRepository(db *gorm.DB) *GormReturnRepository {
	return &GormReturnRepository{db: db}
}

// WithTx 绑定事务
func (r *GormReturnRepository) WithTx(tx *gorm.DB) *GormReturnRepository {
	if tx == nil {
		return r
	}
	return &GormReturnRepository{db: tx}
}

// Create 创建退货申请
func (r *GormReturnRepository) Create(req *models.ReturnRequest) error {
	return r.db.Omit(clause.Associations).Create(req).Error
}

// GetByID 根据 ID 获取退货申请
func (r *GormReturnRepository) GetByID(id uint) (*models.ReturnRequest, error) {
	if id == 0 {
		return nil, nil
	}
	return findOne[models.ReturnRequest](r.db.Preload("OrderItem").Where("id = ?", id))
}

// GetByIDForUpdate 加锁获取退货申请
func (r *GormReturnRepository) GetByIDForUpdate(id uint) (*models.ReturnRequest, error) {
	if id == 0 {
		return nil, nil
	}
	return findOne[models.ReturnRequest](forUpdate(r.db).Where("id = ?", id))
}

// GetPendingByItem 获取订单项待处理的退货申请
func (r *GormReturnRepository) GetPendingByItem(orderItemID uint) (*models.ReturnRequest, error) {
	return findOne[models.ReturnRequest](r.db.Where("order_item_id = ? AND status = ?", orderItemID, constants.ReturnStatusPending))
}

// List 分页查询退货申请
func (r *GormReturnRepository) List(filter ReturnListFilter) ([]models.ReturnRequest, int64, error) {
	query := r.db.Model(&models.ReturnRequest{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.OrderID != 0 {
		query = query.Where("order_id = ?", filter.OrderID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var reqs []models.ReturnRequest
	if err := query.Preload("OrderItem").Order("id desc").Find(&reqs).Error; err != nil {
		return nil, 0, err
	}
	return reqs, total, nil
}

// UpdateFields 更新退货申请字段
func (r *GormReturnRepository) UpdateFields(id uint, updates map[string]interface{}) error {
	if id == 0 || len(updates) == 0 {
		return nil
	}
	return r.db.Model(&models.ReturnRequest{}).Where("id = ?", id).Updates(updates).Error
}
