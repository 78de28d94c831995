package repository

import (
	"time"

	"github.com/dujiao-next/storefront/internal/constants"
	"github.com/dujiao-next/storefront/internal/models"

	"gorm.io/gorm"
)

// DashboardRepository 仪表盘聚合查询接口
// 说明：仅聚合统计数据，不承载业务规则。
type DashboardRepository interface {
	GetOverview(startAt, endAt time.Time) (DashboardOverviewRow, error)
	GetItemStatusBreakdown(startAt, endAt time.Time) ([]DashboardItemStatusRow, error)
	GetTopProducts(startAt, endAt time.Time, limit int) ([]DashboardProductRankingRow, error)
}

// DashboardOverviewRow 仪表盘总览原始统计结果
type DashboardOverviewRow struct {
	OrdersTotal       int64
	PaidOrders        int64
	GMVPaid           float64
	DiscountTotal     float64
	RefundedTotal     float64
	CancelledItems    int64
	PendingReturns    int64
	NewUsers          int64
	ActiveProducts    int64
	OutOfStockVariant int64
}

// DashboardItemStatusRow 订单项状态分布
type DashboardItemStatusRow struct {
	Status   string
	Items    int64
	Quantity int64
}

// DashboardProductRankingRow 商品排行原始行
type DashboardProductRankingRow struct {
	ProductID   uint
	ProductName string
	Orders      int64
	Quantity    int64
	Amount      float64
}

// GormDashboardRepository GORM 仪表盘聚合实现
type GormDashboardRepository struct {
	db *gorm.DB
}

// NewDashboardRepository 创建仪表盘仓库
func NewDashboardRepository(db *gorm.DB) *GormDashboardRepository {
	return &GormDashboardRepository{db: db}
}

// GetOverview 获取总览统计
func (r *GormDashboardRepository) GetOverview(startAt, endAt time.Time) (DashboardOverviewRow, error) {
	result := DashboardOverviewRow{}

	orderBase := func() *gorm.DB {
		return r.db.Model(&models.Order{}).
			Where("created_at >= ? AND created_at < ?", startAt, endAt)
	}

	if err := orderBase().Count(&result.OrdersTotal).Error; err != nil {
		return result, err
	}
	if err := orderBase().Where("is_paid = ?", true).Count(&result.PaidOrders).Error; err != nil {
		return result, err
	}

	var sums struct {
		GMVPaid       float64
		DiscountTotal float64
		RefundedTotal float64
	}
	if err := orderBase().
		Select(
			"COALESCE(SUM(CASE WHEN is_paid = ? THEN total_amount ELSE 0 END), 0) AS gmv_paid, "+
				"COALESCE(SUM(discount), 0) AS discount_total, "+
				"COALESCE(SUM(refunded_amount), 0) AS refunded_total",
			true,
		).
		Scan(&sums).Error; err != nil {
		return result, err
	}
	result.GMVPaid = sums.GMVPaid
	result.DiscountTotal = sums.DiscountTotal
	result.RefundedTotal = sums.RefundedTotal

	if err := r.db.Model(&models.OrderItem{}).
		Where("cancelled_at >= ? AND cancelled_at < ?", startAt, endAt).
		Count(&result.CancelledItems).Error; err != nil {
		return result, err
	}
	if err := r.db.Model(&models.ReturnRequest{}).
		Where("status = ?", constants.ReturnStatusPending).
		Count(&result.PendingReturns).Error; err != nil {
		return result, err
	}
	if err := r.db.Model(&models.User{}).
		Where("created_at >= ? AND created_at < ?", startAt, endAt).
		Count(&result.NewUsers).Error; err != nil {
		return result, err
	}
	if err := r.db.Model(&models.Product{}).
		Where("is_active = ?", true).
		Count(&result.ActiveProducts).Error; err != nil {
		return result, err
	}
	if err := r.db.Model(&models.ProductVariant{}).
		Where("is_active = ? AND stock <= 0", true).
		Count(&result.OutOfStockVariant).Error; err != nil {
		return result, err
	}
	return result, nil
}

// GetItemStatusBreakdown 统计时间范围内订单项状态分布
func (r *GormDashboardRepository) GetItemStatusBreakdown(startAt, endAt time.Time) ([]DashboardItemStatusRow, error) {
	var rows []DashboardItemStatusRow
	err := r.db.Model(&models.OrderItem{}).
		Select("status, COUNT(*) AS items, COALESCE(SUM(quantity), 0) AS quantity").
		Where("created_at >= ? AND created_at < ?", startAt, endAt).
		Group("status").
		Order("status ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// GetTopProducts 按成交金额统计商品排行，不含已取消与支付失败的订单项
func (r *GormDashboardRepository) GetTopProducts(startAt, endAt time.Time, limit int) ([]DashboardProductRankingRow, error) {
	if limit <= 0 {
		limit = 5
	}
	var rows []DashboardProductRankingRow
	err := r.db.Table("order_items").
		Select(
			"order_items.product_id AS product_id, "+
				"MAX(order_items.product_name) AS product_name, "+
				"COUNT(DISTINCT order_items.order_id) AS orders, "+
				"COALESCE(SUM(order_items.quantity), 0) AS quantity, "+
				"COALESCE(SUM(order_items.effective_price * order_items.quantity), 0) AS amount",
		).
		Where("order_items.created_at >= ? AND order_items.created_at < ?", startAt, endAt).
		Where("order_items.status NOT IN ?", []string{
			constants.OrderItemStatusCancelled,
			constants.OrderItemStatusPaymentFailed,
		}).
		Group("order_items.product_id").
		Order("amount DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
