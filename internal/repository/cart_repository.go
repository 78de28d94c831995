package repository

import (
	"github.com/dujiao-next/storefront/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartRepository 购物车数据访问接口
type CartRepository interface {
	GetByUser(userID uint) (*models.Cart, error)
	GetByUserForUpdate(userID uint) (*models.Cart, error)
	Create(cart *models.Cart) error
	SaveTotals(cart *models.Cart) error
	GetItem(cartID, variantID uint) (*models.CartItem, error)
	UpsertItem(item *models.CartItem) error
	DeleteItem(cartID, variantID uint) error
	ClearItems(cartID uint) error
	WithTx(tx *gorm.DB) *GormCartRepository
}

// GormCartRepository GORM 实现
type GormCartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓库
func NewCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCartRepository) WithTx(tx *gorm.DB) *GormCartRepository {
	if tx == nil {
		return r
	}
	return &GormCartRepository{db: tx}
}

func withCartItems(query *gorm.DB) *gorm.DB {
	return query.
		Preload("Coupon").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Preload("Items.Variant").
		Preload("Items.Variant.Product")
}

// GetByUser 获取用户购物车（含购物车项与规格）
func (r *GormCartRepository) GetByUser(userID uint) (*models.Cart, error) {
	if userID == 0 {
		return nil, nil
	}
	return findOne[models.Cart](withCartItems(r.db).Where("user_id = ?", userID))
}

// GetByUserForUpdate 加锁获取用户购物车
func (r *GormCartRepository) GetByUserForUpdate(userID uint) (*models.Cart, error) {
	if userID == 0 {
		return nil, nil
	}
	return findOne[models.Cart](withCartItems(forUpdate(r.db)).
		Where("user_id = ?", userID))
}

// Create 创建购物车
func (r *GormCartRepository) Create(cart *models.Cart) error {
	return r.db.Omit(clause.Associations).Create(cart).Error
}

// SaveTotals 保存购物车金额与优惠券，不级联保存购物车项
func (r *GormCartRepository) SaveTotals(cart *models.Cart) error {
	if cart == nil || cart.ID == 0 {
		return nil
	}
	return r.db.Model(&models.Cart{}).Where("id = ?", cart.ID).Updates(map[string]interface{}{
		"coupon_id":             cart.CouponID,
		"total_actual_price":    cart.TotalActualPrice,
		"total_sale_price":      cart.TotalSalePrice,
		"total_normal_discount": cart.TotalNormalDiscount,
		"total_offer_discount":  cart.TotalOfferDiscount,
		"subtotal_after_offers": cart.SubtotalAfterOffers,
		"delivery_charge":       cart.DeliveryCharge,
		"grand_total":           cart.GrandTotal,
		"coupon_discount":       cart.CouponDiscount,
		"payable_amount":        cart.PayableAmount,
		"updated_at":            cart.UpdatedAt,
	}).Error
}

// GetItem 获取购物车项
func (r *GormCartRepository) GetItem(cartID, variantID uint) (*models.CartItem, error) {
	return findOne[models.CartItem](r.db.Where("cart_id = ? AND variant_id = ?", cartID, variantID))
}

// UpsertItem 添加或更新购物车项
func (r *GormCartRepository) UpsertItem(item *models.CartItem) error {
	if item == nil {
		return nil
	}
	existing, err := r.GetItem(item.CartID, item.VariantID)
	if err != nil {
		return err
	}
	if existing == nil {
		return r.db.Omit(clause.Associations).Create(item).Error
	}
	item.ID = existing.ID
	updates := map[string]interface{}{
		"quantity":   item.Quantity,
		"updated_at": item.UpdatedAt,
	}
	return r.db.Model(existing).Updates(updates).Error
}

// DeleteItem 删除购物车项
func (r *GormCartRepository) DeleteItem(cartID, variantID uint) error {
	return r.db.Where("cart_id = ? AND variant_id = ?", cartID, variantID).Delete(&models.CartItem{}).Error
}

// ClearItems 清空购物车项
func (r *GormCartRepository) ClearItems(cartID uint) error {
	return r.db.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error
}
