package models

import (
	"time"

	"gorm.io/gorm"
)

// ProductVariant 商品规格（价格与库存维度）
type ProductVariant struct {
	ID          uint           `gorm:"primarykey" json:"id"`                                      // 主键
	ProductID   uint           `gorm:"index;not null" json:"product_id"`                          // 商品ID
	Name        string         `gorm:"type:varchar(100)" json:"name"`                             // 规格名称（如颜色/尺码）
	SalePrice   Money          `gorm:"type:decimal(20,2);not null;default:0" json:"sale_price"`   // 售价
	ActualPrice Money          `gorm:"type:decimal(20,2);not null;default:0" json:"actual_price"` // 原价（MRP）
	Stock       int            `gorm:"not null;default:0" json:"stock"`                           // 可用库存
	IsActive    bool           `gorm:"not null;default:true;index" json:"is_active"`              // 是否启用
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                                   // 创建时间
	UpdatedAt   time.Time      `json:"updated_at"`                                                // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                            // 软删除时间

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"` // 关联商品
}

// TableName 指定表名
func (ProductVariant) TableName() string {
	return "product_variants"
}

// Purchasable 判断规格是否可售
func (v *ProductVariant) Purchasable() bool {
	if v == nil || !v.IsActive || v.DeletedAt.Valid {
		return false
	}
	if v.Product != nil && (!v.Product.IsActive || v.Product.DeletedAt.Valid) {
		return false
	}
	return true
}
