package models

import (
	"time"

	"gorm.io/gorm"
)

// User 前台用户
type User struct {
	ID           uint           `gorm:"primarykey" json:"id"`              // 主键
	Email        string         `gorm:"uniqueIndex;not null" json:"email"` // 登录邮箱
	Name         string         `gorm:"type:varchar(100)" json:"name"`     // 昵称
	Phone        string         `gorm:"type:varchar(32)" json:"phone"`     // 手机号
	PasswordHash string         `gorm:"not null" json:"-"`                 // 密码哈希
	Status       string         `gorm:"index;not null" json:"status"`      // 状态（active/disabled）
	LastLoginAt  *time.Time     `json:"last_login_at"`                     // 最后登录时间
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`           // 创建时间
	UpdatedAt    time.Time      `gorm:"index" json:"updated_at"`           // 更新时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                    // 软删除时间
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}
