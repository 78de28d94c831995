package repository

import (
	"strings"
	"time"

	"github.com/dujiao-next/storefront/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReferralRepository 邀请数据访问接口
type ReferralRepository interface {
	GetByIDForUpdate(id uint) (*models.Referral, error)
	GetByCode(code string) (*models.Referral, error)
	GetByCodeForUpdate(code string) (*models.Referral, error)
	GetUnusedByReferrer(referrerID uint) (*models.Referral, error)
	GetByReferredUser(userID uint) (*models.Referral, error)
	GetByReferredUserForUpdate(userID uint) (*models.Referral, error)
	Create(referral *models.Referral) error
	UpdateFields(id uint, updates map[string]interface{}) error
	List(filter ReferralListFilter) ([]models.Referral, int64, error)
	ListPendingRewards(limit int) ([]models.Referral, error)
	GetOfferByID(id uint) (*models.ReferralOffer, error)
	GetActiveOffer(now time.Time) (*models.ReferralOffer, error)
	CreateOffer(offer *models.ReferralOffer) error
	UpdateOffer(offer *models.ReferralOffer) error
	ListOffers() ([]models.ReferralOffer, error)
	WithTx(tx *gorm.DB) *GormReferralRepository
}

// GormReferralRepository GORM 实现
type GormReferralRepository struct {
	db *gorm.DB
}

// NewReferralRepository 创建邀请仓库
func NewReferralRepository(db *gorm.DB) *GormReferralRepository {
	return &GormReferralRepository{db: db}
}

// WithTx 绑定事务
func (r *GormReferralRepository) WithTx(tx *gorm.DB) *GormReferralRepository {
	if tx == nil {
		return r
	}
	return &GormReferralRepository{db: tx}
}

func (r *GormReferralRepository) first(query *gorm.DB) (*models.Referral, error) {
	return findOne[models.Referral](query.Preload("Offer"))
}

// GetByIDForUpdate 根据 ID 加锁获取
func (r *GormReferralRepository) GetByIDForUpdate(id uint) (*models.Referral, error) {
	if id == 0 {
		return nil, nil
	}
	return r.first(forUpdate(r.db).Where("id = ?", id))
}

// GetByCode 根据邀请码获取
func (r *GormReferralRepository) GetByCode(code string) (*models.Referral, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, nil
	}
	return r.first(r.db.Where("code = ?", code))
}

// GetByCodeForUpdate 根据邀请码加锁获取
func (r *GormReferralRepository) GetByCodeForUpdate(code string) (*models.Referral, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, nil
	}
	return r.first(forUpdate(r.db).Where("code = ?", code))
}

// GetUnusedByReferrer 获取邀请人尚未被使用的邀请码
func (r *GormReferralRepository) GetUnusedByReferrer(referrerID uint) (*models.Referral, error) {
	if referrerID == 0 {
		return nil, nil
	}
	return r.first(r.db.Where("referrer_id = ? AND is_used = ?", referrerID, false).Order("id desc"))
}

// GetByReferredUser 获取用户作为被邀请人的记录
func (r *GormReferralRepository) GetByReferredUser(userID uint) (*models.Referral, error) {
	if userID == 0 {
		return nil, nil
	}
	return r.first(r.db.Where("referred_user_id = ?", userID))
}

// GetByReferredUserForUpdate 加锁获取用户作为被邀请人的记录
func (r *GormReferralRepository) GetByReferredUserForUpdate(userID uint) (*models.Referral, error) {
	if userID == 0 {
		return nil, nil
	}
	return r.first(forUpdate(r.db).Where("referred_user_id = ?", userID))
}

// Create 创建邀请记录
func (r *GormReferralRepository) Create(referral *models.Referral) error {
	return r.db.Omit(clause.Associations).Create(referral).Error
}

// UpdateFields 更新邀请记录字段
func (r *GormReferralRepository) UpdateFields(id uint, updates map[string]interface{}) error {
	if id == 0 || len(updates) == 0 {
		return nil
	}
	return r.db.Model(&models.Referral{}).Where("id = ?", id).Updates(updates).Error
}

// List 分页查询邀请记录
func (r *GormReferralRepository) List(filter ReferralListFilter) ([]models.Referral, int64, error) {
	query := r.db.Model(&models.Referral{})
	if filter.ReferrerID != 0 {
		query = query.Where("referrer_id = ?", filter.ReferrerID)
	}
	if filter.IsUsed != nil {
		query = query.Where("is_used = ?", *filter.IsUsed)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var referrals []models.Referral
	if err := query.Preload("Offer").Order("id desc").Find(&referrals).Error; err != nil {
		return nil, 0, err
	}
	return referrals, total, nil
}

// ListPendingRewards 获取已使用但奖励未发放完整的邀请记录
func (r *GormReferralRepository) ListPendingRewards(limit int) ([]models.Referral, error) {
	if limit <= 0 {
		limit = 100
	}
	var referrals []models.Referral
	if err := r.db.
		Where("is_used = ? AND referred_user_id IS NOT NULL", true).
		Where("reward_given_to_referrer = ? OR reward_given_to_referred = ?", false, false).
		Order("id asc").
		Limit(limit).
		Find(&referrals).Error; err != nil {
		return nil, err
	}
	return referrals, nil
}

// GetOfferByID 获取奖励方案
func (r *GormReferralRepository) GetOfferByID(id uint) (*models.ReferralOffer, error) {
	if id == 0 {
		return nil, nil
	}
	return findOne[models.ReferralOffer](r.db.Where("id = ?", id))
}

// GetActiveOffer 获取当前生效的奖励方案（最新创建者优先）
func (r *GormReferralRepository) GetActiveOffer(now time.Time) (*models.ReferralOffer, error) {
	return findOne[models.ReferralOffer](r.db.
		Where("is_active = ? AND valid_from <= ?", true, now).
		Where("valid_until IS NULL OR valid_until >= ?", now).
		Order("id desc"))
}

// CreateOffer 创建奖励方案
func (r *GormReferralRepository) CreateOffer(offer *models.ReferralOffer) error {
	return r.db.Create(offer).Error
}

// UpdateOffer 更新奖励方案
func (r *GormReferralRepository) UpdateOffer(offer *models.ReferralOffer) error {
	return r.db.Save(offer).Error
}

// ListOffers 获取全部奖励方案
func (r *GormReferralRepository) ListOffers() ([]models.ReferralOffer, error) {
	var offers []models.ReferralOffer
	if err := r.db.Order("id desc").Find(&offers).Error; err != nil {
		return nil, err
	}
	return offers, nil
}
