package service

import (
	"strings"
	"time"

	"github.com/dujiao-next/storefront/internal/constants"
	"github.com/dujiao-next/storefront/internal/models"
	"github.com/dujiao-next/storefront/internal/repository"

	"github.com/shopspring/decimal"
)

// OfferAdminService 促销管理服务
type OfferAdminService struct {
	repo         repository.PromotionRepository
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

// NewOfferAdminService 创建促销管理服务
func NewOfferAdminService(repo repository.PromotionRepository, productRepo repository.ProductRepository, categoryRepo repository.CategoryRepository) *OfferAdminService {
	return &OfferAdminService{repo: repo, productRepo: productRepo, categoryRepo: categoryRepo}
}

// OfferInput 创建/更新促销输入
type OfferInput struct {
	Name               string
	Scope              string
	TargetID           uint
	DiscountPercentage models.Money
	ValidFrom          time.Time
	ValidUntil         time.Time
	IsActive           *bool
}

// Create 创建促销
func (s *OfferAdminService) Create(input OfferInput) (*models.PromotionalOffer, error) {
	offer := &models.PromotionalOffer{IsActive: true}
	if err := s.apply(offer, input); err != nil {
		return nil, err
	}
	if err := s.repo.Create(offer); err != nil {
		return nil, err
	}
	if !offer.IsActive {
		// default:true 字段在创建时会忽略 false
		if err := s.repo.Update(offer); err != nil {
			return nil, err
		}
	}
	return offer, nil
}

// Update 更新促销
func (s *OfferAdminService) Update(id uint, input OfferInput) (*models.PromotionalOffer, error) {
	offer, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if offer == nil {
		return nil, ErrOfferNotFound
	}
	if err := s.apply(offer, input); err != nil {
		return nil, err
	}
	if err := s.repo.Update(offer); err != nil {
		return nil, err
	}
	return offer, nil
}

// Deactivate 停用促销
func (s *OfferAdminService) Deactivate(id uint) error {
	offer, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if offer == nil {
		return ErrOfferNotFound
	}
	offer.IsActive = false
	return s.repo.Update(offer)
}

// Delete 删除促销
func (s *OfferAdminService) Delete(id uint) error {
	offer, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if offer == nil {
		return ErrOfferNotFound
	}
	return s.repo.Delete(id)
}

// List 促销列表
func (s *OfferAdminService) List(filter repository.OfferListFilter) ([]models.PromotionalOffer, int64, error) {
	return s.repo.List(filter)
}

func (s *OfferAdminService) apply(offer *models.PromotionalOffer, input OfferInput) error {
	name := strings.TrimSpace(input.Name)
	if name == "" || input.TargetID == 0 {
		return ErrOfferInvalid
	}
	pct := input.DiscountPercentage.Decimal.Round(2)
	if !pct.IsPositive() || pct.GreaterThan(decimal.NewFromInt(100)) {
		return ErrOfferInvalid
	}
	if input.ValidFrom.IsZero() || input.ValidUntil.IsZero() || !input.ValidUntil.After(input.ValidFrom) {
		return ErrOfferInvalid
	}
	targetID := input.TargetID
	switch strings.ToLower(strings.TrimSpace(input.Scope)) {
	case constants.OfferScopeProduct:
		product, err := s.productRepo.GetByID(targetID)
		if err != nil {
			return err
		}
		if product == nil {
			return ErrProductNotFound
		}
		offer.Scope = constants.OfferScopeProduct
		offer.ProductID = &targetID
		offer.CategoryID = nil
	case constants.OfferScopeCategory:
		category, err := s.categoryRepo.GetByID(targetID)
		if err != nil {
			return err
		}
		if category == nil {
			return ErrCategoryNotFound
		}
		offer.Scope = constants.OfferScopeCategory
		offer.CategoryID = &targetID
		offer.ProductID = nil
	default:
		return ErrOfferInvalid
	}
	offer.Name = name
	offer.DiscountPercentage = models.NewMoneyFromDecimal(pct)
	offer.ValidFrom = input.ValidFrom
	offer.ValidUntil = input.ValidUntil
	if input.IsActive != nil {
		offer.IsActive = *input.IsActive
	}
	return nil
}
