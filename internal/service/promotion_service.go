package service

import (
	"time"

	"github.com/dujiao-next/storefront/internal/models"
	"github.com/dujiao-next/storefront/internal/pricing"
	"github.com/dujiao-next/storefront/internal/repository"

	"gorm.io/gorm"
)

// OfferService 促销解析服务
type OfferService struct {
	promotionRepo repository.PromotionRepository
}

// NewOfferService 创建促销解析服务
func NewOfferService(promotionRepo repository.PromotionRepository) *OfferService {
	return &OfferService{promotionRepo: promotionRepo}
}

// Resolve 解析商品在指定时刻生效的促销。
// 仅比较当前有效期内的商品级与分类级促销，不存在有效促销时返回无促销。
func (s *OfferService) Resolve(product *models.Product, at time.Time) (pricing.Offer, error) {
	if product == nil || product.ID == 0 {
		return pricing.NoOffer(), nil
	}
	productOffers, err := s.promotionRepo.ListActiveByProduct(product.ID, at)
	if err != nil {
		return pricing.NoOffer(), err
	}
	var categoryOffers []models.PromotionalOffer
	if product.CategoryID != 0 {
		categoryOffers, err = s.promotionRepo.ListActiveByCategory(product.CategoryID, at)
		if err != nil {
			return pricing.NoOffer(), err
		}
	}
	return pricing.PickBestOffer(toOfferCandidates(productOffers), toOfferCandidates(categoryOffers)), nil
}

// ResolveMany 批量解析商品促销，同一商品只查询一次
func (s *OfferService) ResolveMany(products []*models.Product, at time.Time) (map[uint]pricing.Offer, error) {
	result := make(map[uint]pricing.Offer, len(products))
	for _, product := range products {
		if product == nil {
			continue
		}
		if _, ok := result[product.ID]; ok {
			continue
		}
		offer, err := s.Resolve(product, at)
		if err != nil {
			return nil, err
		}
		result[product.ID] = offer
	}
	return result, nil
}

func toOfferCandidates(offers []models.PromotionalOffer) []pricing.OfferCandidate {
	candidates := make([]pricing.OfferCandidate, 0, len(offers))
	for _, offer := range offers {
		candidates = append(candidates, pricing.OfferCandidate{
			OfferID:    offer.ID,
			Percentage: offer.DiscountPercentage.Decimal,
		})
	}
	return candidates
}

// WithTx 返回绑定事务的促销解析服务
func (s *OfferService) WithTx(tx *gorm.DB) *OfferService {
	if tx == nil {
		return s
	}
	return &OfferService{promotionRepo: s.promotionRepo.WithTx(tx)}
}
