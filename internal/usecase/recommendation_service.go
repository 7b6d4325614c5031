package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/TuanThanh1609/leparfurm/internal/domain"
)

// RecommendationServiceConfig holds configuration for the recommendation service
type RecommendationServiceConfig struct {
	CacheTTL time.Duration
	Match    MatchConfig
}

// RecommendationService answers preference queries against a built catalog
type RecommendationService struct {
	catalog         domain.CatalogRepository
	cache           domain.CacheRepository
	matchingService *MatchingService
	cacheTTL        time.Duration
}

// NewRecommendationService creates a new recommendation service with dependencies.
// cache may be nil to disable result caching.
func NewRecommendationService(
	catalog domain.CatalogRepository,
	cache domain.CacheRepository,
	config RecommendationServiceConfig,
) *RecommendationService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 10 * time.Minute
	}

	return &RecommendationService{
		catalog:         catalog,
		cache:           cache,
		matchingService: NewMatchingService(config.Match),
		cacheTTL:        cacheTTL,
	}
}

// Recommend ranks the catalog for a set of answers.
// Flow: check cache -> load catalog -> rank -> cache -> return
func (s *RecommendationService) Recommend(
	ctx context.Context,
	request *domain.MatchRequest,
) ([]domain.ScoredProduct, error) {
	if request == nil || len(request.Answers) == 0 || request.Limit < 0 {
		return nil, domain.ErrInvalidRequest
	}

	cacheKey := s.generateCacheKey(request)

	// Try cache first
	if cached, err := s.getFromCache(ctx, cacheKey); err == nil {
		return cached, nil
	}

	products, err := s.catalog.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	if len(products) == 0 {
		return nil, domain.ErrEmptyCatalog
	}

	ranked, err := s.matchingService.Rank(ctx, request.Answers, products, request.Limit)
	if err != nil {
		return nil, err
	}

	if err := s.setInCache(ctx, cacheKey, ranked); err != nil {
		// A failed cache write only costs a recomputation next time
		log.Printf("[CACHE] Failed to store %s: %v", cacheKey, err)
	}

	return ranked, nil
}

// Product looks up one catalog product by id
func (s *RecommendationService) Product(ctx context.Context, id string) (*domain.CanonicalProduct, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.ErrInvalidRequest
	}
	return s.catalog.GetByID(ctx, id)
}

// ProductFilter narrows a catalog listing; empty fields match everything
type ProductFilter struct {
	Tag   string
	Brand string // case-insensitive substring
}

// Products lists catalog products matching filter, in catalog order
func (s *RecommendationService) Products(ctx context.Context, filter ProductFilter) ([]domain.CanonicalProduct, error) {
	products, err := s.catalog.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	tag := strings.TrimSpace(filter.Tag)
	brand := strings.ToLower(strings.TrimSpace(filter.Brand))
	if tag == "" && brand == "" {
		return products, nil
	}

	result := make([]domain.CanonicalProduct, 0, len(products))
	for i := range products {
		p := &products[i]
		if tag != "" && !p.HasTag(tag) {
			continue
		}
		if brand != "" && !strings.Contains(strings.ToLower(p.Brand), brand) {
			continue
		}
		result = append(result, *p)
	}
	return result, nil
}

// generateCacheKey creates a normalized cache key from a match request.
// Answers are JSON-encoded so an answer containing a comma cannot collide
// with two separate answers.
// Format: "match:["answer",...]:{limit}"
func (s *RecommendationService) generateCacheKey(request *domain.MatchRequest) string {
	answers := make([]string, 0, len(request.Answers))
	for _, a := range request.Answers {
		if a = strings.TrimSpace(a); a != "" {
			answers = append(answers, a)
		}
	}
	encoded, _ := json.Marshal(answers)
	return fmt.Sprintf("match:%s:%d", encoded, request.Limit)
}

// getFromCache retrieves a ranked list from cache
func (s *RecommendationService) getFromCache(ctx context.Context, key string) ([]domain.ScoredProduct, error) {
	if s.cache == nil {
		return nil, domain.ErrCacheMiss
	}

	data, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	var ranked []domain.ScoredProduct
	if err := json.Unmarshal(data, &ranked); err != nil {
		return nil, domain.ErrCacheMiss
	}
	return ranked, nil
}

// setInCache stores a ranked list in cache
func (s *RecommendationService) setInCache(ctx context.Context, key string, ranked []domain.ScoredProduct) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Set(ctx, key, ranked, s.cacheTTL)
}
