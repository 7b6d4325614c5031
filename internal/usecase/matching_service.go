package usecase

import (
	"context"
	"log"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/TuanThanh1609/leparfurm/internal/domain"
)

// Budget answer labels; any other answer is a vibe token
const (
	TierBudget = "Budget"
	TierMid    = "Mid"
	TierLuxury = "Luxury"
)

// Default scoring weights and tier bounds, in whole VND
const (
	defaultTagWeight         = 2
	defaultBudgetBonus       = 3
	defaultPremiumBrandBonus = 1
	defaultBudgetMax         = 1_500_000 // exclusive
	defaultMidMin            = 1_000_000 // inclusive, overlaps the Budget tier
	defaultMidMax            = 3_000_000 // inclusive
	defaultLuxuryMin         = 3_000_000 // exclusive
	defaultTopN              = 5
	defaultWorkers           = 4

	// Below this many products, scoring runs on the calling goroutine
	parallelScoreThreshold = 256
)

// DefaultPremiumBrands lists brand names that earn the premium bonus
var DefaultPremiumBrands = []string{"Chanel", "Dior", "Tom Ford", "Creed", "Guerlain"}

// MatchConfig holds configuration for the matching service
type MatchConfig struct {
	TagWeight          int
	BudgetBonus        int
	PremiumBrandBonus  int
	BudgetMax          int64
	MidMin             int64
	MidMax             int64
	LuxuryMin          int64
	PremiumBrands      []string
	DefaultTopN        int
	Workers            int
	EnableDebugLogging bool
}

// DefaultMatchConfig returns the standard scoring weights, tier bounds and
// premium brand list
func DefaultMatchConfig() MatchConfig {
	return MatchConfig{
		TagWeight:         defaultTagWeight,
		BudgetBonus:       defaultBudgetBonus,
		PremiumBrandBonus: defaultPremiumBrandBonus,
		BudgetMax:         defaultBudgetMax,
		MidMin:            defaultMidMin,
		MidMax:            defaultMidMax,
		LuxuryMin:         defaultLuxuryMin,
		PremiumBrands:     append([]string(nil), DefaultPremiumBrands...),
		DefaultTopN:       defaultTopN,
		Workers:           defaultWorkers,
	}
}

// MatchingService scores catalog products against a preference profile.
// It holds no mutable state and is safe for concurrent use.
type MatchingService struct {
	tagWeight          int
	budgetBonus        int
	premiumBrandBonus  int
	budgetMax          int64
	midMin             int64
	midMax             int64
	luxuryMin          int64
	premiumBrands      []string // lowercased
	defaultTopN        int
	workers            int
	enableDebugLogging bool
}

// NewMatchingService creates a new matching service with the given configuration.
// Weights are used as given, so a zero weight switches that component off and a
// negative one counts as zero. Tier bounds, top N and workers fall back to
// the defaults when not positive.
func NewMatchingService(config MatchConfig) *MatchingService {
	s := &MatchingService{
		tagWeight:          config.TagWeight,
		budgetBonus:        config.BudgetBonus,
		premiumBrandBonus:  config.PremiumBrandBonus,
		budgetMax:          config.BudgetMax,
		midMin:             config.MidMin,
		midMax:             config.MidMax,
		luxuryMin:          config.LuxuryMin,
		defaultTopN:        config.DefaultTopN,
		workers:            config.Workers,
		enableDebugLogging: config.EnableDebugLogging,
	}

	s.tagWeight = max(s.tagWeight, 0)
	s.budgetBonus = max(s.budgetBonus, 0)
	s.premiumBrandBonus = max(s.premiumBrandBonus, 0)
	if s.budgetMax <= 0 {
		s.budgetMax = defaultBudgetMax
	}
	if s.midMin <= 0 {
		s.midMin = defaultMidMin
	}
	if s.midMax <= 0 {
		s.midMax = defaultMidMax
	}
	if s.luxuryMin <= 0 {
		s.luxuryMin = defaultLuxuryMin
	}
	if s.defaultTopN <= 0 {
		s.defaultTopN = defaultTopN
	}
	if s.workers <= 0 {
		s.workers = defaultWorkers
	}

	brands := config.PremiumBrands
	if len(brands) == 0 {
		brands = DefaultPremiumBrands
	}
	for _, b := range brands {
		if b = strings.ToLower(strings.TrimSpace(b)); b != "" {
			s.premiumBrands = append(s.premiumBrands, b)
		}
	}

	return s
}

// Profile is a preference profile split into its budget and vibe tokens
type Profile struct {
	Budget string   // empty when no budget answer was given
	Vibes  []string // in answer order, duplicates kept
}

// ParseProfile partitions answers. The first budget label is the budget
// token; later budget labels are ignored. Blank answers are dropped.
func ParseProfile(answers []string) Profile {
	var p Profile
	for _, a := range answers {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		if isTierLabel(a) {
			if p.Budget == "" {
				p.Budget = a
			}
			continue
		}
		p.Vibes = append(p.Vibes, a)
	}
	return p
}

func isTierLabel(s string) bool {
	return s == TierBudget || s == TierMid || s == TierLuxury
}

// Score returns the preference score of one product
func (s *MatchingService) Score(profile Profile, product *domain.CanonicalProduct) int {
	score := 0

	for _, vibe := range profile.Vibes {
		if product.HasTag(vibe) {
			score += s.tagWeight
		}
	}

	if profile.Budget != "" && s.priceInTier(profile.Budget, product.Price) {
		score += s.budgetBonus
	}

	if s.isPremiumBrand(product.Brand) {
		score += s.premiumBrandBonus
	}

	return score
}

// priceInTier reports whether price falls in the named tier. The Mid tier
// starts below the Budget tier's upper bound, so a price may be in both.
func (s *MatchingService) priceInTier(tier string, price int64) bool {
	switch tier {
	case TierBudget:
		return price < s.budgetMax
	case TierMid:
		return price >= s.midMin && price <= s.midMax
	case TierLuxury:
		return price > s.luxuryMin
	default:
		return false
	}
}

func (s *MatchingService) isPremiumBrand(brand string) bool {
	brand = strings.ToLower(brand)
	for _, premium := range s.premiumBrands {
		if strings.Contains(brand, premium) {
			return true
		}
	}
	return false
}

// Rank scores every product and returns the topN highest, ties in catalog
// order. topN <= 0 uses the configured default; a topN larger than the
// catalog returns every product.
func (s *MatchingService) Rank(
	ctx context.Context,
	answers []string,
	products []domain.CanonicalProduct,
	topN int,
) ([]domain.ScoredProduct, error) {
	if topN <= 0 {
		topN = s.defaultTopN
	}

	profile := ParseProfile(answers)
	if s.enableDebugLogging {
		log.Printf("[MATCH] Ranking %d products for budget=%q vibes=%v", len(products), profile.Budget, profile.Vibes)
	}

	scored, err := s.scoreAll(ctx, profile, products)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if topN < len(scored) {
		scored = scored[:topN]
	}

	if s.enableDebugLogging && len(scored) > 0 {
		log.Printf("[MATCH] Best match: %q (score %d)", scored[0].Product.Title, scored[0].Score)
	}

	return scored, nil
}

// scoreAll scores products into a slice aligned with the input. Large
// catalogs are split into contiguous chunks scored concurrently.
func (s *MatchingService) scoreAll(
	ctx context.Context,
	profile Profile,
	products []domain.CanonicalProduct,
) ([]domain.ScoredProduct, error) {
	scored := make([]domain.ScoredProduct, len(products))

	scoreRange := func(ctx context.Context, from, to int) error {
		for i := from; i < to; i++ {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			scored[i] = domain.ScoredProduct{
				Product: products[i],
				Score:   s.Score(profile, &products[i]),
			}
		}
		return nil
	}

	if len(products) < parallelScoreThreshold || s.workers == 1 {
		if err := scoreRange(ctx, 0, len(products)); err != nil {
			return nil, err
		}
		return scored, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	chunk := (len(products) + s.workers - 1) / s.workers
	for from := 0; from < len(products); from += chunk {
		from, to := from, min(from+chunk, len(products))
		g.Go(func() error {
			return scoreRange(gctx, from, to)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return scored, nil
}
