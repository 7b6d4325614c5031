package usecase

import (
	"context"
	"fmt"
	"reflect"
	"testing"

	"github.com/TuanThanh1609/leparfurm/internal/domain"
)

func product(id string, price int64, brand string, tags ...string) domain.CanonicalProduct {
	if tags == nil {
		tags = []string{}
	}
	return domain.CanonicalProduct{
		ID:         id,
		Title:      id,
		Brand:      brand,
		Price:      price,
		Attributes: domain.Attributes{Tags: tags},
	}
}

func TestParseProfile(t *testing.T) {
	tests := []struct {
		name    string
		answers []string
		want    Profile
	}{
		{
			name:    "budget and vibes",
			answers: []string{"Fresh", "Budget", "Office"},
			want:    Profile{Budget: "Budget", Vibes: []string{"Fresh", "Office"}},
		},
		{
			name:    "first budget label wins",
			answers: []string{"Luxury", "Fresh", "Budget"},
			want:    Profile{Budget: "Luxury", Vibes: []string{"Fresh"}},
		},
		{
			name:    "blank answers are dropped",
			answers: []string{"  ", "Sweet ", ""},
			want:    Profile{Vibes: []string{"Sweet"}},
		},
		{
			name:    "duplicate vibes are kept",
			answers: []string{"Fresh", "Fresh"},
			want:    Profile{Vibes: []string{"Fresh", "Fresh"}},
		},
		{
			name:    "labels are case-sensitive",
			answers: []string{"budget"},
			want:    Profile{Vibes: []string{"budget"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseProfile(tt.answers)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseProfile(%v) = %+v, want %+v", tt.answers, got, tt.want)
			}
		})
	}
}

func TestMatchingService_Score(t *testing.T) {
	service := NewMatchingService(DefaultMatchConfig())

	tests := []struct {
		name    string
		answers []string
		product domain.CanonicalProduct
		want    int
	}{
		{"tag and budget", []string{"Fresh", "Budget"}, product("a", 900000, "Maison", "Fresh"), 5},
		{"tag only", []string{"Fresh", "Budget"}, product("a", 2000000, "Maison", "Fresh"), 2},
		{"no match", []string{"Woody"}, product("a", 900000, "Maison", "Fresh"), 0},
		{"zero price is budget", []string{"Budget"}, product("a", 0, "Maison"), 3},
		{"budget upper bound is exclusive", []string{"Budget"}, product("a", 1500000, "Maison"), 0},
		{"price in budget and mid: budget", []string{"Budget"}, product("a", 1200000, "Maison"), 3},
		{"price in budget and mid: mid", []string{"Mid"}, product("a", 1200000, "Maison"), 3},
		{"mid lower bound is inclusive", []string{"Mid"}, product("a", 1000000, "Maison"), 3},
		{"mid upper bound is inclusive", []string{"Mid"}, product("a", 3000000, "Maison"), 3},
		{"luxury lower bound is exclusive", []string{"Luxury"}, product("a", 3000000, "Maison"), 0},
		{"luxury", []string{"Luxury"}, product("a", 3000001, "Maison"), 3},
		{"premium brand", []string{"Floral"}, product("a", 5000000, "Chanel"), 1},
		{"premium brand substring, any case", []string{}, product("a", 5000000, "TOM FORD Private Blend"), 1},
		{"duplicate vibe counts twice", []string{"Fresh", "Fresh"}, product("a", 5000000, "Maison", "Fresh"), 4},
		{"all components", []string{"Floral", "Sweet", "Luxury"}, product("a", 4500000, "Dior", "Floral", "Sweet"), 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.product
			got := service.Score(ParseProfile(tt.answers), &p)
			if got != tt.want {
				t.Errorf("Score() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMatchingService_CustomConfig(t *testing.T) {
	config := DefaultMatchConfig()
	config.TagWeight = 5
	config.BudgetBonus = 1
	config.BudgetMax = 500000
	config.PremiumBrands = []string{" Maison "}
	service := NewMatchingService(config)

	p := product("a", 400000, "maison hồng", "Fresh")
	if got := service.Score(ParseProfile([]string{"Fresh", "Budget"}), &p); got != 7 {
		t.Errorf("Score() = %d, want 7", got)
	}

	chanel := product("b", 400000, "Chanel")
	if got := service.Score(Profile{}, &chanel); got != 0 {
		t.Errorf("Score() for brand outside custom list = %d, want 0", got)
	}
}

func TestMatchingService_ZeroWeightDisablesComponent(t *testing.T) {
	p := product("a", 900000, "Chanel", "Fresh")
	profile := ParseProfile([]string{"Fresh", "Budget"})

	tests := []struct {
		name   string
		mutate func(c *MatchConfig)
		want   int
	}{
		{"defaults", func(c *MatchConfig) {}, 6},
		{"no premium bonus", func(c *MatchConfig) { c.PremiumBrandBonus = 0 }, 5},
		{"no budget bonus", func(c *MatchConfig) { c.BudgetBonus = 0 }, 3},
		{"no tag weight", func(c *MatchConfig) { c.TagWeight = 0 }, 4},
		{"negative weight counts as zero", func(c *MatchConfig) { c.TagWeight = -2 }, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultMatchConfig()
			tt.mutate(&config)
			if got := NewMatchingService(config).Score(profile, &p); got != tt.want {
				t.Errorf("Score() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMatchingService_Rank(t *testing.T) {
	config := DefaultMatchConfig()
	config.DefaultTopN = 2
	service := NewMatchingService(config)
	ctx := context.Background()

	products := []domain.CanonicalProduct{
		product("woody", 2500000, "Maison", "Woody"),
		product("citrus-day", 900000, "Maison", "Fresh"),
		product("oud", 5000000, "Tom Ford", "Woody"),
		product("sea-breeze", 1100000, "Maison", "Fresh"),
	}

	tests := []struct {
		name    string
		answers []string
		topN    int
		wantIDs []string
	}{
		{"ties keep catalog order", []string{"Fresh", "Budget"}, 10, []string{"citrus-day", "sea-breeze", "oud", "woody"}},
		{"top N truncates", []string{"Fresh", "Budget"}, 1, []string{"citrus-day"}},
		{"zero uses default", []string{"Fresh", "Budget"}, 0, []string{"citrus-day", "sea-breeze"}},
		{"negative uses default", []string{"Woody"}, -3, []string{"oud", "woody"}},
		{"all zero scores keep catalog order", []string{"Sweet"}, 10, []string{"oud", "woody", "citrus-day", "sea-breeze"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ranked, err := service.Rank(ctx, tt.answers, products, tt.topN)
			if err != nil {
				t.Fatalf("Rank() error = %v", err)
			}
			var ids []string
			for _, r := range ranked {
				ids = append(ids, r.Product.ID)
			}
			if !reflect.DeepEqual(ids, tt.wantIDs) {
				t.Errorf("Rank() ids = %v, want %v", ids, tt.wantIDs)
			}
			for i := 1; i < len(ranked); i++ {
				if ranked[i].Score > ranked[i-1].Score {
					t.Errorf("Rank() not sorted at %d: %d > %d", i, ranked[i].Score, ranked[i-1].Score)
				}
			}
		})
	}
}

func TestMatchingService_Rank_Empty(t *testing.T) {
	service := NewMatchingService(DefaultMatchConfig())
	ranked, err := service.Rank(context.Background(), []string{"Fresh"}, nil, 5)
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	if len(ranked) != 0 {
		t.Errorf("Rank() = %v, want empty", ranked)
	}
}

func withWorkers(n int) MatchConfig {
	config := DefaultMatchConfig()
	config.Workers = n
	return config
}

func largeCatalog(n int) []domain.CanonicalProduct {
	vibes := []string{"Fresh", "Floral", "Woody", "Sweet", "Spicy"}
	brands := []string{"Maison", "Chanel", "Local", "Dior"}
	products := make([]domain.CanonicalProduct, n)
	for i := range products {
		products[i] = product(
			fmt.Sprintf("p%04d", i),
			int64(i%7)*700000,
			brands[i%len(brands)],
			vibes[i%len(vibes)], vibes[(i/3)%len(vibes)],
		)
	}
	return products
}

func TestMatchingService_Rank_ParallelMatchesSequential(t *testing.T) {
	products := largeCatalog(1000)
	answers := []string{"Fresh", "Woody", "Mid"}
	ctx := context.Background()

	sequential, err := NewMatchingService(withWorkers(1)).Rank(ctx, answers, products, len(products))
	if err != nil {
		t.Fatalf("sequential Rank() error = %v", err)
	}
	parallel, err := NewMatchingService(withWorkers(8)).Rank(ctx, answers, products, len(products))
	if err != nil {
		t.Fatalf("parallel Rank() error = %v", err)
	}

	if len(parallel) != len(sequential) {
		t.Fatalf("len = %d, want %d", len(parallel), len(sequential))
	}
	for i := range sequential {
		if parallel[i].Product.ID != sequential[i].Product.ID || parallel[i].Score != sequential[i].Score {
			t.Fatalf("position %d: parallel %s/%d, sequential %s/%d", i,
				parallel[i].Product.ID, parallel[i].Score, sequential[i].Product.ID, sequential[i].Score)
		}
	}
}

func TestMatchingService_Rank_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, workers := range []int{1, 4} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			service := NewMatchingService(withWorkers(workers))
			_, err := service.Rank(ctx, []string{"Fresh"}, largeCatalog(500), 5)
			if err != context.Canceled {
				t.Errorf("Rank() error = %v, want context.Canceled", err)
			}
		})
	}
}
