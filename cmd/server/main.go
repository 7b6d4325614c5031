package main

import (
	"fmt"
	"log"
	"os"

	"github.com/TuanThanh1609/leparfurm/config"
	httpDelivery "github.com/TuanThanh1609/leparfurm/internal/delivery/http"
	"github.com/TuanThanh1609/leparfurm/internal/infrastructure/cache"
	"github.com/TuanThanh1609/leparfurm/internal/infrastructure/store"
	"github.com/TuanThanh1609/leparfurm/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting Leparfurm catalog server v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)

	// The server only reads a catalog the pipeline already published
	catalog, err := store.LoadFile(cfg.Server.CatalogPath)
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}
	if catalog.Len() == 0 {
		log.Printf("WARNING: catalog %s is empty - match requests will fail", cfg.Server.CatalogPath)
	}

	memoryCache := cache.NewMemoryCache()
	defer memoryCache.Close()
	log.Printf("Cache TTL: %s", cfg.Cache.TTL)

	m := cfg.Matching
	recommender := usecase.NewRecommendationService(
		catalog,
		memoryCache,
		usecase.RecommendationServiceConfig{
			CacheTTL: cfg.Cache.TTL,
			Match: usecase.MatchConfig{
				TagWeight:          m.TagWeight,
				BudgetBonus:        m.BudgetBonus,
				PremiumBrandBonus:  m.PremiumBrandBonus,
				BudgetMax:          m.BudgetMax,
				MidMin:             m.MidMin,
				MidMax:             m.MidMax,
				LuxuryMin:          m.LuxuryMin,
				PremiumBrands:      m.PremiumBrands,
				DefaultTopN:        m.DefaultTopN,
				Workers:            m.Workers,
				EnableDebugLogging: m.EnableDebugLogging || cfg.Server.Environment == "development",
			},
		},
	)

	log.Printf("Matching: tag=%d budget=%d premium=%d top=%d workers=%d",
		m.TagWeight, m.BudgetBonus, m.PremiumBrandBonus, m.DefaultTopN, m.Workers)
	if cfg.RateLimit.PerIP > 0 {
		log.Printf("Rate limit: %d requests/minute per IP", cfg.RateLimit.PerIP)
	}

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(recommender)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
