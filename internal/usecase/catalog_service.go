package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/TuanThanh1609/leparfurm/internal/domain"
	"github.com/TuanThanh1609/leparfurm/internal/infrastructure/source"
)

// SourceLoader reads and parses the raw inputs of a run
type SourceLoader interface {
	LoadCSV(ctx context.Context, path string, required []string) (*source.Result[domain.CSVRecord], error)
	LoadFeed(ctx context.Context, path string) (*source.Result[domain.FeedItem], error)
	LoadSnapshot(ctx context.Context, path string) (*source.Result[domain.SnapshotRecord], error)
}

// CatalogServiceConfig holds configuration for the catalog pipeline
type CatalogServiceConfig struct {
	CSVPath               string
	FeedPath              string // empty skips the feed
	SnapshotPath          string // non-empty selects snapshot mode
	PlaceholderImageToken string
	MinDescriptionLength  int
	InferVibeTags         bool
	EnableDebugLogging    bool
}

// CatalogService runs the reconciliation pipeline and publishes its result
type CatalogService struct {
	loader     SourceLoader
	normalizer *FieldNormalizer
	reconciler *Reconciler
	primary    domain.CatalogWriter
	secondary  []domain.CatalogWriter
	config     CatalogServiceConfig
}

// NewCatalogService creates a new catalog service. The primary writer
// publishes the catalog artifact; secondary writers produce extra exports
// and run first, so a failure there leaves the primary artifact untouched.
func NewCatalogService(
	loader SourceLoader,
	config CatalogServiceConfig,
	primary domain.CatalogWriter,
	secondary ...domain.CatalogWriter,
) *CatalogService {
	normalizer := NewFieldNormalizer(config.PlaceholderImageToken, config.EnableDebugLogging)
	extractor := NewAttributeExtractor(config.EnableDebugLogging)

	return &CatalogService{
		loader:     loader,
		normalizer: normalizer,
		reconciler: NewReconciler(extractor, normalizer, ReconcilerConfig{
			MinDescriptionLength: config.MinDescriptionLength,
			InferVibeTags:        config.InferVibeTags,
			EnableDebugLogging:   config.EnableDebugLogging,
		}),
		primary:   primary,
		secondary: secondary,
		config:    config,
	}
}

// Mode reports which source seeds the catalog for this configuration
func (s *CatalogService) Mode() domain.RunMode {
	if s.config.SnapshotPath != "" {
		return domain.RunModeSnapshot
	}
	return domain.RunModeExport
}

// sourceBatch is one source's normalized records in merge order
type sourceBatch struct {
	stats   domain.SourceStats
	records []domain.NormalizedRecord
	policy  MergePolicy
}

// Run builds the catalog and publishes it. Nothing is written unless the
// whole build succeeds.
func (s *CatalogService) Run(ctx context.Context) (*domain.RunReport, error) {
	products, report, err := s.Build(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.Publish(ctx, products); err != nil {
		return report, err
	}

	return report, nil
}

// Build reads every source, reconciles and validates, and returns the final
// catalog without publishing it.
// Flow: load all sources -> normalize -> seed -> merge -> validate
func (s *CatalogService) Build(ctx context.Context) ([]domain.CanonicalProduct, *domain.RunReport, error) {
	report := &domain.RunReport{
		RunID:     uuid.NewString(),
		Mode:      s.Mode(),
		StartedAt: time.Now(),
	}
	log.Printf("[PIPELINE] Run %s started in %s mode", report.RunID, report.Mode)

	// Every source is read before any merge so an unreadable one aborts cleanly
	batches, err := s.loadBatches(ctx)
	if err != nil {
		return nil, nil, err
	}

	catalog := NewCatalog()
	for i := range batches {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		b := &batches[i]
		b.stats.Inserted, b.stats.Merged = s.reconciler.Apply(catalog, b.records, b.policy)
		log.Printf("[MERGE] %s: %d inserted, %d merged", b.stats.Source, b.stats.Inserted, b.stats.Merged)
		report.Sources = append(report.Sources, b.stats)
	}

	products, dropped := Validate(catalog.Products())
	report.Filtered = dropped
	report.Final = len(products)
	report.Duration = time.Since(report.StartedAt)

	log.Printf("[PIPELINE] Run %s built %d products (%d dropped by filter) in %s",
		report.RunID, report.Final, report.Filtered, report.Duration)

	return products, report, nil
}

// loadBatches parses the sources for the current run mode, in priority order
func (s *CatalogService) loadBatches(ctx context.Context) ([]sourceBatch, error) {
	var batches []sourceBatch

	csvColumns := source.SeedColumns
	csvPolicy := LongerWins
	if s.Mode() == domain.RunModeSnapshot {
		snapshot, err := s.loader.LoadSnapshot(ctx, s.config.SnapshotPath)
		if err != nil {
			return nil, err
		}
		batches = append(batches, s.normalizeBatch(domain.ProvenanceBackup, snapshot.Skipped, len(snapshot.Records), LongerWins,
			func(emit func(domain.NormalizedRecord)) {
				for _, r := range snapshot.Records {
					emit(s.normalizer.FromSnapshot(r))
				}
			}))

		csvColumns = source.RefreshColumns
		csvPolicy = RefreshDescription
	}

	csv, err := s.loader.LoadCSV(ctx, s.config.CSVPath, csvColumns)
	if err != nil {
		return nil, err
	}
	batches = append(batches, s.normalizeBatch(domain.ProvenanceCSV, csv.Skipped, len(csv.Records), csvPolicy,
		func(emit func(domain.NormalizedRecord)) {
			for _, r := range csv.Records {
				emit(s.normalizer.FromCSV(r))
			}
		}))

	if s.config.FeedPath != "" {
		feed, err := s.loader.LoadFeed(ctx, s.config.FeedPath)
		if err != nil {
			return nil, err
		}
		batches = append(batches, s.normalizeBatch(domain.ProvenanceXML, feed.Skipped, len(feed.Records), LongerWins,
			func(emit func(domain.NormalizedRecord)) {
				for _, r := range feed.Records {
					emit(s.normalizer.FromFeed(r))
				}
			}))
	}

	return batches, nil
}

// normalizeBatch collects normalized records, dropping any whose id
// normalized to empty.
func (s *CatalogService) normalizeBatch(
	src domain.Provenance,
	skipped, size int,
	policy MergePolicy,
	each func(emit func(domain.NormalizedRecord)),
) sourceBatch {
	batch := sourceBatch{
		stats:   domain.SourceStats{Source: src, Skipped: skipped},
		records: make([]domain.NormalizedRecord, 0, size),
		policy:  policy,
	}
	each(func(rec domain.NormalizedRecord) {
		if rec.ID == "" {
			batch.stats.Skipped++
			return
		}
		batch.records = append(batch.records, rec)
	})
	batch.stats.Parsed = len(batch.records)
	return batch
}

// Publish writes the catalog with every secondary writer, then the primary one
func (s *CatalogService) Publish(ctx context.Context, products []domain.CanonicalProduct) error {
	for _, w := range s.secondary {
		if err := w.Write(ctx, products); err != nil {
			return fmt.Errorf("export %s: %w", w.Name(), err)
		}
		log.Printf("[EXPORT] %s: wrote %d products", w.Name(), len(products))
	}

	if s.primary == nil {
		return nil
	}
	if err := s.primary.Write(ctx, products); err != nil {
		return fmt.Errorf("publish %s: %w", s.primary.Name(), err)
	}
	log.Printf("[EXPORT] %s: published %d products", s.primary.Name(), len(products))
	return nil
}
