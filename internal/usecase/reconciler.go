package usecase

import (
	"log"
	"unicode/utf8"

	"github.com/TuanThanh1609/leparfurm/internal/domain"
)

// MergePolicy decides which fields an existing product takes from a
// lower-priority record
type MergePolicy int

const (
	// LongerWins applies every field rule; the description is replaced when
	// the incoming one is strictly longer
	LongerWins MergePolicy = iota
	// RefreshDescription only refreshes the description, and the attributes
	// derived from it, when the current one is empty or shorter than the
	// minimum length. Price, image, provenance and the other fields are left
	// alone. Used when the export refreshes a snapshot.
	RefreshDescription
)

// Catalog is the reconciliation engine's working set: products keyed by id,
// kept in first-seen order. Only the Reconciler writes to it.
type Catalog struct {
	index    map[string]int
	products []domain.CanonicalProduct
}

// NewCatalog creates an empty catalog
func NewCatalog() *Catalog {
	return &Catalog{index: make(map[string]int)}
}

// Get returns the product stored under id for in-place mutation
func (c *Catalog) Get(id string) (*domain.CanonicalProduct, bool) {
	i, ok := c.index[id]
	if !ok {
		return nil, false
	}
	return &c.products[i], true
}

// Len returns the number of products in the catalog
func (c *Catalog) Len() int {
	return len(c.products)
}

// Products returns a copy of the catalog in insertion order
func (c *Catalog) Products() []domain.CanonicalProduct {
	out := make([]domain.CanonicalProduct, len(c.products))
	copy(out, c.products)
	return out
}

func (c *Catalog) insert(p domain.CanonicalProduct) {
	c.index[p.ID] = len(c.products)
	c.products = append(c.products, p)
}

// ReconcilerConfig holds configuration for the reconciliation engine
type ReconcilerConfig struct {
	MinDescriptionLength int
	InferVibeTags        bool
	EnableDebugLogging   bool
}

// Reconciler merges normalized records from several sources into a Catalog
type Reconciler struct {
	extractor            *AttributeExtractor
	normalizer           *FieldNormalizer
	minDescriptionLength int
	inferVibeTags        bool
	enableDebugLogging   bool
}

// NewReconciler creates a reconciliation engine
func NewReconciler(extractor *AttributeExtractor, normalizer *FieldNormalizer, config ReconcilerConfig) *Reconciler {
	return &Reconciler{
		extractor:            extractor,
		normalizer:           normalizer,
		minDescriptionLength: config.MinDescriptionLength,
		inferVibeTags:        config.InferVibeTags,
		enableDebugLogging:   config.EnableDebugLogging,
	}
}

// Apply folds one source's records into the catalog. New ids are inserted
// whatever the policy; existing ids are merged field by field. Seeding is
// Apply on an empty catalog.
func (r *Reconciler) Apply(catalog *Catalog, records []domain.NormalizedRecord, policy MergePolicy) (inserted, merged int) {
	for _, rec := range records {
		if rec.ID == "" {
			continue
		}

		current, exists := catalog.Get(rec.ID)
		if !exists {
			catalog.insert(r.newProduct(rec))
			inserted++
			continue
		}

		r.merge(current, rec, policy)
		merged++
	}
	return inserted, merged
}

// newProduct creates a canonical record from the first record seen for an id
func (r *Reconciler) newProduct(rec domain.NormalizedRecord) domain.CanonicalProduct {
	p := domain.CanonicalProduct{
		ID:          rec.ID,
		Title:       rec.Title,
		Brand:       rec.Brand,
		Price:       rec.Price,
		Image:       rec.Image,
		Link:        rec.Link,
		Description: rec.Description,
		Category:    rec.Category,
		Attributes:  rec.Carried,
		Provenance:  rec.Source,
	}
	if p.Brand == "" {
		p.Brand = domain.UnknownBrand
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}

	// A snapshot record already carries its attributes; the description only
	// fills the ones it lacks
	r.deriveAttributes(&p, rec.Source != domain.ProvenanceBackup)
	return p
}

// merge applies the per-field rules of a lower-priority record to current
func (r *Reconciler) merge(current *domain.CanonicalProduct, rec domain.NormalizedRecord, policy MergePolicy) {
	if r.shouldReplaceDescription(current.Description, rec.Description, policy) {
		if r.enableDebugLogging {
			log.Printf("[MERGE] %s: description from %s (%d -> %d chars)",
				current.ID, rec.Source, utf8.RuneCountInString(current.Description), utf8.RuneCountInString(rec.Description))
		}
		current.Description = rec.Description
		r.deriveAttributes(current, true)
	}

	if policy == RefreshDescription {
		return
	}

	// A known price is never overwritten
	if current.Price == 0 && rec.Price > 0 {
		current.Price = rec.Price
		current.Provenance = rec.Source
	}

	if !r.normalizer.HasImage(current.Image) && r.normalizer.HasImage(rec.Image) {
		current.Image = rec.Image
		current.Provenance = rec.Source
	}

	// Everything else: the first source with a value wins
	if current.Title == "" {
		current.Title = rec.Title
	}
	if current.Link == "" {
		current.Link = rec.Link
	}
	if current.Category == "" {
		current.Category = rec.Category
	}
	if current.Brand == domain.UnknownBrand && rec.Brand != "" {
		current.Brand = rec.Brand
	}
}

func (r *Reconciler) shouldReplaceDescription(current, incoming string, policy MergePolicy) bool {
	if incoming == "" || incoming == current {
		return false
	}

	currentLen := utf8.RuneCountInString(current)
	switch policy {
	case RefreshDescription:
		return current == "" || currentLen < r.minDescriptionLength
	default:
		return utf8.RuneCountInString(incoming) > currentLen
	}
}

// deriveAttributes extracts attributes from the product's description. With
// overwrite, each attribute the text yields replaces the current value and
// the rest keep theirs; without it, only empty attributes are filled.
func (r *Reconciler) deriveAttributes(p *domain.CanonicalProduct, overwrite bool) {
	derived := r.extractor.Extract(p.Description)

	set := func(field *string, value string) {
		if value != "" && (overwrite || *field == "") {
			*field = value
		}
	}
	set(&p.Origin, derived.Origin)
	set(&p.Year, derived.Year)
	set(&p.Style, derived.Style)
	set(&p.TopNotes, derived.TopNotes)
	set(&p.MiddleNotes, derived.MiddleNotes)
	set(&p.BaseNotes, derived.BaseNotes)

	carriedTags := len(p.Tags) > 0
	if len(derived.Tags) > 0 && (overwrite || !carriedTags) {
		p.Tags = derived.Tags
	}

	if r.inferVibeTags && (overwrite || !carriedTags) {
		inferred := InferVibeTags(p.Title + " " + p.Description + " " + p.Brand)
		p.Tags = dedupeTags(append(append([]string{}, p.Tags...), inferred...))
	}
}

// Validate keeps products that have both an id and a title, in order.
// It is the only place products leave the catalog.
func Validate(products []domain.CanonicalProduct) (valid []domain.CanonicalProduct, dropped int) {
	valid = make([]domain.CanonicalProduct, 0, len(products))
	for _, p := range products {
		if p.ID == "" || p.Title == "" {
			dropped++
			continue
		}
		valid = append(valid, p)
	}
	return valid, dropped
}
