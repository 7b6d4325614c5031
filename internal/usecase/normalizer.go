package usecase

import (
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"

	"github.com/TuanThanh1609/leparfurm/internal/domain"
)

// Compiled regex patterns for field normalization
var (
	// Trailing currency marker such as "VND", "vnd", "₫" or "đ"
	currencySuffixPattern = regexp.MustCompile(`(?i)\s*(?:vnd|₫|đ)\s*$`)

	// Thousands separators; the source locale never uses decimals for VND
	thousandsSeparatorPattern = regexp.MustCompile(`[.,]`)

	// An opening or closing HTML tag
	markupPattern = regexp.MustCompile(`<[a-zA-Z/!][^>]*>`)

	// Multiple whitespace cleanup
	whitespaceRunPattern = regexp.MustCompile(`\s+`)
)

// NormalizePrice converts a price string to whole VND.
// "1.200.000 VND" -> 1200000. Empty, non-numeric or negative input yields 0.
// Already-normalized integers pass through unchanged.
func NormalizePrice(raw string) int64 {
	clean := currencySuffixPattern.ReplaceAllString(strings.TrimSpace(raw), "")
	clean = thousandsSeparatorPattern.ReplaceAllString(strings.TrimSpace(clean), "")
	if clean == "" {
		return 0
	}

	price, err := strconv.ParseInt(clean, 10, 64)
	if err != nil || price < 0 {
		return 0
	}
	return price
}

// NormalizeText trims a scalar field and composes its Unicode form (NFC)
// so Vietnamese diacritics compare equal regardless of how they were typed.
func NormalizeText(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

// NormalizeDescription reduces scraped description text to single-spaced
// plain text. HTML fragments are replaced by their text content.
func NormalizeDescription(s string) string {
	if markupPattern.MatchString(s) {
		s = stripMarkup(s)
	}
	s = norm.NFC.String(s)
	s = whitespaceRunPattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// stripMarkup returns the visible text of an HTML fragment, keeping block
// elements apart with a space.
func stripMarkup(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		// Not parseable as HTML: drop anything tag-shaped instead
		return markupPattern.ReplaceAllString(fragment, " ")
	}

	doc.Find("script, style").Remove()
	doc.Find("br, p, div, li, tr, td, h1, h2, h3, h4, h5, h6").AfterHtml(" ")

	return doc.Text()
}

// FieldNormalizer converts source-specific raw records into NormalizedRecord
type FieldNormalizer struct {
	placeholderToken   string
	enableDebugLogging bool
}

// NewFieldNormalizer creates a normalizer. placeholderToken marks image URLs
// that stand in for a missing image; empty disables placeholder detection.
func NewFieldNormalizer(placeholderToken string, enableDebugLogging bool) *FieldNormalizer {
	return &FieldNormalizer{
		placeholderToken:   placeholderToken,
		enableDebugLogging: enableDebugLogging,
	}
}

// IsPlaceholderImage reports whether an image URL is the known placeholder
func (n *FieldNormalizer) IsPlaceholderImage(image string) bool {
	return n.placeholderToken != "" && strings.Contains(image, n.placeholderToken)
}

// HasImage reports whether image is a real image (present and not the placeholder)
func (n *FieldNormalizer) HasImage(image string) bool {
	return image != "" && !n.IsPlaceholderImage(image)
}

// FromCSV normalizes one tabular export row
func (n *FieldNormalizer) FromCSV(r domain.CSVRecord) domain.NormalizedRecord {
	rec := domain.NormalizedRecord{
		Source:      domain.ProvenanceCSV,
		ID:          NormalizeText(r.ID),
		Title:       NormalizeText(r.Title),
		Brand:       NormalizeText(r.Brand),
		Price:       NormalizePrice(r.Price),
		Image:       NormalizeText(r.ImageLink),
		Link:        NormalizeText(r.Link),
		Description: NormalizeDescription(r.Description),
	}
	if n.enableDebugLogging {
		log.Printf("[NORMALIZE] csv row %d: id=%q price %q -> %d", r.Row, rec.ID, r.Price, rec.Price)
	}
	return rec
}

// FromFeed normalizes one feed item
func (n *FieldNormalizer) FromFeed(item domain.FeedItem) domain.NormalizedRecord {
	rec := domain.NormalizedRecord{
		Source:      domain.ProvenanceXML,
		ID:          NormalizeText(item.ID),
		Title:       NormalizeText(item.Title),
		Brand:       NormalizeText(item.Brand),
		Price:       NormalizePrice(item.Price),
		Image:       NormalizeText(item.ImageLink),
		Link:        NormalizeText(item.Link),
		Description: NormalizeDescription(item.Description),
		Category:    NormalizeText(item.Category),
	}
	if n.enableDebugLogging {
		log.Printf("[NORMALIZE] feed item id=%q price %q -> %d", rec.ID, item.Price, rec.Price)
	}
	return rec
}

// FromSnapshot normalizes one prior snapshot record, carrying its attributes
func (n *FieldNormalizer) FromSnapshot(s domain.SnapshotRecord) domain.NormalizedRecord {
	return domain.NormalizedRecord{
		Source:      domain.ProvenanceBackup,
		ID:          NormalizeText(string(s.ID)),
		Title:       NormalizeText(s.Title),
		Brand:       NormalizeText(s.Brand),
		Price:       NormalizePrice(string(s.Price)),
		Image:       NormalizeText(s.Image),
		Link:        NormalizeText(s.Link),
		Description: NormalizeDescription(s.Description),
		Category:    NormalizeText(s.Category),
		Carried: domain.Attributes{
			Origin:      NormalizeText(s.Origin),
			Year:        NormalizeText(string(s.Year)),
			Style:       NormalizeText(s.Style),
			TopNotes:    NormalizeText(s.TopNotes),
			MiddleNotes: NormalizeText(s.MiddleNotes),
			BaseNotes:   NormalizeText(s.BaseNotes),
			Tags:        dedupeTags(s.Tags),
		},
	}
}

// dedupeTags trims tags, drops empty ones and collapses duplicates,
// keeping first-seen order.
func dedupeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	result := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = NormalizeText(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		result = append(result, tag)
	}
	return result
}
