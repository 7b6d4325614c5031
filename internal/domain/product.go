package domain

import (
	"encoding/json"
	"strconv"
	"time"
)

// UnknownBrand is the brand assigned when no contributing source names one
const UnknownBrand = "Unknown"

// Provenance identifies the source that last supplied a record's price or image
type Provenance string

const (
	ProvenanceBackup Provenance = "backup" // prior-generation JSON snapshot
	ProvenanceCSV    Provenance = "csv"    // tabular export
	ProvenanceXML    Provenance = "xml"    // product feed
)

// Attributes holds the facets mined from a product description.
// An empty string means the attribute was not found.
type Attributes struct {
	Origin      string   `json:"origin,omitempty"`
	Year        string   `json:"year,omitempty"`
	Style       string   `json:"style,omitempty"`
	TopNotes    string   `json:"top_notes,omitempty"`
	MiddleNotes string   `json:"middle_notes,omitempty"`
	BaseNotes   string   `json:"base_notes,omitempty"`
	Tags        []string `json:"tags"`
}

// CanonicalProduct is the single reconciled representation of a product
type CanonicalProduct struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Brand       string `json:"brand"`
	Price       int64  `json:"price"` // whole VND, never negative
	Image       string `json:"image"`
	Link        string `json:"link"`
	Description string `json:"description"`
	Category    string `json:"category,omitempty"`
	Attributes
	Provenance Provenance `json:"provenance"`
}

// HasTag reports whether tag is in the product's tag set
func (p *CanonicalProduct) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// NormalizedRecord is the typed intermediate shape every source record is
// converted into before reconciliation.
type NormalizedRecord struct {
	Source      Provenance
	ID          string
	Title       string
	Brand       string
	Price       int64
	Image       string
	Link        string
	Description string
	Category    string
	// Carried holds attributes a source already knew (snapshot records only)
	Carried Attributes
}

// CSVRecord is one data row of the tabular export, addressed by header name
type CSVRecord struct {
	Row         int // 1-based, header excluded
	ID          string
	Title       string
	Description string
	Brand       string
	Price       string
	ImageLink   string
	Link        string
}

// FeedItem is one <item> of the RSS product feed
type FeedItem struct {
	ID          string
	Title       string
	Description string
	Link        string
	ImageLink   string
	Brand       string
	Price       string
	Category    string
}

// SnapshotRecord is one object of a prior catalog snapshot
type SnapshotRecord struct {
	ID          LooseString `json:"id"`
	Title       string      `json:"title"`
	Brand       string      `json:"brand"`
	Price       LooseString `json:"price"`
	Image       string      `json:"image"`
	Link        string      `json:"link"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	Tags        []string    `json:"tags"`
	Origin      string      `json:"origin"`
	Year        LooseString `json:"year"`
	Style       string      `json:"style"`
	TopNotes    string      `json:"top_notes"`
	MiddleNotes string      `json:"middle_notes"`
	BaseNotes   string      `json:"base_notes"`
}

// LooseString accepts a JSON string, number or null and keeps its text form.
// Older snapshots carry prices as numbers, scraped ones as "1.200.000 VND".
type LooseString string

func (s *LooseString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = ""
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = LooseString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	// Integral exponent forms such as 1.2e+06 are kept as plain digits.
	if f, err := num.Float64(); err == nil && f == float64(int64(f)) {
		*s = LooseString(strconv.FormatInt(int64(f), 10))
		return nil
	}
	*s = LooseString(num.String())
	return nil
}

// ScoredProduct pairs a catalog product with its preference score
type ScoredProduct struct {
	Product CanonicalProduct `json:"product"`
	Score   int              `json:"score"`
}

// MatchRequest represents a preference matching request
type MatchRequest struct {
	Answers []string `json:"answers" binding:"required"`
	Limit   int      `json:"limit,omitempty"`
}

// RunMode selects which source seeds the catalog
type RunMode string

const (
	// RunModeSnapshot seeds from the prior snapshot; the export only refreshes
	RunModeSnapshot RunMode = "snapshot"
	// RunModeExport seeds from the tabular export; the feed refreshes
	RunModeExport RunMode = "export"
)

// SourceStats counts what one source contributed to a run
type SourceStats struct {
	Source   Provenance `json:"source"`
	Parsed   int        `json:"parsed"`
	Skipped  int        `json:"skipped"`
	Inserted int        `json:"inserted"`
	Merged   int        `json:"merged"`
}

// RunReport summarizes one pipeline run
type RunReport struct {
	RunID     string        `json:"runId"`
	Mode      RunMode       `json:"mode"`
	Sources   []SourceStats `json:"sources"`
	Filtered  int           `json:"filtered"`
	Final     int           `json:"final"`
	StartedAt time.Time     `json:"startedAt"`
	Duration  time.Duration `json:"duration"`
}
