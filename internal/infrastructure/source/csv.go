package source

import (
	"fmt"
	"log"
	"strings"

	"github.com/TuanThanh1609/leparfurm/internal/domain"
)

// Column names recognized in the tabular export header
const (
	ColumnID          = "id"
	ColumnHandle      = "handle"
	ColumnTitle       = "title"
	ColumnDescription = "description"
	ColumnBrand       = "brand"
	ColumnPrice       = "price"
	ColumnImageLink   = "image_link"
	ColumnLink        = "link"
)

// SeedColumns are required when the export seeds the catalog
var SeedColumns = []string{ColumnID, ColumnTitle, ColumnDescription, ColumnBrand, ColumnPrice, ColumnImageLink, ColumnLink}

// RefreshColumns are required when the export only refreshes a snapshot
var RefreshColumns = []string{ColumnID, ColumnDescription}

const byteOrderMark = "\uFEFF"

// Result holds the records parsed from one source and how many were skipped
type Result[T any] struct {
	Records []T
	Skipped int
}

// ParseDelimited splits comma-delimited text into rows of fields.
// Quoted fields may hold commas, line breaks and doubled quotes.
// A row is only emitted if it holds at least one field or character,
// so blank lines and a trailing newline never produce empty rows.
func ParseDelimited(text string) [][]string {
	var (
		rows     [][]string
		row      []string
		field    strings.Builder
		inQuotes bool
	)

	endRow := func() {
		if len(row) > 0 || field.Len() > 0 {
			row = append(row, field.String())
			rows = append(rows, row)
		}
		row = nil
		field.Reset()
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '"':
			if inQuotes && i+1 < len(text) && text[i+1] == '"' {
				field.WriteByte('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case c == ',' && !inQuotes:
			row = append(row, field.String())
			field.Reset()
		case (c == '\r' || c == '\n') && !inQuotes:
			if c == '\r' && i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			endRow()
		default:
			field.WriteByte(c)
		}
	}
	endRow()

	return rows
}

// headerIndex maps trimmed, lower-cased header names to their column index.
// The first occurrence of a repeated name wins.
func headerIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, exists := index[key]; !exists {
			index[key] = i
		}
	}
	return index
}

// resolveIDColumn prefers "id" and falls back to "handle"
func resolveIDColumn(index map[string]int) (int, bool) {
	if i, ok := index[ColumnID]; ok {
		return i, true
	}
	i, ok := index[ColumnHandle]
	return i, ok
}

// ParseCSV parses the tabular export. Every column in required must be
// present in the header ("id" is satisfied by "handle"), otherwise a
// *domain.MissingColumnsError naming all absent columns is returned.
// Rows that are too short or carry no id are skipped.
func ParseCSV(text string, required []string) (*Result[domain.CSVRecord], error) {
	text = strings.TrimPrefix(text, byteOrderMark)
	rows := ParseDelimited(text)
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: export has no header row", domain.ErrMalformedSource)
	}

	index := headerIndex(rows[0])
	idCol, hasID := resolveIDColumn(index)

	var missing []string
	for _, name := range required {
		if name == ColumnID || name == ColumnHandle {
			if !hasID {
				missing = append(missing, ColumnID)
			}
			continue
		}
		if _, ok := index[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &domain.MissingColumnsError{Columns: missing}
	}
	if !hasID {
		return nil, &domain.MissingColumnsError{Columns: []string{ColumnID}}
	}

	field := func(row []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	result := &Result[domain.CSVRecord]{}
	for i, row := range rows[1:] {
		if len(row) < 2 || idCol >= len(row) {
			result.Skipped++
			continue
		}

		id := strings.TrimSpace(row[idCol])
		if id == "" {
			result.Skipped++
			continue
		}

		result.Records = append(result.Records, domain.CSVRecord{
			Row:         i + 1,
			ID:          id,
			Title:       field(row, ColumnTitle),
			Description: field(row, ColumnDescription),
			Brand:       field(row, ColumnBrand),
			Price:       field(row, ColumnPrice),
			ImageLink:   field(row, ColumnImageLink),
			Link:        field(row, ColumnLink),
		})
	}

	log.Printf("[CSV] Parsed %d rows (%d skipped)", len(result.Records), result.Skipped)
	return result, nil
}

// EncodeField quotes a value for the delimited format when it needs it
func EncodeField(value string) string {
	if !strings.ContainsAny(value, "\",\r\n") {
		return value
	}
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}
