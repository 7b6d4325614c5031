package export

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/TuanThanh1609/leparfurm/internal/domain"
)

const catalogSheet = "Catalog"

// catalogHeaders is the column order shared by the workbook and the database
var catalogHeaders = []string{
	"ID", "Title", "Brand", "Price", "Image", "Link", "Category",
	"Origin", "Year", "Style", "Top Notes", "Middle Notes", "Base Notes",
	"Tags", "Provenance", "Description",
}

// catalogRow flattens a product in catalogHeaders order
func catalogRow(p *domain.CanonicalProduct) []interface{} {
	return []interface{}{
		p.ID, p.Title, p.Brand, p.Price, p.Image, p.Link, p.Category,
		p.Origin, p.Year, p.Style, p.TopNotes, p.MiddleNotes, p.BaseNotes,
		strings.Join(p.Tags, ", "), string(p.Provenance), p.Description,
	}
}

// XLSXWriter exports the catalog as a spreadsheet for merchandisers
type XLSXWriter struct {
	path string
}

// NewXLSXWriter creates a workbook writer for path
func NewXLSXWriter(path string) *XLSXWriter {
	return &XLSXWriter{path: path}
}

func (w *XLSXWriter) Name() string { return "xlsx:" + w.path }

// Write builds the workbook and replaces the file at path atomically
func (w *XLSXWriter) Write(ctx context.Context, products []domain.CanonicalProduct) error {
	return replaceAtomic(w.path, 0o644, func(tmpPath string) error {
		return w.build(ctx, tmpPath, products)
	})
}

func (w *XLSXWriter) build(ctx context.Context, path string, products []domain.CanonicalProduct) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), catalogSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	header := make([]interface{}, len(catalogHeaders))
	for i, h := range catalogHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(catalogSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(catalogHeaders), 1)
	if err := f.SetCellStyle(catalogSheet, "A1", lastHeader, headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i := range products {
		if err := ctx.Err(); err != nil {
			return err
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := catalogRow(&products[i])
		if err := f.SetSheetRow(catalogSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	for i := range catalogHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(catalogSheet, col, col, 18); err != nil {
			return fmt.Errorf("failed to size column %s: %w", col, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save Excel file: %w", err)
	}
	return nil
}
