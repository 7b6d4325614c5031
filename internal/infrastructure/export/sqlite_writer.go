package export

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/TuanThanh1609/leparfurm/internal/domain"
)

const productsTable = "products"

// catalogColumns mirrors catalogHeaders as SQL column definitions
var catalogColumns = []string{
	`"id" TEXT PRIMARY KEY`,
	`"title" TEXT NOT NULL`,
	`"brand" TEXT`,
	`"price" INTEGER`,
	`"image" TEXT`,
	`"link" TEXT`,
	`"category" TEXT`,
	`"origin" TEXT`,
	`"year" TEXT`,
	`"style" TEXT`,
	`"top_notes" TEXT`,
	`"middle_notes" TEXT`,
	`"base_notes" TEXT`,
	`"tags" TEXT`,
	`"provenance" TEXT`,
	`"description" TEXT`,
}

// SQLiteWriter exports the catalog into a standalone SQLite database
type SQLiteWriter struct {
	path string
}

// NewSQLiteWriter creates a database writer for path
func NewSQLiteWriter(path string) *SQLiteWriter {
	return &SQLiteWriter{path: path}
}

func (w *SQLiteWriter) Name() string { return "sqlite:" + w.path }

// Write builds a fresh database and replaces the file at path atomically
func (w *SQLiteWriter) Write(ctx context.Context, products []domain.CanonicalProduct) error {
	return replaceAtomic(w.path, 0o644, func(tmpPath string) error {
		return w.build(ctx, tmpPath, products)
	})
}

func (w *SQLiteWriter) build(ctx context.Context, path string, products []domain.CanonicalProduct) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, `CREATE TABLE "`+productsTable+`" (`+strings.Join(catalogColumns, ",")+`)`); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	ph := strings.TrimRight(strings.Repeat("?,", len(catalogColumns)), ",")
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO "`+productsTable+`" VALUES (`+ph+`)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range products {
		if _, err := stmt.ExecContext(ctx, catalogRow(&products[i])...); err != nil {
			return fmt.Errorf("failed to insert %s: %w", products[i].ID, err)
		}
	}

	for _, idx := range []string{
		`CREATE INDEX IF NOT EXISTS idx_products_brand ON products(brand)`,
		`CREATE INDEX IF NOT EXISTS idx_products_price ON products(price)`,
	} {
		if _, err := tx.ExecContext(ctx, idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return tx.Commit()
}
