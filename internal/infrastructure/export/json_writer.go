package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/TuanThanh1609/leparfurm/internal/domain"
)

// JSONWriter publishes the catalog as a JSON array, the primary artifact
// read by the storefront and by the HTTP server.
type JSONWriter struct {
	path string
}

// NewJSONWriter creates a writer for the catalog artifact at path
func NewJSONWriter(path string) *JSONWriter {
	return &JSONWriter{path: path}
}

func (w *JSONWriter) Name() string { return "json:" + w.path }

// Write replaces the artifact atomically
func (w *JSONWriter) Write(ctx context.Context, products []domain.CanonicalProduct) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := EncodeCatalog(products)
	if err != nil {
		return err
	}

	return writeFileAtomic(w.path, data, 0o644)
}

// EncodeCatalog renders products as an indented JSON array. Non-ASCII text
// is written as-is and an empty catalog encodes as [].
func EncodeCatalog(products []domain.CanonicalProduct) ([]byte, error) {
	if products == nil {
		products = []domain.CanonicalProduct{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(products); err != nil {
		return nil, fmt.Errorf("failed to encode catalog: %w", err)
	}
	return buf.Bytes(), nil
}
