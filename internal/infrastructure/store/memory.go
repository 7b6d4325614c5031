package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/TuanThanh1609/leparfurm/internal/domain"
)

var byteOrderMark = []byte("\uFEFF")

// MemoryCatalog serves a built catalog from memory. The product slice is
// never mutated after load; Replace swaps it wholesale.
type MemoryCatalog struct {
	mutex    sync.RWMutex
	products []domain.CanonicalProduct
	index    map[string]int
}

// NewMemoryCatalog creates a repository over products, in their given order
func NewMemoryCatalog(products []domain.CanonicalProduct) *MemoryCatalog {
	c := &MemoryCatalog{}
	c.Replace(products)
	return c
}

// LoadFile reads a catalog artifact written by the pipeline
func LoadFile(path string) (*MemoryCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w: %v", path, domain.ErrSourceUnreadable, err)
	}

	products, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}

	log.Printf("[STORE] Loaded %d products from %s", len(products), path)
	return NewMemoryCatalog(products), nil
}

// Decode parses a catalog artifact
func Decode(data []byte) ([]domain.CanonicalProduct, error) {
	data = bytes.TrimPrefix(data, byteOrderMark)

	var products []domain.CanonicalProduct
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedSource, err)
	}

	for i := range products {
		if products[i].Tags == nil {
			products[i].Tags = []string{}
		}
	}
	return products, nil
}

// Replace swaps in a new catalog. Duplicate ids resolve to the first product.
func (c *MemoryCatalog) Replace(products []domain.CanonicalProduct) {
	index := make(map[string]int, len(products))
	for i, p := range products {
		if _, exists := index[p.ID]; !exists {
			index[p.ID] = i
		}
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.products = products
	c.index = index
}

// All returns the catalog in its natural order. Callers must not modify it.
func (c *MemoryCatalog) All(ctx context.Context) ([]domain.CanonicalProduct, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.products, nil
}

// GetByID returns a copy of the product with the given id
func (c *MemoryCatalog) GetByID(ctx context.Context, id string) (*domain.CanonicalProduct, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	i, ok := c.index[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	p := c.products[i]
	return &p, nil
}

// Len returns the number of products
func (c *MemoryCatalog) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.products)
}
