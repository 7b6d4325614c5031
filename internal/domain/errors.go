package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrProductNotFound is returned when a product id is not in the catalog
	ErrProductNotFound = errors.New("product not found in catalog")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrSourceUnreadable is returned when a source file cannot be opened or read
	ErrSourceUnreadable = errors.New("source unreadable")

	// ErrMalformedSource is returned when a source document cannot be parsed as a whole
	ErrMalformedSource = errors.New("malformed source document")

	// ErrMissingColumns is returned when the CSV header lacks a required column
	ErrMissingColumns = errors.New("required columns missing from header")

	// ErrEmptyCatalog is returned when a catalog artifact holds no products
	ErrEmptyCatalog = errors.New("catalog is empty")
)

// MissingColumnsError names every required column absent from a CSV header.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingColumns, strings.Join(e.Columns, ", "))
}

func (e *MissingColumnsError) Unwrap() error {
	return ErrMissingColumns
}
