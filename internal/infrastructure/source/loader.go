package source

import (
	"context"
	"fmt"
	"os"

	"github.com/TuanThanh1609/leparfurm/internal/domain"
)

// Loader reads the crawler's raw outputs from disk and parses them.
// Any unreadable file is fatal for the run.
type Loader struct{}

// NewLoader creates a new source loader
func NewLoader() *Loader {
	return &Loader{}
}

func readSource(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", path, domain.ErrSourceUnreadable, err)
	}
	return data, nil
}

// LoadCSV reads and parses the tabular export at path
func (l *Loader) LoadCSV(ctx context.Context, path string, required []string) (*Result[domain.CSVRecord], error) {
	data, err := readSource(ctx, path)
	if err != nil {
		return nil, err
	}
	result, err := ParseCSV(string(data), required)
	if err != nil {
		return nil, fmt.Errorf("csv export %s: %w", path, err)
	}
	return result, nil
}

// LoadFeed reads and parses the product feed at path
func (l *Loader) LoadFeed(ctx context.Context, path string) (*Result[domain.FeedItem], error) {
	data, err := readSource(ctx, path)
	if err != nil {
		return nil, err
	}
	result, err := ParseFeed(string(data))
	if err != nil {
		return nil, fmt.Errorf("feed %s: %w", path, err)
	}
	return result, nil
}

// LoadSnapshot reads and parses the prior catalog snapshot at path
func (l *Loader) LoadSnapshot(ctx context.Context, path string) (*Result[domain.SnapshotRecord], error) {
	data, err := readSource(ctx, path)
	if err != nil {
		return nil, err
	}
	result, err := ParseSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", path, err)
	}
	return result, nil
}
