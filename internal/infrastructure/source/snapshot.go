package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/TuanThanh1609/leparfurm/internal/domain"
)

// ParseSnapshot parses a prior catalog snapshot: a JSON array of objects
// shaped like canonical products. A malformed top level is fatal; an
// element that is not a product object is skipped.
func ParseSnapshot(data []byte) (*Result[domain.SnapshotRecord], error) {
	data = bytes.TrimPrefix(data, []byte(byteOrderMark))

	var elements []json.RawMessage
	if err := json.Unmarshal(data, &elements); err != nil {
		return nil, fmt.Errorf("%w: invalid snapshot json: %v", domain.ErrMalformedSource, err)
	}

	result := &Result[domain.SnapshotRecord]{}
	for i, raw := range elements {
		var record domain.SnapshotRecord
		if err := json.Unmarshal(raw, &record); err != nil {
			log.Printf("[SNAPSHOT] Skipping element %d: %v", i, err)
			result.Skipped++
			continue
		}
		if strings.TrimSpace(string(record.ID)) == "" {
			result.Skipped++
			continue
		}
		result.Records = append(result.Records, record)
	}

	log.Printf("[SNAPSHOT] Parsed %d records (%d skipped)", len(result.Records), result.Skipped)
	return result, nil
}
