package sink

import (
	"TagSpectra/internal/model"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"
)

// FailureSink receives records whose delivery to a primary sink failed, so
// no aggregated data vanishes unobserved. Records land as CSV files in a
// dedicated directory for operator inspection and replay.
type FailureSink struct {
	dir string
	seq atomic.Uint64
}

// NewFailureSink creates the sink and ensures the failure directory exists.
func NewFailureSink(dir string) (*FailureSink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create failure directory: %w", err)
	}
	return &FailureSink{dir: dir}, nil
}

// Write persists one failed batch.
func (s *FailureSink) Write(records []model.Record, header string) error {
	if len(records) == 0 {
		return nil
	}

	fileName := fmt.Sprintf("failed_%s_%06d.csv", time.Now().Format("2006-01-02_15-04-05"), s.seq.Add(1))
	path := filepath.Join(s.dir, fileName)
	if err := writeRecordsFile(path, records, header); err != nil {
		return err
	}

	log.Printf("Routed %d undeliverable records to %s", len(records), path)
	return nil
}
