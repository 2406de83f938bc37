package sink

import (
	"TagSpectra/internal/engine/recordaggregator"
	"TagSpectra/internal/model"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"
)

// CSVSink writes each delivered batch of finished records to its own CSV
// file under a root path. Aggregated batches start with the header line;
// passthrough batches are raw event lines. Implements the model.Sink
// interface.
type CSVSink struct {
	rootPath string
	seq      atomic.Uint64
}

// NewCSVSink creates the sink and ensures the root directory exists.
func NewCSVSink(rootPath string) (*CSVSink, error) {
	if err := os.MkdirAll(rootPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create record directory: %w", err)
	}
	return &CSVSink{rootPath: rootPath}, nil
}

// Write persists one batch of records as a timestamped CSV file.
func (s *CSVSink) Write(records []model.Record, header string) error {
	if len(records) == 0 {
		return nil
	}

	fileName := fmt.Sprintf("records_%s_%06d.csv", time.Now().Format("2006-01-02_15-04-05"), s.seq.Add(1))
	path := filepath.Join(s.rootPath, fileName)
	if err := writeRecordsFile(path, records, header); err != nil {
		return err
	}

	log.Printf("Wrote %d records to %s", len(records), path)
	return nil
}

// writeRecordsFile renders a header (if any) and one line per record to a
// new file. Shared by the CSV and failure sinks.
func writeRecordsFile(path string, records []model.Record, header string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create record file '%s': %w", path, err)
	}
	defer file.Close()

	if header != "" {
		if _, err := file.WriteString(header); err != nil {
			return fmt.Errorf("failed to write header to '%s': %w", path, err)
		}
	}
	for _, rec := range records {
		if _, err := file.WriteString(rec.Line() + recordaggregator.LineSeparator); err != nil {
			return fmt.Errorf("failed to write record to '%s': %w", path, err)
		}
	}
	return nil
}
