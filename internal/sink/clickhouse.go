package sink

import (
	"TagSpectra/internal/config"
	"TagSpectra/internal/model"
	"context"
	"fmt"
	"log"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

const createTableStatement = `
CREATE TABLE IF NOT EXISTS tag_records (
    EmittedAt DateTime DEFAULT now(),
    Timestamp DateTime64(3),
    Tag       String,
    Value     String
) ENGINE = MergeTree()
PARTITION BY toYYYYMM(Timestamp)
ORDER BY (Tag, Timestamp);
`

// ClickHouseSink persists finished records into ClickHouse, one row per
// timestamp/tag/value cell. Empty cells (tags absent from a row) are not
// stored. Implements the model.Sink interface.
type ClickHouseSink struct {
	conn driver.Conn
}

// NewClickHouseSink connects to ClickHouse and ensures the table exists.
func NewClickHouseSink(cfg config.ClickHouseConfig) (*ClickHouseSink, error) {
	conn, err := connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}

	if err := conn.Exec(context.Background(), createTableStatement); err != nil {
		return nil, fmt.Errorf("failed to create table: %w", err)
	}
	log.Println("Successfully connected to ClickHouse and ensured table exists.")

	return &ClickHouseSink{conn: conn}, nil
}

func connect(cfg config.ClickHouseConfig) (driver.Conn, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Debug: false,
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}

	return conn, nil
}

// Write batch-inserts the cells of every record in the batch.
func (s *ClickHouseSink) Write(records []model.Record, header string) error {
	if len(records) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(context.Background(), "INSERT INTO tag_records (Timestamp, Tag, Value)")
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}

	cellCount := 0
	for _, rec := range records {
		for _, cell := range rec.Cells {
			if cell.Value == "" {
				continue
			}
			cellCount++
			if err := batch.Append(rec.Timestamp, cell.Tag, cell.Value); err != nil {
				return fmt.Errorf("failed to append record cell to batch: %w", err)
			}
		}
	}

	if cellCount == 0 {
		return nil // Nothing to write
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}

	log.Printf("Wrote %d record cells to ClickHouse", cellCount)
	return nil
}
