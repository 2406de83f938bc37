package query

import (
	"TagSpectra/internal/config"
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// TagValue is one stored value of a tag at a point in time.
type TagValue struct {
	Tag       string    `json:"tag"`
	Timestamp time.Time `json:"timestamp"`
	Value     string    `json:"value"`
}

// Querier defines the interface for querying stored tag records.
type Querier interface {
	// LatestValues returns the most recent value of every tag seen so far.
	LatestValues(ctx context.Context) ([]TagValue, error)
	// TagHistory returns the stored values of one tag inside [from, to].
	TagHistory(ctx context.Context, tag string, from, to time.Time) ([]TagValue, error)
}

// clickhouseQuerier implements the Querier interface for ClickHouse.
type clickhouseQuerier struct {
	conn clickhouse.Conn
}

// NewClickHouseQuerier creates a new querier for ClickHouse.
func NewClickHouseQuerier(cfg config.ClickHouseConfig) (Querier, error) {
	conn, err := connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}
	return &clickhouseQuerier{conn: conn}, nil
}

func connect(cfg config.ClickHouseConfig) (clickhouse.Conn, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
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

// LatestValues picks the newest stored value per tag.
func (q *clickhouseQuerier) LatestValues(ctx context.Context) ([]TagValue, error) {
	rows, err := q.conn.Query(ctx, `
		SELECT
			Tag,
			max(Timestamp) AS LatestTimestamp,
			argMax(Value, Timestamp) AS LatestValue
		FROM tag_records
		GROUP BY Tag
		ORDER BY Tag
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	var values []TagValue
	for rows.Next() {
		var v TagValue
		if err := rows.Scan(&v.Tag, &v.Timestamp, &v.Value); err != nil {
			return nil, fmt.Errorf("failed to scan latest value: %w", err)
		}
		values = append(values, v)
	}
	return values, nil
}

// TagHistory returns the time-ordered values of a single tag.
func (q *clickhouseQuerier) TagHistory(ctx context.Context, tag string, from, to time.Time) ([]TagValue, error) {
	rows, err := q.conn.Query(ctx, `
		SELECT Tag, Timestamp, Value
		FROM tag_records
		WHERE Tag = ? AND Timestamp >= ? AND Timestamp <= ?
		ORDER BY Timestamp
	`, tag, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	var values []TagValue
	for rows.Next() {
		var v TagValue
		if err := rows.Scan(&v.Tag, &v.Timestamp, &v.Value); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		values = append(values, v)
	}
	return values, nil
}
