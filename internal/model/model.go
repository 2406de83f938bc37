package model

import (
	"strconv"
	"strings"
	"time"
)

// ChangeEvent is one decoded value-change notification for a subscribed tag.
type ChangeEvent struct {
	Tag       string
	Timestamp time.Time
	Value     string
	// Quality is the status flag reported by the telemetry source, if any.
	Quality string
	// Raw preserves the original wire line so that passthrough output can
	// emit it unmodified.
	Raw string
}

// Cell is a single tag/value pair inside a finished record.
type Cell struct {
	Tag   string
	Value string
}

// Record is a finished, immutable output row ready for emission.
// Aggregated records carry one cell per subscribed tag in tag universe order
// (absent tags have an empty value). Passthrough records carry the single
// cell of their source event plus the raw event text.
type Record struct {
	Timestamp time.Time
	Cells     []Cell
	Raw       string
}

// Line renders the record as one CSV line without a trailing separator.
// Passthrough records render as their original event text.
func (r Record) Line() string {
	if r.Raw != "" {
		return r.Raw
	}
	parts := make([]string, 0, len(r.Cells)+1)
	parts = append(parts, strconv.FormatInt(r.Timestamp.UnixMilli(), 10))
	for _, c := range r.Cells {
		parts = append(parts, c.Value)
	}
	return strings.Join(parts, ",")
}
