package recordaggregator

import (
	"TagSpectra/internal/model"
	"math"
	"sort"
	"strings"
	"time"
)

// RecordAggregator merges change events that share a source timestamp into a
// single wide row, one column per subscribed tag. Events arrive unordered
// across tags; the aggregator buffers partial rows keyed by timestamp and
// flushes a row once the source is known to have moved past it, or once the
// row has aged beyond the minimum publish interval. Not safe for concurrent
// use: the working set is owned by the drain/flush cycle alone.
type RecordAggregator struct {
	tagNames []string
	maxAge   time.Duration
	rows     map[int64]*partialRow
}

// partialRow is the in-progress aggregation state for one source timestamp.
type partialRow struct {
	ts        int64
	values    map[string]string
	firstSeen time.Time
}

// New creates an aggregator for the given ordered tag universe.
// minPublishInterval is the staleness threshold after which a row is flushed
// even if no newer timestamp was ever observed.
func New(tagNames []string, minPublishInterval time.Duration) *RecordAggregator {
	return &RecordAggregator{
		tagNames: tagNames,
		maxAge:   minPublishInterval,
		rows:     make(map[int64]*partialRow),
	}
}

// Aggregate folds one change event into the working set. A later event for
// the same tag and timestamp overwrites the earlier value. Events for a
// timestamp that has already been flushed open a fresh row rather than
// mutating emitted history.
func (a *RecordAggregator) Aggregate(ev model.ChangeEvent) {
	ts := ev.Timestamp.UnixMilli()
	row, ok := a.rows[ts]
	if !ok {
		row = &partialRow{
			ts:        ts,
			values:    make(map[string]string),
			firstSeen: time.Now(),
		}
		a.rows[ts] = row
	}
	row.values[ev.Tag] = ev.Value
}

// ReadyRecords removes every eligible row from the working set and returns
// it as a finished record, sorted ascending by timestamp. A row is eligible
// when a strictly newer timestamp exists in the working set, or when its age
// exceeds the staleness threshold. Calling with nothing pending returns nil.
func (a *RecordAggregator) ReadyRecords() []model.Record {
	if len(a.rows) == 0 {
		return nil
	}

	newest := int64(math.MinInt64)
	for ts := range a.rows {
		if ts > newest {
			newest = ts
		}
	}

	now := time.Now()
	var ready []*partialRow
	for ts, row := range a.rows {
		if ts < newest || now.Sub(row.firstSeen) > a.maxAge {
			ready = append(ready, row)
			delete(a.rows, ts)
		}
	}
	if len(ready) == 0 {
		return nil
	}

	sort.Slice(ready, func(i, j int) bool { return ready[i].ts < ready[j].ts })

	records := make([]model.Record, len(ready))
	for i, row := range ready {
		records[i] = a.finish(row)
	}
	return records
}

// FlushAll drains the entire working set regardless of eligibility. Used on
// shutdown so pending rows are not lost.
func (a *RecordAggregator) FlushAll() []model.Record {
	if len(a.rows) == 0 {
		return nil
	}

	rows := make([]*partialRow, 0, len(a.rows))
	for _, row := range a.rows {
		rows = append(rows, row)
	}
	a.rows = make(map[int64]*partialRow)

	sort.Slice(rows, func(i, j int) bool { return rows[i].ts < rows[j].ts })

	records := make([]model.Record, len(rows))
	for i, row := range rows {
		records[i] = a.finish(row)
	}
	return records
}

// PendingRows returns the number of partial rows still open.
func (a *RecordAggregator) PendingRows() int {
	return len(a.rows)
}

// Header returns the column header describing aggregated output, terminated
// by the line separator. Recomputed per emission batch rather than cached.
func (a *RecordAggregator) Header() string {
	return "timestamp," + strings.Join(a.tagNames, ",") + LineSeparator
}

// finish snapshots a partial row into an immutable record. Values for tags
// outside the universe are held in the row but never rendered, so column
// alignment with the header is preserved.
func (a *RecordAggregator) finish(row *partialRow) model.Record {
	cells := make([]model.Cell, len(a.tagNames))
	for i, tag := range a.tagNames {
		cells[i] = model.Cell{Tag: tag, Value: row.values[tag]}
	}
	return model.Record{
		Timestamp: time.UnixMilli(row.ts).UTC(),
		Cells:     cells,
	}
}
