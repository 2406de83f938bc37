package passthrough

import "TagSpectra/internal/model"

// Emit maps each drained change event 1:1 to a finished record, preserving
// batch order. This is the fallback path when record aggregation is
// disabled: no working set, no staleness logic, the raw event text is the
// record body.
func Emit(events []model.ChangeEvent) []model.Record {
	if len(events) == 0 {
		return nil
	}
	records := make([]model.Record, len(events))
	for i, ev := range events {
		records[i] = model.Record{
			Timestamp: ev.Timestamp,
			Cells:     []model.Cell{{Tag: ev.Tag, Value: ev.Value}},
			Raw:       ev.Raw,
		}
	}
	return records
}
