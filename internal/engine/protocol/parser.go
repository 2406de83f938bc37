package protocol

import (
	"TagSpectra/internal/model"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseLine decodes one raw wire line into a ChangeEvent. The telemetry
// source delivers one text line per change notification:
//
//	tag,unixMilli,value[,quality]
//
// Malformed lines are rejected here, before they can reach the aggregator.
func ParseLine(line string) (model.ChangeEvent, error) {
	fields := strings.Split(strings.TrimRight(line, "\r\n"), ",")
	if len(fields) < 3 {
		return model.ChangeEvent{}, fmt.Errorf("malformed change event %q: expected at least 3 fields, got %d", line, len(fields))
	}
	if len(fields) > 4 {
		return model.ChangeEvent{}, fmt.Errorf("malformed change event %q: expected at most 4 fields, got %d", line, len(fields))
	}

	tag := fields[0]
	if tag == "" {
		return model.ChangeEvent{}, fmt.Errorf("malformed change event %q: empty tag", line)
	}

	millis, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return model.ChangeEvent{}, fmt.Errorf("malformed change event %q: bad timestamp: %w", line, err)
	}

	ev := model.ChangeEvent{
		Tag:       tag,
		Timestamp: time.UnixMilli(millis).UTC(),
		Value:     fields[2],
		Raw:       line,
	}
	if len(fields) == 4 {
		ev.Quality = fields[3]
	}
	return ev, nil
}

// FormatLine renders a ChangeEvent back into its wire representation. Used by
// the probe publisher when synthesizing events.
func FormatLine(ev model.ChangeEvent) string {
	line := fmt.Sprintf("%s,%d,%s", ev.Tag, ev.Timestamp.UnixMilli(), ev.Value)
	if ev.Quality != "" {
		line += "," + ev.Quality
	}
	return line
}
