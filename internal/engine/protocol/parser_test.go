package protocol

import (
	"testing"
	"time"
)

func TestParseLine(t *testing.T) {
	ev, err := ParseLine("ns=2;s=Boiler.Temp,1700000000000,22.5,Good")
	if err != nil {
		t.Fatalf("ParseLine failed: %v", err)
	}
	if ev.Tag != "ns=2;s=Boiler.Temp" {
		t.Errorf("Unexpected tag: %s", ev.Tag)
	}
	if !ev.Timestamp.Equal(time.UnixMilli(1700000000000).UTC()) {
		t.Errorf("Unexpected timestamp: %v", ev.Timestamp)
	}
	if ev.Value != "22.5" {
		t.Errorf("Unexpected value: %s", ev.Value)
	}
	if ev.Quality != "Good" {
		t.Errorf("Unexpected quality: %s", ev.Quality)
	}
	if ev.Raw != "ns=2;s=Boiler.Temp,1700000000000,22.5,Good" {
		t.Errorf("Raw line not preserved: %s", ev.Raw)
	}
}

func TestParseLine_NoQuality(t *testing.T) {
	ev, err := ParseLine("pressure,1700000000500,1.01")
	if err != nil {
		t.Fatalf("ParseLine failed: %v", err)
	}
	if ev.Quality != "" {
		t.Errorf("Expected empty quality, got %s", ev.Quality)
	}
}

func TestParseLine_Malformed(t *testing.T) {
	cases := []string{
		"",
		"temp",
		"temp,1700000000000",
		",1700000000000,22.5",
		"temp,not-a-timestamp,22.5",
		"temp,1700000000000,22.5,Good,extra",
	}
	for _, line := range cases {
		if _, err := ParseLine(line); err == nil {
			t.Errorf("Expected error for line %q", line)
		}
	}
}

func TestFormatLine_RoundTrip(t *testing.T) {
	line := "flow,1700000001000,13.37,Uncertain"
	ev, err := ParseLine(line)
	if err != nil {
		t.Fatalf("ParseLine failed: %v", err)
	}
	if got := FormatLine(ev); got != line {
		t.Errorf("Expected round-tripped line %q, got %q", line, got)
	}
}
