package sink

import (
	"TagSpectra/internal/model"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func sampleRecords() []model.Record {
	return []model.Record{
		{
			Timestamp: time.UnixMilli(100).UTC(),
			Cells:     []model.Cell{{Tag: "temp", Value: "22.5"}, {Tag: "pressure", Value: "1.01"}},
		},
		{
			Timestamp: time.UnixMilli(200).UTC(),
			Cells:     []model.Cell{{Tag: "temp", Value: "23.0"}, {Tag: "pressure", Value: ""}},
		},
	}
}

func readSoleFile(t *testing.T, dir string) string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected exactly one file, found %d", len(entries))
	}
	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	if err != nil {
		t.Fatalf("Failed to read record file: %v", err)
	}
	return string(data)
}

func TestCSVSink_Write(t *testing.T) {
	dir := t.TempDir()
	s, err := NewCSVSink(dir)
	if err != nil {
		t.Fatalf("NewCSVSink failed: %v", err)
	}

	header := "timestamp,temp,pressure\n"
	if err := s.Write(sampleRecords(), header); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	content := readSoleFile(t, dir)
	lines := strings.Split(strings.TrimRight(content, "\r\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected header plus 2 record lines, got %d lines", len(lines))
	}
	if strings.TrimRight(lines[0], "\r") != "timestamp,temp,pressure" {
		t.Errorf("Unexpected header line: %q", lines[0])
	}
	if strings.TrimRight(lines[1], "\r") != "100,22.5,1.01" {
		t.Errorf("Unexpected first record line: %q", lines[1])
	}
	if strings.TrimRight(lines[2], "\r") != "200,23.0," {
		t.Errorf("Unexpected second record line: %q", lines[2])
	}
}

func TestCSVSink_EmptyBatch(t *testing.T) {
	dir := t.TempDir()
	s, err := NewCSVSink(dir)
	if err != nil {
		t.Fatalf("NewCSVSink failed: %v", err)
	}
	if err := s.Write(nil, ""); err != nil {
		t.Fatalf("Write of empty batch failed: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Empty batch must not create a file, found %d", len(entries))
	}
}

func TestFailureSink_Write(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFailureSink(dir)
	if err != nil {
		t.Fatalf("NewFailureSink failed: %v", err)
	}

	if err := s.Write(sampleRecords(), ""); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	content := readSoleFile(t, dir)
	if !strings.Contains(content, "100,22.5,1.01") {
		t.Errorf("Failed records not persisted, got: %q", content)
	}
}
