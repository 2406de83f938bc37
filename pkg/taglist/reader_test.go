package taglist

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tags.txt")
	content := "temp\npressure\n\nflow\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write tag file: %v", err)
	}

	tags, err := Read(path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	expected := []string{"temp", "pressure", "", "flow"}
	if !reflect.DeepEqual(tags, expected) {
		t.Errorf("Expected tags %v, got %v", expected, tags)
	}
}

func TestRead_CRLF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tags.txt")
	if err := os.WriteFile(path, []byte("temp\r\npressure\r\n"), 0644); err != nil {
		t.Fatalf("Failed to write tag file: %v", err)
	}

	tags, err := Read(path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !reflect.DeepEqual(tags, []string{"temp", "pressure"}) {
		t.Errorf("Unexpected tags: %v", tags)
	}
}

func TestRead_MissingFile(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("Expected error for missing tag list file")
	}
}
