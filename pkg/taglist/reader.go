package taglist

import (
	"fmt"
	"os"
	"strings"
)

// Read parses a tag list file: one tag identifier per line, no escaping, no
// comments. Blank lines inside the file are preserved as empty tag entries;
// the final line terminator does not introduce one. The returned slice fixes
// the column order of aggregated output rows for the rest of the run.
func Read(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tag list file: %w", err)
	}

	content := strings.ReplaceAll(string(data), "\r\n", "\n")
	lines := strings.Split(content, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines, nil
}
