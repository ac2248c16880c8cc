package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LoadText reads the whole file and returns it trimmed of surrounding whitespace.
func LoadText(filename string) (string, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", filename, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// SaveBytes writes data into dir/filename, creating dir if needed.
// Returns the full path of the written file.
func SaveBytes(dir, filename string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	target := filepath.Join(dir, filename)
	if err := os.WriteFile(target, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write to file: %w", err)
	}

	return target, nil
}

// SaveText is SaveBytes for string content.
func SaveText(dir, filename, text string) (string, error) {
	return SaveBytes(dir, filename, []byte(text))
}

// SanitizeFilename keeps only alphanumeric characters, space, '.', '_' and '-'
// from a user supplied filename and strips everything else. Idempotent.
func SanitizeFilename(filename string) string {
	var b strings.Builder
	b.Grow(len(filename))
	for _, r := range filename {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	name := strings.TrimSpace(b.String())
	if len(name) > 150 {
		// The cut can land right after a space, trim again so the result
		// is stable under repeated sanitization.
		name = strings.TrimSpace(name[:150])
	}
	return name
}
