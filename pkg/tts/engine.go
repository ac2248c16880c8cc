// Package tts narrates a styled story. Synthesis engines are probed at call
// time so the pipeline degrades to whatever the host has installed instead of
// crashing where the preferred engine is missing.
package tts

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
)

// Engine is one speech synthesis backend. All engines return WAV bytes.
type Engine interface {
	Name() string
	// Available probes the host for the engine's dependencies.
	Available() bool
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// runCLIEngine is the shared scoped-resource path for CLI engines: the text
// goes into a transient file, the command renders a transient WAV, the WAV is
// read back. Both transient files are removed on every exit path.
func runCLIEngine(name, text string, build func(textFile, wavFile string) *exec.Cmd) ([]byte, error) {
	textFile, err := os.CreateTemp("", "aurwrite-narration-*.txt")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp text file: %w", err)
	}
	defer removeQuiet(textFile.Name())

	if _, err := textFile.WriteString(text); err != nil {
		textFile.Close()
		return nil, fmt.Errorf("failed to write temp text file: %w", err)
	}
	if err := textFile.Close(); err != nil {
		return nil, fmt.Errorf("failed to close temp text file: %w", err)
	}

	wavFile, err := os.CreateTemp("", "aurwrite-narration-*.wav")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp audio file: %w", err)
	}
	wavFile.Close()
	defer removeQuiet(wavFile.Name())

	cmd := build(textFile.Name(), wavFile.Name())

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s failed: %v\nOutput: %s", name, err, stderr.String())
	}

	data, err := os.ReadFile(wavFile.Name())
	if err != nil {
		return nil, fmt.Errorf("%s produced no output file: %w", name, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%s produced an empty output file", name)
	}

	return data, nil
}

// Cleanup is best-effort, a leftover scratch file is not worth failing a run.
func removeQuiet(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to remove temp file %s: %v", path, err)
	}
}
