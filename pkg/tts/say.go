package tts

import (
	"context"
	"os/exec"
	"strconv"
)

// Fixed narrator configuration for the primary engine.
const (
	sayVoice = "Daniel"
	sayRate  = 160
)

// SayEngine drives the macOS `say` command, the highest quality offline
// engine we can rely on, but only on that one class of host.
type SayEngine struct{}

func (e *SayEngine) Name() string { return "say" }

func (e *SayEngine) Available() bool {
	_, err := exec.LookPath("say")
	return err == nil
}

func (e *SayEngine) Synthesize(ctx context.Context, text string) ([]byte, error) {
	return runCLIEngine(e.Name(), text, func(textFile, wavFile string) *exec.Cmd {
		return exec.CommandContext(
			ctx,
			"say",
			"-v", sayVoice,
			"-r", strconv.Itoa(sayRate),
			"--file-format=WAVE",
			"--data-format=LEI16@22050",
			"-o", wavFile,
			"-f", textFile,
		)
	})
}
