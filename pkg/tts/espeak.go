package tts

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
)

const (
	espeakDefaultRate  = 175
	narratorRateOffset = 40
	minNarratorRate    = 120
)

// EspeakEngine is the fallback tier: espeak-ng ships on most Linux hosts and
// keeps the pipeline working where `say` does not exist, at lower quality.
type EspeakEngine struct{}

func (e *EspeakEngine) Name() string { return "espeak" }

// binary resolves the installed espeak variant, preferring espeak-ng.
func (e *EspeakEngine) binary() (string, bool) {
	for _, bin := range []string{"espeak-ng", "espeak"} {
		if _, err := exec.LookPath(bin); err == nil {
			return bin, true
		}
	}
	return "", false
}

func (e *EspeakEngine) Available() bool {
	_, ok := e.binary()
	return ok
}

// NarrationRate slows the engine's default speaking rate down for a narrator
// cadence, clamped so the voice stays intelligible.
func NarrationRate(defaultRate int) int {
	rate := defaultRate - narratorRateOffset
	if rate < minNarratorRate {
		rate = minNarratorRate
	}
	return rate
}

func (e *EspeakEngine) Synthesize(ctx context.Context, text string) ([]byte, error) {
	bin, ok := e.binary()
	if !ok {
		return nil, fmt.Errorf("%s: no espeak binary on PATH", e.Name())
	}

	rate := NarrationRate(espeakDefaultRate)
	return runCLIEngine(e.Name(), text, func(textFile, wavFile string) *exec.Cmd {
		return exec.CommandContext(
			ctx,
			bin,
			"-s", strconv.Itoa(rate),
			"-w", wavFile,
			"-f", textFile,
		)
	})
}
