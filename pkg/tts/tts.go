package tts

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

// ErrNoEngine means no synthesis backend is usable on this host.
var ErrNoEngine = errors.New("no speech engine available")

// Narrator holds the engine chain and picks the first usable one per call.
type Narrator struct {
	engines []Engine
}

// NewNarrator builds the default two-tier chain: `say` where it exists,
// espeak everywhere else. Setting AURWRITE_TTS_ENGINE pins a single engine
// (including the cloud deepgram engine, which never enters the automatic
// chain).
func NewNarrator() *Narrator {
	pinned := viper.GetString("AURWRITE_TTS_ENGINE")
	if pinned != "" {
		for _, e := range []Engine{&SayEngine{}, &EspeakEngine{}, NewDeepgramEngine()} {
			if e.Name() == pinned {
				return &Narrator{engines: []Engine{e}}
			}
		}
		log.Printf("Unknown TTS engine %q, falling back to automatic selection", pinned)
	}

	return &Narrator{engines: []Engine{&SayEngine{}, &EspeakEngine{}}}
}

// NewNarratorWith builds a narrator over an explicit engine chain.
func NewNarratorWith(engines ...Engine) *Narrator {
	return &Narrator{engines: engines}
}

// Synthesize renders text with the first available engine. Engine errors
// propagate as-is; only the "nothing installed" case gets its own error, and
// it names what is missing.
func (n *Narrator) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("nothing to narrate: empty text")
	}

	missing := make([]string, 0, len(n.engines))
	for _, e := range n.engines {
		if !e.Available() {
			missing = append(missing, e.Name())
			continue
		}

		log.Printf("Narrating with %s...", e.Name())
		audio, err := e.Synthesize(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("%s synthesis failed: %w", e.Name(), err)
		}
		return audio, nil
	}

	return nil, fmt.Errorf("%w: install one of: %s", ErrNoEngine, strings.Join(missing, ", "))
}

// Report maps every configured engine to its availability, for diagnostics.
func (n *Narrator) Report() map[string]bool {
	report := make(map[string]bool, len(n.engines))
	for _, e := range n.engines {
		report[e.Name()] = e.Available()
	}
	return report
}
