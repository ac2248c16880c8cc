// Package pipeline sequences a remix run: persist the upload, transcribe it,
// rewrite the transcript in a style, narrate the result. Each run is an
// independent, stateless transformation; the only process-wide state is the
// memoized model clients inside the adapters.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/aurwrite/aurwrite/pkg/utils"
	"github.com/google/uuid"
	"github.com/spf13/viper"
)

// Ports the orchestrator drives. Implementations live in pkg/stt,
// pkg/rewrite and pkg/tts.
type (
	Transcriber interface {
		Transcribe(ctx context.Context, audioPath string) (string, error)
	}
	Rewriter interface {
		Rewrite(ctx context.Context, stylePrompt, transcript string) (string, error)
	}
	Synthesizer interface {
		Synthesize(ctx context.Context, text string) ([]byte, error)
	}
	StyleSource interface {
		Prompt(name string) (string, error)
	}
)

type State string

const (
	StateIdle         State = "idle"
	StateTranscribing State = "transcribing"
	StateRewriting    State = "rewriting"
	StateNarrating    State = "narrating"
	StateDone         State = "done"
	StateFailed       State = "failed"
)

// ErrEmptyTranscript is terminal for a run: no meaningful story can be
// generated from nothing, the user has to retry with clearer audio.
var ErrEmptyTranscript = errors.New("empty transcript")

// TimestampLayout correlates an upload with its derived artifacts.
const TimestampLayout = "20060102_150405"

// DataDir is the root under which uploads and outputs accumulate.
func DataDir() string {
	dataDir := viper.GetString("AURWRITE_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	return dataDir
}

// Run is one pass through the pipeline. A new input always gets a fresh Run.
type Run struct {
	ID        string
	Timestamp string
	State     State
	Reason    string

	UploadPath     string
	TranscriptPath string
	Transcript     string
	Story          string
	Audio          []byte
	DownloadName   string
}

func (r *Run) fail(err error) (*Run, error) {
	r.State = StateFailed
	r.Reason = err.Error()
	return r, err
}

type Pipeline struct {
	styles   StyleSource
	stt      Transcriber
	rewriter Rewriter
	narrator Synthesizer

	uploadsDir     string
	transcriptsDir string
}

func New(styles StyleSource, stt Transcriber, rewriter Rewriter, narrator Synthesizer) *Pipeline {
	dataDir := DataDir()

	return &Pipeline{
		styles:         styles,
		stt:            stt,
		rewriter:       rewriter,
		narrator:       narrator,
		uploadsDir:     filepath.Join(dataDir, "uploads"),
		transcriptsDir: filepath.Join(dataDir, "outputs", "transcripts"),
	}
}

// DownloadName is the file name offered for the narration WAV.
func DownloadName(timestamp, style string) string {
	return fmt.Sprintf("%s_%s.wav", timestamp, strings.ReplaceAll(strings.ToLower(style), " ", "_"))
}

// Remix runs the whole chain for one uploaded recording. The returned Run
// carries whatever artifacts were produced before a failure; transcript files
// already written stay valid.
func (p *Pipeline) Remix(ctx context.Context, audio []byte, filename, style string) (*Run, error) {
	run := &Run{
		ID:        uuid.NewString(),
		Timestamp: time.Now().Format(TimestampLayout),
		State:     StateIdle,
	}

	// Resolve the style up front: an unsupported style must fail before any
	// model inference happens.
	stylePrompt, err := p.styles.Prompt(style)
	if err != nil {
		return run.fail(err)
	}

	uploadName := fmt.Sprintf("%s_%s", run.Timestamp, utils.SanitizeFilename(filename))
	uploadPath, err := utils.SaveBytes(p.uploadsDir, uploadName, audio)
	if err != nil {
		return run.fail(err)
	}
	run.UploadPath = uploadPath

	run.State = StateTranscribing
	log.Println("Transcribing...")
	transcript, err := p.stt.Transcribe(ctx, uploadPath)
	if err != nil {
		return run.fail(err)
	}
	if transcript == "" {
		return run.fail(ErrEmptyTranscript)
	}
	run.Transcript = transcript
	log.Printf("Transcript length: %d", len(transcript))

	transcriptPath, err := utils.SaveText(p.transcriptsDir, run.Timestamp+"_transcript.txt", transcript)
	if err != nil {
		return run.fail(err)
	}
	run.TranscriptPath = transcriptPath

	run.State = StateRewriting
	log.Printf("Rewriting as %s...", style)
	story, err := p.rewriter.Rewrite(ctx, stylePrompt, transcript)
	if err != nil {
		return run.fail(err)
	}
	run.Story = story
	log.Printf("Styled length: %d", len(story))

	run.State = StateNarrating
	log.Println("Generating narration...")
	narration, err := p.narrator.Synthesize(ctx, story)
	if err != nil {
		return run.fail(err)
	}
	run.Audio = narration
	run.DownloadName = DownloadName(run.Timestamp, style)

	run.State = StateDone
	return run, nil
}
