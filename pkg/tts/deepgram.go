package tts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	api "github.com/deepgram/deepgram-go-sdk/pkg/api/speak/v1/rest"
	"github.com/deepgram/deepgram-go-sdk/pkg/client/interfaces"
	client "github.com/deepgram/deepgram-go-sdk/pkg/client/speak"
	"github.com/spf13/viper"
)

const deepgramChunkSize = 2000

// DeepgramEngine is an optional cloud tier. It never enters the automatic
// fallback chain; the caller has to pin it explicitly, the offline engines
// stay the default deployment story.
type DeepgramEngine struct {
	apiKey string
	model  string
}

func NewDeepgramEngine() *DeepgramEngine {
	model := viper.GetString("AURWRITE_DEEPGRAM_MODEL")
	if model == "" {
		model = "aura-hera-en"
	}
	return &DeepgramEngine{
		apiKey: viper.GetString("DEEPGRAM_API_KEY"),
		model:  model,
	}
}

func (e *DeepgramEngine) Name() string { return "deepgram" }

func (e *DeepgramEngine) Available() bool { return e.apiKey != "" }

func (e *DeepgramEngine) Synthesize(ctx context.Context, text string) ([]byte, error) {
	client.InitWithDefault()

	options := &interfaces.SpeakOptions{
		Model:     e.model,
		Encoding:  "linear16",
		Container: "wav",
	}

	c := client.NewREST(e.apiKey, &interfaces.ClientOptions{})
	dg := api.New(c)

	// The API caps request size, long stories go out in sentence-aligned
	// chunks whose WAV parts are spliced back together.
	chunks := chunkText(text, deepgramChunkSize)

	dir, err := os.MkdirTemp("", "aurwrite-deepgram-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	files := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		file := filepath.Join(dir, strconv.Itoa(i)+"_part.wav")
		if _, err := dg.ToSave(ctx, file, chunk, options); err != nil {
			return nil, fmt.Errorf("chunk processing failed: %v", err)
		}
		files = append(files, file)
	}

	return joinWav(files)
}

// chunkText splits text into chunks of at most chunkSize runes, preferring
// sentence boundaries.
func chunkText(text string, chunkSize int) []string {
	if chunkSize <= 0 {
		return nil
	}

	var chunks []string
	runes := []rune(text)
	length := len(runes)
	var chunk []rune
	i := 0

	isSentenceEnd := func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	}

	for i < length {
		if len(chunk) == 0 {
			chunk = make([]rune, 0, chunkSize)
		}

		// Find the end of the current sentence, keeping the punctuation.
		j := i
		for j < length && !isSentenceEnd(runes[j]) {
			j++
		}
		if j < length && isSentenceEnd(runes[j]) {
			j++
		}

		if len(chunk)+j-i > chunkSize {
			// A lone over-long sentence becomes a chunk by itself.
			if len(chunk) == 0 {
				chunks = append(chunks, string(runes[i:j]))
				chunk = nil
				i = j
				continue
			}
			chunks = append(chunks, string(chunk))
			chunk = nil
			continue
		}

		chunk = append(chunk, runes[i:j]...)
		i = j

		if len(chunk) == chunkSize {
			chunks = append(chunks, string(chunk))
			chunk = nil
		}
	}

	if len(chunk) > 0 {
		chunks = append(chunks, string(chunk))
	}

	return chunks
}
