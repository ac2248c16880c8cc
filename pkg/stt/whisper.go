// Package stt wraps speech to text. Recognition itself happens in an
// OpenAI compatible transcription endpoint, by default a local whisper.cpp
// server; this package owns audio decoding and the client lifecycle.
package stt

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	openai "github.com/sashabaranov/go-openai"
	"github.com/spf13/viper"
)

// Whisper is safe for concurrent use; the underlying client is initialized
// once on first call and reused for the process lifetime.
type Whisper struct {
	model   string
	baseURL string
	apiKey  string

	once   sync.Once
	client *openai.Client
}

func NewWhisper() *Whisper {
	model := viper.GetString("AURWRITE_WHISPER_MODEL")
	if model == "" {
		model = openai.Whisper1
	}

	host := viper.GetString("AURWRITE_WHISPER_HOST")
	if host == "" {
		host = "http://localhost:8090/v1"
	}

	apiKey := viper.GetString("OPENAI_API_KEY")
	if apiKey == "" {
		apiKey = "sk-local"
	}

	return &Whisper{model: model, baseURL: host, apiKey: apiKey}
}

func (w *Whisper) api() *openai.Client {
	w.once.Do(func() {
		cfg := openai.DefaultConfig(w.apiKey)
		cfg.BaseURL = w.baseURL
		w.client = openai.NewClientWithConfig(cfg)
	})
	return w.client
}

// CheckDeps verifies the external decoding dependency. ffmpeg must be present
// before any pipeline call; without it compressed uploads cannot be decoded.
func CheckDeps() error {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return fmt.Errorf("ffmpeg is required to decode audio but was not found on PATH: %w", err)
	}
	return nil
}

// Transcribe returns the recognized text for the audio file, trimmed of
// surrounding whitespace. An empty string is a valid return here; whether it
// is a failure is the caller's call.
func (w *Whisper) Transcribe(ctx context.Context, audioPath string) (string, error) {
	path := audioPath
	if strings.ToLower(filepath.Ext(audioPath)) != ".wav" {
		wavPath, cleanup, err := decodeToWav(ctx, audioPath)
		if err != nil {
			return "", err
		}
		defer cleanup()
		path = wavPath
	}

	resp, err := w.api().CreateTranscription(ctx, openai.AudioRequest{
		Model:    w.model,
		FilePath: path,
	})
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}

	return strings.TrimSpace(resp.Text), nil
}

// decodeToWav converts a compressed audio file to 16kHz mono WAV, the input
// format the recognition model expects. The returned cleanup removes the
// transient file and is best-effort.
func decodeToWav(ctx context.Context, input string) (string, func(), error) {
	tmp, err := os.CreateTemp("", "aurwrite-stt-*.wav")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp file for decoded audio: %w", err)
	}
	tmp.Close()

	cleanup := func() { _ = os.Remove(tmp.Name()) }

	cmd := exec.CommandContext(
		ctx,
		"ffmpeg",
		"-y",
		"-i", input,
		"-ar", "16000",
		"-ac", "1",
		"-c:a", "pcm_s16le",
		tmp.Name(),
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("ffmpeg failed to decode %s: %v\nOutput: %s", input, err, stderr.String())
	}

	return tmp.Name(), cleanup, nil
}
