package tts

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	name      string
	available bool
	audio     []byte
	err       error
	calls     int
}

func (f *fakeEngine) Name() string    { return f.name }
func (f *fakeEngine) Available() bool { return f.available }

func (f *fakeEngine) Synthesize(ctx context.Context, text string) ([]byte, error) {
	f.calls++
	return f.audio, f.err
}

func TestNarratorPicksFirstAvailableEngine(t *testing.T) {
	t.Parallel()

	primary := &fakeEngine{name: "say", available: false}
	fallback := &fakeEngine{name: "espeak", available: true, audio: []byte("RIFF...")}

	narrator := NewNarratorWith(primary, fallback)
	audio, err := narrator.Synthesize(context.Background(), "a story")
	require.NoError(t, err)

	assert.Equal(t, []byte("RIFF..."), audio)
	assert.Zero(t, primary.calls)
	assert.Equal(t, 1, fallback.calls)
}

func TestNarratorPrimaryWinsWhenAvailable(t *testing.T) {
	t.Parallel()

	primary := &fakeEngine{name: "say", available: true, audio: []byte("wav")}
	fallback := &fakeEngine{name: "espeak", available: true, audio: []byte("other")}

	narrator := NewNarratorWith(primary, fallback)
	audio, err := narrator.Synthesize(context.Background(), "a story")
	require.NoError(t, err)

	assert.Equal(t, []byte("wav"), audio)
	assert.Zero(t, fallback.calls)
}

func TestNarratorNamesMissingDependencies(t *testing.T) {
	t.Parallel()

	narrator := NewNarratorWith(
		&fakeEngine{name: "say"},
		&fakeEngine{name: "espeak"},
	)
	_, err := narrator.Synthesize(context.Background(), "a story")
	require.Error(t, err)

	assert.True(t, errors.Is(err, ErrNoEngine))
	assert.Contains(t, err.Error(), "say")
	assert.Contains(t, err.Error(), "espeak")
}

func TestNarratorEngineErrorPropagates(t *testing.T) {
	t.Parallel()

	boom := errors.New("synthesis blew up")
	narrator := NewNarratorWith(&fakeEngine{name: "say", available: true, err: boom})

	_, err := narrator.Synthesize(context.Background(), "a story")
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
}

func TestNarratorRejectsEmptyText(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{name: "say", available: true}
	narrator := NewNarratorWith(engine)

	_, err := narrator.Synthesize(context.Background(), "   \n ")
	require.Error(t, err)
	assert.Zero(t, engine.calls, "no engine should run for empty input")
}

func TestNarratorReport(t *testing.T) {
	t.Parallel()

	narrator := NewNarratorWith(
		&fakeEngine{name: "say", available: false},
		&fakeEngine{name: "espeak", available: true},
	)
	assert.Equal(t, map[string]bool{"say": false, "espeak": true}, narrator.Report())
}

func TestEspeakPrefersNGVariant(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"espeak-ng", "espeak"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("#!/bin/sh\nexit 0\n"), 0755))
	}
	t.Setenv("PATH", dir)

	engine := &EspeakEngine{}
	bin, ok := engine.binary()
	require.True(t, ok)
	assert.Equal(t, "espeak-ng", bin)
	assert.True(t, engine.Available())
}

func TestEspeakUnavailableWithoutBinary(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	engine := &EspeakEngine{}
	_, ok := engine.binary()
	assert.False(t, ok)
	assert.False(t, engine.Available())

	_, err := engine.Synthesize(context.Background(), "hello")
	require.Error(t, err)
}

func TestNarrationRate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 135, NarrationRate(175))
	assert.Equal(t, 120, NarrationRate(150), "rate is floor-clamped")
	assert.Equal(t, 120, NarrationRate(100))
}

func TestRunCLIEngineCleansUpOnSuccess(t *testing.T) {
	t.Parallel()

	var textPath, wavPath string
	audio, err := runCLIEngine("fake", "narrate me", func(textFile, wavFile string) *exec.Cmd {
		textPath, wavPath = textFile, wavFile
		return exec.Command("sh", "-c", fmt.Sprintf("cat %q > %q", textFile, wavFile))
	})
	require.NoError(t, err)
	assert.Equal(t, "narrate me", string(audio))

	assert.NoFileExists(t, textPath)
	assert.NoFileExists(t, wavPath)
}

func TestRunCLIEngineCleansUpOnFailure(t *testing.T) {
	t.Parallel()

	var textPath, wavPath string
	_, err := runCLIEngine("fake", "narrate me", func(textFile, wavFile string) *exec.Cmd {
		textPath, wavPath = textFile, wavFile
		return exec.Command("false")
	})
	require.Error(t, err)

	assert.NoFileExists(t, textPath)
	assert.NoFileExists(t, wavPath)
}

func TestRunCLIEngineEmptyOutputIsAnError(t *testing.T) {
	t.Parallel()

	_, err := runCLIEngine("fake", "narrate me", func(textFile, wavFile string) *exec.Cmd {
		// Succeeds without writing anything into the output file.
		return exec.Command("true")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty output")
}

// writeWav writes a minimal canonical RIFF/WAVE file with the given payload.
func writeWav(t *testing.T, dir, name string, payload []byte) string {
	t.Helper()

	var fmtChunk [16]byte
	binary.LittleEndian.PutUint16(fmtChunk[0:], 1)      // PCM
	binary.LittleEndian.PutUint16(fmtChunk[2:], 1)      // mono
	binary.LittleEndian.PutUint32(fmtChunk[4:], 22050)  // sample rate
	binary.LittleEndian.PutUint32(fmtChunk[8:], 44100)  // byte rate
	binary.LittleEndian.PutUint16(fmtChunk[12:], 2)     // block align
	binary.LittleEndian.PutUint16(fmtChunk[14:], 16)    // bits per sample

	body := append([]byte("WAVEfmt "), 16, 0, 0, 0)
	body = append(body, fmtChunk[:]...)
	body = append(body, []byte("data")...)
	var size [4]byte
	binary.LittleEndian.PutUint32(size[:], uint32(len(payload)))
	body = append(body, size[:]...)
	body = append(body, payload...)

	file := append([]byte("RIFF"), 0, 0, 0, 0)
	binary.LittleEndian.PutUint32(file[4:], uint32(len(body)))
	file = append(file, body...)

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, file, 0644))
	return path
}

func TestJoinWav(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := writeWav(t, dir, "a.wav", []byte{1, 2, 3, 4})
	b := writeWav(t, dir, "b.wav", []byte{5, 6})

	joined, err := joinWav([]string{a, b})
	require.NoError(t, err)

	payload, sizeOffset, err := wavDataChunk(joined)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6}, payload)
	assert.Equal(t, uint32(6), binary.LittleEndian.Uint32(joined[sizeOffset:sizeOffset+4]))
	assert.Equal(t, uint32(len(joined)-8), binary.LittleEndian.Uint32(joined[4:8]))
}

func TestJoinWavRejectsGarbage(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	garbage := filepath.Join(dir, "not.wav")
	require.NoError(t, os.WriteFile(garbage, []byte("mp3 frames, honest"), 0644))

	_, err := joinWav([]string{garbage})
	require.Error(t, err)
}

func TestJoinWavNoFiles(t *testing.T) {
	t.Parallel()

	_, err := joinWav(nil)
	require.Error(t, err)
}

func TestChunkTextPrefersSentenceBoundaries(t *testing.T) {
	t.Parallel()

	text := "First sentence. Second sentence! Third sentence?"
	chunks := chunkText(text, 20)
	require.NotEmpty(t, chunks)

	for _, chunk := range chunks {
		assert.LessOrEqual(t, len([]rune(chunk)), 20)
	}
	assert.Equal(t, "First sentence.", chunks[0])
}

func TestChunkTextShortInputSingleChunk(t *testing.T) {
	t.Parallel()

	chunks := chunkText("tiny story.", 2000)
	assert.Equal(t, []string{"tiny story."}, chunks)
}
