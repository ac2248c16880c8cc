package tts

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
)

// joinWav splices the PCM payloads of RIFF/WAVE files sharing one format into
// a single WAV buffer, keeping the first file's header and patching the RIFF
// and data chunk sizes.
func joinWav(files []string) ([]byte, error) {
	if len(files) == 0 {
		return nil, errors.New("no audio parts to join")
	}

	first, err := os.ReadFile(files[0])
	if err != nil {
		return nil, err
	}

	payload, sizeOffset, err := wavDataChunk(first)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", files[0], err)
	}

	out := make([]byte, 0, len(first))
	out = append(out, first[:sizeOffset+4]...)
	out = append(out, payload...)
	total := len(payload)

	for _, file := range files[1:] {
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}
		p, _, err := wavDataChunk(b)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		out = append(out, p...)
		total += len(p)
	}

	binary.LittleEndian.PutUint32(out[4:8], uint32(len(out)-8))
	binary.LittleEndian.PutUint32(out[sizeOffset:sizeOffset+4], uint32(total))

	return out, nil
}

// wavDataChunk walks the RIFF chunk list and returns the data chunk payload
// together with the offset of its size field.
func wavDataChunk(b []byte) (payload []byte, sizeOffset int, err error) {
	if len(b) < 12 || string(b[0:4]) != "RIFF" || string(b[8:12]) != "WAVE" {
		return nil, 0, errors.New("not a RIFF/WAVE file")
	}

	off := 12
	for off+8 <= len(b) {
		id := string(b[off : off+4])
		size := int(binary.LittleEndian.Uint32(b[off+4 : off+8]))
		if id == "data" {
			end := off + 8 + size
			if end > len(b) {
				// Some writers leave the size stale when streaming.
				end = len(b)
			}
			return b[off+8 : end], off + 4, nil
		}
		off += 8 + size
		if size%2 == 1 {
			off++
		}
	}

	return nil, 0, errors.New("missing data chunk")
}
