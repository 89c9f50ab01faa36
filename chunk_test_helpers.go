package bwav

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
)

type testChunk struct {
	id   string
	size uint32
	data []byte
}

var (
	errFileTooSmall         = errors.New("file too small")
	errInvalidRiffWaveHdr   = errors.New("invalid riff/wave header")
	errChunkExceedsFileSize = errors.New("chunk exceeds file size")
)

// parseWavChunks re-parses emitted bytes chunk-by-chunk so tests can verify
// the binary layout independently of the Reader.
func parseWavChunks(data []byte) ([]testChunk, error) {
	if len(data) < 12 {
		return nil, errFileTooSmall
	}

	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, errInvalidRiffWaveHdr
	}

	chunks := make([]testChunk, 0)

	offset := 12
	for offset+8 <= len(data) {
		id := string(data[offset : offset+4])
		size := binary.LittleEndian.Uint32(data[offset+4 : offset+8])
		offset += 8

		end := offset + int(size)
		if end > len(data) {
			return nil, fmt.Errorf("%w: %q", errChunkExceedsFileSize, id)
		}

		payload := append([]byte(nil), data[offset:end]...)
		chunks = append(chunks, testChunk{id: id, size: size, data: payload})

		offset = end
		if size%2 == 1 {
			offset++
		}
	}

	return chunks, nil
}

func parseWavChunksFromFile(path string) ([]testChunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return parseWavChunks(data)
}

func findChunk(chunks []testChunk, id string) (*testChunk, int) {
	for i := range chunks {
		if chunks[i].id == id {
			return &chunks[i], i
		}
	}

	return nil, -1
}

// buildTestWav assembles a synthetic RIFF/WAVE container from raw chunks,
// applying the even-byte padding rule.
func buildTestWav(chunks ...testChunk) []byte {
	body := []byte("WAVE")

	for _, ch := range chunks {
		body = append(body, ch.id...)
		body = binary.LittleEndian.AppendUint32(body, uint32(len(ch.data)))
		body = append(body, ch.data...)

		if len(ch.data)%2 == 1 {
			body = append(body, 0)
		}
	}

	out := []byte("RIFF")
	out = binary.LittleEndian.AppendUint32(out, uint32(len(body)))

	return append(out, body...)
}

// fmtChunkData serializes a 16-byte fmt payload.
func fmtChunkData(formatTag, numChans uint16, sampleRate uint32, bitDepth uint16) []byte {
	bpf := uint32(numChans) * uint32(bitDepth) / 8

	data := binary.LittleEndian.AppendUint16(nil, formatTag)
	data = binary.LittleEndian.AppendUint16(data, numChans)
	data = binary.LittleEndian.AppendUint32(data, sampleRate)
	data = binary.LittleEndian.AppendUint32(data, sampleRate*bpf)
	data = binary.LittleEndian.AppendUint16(data, uint16(bpf))

	return binary.LittleEndian.AppendUint16(data, bitDepth)
}
