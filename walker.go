package bwav

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/riff"
)

// ErrNotWaveFile is returned when the outer RIFF/WAVE container tags are
// missing or wrong.
var ErrNotWaveFile = errors.New("not a RIFF/WAVE stream")

// chunkHandler receives one chunk with its payload bounded by a LimitReader
// and the absolute stream offset of the payload's first byte. The walker
// does not rely on the handler reading any particular amount of the
// payload; it seeks to the chunk's computed end itself.
type chunkHandler func(ch *riff.Chunk, offset int64) error

// walkChunks verifies the RIFF/WAVE container and iterates its chunks,
// dispatching each one to handle. Every chunk is followed by an
// unconditional seek to its end offset (payload length rounded up to an
// even byte), which is what makes the walk robust against handlers that
// read fewer or more bytes than a chunk declares, and against unknown
// chunks, which are skipped by the seek alone.
//
// Iteration stops when the read position reaches the outer chunk's declared
// end, when the stream is exhausted, or when a chunk's computed end does
// not advance past its own header (zero-length guard for malformed files).
func walkChunks(r io.ReadSeeker, handle chunkHandler) error {
	var (
		tag  [4]byte
		size uint32
	)

	if _, err := io.ReadFull(r, tag[:]); err != nil {
		return fmt.Errorf("failed to read container tag: %w", err)
	}

	if tag != riff.RiffID {
		return ErrNotWaveFile
	}

	if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
		return fmt.Errorf("failed to read container size: %w", err)
	}

	pos, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("failed to query stream position: %w", err)
	}

	end := pos + int64(size)

	if _, err := io.ReadFull(r, tag[:]); err != nil {
		return fmt.Errorf("failed to read form type: %w", err)
	}

	if tag != riff.WavFormatID {
		return ErrNotWaveFile
	}

	pos += 4

	for pos < end {
		var (
			id     [4]byte
			length uint32
		)

		if _, err := io.ReadFull(r, id[:]); err != nil {
			// stream exhausted before the declared container end
			break
		}

		if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
			break
		}

		payloadStart := pos + 8
		chunkEnd := payloadStart + int64(length) + int64(length&1)

		chunk := &riff.Chunk{
			ID:   id,
			Size: int(length),
			R:    io.LimitReader(r, int64(length)),
		}

		if err := handle(chunk, payloadStart); err != nil {
			return err
		}

		if chunkEnd <= payloadStart {
			break
		}

		if _, err := r.Seek(chunkEnd, io.SeekStart); err != nil {
			return fmt.Errorf("failed to seek to next chunk: %w", err)
		}

		pos = chunkEnd
	}

	return nil
}
