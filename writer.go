package bwav

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/riff"
)

var (
	// ErrUnsupportedBitDepth is returned when constructing a writer with a
	// bit depth outside {8, 16, 24, 32}.
	ErrUnsupportedBitDepth = errors.New("unsupported bit depth")
	// ErrInvalidChannelCount is returned when constructing a writer with
	// fewer than one channel.
	ErrInvalidChannelCount = errors.New("invalid channel count")
	// ErrWriterFailed is returned by WriteSamples after a previous write
	// failed; the writer stays permanently rejecting.
	ErrWriterFailed = errors.New("writer is in a failed state")
	// ErrFileTooLarge is returned when a write would push the file past the
	// 32-bit RIFF size field.
	ErrFileTooLarge = errors.New("wav file would exceed the 32-bit size limit")
)

// writeCeilingBytes guards the 32-bit RIFF size field against wraparound:
// accumulated sample bytes must stay below this, just under 4 GiB.
const writeCeilingBytes = 0xfff00000

// Writer encodes canonical 32-bit-domain sample blocks into a wav stream.
// The sink must be seekable: a provisional header is written at
// construction and rewritten with final sizes on Close, so a writer
// abandoned mid-stream still leaves a structurally valid file behind.
//
// A Writer is not safe for concurrent use; it never closes the underlying
// stream.
type Writer struct {
	w io.WriteSeeker

	SampleRate int
	BitDepth   int
	NumChans   int

	bextChunk    []byte
	headerPos    int64
	numSamples   uint32
	bytesWritten uint32
	writeFailed  bool
	scratch      []byte
}

// NewWriter creates a writer targeting ws at the given format. Metadata, if
// non-empty, is encoded to a bext payload immediately so the provisional
// header already carries the final layout. 32-bit files are written as IEEE
// float, smaller depths as integer PCM.
func NewWriter(ws io.WriteSeeker, sampleRate, numChans, bitDepth int, meta *MetadataMap) (*Writer, error) {
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
	}

	if numChans < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidChannelCount, numChans)
	}

	e := &Writer{
		w:          ws,
		SampleRate: sampleRate,
		BitDepth:   bitDepth,
		NumChans:   numChans,
	}

	if meta.Len() > 0 {
		e.bextChunk = encodeBroadcastChunk(meta)
	}

	pos, err := ws.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("output must support seeking: %w", err)
	}

	e.headerPos = pos

	if err := e.writeHeader(); err != nil {
		return nil, err
	}

	return e, nil
}

func (e *Writer) addLE(src any) error {
	if err := binary.Write(e.w, binary.LittleEndian, src); err != nil {
		return fmt.Errorf("failed to write little endian: %w", err)
	}

	return nil
}

// writeHeader seeks back to the header anchor and writes the full header
// with the sizes accumulated so far. It is called once at construction with
// zero counts and again on every Close.
func (e *Writer) writeHeader() error {
	if _, err := e.w.Seek(e.headerPos, io.SeekStart); err != nil {
		// the sink can't reach the header anchor; the caller handed us a
		// non-seekable stream and no valid header can be guaranteed
		return fmt.Errorf("failed to seek to header anchor: %w", err)
	}

	bpf := frameBytes(e.NumChans, e.BitDepth)
	dataBytes := e.numSamples * uint32(bpf)

	headerBytes := uint32(36)
	if len(e.bextChunk) > 0 {
		headerBytes = uint32(44 + len(e.bextChunk))
	}

	formatTag := uint16(wavFormatPCM)
	if e.BitDepth == 32 {
		formatTag = wavFormatIEEEFloat
	}

	if err := e.addLE(riff.RiffID); err != nil {
		return err
	}

	if err := e.addLE(dataBytes + headerBytes); err != nil {
		return err
	}

	if err := e.addLE(riff.WavFormatID); err != nil {
		return err
	}

	if err := e.addLE(riff.FmtID); err != nil {
		return err
	}

	if err := e.addLE(uint32(16)); err != nil {
		return err
	}

	if err := e.addLE(formatTag); err != nil {
		return err
	}

	if err := e.addLE(uint16(e.NumChans)); err != nil {
		return fmt.Errorf("error encoding the number of channels - %w", err)
	}

	if err := e.addLE(uint32(e.SampleRate)); err != nil {
		return fmt.Errorf("error encoding the sample rate - %w", err)
	}

	if err := e.addLE(uint32(bpf * e.SampleRate)); err != nil {
		return fmt.Errorf("error encoding the avg bytes per sec - %w", err)
	}

	if err := e.addLE(uint16(bpf)); err != nil {
		return err
	}

	if err := e.addLE(uint16(e.BitDepth)); err != nil {
		return fmt.Errorf("error encoding bits per sample - %w", err)
	}

	if len(e.bextChunk) > 0 {
		if err := e.addLE(CIDBext); err != nil {
			return err
		}

		if err := e.addLE(uint32(len(e.bextChunk))); err != nil {
			return fmt.Errorf("error encoding the bext chunk size - %w", err)
		}

		if _, err := e.w.Write(e.bextChunk); err != nil {
			return fmt.Errorf("error encoding the bext chunk - %w", err)
		}
	}

	if err := e.addLE(riff.DataFormatID); err != nil {
		return err
	}

	if err := e.addLE(dataBytes); err != nil {
		return fmt.Errorf("error encoding the data chunk size - %w", err)
	}

	return nil
}

// WriteSamples interleaves and appends numSamples frames taken from the
// canonical 32-bit source channel slices. A mono source is duplicated
// across all output channels when the caller supplies fewer slices than the
// writer has channels. Once a write fails every further call is rejected.
func (e *Writer) WriteSamples(src [][]int32, numSamples int) error {
	if e.writeFailed {
		return ErrWriterFailed
	}

	if numSamples <= 0 {
		return nil
	}

	if len(src) == 0 || src[0] == nil {
		return errors.New("no source channel data")
	}

	encode := sampleEncode32Func(e.BitDepth)
	bytesPerSample := e.BitDepth / 8
	blockBytes := numSamples * frameBytes(e.NumChans, e.BitDepth)

	if cap(e.scratch) < blockBytes {
		e.scratch = make([]byte, blockBytes)
	}

	buf := e.scratch[:blockBytes]
	pos := 0

	for i := 0; i < numSamples; i++ {
		for c := 0; c < e.NumChans; c++ {
			channel := src[0]
			if c < len(src) && src[c] != nil {
				channel = src[c]
			}

			encode(channel[i], buf[pos:])
			pos += bytesPerSample
		}
	}

	if uint64(e.bytesWritten)+uint64(blockBytes) >= writeCeilingBytes {
		e.failWrite()

		return ErrFileTooLarge
	}

	if _, err := e.w.Write(buf); err != nil {
		e.failWrite()

		return fmt.Errorf("failed to write sample block: %w", err)
	}

	e.bytesWritten += uint32(blockBytes)
	e.numSamples += uint32(numSamples)

	return nil
}

// failWrite finalizes the header best-effort so the byte counts written so
// far stay declared, then latches the permanent failure state.
func (e *Writer) failWrite() {
	e.writeHeader()
	e.w.Seek(0, io.SeekEnd)
	e.writeFailed = true
}

// Close rewrites the header with the final accumulated counts, regardless
// of any earlier write failure, and leaves the stream positioned at its
// end. The underlying stream is NOT closed; *os.File sinks are synced.
func (e *Writer) Close() error {
	if e == nil || e.w == nil {
		return nil
	}

	if err := e.writeHeader(); err != nil {
		return err
	}

	if _, err := e.w.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("failed to seek to end of file: %w", err)
	}

	if f, ok := e.w.(*os.File); ok {
		return f.Sync()
	}

	return nil
}
